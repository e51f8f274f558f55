// Package plugin provides net/rpc-based process isolation for workday
// provider engines, built on hashicorp/go-plugin. It replaces a gRPC
// transport with the library's simpler net/rpc transport, since a workday
// provider exposes exactly one narrow call and does not need streaming.
package plugin

import (
	"context"
	"net/rpc"

	"github.com/felixgeelhaar/pacer/internal/engine/sdk"
	"github.com/felixgeelhaar/pacer/internal/engine/types"
	"github.com/google/uuid"
	hcplugin "github.com/hashicorp/go-plugin"
)

// HandshakeConfig is used to verify that the plugin is compatible. Both the
// host and plugin binaries must use the same handshake configuration.
var HandshakeConfig = hcplugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "PACER_ENGINE_PLUGIN",
	MagicCookieValue: "pacer-engine-v1",
}

// PluginMap is the map of plugins dispensed over the wire. A workday
// provider plugin binary registers its implementation under "engine".
var PluginMap = map[string]hcplugin.Plugin{
	"engine": &WorkdayProviderPlugin{},
}

// WorkdayProviderPlugin is the hashicorp/go-plugin.Plugin implementation for
// workday provider engines.
type WorkdayProviderPlugin struct {
	// Impl is the concrete implementation (plugin-side only).
	Impl types.WorkdayProviderEngine
}

// Server returns an RPC server for this plugin, run on the plugin side.
func (p *WorkdayProviderPlugin) Server(*hcplugin.MuxBroker) (interface{}, error) {
	return &workdayProviderRPCServer{impl: p.Impl}, nil
}

// Client returns an RPC client for this plugin, run on the host side.
func (p *WorkdayProviderPlugin) Client(b *hcplugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &workdayProviderRPCClient{client: c}, nil
}

// workdayProviderRPCServer wraps a concrete WorkdayProviderEngine so it can be
// dispensed over net/rpc.
type workdayProviderRPCServer struct {
	impl types.WorkdayProviderEngine
}

type rpcVoid struct{}

func (s *workdayProviderRPCServer) Metadata(_ rpcVoid, resp *sdk.EngineMetadata) error {
	*resp = s.impl.Metadata()
	return nil
}

func (s *workdayProviderRPCServer) ConfigSchema(_ rpcVoid, resp *sdk.ConfigSchema) error {
	*resp = s.impl.ConfigSchema()
	return nil
}

func (s *workdayProviderRPCServer) Initialize(config sdk.EngineConfig, _ *rpcVoid) error {
	return s.impl.Initialize(context.Background(), config)
}

func (s *workdayProviderRPCServer) HealthCheck(_ rpcVoid, resp *sdk.HealthStatus) error {
	*resp = s.impl.HealthCheck(context.Background())
	return nil
}

func (s *workdayProviderRPCServer) Shutdown(_ rpcVoid, _ *rpcVoid) error {
	return s.impl.Shutdown(context.Background())
}

func (s *workdayProviderRPCServer) IsWorkday(input types.IsWorkdayInput, resp *types.IsWorkdayOutput) error {
	execCtx := sdk.NewExecutionContext(context.Background(), uuid.Nil, s.impl.Metadata().ID)
	out, err := s.impl.IsWorkday(execCtx, input)
	if err != nil {
		return err
	}
	*resp = *out
	return nil
}

// workdayProviderRPCClient is the host-side stub satisfying
// types.WorkdayProviderEngine by forwarding calls over net/rpc.
type workdayProviderRPCClient struct {
	client *rpc.Client
}

func (c *workdayProviderRPCClient) Metadata() sdk.EngineMetadata {
	var resp sdk.EngineMetadata
	_ = c.client.Call("Plugin.Metadata", rpcVoid{}, &resp)
	return resp
}

func (c *workdayProviderRPCClient) Type() sdk.EngineType {
	return sdk.EngineTypeWorkdayProvider
}

func (c *workdayProviderRPCClient) ConfigSchema() sdk.ConfigSchema {
	var resp sdk.ConfigSchema
	_ = c.client.Call("Plugin.ConfigSchema", rpcVoid{}, &resp)
	return resp
}

func (c *workdayProviderRPCClient) Initialize(_ context.Context, config sdk.EngineConfig) error {
	var resp rpcVoid
	return c.client.Call("Plugin.Initialize", config, &resp)
}

func (c *workdayProviderRPCClient) HealthCheck(context.Context) sdk.HealthStatus {
	var resp sdk.HealthStatus
	_ = c.client.Call("Plugin.HealthCheck", rpcVoid{}, &resp)
	return resp
}

func (c *workdayProviderRPCClient) Shutdown(context.Context) error {
	var resp rpcVoid
	return c.client.Call("Plugin.Shutdown", rpcVoid{}, &resp)
}

func (c *workdayProviderRPCClient) IsWorkday(_ *sdk.ExecutionContext, input types.IsWorkdayInput) (*types.IsWorkdayOutput, error) {
	var resp types.IsWorkdayOutput
	if err := c.client.Call("Plugin.IsWorkday", input, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Ensure workdayProviderRPCClient implements types.WorkdayProviderEngine.
var _ types.WorkdayProviderEngine = (*workdayProviderRPCClient)(nil)
