// Package builtin provides built-in engine implementations that ship with pacer.
package builtin

import (
	"context"
	"time"

	"github.com/felixgeelhaar/pacer/internal/engine/sdk"
	"github.com/felixgeelhaar/pacer/internal/engine/types"
)

// DefaultWorkdayProvider classifies Monday through Friday as working days and
// every other day as non-working. It takes no configuration.
type DefaultWorkdayProvider struct {
	config sdk.EngineConfig
}

// NewDefaultWorkdayProvider creates a new default workday provider.
func NewDefaultWorkdayProvider() *DefaultWorkdayProvider {
	return &DefaultWorkdayProvider{}
}

// Metadata returns engine metadata.
func (e *DefaultWorkdayProvider) Metadata() sdk.EngineMetadata {
	return sdk.EngineMetadata{
		ID:            "pacer.workday.default",
		Name:          "Default Workday Provider",
		Version:       "1.0.0",
		Author:        "pacer",
		Description:   "Monday through Friday workday calendar",
		License:       "Proprietary",
		Homepage:      "https://pacer.dev",
		Tags:          []string{"workday", "builtin", "default"},
		MinAPIVersion: "1.0.0",
		Capabilities:  []string{"is_workday"},
	}
}

// Type returns the engine type.
func (e *DefaultWorkdayProvider) Type() sdk.EngineType {
	return sdk.EngineTypeWorkdayProvider
}

// ConfigSchema returns the configuration schema. The default provider accepts
// no configuration.
func (e *DefaultWorkdayProvider) ConfigSchema() sdk.ConfigSchema {
	return sdk.NewConfigSchema("Default Workday Provider", "Monday through Friday, no holidays")
}

// Initialize initializes the engine with configuration.
func (e *DefaultWorkdayProvider) Initialize(ctx context.Context, config sdk.EngineConfig) error {
	e.config = config
	return nil
}

// HealthCheck returns the engine health status.
func (e *DefaultWorkdayProvider) HealthCheck(ctx context.Context) sdk.HealthStatus {
	return sdk.NewHealthStatus(true, "default workday provider is healthy")
}

// Shutdown gracefully shuts down the engine.
func (e *DefaultWorkdayProvider) Shutdown(ctx context.Context) error {
	return nil
}

// IsWorkday reports whether the given date falls on a weekday.
func (e *DefaultWorkdayProvider) IsWorkday(ctx *sdk.ExecutionContext, input types.IsWorkdayInput) (*types.IsWorkdayOutput, error) {
	switch input.Date.Weekday() {
	case time.Saturday, time.Sunday:
		return &types.IsWorkdayOutput{Workday: false, Reason: "weekend"}, nil
	default:
		return &types.IsWorkdayOutput{Workday: true}, nil
	}
}

// Ensure DefaultWorkdayProvider implements types.WorkdayProviderEngine.
var _ types.WorkdayProviderEngine = (*DefaultWorkdayProvider)(nil)
