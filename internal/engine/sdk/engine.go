// Package sdk provides the core interfaces and types for pacer's engine plugin system.
// Engines are pluggable components that supply domain policy the core scheduler
// delegates to — currently only workday calendar providers.
package sdk

import (
	"context"
)

// EngineType identifies the type of engine.
type EngineType string

const (
	// EngineTypeWorkdayProvider identifies a plugin that decides whether a
	// given calendar date counts as a working day.
	EngineTypeWorkdayProvider EngineType = "workday_provider"
)

// String returns the string representation of the engine type.
func (t EngineType) String() string {
	return string(t)
}

// IsValid checks if the engine type is valid.
func (t EngineType) IsValid() bool {
	switch t {
	case EngineTypeWorkdayProvider:
		return true
	default:
		return false
	}
}

// Engine is the base interface all engines must implement.
// This provides identity, configuration, and lifecycle management.
type Engine interface {
	// Metadata returns engine identification and capabilities.
	Metadata() EngineMetadata

	// Type returns the engine type.
	Type() EngineType

	// ConfigSchema returns the JSON Schema for configuration.
	// This enables auto-generated UI for marketplace configuration.
	ConfigSchema() ConfigSchema

	// Initialize sets up the engine with the provided configuration.
	// This is called once when the engine is loaded.
	Initialize(ctx context.Context, config EngineConfig) error

	// HealthCheck returns the current health status of the engine.
	// Called periodically to monitor engine health.
	HealthCheck(ctx context.Context) HealthStatus

	// Shutdown gracefully stops the engine and releases resources.
	Shutdown(ctx context.Context) error
}

// EngineFactory creates engine instances.
// Used by the registry to defer engine instantiation.
type EngineFactory func() (Engine, error)
