package builtin

import (
	"context"
	"time"

	"github.com/felixgeelhaar/pacer/internal/engine/sdk"
	"github.com/felixgeelhaar/pacer/internal/engine/types"
)

// WorkdayProviderPro adds a configurable weekend-day set and an explicit
// holiday set on top of the default Monday-Friday calendar, for regions
// whose weekend falls on different days (e.g. Friday-Saturday) or that need
// fixed holidays excluded from the schedule.
type WorkdayProviderPro struct {
	config   sdk.EngineConfig
	weekend  map[time.Weekday]bool
	holidays map[string]bool // "YYYY-MM-DD" -> true
}

// NewWorkdayProviderPro creates a new pro workday provider.
func NewWorkdayProviderPro() *WorkdayProviderPro {
	return &WorkdayProviderPro{}
}

// Metadata returns engine metadata.
func (e *WorkdayProviderPro) Metadata() sdk.EngineMetadata {
	return sdk.EngineMetadata{
		ID:            "pacer.workday.pro",
		Name:          "Workday Provider Pro",
		Version:       "1.0.0",
		Author:        "pacer",
		Description:   "Configurable weekend days and fixed holiday calendar",
		License:       "Proprietary",
		Homepage:      "https://pacer.dev",
		Tags:          []string{"workday", "pro", "holidays"},
		MinAPIVersion: "1.0.0",
		Capabilities:  []string{"is_workday", "configurable_weekend", "holiday_calendar"},
	}
}

// Type returns the engine type.
func (e *WorkdayProviderPro) Type() sdk.EngineType {
	return sdk.EngineTypeWorkdayProvider
}

// ConfigSchema returns the configuration schema.
func (e *WorkdayProviderPro) ConfigSchema() sdk.ConfigSchema {
	schema := sdk.NewConfigSchema("Workday Provider Pro", "Configurable weekend and holiday calendar")
	schema.AddProperty("weekend_days", sdk.PropertySchema{
		Type:        "array",
		Title:       "Weekend Days",
		Description: "Weekday names treated as non-working, e.g. [\"Friday\", \"Saturday\"]",
		Default:     []any{"Saturday", "Sunday"},
		UIHints: sdk.UIHints{
			Widget:   "multiselect",
			Group:    "Calendar",
			HelpText: "Defaults to Saturday/Sunday when unset",
		},
	})
	schema.AddProperty("holidays", sdk.PropertySchema{
		Type:        "array",
		Title:       "Holidays",
		Description: "Fixed dates excluded from the schedule, as \"YYYY-MM-DD\" strings",
		UIHints: sdk.UIHints{
			Widget: "multiselect",
			Group:  "Calendar",
		},
	})
	return schema
}

// Initialize initializes the engine with configuration.
func (e *WorkdayProviderPro) Initialize(ctx context.Context, config sdk.EngineConfig) error {
	e.config = config

	e.weekend = map[time.Weekday]bool{time.Saturday: true, time.Sunday: true}
	if names := config.GetStringSlice("weekend_days"); len(names) > 0 {
		e.weekend = make(map[time.Weekday]bool, len(names))
		for _, n := range names {
			wd, ok := parseWeekday(n)
			if !ok {
				return sdk.NewConfigValidationError("weekend_days", "unrecognized weekday name", n)
			}
			e.weekend[wd] = true
		}
	}

	e.holidays = make(map[string]bool)
	for _, h := range config.GetStringSlice("holidays") {
		if _, err := time.Parse("2006-01-02", h); err != nil {
			return sdk.NewConfigValidationError("holidays", "expected YYYY-MM-DD", h)
		}
		e.holidays[h] = true
	}

	return nil
}

// HealthCheck returns the engine health status.
func (e *WorkdayProviderPro) HealthCheck(ctx context.Context) sdk.HealthStatus {
	return sdk.NewHealthStatus(true, "pro workday provider is healthy").
		WithDetails(map[string]any{"holiday_count": len(e.holidays)})
}

// Shutdown gracefully shuts down the engine.
func (e *WorkdayProviderPro) Shutdown(ctx context.Context) error {
	return nil
}

// IsWorkday reports whether the given date is neither a configured weekend
// day nor a configured holiday.
func (e *WorkdayProviderPro) IsWorkday(ctx *sdk.ExecutionContext, input types.IsWorkdayInput) (*types.IsWorkdayOutput, error) {
	if e.weekend[input.Date.Weekday()] {
		return &types.IsWorkdayOutput{Workday: false, Reason: "weekend"}, nil
	}
	key := input.Date.Format("2006-01-02")
	if e.holidays[key] {
		return &types.IsWorkdayOutput{Workday: false, Reason: "holiday:" + key}, nil
	}
	return &types.IsWorkdayOutput{Workday: true}, nil
}

func parseWeekday(name string) (time.Weekday, bool) {
	switch name {
	case "Sunday":
		return time.Sunday, true
	case "Monday":
		return time.Monday, true
	case "Tuesday":
		return time.Tuesday, true
	case "Wednesday":
		return time.Wednesday, true
	case "Thursday":
		return time.Thursday, true
	case "Friday":
		return time.Friday, true
	case "Saturday":
		return time.Saturday, true
	default:
		return 0, false
	}
}

// Ensure WorkdayProviderPro implements types.WorkdayProviderEngine.
var _ types.WorkdayProviderEngine = (*WorkdayProviderPro)(nil)
