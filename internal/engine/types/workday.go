// Package types defines the input/output payloads exchanged with engine plugins.
package types

import (
	"time"

	"github.com/felixgeelhaar/pacer/internal/engine/sdk"
)

// WorkdayProviderEngine extends the base Engine with calendar-day classification.
// Implementations decide whether a given date counts toward a task's engineer-day
// budget.
type WorkdayProviderEngine interface {
	sdk.Engine

	// IsWorkday reports whether the given date is a working day.
	IsWorkday(ctx *sdk.ExecutionContext, input IsWorkdayInput) (*IsWorkdayOutput, error)
}

// IsWorkdayInput contains the parameters for a workday classification request.
type IsWorkdayInput struct {
	// Date is the calendar date under test, truncated to midnight UTC.
	Date time.Time `json:"date"`
}

// IsWorkdayOutput is the result of a workday classification request.
type IsWorkdayOutput struct {
	// Workday is true when the date should count as a working day.
	Workday bool `json:"workday"`

	// Reason optionally explains a non-default classification, e.g. "holiday:
	// new_year" — useful when diagnosing why a plan's calendar dates skipped a
	// date that looks like a weekday.
	Reason string `json:"reason,omitempty"`
}
