package services

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/pacer/internal/engine/runtime"
	"github.com/felixgeelhaar/pacer/internal/engine/types"
	"github.com/felixgeelhaar/pacer/internal/scheduling/domain"
)

// EnginePredicate adapts a loaded workday provider engine to a
// domain.WorkdayPredicate, so the constraint model can delegate calendar
// classification to a plugin (holiday calendars, regional weekends, etc.)
// instead of the default Monday-Friday rule.
type EnginePredicate struct {
	executor *runtime.Executor
	engineID string
	ctx      context.Context
}

// NewEnginePredicate builds a WorkdayPredicate backed by the named engine.
// The supplied context is used for every classification call; callers that
// need per-request cancellation should build a fresh predicate per request.
func NewEnginePredicate(ctx context.Context, executor *runtime.Executor, engineID string) domain.WorkdayPredicate {
	p := &EnginePredicate{executor: executor, engineID: engineID, ctx: ctx}
	return p.IsWorkday
}

// IsWorkday classifies a date by delegating to the wrapped engine, which may
// run in-process, out-of-process via the plugin transport, or be tripped by
// its circuit breaker if it has been failing.
func (p *EnginePredicate) IsWorkday(date time.Time) (bool, error) {
	out, err := p.executor.ExecuteIsWorkday(p.ctx, p.engineID, types.IsWorkdayInput{Date: date})
	if err != nil {
		return false, fmt.Errorf("workday engine %s: %w", p.engineID, err)
	}
	return out.Workday, nil
}
