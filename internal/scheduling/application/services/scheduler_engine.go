package services

import (
	"context"
	"time"

	domain "github.com/felixgeelhaar/pacer/internal/scheduling/domain"
)

// Schedule is the scheduler's single entry point: a pure function from
// a task graph, team, and start date to a Plan or an error. It holds no
// state across calls — every invocation rebuilds its model from
// scratch — and never returns a partial plan. The search honors ctx
// cancellation, since branch-and-bound over a large task graph can run
// long.
func Schedule(ctx context.Context, tasks []*domain.Task, team *domain.Team, startDate time.Time, config domain.SchedulerConfig) (*domain.Plan, error) {
	if team == nil {
		return nil, domain.ErrInvalidTeam
	}

	if len(tasks) == 0 {
		daysToDate, err := domain.DaysToDate(startDate, 0, config.WorkdayFilterOrDefault())
		if err != nil {
			return nil, err
		}
		return &domain.Plan{
			ScheduledTasks: nil,
			StartDate:      startDate,
			DaysToDate:     daysToDate,
		}, nil
	}

	m, err := buildModel(tasks, team, config)
	if err != nil {
		return nil, err
	}

	assignments, err := m.solve(ctx)
	if err != nil {
		return nil, err
	}

	return materialize(tasks, team, startDate, config, assignments)
}
