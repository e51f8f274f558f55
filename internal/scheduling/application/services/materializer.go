package services

import (
	"time"

	domain "github.com/felixgeelhaar/pacer/internal/scheduling/domain"
)

// materialize joins the solver's assignments back onto tasks and
// calendar dates, in the input order, and computes the composite
// objective value for the resulting plan.
func materialize(tasks []*domain.Task, team *domain.Team, startDate time.Time, config domain.SchedulerConfig, assignments map[string]assignment) (*domain.Plan, error) {
	scheduledTasks := make([]*domain.ScheduledTask, 0, len(tasks))
	maxEndDay := 0

	for _, t := range tasks {
		alloc := assignments[t.Name()]
		st := scheduledTaskFrom(t, alloc)
		scheduledTasks = append(scheduledTasks, st)
		if st.EndDay > maxEndDay {
			maxEndDay = st.EndDay
		}
	}

	daysToDate, err := domain.DaysToDate(startDate, maxEndDay, config.WorkdayFilterOrDefault())
	if err != nil {
		return nil, err
	}

	for _, st := range scheduledTasks {
		st.StartDate = daysToDate[st.StartDay]
		st.EndDate = daysToDate[st.EndDay]
		st.DateEngineerAllocation = make(map[time.Time]int, len(st.DailyEngineerAllocation))
		for day, count := range st.DailyEngineerAllocation {
			st.DateEngineerAllocation[daysToDate[day]] = count
		}
	}

	plan := &domain.Plan{
		ScheduledTasks: scheduledTasks,
		StartDate:      startDate,
		DaysToDate:     daysToDate,
	}
	plan.ObjectiveValue = objectiveValue(plan, team, config)

	return plan, nil
}

// scheduledTaskFrom builds a ScheduledTask from one task's resolved
// day-by-day allocation.
func scheduledTaskFrom(t *domain.Task, alloc assignment) *domain.ScheduledTask {
	return domain.NewScheduledTask(t, map[int]int(alloc))
}

// objectiveValue computes the three-term composite objective: makespan,
// context-switching per task, and procrastination.
func objectiveValue(plan *domain.Plan, team *domain.Team, config domain.SchedulerConfig) int {
	timeTerm := config.CostOfTime * plan.Makespan()

	contextTerm := 0
	procrastinationTerm := 0
	for _, st := range plan.ScheduledTasks {
		if len(st.DailyEngineerAllocation) == 0 {
			continue
		}
		span := st.EndDay - st.StartDay
		optimistic := st.Task.OptimisticDuration(team.Size())
		contextTerm += config.CostOfContext * (span - optimistic)

		for day, count := range st.DailyEngineerAllocation {
			procrastinationTerm += config.CostOfProcrastination * day * count
		}
	}

	return timeTerm + contextTerm + procrastinationTerm
}
