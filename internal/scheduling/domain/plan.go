package domain

import "time"

// ScheduledTask is the materialized output for one task: how many
// engineers are assigned on each working day, and the calendar
// equivalents once the plan's date mapping is attached. Mutable only
// during materialization; immutable thereafter.
type ScheduledTask struct {
	Task                    *Task
	DailyEngineerAllocation map[int]int // working-day index -> engineer count
	DateEngineerAllocation  map[time.Time]int
	StartDay                int
	EndDay                  int
	StartDate               time.Time
	EndDate                 time.Time
}

// NewScheduledTask builds a ScheduledTask from a task and its resolved
// working-day-index allocation, deriving StartDay/EndDay from the
// allocation's keys.
func NewScheduledTask(task *Task, allocation map[int]int) *ScheduledTask {
	st := &ScheduledTask{
		Task:                    task,
		DailyEngineerAllocation: allocation,
	}

	first := true
	for day := range allocation {
		if first || day < st.StartDay {
			st.StartDay = day
		}
		if first || day > st.EndDay {
			st.EndDay = day
		}
		first = false
	}

	return st
}

// TotalEffort sums the engineer-days allocated across all days.
func (st *ScheduledTask) TotalEffort() int {
	total := 0
	for _, n := range st.DailyEngineerAllocation {
		total += n
	}
	return total
}

// Plan is the final, ordered output of a scheduling run: one
// ScheduledTask per input task, the project start date, and the full
// working-day-index-to-calendar-date mapping used to align renderers.
type Plan struct {
	ScheduledTasks []*ScheduledTask
	StartDate      time.Time
	DaysToDate     map[int]time.Time
	ObjectiveValue int
}

// Makespan is the index of the last working day on which any chunk is
// scheduled, or -1 for an empty plan.
func (p *Plan) Makespan() int {
	makespan := -1
	for _, st := range p.ScheduledTasks {
		if st.EndDay > makespan {
			makespan = st.EndDay
		}
	}
	return makespan
}
