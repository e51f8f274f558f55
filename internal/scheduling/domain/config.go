package domain

// SchedulerConfig holds the tunable parameters of a scheduling run. All
// weights are integers so the objective stays in the integer domain.
type SchedulerConfig struct {
	// MaxDays bounds the horizon; too small a value yields ErrInfeasible.
	MaxDays int

	// CostOfTime weights the makespan term.
	CostOfTime int

	// CostOfContext weights the context-switching term.
	CostOfContext int

	// CostOfProcrastination weights the earliness-pressure term.
	CostOfProcrastination int

	// WorkdayFilter classifies calendar dates as working days. Defaults
	// to Monday-Friday when nil.
	WorkdayFilter WorkdayPredicate
}

// DefaultSchedulerConfig returns the documented default weights and
// horizon.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		MaxDays:               100,
		CostOfTime:            100,
		CostOfContext:         1,
		CostOfProcrastination: 1,
		WorkdayFilter:         DefaultWorkdayPredicate,
	}
}

// WorkdayFilterOrDefault returns the configured predicate, falling back to
// the Monday-Friday default when unset.
func (c SchedulerConfig) WorkdayFilterOrDefault() WorkdayPredicate {
	if c.WorkdayFilter != nil {
		return c.WorkdayFilter
	}
	return DefaultWorkdayPredicate
}
