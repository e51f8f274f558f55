package domain

import "fmt"

// Task is an immutable unit of engineering work, carrying its own effort,
// concurrency cap, and prerequisites. Tasks are authored externally and
// never mutated once a scheduling run begins.
type Task struct {
	name                  string
	description           string
	references            []string
	pointOfContact        string
	effort                int
	parallelizationFactor int
	dependencies          []*Task
}

// NewTask validates and constructs a Task. Name must be non-empty, effort
// and parallelizationFactor must both be at least 1.
func NewTask(name, description string, references []string, pointOfContact string, effort, parallelizationFactor int, dependencies []*Task) (*Task, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidTask)
	}
	if effort < 1 {
		return nil, fmt.Errorf("%w: effort must be >= 1, got %d", ErrInvalidTask, effort)
	}
	if parallelizationFactor < 1 {
		return nil, fmt.Errorf("%w: parallelization_factor must be >= 1, got %d", ErrInvalidTask, parallelizationFactor)
	}

	deps := make([]*Task, len(dependencies))
	copy(deps, dependencies)

	return &Task{
		name:                  name,
		description:           description,
		references:            references,
		pointOfContact:        pointOfContact,
		effort:                effort,
		parallelizationFactor: parallelizationFactor,
		dependencies:          deps,
	}, nil
}

// Name is the task's identity key, unique within a scheduling run.
func (t *Task) Name() string { return t.name }

// Description is an auxiliary field that does not affect scheduling.
func (t *Task) Description() string { return t.description }

// References is an auxiliary field that does not affect scheduling.
func (t *Task) References() []string { return t.references }

// PointOfContact is an auxiliary field that does not affect scheduling.
func (t *Task) PointOfContact() string { return t.pointOfContact }

// Effort is the total engineer-days required to complete the task.
func (t *Task) Effort() int { return t.effort }

// ParallelizationFactor is the maximum number of engineers that may work
// on this task concurrently on any single day.
func (t *Task) ParallelizationFactor() int { return t.parallelizationFactor }

// Dependencies are the tasks that must be strictly ahead in time.
func (t *Task) Dependencies() []*Task { return t.dependencies }

// Equals compares two tasks by name, their identity key.
func (t *Task) Equals(other *Task) bool {
	if other == nil {
		return false
	}
	return t.name == other.name
}

// OptimisticDuration is the shortest span, in working days, a task could
// occupy given teamSize concurrent engineers: effort / min(teamSize, pf),
// integer floor division.
func (t *Task) OptimisticDuration(teamSize int) int {
	concurrency := t.parallelizationFactor
	if teamSize < concurrency {
		concurrency = teamSize
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return t.effort / concurrency
}

// EffectiveCapacity is the per-task, per-day engineer cap once the team's
// total size is taken into account: min(parallelization_factor, team.size).
func (t *Task) EffectiveCapacity(teamSize int) int {
	if teamSize < t.parallelizationFactor {
		return teamSize
	}
	return t.parallelizationFactor
}
