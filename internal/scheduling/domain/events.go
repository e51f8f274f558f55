package domain

import (
	sharedDomain "github.com/felixgeelhaar/pacer/internal/shared/domain"
)

const (
	AggregateType = "Run"

	RoutingKeyRunStarted   = "scheduling.run.started"
	RoutingKeyRunCompleted = "scheduling.run.completed"
	RoutingKeyRunFailed    = "scheduling.run.failed"
)

// RunStarted is emitted when a scheduling run is recorded, before the
// solver is invoked.
type RunStarted struct {
	sharedDomain.BaseEvent
	InputsDigest string `json:"inputs_digest"`
	TaskCount    int    `json:"task_count"`
}

// NewRunStarted creates a RunStarted event.
func NewRunStarted(run *Run) RunStarted {
	return RunStarted{
		BaseEvent:    sharedDomain.NewBaseEvent(run.ID(), AggregateType, RoutingKeyRunStarted),
		InputsDigest: run.InputsDigest(),
		TaskCount:    run.TaskCount(),
	}
}

// RunCompleted is emitted when a run produces a feasible plan.
type RunCompleted struct {
	sharedDomain.BaseEvent
	InputsDigest   string `json:"inputs_digest"`
	ObjectiveValue int    `json:"objective_value"`
	Makespan       int    `json:"makespan"`
}

// NewRunCompleted creates a RunCompleted event.
func NewRunCompleted(run *Run) RunCompleted {
	return RunCompleted{
		BaseEvent:      sharedDomain.NewBaseEvent(run.ID(), AggregateType, RoutingKeyRunCompleted),
		InputsDigest:   run.InputsDigest(),
		ObjectiveValue: run.ObjectiveValue(),
		Makespan:       run.Makespan(),
	}
}

// RunFailed is emitted when a run ends in infeasibility or error.
type RunFailed struct {
	sharedDomain.BaseEvent
	InputsDigest string `json:"inputs_digest"`
	Reason       string `json:"reason"`
}

// NewRunFailed creates a RunFailed event.
func NewRunFailed(run *Run, reason string) RunFailed {
	return RunFailed{
		BaseEvent:    sharedDomain.NewBaseEvent(run.ID(), AggregateType, RoutingKeyRunFailed),
		InputsDigest: run.InputsDigest(),
		Reason:       reason,
	}
}
