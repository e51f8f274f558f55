package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/pacer/internal/shared/domain"
	"github.com/google/uuid"
)

// RunStatus is the lifecycle state of a scheduling run.
type RunStatus string

const (
	// StatusPending means the run has been recorded but not yet solved.
	StatusPending RunStatus = "pending"

	// StatusCompleted means the run produced a feasible plan.
	StatusCompleted RunStatus = "completed"

	// StatusInfeasible means the solver proved no plan exists within
	// the configured horizon.
	StatusInfeasible RunStatus = "infeasible"

	// StatusFailed means the run ended in a validation or solver error
	// unrelated to feasibility (CycleDetected, InvalidTask, SolverError).
	StatusFailed RunStatus = "failed"
)

// Run is the aggregate root recording one invocation of the scheduler
// against a given task graph, team, and configuration. It exists so
// identical inputs can short-circuit through a cache and so history can
// be queried without re-solving.
type Run struct {
	sharedDomain.BaseAggregateRoot
	userID         uuid.UUID
	inputsDigest   string
	status         RunStatus
	objectiveValue int
	taskCount      int
	makespan       int
	failureReason  string
	completedAt    time.Time
}

// NewRun records a pending run for a given inputs digest.
func NewRun(userID uuid.UUID, inputsDigest string, taskCount int) *Run {
	r := &Run{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		userID:            userID,
		inputsDigest:      inputsDigest,
		status:            StatusPending,
		taskCount:         taskCount,
	}
	r.AddDomainEvent(NewRunStarted(r))
	return r
}

// RehydrateRun reconstructs a Run from persisted state, without emitting
// domain events.
func RehydrateRun(
	id uuid.UUID,
	userID uuid.UUID,
	inputsDigest string,
	status RunStatus,
	objectiveValue, taskCount, makespan int,
	failureReason string,
	completedAt time.Time,
	createdAt, updatedAt time.Time,
) *Run {
	entity := sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt)
	return &Run{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(entity, 0),
		userID:            userID,
		inputsDigest:      inputsDigest,
		status:            status,
		objectiveValue:    objectiveValue,
		taskCount:         taskCount,
		makespan:          makespan,
		failureReason:     failureReason,
		completedAt:       completedAt,
	}
}

func (r *Run) UserID() uuid.UUID        { return r.userID }
func (r *Run) InputsDigest() string     { return r.inputsDigest }
func (r *Run) Status() RunStatus        { return r.status }
func (r *Run) ObjectiveValue() int      { return r.objectiveValue }
func (r *Run) TaskCount() int           { return r.taskCount }
func (r *Run) Makespan() int            { return r.makespan }
func (r *Run) FailureReason() string    { return r.failureReason }
func (r *Run) CompletedAt() time.Time   { return r.completedAt }

// Complete transitions a pending run to StatusCompleted, recording the
// winning objective value and makespan.
func (r *Run) Complete(objectiveValue, makespan int) {
	r.status = StatusCompleted
	r.objectiveValue = objectiveValue
	r.makespan = makespan
	r.completedAt = time.Now().UTC()
	r.Touch()
	r.AddDomainEvent(NewRunCompleted(r))
}

// MarkInfeasible transitions a pending run to StatusInfeasible.
func (r *Run) MarkInfeasible() {
	r.status = StatusInfeasible
	r.completedAt = time.Now().UTC()
	r.Touch()
	r.AddDomainEvent(NewRunFailed(r, ErrInfeasible.Error()))
}

// Fail transitions a pending run to StatusFailed, recording the error
// that ended it.
func (r *Run) Fail(reason string) {
	r.status = StatusFailed
	r.failureReason = reason
	r.completedAt = time.Now().UTC()
	r.Touch()
	r.AddDomainEvent(NewRunFailed(r, reason))
}
