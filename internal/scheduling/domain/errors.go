package domain

import "errors"

// ErrInvalidTask is returned when a Task fails its structural invariants.
var ErrInvalidTask = errors.New("invalid task")

// ErrInvalidTeam is returned when a Team fails its structural invariants.
var ErrInvalidTeam = errors.New("invalid team")

// ErrCycleDetected is returned by graph validation when the dependency
// graph contains a cycle. Raised before any model construction.
var ErrCycleDetected = errors.New("cycle detected in task dependency graph")

// ErrInfeasible is returned by the solver when no assignment of chunks to
// working days satisfies the constraints within the configured horizon.
var ErrInfeasible = errors.New("no feasible schedule within horizon")

// ErrSolverError wraps an unexpected failure inside the solver driver
// itself, as distinct from a proven-infeasible model.
var ErrSolverError = errors.New("solver error")

// ErrInvalidStartDate is returned when the configured project start date
// does not satisfy the workday predicate. The scheduler never silently
// advances the start date to the next workday.
var ErrInvalidStartDate = errors.New("start date is not a workday")

// ErrRunNotFound is returned when a run lookup by ID or inputs digest
// matches no stored run.
var ErrRunNotFound = errors.New("run not found")
