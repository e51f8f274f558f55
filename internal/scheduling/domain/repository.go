package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RunRepository defines persistence for scheduling runs. Implementations
// back onto Postgres (production) or SQLite (local, zero-config mode).
type RunRepository interface {
	// Save persists a run (create or update).
	Save(ctx context.Context, run *Run) error

	// FindByID finds a run by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Run, error)

	// FindByInputsDigest finds the most recent completed run for a user
	// whose inputs produced the given digest, used to short-circuit
	// identical scheduling requests via the plan cache.
	FindByInputsDigest(ctx context.Context, userID uuid.UUID, digest string) (*Run, error)

	// ListByUser returns a user's runs ordered most-recent first, for
	// history queries.
	ListByUser(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]*Run, error)
}

// PlanCache caches materialized plans by inputs digest so identical
// scheduling requests can skip re-solving.
type PlanCache interface {
	Get(ctx context.Context, digest string) (*Plan, bool, error)
	Set(ctx context.Context, digest string, plan *Plan, ttl time.Duration) error
}
