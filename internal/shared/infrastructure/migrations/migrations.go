// Package migrations applies schema changes directly through the shared
// database.Connection abstraction. No migration library in the
// dependency surface this module draws from (golang-migrate, goose, and
// similar) ships a driver-agnostic runner that works against both the
// pgx and modernc.org/sqlite drivers wired here, so schema statements
// are kept as a small ordered slice per driver and applied with plain
// Exec calls, the same shape abramin-kairos uses for its SQLite store.
package migrations

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/pacer/internal/shared/infrastructure/database"
)

// postgresStatements creates the scheduling_runs table and its lookup
// indexes. Statements are idempotent so Run is safe to call on every
// process start.
var postgresStatements = []string{
	`CREATE TABLE IF NOT EXISTS scheduling_runs (
		id              UUID PRIMARY KEY,
		user_id         UUID NOT NULL,
		inputs_digest   TEXT NOT NULL,
		status          TEXT NOT NULL,
		objective_value INTEGER NOT NULL DEFAULT 0,
		task_count      INTEGER NOT NULL DEFAULT 0,
		makespan        INTEGER NOT NULL DEFAULT 0,
		failure_reason  TEXT,
		completed_at    TIMESTAMPTZ,
		created_at      TIMESTAMPTZ NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scheduling_runs_user ON scheduling_runs(user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_scheduling_runs_digest ON scheduling_runs(user_id, inputs_digest, status)`,
}

var sqliteStatements = []string{
	`CREATE TABLE IF NOT EXISTS scheduling_runs (
		id              TEXT PRIMARY KEY,
		user_id         TEXT NOT NULL,
		inputs_digest   TEXT NOT NULL,
		status          TEXT NOT NULL,
		objective_value INTEGER NOT NULL DEFAULT 0,
		task_count      INTEGER NOT NULL DEFAULT 0,
		makespan        INTEGER NOT NULL DEFAULT 0,
		failure_reason  TEXT,
		completed_at    TEXT,
		created_at      TEXT NOT NULL,
		updated_at      TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scheduling_runs_user ON scheduling_runs(user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_scheduling_runs_digest ON scheduling_runs(user_id, inputs_digest, status)`,
}

// Run applies every pending schema statement for conn's driver.
func Run(ctx context.Context, conn database.Connection) error {
	var statements []string
	switch conn.Driver() {
	case database.DriverPostgres:
		statements = postgresStatements
	case database.DriverSQLite:
		statements = sqliteStatements
	default:
		return fmt.Errorf("migrations: unsupported driver %q", conn.Driver())
	}

	for i, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
