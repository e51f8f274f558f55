// Package persistence adapts the scheduling domain's repository
// interfaces onto the shared driver-agnostic database abstraction, so a
// single implementation runs unmodified against PostgreSQL and SQLite.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/pacer/internal/scheduling/domain"
	sharedDB "github.com/felixgeelhaar/pacer/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// RunRepository persists scheduling runs through a database.Connection.
// Query text is written with SQLite's `?` placeholder convention and
// rewritten to PostgreSQL's `$1`-style positional syntax at call time,
// since that is the only dialect difference either backend requires here.
type RunRepository struct {
	conn   sharedDB.Connection
	driver sharedDB.Driver
}

// NewRunRepository creates a RunRepository bound to the given connection.
func NewRunRepository(conn sharedDB.Connection) *RunRepository {
	return &RunRepository{conn: conn, driver: conn.Driver()}
}

func (r *RunRepository) executor(ctx context.Context) sharedDB.Executor {
	return sharedDB.ExecutorFromContext(ctx, r.conn)
}

// rebind rewrites `?` placeholders to `$1`, `$2`, ... for PostgreSQL.
func (r *RunRepository) rebind(query string) string {
	if r.driver != sharedDB.DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// Save upserts a run's current state.
func (r *RunRepository) Save(ctx context.Context, run *domain.Run) error {
	query := r.rebind(`
		INSERT INTO scheduling_runs (
			id, user_id, inputs_digest, status, objective_value, task_count,
			makespan, failure_reason, completed_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			objective_value = excluded.objective_value,
			makespan = excluded.makespan,
			failure_reason = excluded.failure_reason,
			completed_at = excluded.completed_at,
			updated_at = excluded.updated_at
	`)

	var completedAt, failureReason any
	if !run.CompletedAt().IsZero() {
		completedAt = run.CompletedAt()
	}
	if run.FailureReason() != "" {
		failureReason = run.FailureReason()
	}

	_, err := r.executor(ctx).Exec(ctx, query,
		run.ID().String(),
		run.UserID().String(),
		run.InputsDigest(),
		string(run.Status()),
		run.ObjectiveValue(),
		run.TaskCount(),
		run.Makespan(),
		failureReason,
		completedAt,
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

// FindByID loads a run by its identifier.
func (r *RunRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	query := r.rebind(`
		SELECT id, user_id, inputs_digest, status, objective_value, task_count,
		       makespan, failure_reason, completed_at, created_at, updated_at
		FROM scheduling_runs WHERE id = ?
	`)
	row := r.executor(ctx).QueryRow(ctx, query, id.String())
	run, err := scanRun(row)
	if err != nil {
		if sharedDB.IsNoRows(err) {
			return nil, domain.ErrRunNotFound
		}
		return nil, fmt.Errorf("find run by id: %w", err)
	}
	return run, nil
}

// FindByInputsDigest looks up the most recent run for a user whose inputs
// hashed to the given digest, letting callers short-circuit re-solving
// identical task graphs.
func (r *RunRepository) FindByInputsDigest(ctx context.Context, userID uuid.UUID, digest string) (*domain.Run, error) {
	query := r.rebind(`
		SELECT id, user_id, inputs_digest, status, objective_value, task_count,
		       makespan, failure_reason, completed_at, created_at, updated_at
		FROM scheduling_runs
		WHERE user_id = ? AND inputs_digest = ? AND status = ?
		ORDER BY created_at DESC
		LIMIT 1
	`)
	row := r.executor(ctx).QueryRow(ctx, query, userID.String(), digest, string(domain.StatusCompleted))
	run, err := scanRun(row)
	if err != nil {
		if sharedDB.IsNoRows(err) {
			return nil, domain.ErrRunNotFound
		}
		return nil, fmt.Errorf("find run by inputs digest: %w", err)
	}
	return run, nil
}

// ListByUser returns a user's runs created at or after since, newest
// first, bounded by limit.
func (r *RunRepository) ListByUser(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]*domain.Run, error) {
	query := r.rebind(`
		SELECT id, user_id, inputs_digest, status, objective_value, task_count,
		       makespan, failure_reason, completed_at, created_at, updated_at
		FROM scheduling_runs
		WHERE user_id = ? AND created_at >= ?
		ORDER BY created_at DESC
		LIMIT ?
	`)
	rows, err := r.executor(ctx).Query(ctx, query, userID.String(), since, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs by user: %w", err)
	}
	defer rows.Close()

	var runs []*domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs by user: %w", err)
	}
	return runs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner) (*domain.Run, error) {
	var (
		id, userID, digest, status string
		objectiveValue, taskCount, makespan int
		failureReason                       sql.NullString
		completedAt                         sql.NullTime
		createdAt, updatedAt                time.Time
	)

	if err := s.Scan(&id, &userID, &digest, &status, &objectiveValue, &taskCount,
		&makespan, &failureReason, &completedAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	runID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse run id: %w", err)
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}

	return domain.RehydrateRun(
		runID, uid, digest, domain.RunStatus(status),
		objectiveValue, taskCount, makespan,
		failureReason.String, completedAt.Time, createdAt, updatedAt,
	), nil
}
