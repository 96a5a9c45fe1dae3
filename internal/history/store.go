// internal/history/store.go
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/SAIKIRANREDDY98/JH/api/schemas"
)

// execer is the slice of the pgx pool API the store needs; tests substitute a
// mock pool for it.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

const createRunsTable = `
	CREATE TABLE IF NOT EXISTS application_runs (
		id TEXT PRIMARY KEY,
		target_url TEXT NOT NULL,
		status TEXT NOT NULL,
		total_filled INT NOT NULL,
		steps JSONB,
		errors JSONB,
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL
	);
`

const upsertRun = `
	INSERT INTO application_runs (id, target_url, status, total_filled, steps, errors, started_at, finished_at, recorded_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (id) DO UPDATE SET
		status = EXCLUDED.status,
		total_filled = EXCLUDED.total_filled,
		steps = EXCLUDED.steps,
		errors = EXCLUDED.errors,
		finished_at = EXCLUDED.finished_at,
		recorded_at = EXCLUDED.recorded_at;
`

// PostgresStore persists finished application runs. History is optional: the
// orchestrator treats a nil RunStore as "do not record".
type PostgresStore struct {
	pool   execer
	logger *zap.Logger
}

var _ schemas.RunStore = (*PostgresStore)(nil)

// NewPostgresStore connects to the DSN and ensures the runs table exists.
func NewPostgresStore(ctx context.Context, dsn string, logger *zap.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create history pool: %w", err)
	}
	store := &PostgresStore{pool: pool, logger: logger.Named("history")}
	if err := store.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// newWithPool wires an arbitrary pool implementation; used by tests.
func newWithPool(pool execer, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{pool: pool, logger: logger.Named("history")}
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createRunsTable); err != nil {
		return fmt.Errorf("failed to ensure runs table: %w", err)
	}
	return nil
}

// SaveRun upserts the run so a retried save after a transient failure never
// duplicates history.
func (s *PostgresStore) SaveRun(ctx context.Context, run *schemas.ApplicationRun) error {
	steps, err := json.Marshal(run.Steps)
	if err != nil {
		return fmt.Errorf("failed to marshal run steps: %w", err)
	}
	errs, err := json.Marshal(run.Errors)
	if err != nil {
		return fmt.Errorf("failed to marshal run errors: %w", err)
	}

	_, err = s.pool.Exec(ctx, upsertRun,
		run.ID, run.TargetURL, run.Status, run.TotalFilled,
		steps, errs, run.StartedAt, run.FinishedAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}

	s.logger.Debug("Recorded application run.",
		zap.String("run_id", run.ID), zap.String("status", run.Status))
	return nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}
