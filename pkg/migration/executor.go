package migration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marshallshelly/bazaar/pkg/runtime"
)

// Executor executes and tracks database migrations.
type Executor struct {
	pool   *pgxpool.Pool
	lockID int64 // PostgreSQL advisory lock ID
}

// NewExecutor creates a new migration executor.
func NewExecutor(pool *pgxpool.Pool) *Executor {
	return &Executor{
		pool:   pool,
		lockID: 7424312, // Default lock ID
	}
}

// Initialize creates the schema_migrations table if it doesn't exist.
func (e *Executor) Initialize(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(14) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			applied_at TIMESTAMPTZ,
			error TEXT
		)
	`
	if _, err := e.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	return nil
}

// Lock acquires an advisory lock to prevent concurrent migrations.
func (e *Executor) Lock(ctx context.Context) error {
	if _, err := e.pool.Exec(ctx, "SELECT pg_advisory_lock($1)", e.lockID); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	return nil
}

// Unlock releases the advisory lock.
func (e *Executor) Unlock(ctx context.Context) error {
	var released bool
	err := e.pool.QueryRow(ctx, "SELECT pg_advisory_unlock($1)", e.lockID).Scan(&released)
	if err != nil {
		return fmt.Errorf("failed to release migration lock: %w", err)
	}
	if !released {
		return fmt.Errorf("lock was not held")
	}
	return nil
}

// IsMigrationApplied checks if a specific migration has been applied.
func (e *Executor) IsMigrationApplied(ctx context.Context, version string) (bool, error) {
	var count int
	err := e.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM schema_migrations WHERE version = $1 AND status = 'applied'",
		version,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check migration status: %w", err)
	}
	return count > 0, nil
}

// Apply executes a migration's up SQL in one transaction. A failed
// statement leaves the migration recorded as failed with its error.
func (e *Executor) Apply(ctx context.Context, m Migration) error {
	applied, err := e.IsMigrationApplied(ctx, m.Version)
	if err != nil {
		return err
	}
	if applied {
		return fmt.Errorf("migration %s is already applied", m.Version)
	}

	err = e.withTransaction(ctx, func(tx pgx.Tx) error {
		for i, stmt := range splitSQL(m.UpSQL) {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("migration failed at statement %d: %w", i+1, err)
			}
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO schema_migrations (version, name, status, applied_at)
			VALUES ($1, $2, 'applied', $3)
			ON CONFLICT (version) DO UPDATE SET status = 'applied', applied_at = $3, error = NULL`,
			m.Version, m.Name, time.Now(),
		)
		if err != nil {
			return fmt.Errorf("failed to record migration: %w", err)
		}
		return nil
	})
	if err != nil {
		e.recordFailure(ctx, m, err)
		return &runtime.MigrationError{Version: m.Version, Message: "apply " + m.Name, Err: err}
	}
	return nil
}

// recordFailure runs outside the rolled-back transaction so the failure survives it.
func (e *Executor) recordFailure(ctx context.Context, m Migration, cause error) {
	_, _ = e.pool.Exec(ctx, `
		INSERT INTO schema_migrations (version, name, status, error)
		VALUES ($1, $2, 'failed', $3)
		ON CONFLICT (version) DO UPDATE SET status = 'failed', error = $3`,
		m.Version, m.Name, cause.Error(),
	)
}

// Rollback executes a migration's down SQL and removes its record.
func (e *Executor) Rollback(ctx context.Context, m Migration) error {
	applied, err := e.IsMigrationApplied(ctx, m.Version)
	if err != nil {
		return err
	}
	if !applied {
		return fmt.Errorf("migration %s is not applied", m.Version)
	}

	return e.withTransaction(ctx, func(tx pgx.Tx) error {
		for i, stmt := range splitSQL(m.DownSQL) {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("rollback failed at statement %d: %w", i+1, err)
			}
		}
		if _, err := tx.Exec(ctx, "DELETE FROM schema_migrations WHERE version = $1", m.Version); err != nil {
			return fmt.Errorf("failed to delete migration record: %w", err)
		}
		return nil
	})
}

// ApplyAll applies every pending migration under the advisory lock and
// returns the versions it applied.
func (e *Executor) ApplyAll(ctx context.Context, migrations []Migration) ([]string, error) {
	if err := e.Initialize(ctx); err != nil {
		return nil, err
	}
	if err := e.Lock(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = e.Unlock(context.WithoutCancel(ctx)) }()

	var applied []string
	for _, m := range migrations {
		done, err := e.IsMigrationApplied(ctx, m.Version)
		if err != nil {
			return applied, err
		}
		if done {
			continue
		}
		if err := e.Apply(ctx, m); err != nil {
			return applied, fmt.Errorf("failed to apply migration %s: %w", m.Version, err)
		}
		applied = append(applied, m.Version)
	}
	return applied, nil
}

// GetStatus returns the status of each known migration.
func (e *Executor) GetStatus(ctx context.Context, migrations []Migration) ([]MigrationRecord, error) {
	if err := e.Initialize(ctx); err != nil {
		return nil, err
	}

	rows, err := e.pool.Query(ctx, `
		SELECT version, name, status, applied_at, error
		FROM schema_migrations
		ORDER BY version ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (MigrationRecord, error) {
		var r MigrationRecord
		err := row.Scan(&r.Version, &r.Name, &r.Status, &r.AppliedAt, &r.Error)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan migration record: %w", err)
	}

	known := make(map[string]MigrationRecord, len(records))
	for _, r := range records {
		known[r.Version] = r
	}

	status := make([]MigrationRecord, 0, len(migrations))
	for _, m := range migrations {
		if r, ok := known[m.Version]; ok {
			status = append(status, r)
			continue
		}
		status = append(status, MigrationRecord{Version: m.Version, Name: m.Name, Status: StatusPending})
	}
	return status, nil
}

func (e *Executor) withTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// splitSQL splits a SQL string into statements on semicolons, dropping
// comment lines. Statements must not contain literal semicolons.
func splitSQL(sql string) []string {
	var cleaned []string
	for _, line := range strings.Split(sql, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		cleaned = append(cleaned, line)
	}

	var result []string
	for _, stmt := range strings.Split(strings.Join(cleaned, "\n"), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			result = append(result, stmt)
		}
	}
	return result
}
