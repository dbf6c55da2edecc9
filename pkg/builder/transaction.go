package builder

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/marshallshelly/bazaar/pkg/runtime"
)

// Tx wraps a pgx transaction and satisfies Querier.
type Tx struct {
	tx         pgx.Tx
	closed     bool
	savepoints int
}

// DB returns a builder handle whose queries run inside the transaction.
func (t *Tx) DB() *DB {
	return &DB{q: t, tx: t}
}

// Exec executes a statement inside the transaction.
func (t *Tx) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	if t.closed {
		return 0, runtime.ErrTransactionClosed
	}
	result, err := t.tx.Exec(ctx, sql, args...)
	if err != nil {
		return 0, &runtime.QueryError{Query: sql, Err: err}
	}
	return result.RowsAffected(), nil
}

// Query executes a query inside the transaction.
func (t *Tx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if t.closed {
		return nil, runtime.ErrTransactionClosed
	}
	rows, err := t.tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, &runtime.QueryError{Query: sql, Err: err}
	}
	return rows, nil
}

// QueryRow executes a single-row query inside the transaction.
func (t *Tx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return t.tx.QueryRow(ctx, sql, args...)
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	if t.closed {
		return runtime.ErrTransactionClosed
	}
	t.closed = true
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback rolls back the transaction.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.closed {
		return runtime.ErrTransactionClosed
	}
	t.closed = true
	if err := t.tx.Rollback(ctx); err != nil {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// Savepoint creates a savepoint within the transaction.
func (t *Tx) Savepoint(ctx context.Context, name string) error {
	if _, err := t.Exec(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to create savepoint %s: %w", name, err)
	}
	return nil
}

// RollbackToSavepoint rolls back to a savepoint.
func (t *Tx) RollbackToSavepoint(ctx context.Context, name string) error {
	if _, err := t.Exec(ctx, "ROLLBACK TO SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to rollback to savepoint %s: %w", name, err)
	}
	return nil
}

// ReleaseSavepoint releases a savepoint.
func (t *Tx) ReleaseSavepoint(ctx context.Context, name string) error {
	if _, err := t.Exec(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to release savepoint %s: %w", name, err)
	}
	return nil
}

// nested runs fn between a savepoint and its release.
func (t *Tx) nested(ctx context.Context, fn func() error) error {
	t.savepoints++
	name := fmt.Sprintf("sp_%d", t.savepoints)

	if err := t.Savepoint(ctx, name); err != nil {
		return err
	}
	if err := fn(); err != nil {
		if rbErr := t.RollbackToSavepoint(ctx, name); rbErr != nil {
			return fmt.Errorf("%w (savepoint rollback failed: %v)", err, rbErr)
		}
		return err
	}
	return t.ReleaseSavepoint(ctx, name)
}
