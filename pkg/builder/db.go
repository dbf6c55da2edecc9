package builder

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/marshallshelly/bazaar/pkg/registry"
	"github.com/marshallshelly/bazaar/pkg/runtime"
)

// DB is a query builder handle bound either to a pool or to a transaction.
type DB struct {
	conn *runtime.DB
	q    Querier
	tx   *Tx
}

// New creates a new query builder DB from a runtime DB.
// A nil db is allowed for rendering SQL without executing it.
func New(db *runtime.DB) *DB {
	d := &DB{conn: db}
	if db != nil {
		d.q = db
	}
	return d
}

// Runtime returns the underlying runtime.DB, or nil inside a transaction.
func (d *DB) Runtime() *runtime.DB {
	return d.conn
}

// InTx reports whether d is bound to a transaction.
func (d *DB) InTx() bool {
	return d.tx != nil
}

// Exec runs a raw statement.
func (d *DB) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	if d.q == nil {
		return 0, runtime.ErrNoConnection
	}
	return d.q.Exec(ctx, sql, args...)
}

// Query runs a raw query.
func (d *DB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if d.q == nil {
		return nil, runtime.ErrNoConnection
	}
	return d.q.Query(ctx, sql, args...)
}

// QueryRow runs a raw single-row query.
func (d *DB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return d.q.QueryRow(ctx, sql, args...)
}

// Begin starts a new transaction on the pool.
func (d *DB) Begin(ctx context.Context) (*Tx, error) {
	if d.conn == nil {
		return nil, fmt.Errorf("begin transaction: %w", runtime.ErrNoConnection)
	}
	tx, err := d.conn.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

// WithTx runs fn inside a transaction. It commits when fn returns nil and
// rolls back otherwise. Called on a transaction-bound DB it nests through a
// savepoint instead of opening a second transaction.
func (d *DB) WithTx(ctx context.Context, fn func(*DB) error) error {
	if d.tx != nil {
		return d.tx.nested(ctx, func() error { return fn(d) })
	}

	tx, err := d.Begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(tx.DB()); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	return tx.Commit(ctx)
}

// Select creates a new type-safe SELECT query.
// Usage: builder.Select[User](db).Where(...).All(ctx)
func Select[T any](d *DB) *SelectQuery[T] {
	var model T
	table, err := registry.GetOrRegister(model)
	return &SelectQuery[T]{
		db:      d,
		table:   table,
		err:     err,
		columns: []string{"*"},
	}
}

// Insert creates a new type-safe INSERT query.
// Usage: builder.Insert[User](db).Values(user).ExecReturning(ctx)
func Insert[T any](d *DB) *InsertQuery[T] {
	var model T
	table, err := registry.GetOrRegister(model)
	return &InsertQuery[T]{db: d, table: table, err: err}
}

// Update creates a new type-safe UPDATE query.
// Usage: builder.Update[User](db).Set("name", "John").Where(...).Exec(ctx)
func Update[T any](d *DB) *UpdateQuery[T] {
	var model T
	table, err := registry.GetOrRegister(model)
	return &UpdateQuery[T]{db: d, table: table, err: err}
}

// Delete creates a new type-safe DELETE query.
// Usage: builder.Delete[User](db).Where(...).Exec(ctx)
func Delete[T any](d *DB) *DeleteQuery[T] {
	var model T
	table, err := registry.GetOrRegister(model)
	return &DeleteQuery[T]{db: d, table: table, err: err}
}

// tableErr reports a missing table the way every ToSQL does.
func tableErr(err error) error {
	if err != nil {
		return fmt.Errorf("table metadata not available: %w", err)
	}
	return fmt.Errorf("table metadata not available")
}
