// Package postgres is the Entity Store on PostgreSQL. Back-reference
// mutations and the rating and favorite updates are single UPDATE
// statements, so concurrent callers never lose each other's writes.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/marshallshelly/bazaar/internal/models"
	"github.com/marshallshelly/bazaar/internal/store"
	"github.com/marshallshelly/bazaar/pkg/builder"
	"github.com/marshallshelly/bazaar/pkg/runtime"
)

// Store is a store.Store backed by a builder handle.
type Store struct {
	db *builder.DB
}

var _ store.Store = (*Store)(nil)

// New wraps a connected runtime DB. The models must be registered first.
func New(db *runtime.DB) *Store {
	return &Store{db: builder.New(db)}
}

func (s *Store) Users() store.UserStore          { return users{s.db} }
func (s *Store) Categories() store.CategoryStore { return categories{s.db} }
func (s *Store) Products() store.ProductStore    { return products{s.db} }
func (s *Store) Orders() store.OrderStore        { return orders{s.db} }

// WithinTx runs fn in a database transaction, or in a savepoint when s is
// already transactional.
func (s *Store) WithinTx(ctx context.Context, fn func(store.Store) error) error {
	return s.db.WithTx(ctx, func(tx *builder.DB) error {
		return fn(&Store{db: tx})
	})
}

// translate maps storage errors onto the domain kinds.
func translate(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	switch {
	case errors.Is(err, runtime.ErrNotFound):
		return fmt.Errorf("%s: %w", msg, models.ErrNotFound)
	case errors.Is(err, runtime.ErrDuplicateKey):
		return fmt.Errorf("%s: %w: %v", msg, models.ErrConflict, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// one returns the single row of a RETURNING statement or ErrNotFound.
func one[T any](rows []T, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, runtime.ErrNotFound
	}
	return &rows[0], nil
}

// withLock adds the row lock matching mode.
func withLock[T any](q *builder.SelectQuery[T], mode store.LockMode) *builder.SelectQuery[T] {
	if mode == store.LockUpdate {
		return q.ForUpdate()
	}
	return q.ForKeyShare()
}
