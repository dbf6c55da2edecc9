// Package memory is an in-process Entity Store. Transactions work on a deep
// copy of the dataset that replaces the live one on commit.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/marshallshelly/bazaar/internal/models"
	"github.com/marshallshelly/bazaar/internal/store"
)

type dataset struct {
	users      map[string]models.User
	categories map[string]models.Category
	products   map[string]models.Product
	orders     map[string]models.Order
}

func newDataset() *dataset {
	return &dataset{
		users:      make(map[string]models.User),
		categories: make(map[string]models.Category),
		products:   make(map[string]models.Product),
		orders:     make(map[string]models.Order),
	}
}

func (d *dataset) clone() *dataset {
	c := newDataset()
	for id, u := range d.users {
		c.users[id] = cloneUser(u)
	}
	for id, cat := range d.categories {
		c.categories[id] = cloneCategory(cat)
	}
	for id, p := range d.products {
		c.products[id] = cloneProduct(p)
	}
	for id, o := range d.orders {
		c.orders[id] = o
	}
	return c
}

func cloneUser(u models.User) models.User {
	u.ProductIDs = slices.Clone(u.ProductIDs)
	return u
}

func cloneCategory(c models.Category) models.Category {
	c.ProductIDs = slices.Clone(c.ProductIDs)
	return c
}

func cloneProduct(p models.Product) models.Product {
	p.FavoritedBy = slices.Clone(p.FavoritedBy)
	return p
}

// view is the dataset seen by one Store handle. The root view guards the
// dataset with mu; a transactional view has no lock of its own because the
// transaction holds the root lock for its whole lifetime.
type view struct {
	mu *sync.Mutex
	d  *dataset
}

func (v *view) lock() func() {
	if v.mu == nil {
		return func() {}
	}
	v.mu.Lock()
	return v.mu.Unlock
}

// Store is a store.Store kept in memory.
type Store struct {
	v *view
}

var _ store.Store = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{v: &view{mu: &sync.Mutex{}, d: newDataset()}}
}

func (s *Store) Users() store.UserStore          { return users{s.v} }
func (s *Store) Categories() store.CategoryStore { return categories{s.v} }
func (s *Store) Products() store.ProductStore    { return products{s.v} }
func (s *Store) Orders() store.OrderStore        { return orders{s.v} }

// WithinTx runs fn on a copy of the dataset and publishes the copy when fn
// succeeds. Other callers block until the transaction ends.
func (s *Store) WithinTx(ctx context.Context, fn func(store.Store) error) error {
	if s.v.mu == nil {
		// Nested: restore the snapshot on failure, like a savepoint.
		snapshot := s.v.d.clone()
		if err := fn(s); err != nil {
			s.v.d = snapshot
			return err
		}
		return nil
	}

	s.v.mu.Lock()
	defer s.v.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &view{d: s.v.d.clone()}
	if err := fn(&Store{v: tx}); err != nil {
		return err
	}
	s.v.d = tx.d
	return nil
}

// pull returns ids without any element of remove, preserving order.
func pull(ids, remove []string) []string {
	return slices.DeleteFunc(slices.Clone(ids), func(id string) bool {
		return slices.Contains(remove, id)
	})
}
