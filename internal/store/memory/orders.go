package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/marshallshelly/bazaar/internal/models"
)

type orders struct{ v *view }

func (s orders) Create(_ context.Context, o *models.Order) error {
	defer s.v.lock()()

	if _, ok := s.v.d.orders[o.ID]; ok {
		return fmt.Errorf("order %s: %w", o.ID, models.ErrConflict)
	}
	s.v.d.orders[o.ID] = *o
	return nil
}

func (s orders) Get(_ context.Context, id string) (*models.Order, error) {
	defer s.v.lock()()

	o, ok := s.v.d.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, models.ErrNotFound)
	}
	return &o, nil
}

func (s orders) FindByBuyer(_ context.Context, buyerID string) ([]models.Order, error) {
	defer s.v.lock()()

	return s.filter(func(o models.Order) bool { return o.BuyerID == buyerID }), nil
}

func (s orders) FindByProducts(_ context.Context, productIDs []string) ([]models.Order, error) {
	defer s.v.lock()()

	return s.filter(func(o models.Order) bool { return slices.Contains(productIDs, o.ProductID) }), nil
}

// filter must be called with the lock held.
func (s orders) filter(keep func(models.Order) bool) []models.Order {
	var out []models.Order
	for _, o := range s.v.d.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	slices.SortFunc(out, func(a, b models.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return out
}

func (s orders) UpdateState(_ context.Context, id string, from, to models.OrderState) (*models.Order, error) {
	defer s.v.lock()()

	o, ok := s.v.d.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, models.ErrNotFound)
	}
	if o.State != from {
		return nil, fmt.Errorf("order %s is %s, not %s: %w", id, o.State, from, models.ErrConflict)
	}
	o.State = to
	s.v.d.orders[id] = o
	return &o, nil
}

func (s orders) DeleteByBuyer(_ context.Context, buyerID string) (int64, error) {
	defer s.v.lock()()

	return s.deleteWhere(func(o models.Order) bool { return o.BuyerID == buyerID }), nil
}

func (s orders) DeleteByProducts(_ context.Context, productIDs []string) (int64, error) {
	defer s.v.lock()()

	return s.deleteWhere(func(o models.Order) bool { return slices.Contains(productIDs, o.ProductID) }), nil
}

func (s orders) deleteWhere(match func(models.Order) bool) int64 {
	var n int64
	for id, o := range s.v.d.orders {
		if match(o) {
			delete(s.v.d.orders, id)
			n++
		}
	}
	return n
}
