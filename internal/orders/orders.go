// Package orders manages purchase requests sent by buyers to product owners.
package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/marshallshelly/bazaar/internal/catalog"
	"github.com/marshallshelly/bazaar/internal/models"
	"github.com/marshallshelly/bazaar/internal/store"
)

// Service creates, lists and decides orders.
type Service struct {
	store   store.Store
	catalog *catalog.Service
	log     logrus.FieldLogger
	now     func() time.Time
}

// New returns a Service. c resolves the ordered products.
func New(s store.Store, c *catalog.Service, log logrus.FieldLogger) *Service {
	return &Service{store: s, catalog: c, log: log, now: time.Now}
}

// Create places a pending order by buyerID on productID. The product's
// category and owner must resolve. The buyer and product rows are locked
// against deletion while the order is written: a concurrent removal of
// either one waits and then deletes the order, or wins and Create fails
// with models.ErrNotFound.
func (s *Service) Create(ctx context.Context, productID, buyerID string) (*models.OrderView, error) {
	entry, err := s.catalog.Get(ctx, buyerID, productID)
	if err != nil {
		return nil, err
	}

	var (
		buyer *models.User
		o     models.Order
	)
	err = s.store.WithinTx(ctx, func(tx store.Store) error {
		var err error
		if buyer, err = tx.Users().Lock(ctx, buyerID, store.LockExists); err != nil {
			return err
		}
		if _, err = tx.Products().Lock(ctx, productID, store.LockExists); err != nil {
			return err
		}
		o = models.Order{
			ID:        uuid.NewString(),
			State:     models.OrderPending,
			ProductID: productID,
			BuyerID:   buyer.ID,
			CreatedAt: s.now().UTC(),
		}
		return tx.Orders().Create(ctx, &o)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id":   o.ID,
		"product_id": productID,
		"user_id":    buyerID,
	}).Info("order created")

	return &models.OrderView{
		ID:        o.ID,
		State:     o.State,
		CreatedAt: o.CreatedAt,
		Product:   *entry,
		Sender:    buyer.Summary(),
	}, nil
}

// ListAsSender returns the orders userID placed, newest first.
func (s *Service) ListAsSender(ctx context.Context, userID string) ([]models.OrderView, error) {
	orders, err := s.store.Orders().FindByBuyer(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, userID, orders)
}

// ListAsReceiver returns the orders placed on products userID owns, newest
// first.
func (s *Service) ListAsReceiver(ctx context.Context, userID string) ([]models.OrderView, error) {
	owned, err := s.store.Products().Find(ctx, store.ProductQuery{OwnerID: userID})
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(owned))
	for i := range owned {
		ids[i] = owned[i].ID
	}
	orders, err := s.store.Orders().FindByProducts(ctx, ids)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, userID, orders)
}

// Update moves an order to state. Only the owner of the ordered product may
// do so, and only along a legal transition.
func (s *Service) Update(ctx context.Context, orderID string, state models.OrderState, requesterID string) (*models.OrderView, error) {
	o, err := s.store.Orders().Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	entry, err := s.catalog.Get(ctx, requesterID, o.ProductID)
	if err != nil {
		return nil, err
	}
	buyer, err := s.store.Users().Get(ctx, o.BuyerID)
	if err != nil {
		return nil, fmt.Errorf("buyer of order %s: %w", o.ID, err)
	}

	if entry.Owner.ID != requesterID {
		return nil, fmt.Errorf("order %s belongs to another seller: %w", o.ID, models.ErrForbidden)
	}
	if !o.State.CanTransition(state) {
		return nil, fmt.Errorf("order %s: %s -> %s: %w", o.ID, o.State, state, models.ErrConflict)
	}

	updated, err := s.store.Orders().UpdateState(ctx, o.ID, o.State, state)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id": o.ID,
		"from":     o.State,
		"to":       updated.State,
	}).Info("order state changed")

	return &models.OrderView{
		ID:        updated.ID,
		State:     updated.State,
		CreatedAt: updated.CreatedAt,
		Product:   *entry,
		Sender:    buyer.Summary(),
	}, nil
}

// views joins orders with their products and buyers. Orders whose product
// or buyer no longer exists are dropped.
func (s *Service) views(ctx context.Context, viewerID string, orders []models.Order) ([]models.OrderView, error) {
	out := make([]models.OrderView, 0, len(orders))
	if len(orders) == 0 {
		return out, nil
	}

	productIDs := make([]string, 0, len(orders))
	buyerIDs := make([]string, 0, len(orders))
	for _, o := range orders {
		productIDs = append(productIDs, o.ProductID)
		buyerIDs = append(buyerIDs, o.BuyerID)
	}

	products, err := s.store.Products().Find(ctx, store.ProductQuery{IDs: productIDs})
	if err != nil {
		return nil, err
	}
	entries, err := s.catalog.Entries(ctx, viewerID, products)
	if err != nil {
		return nil, err
	}
	buyers, err := s.store.Users().FindByIDs(ctx, buyerIDs)
	if err != nil {
		return nil, err
	}

	entryByID := make(map[string]models.CatalogEntry, len(entries))
	for _, e := range entries {
		entryByID[e.ID] = e
	}
	buyerByID := make(map[string]models.UserSummary, len(buyers))
	for i := range buyers {
		buyerByID[buyers[i].ID] = buyers[i].Summary()
	}

	for _, o := range orders {
		entry, ok := entryByID[o.ProductID]
		if !ok {
			continue
		}
		sender, ok := buyerByID[o.BuyerID]
		if !ok {
			continue
		}
		out = append(out, models.OrderView{
			ID:        o.ID,
			State:     o.State,
			CreatedAt: o.CreatedAt,
			Product:   entry,
			Sender:    sender,
		})
	}
	return out, nil
}
