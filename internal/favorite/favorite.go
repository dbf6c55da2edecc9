// Package favorite maintains which users favorited which products.
package favorite

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/marshallshelly/bazaar/internal/store"
)

// Result tells which way a toggle went.
type Result string

const (
	Added   Result = "added"
	Removed Result = "removed"
)

// Service toggles favorites.
type Service struct {
	store store.Store
	log   logrus.FieldLogger
}

// New returns a Service over s.
func New(s store.Store, log logrus.FieldLogger) *Service {
	return &Service{store: s, log: log}
}

// Toggle adds userID to the product's favorites, or removes it if present.
// Both the product and the user must exist. The user row stays locked
// against deletion until the toggle commits, so an account removal either
// sees the new favorite or makes the toggle fail.
func (s *Service) Toggle(ctx context.Context, productID, userID string) (Result, error) {
	var added bool
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		if _, err := tx.Users().Lock(ctx, userID, store.LockExists); err != nil {
			return err
		}
		var err error
		added, err = tx.Products().ToggleFavorite(ctx, productID, userID)
		return err
	})
	if err != nil {
		return "", err
	}

	result := Removed
	if added {
		result = Added
	}
	s.log.WithFields(logrus.Fields{
		"product_id": productID,
		"user_id":    userID,
		"result":     result,
	}).Debug("favorite toggled")
	return result, nil
}
