// Package rating folds user ratings into each product's running mean.
package rating

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/marshallshelly/bazaar/internal/models"
	"github.com/marshallshelly/bazaar/internal/store"
)

// Bounds of an accepted rating.
const (
	MinRate = 0
	MaxRate = 5
)

// Service rates products. Individual ratings are not stored, so a rating
// can be neither retracted nor attributed, and a user may rate repeatedly.
type Service struct {
	store store.Store
	log   logrus.FieldLogger
}

// New returns a Service over s.
func New(s store.Store, log logrus.FieldLogger) *Service {
	return &Service{store: s, log: log}
}

// Rate folds value into the product's mean:
//
//	rate' = (rate*count + value) / (count+1), count' = count+1
func (s *Service) Rate(ctx context.Context, productID string, value float64) (*models.Product, error) {
	if math.IsNaN(value) || value < MinRate || value > MaxRate {
		return nil, fmt.Errorf("rate %v outside [%d, %d]: %w", value, MinRate, MaxRate, models.ErrBadRequest)
	}

	p, err := s.store.Products().ApplyRating(ctx, productID, value)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"product_id": productID,
		"rate":       p.Rate,
		"count":      p.CountUserRate,
	}).Debug("product rated")
	return p, nil
}
