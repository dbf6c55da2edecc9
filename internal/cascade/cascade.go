// Package cascade deletes products, categories and accounts together with
// every reference other records hold to them.
//
// Each removal runs in one store transaction. Stored images are deleted
// after the transaction commits; a failed image delete is logged and never
// fails the removal.
package cascade

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/marshallshelly/bazaar/internal/auth"
	"github.com/marshallshelly/bazaar/internal/files"
	"github.com/marshallshelly/bazaar/internal/models"
	"github.com/marshallshelly/bazaar/internal/store"
)

// Service removes products, categories and accounts along with every
// reference to them.
type Service struct {
	store store.Store
	files files.Store
	creds auth.Credentials
	log   logrus.FieldLogger
}

// New returns a Service. creds re-checks the password on account removal.
func New(s store.Store, fs files.Store, creds auth.Credentials, log logrus.FieldLogger) *Service {
	return &Service{store: s, files: fs, creds: creds, log: log}
}

// RemoveProduct deletes a product owned by requesterID, unlinks it from its
// category and owner, and drops the orders placed on it.
func (s *Service) RemoveProduct(ctx context.Context, productID, requesterID string) error {
	var removed *models.Product
	var orders int64

	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		p, err := tx.Products().Get(ctx, productID)
		if err != nil {
			return err
		}
		if p.OwnerID != requesterID {
			return fmt.Errorf("product %s belongs to another user: %w", p.ID, models.ErrForbidden)
		}

		if _, err := tx.Products().Delete(ctx, p.ID); err != nil {
			return err
		}
		ids := []string{p.ID}
		if err := tx.Categories().PullProducts(ctx, p.CategoryID, ids); err != nil {
			return err
		}
		if err := tx.Users().PullProducts(ctx, p.OwnerID, ids); err != nil {
			return err
		}
		if orders, err = tx.Orders().DeleteByProducts(ctx, ids); err != nil {
			return err
		}

		removed = p
		return nil
	})
	if err != nil {
		return err
	}

	files.DeleteQuietly(ctx, s.files, s.log, removed.Image)
	s.log.WithFields(logrus.Fields{
		"product_id": productID,
		"user_id":    requesterID,
		"orders":     orders,
	}).Info("product removed")
	return nil
}

// RemoveCategory deletes a category, every product in it, and the orders
// on those products. Owners lose the deleted products from their listings.
func (s *Service) RemoveCategory(ctx context.Context, categoryID string) error {
	var category *models.Category
	var products []models.Product
	var orders int64

	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		var err error
		if category, err = tx.Categories().Delete(ctx, categoryID); err != nil {
			return err
		}
		if products, err = tx.Products().Find(ctx, store.ProductQuery{CategoryID: categoryID}); err != nil {
			return err
		}

		for owner, ids := range groupBy(products, func(p *models.Product) string { return p.OwnerID }) {
			if err := tx.Users().PullProducts(ctx, owner, ids); err != nil {
				return err
			}
		}

		ids := productIDs(products)
		if _, err := tx.Products().DeleteMany(ctx, ids); err != nil {
			return err
		}
		orders, err = tx.Orders().DeleteByProducts(ctx, ids)
		return err
	})
	if err != nil {
		return err
	}

	files.DeleteQuietly(ctx, s.files, s.log, append(productImages(products), category.Image)...)
	s.log.WithFields(logrus.Fields{
		"category_id": categoryID,
		"products":    len(products),
		"orders":      orders,
	}).Info("category removed")
	return nil
}

// RemoveAccount deletes a user after checking password against the stored
// hash. The user's products go with it, as do the user's favorites and
// every order the user placed or received.
func (s *Service) RemoveAccount(ctx context.Context, userID, password string) error {
	u, err := s.store.Users().Get(ctx, userID)
	if err != nil {
		return err
	}
	if !s.creds.Verify(password, u.PasswordHash) {
		return fmt.Errorf("credentials of user %s: %w", userID, models.ErrBadRequest)
	}

	var products []models.Product
	var orders int64

	err = s.store.WithinTx(ctx, func(tx store.Store) error {
		var err error
		if u, err = tx.Users().Delete(ctx, userID); err != nil {
			return err
		}
		if products, err = tx.Products().Find(ctx, store.ProductQuery{OwnerID: userID}); err != nil {
			return err
		}

		for category, ids := range groupBy(products, func(p *models.Product) string { return p.CategoryID }) {
			if err := tx.Categories().PullProducts(ctx, category, ids); err != nil {
				return err
			}
		}

		ids := productIDs(products)
		if _, err := tx.Products().DeleteMany(ctx, ids); err != nil {
			return err
		}
		if _, err := tx.Products().PullFavoriteEverywhere(ctx, userID); err != nil {
			return err
		}

		received, err := tx.Orders().DeleteByProducts(ctx, ids)
		if err != nil {
			return err
		}
		placed, err := tx.Orders().DeleteByBuyer(ctx, userID)
		if err != nil {
			return err
		}
		orders = received + placed
		return nil
	})
	if err != nil {
		return err
	}

	files.DeleteQuietly(ctx, s.files, s.log, append(productImages(products), u.Image)...)
	s.log.WithFields(logrus.Fields{
		"user_id":  userID,
		"products": len(products),
		"orders":   orders,
	}).Info("account removed")
	return nil
}

func groupBy(products []models.Product, key func(*models.Product) string) map[string][]string {
	out := make(map[string][]string)
	for i := range products {
		k := key(&products[i])
		out[k] = append(out[k], products[i].ID)
	}
	return out
}

func productIDs(products []models.Product) []string {
	ids := make([]string, len(products))
	for i := range products {
		ids[i] = products[i].ID
	}
	return ids
}

func productImages(products []models.Product) []*string {
	images := make([]*string, 0, len(products)+1)
	for i := range products {
		images = append(images, products[i].Image)
	}
	return images
}
