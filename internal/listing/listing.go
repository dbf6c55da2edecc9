// Package listing creates and edits categories and products, keeping the
// owner and category back-references in step with the product records.
package listing

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/marshallshelly/bazaar/internal/files"
	"github.com/marshallshelly/bazaar/internal/models"
	"github.com/marshallshelly/bazaar/internal/store"
)

// NewProduct is the input of CreateProduct.
type NewProduct struct {
	Name         string
	Description  string
	Price        float64
	CategoryName string
}

// ProductPatch changes the non-nil fields of a product.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *float64
}

// Service creates and edits catalog records.
type Service struct {
	store store.Store
	files files.Store
	log   logrus.FieldLogger
	now   func() time.Time
}

// New returns a Service storing images in fs.
func New(s store.Store, fs files.Store, log logrus.FieldLogger) *Service {
	return &Service{store: s, files: fs, log: log, now: time.Now}
}

// CreateCategory adds a category. Names are unique.
func (s *Service) CreateCategory(ctx context.Context, name string, image *files.Upload) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("category name is required: %w", models.ErrBadRequest)
	}

	c := models.Category{ID: uuid.NewString(), Name: name, ProductIDs: []string{}}
	saved, err := s.save(ctx, image)
	if err != nil {
		return nil, err
	}
	c.Image = saved

	if err := s.store.Categories().Create(ctx, &c); err != nil {
		files.DeleteQuietly(ctx, s.files, s.log, saved)
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"category_id": c.ID, "name": c.Name}).Info("category created")
	return &c, nil
}

// ListCategories returns every category ordered by name.
func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.Categories().List(ctx)
}

// GetCategory returns one category.
func (s *Service) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	return s.store.Categories().Get(ctx, id)
}

// CreateProduct lists a new product for ownerID under the named category.
func (s *Service) CreateProduct(ctx context.Context, ownerID string, in NewProduct, image *files.Upload) (*models.Product, error) {
	if err := validate(in.Name, in.Price); err != nil {
		return nil, err
	}

	saved, err := s.save(ctx, image)
	if err != nil {
		return nil, err
	}

	p := models.Product{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Image:       saved,
		Rate:        models.InitialRate,
		OwnerID:     ownerID,
		FavoritedBy: []string{},
		CreatedAt:   s.now().UTC(),
	}

	err = s.store.WithinTx(ctx, func(tx store.Store) error {
		if _, err := tx.Users().Lock(ctx, ownerID, store.LockExists); err != nil {
			return err
		}
		c, err := tx.Categories().FindByName(ctx, in.CategoryName)
		if err != nil {
			return err
		}
		p.CategoryID = c.ID

		if err := tx.Products().Create(ctx, &p); err != nil {
			return err
		}
		if err := tx.Categories().PushProduct(ctx, c.ID, p.ID); err != nil {
			return err
		}
		return tx.Users().PushProduct(ctx, ownerID, p.ID)
	})
	if err != nil {
		files.DeleteQuietly(ctx, s.files, s.log, saved)
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"product_id":  p.ID,
		"user_id":     ownerID,
		"category_id": p.CategoryID,
	}).Info("product created")
	return &p, nil
}

// UpdateProduct applies patch to a product owned by requesterID. The row is
// locked while the patch is applied. A new image replaces the stored one,
// which is then deleted.
func (s *Service) UpdateProduct(ctx context.Context, productID, requesterID string, patch ProductPatch, image *files.Upload) (*models.Product, error) {
	saved, err := s.save(ctx, image)
	if err != nil {
		return nil, err
	}

	var (
		p        *models.Product
		previous *string
	)
	err = s.store.WithinTx(ctx, func(tx store.Store) error {
		var err error
		if p, err = tx.Products().Lock(ctx, productID, store.LockUpdate); err != nil {
			return err
		}
		if p.OwnerID != requesterID {
			return fmt.Errorf("product %s belongs to another user: %w", p.ID, models.ErrForbidden)
		}

		if patch.Name != nil {
			p.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Description != nil {
			p.Description = *patch.Description
		}
		if patch.Price != nil {
			p.Price = *patch.Price
		}
		if err := validate(p.Name, p.Price); err != nil {
			return err
		}
		if saved != nil {
			previous, p.Image = p.Image, saved
		}
		return tx.Products().Update(ctx, p)
	})
	if err != nil {
		files.DeleteQuietly(ctx, s.files, s.log, saved)
		return nil, err
	}
	files.DeleteQuietly(ctx, s.files, s.log, previous)

	s.log.WithFields(logrus.Fields{"product_id": p.ID, "user_id": requesterID}).Info("product updated")
	return p, nil
}

// save stores image if there is one.
func (s *Service) save(ctx context.Context, image *files.Upload) (*string, error) {
	if image == nil {
		return nil, nil
	}
	path, err := s.files.Save(ctx, image.Filename, image.Data)
	if err != nil {
		return nil, fmt.Errorf("save image: %w", err)
	}
	return &path, nil
}

func validate(name string, price float64) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("product name is required: %w", models.ErrBadRequest)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return fmt.Errorf("price %v must be a non-negative number: %w", price, models.ErrBadRequest)
	}
	return nil
}
