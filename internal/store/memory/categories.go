package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/marshallshelly/bazaar/internal/models"
)

type categories struct{ v *view }

func (s categories) Create(_ context.Context, c *models.Category) error {
	defer s.v.lock()()

	if _, ok := s.v.d.categories[c.ID]; ok {
		return fmt.Errorf("category %s: %w", c.ID, models.ErrConflict)
	}
	for _, existing := range s.v.d.categories {
		if existing.Name == c.Name {
			return fmt.Errorf("category %q already exists: %w", c.Name, models.ErrConflict)
		}
	}
	if c.ProductIDs == nil {
		c.ProductIDs = []string{}
	}
	s.v.d.categories[c.ID] = cloneCategory(*c)
	return nil
}

func (s categories) Get(_ context.Context, id string) (*models.Category, error) {
	defer s.v.lock()()

	c, ok := s.v.d.categories[id]
	if !ok {
		return nil, fmt.Errorf("category %s: %w", id, models.ErrNotFound)
	}
	c = cloneCategory(c)
	return &c, nil
}

func (s categories) FindByName(_ context.Context, name string) (*models.Category, error) {
	defer s.v.lock()()

	for _, c := range s.v.d.categories {
		if c.Name == name {
			c = cloneCategory(c)
			return &c, nil
		}
	}
	return nil, fmt.Errorf("category %q: %w", name, models.ErrNotFound)
}

func (s categories) FindByIDs(_ context.Context, ids []string) ([]models.Category, error) {
	defer s.v.lock()()

	var out []models.Category
	for _, id := range ids {
		if c, ok := s.v.d.categories[id]; ok {
			out = append(out, cloneCategory(c))
		}
	}
	return out, nil
}

func (s categories) List(_ context.Context) ([]models.Category, error) {
	defer s.v.lock()()

	out := make([]models.Category, 0, len(s.v.d.categories))
	for _, c := range s.v.d.categories {
		out = append(out, cloneCategory(c))
	}
	slices.SortFunc(out, func(a, b models.Category) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

func (s categories) Delete(_ context.Context, id string) (*models.Category, error) {
	defer s.v.lock()()

	c, ok := s.v.d.categories[id]
	if !ok {
		return nil, fmt.Errorf("category %s: %w", id, models.ErrNotFound)
	}
	delete(s.v.d.categories, id)
	return &c, nil
}

func (s categories) PushProduct(_ context.Context, categoryID, productID string) error {
	defer s.v.lock()()

	c, ok := s.v.d.categories[categoryID]
	if !ok {
		return fmt.Errorf("category %s: %w", categoryID, models.ErrNotFound)
	}
	if !slices.Contains(c.ProductIDs, productID) {
		c.ProductIDs = append(slices.Clone(c.ProductIDs), productID)
		s.v.d.categories[categoryID] = c
	}
	return nil
}

func (s categories) PullProducts(_ context.Context, categoryID string, productIDs []string) error {
	defer s.v.lock()()

	if c, ok := s.v.d.categories[categoryID]; ok {
		c.ProductIDs = pull(c.ProductIDs, productIDs)
		s.v.d.categories[categoryID] = c
	}
	return nil
}
