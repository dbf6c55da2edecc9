// Package catalog answers product listings as seen by one viewer: filtered,
// ordered and joined with category and owner summaries.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/marshallshelly/bazaar/internal/models"
	"github.com/marshallshelly/bazaar/internal/store"
)

// PageSize caps every ordered listing and every home card page.
const PageSize = 8

// Filters narrows a listing. Empty fields do not filter.
type Filters struct {
	CategoryName string
	Search       string
}

// Service answers catalog queries for a viewer.
type Service struct {
	store store.Store
	log   logrus.FieldLogger
}

// New returns a Service over s.
func New(s store.Store, log logrus.FieldLogger) *Service {
	return &Service{store: s, log: log}
}

// List returns the products matching f in ordering o. Every ordering except
// the default one is capped at PageSize.
func (s *Service) List(ctx context.Context, viewerID string, f Filters, o models.Ordering) ([]models.CatalogEntry, error) {
	limit := 0
	if o != models.OrderingDefault {
		limit = PageSize
	}

	products, err := s.find(ctx, f, o, limit)
	if err != nil {
		return nil, err
	}
	return s.Entries(ctx, viewerID, products)
}

// HomeCards is List capped at PageSize for every ordering. The favorite
// ordering yields entries without category or owner.
func (s *Service) HomeCards(ctx context.Context, viewerID string, f Filters, o models.Ordering) ([]models.CatalogEntry, error) {
	products, err := s.find(ctx, f, o, PageSize)
	if err != nil {
		return nil, err
	}

	if o == models.OrderingFavorite {
		entries := make([]models.CatalogEntry, len(products))
		for i := range products {
			entries[i] = models.NewCatalogEntry(&products[i], viewerID)
		}
		return entries, nil
	}
	return s.Entries(ctx, viewerID, products)
}

// Get returns one fully joined product. A product whose category or owner
// cannot be resolved is reported as not found.
func (s *Service) Get(ctx context.Context, viewerID, productID string) (*models.CatalogEntry, error) {
	p, err := s.store.Products().Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	c, err := s.store.Categories().Get(ctx, p.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("category of product %s: %w", p.ID, err)
	}
	owner, err := s.store.Users().Get(ctx, p.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("owner of product %s: %w", p.ID, err)
	}

	entry := models.NewCatalogEntry(p, viewerID)
	cs, us := c.Summary(), owner.Summary()
	entry.Category, entry.Owner = &cs, &us
	return &entry, nil
}

// Favorites lists the products viewerID has favorited, newest first.
func (s *Service) Favorites(ctx context.Context, viewerID string) ([]models.CatalogEntry, error) {
	products, err := s.store.Products().Find(ctx, store.ProductQuery{FavoritedBy: viewerID})
	if err != nil {
		return nil, err
	}
	return s.Entries(ctx, viewerID, products)
}

// OwnedBy lists the products offered by ownerID, newest first.
func (s *Service) OwnedBy(ctx context.Context, viewerID, ownerID string) ([]models.CatalogEntry, error) {
	if _, err := s.store.Users().Get(ctx, ownerID); err != nil {
		return nil, err
	}

	products, err := s.store.Products().Find(ctx, store.ProductQuery{OwnerID: ownerID})
	if err != nil {
		return nil, err
	}
	return s.Entries(ctx, viewerID, products)
}

// Entries projects products for viewerID and joins their categories and
// owners with one batched lookup each. A join that cannot be resolved
// leaves the summary nil.
func (s *Service) Entries(ctx context.Context, viewerID string, products []models.Product) ([]models.CatalogEntry, error) {
	entries := make([]models.CatalogEntry, len(products))
	if len(products) == 0 {
		return entries, nil
	}

	categoryIDs := make([]string, 0, len(products))
	ownerIDs := make([]string, 0, len(products))
	for i := range products {
		categoryIDs = append(categoryIDs, products[i].CategoryID)
		ownerIDs = append(ownerIDs, products[i].OwnerID)
	}

	categories, err := s.store.Categories().FindByIDs(ctx, unique(categoryIDs))
	if err != nil {
		return nil, err
	}
	owners, err := s.store.Users().FindByIDs(ctx, unique(ownerIDs))
	if err != nil {
		return nil, err
	}

	categoryByID := make(map[string]models.CategorySummary, len(categories))
	for i := range categories {
		categoryByID[categories[i].ID] = categories[i].Summary()
	}
	ownerByID := make(map[string]models.UserSummary, len(owners))
	for i := range owners {
		ownerByID[owners[i].ID] = owners[i].Summary()
	}

	for i := range products {
		e := models.NewCatalogEntry(&products[i], viewerID)
		if c, ok := categoryByID[products[i].CategoryID]; ok {
			e.Category = &c
		}
		if u, ok := ownerByID[products[i].OwnerID]; ok {
			e.Owner = &u
		}
		entries[i] = e
	}
	return entries, nil
}

func (s *Service) find(ctx context.Context, f Filters, o models.Ordering, limit int) ([]models.Product, error) {
	q := store.ProductQuery{Search: f.Search, Sort: sortFor(o), Limit: limit}

	if f.CategoryName != "" {
		c, err := s.store.Categories().FindByName(ctx, f.CategoryName)
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("category %q: %w", f.CategoryName, models.ErrBadRequest)
		}
		if err != nil {
			return nil, err
		}
		q.CategoryID = c.ID
	}

	products, err := s.store.Products().Find(ctx, q)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"category": f.CategoryName,
		"search":   f.Search,
		"ordering": o,
		"results":  len(products),
	}).Debug("catalog query")
	return products, nil
}

func sortFor(o models.Ordering) store.ProductSort {
	switch o {
	case models.OrderingFavorite:
		return store.SortMostFavorited
	case models.OrderingTopRated:
		return store.SortTopRated
	default:
		return store.SortNewest
	}
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
