package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/marshallshelly/bazaar/internal/models"
	"github.com/marshallshelly/bazaar/internal/store"
)

type products struct{ v *view }

func (s products) Create(_ context.Context, p *models.Product) error {
	defer s.v.lock()()

	if _, ok := s.v.d.products[p.ID]; ok {
		return fmt.Errorf("product %s: %w", p.ID, models.ErrConflict)
	}
	if p.FavoritedBy == nil {
		p.FavoritedBy = []string{}
	}
	s.v.d.products[p.ID] = cloneProduct(*p)
	return nil
}

func (s products) Get(_ context.Context, id string) (*models.Product, error) {
	defer s.v.lock()()

	p, ok := s.v.d.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, models.ErrNotFound)
	}
	p = cloneProduct(p)
	return &p, nil
}

func (s products) Lock(ctx context.Context, id string, _ store.LockMode) (*models.Product, error) {
	return s.Get(ctx, id)
}

func (s products) Find(_ context.Context, q store.ProductQuery) ([]models.Product, error) {
	defer s.v.lock()()

	search := strings.ToLower(q.Search)
	var out []models.Product
	for _, p := range s.v.d.products {
		switch {
		case q.IDs != nil && !slices.Contains(q.IDs, p.ID),
			q.CategoryID != "" && p.CategoryID != q.CategoryID,
			q.OwnerID != "" && p.OwnerID != q.OwnerID,
			q.FavoritedBy != "" && !p.IsFavoritedBy(q.FavoritedBy),
			search != "" && !strings.Contains(strings.ToLower(p.Name), search) &&
				!strings.Contains(strings.ToLower(p.Description), search):
			continue
		}
		out = append(out, cloneProduct(p))
	}

	slices.SortFunc(out, func(a, b models.Product) int {
		var c int
		switch q.Sort {
		case store.SortTopRated:
			c = cmp.Compare(b.Rate, a.Rate)
		case store.SortMostFavorited:
			c = cmp.Compare(len(b.FavoritedBy), len(a.FavoritedBy))
		}
		if c != 0 {
			return c
		}
		if c = b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s products) Update(_ context.Context, p *models.Product) error {
	defer s.v.lock()()

	cur, ok := s.v.d.products[p.ID]
	if !ok {
		return fmt.Errorf("product %s: %w", p.ID, models.ErrNotFound)
	}
	cur.Name = p.Name
	cur.Description = p.Description
	cur.Price = p.Price
	cur.Image = p.Image
	s.v.d.products[p.ID] = cur
	*p = cloneProduct(cur)
	return nil
}

func (s products) Delete(_ context.Context, id string) (*models.Product, error) {
	defer s.v.lock()()

	p, ok := s.v.d.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, models.ErrNotFound)
	}
	delete(s.v.d.products, id)
	return &p, nil
}

func (s products) DeleteMany(_ context.Context, ids []string) (int64, error) {
	defer s.v.lock()()

	var n int64
	for _, id := range ids {
		if _, ok := s.v.d.products[id]; ok {
			delete(s.v.d.products, id)
			n++
		}
	}
	return n, nil
}

func (s products) ApplyRating(_ context.Context, id string, value float64) (*models.Product, error) {
	defer s.v.lock()()

	p, ok := s.v.d.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, models.ErrNotFound)
	}
	n := float64(p.CountUserRate)
	p.Rate = (p.Rate*n + value) / (n + 1)
	p.CountUserRate++
	s.v.d.products[id] = p

	p = cloneProduct(p)
	return &p, nil
}

func (s products) ToggleFavorite(_ context.Context, id, userID string) (bool, error) {
	defer s.v.lock()()

	p, ok := s.v.d.products[id]
	if !ok {
		return false, fmt.Errorf("product %s: %w", id, models.ErrNotFound)
	}
	added := !p.IsFavoritedBy(userID)
	if added {
		p.FavoritedBy = append(slices.Clone(p.FavoritedBy), userID)
	} else {
		p.FavoritedBy = pull(p.FavoritedBy, []string{userID})
	}
	s.v.d.products[id] = p
	return added, nil
}

func (s products) PullFavoriteEverywhere(_ context.Context, userID string) (int64, error) {
	defer s.v.lock()()

	var n int64
	for id, p := range s.v.d.products {
		if p.IsFavoritedBy(userID) {
			p.FavoritedBy = pull(p.FavoritedBy, []string{userID})
			s.v.d.products[id] = p
			n++
		}
	}
	return n, nil
}
