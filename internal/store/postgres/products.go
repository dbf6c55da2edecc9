package postgres

import (
	"context"
	"slices"

	"github.com/marshallshelly/bazaar/internal/models"
	"github.com/marshallshelly/bazaar/internal/store"
	"github.com/marshallshelly/bazaar/pkg/builder"
)

type products struct{ db *builder.DB }

func (s products) Create(ctx context.Context, p *models.Product) error {
	created, err := one(builder.Insert[models.Product](s.db).Values(*p).ExecReturning(ctx))
	if err != nil {
		return translate(err, "create product %q", p.Name)
	}
	*p = *created
	return nil
}

func (s products) Get(ctx context.Context, id string) (*models.Product, error) {
	p, err := builder.Select[models.Product](s.db).Where(builder.Eq("id", id)).First(ctx)
	return p, translate(err, "product %s", id)
}

func (s products) Lock(ctx context.Context, id string, mode store.LockMode) (*models.Product, error) {
	q := builder.Select[models.Product](s.db).Where(builder.Eq("id", id))
	p, err := withLock(q, mode).First(ctx)
	return p, translate(err, "lock product %s", id)
}

func (s products) Find(ctx context.Context, q store.ProductQuery) ([]models.Product, error) {
	query := builder.Select[models.Product](s.db)

	if q.IDs != nil {
		query.Where(builder.InStrings("id", q.IDs))
	}
	if q.CategoryID != "" {
		query.Where(builder.Eq("category_id", q.CategoryID))
	}
	if q.OwnerID != "" {
		query.Where(builder.Eq("owner_id", q.OwnerID))
	}
	if q.FavoritedBy != "" {
		query.Where(builder.Any("favorited_by", q.FavoritedBy))
	}
	if q.Search != "" {
		pattern := builder.ContainsPattern(q.Search)
		query.Where(builder.Group(
			builder.ILike("name", pattern),
			builder.Or(builder.ILike("description", pattern)),
		))
	}

	switch q.Sort {
	case store.SortTopRated:
		query.OrderByDesc("rate")
	case store.SortMostFavorited:
		query.OrderByDesc(builder.Cardinality("favorited_by"))
	}
	query.OrderByDesc("created_at").OrderByDesc("id")

	if q.Limit > 0 {
		query.Limit(q.Limit)
	}

	out, err := query.All(ctx)
	return out, translate(err, "find products")
}

func (s products) Update(ctx context.Context, p *models.Product) error {
	updated, err := one(builder.Update[models.Product](s.db).
		Set("name", p.Name).
		Set("description", p.Description).
		Set("price", p.Price).
		Set("image", p.Image).
		Where(builder.Eq("id", p.ID)).
		ExecReturning(ctx))
	if err != nil {
		return translate(err, "update product %s", p.ID)
	}
	*p = *updated
	return nil
}

func (s products) Delete(ctx context.Context, id string) (*models.Product, error) {
	p, err := one(builder.Delete[models.Product](s.db).Where(builder.Eq("id", id)).ExecReturning(ctx))
	return p, translate(err, "delete product %s", id)
}

func (s products) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := builder.Delete[models.Product](s.db).Where(builder.InStrings("id", ids)).Exec(ctx)
	return n, translate(err, "delete products")
}

// ApplyRating relies on every SET expression seeing the pre-update row.
func (s products) ApplyRating(ctx context.Context, id string, value float64) (*models.Product, error) {
	p, err := one(builder.Update[models.Product](s.db).
		SetExpr("rate", "(rate * count_user_rate + ?) / (count_user_rate + 1)", value).
		SetExpr("count_user_rate", "count_user_rate + 1").
		Where(builder.Eq("id", id)).
		ExecReturning(ctx))
	return p, translate(err, "rate product %s", id)
}

func (s products) ToggleFavorite(ctx context.Context, id, userID string) (bool, error) {
	p, err := one(builder.Update[models.Product](s.db).
		SetExpr("favorited_by",
			"CASE WHEN ?::text = ANY(favorited_by) THEN array_remove(favorited_by, ?::text) ELSE array_append(favorited_by, ?::text) END",
			userID, userID, userID).
		Where(builder.Eq("id", id)).
		Returning("favorited_by").
		ExecReturning(ctx))
	if err != nil {
		return false, translate(err, "toggle favorite on product %s", id)
	}
	return slices.Contains(p.FavoritedBy, userID), nil
}

func (s products) PullFavoriteEverywhere(ctx context.Context, userID string) (int64, error) {
	n, err := builder.Update[models.Product](s.db).
		SetExpr("favorited_by", builder.ArrayRemove("favorited_by"), userID).
		Where(builder.Any("favorited_by", userID)).
		Exec(ctx)
	return n, translate(err, "pull favorite %s", userID)
}
