package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/marshallshelly/bazaar/internal/models"
	"github.com/marshallshelly/bazaar/pkg/builder"
	"github.com/marshallshelly/bazaar/pkg/runtime"
)

type orders struct{ db *builder.DB }

func (s orders) Create(ctx context.Context, o *models.Order) error {
	created, err := one(builder.Insert[models.Order](s.db).Values(*o).ExecReturning(ctx))
	if err != nil {
		return translate(err, "create order")
	}
	*o = *created
	return nil
}

func (s orders) Get(ctx context.Context, id string) (*models.Order, error) {
	o, err := builder.Select[models.Order](s.db).Where(builder.Eq("id", id)).First(ctx)
	return o, translate(err, "order %s", id)
}

func (s orders) FindByBuyer(ctx context.Context, buyerID string) ([]models.Order, error) {
	out, err := builder.Select[models.Order](s.db).
		Where(builder.Eq("buyer_id", buyerID)).
		OrderByDesc("created_at").OrderByDesc("id").
		All(ctx)
	return out, translate(err, "orders of buyer %s", buyerID)
}

func (s orders) FindByProducts(ctx context.Context, productIDs []string) ([]models.Order, error) {
	out, err := builder.Select[models.Order](s.db).
		Where(builder.InStrings("product_id", productIDs)).
		OrderByDesc("created_at").OrderByDesc("id").
		All(ctx)
	return out, translate(err, "orders of products")
}

func (s orders) UpdateState(ctx context.Context, id string, from, to models.OrderState) (*models.Order, error) {
	o, err := one(builder.Update[models.Order](s.db).
		Set("state", to).
		Where(builder.Eq("id", id)).
		Where(builder.Eq("state", from)).
		ExecReturning(ctx))
	if errors.Is(err, runtime.ErrNotFound) {
		cur, getErr := s.Get(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, fmt.Errorf("order %s is %s, not %s: %w", id, cur.State, from, models.ErrConflict)
	}
	return o, translate(err, "update order %s", id)
}

func (s orders) DeleteByBuyer(ctx context.Context, buyerID string) (int64, error) {
	n, err := builder.Delete[models.Order](s.db).Where(builder.Eq("buyer_id", buyerID)).Exec(ctx)
	return n, translate(err, "delete orders of buyer %s", buyerID)
}

func (s orders) DeleteByProducts(ctx context.Context, productIDs []string) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}
	n, err := builder.Delete[models.Order](s.db).Where(builder.InStrings("product_id", productIDs)).Exec(ctx)
	return n, translate(err, "delete orders of products")
}
