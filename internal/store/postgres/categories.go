package postgres

import (
	"context"

	"github.com/marshallshelly/bazaar/internal/models"
	"github.com/marshallshelly/bazaar/pkg/builder"
)

type categories struct{ db *builder.DB }

func (s categories) Create(ctx context.Context, c *models.Category) error {
	created, err := one(builder.Insert[models.Category](s.db).Values(*c).ExecReturning(ctx))
	if err != nil {
		return translate(err, "create category %q", c.Name)
	}
	*c = *created
	return nil
}

func (s categories) Get(ctx context.Context, id string) (*models.Category, error) {
	c, err := builder.Select[models.Category](s.db).Where(builder.Eq("id", id)).First(ctx)
	return c, translate(err, "category %s", id)
}

func (s categories) FindByName(ctx context.Context, name string) (*models.Category, error) {
	c, err := builder.Select[models.Category](s.db).Where(builder.Eq("name", name)).First(ctx)
	return c, translate(err, "category %q", name)
}

func (s categories) FindByIDs(ctx context.Context, ids []string) ([]models.Category, error) {
	out, err := builder.Select[models.Category](s.db).Where(builder.InStrings("id", ids)).All(ctx)
	return out, translate(err, "find categories")
}

func (s categories) List(ctx context.Context) ([]models.Category, error) {
	out, err := builder.Select[models.Category](s.db).OrderByAsc("name").All(ctx)
	return out, translate(err, "list categories")
}

func (s categories) Delete(ctx context.Context, id string) (*models.Category, error) {
	c, err := one(builder.Delete[models.Category](s.db).Where(builder.Eq("id", id)).ExecReturning(ctx))
	return c, translate(err, "delete category %s", id)
}

func (s categories) PushProduct(ctx context.Context, categoryID, productID string) error {
	n, err := builder.Update[models.Category](s.db).
		SetExpr("product_ids", builder.ArrayAppend("product_ids"), productID).
		Where(builder.Eq("id", categoryID)).
		Where(builder.Not(builder.Any("product_ids", productID))).
		Exec(ctx)
	if err != nil {
		return translate(err, "push product onto category %s", categoryID)
	}
	if n == 0 {
		_, err := s.Get(ctx, categoryID)
		return err
	}
	return nil
}

func (s categories) PullProducts(ctx context.Context, categoryID string, productIDs []string) error {
	if len(productIDs) == 0 {
		return nil
	}
	_, err := builder.Update[models.Category](s.db).
		SetExpr("product_ids", builder.ArrayRemoveAll("product_ids"), productIDs).
		Where(builder.Eq("id", categoryID)).
		Exec(ctx)
	return translate(err, "pull products from category %s", categoryID)
}
