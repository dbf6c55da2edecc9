package postgres

import (
	"context"
	"strings"

	"github.com/marshallshelly/bazaar/internal/models"
	"github.com/marshallshelly/bazaar/internal/store"
	"github.com/marshallshelly/bazaar/pkg/builder"
	"github.com/marshallshelly/bazaar/pkg/runtime"
)

type users struct{ db *builder.DB }

func (s users) Create(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(u.Email)
	created, err := one(builder.Insert[models.User](s.db).Values(*u).ExecReturning(ctx))
	if err != nil {
		return translate(err, "create user %s", u.Email)
	}
	*u = *created
	return nil
}

func (s users) Get(ctx context.Context, id string) (*models.User, error) {
	u, err := builder.Select[models.User](s.db).Where(builder.Eq("id", id)).First(ctx)
	return u, translate(err, "user %s", id)
}

func (s users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(email)
	u, err := builder.Select[models.User](s.db).Where(builder.Eq("email", email)).First(ctx)
	return u, translate(err, "user with email %s", email)
}

func (s users) FindByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	out, err := builder.Select[models.User](s.db).Where(builder.InStrings("id", ids)).All(ctx)
	return out, translate(err, "find users")
}

func (s users) Lock(ctx context.Context, id string, mode store.LockMode) (*models.User, error) {
	q := builder.Select[models.User](s.db).Where(builder.Eq("id", id))
	u, err := withLock(q, mode).First(ctx)
	return u, translate(err, "lock user %s", id)
}

func (s users) Update(ctx context.Context, u *models.User) error {
	updated, err := one(builder.Update[models.User](s.db).
		Set("first_name", u.FirstName).
		Set("last_name", u.LastName).
		Set("phone", u.Phone).
		Set("address", u.Address).
		Set("image", u.Image).
		Set("is_technician", u.IsTechnician).
		Where(builder.Eq("id", u.ID)).
		ExecReturning(ctx))
	if err != nil {
		return translate(err, "update user %s", u.ID)
	}
	*u = *updated
	return nil
}

func (s users) SetPassword(ctx context.Context, id, hash string) error {
	n, err := builder.Update[models.User](s.db).
		Set("password_hash", hash).
		Where(builder.Eq("id", id)).
		Exec(ctx)
	if err == nil && n == 0 {
		err = runtime.ErrNotFound
	}
	return translate(err, "set password of user %s", id)
}

func (s users) Delete(ctx context.Context, id string) (*models.User, error) {
	u, err := one(builder.Delete[models.User](s.db).Where(builder.Eq("id", id)).ExecReturning(ctx))
	return u, translate(err, "delete user %s", id)
}

func (s users) PushProduct(ctx context.Context, userID, productID string) error {
	n, err := builder.Update[models.User](s.db).
		SetExpr("product_ids", builder.ArrayAppend("product_ids"), productID).
		Where(builder.Eq("id", userID)).
		Where(builder.Not(builder.Any("product_ids", productID))).
		Exec(ctx)
	if err != nil {
		return translate(err, "push product onto user %s", userID)
	}
	if n == 0 {
		return translate(s.exists(ctx, userID), "push product onto user %s", userID)
	}
	return nil
}

// exists is consulted only when a conditional update touched no rows.
func (s users) exists(ctx context.Context, id string) error {
	_, err := builder.Select[models.User](s.db).Columns("id").Where(builder.Eq("id", id)).First(ctx)
	return err
}

func (s users) PullProducts(ctx context.Context, userID string, productIDs []string) error {
	if len(productIDs) == 0 {
		return nil
	}
	_, err := builder.Update[models.User](s.db).
		SetExpr("product_ids", builder.ArrayRemoveAll("product_ids"), productIDs).
		Where(builder.Eq("id", userID)).
		Exec(ctx)
	return translate(err, "pull products from user %s", userID)
}
