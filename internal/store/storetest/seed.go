// Package storetest provides seed helpers and a conformance suite that every
// store.Store implementation must pass.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/marshallshelly/bazaar/internal/models"
	"github.com/marshallshelly/bazaar/internal/store"
)

// Epoch is the creation time of the first seeded product. Later products
// are one minute apart so newest-first ordering is deterministic.
var Epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// User inserts a user with the given email.
func User(t *testing.T, s store.Store, email string) models.User {
	t.Helper()
	u := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: "hash",
		FirstName:    "First",
		LastName:     "Last",
	}
	require.NoError(t, s.Users().Create(context.Background(), &u))
	return u
}

// Category inserts a category with the given name.
func Category(t *testing.T, s store.Store, name string) models.Category {
	t.Helper()
	c := models.Category{ID: uuid.NewString(), Name: name}
	require.NoError(t, s.Categories().Create(context.Background(), &c))
	return c
}

// Product inserts a product and links it from its owner and category the
// way the listing service does. n offsets CreatedAt from Epoch in minutes.
func Product(t *testing.T, s store.Store, owner models.User, category models.Category, name string, n int) models.Product {
	t.Helper()
	ctx := context.Background()
	p := models.Product{
		ID:          uuid.NewString(),
		Name:        name,
		Description: name + " description",
		Price:       10,
		Rate:        models.InitialRate,
		CategoryID:  category.ID,
		OwnerID:     owner.ID,
		CreatedAt:   Epoch.Add(time.Duration(n) * time.Minute),
	}
	require.NoError(t, s.Products().Create(ctx, &p))
	require.NoError(t, s.Categories().PushProduct(ctx, category.ID, p.ID))
	require.NoError(t, s.Users().PushProduct(ctx, owner.ID, p.ID))
	return p
}

// Order inserts a pending order.
func Order(t *testing.T, s store.Store, product models.Product, buyer models.User, n int) models.Order {
	t.Helper()
	o := models.Order{
		ID:        uuid.NewString(),
		State:     models.OrderPending,
		ProductID: product.ID,
		BuyerID:   buyer.ID,
		CreatedAt: Epoch.Add(time.Duration(n) * time.Minute),
	}
	require.NoError(t, s.Orders().Create(context.Background(), &o))
	return o
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
