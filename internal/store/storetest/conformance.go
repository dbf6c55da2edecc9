package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marshallshelly/bazaar/internal/models"
	"github.com/marshallshelly/bazaar/internal/store"
)

// Run exercises the store.Store contract. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("Categories", func(t *testing.T) { testCategories(t, newStore(t)) })
	t.Run("ProductFind", func(t *testing.T) { testProductFind(t, newStore(t)) })
	t.Run("ProductAtomicUpdates", func(t *testing.T) { testProductAtomic(t, newStore(t)) })
	t.Run("Orders", func(t *testing.T) { testOrders(t, newStore(t)) })
	t.Run("WithinTx", func(t *testing.T) { testWithinTx(t, newStore(t)) })
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := User(t, s, "Ann@Example.com")

	t.Run("email is case-insensitive and unique", func(t *testing.T) {
		got, err := s.Users().FindByEmail(ctx, "ANN@example.COM")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.Equal(t, "ann@example.com", got.Email)

		dup := models.User{ID: "other", Email: "ann@EXAMPLE.com", PasswordHash: "x"}
		assert.ErrorIs(t, s.Users().Create(ctx, &dup), models.ErrConflict)
	})

	t.Run("push is idempotent and pull preserves order", func(t *testing.T) {
		for _, id := range []string{"p1", "p2", "p1", "p3"} {
			require.NoError(t, s.Users().PushProduct(ctx, u.ID, id))
		}
		require.NoError(t, s.Users().PullProducts(ctx, u.ID, []string{"p2", "absent"}))

		got, err := s.Users().Get(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"p1", "p3"}, got.ProductIDs)
	})

	t.Run("update keeps back-references", func(t *testing.T) {
		patch := u
		patch.FirstName = "Anna"
		patch.Phone = Ptr("555-0100")
		patch.ProductIDs = nil
		require.NoError(t, s.Users().Update(ctx, &patch))

		got, err := s.Users().Get(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "Anna", got.FirstName)
		assert.Equal(t, "555-0100", *got.Phone)
		assert.Equal(t, []string{"p1", "p3"}, got.ProductIDs)
	})

	t.Run("update leaves the password alone", func(t *testing.T) {
		require.NoError(t, s.Users().SetPassword(ctx, u.ID, "new-hash"))

		stale := u
		stale.LastName = "Smith"
		require.NoError(t, s.Users().Update(ctx, &stale))

		got, err := s.Users().Get(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "new-hash", got.PasswordHash)
		assert.Equal(t, "Smith", got.LastName)

		assert.ErrorIs(t, s.Users().SetPassword(ctx, "missing", "x"), models.ErrNotFound)
	})

	t.Run("lock reads the row", func(t *testing.T) {
		for _, mode := range []store.LockMode{store.LockExists, store.LockUpdate} {
			got, err := s.Users().Lock(ctx, u.ID, mode)
			require.NoError(t, err)
			assert.Equal(t, u.ID, got.ID)

			_, err = s.Users().Lock(ctx, "missing", mode)
			assert.ErrorIs(t, err, models.ErrNotFound)
		}
	})

	t.Run("delete", func(t *testing.T) {
		deleted, err := s.Users().Delete(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.ID, deleted.ID)

		_, err = s.Users().Get(ctx, u.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
		_, err = s.Users().Delete(ctx, u.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.NoError(t, s.Users().PullProducts(ctx, u.ID, []string{"p1"}))
	})
}

func testCategories(t *testing.T, s store.Store) {
	ctx := context.Background()
	plumbing := Category(t, s, "Plumbing")
	Category(t, s, "Electrical")

	dup := models.Category{ID: "dup", Name: "Plumbing"}
	assert.ErrorIs(t, s.Categories().Create(ctx, &dup), models.ErrConflict)

	got, err := s.Categories().FindByName(ctx, "Plumbing")
	require.NoError(t, err)
	assert.Equal(t, plumbing.ID, got.ID)

	_, err = s.Categories().FindByName(ctx, "Gardening")
	assert.ErrorIs(t, err, models.ErrNotFound)

	all, err := s.Categories().List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Electrical", all[0].Name)
	assert.Equal(t, "Plumbing", all[1].Name)

	byIDs, err := s.Categories().FindByIDs(ctx, []string{plumbing.ID, "missing"})
	require.NoError(t, err)
	require.Len(t, byIDs, 1)

	_, err = s.Categories().Delete(ctx, plumbing.ID)
	require.NoError(t, err)
	_, err = s.Categories().Get(ctx, plumbing.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func testProductFind(t *testing.T, s store.Store) {
	ctx := context.Background()
	owner := User(t, s, "owner@example.com")
	other := User(t, s, "other@example.com")
	plumbing := Category(t, s, "Plumbing")
	garden := Category(t, s, "Garden")

	leak := Product(t, s, owner, plumbing, "Leak Fix", 0)
	drain := Product(t, s, owner, plumbing, "Drain Unblock", 1)
	hedge := Product(t, s, other, garden, "Hedge Trim 50%", 2)

	_, err := s.Products().ApplyRating(ctx, leak.ID, 5)
	require.NoError(t, err)
	for _, u := range []string{"a", "b"} {
		_, err := s.Products().ToggleFavorite(ctx, drain.ID, u)
		require.NoError(t, err)
	}
	_, err = s.Products().ToggleFavorite(ctx, hedge.ID, "a")
	require.NoError(t, err)

	ids := func(ps []models.Product) []string {
		out := make([]string, len(ps))
		for i, p := range ps {
			out[i] = p.ID
		}
		return out
	}

	tests := []struct {
		name  string
		query store.ProductQuery
		want  []string
	}{
		{"newest first by default", store.ProductQuery{}, []string{hedge.ID, drain.ID, leak.ID}},
		{"by category", store.ProductQuery{CategoryID: plumbing.ID}, []string{drain.ID, leak.ID}},
		{"by owner", store.ProductQuery{OwnerID: other.ID}, []string{hedge.ID}},
		{"favorited by", store.ProductQuery{FavoritedBy: "a"}, []string{hedge.ID, drain.ID}},
		{"search name case-insensitive", store.ProductQuery{Search: "leak"}, []string{leak.ID}},
		{"search description", store.ProductQuery{Search: "UNBLOCK DESC"}, []string{drain.ID}},
		{"search treats % literally", store.ProductQuery{Search: "50%"}, []string{hedge.ID}},
		{"top rated", store.ProductQuery{Sort: store.SortTopRated}, []string{leak.ID, hedge.ID, drain.ID}},
		{"most favorited", store.ProductQuery{Sort: store.SortMostFavorited}, []string{drain.ID, hedge.ID, leak.ID}},
		{"limit", store.ProductQuery{Limit: 2}, []string{hedge.ID, drain.ID}},
		{"ids", store.ProductQuery{IDs: []string{leak.ID, "missing"}}, []string{leak.ID}},
		{"empty ids", store.ProductQuery{IDs: []string{}}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Products().Find(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}

	t.Run("update and delete many", func(t *testing.T) {
		patch := leak
		patch.Name = "Leak Repair"
		patch.Image = Ptr("/leak.png")
		require.NoError(t, s.Products().Update(ctx, &patch))
		got, err := s.Products().Get(ctx, leak.ID)
		require.NoError(t, err)
		assert.Equal(t, "Leak Repair", got.Name)
		assert.Equal(t, 1, got.CountUserRate, "update must not touch the rating")

		n, err := s.Products().DeleteMany(ctx, []string{leak.ID, drain.ID, "missing"})
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
	})
}

func testProductAtomic(t *testing.T, s store.Store) {
	ctx := context.Background()
	owner := User(t, s, "owner@example.com")
	cat := Category(t, s, "Plumbing")
	p := Product(t, s, owner, cat, "Leak Fix", 0)

	t.Run("rating is a running mean", func(t *testing.T) {
		got, err := s.Products().ApplyRating(ctx, p.ID, 4)
		require.NoError(t, err)
		assert.InDelta(t, 4.0, got.Rate, 1e-9)
		assert.Equal(t, 1, got.CountUserRate)

		got, err = s.Products().ApplyRating(ctx, p.ID, 2)
		require.NoError(t, err)
		assert.InDelta(t, 3.0, got.Rate, 1e-9)
		assert.Equal(t, 2, got.CountUserRate)

		_, err = s.Products().ApplyRating(ctx, "missing", 1)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("concurrent ratings are not lost", func(t *testing.T) {
		const n = 20
		var wg sync.WaitGroup
		for j := 0; j < n; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.Products().ApplyRating(ctx, p.ID, 3)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := s.Products().Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 2+n, got.CountUserRate)
		assert.InDelta(t, (4.0+2.0+3.0*n)/(2+n), got.Rate, 1e-9)
	})

	t.Run("toggle flips membership", func(t *testing.T) {
		added, err := s.Products().ToggleFavorite(ctx, p.ID, "u1")
		require.NoError(t, err)
		assert.True(t, added)

		added, err = s.Products().ToggleFavorite(ctx, p.ID, "u1")
		require.NoError(t, err)
		assert.False(t, added)

		got, err := s.Products().Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Empty(t, got.FavoritedBy)

		_, err = s.Products().ToggleFavorite(ctx, "missing", "u1")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("concurrent toggles are not lost", func(t *testing.T) {
		const n = 12
		fresh := Product(t, s, owner, cat, "Valve", 2)

		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.Products().ToggleFavorite(ctx, fresh.ID, fmt.Sprintf("fan-%d", i))
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := s.Products().Get(ctx, fresh.ID)
		require.NoError(t, err)
		assert.Len(t, got.FavoritedBy, n)

		// Three more toggles per user make four in total.
		for i := 0; i < n; i++ {
			i := i
			for j := 0; j < 3; j++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := s.Products().ToggleFavorite(ctx, fresh.ID, fmt.Sprintf("fan-%d", i))
					assert.NoError(t, err)
				}()
			}
		}
		wg.Wait()

		got, err = s.Products().Get(ctx, fresh.ID)
		require.NoError(t, err)
		assert.Empty(t, got.FavoritedBy)
	})

	t.Run("pull favorite everywhere", func(t *testing.T) {
		q := Product(t, s, owner, cat, "Drain", 1)
		for _, id := range []string{p.ID, q.ID} {
			_, err := s.Products().ToggleFavorite(ctx, id, "gone")
			require.NoError(t, err)
		}
		_, err := s.Products().ToggleFavorite(ctx, q.ID, "stays")
		require.NoError(t, err)

		n, err := s.Products().PullFavoriteEverywhere(ctx, "gone")
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		got, err := s.Products().Get(ctx, q.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"stays"}, got.FavoritedBy)
	})

	t.Run("lock reads the row", func(t *testing.T) {
		got, err := s.Products().Lock(ctx, p.ID, store.LockUpdate)
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)

		_, err = s.Products().Lock(ctx, "missing", store.LockExists)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func testOrders(t *testing.T, s store.Store) {
	ctx := context.Background()
	seller := User(t, s, "seller@example.com")
	buyer := User(t, s, "buyer@example.com")
	cat := Category(t, s, "Plumbing")
	p1 := Product(t, s, seller, cat, "Leak Fix", 0)
	p2 := Product(t, s, seller, cat, "Drain", 1)

	o1 := Order(t, s, p1, buyer, 0)
	o2 := Order(t, s, p2, buyer, 1)
	o3 := Order(t, s, p2, seller, 2)

	byBuyer, err := s.Orders().FindByBuyer(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, byBuyer, 2)
	assert.Equal(t, o2.ID, byBuyer[0].ID)

	byProducts, err := s.Orders().FindByProducts(ctx, []string{p2.ID})
	require.NoError(t, err)
	require.Len(t, byProducts, 2)
	assert.Equal(t, o3.ID, byProducts[0].ID)

	t.Run("state change is compare-and-swap", func(t *testing.T) {
		got, err := s.Orders().UpdateState(ctx, o1.ID, models.OrderPending, models.OrderAccepted)
		require.NoError(t, err)
		assert.Equal(t, models.OrderAccepted, got.State)

		_, err = s.Orders().UpdateState(ctx, o1.ID, models.OrderPending, models.OrderRejected)
		assert.ErrorIs(t, err, models.ErrConflict)

		_, err = s.Orders().UpdateState(ctx, "missing", models.OrderPending, models.OrderRejected)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("deletes", func(t *testing.T) {
		n, err := s.Orders().DeleteByProducts(ctx, []string{p2.ID})
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		n, err = s.Orders().DeleteByBuyer(ctx, buyer.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		_, err = s.Orders().Get(ctx, o1.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func testWithinTx(t *testing.T, s store.Store) {
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(tx store.Store) error {
		User(t, tx, "rolled@example.com")
		return boom
	})
	require.ErrorIs(t, err, boom)
	_, err = s.Users().FindByEmail(ctx, "rolled@example.com")
	assert.ErrorIs(t, err, models.ErrNotFound)

	err = s.WithinTx(ctx, func(tx store.Store) error {
		User(t, tx, "kept@example.com")
		nestedErr := tx.WithinTx(ctx, func(inner store.Store) error {
			User(t, inner, "inner@example.com")
			return boom
		})
		assert.ErrorIs(t, nestedErr, boom)
		return nil
	})
	require.NoError(t, err)

	_, err = s.Users().FindByEmail(ctx, "kept@example.com")
	assert.NoError(t, err)
	_, err = s.Users().FindByEmail(ctx, "inner@example.com")
	assert.ErrorIs(t, err, models.ErrNotFound)

	t.Run("locked row outlives a concurrent delete", func(t *testing.T) {
		u := User(t, s, "held@example.com")
		cat := Category(t, s, "Held")
		p := Product(t, s, u, cat, "Held", 0)

		deleted := make(chan error, 1)
		err := s.WithinTx(ctx, func(tx store.Store) error {
			if _, err := tx.Users().Lock(ctx, u.ID, store.LockExists); err != nil {
				return err
			}
			go func() {
				_, err := s.Users().Delete(ctx, u.ID)
				deleted <- err
			}()

			select {
			case err := <-deleted:
				t.Errorf("delete finished while the row was locked: %v", err)
			case <-time.After(100 * time.Millisecond):
			}

			_, err := tx.Products().ToggleFavorite(ctx, p.ID, u.ID)
			return err
		})
		require.NoError(t, err)
		require.NoError(t, <-deleted)

		got, err := s.Products().Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{u.ID}, got.FavoritedBy)
	})
}
