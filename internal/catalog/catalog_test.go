package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marshallshelly/bazaar/internal/models"
	"github.com/marshallshelly/bazaar/internal/store"
	"github.com/marshallshelly/bazaar/internal/store/memory"
	"github.com/marshallshelly/bazaar/internal/store/storetest"
)

func newService(t *testing.T) (*Service, store.Store) {
	t.Helper()
	st := memory.New()
	log, _ := test.NewNullLogger()
	return New(st, log), st
}

func names(entries []models.CatalogEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestListFiltersAndJoins(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)

	a := storetest.User(t, st, "a@example.com")
	b := storetest.User(t, st, "b@example.com")
	plumbing := storetest.Category(t, st, "Plumbing")
	garden := storetest.Category(t, st, "Garden")

	leak := storetest.Product(t, st, a, plumbing, "Leak Fix", 0)
	storetest.Product(t, st, a, plumbing, "Drain Unclog", 1)
	storetest.Product(t, st, b, garden, "Hedge Trim", 2)

	_, err := st.Products().ToggleFavorite(ctx, leak.ID, b.ID)
	require.NoError(t, err)

	tests := []struct {
		name    string
		filters Filters
		want    []string
	}{
		{"no filters newest first", Filters{}, []string{"Hedge Trim", "Drain Unclog", "Leak Fix"}},
		{"by category", Filters{CategoryName: "Plumbing"}, []string{"Drain Unclog", "Leak Fix"}},
		{"search name case-insensitively", Filters{Search: "LEAK"}, []string{"Leak Fix"}},
		{"search description", Filters{Search: "trim description"}, []string{"Hedge Trim"}},
		{"category and search", Filters{CategoryName: "Garden", Search: "leak"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.List(ctx, b.ID, tt.filters, models.OrderingDefault)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}

	t.Run("unknown category", func(t *testing.T) {
		_, err := svc.List(ctx, b.ID, Filters{CategoryName: "Roofing"}, models.OrderingDefault)
		assert.ErrorIs(t, err, models.ErrBadRequest)
	})

	t.Run("entries are joined", func(t *testing.T) {
		got, err := svc.List(ctx, b.ID, Filters{Search: "Leak"}, models.OrderingDefault)
		require.NoError(t, err)
		require.Len(t, got, 1)

		e := got[0]
		require.NotNil(t, e.Category)
		require.NotNil(t, e.Owner)
		assert.Equal(t, "Plumbing", e.Category.Name)
		assert.Equal(t, a.ID, e.Owner.ID)
		assert.Equal(t, a.Email, e.Owner.Email)
		assert.True(t, e.IsFav)
		assert.Equal(t, 1, e.FavoriteCount)
	})
}

func TestListOrderings(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)

	owner := storetest.User(t, st, "a@example.com")
	cat := storetest.Category(t, st, "Plumbing")

	var products []models.Product
	for i := 0; i < 10; i++ {
		products = append(products, storetest.Product(t, st, owner, cat, fmt.Sprintf("p%d", i), i))
	}

	_, err := st.Products().ApplyRating(ctx, products[2].ID, 5)
	require.NoError(t, err)
	_, err = st.Products().ApplyRating(ctx, products[4].ID, 4)
	require.NoError(t, err)
	_, err = st.Products().ApplyRating(ctx, products[9].ID, 0)
	require.NoError(t, err)

	fans := []models.User{
		storetest.User(t, st, "f1@example.com"),
		storetest.User(t, st, "f2@example.com"),
	}
	for _, f := range fans {
		_, err := st.Products().ToggleFavorite(ctx, products[1].ID, f.ID)
		require.NoError(t, err)
	}
	_, err = st.Products().ToggleFavorite(ctx, products[3].ID, fans[0].ID)
	require.NoError(t, err)

	t.Run("default is unlimited", func(t *testing.T) {
		got, err := svc.List(ctx, owner.ID, Filters{}, models.OrderingDefault)
		require.NoError(t, err)
		assert.Len(t, got, 10)
		assert.Equal(t, "p9", got[0].Name)
	})

	t.Run("newest", func(t *testing.T) {
		got, err := svc.List(ctx, owner.ID, Filters{}, models.OrderingNewest)
		require.NoError(t, err)
		assert.Equal(t, []string{"p9", "p8", "p7", "p6", "p5", "p4", "p3", "p2"}, names(got))
	})

	t.Run("top rated", func(t *testing.T) {
		got, err := svc.List(ctx, owner.ID, Filters{}, models.OrderingTopRated)
		require.NoError(t, err)
		require.Len(t, got, PageSize)
		assert.Equal(t, []string{"p2", "p4", "p8", "p7", "p6", "p5", "p3", "p1"}, names(got))
		for i := 1; i < len(got); i++ {
			assert.GreaterOrEqual(t, got[i-1].Rate, got[i].Rate)
		}
	})

	t.Run("favorite", func(t *testing.T) {
		got, err := svc.List(ctx, owner.ID, Filters{}, models.OrderingFavorite)
		require.NoError(t, err)
		require.Len(t, got, PageSize)
		assert.Equal(t, []string{"p1", "p3", "p9", "p8"}, names(got[:4]))
		assert.NotNil(t, got[0].Category)
	})

	t.Run("home cards cap every ordering", func(t *testing.T) {
		got, err := svc.HomeCards(ctx, owner.ID, Filters{}, models.OrderingDefault)
		require.NoError(t, err)
		assert.Len(t, got, PageSize)
		assert.NotNil(t, got[0].Owner)
	})

	t.Run("favorite home cards are reduced", func(t *testing.T) {
		got, err := svc.HomeCards(ctx, fans[0].ID, Filters{}, models.OrderingFavorite)
		require.NoError(t, err)
		require.Len(t, got, PageSize)
		assert.Equal(t, "p1", got[0].Name)
		assert.Equal(t, 2, got[0].FavoriteCount)
		assert.True(t, got[0].IsFav)
		assert.Nil(t, got[0].Category)
		assert.Nil(t, got[0].Owner)
	})
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)

	owner := storetest.User(t, st, "a@example.com")
	cat := storetest.Category(t, st, "Plumbing")
	p := storetest.Product(t, st, owner, cat, "Leak Fix", 0)

	t.Run("joined", func(t *testing.T) {
		got, err := svc.Get(ctx, owner.ID, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Leak Fix", got.Name)
		assert.Equal(t, cat.ID, got.Category.ID)
		assert.Equal(t, owner.ID, got.Owner.ID)
	})

	t.Run("missing product", func(t *testing.T) {
		_, err := svc.Get(ctx, owner.ID, "missing")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("dangling category", func(t *testing.T) {
		orphanCat := storetest.Category(t, st, "Gone")
		orphan := storetest.Product(t, st, owner, orphanCat, "Orphan", 1)
		_, err := st.Categories().Delete(ctx, orphanCat.ID)
		require.NoError(t, err)

		_, err = svc.Get(ctx, owner.ID, orphan.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)

		// listings stay lenient
		got, err := svc.List(ctx, owner.ID, Filters{Search: "Orphan"}, models.OrderingDefault)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Nil(t, got[0].Category)
		assert.NotNil(t, got[0].Owner)
	})
}

func TestFavoritesAndOwnedBy(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)

	a := storetest.User(t, st, "a@example.com")
	b := storetest.User(t, st, "b@example.com")
	cat := storetest.Category(t, st, "Plumbing")
	p1 := storetest.Product(t, st, a, cat, "Leak Fix", 0)
	p2 := storetest.Product(t, st, a, cat, "Drain Unclog", 1)
	storetest.Product(t, st, b, cat, "Pipe Bend", 2)

	for _, p := range []models.Product{p1, p2} {
		_, err := st.Products().ToggleFavorite(ctx, p.ID, b.ID)
		require.NoError(t, err)
	}

	favs, err := svc.Favorites(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Drain Unclog", "Leak Fix"}, names(favs))
	for _, e := range favs {
		assert.True(t, e.IsFav)
	}

	owned, err := svc.OwnedBy(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Drain Unclog", "Leak Fix"}, names(owned))

	_, err = svc.OwnedBy(ctx, b.ID, "ghost")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
