package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marshallshelly/bazaar/pkg/registry"
)

func TestOrderStateTransitions(t *testing.T) {
	tests := []struct {
		from, to OrderState
		want     bool
	}{
		{OrderPending, OrderAccepted, true},
		{OrderPending, OrderRejected, true},
		{OrderPending, OrderPending, false},
		{OrderAccepted, OrderRejected, false},
		{OrderAccepted, OrderPending, false},
		{OrderRejected, OrderAccepted, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}

	assert.False(t, OrderPending.Terminal())
	assert.True(t, OrderAccepted.Terminal())
	assert.True(t, OrderRejected.Terminal())
}

func TestParseOrderState(t *testing.T) {
	st, err := ParseOrderState("accepted")
	require.NoError(t, err)
	assert.Equal(t, OrderAccepted, st)

	_, err = ParseOrderState("A")
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestParseOrdering(t *testing.T) {
	for _, s := range []string{"", "favorite", "newest", "topRated"} {
		_, err := ParseOrdering(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseOrdering("cheapest")
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestUserSummaryOmitsCredentials(t *testing.T) {
	phone := "555"
	u := User{
		ID:           "u1",
		Email:        "a@example.com",
		PasswordHash: "secret",
		FirstName:    "Ann",
		LastName:     "Lee",
		Phone:        &phone,
		IsTechnician: true,
		ProductIDs:   []string{"p1"},
	}

	s := u.Summary()
	assert.Equal(t, UserSummary{
		ID:           "u1",
		Email:        "a@example.com",
		FirstName:    "Ann",
		LastName:     "Lee",
		Phone:        &phone,
		IsTechnician: true,
	}, s)
}

func TestNewCatalogEntry(t *testing.T) {
	p := Product{ID: "p1", Name: "Leak Fix", Price: 50, Rate: InitialRate, FavoritedBy: []string{"b", "c"}}

	fav := NewCatalogEntry(&p, "b")
	assert.True(t, fav.IsFav)
	assert.Equal(t, 2, fav.FavoriteCount)
	assert.Nil(t, fav.Category)
	assert.Nil(t, fav.Owner)

	assert.False(t, NewCatalogEntry(&p, "a").IsFav)
}

func TestRegisterAllTableNames(t *testing.T) {
	require.NoError(t, RegisterAll())

	var names []string
	for _, table := range registry.All() {
		names = append(names, table.Name)
	}
	assert.Subset(t, names, []string{"users", "categories", "products", "orders"})

	products, err := registry.GetOrRegister(Product{})
	require.NoError(t, err)
	col := products.GetColumnByName("favorited_by")
	require.NotNil(t, col)
	assert.Equal(t, "text[]", col.SQLType)
	require.NotNil(t, col.Default)
	assert.Equal(t, "'{}'", *col.Default)
}
