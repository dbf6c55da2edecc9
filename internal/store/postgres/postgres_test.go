package postgres

import (
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marshallshelly/bazaar/internal/models"
	"github.com/marshallshelly/bazaar/pkg/runtime"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"no rows", runtime.ErrNotFound, models.ErrNotFound},
		{"pgx no rows", &runtime.QueryError{Query: "SELECT", Err: pgx.ErrNoRows}, models.ErrNotFound},
		{"unique violation", &runtime.QueryError{Query: "INSERT", Err: &pgconn.PgError{Code: "23505"}}, models.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := translate(tt.err, "thing %s", "x")
			assert.ErrorIs(t, err, tt.kind)
			assert.True(t, strings.HasPrefix(err.Error(), "thing x: "))
		})
	}

	assert.NoError(t, translate(nil, "nothing"))

	other := errors.New("connection reset")
	err := translate(other, "thing")
	assert.ErrorIs(t, err, other)
	assert.NotErrorIs(t, err, models.ErrNotFound)
}

func TestOne(t *testing.T) {
	_, err := one([]int(nil), nil)
	assert.ErrorIs(t, err, runtime.ErrNotFound)

	v, err := one([]int{7, 8}, nil)
	require.NoError(t, err)
	assert.Equal(t, 7, *v)
}

func TestMigrationsCreateCatalogTables(t *testing.T) {
	migrations, err := Migrations()
	require.NoError(t, err)
	require.Len(t, migrations, 1)

	up := migrations[0].UpSQL
	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS users (",
		"email text NOT NULL UNIQUE",
		"CREATE TABLE IF NOT EXISTS categories (",
		"name text NOT NULL UNIQUE",
		"rate double precision NOT NULL DEFAULT 2.5",
		"CREATE INDEX IF NOT EXISTS idx_products_favorited_by ON products USING gin (favorited_by);",
		"CREATE TABLE IF NOT EXISTS orders (",
	} {
		assert.Contains(t, up, want)
	}
	assert.Less(t, strings.Index(up, "users ("), strings.Index(up, "orders ("))
}
