package postgres

import (
	"context"
	"fmt"

	"github.com/marshallshelly/bazaar/internal/models"
	"github.com/marshallshelly/bazaar/pkg/migration"
	"github.com/marshallshelly/bazaar/pkg/registry"
	"github.com/marshallshelly/bazaar/pkg/runtime"
	"github.com/marshallshelly/bazaar/pkg/schema"
)

// SchemaVersion identifies the catalog schema migration.
const SchemaVersion = "20240301120000"

// Migrations returns the migrations that create the catalog tables.
func Migrations() ([]migration.Migration, error) {
	var tables []*schema.TableMetadata
	for _, model := range models.All() {
		table, err := registry.GetOrRegister(model)
		if err != nil {
			return nil, fmt.Errorf("register models: %w", err)
		}
		tables = append(tables, table)
	}
	return []migration.Migration{
		migration.FromTables(SchemaVersion, "catalog_schema", tables),
	}, nil
}

// Migrate applies pending migrations and returns the applied versions.
func Migrate(ctx context.Context, db *runtime.DB) ([]string, error) {
	migrations, err := Migrations()
	if err != nil {
		return nil, err
	}
	return migration.NewExecutor(db.Pool()).ApplyAll(ctx, migrations)
}
