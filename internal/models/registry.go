package models

import (
	"github.com/marshallshelly/bazaar/pkg/registry"
	"github.com/marshallshelly/bazaar/pkg/schema"
)

func init() {
	schema.RegisterTableName("User", "users")
	schema.RegisterTableName("Category", "categories")
	schema.RegisterTableName("Product", "products")
	schema.RegisterTableName("Order", "orders")
}

// All lists the persisted models in table creation order.
func All() []any {
	return []any{
		User{},
		Category{},
		Product{},
		Order{},
	}
}

// RegisterAll registers all models.
func RegisterAll() error {
	for _, model := range All() {
		if err := registry.Register(model); err != nil {
			return err
		}
	}

	return nil
}
