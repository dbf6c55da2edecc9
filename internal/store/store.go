// Package store defines the Entity Store: typed access to users, categories,
// products and orders. Implementations enforce no referential integrity;
// keeping back-references consistent is the job of the services above.
//
// Every lookup of a missing record fails with models.ErrNotFound and every
// unique-key violation fails with models.ErrConflict.
package store

import (
	"context"

	"github.com/marshallshelly/bazaar/internal/models"
)

// Store groups the four collections.
type Store interface {
	Users() UserStore
	Categories() CategoryStore
	Products() ProductStore
	Orders() OrderStore

	// WithinTx runs fn against a transactional view of the store. The
	// changes made through that view commit when fn returns nil and are
	// discarded otherwise. Calling WithinTx on a transactional view nests.
	WithinTx(ctx context.Context, fn func(Store) error) error
}

// UserStore holds accounts.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	Get(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.User, error)
	Lock(ctx context.Context, id string, mode LockMode) (*models.User, error)
	// Update overwrites the profile fields: names, phone, address, image and
	// the technician flag. The password hash is left alone.
	Update(ctx context.Context, u *models.User) error
	SetPassword(ctx context.Context, id, hash string) error
	Delete(ctx context.Context, id string) (*models.User, error)
	// PushProduct appends productID unless it is already present.
	PushProduct(ctx context.Context, userID, productID string) error
	PullProducts(ctx context.Context, userID string, productIDs []string) error
}

// CategoryStore holds categories.
type CategoryStore interface {
	Create(ctx context.Context, c *models.Category) error
	Get(ctx context.Context, id string) (*models.Category, error)
	FindByName(ctx context.Context, name string) (*models.Category, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Category, error)
	// List returns every category ordered by name.
	List(ctx context.Context) ([]models.Category, error)
	Delete(ctx context.Context, id string) (*models.Category, error)
	PushProduct(ctx context.Context, categoryID, productID string) error
	PullProducts(ctx context.Context, categoryID string, productIDs []string) error
}

// ProductStore holds products and their favorites and ratings.
type ProductStore interface {
	Create(ctx context.Context, p *models.Product) error
	Get(ctx context.Context, id string) (*models.Product, error)
	Find(ctx context.Context, q ProductQuery) ([]models.Product, error)
	Lock(ctx context.Context, id string, mode LockMode) (*models.Product, error)
	// Update overwrites name, description, price and image.
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id string) (*models.Product, error)
	DeleteMany(ctx context.Context, ids []string) (int64, error)

	// ApplyRating folds value into the running mean in one atomic step and
	// returns the updated product.
	ApplyRating(ctx context.Context, id string, value float64) (*models.Product, error)
	// ToggleFavorite flips userID's membership in the favorites of product
	// id in one atomic step. It reports whether userID was added.
	ToggleFavorite(ctx context.Context, id, userID string) (bool, error)
	// PullFavoriteEverywhere removes userID from every product's favorites.
	PullFavoriteEverywhere(ctx context.Context, userID string) (int64, error)
}

// OrderStore holds orders.
type OrderStore interface {
	Create(ctx context.Context, o *models.Order) error
	Get(ctx context.Context, id string) (*models.Order, error)
	// FindByBuyer and FindByProducts return newest orders first.
	FindByBuyer(ctx context.Context, buyerID string) ([]models.Order, error)
	FindByProducts(ctx context.Context, productIDs []string) ([]models.Order, error)
	// UpdateState moves order id from one state to another only if it is
	// still in from. Otherwise it fails with models.ErrConflict.
	UpdateState(ctx context.Context, id string, from, to models.OrderState) (*models.Order, error)
	DeleteByBuyer(ctx context.Context, buyerID string) (int64, error)
	DeleteByProducts(ctx context.Context, productIDs []string) (int64, error)
}

// LockMode is the row lock taken by Lock. Inside WithinTx the lock lasts
// until the transaction ends; outside it Lock behaves like Get.
type LockMode int

const (
	// LockExists keeps the row from being deleted. Ordinary updates proceed.
	LockExists LockMode = iota
	// LockUpdate keeps every other writer off the row.
	LockUpdate
)

// ProductSort selects the sort key of a product query. Ties break on
// creation time then id, both descending.
type ProductSort int

const (
	SortNewest ProductSort = iota
	SortTopRated
	SortMostFavorited
)

// ProductQuery filters products. Zero-valued fields do not filter, except
// that a non-nil empty IDs matches nothing.
type ProductQuery struct {
	IDs         []string
	CategoryID  string
	OwnerID     string
	FavoritedBy string
	// Search matches name or description, case-insensitively.
	Search string
	Sort   ProductSort
	Limit  int
}
