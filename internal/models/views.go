package models

import (
	"fmt"
	"time"
)

// CategorySummary is the category projection embedded in catalog entries.
type CategorySummary struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Image *string `json:"image,omitempty"`
}

// UserSummary is the owner projection embedded in catalog entries. It never
// carries credentials or back-references.
type UserSummary struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	FirstName    string  `json:"firstName"`
	LastName     string  `json:"lastName"`
	Phone        *string `json:"phone,omitempty"`
	Address      *string `json:"address,omitempty"`
	IsTechnician bool    `json:"isTechnician"`
}

// CatalogEntry is a product as seen by one viewer. Category and Owner are
// nil in the reduced projection used by favorite home cards.
type CatalogEntry struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description,omitempty"`
	Price         float64          `json:"price"`
	Image         *string          `json:"image,omitempty"`
	Rate          float64          `json:"rate"`
	CountUserRate int              `json:"countUserRate"`
	FavoriteCount int              `json:"favoriteCount"`
	IsFav         bool             `json:"is_fav"`
	CreatedAt     time.Time        `json:"createdAt"`
	Category      *CategorySummary `json:"category,omitempty"`
	Owner         *UserSummary     `json:"owner,omitempty"`
}

// NewCatalogEntry projects p for viewerID without joins.
func NewCatalogEntry(p *Product, viewerID string) CatalogEntry {
	return CatalogEntry{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		Image:         p.Image,
		Rate:          p.Rate,
		CountUserRate: p.CountUserRate,
		FavoriteCount: len(p.FavoritedBy),
		IsFav:         p.IsFavoritedBy(viewerID),
		CreatedAt:     p.CreatedAt,
	}
}

// OrderView is an order joined with its product and the buyer who sent it.
type OrderView struct {
	ID        string       `json:"id"`
	State     OrderState   `json:"state"`
	CreatedAt time.Time    `json:"createdAt"`
	Product   CatalogEntry `json:"product"`
	Sender    UserSummary  `json:"sender"`
}

// Ordering selects how catalog listings are sorted.
type Ordering string

const (
	OrderingDefault  Ordering = ""
	OrderingFavorite Ordering = "favorite"
	OrderingNewest   Ordering = "newest"
	OrderingTopRated Ordering = "topRated"
)

// ParseOrdering validates a client-supplied ordering.
func ParseOrdering(s string) (Ordering, error) {
	switch o := Ordering(s); o {
	case OrderingDefault, OrderingFavorite, OrderingNewest, OrderingTopRated:
		return o, nil
	}
	return "", fmt.Errorf("unknown ordering %q: %w", s, ErrBadRequest)
}
