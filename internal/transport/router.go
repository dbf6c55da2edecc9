// Package transport exposes the catalog services over HTTP.
package transport

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/marshallshelly/bazaar/internal/accounts"
	"github.com/marshallshelly/bazaar/internal/cascade"
	"github.com/marshallshelly/bazaar/internal/catalog"
	"github.com/marshallshelly/bazaar/internal/favorite"
	"github.com/marshallshelly/bazaar/internal/listing"
	"github.com/marshallshelly/bazaar/internal/orders"
	"github.com/marshallshelly/bazaar/internal/rating"
)

// TokenParser resolves a bearer token to a user id.
type TokenParser interface {
	Parse(raw string) (string, error)
}

// Deps are the collaborators of a Server.
type Deps struct {
	Accounts  *accounts.Service
	Listing   *listing.Service
	Catalog   *catalog.Service
	Favorites *favorite.Service
	Ratings   *rating.Service
	Orders    *orders.Service
	Cascade   *cascade.Service
	Tokens    TokenParser
	Log       logrus.FieldLogger
}

type Server struct {
	accounts  *accounts.Service
	listing   *listing.Service
	catalog   *catalog.Service
	favorites *favorite.Service
	ratings   *rating.Service
	orders    *orders.Service
	cascade   *cascade.Service
	tokens    TokenParser
	log       logrus.FieldLogger
}

// NewServer returns a Server over the services in d.
func NewServer(d Deps) *Server {
	return &Server{
		accounts:  d.Accounts,
		listing:   d.Listing,
		catalog:   d.Catalog,
		favorites: d.Favorites,
		ratings:   d.Ratings,
		orders:    d.Orders,
		cascade:   d.Cascade,
		tokens:    d.Tokens,
		log:       d.Log,
	}
}

// Router returns the API handler. Every route below /api/v1 except
// register and login requires a bearer token.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/users/register", s.register).Methods(http.MethodPost)
	api.HandleFunc("/users/login", s.login).Methods(http.MethodPost)

	p := api.NewRoute().Subrouter()
	p.Use(s.authenticate)

	p.HandleFunc("/users/me", s.profile).Methods(http.MethodGet)
	p.HandleFunc("/users/me", s.updateProfile).Methods(http.MethodPut)
	p.HandleFunc("/users/me", s.removeAccount).Methods(http.MethodDelete)
	p.HandleFunc("/users/me/password", s.changePassword).Methods(http.MethodPut)
	p.HandleFunc("/users/{id}/products", s.ownedBy).Methods(http.MethodGet)

	p.HandleFunc("/categories", s.listCategories).Methods(http.MethodGet)
	p.HandleFunc("/categories", s.createCategory).Methods(http.MethodPost)
	p.HandleFunc("/categories/{id}", s.getCategory).Methods(http.MethodGet)
	p.HandleFunc("/categories/{id}", s.removeCategory).Methods(http.MethodDelete)

	p.HandleFunc("/products", s.listProducts).Methods(http.MethodGet)
	p.HandleFunc("/products", s.createProduct).Methods(http.MethodPost)
	p.HandleFunc("/products/home", s.homeCards).Methods(http.MethodGet)
	p.HandleFunc("/products/favorites", s.favoriteProducts).Methods(http.MethodGet)
	p.HandleFunc("/products/{id}", s.getProduct).Methods(http.MethodGet)
	p.HandleFunc("/products/{id}", s.updateProduct).Methods(http.MethodPut)
	p.HandleFunc("/products/{id}", s.removeProduct).Methods(http.MethodDelete)
	p.HandleFunc("/products/{id}/rate", s.rateProduct).Methods(http.MethodPost)
	p.HandleFunc("/products/{id}/favorite", s.toggleFavorite).Methods(http.MethodPost)

	p.HandleFunc("/orders", s.createOrder).Methods(http.MethodPost)
	p.HandleFunc("/orders/sent", s.sentOrders).Methods(http.MethodGet)
	p.HandleFunc("/orders/received", s.receivedOrders).Methods(http.MethodGet)
	p.HandleFunc("/orders/{id}", s.updateOrder).Methods(http.MethodPut)

	return r
}
