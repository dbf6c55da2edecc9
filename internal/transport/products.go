package transport

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/marshallshelly/bazaar/internal/catalog"
	"github.com/marshallshelly/bazaar/internal/listing"
	"github.com/marshallshelly/bazaar/internal/models"
)

type createProductForm struct {
	Name         string  `validate:"required"`
	Description  string  `validate:"max=4000"`
	Price        float64 `validate:"gte=0"`
	CategoryName string  `validate:"required"`
}

type rateRequest struct {
	Rate *float64 `json:"rate" validate:"required,gte=0,lte=5"`
}

type favoriteResponse struct {
	Result string `json:"result"`
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	cs, err := s.listing.ListCategories(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	image, err := parseMultipart(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	name := ""
	if v := formValue(r, "name"); v != nil {
		name = *v
	}
	c, err := s.listing.CreateCategory(r.Context(), name, image)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) getCategory(w http.ResponseWriter, r *http.Request) {
	c, err := s.listing.GetCategory(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) removeCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.cascade.RemoveCategory(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// catalogQuery reads the category, search and order query parameters.
func catalogQuery(r *http.Request) (catalog.Filters, models.Ordering, error) {
	q := r.URL.Query()
	o, err := models.ParseOrdering(q.Get("order"))
	if err != nil {
		return catalog.Filters{}, "", err
	}
	return catalog.Filters{CategoryName: q.Get("category"), Search: q.Get("search")}, o, nil
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	f, o, err := catalogQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	entries, err := s.catalog.List(r.Context(), UserID(r.Context()), f, o)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) homeCards(w http.ResponseWriter, r *http.Request) {
	f, o, err := catalogQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	entries, err := s.catalog.HomeCards(r.Context(), UserID(r.Context()), f, o)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) favoriteProducts(w http.ResponseWriter, r *http.Request) {
	entries, err := s.catalog.Favorites(r.Context(), UserID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	e, err := s.catalog.Get(r.Context(), UserID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	image, err := parseMultipart(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var form createProductForm
	if v := formValue(r, "name"); v != nil {
		form.Name = *v
	}
	if v := formValue(r, "description"); v != nil {
		form.Description = *v
	}
	if v := formValue(r, "categoryName"); v != nil {
		form.CategoryName = *v
	}
	if v := formValue(r, "price"); v != nil {
		if form.Price, err = parsePrice(*v); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	if err := validate.Struct(form); err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := s.listing.CreateProduct(r.Context(), UserID(r.Context()), listing.NewProduct{
		Name:         form.Name,
		Description:  form.Description,
		Price:        form.Price,
		CategoryName: form.CategoryName,
	}, image)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	image, err := parseMultipart(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	patch := listing.ProductPatch{
		Name:        formValue(r, "name"),
		Description: formValue(r, "description"),
	}
	if v := formValue(r, "price"); v != nil {
		price, err := parsePrice(*v)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		patch.Price = &price
	}

	p, err := s.listing.UpdateProduct(r.Context(), mux.Vars(r)["id"], UserID(r.Context()), patch, image)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) removeProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.cascade.RemoveProduct(r.Context(), mux.Vars(r)["id"], UserID(r.Context())); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) rateProduct(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := s.ratings.Rate(r.Context(), mux.Vars(r)["id"], *req.Rate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewCatalogEntry(p, UserID(r.Context())))
}

func (s *Server) toggleFavorite(w http.ResponseWriter, r *http.Request) {
	res, err := s.favorites.Toggle(r.Context(), mux.Vars(r)["id"], UserID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, favoriteResponse{Result: string(res)})
}

func parsePrice(v string) (float64, error) {
	price, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("price %q: %w", v, models.ErrBadRequest)
	}
	return price, nil
}
