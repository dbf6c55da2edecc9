package transport

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/marshallshelly/bazaar/internal/models"
)

type createOrderRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

type updateOrderRequest struct {
	State string `json:"state" validate:"required"`
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	v, err := s.orders.Create(r.Context(), req.ProductID, UserID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) sentOrders(w http.ResponseWriter, r *http.Request) {
	vs, err := s.orders.ListAsSender(r.Context(), UserID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vs)
}

func (s *Server) receivedOrders(w http.ResponseWriter, r *http.Request) {
	vs, err := s.orders.ListAsReceiver(r.Context(), UserID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vs)
}

func (s *Server) updateOrder(w http.ResponseWriter, r *http.Request) {
	var req updateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	state, err := models.ParseOrderState(req.State)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	v, err := s.orders.Update(r.Context(), mux.Vars(r)["id"], state, UserID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
