package transport

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/marshallshelly/bazaar/internal/accounts"
	"github.com/marshallshelly/bazaar/internal/models"
)

type registerRequest struct {
	Email        string  `json:"email" validate:"required,email"`
	Password     string  `json:"password" validate:"required,min=6"`
	FirstName    string  `json:"firstName" validate:"required"`
	LastName     string  `json:"lastName" validate:"required"`
	Phone        *string `json:"phone"`
	Address      *string `json:"address"`
	IsTechnician bool    `json:"isTechnician"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

type removeAccountRequest struct {
	Password string `json:"password" validate:"required"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	u, err := s.accounts.Register(r.Context(), accounts.Registration{
		Email:        req.Email,
		Password:     req.Password,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Address:      req.Address,
		IsTechnician: req.IsTechnician,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	u, token, err := s.accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: u})
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	u, err := s.accounts.Profile(r.Context(), UserID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// updateProfile takes a multipart form so a new image can ride along.
func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	image, err := parseMultipart(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	patch := accounts.ProfilePatch{
		FirstName: formValue(r, "firstName"),
		LastName:  formValue(r, "lastName"),
		Phone:     formValue(r, "phone"),
		Address:   formValue(r, "address"),
	}
	if v := formValue(r, "isTechnician"); v != nil {
		b, err := strconv.ParseBool(*v)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("isTechnician %q: %w", *v, models.ErrBadRequest))
			return
		}
		patch.IsTechnician = &b
	}

	u, err := s.accounts.UpdateProfile(r.Context(), UserID(r.Context()), patch, image)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.accounts.ChangePassword(r.Context(), UserID(r.Context()), req.OldPassword, req.NewPassword); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) removeAccount(w http.ResponseWriter, r *http.Request) {
	var req removeAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.cascade.RemoveAccount(r.Context(), UserID(r.Context()), req.Password); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ownedBy(w http.ResponseWriter, r *http.Request) {
	entries, err := s.catalog.OwnedBy(r.Context(), UserID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
