package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/marshallshelly/bazaar/internal/models"
	"github.com/marshallshelly/bazaar/internal/store"
)

type users struct{ v *view }

func (s users) Create(_ context.Context, u *models.User) error {
	defer s.v.lock()()

	u.Email = strings.ToLower(u.Email)
	if _, ok := s.v.d.users[u.ID]; ok {
		return fmt.Errorf("user %s: %w", u.ID, models.ErrConflict)
	}
	for _, existing := range s.v.d.users {
		if existing.Email == u.Email {
			return fmt.Errorf("email %s already registered: %w", u.Email, models.ErrConflict)
		}
	}
	if u.ProductIDs == nil {
		u.ProductIDs = []string{}
	}
	s.v.d.users[u.ID] = cloneUser(*u)
	return nil
}

func (s users) Get(_ context.Context, id string) (*models.User, error) {
	defer s.v.lock()()

	u, ok := s.v.d.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	u = cloneUser(u)
	return &u, nil
}

func (s users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	defer s.v.lock()()

	email = strings.ToLower(email)
	for _, u := range s.v.d.users {
		if u.Email == email {
			u = cloneUser(u)
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user with email %s: %w", email, models.ErrNotFound)
}

func (s users) FindByIDs(_ context.Context, ids []string) ([]models.User, error) {
	defer s.v.lock()()

	var out []models.User
	for _, id := range ids {
		if u, ok := s.v.d.users[id]; ok {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

// Lock is Get: a transaction already holds the whole dataset.
func (s users) Lock(ctx context.Context, id string, _ store.LockMode) (*models.User, error) {
	return s.Get(ctx, id)
}

func (s users) Update(_ context.Context, u *models.User) error {
	defer s.v.lock()()

	cur, ok := s.v.d.users[u.ID]
	if !ok {
		return fmt.Errorf("user %s: %w", u.ID, models.ErrNotFound)
	}
	cur.FirstName = u.FirstName
	cur.LastName = u.LastName
	cur.Phone = u.Phone
	cur.Address = u.Address
	cur.Image = u.Image
	cur.IsTechnician = u.IsTechnician
	s.v.d.users[u.ID] = cur
	*u = cloneUser(cur)
	return nil
}

func (s users) SetPassword(_ context.Context, id, hash string) error {
	defer s.v.lock()()

	u, ok := s.v.d.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	u.PasswordHash = hash
	s.v.d.users[id] = u
	return nil
}

func (s users) Delete(_ context.Context, id string) (*models.User, error) {
	defer s.v.lock()()

	u, ok := s.v.d.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	delete(s.v.d.users, id)
	return &u, nil
}

func (s users) PushProduct(_ context.Context, userID, productID string) error {
	defer s.v.lock()()

	u, ok := s.v.d.users[userID]
	if !ok {
		return fmt.Errorf("user %s: %w", userID, models.ErrNotFound)
	}
	if !slices.Contains(u.ProductIDs, productID) {
		u.ProductIDs = append(slices.Clone(u.ProductIDs), productID)
		s.v.d.users[userID] = u
	}
	return nil
}

// PullProducts on a missing user is a no-op so cascades can be retried.
func (s users) PullProducts(_ context.Context, userID string, productIDs []string) error {
	defer s.v.lock()()

	if u, ok := s.v.d.users[userID]; ok {
		u.ProductIDs = pull(u.ProductIDs, productIDs)
		s.v.d.users[userID] = u
	}
	return nil
}
