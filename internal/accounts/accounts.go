// Package accounts registers users, checks their credentials and edits
// their profiles.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/marshallshelly/bazaar/internal/auth"
	"github.com/marshallshelly/bazaar/internal/files"
	"github.com/marshallshelly/bazaar/internal/models"
	"github.com/marshallshelly/bazaar/internal/store"
)

// MinPasswordLength is the shortest password Register and ChangePassword
// accept.
const MinPasswordLength = 6

// TokenIssuer signs session tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// Registration is the input of Register.
type Registration struct {
	Email        string
	Password     string
	FirstName    string
	LastName     string
	Phone        *string
	Address      *string
	IsTechnician bool
}

// ProfilePatch changes the non-nil fields of a profile.
type ProfilePatch struct {
	FirstName    *string
	LastName     *string
	Phone        *string
	Address      *string
	IsTechnician *bool
}

// Service manages user accounts.
type Service struct {
	store  store.Store
	files  files.Store
	creds  auth.Credentials
	tokens TokenIssuer
	log    logrus.FieldLogger
}

// New returns a Service. creds hashes passwords and tokens signs sessions.
func New(s store.Store, fs files.Store, creds auth.Credentials, tokens TokenIssuer, log logrus.FieldLogger) *Service {
	return &Service{store: s, files: fs, creds: creds, tokens: tokens, log: log}
}

// Register creates an account. Emails are stored lowercased.
func (s *Service) Register(ctx context.Context, r Registration) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(r.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("email %q: %w", r.Email, models.ErrBadRequest)
	}
	if len(r.Password) < MinPasswordLength {
		return nil, fmt.Errorf("password shorter than %d: %w", MinPasswordLength, models.ErrBadRequest)
	}

	hash, err := s.creds.Hash(r.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Phone:        r.Phone,
		Address:      r.Address,
		IsTechnician: r.IsTechnician,
		ProductIDs:   []string{},
	}
	if err := s.store.Users().Create(ctx, &u); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": u.ID}).Info("account registered")
	return &u, nil
}

// Authenticate checks a password and issues a token. An unknown email and a
// wrong password fail the same way.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, string, error) {
	u, err := s.store.Users().FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, models.ErrNotFound) {
		return nil, "", fmt.Errorf("invalid credentials: %w", models.ErrBadRequest)
	}
	if err != nil {
		return nil, "", err
	}
	if !s.creds.Verify(password, u.PasswordHash) {
		return nil, "", fmt.Errorf("invalid credentials: %w", models.ErrBadRequest)
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return u, token, nil
}

// Profile returns the user.
func (s *Service) Profile(ctx context.Context, userID string) (*models.User, error) {
	return s.store.Users().Get(ctx, userID)
}

// UpdateProfile applies patch to the locked user row. A new image replaces
// the stored one, which is then deleted.
func (s *Service) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch, image *files.Upload) (*models.User, error) {
	var saved *string
	if image != nil {
		path, err := s.files.Save(ctx, image.Filename, image.Data)
		if err != nil {
			return nil, fmt.Errorf("save image: %w", err)
		}
		saved = &path
	}

	var (
		u        *models.User
		previous *string
	)
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		var err error
		if u, err = tx.Users().Lock(ctx, userID, store.LockUpdate); err != nil {
			return err
		}

		if patch.FirstName != nil {
			u.FirstName = *patch.FirstName
		}
		if patch.LastName != nil {
			u.LastName = *patch.LastName
		}
		if patch.Phone != nil {
			u.Phone = patch.Phone
		}
		if patch.Address != nil {
			u.Address = patch.Address
		}
		if patch.IsTechnician != nil {
			u.IsTechnician = *patch.IsTechnician
		}
		if saved != nil {
			previous, u.Image = u.Image, saved
		}
		return tx.Users().Update(ctx, u)
	})
	if err != nil {
		files.DeleteQuietly(ctx, s.files, s.log, saved)
		return nil, err
	}

	files.DeleteQuietly(ctx, s.files, s.log, previous)
	return u, nil
}

// ChangePassword replaces the password after checking the old one. Only
// the password hash is written.
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return fmt.Errorf("password shorter than %d: %w", MinPasswordLength, models.ErrBadRequest)
	}
	hash, err := s.creds.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.store.WithinTx(ctx, func(tx store.Store) error {
		u, err := tx.Users().Lock(ctx, userID, store.LockUpdate)
		if err != nil {
			return err
		}
		if !s.creds.Verify(oldPassword, u.PasswordHash) {
			return fmt.Errorf("invalid credentials: %w", models.ErrBadRequest)
		}
		return tx.Users().SetPassword(ctx, userID, hash)
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"user_id": userID}).Info("password changed")
	return nil
}
