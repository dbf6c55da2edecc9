// Package auth hashes credentials and issues the bearer tokens that carry
// an authenticated user id.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Credentials hashes and verifies passwords.
type Credentials interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// Bcrypt is Credentials backed by bcrypt.
type Bcrypt struct {
	Cost int
}

// NewBcrypt returns Bcrypt with cost, or bcrypt.DefaultCost when cost is out of range.
func NewBcrypt(cost int) Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return Bcrypt{Cost: cost}
}

// Hash returns the bcrypt hash of password.
func (b Bcrypt) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.Cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether password matches hash.
func (b Bcrypt) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
