package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcrypt(t *testing.T) {
	c := NewBcrypt(bcrypt.MinCost)

	hash, err := c.Hash("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)

	assert.True(t, c.Verify("s3cret!", hash))
	assert.False(t, c.Verify("wrong", hash))
	assert.False(t, c.Verify("s3cret!", "not-a-hash"))

	assert.Equal(t, bcrypt.DefaultCost, NewBcrypt(0).Cost)
}

func TestTokens(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)

	t.Run("round trip", func(t *testing.T) {
		raw, err := tokens.Issue("user-1")
		require.NoError(t, err)

		id, err := tokens.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, "user-1", id)
	})

	t.Run("expired", func(t *testing.T) {
		past := NewTokens("secret", time.Hour)
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		raw, err := past.Issue("user-1")
		require.NoError(t, err)

		_, err = tokens.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		raw, err := NewTokens("other", time.Hour).Issue("user-1")
		require.NoError(t, err)

		_, err = tokens.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned", func(t *testing.T) {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = tokens.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.Parse("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
