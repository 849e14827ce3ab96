package auth

import (
	"testing"
	"time"

	"github.com/andresuchdata/eximdesk/internal/config"
	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestManager() *TokenManager {
	return NewTokenManager(config.AuthConfig{JWTSecret: "test-secret", Issuer: "eximdesk", TokenTTL: time.Hour})
}

func TestTokenManager_IssueAndValidate(t *testing.T) {
	m := newTestManager()
	user := &domain.User{ID: 42, Username: "ops", Role: domain.RoleAdmin}

	token, err := m.Issue(user)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.NotEmpty(t, token.AccessToken)

	claims, err := m.Validate(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "ops", claims.Username)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.Equal(t, "42", claims.Subject)
}

func TestTokenManager_RejectsBadTokens(t *testing.T) {
	m := newTestManager()
	token, err := m.Issue(&domain.User{ID: 1, Username: "ops", Role: domain.RoleUser})
	require.NoError(t, err)

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Validate("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenManager(config.AuthConfig{JWTSecret: "other", Issuer: "eximdesk"})
		_, err := other.Validate(token.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewTokenManager(config.AuthConfig{JWTSecret: "test-secret", Issuer: "someone-else"})
		_, err := other.Validate(token.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		expired := newTestManager()
		expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := expired.Validate(token.AccessToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret!", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)

	assert.NoError(t, CheckPassword(hash, "s3cret!"))
	assert.ErrorIs(t, CheckPassword(hash, "wrong"), ErrPasswordMismatch)
}
