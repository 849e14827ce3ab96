package service

import (
	"context"
	"testing"
	"time"

	"github.com/andresuchdata/eximdesk/internal/auth"
	"github.com/andresuchdata/eximdesk/internal/config"
	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/andresuchdata/eximdesk/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService() (*AuthService, *fakeUserRepo) {
	users := newFakeUserRepo()
	tokens := auth.NewTokenManager(config.AuthConfig{JWTSecret: "test-secret", Issuer: "eximdesk", TokenTTL: time.Hour})
	return NewAuthService(users, tokens, 4), users
}

func TestAuthService_CreateUserAndLogin(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, CreateUserRequest{Username: "clerk1", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

	resp, err := svc.Login(ctx, LoginRequest{Username: "clerk1", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "clerk1", resp.User.Username)

	claims, err := svc.Authenticate(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "clerk1", claims.Username)
	assert.Equal(t, domain.RoleUser, claims.Role)

	_, err = svc.Login(ctx, LoginRequest{Username: "clerk1", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.Login(ctx, LoginRequest{Username: "nobody", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.CreateUser(ctx, CreateUserRequest{Username: "clerk1", Password: "another-pass"})
	assert.ErrorIs(t, err, repository.ErrConflict)
	_, err = svc.CreateUser(ctx, CreateUserRequest{Username: "x", Password: "short"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAuthService_AuthenticateRejectsGarbage(t *testing.T) {
	svc, _ := newAuthService()
	_, err := svc.Authenticate("not-a-token")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	svc, users := newAuthService()
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "", ""))
	assert.Empty(t, users.users)

	require.NoError(t, svc.EnsureAdmin(ctx, "admin", "bootstrap-pass"))
	require.NoError(t, svc.EnsureAdmin(ctx, "admin", "other-pass"))
	require.Len(t, users.users, 1)
	assert.True(t, users.users["admin"].IsAdmin())

	me, err := svc.Me(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, me.Role)

	_, err = svc.Me(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUnauthorized)
}
