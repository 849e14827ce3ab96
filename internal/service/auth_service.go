package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/andresuchdata/eximdesk/internal/auth"
	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/andresuchdata/eximdesk/internal/repository"
	"github.com/rs/zerolog/log"
)

const userEntity = "user"

// LoginRequest is the credentials payload of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CreateUserRequest is the payload for registering an operator.
type CreateUserRequest struct {
	Username string      `json:"username" binding:"required,min=3,max=50,alphanum"`
	Password string      `json:"password" binding:"required,min=8,max=72"`
	Role     domain.Role `json:"role" binding:"omitempty,oneof=Admin User"`
}

// LoginResponse carries the issued token and the signed-in user.
type LoginResponse struct {
	*auth.Token
	User *domain.User `json:"user"`
}

type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	bcryptCost int
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, bcryptCost int) *AuthService {
	return &AuthService{users: users, tokens: tokens, bcryptCost: bcryptCost}
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid username or password", ErrUnauthorized)
		}
		return nil, err
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, fmt.Errorf("%w: invalid username or password", ErrUnauthorized)
		}
		return nil, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{Token: token, User: user}, nil
}

// Authenticate validates an access token and returns its claims.
func (s *AuthService) Authenticate(token string) (*auth.Claims, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return claims, nil
}

func (s *AuthService) CreateUser(ctx context.Context, req CreateUserRequest) (*domain.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := validate(&req); err != nil {
		return nil, err
	}
	if req.Role == "" {
		req.Role = domain.RoleUser
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{Username: req.Username, PasswordHash: hash, Role: req.Role}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("username %s is taken: %w", req.Username, repository.ErrConflict)
		}
		return nil, err
	}

	annotate(ctx, domain.AuditCreate, userEntity, strconv.FormatInt(user.ID, 10), domain.FieldChanges{
		{Field: "username", New: user.Username},
		{Field: "role", New: string(user.Role)},
	})
	return user, nil
}

func (s *AuthService) Me(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: user %s no longer exists", ErrUnauthorized, username)
	}
	return user, err
}

func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = make([]*domain.User, 0)
	}
	return users, nil
}

// EnsureAdmin creates the bootstrap admin account when it does not exist yet.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	_, err := s.CreateUser(ctx, CreateUserRequest{Username: username, Password: password, Role: domain.RoleAdmin})
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	log.Info().Str("username", username).Msg("bootstrap admin user created")
	return nil
}
