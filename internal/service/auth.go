// Package service holds the application services orchestrating storage and
// auth primitives.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/OeunSochetra/storefront-api/internal/auth"
	"github.com/OeunSochetra/storefront-api/internal/models"
	"github.com/OeunSochetra/storefront-api/internal/storage"
)

// ErrInvalidCredentials covers both an unknown username and a wrong
// password. Collapsing the two keeps login failures from confirming which
// usernames exist.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService composes the credential store, password hasher, and token
// manager into the register/login/profile operations.
type AuthService struct {
	users  storage.UserStore
	hasher *auth.PasswordHasher
	tokens *auth.TokenManager
	logger *slog.Logger
}

// NewAuthService creates the service with its injected collaborators.
func NewAuthService(users storage.UserStore, hasher *auth.PasswordHasher, tokens *auth.TokenManager, logger *slog.Logger) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens, logger: logger}
}

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Image    string
}

// Register creates a new user. The username existence check runs before
// hashing so doomed requests skip the bcrypt cost; the store's unique
// constraints remain the authority under concurrency.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	_, err := s.users.FindUserByUsername(ctx, in.Username)
	if err == nil {
		return models.User{}, &storage.DuplicateError{Field: "username"}
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return models.User{}, fmt.Errorf("look up username: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.users.CreateUser(ctx, models.User{
		Username:     in.Username,
		Email:        in.Email,
		Image:        in.Image,
		PasswordHash: hash,
	})
	if err != nil {
		return models.User{}, err
	}

	s.logger.Info("user registered", "userID", created.ID, "username", created.Username)
	created.PasswordHash = ""
	return created, nil
}

// Login verifies the credentials and issues a bearer token for the user.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("look up username: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.Info("login rejected", "userID", user.ID)
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// CurrentUser fetches the authenticated user's record. A not-found result
// is legitimate: the token outlived its subject.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (models.User, error) {
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

// UpdateCurrentUser applies profile changes. The password and ID are not
// reachable through this path, so the stored hash is never touched.
func (s *AuthService) UpdateCurrentUser(ctx context.Context, userID string, upd storage.UserUpdate) (models.User, error) {
	user, err := s.users.UpdateUser(ctx, userID, upd)
	if err != nil {
		return models.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}
