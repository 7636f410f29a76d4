// Package service provides the authentication and job-tracking business
// logic, delegating persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/JobTracker/internal/apperr"
	"github.com/atinyakov/JobTracker/internal/models"
)

// UserRepository defines the persistence operations
// required by the authentication service.
type UserRepository interface {
	// FindByUsername returns the user with the given username.
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	// FindByID returns the user with the given id.
	FindByID(ctx context.Context, id int64) (*models.User, error)
	// Create stores a new user and fails with a duplicate-key error on conflict.
	Create(ctx context.Context, username, email, passwordHash string) (*models.User, error)
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// TokenManager issues and validates bearer tokens.
type TokenManager interface {
	Issue(userID int64, now time.Time) (string, error)
	Validate(tok string, now time.Time) (int64, error)
}

// AuthService registers users, exchanges credentials for tokens and resolves
// tokens back to users.
type AuthService struct {
	repo   UserRepository
	hasher PasswordHasher
	tokens TokenManager
	now    func() time.Time

	// dummyHash is compared against when the username is unknown, so both
	// login failures cost one hash comparison.
	dummyHash string
}

// AuthOption customizes an AuthService.
type AuthOption func(*AuthService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) AuthOption {
	return func(s *AuthService) { s.now = now }
}

// NewAuthService constructs an AuthService.
func NewAuthService(repo UserRepository, hasher PasswordHasher, tokens TokenManager, opts ...AuthOption) (*AuthService, error) {
	s := &AuthService{repo: repo, hasher: hasher, tokens: tokens, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	dummy, err := hasher.Hash("jobtracker-dummy-password")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	s.dummyHash = dummy
	return s, nil
}

// Register creates a user with a hashed password.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return nil, apperr.Validation("username", "username is required")
	}
	if email == "" {
		return nil, apperr.Validation("email", "email is required")
	}
	if password == "" {
		return nil, apperr.Validation("password", "password is required")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, &apperr.AppError{Code: apperr.CodeValidation, Message: "password cannot be used", Field: "password", Cause: err}
	}

	user, err := s.repo.Create(ctx, username, email, hash)
	if err != nil {
		return nil, fmt.Errorf("register %q: %w", username, err)
	}
	return user, nil
}

// Login checks the credentials and returns a fresh bearer token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return "", apperr.InvalidCredentials()
		}
		return "", fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", apperr.InvalidCredentials()
	}

	tok, err := s.tokens.Issue(user.ID, s.now())
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	return tok, nil
}

// Authenticate validates tok and returns the user it identifies. A valid
// token whose user no longer exists is rejected as an invalid token.
func (s *AuthService) Authenticate(ctx context.Context, tok string) (*models.User, error) {
	userID, err := s.tokens.Validate(tok, s.now())
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.InvalidToken(err)
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	return user, nil
}
