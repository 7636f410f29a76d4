// Package token issues and validates the signed, time-limited bearer tokens
// that identify an authenticated user.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/atinyakov/JobTracker/internal/apperr"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL is the lifetime of an issued token.
const DefaultTTL = 30 * time.Minute

// MinSecretLen is the shortest HS256 secret accepted by NewManager.
const MinSecretLen = 32

// Config holds the signing parameters of a Manager.
type Config struct {
	// Secret is the shared HMAC key.
	Secret []byte
	// TTL is how long a token stays valid after issue. Zero means DefaultTTL.
	TTL time.Duration
	// Issuer is written to and required in the "iss" claim when non-empty.
	Issuer string
}

// Manager signs and verifies HS256 JWTs.
type Manager struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// NewManager validates cfg and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < MinSecretLen {
		return nil, fmt.Errorf("token secret must be at least %d bytes", MinSecretLen)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)
	return &Manager{secret: secret, ttl: ttl, issuer: cfg.Issuer}, nil
}

// TTL returns the lifetime of issued tokens.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue returns a signed token for userID that expires TTL after now.
func (m *Manager) Issue(userID int64, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   strconv.FormatInt(userID, 10),
		Issuer:    m.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate verifies tok as of now and returns the user id it was issued for.
// Any failure is reported as an apperr invalid-token error.
func (m *Manager) Validate(tok string, now time.Time) (int64, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tok, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return 0, apperr.InvalidToken(err)
	}

	if claims.Subject == "" {
		return 0, apperr.InvalidToken(errors.New("missing subject"))
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, apperr.InvalidToken(fmt.Errorf("malformed subject %q", claims.Subject))
	}
	return userID, nil
}
