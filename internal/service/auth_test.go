package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/atinyakov/JobTracker/internal/apperr"
	"github.com/atinyakov/JobTracker/internal/models"
	"github.com/atinyakov/JobTracker/internal/password"
	"github.com/atinyakov/JobTracker/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// memUserRepo is an in-memory UserRepository enforcing unique usernames and emails.
type memUserRepo struct {
	mu     sync.Mutex
	users  []models.User
	findFn func(ctx context.Context, id int64) (*models.User, error)
}

func (m *memUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, apperr.NotFound("User not found")
}

func (m *memUserRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if m.findFn != nil {
		return m.findFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, apperr.NotFound("User not found")
}

func (m *memUserRepo) Create(_ context.Context, username, email, hash string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return nil, apperr.DuplicateKey("username", nil)
		}
		if u.Email == email {
			return nil, apperr.DuplicateKey("email", nil)
		}
	}
	u := models.User{ID: int64(len(m.users) + 1), Username: username, Email: email, PasswordHash: hash}
	m.users = append(m.users, u)
	return &u, nil
}

type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time          { return c.t }
func (c *fixedClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestAuthService(t *testing.T, repo UserRepository) (*AuthService, *fixedClock) {
	t.Helper()
	tokens, err := token.NewManager(token.Config{Secret: []byte("0123456789abcdef0123456789abcdef")})
	require.NoError(t, err)
	clock := &fixedClock{t: time.Unix(1_700_000_000, 0)}
	svc, err := NewAuthService(repo, password.NewHasher(bcrypt.MinCost), tokens, WithClock(clock.Now))
	require.NoError(t, err)
	return svc, clock
}

func TestRegister_StoresHashNotPlaintext(t *testing.T) {
	repo := &memUserRepo{}
	svc, _ := newTestAuthService(t, repo)

	u, err := svc.Register(context.Background(), "alice", "a@x.com", "pw123")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "pw123", repo.users[0].PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.users[0].PasswordHash), []byte("pw123")))
}

func TestRegister_Duplicate(t *testing.T) {
	svc, _ := newTestAuthService(t, &memUserRepo{})
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "a@x.com", "pw123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other@x.com", "pw123")
	assert.ErrorIs(t, err, apperr.ErrDuplicateKey)

	_, err = svc.Register(ctx, "bob", "a@x.com", "pw123")
	assert.ErrorIs(t, err, apperr.ErrDuplicateKey)

	_, err = svc.Register(ctx, "bob", "b@x.com", "pw123")
	assert.NoError(t, err)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestAuthService(t, &memUserRepo{})

	tests := []struct {
		name                      string
		username, email, password string
	}{
		{"empty username", "  ", "a@x.com", "pw"},
		{"empty email", "alice", "", "pw"},
		{"empty password", "alice", "a@x.com", ""},
		{"password too long for bcrypt", "alice", "a@x.com", string(make([]byte, 80))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.username, tt.email, tt.password)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestAuthService(t, &memUserRepo{})
	ctx := context.Background()
	_, err := svc.Register(ctx, "alice", "a@x.com", "pw123")
	require.NoError(t, err)

	tok, err := svc.Login(ctx, "alice", "pw123")
	require.NoError(t, err)
	assert.NotEmpty(t, tok)

	_, err = svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "pw123")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
}

func TestLogin_RepoError(t *testing.T) {
	wantErr := errors.New("db down")
	repo := &failingUserRepo{err: wantErr}
	svc, _ := newTestAuthService(t, repo)

	_, err := svc.Login(context.Background(), "alice", "pw123")
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, apperr.CodeInternal, apperr.CodeOf(err))
}

func TestAuthenticate_Expiry(t *testing.T) {
	svc, clock := newTestAuthService(t, &memUserRepo{})
	ctx := context.Background()
	_, err := svc.Register(ctx, "alice", "a@x.com", "pw123")
	require.NoError(t, err)
	tok, err := svc.Login(ctx, "alice", "pw123")
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	clock.Advance(30*time.Minute - time.Second)
	_, err = svc.Authenticate(ctx, tok)
	assert.NoError(t, err)

	clock.Advance(time.Second)
	_, err = svc.Authenticate(ctx, tok)
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)
}

func TestAuthenticate_UnknownUser(t *testing.T) {
	repo := &memUserRepo{}
	svc, _ := newTestAuthService(t, repo)
	ctx := context.Background()
	_, err := svc.Register(ctx, "alice", "a@x.com", "pw123")
	require.NoError(t, err)
	tok, err := svc.Login(ctx, "alice", "pw123")
	require.NoError(t, err)

	repo.findFn = func(context.Context, int64) (*models.User, error) {
		return nil, apperr.NotFound("User not found")
	}
	_, err = svc.Authenticate(ctx, tok)
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)

	repo.findFn = func(context.Context, int64) (*models.User, error) {
		return nil, errors.New("db down")
	}
	_, err = svc.Authenticate(ctx, tok)
	assert.Equal(t, apperr.CodeInternal, apperr.CodeOf(err))
}

func TestAuthenticate_Garbage(t *testing.T) {
	svc, _ := newTestAuthService(t, &memUserRepo{})
	_, err := svc.Authenticate(context.Background(), "garbage")
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)
}

type failingUserRepo struct{ err error }

func (f *failingUserRepo) FindByUsername(context.Context, string) (*models.User, error) {
	return nil, f.err
}
func (f *failingUserRepo) FindByID(context.Context, int64) (*models.User, error) { return nil, f.err }
func (f *failingUserRepo) Create(context.Context, string, string, string) (*models.User, error) {
	return nil, f.err
}
