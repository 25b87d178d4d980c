package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/blog-platform/internal/auth"
	"github.com/spec-kit/blog-platform/internal/config"
	"github.com/spec-kit/blog-platform/internal/domain"
	apperrors "github.com/spec-kit/blog-platform/pkg/util"
)

// fakeUserRepo is an in-memory repository with the same row semantics as
// the Postgres implementation, including compare-and-swap rotation.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	copied := *u
	if u.RefreshToken != nil {
		token := *u.RefreshToken
		copied.RefreshToken = &token
	}
	return &copied
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	f.users[user.ID] = cloneUser(user)
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.users[user.ID] = cloneUser(user)
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cloneUser(user), nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			return cloneUser(user), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) GetByRefreshToken(_ context.Context, token string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.RefreshToken != nil && *user.RefreshToken == token {
			return cloneUser(user), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) List(_ context.Context, limit, offset int, _ bool) ([]*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var users []*domain.User
	for _, user := range f.users {
		users = append(users, cloneUser(user))
	}
	if offset > len(users) {
		offset = len(users)
	}
	users = users[offset:]
	if limit < len(users) {
		users = users[:limit]
	}
	return users, nil
}

func (f *fakeUserRepo) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.users)), nil
}

func (f *fakeUserRepo) CountCreatedSince(_ context.Context, since time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, user := range f.users {
		if !user.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (f *fakeUserRepo) SetRefreshToken(_ context.Context, id, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.RefreshToken = &token
	return nil
}

func (f *fakeUserRepo) RotateRefreshToken(_ context.Context, id, oldToken, newToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok || user.RefreshToken == nil || *user.RefreshToken != oldToken {
		return pgx.ErrNoRows
	}
	user.RefreshToken = &newToken
	return nil
}

func (f *fakeUserRepo) ClearRefreshToken(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.RefreshToken = nil
	return nil
}

func (f *fakeUserRepo) storedRefreshToken(t *testing.T, id string) *string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	require.True(t, ok, "user %s not stored", id)
	if user.RefreshToken == nil {
		return nil
	}
	token := *user.RefreshToken
	return &token
}

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			AccessSecret:          "test-access-secret",
			RefreshSecret:         "test-refresh-secret",
			AccessTokenTTLMinutes: 60,
			RefreshTokenTTLHours:  168,
			BcryptCost:            bcrypt.MinCost,
		},
	}
}

func newTestService(cfg config.Config) (*SessionService, *fakeUserRepo) {
	repo := newFakeUserRepo()
	svc := NewSessionService(cfg, SessionDependencies{UserRepo: repo})
	return svc, repo
}

func assertDomainError(t *testing.T, err error, status int, message string) {
	t.Helper()
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr), "expected DomainError, got %v", err)
	assert.Equal(t, status, domainErr.StatusCode)
	assert.Equal(t, message, domainErr.Message)
}

func TestSignupRequiresAllFields(t *testing.T) {
	svc, _ := newTestService(testConfig())
	ctx := context.Background()

	cases := [][3]string{
		{"", "a@x.com", "pw12345"},
		{"alice", "", "pw12345"},
		{"alice", "a@x.com", ""},
		{"", "", ""},
	}
	for _, tc := range cases {
		_, _, err := svc.Signup(ctx, tc[0], tc[1], tc[2])
		assertDomainError(t, err, 400, "All fields are required")
	}
}

func TestSignupOpensSession(t *testing.T) {
	svc, repo := newTestService(testConfig())
	ctx := context.Background()

	user, pair, err := svc.Signup(ctx, "alice", "a@x.com", "pw12345")
	require.NoError(t, err)

	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "a@x.com", user.Email)
	assert.False(t, user.IsAdmin)
	assert.False(t, user.IsWriter)
	assert.NotEqual(t, "pw12345", user.PasswordHash)
	require.NoError(t, auth.ComparePassword(user.PasswordHash, "pw12345"))

	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	stored := repo.storedRefreshToken(t, user.ID)
	require.NotNil(t, stored)
	assert.Equal(t, pair.RefreshToken, *stored)

	claims, err := svc.TokenManager().ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID())
}

func TestSigninUnknownEmail(t *testing.T) {
	svc, _ := newTestService(testConfig())

	_, _, err := svc.Signin(context.Background(), "nobody@x.com", "pw12345")
	assertDomainError(t, err, 404, "User not found")
}

func TestSigninWrongPassword(t *testing.T) {
	svc, _ := newTestService(testConfig())
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, "alice", "a@x.com", "pw12345")
	require.NoError(t, err)

	_, _, err = svc.Signin(ctx, "a@x.com", "wrong-password")
	assertDomainError(t, err, 400, "Invalid password")
}

func TestSigninRotatesStoredToken(t *testing.T) {
	svc, repo := newTestService(testConfig())
	ctx := context.Background()

	user, first, err := svc.Signup(ctx, "alice", "a@x.com", "pw12345")
	require.NoError(t, err)

	_, second, err := svc.Signin(ctx, "a@x.com", "pw12345")
	require.NoError(t, err)

	stored := repo.storedRefreshToken(t, user.ID)
	require.NotNil(t, stored)
	assert.Equal(t, second.RefreshToken, *stored)

	// the signup-era token is superseded
	_, err = svc.Refresh(ctx, first.RefreshToken)
	assertDomainError(t, err, 403, "Refresh token is not valid")
}

func TestGoogleSigninCreatesAccount(t *testing.T) {
	svc, repo := newTestService(testConfig())
	ctx := context.Background()

	user, token, _, err := svc.GoogleSignin(ctx, "a@x.com", "Alice Wonder", "https://example.com/alice.png")
	require.NoError(t, err)

	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, "https://example.com/alice.png", user.ProfilePicture)
	assert.Len(t, user.Username, len("alicewonder")+4)
	assert.Equal(t, "alicewonder", user.Username[:len("alicewonder")])
	assert.NotEmpty(t, user.PasswordHash)

	claims, err := svc.TokenManager().ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID())

	// only an access token is issued; no refresh lifecycle is entered
	assert.Nil(t, repo.storedRefreshToken(t, user.ID))
}

func TestGoogleSigninExistingAccount(t *testing.T) {
	svc, _ := newTestService(testConfig())
	ctx := context.Background()

	created, _, err := svc.Signup(ctx, "alice", "a@x.com", "pw12345")
	require.NoError(t, err)

	user, token, _, err := svc.GoogleSignin(ctx, "a@x.com", "Alice Wonder", "")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.NotEmpty(t, token)
}

func TestRefreshRequiresToken(t *testing.T) {
	svc, _ := newTestService(testConfig())

	_, err := svc.Refresh(context.Background(), "")
	assertDomainError(t, err, 401, "Refresh token is required")
}

func TestRefreshUnknownToken(t *testing.T) {
	svc, _ := newTestService(testConfig())

	_, err := svc.Refresh(context.Background(), "some-token-no-user-holds")
	assertDomainError(t, err, 403, "Refresh token is not valid")
}

func TestRefreshRotationChain(t *testing.T) {
	svc, _ := newTestService(testConfig())
	ctx := context.Background()

	_, first, err := svc.Signup(ctx, "alice", "a@x.com", "pw12345")
	require.NoError(t, err)

	second, err := svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// rotated tokens are single-use
	_, err = svc.Refresh(ctx, first.RefreshToken)
	assertDomainError(t, err, 403, "Refresh token is not valid")

	third, err := svc.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, second.RefreshToken, third.RefreshToken)
}

func TestRefreshExpiredToken(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.RefreshTokenTTLHours = -1
	svc, repo := newTestService(cfg)
	ctx := context.Background()

	user, pair, err := svc.Signup(ctx, "alice", "a@x.com", "pw12345")
	require.NoError(t, err)

	// the expired token still matches the stored value
	stored := repo.storedRefreshToken(t, user.ID)
	require.NotNil(t, stored)
	require.Equal(t, pair.RefreshToken, *stored)

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assertDomainError(t, err, 403, "Refresh token is not valid")
}

func TestRefreshSubjectMismatch(t *testing.T) {
	cfg := testConfig()
	svc, repo := newTestService(cfg)
	ctx := context.Background()

	user, _, err := svc.Signup(ctx, "alice", "a@x.com", "pw12345")
	require.NoError(t, err)

	// validly signed refresh token for a different subject, planted as
	// alice's stored value
	stranger := &domain.User{ID: uuid.NewString()}
	forged, _, err := auth.NewTokenManager(cfg.Auth).GenerateRefreshToken(stranger)
	require.NoError(t, err)
	require.NoError(t, repo.SetRefreshToken(ctx, user.ID, forged))

	_, err = svc.Refresh(ctx, forged)
	assertDomainError(t, err, 403, "Refresh token is not valid")
}

func TestRefreshSignedWithAccessSecret(t *testing.T) {
	cfg := testConfig()
	svc, repo := newTestService(cfg)
	ctx := context.Background()

	user, _, err := svc.Signup(ctx, "alice", "a@x.com", "pw12345")
	require.NoError(t, err)

	// an access token planted as the stored refresh token must still fail
	// verification against the refresh secret
	access, _, err := auth.NewTokenManager(cfg.Auth).GenerateAccessToken(user)
	require.NoError(t, err)
	require.NoError(t, repo.SetRefreshToken(ctx, user.ID, access))

	_, err = svc.Refresh(ctx, access)
	assertDomainError(t, err, 403, "Refresh token is not valid")
}

func TestSignoutClearsStoredToken(t *testing.T) {
	svc, repo := newTestService(testConfig())
	ctx := context.Background()

	user, pair, err := svc.Signup(ctx, "alice", "a@x.com", "pw12345")
	require.NoError(t, err)

	require.NoError(t, svc.Signout(ctx, user.ID))
	assert.Nil(t, repo.storedRefreshToken(t, user.ID))

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assertDomainError(t, err, 403, "Refresh token is not valid")
}
