package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/blog-platform/internal/auth"
	"github.com/spec-kit/blog-platform/internal/domain"
)

func newTestAccountService() (*AccountService, *SessionService, *fakeUserRepo) {
	cfg := testConfig()
	repo := newFakeUserRepo()
	sessions := NewSessionService(cfg, SessionDependencies{UserRepo: repo})
	return NewAccountService(cfg, repo), sessions, repo
}

func TestUpdateProfileSelfOnly(t *testing.T) {
	accounts, sessions, _ := newTestAccountService()
	ctx := context.Background()

	alice, _, err := sessions.Signup(ctx, "alice01", "a@x.com", "pw12345")
	require.NoError(t, err)
	bob, _, err := sessions.Signup(ctx, "bob4567", "b@x.com", "pw12345")
	require.NoError(t, err)

	_, err = accounts.UpdateProfile(ctx, alice, bob.ID, ProfileUpdate{Username: "hijacked1"})
	assertDomainError(t, err, 403, "You are not allowed to update this user")

	updated, err := accounts.UpdateProfile(ctx, alice, alice.ID, ProfileUpdate{Username: "alice2024"})
	require.NoError(t, err)
	assert.Equal(t, "alice2024", updated.Username)
}

func TestUpdateProfileValidation(t *testing.T) {
	accounts, sessions, _ := newTestAccountService()
	ctx := context.Background()

	alice, _, err := sessions.Signup(ctx, "alice01", "a@x.com", "pw12345")
	require.NoError(t, err)

	_, err = accounts.UpdateProfile(ctx, alice, alice.ID, ProfileUpdate{Password: "short"})
	assertDomainError(t, err, 400, "Password must be at least 6 characters")

	_, err = accounts.UpdateProfile(ctx, alice, alice.ID, ProfileUpdate{Username: "ab"})
	assertDomainError(t, err, 400, "Username must be between 7 and 20 characters")

	_, err = accounts.UpdateProfile(ctx, alice, alice.ID, ProfileUpdate{Username: "has space12"})
	assertDomainError(t, err, 400, "Username cannot contain spaces")

	_, err = accounts.UpdateProfile(ctx, alice, alice.ID, ProfileUpdate{Username: "MixedCase1"})
	assertDomainError(t, err, 400, "Username must be lowercase")

	_, err = accounts.UpdateProfile(ctx, alice, alice.ID, ProfileUpdate{Username: "under_score"})
	assertDomainError(t, err, 400, "Username can only contain letters and numbers")
}

func TestUpdateProfileRehashesPassword(t *testing.T) {
	accounts, sessions, _ := newTestAccountService()
	ctx := context.Background()

	alice, _, err := sessions.Signup(ctx, "alice01", "a@x.com", "pw12345")
	require.NoError(t, err)

	updated, err := accounts.UpdateProfile(ctx, alice, alice.ID, ProfileUpdate{Password: "new-password"})
	require.NoError(t, err)
	assert.NotEqual(t, "new-password", updated.PasswordHash)
	require.NoError(t, auth.ComparePassword(updated.PasswordHash, "new-password"))
}

func TestDeleteAccountPermissions(t *testing.T) {
	accounts, sessions, repo := newTestAccountService()
	ctx := context.Background()

	alice, _, err := sessions.Signup(ctx, "alice01", "a@x.com", "pw12345")
	require.NoError(t, err)
	bob, _, err := sessions.Signup(ctx, "bob4567", "b@x.com", "pw12345")
	require.NoError(t, err)

	err = accounts.DeleteAccount(ctx, bob, alice.ID)
	assertDomainError(t, err, 403, "You are not allowed to delete this user")

	admin := &domain.User{ID: bob.ID, IsAdmin: true}
	require.NoError(t, accounts.DeleteAccount(ctx, admin, alice.ID))
	_, err = repo.GetByID(ctx, alice.ID)
	assert.Error(t, err)

	require.NoError(t, accounts.DeleteAccount(ctx, bob, bob.ID))
}

func TestListUsers(t *testing.T) {
	accounts, sessions, _ := newTestAccountService()
	ctx := context.Background()

	for _, u := range [][2]string{{"alice01", "a@x.com"}, {"bob4567", "b@x.com"}, {"carol89", "c@x.com"}} {
		_, _, err := sessions.Signup(ctx, u[0], u[1], "pw12345")
		require.NoError(t, err)
	}

	listing, err := accounts.ListUsers(ctx, 2, 0, false)
	require.NoError(t, err)
	assert.Len(t, listing.Users, 2)
	assert.EqualValues(t, 3, listing.TotalUsers)
	assert.EqualValues(t, 3, listing.LastMonthUsers)
}
