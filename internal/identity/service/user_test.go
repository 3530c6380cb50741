package service

import (
	"context"
	"testing"

	"github.com/driftlock/identity/internal/identity/domain"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func seedUsers(t *testing.T, auth *AuthService) (alice, bob domain.User) {
	t.Helper()
	ctx := context.Background()

	alice, err := auth.Register(ctx, "Alice", "alice@example.com", "secret123")
	require.NoError(t, err)
	bob, err = auth.Register(ctx, "Bob", "bob@example.com", "secret123")
	require.NoError(t, err)
	return alice, bob
}

func TestUserServiceGetByID(t *testing.T) {
	t.Parallel()

	auth := newAuthService(t)
	users := &UserService{Store: auth.Store}
	ctx := context.Background()

	alice, _ := seedUsers(t, auth)

	got, err := users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, alice.Email, got.Email)

	_, err = users.GetByID(ctx, "01K00000000000000000000000")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserServiceListAndSearch(t *testing.T) {
	t.Parallel()

	auth := newAuthService(t)
	users := &UserService{Store: auth.Store}
	ctx := context.Background()

	seedUsers(t, auth)

	all, err := users.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	found, err := users.Search(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "Bob", found[0].Name)
}

func TestUserServiceUpdate(t *testing.T) {
	t.Parallel()

	auth := newAuthService(t)
	users := &UserService{Store: auth.Store}
	ctx := context.Background()

	alice, bob := seedUsers(t, auth)

	t.Run("partial update keeps other fields", func(t *testing.T) {
		got, err := users.Update(ctx, alice.ID, UserUpdate{Name: ptr("Alice Cooper")})
		require.NoError(t, err)
		require.Equal(t, "Alice Cooper", got.Name)
		require.Equal(t, "alice@example.com", got.Email)
	})

	t.Run("email change", func(t *testing.T) {
		got, err := users.Update(ctx, alice.ID, UserUpdate{Email: ptr("cooper@example.com")})
		require.NoError(t, err)
		require.Equal(t, "cooper@example.com", got.Email)
	})

	t.Run("clash with another user's email", func(t *testing.T) {
		_, err := users.Update(ctx, alice.ID, UserUpdate{Email: ptr(bob.Email)})
		require.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := users.Update(ctx, "01K00000000000000000000000", UserUpdate{Name: ptr("x")})
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUserServiceDelete(t *testing.T) {
	t.Parallel()

	auth := newAuthService(t)
	users := &UserService{Store: auth.Store}
	ctx := context.Background()

	alice, _ := seedUsers(t, auth)

	require.NoError(t, users.Delete(ctx, alice.ID))
	require.ErrorIs(t, users.Delete(ctx, alice.ID), ErrUserNotFound)
}
