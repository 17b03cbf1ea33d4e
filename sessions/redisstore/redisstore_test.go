package redisstore_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-college-portal/sessions"
	"github.com/jrsteele09/go-college-portal/sessions/redisstore"
	"github.com/jrsteele09/go-college-portal/users"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *redisstore.Store {
	t.Helper()
	addr := os.Getenv("PORTAL_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("PORTAL_TEST_REDIS_ADDR not set")
	}
	store, err := redisstore.Open(context.Background(), redisstore.Config{
		Addr:    addr,
		Profile: "test-" + uuid.NewString(),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sessions.Clear(context.Background(), store)
		_ = store.Close()
	})
	return store
}

func TestNewValidation(t *testing.T) {
	_, err := redisstore.New(nil, "x")
	require.Error(t, err)
}

func TestRedisRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, sessions.Save(ctx, store, &sessions.Session{
		AccessToken: "a",
		CurrentUser: &users.User{ID: 1, Email: "admin@college.edu", Role: users.RoleAdmin},
	}))

	s, err := sessions.Load(ctx, store)
	require.NoError(t, err)
	require.Equal(t, "a", s.AccessToken)
	require.Empty(t, s.RefreshToken)
	require.True(t, s.CurrentUser.HasRole(users.RoleAdmin))

	require.NoError(t, sessions.Clear(ctx, store))
	_, ok, err := store.Get(ctx, sessions.KeyAccessToken)
	require.NoError(t, err)
	require.False(t, ok)
}
