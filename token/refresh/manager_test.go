package refresh_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-college-portal/token/refresh"
	refreshrepofake "github.com/jrsteele09/go-college-portal/token/refresh/repofake"
	"github.com/stretchr/testify/require"
)

func TestManager_CreateRotates(t *testing.T) {
	m, err := refresh.NewManager(refreshrepofake.NewFakeRefreshTokenRepo(), time.Hour)
	require.NoError(t, err)

	first, err := m.Create(1)
	require.NoError(t, err)
	require.Len(t, first, 64)

	second, err := m.Create(1)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	_, err = m.Get(first)
	require.Error(t, err, "previous token must be revoked on rotation")

	rt, err := m.Get(second)
	require.NoError(t, err)
	require.Equal(t, int64(1), rt.UserID)
}

func TestManager_IsExpired(t *testing.T) {
	m, err := refresh.NewManager(refreshrepofake.NewFakeRefreshTokenRepo(), time.Minute)
	require.NoError(t, err)

	rt := &refresh.StoredRefreshToken{Token: "t", UserID: 1, Iat: time.Now().Add(-2 * time.Minute)}
	require.True(t, m.IsExpired(rt))

	rt.Iat = time.Now()
	require.False(t, m.IsExpired(rt))
}

func TestNewManager_RequiresRepo(t *testing.T) {
	_, err := refresh.NewManager(nil, time.Hour)
	require.Error(t, err)
}
