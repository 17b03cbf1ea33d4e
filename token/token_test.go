package token_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/jrsteele09/go-college-portal/internal/utils"
	"github.com/jrsteele09/go-college-portal/token"
	tokenjwt "github.com/jrsteele09/go-college-portal/token/jwt"
	"github.com/jrsteele09/go-college-portal/users"
	"github.com/stretchr/testify/require"
)

func TestNew_SetsExpiryFromClaims(t *testing.T) {
	c, err := tokenjwt.NewCreator([]byte("test-secret-at-least-32-bytes-long!!"), time.Hour)
	require.NoError(t, err)
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	raw, err := c.CreateAccessTokenExpiring(&users.User{ID: 1, Email: "a@b.com"}, exp)
	require.NoError(t, err)

	tok := token.New(*raw, "refresh-1")
	require.Equal(t, "refresh-1", tok.RefreshToken)
	require.True(t, tok.Expiry.Equal(exp))
	require.True(t, tok.Valid())

	req, err := http.NewRequest(http.MethodGet, "http://example.edu", nil)
	require.NoError(t, err)
	tok.SetAuthHeader(req)
	require.Equal(t, "Bearer "+*raw, req.Header.Get("Authorization"))
}

func TestNew_OpaqueToken(t *testing.T) {
	tok := token.New("opaque", "")
	require.True(t, tok.Expiry.IsZero())
	require.Equal(t, "Bearer", tok.Type())
}

func TestMemoryDenylist(t *testing.T) {
	now := time.Date(2024, 8, 1, 9, 0, 0, 0, time.UTC)
	tokenjwt.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { tokenjwt.NowTimeFunc = time.Now })

	list := token.NewMemoryDenylist()
	require.True(t, list.Deny(&tokenjwt.Claims{ID: "short", ExpiresAt: utils.Ptr(now.Add(time.Minute))}))
	require.True(t, list.Deny(&tokenjwt.Claims{ID: "long", ExpiresAt: utils.Ptr(now.Add(time.Hour))}))
	require.False(t, list.Deny(&tokenjwt.Claims{ID: "no-exp"}))
	require.False(t, list.Deny(nil))
	require.True(t, list.Denied("short"))
	require.Equal(t, 2, list.Len())

	// Expired entries are dropped on the next Deny
	now = now.Add(10 * time.Minute)
	require.True(t, list.Deny(&tokenjwt.Claims{ID: "later", ExpiresAt: utils.Ptr(now.Add(time.Hour))}))
	require.False(t, list.Denied("short"))
	require.True(t, list.Denied("long"))
	require.Equal(t, 2, list.Len())
}
