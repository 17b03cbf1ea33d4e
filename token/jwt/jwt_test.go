package jwt_test

import (
	"encoding/base64"
	"testing"
	"time"

	tokenjwt "github.com/jrsteele09/go-college-portal/token/jwt"
	"github.com/jrsteele09/go-college-portal/users"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-at-least-32-bytes-long!!")

func newCreator(t *testing.T) *tokenjwt.Creator {
	t.Helper()
	c, err := tokenjwt.NewCreator(testSecret, time.Hour)
	require.NoError(t, err)
	return c
}

func TestNewCreator_Validation(t *testing.T) {
	_, err := tokenjwt.NewCreator(nil, time.Hour)
	require.ErrorContains(t, err, "secret is required")

	_, err = tokenjwt.NewCreator(testSecret, 0)
	require.ErrorContains(t, err, "expiry must be positive")
}

func TestInspect_ReadsClaims(t *testing.T) {
	c := newCreator(t)
	user := &users.User{ID: 42, Email: "ada@example.edu", Role: users.RoleAdmin}

	raw, err := c.CreateAccessToken(user)
	require.NoError(t, err)

	claims, err := tokenjwt.Inspect(*raw)
	require.NoError(t, err)
	require.Equal(t, "ada@example.edu", claims.Subject)
	require.Equal(t, int64(42), claims.UserID)
	require.Equal(t, "admin", claims.Role)
	require.NotEmpty(t, claims.ID)
	require.NotNil(t, claims.ExpiresAt)
	require.False(t, claims.Expired(time.Now()))
	require.True(t, claims.Expired(time.Now().Add(2*time.Hour)))
}

func TestInspect_Malformed(t *testing.T) {
	_, err := tokenjwt.Inspect("")
	require.Error(t, err)

	_, err = tokenjwt.Inspect("not-a-jwt")
	require.Error(t, err)

	_, err = tokenjwt.Inspect("a.%%%.c")
	require.Error(t, err)
}

func TestInspect_NoExpiryNeverExpires(t *testing.T) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"x@example.edu","roles":["admin","faculty"]}`))

	claims, err := tokenjwt.Inspect(header + "." + payload + ".")
	require.NoError(t, err)
	require.Nil(t, claims.ExpiresAt)
	require.Equal(t, []string{"admin", "faculty"}, claims.Roles)
	require.False(t, claims.Expired(time.Now().Add(100*365*24*time.Hour)))
}

func TestIsExpired_UsesNowTimeFunc(t *testing.T) {
	c := newCreator(t)
	raw, err := c.CreateAccessTokenExpiring(&users.User{ID: 1, Email: "a@b.com"}, time.Now().Add(time.Minute))
	require.NoError(t, err)

	expired, err := tokenjwt.IsExpired(*raw)
	require.NoError(t, err)
	require.False(t, expired)

	defer func() { tokenjwt.NowTimeFunc = time.Now }()
	tokenjwt.NowTimeFunc = func() time.Time { return time.Now().Add(10 * time.Minute) }

	expired, err = tokenjwt.IsExpired(*raw)
	require.NoError(t, err)
	require.True(t, expired)
}

func TestCreator_Verify(t *testing.T) {
	c := newCreator(t)
	user := &users.User{ID: 7, Email: "kim@example.edu", Role: users.RoleStudent}

	raw, err := c.CreateAccessToken(user)
	require.NoError(t, err)

	claims, err := c.Verify(*raw)
	require.NoError(t, err)
	require.Equal(t, int64(7), claims.UserID)

	other, err := tokenjwt.NewCreator([]byte("another-secret-of-sufficient-size!!"), time.Hour)
	require.NoError(t, err)
	_, err = other.Verify(*raw)
	require.Error(t, err)

	expired, err := c.CreateAccessTokenExpiring(user, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = c.Verify(*expired)
	require.Error(t, err)
}
