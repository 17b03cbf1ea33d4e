package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-college-portal/internal/utils"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Claims is the subset of access token claims the client reads. The client
// never holds the signing key, so these values are informational only: the
// backend stays the authority on whether a token is accepted.
type Claims struct {
	Subject   string     // Usually the user's email
	UserID    int64      // "uid" claim when present
	Role      string     // "role" claim, as issued
	Roles     []string   // "roles" claim, when the issuer uses a list
	ExpiresAt *time.Time // nil when the token carries no "exp"
	IssuedAt  *time.Time
	ID        string // "jti"
}

// Inspect decodes a JWT payload without verifying its signature
func Inspect(rawToken string) (*Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, errors.New("empty token")
	}

	unverifiedToken, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := unverifiedToken.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.New("error extracting claims")
	}
	return claimsFromMap(claims)
}

func claimsFromMap(claims jwtlib.MapClaims) (*Claims, error) {
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("invalid exp claim: %w", err)
	}
	iat, err := claims.GetIssuedAt()
	if err != nil {
		return nil, fmt.Errorf("invalid iat claim: %w", err)
	}

	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	jti, _ := claims["jti"].(string)
	uid, _ := claims["uid"].(float64)

	var roles []string
	if claimRoles, ok := claims["roles"].([]any); ok {
		roles = utils.ToStringSlice(claimRoles)
	}

	c := &Claims{
		Subject: sub,
		UserID:  int64(uid),
		Role:    role,
		Roles:   roles,
		ID:      jti,
	}
	if exp != nil {
		c.ExpiresAt = utils.Ptr(exp.Time)
	}
	if iat != nil {
		c.IssuedAt = utils.Ptr(iat.Time)
	}
	return c, nil
}

// Expired reports whether the exp claim lies before now. Tokens without an
// exp claim never expire locally.
func (c *Claims) Expired(now time.Time) bool {
	if c == nil || c.ExpiresAt == nil {
		return false
	}
	return c.ExpiresAt.Before(now)
}

// IsExpired inspects rawToken and reports expiry against NowTimeFunc
func IsExpired(rawToken string) (bool, error) {
	claims, err := Inspect(rawToken)
	if err != nil {
		return false, err
	}
	return claims.Expired(NowTimeFunc()), nil
}
