package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-college-portal/users"
)

// Creator issues and verifies HS256 access tokens the way the college backend
// does. The client never signs tokens; this exists for backend emulation.
type Creator struct {
	secret []byte
	expiry time.Duration
}

// NewCreator creates a new JWT creator
func NewCreator(secret []byte, expiry time.Duration) (*Creator, error) {
	if len(secret) == 0 {
		return nil, errors.New("[NewCreator] secret is required")
	}
	if expiry <= 0 {
		return nil, errors.New("[NewCreator] expiry must be positive")
	}
	return &Creator{secret: secret, expiry: expiry}, nil
}

// CreateAccessToken creates an access token for user, expiring after the configured expiry
func (c *Creator) CreateAccessToken(user *users.User) (*string, error) {
	return c.CreateAccessTokenExpiring(user, NowTimeFunc().Add(c.expiry))
}

// CreateAccessTokenExpiring creates an access token with an explicit expiry
func (c *Creator) CreateAccessTokenExpiring(user *users.User, exp time.Time) (*string, error) {
	claims := jwtlib.MapClaims{
		"sub":  user.Email,                         // Subject: the user's login email
		"uid":  user.ID,                            // Backend user id
		"role": strings.ToLower(string(user.Role)), // Role as the backend reports it
		"iat":  int64(NowTimeFunc().Unix()),        // Issued At
		"exp":  int64(exp.Unix()),                  // Expiry
		"jti":  uuid.New().String(),                // Unique token ID for revocation
	}

	signedToken, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return &signedToken, nil
}

// Verify validates signature and expiry and returns the token claims
func (c *Creator) Verify(rawToken string) (*Claims, error) {
	token, err := jwtlib.Parse(rawToken, func(t *jwtlib.Token) (any, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwtlib.WithTimeFunc(NowTimeFunc))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.New("error extracting claims from token")
	}
	return claimsFromMap(claims)
}
