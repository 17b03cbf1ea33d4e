package token

import (
	tokenjwt "github.com/jrsteele09/go-college-portal/token/jwt"
	"golang.org/x/oauth2"
)

// BearerType is the token type every portal access token is presented as
const BearerType = "Bearer"

// New wraps a stored access/refresh token pair as an oauth2.Token. Expiry is
// taken from the access token's exp claim when it can be decoded; a zero
// Expiry means "unknown" to oauth2, which treats the token as valid.
func New(accessToken, refreshToken string) *oauth2.Token {
	t := &oauth2.Token{
		AccessToken:  accessToken,
		TokenType:    BearerType,
		RefreshToken: refreshToken,
	}
	if claims, err := tokenjwt.Inspect(accessToken); err == nil && claims.ExpiresAt != nil {
		t.Expiry = *claims.ExpiresAt
	}
	return t
}
