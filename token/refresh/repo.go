package refresh

import (
	"time"
)

// StoredRefreshToken is the backend-side record behind an opaque refresh token
type StoredRefreshToken struct {
	Token  string    // The random token string handed to the client
	UserID int64     // Owner
	Iat    time.Time // Issued at
}

// Repo stores refresh tokens keyed by the token string
type Repo interface {
	Upsert(refreshToken *StoredRefreshToken) error
	Delete(token string) error
	Get(token string) (*StoredRefreshToken, error)
	GetByUserID(userID int64) (*StoredRefreshToken, error)
}
