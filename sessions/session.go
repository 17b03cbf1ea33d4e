package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jrsteele09/go-college-portal/users"
	"github.com/rs/zerolog/log"
)

// Fixed store keys. Presence or absence of these three keys fully determines
// authentication state after a restart.
const (
	KeyAccessToken  = "college_erp_token"
	KeyRefreshToken = "college_erp_refresh_token"
	KeyUser         = "college_erp_user"
)

// Keys lists every key a session occupies in a Store
var Keys = []string{KeyAccessToken, KeyRefreshToken, KeyUser}

// Session is the persisted triple representing a logged-in identity.
// Empty strings and a nil user mean "absent".
type Session struct {
	AccessToken  string
	RefreshToken string
	CurrentUser  *users.User
}

// Complete reports whether both an access token and a user are present
func (s *Session) Complete() bool {
	return s != nil && s.AccessToken != "" && s.CurrentUser != nil
}

// Clone returns a deep enough copy for handing out of a lock
func (s *Session) Clone() *Session {
	if s == nil {
		return &Session{}
	}
	c := *s
	if s.CurrentUser != nil {
		u := *s.CurrentUser
		c.CurrentUser = &u
	}
	return &c
}

// Store is a goroutine-safe string key-value store
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Load reads a session from store. A stored user that cannot be decoded is
// removed and reported as absent rather than failing the load.
func Load(ctx context.Context, store Store) (*Session, error) {
	s := &Session{}

	access, ok, err := store.Get(ctx, KeyAccessToken)
	if err != nil {
		return nil, fmt.Errorf("[sessions.Load] read access token: %w", err)
	}
	if ok {
		s.AccessToken = access
	}

	refresh, ok, err := store.Get(ctx, KeyRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("[sessions.Load] read refresh token: %w", err)
	}
	if ok {
		s.RefreshToken = refresh
	}

	rawUser, ok, err := store.Get(ctx, KeyUser)
	if err != nil {
		return nil, fmt.Errorf("[sessions.Load] read user: %w", err)
	}
	if !ok || rawUser == "" || rawUser == "undefined" || rawUser == "null" {
		return s, nil
	}

	var u users.User
	if err := json.Unmarshal([]byte(rawUser), &u); err != nil {
		log.Warn().Err(err).Msg("discarding unreadable stored user")
		if rmErr := store.Remove(ctx, KeyUser); rmErr != nil {
			log.Err(rmErr).Msg("failed to remove unreadable stored user")
		}
		return s, nil
	}
	u.Role = users.NormalizeRole(string(u.Role))
	s.CurrentUser = &u
	return s, nil
}

// Save writes every field of s; absent fields are removed from the store
func Save(ctx context.Context, store Store, s *Session) error {
	if err := setOrRemove(ctx, store, KeyAccessToken, s.AccessToken); err != nil {
		return err
	}
	if err := setOrRemove(ctx, store, KeyRefreshToken, s.RefreshToken); err != nil {
		return err
	}
	if s.CurrentUser == nil {
		return store.Remove(ctx, KeyUser)
	}
	return SaveUser(ctx, store, s.CurrentUser)
}

// SaveUser replaces only the stored user
func SaveUser(ctx context.Context, store Store, u *users.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("[sessions.SaveUser] encode user: %w", err)
	}
	if err := store.Set(ctx, KeyUser, string(raw)); err != nil {
		return fmt.Errorf("[sessions.SaveUser] write user: %w", err)
	}
	return nil
}

// SaveTokens replaces the access token, and the refresh token when one is given
func SaveTokens(ctx context.Context, store Store, accessToken, refreshToken string) error {
	if err := store.Set(ctx, KeyAccessToken, accessToken); err != nil {
		return fmt.Errorf("[sessions.SaveTokens] write access token: %w", err)
	}
	if refreshToken == "" {
		return nil
	}
	if err := store.Set(ctx, KeyRefreshToken, refreshToken); err != nil {
		return fmt.Errorf("[sessions.SaveTokens] write refresh token: %w", err)
	}
	return nil
}

// Clear removes all session keys. Every key is attempted even if an earlier
// removal fails; the failures are joined.
func Clear(ctx context.Context, store Store) error {
	var errs []error
	for _, key := range Keys {
		if err := store.Remove(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

func setOrRemove(ctx context.Context, store Store, key, value string) error {
	if value == "" {
		if err := store.Remove(ctx, key); err != nil {
			return fmt.Errorf("[sessions.Save] remove %s: %w", key, err)
		}
		return nil
	}
	if err := store.Set(ctx, key, value); err != nil {
		return fmt.Errorf("[sessions.Save] write %s: %w", key, err)
	}
	return nil
}
