package token

import (
	"sync"
	"time"

	tokenjwt "github.com/jrsteele09/go-college-portal/token/jwt"
)

// Denylist holds the ids (jti) of access tokens ended by logout. An entry is
// only needed until the token's own expiry, after which signature checks
// reject it anyway.
type Denylist interface {
	Deny(claims *tokenjwt.Claims) bool
	Denied(jti string) bool
	Len() int
}

type MemoryDenylist struct {
	lock  sync.Mutex
	until map[string]time.Time
}

var _ Denylist = (*MemoryDenylist)(nil)

func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{until: make(map[string]time.Time)}
}

// Deny records the token described by claims. Tokens without an id or with
// no expiry cannot be tracked and are reported with false.
func (d *MemoryDenylist) Deny(claims *tokenjwt.Claims) bool {
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return false
	}
	d.lock.Lock()
	defer d.lock.Unlock()
	d.prune(tokenjwt.NowTimeFunc())
	d.until[claims.ID] = *claims.ExpiresAt
	return true
}

func (d *MemoryDenylist) Denied(jti string) bool {
	d.lock.Lock()
	defer d.lock.Unlock()
	_, ok := d.until[jti]
	return ok
}

// Len counts the entries still held
func (d *MemoryDenylist) Len() int {
	d.lock.Lock()
	defer d.lock.Unlock()
	return len(d.until)
}

// prune drops entries whose token has expired; lock must be held
func (d *MemoryDenylist) prune(now time.Time) {
	for jti, exp := range d.until {
		if now.After(exp) {
			delete(d.until, jti)
		}
	}
}
