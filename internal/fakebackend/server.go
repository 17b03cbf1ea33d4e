// Package fakebackend emulates the college portal backend for tests and local
// demos. It issues real HS256 access tokens and opaque refresh tokens, keeps
// all data in memory, and exposes knobs to inject expiry and failures.
package fakebackend

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-college-portal/token"
	tokenjwt "github.com/jrsteele09/go-college-portal/token/jwt"
	"github.com/jrsteele09/go-college-portal/token/refresh"
	fakerefreshrepo "github.com/jrsteele09/go-college-portal/token/refresh/repofake"
	"github.com/jrsteele09/go-college-portal/users"
	fakeuserrepo "github.com/jrsteele09/go-college-portal/users/repofake"
	"github.com/rs/zerolog/log"
)

// APIPrefix is where the API is mounted; clients use server URL + APIPrefix
const APIPrefix = "/api"

const (
	DefaultAccessTokenTTL = 15 * time.Minute
	defaultSecret         = "fake-college-backend-secret"
)

type routeFailure struct {
	status  int
	message string
}

type Server struct {
	env    string
	mux    *http.ServeMux
	routes []string

	users   users.UserRepo
	tokens  *tokenjwt.Creator
	refresh *refresh.Manager
	revoked token.Denylist
	data    *catalog

	accessTTL      time.Duration
	rotate         bool
	envelope       bool
	refreshFail    int
	refreshDelay   time.Duration
	refreshExpired bool
	rejectNext     int
	failures       map[string]routeFailure
	calls          map[string]int
	lock           sync.Mutex
}

type Option func(*Server)

// WithEnv sets the environment name; DEV logs every registered route
func WithEnv(env string) Option {
	return func(s *Server) {
		s.env = env
	}
}

// WithAccessTokenTTL sets the lifetime of issued access tokens. A negative
// TTL issues tokens that are already expired.
func WithAccessTokenTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.accessTTL = ttl
	}
}

// WithRefreshRotation makes /auth/refresh return a new refresh token each time
func WithRefreshRotation(rotate bool) Option {
	return func(s *Server) {
		s.rotate = rotate
	}
}

// WithEnvelopedRefresh wraps /auth/refresh responses in the standard envelope
// instead of the bare {token, refreshToken} object
func WithEnvelopedRefresh(enveloped bool) Option {
	return func(s *Server) {
		s.envelope = enveloped
	}
}

// New creates a backend seeded with one user per role plus a small catalogue
func New(options ...Option) (*Server, error) {
	s := &Server{
		env:       "TEST",
		mux:       http.NewServeMux(),
		users:     fakeuserrepo.NewFakeUserRepo(),
		revoked:   token.NewMemoryDenylist(),
		data:      newCatalog(),
		accessTTL: DefaultAccessTokenTTL,
		failures:  make(map[string]routeFailure),
		calls:     make(map[string]int),
	}
	for _, opt := range options {
		opt(s)
	}

	// The creator rejects a non-positive expiry; per-token expiry comes from accessTTL
	creator, err := tokenjwt.NewCreator([]byte(defaultSecret), time.Hour)
	if err != nil {
		return nil, fmt.Errorf("[fakebackend.New] token creator: %w", err)
	}
	s.tokens = creator

	manager, err := refresh.NewManager(fakerefreshrepo.NewFakeRefreshTokenRepo(), 0)
	if err != nil {
		return nil, fmt.Errorf("[fakebackend.New] refresh manager: %w", err)
	}
	s.refresh = manager

	if err := s.seed(); err != nil {
		return nil, fmt.Errorf("[fakebackend.New] seed: %w", err)
	}
	s.initRoutes()
	s.logRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler http.HandlerFunc) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Routes lists every registered route pattern
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) == 2 {
			logRoute(parts[0], parts[1])
		}
	}
}

// Calls returns how many requests reached method and path, where path is
// relative to APIPrefix, e.g. Calls("POST", "/auth/refresh")
func (s *Server) Calls(method, path string) int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.calls[callKey(method, APIPrefix+path)]
}

// ResetCalls zeroes every counter
func (s *Server) ResetCalls() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.calls = make(map[string]int)
}

// SetAccessTokenTTL changes the lifetime of tokens issued from now on
func (s *Server) SetAccessTokenTTL(ttl time.Duration) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.accessTTL = ttl
}

// FailRefresh makes /auth/refresh answer status; 0 restores normal behaviour
func (s *Server) FailRefresh(status int) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.refreshFail = status
}

// SetRefreshDelay holds every refresh response for d
func (s *Server) SetRefreshDelay(d time.Duration) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.refreshDelay = d
}

// RefreshIssuesExpired makes refresh hand out access tokens that are already
// expired, so a retried request is rejected again
func (s *Server) RefreshIssuesExpired(expired bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.refreshExpired = expired
}

// RejectNextAuthenticated answers the next n authenticated requests with 401
// regardless of the token presented
func (s *Server) RejectNextAuthenticated(n int) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.rejectNext = n
}

// FailRoute makes method and path (relative to APIPrefix) answer status with
// message until ClearFailures is called
func (s *Server) FailRoute(method, path string, status int, message string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.failures[callKey(method, APIPrefix+path)] = routeFailure{status: status, message: message}
}

func (s *Server) ClearFailures() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.failures = make(map[string]routeFailure)
}

// IssueAccessToken signs a token for email expiring at exp, for tests that
// need a token in a particular state
func (s *Server) IssueAccessToken(email string, exp time.Time) (string, error) {
	u, err := s.users.GetByEmail(email)
	if err != nil {
		return "", fmt.Errorf("[IssueAccessToken] %s: %w", email, err)
	}
	t, err := s.tokens.CreateAccessTokenExpiring(u, exp)
	if err != nil {
		return "", err
	}
	return *t, nil
}

// IssueRefreshToken creates a refresh token for email
func (s *Server) IssueRefreshToken(email string) (string, error) {
	u, err := s.users.GetByEmail(email)
	if err != nil {
		return "", fmt.Errorf("[IssueRefreshToken] %s: %w", email, err)
	}
	return s.refresh.Create(u.ID)
}

// IsRevoked reports whether the access token was revoked by logout
func (s *Server) IsRevoked(accessToken string) bool {
	claims, err := tokenjwt.Inspect(accessToken)
	if err != nil {
		return false
	}
	return s.revoked.Denied(claims.ID)
}

// ResetToken returns the last password reset token issued to email
func (s *Server) ResetToken(email string) (string, bool) {
	return s.data.resetTokenFor(email)
}

// VerificationToken returns the pending email verification token of email
func (s *Server) VerificationToken(email string) (string, bool) {
	return s.data.verifyTokenFor(email)
}

// User returns a copy of the stored user with email
func (s *Server) User(email string) (*users.User, error) {
	u, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, errors.New("user not found")
	}
	c := *u
	return &c, nil
}

func (s *Server) issueAccess(u *users.User, ttl time.Duration) (string, error) {
	t, err := s.tokens.CreateAccessTokenExpiring(u, tokenjwt.NowTimeFunc().Add(ttl))
	if err != nil {
		return "", err
	}
	return *t, nil
}

func (s *Server) currentTTL() time.Duration {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.accessTTL
}

func callKey(method, path string) string {
	return method + " " + path
}

func logRoute(method, path string) {
	log.Info().Msgf("[%s %-7s%s] %s", methodColour(method), method, resetColour, path)
}
