package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/jrsteele09/go-college-portal/apiclient"
	perrors "github.com/jrsteele09/go-college-portal/internal/errors"
	"github.com/jrsteele09/go-college-portal/navigation"
	"github.com/jrsteele09/go-college-portal/sessions"
	tokenjwt "github.com/jrsteele09/go-college-portal/token/jwt"
	"github.com/jrsteele09/go-college-portal/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Backend endpoints used by the session manager
const (
	EndpointLogin              = "/auth/login"
	EndpointLogout             = "/auth/logout"
	EndpointRefresh            = "/auth/refresh"
	EndpointRegister           = "/auth/register"
	EndpointForgotPassword     = "/auth/forgot-password"
	EndpointResetPassword      = "/auth/reset-password"
	EndpointChangePassword     = "/auth/change-password"
	EndpointProfile            = "/auth/profile"
	EndpointVerifyEmail        = "/auth/verify-email"
	EndpointResendVerification = "/auth/resend-verification"
	EndpointActivityLog        = "/auth/activity-log"
)

const refreshKey = "refresh"

// LoginResult is returned by a successful Login
type LoginResult struct {
	User  *users.User
	Token string
}

// Service is the session manager. It owns the access token, refresh token and
// current user, mirrors them into a sessions.Store, and is the Session the
// request dispatcher refreshes through.
type Service struct {
	store      sessions.Store
	client     *apiclient.Dispatcher
	navigator  navigation.Navigator
	nowTime    func() time.Time
	clientOpts []apiclient.Option

	session *sessions.Session
	lock    sync.RWMutex

	refreshGroup singleflight.Group
	background   sync.WaitGroup
}

var _ apiclient.Session = (*Service)(nil)

// Option configures a Service
type Option func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithNavigator sets where role redirects and forced logouts are sent
func WithNavigator(n navigation.Navigator) Option {
	return func(s *Service) {
		s.navigator = n
	}
}

// WithClientOptions passes options through to the request dispatcher
func WithClientOptions(opts ...apiclient.Option) Option {
	return func(s *Service) {
		s.clientOpts = append(s.clientOpts, opts...)
	}
}

// New creates a session manager for the backend at baseURL and restores any
// session already held in store.
func New(ctx context.Context, baseURL string, store sessions.Store, options ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("[auth.New] store is required")
	}

	s := &Service{
		store:     store,
		navigator: navigation.Discard,
		nowTime:   time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.navigator == nil {
		s.navigator = navigation.Discard
	}

	clientOpts := append([]apiclient.Option{apiclient.WithNavigator(s.navigator)}, s.clientOpts...)
	client, err := apiclient.New(baseURL, s, clientOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "[auth.New] create dispatcher")
	}
	s.client = client

	restored, err := sessions.Load(ctx, store)
	if err != nil {
		return nil, errors.Wrap(err, "[auth.New] restore session")
	}
	s.session = restored
	return s, nil
}

// Client returns the dispatcher bound to this session
func (s *Service) Client() *apiclient.Dispatcher {
	return s.client
}

// Session returns a snapshot of the current session
func (s *Service) Session() *sessions.Session {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.session.Clone()
}

// AccessToken returns the stored access token, or "" when there is none
func (s *Service) AccessToken() string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.session.AccessToken
}

// CurrentUser returns a copy of the logged-in user, or nil
func (s *Service) CurrentUser() *users.User {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.session.CurrentUser == nil {
		return nil
	}
	u := *s.session.CurrentUser
	return &u
}

type loginResponse struct {
	users.User
	AccessToken  string `json:"accessToken"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
}

// Login authenticates with email and password and replaces any held session.
// Nothing is stored unless the backend accepts the credentials.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var resp loginResponse
	err := s.client.Do(ctx, EndpointLogin, apiclient.RequestOptions{
		Method:    http.MethodPost,
		Body:      map[string]string{"email": email, "password": password},
		Anonymous: true,
	}, &resp)
	if err != nil {
		return nil, loginFailure(err)
	}

	access := resp.AccessToken
	if access == "" {
		access = resp.Token
	}
	if access == "" {
		return nil, &Error{Op: "login", Message: "Login failed", Kind: perrors.ErrAuthenticationFailed, Err: perrors.ErrInvalidToken}
	}

	user := resp.User
	user.Role = users.NormalizeRole(string(user.Role))
	if user.Email == "" {
		user.Email = email
	}
	next := &sessions.Session{AccessToken: access, RefreshToken: resp.RefreshToken, CurrentUser: &user}

	s.lock.Lock()
	defer s.lock.Unlock()
	if err := sessions.Save(ctx, s.store, next); err != nil {
		if clearErr := sessions.Clear(context.WithoutCancel(ctx), s.store); clearErr != nil {
			log.Err(clearErr).Msg("failed to clear partially stored session")
		}
		s.session = &sessions.Session{}
		return nil, errors.Wrap(err, "[Login] store session")
	}
	s.session = next

	log.Info().Str("email", user.Email).Str("role", string(user.Role)).Msg("logged in")
	u := user
	return &LoginResult{User: &u, Token: access}, nil
}

// Logout clears the session locally, then tells the backend using the token
// that was held. A failed backend call is logged and otherwise ignored; the
// returned error only reports a store that could not be cleared.
func (s *Service) Logout(ctx context.Context) error {
	_, err := s.logout(ctx, nil)
	return err
}

// LogoutIfHeld logs out only while accessToken is still the held token, so a
// request or refresh that failed for an earlier session cannot end a newer
// login. It reports whether the session is now logged out; holding no token
// counts as logged out.
func (s *Service) LogoutIfHeld(ctx context.Context, accessToken string) bool {
	done, err := s.logout(ctx, func(held string) bool { return held == accessToken })
	if err != nil {
		log.Err(err).Msg("logout after rejected session")
	}
	return done
}

// logout clears the session when held is nil or accepts the held token; the
// check and the clear happen under one lock
func (s *Service) logout(ctx context.Context, held func(string) bool) (bool, error) {
	s.lock.Lock()
	previous := s.session.AccessToken
	if previous == "" && held != nil {
		s.lock.Unlock()
		return true, nil
	}
	if held != nil && !held(previous) {
		s.lock.Unlock()
		log.Debug().Msg("session replaced since the token was used, keeping it")
		return false, nil
	}
	s.session = &sessions.Session{}
	clearErr := sessions.Clear(ctx, s.store)
	s.lock.Unlock()

	if clearErr != nil {
		log.Err(clearErr).Msg("failed to clear stored session")
	}
	if previous != "" {
		_, err := s.client.Request(ctx, EndpointLogout, apiclient.RequestOptions{
			Method:      http.MethodPost,
			BearerToken: previous,
			NoRetry:     true,
		})
		if err != nil {
			log.Warn().Err(err).Msg("backend logout failed")
		}
	}
	return true, clearErr
}

// IsAuthenticated reports whether a user and an unexpired access token are
// held. An expired token starts a background refresh and reports false; if
// that refresh fails the session is logged out.
func (s *Service) IsAuthenticated(ctx context.Context) bool {
	access, ok := s.heldToken()
	if !ok {
		return false
	}
	expired, err := s.expired(access)
	if err != nil {
		log.Debug().Err(err).Msg("unreadable access token")
		return false
	}
	if !expired {
		return true
	}

	s.background.Add(1)
	go func() {
		defer s.background.Done()
		bg := context.WithoutCancel(ctx)
		if _, err := s.RefreshToken(bg); err != nil {
			log.Warn().Err(err).Msg("background token refresh failed")
			if !isContextErr(err) && !perrors.Is(err, perrors.ErrNotLoggedIn) {
				s.LogoutIfHeld(bg, access)
			}
		}
	}()
	return false
}

// Authenticated is IsAuthenticated that waits for any needed refresh. A
// failed refresh logs the session out and is returned.
func (s *Service) Authenticated(ctx context.Context) (bool, error) {
	access, ok := s.heldToken()
	if !ok {
		return false, nil
	}
	expired, err := s.expired(access)
	if err != nil {
		return false, err
	}
	if !expired {
		return true, nil
	}

	refreshed, err := s.RefreshToken(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if !isContextErr(err) && !perrors.Is(err, perrors.ErrNotLoggedIn) {
			s.LogoutIfHeld(context.WithoutCancel(ctx), access)
		}
		return false, err
	}
	stillExpired, err := s.expired(refreshed)
	if err != nil {
		return false, err
	}
	return !stillExpired, nil
}

// WaitForRefresh blocks until background refreshes settle: those started by
// IsAuthenticated and those whose callers gave up waiting
func (s *Service) WaitForRefresh() {
	s.background.Wait()
}

type refreshResponse struct {
	Token        string          `json:"token"`
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	Success      *bool           `json:"success"`
	Message      string          `json:"message"`
	Data         json.RawMessage `json:"data"`
}

func (r *refreshResponse) access() string {
	if r.Token != "" {
		return r.Token
	}
	return r.AccessToken
}

// RefreshToken exchanges the stored refresh token for a new access token.
// Concurrent callers share one backend call, which runs detached from any
// caller's context; each caller stops waiting when its own ctx is done.
// Failure leaves the session as it was.
func (s *Service) RefreshToken(ctx context.Context) (string, error) {
	s.background.Add(1)
	results := s.refreshGroup.DoChan(refreshKey, func() (any, error) {
		return s.refresh(context.WithoutCancel(ctx))
	})

	select {
	case res := <-results:
		s.background.Done()
		if res.Shared {
			log.Debug().Msg("joined in-flight token refresh")
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		go func() {
			defer s.background.Done()
			<-results
		}()
		return "", ctx.Err()
	}
}

func (s *Service) refresh(ctx context.Context) (string, error) {
	s.lock.RLock()
	used := s.session.RefreshToken
	s.lock.RUnlock()
	if used == "" {
		return "", perrors.ErrNoRefreshToken
	}

	body, err := s.client.Request(ctx, EndpointRefresh, apiclient.RequestOptions{
		Method:    http.MethodPost,
		Body:      map[string]string{"refreshToken": used},
		Anonymous: true,
	})
	if err != nil {
		return "", errors.Wrap(err, "[RefreshToken] token refresh failed")
	}

	var resp refreshResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("[RefreshToken] decode response: %w: %w", perrors.ErrInvalidToken, err)
	}
	if resp.Success != nil && !*resp.Success {
		return "", &apiclient.APIError{Status: http.StatusOK, Message: resp.Message, Endpoint: EndpointRefresh}
	}
	if resp.access() == "" && len(resp.Data) > 0 {
		var inner refreshResponse
		if err := json.Unmarshal(resp.Data, &inner); err == nil {
			resp.Token, resp.AccessToken = inner.Token, inner.AccessToken
			if inner.RefreshToken != "" {
				resp.RefreshToken = inner.RefreshToken
			}
		}
	}
	access := resp.access()
	if access == "" {
		return "", errors.Wrap(perrors.ErrInvalidToken, "[RefreshToken] response carried no token")
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	if s.session.RefreshToken != used {
		// Logged out, or logged in again, while the call was in flight
		return "", errors.Wrap(perrors.ErrNotLoggedIn, "[RefreshToken] session changed during refresh")
	}
	if err := sessions.SaveTokens(ctx, s.store, access, resp.RefreshToken); err != nil {
		return "", errors.Wrap(err, "[RefreshToken] store tokens")
	}
	s.session.AccessToken = access
	if resp.RefreshToken != "" {
		s.session.RefreshToken = resp.RefreshToken
	}
	log.Debug().Bool("rotated", resp.RefreshToken != "").Msg("access token refreshed")
	return access, nil
}

// IsAdmin reports whether the current user is an administrator
func (s *Service) IsAdmin() bool {
	return s.HasRole(users.RoleAdmin)
}

// IsFaculty reports whether the current user is a faculty member
func (s *Service) IsFaculty() bool {
	return s.HasRole(users.RoleFaculty)
}

// IsStudent reports whether the current user is a student
func (s *Service) IsStudent() bool {
	return s.HasRole(users.RoleStudent)
}

// HasRole compares case-insensitively; false when nobody is logged in
func (s *Service) HasRole(role users.RoleType) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.session.CurrentUser.HasRole(role)
}

// HasAnyRole reports whether the current user holds one of roles
func (s *Service) HasAnyRole(roles ...users.RoleType) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.session.CurrentUser.HasAnyRole(roles...)
}

// Permissions lists what the current user's role allows
func (s *Service) Permissions() []users.Permission {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.session.CurrentUser == nil {
		return nil
	}
	return users.Permissions(s.session.CurrentUser.Role)
}

func (s *Service) HasPermission(p users.Permission) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.session.CurrentUser.HasPermission(p)
}

// Destination is the dashboard for the current user's role
func (s *Service) Destination() navigation.Destination {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return DestinationFor(s.session.CurrentUser)
}

// DestinationFor maps a user to its dashboard. Nobody goes to login and an
// unrecognised role goes to the index page.
func DestinationFor(u *users.User) navigation.Destination {
	if u == nil {
		return navigation.Login
	}
	switch users.NormalizeRole(string(u.Role)) {
	case users.RoleAdmin:
		return navigation.Admin
	case users.RoleFaculty:
		return navigation.Faculty
	case users.RoleStudent:
		return navigation.Student
	}
	return navigation.Index
}

// RedirectToRoleDashboard sends the navigator to the current user's
// dashboard and returns where it went
func (s *Service) RedirectToRoleDashboard() navigation.Destination {
	dest := s.Destination()
	if dest == navigation.Index {
		log.Warn().Str("role", string(s.currentRole())).Msg("unknown role, redirecting to index")
	}
	s.navigator.Navigate(dest)
	return dest
}

func (s *Service) currentRole() users.RoleType {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.session.CurrentUser == nil {
		return ""
	}
	return s.session.CurrentUser.Role
}

func (s *Service) heldToken() (string, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.session.AccessToken == "" || s.session.CurrentUser == nil {
		return "", false
	}
	return s.session.AccessToken, true
}

func (s *Service) expired(access string) (bool, error) {
	claims, err := tokenjwt.Inspect(access)
	if err != nil {
		return false, fmt.Errorf("%w: %w", perrors.ErrInvalidToken, err)
	}
	return claims.Expired(s.nowTime()), nil
}
