package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-college-portal/apiclient"
	"github.com/jrsteele09/go-college-portal/auth"
	perrors "github.com/jrsteele09/go-college-portal/internal/errors"
	"github.com/jrsteele09/go-college-portal/internal/fakebackend"
	"github.com/jrsteele09/go-college-portal/navigation"
	"github.com/jrsteele09/go-college-portal/sessions"
	sessionrepofakes "github.com/jrsteele09/go-college-portal/sessions/repofakes"
	"github.com/jrsteele09/go-college-portal/users"
	"github.com/stretchr/testify/require"
)

// testFixture holds all test dependencies
type testFixture struct {
	backend *fakebackend.Server
	baseURL string
	store   *sessionrepofakes.MemoryStore
	nav     *navigation.Recorder
	service *auth.Service
}

func setupTestFixture(t *testing.T, opts ...fakebackend.Option) *testFixture {
	t.Helper()
	backend, err := fakebackend.New(opts...)
	require.NoError(t, err)
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	f := &testFixture{
		backend: backend,
		baseURL: srv.URL + fakebackend.APIPrefix,
		store:   sessionrepofakes.NewMemoryStore(),
		nav:     &navigation.Recorder{},
	}
	f.service = f.newService(t)
	return f
}

// newService builds a session manager over the fixture's store, as a
// restarted client would
func (f *testFixture) newService(t *testing.T, opts ...auth.Option) *auth.Service {
	t.Helper()
	opts = append([]auth.Option{auth.WithNavigator(f.nav)}, opts...)
	s, err := auth.New(context.Background(), f.baseURL, f.store, opts...)
	require.NoError(t, err)
	t.Cleanup(s.WaitForRefresh)
	return s
}

func (f *testFixture) login(t *testing.T, email, password string) *auth.LoginResult {
	t.Helper()
	res, err := f.service.Login(context.Background(), email, password)
	require.NoError(t, err)
	return res
}

func (f *testFixture) get(t *testing.T, endpoint string) error {
	t.Helper()
	return f.service.Client().Do(context.Background(), endpoint, apiclient.RequestOptions{}, nil)
}

func TestNew_RequiresStore(t *testing.T) {
	_, err := auth.New(context.Background(), "http://localhost", nil)
	require.Error(t, err)
}

func TestIsAuthenticated_NoToken(t *testing.T) {
	f := setupTestFixture(t)
	require.False(t, f.service.IsAuthenticated(context.Background()))
	ok, err := f.service.Authenticated(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
	require.Zero(t, f.backend.Calls(http.MethodPost, auth.EndpointRefresh))
}

func TestIsAuthenticated_NoAccessToken(t *testing.T) {
	student := &users.User{ID: 3, Email: fakebackend.StudentEmail, Role: users.RoleStudent}
	tests := []struct {
		name    string
		session sessions.Session
	}{
		{"nothing stored", sessions.Session{}},
		{"refresh token only", sessions.Session{RefreshToken: "stored-refresh-token"}},
		{"user only", sessions.Session{CurrentUser: student}},
		{"refresh token and user", sessions.Session{RefreshToken: "stored-refresh-token", CurrentUser: student}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t)
			require.NoError(t, sessions.Save(context.Background(), f.store, &tt.session))
			s := f.newService(t)

			require.False(t, s.IsAuthenticated(context.Background()))
			s.WaitForRefresh()
			require.Zero(t, f.backend.Calls(http.MethodPost, auth.EndpointRefresh))
		})
	}
}

func TestLogin_StoresSessionWithUpperCaseRole(t *testing.T) {
	f := setupTestFixture(t)
	res := f.login(t, fakebackend.FacultyEmail, fakebackend.FacultyPassword)

	require.Equal(t, users.RoleFaculty, res.User.Role)
	require.NotEmpty(t, res.Token)
	require.True(t, f.service.IsAuthenticated(context.Background()))
	require.True(t, f.service.IsFaculty())
	require.False(t, f.service.IsAdmin())
	require.Equal(t, res.Token, f.service.AccessToken())

	for _, key := range sessions.Keys {
		require.True(t, f.store.Has(key), key)
	}

	// A restarted client restores the same session
	restarted := f.newService(t)
	require.True(t, restarted.IsAuthenticated(context.Background()))
	require.Equal(t, users.RoleFaculty, restarted.CurrentUser().Role)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := setupTestFixture(t)
	_, err := f.service.Login(context.Background(), fakebackend.StudentEmail, "wrong")
	require.ErrorIs(t, err, perrors.ErrAuthenticationFailed)
	require.EqualError(t, err, "Invalid email or password")
	require.Zero(t, f.store.Len())
	require.False(t, f.service.IsAuthenticated(context.Background()))
}

func TestLogin_BackendDown(t *testing.T) {
	store := sessionrepofakes.NewMemoryStore()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	s, err := auth.New(context.Background(), url, store)
	require.NoError(t, err)
	_, err = s.Login(context.Background(), fakebackend.StudentEmail, fakebackend.StudentPassword)
	require.ErrorIs(t, err, perrors.ErrBackendUnavailable)
	require.NotErrorIs(t, err, perrors.ErrAuthenticationFailed)
	require.EqualError(t, err, apiclient.NoticeNetworkError)
}

func TestLogout_ClearsEveryKeyAndRevokes(t *testing.T) {
	f := setupTestFixture(t)
	res := f.login(t, fakebackend.StudentEmail, fakebackend.StudentPassword)

	require.NoError(t, f.service.Logout(context.Background()))
	for _, key := range sessions.Keys {
		require.False(t, f.store.Has(key), key)
	}
	require.False(t, f.service.IsAuthenticated(context.Background()))
	require.Nil(t, f.service.CurrentUser())
	require.True(t, f.backend.IsRevoked(res.Token))
	require.Equal(t, 1, f.backend.Calls(http.MethodPost, auth.EndpointLogout))
}

func TestLogout_BackendFailureStillClears(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, fakebackend.StudentEmail, fakebackend.StudentPassword)
	f.backend.FailRoute(http.MethodPost, auth.EndpointLogout, http.StatusInternalServerError, "down")

	require.NoError(t, f.service.Logout(context.Background()))
	require.Zero(t, f.store.Len())
}

func TestIsAuthenticated_ExpiredTokenRefreshesInBackground(t *testing.T) {
	f := setupTestFixture(t, fakebackend.WithAccessTokenTTL(-time.Minute))
	f.login(t, fakebackend.StudentEmail, fakebackend.StudentPassword)
	f.backend.SetAccessTokenTTL(time.Hour)

	require.False(t, f.service.IsAuthenticated(context.Background()))
	f.service.WaitForRefresh()

	require.Equal(t, 1, f.backend.Calls(http.MethodPost, auth.EndpointRefresh))
	require.True(t, f.service.IsAuthenticated(context.Background()))
}

func TestIsAuthenticated_FailedBackgroundRefreshLogsOut(t *testing.T) {
	f := setupTestFixture(t, fakebackend.WithAccessTokenTTL(-time.Minute))
	f.login(t, fakebackend.StudentEmail, fakebackend.StudentPassword)
	f.backend.FailRefresh(http.StatusUnauthorized)

	require.False(t, f.service.IsAuthenticated(context.Background()))
	f.service.WaitForRefresh()

	require.Zero(t, f.store.Len())
	require.Nil(t, f.service.CurrentUser())
}

func TestAuthenticated_WaitsForRefresh(t *testing.T) {
	f := setupTestFixture(t, fakebackend.WithAccessTokenTTL(-time.Minute))
	f.login(t, fakebackend.AdminEmail, fakebackend.AdminPassword)
	f.backend.SetAccessTokenTTL(time.Hour)

	ok, err := f.service.Authenticated(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRefreshToken_WithoutRefreshTokenMakesNoCall(t *testing.T) {
	f := setupTestFixture(t)
	expired, err := f.backend.IssueAccessToken(fakebackend.StudentEmail, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	require.NoError(t, sessions.Save(context.Background(), f.store, &sessions.Session{
		AccessToken: expired,
		CurrentUser: &users.User{ID: 3, Email: fakebackend.StudentEmail, Role: users.RoleStudent},
	}))
	s := f.newService(t)

	_, err = s.RefreshToken(context.Background())
	require.ErrorIs(t, err, perrors.ErrNoRefreshToken)

	ok, err := s.Authenticated(context.Background())
	require.ErrorIs(t, err, perrors.ErrNoRefreshToken)
	require.False(t, ok)
	require.Zero(t, f.backend.Calls(http.MethodPost, auth.EndpointRefresh))
	require.Zero(t, f.store.Len())
}

func TestIsAuthenticated_ExpiredWithoutRefreshTokenLogsOut(t *testing.T) {
	f := setupTestFixture(t)
	expired, err := f.backend.IssueAccessToken(fakebackend.StudentEmail, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	require.NoError(t, sessions.Save(context.Background(), f.store, &sessions.Session{
		AccessToken: expired,
		CurrentUser: &users.User{ID: 3, Email: fakebackend.StudentEmail, Role: users.RoleStudent},
	}))
	s := f.newService(t)

	require.False(t, s.IsAuthenticated(context.Background()))
	s.WaitForRefresh()

	require.Zero(t, f.backend.Calls(http.MethodPost, auth.EndpointRefresh))
	require.Zero(t, f.store.Len())
	require.Nil(t, s.CurrentUser())
	require.Empty(t, s.AccessToken())
}

func TestRefreshToken_KeepsRefreshTokenWhenNotRotated(t *testing.T) {
	f := setupTestFixture(t)
	res := f.login(t, fakebackend.StudentEmail, fakebackend.StudentPassword)
	before := f.service.Session().RefreshToken

	access, err := f.service.RefreshToken(context.Background())
	require.NoError(t, err)
	require.NotEqual(t, res.Token, access)
	require.Equal(t, access, f.service.AccessToken())
	require.Equal(t, before, f.service.Session().RefreshToken)

	stored, ok, err := f.store.Get(context.Background(), sessions.KeyAccessToken)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, access, stored)
}

func TestRefreshToken_RotatedAndEnveloped(t *testing.T) {
	f := setupTestFixture(t, fakebackend.WithRefreshRotation(true), fakebackend.WithEnvelopedRefresh(true))
	f.login(t, fakebackend.StudentEmail, fakebackend.StudentPassword)
	before := f.service.Session().RefreshToken

	_, err := f.service.RefreshToken(context.Background())
	require.NoError(t, err)
	after := f.service.Session().RefreshToken
	require.NotEqual(t, before, after)

	stored, _, err := f.store.Get(context.Background(), sessions.KeyRefreshToken)
	require.NoError(t, err)
	require.Equal(t, after, stored)
}

func TestRefreshToken_FailureLeavesSession(t *testing.T) {
	f := setupTestFixture(t)
	res := f.login(t, fakebackend.StudentEmail, fakebackend.StudentPassword)
	f.backend.FailRefresh(http.StatusInternalServerError)

	_, err := f.service.RefreshToken(context.Background())
	require.ErrorIs(t, err, perrors.ErrServerError)
	require.Equal(t, res.Token, f.service.AccessToken())
	require.Equal(t, 3, f.store.Len())
}

func TestDispatch_RetriesOnceAfterRefresh(t *testing.T) {
	f := setupTestFixture(t)
	res := f.login(t, fakebackend.StudentEmail, fakebackend.StudentPassword)
	f.backend.RejectNextAuthenticated(1)

	require.NoError(t, f.get(t, "/courses"))
	require.Equal(t, 2, f.backend.Calls(http.MethodGet, "/courses"))
	require.Equal(t, 1, f.backend.Calls(http.MethodPost, auth.EndpointRefresh))
	require.NotEqual(t, res.Token, f.service.AccessToken())
	require.True(t, f.service.IsAuthenticated(context.Background()))
}

func TestDispatch_SecondUnauthorizedLogsOut(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, fakebackend.StudentEmail, fakebackend.StudentPassword)
	f.backend.RefreshIssuesExpired(true)
	f.backend.RejectNextAuthenticated(1)

	err := f.get(t, "/courses")
	require.ErrorIs(t, err, perrors.ErrUnauthorized)
	require.Equal(t, apiclient.NoticeSessionExpired, apiclient.Notice(err))

	require.Equal(t, 2, f.backend.Calls(http.MethodGet, "/courses"), "no third attempt")
	require.Equal(t, 1, f.backend.Calls(http.MethodPost, auth.EndpointRefresh))
	require.Zero(t, f.store.Len())
	require.Equal(t, navigation.Login, f.nav.Last())
}

func TestDispatch_RefreshFailureLogsOut(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, fakebackend.StudentEmail, fakebackend.StudentPassword)
	f.backend.FailRefresh(http.StatusUnauthorized)
	f.backend.RejectNextAuthenticated(1)

	err := f.get(t, "/courses")
	require.ErrorIs(t, err, perrors.ErrUnauthorized)
	require.Equal(t, 1, f.backend.Calls(http.MethodGet, "/courses"))
	require.Zero(t, f.store.Len())
	require.Equal(t, navigation.Login, f.nav.Last())
}

func TestDispatch_ConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	const n = 5
	f := setupTestFixture(t)
	f.login(t, fakebackend.StudentEmail, fakebackend.StudentPassword)
	f.backend.SetRefreshDelay(200 * time.Millisecond)
	f.backend.RejectNextAuthenticated(n)

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.get(t, "/courses")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, 1, f.backend.Calls(http.MethodPost, auth.EndpointRefresh))
	require.Equal(t, 2*n, f.backend.Calls(http.MethodGet, "/courses"))
}

func TestDispatch_CancelledCallerDoesNotEndSharedRefresh(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, fakebackend.StudentEmail, fakebackend.StudentPassword)
	f.backend.SetRefreshDelay(400 * time.Millisecond)
	f.backend.RejectNextAuthenticated(2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	leaderErr := make(chan error, 1)
	go func() {
		leaderErr <- f.service.Client().Do(ctx, "/courses", apiclient.RequestOptions{}, nil)
	}()

	// The first caller owns the refresh by the time the second one joins it
	time.Sleep(100 * time.Millisecond)
	joinerErr := make(chan error, 1)
	go func() {
		joinerErr <- f.get(t, "/courses")
	}()
	time.Sleep(100 * time.Millisecond)
	cancel()

	require.ErrorIs(t, <-leaderErr, context.Canceled)
	require.NoError(t, <-joinerErr)
	require.Equal(t, 1, f.backend.Calls(http.MethodPost, auth.EndpointRefresh))
	require.Equal(t, 3, f.store.Len())
	require.True(t, f.service.IsAuthenticated(context.Background()))
	require.NotContains(t, f.nav.Visited(), navigation.Login)
}

func TestDispatch_LoginDuringRefreshIsKept(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, fakebackend.StudentEmail, fakebackend.StudentPassword)
	f.backend.SetRefreshDelay(300 * time.Millisecond)
	f.backend.RejectNextAuthenticated(1)

	requestErr := make(chan error, 1)
	go func() {
		requestErr <- f.get(t, "/courses")
	}()
	time.Sleep(100 * time.Millisecond)
	f.login(t, fakebackend.AdminEmail, fakebackend.AdminPassword)

	require.ErrorIs(t, <-requestErr, perrors.ErrNotLoggedIn)
	require.Equal(t, fakebackend.AdminEmail, f.service.CurrentUser().Email)
	require.Equal(t, users.RoleAdmin, f.service.CurrentUser().Role)
	require.Equal(t, 3, f.store.Len())
	require.NotContains(t, f.nav.Visited(), navigation.Login)
}

func TestRoles(t *testing.T) {
	f := setupTestFixture(t)
	require.False(t, f.service.HasRole(users.RoleStudent))
	require.Nil(t, f.service.Permissions())

	f.login(t, fakebackend.StudentEmail, fakebackend.StudentPassword)
	require.True(t, f.service.IsStudent())
	require.True(t, f.service.HasRole("student"))
	require.True(t, f.service.HasAnyRole(users.RoleAdmin, users.RoleStudent))
	require.False(t, f.service.HasAnyRole(users.RoleAdmin, users.RoleFaculty))
	require.False(t, f.service.HasAnyRole())
	require.True(t, f.service.HasPermission(users.PermEnrollCourses))
	require.False(t, f.service.HasPermission(users.PermManageUsers))
}

func TestRedirectToRoleDashboard(t *testing.T) {
	tests := []struct {
		email    string
		password string
		want     navigation.Destination
	}{
		{fakebackend.AdminEmail, fakebackend.AdminPassword, navigation.Admin},
		{fakebackend.FacultyEmail, fakebackend.FacultyPassword, navigation.Faculty},
		{fakebackend.StudentEmail, fakebackend.StudentPassword, navigation.Student},
	}
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			f := setupTestFixture(t)
			require.Equal(t, navigation.Login, f.service.RedirectToRoleDashboard())
			f.login(t, tt.email, tt.password)
			require.Equal(t, tt.want, f.service.RedirectToRoleDashboard())
			require.Equal(t, []navigation.Destination{navigation.Login, tt.want}, f.nav.Visited())
		})
	}
}

func TestDestinationFor_UnknownRole(t *testing.T) {
	require.Equal(t, navigation.Login, auth.DestinationFor(nil))
	require.Equal(t, navigation.Index, auth.DestinationFor(&users.User{Role: "LIBRARIAN"}))
	require.Equal(t, navigation.Admin, auth.DestinationFor(&users.User{Role: "admin"}))
}
