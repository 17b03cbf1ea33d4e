package fakebackend_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-college-portal/internal/fakebackend"
	"github.com/stretchr/testify/require"
)

type reply struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type harness struct {
	t       *testing.T
	backend *fakebackend.Server
	srv     *httptest.Server
}

func newHarness(t *testing.T, opts ...fakebackend.Option) *harness {
	t.Helper()
	backend, err := fakebackend.New(opts...)
	require.NoError(t, err)
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)
	return &harness{t: t, backend: backend, srv: srv}
}

func (h *harness) call(method, path, bearer string, body any) (int, reply, []byte) {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, h.srv.URL+fakebackend.APIPrefix+path, &buf)
	require.NoError(h.t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := h.srv.Client().Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	var raw bytes.Buffer
	_, err = raw.ReadFrom(resp.Body)
	require.NoError(h.t, err)
	var r reply
	_ = json.Unmarshal(raw.Bytes(), &r)
	return resp.StatusCode, r, raw.Bytes()
}

func (h *harness) login(email, password string) (access, refresh string) {
	h.t.Helper()
	status, r, _ := h.call(http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(h.t, http.StatusOK, status)
	var data struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
		Role         string `json:"role"`
	}
	require.NoError(h.t, json.Unmarshal(r.Data, &data))
	require.NotEmpty(h.t, data.AccessToken)
	require.NotEmpty(h.t, data.RefreshToken)
	return data.AccessToken, data.RefreshToken
}

func TestLogin_ReportsLowerCaseRole(t *testing.T) {
	h := newHarness(t)
	_, r, _ := h.call(http.MethodPost, "/auth/login", "", map[string]string{"email": fakebackend.AdminEmail, "password": fakebackend.AdminPassword})
	var data struct {
		Role string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(r.Data, &data))
	require.Equal(t, "admin", data.Role)
}

func TestLogin_BadPassword(t *testing.T) {
	h := newHarness(t)
	status, r, _ := h.call(http.MethodPost, "/auth/login", "", map[string]string{"email": fakebackend.AdminEmail, "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, status)
	require.False(t, r.Success)
	require.Equal(t, "Invalid email or password", r.Message)
}

func TestRequireAuth(t *testing.T) {
	h := newHarness(t)
	student, _ := h.login(fakebackend.StudentEmail, fakebackend.StudentPassword)

	status, _, _ := h.call(http.MethodGet, "/student/profile", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)

	status, _, _ = h.call(http.MethodGet, "/student/profile", student, nil)
	require.Equal(t, http.StatusOK, status)

	status, r, _ := h.call(http.MethodGet, "/admin/users", student, nil)
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "Access denied", r.Message)

	expired, err := h.backend.IssueAccessToken(fakebackend.StudentEmail, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	status, _, _ = h.call(http.MethodGet, "/student/profile", expired, nil)
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestRefresh_BareAndRotated(t *testing.T) {
	t.Run("bare", func(t *testing.T) {
		h := newHarness(t)
		_, refresh := h.login(fakebackend.StudentEmail, fakebackend.StudentPassword)
		status, _, raw := h.call(http.MethodPost, "/auth/refresh", "", map[string]string{"refreshToken": refresh})
		require.Equal(t, http.StatusOK, status)
		var body map[string]string
		require.NoError(t, json.Unmarshal(raw, &body))
		require.NotEmpty(t, body["token"])
		require.NotContains(t, body, "refreshToken")
	})

	t.Run("rotated and enveloped", func(t *testing.T) {
		h := newHarness(t, fakebackend.WithRefreshRotation(true), fakebackend.WithEnvelopedRefresh(true))
		_, refresh := h.login(fakebackend.StudentEmail, fakebackend.StudentPassword)
		status, r, _ := h.call(http.MethodPost, "/auth/refresh", "", map[string]string{"refreshToken": refresh})
		require.Equal(t, http.StatusOK, status)
		require.True(t, r.Success)
		var data map[string]string
		require.NoError(t, json.Unmarshal(r.Data, &data))
		require.NotEmpty(t, data["token"])
		require.NotEqual(t, refresh, data["refreshToken"])

		// the rotated-out token no longer refreshes
		status, _, _ = h.call(http.MethodPost, "/auth/refresh", "", map[string]string{"refreshToken": refresh})
		require.Equal(t, http.StatusUnauthorized, status)
	})
}

func TestLogout_RevokesAccessAndRefresh(t *testing.T) {
	h := newHarness(t)
	access, refresh := h.login(fakebackend.FacultyEmail, fakebackend.FacultyPassword)

	status, _, _ := h.call(http.MethodPost, "/auth/logout", access, nil)
	require.Equal(t, http.StatusOK, status)
	require.True(t, h.backend.IsRevoked(access))

	status, _, _ = h.call(http.MethodGet, "/faculty/profile", access, nil)
	require.Equal(t, http.StatusUnauthorized, status)
	status, _, _ = h.call(http.MethodPost, "/auth/refresh", "", map[string]string{"refreshToken": refresh})
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestKnobs(t *testing.T) {
	h := newHarness(t)
	access, _ := h.login(fakebackend.StudentEmail, fakebackend.StudentPassword)

	h.backend.RejectNextAuthenticated(1)
	status, _, _ := h.call(http.MethodGet, "/courses", access, nil)
	require.Equal(t, http.StatusUnauthorized, status)
	status, _, _ = h.call(http.MethodGet, "/courses", access, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 2, h.backend.Calls(http.MethodGet, "/courses"))

	h.backend.FailRoute(http.MethodGet, "/courses", http.StatusServiceUnavailable, "maintenance")
	status, r, _ := h.call(http.MethodGet, "/courses", access, nil)
	require.Equal(t, http.StatusServiceUnavailable, status)
	require.Equal(t, "maintenance", r.Message)

	h.backend.ClearFailures()
	h.backend.ResetCalls()
	status, _, _ = h.call(http.MethodGet, "/courses", access, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, h.backend.Calls(http.MethodGet, "/courses"))
}

func TestEnrollment_CapacityAndDrop(t *testing.T) {
	h := newHarness(t)
	admin, _ := h.login(fakebackend.AdminEmail, fakebackend.AdminPassword)
	student, _ := h.login(fakebackend.StudentEmail, fakebackend.StudentPassword)

	_, r, _ := h.call(http.MethodGet, "/courses/code/MAT201", student, nil)
	var mat struct {
		ID               int64 `json:"id"`
		EnrolledStudents int   `json:"enrolledStudents"`
	}
	require.NoError(t, json.Unmarshal(r.Data, &mat))
	require.Equal(t, 1, mat.EnrolledStudents)

	status, _, _ := h.call(http.MethodPost, "/admin/users", admin, map[string]string{
		"name": "Second Student", "email": "second@college.edu", "password": "Second1234", "role": "STUDENT",
	})
	require.Equal(t, http.StatusCreated, status)
	second, _ := h.login("second@college.edu", "Second1234")
	third := "third@college.edu"
	status, _, _ = h.call(http.MethodPost, "/admin/users", admin, map[string]string{
		"name": "Third Student", "email": third, "password": "Third12345", "role": "STUDENT",
	})
	require.Equal(t, http.StatusCreated, status)
	thirdAccess, _ := h.login(third, "Third12345")

	enroll := func(bearer string) int {
		status, _, _ := h.call(http.MethodPost, "/student/courses/"+itoa(mat.ID)+"/enroll", bearer, nil)
		return status
	}
	require.Equal(t, http.StatusConflict, enroll(student))
	require.Equal(t, http.StatusCreated, enroll(second))
	require.Equal(t, http.StatusBadRequest, enroll(thirdAccess))

	status, _, _ = h.call(http.MethodPost, "/student/courses/"+itoa(mat.ID)+"/drop", second, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, http.StatusCreated, enroll(thirdAccess))
}

func TestStudentAttendanceSummary(t *testing.T) {
	h := newHarness(t)
	student, _ := h.login(fakebackend.StudentEmail, fakebackend.StudentPassword)
	_, r, _ := h.call(http.MethodGet, "/student/attendance/summary", student, nil)
	var list []struct {
		Attended   int     `json:"attended"`
		Total      int     `json:"total"`
		Percentage float64 `json:"percentage"`
	}
	require.NoError(t, json.Unmarshal(r.Data, &list))
	require.Len(t, list, 2)
	for _, s := range list {
		require.Equal(t, 3, s.Attended)
		require.Equal(t, 4, s.Total)
		require.InDelta(t, 75.0, s.Percentage, 0.001)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	h := newHarness(t)
	status, _, _ := h.call(http.MethodPost, "/auth/forgot-password", "", map[string]string{"email": fakebackend.StudentEmail})
	require.Equal(t, http.StatusOK, status)
	reset, ok := h.backend.ResetToken(fakebackend.StudentEmail)
	require.True(t, ok)

	status, _, _ = h.call(http.MethodPost, "/auth/reset-password", "", map[string]string{"token": reset, "newPassword": "Changed1234"})
	require.Equal(t, http.StatusOK, status)
	h.login(fakebackend.StudentEmail, "Changed1234")

	status, _, _ = h.call(http.MethodPost, "/auth/reset-password", "", map[string]string{"token": reset, "newPassword": "Changed5678"})
	require.Equal(t, http.StatusBadRequest, status)
}

func TestRoutes_AllUnderAPIPrefix(t *testing.T) {
	h := newHarness(t)
	routes := h.backend.Routes()
	require.NotEmpty(t, routes)
	for _, r := range routes {
		require.Contains(t, r, " "+fakebackend.APIPrefix+"/")
	}
}

func itoa(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
