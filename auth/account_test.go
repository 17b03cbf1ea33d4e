package auth_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/jrsteele09/go-college-portal/auth"
	perrors "github.com/jrsteele09/go-college-portal/internal/errors"
	"github.com/jrsteele09/go-college-portal/internal/fakebackend"
	"github.com/jrsteele09/go-college-portal/sessions"
	"github.com/jrsteele09/go-college-portal/users"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	created, err := f.service.Register(ctx, auth.RegisterRequest{
		Name: "New Student", Email: "new@college.edu", Password: "Welcome123", Role: "student",
		Course: "B.Tech CSE", Year: "1", Semester: "1",
	})
	require.NoError(t, err)
	require.Equal(t, users.RoleStudent, created.Role)
	require.NotZero(t, created.ID)
	require.False(t, f.service.IsAuthenticated(ctx), "registration does not log in")

	_, err = f.service.Register(ctx, auth.RegisterRequest{Name: "Again", Email: "new@college.edu", Password: "Welcome123"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "already exists")
}

func TestRegister_ValidatesBeforeCalling(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	tests := map[string]auth.RegisterRequest{
		"missing name":  {Email: "a@college.edu", Password: "Welcome123"},
		"weak password": {Name: "A", Email: "a@college.edu", Password: "weak"},
		"unknown role":  {Name: "A", Email: "a@college.edu", Password: "Welcome123", Role: "janitor"},
	}
	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := f.service.Register(ctx, req)
			require.ErrorIs(t, err, perrors.ErrValidationFailed)
		})
	}
	require.Zero(t, f.backend.Calls(http.MethodPost, auth.EndpointRegister))
}

func TestPasswordReset(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	require.ErrorIs(t, f.service.ForgotPassword(ctx, ""), perrors.ErrValidationFailed)
	require.NoError(t, f.service.ForgotPassword(ctx, fakebackend.StudentEmail))
	reset, ok := f.backend.ResetToken(fakebackend.StudentEmail)
	require.True(t, ok)

	require.ErrorIs(t, f.service.ResetPassword(ctx, reset, "short"), perrors.ErrValidationFailed)
	require.NoError(t, f.service.ResetPassword(ctx, reset, "Brandnew123"))

	err := f.service.ResetPassword(ctx, reset, "Brandnew456")
	require.EqualError(t, err, "Invalid or expired reset token")

	f.login(t, fakebackend.StudentEmail, "Brandnew123")
}

func TestChangePassword(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.login(t, fakebackend.FacultyEmail, fakebackend.FacultyPassword)

	err := f.service.ChangePassword(ctx, fakebackend.FacultyPassword, fakebackend.FacultyPassword)
	require.ErrorIs(t, err, perrors.ErrValidationFailed)

	err = f.service.ChangePassword(ctx, "NotMine123", "Another123")
	require.EqualError(t, err, "Current password is incorrect")

	require.NoError(t, f.service.ChangePassword(ctx, fakebackend.FacultyPassword, "Another123"))
	require.NoError(t, f.service.Logout(ctx))
	f.login(t, fakebackend.FacultyEmail, "Another123")
}

func TestChangePassword_LoggedOutReachesBackend(t *testing.T) {
	f := setupTestFixture(t)
	err := f.service.ChangePassword(context.Background(), "Whatever123", "Another123")
	require.ErrorIs(t, err, perrors.ErrNoRefreshToken)
	require.Equal(t, 1, f.backend.Calls(http.MethodPut, auth.EndpointChangePassword))
}

func TestUpdateProfile(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.login(t, fakebackend.StudentEmail, fakebackend.StudentPassword)

	updated, err := f.service.UpdateProfile(ctx, auth.ProfileUpdate{Phone: "9111111111"})
	require.NoError(t, err)
	require.Equal(t, "9111111111", updated.Phone)
	require.Equal(t, users.RoleStudent, updated.Role)
	require.Equal(t, "9111111111", f.service.CurrentUser().Phone)

	stored, err := sessions.Load(ctx, f.store)
	require.NoError(t, err)
	require.Equal(t, "9111111111", stored.CurrentUser.Phone)

	u, err := f.backend.User(fakebackend.StudentEmail)
	require.NoError(t, err)
	require.Equal(t, "9111111111", u.Phone)
}

func TestEmailVerification(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	_, err := f.service.Register(ctx, auth.RegisterRequest{Name: "V", Email: "verify@college.edu", Password: "Verify1234"})
	require.NoError(t, err)

	f.login(t, "verify@college.edu", "Verify1234")
	require.NoError(t, f.service.ResendVerification(ctx))
	token, ok := f.backend.VerificationToken("verify@college.edu")
	require.True(t, ok)

	require.ErrorIs(t, f.service.VerifyEmail(ctx, ""), perrors.ErrValidationFailed)
	require.NoError(t, f.service.VerifyEmail(ctx, token))
	require.EqualError(t, f.service.VerifyEmail(ctx, token), "Invalid or expired verification token")

	err = f.service.ResendVerification(ctx)
	require.EqualError(t, err, "Email is already verified")
}

func TestActivityLog(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.login(t, fakebackend.AdminEmail, fakebackend.AdminPassword)

	entries, err := f.service.ActivityLog(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	require.Equal(t, "LOGIN", entries[0]["action"])

	f.backend.FailRoute(http.MethodGet, auth.EndpointActivityLog, http.StatusInternalServerError, "boom")
	_, err = f.service.ActivityLog(ctx)
	require.ErrorIs(t, err, perrors.ErrOperationFailed)
	require.EqualError(t, err, "Failed to fetch activity log")
}
