package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-college-portal/apiclient"
	perrors "github.com/jrsteele09/go-college-portal/internal/errors"
	"github.com/jrsteele09/go-college-portal/sessions"
	"github.com/jrsteele09/go-college-portal/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// RegisterRequest is a new account. Student-only fields may be left empty for
// other roles.
type RegisterRequest struct {
	Name             string         `json:"name"`
	Email            string         `json:"email"`
	Password         string         `json:"password"`
	Role             users.RoleType `json:"role"`
	Phone            string         `json:"phone,omitempty"`
	Gender           string         `json:"gender,omitempty"`
	Course           string         `json:"course,omitempty"`
	Year             string         `json:"year,omitempty"`
	Semester         string         `json:"semester,omitempty"`
	SelectedSubjects string         `json:"selectedSubjects,omitempty"`
}

// ProfileUpdate carries the editable profile fields. Empty fields are left
// unchanged by the backend.
type ProfileUpdate struct {
	Name             string `json:"name,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Gender           string `json:"gender,omitempty"`
	Course           string `json:"course,omitempty"`
	Year             string `json:"year,omitempty"`
	Semester         string `json:"semester,omitempty"`
	SelectedSubjects string `json:"selectedSubjects,omitempty"`
}

// ActivityEntry is one record of the user's activity log. The backend does
// not fix its shape.
type ActivityEntry map[string]any

// Register creates an account. It does not log the new user in.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*users.User, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		return nil, validationError("register", "Name and email are required", nil)
	}
	if err := users.ValidatePasswordStrength(req.Password); err != nil {
		return nil, validationError("register", err.Error(), err)
	}
	if req.Role != "" {
		req.Role = users.NormalizeRole(string(req.Role))
		if !req.Role.Known() {
			return nil, validationError("register", "Unknown role "+string(req.Role), nil)
		}
	}

	var created users.User
	err := s.client.Do(ctx, EndpointRegister, apiclient.RequestOptions{
		Method:    http.MethodPost,
		Body:      req,
		Anonymous: true,
	}, &created)
	if err != nil {
		return nil, registrationFailure(err)
	}
	created.Role = users.NormalizeRole(string(created.Role))
	return &created, nil
}

// ForgotPassword asks the backend to email a reset link
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return validationError("forgot-password", "Email is required", nil)
	}
	err := s.client.Do(ctx, EndpointForgotPassword, apiclient.RequestOptions{
		Method:    http.MethodPost,
		Body:      map[string]string{"email": email},
		Anonymous: true,
	}, nil)
	if err != nil {
		return failure("forgot-password", "Failed to send reset email", nil, err)
	}
	return nil
}

// ResetPassword sets a new password using the token from a reset email
func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if resetToken == "" {
		return validationError("reset-password", "Reset token is required", nil)
	}
	if err := users.ValidatePasswordStrength(newPassword); err != nil {
		return validationError("reset-password", err.Error(), err)
	}
	err := s.client.Do(ctx, EndpointResetPassword, apiclient.RequestOptions{
		Method:    http.MethodPost,
		Body:      map[string]string{"token": resetToken, "newPassword": newPassword},
		Anonymous: true,
	}, nil)
	if err != nil {
		return failure("reset-password", "Password reset failed", nil, err)
	}
	return nil
}

// ChangePassword changes the logged-in user's password
func (s *Service) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	if err := users.ValidatePasswordStrength(newPassword); err != nil {
		return validationError("change-password", err.Error(), err)
	}
	if currentPassword == newPassword {
		return validationError("change-password", "New password must differ from the current password", nil)
	}
	err := s.client.Do(ctx, EndpointChangePassword, apiclient.RequestOptions{
		Method: http.MethodPut,
		Body:   map[string]string{"currentPassword": currentPassword, "newPassword": newPassword},
	}, nil)
	if err != nil {
		return failure("change-password", "Password change failed", nil, err)
	}
	return nil
}

// UpdateProfile saves profile changes and replaces the stored user with the
// backend's copy
func (s *Service) UpdateProfile(ctx context.Context, update ProfileUpdate) (*users.User, error) {
	var updated users.User
	err := s.client.Do(ctx, EndpointProfile, apiclient.RequestOptions{
		Method: http.MethodPut,
		Body:   update,
	}, &updated)
	if err != nil {
		return nil, failure("update-profile", "Profile update failed", nil, err)
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	if prev := s.session.CurrentUser; prev != nil {
		if updated.ID == 0 {
			updated.ID = prev.ID
		}
		if updated.Email == "" {
			updated.Email = prev.Email
		}
		if updated.Role == "" {
			updated.Role = prev.Role
		}
	}
	updated.Role = users.NormalizeRole(string(updated.Role))
	if s.session.AccessToken == "" {
		// Logged out while the call was in flight
		return &updated, nil
	}
	if err := sessions.SaveUser(ctx, s.store, &updated); err != nil {
		return nil, errors.Wrap(err, "[UpdateProfile] store user")
	}
	s.session.CurrentUser = &updated
	u := updated
	return &u, nil
}

// VerifyEmail confirms an email address with the emailed token
func (s *Service) VerifyEmail(ctx context.Context, verificationToken string) error {
	if verificationToken == "" {
		return validationError("verify-email", "Verification token is required", nil)
	}
	err := s.client.Do(ctx, EndpointVerifyEmail, apiclient.RequestOptions{
		Method: http.MethodPost,
		Body:   map[string]string{"token": verificationToken},
	}, nil)
	if err != nil {
		return failure("verify-email", "Email verification failed", nil, err)
	}
	return nil
}

// ResendVerification asks for another verification email
func (s *Service) ResendVerification(ctx context.Context) error {
	err := s.client.Do(ctx, EndpointResendVerification, apiclient.RequestOptions{Method: http.MethodPost}, nil)
	if err != nil {
		return failure("resend-verification", "Failed to send verification email", nil, err)
	}
	return nil
}

// ActivityLog returns the user's recent account activity
func (s *Service) ActivityLog(ctx context.Context) ([]ActivityEntry, error) {
	var entries []ActivityEntry
	if err := s.client.Do(ctx, EndpointActivityLog, apiclient.RequestOptions{}, &entries); err != nil {
		if isContextErr(err) {
			return nil, err
		}
		log.Debug().Err(err).Msg("activity log request failed")
		return nil, &Error{Op: "activity-log", Message: "Failed to fetch activity log", Kind: perrors.ErrOperationFailed, Err: err}
	}
	return entries, nil
}
