package fakebackend

import (
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-college-portal/internal/utils"
	"github.com/jrsteele09/go-college-portal/portal"
	tokenjwt "github.com/jrsteele09/go-college-portal/token/jwt"
	"github.com/jrsteele09/go-college-portal/users"
	"github.com/rs/zerolog/log"
)

// loginData is the body of a successful login, with the role in the lower
// case the backend reports
type loginData struct {
	users.User
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	TokenType    string `json:"tokenType"`
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeFailure(w, http.StatusBadRequest, "Malformed request")
			return
		}
		if req.Email == "" || req.Password == "" {
			writeValidation(w, map[string]string{"email": "Email is required", "password": "Password is required"})
			return
		}

		u, err := s.users.GetByEmail(req.Email)
		if err != nil || !users.CheckPasswordHash(req.Password, u.PasswordHash) {
			writeFailure(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		if u.IsActive != nil && !*u.IsActive {
			writeFailure(w, http.StatusUnauthorized, "Account is deactivated")
			return
		}

		access, err := s.issueAccess(u, s.currentTTL())
		if err != nil {
			writeFailure(w, http.StatusInternalServerError, "Could not issue token")
			return
		}
		refreshToken, err := s.refresh.Create(u.ID)
		if err != nil {
			writeFailure(w, http.StatusInternalServerError, "Could not issue refresh token")
			return
		}
		s.data.recordActivity(u.ID, "LOGIN", "Logged in")

		data := loginData{User: *u, AccessToken: access, RefreshToken: refreshToken, TokenType: "Bearer"}
		data.Role = users.RoleType(strings.ToLower(string(u.Role)))
		writeSuccess(w, http.StatusOK, "Login successful", data)
	}
}

func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.lock.Lock()
		failStatus, delay, rotate, envelope, expired := s.refreshFail, s.refreshDelay, s.rotate, s.envelope, s.refreshExpired
		s.lock.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if failStatus != 0 {
			writeFailure(w, failStatus, "Refresh token is invalid or expired")
			return
		}

		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := decodeBody(r, &req); err != nil || req.RefreshToken == "" {
			writeFailure(w, http.StatusBadRequest, "Refresh token is required")
			return
		}
		stored, err := s.refresh.Get(req.RefreshToken)
		if err != nil || stored == nil || s.refresh.IsExpired(stored) {
			writeFailure(w, http.StatusUnauthorized, "Refresh token is invalid or expired")
			return
		}
		u, err := s.users.GetByID(stored.UserID)
		if err != nil {
			writeFailure(w, http.StatusUnauthorized, "User no longer exists")
			return
		}

		ttl := s.currentTTL()
		if expired {
			ttl = -time.Minute
		}
		access, err := s.issueAccess(u, ttl)
		if err != nil {
			writeFailure(w, http.StatusInternalServerError, "Could not issue token")
			return
		}

		body := map[string]string{"token": access}
		if rotate {
			next, err := s.refresh.Create(u.ID)
			if err != nil {
				writeFailure(w, http.StatusInternalServerError, "Could not rotate refresh token")
				return
			}
			body["refreshToken"] = next
		}

		if envelope {
			writeSuccess(w, http.StatusOK, "Token refreshed", body)
			return
		}
		writeJSON(w, http.StatusOK, body)
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := userFrom(r)
		raw := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer"))
		if claims, err := tokenjwt.Inspect(raw); err != nil || !s.revoked.Deny(claims) {
			log.Warn().Int64("user_id", u.ID).Msg("access token could not be revoked")
		}
		if err := s.refresh.DeleteForUser(u.ID); err != nil {
			log.Err(err).Int64("user_id", u.ID).Msg("failed to delete refresh token")
		}
		s.data.recordActivity(u.ID, "LOGOUT", "Logged out")
		writeSuccess(w, http.StatusOK, "Logged out", nil)
	}
}

func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name             string `json:"name"`
			Email            string `json:"email"`
			Password         string `json:"password"`
			Role             string `json:"role"`
			Phone            string `json:"phone"`
			Gender           string `json:"gender"`
			Course           string `json:"course"`
			Year             string `json:"year"`
			Semester         string `json:"semester"`
			SelectedSubjects string `json:"selectedSubjects"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeFailure(w, http.StatusBadRequest, "Malformed request")
			return
		}
		fields := map[string]string{}
		if req.Name == "" {
			fields["name"] = "Name is required"
		}
		if !strings.Contains(req.Email, "@") {
			fields["email"] = "Email should be valid"
		}
		if err := users.ValidatePasswordStrength(req.Password); err != nil {
			fields["password"] = err.Error()
		}
		if len(fields) > 0 {
			writeValidation(w, fields)
			return
		}
		if _, err := s.users.GetByEmail(req.Email); err == nil {
			writeFailure(w, http.StatusConflict, "User with email "+req.Email+" already exists")
			return
		}

		role := users.NormalizeRole(req.Role)
		if role == "" {
			role = users.RoleStudent
		}
		hash, err := users.HashPassword(req.Password)
		if err != nil {
			writeFailure(w, http.StatusInternalServerError, "Registration failed. Please try again.")
			return
		}
		u := &users.User{
			Name: req.Name, Email: req.Email, Role: role, Phone: req.Phone, Gender: req.Gender,
			Course: req.Course, Year: req.Year, Semester: req.Semester, SelectedSubjects: req.SelectedSubjects,
			IsActive: utils.Ptr(true), IsVerified: utils.Ptr(false), PasswordHash: hash,
		}
		if err := s.users.Upsert(u); err != nil {
			writeFailure(w, http.StatusInternalServerError, "Registration failed. Please try again.")
			return
		}
		s.addProfile(u)
		s.data.issueVerifyToken(u.Email)
		writeSuccess(w, http.StatusCreated, "Registration successful! Welcome to the College Portal.", u)
	}
}

func (s *Server) ForgotPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
		}
		if err := decodeBody(r, &req); err != nil || req.Email == "" {
			writeFailure(w, http.StatusBadRequest, "Email is required")
			return
		}
		// Unknown addresses get the same answer so accounts cannot be probed
		if _, err := s.users.GetByEmail(req.Email); err == nil {
			s.data.issueResetToken(req.Email)
		}
		writeSuccess(w, http.StatusOK, "Password reset email sent", nil)
	}
}

func (s *Server) ResetPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Token       string `json:"token"`
			NewPassword string `json:"newPassword"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeFailure(w, http.StatusBadRequest, "Malformed request")
			return
		}
		if err := users.ValidatePasswordStrength(req.NewPassword); err != nil {
			writeValidation(w, map[string]string{"newPassword": err.Error()})
			return
		}
		email, ok := s.data.consumeResetToken(req.Token)
		if !ok {
			writeFailure(w, http.StatusBadRequest, "Invalid or expired reset token")
			return
		}
		if err := s.setPassword(email, req.NewPassword); err != nil {
			writeFailure(w, http.StatusInternalServerError, "Password reset failed")
			return
		}
		writeSuccess(w, http.StatusOK, "Password reset successful", nil)
	}
}

func (s *Server) ChangePasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := userFrom(r)
		var req struct {
			CurrentPassword string `json:"currentPassword"`
			NewPassword     string `json:"newPassword"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeFailure(w, http.StatusBadRequest, "Malformed request")
			return
		}
		if !users.CheckPasswordHash(req.CurrentPassword, u.PasswordHash) {
			writeFailure(w, http.StatusBadRequest, "Current password is incorrect")
			return
		}
		if err := users.ValidatePasswordStrength(req.NewPassword); err != nil {
			writeValidation(w, map[string]string{"newPassword": err.Error()})
			return
		}
		if err := s.setPassword(u.Email, req.NewPassword); err != nil {
			writeFailure(w, http.StatusInternalServerError, "Password change failed")
			return
		}
		s.data.recordActivity(u.ID, "PASSWORD_CHANGE", "Password changed")
		writeSuccess(w, http.StatusOK, "Password changed successfully", nil)
	}
}

type profileUpdate struct {
	Name             string `json:"name"`
	Phone            string `json:"phone"`
	Gender           string `json:"gender"`
	Course           string `json:"course"`
	Year             string `json:"year"`
	Semester         string `json:"semester"`
	SelectedSubjects string `json:"selectedSubjects"`
}

func (p profileUpdate) apply(u *users.User) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&u.Name, p.Name)
	set(&u.Phone, p.Phone)
	set(&u.Gender, p.Gender)
	set(&u.Course, p.Course)
	set(&u.Year, p.Year)
	set(&u.Semester, p.Semester)
	set(&u.SelectedSubjects, p.SelectedSubjects)
}

func (s *Server) UpdateProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req profileUpdate
		if err := decodeBody(r, &req); err != nil {
			writeFailure(w, http.StatusBadRequest, "Malformed request")
			return
		}
		updated, err := s.updateUser(userFrom(r).Email, req.apply)
		if err != nil {
			writeFailure(w, http.StatusInternalServerError, "Profile update failed")
			return
		}
		writeSuccess(w, http.StatusOK, "Profile updated", updated)
	}
}

func (s *Server) VerifyEmailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Token string `json:"token"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeFailure(w, http.StatusBadRequest, "Malformed request")
			return
		}
		email, ok := s.data.consumeVerifyToken(req.Token)
		if !ok {
			writeFailure(w, http.StatusBadRequest, "Invalid or expired verification token")
			return
		}
		if _, err := s.updateUser(email, func(u *users.User) { u.IsVerified = utils.Ptr(true) }); err != nil {
			writeFailure(w, http.StatusNotFound, "User not found")
			return
		}
		writeSuccess(w, http.StatusOK, "Email verified successfully", nil)
	}
}

func (s *Server) ResendVerificationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := userFrom(r)
		if u.IsVerified != nil && *u.IsVerified {
			writeFailure(w, http.StatusBadRequest, "Email is already verified")
			return
		}
		s.data.issueVerifyToken(u.Email)
		writeSuccess(w, http.StatusOK, "Verification email sent", nil)
	}
}

func (s *Server) ActivityLogHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeSuccess(w, http.StatusOK, "Activity log", s.data.activityFor(userFrom(r).ID))
	}
}

// updateUser applies change to a copy of the stored user and saves it
func (s *Server) updateUser(email string, change func(*users.User)) (*users.User, error) {
	s.data.lock.Lock()
	defer s.data.lock.Unlock()
	stored, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	u := *stored
	change(&u)
	if err := s.users.Upsert(&u); err != nil {
		return nil, err
	}
	if p, ok := s.data.students[u.ID]; ok {
		p.User = u
		s.data.students[u.ID] = p
	}
	if p, ok := s.data.faculty[u.ID]; ok {
		p.User = u
		s.data.faculty[u.ID] = p
	}
	return &u, nil
}

func (s *Server) setPassword(email, password string) error {
	hash, err := users.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = s.updateUser(email, func(u *users.User) { u.PasswordHash = hash })
	return err
}

// addProfile creates the role profile that goes with a new user
func (s *Server) addProfile(u *users.User) {
	s.data.lock.Lock()
	defer s.data.lock.Unlock()
	switch users.NormalizeRole(string(u.Role)) {
	case users.RoleStudent:
		s.data.students[u.ID] = portal.StudentProfile{User: *u, Status: "ACTIVE"}
	case users.RoleFaculty:
		s.data.faculty[u.ID] = portal.FacultyProfile{User: *u}
	}
}
