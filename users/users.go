package users

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// RoleType is the portal role of a user. Values are always upper case once
// normalized; the backend itself reports them in lower case.
type RoleType string

const (
	RoleAdmin   RoleType = "ADMIN"   // Manages users, courses and departments
	RoleFaculty RoleType = "FACULTY" // Teaches courses, grades and marks attendance
	RoleStudent RoleType = "STUDENT" // Enrolls in courses and views results
)

// NormalizeRole upper-cases and trims a role string
func NormalizeRole(role string) RoleType {
	return RoleType(strings.ToUpper(strings.TrimSpace(role)))
}

// Known reports whether r is one of the three portal roles
func (r RoleType) Known() bool {
	switch NormalizeRole(string(r)) {
	case RoleAdmin, RoleFaculty, RoleStudent:
		return true
	}
	return false
}

type User struct {
	ID               int64    `json:"id"`                         // Backend identifier
	Name             string   `json:"name,omitempty"`             // Display name
	Email            string   `json:"email,omitempty"`            // Login email
	Role             RoleType `json:"role,omitempty"`             // ADMIN, FACULTY or STUDENT
	Course           string   `json:"course,omitempty"`           // Programme, students only
	Year             string   `json:"year,omitempty"`             // Year of study, students only
	Semester         string   `json:"semester,omitempty"`         // Current semester, students only
	Phone            string   `json:"phone,omitempty"`            // Contact number
	Gender           string   `json:"gender,omitempty"`           // Free text
	SelectedSubjects string   `json:"selectedSubjects,omitempty"` // Comma separated subject codes
	IsVerified       *bool    `json:"isVerified,omitempty"`       // Email verified, nil when the backend omits it
	IsActive         *bool    `json:"isActive,omitempty"`         // Account enabled, nil when the backend omits it
	PasswordHash     string   `json:"-"`                          // Only populated by backend emulation - never serialize
}

// HasRole compares roles case-insensitively. A nil user has no role.
func (u *User) HasRole(role RoleType) bool {
	if u == nil {
		return false
	}
	return NormalizeRole(string(u.Role)) == NormalizeRole(string(role))
}

// HasAnyRole reports whether the user holds at least one of roles
func (u *User) HasAnyRole(roles ...RoleType) bool {
	for _, role := range roles {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
