package errors

import (
	"errors"
	"fmt"
)

// Common error types for the portal client
var (
	// Authentication errors
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotLoggedIn          = errors.New("not logged in")
	ErrUnauthorized         = errors.New("unauthorized")

	// Token errors
	ErrNoRefreshToken = errors.New("no refresh token available")
	ErrTokenExpired   = errors.New("token expired")
	ErrInvalidToken   = errors.New("invalid token")

	// Transport and backend errors
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrNotFound           = errors.New("not found")
	ErrServerError        = errors.New("server error")
	ErrValidationFailed   = errors.New("validation failed")
	ErrOperationFailed    = errors.New("operation failed")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New is errors.New, re-exported so callers need a single errors import
func New(text string) error {
	return errors.New(text)
}
