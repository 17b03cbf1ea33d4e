package auth

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-college-portal/apiclient"
	perrors "github.com/jrsteele09/go-college-portal/internal/errors"
	"github.com/rs/zerolog/log"
)

// Error is a failed login or account operation. Its message is the backend's
// own message when it sent one, otherwise a fixed fallback for the operation.
type Error struct {
	Op      string
	Message string
	Kind    error // Classification, e.g. ErrAuthenticationFailed; may be nil
	Err     error // Underlying cause
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func loginFailure(err error) error {
	if isContextErr(err) {
		return err
	}
	var kind error
	var apiErr *apiclient.APIError
	if perrors.As(err, &apiErr) {
		kind = perrors.ErrAuthenticationFailed
	}
	return failure("login", "Login failed", kind, err)
}

// failure wraps err as an *Error with the best message available
func failure(op, fallback string, kind, err error) error {
	if isContextErr(err) {
		return err
	}
	msg := fallback
	var apiErr *apiclient.APIError
	switch {
	case perrors.As(err, &apiErr) && apiErr.Message != "":
		msg = apiErr.Message
	case apiErr != nil && len(apiErr.Errors) > 0:
		msg = apiErr.FieldErrors()
	case perrors.Is(err, perrors.ErrBackendUnavailable):
		msg = apiclient.NoticeNetworkError
	}
	log.Debug().Err(err).Str("op", op).Msg(msg)
	return &Error{Op: op, Message: msg, Kind: kind, Err: err}
}

// registrationFailure adds the messages the portal shows for duplicate and
// malformed registrations
func registrationFailure(err error) error {
	fallback := "Registration failed"
	var apiErr *apiclient.APIError
	if perrors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusConflict:
			fallback = "Email already exists"
		case http.StatusBadRequest:
			fallback = "Invalid registration data. Please check all fields."
		}
	}
	return failure("register", fallback, nil, err)
}

func validationError(op, msg string, cause error) error {
	return &Error{Op: op, Message: msg, Kind: perrors.ErrValidationFailed, Err: cause}
}

func isContextErr(err error) bool {
	return perrors.Is(err, context.Canceled) || perrors.Is(err, context.DeadlineExceeded)
}
