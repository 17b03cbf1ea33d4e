package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	perrors "github.com/jrsteele09/go-college-portal/internal/errors"
)

// APIError is a non-2xx response, or a 2xx envelope with success:false
type APIError struct {
	Status    int               // HTTP status code
	Message   string            // Backend message, may be empty
	Errors    map[string]string // Field validation errors, if any
	Method    string
	Endpoint  string
	RequestID string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" && len(e.Errors) > 0 {
		msg = e.FieldErrors()
	}
	if msg == "" && e.Status == http.StatusOK {
		msg = "operation failed"
	}
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Endpoint == "" {
		return fmt.Sprintf("status %d: %s", e.Status, msg)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Endpoint, e.Status, msg)
}

// Unwrap maps the status onto the portal error taxonomy
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return perrors.ErrUnauthorized
	case e.Status == http.StatusForbidden:
		return perrors.ErrPermissionDenied
	case e.Status == http.StatusNotFound:
		return perrors.ErrNotFound
	case e.Status >= 500:
		return perrors.ErrServerError
	case e.Status >= 400 && e.Status < 500 && len(e.Errors) > 0:
		return perrors.ErrValidationFailed
	}
	return perrors.ErrOperationFailed
}

// FieldErrors joins the field messages in field-name order
func (e *APIError) FieldErrors() string {
	if len(e.Errors) == 0 {
		return ""
	}
	fields := make([]string, 0, len(e.Errors))
	for f := range e.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, e.Errors[f])
	}
	return strings.Join(msgs, ", ")
}

// Notice messages shown to a user
const (
	NoticeSessionExpired   = "Session expired. Please log in again."
	NoticeAccessDenied     = "Access denied. You do not have permission for this action."
	NoticeNotFound         = "Resource not found."
	NoticeServerError      = "Server error. Please try again later."
	NoticeNetworkError     = "Network error. Please check your connection."
	NoticeGeneric          = "An error occurred. Please try again."
	NoticeOperationFailed  = "Operation failed"
	NoticeRequestCancelled = "Request cancelled."
	NoticeRequestTimedOut  = "Request timed out."
)

// Notice turns err into a message fit for an end user
func Notice(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	hasAPIErr := perrors.As(err, &apiErr)

	switch {
	case perrors.Is(err, context.DeadlineExceeded):
		return NoticeRequestTimedOut
	case perrors.Is(err, context.Canceled):
		return NoticeRequestCancelled
	case perrors.Is(err, perrors.ErrUnauthorized), perrors.Is(err, perrors.ErrNoRefreshToken):
		return NoticeSessionExpired
	case perrors.Is(err, perrors.ErrPermissionDenied):
		return NoticeAccessDenied
	case perrors.Is(err, perrors.ErrNotFound):
		return NoticeNotFound
	case perrors.Is(err, perrors.ErrServerError):
		return NoticeServerError
	case perrors.Is(err, perrors.ErrBackendUnavailable):
		return NoticeNetworkError
	case hasAPIErr && perrors.Is(err, perrors.ErrValidationFailed):
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return "Validation failed: " + apiErr.FieldErrors()
	case hasAPIErr:
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if apiErr.Status == http.StatusOK {
			return NoticeOperationFailed
		}
		return NoticeGeneric
	}
	return err.Error()
}
