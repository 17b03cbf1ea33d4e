package fakebackend

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-college-portal/users"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyUser stores the authenticated *users.User
const ContextKeyUser ContextKey = "user"

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

// APIMiddleware is the chain every API route runs through
func (s *Server) APIMiddleware(mw ...func(http.HandlerFunc) http.HandlerFunc) []func(http.HandlerFunc) http.HandlerFunc {
	chained := []func(http.HandlerFunc) http.HandlerFunc{
		s.RecoverMiddleware,
		s.CountingMiddleware,
		s.LoggingMiddleware,
		s.FailureMiddleware,
	}
	return append(chained, mw...)
}

func (s *Server) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panicked")
				writeFailure(w, http.StatusInternalServerError, "An unexpected error occurred")
			}
		}()
		next(w, r)
	}
}

func (s *Server) CountingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.lock.Lock()
		s.calls[callKey(r.Method, r.URL.Path)]++
		s.lock.Unlock()
		next(w, r)
	}
}

// statusRecorder remembers the status a handler wrote
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		log.Debug().
			Str("request_id", r.Header.Get("X-Request-ID")).
			Dur("took", time.Since(start)).
			Msgf("[%s %-7s%s] %s %s%d%s", methodColour(r.Method), r.Method, resetColour, r.URL.Path, statusColour(rec.status), rec.status, resetColour)
	}
}

// FailureMiddleware answers routes registered with FailRoute
func (s *Server) FailureMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.lock.Lock()
		f, ok := s.failures[callKey(r.Method, r.URL.Path)]
		s.lock.Unlock()
		if ok {
			writeFailure(w, f.status, f.message)
			return
		}
		next(w, r)
	}
}

// RequireAuth validates the bearer access token and, when roles are given,
// that the user holds one of them
func (s *Server) RequireAuth(roles ...users.RoleType) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if s.consumeRejection() {
				writeFailure(w, http.StatusUnauthorized, "Token expired")
				return
			}

			authHeader := r.Header.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				writeFailure(w, http.StatusUnauthorized, "Full authentication is required to access this resource")
				return
			}

			claims, err := s.tokens.Verify(parts[1])
			if err != nil {
				writeFailure(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			if s.revoked.Denied(claims.ID) {
				writeFailure(w, http.StatusUnauthorized, "Token has been revoked")
				return
			}

			u, err := s.users.GetByEmail(claims.Subject)
			if err != nil {
				writeFailure(w, http.StatusUnauthorized, "User no longer exists")
				return
			}
			if u.IsActive != nil && !*u.IsActive {
				writeFailure(w, http.StatusForbidden, "Account is deactivated")
				return
			}
			if len(roles) > 0 && !u.HasAnyRole(roles...) {
				writeFailure(w, http.StatusForbidden, "Access denied")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, u)
			next(w, r.WithContext(ctx))
		}
	}
}

func (s *Server) consumeRejection() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.rejectNext > 0 {
		s.rejectNext--
		return true
	}
	return false
}

func userFrom(r *http.Request) *users.User {
	u, _ := r.Context().Value(ContextKeyUser).(*users.User)
	return u
}
