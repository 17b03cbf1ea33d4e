package portal

import (
	perrors "github.com/jrsteele09/go-college-portal/internal/errors"
	"github.com/jrsteele09/go-college-portal/navigation"
	"github.com/jrsteele09/go-college-portal/users"
)

// RoleSession is what RequireRole needs from the session manager
type RoleSession interface {
	CurrentUser() *users.User
	RedirectToRoleDashboard() navigation.Destination
}

// RequireRole admits the current user only if they hold one of roles.
// Anyone else is sent to their own dashboard, or to login when nobody is
// logged in.
func RequireRole(s RoleSession, roles ...users.RoleType) error {
	u := s.CurrentUser()
	if u == nil {
		s.RedirectToRoleDashboard()
		return perrors.ErrNotLoggedIn
	}
	if !u.HasAnyRole(roles...) {
		s.RedirectToRoleDashboard()
		return perrors.Wrapf(perrors.ErrPermissionDenied, "role %s", u.Role)
	}
	return nil
}
