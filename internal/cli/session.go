package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	tokenjwt "github.com/jrsteele09/go-college-portal/token/jwt"
	"github.com/jrsteele09/go-college-portal/users"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
)

// promptCredentials asks for whatever the flags left out
var promptCredentials = func(email, password *string) error {
	return huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Email").Value(email).Validate(required("email")),
		huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(password).Validate(required("password")),
	)).Run()
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and keep the session",
	Long:  `Log in with email and password. Missing credentials are prompted for.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, password := loginEmail, loginPassword
		if email == "" || password == "" {
			if err := promptCredentials(&email, &password); err != nil {
				return err
			}
		}
		return withApp(cmd, func(a *app) error {
			return runLogin(cmd.Context(), a, email, password)
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			return runLogout(cmd.Context(), a)
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			return runWhoami(a)
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the session is authenticated",
	Long:  `Show the session state. An expired access token is refreshed first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			return runStatus(cmd.Context(), a)
		})
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Exchange the refresh token for a new access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			return runRefresh(cmd.Context(), a)
		})
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Account password (prompted when omitted)")
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, statusCmd, refreshCmd)
}

func runLogin(ctx context.Context, a *app, email, password string) error {
	res, err := a.session.Login(ctx, email, password)
	if err != nil {
		return err
	}
	err = a.emit(res.User, func(w io.Writer) {
		fmt.Fprintf(w, "Logged in as %s <%s> (%s)\n", res.User.Name, res.User.Email, res.User.Role)
	})
	if err != nil {
		return err
	}
	a.session.RedirectToRoleDashboard()
	return nil
}

func runLogout(ctx context.Context, a *app) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	return a.emit(map[string]bool{"loggedOut": true}, func(w io.Writer) {
		fmt.Fprintln(w, "Logged out")
	})
}

func runWhoami(a *app) error {
	u := a.session.CurrentUser()
	if u == nil {
		return errNotLoggedIn
	}
	return a.emit(u, func(w io.Writer) {
		fmt.Fprint(w, formatUser(u))
	})
}

// sessionStatus is the status command's JSON shape
type sessionStatus struct {
	Authenticated bool               `json:"authenticated"`
	User          *users.User        `json:"user,omitempty"`
	ExpiresAt     *time.Time         `json:"expiresAt,omitempty"`
	Permissions   []users.Permission `json:"permissions,omitempty"`
}

func runStatus(ctx context.Context, a *app) error {
	ok, err := a.session.Authenticated(ctx)
	if err != nil {
		return err
	}
	st := sessionStatus{Authenticated: ok}
	if ok {
		st.User = a.session.CurrentUser()
		st.Permissions = a.session.Permissions()
		if claims, err := tokenjwt.Inspect(a.session.AccessToken()); err == nil {
			st.ExpiresAt = claims.ExpiresAt
		}
	}
	return a.emit(st, func(w io.Writer) {
		fmt.Fprint(w, formatStatus(st))
	})
}

func runRefresh(ctx context.Context, a *app) error {
	access, err := a.session.RefreshToken(ctx)
	if err != nil {
		return err
	}
	var exp *time.Time
	if claims, err := tokenjwt.Inspect(access); err == nil {
		exp = claims.ExpiresAt
	}
	return a.emit(map[string]any{"refreshed": true, "expiresAt": exp}, func(w io.Writer) {
		if exp != nil {
			fmt.Fprintf(w, "Token refreshed, valid until %s\n", exp.Local().Format(time.RFC1123))
			return
		}
		fmt.Fprintln(w, "Token refreshed")
	})
}

var errNotLoggedIn = errors.New("not logged in, run: portal login")

func formatUser(u *users.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name:   %s\n", orDash(u.Name))
	fmt.Fprintf(&b, "Email:  %s\n", orDash(u.Email))
	fmt.Fprintf(&b, "Role:   %s\n", orDash(string(u.Role)))
	if u.Course != "" {
		fmt.Fprintf(&b, "Course: %s, year %s, semester %s\n", u.Course, orDash(u.Year), orDash(u.Semester))
	}
	if u.Phone != "" {
		fmt.Fprintf(&b, "Phone:  %s\n", u.Phone)
	}
	return b.String()
}

func formatStatus(st sessionStatus) string {
	if !st.Authenticated {
		return "Not authenticated\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Authenticated as %s (%s)\n", st.User.Email, st.User.Role)
	if st.ExpiresAt != nil {
		fmt.Fprintf(&b, "Token expires in %s\n", time.Until(*st.ExpiresAt).Round(time.Second))
	}
	if len(st.Permissions) > 0 {
		perms := make([]string, len(st.Permissions))
		for i, p := range st.Permissions {
			perms[i] = string(p)
		}
		fmt.Fprintf(&b, "Permissions: %s\n", strings.Join(perms, ", "))
	}
	return b.String()
}
