package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var (
	currentPassword string
	newPassword     string
	resetEmail      string
	resetToken      string
)

// promptPassword asks for one hidden value
var promptPassword = func(title string, value *string) error {
	return huh.NewInput().Title(title).EchoMode(huh.EchoModePassword).Value(value).Validate(required("password")).Run()
}

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Change, forget or reset a password",
}

var passwordChangeCmd = &cobra.Command{
	Use:   "change",
	Short: "Change the logged in user's password",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ask("Current password", &currentPassword); err != nil {
			return err
		}
		if err := ask("New password", &newPassword); err != nil {
			return err
		}
		return withApp(cmd, func(a *app) error {
			return runPasswordChange(cmd.Context(), a, currentPassword, newPassword)
		})
	},
}

var passwordForgotCmd = &cobra.Command{
	Use:   "forgot",
	Short: "Email a password reset link",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			return runPasswordForgot(cmd.Context(), a, resetEmail)
		})
	},
}

var passwordResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Set a new password with the emailed reset token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ask("New password", &newPassword); err != nil {
			return err
		}
		return withApp(cmd, func(a *app) error {
			return runPasswordReset(cmd.Context(), a, resetToken, newPassword)
		})
	},
}

func init() {
	passwordChangeCmd.Flags().StringVar(&currentPassword, "current", "", "Current password (prompted when omitted)")
	passwordChangeCmd.Flags().StringVar(&newPassword, "new", "", "New password (prompted when omitted)")
	passwordForgotCmd.Flags().StringVarP(&resetEmail, "email", "e", "", "Account email")
	_ = passwordForgotCmd.MarkFlagRequired("email")
	passwordResetCmd.Flags().StringVar(&resetToken, "token", "", "Reset token from the email")
	passwordResetCmd.Flags().StringVar(&newPassword, "new", "", "New password (prompted when omitted)")
	_ = passwordResetCmd.MarkFlagRequired("token")

	passwordCmd.AddCommand(passwordChangeCmd, passwordForgotCmd, passwordResetCmd)
	rootCmd.AddCommand(passwordCmd)
}

func ask(title string, value *string) error {
	if *value != "" {
		return nil
	}
	return promptPassword(title, value)
}

func runPasswordChange(ctx context.Context, a *app, current, next string) error {
	if err := a.session.ChangePassword(ctx, current, next); err != nil {
		return err
	}
	return done(a, "Password changed")
}

func runPasswordForgot(ctx context.Context, a *app, email string) error {
	if err := a.session.ForgotPassword(ctx, email); err != nil {
		return err
	}
	return done(a, "If the account exists, a reset email is on its way")
}

func runPasswordReset(ctx context.Context, a *app, token, next string) error {
	if err := a.session.ResetPassword(ctx, token, next); err != nil {
		return err
	}
	return done(a, "Password reset, you can log in now")
}

func done(a *app, msg string) error {
	return a.emit(map[string]string{"message": msg}, func(w io.Writer) {
		fmt.Fprintln(w, msg)
	})
}
