package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/plantshelf/internal/account"
	"github.com/dmitrijs2005/plantshelf/internal/client/client"
	"github.com/dmitrijs2005/plantshelf/internal/common"
)

var errPasswordMismatch = common.WithMessage(common.ErrorInvalidArgument, "Passwords do not match.")

func newSignUpCmd(app *App) *cobra.Command {
	var email, name string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			const op = "sign up"
			var err error
			if email, err = app.textOr(email, "Email"); err != nil {
				return app.fail(op, err)
			}
			if name, err = app.textOr(name, "Display name"); err != nil {
				return app.fail(op, err)
			}
			password, err := app.newPassword()
			if err != nil {
				return app.fail(op, err)
			}

			id, err := app.api.SignUp(cmd.Context(), email, password, name)
			if err != nil {
				return app.fail(op, err)
			}
			app.printf("Welcome, %s! A verification link was sent to %s.\n", id.DisplayName, id.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&name, "name", "", "display name (2-40 characters)")
	return cmd
}

// newPassword prompts twice and checks the rules before anything is sent.
func (a *App) newPassword() (string, error) {
	password, err := a.promptPassword("Password")
	if err != nil {
		return "", err
	}
	if err := account.ValidatePassword(password); err != nil {
		return "", err
	}
	again, err := a.promptPassword("Repeat password")
	if err != nil {
		return "", err
	}
	if again != password {
		return "", errPasswordMismatch
	}
	return password, nil
}

func newSignInCmd(app *App) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in to an existing account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			const op = "sign in"
			var err error
			if email, err = app.textOr(email, "Email"); err != nil {
				return app.fail(op, err)
			}
			password, err := app.promptPassword("Password")
			if err != nil {
				return app.fail(op, err)
			}

			id, err := app.api.SignIn(cmd.Context(), email, password)
			if err != nil {
				return app.fail(op, err)
			}
			app.printf("Signed in as %s.\n", id.Email)
			if !id.EmailVerified {
				app.printf("Your email is not verified yet. Run \"plantshelf verify-email\" to get a new link.\n")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

func newSignOutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Sign out and forget the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.api.SignOut(cmd.Context()); err != nil {
				return app.fail("sign out", err)
			}
			app.printf("Signed out.\n")
			return nil
		},
	}
}

func newWhoAmICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := app.api.CurrentUser(ctx)
			if errors.Is(err, client.ErrUnavailable) {
				// Fall back to the account remembered at sign-in.
				if t, serr := app.api.Session(ctx); serr == nil && t.SignedIn() && t.Email != "" {
					app.printf("%s (offline: server unreachable)\n", t.Email)
					return nil
				}
			}
			if err != nil {
				return app.fail("whoami", err)
			}
			verified := "not verified"
			if id.EmailVerified {
				verified = "verified"
			}
			app.printf("%s <%s> (%s)\n", id.DisplayName, id.Email, verified)
			return nil
		},
	}
}

func newVerifyEmailCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "verify-email [code]",
		Short: "Send a verification link, or confirm one with its code",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				if err := app.api.SendVerificationEmail(cmd.Context()); err != nil {
					return app.fail("send verification email", err)
				}
				app.printf("Verification email sent.\n")
				return nil
			}

			id, err := app.api.VerifyEmail(cmd.Context(), args[0])
			if err != nil {
				return app.fail("verify email", err)
			}
			app.printf("Email %s verified.\n", id.Email)
			return nil
		},
	}
}

func newResetPasswordCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password <code>",
		Short: "Choose a new password using the code from a reset link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			const op = "reset password"
			password, err := app.newPassword()
			if err != nil {
				return app.fail(op, err)
			}
			if err := app.api.ConfirmPasswordReset(cmd.Context(), args[0], password); err != nil {
				if errors.Is(err, common.ErrorInvalidArgument) {
					return app.fail(op, common.WithMessage(err, "This reset link is invalid or has expired."))
				}
				return app.fail(op, err)
			}
			app.printf("Password changed. Sign in with your new password.\n")
			return nil
		},
	}
}
