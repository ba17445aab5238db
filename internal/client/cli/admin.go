package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/plantshelf/internal/account"
	"github.com/dmitrijs2005/plantshelf/internal/adminoracle"
	"github.com/dmitrijs2005/plantshelf/internal/common"
	"github.com/dmitrijs2005/plantshelf/internal/rpc"
)

func newAdminCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Account management for administrators",
	}
	cmd.AddCommand(
		newAdminStatusCmd(app),
		newAdminProcCmd(app, "reset-link", "Create a password reset link for a user",
			"send password reset", app.sendPasswordReset),
		newAdminProcCmd(app, "revoke", "Sign a user out everywhere",
			"revoke sessions", app.revokeSessions),
		newAdminProcCmd(app, "delete-user", "Delete a user and everything they own",
			"delete user", app.deleteUser),
	)
	return cmd
}

// identity returns the signed-in identity, or nil when signed out.
func (a *App) identity(ctx context.Context) (*account.Identity, error) {
	id, err := a.api.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, nil
		}
		return nil, err
	}
	return id, nil
}

// settled waits for the first state that is not loading.
func settled(states <-chan adminoracle.State) adminoracle.State {
	var last adminoracle.State
	for st := range states {
		last = st
		if !st.Loading {
			return st
		}
	}
	return last
}

// gate reports why the caller may not use admin commands, or nil.
func (a *App) gate(ctx context.Context) error {
	id, err := a.identity(ctx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	st := settled(adminoracle.Observe(ctx, id, a.api.AdminSource()))
	if st.Err != nil {
		return st.Err
	}

	switch adminoracle.Gate(id, st) {
	case adminoracle.Allowed:
		return nil
	case adminoracle.NeedsSignIn:
		return common.WithMessage(common.ErrorUnauthorized, "Sign in required.")
	case adminoracle.NeedsVerification:
		return common.WithMessage(common.ErrorPermissionDenied, "Verify your email first.")
	default:
		return common.WithMessage(common.ErrorPermissionDenied, "Admin only.")
	}
}

func describe(id *account.Identity, st adminoracle.State) string {
	switch adminoracle.Gate(id, st) {
	case adminoracle.Checking:
		return "checking..."
	case adminoracle.NeedsSignIn:
		return "not signed in"
	case adminoracle.NeedsVerification:
		return "email not verified"
	case adminoracle.Denied:
		return "not an admin"
	default:
		return "admin"
	}
}

func newAdminStatusCmd(app *App) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether you may use the admin commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			const op = "admin status"
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			id, err := app.identity(ctx)
			if err != nil {
				return app.fail(op, err)
			}
			states := adminoracle.Observe(ctx, id, app.api.AdminSource())
			if !watch {
				st := settled(states)
				if st.Err != nil {
					return app.fail(op, st.Err)
				}
				app.printf("%s\n", describe(id, st))
				return nil
			}

			for st := range states {
				if st.Err != nil {
					return app.fail(op, st.Err)
				}
				app.printf("%s\n", describe(id, st))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "keep printing changes (Ctrl-C to stop)")
	return cmd
}

type adminProc func(ctx context.Context, email string) (*rpc.AdminResult, error)

func newAdminProcCmd(app *App, use, short, op string, proc adminProc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <email>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := app.gate(ctx); err != nil {
				return app.fail(op, err)
			}

			res, err := proc(ctx, args[0])
			if err != nil {
				return app.fail(op, err)
			}
			if res == nil {
				return nil
			}
			if res.Message != "" {
				app.printf("%s\n", res.Message)
			}
			if res.Link != "" {
				app.printf("%s\n", res.Link)
			}
			return nil
		},
	}
}

func (a *App) sendPasswordReset(ctx context.Context, email string) (*rpc.AdminResult, error) {
	return a.api.SendPasswordReset(ctx, email)
}

func (a *App) revokeSessions(ctx context.Context, email string) (*rpc.AdminResult, error) {
	return a.api.RevokeSessionsByEmail(ctx, email)
}

func (a *App) deleteUser(ctx context.Context, email string) (*rpc.AdminResult, error) {
	ok, err := a.confirm(fmt.Sprintf("Delete %s and all their plants?", email))
	if err != nil {
		return nil, err
	}
	if !ok {
		a.printf("Cancelled.\n")
		return nil, nil
	}
	return a.api.DeleteUserByEmail(ctx, email)
}
