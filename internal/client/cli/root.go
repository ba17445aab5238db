package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/plantshelf/internal/client/config"
)

type opener func(ctx context.Context, o config.Overrides) (*App, error)

// Execute runs the command line in os.Args and releases the connection and
// the session file afterwards.
func Execute(ctx context.Context) error {
	root, app := newRootCmd(openApp)
	err := root.ExecuteContext(ctx)
	if app.close != nil {
		err = errors.Join(err, app.close())
	}
	return err
}

func newRootCmd(open opener) (*cobra.Command, *App) {
	var (
		overrides config.Overrides
		app       = &App{}
	)

	root := &cobra.Command{
		Use:   "plantshelf",
		Short: "Keep track of your plants and when to water them",
		Long: `plantshelf manages your personal plant shelf: plants with an optional
nickname, notes, next watering date, favorite flag and photo.

Administrators can also manage other accounts with the admin commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd.Context(), overrides)
			if err != nil {
				return err
			}
			*app = *a
			return nil
		},
	}

	root.PersistentFlags().StringVar(&overrides.ServerAddr, "server", "", "server address (default from config, "+config.KeyServerAddr+")")
	root.PersistentFlags().StringVar(&overrides.DataDir, "data-dir", "", "data directory holding config.yaml and the session (default ~/.plantshelf)")

	root.AddCommand(
		newSignUpCmd(app),
		newSignInCmd(app),
		newSignOutCmd(app),
		newWhoAmICmd(app),
		newVerifyEmailCmd(app),
		newResetPasswordCmd(app),
		newPlantsCmd(app),
		newAdminCmd(app),
	)
	return root, app
}
