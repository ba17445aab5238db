package cli

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/plantshelf/internal/netx"
)

const maxPhotoBytes = 10 << 20

func newPlantsPhotoCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photo",
		Short: "Upload or download a plant photo",
	}
	cmd.AddCommand(newPhotoSetCmd(app), newPhotoGetCmd(app))
	return cmd
}

func newPhotoSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <id> <file>",
		Short: "Upload a JPEG, PNG or WebP photo for a plant",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			const op = "upload photo"
			ctx := cmd.Context()

			data, err := os.ReadFile(args[1])
			if err != nil {
				return app.fail(op, err)
			}
			if len(data) > maxPhotoBytes {
				return app.fail(op, fmt.Errorf("photo is larger than %d MB", maxPhotoBytes>>20))
			}
			contentType := http.DetectContentType(data)

			url, err := app.api.AttachPhoto(ctx, args[0], contentType)
			if err != nil {
				return app.fail(op, err)
			}
			if err := netx.PutPresigned(ctx, app.http, url, contentType, data); err != nil {
				return app.fail(op, err)
			}
			app.printf("Photo uploaded.\n")
			return nil
		},
	}
}

func newPhotoGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id> <file>",
		Short: "Download a plant's photo into file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			const op = "download photo"
			ctx := cmd.Context()

			url, err := app.api.PhotoURL(ctx, args[0])
			if err != nil {
				return app.fail(op, err)
			}

			f, err := os.Create(args[1])
			if err != nil {
				return app.fail(op, err)
			}
			n, err := netx.GetPresigned(ctx, app.http, url, f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				_ = os.Remove(args[1])
				return app.fail(op, err)
			}
			app.printf("Saved %d bytes to %s.\n", n, args[1])
			return nil
		},
	}
}
