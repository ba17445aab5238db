package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/plantshelf/internal/common"
	"github.com/dmitrijs2005/plantshelf/internal/shelf"
	"github.com/dmitrijs2005/plantshelf/internal/timex"
)

func newPlantsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plants",
		Short: "Manage your plant shelf",
	}
	cmd.AddCommand(
		newPlantsListCmd(app),
		newPlantsWatchCmd(app),
		newPlantsAddCmd(app),
		newPlantsEditCmd(app),
		newPlantsFavCmd(app),
		newPlantsRmCmd(app),
		newPlantsPhotoCmd(app),
	)
	return cmd
}

// printShelf writes plants as a table in shelf order.
func printShelf(w io.Writer, plants []shelf.Plant, favoritesOnly bool) {
	view := shelf.View(plants, favoritesOnly)
	if len(view) == 0 {
		if favoritesOnly {
			fmt.Fprintln(w, "No favorite plants yet.")
		} else {
			fmt.Fprintln(w, "Your shelf is empty. Add a plant with \"plantshelf plants add\".")
		}
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tNAME\tNICKNAME\tNEXT WATER\tPHOTO")
	for _, p := range view {
		star := ""
		if p.Favorite {
			star = "*"
		}
		water := p.NextWaterAt.String()
		if water == "" {
			water = "-"
		}
		photo := ""
		if p.HasPhoto {
			photo = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", star, p.ID, p.Name, p.Nickname, water, photo)
	}
	tw.Flush()
}

func newPlantsListCmd(app *App) *cobra.Command {
	var favorites bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List plants: favorites first, then by next watering date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plants, err := app.api.ListPlants(cmd.Context())
			if err != nil {
				return app.fail("list plants", err)
			}
			printShelf(app.out, plants, favorites)
			return nil
		},
	}
	cmd.Flags().BoolVar(&favorites, "favorites", false, "show favorites only")
	return cmd
}

func newPlantsWatchCmd(app *App) *cobra.Command {
	var favorites bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the shelf again whenever it changes (Ctrl-C to stop)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			const op = "watch plants"
			updates, err := app.api.WatchPlants(cmd.Context())
			if err != nil {
				return app.fail(op, err)
			}
			for u := range updates {
				if u.Err != nil {
					return app.fail(op, u.Err)
				}
				printShelf(app.out, u.Plants, favorites)
				fmt.Fprintln(app.out)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&favorites, "favorites", false, "show favorites only")
	return cmd
}

// parseWater reads a YYYY-MM-DD flag value.
func parseWater(s string) (timex.Date, error) {
	d, err := timex.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return timex.Date{}, &shelf.ValidationError{Fields: []shelf.FieldError{{
			Field: "nextWaterAt", Message: "Use the YYYY-MM-DD format.",
		}}}
	}
	return d, nil
}

var errNameTaken = common.WithMessage(common.ErrDuplicateName, "A plant with this name already exists.")

func newPlantsAddCmd(app *App) *cobra.Command {
	var (
		d     shelf.Draft
		water string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a plant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			const op = "add plant"
			ctx := cmd.Context()
			var err error
			if d.Name, err = app.textOr(d.Name, "Name"); err != nil {
				return app.fail(op, err)
			}
			if water != "" {
				if d.NextWaterAt, err = parseWater(water); err != nil {
					return app.fail(op, err)
				}
			}

			unique, err := app.api.IsNameUnique(ctx, d.Name, "")
			if err != nil {
				return app.fail(op, err)
			}
			if !unique {
				return app.fail(op, errNameTaken)
			}

			id, err := app.api.AddPlant(ctx, d)
			if err != nil {
				return app.fail(op, err)
			}
			app.printf("Added %s (%s).\n", strings.TrimSpace(d.Name), id)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&d.Name, "name", "", "plant name (1-40 characters, unique on your shelf)")
	f.StringVar(&d.Nickname, "nickname", "", "nickname (up to 30 characters)")
	f.StringVar(&d.Notes, "notes", "", "notes (up to 1000 characters)")
	f.StringVar(&water, "water", "", "next watering date, YYYY-MM-DD")
	f.BoolVar(&d.Favorite, "favorite", false, "mark as favorite")
	return cmd
}

func newPlantsEditCmd(app *App) *cobra.Command {
	var (
		name, nickname, notes, water string
		clearWater, favorite         bool
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change some fields of a plant; omitted fields stay as they are",
		Long: `Change some fields of a plant. Only the flags you pass are changed.
Pass an empty --nickname or --notes to clear it, and --clear-water to
remove the watering date.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			const op = "edit plant"
			ctx := cmd.Context()
			id := args[0]
			f := cmd.Flags()

			var p shelf.Patch
			if f.Changed("name") {
				p.Name = &name
			}
			if f.Changed("nickname") {
				p.Nickname = &nickname
			}
			if f.Changed("notes") {
				p.Notes = &notes
			}
			if f.Changed("favorite") {
				p.Favorite = &favorite
			}
			if f.Changed("water") {
				d, err := parseWater(water)
				if err != nil {
					return app.fail(op, err)
				}
				p.NextWaterAt = &d
			}
			p.ClearNextWaterAt = clearWater

			if p.Name != nil {
				unique, err := app.api.IsNameUnique(ctx, *p.Name, id)
				if err != nil {
					return app.fail(op, err)
				}
				if !unique {
					return app.fail(op, errNameTaken)
				}
			}

			if err := app.api.UpdatePlant(ctx, id, p); err != nil {
				return app.fail(op, err)
			}
			app.printf("Saved.\n")
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&name, "name", "", "new name")
	f.StringVar(&nickname, "nickname", "", "new nickname (empty clears)")
	f.StringVar(&notes, "notes", "", "new notes (empty clears)")
	f.StringVar(&water, "water", "", "next watering date, YYYY-MM-DD")
	f.BoolVar(&clearWater, "clear-water", false, "remove the watering date")
	f.BoolVar(&favorite, "favorite", false, "set the favorite flag")
	cmd.MarkFlagsMutuallyExclusive("water", "clear-water")
	return cmd
}

func newPlantsFavCmd(app *App) *cobra.Command {
	var on, off bool
	cmd := &cobra.Command{
		Use:   "fav <id>",
		Short: "Flip the favorite flag, or set it with --on/--off",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var target *bool
			switch {
			case on:
				target = &on
			case off:
				v := false
				target = &v
			}

			fav, err := app.api.ToggleFavorite(cmd.Context(), args[0], target)
			if err != nil {
				return app.fail("toggle favorite", err)
			}
			if fav {
				app.printf("Marked as favorite.\n")
			} else {
				app.printf("Removed from favorites.\n")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&on, "on", false, "make it a favorite")
	cmd.Flags().BoolVar(&off, "off", false, "remove it from favorites")
	cmd.MarkFlagsMutuallyExclusive("on", "off")
	return cmd
}

func newPlantsRmCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a plant and its photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			const op = "delete plant"
			if !yes {
				ok, err := app.confirm("Delete plant " + args[0] + "?")
				if err != nil {
					return app.fail(op, err)
				}
				if !ok {
					app.printf("Cancelled.\n")
					return nil
				}
			}
			if err := app.api.DeletePlant(cmd.Context(), args[0]); err != nil {
				return app.fail(op, err)
			}
			app.printf("Deleted.\n")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
