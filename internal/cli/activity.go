package cli

import (
	"taskdeck-cli/internal/store"

	"github.com/spf13/cobra"
)

func newActivityCmd(app *App) *cobra.Command {
	var entity string
	var limit int

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show the activity log (chronological)",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			var rows any
			if entity != "" {
				rows, err = store.ReadActivityForEntity(app.Dir, entity, limit)
			} else {
				rows, err = store.ReadActivity(app.Dir, limit)
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": rows})
		},
	}

	cmd.Flags().StringVar(&entity, "entity", "", "Filter by entity id (task, project, comment, ...)")
	cmd.Flags().IntVar(&limit, "limit", 100, "Max records (0 = all)")
	return cmd
}
