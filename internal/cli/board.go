package cli

import (
	"taskdeck-cli/internal/kanban"
	"taskdeck-cli/internal/perm"

	"github.com/spf13/cobra"
)

func newBoardCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Kanban board views",
	}

	cmd.AddCommand(newBoardShowCmd(app))
	return cmd
}

func newBoardShowCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the board grouped by column",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			actorID, err := currentProfileID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			projectID, err := currentProjectID(db, project)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !perm.CanViewProject(db, actorID, projectID) {
				return writeErr(cmd, errNotFound("project", projectID))
			}

			type columnView struct {
				ID    string `json:"id"`
				Label string `json:"label"`
				Tasks any    `json:"tasks"`
			}
			var cols []columnView
			for _, c := range kanban.Columns() {
				cols = append(cols, columnView{
					ID:    string(c),
					Label: kanban.Label(c),
					Tasks: db.TasksForColumn(projectID, string(c)),
				})
			}

			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"projectId": projectID,
					"columns":   cols,
				},
				"_hints": []string{
					"taskdeck tasks move <task-id> --column <column>",
				},
			})
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project id (default: current project)")
	return cmd
}
