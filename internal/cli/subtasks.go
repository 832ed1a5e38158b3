package cli

import (
	"strconv"

	"taskdeck-cli/internal/model"
	"taskdeck-cli/internal/mutate"
	"taskdeck-cli/internal/perm"

	"github.com/spf13/cobra"
)

func newSubtasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subtasks",
		Short: "Manage subtasks (checklists under a task)",
	}

	cmd.AddCommand(newSubtasksAddCmd(app))
	cmd.AddCommand(newSubtasksListCmd(app))
	cmd.AddCommand(newSubtasksReorderCmd(app))

	return cmd
}

func newSubtasksAddCmd(app *App) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "add <parent-task-id>",
		Short: "Add a subtask at the top of the list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			actorID, err := currentProfileID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}

			res, err := mutate.AddSubtask(db, s, actorID, args[0], title)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			if err := s.AppendActivity(actorID, res.ActivityType, res.Task.ID, res.ActivityPayload); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res.Task})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Subtask title")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newSubtasksListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <parent-task-id>",
		Short: "List subtasks in display order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			actorID, err := currentProfileID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			id := args[0]
			t, ok := db.FindTask(id)
			if !ok {
				return writeErr(cmd, errNotFound("task", id))
			}
			if !perm.CanViewProject(db, actorID, t.ProjectID) {
				return writeErr(cmd, errNotFound("task", id))
			}

			subs := db.SubtasksOf(id)
			rows := make([]model.Task, 0, len(subs))
			for _, sub := range subs {
				rows = append(rows, *sub)
			}
			return writeOut(cmd, app, map[string]any{
				"data": rows,
				"meta": map[string]any{"donePercent": db.CompletionPercent(id)},
			})
		},
	}
	return cmd
}

func newSubtasksReorderCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reorder <parent-task-id> <from-index> <to-index>",
		Short: "Move a subtask from one display position to another (0-based)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			actorID, err := currentProfileID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			src, err := strconv.Atoi(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			dst, err := strconv.Atoi(args[2])
			if err != nil {
				return writeErr(cmd, err)
			}

			res, err := mutate.ReorderSubtasks(db, actorID, args[0], src, dst)
			if err != nil {
				return writeErr(cmd, err)
			}
			if res.Changed {
				if err := s.Save(db); err != nil {
					return writeErr(cmd, err)
				}
				if err := s.AppendActivity(actorID, res.ActivityType, args[0], res.ActivityPayload); err != nil {
					return writeErr(cmd, err)
				}
			}

			subs := db.SubtasksOf(args[0])
			rows := make([]model.Task, 0, len(subs))
			for _, sub := range subs {
				rows = append(rows, *sub)
			}
			return writeOut(cmd, app, map[string]any{"data": rows, "meta": map[string]any{"changed": res.Changed}})
		},
	}
	return cmd
}
