package cli

import (
	"sort"

	"taskdeck-cli/internal/kanban"
	"taskdeck-cli/internal/model"
	"taskdeck-cli/internal/mutate"
	"taskdeck-cli/internal/perm"
	"taskdeck-cli/internal/thread"

	"github.com/spf13/cobra"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage tasks",
	}

	cmd.AddCommand(newTasksCreateCmd(app))
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksUpdateCmd(app))
	cmd.AddCommand(newTasksSetStatusCmd(app))
	cmd.AddCommand(newTasksMoveCmd(app))
	cmd.AddCommand(newTasksAssignCmd(app))
	cmd.AddCommand(newTasksDeleteCmd(app))

	return cmd
}

func newTasksCreateCmd(app *App) *cobra.Command {
	var project string
	var title string
	var description string
	var status string
	var priority string
	var assignee string
	var due string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
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

			st, err := kanban.ParseStatus(status)
			if err != nil {
				return writeErr(cmd, err)
			}
			pri, err := kanban.ParsePriority(priority)
			if err != nil {
				return writeErr(cmd, err)
			}

			res, err := mutate.CreateTask(db, s, actorID, mutate.CreateTaskArgs{
				ProjectID:   projectID,
				Title:       title,
				Description: description,
				Status:      st,
				Priority:    pri,
				AssigneeID:  assignee,
				DueDate:     due,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			if err := s.AppendActivity(actorID, res.ActivityType, res.Task.ID, res.ActivityPayload); err != nil {
				return writeErr(cmd, err)
			}

			return writeOut(cmd, app, map[string]any{
				"data": res.Task,
				"_hints": []string{
					"taskdeck subtasks add " + res.Task.ID + " --title <title>",
					"taskdeck comments add " + res.Task.ID + " --body <text>",
				},
			})
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project id (default: current project)")
	cmd.Flags().StringVar(&title, "title", "", "Task title")
	cmd.Flags().StringVar(&description, "description", "", "Task description")
	cmd.Flags().StringVar(&status, "status", "todo", "Status (todo|in-progress|review|done)")
	cmd.Flags().StringVar(&priority, "priority", "medium", "Priority (low|medium|high|critical)")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Assignee profile id")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	var project string
	var status string
	var assignee string
	var withSubtasks bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks in a project",
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

			var filterStatus model.Status
			if status != "" {
				st, err := kanban.ParseStatus(status)
				if err != nil {
					return writeErr(cmd, err)
				}
				filterStatus = st
			}

			type taskRow struct {
				model.Task
				SubtaskCount int `json:"subtaskCount,omitempty"`
				DonePercent  int `json:"donePercent,omitempty"`
			}
			var rows []taskRow
			for _, t := range db.Tasks {
				if t.ProjectID != projectID {
					continue
				}
				if t.IsSubtask && !withSubtasks {
					continue
				}
				if filterStatus != "" && t.Status != filterStatus {
					continue
				}
				if assignee != "" && (t.AssigneeID == nil || *t.AssigneeID != assignee) {
					continue
				}
				row := taskRow{Task: t}
				if !t.IsSubtask {
					subs := db.SubtasksOf(t.ID)
					row.SubtaskCount = len(subs)
					if len(subs) > 0 {
						row.DonePercent = db.CompletionPercent(t.ID)
					}
				}
				rows = append(rows, row)
			}
			sort.SliceStable(rows, func(i, j int) bool {
				return rows[i].CreatedAt.Before(rows[j].CreatedAt)
			})

			return writeOut(cmd, app, map[string]any{"data": rows})
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project id (default: current project)")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Filter by assignee profile id")
	cmd.Flags().BoolVar(&withSubtasks, "subtasks", false, "Include subtasks")
	return cmd
}

func newTasksShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a task with subtasks and the comment thread",
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
			subtasks := make([]model.Task, 0, len(subs))
			for _, sub := range subs {
				subtasks = append(subtasks, *sub)
			}
			forest := thread.BuildOldestFirst(db.CommentsForTask(id))

			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"task":         t,
					"subtasks":     subtasks,
					"donePercent":  db.CompletionPercent(id),
					"comments":     forest,
					"commentCount": thread.Count(forest),
				},
			})
		},
	}
	return cmd
}

func newTasksUpdateCmd(app *App) *cobra.Command {
	var title string
	var description string
	var priority string
	var due string

	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Update a task's title, description, priority or due date",
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

			var uargs mutate.UpdateTaskArgs
			if cmd.Flags().Changed("title") {
				uargs.Title = &title
			}
			if cmd.Flags().Changed("description") {
				uargs.Description = &description
			}
			if cmd.Flags().Changed("priority") {
				pri, err := kanban.ParsePriority(priority)
				if err != nil {
					return writeErr(cmd, err)
				}
				uargs.Priority = &pri
			}
			if cmd.Flags().Changed("due") {
				uargs.DueDate = &due
			}

			res, err := mutate.UpdateTask(db, actorID, args[0], uargs)
			if err != nil {
				return writeErr(cmd, err)
			}
			if res.Changed {
				if err := s.Save(db); err != nil {
					return writeErr(cmd, err)
				}
				if err := s.AppendActivity(actorID, res.ActivityType, res.Task.ID, res.ActivityPayload); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{"data": res.Task, "meta": map[string]any{"changed": res.Changed}})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&priority, "priority", "", "New priority (low|medium|high|critical)")
	cmd.Flags().StringVar(&due, "due", "", "New due date (YYYY-MM-DD; empty clears)")
	return cmd
}

func newTasksSetStatusCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-status <task-id> <status>",
		Short: "Set task status (the board column follows)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			actorID, err := currentProfileID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			st, err := kanban.ParseStatus(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}

			res, err := mutate.SetTaskStatus(db, actorID, args[0], st)
			if err != nil {
				return writeErr(cmd, err)
			}
			if res.Changed {
				if err := s.Save(db); err != nil {
					return writeErr(cmd, err)
				}
				if err := s.AppendActivity(actorID, res.ActivityType, res.Task.ID, res.ActivityPayload); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{"data": res.Task, "meta": map[string]any{"changed": res.Changed}})
		},
	}
	return cmd
}

func newTasksMoveCmd(app *App) *cobra.Command {
	var column string

	cmd := &cobra.Command{
		Use:   "move <task-id>",
		Short: "Move a task to a board column (the status follows)",
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
			col, err := kanban.ParseColumn(column)
			if err != nil {
				return writeErr(cmd, err)
			}

			res, err := mutate.MoveTaskToColumn(db, actorID, args[0], col)
			if err != nil {
				return writeErr(cmd, err)
			}
			if res.Changed {
				if err := s.Save(db); err != nil {
					return writeErr(cmd, err)
				}
				if err := s.AppendActivity(actorID, res.ActivityType, res.Task.ID, res.ActivityPayload); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{"data": res.Task, "meta": map[string]any{"changed": res.Changed}})
		},
	}

	cmd.Flags().StringVar(&column, "column", "", "Target column (to-do|in-progress|review|done)")
	_ = cmd.MarkFlagRequired("column")
	return cmd
}

func newTasksAssignCmd(app *App) *cobra.Command {
	var to string
	var clear bool

	cmd := &cobra.Command{
		Use:   "assign <task-id>",
		Short: "Assign a task (or clear the assignee)",
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
			assignee := to
			if clear {
				assignee = ""
			}

			res, err := mutate.AssignTask(db, s, actorID, args[0], assignee)
			if err != nil {
				return writeErr(cmd, err)
			}
			if res.Changed {
				if err := s.Save(db); err != nil {
					return writeErr(cmd, err)
				}
				if err := s.AppendActivity(actorID, res.ActivityType, res.Task.ID, res.ActivityPayload); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{"data": res.Task, "meta": map[string]any{"changed": res.Changed}})
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Assignee profile id")
	cmd.Flags().BoolVar(&clear, "clear", false, "Clear the assignee")
	return cmd
}

func newTasksDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task (subtasks and comments go with it)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return writeErr(cmd, errConfirmRequired)
			}
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			actorID, err := currentProfileID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}

			res, err := mutate.DeleteTask(db, actorID, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			if err := s.AppendActivity(actorID, res.ActivityType, args[0], res.ActivityPayload); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": args[0]}})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}
