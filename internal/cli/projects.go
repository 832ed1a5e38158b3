package cli

import (
	"taskdeck-cli/internal/model"
	"taskdeck-cli/internal/mutate"
	"taskdeck-cli/internal/perm"

	"github.com/spf13/cobra"
)

func newProjectsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage projects",
	}

	cmd.AddCommand(newProjectsCreateCmd(app))
	cmd.AddCommand(newProjectsListCmd(app))
	cmd.AddCommand(newProjectsShowCmd(app))
	cmd.AddCommand(newProjectsUpdateCmd(app))
	cmd.AddCommand(newProjectsUseCmd(app))
	cmd.AddCommand(newProjectsArchiveCmd(app))
	cmd.AddCommand(newProjectsDeleteCmd(app))
	cmd.AddCommand(newMembersCmd(app))

	return cmd
}

func newProjectsCreateCmd(app *App) *cobra.Command {
	var name string
	var description string
	var use bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project (you become its owner)",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			actorID, err := currentProfileID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}

			res, err := mutate.CreateProject(db, s, actorID, name, description)
			if err != nil {
				return writeErr(cmd, err)
			}
			if use {
				db.CurrentProjectID = res.Project.ID
				db.MarkDirty()
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			if err := s.AppendActivity(actorID, res.ActivityType, res.Project.ID, res.ActivityPayload); err != nil {
				return writeErr(cmd, err)
			}

			return writeOut(cmd, app, map[string]any{
				"data": res.Project,
				"_hints": []string{
					"taskdeck tasks create --project " + res.Project.ID + " --title <title>",
					"taskdeck projects members add " + res.Project.ID + " <profile-id>",
				},
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name")
	cmd.Flags().StringVar(&description, "description", "", "Project description")
	cmd.Flags().BoolVar(&use, "use", false, "Set as current project")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newProjectsListCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects you can see",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			actorID, err := currentProfileID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}

			type projectRow struct {
				model.Project
				Role      string `json:"role,omitempty"`
				TaskCount int    `json:"taskCount"`
			}
			var rows []projectRow
			for _, p := range db.Projects {
				if p.Archived && !all {
					continue
				}
				if !perm.CanViewProject(db, actorID, p.ID) {
					continue
				}
				row := projectRow{Project: p}
				if role, ok := db.MemberRole(p.ID, actorID); ok {
					row.Role = string(role)
				}
				for _, t := range db.Tasks {
					if t.ProjectID == p.ID && !t.IsSubtask {
						row.TaskCount++
					}
				}
				rows = append(rows, row)
			}

			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"projects":         rows,
					"currentProjectId": db.CurrentProjectID,
				},
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include archived projects")
	return cmd
}

func newProjectsShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show a project with members and task counts",
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
			p, ok := db.FindProject(id)
			if !ok {
				return writeErr(cmd, errNotFound("project", id))
			}
			if !perm.CanViewProject(db, actorID, id) {
				return writeErr(cmd, errNotFound("project", id))
			}

			var members []model.ProjectMember
			for _, m := range db.Members {
				if m.ProjectID == id {
					members = append(members, m)
				}
			}
			byStatus := map[string]int{}
			for _, t := range db.Tasks {
				if t.ProjectID == id && !t.IsSubtask {
					byStatus[string(t.Status)]++
				}
			}

			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"project":       p,
					"members":       members,
					"tasksByStatus": byStatus,
				},
			})
		},
	}
	return cmd
}

func newProjectsUpdateCmd(app *App) *cobra.Command {
	var name string
	var description string

	cmd := &cobra.Command{
		Use:   "update <project-id>",
		Short: "Update project name/description",
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

			var namePtr, descPtr *string
			if cmd.Flags().Changed("name") {
				namePtr = &name
			}
			if cmd.Flags().Changed("description") {
				descPtr = &description
			}

			res, err := mutate.UpdateProject(db, actorID, args[0], namePtr, descPtr)
			if err != nil {
				return writeErr(cmd, err)
			}
			if res.Changed {
				if err := s.Save(db); err != nil {
					return writeErr(cmd, err)
				}
				if err := s.AppendActivity(actorID, res.ActivityType, res.Project.ID, res.ActivityPayload); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{"data": res.Project, "meta": map[string]any{"changed": res.Changed}})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New project name")
	cmd.Flags().StringVar(&description, "description", "", "New project description")
	return cmd
}

func newProjectsUseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "use <project-id>",
		Short: "Set the current project",
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
			id := args[0]
			if _, ok := db.FindProject(id); !ok {
				return writeErr(cmd, errNotFound("project", id))
			}
			if !perm.CanViewProject(db, actorID, id) {
				return writeErr(cmd, errNotFound("project", id))
			}
			db.CurrentProjectID = id
			db.MarkDirty()
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"currentProjectId": id}})
		},
	}
	return cmd
}

func newProjectsArchiveCmd(app *App) *cobra.Command {
	var unarchive bool

	cmd := &cobra.Command{
		Use:   "archive <project-id>",
		Short: "Archive a project (pass --undo to restore)",
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

			res, err := mutate.ArchiveProject(db, actorID, args[0], !unarchive)
			if err != nil {
				return writeErr(cmd, err)
			}
			if res.Changed {
				if err := s.Save(db); err != nil {
					return writeErr(cmd, err)
				}
				if err := s.AppendActivity(actorID, res.ActivityType, res.Project.ID, res.ActivityPayload); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{"data": res.Project, "meta": map[string]any{"changed": res.Changed}})
		},
	}

	cmd.Flags().BoolVar(&unarchive, "undo", false, "Unarchive instead")
	return cmd
}

func newProjectsDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project and everything under it",
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

			res, err := mutate.DeleteProject(db, actorID, args[0])
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

func newMembersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "Manage project members",
	}

	cmd.AddCommand(newMembersAddCmd(app))
	cmd.AddCommand(newMembersRemoveCmd(app))
	cmd.AddCommand(newMembersListCmd(app))

	return cmd
}

func newMembersAddCmd(app *App) *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "add <project-id> <profile-id>",
		Short: "Add a member (or change an existing member's role)",
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

			res, err := mutate.AddMember(db, actorID, args[0], args[1], model.ProjectRole(role))
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
			return writeOut(cmd, app, map[string]any{"data": res.Member, "meta": map[string]any{"changed": res.Changed}})
		},
	}

	cmd.Flags().StringVar(&role, "role", "member", "Project role (owner|admin|member)")
	return cmd
}

func newMembersRemoveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <project-id> <profile-id>",
		Short: "Remove a member",
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

			res, err := mutate.RemoveMember(db, actorID, args[0], args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			if err := s.AppendActivity(actorID, res.ActivityType, args[0], res.ActivityPayload); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"removed": args[1]}})
		},
	}
	return cmd
}

func newMembersListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <project-id>",
		Short: "List project members",
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
			if !perm.CanViewProject(db, actorID, id) {
				return writeErr(cmd, errNotFound("project", id))
			}

			type memberRow struct {
				model.ProjectMember
				Name string `json:"name,omitempty"`
			}
			var rows []memberRow
			for _, m := range db.Members {
				if m.ProjectID != id {
					continue
				}
				row := memberRow{ProjectMember: m}
				if p, ok := db.FindProfile(m.ProfileID); ok {
					row.Name = p.Name
				}
				rows = append(rows, row)
			}
			return writeOut(cmd, app, map[string]any{"data": rows})
		},
	}
	return cmd
}
