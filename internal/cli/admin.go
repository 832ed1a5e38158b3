package cli

import (
	"errors"

	"taskdeck-cli/internal/model"
	"taskdeck-cli/internal/perm"

	"github.com/spf13/cobra"
)

func newAdminCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Workspace administration (admin role required)",
	}

	cmd.AddCommand(newAdminStatsCmd(app))
	cmd.AddCommand(newAdminUsersCmd(app))
	cmd.AddCommand(newAdminSetRoleCmd(app))

	return cmd
}

func newAdminStatsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Workspace-wide counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			actorID, err := currentProfileID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !perm.IsWorkspaceAdmin(db, actorID) {
				return writeErr(cmd, errors.New("admin role required"))
			}

			byStatus := map[string]int{}
			topLevel := 0
			subtasks := 0
			for _, t := range db.Tasks {
				byStatus[string(t.Status)]++
				if t.IsSubtask {
					subtasks++
				} else {
					topLevel++
				}
			}
			archived := 0
			for _, p := range db.Projects {
				if p.Archived {
					archived++
				}
			}

			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"profiles":         len(db.Profiles),
					"projects":         len(db.Projects),
					"archivedProjects": archived,
					"tasks":            topLevel,
					"subtasks":         subtasks,
					"tasksByStatus":    byStatus,
					"comments":         len(db.Comments),
					"files":            len(db.Files),
					"calendarEvents":   len(db.CalendarEvents),
				},
			})
		},
	}
	return cmd
}

func newAdminUsersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List all profiles with project memberships",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			actorID, err := currentProfileID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !perm.IsWorkspaceAdmin(db, actorID) {
				return writeErr(cmd, errors.New("admin role required"))
			}

			type userRow struct {
				model.Profile
				Projects []string `json:"projects,omitempty"`
			}
			var rows []userRow
			for _, p := range db.Profiles {
				row := userRow{Profile: p}
				for _, m := range db.Members {
					if m.ProfileID == p.ID {
						row.Projects = append(row.Projects, m.ProjectID)
					}
				}
				rows = append(rows, row)
			}
			return writeOut(cmd, app, map[string]any{"data": rows})
		},
	}
	return cmd
}

func newAdminSetRoleCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-role <profile-id> <admin|member>",
		Short: "Change a profile's workspace role",
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
			if !perm.IsWorkspaceAdmin(db, actorID) {
				return writeErr(cmd, errors.New("admin role required"))
			}

			var role model.GlobalRole
			switch args[1] {
			case "admin":
				role = model.GlobalRoleAdmin
			case "member":
				role = model.GlobalRoleMember
			default:
				return writeErr(cmd, errors.New("invalid role (admin|member)"))
			}

			p, ok := db.FindProfile(args[0])
			if !ok {
				return writeErr(cmd, errNotFound("profile", args[0]))
			}
			if p.ID == actorID && role != model.GlobalRoleAdmin {
				// Keep at least the acting admin; demoting yourself is how
				// workspaces end up with no admin at all.
				admins := 0
				for _, x := range db.Profiles {
					if x.Role == model.GlobalRoleAdmin {
						admins++
					}
				}
				if admins <= 1 {
					return writeErr(cmd, errors.New("cannot demote the last admin"))
				}
			}

			if p.Role != role {
				p.Role = role
				db.MarkDirty()
				if err := s.Save(db); err != nil {
					return writeErr(cmd, err)
				}
				if err := s.AppendActivity(actorID, "profile.role", p.ID, map[string]any{"role": string(role)}); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{"data": p})
		},
	}
	return cmd
}
