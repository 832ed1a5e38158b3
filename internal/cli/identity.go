package cli

import (
	"errors"
	"strings"
	"time"

	"taskdeck-cli/internal/model"
	"taskdeck-cli/internal/perm"

	"github.com/spf13/cobra"
)

func newIdentityCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Manage local profiles",
	}

	cmd.AddCommand(newIdentityCreateCmd(app))
	cmd.AddCommand(newIdentityUseCmd(app))
	cmd.AddCommand(newIdentityListCmd(app))
	cmd.AddCommand(newIdentityWhoamiCmd(app))

	return cmd
}

func newIdentityCreateCmd(app *App) *cobra.Command {
	var name string
	var email string
	var role string
	var use bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			email = strings.ToLower(strings.TrimSpace(email))
			if email != "" {
				if _, ok := db.FindProfileByEmail(email); ok {
					return writeErr(cmd, errors.New("email already in use: "+email))
				}
			}

			// The first profile bootstraps the workspace and is always an
			// admin. After that, only admins can mint admins.
			r := model.GlobalRoleMember
			switch strings.TrimSpace(role) {
			case "", "member":
			case "admin":
				r = model.GlobalRoleAdmin
			default:
				return writeErr(cmd, errors.New("invalid role (admin|member)"))
			}
			if len(db.Profiles) == 0 {
				r = model.GlobalRoleAdmin
			} else if r == model.GlobalRoleAdmin {
				actorID, err := currentProfileID(app, db)
				if err != nil {
					return writeErr(cmd, err)
				}
				if !perm.IsWorkspaceAdmin(db, actorID) {
					return writeErr(cmd, errors.New("only workspace admins can create admin profiles"))
				}
			}

			p := model.Profile{
				ID:        s.NextID(db, "usr"),
				Name:      strings.TrimSpace(name),
				Email:     email,
				Role:      r,
				CreatedAt: time.Now().UTC(),
			}
			db.Profiles = append(db.Profiles, p)
			if use {
				db.CurrentProfileID = p.ID
				app.ProfileID = p.ID
			}
			db.MarkDirty()
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			if err := s.AppendActivity(p.ID, "profile.create", p.ID, map[string]any{"name": p.Name, "role": string(r)}); err != nil {
				return writeErr(cmd, err)
			}

			return writeOut(cmd, app, map[string]any{"data": p})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email (optional, unique)")
	cmd.Flags().StringVar(&role, "role", "member", "Workspace role (admin|member)")
	cmd.Flags().BoolVar(&use, "use", false, "Set as current profile")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newIdentityUseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "use <profile-id>",
		Short: "Set the current profile for this workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id := args[0]
			if _, ok := db.FindProfile(id); !ok {
				return writeErr(cmd, errNotFound("profile", id))
			}
			db.CurrentProfileID = id
			app.ProfileID = id
			db.MarkDirty()
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"currentProfileId": id}})
		},
	}
	return cmd
}

func newIdentityListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"currentProfileId": db.CurrentProfileID,
					"profiles":         db.Profiles,
				},
			})
		},
	}
	return cmd
}

func newIdentityWhoamiCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, err := currentProfileID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			p, ok := db.FindProfile(id)
			if !ok {
				return writeErr(cmd, errNotFound("profile", id))
			}
			return writeOut(cmd, app, map[string]any{"data": p})
		},
	}
	return cmd
}
