package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"taskdeck-cli/internal/format"
	"taskdeck-cli/internal/store"
	"taskdeck-cli/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	Workspace  string
	ProfileID  string
	PrettyJSON bool
	Format     string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "taskdeck",
		Short:        "Taskdeck (local-first) project and task manager CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive kanban board
  taskdeck

  # Scriptable commands
  taskdeck tasks list --project prj-abc

  # Move a card on the board
  taskdeck tasks move task-xyz --column in-progress

  # Direct task lookup (shortcut for: taskdeck tasks show <task-id>)
  taskdeck task-xyz
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("TASKDECK_DIR", ""), "Path to store dir (advanced: overrides workspace resolution; use for fixtures/tests)")
	cmd.PersistentFlags().StringVar(&app.Workspace, "workspace", envOr("TASKDECK_WORKSPACE", ""), "Workspace name (default: 'default')")
	cmd.PersistentFlags().StringVar(&app.ProfileID, "profile", envOr("TASKDECK_PROFILE", ""), "Profile id (overrides currentProfileId in the store)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("TASKDECK_FORMAT", "json"), "Output format (json|edn)")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newWorkspaceCmd(app))
	cmd.AddCommand(newIdentityCmd(app))
	cmd.AddCommand(newProjectsCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newSubtasksCmd(app))
	cmd.AddCommand(newCommentsCmd(app))
	cmd.AddCommand(newBoardCmd(app))
	cmd.AddCommand(newCalendarCmd(app))
	cmd.AddCommand(newFilesCmd(app))
	cmd.AddCommand(newNotificationsCmd(app))
	cmd.AddCommand(newActivityCmd(app))
	cmd.AddCommand(newAdminCmd(app))
	cmd.AddCommand(newWebCmd(app))

	return cmd
}

func runTUI(app *App) error {
	db, s, err := loadDB(app)
	if err != nil {
		return err
	}
	profileID, err := currentProfileID(app, db)
	if err != nil {
		return err
	}
	return tui.Run(s, db, profileID)
}

func loadDB(app *App) (*store.DB, store.Store, error) {
	dir := app.Dir
	if dir == "" {
		// Workspace-first:
		// 1) --workspace
		// 2) ~/.taskdeck/config.json currentWorkspace
		// 3) default workspace ("default")
		if app.Workspace == "" {
			if cfg, err := store.LoadConfig(); err == nil && cfg.CurrentWorkspace != "" {
				app.Workspace = cfg.CurrentWorkspace
			} else {
				app.Workspace = "default"
			}
		}
		d, err := store.ResolveWorkspaceDir(app.Workspace)
		if err != nil {
			return nil, store.Store{}, err
		}
		dir = d
		app.Dir = dir
	}

	s := store.Store{Dir: dir}
	db, err := s.Load()
	if err != nil {
		return nil, s, err
	}
	return db, s, nil
}

func currentProfileID(app *App, db *store.DB) (string, error) {
	if app.ProfileID != "" {
		return app.ProfileID, nil
	}
	if db.CurrentProfileID != "" {
		return db.CurrentProfileID, nil
	}
	return "", errors.New("no current profile; run `taskdeck identity create ... --use` or `taskdeck identity use <profile-id>` (or pass --profile)")
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// currentProjectID resolves --project, falling back to the store's current
// project selection.
func currentProjectID(db *store.DB, flagVal string) (string, error) {
	if v := strings.TrimSpace(flagVal); v != "" {
		return v, nil
	}
	if db.CurrentProjectID != "" {
		return db.CurrentProjectID, nil
	}
	return "", errors.New("no project selected; pass --project or run `taskdeck projects use <project-id>`")
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
