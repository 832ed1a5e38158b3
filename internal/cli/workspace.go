package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"taskdeck-cli/internal/store"

	"github.com/spf13/cobra"
)

func newWorkspaceCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspace",
		Short: "Workspace management (the default workspace is fine for most setups)",
	}

	cmd.AddCommand(newWorkspaceInitCmd(app))
	cmd.AddCommand(newWorkspaceAddCmd(app))
	cmd.AddCommand(newWorkspaceForgetCmd(app))
	cmd.AddCommand(newWorkspaceUseCmd(app))
	cmd.AddCommand(newWorkspaceCurrentCmd(app))
	cmd.AddCommand(newWorkspaceListCmd(app))

	return cmd
}

func newWorkspaceInitCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init <name>",
		Short: "Create a workspace and set it as current",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := store.NormalizeWorkspaceName(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			dir, err := store.WorkspaceDir(name)
			if err != nil {
				return writeErr(cmd, err)
			}
			s := store.Store{Dir: dir}
			if err := s.Ensure(); err != nil {
				return writeErr(cmd, err)
			}
			db, err := s.Load()
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}

			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			cfg.CurrentWorkspace = name
			if err := store.SaveConfig(cfg); err != nil {
				return writeErr(cmd, err)
			}

			app.Workspace = name
			app.Dir = dir
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"workspace": name,
					"dir":       dir,
				},
			})
		},
	}
	return cmd
}

func newWorkspaceAddCmd(app *App) *cobra.Command {
	var dir string
	var use bool

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register an existing workspace directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := store.NormalizeWorkspaceName(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}

			dir = strings.TrimSpace(dir)
			if dir == "" {
				return writeErr(cmd, errors.New("missing --dir"))
			}
			abs, err := filepath.Abs(dir)
			if err != nil {
				return writeErr(cmd, err)
			}
			abs = filepath.Clean(abs)
			if st, err := os.Stat(abs); err != nil {
				return writeErr(cmd, err)
			} else if !st.IsDir() {
				return writeErr(cmd, fmt.Errorf("--dir is not a directory: %s", abs))
			}

			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			if cfg.Workspaces == nil {
				cfg.Workspaces = map[string]store.WorkspaceRef{}
			}
			cfg.Workspaces[name] = store.WorkspaceRef{
				Path:       abs,
				LastOpened: time.Now().UTC().Format(time.RFC3339Nano),
			}
			if use {
				cfg.CurrentWorkspace = name
			}
			if err := store.SaveConfig(cfg); err != nil {
				return writeErr(cmd, err)
			}

			if use {
				app.Workspace = name
				app.Dir = filepath.Join(abs, ".taskdeck")
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"workspace": name,
					"dir":       abs,
					"used":      use,
				},
				"_hints": []string{
					"taskdeck workspace list",
					"taskdeck workspace use " + name,
				},
			})
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Workspace directory to register")
	cmd.Flags().BoolVar(&use, "use", false, "Also set as current workspace")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

func newWorkspaceForgetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forget <name>",
		Short: "Remove a workspace from the registry (does not delete files)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := store.NormalizeWorkspaceName(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}

			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			if cfg.Workspaces == nil {
				cfg.Workspaces = map[string]store.WorkspaceRef{}
			}
			_, existed := cfg.Workspaces[name]
			delete(cfg.Workspaces, name)
			if cfg.CurrentWorkspace == name {
				cfg.CurrentWorkspace = ""
			}
			if err := store.SaveConfig(cfg); err != nil {
				return writeErr(cmd, err)
			}

			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"workspace": name,
					"removed":   existed,
				},
				"_hints": []string{
					"taskdeck workspace list",
				},
			})
		},
	}
	return cmd
}

func newWorkspaceUseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "use <name>",
		Short: "Set current workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := store.NormalizeWorkspaceName(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			dir, err := store.ResolveWorkspaceDir(name)
			if err != nil {
				return writeErr(cmd, err)
			}
			s := store.Store{Dir: dir}
			if err := s.Ensure(); err != nil {
				return writeErr(cmd, err)
			}

			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			if cfg.Workspaces != nil {
				if ref, ok := cfg.Workspaces[name]; ok {
					ref.LastOpened = time.Now().UTC().Format(time.RFC3339Nano)
					cfg.Workspaces[name] = ref
				}
			}
			cfg.CurrentWorkspace = name
			if err := store.SaveConfig(cfg); err != nil {
				return writeErr(cmd, err)
			}

			app.Workspace = name
			app.Dir = dir
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"workspace": name,
					"dir":       dir,
				},
			})
		},
	}
	return cmd
}

func newWorkspaceCurrentCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "current",
		Short: "Show current workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			if cfg.CurrentWorkspace == "" {
				cfg.CurrentWorkspace = "default"
			}
			dir, err := store.ResolveWorkspaceDir(cfg.CurrentWorkspace)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"workspace": cfg.CurrentWorkspace,
					"dir":       dir,
				},
			})
		},
	}
	return cmd
}

func newWorkspaceListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all workspaces",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			if cfg.CurrentWorkspace == "" {
				cfg.CurrentWorkspace = "default"
			}

			ws, err := store.ListWorkspaces()
			if err != nil {
				return writeErr(cmd, err)
			}

			type wsDetail struct {
				Name string `json:"name"`
				Path string `json:"path"`
			}
			var details []wsDetail
			for _, name := range ws {
				dir, err := store.ResolveWorkspaceDir(name)
				if err != nil {
					continue
				}
				details = append(details, wsDetail{Name: name, Path: dir})
			}

			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"workspaces":       ws,
					"currentWorkspace": cfg.CurrentWorkspace,
				},
				"meta": map[string]any{
					"details": details,
				},
			})
		},
	}
	return cmd
}
