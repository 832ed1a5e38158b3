package cli

import (
	"os"
	"path/filepath"

	"taskdeck-cli/internal/model"
	"taskdeck-cli/internal/perm"
	"taskdeck-cli/internal/store"

	"github.com/spf13/cobra"
)

func newFilesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Project file storage",
	}

	cmd.AddCommand(newFilesUploadCmd(app))
	cmd.AddCommand(newFilesListCmd(app))
	cmd.AddCommand(newFilesDownloadCmd(app))
	cmd.AddCommand(newFilesDeleteCmd(app))

	return cmd
}

func newFilesUploadCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Copy a local file into project storage",
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
			projectID, err := currentProjectID(db, project)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !perm.CanWriteTasks(db, actorID, projectID) {
				return writeErr(cmd, errNotFound("project", projectID))
			}

			f, err := s.AddFile(db, actorID, projectID, args[0], store.DefaultFileMaxBytes)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			if err := s.AppendActivity(actorID, "file.upload", f.ID, map[string]any{"name": f.OriginalName, "bytes": f.SizeBytes}); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": f})
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project id (default: current project)")
	return cmd
}

func newFilesListCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List project files",
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

			var rows []model.ProjectFile
			for _, f := range db.Files {
				if f.ProjectID == projectID {
					rows = append(rows, f)
				}
			}
			return writeOut(cmd, app, map[string]any{"data": rows})
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project id (default: current project)")
	return cmd
}

func newFilesDownloadCmd(app *App) *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "download <file-id>",
		Short: "Copy a stored file out (default: original name in cwd)",
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
			f, ok := db.FindFile(id)
			if !ok {
				return writeErr(cmd, errNotFound("file", id))
			}
			if !perm.CanViewProject(db, actorID, f.ProjectID) {
				return writeErr(cmd, errNotFound("file", id))
			}

			b, err := s.ReadFile(*f)
			if err != nil {
				return writeErr(cmd, err)
			}
			dest := to
			if dest == "" {
				dest = f.OriginalName
			}
			if err := os.MkdirAll(filepath.Dir(filepath.Join(".", dest)), 0o755); err != nil {
				return writeErr(cmd, err)
			}
			if err := os.WriteFile(dest, b, 0o644); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"file": f,
					"dest": dest,
				},
			})
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Destination path")
	return cmd
}

func newFilesDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <file-id>",
		Short: "Delete a stored file",
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
			id := args[0]
			f, ok := db.FindFile(id)
			if !ok {
				return writeErr(cmd, errNotFound("file", id))
			}
			if !perm.CanWriteTasks(db, actorID, f.ProjectID) {
				return writeErr(cmd, errNotFound("file", id))
			}

			if err := s.RemoveFile(db, id); err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			if err := s.AppendActivity(actorID, "file.delete", id, map[string]any{"name": f.OriginalName}); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": id}})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}
