package cli

import (
	"taskdeck-cli/internal/model"
	"taskdeck-cli/internal/mutate"
	"taskdeck-cli/internal/perm"
	"taskdeck-cli/internal/thread"

	"github.com/spf13/cobra"
)

func newCommentsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Manage task comments (threaded)",
	}

	cmd.AddCommand(newCommentsAddCmd(app))
	cmd.AddCommand(newCommentsEditCmd(app))
	cmd.AddCommand(newCommentsDeleteCmd(app))
	cmd.AddCommand(newCommentsListCmd(app))
	cmd.AddCommand(newCommentsTreeCmd(app))

	return cmd
}

func newCommentsAddCmd(app *App) *cobra.Command {
	var body string
	var markdown bool
	var replyTo string
	var mentions []string
	var attachments []string

	cmd := &cobra.Command{
		Use:   "add <task-id>",
		Short: "Add a comment (pass --reply-to to thread it)",
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

			kind := model.ContentPlain
			if markdown {
				kind = model.ContentMarkdown
			}
			res, err := mutate.AddComment(db, s, actorID, mutate.AddCommentArgs{
				TaskID:      args[0],
				Body:        body,
				ContentKind: kind,
				ReplyToID:   replyTo,
				Mentions:    mentions,
				Attachments: attachments,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			if err := s.AppendActivity(actorID, res.ActivityType, res.Comment.ID, res.ActivityPayload); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res.Comment})
		},
	}

	cmd.Flags().StringVar(&body, "body", "", "Comment text")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Treat body as markdown")
	cmd.Flags().StringVar(&replyTo, "reply-to", "", "Parent comment id (same task)")
	cmd.Flags().StringSliceVar(&mentions, "mention", nil, "Mention profile ids (repeatable)")
	cmd.Flags().StringSliceVar(&attachments, "attach", nil, "Attach uploaded file ids (repeatable)")
	_ = cmd.MarkFlagRequired("body")

	return cmd
}

func newCommentsEditCmd(app *App) *cobra.Command {
	var body string

	cmd := &cobra.Command{
		Use:   "edit <comment-id>",
		Short: "Edit your own comment",
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

			res, err := mutate.EditComment(db, actorID, args[0], body)
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
			return writeOut(cmd, app, map[string]any{"data": res.Comment, "meta": map[string]any{"changed": res.Changed}})
		},
	}

	cmd.Flags().StringVar(&body, "body", "", "New comment text")
	_ = cmd.MarkFlagRequired("body")
	return cmd
}

func newCommentsDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <comment-id>",
		Short: "Delete your own comment (replies stay and become roots)",
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

			res, err := mutate.DeleteComment(db, actorID, args[0])
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

func newCommentsListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <task-id>",
		Short: "List comments flat, newest first",
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

			comments := db.CommentsForTask(id)
			return writeOut(cmd, app, map[string]any{
				"data": comments,
				"meta": map[string]any{"count": len(comments)},
			})
		},
	}
	return cmd
}

func newCommentsTreeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree <task-id>",
		Short: "Show the reply tree for a task",
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

			forest := thread.BuildOldestFirst(db.CommentsForTask(id))
			return writeOut(cmd, app, map[string]any{
				"data": forest,
				"meta": map[string]any{"count": thread.Count(forest)},
			})
		},
	}
	return cmd
}
