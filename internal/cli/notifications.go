package cli

import (
	"github.com/spf13/cobra"
)

func newNotificationsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Your notifications",
	}

	cmd.AddCommand(newNotificationsListCmd(app))
	cmd.AddCommand(newNotificationsReadCmd(app))

	return cmd
}

func newNotificationsListCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List unread notifications (pass --all for everything)",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			actorID, err := currentProfileID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}

			rows := db.NotificationsFor(actorID, !all)
			return writeOut(cmd, app, map[string]any{
				"data": rows,
				"meta": map[string]any{"count": len(rows)},
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include read notifications")
	return cmd
}

func newNotificationsReadCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "read [notification-id]",
		Short: "Mark a notification read (or --all)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			actorID, err := currentProfileID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}

			marked := 0
			if all {
				for i := range db.Notifications {
					n := &db.Notifications[i]
					if n.ProfileID == actorID && !n.Read {
						n.Read = true
						marked++
					}
				}
			} else {
				if len(args) == 0 {
					return writeErr(cmd, errNotFound("notification", "(pass an id or --all)"))
				}
				found := false
				for i := range db.Notifications {
					n := &db.Notifications[i]
					if n.ID == args[0] && n.ProfileID == actorID {
						if !n.Read {
							n.Read = true
							marked++
						}
						found = true
						break
					}
				}
				if !found {
					return writeErr(cmd, errNotFound("notification", args[0]))
				}
			}

			if marked > 0 {
				db.MarkDirty()
				if err := s.Save(db); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"marked": marked}})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Mark all unread notifications read")
	return cmd
}
