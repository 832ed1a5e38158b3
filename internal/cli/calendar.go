package cli

import (
	"errors"
	"sort"
	"strings"
	"time"

	"taskdeck-cli/internal/model"
	"taskdeck-cli/internal/perm"

	"github.com/spf13/cobra"
)

func newCalendarCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Project calendar events",
	}

	cmd.AddCommand(newCalendarAddCmd(app))
	cmd.AddCommand(newCalendarListCmd(app))
	cmd.AddCommand(newCalendarDeleteCmd(app))

	return cmd
}

// parseEventTime accepts a date or an RFC 3339 timestamp.
func parseEventTime(s string) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, errors.New("invalid time (expected YYYY-MM-DD or RFC 3339)")
	}
	return t.UTC(), false, nil
}

func newCalendarAddCmd(app *App) *cobra.Command {
	var project string
	var title string
	var description string
	var start string
	var end string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a calendar event",
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
			title = strings.TrimSpace(title)
			if title == "" {
				return writeErr(cmd, errors.New("event title is empty"))
			}

			startAt, allDay, err := parseEventTime(start)
			if err != nil {
				return writeErr(cmd, err)
			}
			endAt := startAt
			if strings.TrimSpace(end) != "" {
				e, _, err := parseEventTime(end)
				if err != nil {
					return writeErr(cmd, err)
				}
				endAt = e
			}
			if allDay && endAt.Equal(startAt) {
				endAt = startAt.Add(24 * time.Hour)
			}
			if endAt.Before(startAt) {
				return writeErr(cmd, errors.New("event ends before it starts"))
			}

			ev := model.CalendarEvent{
				ID:          s.NextID(db, "evt"),
				ProjectID:   projectID,
				Title:       title,
				Description: strings.TrimSpace(description),
				StartAt:     startAt,
				EndAt:       endAt,
				AllDay:      allDay,
				CreatedBy:   actorID,
				CreatedAt:   time.Now().UTC(),
			}
			db.CalendarEvents = append(db.CalendarEvents, ev)
			db.MarkDirty()
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			if err := s.AppendActivity(actorID, "calendar.add", ev.ID, map[string]any{"title": title}); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": ev})
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project id (default: current project)")
	cmd.Flags().StringVar(&title, "title", "", "Event title")
	cmd.Flags().StringVar(&description, "description", "", "Event description")
	cmd.Flags().StringVar(&start, "start", "", "Start (YYYY-MM-DD for all-day, or RFC 3339)")
	cmd.Flags().StringVar(&end, "end", "", "End (defaults to start; all-day events span the day)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("start")

	return cmd
}

func newCalendarListCmd(app *App) *cobra.Command {
	var project string
	var from string
	var to string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List calendar events, soonest first",
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

			var fromT, toT time.Time
			if strings.TrimSpace(from) != "" {
				fromT, _, err = parseEventTime(from)
				if err != nil {
					return writeErr(cmd, err)
				}
			}
			if strings.TrimSpace(to) != "" {
				toT, _, err = parseEventTime(to)
				if err != nil {
					return writeErr(cmd, err)
				}
			}

			var rows []model.CalendarEvent
			for _, ev := range db.CalendarEvents {
				if ev.ProjectID != projectID {
					continue
				}
				if !fromT.IsZero() && ev.EndAt.Before(fromT) {
					continue
				}
				if !toT.IsZero() && ev.StartAt.After(toT) {
					continue
				}
				rows = append(rows, ev)
			}
			sort.SliceStable(rows, func(i, j int) bool {
				return rows[i].StartAt.Before(rows[j].StartAt)
			})

			return writeOut(cmd, app, map[string]any{"data": rows})
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project id (default: current project)")
	cmd.Flags().StringVar(&from, "from", "", "Only events ending at/after this time")
	cmd.Flags().StringVar(&to, "to", "", "Only events starting at/before this time")
	return cmd
}

func newCalendarDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <event-id>",
		Short: "Delete a calendar event",
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
			idx := -1
			for i, ev := range db.CalendarEvents {
				if ev.ID == id {
					idx = i
					break
				}
			}
			if idx < 0 {
				return writeErr(cmd, errNotFound("event", id))
			}
			ev := db.CalendarEvents[idx]
			if !perm.CanWriteTasks(db, actorID, ev.ProjectID) {
				return writeErr(cmd, errNotFound("event", id))
			}

			db.CalendarEvents = append(db.CalendarEvents[:idx], db.CalendarEvents[idx+1:]...)
			db.MarkDirty()
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			if err := s.AppendActivity(actorID, "calendar.delete", id, map[string]any{"title": ev.Title}); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": id}})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}
