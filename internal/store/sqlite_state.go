package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"taskdeck-cli/internal/model"
)

// LoadSQLite loads the full workspace state.
func (s Store) LoadSQLite(ctx context.Context) (*DB, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return loadStateFromSQLite(ctx, db)
}

// SaveSQLite writes the full state in one transaction (replace-all). Either
// every row of every table lands or none does; a multi-row rewrite like a
// subtask renumber can never be observed half-applied.
func (s Store) SaveSQLite(ctx context.Context, st *DB) error {
	if st == nil {
		return errors.New("nil db")
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO state_meta(k, v) VALUES(?, ?)`, "version", fmt.Sprintf("%d", st.Version)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO state_meta(k, v) VALUES(?, ?)`, "current_profile_id", strings.TrimSpace(st.CurrentProfileID)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO state_meta(k, v) VALUES(?, ?)`, "current_project_id", strings.TrimSpace(st.CurrentProjectID)); err != nil {
		return err
	}

	tables := []string{
		"profiles",
		"projects",
		"project_members",
		"tasks",
		"task_comments",
		"calendar_events",
		"notifications",
		"project_files",
	}
	for _, t := range tables {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+t); err != nil {
			return err
		}
	}

	nowMs := time.Now().UTC().UnixMilli()

	for _, p := range st.Profiles {
		raw, _ := json.Marshal(p)
		if _, err := tx.ExecContext(ctx, `INSERT INTO profiles(id, name, email, role, json, updated_at_unixms) VALUES(?, ?, ?, ?, ?, ?)`,
			p.ID, p.Name, strings.ToLower(strings.TrimSpace(p.Email)), string(p.Role), string(raw), nowMs); err != nil {
			return err
		}
	}
	for _, p := range st.Projects {
		raw, _ := json.Marshal(p)
		if _, err := tx.ExecContext(ctx, `INSERT INTO projects(id, name, archived, json, updated_at_unixms) VALUES(?, ?, ?, ?, ?)`,
			p.ID, p.Name, boolToInt(p.Archived), string(raw), nowMs); err != nil {
			return err
		}
	}
	for _, m := range st.Members {
		raw, _ := json.Marshal(m)
		if _, err := tx.ExecContext(ctx, `INSERT INTO project_members(project_id, profile_id, role, json, updated_at_unixms) VALUES(?, ?, ?, ?, ?)`,
			m.ProjectID, m.ProfileID, string(m.Role), string(raw), nowMs); err != nil {
			return err
		}
	}
	for _, t := range st.Tasks {
		raw, _ := json.Marshal(t)
		parent := ""
		if t.ParentTaskID != nil {
			parent = strings.TrimSpace(*t.ParentTaskID)
		}
		assignee := ""
		if t.AssigneeID != nil {
			assignee = strings.TrimSpace(*t.AssigneeID)
		}
		due := ""
		if t.DueDate != nil {
			due = strings.TrimSpace(*t.DueDate)
		}
		var subOrder any
		if t.SubtaskOrder != nil {
			subOrder = *t.SubtaskOrder
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO tasks(
			id, project_id, parent_task_id, is_subtask, subtask_order,
			title, status, priority,
			kanban_column, kanban_position,
			assignee_id, due_date,
			json, updated_at_unixms
		) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.ProjectID, parent, boolToInt(t.IsSubtask), subOrder,
			t.Title, string(t.Status), string(t.Priority),
			t.KanbanColumn, t.KanbanPosition,
			assignee, due,
			string(raw), nowMs,
		); err != nil {
			return err
		}
	}
	for _, c := range st.Comments {
		raw, _ := json.Marshal(c)
		replyTo := ""
		if c.ReplyToID != nil {
			replyTo = strings.TrimSpace(*c.ReplyToID)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO task_comments(id, task_id, author_id, reply_to_id, created_at_unixms, json, updated_at_unixms) VALUES(?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.TaskID, c.AuthorID, replyTo, c.CreatedAt.UTC().UnixMilli(), string(raw), nowMs); err != nil {
			return err
		}
	}
	for _, e := range st.CalendarEvents {
		raw, _ := json.Marshal(e)
		if _, err := tx.ExecContext(ctx, `INSERT INTO calendar_events(id, project_id, start_at_unixms, end_at_unixms, json, updated_at_unixms) VALUES(?, ?, ?, ?, ?, ?)`,
			e.ID, e.ProjectID, e.StartAt.UTC().UnixMilli(), e.EndAt.UTC().UnixMilli(), string(raw), nowMs); err != nil {
			return err
		}
	}
	for _, n := range st.Notifications {
		raw, _ := json.Marshal(n)
		if _, err := tx.ExecContext(ctx, `INSERT INTO notifications(id, profile_id, read, created_at_unixms, json, updated_at_unixms) VALUES(?, ?, ?, ?, ?, ?)`,
			n.ID, n.ProfileID, boolToInt(n.Read), n.CreatedAt.UTC().UnixMilli(), string(raw), nowMs); err != nil {
			return err
		}
	}
	for _, f := range st.Files {
		raw, _ := json.Marshal(f)
		if _, err := tx.ExecContext(ctx, `INSERT INTO project_files(id, project_id, json, updated_at_unixms) VALUES(?, ?, ?, ?)`,
			f.ID, f.ProjectID, string(raw), nowMs); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func loadStateFromSQLite(ctx context.Context, db *sql.DB) (*DB, error) {
	out := &DB{Version: 1}

	readMeta := func(k string) string {
		var v string
		_ = db.QueryRowContext(ctx, `SELECT v FROM state_meta WHERE k = ?`, k).Scan(&v)
		return strings.TrimSpace(v)
	}
	if v := readMeta("version"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			out.Version = n
		}
	}
	out.CurrentProfileID = readMeta("current_profile_id")
	out.CurrentProjectID = readMeta("current_project_id")

	if xs, err := readJSONRows[model.Profile](ctx, db, `SELECT json FROM profiles`); err == nil {
		out.Profiles = xs
	} else {
		return nil, err
	}
	if xs, err := readJSONRows[model.Project](ctx, db, `SELECT json FROM projects`); err == nil {
		out.Projects = xs
	} else {
		return nil, err
	}
	if xs, err := readJSONRows[model.ProjectMember](ctx, db, `SELECT json FROM project_members`); err == nil {
		out.Members = xs
	} else {
		return nil, err
	}
	if xs, err := readJSONRows[model.Task](ctx, db, `SELECT json FROM tasks`); err == nil {
		out.Tasks = xs
	} else {
		return nil, err
	}
	if xs, err := readJSONRows[model.Comment](ctx, db, `SELECT json FROM task_comments ORDER BY created_at_unixms ASC`); err == nil {
		out.Comments = xs
	} else {
		return nil, err
	}
	if xs, err := readJSONRows[model.CalendarEvent](ctx, db, `SELECT json FROM calendar_events ORDER BY start_at_unixms ASC`); err == nil {
		out.CalendarEvents = xs
	} else {
		return nil, err
	}
	if xs, err := readJSONRows[model.Notification](ctx, db, `SELECT json FROM notifications`); err == nil {
		out.Notifications = xs
	} else {
		return nil, err
	}
	if xs, err := readJSONRows[model.ProjectFile](ctx, db, `SELECT json FROM project_files`); err == nil {
		out.Files = xs
	} else {
		return nil, err
	}

	// Nil slices become empty for stable callers.
	if out.Profiles == nil {
		out.Profiles = []model.Profile{}
	}
	if out.Projects == nil {
		out.Projects = []model.Project{}
	}
	if out.Members == nil {
		out.Members = []model.ProjectMember{}
	}
	if out.Tasks == nil {
		out.Tasks = []model.Task{}
	}
	if out.Comments == nil {
		out.Comments = []model.Comment{}
	}
	if out.CalendarEvents == nil {
		out.CalendarEvents = []model.CalendarEvent{}
	}
	if out.Notifications == nil {
		out.Notifications = []model.Notification{}
	}
	if out.Files == nil {
		out.Files = []model.ProjectFile{}
	}

	return out, nil
}

func readJSONRows[T any](ctx context.Context, db *sql.DB, query string) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var js string
		if err := rows.Scan(&js); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(js), &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
