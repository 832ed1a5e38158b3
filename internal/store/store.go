package store

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"taskdeck-cli/internal/model"
	"taskdeck-cli/internal/order"
)

// DB is the whole workspace state, loaded from SQLite and saved back as a
// unit. Mutators work on this in-memory copy; Save persists it in one
// transaction, which is what keeps multi-row rewrites (subtask renumbering,
// status+column pairs) free of partial-failure windows.
type DB struct {
	Version          int                   `json:"version"`
	CurrentProfileID string                `json:"currentProfileId,omitempty"`
	CurrentProjectID string                `json:"currentProjectId,omitempty"`
	Profiles         []model.Profile       `json:"profiles"`
	Projects         []model.Project       `json:"projects"`
	Members          []model.ProjectMember `json:"members"`
	Tasks            []model.Task          `json:"tasks"`
	Comments         []model.Comment       `json:"comments"`
	CalendarEvents   []model.CalendarEvent `json:"calendarEvents"`
	Notifications    []model.Notification  `json:"notifications"`
	Files            []model.ProjectFile   `json:"files"`

	// Derived indexes for per-task lookups. Not persisted; rebuilt lazily and
	// invalidated by mutators via MarkDirty.
	idxBuilt          bool                       `json:"-"`
	idxSubtasks       map[string][]*model.Task   `json:"-"`
	idxCommentsByTask map[string][]model.Comment `json:"-"`
}

type Store struct {
	Dir string
}

func DiscoverDir(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, ".taskdeck")
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func DefaultDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if found, ok := DiscoverDir(cwd); ok {
		return found, nil
	}
	return filepath.Join(cwd, ".taskdeck"), nil
}

func WorkspaceDir(name string) (string, error) {
	name, err := NormalizeWorkspaceName(name)
	if err != nil {
		return "", err
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "workspaces", name), nil
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) workspaceRoot() string {
	dir := filepath.Clean(strings.TrimSpace(s.Dir))
	if filepath.Base(dir) == ".taskdeck" {
		return filepath.Dir(dir)
	}
	return dir
}

func (s Store) Load() (*DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	return s.LoadSQLite(context.Background())
}

func (s Store) Save(db *DB) error {
	if err := s.Ensure(); err != nil {
		return err
	}
	return s.SaveSQLite(context.Background(), db)
}

// AppendActivity is the activity-log append procedure: one durable row per
// call, independent of whole-state saves.
func (s Store) AppendActivity(actorID, typ, entityID string, payload any) error {
	return s.appendActivitySQLite(context.Background(), actorID, typ, entityID, payload)
}

func (db *DB) FindProfile(id string) (*model.Profile, bool) {
	for i := range db.Profiles {
		if db.Profiles[i].ID == id {
			return &db.Profiles[i], true
		}
	}
	return nil, false
}

func (db *DB) FindProfileByEmail(email string) (*model.Profile, bool) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, false
	}
	for i := range db.Profiles {
		if strings.ToLower(strings.TrimSpace(db.Profiles[i].Email)) == email {
			return &db.Profiles[i], true
		}
	}
	return nil, false
}

func (db *DB) FindProject(id string) (*model.Project, bool) {
	for i := range db.Projects {
		if db.Projects[i].ID == id {
			return &db.Projects[i], true
		}
	}
	return nil, false
}

func (db *DB) FindTask(id string) (*model.Task, bool) {
	for i := range db.Tasks {
		if db.Tasks[i].ID == id {
			return &db.Tasks[i], true
		}
	}
	return nil, false
}

func (db *DB) FindComment(id string) (*model.Comment, bool) {
	for i := range db.Comments {
		if db.Comments[i].ID == id {
			return &db.Comments[i], true
		}
	}
	return nil, false
}

func (db *DB) FindFile(id string) (*model.ProjectFile, bool) {
	for i := range db.Files {
		if db.Files[i].ID == id {
			return &db.Files[i], true
		}
	}
	return nil, false
}

// MemberRole returns the project role for a profile, if any.
func (db *DB) MemberRole(projectID, profileID string) (model.ProjectRole, bool) {
	for i := range db.Members {
		m := &db.Members[i]
		if m.ProjectID == projectID && m.ProfileID == profileID {
			return m.Role, true
		}
	}
	return "", false
}

// MarkDirty invalidates the derived indexes after a mutation.
func (db *DB) MarkDirty() {
	if db != nil {
		db.idxBuilt = false
	}
}

func (db *DB) ensureIndexes() {
	if db == nil || db.idxBuilt {
		return
	}
	db.idxSubtasks = map[string][]*model.Task{}
	db.idxCommentsByTask = map[string][]model.Comment{}

	for i := range db.Tasks {
		t := &db.Tasks[i]
		if t.ParentTaskID == nil {
			continue
		}
		pid := strings.TrimSpace(*t.ParentTaskID)
		if pid == "" {
			continue
		}
		db.idxSubtasks[pid] = append(db.idxSubtasks[pid], t)
	}
	for pid := range db.idxSubtasks {
		order.SortSubtasks(db.idxSubtasks[pid])
	}

	for _, c := range db.Comments {
		id := strings.TrimSpace(c.TaskID)
		if id == "" {
			continue
		}
		db.idxCommentsByTask[id] = append(db.idxCommentsByTask[id], c)
	}
	for id := range db.idxCommentsByTask {
		comments := db.idxCommentsByTask[id]
		sort.SliceStable(comments, func(i, j int) bool { return comments[i].CreatedAt.After(comments[j].CreatedAt) })
		db.idxCommentsByTask[id] = comments
	}

	db.idxBuilt = true
}

// SubtasksOf returns the subtasks of a parent, sorted by ascending
// subtask_order (ties by creation time, then id).
func (db *DB) SubtasksOf(parentTaskID string) []*model.Task {
	if db == nil {
		return nil
	}
	db.ensureIndexes()
	return db.idxSubtasks[strings.TrimSpace(parentTaskID)]
}

// CommentsForTask returns a task's comments newest-first, with author display
// names refreshed from profiles.
func (db *DB) CommentsForTask(taskID string) []model.Comment {
	if db == nil {
		return nil
	}
	db.ensureIndexes()
	comments := db.idxCommentsByTask[strings.TrimSpace(taskID)]
	out := make([]model.Comment, len(comments))
	copy(out, comments)
	for i := range out {
		if p, ok := db.FindProfile(out[i].AuthorID); ok {
			out[i].AuthorName = p.Name
		}
	}
	return out
}

// TasksForColumn returns a project's top-level tasks in one board column,
// sorted by kanban_position then creation time.
func (db *DB) TasksForColumn(projectID, column string) []model.Task {
	if db == nil {
		return nil
	}
	column = strings.TrimSpace(column)
	var out []model.Task
	for _, t := range db.Tasks {
		if t.ProjectID != projectID || t.IsSubtask {
			continue
		}
		if t.KanbanColumn != column {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].KanbanPosition != out[j].KanbanPosition {
			return out[i].KanbanPosition < out[j].KanbanPosition
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// CompletionPercent is the subtask completion procedure: the share of a
// parent's subtasks with status done, as an integer percentage. Parents with
// no subtasks report 0.
func (db *DB) CompletionPercent(parentTaskID string) int {
	subs := db.SubtasksOf(parentTaskID)
	if len(subs) == 0 {
		return 0
	}
	done := 0
	for _, t := range subs {
		if t.Status == model.StatusDone {
			done++
		}
	}
	return done * 100 / len(subs)
}

// NotificationsFor returns a profile's notifications newest-first.
func (db *DB) NotificationsFor(profileID string, unreadOnly bool) []model.Notification {
	if db == nil {
		return nil
	}
	var out []model.Notification
	for _, n := range db.Notifications {
		if n.ProfileID != profileID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
