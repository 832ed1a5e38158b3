package store

import (
	"testing"
	"time"

	"taskdeck-cli/internal/model"
)

func seedDB() *DB {
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ord := 0
	parent := "task-1"
	assignee := "prof-bob"
	reply := "cmt-1"
	return &DB{
		Version:          1,
		CurrentProfileID: "prof-alice",
		CurrentProjectID: "proj-1",
		Profiles: []model.Profile{
			{ID: "prof-alice", Name: "Alice", Email: "alice@example.com", Role: model.GlobalRoleAdmin, CreatedAt: t0},
			{ID: "prof-bob", Name: "Bob", Email: "bob@example.com", Role: model.GlobalRoleMember, CreatedAt: t0},
		},
		Projects: []model.Project{
			{ID: "proj-1", Name: "Launch", CreatedBy: "prof-alice", CreatedAt: t0},
		},
		Members: []model.ProjectMember{
			{ProjectID: "proj-1", ProfileID: "prof-alice", Role: model.ProjectRoleOwner, AddedAt: t0},
		},
		Tasks: []model.Task{
			{
				ID: "task-1", ProjectID: "proj-1", Title: "Parent",
				Status: model.StatusInProgress, Priority: model.PriorityHigh,
				AssigneeID: &assignee, KanbanColumn: "in-progress", KanbanPosition: 2,
				CreatedBy: "prof-alice", CreatedAt: t0, UpdatedAt: t0,
			},
			{
				ID: "task-2", ProjectID: "proj-1", Title: "Child",
				Status: model.StatusTodo, Priority: model.PriorityMedium,
				ParentTaskID: &parent, IsSubtask: true, SubtaskOrder: &ord,
				KanbanColumn: "to-do",
				CreatedBy:    "prof-alice", CreatedAt: t0, UpdatedAt: t0,
			},
		},
		Comments: []model.Comment{
			{ID: "cmt-1", TaskID: "task-1", AuthorID: "prof-alice", Body: "root", ContentKind: model.ContentPlain, CreatedAt: t0},
			{ID: "cmt-2", TaskID: "task-1", AuthorID: "prof-bob", Body: "reply", ContentKind: model.ContentMarkdown, ReplyToID: &reply, CreatedAt: t0.Add(time.Minute)},
		},
		CalendarEvents: []model.CalendarEvent{
			{ID: "evt-1", ProjectID: "proj-1", Title: "Standup", StartAt: t0, EndAt: t0.Add(30 * time.Minute), CreatedBy: "prof-alice", CreatedAt: t0},
		},
		Notifications: []model.Notification{
			{ID: "ntf-1", ProfileID: "prof-bob", Kind: "mention", Message: "hi", TaskID: "task-1", ProjectID: "proj-1", CreatedAt: t0},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	if err := s.Save(seedDB()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got.CurrentProfileID != "prof-alice" || got.CurrentProjectID != "proj-1" {
		t.Fatalf("meta lost: %q %q", got.CurrentProfileID, got.CurrentProjectID)
	}
	if len(got.Profiles) != 2 || len(got.Projects) != 1 || len(got.Tasks) != 2 ||
		len(got.Comments) != 2 || len(got.CalendarEvents) != 1 || len(got.Notifications) != 1 {
		t.Fatalf("row counts wrong: %+v", got)
	}

	task, ok := got.FindTask("task-1")
	if !ok {
		t.Fatalf("task-1 missing")
	}
	if task.Status != model.StatusInProgress || task.KanbanColumn != "in-progress" || task.KanbanPosition != 2 {
		t.Fatalf("board placement lost: %+v", task)
	}
	if task.AssigneeID == nil || *task.AssigneeID != "prof-bob" {
		t.Fatalf("assignee lost")
	}

	sub, ok := got.FindTask("task-2")
	if !ok || !sub.IsSubtask || sub.ParentTaskID == nil || *sub.ParentTaskID != "task-1" {
		t.Fatalf("subtask linkage lost: %+v", sub)
	}
	if sub.SubtaskOrder == nil || *sub.SubtaskOrder != 0 {
		t.Fatalf("subtask order lost")
	}

	c, ok := got.FindComment("cmt-2")
	if !ok || c.ReplyToID == nil || *c.ReplyToID != "cmt-1" {
		t.Fatalf("reply linkage lost: %+v", c)
	}
	if c.ContentKind != model.ContentMarkdown {
		t.Fatalf("content kind lost: %s", c.ContentKind)
	}
}

func TestSaveReplacesDeletedRows(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	db := seedDB()
	if err := s.Save(db); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Drop the subtask and one comment, save again: the deleted rows must not
	// resurrect on reload.
	db.Tasks = db.Tasks[:1]
	db.Comments = db.Comments[:1]
	db.MarkDirty()
	if err := s.Save(db); err != nil {
		t.Fatalf("Save 2: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Tasks) != 1 || len(got.Comments) != 1 {
		t.Fatalf("deleted rows resurrected: %d tasks, %d comments", len(got.Tasks), len(got.Comments))
	}
}

func TestLoadEmptyWorkspace(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Profiles) != 0 || len(got.Tasks) != 0 {
		t.Fatalf("fresh workspace should be empty")
	}
}

func TestAppendAndReadActivity(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	if err := s.Save(seedDB()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := s.AppendActivity("prof-alice", "task.set_status", "task-1", map[string]any{"to": "done"}); err != nil {
		t.Fatalf("AppendActivity: %v", err)
	}
	if err := s.AppendActivity("prof-bob", "comment.add", "task-1", nil); err != nil {
		t.Fatalf("AppendActivity 2: %v", err)
	}
	if err := s.AppendActivity("prof-alice", "project.update", "proj-1", nil); err != nil {
		t.Fatalf("AppendActivity 3: %v", err)
	}

	all, err := ReadActivity(s.Dir, 10)
	if err != nil {
		t.Fatalf("ReadActivity: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d activity rows, want 3", len(all))
	}

	scoped, err := ReadActivityForEntity(s.Dir, "task-1", 10)
	if err != nil {
		t.Fatalf("ReadActivityForEntity: %v", err)
	}
	if len(scoped) != 2 {
		t.Fatalf("got %d task-1 rows, want 2", len(scoped))
	}
	for _, a := range scoped {
		if a.EntityID != "task-1" {
			t.Fatalf("entity filter leaked: %+v", a)
		}
	}
}
