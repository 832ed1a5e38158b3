package mutate

import (
	"testing"
	"time"

	"taskdeck-cli/internal/model"
	"taskdeck-cli/internal/store"
)

// testStore returns a Store rooted in a throwaway dir; mutators only use it
// for id generation, nothing touches disk unless a test saves explicitly.
func testStore(t *testing.T) store.Store {
	t.Helper()
	return store.Store{Dir: t.TempDir()}
}

// testDB builds a workspace with three profiles and one project:
// prof-alice owns proj-1, prof-bob is a member, prof-eve is outside it.
// task-1 is a top-level task in proj-1.
func testDB() *store.DB {
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	db := &store.DB{
		Version:          1,
		CurrentProfileID: "prof-alice",
		CurrentProjectID: "proj-1",
		Profiles: []model.Profile{
			{ID: "prof-alice", Name: "Alice", Email: "alice@example.com", Role: model.GlobalRoleAdmin, CreatedAt: t0},
			{ID: "prof-bob", Name: "Bob", Email: "bob@example.com", Role: model.GlobalRoleMember, CreatedAt: t0},
			{ID: "prof-eve", Name: "Eve", Email: "eve@example.com", Role: model.GlobalRoleMember, CreatedAt: t0},
		},
		Projects: []model.Project{
			{ID: "proj-1", Name: "Launch", CreatedBy: "prof-alice", CreatedAt: t0},
		},
		Members: []model.ProjectMember{
			{ProjectID: "proj-1", ProfileID: "prof-alice", Role: model.ProjectRoleOwner, AddedAt: t0},
			{ProjectID: "proj-1", ProfileID: "prof-bob", Role: model.ProjectRoleMember, AddedAt: t0},
		},
		Tasks: []model.Task{
			{
				ID: "task-1", ProjectID: "proj-1", Title: "Ship the thing",
				Status: model.StatusTodo, Priority: model.PriorityMedium,
				KanbanColumn: "to-do", CreatedBy: "prof-alice",
				CreatedAt: t0, UpdatedAt: t0,
			},
		},
	}
	return db
}

func addSubtaskFixture(db *store.DB, id, parentID string, ord int, status model.Status) {
	o := ord
	p := parentID
	db.Tasks = append(db.Tasks, model.Task{
		ID: id, ProjectID: "proj-1", Title: "sub " + id,
		Status: status, Priority: model.PriorityMedium,
		ParentTaskID: &p, IsSubtask: true, SubtaskOrder: &o,
		KanbanColumn: "to-do",
		CreatedBy:    "prof-alice",
		CreatedAt:    time.Date(2026, 3, 1, 10, ord, 0, 0, time.UTC),
	})
	db.MarkDirty()
}
