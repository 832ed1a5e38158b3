package mutate

import (
	"errors"
	"testing"

	"taskdeck-cli/internal/model"
)

func TestAddSubtask_InsertsAtTopAndShiftsSiblings(t *testing.T) {
	db := testDB()
	s := testStore(t)
	addSubtaskFixture(db, "task-s1", "task-1", 0, model.StatusTodo)
	addSubtaskFixture(db, "task-s2", "task-1", 1, model.StatusTodo)

	res, err := AddSubtask(db, s, "prof-bob", "task-1", "new first")
	if err != nil {
		t.Fatalf("AddSubtask: %v", err)
	}
	if res.Task.SubtaskOrder == nil || *res.Task.SubtaskOrder != 0 {
		t.Fatalf("new subtask order = %v, want 0", res.Task.SubtaskOrder)
	}
	if !res.Task.IsSubtask || res.Task.ParentTaskID == nil || *res.Task.ParentTaskID != "task-1" {
		t.Fatalf("subtask linkage wrong: %+v", res.Task)
	}

	s1, _ := db.FindTask("task-s1")
	s2, _ := db.FindTask("task-s2")
	if *s1.SubtaskOrder != 1 || *s2.SubtaskOrder != 2 {
		t.Fatalf("sibling orders = %d, %d; want 1, 2", *s1.SubtaskOrder, *s2.SubtaskOrder)
	}

	subs := db.SubtasksOf("task-1")
	if len(subs) != 3 || subs[0].ID != res.Task.ID {
		t.Fatalf("new subtask should display first")
	}
}

func TestAddSubtask_RejectsNesting(t *testing.T) {
	db := testDB()
	s := testStore(t)
	addSubtaskFixture(db, "task-s1", "task-1", 0, model.StatusTodo)

	if _, err := AddSubtask(db, s, "prof-alice", "task-s1", "grandchild"); !errors.Is(err, ErrParentIsSubtask) {
		t.Fatalf("expected ErrParentIsSubtask, got %v", err)
	}
}

func TestAddSubtask_EmptyTitle(t *testing.T) {
	db := testDB()
	s := testStore(t)
	if _, err := AddSubtask(db, s, "prof-alice", "task-1", "   "); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
}

func TestReorderSubtasks_SpliceRenumbersDense(t *testing.T) {
	db := testDB()
	// Sparse orders on purpose: 0, 5, 9.
	addSubtaskFixture(db, "task-s1", "task-1", 0, model.StatusTodo)
	addSubtaskFixture(db, "task-s2", "task-1", 5, model.StatusTodo)
	addSubtaskFixture(db, "task-s3", "task-1", 9, model.StatusTodo)

	res, err := ReorderSubtasks(db, "prof-bob", "task-1", 0, 2)
	if err != nil {
		t.Fatalf("ReorderSubtasks: %v", err)
	}
	if !res.Changed {
		t.Fatalf("expected Changed")
	}

	subs := db.SubtasksOf("task-1")
	wantIDs := []string{"task-s2", "task-s3", "task-s1"}
	for i, want := range wantIDs {
		if subs[i].ID != want {
			t.Fatalf("position %d = %s, want %s", i, subs[i].ID, want)
		}
		if subs[i].SubtaskOrder == nil || *subs[i].SubtaskOrder != i {
			t.Fatalf("order at %d = %v, want dense %d", i, subs[i].SubtaskOrder, i)
		}
	}
}

func TestReorderSubtasks_SourceOutOfRange(t *testing.T) {
	db := testDB()
	addSubtaskFixture(db, "task-s1", "task-1", 0, model.StatusTodo)

	if _, err := ReorderSubtasks(db, "prof-alice", "task-1", 3, 0); err == nil {
		t.Fatalf("expected error for out-of-range source")
	}
	// Error path must leave the order untouched.
	s1, _ := db.FindTask("task-s1")
	if *s1.SubtaskOrder != 0 {
		t.Fatalf("order mutated on failed reorder")
	}
}

func TestReorderSubtasks_NoSubtasks(t *testing.T) {
	db := testDB()
	if _, err := ReorderSubtasks(db, "prof-alice", "task-1", 0, 0); err == nil {
		t.Fatalf("expected error when task has no subtasks")
	}
}

func TestDeleteSubtask_RenumbersRemaining(t *testing.T) {
	db := testDB()
	addSubtaskFixture(db, "task-s1", "task-1", 0, model.StatusTodo)
	addSubtaskFixture(db, "task-s2", "task-1", 1, model.StatusTodo)
	addSubtaskFixture(db, "task-s3", "task-1", 2, model.StatusTodo)

	if _, err := DeleteTask(db, "prof-alice", "task-s2"); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}

	subs := db.SubtasksOf("task-1")
	if len(subs) != 2 {
		t.Fatalf("expected 2 remaining subtasks, got %d", len(subs))
	}
	if *subs[0].SubtaskOrder != 0 || *subs[1].SubtaskOrder != 1 {
		t.Fatalf("orders = %d, %d; want dense 0, 1", *subs[0].SubtaskOrder, *subs[1].SubtaskOrder)
	}
	if subs[0].ID != "task-s1" || subs[1].ID != "task-s3" {
		t.Fatalf("relative order changed: %s, %s", subs[0].ID, subs[1].ID)
	}
}

func TestDeleteTask_PayloadNamesDeletedTask(t *testing.T) {
	db := testDB()
	db.Tasks = append(db.Tasks, model.Task{
		ID: "task-2", ProjectID: "proj-1", Title: "Survivor",
		Status: model.StatusTodo, Priority: model.PriorityMedium,
		KanbanColumn: "to-do", CreatedBy: "prof-alice",
	})

	res, err := DeleteTask(db, "prof-alice", "task-1")
	if err != nil || !res.Changed {
		t.Fatalf("DeleteTask: %v", err)
	}
	if got := res.ActivityPayload["title"]; got != "Ship the thing" {
		t.Fatalf("activity payload title = %q, want %q", got, "Ship the thing")
	}
	if len(db.Tasks) != 1 || db.Tasks[0].ID != "task-2" {
		t.Fatalf("expected only task-2 to survive")
	}
}

func TestCompletionPercent(t *testing.T) {
	db := testDB()
	addSubtaskFixture(db, "task-s1", "task-1", 0, model.StatusDone)
	addSubtaskFixture(db, "task-s2", "task-1", 1, model.StatusTodo)
	addSubtaskFixture(db, "task-s3", "task-1", 2, model.StatusDone)

	if got := db.CompletionPercent("task-1"); got != 66 {
		t.Fatalf("CompletionPercent = %d, want 66", got)
	}
	if got := db.CompletionPercent("task-none"); got != 0 {
		t.Fatalf("CompletionPercent with no subtasks = %d, want 0", got)
	}
}
