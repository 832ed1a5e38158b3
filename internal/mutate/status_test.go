package mutate

import (
	"errors"
	"testing"

	"taskdeck-cli/internal/kanban"
	"taskdeck-cli/internal/model"
)

func TestSetTaskStatus_WritesColumnWithStatus(t *testing.T) {
	db := testDB()

	res, err := SetTaskStatus(db, "prof-bob", "task-1", model.StatusInProgress)
	if err != nil {
		t.Fatalf("SetTaskStatus: %v", err)
	}
	if !res.Changed {
		t.Fatalf("expected Changed")
	}
	got, _ := db.FindTask("task-1")
	if got.Status != model.StatusInProgress || got.KanbanColumn != "in-progress" {
		t.Fatalf("status/column = %s/%s", got.Status, got.KanbanColumn)
	}
	if res.ActivityType != "task.set_status" {
		t.Fatalf("activity type = %s", res.ActivityType)
	}
}

func TestSetTaskStatus_NoOpWhenUnchanged(t *testing.T) {
	db := testDB()
	res, err := SetTaskStatus(db, "prof-alice", "task-1", model.StatusTodo)
	if err != nil {
		t.Fatalf("SetTaskStatus: %v", err)
	}
	if res.Changed {
		t.Fatalf("same status should be a no-op")
	}
}

func TestSetTaskStatus_RepairsDriftedColumn(t *testing.T) {
	db := testDB()
	// Column drifted from status (bad import, older writer). Re-setting the
	// same status must rewrite the column from the table.
	db.Tasks[0].KanbanColumn = "review"

	res, err := SetTaskStatus(db, "prof-alice", "task-1", model.StatusTodo)
	if err != nil {
		t.Fatalf("SetTaskStatus: %v", err)
	}
	if !res.Changed {
		t.Fatalf("drifted column should count as a change")
	}
	got, _ := db.FindTask("task-1")
	if got.KanbanColumn != "to-do" {
		t.Fatalf("column = %s, want to-do", got.KanbanColumn)
	}
}

func TestSetTaskStatus_Errors(t *testing.T) {
	db := testDB()

	var nf NotFoundError
	if _, err := SetTaskStatus(db, "prof-alice", "task-nope", model.StatusDone); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}

	var pe PermissionError
	if _, err := SetTaskStatus(db, "prof-eve", "task-1", model.StatusDone); !errors.As(err, &pe) {
		t.Fatalf("expected PermissionError for non-member, got %v", err)
	}
}

func TestMoveTaskToColumn_SetsStatusAndResetsPosition(t *testing.T) {
	db := testDB()
	db.Tasks[0].KanbanPosition = 7

	res, err := MoveTaskToColumn(db, "prof-bob", "task-1", kanban.ColumnDone)
	if err != nil {
		t.Fatalf("MoveTaskToColumn: %v", err)
	}
	if !res.Changed {
		t.Fatalf("expected Changed")
	}
	got, _ := db.FindTask("task-1")
	if got.Status != model.StatusDone || got.KanbanColumn != "done" {
		t.Fatalf("status/column = %s/%s", got.Status, got.KanbanColumn)
	}
	if got.KanbanPosition != 0 {
		t.Fatalf("position = %d, want 0 (moved last)", got.KanbanPosition)
	}
}

func TestMoveTaskToColumn_UnknownColumnFallsBackToTodo(t *testing.T) {
	db := testDB()
	db.Tasks[0].Status = model.StatusDone
	db.Tasks[0].KanbanColumn = "done"

	res, err := MoveTaskToColumn(db, "prof-alice", "task-1", "icebox")
	if err != nil {
		t.Fatalf("MoveTaskToColumn: %v", err)
	}
	if !res.Changed {
		t.Fatalf("expected Changed")
	}
	got, _ := db.FindTask("task-1")
	if got.Status != model.StatusTodo || got.KanbanColumn != "to-do" {
		t.Fatalf("fallback status/column = %s/%s", got.Status, got.KanbanColumn)
	}
}
