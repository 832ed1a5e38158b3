package mutate

import (
	"strings"
	"time"

	"taskdeck-cli/internal/kanban"
	"taskdeck-cli/internal/model"
	"taskdeck-cli/internal/perm"
	"taskdeck-cli/internal/store"
)

// SetTaskStatus is the only way a status change reaches the state: it writes
// status and the mapped kanban_column in the same mutation, so the pair can
// never drift apart.
func SetTaskStatus(db *store.DB, actorID, taskID string, status model.Status) (TaskResult, error) {
	actorID = strings.TrimSpace(actorID)
	taskID = strings.TrimSpace(taskID)

	t, ok := db.FindTask(taskID)
	if !ok {
		return TaskResult{}, NotFoundError{Kind: "task", ID: taskID}
	}
	if !perm.CanWriteTasks(db, actorID, t.ProjectID) {
		return TaskResult{}, PermissionError{ProfileID: actorID, Action: "edit", EntityID: taskID}
	}

	prev := t.Status
	if prev == status && t.KanbanColumn == string(kanban.ColumnForStatus(status)) {
		return TaskResult{Task: t, Changed: false}, nil
	}

	t.Status = status
	t.KanbanColumn = string(kanban.ColumnForStatus(status))
	t.UpdatedAt = time.Now().UTC()
	db.MarkDirty()

	return TaskResult{
		Task:         t,
		Changed:      true,
		ActivityType: "task.set_status",
		ActivityPayload: map[string]any{
			"from":   string(prev),
			"to":     string(t.Status),
			"column": t.KanbanColumn,
		},
	}, nil
}

// MoveTaskToColumn is the inverse write: a board move looks up the column's
// status and rewrites status, kanban_column, and kanban_position (reset to 0,
// "moved last") together.
func MoveTaskToColumn(db *store.DB, actorID, taskID string, column kanban.Column) (TaskResult, error) {
	actorID = strings.TrimSpace(actorID)
	taskID = strings.TrimSpace(taskID)

	t, ok := db.FindTask(taskID)
	if !ok {
		return TaskResult{}, NotFoundError{Kind: "task", ID: taskID}
	}
	if !perm.CanWriteTasks(db, actorID, t.ProjectID) {
		return TaskResult{}, PermissionError{ProfileID: actorID, Action: "move", EntityID: taskID}
	}

	status := kanban.StatusForColumn(column)
	prevStatus := t.Status
	prevColumn := t.KanbanColumn

	t.Status = status
	t.KanbanColumn = string(kanban.ColumnForStatus(status))
	t.KanbanPosition = 0
	t.UpdatedAt = time.Now().UTC()
	db.MarkDirty()

	return TaskResult{
		Task:         t,
		Changed:      prevStatus != t.Status || prevColumn != t.KanbanColumn,
		ActivityType: "task.move_column",
		ActivityPayload: map[string]any{
			"fromColumn": prevColumn,
			"toColumn":   t.KanbanColumn,
			"status":     string(t.Status),
		},
	}, nil
}
