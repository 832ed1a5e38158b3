package mutate

import (
	"errors"
	"strings"
	"time"

	"taskdeck-cli/internal/kanban"
	"taskdeck-cli/internal/model"
	"taskdeck-cli/internal/order"
	"taskdeck-cli/internal/perm"
	"taskdeck-cli/internal/store"
)

var ErrParentIsSubtask = errors.New("subtasks cannot nest: parent is itself a subtask")

// AddSubtask inserts a new subtask at the top of its parent's list: existing
// siblings shift down one, the newcomer takes order 0. All order writes land
// in the same state save, so there is no window where the shift is applied
// without the insert.
func AddSubtask(db *store.DB, s store.Store, actorID, parentTaskID, title string) (TaskResult, error) {
	actorID = strings.TrimSpace(actorID)
	parentTaskID = strings.TrimSpace(parentTaskID)
	title = strings.TrimSpace(title)

	parent, ok := db.FindTask(parentTaskID)
	if !ok {
		return TaskResult{}, NotFoundError{Kind: "task", ID: parentTaskID}
	}
	if parent.IsSubtask {
		return TaskResult{}, ErrParentIsSubtask
	}
	if !perm.CanWriteTasks(db, actorID, parent.ProjectID) {
		return TaskResult{}, PermissionError{ProfileID: actorID, Action: "edit", EntityID: parentTaskID}
	}
	if title == "" {
		return TaskResult{}, ErrEmptyTitle
	}

	applyOrders(db, order.PlanInsertTop(db.SubtasksOf(parentTaskID)))

	now := time.Now().UTC()
	zero := 0
	pid := parent.ID
	t := model.Task{
		ID:           s.NextID(db, "task"),
		ProjectID:    parent.ProjectID,
		Title:        title,
		Status:       model.StatusTodo,
		Priority:     model.PriorityMedium,
		ParentTaskID: &pid,
		IsSubtask:    true,
		SubtaskOrder: &zero,
		KanbanColumn: string(kanban.ColumnForStatus(model.StatusTodo)),
		CreatedBy:    actorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	db.Tasks = append(db.Tasks, t)
	db.MarkDirty()

	created, _ := db.FindTask(t.ID)
	return TaskResult{
		Task:         created,
		Changed:      true,
		ActivityType: "task.add_subtask",
		ActivityPayload: map[string]any{
			"parent": parentTaskID,
			"title":  title,
		},
	}, nil
}

// ReorderSubtasks moves the subtask at srcIdx (in current display order) to
// dstIdx and renumbers every sibling to its new index. On error the state is
// untouched; callers that fail the subsequent save should reload rather than
// trust the in-memory order.
func ReorderSubtasks(db *store.DB, actorID, parentTaskID string, srcIdx, dstIdx int) (TaskResult, error) {
	actorID = strings.TrimSpace(actorID)
	parentTaskID = strings.TrimSpace(parentTaskID)

	parent, ok := db.FindTask(parentTaskID)
	if !ok {
		return TaskResult{}, NotFoundError{Kind: "task", ID: parentTaskID}
	}
	if !perm.CanWriteTasks(db, actorID, parent.ProjectID) {
		return TaskResult{}, PermissionError{ProfileID: actorID, Action: "edit", EntityID: parentTaskID}
	}

	subs := db.SubtasksOf(parentTaskID)
	if len(subs) == 0 {
		return TaskResult{}, errors.New("task has no subtasks")
	}

	orders, err := order.PlanReorder(subs, srcIdx, dstIdx)
	if err != nil {
		return TaskResult{}, err
	}
	applyOrders(db, orders)

	return TaskResult{
		Task:         parent,
		Changed:      true,
		ActivityType: "task.reorder_subtasks",
		ActivityPayload: map[string]any{
			"parent": parentTaskID,
			"from":   srcIdx,
			"to":     dstIdx,
		},
	}, nil
}
