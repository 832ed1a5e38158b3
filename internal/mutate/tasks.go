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

var ErrEmptyTitle = errors.New("task title is empty")

type CreateTaskArgs struct {
	ProjectID   string
	Title       string
	Description string
	Status      model.Status
	Priority    model.Priority
	AssigneeID  string
	DueDate     string // YYYY-MM-DD, optional
}

type TaskResult struct {
	Task            *model.Task
	Changed         bool
	ActivityType    string
	ActivityPayload map[string]any
}

// CreateTask creates a top-level task. Status and kanban_column are written
// together from the fixed table; a task never lands with one and not the
// other. Callers save and append the returned activity.
func CreateTask(db *store.DB, s store.Store, actorID string, args CreateTaskArgs) (TaskResult, error) {
	actorID = strings.TrimSpace(actorID)
	projectID := strings.TrimSpace(args.ProjectID)
	if db == nil || actorID == "" {
		return TaskResult{}, errors.New("missing actor")
	}
	if _, ok := db.FindProject(projectID); !ok {
		return TaskResult{}, NotFoundError{Kind: "project", ID: projectID}
	}
	if !perm.CanWriteTasks(db, actorID, projectID) {
		return TaskResult{}, PermissionError{ProfileID: actorID, Action: "create tasks in", EntityID: projectID}
	}
	title := strings.TrimSpace(args.Title)
	if title == "" {
		return TaskResult{}, ErrEmptyTitle
	}

	status := args.Status
	if status == "" {
		status = model.StatusTodo
	}
	priority := args.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	now := time.Now().UTC()
	t := model.Task{
		ID:           s.NextID(db, "task"),
		ProjectID:    projectID,
		Title:        title,
		Description:  strings.TrimSpace(args.Description),
		Status:       status,
		Priority:     priority,
		KanbanColumn: string(kanban.ColumnForStatus(status)),
		CreatedBy:    actorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if v := strings.TrimSpace(args.AssigneeID); v != "" {
		if _, ok := db.FindProfile(v); !ok {
			return TaskResult{}, NotFoundError{Kind: "profile", ID: v}
		}
		t.AssigneeID = &v
	}
	if v := strings.TrimSpace(args.DueDate); v != "" {
		if _, err := time.Parse("2006-01-02", v); err != nil {
			return TaskResult{}, errors.New("invalid due date (expected YYYY-MM-DD)")
		}
		t.DueDate = &v
	}

	db.Tasks = append(db.Tasks, t)
	db.MarkDirty()

	created, _ := db.FindTask(t.ID)
	res := TaskResult{
		Task:         created,
		Changed:      true,
		ActivityType: "task.create",
		ActivityPayload: map[string]any{
			"title":  t.Title,
			"status": string(t.Status),
			"column": t.KanbanColumn,
		},
	}
	if t.AssigneeID != nil && *t.AssigneeID != actorID {
		notifyAssigned(db, s, *created)
	}
	return res, nil
}

// AssignTask sets or clears the assignee. An empty assigneeID clears it.
func AssignTask(db *store.DB, s store.Store, actorID, taskID, assigneeID string) (TaskResult, error) {
	actorID = strings.TrimSpace(actorID)
	taskID = strings.TrimSpace(taskID)
	assigneeID = strings.TrimSpace(assigneeID)

	t, ok := db.FindTask(taskID)
	if !ok {
		return TaskResult{}, NotFoundError{Kind: "task", ID: taskID}
	}
	if !perm.CanWriteTasks(db, actorID, t.ProjectID) {
		return TaskResult{}, PermissionError{ProfileID: actorID, Action: "edit", EntityID: taskID}
	}

	prev := ""
	if t.AssigneeID != nil {
		prev = *t.AssigneeID
	}
	if prev == assigneeID {
		return TaskResult{Task: t, Changed: false}, nil
	}

	if assigneeID == "" {
		t.AssigneeID = nil
	} else {
		if _, ok := db.FindProfile(assigneeID); !ok {
			return TaskResult{}, NotFoundError{Kind: "profile", ID: assigneeID}
		}
		t.AssigneeID = &assigneeID
	}
	t.UpdatedAt = time.Now().UTC()
	db.MarkDirty()

	if assigneeID != "" && assigneeID != actorID {
		notifyAssigned(db, s, *t)
	}
	return TaskResult{
		Task:            t,
		Changed:         true,
		ActivityType:    "task.assign",
		ActivityPayload: map[string]any{"from": prev, "to": assigneeID},
	}, nil
}

type UpdateTaskArgs struct {
	Title       *string
	Description *string
	Priority    *model.Priority
	DueDate     *string // YYYY-MM-DD; empty string clears
}

// UpdateTask edits the descriptive fields. Status is not settable here; use
// SetTaskStatus so the kanban column stays paired.
func UpdateTask(db *store.DB, actorID, taskID string, args UpdateTaskArgs) (TaskResult, error) {
	actorID = strings.TrimSpace(actorID)
	taskID = strings.TrimSpace(taskID)

	t, ok := db.FindTask(taskID)
	if !ok {
		return TaskResult{}, NotFoundError{Kind: "task", ID: taskID}
	}
	if !perm.CanWriteTasks(db, actorID, t.ProjectID) {
		return TaskResult{}, PermissionError{ProfileID: actorID, Action: "edit", EntityID: taskID}
	}

	changed := false
	fields := map[string]any{}
	if args.Title != nil {
		title := strings.TrimSpace(*args.Title)
		if title == "" {
			return TaskResult{}, ErrEmptyTitle
		}
		if title != t.Title {
			t.Title = title
			fields["title"] = title
			changed = true
		}
	}
	if args.Description != nil {
		desc := strings.TrimSpace(*args.Description)
		if desc != t.Description {
			t.Description = desc
			fields["description"] = true
			changed = true
		}
	}
	if args.Priority != nil && *args.Priority != t.Priority {
		t.Priority = *args.Priority
		fields["priority"] = string(*args.Priority)
		changed = true
	}
	if args.DueDate != nil {
		due := strings.TrimSpace(*args.DueDate)
		if due == "" {
			if t.DueDate != nil {
				t.DueDate = nil
				fields["dueDate"] = ""
				changed = true
			}
		} else {
			if _, err := time.Parse("2006-01-02", due); err != nil {
				return TaskResult{}, errors.New("invalid due date (expected YYYY-MM-DD)")
			}
			if t.DueDate == nil || *t.DueDate != due {
				t.DueDate = &due
				fields["dueDate"] = due
				changed = true
			}
		}
	}

	if !changed {
		return TaskResult{Task: t, Changed: false}, nil
	}
	t.UpdatedAt = time.Now().UTC()
	db.MarkDirty()

	return TaskResult{
		Task:            t,
		Changed:         true,
		ActivityType:    "task.update",
		ActivityPayload: fields,
	}, nil
}

// DeleteTask removes a task. Deleting a parent cascades to its subtasks and
// comments; deleting a subtask renumbers the remaining siblings densely.
func DeleteTask(db *store.DB, actorID, taskID string) (TaskResult, error) {
	actorID = strings.TrimSpace(actorID)
	taskID = strings.TrimSpace(taskID)

	t, ok := db.FindTask(taskID)
	if !ok {
		return TaskResult{}, NotFoundError{Kind: "task", ID: taskID}
	}
	if !perm.CanWriteTasks(db, actorID, t.ProjectID) {
		return TaskResult{}, PermissionError{ProfileID: actorID, Action: "delete", EntityID: taskID}
	}

	// Capture before the compaction below reuses t's slot in db.Tasks.
	title := t.Title
	parentID := ""
	if t.ParentTaskID != nil {
		parentID = strings.TrimSpace(*t.ParentTaskID)
	}

	drop := map[string]bool{taskID: true}
	for _, sub := range db.SubtasksOf(taskID) {
		drop[sub.ID] = true
	}

	tasks := db.Tasks[:0]
	for _, x := range db.Tasks {
		if !drop[x.ID] {
			tasks = append(tasks, x)
		}
	}
	db.Tasks = tasks

	comments := db.Comments[:0]
	for _, c := range db.Comments {
		if !drop[c.TaskID] {
			comments = append(comments, c)
		}
	}
	db.Comments = comments
	db.MarkDirty()

	if parentID != "" {
		applyOrders(db, order.PlanRenumber(db.SubtasksOf(parentID)))
	}

	return TaskResult{
		Changed:         true,
		ActivityType:    "task.delete",
		ActivityPayload: map[string]any{"title": title, "parent": parentID},
	}, nil
}

func applyOrders(db *store.DB, orders map[string]int) {
	for id, ord := range orders {
		if t, ok := db.FindTask(id); ok {
			o := ord
			t.SubtaskOrder = &o
			t.UpdatedAt = time.Now().UTC()
		}
	}
	db.MarkDirty()
}

func notifyAssigned(db *store.DB, s store.Store, t model.Task) {
	if t.AssigneeID == nil {
		return
	}
	db.Notifications = append(db.Notifications, model.Notification{
		ID:        s.NextID(db, "ntf"),
		ProfileID: *t.AssigneeID,
		Kind:      "assigned",
		Message:   "You were assigned: " + t.Title,
		TaskID:    t.ID,
		ProjectID: t.ProjectID,
		CreatedAt: time.Now().UTC(),
	})
	db.MarkDirty()
}
