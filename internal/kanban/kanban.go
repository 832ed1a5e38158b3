// Package kanban owns the fixed status↔column lookup table.
//
// Status and kanban column are two persisted representations of the same
// logical state. Writers must never set one without the other; the mutate
// package funnels every such write through this table.
package kanban

import (
	"fmt"
	"strings"

	"taskdeck-cli/internal/model"
)

// Column is a board column identifier. Column ids mirror status ids except
// for todo, whose column id is "to-do".
type Column string

const (
	ColumnTodo       Column = "to-do"
	ColumnInProgress Column = "in-progress"
	ColumnReview     Column = "review"
	ColumnDone       Column = "done"
)

// Columns lists the board columns in display order.
func Columns() []Column {
	return []Column{ColumnTodo, ColumnInProgress, ColumnReview, ColumnDone}
}

// Statuses lists the task statuses in board order.
func Statuses() []model.Status {
	return []model.Status{model.StatusTodo, model.StatusInProgress, model.StatusReview, model.StatusDone}
}

var statusToColumn = map[model.Status]Column{
	model.StatusTodo:       ColumnTodo,
	model.StatusInProgress: ColumnInProgress,
	model.StatusReview:     ColumnReview,
	model.StatusDone:       ColumnDone,
}

var columnToStatus = map[Column]model.Status{
	ColumnTodo:       model.StatusTodo,
	ColumnInProgress: model.StatusInProgress,
	ColumnReview:     model.StatusReview,
	ColumnDone:       model.StatusDone,
}

var columnLabels = map[Column]string{
	ColumnTodo:       "To Do",
	ColumnInProgress: "In Progress",
	ColumnReview:     "Review",
	ColumnDone:       "Done",
}

// ColumnForStatus maps a status to its board column. Unknown statuses map to
// the todo column so a write never carries an undefined column value.
func ColumnForStatus(s model.Status) Column {
	if c, ok := statusToColumn[s]; ok {
		return c
	}
	return ColumnTodo
}

// StatusForColumn is the inverse lookup, with the same todo fallback.
func StatusForColumn(c Column) model.Status {
	if s, ok := columnToStatus[normalizeColumnID(c)]; ok {
		return s
	}
	return model.StatusTodo
}

// Label returns the display label for a column.
func Label(c Column) string {
	if l, ok := columnLabels[normalizeColumnID(c)]; ok {
		return l
	}
	return columnLabels[ColumnTodo]
}

func normalizeColumnID(c Column) Column {
	v := Column(strings.ToLower(strings.TrimSpace(string(c))))
	if v == "todo" {
		return ColumnTodo
	}
	return v
}

// ParseStatus normalizes user input to a known status.
func ParseStatus(s string) (model.Status, error) {
	v := model.Status(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case model.StatusTodo, model.StatusInProgress, model.StatusReview, model.StatusDone:
		return v, nil
	case "inprogress", "in_progress", "doing":
		return model.StatusInProgress, nil
	default:
		return "", fmt.Errorf("invalid status: %q (expected todo|in-progress|review|done)", s)
	}
}

// ParseColumn normalizes user input (id or label) to a known column.
func ParseColumn(s string) (Column, error) {
	v := normalizeColumnID(Column(s))
	if _, ok := columnToStatus[v]; ok {
		return v, nil
	}
	// Accept display labels too; board drag targets arrive as labels.
	for c, l := range columnLabels {
		if strings.EqualFold(strings.TrimSpace(s), l) {
			return c, nil
		}
	}
	return "", fmt.Errorf("invalid kanban column: %q", s)
}

// ParsePriority normalizes user input to a known priority.
func ParsePriority(s string) (model.Priority, error) {
	v := model.Priority(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case model.PriorityLow, model.PriorityMedium, model.PriorityHigh, model.PriorityCritical:
		return v, nil
	case "":
		return model.PriorityMedium, nil
	default:
		return "", fmt.Errorf("invalid priority: %q (expected low|medium|high|critical)", s)
	}
}
