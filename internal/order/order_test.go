package order

import (
	"testing"
	"time"

	"taskdeck-cli/internal/model"
)

func sub(id string, ord int, at time.Time) *model.Task {
	o := ord
	return &model.Task{ID: id, IsSubtask: true, SubtaskOrder: &o, CreatedAt: at}
}

func TestSortSubtasks_NilOrderSortsLast(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a := sub("task-a", 1, t0)
	b := &model.Task{ID: "task-b", IsSubtask: true, CreatedAt: t0}
	c := sub("task-c", 0, t0)

	subs := []*model.Task{a, b, c}
	SortSubtasks(subs)
	for i, want := range []string{"task-c", "task-a", "task-b"} {
		if subs[i].ID != want {
			t.Fatalf("position %d = %s, want %s", i, subs[i].ID, want)
		}
	}
}

func TestSortSubtasks_TiesByCreatedAtThenID(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a := sub("task-b", 3, t0.Add(time.Minute))
	b := sub("task-a", 3, t0)
	c := sub("task-c", 3, t0)

	subs := []*model.Task{a, b, c}
	SortSubtasks(subs)
	for i, want := range []string{"task-a", "task-c", "task-b"} {
		if subs[i].ID != want {
			t.Fatalf("position %d = %s, want %s", i, subs[i].ID, want)
		}
	}
}

func TestPlanInsertTop_ShiftsEveryoneDown(t *testing.T) {
	t0 := time.Now().UTC()
	siblings := []*model.Task{sub("task-a", 0, t0), sub("task-b", 1, t0)}

	plan := PlanInsertTop(siblings)
	if plan["task-a"] != 1 || plan["task-b"] != 2 {
		t.Fatalf("plan = %v, want task-a:1 task-b:2", plan)
	}
}

func TestPlanInsertTop_GapsPreserveRelativeRank(t *testing.T) {
	t0 := time.Now().UTC()
	// Orders with gaps: 2, 7, 9. After insert-at-top they become 1, 2, 3.
	siblings := []*model.Task{sub("task-b", 7, t0), sub("task-a", 2, t0), sub("task-c", 9, t0)}

	plan := PlanInsertTop(siblings)
	if plan["task-a"] != 1 || plan["task-b"] != 2 || plan["task-c"] != 3 {
		t.Fatalf("plan = %v", plan)
	}
}

func TestPlanInsertTop_Empty(t *testing.T) {
	if plan := PlanInsertTop(nil); len(plan) != 0 {
		t.Fatalf("plan = %v, want empty", plan)
	}
}

func TestPlanReorder_SpliceDownward(t *testing.T) {
	t0 := time.Now().UTC()
	siblings := []*model.Task{
		sub("task-a", 0, t0), sub("task-b", 1, t0), sub("task-c", 2, t0), sub("task-d", 3, t0),
	}

	plan, err := PlanReorder(siblings, 0, 2)
	if err != nil {
		t.Fatalf("PlanReorder: %v", err)
	}
	want := map[string]int{"task-b": 0, "task-c": 1, "task-a": 2, "task-d": 3}
	for id, ord := range want {
		if plan[id] != ord {
			t.Fatalf("plan[%s] = %d, want %d (full plan %v)", id, plan[id], ord, plan)
		}
	}
}

func TestPlanReorder_SpliceUpward(t *testing.T) {
	t0 := time.Now().UTC()
	siblings := []*model.Task{
		sub("task-a", 0, t0), sub("task-b", 1, t0), sub("task-c", 2, t0),
	}

	plan, err := PlanReorder(siblings, 2, 0)
	if err != nil {
		t.Fatalf("PlanReorder: %v", err)
	}
	want := map[string]int{"task-c": 0, "task-a": 1, "task-b": 2}
	for id, ord := range want {
		if plan[id] != ord {
			t.Fatalf("plan[%s] = %d, want %d", id, plan[id], ord)
		}
	}
}

func TestPlanReorder_SourceOutOfRange(t *testing.T) {
	t0 := time.Now().UTC()
	siblings := []*model.Task{sub("task-a", 0, t0)}
	if _, err := PlanReorder(siblings, 5, 0); err == nil {
		t.Fatalf("expected error for out-of-range source")
	}
	if _, err := PlanReorder(siblings, -1, 0); err == nil {
		t.Fatalf("expected error for negative source")
	}
}

func TestPlanReorder_DestinationClamped(t *testing.T) {
	t0 := time.Now().UTC()
	siblings := []*model.Task{sub("task-a", 0, t0), sub("task-b", 1, t0)}

	plan, err := PlanReorder(siblings, 0, 99)
	if err != nil {
		t.Fatalf("PlanReorder: %v", err)
	}
	if plan["task-b"] != 0 || plan["task-a"] != 1 {
		t.Fatalf("plan = %v, want task moved to end", plan)
	}
}

func TestPlanRenumber_CompactsGaps(t *testing.T) {
	t0 := time.Now().UTC()
	siblings := []*model.Task{sub("task-b", 5, t0), sub("task-a", 2, t0)}

	plan := PlanRenumber(siblings)
	if plan["task-a"] != 0 || plan["task-b"] != 1 {
		t.Fatalf("plan = %v", plan)
	}
}
