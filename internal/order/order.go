// Package order plans subtask_order rewrites for sibling sets.
//
// subtask_order is the single source of truth for display order; callers must
// resort by it after every change and never trust slice position. Orders are
// not assumed dense: deletes and interrupted writes can leave gaps, so every
// plan here derives rank from relative position, not from the stored values.
package order

import (
	"errors"
	"sort"
	"strings"

	"taskdeck-cli/internal/model"
)

// SortSubtasks sorts siblings in place by ascending subtask_order, ties
// broken by CreatedAt then ID. Tasks without an order sort last.
func SortSubtasks(subs []*model.Task) {
	sort.SliceStable(subs, func(i, j int) bool {
		return compareSubtasks(subs[i], subs[j]) < 0
	})
}

func compareSubtasks(a, b *model.Task) int {
	oa, oka := orderOf(a)
	ob, okb := orderOf(b)
	switch {
	case oka && okb && oa != ob:
		if oa < ob {
			return -1
		}
		return 1
	case oka != okb:
		if oka {
			return -1
		}
		return 1
	}
	if a.CreatedAt.Before(b.CreatedAt) {
		return -1
	}
	if a.CreatedAt.After(b.CreatedAt) {
		return 1
	}
	return strings.Compare(a.ID, b.ID)
}

func orderOf(t *model.Task) (int, bool) {
	if t == nil || t.SubtaskOrder == nil {
		return 0, false
	}
	return *t.SubtaskOrder, true
}

// PlanInsertTop returns the order each existing sibling should take when a
// new subtask is inserted at the top: everyone shifts down one, the newcomer
// takes 0. The shift preserves current relative rank even when stored orders
// have gaps or duplicates.
func PlanInsertTop(siblings []*model.Task) map[string]int {
	cur := append([]*model.Task{}, siblings...)
	SortSubtasks(cur)

	out := make(map[string]int, len(cur))
	for i, t := range cur {
		if t == nil || strings.TrimSpace(t.ID) == "" {
			continue
		}
		out[t.ID] = i + 1
	}
	return out
}

// PlanReorder splices the displayed sibling list from srcIdx to dstIdx and
// returns the dense order (index position) every sibling should take.
// Indexes refer to the current display order, i.e. the list sorted by
// SortSubtasks.
func PlanReorder(siblings []*model.Task, srcIdx, dstIdx int) (map[string]int, error) {
	cur := append([]*model.Task{}, siblings...)
	SortSubtasks(cur)

	if srcIdx < 0 || srcIdx >= len(cur) {
		return nil, errors.New("reorder: source index out of range")
	}
	if dstIdx < 0 {
		dstIdx = 0
	}
	if dstIdx >= len(cur) {
		dstIdx = len(cur) - 1
	}

	moved := cur[srcIdx]
	rest := append(append([]*model.Task{}, cur[:srcIdx]...), cur[srcIdx+1:]...)
	final := make([]*model.Task, 0, len(cur))
	final = append(final, rest[:dstIdx]...)
	final = append(final, moved)
	final = append(final, rest[dstIdx:]...)

	out := make(map[string]int, len(final))
	for i, t := range final {
		if t == nil || strings.TrimSpace(t.ID) == "" {
			continue
		}
		out[t.ID] = i
	}
	return out, nil
}

// PlanRenumber compacts the current relative order into dense 0..n-1,
// typically after a sibling is deleted.
func PlanRenumber(siblings []*model.Task) map[string]int {
	cur := append([]*model.Task{}, siblings...)
	SortSubtasks(cur)

	out := make(map[string]int, len(cur))
	for i, t := range cur {
		if t == nil || strings.TrimSpace(t.ID) == "" {
			continue
		}
		out[t.ID] = i
	}
	return out
}
