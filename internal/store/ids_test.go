package store

import (
	"strings"
	"testing"

	"taskdeck-cli/internal/model"
)

func TestNewRandomID_Shape(t *testing.T) {
	id, err := newRandomID("task")
	if err != nil {
		t.Fatalf("newRandomID: %v", err)
	}
	if !strings.HasPrefix(id, "task-") {
		t.Fatalf("expected task prefix, got %q", id)
	}
	suffix := strings.TrimPrefix(id, "task-")
	if len(suffix) != 8 {
		t.Fatalf("suffix len = %d, want 8 (%q)", len(suffix), id)
	}
	if suffix != strings.ToLower(suffix) {
		t.Fatalf("suffix should be lowercase: %q", id)
	}
}

func TestNextID_NoDuplicates(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	db := &DB{Version: 1}

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := s.NextID(db, "cmt")
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
		// Record it the way callers do, so collision checking has targets.
		db.Comments = append(db.Comments, model.Comment{ID: id})
	}
}
