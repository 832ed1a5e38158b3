package thread

import (
	"testing"
	"time"

	"taskdeck-cli/internal/model"
)

func c(id, replyTo string, at time.Time) model.Comment {
	cm := model.Comment{ID: id, TaskID: "task-1", AuthorID: "prof-a", Body: "b " + id, CreatedAt: at}
	if replyTo != "" {
		cm.ReplyToID = &replyTo
	}
	return cm
}

func TestBuild_NestedChain(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	in := []model.Comment{
		c("cmt-1", "", t0),
		c("cmt-2", "cmt-1", t0.Add(time.Minute)),
		c("cmt-3", "cmt-2", t0.Add(2*time.Minute)),
		c("cmt-4", "cmt-1", t0.Add(3*time.Minute)),
	}

	forest := Build(in)
	if len(forest) != 1 {
		t.Fatalf("expected 1 root, got %d", len(forest))
	}
	root := forest[0]
	if root.Comment.ID != "cmt-1" {
		t.Fatalf("expected root cmt-1, got %s", root.Comment.ID)
	}
	if len(root.Replies) != 2 {
		t.Fatalf("expected 2 direct replies, got %d", len(root.Replies))
	}
	// Sibling replies keep input order.
	if root.Replies[0].Comment.ID != "cmt-2" || root.Replies[1].Comment.ID != "cmt-4" {
		t.Fatalf("reply order wrong: %s, %s", root.Replies[0].Comment.ID, root.Replies[1].Comment.ID)
	}
	if len(root.Replies[0].Replies) != 1 || root.Replies[0].Replies[0].Comment.ID != "cmt-3" {
		t.Fatalf("cmt-3 should nest under cmt-2")
	}
	if got := Count(forest); got != 4 {
		t.Fatalf("Count = %d, want 4", got)
	}
}

func TestBuild_OrphanReplyBecomesRoot(t *testing.T) {
	t0 := time.Now().UTC()
	in := []model.Comment{
		c("cmt-1", "", t0),
		c("cmt-2", "cmt-gone", t0.Add(time.Minute)),
	}
	forest := Build(in)
	if len(forest) != 2 {
		t.Fatalf("expected orphan promoted to root, got %d roots", len(forest))
	}
	if forest[1].Comment.ID != "cmt-2" {
		t.Fatalf("orphan should keep its input position, got %s", forest[1].Comment.ID)
	}
	if got := Count(forest); got != 2 {
		t.Fatalf("Count = %d, want 2", got)
	}
}

func TestBuild_SelfReplyIsRoot(t *testing.T) {
	forest := Build([]model.Comment{c("cmt-1", "cmt-1", time.Now())})
	if len(forest) != 1 || len(forest[0].Replies) != 0 {
		t.Fatalf("self-referential comment must not nest under itself")
	}
}

func TestBuild_PreservesRootOrder(t *testing.T) {
	t0 := time.Now().UTC()
	in := []model.Comment{
		c("cmt-a", "", t0),
		c("cmt-b", "", t0.Add(time.Second)),
		c("cmt-c", "", t0.Add(2*time.Second)),
	}
	forest := Build(in)
	if len(forest) != 3 {
		t.Fatalf("expected 3 roots, got %d", len(forest))
	}
	for i, want := range []string{"cmt-a", "cmt-b", "cmt-c"} {
		if forest[i].Comment.ID != want {
			t.Fatalf("root %d = %s, want %s", i, forest[i].Comment.ID, want)
		}
	}
}

func TestBuild_EveryCommentAppearsExactlyOnce(t *testing.T) {
	t0 := time.Now().UTC()
	in := []model.Comment{
		c("cmt-1", "", t0),
		c("cmt-2", "cmt-1", t0),
		c("cmt-3", "cmt-99", t0),
		c("cmt-4", "cmt-2", t0),
		c("cmt-5", "", t0),
	}
	forest := Build(in)
	if got := Count(forest); got != len(in) {
		t.Fatalf("Count = %d, want %d", got, len(in))
	}
	seen := map[string]int{}
	for _, row := range Flatten(forest, 0) {
		seen[row.Comment.ID]++
	}
	for _, cm := range in {
		if seen[cm.ID] != 1 {
			t.Fatalf("comment %s appears %d times", cm.ID, seen[cm.ID])
		}
	}
}

func TestBuildOldestFirst_ReversesStoreOrder(t *testing.T) {
	t0 := time.Now().UTC()
	// Store order is newest-first; the thread must come out oldest-first.
	newestFirst := []model.Comment{
		c("cmt-2", "", t0.Add(time.Minute)),
		c("cmt-1", "", t0),
	}
	forest := BuildOldestFirst(newestFirst)
	if len(forest) != 2 || forest[0].Comment.ID != "cmt-1" {
		t.Fatalf("expected cmt-1 first, got %+v", forest[0].Comment.ID)
	}
}

func TestFlatten_DepthClamp(t *testing.T) {
	t0 := time.Now().UTC()
	in := []model.Comment{
		c("cmt-1", "", t0),
		c("cmt-2", "cmt-1", t0),
		c("cmt-3", "cmt-2", t0),
		c("cmt-4", "cmt-3", t0),
	}
	rows := Flatten(Build(in), 2)
	if len(rows) != 4 {
		t.Fatalf("deep replies must still be visited, got %d rows", len(rows))
	}
	if rows[3].Depth != 2 {
		t.Fatalf("depth should clamp at 2, got %d", rows[3].Depth)
	}
	if rows[1].Depth != 1 || rows[2].Depth != 2 {
		t.Fatalf("unexpected depths: %d, %d", rows[1].Depth, rows[2].Depth)
	}
}

func TestBuild_Empty(t *testing.T) {
	if got := Build(nil); got != nil {
		t.Fatalf("expected nil forest for empty input")
	}
	if got := Count(nil); got != 0 {
		t.Fatalf("Count(nil) = %d", got)
	}
}
