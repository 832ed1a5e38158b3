package mutate

import (
	"errors"
	"testing"
	"time"

	"taskdeck-cli/internal/model"
	"taskdeck-cli/internal/thread"
)

func TestAddComment_AndReply(t *testing.T) {
	db := testDB()
	s := testStore(t)

	root, err := AddComment(db, s, "prof-alice", AddCommentArgs{TaskID: "task-1", Body: "first"})
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	reply, err := AddComment(db, s, "prof-bob", AddCommentArgs{
		TaskID: "task-1", Body: "agreed", ReplyToID: root.Comment.ID,
	})
	if err != nil {
		t.Fatalf("AddComment reply: %v", err)
	}
	if reply.Comment.ReplyToID == nil || *reply.Comment.ReplyToID != root.Comment.ID {
		t.Fatalf("reply linkage wrong")
	}

	forest := thread.BuildOldestFirst(db.CommentsForTask("task-1"))
	if len(forest) != 1 || len(forest[0].Replies) != 1 {
		t.Fatalf("expected one root with one reply")
	}
	if got := thread.Count(forest); got != 2 {
		t.Fatalf("Count = %d, want 2", got)
	}
}

func TestAddComment_ReplyToMissingParent(t *testing.T) {
	db := testDB()
	s := testStore(t)

	var nf NotFoundError
	_, err := AddComment(db, s, "prof-alice", AddCommentArgs{
		TaskID: "task-1", Body: "hi", ReplyToID: "cmt-missing",
	})
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestAddComment_ReplyAcrossTasks(t *testing.T) {
	db := testDB()
	s := testStore(t)
	db.Tasks = append(db.Tasks, model.Task{
		ID: "task-2", ProjectID: "proj-1", Title: "Other",
		Status: model.StatusTodo, KanbanColumn: "to-do",
		CreatedBy: "prof-alice", CreatedAt: time.Now().UTC(),
	})
	db.MarkDirty()

	root, err := AddComment(db, s, "prof-alice", AddCommentArgs{TaskID: "task-1", Body: "on task one"})
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	_, err = AddComment(db, s, "prof-alice", AddCommentArgs{
		TaskID: "task-2", Body: "cross", ReplyToID: root.Comment.ID,
	})
	if !errors.Is(err, ErrReplyAcrossTasks) {
		t.Fatalf("expected ErrReplyAcrossTasks, got %v", err)
	}
}

func TestAddComment_MentionNotifies(t *testing.T) {
	db := testDB()
	s := testStore(t)

	_, err := AddComment(db, s, "prof-alice", AddCommentArgs{
		TaskID: "task-1", Body: "ping @bob", Mentions: []string{"prof-bob", "prof-alice"},
	})
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}

	// Bob is notified; Alice mentioned herself and is not.
	if got := db.NotificationsFor("prof-bob", true); len(got) != 1 || got[0].Kind != "mention" {
		t.Fatalf("bob notifications = %+v", got)
	}
	if got := db.NotificationsFor("prof-alice", true); len(got) != 0 {
		t.Fatalf("self-mention should not notify, got %+v", got)
	}
}

func TestAddComment_UnknownMention(t *testing.T) {
	db := testDB()
	s := testStore(t)
	var nf NotFoundError
	_, err := AddComment(db, s, "prof-alice", AddCommentArgs{
		TaskID: "task-1", Body: "hi", Mentions: []string{"prof-ghost"},
	})
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError for unknown mention, got %v", err)
	}
}

func TestAddComment_NonMemberDenied(t *testing.T) {
	db := testDB()
	s := testStore(t)
	var pe PermissionError
	_, err := AddComment(db, s, "prof-eve", AddCommentArgs{TaskID: "task-1", Body: "hi"})
	if !errors.As(err, &pe) {
		t.Fatalf("expected PermissionError, got %v", err)
	}
}

func TestEditComment_AuthorOnly(t *testing.T) {
	db := testDB()
	s := testStore(t)
	root, _ := AddComment(db, s, "prof-bob", AddCommentArgs{TaskID: "task-1", Body: "draft"})

	// Workspace admin is still not the author.
	var pe PermissionError
	if _, err := EditComment(db, "prof-alice", root.Comment.ID, "rewritten"); !errors.As(err, &pe) {
		t.Fatalf("expected PermissionError for non-author edit, got %v", err)
	}

	res, err := EditComment(db, "prof-bob", root.Comment.ID, "final")
	if err != nil {
		t.Fatalf("EditComment: %v", err)
	}
	if !res.Changed || !res.Comment.Edited || res.Comment.EditedAt == nil {
		t.Fatalf("edit flags not set: %+v", res.Comment)
	}
	if res.Comment.Body != "final" {
		t.Fatalf("body = %q", res.Comment.Body)
	}
}

func TestEditComment_SameBodyIsNoOp(t *testing.T) {
	db := testDB()
	s := testStore(t)
	root, _ := AddComment(db, s, "prof-bob", AddCommentArgs{TaskID: "task-1", Body: "same"})

	res, err := EditComment(db, "prof-bob", root.Comment.ID, "same")
	if err != nil {
		t.Fatalf("EditComment: %v", err)
	}
	if res.Changed || res.Comment.Edited {
		t.Fatalf("identical body should not mark edited")
	}
}

func TestDeleteComment_RepliesBecomeRoots(t *testing.T) {
	db := testDB()
	s := testStore(t)
	root, _ := AddComment(db, s, "prof-bob", AddCommentArgs{TaskID: "task-1", Body: "root"})
	reply, _ := AddComment(db, s, "prof-alice", AddCommentArgs{
		TaskID: "task-1", Body: "reply", ReplyToID: root.Comment.ID,
	})

	if _, err := DeleteComment(db, "prof-bob", root.Comment.ID); err != nil {
		t.Fatalf("DeleteComment: %v", err)
	}

	forest := thread.BuildOldestFirst(db.CommentsForTask("task-1"))
	if len(forest) != 1 || forest[0].Comment.ID != reply.Comment.ID {
		t.Fatalf("orphaned reply should surface as a root")
	}
	if len(forest[0].Replies) != 0 {
		t.Fatalf("orphaned root should have no replies")
	}
}
