package mutate

import (
	"errors"
	"strings"
	"time"

	"taskdeck-cli/internal/model"
	"taskdeck-cli/internal/perm"
	"taskdeck-cli/internal/store"
)

var ErrEmptyBody = errors.New("comment body is empty")
var ErrReplyAcrossTasks = errors.New("reply must reference a comment on the same task")

type CommentResult struct {
	Comment         *model.Comment
	Changed         bool
	ActivityType    string
	ActivityPayload map[string]any
}

type AddCommentArgs struct {
	TaskID      string
	Body        string
	ContentKind model.ContentKind
	ReplyToID   string
	Mentions    []string
	Attachments []string
}

// AddComment appends a comment, optionally as a reply. Parent references can
// only point at comments that already exist on the same task, which is what
// keeps the reply graph acyclic.
func AddComment(db *store.DB, s store.Store, actorID string, args AddCommentArgs) (CommentResult, error) {
	actorID = strings.TrimSpace(actorID)
	taskID := strings.TrimSpace(args.TaskID)

	t, ok := db.FindTask(taskID)
	if !ok {
		return CommentResult{}, NotFoundError{Kind: "task", ID: taskID}
	}
	if !perm.CanWriteTasks(db, actorID, t.ProjectID) {
		return CommentResult{}, PermissionError{ProfileID: actorID, Action: "comment on", EntityID: taskID}
	}
	body := strings.TrimSpace(args.Body)
	if body == "" {
		return CommentResult{}, ErrEmptyBody
	}

	kind := args.ContentKind
	if kind == "" {
		kind = model.ContentPlain
	}

	c := model.Comment{
		ID:          s.NextID(db, "cmt"),
		TaskID:      taskID,
		AuthorID:    actorID,
		Body:        body,
		ContentKind: kind,
		CreatedAt:   time.Now().UTC(),
	}
	if p, ok := db.FindProfile(actorID); ok {
		c.AuthorName = p.Name
	}

	if replyTo := strings.TrimSpace(args.ReplyToID); replyTo != "" {
		parent, ok := db.FindComment(replyTo)
		if !ok {
			return CommentResult{}, NotFoundError{Kind: "comment", ID: replyTo}
		}
		if parent.TaskID != taskID {
			return CommentResult{}, ErrReplyAcrossTasks
		}
		c.ReplyToID = &replyTo
	}

	for _, m := range args.Mentions {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		if _, ok := db.FindProfile(m); !ok {
			return CommentResult{}, NotFoundError{Kind: "profile", ID: m}
		}
		c.Mentions = append(c.Mentions, m)
	}
	for _, f := range args.Attachments {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if _, ok := db.FindFile(f); !ok {
			return CommentResult{}, NotFoundError{Kind: "file", ID: f}
		}
		c.Attachments = append(c.Attachments, f)
	}

	db.Comments = append(db.Comments, c)
	db.MarkDirty()

	for _, m := range c.Mentions {
		if m == actorID {
			continue
		}
		db.Notifications = append(db.Notifications, model.Notification{
			ID:        s.NextID(db, "ntf"),
			ProfileID: m,
			Kind:      "mention",
			Message:   "You were mentioned on: " + t.Title,
			TaskID:    t.ID,
			ProjectID: t.ProjectID,
			CreatedAt: time.Now().UTC(),
		})
	}
	db.MarkDirty()

	saved, _ := db.FindComment(c.ID)
	return CommentResult{
		Comment:      saved,
		Changed:      true,
		ActivityType: "comment.add",
		ActivityPayload: map[string]any{
			"task":    taskID,
			"replyTo": strings.TrimSpace(args.ReplyToID),
		},
	}, nil
}

// EditComment replaces the body (author-only) and marks the comment edited.
func EditComment(db *store.DB, actorID, commentID, body string) (CommentResult, error) {
	actorID = strings.TrimSpace(actorID)
	commentID = strings.TrimSpace(commentID)

	c, ok := db.FindComment(commentID)
	if !ok {
		return CommentResult{}, NotFoundError{Kind: "comment", ID: commentID}
	}
	if !perm.CanEditComment(db, actorID, c) {
		return CommentResult{}, PermissionError{ProfileID: actorID, Action: "edit", EntityID: commentID}
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return CommentResult{}, ErrEmptyBody
	}
	if body == c.Body {
		return CommentResult{Comment: c, Changed: false}, nil
	}

	now := time.Now().UTC()
	c.Body = body
	c.Edited = true
	c.EditedAt = &now
	db.MarkDirty()

	return CommentResult{
		Comment:         c,
		Changed:         true,
		ActivityType:    "comment.edit",
		ActivityPayload: map[string]any{"task": c.TaskID},
	}, nil
}

// DeleteComment removes a comment (author-only). Replies to it are kept and
// surface as root comments on the next tree build rather than disappearing.
func DeleteComment(db *store.DB, actorID, commentID string) (CommentResult, error) {
	actorID = strings.TrimSpace(actorID)
	commentID = strings.TrimSpace(commentID)

	c, ok := db.FindComment(commentID)
	if !ok {
		return CommentResult{}, NotFoundError{Kind: "comment", ID: commentID}
	}
	if !perm.CanEditComment(db, actorID, c) {
		return CommentResult{}, PermissionError{ProfileID: actorID, Action: "delete", EntityID: commentID}
	}

	taskID := c.TaskID
	for i := range db.Comments {
		if db.Comments[i].ID == commentID {
			db.Comments = append(db.Comments[:i], db.Comments[i+1:]...)
			break
		}
	}
	db.MarkDirty()

	return CommentResult{
		Changed:         true,
		ActivityType:    "comment.delete",
		ActivityPayload: map[string]any{"task": taskID},
	}, nil
}
