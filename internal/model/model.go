package model

import "time"

type GlobalRole string

const (
	GlobalRoleAdmin  GlobalRole = "admin"
	GlobalRoleMember GlobalRole = "member"
)

// Profile is a person using the workspace. Profiles are workspace-scoped;
// project access is granted per project via ProjectMember rows.
type Profile struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email,omitempty"`
	Role         GlobalRole `json:"role"`
	AvatarFileID *string    `json:"avatarFileId,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	Archived    bool      `json:"archived"`
}

type ProjectRole string

const (
	ProjectRoleOwner  ProjectRole = "owner"
	ProjectRoleAdmin  ProjectRole = "admin"
	ProjectRoleMember ProjectRole = "member"
)

type ProjectMember struct {
	ProjectID string      `json:"projectId"`
	ProfileID string      `json:"profileId"`
	Role      ProjectRole `json:"role"`
	AddedAt   time.Time   `json:"addedAt"`
}

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
)

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

type Task struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`

	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`

	AssigneeID *string `json:"assigneeId,omitempty"`
	DueDate    *string `json:"dueDate,omitempty"` // YYYY-MM-DD

	// Subtask linkage. IsSubtask implies ParentTaskID is set; SubtaskOrder is
	// the display order among siblings (lower sorts first).
	ParentTaskID *string `json:"parentTaskId,omitempty"`
	IsSubtask    bool    `json:"isSubtask"`
	SubtaskOrder *int    `json:"subtaskOrder,omitempty"`

	// Board placement. KanbanColumn is denormalized from Status; every status
	// write rewrites it and every column move rewrites Status. KanbanPosition
	// is intra-column ordering (0 = moved last, see mutate.MoveTaskToColumn).
	KanbanColumn   string `json:"kanbanColumn"`
	KanbanPosition int    `json:"kanbanPosition"`

	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ContentKind string

const (
	ContentPlain    ContentKind = "plain"
	ContentMarkdown ContentKind = "markdown"
)

type Comment struct {
	ID       string `json:"id"`
	TaskID   string `json:"taskId"`
	AuthorID string `json:"authorId"`

	// AuthorName is denormalized for display; it is persisted with the
	// comment row but refreshed from the author's profile on load.
	AuthorName string `json:"authorName,omitempty"`

	Body        string      `json:"body"`
	ContentKind ContentKind `json:"contentKind"`

	// ReplyToID points at an earlier comment on the same task. A reply whose
	// parent is no longer in the fetched set renders as a root comment.
	ReplyToID *string `json:"replyToId,omitempty"`

	Mentions    []string `json:"mentions,omitempty"`    // profile ids
	Attachments []string `json:"attachments,omitempty"` // file ids

	Edited   bool       `json:"edited"`
	EditedAt *time.Time `json:"editedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

type CalendarEvent struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"projectId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartAt     time.Time `json:"startAt"`
	EndAt       time.Time `json:"endAt"`
	AllDay      bool      `json:"allDay"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Notification struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"profileId"`
	Kind      string    `json:"kind"` // "mention", "assigned", "comment", ...
	Message   string    `json:"message"`
	TaskID    string    `json:"taskId,omitempty"`
	ProjectID string    `json:"projectId,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

type ProjectFile struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"projectId"`
	UploadedBy   string    `json:"uploadedBy"`
	OriginalName string    `json:"originalName"`
	SizeBytes    int64     `json:"sizeBytes"`
	MimeType     string    `json:"mimeType,omitempty"`
	Sha256Hex    string    `json:"sha256"`
	Path         string    `json:"path"` // workspace-relative, slash-separated
	CreatedAt    time.Time `json:"createdAt"`
}

// Activity is one append-only project activity record.
type Activity struct {
	ID       string    `json:"id"`
	TS       time.Time `json:"ts"`
	ActorID  string    `json:"actorId"`
	Type     string    `json:"type"`
	EntityID string    `json:"entityId"`
	Payload  any       `json:"payload"`
}
