package mutate

import (
	"errors"
	"testing"

	"taskdeck-cli/internal/model"
)

func TestCreateProject_CreatorBecomesOwner(t *testing.T) {
	db := testDB()
	s := testStore(t)

	res, err := CreateProject(db, s, "prof-bob", "Side quest", "")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	role, ok := db.MemberRole(res.Project.ID, "prof-bob")
	if !ok || role != model.ProjectRoleOwner {
		t.Fatalf("creator role = %s, %v; want owner", role, ok)
	}
}

func TestCreateProject_EmptyName(t *testing.T) {
	db := testDB()
	s := testStore(t)
	if _, err := CreateProject(db, s, "prof-bob", "  ", ""); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestArchiveProject_Toggle(t *testing.T) {
	db := testDB()

	res, err := ArchiveProject(db, "prof-alice", "proj-1", true)
	if err != nil || !res.Changed {
		t.Fatalf("archive: %v changed=%v", err, res.Changed)
	}
	if res.ActivityType != "project.archive" {
		t.Fatalf("activity = %s", res.ActivityType)
	}
	if res, _ := ArchiveProject(db, "prof-alice", "proj-1", true); res.Changed {
		t.Fatalf("archiving twice should be a no-op")
	}
	res, err = ArchiveProject(db, "prof-alice", "proj-1", false)
	if err != nil || !res.Changed || res.ActivityType != "project.unarchive" {
		t.Fatalf("unarchive: %v %+v", err, res)
	}
}

func TestArchiveProject_PlainMemberDenied(t *testing.T) {
	db := testDB()
	var pe PermissionError
	if _, err := ArchiveProject(db, "prof-bob", "proj-1", true); !errors.As(err, &pe) {
		t.Fatalf("expected PermissionError for plain member, got %v", err)
	}
}

func TestDeleteProject_Cascades(t *testing.T) {
	db := testDB()
	s := testStore(t)
	addSubtaskFixture(db, "task-s1", "task-1", 0, model.StatusTodo)
	if _, err := AddComment(db, s, "prof-bob", AddCommentArgs{TaskID: "task-1", Body: "bye"}); err != nil {
		t.Fatalf("AddComment: %v", err)
	}

	res, err := DeleteProject(db, "prof-alice", "proj-1")
	if err != nil || !res.Changed {
		t.Fatalf("DeleteProject: %v", err)
	}
	if len(db.Projects) != 0 || len(db.Tasks) != 0 || len(db.Comments) != 0 || len(db.Members) != 0 {
		t.Fatalf("cascade incomplete: %d projects, %d tasks, %d comments, %d members",
			len(db.Projects), len(db.Tasks), len(db.Comments), len(db.Members))
	}
	if db.CurrentProjectID != "" {
		t.Fatalf("current project should be cleared")
	}
}

func TestDeleteProject_PayloadNamesDeletedProject(t *testing.T) {
	db := testDB()
	db.Projects = append(db.Projects, model.Project{
		ID: "proj-2", Name: "Other", CreatedBy: "prof-alice",
	})
	db.Members = append(db.Members, model.ProjectMember{
		ProjectID: "proj-2", ProfileID: "prof-alice", Role: model.ProjectRoleOwner,
	})

	res, err := DeleteProject(db, "prof-alice", "proj-1")
	if err != nil || !res.Changed {
		t.Fatalf("DeleteProject: %v", err)
	}
	if got := res.ActivityPayload["name"]; got != "Launch" {
		t.Fatalf("activity payload name = %q, want %q", got, "Launch")
	}
	if len(db.Projects) != 1 || db.Projects[0].ID != "proj-2" {
		t.Fatalf("expected only proj-2 to survive")
	}
}

func TestAddMember_UpsertsRole(t *testing.T) {
	db := testDB()

	res, err := AddMember(db, "prof-alice", "proj-1", "prof-eve", model.ProjectRoleMember)
	if err != nil || !res.Changed || res.ActivityType != "member.add" {
		t.Fatalf("AddMember: %v %+v", err, res)
	}

	res, err = AddMember(db, "prof-alice", "proj-1", "prof-eve", model.ProjectRoleAdmin)
	if err != nil || !res.Changed || res.ActivityType != "member.role" {
		t.Fatalf("role upsert: %v %+v", err, res)
	}
	role, _ := db.MemberRole("proj-1", "prof-eve")
	if role != model.ProjectRoleAdmin {
		t.Fatalf("role = %s, want admin", role)
	}

	if res, _ := AddMember(db, "prof-alice", "proj-1", "prof-eve", model.ProjectRoleAdmin); res.Changed {
		t.Fatalf("same role should be a no-op")
	}
}

func TestOwnerCannotBeDemotedOrRemoved(t *testing.T) {
	db := testDB()

	if _, err := AddMember(db, "prof-alice", "proj-1", "prof-alice", model.ProjectRoleMember); !errors.Is(err, ErrOwnerRemoval) {
		t.Fatalf("expected ErrOwnerRemoval on demote, got %v", err)
	}
	if _, err := RemoveMember(db, "prof-alice", "proj-1", "prof-alice"); !errors.Is(err, ErrOwnerRemoval) {
		t.Fatalf("expected ErrOwnerRemoval on remove, got %v", err)
	}
}

func TestRemoveMember(t *testing.T) {
	db := testDB()

	res, err := RemoveMember(db, "prof-alice", "proj-1", "prof-bob")
	if err != nil || !res.Changed {
		t.Fatalf("RemoveMember: %v", err)
	}
	if _, ok := db.MemberRole("proj-1", "prof-bob"); ok {
		t.Fatalf("bob should be gone")
	}

	var nf NotFoundError
	if _, err := RemoveMember(db, "prof-alice", "proj-1", "prof-bob"); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError for missing member, got %v", err)
	}
}

func TestUpdateTask_PartialFields(t *testing.T) {
	db := testDB()

	title := "Ship it now"
	res, err := UpdateTask(db, "prof-bob", "task-1", UpdateTaskArgs{Title: &title})
	if err != nil || !res.Changed {
		t.Fatalf("UpdateTask: %v", err)
	}
	got, _ := db.FindTask("task-1")
	if got.Title != "Ship it now" {
		t.Fatalf("title = %q", got.Title)
	}
	// Untouched fields stay.
	if got.Status != model.StatusTodo || got.Priority != model.PriorityMedium {
		t.Fatalf("unrelated fields changed: %+v", got)
	}

	// Setting the same value again is a no-op.
	if res, _ := UpdateTask(db, "prof-bob", "task-1", UpdateTaskArgs{Title: &title}); res.Changed {
		t.Fatalf("identical title should be a no-op")
	}
}
