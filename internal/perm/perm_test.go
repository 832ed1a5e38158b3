package perm

import (
	"testing"
	"time"

	"taskdeck-cli/internal/model"
	"taskdeck-cli/internal/store"
)

func fixtureDB() *store.DB {
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return &store.DB{
		Profiles: []model.Profile{
			{ID: "prof-root", Name: "Root", Role: model.GlobalRoleAdmin, CreatedAt: t0},
			{ID: "prof-owner", Name: "Owner", Role: model.GlobalRoleMember, CreatedAt: t0},
			{ID: "prof-member", Name: "Member", Role: model.GlobalRoleMember, CreatedAt: t0},
			{ID: "prof-out", Name: "Outsider", Role: model.GlobalRoleMember, CreatedAt: t0},
		},
		Projects: []model.Project{
			{ID: "proj-1", Name: "P", CreatedBy: "prof-owner", CreatedAt: t0},
		},
		Members: []model.ProjectMember{
			{ProjectID: "proj-1", ProfileID: "prof-owner", Role: model.ProjectRoleOwner, AddedAt: t0},
			{ProjectID: "proj-1", ProfileID: "prof-member", Role: model.ProjectRoleMember, AddedAt: t0},
		},
	}
}

func TestIsWorkspaceAdmin(t *testing.T) {
	db := fixtureDB()
	if !IsWorkspaceAdmin(db, "prof-root") {
		t.Fatalf("prof-root should be admin")
	}
	if IsWorkspaceAdmin(db, "prof-owner") || IsWorkspaceAdmin(db, "prof-missing") {
		t.Fatalf("non-admins reported as admin")
	}
	if IsWorkspaceAdmin(nil, "prof-root") {
		t.Fatalf("nil db should never grant")
	}
}

func TestCanViewProject(t *testing.T) {
	db := fixtureDB()
	cases := []struct {
		profile string
		want    bool
	}{
		{"prof-owner", true},
		{"prof-member", true},
		{"prof-root", true}, // workspace admin sees everything
		{"prof-out", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := CanViewProject(db, tc.profile, "proj-1"); got != tc.want {
			t.Fatalf("CanViewProject(%q) = %v, want %v", tc.profile, got, tc.want)
		}
	}
	if CanViewProject(db, "prof-owner", "proj-missing") {
		t.Fatalf("unknown project should deny")
	}
}

func TestCanManageProject_RequiresOwnerOrAdminRole(t *testing.T) {
	db := fixtureDB()
	if !CanManageProject(db, "prof-owner", "proj-1") {
		t.Fatalf("owner should manage")
	}
	if CanManageProject(db, "prof-member", "proj-1") {
		t.Fatalf("plain member must not manage")
	}
	if !CanManageProject(db, "prof-root", "proj-1") {
		t.Fatalf("workspace admin should manage")
	}

	// Project-level admin role manages too.
	db.Members = append(db.Members, model.ProjectMember{
		ProjectID: "proj-1", ProfileID: "prof-out", Role: model.ProjectRoleAdmin,
	})
	if !CanManageProject(db, "prof-out", "proj-1") {
		t.Fatalf("project admin should manage")
	}
}

func TestCanEditComment_AuthorOnly(t *testing.T) {
	db := fixtureDB()
	c := &model.Comment{ID: "cmt-1", TaskID: "task-1", AuthorID: "prof-member"}

	if !CanEditComment(db, "prof-member", c) {
		t.Fatalf("author should edit")
	}
	// Not even the workspace admin may edit someone else's comment.
	if CanEditComment(db, "prof-root", c) || CanEditComment(db, "prof-owner", c) {
		t.Fatalf("non-authors must not edit")
	}
	if CanEditComment(db, "", c) || CanEditComment(db, "prof-member", nil) {
		t.Fatalf("empty inputs must deny")
	}
}
