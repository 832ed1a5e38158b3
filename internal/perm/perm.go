// Package perm is the local stand-in for the hosted backend's row-level
// security: project membership gates reads and task/comment writes, project
// owner/admin roles gate management operations, and the workspace admin role
// gates the admin console.
package perm

import (
	"strings"

	"taskdeck-cli/internal/model"
	"taskdeck-cli/internal/store"
)

func IsWorkspaceAdmin(db *store.DB, profileID string) bool {
	if db == nil {
		return false
	}
	p, ok := db.FindProfile(strings.TrimSpace(profileID))
	return ok && p.Role == model.GlobalRoleAdmin
}

// CanViewProject: members see their projects; workspace admins see all.
func CanViewProject(db *store.DB, profileID, projectID string) bool {
	if db == nil {
		return false
	}
	profileID = strings.TrimSpace(profileID)
	projectID = strings.TrimSpace(projectID)
	if profileID == "" || projectID == "" {
		return false
	}
	if IsWorkspaceAdmin(db, profileID) {
		return true
	}
	_, ok := db.MemberRole(projectID, profileID)
	return ok
}

// CanWriteTasks: any project member may create and mutate tasks and comments
// in the project.
func CanWriteTasks(db *store.DB, profileID, projectID string) bool {
	return CanViewProject(db, profileID, projectID)
}

// CanManageProject: membership, calendar and file removal require the owner
// or admin project role (or workspace admin).
func CanManageProject(db *store.DB, profileID, projectID string) bool {
	if db == nil {
		return false
	}
	if IsWorkspaceAdmin(db, profileID) {
		return true
	}
	role, ok := db.MemberRole(strings.TrimSpace(projectID), strings.TrimSpace(profileID))
	if !ok {
		return false
	}
	return role == model.ProjectRoleOwner || role == model.ProjectRoleAdmin
}

// CanEditComment: comments are mutated and deleted only by their author.
func CanEditComment(db *store.DB, profileID string, c *model.Comment) bool {
	if db == nil || c == nil {
		return false
	}
	profileID = strings.TrimSpace(profileID)
	return profileID != "" && profileID == strings.TrimSpace(c.AuthorID)
}
