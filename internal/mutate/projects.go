package mutate

import (
	"errors"
	"strings"
	"time"

	"taskdeck-cli/internal/model"
	"taskdeck-cli/internal/perm"
	"taskdeck-cli/internal/store"
)

var ErrEmptyName = errors.New("project name is empty")
var ErrOwnerRemoval = errors.New("cannot remove the project owner")

type ProjectResult struct {
	Project         *model.Project
	Changed         bool
	ActivityType    string
	ActivityPayload map[string]any
}

type MemberResult struct {
	Member          *model.ProjectMember
	Changed         bool
	ActivityType    string
	ActivityPayload map[string]any
}

// CreateProject creates a project and adds the creator as its owner member.
func CreateProject(db *store.DB, s store.Store, actorID, name, description string) (ProjectResult, error) {
	actorID = strings.TrimSpace(actorID)
	name = strings.TrimSpace(name)
	if name == "" {
		return ProjectResult{}, ErrEmptyName
	}
	if _, ok := db.FindProfile(actorID); !ok {
		return ProjectResult{}, NotFoundError{Kind: "profile", ID: actorID}
	}

	now := time.Now().UTC()
	p := model.Project{
		ID:          s.NextID(db, "prj"),
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedBy:   actorID,
		CreatedAt:   now,
	}
	db.Projects = append(db.Projects, p)
	db.Members = append(db.Members, model.ProjectMember{
		ProjectID: p.ID,
		ProfileID: actorID,
		Role:      model.ProjectRoleOwner,
		AddedAt:   now,
	})
	db.MarkDirty()

	created, _ := db.FindProject(p.ID)
	return ProjectResult{
		Project:         created,
		Changed:         true,
		ActivityType:    "project.create",
		ActivityPayload: map[string]any{"name": name},
	}, nil
}

func UpdateProject(db *store.DB, actorID, projectID string, name, description *string) (ProjectResult, error) {
	actorID = strings.TrimSpace(actorID)
	projectID = strings.TrimSpace(projectID)

	p, ok := db.FindProject(projectID)
	if !ok {
		return ProjectResult{}, NotFoundError{Kind: "project", ID: projectID}
	}
	if !perm.CanManageProject(db, actorID, projectID) {
		return ProjectResult{}, PermissionError{ProfileID: actorID, Action: "manage", EntityID: projectID}
	}

	changed := false
	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return ProjectResult{}, ErrEmptyName
		}
		if n != p.Name {
			p.Name = n
			changed = true
		}
	}
	if description != nil {
		d := strings.TrimSpace(*description)
		if d != p.Description {
			p.Description = d
			changed = true
		}
	}
	if !changed {
		return ProjectResult{Project: p, Changed: false}, nil
	}
	db.MarkDirty()
	return ProjectResult{
		Project:         p,
		Changed:         true,
		ActivityType:    "project.update",
		ActivityPayload: map[string]any{"name": p.Name},
	}, nil
}

// ArchiveProject toggles the archived flag. Archived projects keep their
// tasks and history but drop out of default listings.
func ArchiveProject(db *store.DB, actorID, projectID string, archived bool) (ProjectResult, error) {
	actorID = strings.TrimSpace(actorID)
	projectID = strings.TrimSpace(projectID)

	p, ok := db.FindProject(projectID)
	if !ok {
		return ProjectResult{}, NotFoundError{Kind: "project", ID: projectID}
	}
	if !perm.CanManageProject(db, actorID, projectID) {
		return ProjectResult{}, PermissionError{ProfileID: actorID, Action: "manage", EntityID: projectID}
	}
	if p.Archived == archived {
		return ProjectResult{Project: p, Changed: false}, nil
	}
	p.Archived = archived
	db.MarkDirty()

	typ := "project.archive"
	if !archived {
		typ = "project.unarchive"
	}
	return ProjectResult{
		Project:         p,
		Changed:         true,
		ActivityType:    typ,
		ActivityPayload: map[string]any{"name": p.Name},
	}, nil
}

// DeleteProject removes the project and everything under it: members, tasks,
// comments, calendar events and file rows.
func DeleteProject(db *store.DB, actorID, projectID string) (ProjectResult, error) {
	actorID = strings.TrimSpace(actorID)
	projectID = strings.TrimSpace(projectID)

	p, ok := db.FindProject(projectID)
	if !ok {
		return ProjectResult{}, NotFoundError{Kind: "project", ID: projectID}
	}
	if !perm.CanManageProject(db, actorID, projectID) {
		return ProjectResult{}, PermissionError{ProfileID: actorID, Action: "manage", EntityID: projectID}
	}

	// Capture before the compaction below reuses p's slot in db.Projects.
	name := p.Name

	dropTask := map[string]bool{}
	tasks := db.Tasks[:0]
	for _, t := range db.Tasks {
		if t.ProjectID == projectID {
			dropTask[t.ID] = true
			continue
		}
		tasks = append(tasks, t)
	}
	db.Tasks = tasks

	comments := db.Comments[:0]
	for _, c := range db.Comments {
		if !dropTask[c.TaskID] {
			comments = append(comments, c)
		}
	}
	db.Comments = comments

	members := db.Members[:0]
	for _, m := range db.Members {
		if m.ProjectID != projectID {
			members = append(members, m)
		}
	}
	db.Members = members

	events := db.CalendarEvents[:0]
	for _, e := range db.CalendarEvents {
		if e.ProjectID != projectID {
			events = append(events, e)
		}
	}
	db.CalendarEvents = events

	files := db.Files[:0]
	for _, f := range db.Files {
		if f.ProjectID != projectID {
			files = append(files, f)
		}
	}
	db.Files = files

	projects := db.Projects[:0]
	for _, x := range db.Projects {
		if x.ID != projectID {
			projects = append(projects, x)
		}
	}
	db.Projects = projects

	if db.CurrentProjectID == projectID {
		db.CurrentProjectID = ""
	}
	db.MarkDirty()

	return ProjectResult{
		Changed:         true,
		ActivityType:    "project.delete",
		ActivityPayload: map[string]any{"name": name, "tasks": len(dropTask)},
	}, nil
}

// AddMember grants a profile access to a project. Adding an existing member
// updates their role instead.
func AddMember(db *store.DB, actorID, projectID, profileID string, role model.ProjectRole) (MemberResult, error) {
	actorID = strings.TrimSpace(actorID)
	projectID = strings.TrimSpace(projectID)
	profileID = strings.TrimSpace(profileID)

	if _, ok := db.FindProject(projectID); !ok {
		return MemberResult{}, NotFoundError{Kind: "project", ID: projectID}
	}
	if !perm.CanManageProject(db, actorID, projectID) {
		return MemberResult{}, PermissionError{ProfileID: actorID, Action: "manage", EntityID: projectID}
	}
	if _, ok := db.FindProfile(profileID); !ok {
		return MemberResult{}, NotFoundError{Kind: "profile", ID: profileID}
	}
	if role == "" {
		role = model.ProjectRoleMember
	}
	switch role {
	case model.ProjectRoleOwner, model.ProjectRoleAdmin, model.ProjectRoleMember:
	default:
		return MemberResult{}, errors.New("invalid role (owner|admin|member)")
	}

	for i := range db.Members {
		m := &db.Members[i]
		if m.ProjectID == projectID && m.ProfileID == profileID {
			if m.Role == role {
				return MemberResult{Member: m, Changed: false}, nil
			}
			if m.Role == model.ProjectRoleOwner && role != model.ProjectRoleOwner {
				return MemberResult{}, ErrOwnerRemoval
			}
			m.Role = role
			db.MarkDirty()
			return MemberResult{
				Member:          m,
				Changed:         true,
				ActivityType:    "member.role",
				ActivityPayload: map[string]any{"profile": profileID, "role": string(role)},
			}, nil
		}
	}

	db.Members = append(db.Members, model.ProjectMember{
		ProjectID: projectID,
		ProfileID: profileID,
		Role:      role,
		AddedAt:   time.Now().UTC(),
	})
	db.MarkDirty()

	m := &db.Members[len(db.Members)-1]
	return MemberResult{
		Member:          m,
		Changed:         true,
		ActivityType:    "member.add",
		ActivityPayload: map[string]any{"profile": profileID, "role": string(role)},
	}, nil
}

func RemoveMember(db *store.DB, actorID, projectID, profileID string) (MemberResult, error) {
	actorID = strings.TrimSpace(actorID)
	projectID = strings.TrimSpace(projectID)
	profileID = strings.TrimSpace(profileID)

	if _, ok := db.FindProject(projectID); !ok {
		return MemberResult{}, NotFoundError{Kind: "project", ID: projectID}
	}
	if !perm.CanManageProject(db, actorID, projectID) {
		return MemberResult{}, PermissionError{ProfileID: actorID, Action: "manage", EntityID: projectID}
	}

	for i := range db.Members {
		m := db.Members[i]
		if m.ProjectID != projectID || m.ProfileID != profileID {
			continue
		}
		if m.Role == model.ProjectRoleOwner {
			return MemberResult{}, ErrOwnerRemoval
		}
		db.Members = append(db.Members[:i], db.Members[i+1:]...)
		db.MarkDirty()
		return MemberResult{
			Changed:         true,
			ActivityType:    "member.remove",
			ActivityPayload: map[string]any{"profile": profileID},
		}, nil
	}
	return MemberResult{}, NotFoundError{Kind: "member", ID: profileID}
}
