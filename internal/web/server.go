package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"taskdeck-cli/internal/kanban"
	"taskdeck-cli/internal/model"
	"taskdeck-cli/internal/mutate"
	"taskdeck-cli/internal/perm"
	"taskdeck-cli/internal/store"
	"taskdeck-cli/internal/thread"
)

type ServerConfig struct {
	Addr      string
	Dir       string
	Workspace string
	ProfileID string // fixed profile override (auth mode "none")
	ReadOnly  bool
	AuthMode  string // none|dev
}

// Server is a JSON API over one workspace. The whole state lives in memory
// behind mu; mutations save the store and publish a change to the broker so
// websocket subscribers see them.
type Server struct {
	mu  sync.RWMutex
	cfg ServerConfig
	s   store.Store
	db  *store.DB

	broker *store.Broker
}

func NewServer(cfg ServerConfig) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	cfg.Dir = strings.TrimSpace(cfg.Dir)
	cfg.Workspace = strings.TrimSpace(cfg.Workspace)
	cfg.ProfileID = strings.TrimSpace(cfg.ProfileID)
	cfg.AuthMode = strings.ToLower(strings.TrimSpace(cfg.AuthMode))
	if cfg.Dir == "" {
		return nil, errors.New("web: dir is empty")
	}
	if cfg.AuthMode == "" {
		cfg.AuthMode = "none"
	}
	if cfg.AuthMode != "none" && cfg.AuthMode != "dev" {
		return nil, errors.New("web: invalid auth mode (expected none|dev)")
	}
	if cfg.AuthMode == "none" && cfg.ProfileID == "" {
		return nil, errors.New("web: auth mode none requires a fixed profile")
	}

	s := store.Store{Dir: cfg.Dir}
	db, err := s.Load()
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:    cfg,
		s:      s,
		db:     db,
		broker: store.NewBroker(),
	}, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("GET /me", s.handleMe)
	mux.HandleFunc("GET /projects", s.handleProjects)
	mux.HandleFunc("POST /projects", s.handleProjectCreate)
	mux.HandleFunc("GET /projects/{projectId}", s.handleProject)
	mux.HandleFunc("POST /projects/{projectId}/archive", s.handleProjectArchive)
	mux.HandleFunc("GET /projects/{projectId}/board", s.handleBoard)
	mux.HandleFunc("GET /projects/{projectId}/calendar", s.handleCalendar)
	mux.HandleFunc("POST /projects/{projectId}/members", s.handleMemberAdd)
	mux.HandleFunc("POST /projects/{projectId}/tasks", s.handleTaskCreate)
	mux.HandleFunc("GET /tasks/{taskId}", s.handleTask)
	mux.HandleFunc("POST /tasks/{taskId}/status", s.handleTaskStatus)
	mux.HandleFunc("POST /tasks/{taskId}/move", s.handleTaskMove)
	mux.HandleFunc("POST /tasks/{taskId}/assign", s.handleTaskAssign)
	mux.HandleFunc("POST /tasks/{taskId}/subtasks", s.handleSubtaskAdd)
	mux.HandleFunc("POST /tasks/{taskId}/subtasks/reorder", s.handleSubtaskReorder)
	mux.HandleFunc("POST /tasks/{taskId}/comments", s.handleCommentAdd)
	mux.HandleFunc("POST /comments/{commentId}/edit", s.handleCommentEdit)
	mux.HandleFunc("POST /comments/{commentId}/delete", s.handleCommentDelete)
	mux.HandleFunc("GET /notifications", s.handleNotifications)
	mux.HandleFunc("GET /ws", s.handleWS)
	return mux
}

const sessionCookieName = "taskdeck_web_session"

func (s *Server) profileForRequest(r *http.Request) string {
	if s.cfg.ProfileID != "" {
		return s.cfg.ProfileID
	}
	c, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	secret, err := loadOrInitSecretKey(s.cfg.Dir)
	if err != nil {
		return ""
	}
	sp, err := verifyToken(secret, c.Value)
	if err != nil || sp.Typ != "session" {
		return ""
	}
	return strings.TrimSpace(sp.Sub)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	var nf mutate.NotFoundError
	var pe mutate.PermissionError
	switch {
	case errors.As(err, &nf):
		status = http.StatusNotFound
	case errors.As(err, &pe):
		status = http.StatusForbidden
	}
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v)
}

// requireProfile authenticates the request; a "" return means the response
// has already been written.
func (s *Server) requireProfile(w http.ResponseWriter, r *http.Request) string {
	id := strings.TrimSpace(s.profileForRequest(r))
	if id == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "not logged in"})
		return ""
	}
	s.mu.RLock()
	_, ok := s.db.FindProfile(id)
	s.mu.RUnlock()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unknown profile"})
		return ""
	}
	return id
}

func (s *Server) requireWritable(w http.ResponseWriter) bool {
	if s.cfg.ReadOnly {
		writeJSON(w, http.StatusForbidden, map[string]any{"error": "server is read-only"})
		return false
	}
	return true
}

// saveLocked persists the current state and records activity. Callers hold mu.
func (s *Server) saveLocked(actorID, typ, entityID string, payload map[string]any) error {
	if err := s.s.Save(s.db); err != nil {
		return err
	}
	if typ != "" {
		if err := s.s.AppendActivity(actorID, typ, entityID, payload); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.cfg.AuthMode != "dev" {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "login disabled (auth mode none)"})
		return
	}
	var body struct {
		ProfileID string `json:"profileId"`
		Email     string `json:"email"`
	}
	if err := readJSON(r, &body); err != nil {
		writeAPIError(w, err)
		return
	}

	s.mu.RLock()
	var p *model.Profile
	var ok bool
	if strings.TrimSpace(body.ProfileID) != "" {
		p, ok = s.db.FindProfile(strings.TrimSpace(body.ProfileID))
	} else {
		p, ok = s.db.FindProfileByEmail(body.Email)
	}
	if ok {
		cp := *p
		p = &cp
	}
	s.mu.RUnlock()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unknown profile"})
		return
	}

	secret, err := loadOrInitSecretKey(s.cfg.Dir)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	token, err := newSessionToken(secret, p.ID, 30*24*time.Hour)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int((30 * 24 * time.Hour).Seconds()),
	})
	writeJSON(w, http.StatusOK, map[string]any{"data": p})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"loggedOut": true}})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	id := s.requireProfile(w, r)
	if id == "" {
		return
	}
	s.mu.RLock()
	p, _ := s.db.FindProfile(id)
	cp := *p
	notifs := len(s.db.NotificationsFor(id, true))
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"profile":             cp,
			"unreadNotifications": notifs,
		},
	})
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	id := s.requireProfile(w, r)
	if id == "" {
		return
	}
	s.mu.RLock()
	var rows []model.Project
	for _, p := range s.db.Projects {
		if p.Archived {
			continue
		}
		if perm.CanViewProject(s.db, id, p.ID) {
			rows = append(rows, p)
		}
	}
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, map[string]any{"data": rows})
}

func (s *Server) handleProjectCreate(w http.ResponseWriter, r *http.Request) {
	id := s.requireProfile(w, r)
	if id == "" || !s.requireWritable(w) {
		return
	}
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := readJSON(r, &body); err != nil {
		writeAPIError(w, err)
		return
	}

	// Copy the result while locked; res.Project points into shared state.
	var project model.Project
	s.mu.Lock()
	res, err := mutate.CreateProject(s.db, s.s, id, body.Name, body.Description)
	if err == nil {
		project = *res.Project
		err = s.saveLocked(id, res.ActivityType, project.ID, res.ActivityPayload)
	}
	s.mu.Unlock()
	if err != nil {
		writeAPIError(w, err)
		return
	}
	s.broker.Publish("projects", "insert", project.ID, nil)
	writeJSON(w, http.StatusOK, map[string]any{"data": project})
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	id := s.requireProfile(w, r)
	if id == "" {
		return
	}
	projectID := r.PathValue("projectId")

	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.db.FindProject(projectID)
	if !ok || !perm.CanViewProject(s.db, id, projectID) {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "project not found: " + projectID})
		return
	}

	var members []model.ProjectMember
	for _, m := range s.db.Members {
		if m.ProjectID == projectID {
			members = append(members, m)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"project": p,
			"members": members,
		},
	})
}

func (s *Server) handleProjectArchive(w http.ResponseWriter, r *http.Request) {
	id := s.requireProfile(w, r)
	if id == "" || !s.requireWritable(w) {
		return
	}
	var body struct {
		Archived bool `json:"archived"`
	}
	if err := readJSON(r, &body); err != nil {
		writeAPIError(w, err)
		return
	}
	projectID := r.PathValue("projectId")

	var project model.Project
	s.mu.Lock()
	res, err := mutate.ArchiveProject(s.db, id, projectID, body.Archived)
	if err == nil {
		project = *res.Project
		if res.Changed {
			err = s.saveLocked(id, res.ActivityType, projectID, res.ActivityPayload)
		}
	}
	s.mu.Unlock()
	if err != nil {
		writeAPIError(w, err)
		return
	}
	if res.Changed {
		s.broker.Publish("projects", "update", projectID, nil)
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": project})
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	id := s.requireProfile(w, r)
	if id == "" {
		return
	}
	projectID := r.PathValue("projectId")

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !perm.CanViewProject(s.db, id, projectID) {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "project not found: " + projectID})
		return
	}

	type columnView struct {
		ID    string       `json:"id"`
		Label string       `json:"label"`
		Tasks []model.Task `json:"tasks"`
	}
	var cols []columnView
	for _, c := range kanban.Columns() {
		cols = append(cols, columnView{
			ID:    string(c),
			Label: kanban.Label(c),
			Tasks: s.db.TasksForColumn(projectID, string(c)),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"projectId": projectID,
			"columns":   cols,
		},
	})
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	id := s.requireProfile(w, r)
	if id == "" {
		return
	}
	projectID := r.PathValue("projectId")

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !perm.CanViewProject(s.db, id, projectID) {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "project not found: " + projectID})
		return
	}
	var rows []model.CalendarEvent
	for _, ev := range s.db.CalendarEvents {
		if ev.ProjectID == projectID {
			rows = append(rows, ev)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].StartAt.Before(rows[j].StartAt) })
	writeJSON(w, http.StatusOK, map[string]any{"data": rows})
}

func (s *Server) handleMemberAdd(w http.ResponseWriter, r *http.Request) {
	id := s.requireProfile(w, r)
	if id == "" || !s.requireWritable(w) {
		return
	}
	var body struct {
		ProfileID string `json:"profileId"`
		Role      string `json:"role"`
	}
	if err := readJSON(r, &body); err != nil {
		writeAPIError(w, err)
		return
	}
	projectID := r.PathValue("projectId")

	var member model.ProjectMember
	s.mu.Lock()
	res, err := mutate.AddMember(s.db, id, projectID, body.ProfileID, model.ProjectRole(body.Role))
	if err == nil {
		member = *res.Member
		if res.Changed {
			err = s.saveLocked(id, res.ActivityType, projectID, res.ActivityPayload)
		}
	}
	s.mu.Unlock()
	if err != nil {
		writeAPIError(w, err)
		return
	}
	if res.Changed {
		s.broker.Publish("project_members", "upsert", projectID, nil)
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": member})
}

func (s *Server) handleTaskCreate(w http.ResponseWriter, r *http.Request) {
	id := s.requireProfile(w, r)
	if id == "" || !s.requireWritable(w) {
		return
	}
	var body struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Status      string `json:"status"`
		Priority    string `json:"priority"`
		AssigneeID  string `json:"assigneeId"`
		DueDate     string `json:"dueDate"`
	}
	if err := readJSON(r, &body); err != nil {
		writeAPIError(w, err)
		return
	}
	projectID := r.PathValue("projectId")

	st := model.StatusTodo
	if strings.TrimSpace(body.Status) != "" {
		var err error
		st, err = kanban.ParseStatus(body.Status)
		if err != nil {
			writeAPIError(w, err)
			return
		}
	}
	pri, err := kanban.ParsePriority(body.Priority)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	s.mu.Lock()
	res, err := mutate.CreateTask(s.db, s.s, id, mutate.CreateTaskArgs{
		ProjectID:   projectID,
		Title:       body.Title,
		Description: body.Description,
		Status:      st,
		Priority:    pri,
		AssigneeID:  body.AssigneeID,
		DueDate:     body.DueDate,
	})
	var task model.Task
	if err == nil {
		task = *res.Task
		err = s.saveLocked(id, res.ActivityType, task.ID, res.ActivityPayload)
	}
	s.mu.Unlock()
	if err != nil {
		writeAPIError(w, err)
		return
	}
	s.broker.Publish("tasks", "insert", task.ID, map[string]string{"project": projectID})
	writeJSON(w, http.StatusOK, map[string]any{"data": task})
}

func (s *Server) handleTask(w http.ResponseWriter, r *http.Request) {
	id := s.requireProfile(w, r)
	if id == "" {
		return
	}
	taskID := r.PathValue("taskId")

	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.db.FindTask(taskID)
	if !ok || !perm.CanViewProject(s.db, id, t.ProjectID) {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "task not found: " + taskID})
		return
	}

	subs := s.db.SubtasksOf(taskID)
	subtasks := make([]model.Task, 0, len(subs))
	for _, sub := range subs {
		subtasks = append(subtasks, *sub)
	}
	forest := thread.BuildOldestFirst(s.db.CommentsForTask(taskID))

	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"task":         t,
			"subtasks":     subtasks,
			"donePercent":  s.db.CompletionPercent(taskID),
			"comments":     forest,
			"commentCount": thread.Count(forest),
		},
	})
}

func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	id := s.requireProfile(w, r)
	if id == "" || !s.requireWritable(w) {
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := readJSON(r, &body); err != nil {
		writeAPIError(w, err)
		return
	}
	st, err := kanban.ParseStatus(body.Status)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	taskID := r.PathValue("taskId")

	s.mu.Lock()
	res, err := mutate.SetTaskStatus(s.db, id, taskID, st)
	var task model.Task
	if err == nil {
		task = *res.Task
		if res.Changed {
			err = s.saveLocked(id, res.ActivityType, taskID, res.ActivityPayload)
		}
	}
	s.mu.Unlock()
	if err != nil {
		writeAPIError(w, err)
		return
	}
	if res.Changed {
		s.broker.Publish("tasks", "update", taskID, map[string]string{"project": task.ProjectID})
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": task})
}

func (s *Server) handleTaskMove(w http.ResponseWriter, r *http.Request) {
	id := s.requireProfile(w, r)
	if id == "" || !s.requireWritable(w) {
		return
	}
	var body struct {
		Column string `json:"column"`
	}
	if err := readJSON(r, &body); err != nil {
		writeAPIError(w, err)
		return
	}
	col, err := kanban.ParseColumn(body.Column)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	taskID := r.PathValue("taskId")

	s.mu.Lock()
	res, err := mutate.MoveTaskToColumn(s.db, id, taskID, col)
	var task model.Task
	if err == nil {
		task = *res.Task
		if res.Changed {
			err = s.saveLocked(id, res.ActivityType, taskID, res.ActivityPayload)
		}
	}
	s.mu.Unlock()
	if err != nil {
		writeAPIError(w, err)
		return
	}
	if res.Changed {
		s.broker.Publish("tasks", "update", taskID, map[string]string{"project": task.ProjectID})
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": task})
}

func (s *Server) handleTaskAssign(w http.ResponseWriter, r *http.Request) {
	id := s.requireProfile(w, r)
	if id == "" || !s.requireWritable(w) {
		return
	}
	var body struct {
		AssigneeID string `json:"assigneeId"`
	}
	if err := readJSON(r, &body); err != nil {
		writeAPIError(w, err)
		return
	}
	taskID := r.PathValue("taskId")

	s.mu.Lock()
	res, err := mutate.AssignTask(s.db, s.s, id, taskID, body.AssigneeID)
	var task model.Task
	if err == nil {
		task = *res.Task
		if res.Changed {
			err = s.saveLocked(id, res.ActivityType, taskID, res.ActivityPayload)
		}
	}
	s.mu.Unlock()
	if err != nil {
		writeAPIError(w, err)
		return
	}
	if res.Changed {
		s.broker.Publish("tasks", "update", taskID, map[string]string{"project": task.ProjectID})
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": task})
}

func (s *Server) handleSubtaskAdd(w http.ResponseWriter, r *http.Request) {
	id := s.requireProfile(w, r)
	if id == "" || !s.requireWritable(w) {
		return
	}
	var body struct {
		Title string `json:"title"`
	}
	if err := readJSON(r, &body); err != nil {
		writeAPIError(w, err)
		return
	}
	taskID := r.PathValue("taskId")

	s.mu.Lock()
	res, err := mutate.AddSubtask(s.db, s.s, id, taskID, body.Title)
	var task model.Task
	if err == nil {
		task = *res.Task
		err = s.saveLocked(id, res.ActivityType, task.ID, res.ActivityPayload)
	}
	s.mu.Unlock()
	if err != nil {
		writeAPIError(w, err)
		return
	}
	s.broker.Publish("tasks", "insert", task.ID, map[string]string{"parent": taskID})
	writeJSON(w, http.StatusOK, map[string]any{"data": task})
}

func (s *Server) handleSubtaskReorder(w http.ResponseWriter, r *http.Request) {
	id := s.requireProfile(w, r)
	if id == "" || !s.requireWritable(w) {
		return
	}
	var body struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := readJSON(r, &body); err != nil {
		writeAPIError(w, err)
		return
	}
	taskID := r.PathValue("taskId")

	s.mu.Lock()
	res, err := mutate.ReorderSubtasks(s.db, id, taskID, body.From, body.To)
	var rows []model.Task
	if err == nil {
		if res.Changed {
			err = s.saveLocked(id, res.ActivityType, taskID, res.ActivityPayload)
		}
		for _, sub := range s.db.SubtasksOf(taskID) {
			rows = append(rows, *sub)
		}
	}
	s.mu.Unlock()
	if err != nil {
		writeAPIError(w, err)
		return
	}
	if res.Changed {
		s.broker.Publish("tasks", "update", taskID, map[string]string{"parent": taskID})
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": rows})
}

func (s *Server) handleCommentAdd(w http.ResponseWriter, r *http.Request) {
	id := s.requireProfile(w, r)
	if id == "" || !s.requireWritable(w) {
		return
	}
	var body struct {
		Body        string   `json:"body"`
		Markdown    bool     `json:"markdown"`
		ReplyToID   string   `json:"replyToId"`
		Mentions    []string `json:"mentions"`
		Attachments []string `json:"attachments"`
	}
	if err := readJSON(r, &body); err != nil {
		writeAPIError(w, err)
		return
	}
	taskID := r.PathValue("taskId")

	kind := model.ContentPlain
	if body.Markdown {
		kind = model.ContentMarkdown
	}
	s.mu.Lock()
	res, err := mutate.AddComment(s.db, s.s, id, mutate.AddCommentArgs{
		TaskID:      taskID,
		Body:        body.Body,
		ContentKind: kind,
		ReplyToID:   body.ReplyToID,
		Mentions:    body.Mentions,
		Attachments: body.Attachments,
	})
	var comment model.Comment
	if err == nil {
		comment = *res.Comment
		err = s.saveLocked(id, res.ActivityType, comment.ID, res.ActivityPayload)
	}
	s.mu.Unlock()
	if err != nil {
		writeAPIError(w, err)
		return
	}
	s.broker.Publish("task_comments", "insert", comment.ID, map[string]string{"task": taskID})
	writeJSON(w, http.StatusOK, map[string]any{"data": comment})
}

func (s *Server) handleCommentEdit(w http.ResponseWriter, r *http.Request) {
	id := s.requireProfile(w, r)
	if id == "" || !s.requireWritable(w) {
		return
	}
	var body struct {
		Body string `json:"body"`
	}
	if err := readJSON(r, &body); err != nil {
		writeAPIError(w, err)
		return
	}
	commentID := r.PathValue("commentId")

	s.mu.Lock()
	res, err := mutate.EditComment(s.db, id, commentID, body.Body)
	var comment model.Comment
	if err == nil {
		comment = *res.Comment
		if res.Changed {
			err = s.saveLocked(id, res.ActivityType, commentID, res.ActivityPayload)
		}
	}
	s.mu.Unlock()
	if err != nil {
		writeAPIError(w, err)
		return
	}
	if res.Changed {
		s.broker.Publish("task_comments", "update", commentID, map[string]string{"task": comment.TaskID})
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": comment})
}

func (s *Server) handleCommentDelete(w http.ResponseWriter, r *http.Request) {
	id := s.requireProfile(w, r)
	if id == "" || !s.requireWritable(w) {
		return
	}
	commentID := r.PathValue("commentId")

	s.mu.Lock()
	res, err := mutate.DeleteComment(s.db, id, commentID)
	if err == nil {
		err = s.saveLocked(id, res.ActivityType, commentID, res.ActivityPayload)
	}
	s.mu.Unlock()
	if err != nil {
		writeAPIError(w, err)
		return
	}
	s.broker.Publish("task_comments", "delete", commentID, nil)
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"deleted": commentID}})
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	id := s.requireProfile(w, r)
	if id == "" {
		return
	}
	unreadOnly := r.URL.Query().Get("all") == ""

	s.mu.RLock()
	rows := s.db.NotificationsFor(id, unreadOnly)
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, map[string]any{"data": rows})
}
