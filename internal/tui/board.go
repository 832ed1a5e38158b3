package tui

import (
	"fmt"
	"strings"

	"taskdeck-cli/internal/kanban"
	"taskdeck-cli/internal/model"
	"taskdeck-cli/internal/mutate"
	"taskdeck-cli/internal/perm"
	"taskdeck-cli/internal/store"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type boardView int

const (
	viewBoard boardView = iota
	viewDetail
	viewNewTask
)

type boardModel struct {
	s         store.Store
	db        *store.DB
	profileID string

	width  int
	height int

	projectIDs []string
	projectIdx int

	colIdx int
	rowIdx map[kanban.Column]int

	view         boardView
	openTaskID   string
	detailScroll int

	titleInput textinput.Model

	statusMsg string
	errMsg    string
}

func newBoardModel(s store.Store, db *store.DB, profileID string) boardModel {
	applyAppearance()

	ti := textinput.New()
	ti.Placeholder = "Task title"
	ti.CharLimit = 200
	ti.Width = 48

	m := boardModel{
		s:          s,
		db:         db,
		profileID:  profileID,
		rowIdx:     map[kanban.Column]int{},
		titleInput: ti,
	}
	m.refreshProjects()
	return m
}

func (m *boardModel) refreshProjects() {
	m.projectIDs = m.projectIDs[:0]
	for _, p := range m.db.Projects {
		if p.Archived {
			continue
		}
		if perm.CanViewProject(m.db, m.profileID, p.ID) {
			m.projectIDs = append(m.projectIDs, p.ID)
		}
	}
	m.projectIdx = 0
	for i, id := range m.projectIDs {
		if id == m.db.CurrentProjectID {
			m.projectIdx = i
			break
		}
	}
}

func (m boardModel) projectID() string {
	if len(m.projectIDs) == 0 {
		return ""
	}
	if m.projectIdx >= len(m.projectIDs) {
		return m.projectIDs[0]
	}
	return m.projectIDs[m.projectIdx]
}

func (m boardModel) column() kanban.Column {
	cols := kanban.Columns()
	if m.colIdx < 0 || m.colIdx >= len(cols) {
		return cols[0]
	}
	return cols[m.colIdx]
}

func (m boardModel) columnTasks(c kanban.Column) []model.Task {
	return m.db.TasksForColumn(m.projectID(), string(c))
}

func (m boardModel) selectedTask() (*model.Task, bool) {
	tasks := m.columnTasks(m.column())
	idx := m.rowIdx[m.column()]
	if idx < 0 || idx >= len(tasks) {
		return nil, false
	}
	return m.db.FindTask(tasks[idx].ID)
}

func (m boardModel) Init() tea.Cmd {
	return nil
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		switch m.view {
		case viewNewTask:
			return m.updateNewTask(msg)
		case viewDetail:
			return m.updateDetail(msg)
		default:
			return m.updateBoard(msg)
		}
	}
	return m, nil
}

func (m boardModel) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMsg = ""
	m.errMsg = ""
	cols := kanban.Columns()

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "left", "h":
		if m.colIdx > 0 {
			m.colIdx--
		}
	case "right", "l":
		if m.colIdx < len(cols)-1 {
			m.colIdx++
		}
	case "up", "k":
		if m.rowIdx[m.column()] > 0 {
			m.rowIdx[m.column()]--
		}
	case "down", "j":
		if m.rowIdx[m.column()] < len(m.columnTasks(m.column()))-1 {
			m.rowIdx[m.column()]++
		}
	case "H", "shift+left":
		if m.colIdx > 0 {
			m.moveSelected(cols[m.colIdx-1])
		}
	case "L", "shift+right":
		if m.colIdx < len(cols)-1 {
			m.moveSelected(cols[m.colIdx+1])
		}
	case "p", "tab":
		if len(m.projectIDs) > 1 {
			m.projectIdx = (m.projectIdx + 1) % len(m.projectIDs)
			m.colIdx = 0
			m.rowIdx = map[kanban.Column]int{}
		}
	case "n":
		if m.projectID() != "" {
			m.view = viewNewTask
			m.titleInput.SetValue("")
			m.titleInput.Focus()
		}
	case "enter":
		if t, ok := m.selectedTask(); ok {
			m.view = viewDetail
			m.openTaskID = t.ID
			m.detailScroll = 0
		}
	case "r":
		if db, err := m.s.Load(); err == nil {
			m.db = db
			m.refreshProjects()
			m.statusMsg = "reloaded"
		} else {
			m.errMsg = err.Error()
		}
	}
	return m, nil
}

// moveSelected moves the highlighted card to a neighbor column and keeps the
// highlight on it in its new column (it lands at the top).
func (m *boardModel) moveSelected(dst kanban.Column) {
	t, ok := m.selectedTask()
	if !ok {
		return
	}
	res, err := mutate.MoveTaskToColumn(m.db, m.profileID, t.ID, dst)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	if !res.Changed {
		return
	}
	if err := m.s.Save(m.db); err != nil {
		m.errMsg = err.Error()
		return
	}
	_ = m.s.AppendActivity(m.profileID, res.ActivityType, t.ID, res.ActivityPayload)

	for i, c := range kanban.Columns() {
		if c == dst {
			m.colIdx = i
			break
		}
	}
	m.rowIdx[dst] = 0
	m.statusMsg = fmt.Sprintf("moved to %s", kanban.Label(dst))
}

func (m boardModel) updateNewTask(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.view = viewBoard
		m.titleInput.Blur()
		return m, nil
	case "enter":
		title := strings.TrimSpace(m.titleInput.Value())
		if title == "" {
			m.view = viewBoard
			m.titleInput.Blur()
			return m, nil
		}
		res, err := mutate.CreateTask(m.db, m.s, m.profileID, mutate.CreateTaskArgs{
			ProjectID: m.projectID(),
			Title:     title,
			Status:    kanban.StatusForColumn(m.column()),
		})
		if err != nil {
			m.errMsg = err.Error()
		} else if err := m.s.Save(m.db); err != nil {
			m.errMsg = err.Error()
		} else {
			_ = m.s.AppendActivity(m.profileID, res.ActivityType, res.Task.ID, res.ActivityPayload)
			m.statusMsg = "created " + res.Task.ID
		}
		m.view = viewBoard
		m.titleInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.titleInput, cmd = m.titleInput.Update(msg)
	return m, cmd
}

func (m boardModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.view = viewBoard
		m.openTaskID = ""
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.detailScroll > 0 {
			m.detailScroll--
		}
	case "down", "j":
		m.detailScroll++
	}
	return m, nil
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	hintStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	errStyle    = lipgloss.NewStyle().Foreground(colorUrgent)
	okStyle     = lipgloss.NewStyle().Foreground(colorDone)
)

func (m boardModel) View() string {
	if m.width == 0 {
		return ""
	}
	switch m.view {
	case viewDetail:
		return m.viewDetailPage()
	default:
		return m.viewBoardPage()
	}
}

func (m boardModel) viewBoardPage() string {
	var b strings.Builder

	projectName := "(no projects)"
	if p, ok := m.db.FindProject(m.projectID()); ok {
		projectName = p.Name
	}
	b.WriteString(headerStyle.Render("Taskdeck · "+projectName) + "\n\n")

	if m.projectID() == "" {
		b.WriteString(hintStyle.Render("No visible projects. Create one with: taskdeck projects create --name <name>") + "\n")
		return b.String()
	}

	cols := kanban.Columns()
	colWidth := m.width/len(cols) - 2
	if colWidth < 16 {
		colWidth = 16
	}
	colHeight := m.height - 6
	if colHeight < 5 {
		colHeight = 5
	}

	rendered := make([]string, 0, len(cols))
	for i, c := range cols {
		rendered = append(rendered, m.renderColumn(c, i == m.colIdx, colWidth, colHeight))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	b.WriteString("\n")

	if m.view == viewNewTask {
		b.WriteString("New task in " + kanban.Label(m.column()) + ": " + m.titleInput.View() + "\n")
	} else {
		switch {
		case m.errMsg != "":
			b.WriteString(errStyle.Render(m.errMsg) + "\n")
		case m.statusMsg != "":
			b.WriteString(okStyle.Render(m.statusMsg) + "\n")
		default:
			b.WriteString(hintStyle.Render("h/l column · j/k card · H/L move card · enter open · n new · p project · r reload · q quit") + "\n")
		}
	}
	return b.String()
}

func (m boardModel) renderColumn(c kanban.Column, selected bool, width, height int) string {
	tasks := m.columnTasks(c)

	border := lipgloss.NormalBorder()
	borderColor := colorCardBorder
	if selected {
		borderColor = colorSelectedBorder
	}
	style := lipgloss.NewStyle().
		Border(border).
		BorderForeground(borderColor).
		Width(width).
		Height(height)

	var b strings.Builder
	title := fmt.Sprintf("%s (%d)", kanban.Label(c), len(tasks))
	b.WriteString(headerStyle.Render(truncateToWidth(title, width)) + "\n")

	sel := m.rowIdx[c]
	for i, t := range tasks {
		line := m.renderCard(t, width)
		if selected && i == sel {
			line = lipgloss.NewStyle().
				Background(colorSelectedBg).
				Foreground(colorSelectedFg).
				Render(padOrCutANSI(line, width))
		}
		b.WriteString(line + "\n")
	}
	if len(tasks) == 0 {
		b.WriteString(faintIfDark(hintStyle).Render("empty") + "\n")
	}
	return style.Render(b.String())
}

func (m boardModel) renderCard(t model.Task, width int) string {
	marker := " "
	switch t.Priority {
	case model.PriorityHigh:
		marker = "!"
	case model.PriorityCritical:
		marker = "‼"
	}
	line := marker + " " + t.Title

	meta := ""
	if subs := m.db.SubtasksOf(t.ID); len(subs) > 0 {
		meta = fmt.Sprintf(" [%d%%]", m.db.CompletionPercent(t.ID))
	}
	return truncateToWidth(line+meta, width)
}
