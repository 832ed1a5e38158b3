package tui

import (
	"fmt"
	"strings"

	"taskdeck-cli/internal/kanban"
	"taskdeck-cli/internal/thread"

	"github.com/charmbracelet/lipgloss"
)

const maxThreadDepth = 5

func (m boardModel) viewDetailPage() string {
	t, ok := m.db.FindTask(m.openTaskID)
	if !ok {
		return "task is gone\n\n" + hintStyle.Render("esc back")
	}

	width := m.width - 4
	if width < 40 {
		width = 40
	}
	if width > 100 {
		width = 100
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(t.Title) + "\n")

	assignee := "unassigned"
	if t.AssigneeID != nil {
		if p, ok := m.db.FindProfile(*t.AssigneeID); ok {
			assignee = p.Name
		}
	}
	meta := fmt.Sprintf("%s · %s · %s · %s",
		t.ID, kanban.Label(kanban.ColumnForStatus(t.Status)), string(t.Priority), assignee)
	if t.DueDate != nil {
		meta += " · due " + *t.DueDate
	}
	b.WriteString(hintStyle.Render(meta) + "\n\n")

	if t.Description != "" {
		b.WriteString(renderMarkdown(t.Description, width) + "\n")
	}

	if subs := m.db.SubtasksOf(t.ID); len(subs) > 0 {
		b.WriteString(headerStyle.Render(fmt.Sprintf("Subtasks (%d%% done)", m.db.CompletionPercent(t.ID))) + "\n")
		for _, st := range subs {
			mark := "[ ]"
			if st.Status == "done" {
				mark = okStyle.Render("[x]")
			}
			b.WriteString("  " + mark + " " + truncateToWidth(st.Title, width-6) + "\n")
		}
		b.WriteString("\n")
	}

	forest := thread.BuildOldestFirst(m.db.CommentsForTask(t.ID))
	if n := thread.Count(forest); n > 0 {
		b.WriteString(headerStyle.Render(fmt.Sprintf("Comments (%d)", n)) + "\n")
		for _, row := range thread.Flatten(forest, maxThreadDepth) {
			author := row.Comment.AuthorID
			if p, ok := m.db.FindProfile(author); ok {
				author = p.Name
			}
			indent := strings.Repeat("  ", row.Depth)
			b.WriteString(indent + hintStyle.Render(author+" · "+row.Comment.CreatedAt.Format("2006-01-02 15:04")) + "\n")
			body := row.Comment.Body
			if row.Comment.ContentKind == "markdown" {
				body = renderMarkdown(body, width-row.Depth*2)
			}
			for _, line := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
				b.WriteString(indent + line + "\n")
			}
		}
	}

	b.WriteString("\n" + hintStyle.Render("j/k scroll · esc back · ctrl+c quit"))
	return scrollLines(b.String(), m.detailScroll, m.height-1)
}

// scrollLines windows the rendered page by whole lines, keeping the last
// page reachable when the scroll offset runs past the end.
func scrollLines(s string, offset, height int) string {
	if height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= height {
		return s
	}
	max := len(lines) - height
	if offset > max {
		offset = max
	}
	if offset < 0 {
		offset = 0
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines[offset:offset+height]...)
}
