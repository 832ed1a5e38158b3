package tui

import (
	"taskdeck-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

func Run(s store.Store, db *store.DB, profileID string) error {
	m := newBoardModel(s, db, profileID)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
