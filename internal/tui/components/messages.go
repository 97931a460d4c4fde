// Package components holds the dashboard panels and input forms.
package components

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/spendsync/internal/engine"
	"github.com/Veraticus/spendsync/internal/model"
)

// CommandMsg asks the dashboard to dispatch a command to the session.
type CommandMsg struct {
	Command engine.Command
}

// FormCancelledMsg is sent when the user abandons a form.
type FormCancelledMsg struct{}

// DeleteRequestedMsg asks the dashboard to confirm deleting an account.
type DeleteRequestedMsg struct {
	ID   model.ID
	Name string
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return msg
	}
}
