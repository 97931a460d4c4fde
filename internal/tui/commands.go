package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/spendsync/internal/engine"
)

// run wraps an engine task as a command bounded by the configured timeout.
// A nil task yields a nil command.
func (m Model) run(task engine.Task) tea.Cmd {
	if task == nil {
		return nil
	}
	parent, timeout := m.ctx, m.config.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()

		return resultMsg{result: task(ctx)}
	}
}

// refresh issues a full reload from the server.
func (m Model) refresh() tea.Cmd {
	return m.run(m.session.Refresh())
}

// restore loads the cached snapshot when a cache is configured.
func (m Model) restore() tea.Cmd {
	return m.run(m.session.Restore())
}
