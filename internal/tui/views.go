package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the current screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.loaded {
		return m.renderLoading()
	}

	var content string
	switch m.state {
	case StateHelp:
		return m.renderHelp()
	case StateForm:
		content = m.center(m.form.View())
	case StateConfirmDelete:
		content = m.center(m.renderConfirmDelete())
	default:
		content = m.renderDashboard()
	}

	return m.wrapWithBorder(content)
}

// renderLoading renders the loading screen.
func (m Model) renderLoading() string {
	content := lipgloss.JoinVertical(
		lipgloss.Center,
		m.theme.Title.Render("Loading your accounts..."),
		"",
		lipgloss.NewStyle().Foreground(m.theme.Primary).Render("⠋"),
		"",
		lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Contacting the server"),
	)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		content,
	)
}

// renderHeader shows the app title, the active account and sync state.
func (m Model) renderHeader() string {
	title := m.theme.Title.Render("spend")

	account := lipgloss.NewStyle().Foreground(m.theme.Muted).Render("no active account")
	if m.dashboard.HasActive() {
		account = m.theme.Bold.Render(m.dashboard.Budget.AccountName)
	}

	sync := ""
	if m.session.Syncing() {
		sync = m.theme.StatusPending.Render("⟳ syncing")
	}

	left := title + "  " + account
	gap := max(m.width-4-lipgloss.Width(left)-lipgloss.Width(sync), 1)
	return left + strings.Repeat(" ", gap) + sync
}

// renderDashboard lays the panels out in two columns on wide terminals and
// stacks them otherwise.
func (m Model) renderDashboard() string {
	header := m.renderHeader()

	if m.width >= wideLayout {
		left := lipgloss.JoinVertical(lipgloss.Left,
			m.theme.Panel.Render(m.budget.View()),
			"",
			m.theme.Panel.Render(m.recent.View()),
		)
		right := lipgloss.JoinVertical(lipgloss.Left,
			m.theme.Panel.Render(m.chart.View()),
			"",
			m.theme.Panel.Render(m.accounts.View()),
		)
		columns := lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width((m.width-6)/2).Render(left),
			"  ",
			right,
		)
		return lipgloss.JoinVertical(lipgloss.Left, header, "", columns)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		m.theme.Panel.Render(m.budget.View()),
		"",
		m.theme.Panel.Render(m.accounts.View()),
		"",
		m.theme.Panel.Render(m.recent.View()),
		"",
		m.theme.Panel.Render(m.chart.View()),
	)
}

func (m Model) renderConfirmDelete() string {
	question := fmt.Sprintf("Delete %s and all of its transactions?", m.theme.Bold.Render(m.pendingDelete.Name))
	hint := lipgloss.NewStyle().Foreground(m.theme.Muted).Render("y confirm • n cancel")
	return m.theme.Card.
		BorderForeground(m.theme.Error).
		Render(lipgloss.JoinVertical(lipgloss.Left, question, "", hint))
}

func (m Model) renderHelp() string {
	title := m.theme.Title.Render("spend - Help")
	footer := lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Press any key to close help")

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		m.theme.BorderedBox.
			Padding(1, 2).
			MaxHeight(m.height-2).
			Render(
				lipgloss.JoinVertical(
					lipgloss.Left,
					title,
					"",
					m.help.FullHelpView(m.keymap.FullHelp()),
					"",
					footer,
				),
			),
	)
}

func (m Model) center(content string) string {
	return lipgloss.Place(
		max(m.width-2, 0),
		max(m.height-4, 0),
		lipgloss.Center,
		lipgloss.Center,
		content,
	)
}

func (m Model) wrapWithBorder(content string) string {
	// Add status bar and key hints at bottom
	fullContent := lipgloss.JoinVertical(
		lipgloss.Left,
		content,
		m.renderStatusBar(),
		m.help.View(m.keymap),
	)

	return m.theme.BorderedBox.
		Width(max(m.width-2, 0)).
		MaxHeight(m.height).
		Render(fullContent)
}

func (m Model) renderStatusBar() string {
	var left, right string

	// Left: current mode
	switch m.state {
	case StateDashboard:
		left = "Dashboard"
	case StateForm:
		left = m.form.Kind().String()
	case StateConfirmDelete:
		left = "Confirm"
	case StateHelp:
		left = "Help"
	}

	// Center: last notice or error
	style := m.theme.Normal
	switch m.status.level {
	case statusSuccess:
		style = m.theme.StatusSuccess
	case statusError:
		style = m.theme.StatusError
	}
	center := style.Render(m.status.text)

	// Right: reload hint after an error that left state uncertain
	right = "? Help"
	if m.status.reload {
		right = "r Reload"
	}

	totalWidth := m.width - 4
	spacing := max(totalWidth-lipgloss.Width(left)-lipgloss.Width(center)-lipgloss.Width(right), 2)
	leftPad := spacing / 2
	rightPad := spacing - leftPad

	status := fmt.Sprintf("%s%s%s%s%s",
		m.theme.StatusInfo.Render(left),
		strings.Repeat(" ", leftPad),
		center,
		strings.Repeat(" ", rightPad),
		lipgloss.NewStyle().Foreground(m.theme.Muted).Render(right),
	)

	return m.theme.Normal.
		Background(m.theme.Border).
		Width(max(m.width-2, 0)).
		MaxWidth(max(m.width-2, 0)).
		Render(status)
}
