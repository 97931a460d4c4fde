package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/spendsync/internal/aggregate"
	"github.com/Veraticus/spendsync/internal/display"
	"github.com/Veraticus/spendsync/internal/tui/themes"
)

// BudgetPanelModel shows how much of the active account's budget is spent.
type BudgetPanelModel struct {
	theme       themes.Theme
	currency    string
	progressBar progress.Model
	usage       aggregate.BudgetUsage
	width       int
	hasActive   bool
}

// NewBudgetPanelModel creates a budget panel.
func NewBudgetPanelModel(theme themes.Theme, currency string) BudgetPanelModel {
	prog := progress.New(progress.WithDefaultGradient())
	prog.ShowPercentage = false

	return BudgetPanelModel{
		theme:       theme,
		currency:    currency,
		progressBar: prog,
	}
}

// SetUsage replaces the displayed usage.
func (m *BudgetPanelModel) SetUsage(usage aggregate.BudgetUsage, hasActive bool) {
	m.usage = usage
	m.hasActive = hasActive
}

// Resize updates the component size.
func (m *BudgetPanelModel) Resize(width int) {
	m.width = width
	m.progressBar.Width = max(min(width-4, 40), 10)
}

// View renders the budget panel.
func (m BudgetPanelModel) View() string {
	title := m.theme.Subtitle.Render("Budget")
	if !m.hasActive {
		return lipgloss.JoinVertical(
			lipgloss.Left,
			title,
			lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Select an account to see its budget"),
		)
	}

	percent := m.usage.Percent.InexactFloat64()
	bar := m.progressBar.ViewAs(percent / 100)

	amounts := fmt.Sprintf("%s of %s",
		display.Money(m.usage.Spent, m.currency),
		display.Money(m.usage.Limit, m.currency),
	)

	style := m.theme.StatusSuccess
	switch {
	case percent >= 100:
		style = m.theme.StatusError
	case percent >= 75:
		style = m.theme.StatusWarning
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title+" "+m.theme.Normal.Render(m.usage.AccountName),
		bar,
		m.theme.Normal.Render(amounts)+"  "+style.Render(m.usage.Percent.StringFixed(1)+"%"),
	)
}
