package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/spendsync/internal/display"
	"github.com/Veraticus/spendsync/internal/engine"
	"github.com/Veraticus/spendsync/internal/model"
	"github.com/Veraticus/spendsync/internal/tui/themes"
)

// RecentListModel renders the latest transactions of the active account.
type RecentListModel struct {
	theme        themes.Theme
	currency     string
	transactions []model.Transaction
	width        int
}

// NewRecentListModel creates a recent transaction list.
func NewRecentListModel(theme themes.Theme, currency string) RecentListModel {
	return RecentListModel{
		theme:    theme,
		currency: currency,
		width:    40,
	}
}

// SetTransactions replaces the listed transactions.
func (m *RecentListModel) SetTransactions(txns []model.Transaction) {
	m.transactions = txns
}

// Resize updates the component size.
func (m *RecentListModel) Resize(width int) {
	m.width = width
}

// View renders the list.
func (m RecentListModel) View() string {
	title := m.theme.Subtitle.Render("Recent Transactions")
	if len(m.transactions) == 0 {
		return lipgloss.JoinVertical(
			lipgloss.Left,
			title,
			lipgloss.NewStyle().Foreground(m.theme.Muted).Render("No transactions yet"),
		)
	}

	titleWidth := max(m.width-36, 8)
	lines := make([]string, 0, len(m.transactions))
	for _, txn := range m.transactions {
		amountStyle := m.theme.Income
		if txn.IsExpense() {
			amountStyle = m.theme.Expense
		}

		name := display.Truncate(txn.Title, titleWidth)
		if strings.HasPrefix(txn.ID.String(), engine.ProvisionalPrefix) {
			name = m.theme.StatusPending.Render(name)
		}

		lines = append(lines, fmt.Sprintf("%-11s %s %s %s",
			display.Date(txn.Date),
			padRight(name, titleWidth),
			lipgloss.NewStyle().Foreground(m.theme.Muted).Render(padRight(display.Truncate(txn.Category, 10), 10)),
			amountStyle.Render(display.Signed(txn, m.currency)),
		))
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		strings.Join(lines, "\n"),
	)
}

func padRight(s string, width int) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}
