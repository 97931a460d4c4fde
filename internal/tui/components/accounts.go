package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/spendsync/internal/aggregate"
	"github.com/Veraticus/spendsync/internal/display"
	"github.com/Veraticus/spendsync/internal/engine"
	"github.com/Veraticus/spendsync/internal/tui/themes"
)

// AccountListModel lists account cards and lets the user pick the active one.
type AccountListModel struct {
	theme    themes.Theme
	currency string
	cards    []aggregate.AccountCard
	cursor   int
	width    int
}

// NewAccountListModel creates an account list.
func NewAccountListModel(theme themes.Theme, currency string) AccountListModel {
	return AccountListModel{
		theme:    theme,
		currency: currency,
		width:    40,
	}
}

// SetCards replaces the cards, keeping the cursor in range.
func (m *AccountListModel) SetCards(cards []aggregate.AccountCard) {
	m.cards = cards
	if m.cursor >= len(cards) {
		m.cursor = max(len(cards)-1, 0)
	}
}

// Resize updates the component size.
func (m *AccountListModel) Resize(width int) {
	m.width = width
}

// Cursor returns the highlighted index.
func (m AccountListModel) Cursor() int {
	return m.cursor
}

// Selected returns the highlighted card.
func (m AccountListModel) Selected() (aggregate.AccountCard, bool) {
	if m.cursor < 0 || m.cursor >= len(m.cards) {
		return aggregate.AccountCard{}, false
	}
	return m.cards[m.cursor], true
}

// Update handles navigation, activation and delete requests.
func (m AccountListModel) Update(msg tea.Msg) (AccountListModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.cards)-1 {
			m.cursor++
		}
	case "enter":
		if card, ok := m.Selected(); ok {
			return m, emit(CommandMsg{Command: engine.SelectAccount{ID: card.ID}})
		}
	case "x", "delete":
		if card, ok := m.Selected(); ok {
			return m, emit(DeleteRequestedMsg{ID: card.ID, Name: card.Name})
		}
	}
	return m, nil
}

// View renders the list.
func (m AccountListModel) View() string {
	title := m.theme.Subtitle.Render("Accounts")
	if len(m.cards) == 0 {
		return lipgloss.JoinVertical(
			lipgloss.Left,
			title,
			lipgloss.NewStyle().Foreground(m.theme.Muted).Render("No accounts. Press a to add one"),
		)
	}

	cardWidth := max(m.width-4, 20)
	rendered := make([]string, 0, len(m.cards))
	for i, card := range m.cards {
		style := m.theme.Card
		if card.Active {
			style = m.theme.ActiveCard
		}

		marker := "  "
		if i == m.cursor {
			marker = "▸ "
		}

		name := card.Name
		if card.Active {
			name += " ✓"
		}
		if strings.HasPrefix(card.ID.String(), engine.ProvisionalPrefix) {
			name = m.theme.StatusPending.Render(name + " (saving)")
		}

		body := fmt.Sprintf("%s%s\n  %s  %s",
			marker,
			name,
			lipgloss.NewStyle().Foreground(m.theme.Muted).Render(card.Type),
			m.theme.Bold.Render(display.Money(card.Balance, m.currency)),
		)
		rendered = append(rendered, style.Width(cardWidth).Render(body))
	}

	return lipgloss.JoinVertical(lipgloss.Left, append([]string{title}, rendered...)...)
}
