package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/schollz/progressbar/v3"

	"github.com/Veraticus/spendsync/internal/aggregate"
	"github.com/Veraticus/spendsync/internal/display"
	"github.com/Veraticus/spendsync/internal/model"
)

const budgetBarWidth = 30

// BudgetBar renders budget usage as a single progress line.
func BudgetBar(usage aggregate.BudgetUsage, currency string) string {
	percent := int(usage.Percent.IntPart())

	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(io.Discard),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(budgetBarWidth),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetDescription(fmt.Sprintf("[bold]%s[reset]", usage.AccountName)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        budgetSaucer(percent),
			SaucerHead:    budgetSaucer(percent),
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	_ = bar.RenderBlank()
	if percent > 0 {
		_ = bar.Set(percent)
	}

	line := strings.TrimSpace(strings.ReplaceAll(bar.String(), "\r", ""))
	return fmt.Sprintf("%s  %s of %s (%s%%)",
		line,
		display.Money(usage.Spent, currency),
		display.Money(usage.Limit, currency),
		usage.Percent.StringFixed(1),
	)
}

func budgetSaucer(percent int) string {
	switch {
	case percent >= 100:
		return "[red]█[reset]"
	case percent >= 75:
		return "[yellow]█[reset]"
	default:
		return "[green]█[reset]"
	}
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(SubtleStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})
}

// AccountsTable renders account cards with the active one marked.
func AccountsTable(cards []aggregate.AccountCard, currency string) string {
	t := newTable("", "ID", "Name", "Type", "Balance")
	for _, card := range cards {
		marker := ""
		if card.Active {
			marker = ActiveIcon
		}
		t.Row(marker, card.ID.String(), card.Name, card.Type, display.Money(card.Balance, currency))
	}
	return t.String()
}

// TransactionsTable renders transactions in the order given.
func TransactionsTable(txns []model.Transaction, currency string) string {
	t := newTable("Date", "Title", "Category", "Amount")
	for _, txn := range txns {
		amount := IncomeStyle.Render(display.Signed(txn, currency))
		if txn.IsExpense() {
			amount = ExpenseStyle.Render(display.Signed(txn, currency))
		}
		t.Row(display.Date(txn.Date), display.Truncate(txn.Title, 32), txn.Category, amount)
	}
	return t.String()
}

// CategoryLines lists chart segments with their share of total spending.
func CategoryLines(segments []aggregate.Segment, currency string) string {
	if len(segments) == 0 {
		return SubtleStyle.Render("No expenses yet")
	}
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(seg.Color)).Render("■")
		lines = append(lines, fmt.Sprintf("%s %-16s %5.1f%%  %s",
			swatch, display.Truncate(seg.Category, 16), seg.Share*100, display.Money(seg.Amount, currency)))
	}
	return strings.Join(lines, "\n")
}

// Summary renders the whole dashboard as plain terminal output.
func Summary(d aggregate.Dashboard, currency string) string {
	sections := []string{FormatTitle("Spending Summary")}

	if d.HasActive() {
		sections = append(sections, BudgetBar(d.Budget, currency))
	} else {
		sections = append(sections, FormatWarning("No active account. Activate one with: spend accounts activate <id>"))
	}

	sections = append(sections,
		"",
		BoldStyle.Render("Accounts"),
		AccountsTable(d.Accounts, currency),
		"",
		BoldStyle.Render("Recent transactions"),
	)
	if len(d.Recent) == 0 {
		sections = append(sections, SubtleStyle.Render("No transactions yet"))
	} else {
		sections = append(sections, TransactionsTable(d.Recent, currency))
	}

	sections = append(sections,
		"",
		BoldStyle.Render("Spending by category"),
		CategoryLines(d.Segments, currency),
	)
	return strings.Join(sections, "\n")
}
