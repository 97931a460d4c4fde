// Package display formats amounts and dates for terminal output.
package display

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/spendsync/internal/model"
)

// DefaultCurrency is used when no currency code is configured.
const DefaultCurrency = "INR"

const dateLayout = "02 Jan 2006"

// Money renders amount in the given ISO currency. Unknown codes fall back to
// a plain two-decimal rendering.
func Money(amount decimal.Decimal, code string) string {
	currency := money.GetCurrency(code)
	if currency == nil {
		return amount.StringFixed(2)
	}
	minor := amount.Shift(int32(currency.Fraction)).Round(0).IntPart()
	return money.New(minor, currency.Code).Display()
}

// Signed renders a transaction amount with a sign for its direction.
func Signed(txn model.Transaction, code string) string {
	if txn.IsExpense() {
		return "-" + Money(txn.Amount, code)
	}
	return "+" + Money(txn.Amount, code)
}

// Date renders a transaction date for lists.
func Date(d model.Date) string {
	if d.IsZero() {
		return "-"
	}
	return d.Local().Format(dateLayout)
}

// Truncate shortens s to width runes, marking the cut with an ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}
