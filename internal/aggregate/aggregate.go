// Package aggregate derives every view the presentation layer needs from a
// snapshot: budget usage, the recent transaction list, per-category expense
// totals, chart segments and account cards.
//
// All functions are pure. Transactions whose account no longer exists are
// treated as orphans and never contribute to any output.
package aggregate

import (
	"github.com/shopspring/decimal"

	"github.com/Veraticus/spendsync/internal/model"
)

// DefaultRecentLimit is how many transactions the recent list shows.
const DefaultRecentLimit = 5

var hundred = decimal.NewFromInt(100)

// BudgetUsage summarizes how much of the active account's budget is spent.
type BudgetUsage struct {
	AccountName string
	Spent       decimal.Decimal
	Limit       decimal.Decimal
	// Percent is spent/limit*100 capped at 100 and rounded to one decimal.
	Percent decimal.Decimal
}

// Budget computes usage for activeID. An empty or unknown activeID yields all zeros.
func Budget(snap model.Snapshot, activeID model.ID) BudgetUsage {
	account, ok := resolveActive(snap, activeID)
	if !ok {
		return BudgetUsage{Spent: decimal.Zero, Limit: decimal.Zero, Percent: decimal.Zero}
	}

	spent := decimal.Zero
	for _, txn := range snap.Transactions {
		if txn.AccountID == account.ID && txn.IsExpense() {
			spent = spent.Add(txn.Amount)
		}
	}

	limit := account.Limit()
	percent := spent.Div(limit).Mul(hundred)
	if percent.GreaterThan(hundred) {
		percent = hundred
	}

	return BudgetUsage{
		AccountName: account.Name,
		Spent:       spent,
		Limit:       limit,
		Percent:     percent.Round(1),
	}
}

// Recent returns the first n transactions of the active account, or of every
// existing account when activeID is empty, in their stored order.
func Recent(snap model.Snapshot, activeID model.ID, n int) []model.Transaction {
	if n <= 0 {
		return []model.Transaction{}
	}
	out := make([]model.Transaction, 0, n)
	for _, txn := range visible(snap, activeID) {
		if len(out) == n {
			break
		}
		out = append(out, txn)
	}
	return out
}

// CategoryTotal is the summed expense amount of one category.
type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal
}

// CategoryBreakdown holds category totals in first-seen order and their sum.
type CategoryBreakdown struct {
	Categories   []CategoryTotal
	TotalExpense decimal.Decimal
}

// Amount returns the total for category and whether it appears in the breakdown.
func (b CategoryBreakdown) Amount(category string) (decimal.Decimal, bool) {
	for _, c := range b.Categories {
		if c.Category == category {
			return c.Amount, true
		}
	}
	return decimal.Zero, false
}

// Categories sums expenses per category for the active account, or for every
// existing account when activeID is empty.
func Categories(snap model.Snapshot, activeID model.ID) CategoryBreakdown {
	breakdown := CategoryBreakdown{
		Categories:   []CategoryTotal{},
		TotalExpense: decimal.Zero,
	}
	index := make(map[string]int)

	for _, txn := range visible(snap, activeID) {
		if !txn.IsExpense() {
			continue
		}
		i, seen := index[txn.Category]
		if !seen {
			i = len(breakdown.Categories)
			index[txn.Category] = i
			breakdown.Categories = append(breakdown.Categories, CategoryTotal{Category: txn.Category, Amount: decimal.Zero})
		}
		breakdown.Categories[i].Amount = breakdown.Categories[i].Amount.Add(txn.Amount)
		breakdown.TotalExpense = breakdown.TotalExpense.Add(txn.Amount)
	}

	return breakdown
}

// visible filters out orphans and, when activeID is set, other accounts' transactions.
func visible(snap model.Snapshot, activeID model.ID) []model.Transaction {
	known := snap.AccountIDs()
	out := make([]model.Transaction, 0, len(snap.Transactions))
	for _, txn := range snap.Transactions {
		if _, ok := known[txn.AccountID]; !ok {
			continue
		}
		if activeID != "" && txn.AccountID != activeID {
			continue
		}
		out = append(out, txn)
	}
	return out
}

func resolveActive(snap model.Snapshot, activeID model.ID) (model.Account, bool) {
	if activeID == "" {
		return model.Account{}, false
	}
	return snap.Account(activeID)
}
