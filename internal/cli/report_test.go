package cli

import (
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/spendsync/internal/aggregate"
	"github.com/Veraticus/spendsync/internal/model"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func plain(s string) string {
	return ansi.ReplaceAllString(s, "")
}

func testSnapshot() model.Snapshot {
	return model.Snapshot{
		Accounts: []model.Account{
			{ID: "savings_1", Name: "Savings", Type: "Bank", Balance: decimal.NewFromInt(1200), BudgetLimit: decimal.NewNullDecimal(decimal.NewFromInt(400)), Active: true},
			{ID: "wallet_2", Name: "Wallet", Type: "Cash", Balance: decimal.NewFromInt(30)},
		},
		Transactions: []model.Transaction{
			{ID: "3", Title: "Rent", Category: "Housing", Amount: decimal.NewFromInt(300), Type: model.TypeExpense, AccountID: "savings_1"},
			{ID: "2", Title: "Salary", Category: "Income", Amount: decimal.NewFromInt(2000), Type: model.TypeIncome, AccountID: "savings_1"},
			{ID: "1", Title: "Snacks", Category: "Food", Amount: decimal.NewFromInt(100), Type: model.TypeExpense, AccountID: "savings_1"},
		},
	}
}

func TestBudgetBar(t *testing.T) {
	tests := []struct {
		name    string
		percent string
		want    string
	}{
		{name: "empty", percent: "0", want: "(0.0%)"},
		{name: "partial", percent: "42.5", want: "(42.5%)"},
		{name: "full", percent: "100", want: "(100.0%)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usage := aggregate.BudgetUsage{
				AccountName: "Savings",
				Spent:       decimal.NewFromInt(10),
				Limit:       decimal.NewFromInt(20),
				Percent:     decimal.RequireFromString(tt.percent),
			}
			line := plain(BudgetBar(usage, "USD"))
			assert.Contains(t, line, "Savings")
			assert.Contains(t, line, "$10.00 of $20.00")
			assert.Contains(t, line, tt.want)
			assert.NotContains(t, line, "\r")
		})
	}
}

func TestAccountsTable(t *testing.T) {
	out := plain(AccountsTable(aggregate.Cards(testSnapshot()), "USD"))

	assert.Contains(t, out, "savings_1")
	assert.Contains(t, out, ActiveIcon)
	assert.Contains(t, out, "$1,200.00")
	assert.Contains(t, out, "wallet_2")
}

func TestTransactionsTable(t *testing.T) {
	out := plain(TransactionsTable(testSnapshot().Transactions, "USD"))

	assert.Contains(t, out, "-$300.00")
	assert.Contains(t, out, "+$2,000.00")
	assert.Contains(t, out, "Snacks")
}

func TestSummary(t *testing.T) {
	out := plain(Summary(aggregate.Build(testSnapshot(), 5), "USD"))

	assert.Contains(t, out, "Spending Summary")
	assert.Contains(t, out, "$400.00 of $400.00 (100.0%)")
	assert.Contains(t, out, "Housing")
	assert.Contains(t, out, "75.0%")
	assert.Contains(t, out, "Food")
	assert.Contains(t, out, "25.0%")
}

func TestSummary_NoActiveAccount(t *testing.T) {
	snap := testSnapshot()
	snap.Accounts[0].Active = false

	out := plain(Summary(aggregate.Build(snap, 5), "USD"))
	assert.Contains(t, out, "No active account")
	assert.Contains(t, out, "Spending by category")
}
