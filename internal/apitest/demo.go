package apitest

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spendsync/internal/model"
)

// DemoSnapshot returns sample data for `spend tui --demo`, dated relative to now.
func DemoSnapshot(now time.Time) model.Snapshot {
	day := func(n int) model.Date {
		return model.NewDate(now.AddDate(0, 0, -n))
	}
	amount := func(s string) decimal.Decimal {
		return decimal.RequireFromString(s)
	}

	return model.Snapshot{
		Accounts: []model.Account{
			{
				ID:          "hdfc_savings_1",
				Name:        "HDFC Savings",
				Type:        "Savings",
				Balance:     amount("48250.00"),
				BudgetLimit: decimal.NewNullDecimal(amount("15000")),
				Active:      true,
			},
			{
				ID:          "wallet_2",
				Name:        "Wallet",
				Type:        "Cash",
				Balance:     amount("3200.50"),
				BudgetLimit: decimal.NewNullDecimal(model.DefaultBudgetLimit),
			},
			{
				ID:      "credit_card_3",
				Name:    "Credit Card",
				Type:    "Credit",
				Balance: amount("-12400.00"),
			},
		},
		Transactions: []model.Transaction{
			{ID: "9", Title: "Groceries", Category: "Food", Amount: amount("2350"), Type: model.TypeExpense, Date: day(0), AccountID: "hdfc_savings_1"},
			{ID: "8", Title: "Metro card", Category: "Transport", Amount: amount("500"), Type: model.TypeExpense, Date: day(1), AccountID: "hdfc_savings_1"},
			{ID: "7", Title: "Electricity", Category: "Utilities", Amount: amount("1875.40"), Type: model.TypeExpense, Date: day(2), AccountID: "hdfc_savings_1"},
			{ID: "6", Title: "Salary", Category: "Income", Amount: amount("65000"), Type: model.TypeIncome, Date: day(3), AccountID: "hdfc_savings_1"},
			{ID: "5", Title: "Tea stall", Category: "Food", Amount: amount("60"), Type: model.TypeExpense, Date: day(3), AccountID: "wallet_2"},
			{ID: "4", Title: "Movie night", Category: "Entertainment", Amount: amount("900"), Type: model.TypeExpense, Date: day(4), AccountID: "hdfc_savings_1"},
			{ID: "3", Title: "Pharmacy", Category: "Health", Amount: amount("640"), Type: model.TypeExpense, Date: day(5), AccountID: "hdfc_savings_1"},
			{ID: "2", Title: "Flight", Category: "Travel", Amount: amount("7400"), Type: model.TypeExpense, Date: day(6), AccountID: "credit_card_3"},
			{ID: "1", Title: "Dinner out", Category: "Food", Amount: amount("1450"), Type: model.TypeExpense, Date: day(7), AccountID: "hdfc_savings_1"},
		},
	}
}
