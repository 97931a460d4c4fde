package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spendsync/internal/model"
)

// SnapshotBuilder assembles a snapshot fluently. Transactions and budget
// settings apply to the most recently added account.
//
// Example:
//
//	snap := testutil.NewSnapshotBuilder(t).
//		WithAccount("cash_1", "Cash").Active().WithLimit("500").
//		WithExpense("Lunch", "Food", "120").
//		Build()
type SnapshotBuilder struct {
	t    *testing.T
	date time.Time
	snap model.Snapshot
	next int
}

// NewSnapshotBuilder creates an empty builder. Transactions are dated
// 2024-06-01 unless On says otherwise.
func NewSnapshotBuilder(t *testing.T) *SnapshotBuilder {
	t.Helper()
	return &SnapshotBuilder{
		t:    t,
		date: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		snap: model.Snapshot{Accounts: []model.Account{}, Transactions: []model.Transaction{}},
	}
}

// WithAccount adds an inactive bank account.
func (b *SnapshotBuilder) WithAccount(id model.ID, name string) *SnapshotBuilder {
	b.snap.Accounts = append(b.snap.Accounts, model.Account{ID: id, Name: name, Type: "bank"})
	return b
}

// Active marks the last account as the only active one.
func (b *SnapshotBuilder) Active() *SnapshotBuilder {
	last := b.last()
	for i := range b.snap.Accounts {
		b.snap.Accounts[i].Active = i == last
	}
	return b
}

// WithLimit sets the budget limit of the last account.
func (b *SnapshotBuilder) WithLimit(limit string) *SnapshotBuilder {
	b.snap.Accounts[b.last()].BudgetLimit = decimal.NewNullDecimal(b.amount(limit))
	return b
}

// WithBalance sets the balance of the last account.
func (b *SnapshotBuilder) WithBalance(balance string) *SnapshotBuilder {
	b.snap.Accounts[b.last()].Balance = b.amount(balance)
	return b
}

// On dates the transactions added after it.
func (b *SnapshotBuilder) On(date time.Time) *SnapshotBuilder {
	b.date = date
	return b
}

// WithExpense records an expense against the last account.
func (b *SnapshotBuilder) WithExpense(title, category, amount string) *SnapshotBuilder {
	return b.withTransaction(title, category, amount, model.TypeExpense)
}

// WithIncome records an income against the last account.
func (b *SnapshotBuilder) WithIncome(title, category, amount string) *SnapshotBuilder {
	return b.withTransaction(title, category, amount, model.TypeIncome)
}

// Build returns a copy of the assembled snapshot.
func (b *SnapshotBuilder) Build() model.Snapshot {
	return b.snap.Clone()
}

func (b *SnapshotBuilder) withTransaction(title, category, amount string, kind model.TransactionType) *SnapshotBuilder {
	b.next++
	b.snap.Transactions = append(b.snap.Transactions, model.Transaction{
		ID:        model.ID(fmt.Sprintf("txn_%d", b.next)),
		Date:      model.NewDate(b.date),
		Title:     title,
		Category:  category,
		AccountID: b.snap.Accounts[b.last()].ID,
		Type:      kind,
		Amount:    b.amount(amount),
	})
	return b
}

func (b *SnapshotBuilder) last() int {
	b.t.Helper()
	if len(b.snap.Accounts) == 0 {
		b.t.Fatalf("snapshot builder: add an account first")
	}
	return len(b.snap.Accounts) - 1
}

func (b *SnapshotBuilder) amount(s string) decimal.Decimal {
	b.t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		b.t.Fatalf("snapshot builder: invalid amount %q: %v", s, err)
	}
	return d
}
