package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TransactionType tells whether a transaction moves money out of or into an account.
type TransactionType string

// Transaction types understood by the server.
const (
	TypeExpense TransactionType = "expense"
	TypeIncome  TransactionType = "income"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	return t == TypeExpense || t == TypeIncome
}

// Transaction represents a single income or expense entry owned by an account.
// Transactions are immutable once created and disappear only when their
// owning account is deleted.
type Transaction struct {
	Date      Date            `json:"date"`
	ID        ID              `json:"id"`
	Title     string          `json:"title"`
	Category  string          `json:"category"`
	AccountID ID              `json:"account_id"`
	Type      TransactionType `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
}

// IsExpense reports whether the transaction counts toward budget usage.
func (t Transaction) IsExpense() bool {
	return t.Type == TypeExpense
}

// NewTransaction is the payload for creating a transaction. The server assigns the ID.
type NewTransaction struct {
	Date      Date
	Title     string
	Category  string
	AccountID ID
	Type      TransactionType
	Amount    decimal.Decimal
}

// Validate checks the payload before it is applied locally.
func (n NewTransaction) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return invalid("title", "must not be empty")
	}
	if strings.TrimSpace(n.Category) == "" {
		return invalid("category", "must not be empty")
	}
	if !n.Type.Valid() {
		return invalid("type", fmt.Sprintf("must be %q or %q, got %q", TypeExpense, TypeIncome, n.Type))
	}
	if n.Amount.IsNegative() {
		return invalid("amount", "must not be negative")
	}
	if n.AccountID == "" {
		return invalid("account_id", "must reference an account")
	}
	return nil
}

// Transaction builds the local representation of the payload under a provisional id.
func (n NewTransaction) Transaction(id ID) Transaction {
	return Transaction{
		ID:        id,
		Title:     n.Title,
		Category:  n.Category,
		Amount:    n.Amount,
		Type:      n.Type,
		Date:      n.Date,
		AccountID: n.AccountID,
	}
}
