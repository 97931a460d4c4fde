// Package model defines the account, transaction and snapshot types shared by
// the state store, the aggregator and the remote client.
package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultBudgetLimit applies to accounts without a positive budget_limit.
var DefaultBudgetLimit = decimal.NewFromInt(10000)

// Account is a money container with its own budget.
type Account struct {
	ID          ID                  `json:"id"`
	Name        string              `json:"name"`
	Type        string              `json:"type"`
	Balance     decimal.Decimal     `json:"balance"`
	BudgetLimit decimal.NullDecimal `json:"budget_limit"`
	Active      bool                `json:"active"`
}

// Limit returns the effective budget limit, falling back to DefaultBudgetLimit
// when the field is absent or not positive.
func (a Account) Limit() decimal.Decimal {
	if !a.BudgetLimit.Valid || !a.BudgetLimit.Decimal.IsPositive() {
		return DefaultBudgetLimit
	}
	return a.BudgetLimit.Decimal
}

// NewAccount is the payload for creating an account. The server assigns the ID.
type NewAccount struct {
	Name    string
	Type    string
	Balance decimal.Decimal
}

// Validate checks the payload before it is applied locally.
func (n NewAccount) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return invalid("name", "must not be empty")
	}
	if strings.TrimSpace(n.Type) == "" {
		return invalid("type", "must not be empty")
	}
	return nil
}

// Account builds the local representation of the payload under a provisional id.
// New accounts start inactive with the default budget, like the server creates them.
func (n NewAccount) Account(id ID) Account {
	return Account{
		ID:          id,
		Name:        n.Name,
		Type:        n.Type,
		Balance:     n.Balance,
		BudgetLimit: decimal.NewNullDecimal(DefaultBudgetLimit),
	}
}
