// Package engine turns user commands into optimistic local mutations and
// deferred remote confirmations, and reconciles the results back into state.
package engine

import (
	"github.com/shopspring/decimal"

	"github.com/Veraticus/spendsync/internal/model"
)

// Store is the state the engine mutates. It is satisfied by *state.Store.
type Store interface {
	Snapshot() model.Snapshot
	ActiveAccount() (model.Account, bool)
	Version() uint64

	Replace(snap model.Snapshot) error
	SetActive(id model.ID) (changed bool, err error)
	AddAccount(acc model.Account) error
	RemoveAccount(id model.ID) error
	AddTransaction(txn model.Transaction) error
	UpdateBudgetLimit(id model.ID, limit decimal.Decimal) error
}
