package engine

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spendsync/internal/model"
)

// Op names the remote operation a task confirms.
type Op string

// Operations.
const (
	OpRestore        Op = "restore"
	OpRefresh        Op = "refresh"
	OpPersist        Op = "persist"
	OpToggleAccount  Op = "toggle_account"
	OpAddAccount     Op = "add_account"
	OpDeleteAccount  Op = "delete_account"
	OpAddTransaction Op = "add_transaction"
	OpUpdateBudget   Op = "update_budget"
)

// Command is a user action.
type Command interface {
	op() Op
}

// SelectAccount makes an account the active one. Unknown ids are ignored.
type SelectAccount struct {
	ID model.ID
}

// AddAccount creates an account.
type AddAccount struct {
	Account model.NewAccount
}

// DeleteAccount removes an account and its transactions.
type DeleteAccount struct {
	ID model.ID
}

// AddTransaction records a transaction against the active account.
// Transaction.AccountID is ignored and a zero Date means now.
type AddTransaction struct {
	Transaction model.NewTransaction
}

// UpdateBudget sets the budget limit of the active account.
type UpdateBudget struct {
	Limit decimal.Decimal
}

// Refresh pulls the full state from the server.
type Refresh struct{}

func (SelectAccount) op() Op  { return OpToggleAccount }
func (AddAccount) op() Op     { return OpAddAccount }
func (DeleteAccount) op() Op  { return OpDeleteAccount }
func (AddTransaction) op() Op { return OpAddTransaction }
func (UpdateBudget) op() Op   { return OpUpdateBudget }
func (Refresh) op() Op        { return OpRefresh }

// Task is a deferred remote confirmation. It may run on any goroutine and
// must not touch the store; its Result is handed back to Reconcile on the
// goroutine that owns the store.
type Task func(ctx context.Context) Result

// Result is what a Task reports back.
type Result struct {
	Err         error
	Snapshot    *model.Snapshot
	Account     *model.Account
	Transaction *model.Transaction
	Op          Op
	Ref         model.ID
	Seq         uint64
}

// Outcome tells the caller what reconciling a Result did.
type Outcome struct {
	// Err is user-facing, see common.UserMessage and common.NeedsReload.
	Err error
	// Next is a follow-up task, typically a refresh, or nil.
	Next    Task
	Notice  string
	Changed bool
}
