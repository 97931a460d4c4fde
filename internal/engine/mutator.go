package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/spendsync/internal/common"
	"github.com/Veraticus/spendsync/internal/model"
	"github.com/Veraticus/spendsync/internal/service"
)

// ProvisionalPrefix marks ids assigned locally before the server confirms an entity.
const ProvisionalPrefix = "pending-"

// User-facing failure messages.
const (
	msgToggleFailed       = "Failed to switch account. Reload to make sure you are seeing the right account"
	msgDeleteFailed       = "Failed to delete account"
	msgAddAccountFailed   = "Failed to add account"
	msgAddTxnFailed       = "Failed to add transaction"
	msgUpdateBudgetFailed = "Failed to update budget"
)

// Mutator applies commands locally and hands back the remote confirmation as a Task.
type Mutator struct {
	store      Store
	remote     service.Remote
	controller *Controller
	now        func() time.Time
	newID      func() string
}

// MutatorOption configures a Mutator.
type MutatorOption func(*Mutator)

// WithClock sets the time source used to date new transactions.
func WithClock(now func() time.Time) MutatorOption {
	return func(m *Mutator) {
		m.now = now
	}
}

// WithIDGenerator sets the source of provisional ids.
func WithIDGenerator(newID func() string) MutatorOption {
	return func(m *Mutator) {
		m.newID = newID
	}
}

// NewMutator creates a mutator that schedules follow-up refreshes through controller.
func NewMutator(store Store, remote service.Remote, controller *Controller, opts ...MutatorOption) *Mutator {
	m := &Mutator{
		store:      store,
		remote:     remote,
		controller: controller,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dispatch applies cmd to the store and returns the task that confirms it
// with the server. Invalid commands return an error and leave the store
// untouched. A nil task with a nil error means there was nothing to do.
func (m *Mutator) Dispatch(cmd Command) (Task, error) {
	switch c := cmd.(type) {
	case SelectAccount:
		return m.selectAccount(c)
	case AddAccount:
		return m.addAccount(c)
	case DeleteAccount:
		return m.deleteAccount(c)
	case AddTransaction:
		return m.addTransaction(c)
	case UpdateBudget:
		return m.updateBudget(c)
	case Refresh:
		return m.controller.Refresh(), nil
	default:
		return nil, fmt.Errorf("unsupported command %T", cmd)
	}
}

func (m *Mutator) selectAccount(c SelectAccount) (Task, error) {
	changed, err := m.store.SetActive(c.ID)
	if common.IsNotFound(err) {
		slog.Debug("Unknown account, nothing to activate", "account_id", c.ID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !changed {
		slog.Debug("Account already active", "account_id", c.ID)
		return nil, nil
	}

	seq := m.controller.journal.record(OpToggleAccount, c.ID)
	remote, id := m.remote, c.ID
	return func(ctx context.Context) Result {
		err := remote.ToggleAccount(ctx, id)
		return Result{Op: OpToggleAccount, Ref: id, Seq: seq, Err: err}
	}, nil
}

func (m *Mutator) addAccount(c AddAccount) (Task, error) {
	if err := c.Account.Validate(); err != nil {
		return nil, err
	}

	ref := m.provisionalID()
	if err := m.store.AddAccount(c.Account.Account(ref)); err != nil {
		return nil, err
	}

	remote, payload := m.remote, c.Account
	return func(ctx context.Context) Result {
		acc, err := remote.AddAccount(ctx, payload)
		if err != nil {
			return Result{Op: OpAddAccount, Ref: ref, Err: err}
		}
		return Result{Op: OpAddAccount, Ref: ref, Account: &acc}
	}, nil
}

func (m *Mutator) deleteAccount(c DeleteAccount) (Task, error) {
	if err := m.store.RemoveAccount(c.ID); err != nil {
		return nil, err
	}

	seq := m.controller.journal.record(OpDeleteAccount, c.ID)
	remote, id := m.remote, c.ID
	return func(ctx context.Context) Result {
		err := remote.DeleteAccount(ctx, id)
		return Result{Op: OpDeleteAccount, Ref: id, Seq: seq, Err: err}
	}, nil
}

func (m *Mutator) addTransaction(c AddTransaction) (Task, error) {
	active, ok := m.store.ActiveAccount()
	if !ok {
		return nil, &common.PreconditionError{Action: "add transaction", Reason: "no account is active"}
	}

	payload := c.Transaction
	payload.AccountID = active.ID
	if payload.Date.IsZero() {
		payload.Date = model.NewDate(m.now())
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	ref := m.provisionalID()
	if err := m.store.AddTransaction(payload.Transaction(ref)); err != nil {
		return nil, err
	}

	remote := m.remote
	return func(ctx context.Context) Result {
		txn, err := remote.AddTransaction(ctx, payload)
		if err != nil {
			return Result{Op: OpAddTransaction, Ref: ref, Err: err}
		}
		return Result{Op: OpAddTransaction, Ref: ref, Transaction: &txn}
	}, nil
}

func (m *Mutator) updateBudget(c UpdateBudget) (Task, error) {
	active, ok := m.store.ActiveAccount()
	if !ok {
		return nil, &common.PreconditionError{Action: "update budget", Reason: "no account is active"}
	}
	if err := m.store.UpdateBudgetLimit(active.ID, c.Limit); err != nil {
		return nil, err
	}

	remote, id, limit := m.remote, active.ID, c.Limit
	return func(ctx context.Context) Result {
		err := remote.UpdateBudget(ctx, id, limit)
		return Result{Op: OpUpdateBudget, Ref: id, Err: err}
	}, nil
}

// Reconcile folds a completed task back into the store. Failed confirmations
// are never rolled back; they come back as user errors instead.
func (m *Mutator) Reconcile(res Result) Outcome {
	switch res.Op {
	case OpRefresh, OpRestore, OpPersist:
		return m.controller.Apply(res)

	case OpToggleAccount:
		m.controller.settle(res.Seq, res.Err)
		if res.Err != nil {
			common.LogError(res.Err, "Account toggle was not confirmed", common.Fields{"account_id": res.Ref})
			return Outcome{Err: common.NewReloadError(msgToggleFailed, res.Err)}
		}
		return Outcome{}

	case OpDeleteAccount:
		m.controller.settle(res.Seq, res.Err)
		if res.Err != nil {
			common.LogError(res.Err, "Account deletion was not confirmed", common.Fields{"account_id": res.Ref})
			return Outcome{Err: common.NewReloadError(msgDeleteFailed, res.Err)}
		}
		return Outcome{Next: m.controller.Refresh(), Notice: "Account deleted"}

	case OpAddAccount:
		return m.confirmed(res, msgAddAccountFailed, "Account added")

	case OpAddTransaction:
		return m.confirmed(res, msgAddTxnFailed, "Transaction added")

	case OpUpdateBudget:
		return m.confirmed(res, msgUpdateBudgetFailed, "Budget updated")

	default:
		slog.Error("Unknown result", "op", res.Op)
		return Outcome{Err: common.NewUserError("Unexpected response", fmt.Errorf("unknown operation %q", res.Op))}
	}
}

// confirmed handles operations whose server response carries values only the
// server can assign. Success schedules a refresh to pick them up.
func (m *Mutator) confirmed(res Result, failure, notice string) Outcome {
	if res.Err != nil {
		common.LogError(res.Err, "Mutation was not confirmed", common.Fields{"op": res.Op, "ref": res.Ref})
		return Outcome{Err: common.NewUserError(failure, res.Err)}
	}
	slog.Debug("Mutation confirmed", "op", res.Op, "ref", res.Ref)
	return Outcome{Next: m.controller.Refresh(), Notice: notice}
}

func (m *Mutator) provisionalID() model.ID {
	return model.ID(ProvisionalPrefix + m.newID())
}
