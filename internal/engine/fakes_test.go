package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spendsync/internal/common"
	"github.com/Veraticus/spendsync/internal/model"
	"github.com/Veraticus/spendsync/internal/service"
)

type call struct {
	op    Op
	id    model.ID
	limit decimal.Decimal
}

// fakeRemote records calls and answers from configurable snapshots and errors.
type fakeRemote struct {
	snapshots []model.Snapshot
	fail      map[Op]error
	calls     []call
	added     []model.NewTransaction
	fetches   int
}

func newFakeRemote(snapshots ...model.Snapshot) *fakeRemote {
	return &fakeRemote{
		snapshots: snapshots,
		fail:      make(map[Op]error),
	}
}

func (f *fakeRemote) failWith(op Op, status int) {
	f.fail[op] = &common.RemoteFailure{Op: string(op), StatusCode: status}
}

func (f *fakeRemote) FetchSnapshot(_ context.Context) (model.Snapshot, error) {
	f.calls = append(f.calls, call{op: OpRefresh})
	if err := f.fail[OpRefresh]; err != nil {
		return model.Snapshot{}, err
	}
	if len(f.snapshots) == 0 {
		return model.Snapshot{}, nil
	}
	idx := f.fetches
	if idx >= len(f.snapshots) {
		idx = len(f.snapshots) - 1
	}
	f.fetches++
	return f.snapshots[idx].Clone(), nil
}

func (f *fakeRemote) AddAccount(_ context.Context, acc model.NewAccount) (model.Account, error) {
	f.calls = append(f.calls, call{op: OpAddAccount})
	if err := f.fail[OpAddAccount]; err != nil {
		return model.Account{}, err
	}
	return acc.Account("server_1"), nil
}

func (f *fakeRemote) DeleteAccount(_ context.Context, id model.ID) error {
	f.calls = append(f.calls, call{op: OpDeleteAccount, id: id})
	return f.fail[OpDeleteAccount]
}

func (f *fakeRemote) ToggleAccount(_ context.Context, id model.ID) error {
	f.calls = append(f.calls, call{op: OpToggleAccount, id: id})
	return f.fail[OpToggleAccount]
}

func (f *fakeRemote) AddTransaction(_ context.Context, txn model.NewTransaction) (model.Transaction, error) {
	f.calls = append(f.calls, call{op: OpAddTransaction, id: txn.AccountID})
	f.added = append(f.added, txn)
	if err := f.fail[OpAddTransaction]; err != nil {
		return model.Transaction{}, err
	}
	return txn.Transaction("99"), nil
}

func (f *fakeRemote) UpdateBudget(_ context.Context, accountID model.ID, limit decimal.Decimal) error {
	f.calls = append(f.calls, call{op: OpUpdateBudget, id: accountID, limit: limit})
	return f.fail[OpUpdateBudget]
}

func (f *fakeRemote) ops() []Op {
	ops := make([]Op, 0, len(f.calls))
	for _, c := range f.calls {
		ops = append(ops, c.op)
	}
	return ops
}

type fakeCache struct {
	saved  []model.Snapshot
	cached *model.Snapshot
}

func (c *fakeCache) SaveSnapshot(_ context.Context, snap model.Snapshot) error {
	c.saved = append(c.saved, snap.Clone())
	return nil
}

func (c *fakeCache) LoadSnapshot(_ context.Context) (service.CachedSnapshot, error) {
	if c.cached == nil {
		return service.CachedSnapshot{}, &common.NotFoundError{Kind: "snapshot", ID: "latest"}
	}
	return service.CachedSnapshot{Snapshot: c.cached.Clone(), SavedAt: time.Unix(0, 0)}, nil
}

func (c *fakeCache) Close() error {
	return nil
}

func acct(id string, active bool) model.Account {
	return model.Account{
		ID:          model.ID(id),
		Name:        "Account " + id,
		Type:        "Savings",
		Balance:     decimal.NewFromInt(5000),
		BudgetLimit: decimal.NewNullDecimal(decimal.NewFromInt(10000)),
		Active:      active,
	}
}

func expense(id, accountID, category string, amount int64) model.Transaction {
	return model.Transaction{
		ID:        model.ID(id),
		Title:     "Txn " + id,
		Category:  category,
		AccountID: model.ID(accountID),
		Type:      model.TypeExpense,
		Amount:    decimal.NewFromInt(amount),
		Date:      model.NewDate(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)),
	}
}

func serverSnapshot() model.Snapshot {
	return model.Snapshot{
		Accounts: []model.Account{acct("a", true), acct("b", false)},
		Transactions: []model.Transaction{
			expense("1", "a", "Food", 100),
			expense("2", "a", "Food", 50),
			expense("3", "b", "Transport", 50),
		},
	}
}
