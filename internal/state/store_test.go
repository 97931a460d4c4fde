package state

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spendsync/internal/aggregate"
	"github.com/Veraticus/spendsync/internal/common"
	"github.com/Veraticus/spendsync/internal/model"
)

func account(id string, active bool) model.Account {
	return model.Account{
		ID:          model.ID(id),
		Name:        id,
		Type:        "Savings",
		Balance:     decimal.NewFromInt(1000),
		BudgetLimit: decimal.NewNullDecimal(decimal.NewFromInt(10000)),
		Active:      active,
	}
}

func txn(id, accountID string, amount int64) model.Transaction {
	return model.Transaction{
		ID:        model.ID(id),
		Title:     "txn " + id,
		Category:  "Food",
		AccountID: model.ID(accountID),
		Type:      model.TypeExpense,
		Amount:    decimal.NewFromInt(amount),
		Date:      model.NewDate(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)),
	}
}

func seeded(t *testing.T) *Store {
	t.Helper()
	s := New()
	require.NoError(t, s.Replace(model.Snapshot{
		Accounts: []model.Account{account("a", true), account("b", false)},
		Transactions: []model.Transaction{
			txn("1", "a", 10),
			txn("2", "a", 20),
			txn("3", "b", 30),
		},
	}))
	return s
}

func TestReplace_KeepsAtMostOneActive(t *testing.T) {
	tests := []struct {
		name       string
		accounts   []model.Account
		wantActive []model.ID
	}{
		{
			name:       "none active stays none",
			accounts:   []model.Account{account("a", false), account("b", false)},
			wantActive: nil,
		},
		{
			name:       "one active kept",
			accounts:   []model.Account{account("a", false), account("b", true)},
			wantActive: []model.ID{"b"},
		},
		{
			name:       "several active keeps the first",
			accounts:   []model.Account{account("a", false), account("b", true), account("c", true)},
			wantActive: []model.ID{"b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			require.NoError(t, s.Replace(model.Snapshot{Accounts: tt.accounts}))

			var active []model.ID
			for _, acc := range s.Snapshot().Accounts {
				if acc.Active {
					active = append(active, acc.ID)
				}
			}
			assert.Equal(t, tt.wantActive, active)
		})
	}
}

func TestReplace_DoesNotAliasInput(t *testing.T) {
	in := model.Snapshot{
		Accounts:     []model.Account{account("a", true)},
		Transactions: []model.Transaction{txn("1", "a", 10)},
	}
	s := New()
	require.NoError(t, s.Replace(in))

	in.Accounts[0].Name = "mutated"
	in.Transactions[0].Title = "mutated"

	snap := s.Snapshot()
	assert.Equal(t, "a", snap.Accounts[0].Name)
	assert.Equal(t, "txn 1", snap.Transactions[0].Title)

	snap.Accounts[0].Name = "also mutated"
	assert.Equal(t, "a", s.Snapshot().Accounts[0].Name)
}

func TestReplace_AggregatesMatchFetchedSnapshot(t *testing.T) {
	fetched := model.Snapshot{
		Accounts: []model.Account{account("a", true), account("b", false)},
		Transactions: []model.Transaction{
			txn("1", "a", 100),
			txn("2", "b", 40),
			txn("3", "ghost", 999),
		},
	}
	want := aggregate.Build(fetched, aggregate.DefaultRecentLimit)

	s := New()
	require.NoError(t, s.Replace(fetched))

	assert.Equal(t, want, aggregate.Build(s.Snapshot(), aggregate.DefaultRecentLimit))
}

func TestReplace_NilSlicesBecomeEmpty(t *testing.T) {
	s := New()
	require.NoError(t, s.Replace(model.Snapshot{}))

	snap := s.Snapshot()
	assert.NotNil(t, snap.Accounts)
	assert.NotNil(t, snap.Transactions)
	assert.Empty(t, snap.Accounts)
}

func TestSetActive(t *testing.T) {
	s := seeded(t)

	changed, err := s.SetActive("b")
	require.NoError(t, err)
	assert.True(t, changed)

	active, ok := s.ActiveAccount()
	require.True(t, ok)
	assert.Equal(t, model.ID("b"), active.ID)
	assert.Equal(t, 1, s.Snapshot().ActiveCount())
}

func TestSetActive_IsIdempotent(t *testing.T) {
	s := seeded(t)

	_, err := s.SetActive("b")
	require.NoError(t, err)
	once := s.Snapshot()
	version := s.Version()

	changed, err := s.SetActive("b")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, once, s.Snapshot())
	assert.Equal(t, version, s.Version())
}

func TestSetActive_UnknownID(t *testing.T) {
	s := seeded(t)
	before := s.Snapshot()

	changed, err := s.SetActive("missing")
	require.Error(t, err)
	assert.False(t, changed)
	assert.True(t, errors.Is(err, common.ErrNotFound))

	var nf *common.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "missing", nf.ID)
	assert.Equal(t, before, s.Snapshot())
}

func TestAddAccount(t *testing.T) {
	s := seeded(t)

	require.NoError(t, s.AddAccount(account("c", false)))
	snap := s.Snapshot()
	require.Len(t, snap.Accounts, 3)
	assert.Equal(t, model.ID("c"), snap.Accounts[2].ID)

	err := s.AddAccount(account("c", false))
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	assert.Len(t, s.Snapshot().Accounts, 3)
}

func TestRemoveAccount_CascadesTransactions(t *testing.T) {
	s := seeded(t)

	require.NoError(t, s.RemoveAccount("a"))

	snap := s.Snapshot()
	require.Len(t, snap.Accounts, 1)
	assert.Equal(t, model.ID("b"), snap.Accounts[0].ID)
	require.Len(t, snap.Transactions, 1)
	assert.Equal(t, model.ID("3"), snap.Transactions[0].ID)
}

func TestRemoveAccount_UnknownID(t *testing.T) {
	s := seeded(t)
	before := s.Snapshot()

	err := s.RemoveAccount("missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, before, s.Snapshot())
}

func TestAddTransaction_Prepends(t *testing.T) {
	s := seeded(t)

	require.NoError(t, s.AddTransaction(txn("4", "b", 5)))

	snap := s.Snapshot()
	require.Len(t, snap.Transactions, 4)
	assert.Equal(t, model.ID("4"), snap.Transactions[0].ID)
	assert.Equal(t, model.ID("1"), snap.Transactions[1].ID)
}

func TestAddTransaction_RequiresAccount(t *testing.T) {
	s := seeded(t)

	err := s.AddTransaction(txn("4", "ghost", 5))
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Len(t, s.Snapshot().Transactions, 3)
}

func TestUpdateBudgetLimit(t *testing.T) {
	tests := []struct {
		name    string
		id      model.ID
		limit   decimal.Decimal
		wantErr error
	}{
		{name: "positive", id: "a", limit: decimal.NewFromInt(2500)},
		{name: "fractional", id: "a", limit: decimal.RequireFromString("0.5")},
		{name: "zero", id: "a", limit: decimal.Zero, wantErr: common.ErrInvalidInput},
		{name: "negative", id: "a", limit: decimal.NewFromInt(-1), wantErr: common.ErrInvalidInput},
		{name: "unknown account", id: "missing", limit: decimal.NewFromInt(5), wantErr: common.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := seeded(t)
			before := s.Snapshot()

			err := s.UpdateBudgetLimit(tt.id, tt.limit)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, before, s.Snapshot())
				return
			}
			require.NoError(t, err)
			acc, ok := s.Snapshot().Account(tt.id)
			require.True(t, ok)
			assert.True(t, acc.Limit().Equal(tt.limit))
		})
	}
}

func TestVersion_CountsEffectiveMutations(t *testing.T) {
	s := New()
	assert.Equal(t, uint64(0), s.Version())

	require.NoError(t, s.Replace(model.Snapshot{Accounts: []model.Account{account("a", true)}}))
	assert.Equal(t, uint64(1), s.Version())

	_, err := s.SetActive("a")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), s.Version())

	assert.Error(t, s.RemoveAccount("missing"))
	assert.Equal(t, uint64(1), s.Version())

	require.NoError(t, s.RemoveAccount("a"))
	assert.Equal(t, uint64(2), s.Version())
}

func TestSubscribe(t *testing.T) {
	s := seeded(t)

	var got []model.Snapshot
	unsubscribe := s.Subscribe(func(snap model.Snapshot) {
		got = append(got, snap)
	})

	_, err := s.SetActive("b")
	require.NoError(t, err)
	_, err = s.SetActive("b")
	require.NoError(t, err)

	require.Len(t, got, 1)
	active, ok := got[0].ActiveAccount()
	require.True(t, ok)
	assert.Equal(t, model.ID("b"), active.ID)

	unsubscribe()
	require.NoError(t, s.RemoveAccount("a"))
	assert.Len(t, got, 1)
}

func TestListenerCannotMutate(t *testing.T) {
	s := seeded(t)

	var nested error
	s.Subscribe(func(model.Snapshot) {
		nested = s.RemoveAccount("b")
	})

	require.NoError(t, s.RemoveAccount("a"))
	assert.ErrorIs(t, nested, common.ErrReentrantMutation)
	assert.Len(t, s.Snapshot().Accounts, 1)
}
