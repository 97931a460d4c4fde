// Package state owns the single in-memory snapshot of accounts and transactions.
//
// A Store is not safe for concurrent use. It belongs to one event loop: every
// mutator is synchronous, performs no I/O and must not be invoked from inside
// another mutator (listeners included).
package state

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spendsync/internal/common"
	"github.com/Veraticus/spendsync/internal/model"
)

// Listener is notified after every effective mutation with a copy of the new snapshot.
type Listener func(snap model.Snapshot)

// Store holds the current snapshot and enforces its invariants.
type Store struct {
	listeners map[int]Listener
	snap      model.Snapshot
	version   uint64
	nextSub   int
	mutating  bool
}

// New creates an empty store.
func New() *Store {
	return &Store{
		listeners: make(map[int]Listener),
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() model.Snapshot {
	return s.snap.Clone()
}

// Version increases by one on every mutation that changed state.
func (s *Store) Version() uint64 {
	return s.version
}

// ActiveAccount returns the currently active account, if any.
func (s *Store) ActiveAccount() (model.Account, bool) {
	return s.snap.ActiveAccount()
}

// Subscribe registers fn for change notifications and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	return func() {
		delete(s.listeners, id)
	}
}

// Replace swaps the entire snapshot, typically after a full fetch. The server
// is trusted: zero or one active accounts are kept as they are. If more than
// one account claims to be active, the first one wins.
func (s *Store) Replace(next model.Snapshot) error {
	return s.mutate(func() (bool, error) {
		snap := next.Clone()
		if snap.Accounts == nil {
			snap.Accounts = []model.Account{}
		}
		if snap.Transactions == nil {
			snap.Transactions = []model.Transaction{}
		}

		if n := snap.ActiveCount(); n > 1 {
			slog.Warn("Snapshot has more than one active account, keeping the first",
				"active_count", n)
			seen := false
			for i := range snap.Accounts {
				if snap.Accounts[i].Active {
					if seen {
						snap.Accounts[i].Active = false
					}
					seen = true
				}
			}
		}

		s.snap = snap
		return true, nil
	})
}

// SetActive marks id as the only active account. It reports false without
// changing anything when id is already active.
func (s *Store) SetActive(id model.ID) (changed bool, err error) {
	err = s.mutate(func() (bool, error) {
		idx := s.indexOfAccount(id)
		if idx < 0 {
			return false, &common.NotFoundError{Kind: "account", ID: id.String()}
		}
		if s.snap.Accounts[idx].Active && s.snap.ActiveCount() == 1 {
			return false, nil
		}
		for i := range s.snap.Accounts {
			s.snap.Accounts[i].Active = i == idx
		}
		changed = true
		return true, nil
	})
	return changed, err
}

// AddAccount appends an account.
func (s *Store) AddAccount(acc model.Account) error {
	return s.mutate(func() (bool, error) {
		if s.indexOfAccount(acc.ID) >= 0 {
			return false, &common.ValidationError{Field: "id", Reason: fmt.Sprintf("account %q already exists", acc.ID)}
		}
		s.snap.Accounts = append(s.snap.Accounts, acc)
		return true, nil
	})
}

// RemoveAccount deletes an account together with every transaction it owns.
func (s *Store) RemoveAccount(id model.ID) error {
	return s.mutate(func() (bool, error) {
		idx := s.indexOfAccount(id)
		if idx < 0 {
			return false, &common.NotFoundError{Kind: "account", ID: id.String()}
		}

		accounts := make([]model.Account, 0, len(s.snap.Accounts)-1)
		accounts = append(accounts, s.snap.Accounts[:idx]...)
		accounts = append(accounts, s.snap.Accounts[idx+1:]...)

		transactions := make([]model.Transaction, 0, len(s.snap.Transactions))
		for _, txn := range s.snap.Transactions {
			if txn.AccountID != id {
				transactions = append(transactions, txn)
			}
		}

		s.snap.Accounts = accounts
		s.snap.Transactions = transactions
		return true, nil
	})
}

// AddTransaction inserts txn at the head of the list, matching the server's
// newest-first ordering. The owning account must exist.
func (s *Store) AddTransaction(txn model.Transaction) error {
	return s.mutate(func() (bool, error) {
		if s.indexOfAccount(txn.AccountID) < 0 {
			return false, &common.NotFoundError{Kind: "account", ID: txn.AccountID.String()}
		}
		transactions := make([]model.Transaction, 0, len(s.snap.Transactions)+1)
		transactions = append(transactions, txn)
		transactions = append(transactions, s.snap.Transactions...)
		s.snap.Transactions = transactions
		return true, nil
	})
}

// UpdateBudgetLimit sets the budget limit of an account. The limit must be positive.
func (s *Store) UpdateBudgetLimit(id model.ID, limit decimal.Decimal) error {
	return s.mutate(func() (bool, error) {
		if !limit.IsPositive() {
			return false, &common.ValidationError{Field: "budget_limit", Reason: "must be greater than zero"}
		}
		idx := s.indexOfAccount(id)
		if idx < 0 {
			return false, &common.NotFoundError{Kind: "account", ID: id.String()}
		}
		s.snap.Accounts[idx].BudgetLimit = decimal.NewNullDecimal(limit)
		return true, nil
	})
}

// mutate runs fn under the reentrancy guard and notifies listeners when fn changed state.
// Listeners still run under the guard, so they cannot mutate the store.
func (s *Store) mutate(fn func() (bool, error)) error {
	if s.mutating {
		return common.ErrReentrantMutation
	}
	s.mutating = true
	defer func() { s.mutating = false }()

	changed, err := fn()
	if err != nil || !changed {
		return err
	}

	s.version++
	if len(s.listeners) == 0 {
		return nil
	}
	snap := s.snap.Clone()
	for _, fn := range s.listeners {
		fn(snap)
	}
	return nil
}

func (s *Store) indexOfAccount(id model.ID) int {
	for i, acc := range s.snap.Accounts {
		if acc.ID == id {
			return i
		}
	}
	return -1
}
