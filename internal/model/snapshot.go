package model

// Snapshot is the complete client-side view of the remote store.
type Snapshot struct {
	Accounts     []Account     `json:"accounts"`
	Transactions []Transaction `json:"transactions"`
}

// Clone returns a deep copy so callers can never alias the store's slices.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{}
	if s.Accounts != nil {
		out.Accounts = make([]Account, len(s.Accounts))
		copy(out.Accounts, s.Accounts)
	}
	if s.Transactions != nil {
		out.Transactions = make([]Transaction, len(s.Transactions))
		copy(out.Transactions, s.Transactions)
	}
	return out
}

// Account looks up an account by id.
func (s Snapshot) Account(id ID) (Account, bool) {
	for _, acc := range s.Accounts {
		if acc.ID == id {
			return acc, true
		}
	}
	return Account{}, false
}

// ActiveAccount returns the first account flagged active.
func (s Snapshot) ActiveAccount() (Account, bool) {
	for _, acc := range s.Accounts {
		if acc.Active {
			return acc, true
		}
	}
	return Account{}, false
}

// ActiveCount returns how many accounts are flagged active.
func (s Snapshot) ActiveCount() int {
	n := 0
	for _, acc := range s.Accounts {
		if acc.Active {
			n++
		}
	}
	return n
}

// AccountIDs returns the set of account ids present in the snapshot.
func (s Snapshot) AccountIDs() map[ID]struct{} {
	ids := make(map[ID]struct{}, len(s.Accounts))
	for _, acc := range s.Accounts {
		ids[acc.ID] = struct{}{}
	}
	return ids
}
