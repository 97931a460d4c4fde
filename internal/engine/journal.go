package engine

import (
	"github.com/Veraticus/spendsync/internal/model"
)

// pending is a local mutation whose success does not trigger a refresh of its
// own. A snapshot fetched before the server applied it would silently undo
// it, so it is replayed over every snapshot until one is known to include it.
//
// until is zero while the confirmation is outstanding. Once confirmed it holds
// the last refresh sequence issued at that point: refreshes up to it may have
// been fetched before the change landed, later ones include it.
type pending struct {
	op    Op
	id    model.ID
	until uint64
}

type journal struct {
	entries map[uint64]pending
	order   []uint64
	next    uint64
}

func newJournal() *journal {
	return &journal{entries: make(map[uint64]pending)}
}

func (j *journal) record(op Op, id model.ID) uint64 {
	j.next++
	j.entries[j.next] = pending{op: op, id: id}
	j.order = append(j.order, j.next)
	return j.next
}

// confirm keeps the entry alive for every refresh issued up to watermark.
func (j *journal) confirm(seq, watermark uint64) {
	p, ok := j.entries[seq]
	if !ok {
		return
	}
	if watermark == 0 {
		j.drop(seq)
		return
	}
	p.until = watermark
	j.entries[seq] = p
}

// drop forgets an entry, used when the server refused the mutation.
func (j *journal) drop(seq uint64) {
	if _, ok := j.entries[seq]; !ok {
		return
	}
	delete(j.entries, seq)
	for i, s := range j.order {
		if s == seq {
			j.order = append(j.order[:i], j.order[i+1:]...)
			break
		}
	}
}

// prune drops confirmed entries that a snapshot from refresh seq already includes.
func (j *journal) prune(seq uint64) {
	for _, s := range append([]uint64(nil), j.order...) {
		if p := j.entries[s]; p.until != 0 && seq > p.until {
			j.drop(s)
		}
	}
}

func (j *journal) len() int {
	return len(j.entries)
}

// overlay replays pending mutations, oldest first, onto a snapshot fetched by
// refresh seq. Zero stands for a snapshot of unknown age, such as a cached one.
func (j *journal) overlay(snap model.Snapshot, seq uint64) model.Snapshot {
	if len(j.order) == 0 {
		return snap
	}
	out := snap.Clone()
	for _, s := range j.order {
		p := j.entries[s]
		if p.until != 0 && seq > p.until {
			continue
		}
		switch p.op {
		case OpToggleAccount:
			activate(&out, p.id)
		case OpDeleteAccount:
			remove(&out, p.id)
		}
	}
	return out
}

func activate(snap *model.Snapshot, id model.ID) {
	if _, ok := snap.Account(id); !ok {
		return
	}
	for i := range snap.Accounts {
		snap.Accounts[i].Active = snap.Accounts[i].ID == id
	}
}

func remove(snap *model.Snapshot, id model.ID) {
	accounts := snap.Accounts[:0]
	for _, acc := range snap.Accounts {
		if acc.ID != id {
			accounts = append(accounts, acc)
		}
	}
	transactions := snap.Transactions[:0]
	for _, txn := range snap.Transactions {
		if txn.AccountID != id {
			transactions = append(transactions, txn)
		}
	}
	snap.Accounts = accounts
	snap.Transactions = transactions
}
