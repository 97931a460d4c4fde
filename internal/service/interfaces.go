// Package service defines the interfaces that connect the sync engine to its collaborators.
package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spendsync/internal/model"
)

// Remote is the contract for the server that owns the authoritative state.
// Every mutating call is fire-and-confirm: a nil error means the server
// accepted the change. Failures carry no structured body.
type Remote interface {
	// FetchSnapshot returns the full authoritative state.
	FetchSnapshot(ctx context.Context) (model.Snapshot, error)

	// Account operations
	AddAccount(ctx context.Context, acc model.NewAccount) (model.Account, error)
	DeleteAccount(ctx context.Context, id model.ID) error
	ToggleAccount(ctx context.Context, id model.ID) error

	// Transaction operations
	AddTransaction(ctx context.Context, txn model.NewTransaction) (model.Transaction, error)

	// Budget operations
	UpdateBudget(ctx context.Context, accountID model.ID, limit decimal.Decimal) error
}

// SnapshotCache persists the last confirmed snapshot so the UI has something
// to show before the first refresh completes.
type SnapshotCache interface {
	SaveSnapshot(ctx context.Context, snap model.Snapshot) error
	LoadSnapshot(ctx context.Context) (CachedSnapshot, error)
	Close() error
}

// CachedSnapshot is a snapshot read back from the cache.
type CachedSnapshot struct {
	SavedAt  time.Time
	Snapshot model.Snapshot
}
