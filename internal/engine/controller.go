package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Veraticus/spendsync/internal/common"
	"github.com/Veraticus/spendsync/internal/model"
	"github.com/Veraticus/spendsync/internal/service"
)

// Controller pulls authoritative state from the server into the store.
//
// Every refresh gets a sequence number when it is issued. A completed refresh
// is applied only if no refresh issued after it has been applied already, so
// a slow response can never overwrite a newer one.
type Controller struct {
	store   Store
	remote  service.Remote
	cache   service.SnapshotCache
	journal *journal
	issued  uint64
	applied uint64
	landed  bool
	flight  int
	saves   *saveGuard
}

// saveGuard orders cache writes. Persist tasks run off the event loop, so a
// write for an older refresh may finish after a newer one.
type saveGuard struct {
	mu   sync.Mutex
	last uint64
}

// NewController creates a controller. cache may be nil.
func NewController(store Store, remote service.Remote, cache service.SnapshotCache) *Controller {
	return &Controller{
		store:   store,
		remote:  remote,
		cache:   cache,
		journal: newJournal(),
		saves:   &saveGuard{},
	}
}

// Refresh issues a new refresh. The returned task fetches the snapshot.
func (c *Controller) Refresh() Task {
	c.issued++
	c.flight++
	seq := c.issued
	remote := c.remote

	return func(ctx context.Context) Result {
		snap, err := remote.FetchSnapshot(ctx)
		if err != nil {
			return Result{Op: OpRefresh, Seq: seq, Err: err}
		}
		return Result{Op: OpRefresh, Seq: seq, Snapshot: &snap}
	}
}

// persist writes the snapshot of an applied refresh to the cache. A write is
// skipped when a newer refresh has been saved already. Returns nil without a
// cache.
func (c *Controller) persist(seq uint64, snap model.Snapshot) Task {
	if c.cache == nil {
		return nil
	}
	cache, saves := c.cache, c.saves
	snap = snap.Clone()

	return func(ctx context.Context) Result {
		saves.mu.Lock()
		defer saves.mu.Unlock()
		if seq <= saves.last {
			return Result{Op: OpPersist, Seq: seq}
		}
		if err := cache.SaveSnapshot(ctx, snap); err != nil {
			return Result{Op: OpPersist, Seq: seq, Err: err}
		}
		saves.last = seq
		return Result{Op: OpPersist, Seq: seq}
	}
}

// Restore loads the cached snapshot. It is applied only if no refresh has
// landed by the time it completes. Returns nil without a cache.
func (c *Controller) Restore() Task {
	if c.cache == nil {
		return nil
	}
	cache := c.cache

	return func(ctx context.Context) Result {
		cached, err := cache.LoadSnapshot(ctx)
		if err != nil {
			return Result{Op: OpRestore, Err: err}
		}
		snap := cached.Snapshot
		return Result{Op: OpRestore, Snapshot: &snap}
	}
}

// Syncing reports whether any refresh is still in flight.
func (c *Controller) Syncing() bool {
	return c.flight > 0
}

// Apply reconciles a refresh, restore or cache write result into the store.
func (c *Controller) Apply(res Result) Outcome {
	switch res.Op {
	case OpRestore:
		return c.applyRestore(res)
	case OpRefresh:
		return c.applyRefresh(res)
	case OpPersist:
		if res.Err != nil {
			slog.Warn("Failed to cache snapshot", "seq", res.Seq, "error", res.Err)
		}
		return Outcome{}
	default:
		slog.Error("Controller asked to apply a mutation result", "op", res.Op)
		return Outcome{}
	}
}

func (c *Controller) applyRefresh(res Result) Outcome {
	if c.flight > 0 {
		c.flight--
	}

	if res.Err != nil {
		common.LogError(res.Err, "Refresh failed", common.Fields{"seq": res.Seq})
		return Outcome{Err: common.NewUserError("Could not load data from the server", res.Err)}
	}

	if res.Seq <= c.applied {
		slog.Info("Discarding stale refresh",
			"seq", res.Seq,
			"applied", c.applied)
		return Outcome{}
	}

	if err := c.replace(res.Snapshot, res.Seq); err != nil {
		return Outcome{Err: common.NewUserError("Could not apply data from the server", err)}
	}
	c.applied = res.Seq
	c.landed = true
	c.journal.prune(res.Seq)

	slog.Debug("Refresh applied", "seq", res.Seq, "pending", c.journal.len())
	outcome := Outcome{Changed: true}
	if res.Snapshot != nil {
		outcome.Next = c.persist(res.Seq, *res.Snapshot)
	}
	return outcome
}

// settle records the server's answer to a journaled toggle or delete. A
// confirmed entry keeps being replayed over every refresh issued before the
// confirmation, since those may have been answered from older server state.
func (c *Controller) settle(seq uint64, err error) {
	if err != nil {
		c.journal.drop(seq)
		return
	}
	c.journal.confirm(seq, c.issued)
}

func (c *Controller) applyRestore(res Result) Outcome {
	if res.Err != nil {
		if common.IsNotFound(res.Err) {
			return Outcome{}
		}
		slog.Warn("Failed to load cached snapshot", "error", res.Err)
		return Outcome{}
	}
	if c.landed {
		slog.Debug("Ignoring cached snapshot, server data already applied")
		return Outcome{}
	}
	if err := c.replace(res.Snapshot, 0); err != nil {
		return Outcome{Err: common.NewUserError("Could not load cached data", err)}
	}
	return Outcome{Changed: true, Notice: "Showing cached data"}
}

func (c *Controller) replace(snap *model.Snapshot, seq uint64) error {
	if snap == nil {
		return c.store.Replace(c.journal.overlay(model.Snapshot{}, seq))
	}
	return c.store.Replace(c.journal.overlay(*snap, seq))
}
