package engine

import (
	"context"
	"fmt"

	"github.com/Veraticus/spendsync/internal/aggregate"
	"github.com/Veraticus/spendsync/internal/model"
	"github.com/Veraticus/spendsync/internal/service"
	"github.com/Veraticus/spendsync/internal/state"
)

// Config holds configuration options for a session.
type Config struct {
	Cache       service.SnapshotCache
	Mutator     []MutatorOption
	RecentLimit int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		RecentLimit: aggregate.DefaultRecentLimit,
	}
}

// Session wires a store, a controller and a mutator around one remote.
// Like the store, it must only be used from one goroutine; tasks it hands
// out may run anywhere.
type Session struct {
	store       *state.Store
	controller  *Controller
	mutator     *Mutator
	recentLimit int
}

// New creates a session with the default configuration.
func New(remote service.Remote) *Session {
	return NewWithConfig(remote, DefaultConfig())
}

// NewWithConfig creates a session with custom configuration.
func NewWithConfig(remote service.Remote, config Config) *Session {
	store := state.New()
	controller := NewController(store, remote, config.Cache)
	if config.RecentLimit <= 0 {
		config.RecentLimit = aggregate.DefaultRecentLimit
	}
	return &Session{
		store:       store,
		controller:  controller,
		mutator:     NewMutator(store, remote, controller, config.Mutator...),
		recentLimit: config.RecentLimit,
	}
}

// Store exposes the underlying store, mainly for subscriptions.
func (s *Session) Store() *state.Store {
	return s.store
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() model.Snapshot {
	return s.store.Snapshot()
}

// Dashboard derives everything the presentation layer shows.
func (s *Session) Dashboard() aggregate.Dashboard {
	return aggregate.Build(s.store.Snapshot(), s.recentLimit)
}

// Syncing reports whether a refresh is in flight.
func (s *Session) Syncing() bool {
	return s.controller.Syncing()
}

// Dispatch applies cmd locally and returns its confirmation task.
func (s *Session) Dispatch(cmd Command) (Task, error) {
	return s.mutator.Dispatch(cmd)
}

// Reconcile folds a task result back into the store.
func (s *Session) Reconcile(res Result) Outcome {
	return s.mutator.Reconcile(res)
}

// Refresh issues a full refresh.
func (s *Session) Refresh() Task {
	return s.controller.Refresh()
}

// Restore returns the task that loads the cached snapshot, or nil without a cache.
func (s *Session) Restore() Task {
	return s.controller.Restore()
}

// Await runs task and every follow-up it schedules to completion on the
// calling goroutine. It returns the notices collected along the way and the
// first user-facing error.
func (s *Session) Await(ctx context.Context, task Task) ([]string, error) {
	var notices []string
	for task != nil {
		if err := ctx.Err(); err != nil {
			return notices, fmt.Errorf("sync interrupted: %w", err)
		}
		outcome := s.mutator.Reconcile(task(ctx))
		if outcome.Notice != "" {
			notices = append(notices, outcome.Notice)
		}
		if outcome.Err != nil {
			return notices, outcome.Err
		}
		task = outcome.Next
	}
	return notices, nil
}

// Execute dispatches cmd and awaits its confirmation.
func (s *Session) Execute(ctx context.Context, cmd Command) ([]string, error) {
	task, err := s.Dispatch(cmd)
	if err != nil {
		return nil, err
	}
	return s.Await(ctx, task)
}

// Warm loads the cached snapshot, if any, and then refreshes from the server.
func (s *Session) Warm(ctx context.Context) ([]string, error) {
	var notices []string
	if restore := s.Restore(); restore != nil {
		n, err := s.Await(ctx, restore)
		notices = append(notices, n...)
		if err != nil {
			return notices, err
		}
	}
	n, err := s.Await(ctx, s.Refresh())
	return append(notices, n...), err
}
