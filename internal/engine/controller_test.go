package engine

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spendsync/internal/common"
	"github.com/Veraticus/spendsync/internal/model"
)

func activeID(t *testing.T, s *Session) model.ID {
	t.Helper()
	acc, ok := s.store.ActiveAccount()
	require.True(t, ok)
	return acc.ID
}

func TestRefresh_ReplacesState(t *testing.T) {
	remote := newFakeRemote(serverSnapshot())
	s := newTestSession(t, remote, nil)

	task := s.Refresh()
	assert.True(t, s.Syncing())

	outcome := s.Reconcile(task(context.Background()))
	require.NoError(t, outcome.Err)
	assert.True(t, outcome.Changed)
	assert.False(t, s.Syncing())
	assert.Equal(t, serverSnapshot(), s.Snapshot())
}

func TestRefresh_OutOfOrderCompletion(t *testing.T) {
	older := serverSnapshot()
	newer := serverSnapshot()
	newer.Accounts[0].Active = false
	newer.Accounts[1].Active = true
	remote := newFakeRemote(older, newer)
	s := newTestSession(t, remote, nil)

	first := s.Refresh()
	second := s.Refresh()

	// Both requests hit the server in issue order, but the second response
	// is delivered first.
	firstResult := first(context.Background())
	secondResult := second(context.Background())

	outcome := s.Reconcile(secondResult)
	assert.True(t, outcome.Changed)
	assert.Equal(t, model.ID("b"), activeID(t, s))
	assert.True(t, s.Syncing())

	outcome = s.Reconcile(firstResult)
	assert.False(t, outcome.Changed, "stale response is discarded")
	assert.NoError(t, outcome.Err)
	assert.Equal(t, model.ID("b"), activeID(t, s))
	assert.False(t, s.Syncing())
}

func TestRefresh_InOrderCompletion(t *testing.T) {
	older := serverSnapshot()
	newer := serverSnapshot()
	newer.Transactions = newer.Transactions[:1]
	remote := newFakeRemote(older, newer)
	s := newTestSession(t, remote, nil)

	first := s.Refresh()
	second := s.Refresh()

	assert.True(t, s.Reconcile(first(context.Background())).Changed)
	assert.Len(t, s.Snapshot().Transactions, 3)
	assert.True(t, s.Reconcile(second(context.Background())).Changed)
	assert.Len(t, s.Snapshot().Transactions, 1)
}

func TestRefresh_Failure(t *testing.T) {
	remote := newFakeRemote(serverSnapshot())
	s := loaded(t, remote)
	before := s.Snapshot()
	remote.failWith(OpRefresh, http.StatusBadGateway)

	_, err := s.Await(context.Background(), s.Refresh())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrRemote)
	assert.Equal(t, "Could not load data from the server", common.UserMessage(err))
	assert.Equal(t, before, s.Snapshot())
	assert.False(t, s.Syncing())
}

func TestRefresh_DoesNotClobberPendingToggle(t *testing.T) {
	remote := newFakeRemote(serverSnapshot())
	s := loaded(t, remote)

	toggle, err := s.Dispatch(SelectAccount{ID: "b"})
	require.NoError(t, err)

	// A refresh issued elsewhere completes while the toggle is still in
	// flight; the server has not seen the toggle yet.
	outcome := s.Reconcile(s.Refresh()(context.Background()))
	require.NoError(t, outcome.Err)
	assert.Equal(t, model.ID("b"), activeID(t, s))
	assert.Equal(t, 1, s.Snapshot().ActiveCount())

	require.NoError(t, s.Reconcile(toggle(context.Background())).Err)

	// Once confirmed, the server is trusted again.
	require.NoError(t, s.Reconcile(s.Refresh()(context.Background())).Err)
	assert.Equal(t, model.ID("a"), activeID(t, s))
}

func TestRefresh_DoesNotResurrectPendingDelete(t *testing.T) {
	remote := newFakeRemote(serverSnapshot())
	s := loaded(t, remote)

	del, err := s.Dispatch(DeleteAccount{ID: "a"})
	require.NoError(t, err)

	require.NoError(t, s.Reconcile(s.Refresh()(context.Background())).Err)
	snap := s.Snapshot()
	_, ok := snap.Account("a")
	assert.False(t, ok)
	for _, txn := range snap.Transactions {
		assert.NotEqual(t, model.ID("a"), txn.AccountID)
	}

	outcome := s.Reconcile(del(context.Background()))
	require.NoError(t, outcome.Err)
	require.NotNil(t, outcome.Next)
	assert.Equal(t, 1, s.controller.journal.len())

	require.NoError(t, s.Reconcile(outcome.Next(context.Background())).Err)
	assert.Equal(t, 0, s.controller.journal.len())
}

func TestRefresh_StaleResultAfterConfirmedToggle(t *testing.T) {
	remote := newFakeRemote(serverSnapshot())
	s := loaded(t, remote)

	// Fetched before the toggle reached the server, delivered after it was confirmed.
	stale := s.Refresh()(context.Background())

	_, err := s.Execute(context.Background(), SelectAccount{ID: "b"})
	require.NoError(t, err)
	require.Equal(t, model.ID("b"), activeID(t, s))

	outcome := s.Reconcile(stale)
	require.NoError(t, outcome.Err)
	assert.True(t, outcome.Changed)
	assert.Equal(t, model.ID("b"), activeID(t, s))
	assert.Equal(t, 1, s.controller.journal.len())

	// A refresh issued after the confirmation is trusted as is.
	require.NoError(t, s.Reconcile(s.Refresh()(context.Background())).Err)
	assert.Equal(t, 0, s.controller.journal.len())
}

func TestRefresh_StaleResultAfterConfirmedDelete(t *testing.T) {
	remote := newFakeRemote(serverSnapshot())
	s := loaded(t, remote)

	stale := s.Refresh()(context.Background())

	del, err := s.Dispatch(DeleteAccount{ID: "b"})
	require.NoError(t, err)
	outcome := s.Reconcile(del(context.Background()))
	require.NoError(t, outcome.Err)
	require.NotNil(t, outcome.Next)

	require.NoError(t, s.Reconcile(stale).Err)
	_, ok := s.Snapshot().Account("b")
	assert.False(t, ok, "deleted account stays gone")
	for _, txn := range s.Snapshot().Transactions {
		assert.NotEqual(t, model.ID("b"), txn.AccountID)
	}
}

func TestRefresh_FailedToggleStopsReplaying(t *testing.T) {
	remote := newFakeRemote(serverSnapshot())
	s := loaded(t, remote)
	remote.failWith(OpToggleAccount, http.StatusServiceUnavailable)

	toggle, err := s.Dispatch(SelectAccount{ID: "b"})
	require.NoError(t, err)
	outcome := s.Reconcile(toggle(context.Background()))
	require.True(t, common.NeedsReload(outcome.Err))

	// The reload the user is told to do restores the server's view.
	_, err = s.Execute(context.Background(), Refresh{})
	require.NoError(t, err)
	assert.Equal(t, model.ID("a"), activeID(t, s))
}

func TestRefresh_PendingAddIsOverwrittenByItsOwnRefresh(t *testing.T) {
	remote := newFakeRemote(serverSnapshot())
	s := loaded(t, remote)

	add, err := s.Dispatch(AddAccount{Account: model.NewAccount{Name: "Cash", Type: "Wallet"}})
	require.NoError(t, err)
	_, ok := s.Snapshot().Account(ProvisionalPrefix + "1")
	require.True(t, ok)

	// An unrelated refresh is authoritative for adds; the add's own refresh follows.
	require.NoError(t, s.Reconcile(s.Refresh()(context.Background())).Err)
	_, ok = s.Snapshot().Account(ProvisionalPrefix + "1")
	assert.False(t, ok)

	outcome := s.Reconcile(add(context.Background()))
	require.NoError(t, outcome.Err)
	assert.NotNil(t, outcome.Next)
}

func TestRefresh_SavesToCache(t *testing.T) {
	remote := newFakeRemote(serverSnapshot())
	cache := &fakeCache{}
	s := newTestSession(t, remote, cache)

	outcome := s.Reconcile(s.Refresh()(context.Background()))
	require.NoError(t, outcome.Err)
	assert.Empty(t, cache.saved, "nothing is written before the refresh is applied")
	require.NotNil(t, outcome.Next)

	assert.NoError(t, s.Reconcile(outcome.Next(context.Background())).Err)
	require.Len(t, cache.saved, 1)
	assert.Equal(t, serverSnapshot(), cache.saved[0])
}

func TestRefresh_StaleResultIsNotCached(t *testing.T) {
	older := serverSnapshot()
	newer := serverSnapshot()
	newer.Transactions = newer.Transactions[:1]
	cache := &fakeCache{}
	s := newTestSession(t, newFakeRemote(older, newer), cache)

	first := s.Refresh()
	second := s.Refresh()
	firstResult := first(context.Background())

	outcome := s.Reconcile(second(context.Background()))
	require.NotNil(t, outcome.Next)
	save := outcome.Next

	outcome = s.Reconcile(firstResult)
	assert.False(t, outcome.Changed)
	assert.Nil(t, outcome.Next)

	require.NoError(t, s.Reconcile(save(context.Background())).Err)
	require.Len(t, cache.saved, 1)
	assert.Len(t, cache.saved[0].Transactions, 1)
}

func TestPersist_SkipsOlderWrites(t *testing.T) {
	cache := &fakeCache{}
	s := newTestSession(t, newFakeRemote(serverSnapshot()), cache)

	newer := s.controller.persist(2, serverSnapshot())
	older := s.controller.persist(1, model.Snapshot{})

	assert.NoError(t, s.Reconcile(newer(context.Background())).Err)
	assert.NoError(t, s.Reconcile(older(context.Background())).Err)
	require.Len(t, cache.saved, 1)
	assert.Equal(t, serverSnapshot(), cache.saved[0])
}

func TestRestore(t *testing.T) {
	cached := serverSnapshot()
	cached.Transactions = nil

	t.Run("applies cache before first refresh", func(t *testing.T) {
		cache := &fakeCache{cached: &cached}
		s := newTestSession(t, newFakeRemote(serverSnapshot()), cache)

		notices, err := s.Await(context.Background(), s.Restore())
		require.NoError(t, err)
		assert.Equal(t, []string{"Showing cached data"}, notices)
		assert.Empty(t, s.Snapshot().Transactions)
	})

	t.Run("ignored once server data landed", func(t *testing.T) {
		cache := &fakeCache{cached: &cached}
		s := newTestSession(t, newFakeRemote(serverSnapshot()), cache)

		restore := s.Restore()
		_, err := s.Await(context.Background(), s.Refresh())
		require.NoError(t, err)

		outcome := s.Reconcile(restore(context.Background()))
		assert.False(t, outcome.Changed)
		assert.Len(t, s.Snapshot().Transactions, 3)
	})

	t.Run("empty cache is not an error", func(t *testing.T) {
		s := newTestSession(t, newFakeRemote(), &fakeCache{})

		outcome := s.Reconcile(s.Restore()(context.Background()))
		assert.NoError(t, outcome.Err)
		assert.False(t, outcome.Changed)
	})

	t.Run("no cache configured", func(t *testing.T) {
		s := newTestSession(t, newFakeRemote(), nil)
		assert.Nil(t, s.Restore())
	})
}

func TestWarm(t *testing.T) {
	cached := serverSnapshot()
	fresh := serverSnapshot()
	fresh.Transactions = fresh.Transactions[:2]
	cache := &fakeCache{cached: &cached}
	remote := newFakeRemote(fresh)
	s := newTestSession(t, remote, cache)

	notices, err := s.Warm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Showing cached data"}, notices)
	assert.Len(t, s.Snapshot().Transactions, 2)
	assert.Len(t, cache.saved, 1)
}

func TestAwait_StopsOnCancelledContext(t *testing.T) {
	remote := newFakeRemote(serverSnapshot())
	s := newTestSession(t, remote, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Await(ctx, s.Refresh())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, remote.calls)
}

func TestJournal_Overlay(t *testing.T) {
	j := newJournal()
	first := j.record(OpToggleAccount, "b")
	second := j.record(OpDeleteAccount, "a")

	snap := serverSnapshot()
	out := j.overlay(snap, 1)

	assert.Equal(t, serverSnapshot(), snap, "overlay does not modify its input")
	require.Len(t, out.Accounts, 1)
	assert.Equal(t, model.ID("b"), out.Accounts[0].ID)
	assert.True(t, out.Accounts[0].Active)
	require.Len(t, out.Transactions, 1)

	j.drop(first)
	j.drop(first)
	assert.Equal(t, 1, j.len())

	out = j.overlay(serverSnapshot(), 1)
	assert.Len(t, out.Accounts, 1)
	assert.False(t, out.Accounts[0].Active, "b stays inactive once the toggle is dropped")

	j.confirm(second, 3)
	assert.Len(t, j.overlay(serverSnapshot(), 3).Accounts, 1, "refreshes up to the watermark are replayed over")
	assert.Len(t, j.overlay(serverSnapshot(), 0).Accounts, 1)
	assert.Len(t, j.overlay(serverSnapshot(), 4).Accounts, 2)

	j.prune(3)
	assert.Equal(t, 1, j.len())
	j.prune(4)
	assert.Equal(t, 0, j.len())
}

func TestJournal_ConfirmWithoutRefreshes(t *testing.T) {
	j := newJournal()
	seq := j.record(OpToggleAccount, "b")

	j.confirm(seq, 0)
	assert.Equal(t, 0, j.len())
}
