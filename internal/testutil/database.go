// Package testutil provides fixtures shared by the tests of the dashboard,
// the command line and anything else that needs a server, a cache or a
// hand-built snapshot.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Veraticus/spendsync/internal/api"
	"github.com/Veraticus/spendsync/internal/apitest"
	"github.com/Veraticus/spendsync/internal/common"
	"github.com/Veraticus/spendsync/internal/model"
	"github.com/Veraticus/spendsync/internal/storage"
)

// SetupCache creates a migrated snapshot cache in a temporary directory and
// stores seed in it when given. The cache is closed when the test ends.
//
// Example:
//
//	cache := testutil.SetupCache(t, apitest.DemoSnapshot(now))
//	session := engine.NewWithConfig(client, engine.Config{Cache: cache})
func SetupCache(t *testing.T, seed ...model.Snapshot) *storage.SQLiteCache {
	t.Helper()

	cache, err := storage.NewSQLiteCache(filepath.Join(t.TempDir(), "snapshot.db"))
	if err != nil {
		t.Fatalf("failed to create test cache: %v", err)
	}
	t.Cleanup(func() {
		if err := cache.Close(); err != nil {
			t.Logf("failed to close test cache: %v", err)
		}
	})

	ctx := context.Background()
	if err := cache.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	for _, snap := range seed {
		if err := cache.SaveSnapshot(ctx, snap); err != nil {
			t.Fatalf("failed to seed cache: %v", err)
		}
	}

	return cache
}

// SetupServer starts a fake sync server seeded with seed and stops it when
// the test ends.
func SetupServer(t *testing.T, seed model.Snapshot) *apitest.Server {
	t.Helper()

	srv := apitest.NewServer(seed)
	t.Cleanup(srv.Close)
	return srv
}

// NewClient returns a client for srv that gives up after the first attempt,
// so failure paths run without backoff delays.
func NewClient(srv *apitest.Server) *api.Client {
	return api.NewClient(srv.URL(), api.WithRetry(common.RetryOptions{MaxAttempts: 1}))
}
