package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spendsync/internal/common"
	"github.com/Veraticus/spendsync/internal/model"
)

// createTestCache opens a migrated cache in a temp dir.
func createTestCache(t *testing.T) *SQLiteCache {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cache", "snapshot.db")

	cache, err := NewSQLiteCache(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	require.NoError(t, cache.Migrate(context.Background()))
	return cache
}

func testSnapshot() model.Snapshot {
	return model.Snapshot{
		Accounts: []model.Account{
			{
				ID:          "savings_1",
				Name:        "Savings",
				Type:        "Bank",
				Balance:     decimal.RequireFromString("1250.75"),
				BudgetLimit: decimal.NewNullDecimal(decimal.NewFromInt(2000)),
				Active:      true,
			},
			{
				ID:      "wallet_2",
				Name:    "Wallet",
				Type:    "Cash",
				Balance: decimal.RequireFromString("-20.5"),
			},
		},
		Transactions: []model.Transaction{
			{
				ID:        "2",
				Title:     "Bus",
				Category:  "Transport",
				Amount:    decimal.RequireFromString("2.40"),
				Type:      model.TypeExpense,
				AccountID: "wallet_2",
				Date:      model.NewDate(time.Date(2024, 2, 3, 8, 15, 0, 123000000, time.UTC)),
			},
			{
				ID:        "1",
				Title:     "Salary",
				Category:  "Income",
				Amount:    decimal.NewFromInt(3000),
				Type:      model.TypeIncome,
				AccountID: "savings_1",
			},
		},
	}
}

func TestMigrate_IsIdempotent(t *testing.T) {
	cache := createTestCache(t)
	require.NoError(t, cache.Migrate(context.Background()))

	var version int
	require.NoError(t, cache.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestLoadSnapshot_Empty(t *testing.T) {
	cache := createTestCache(t)

	_, err := cache.LoadSnapshot(context.Background())
	require.Error(t, err)
	assert.True(t, common.IsNotFound(err))
}

func TestSaveAndLoadSnapshot(t *testing.T) {
	cache := createTestCache(t)
	ctx := context.Background()
	want := testSnapshot()

	before := time.Now().Add(-time.Second)
	require.NoError(t, cache.SaveSnapshot(ctx, want))

	got, err := cache.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.True(t, got.SavedAt.After(before))

	require.Len(t, got.Snapshot.Accounts, 2)
	assert.Equal(t, model.ID("savings_1"), got.Snapshot.Accounts[0].ID)
	assert.True(t, got.Snapshot.Accounts[0].Active)
	assert.True(t, got.Snapshot.Accounts[0].Balance.Equal(want.Accounts[0].Balance))
	assert.True(t, got.Snapshot.Accounts[0].Limit().Equal(decimal.NewFromInt(2000)))
	assert.False(t, got.Snapshot.Accounts[1].BudgetLimit.Valid)
	assert.True(t, got.Snapshot.Accounts[1].Balance.Equal(decimal.RequireFromString("-20.5")))

	require.Len(t, got.Snapshot.Transactions, 2)
	first := got.Snapshot.Transactions[0]
	assert.Equal(t, model.ID("2"), first.ID)
	assert.Equal(t, model.ID("wallet_2"), first.AccountID)
	assert.Equal(t, model.TypeExpense, first.Type)
	assert.True(t, first.Amount.Equal(decimal.RequireFromString("2.4")))
	assert.True(t, first.Date.Equal(want.Transactions[0].Date.Time))
	assert.True(t, got.Snapshot.Transactions[1].Date.IsZero())
}

func TestSaveSnapshot_ReplacesPrevious(t *testing.T) {
	cache := createTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SaveSnapshot(ctx, testSnapshot()))
	require.NoError(t, cache.SaveSnapshot(ctx, model.Snapshot{}))

	got, err := cache.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.NotNil(t, got.Snapshot.Accounts)
	assert.Empty(t, got.Snapshot.Accounts)
	assert.Empty(t, got.Snapshot.Transactions)
}

func TestSaveSnapshot_Invalid(t *testing.T) {
	cache := createTestCache(t)
	ctx := context.Background()
	require.NoError(t, cache.SaveSnapshot(ctx, testSnapshot()))

	dup := testSnapshot()
	dup.Accounts[1].ID = dup.Accounts[0].ID
	assert.ErrorIs(t, cache.SaveSnapshot(ctx, dup), ErrInvalidSnapshot)

	got, err := cache.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Snapshot.Accounts, 2, "previous snapshot survives a rejected save")
}

func TestNewSQLiteCache_EmptyPath(t *testing.T) {
	_, err := NewSQLiteCache("  ")
	assert.ErrorIs(t, err, ErrEmptyString)
}
