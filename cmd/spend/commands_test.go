package main

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spendsync/internal/apitest"
	"github.com/Veraticus/spendsync/internal/common"
	"github.com/Veraticus/spendsync/internal/model"
	"github.com/Veraticus/spendsync/internal/testutil"
)

func setupServer(t *testing.T) *apitest.Server {
	t.Helper()
	return setupServerWith(t, apitest.DemoSnapshot(time.Now()))
}

func setupServerWith(t *testing.T, seed model.Snapshot) *apitest.Server {
	t.Helper()

	srv := testutil.SetupServer(t, seed)

	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("server.url", srv.URL())
	viper.Set("server.retries", 1)
	viper.Set("cache.enabled", false)
	viper.Set("ui.currency", "INR")

	return srv
}

func runCommand(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func findAccount(t *testing.T, snap model.Snapshot, name string) (model.Account, bool) {
	t.Helper()
	for _, acc := range snap.Accounts {
		if acc.Name == name {
			return acc, true
		}
	}
	return model.Account{}, false
}

func TestAccountsList(t *testing.T) {
	setupServer(t)

	out, err := runCommand(t, accountsCmd(), "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "HDFC Savings")
	assert.Contains(t, out, "Wallet")
	assert.Contains(t, out, "Credit Card")
}

func TestAccountsAdd(t *testing.T) {
	srv := setupServer(t)

	out, err := runCommand(t, accountsCmd(), "", "add", "Trip", "--type", "cash", "--balance", "600")
	require.NoError(t, err)
	assert.Contains(t, out, "Account added")

	acc, ok := findAccount(t, srv.Snapshot(), "Trip")
	require.True(t, ok)
	assert.Equal(t, model.ID("trip_4"), acc.ID)
	assert.Equal(t, "cash", acc.Type)
	assert.True(t, acc.Balance.Equal(decimal.NewFromInt(600)))
	assert.False(t, acc.Active)
}

func TestAccountsAdd_InvalidBalance(t *testing.T) {
	srv := setupServer(t)

	_, err := runCommand(t, accountsCmd(), "", "add", "Trip", "--balance", "lots")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	assert.Len(t, srv.Snapshot().Accounts, 3)
	assert.Zero(t, srv.Count(apitest.PathAddAccount))
}

func TestAccountsActivate(t *testing.T) {
	srv := setupServer(t)

	out, err := runCommand(t, accountsCmd(), "", "activate", "wallet_2")
	require.NoError(t, err)
	assert.Contains(t, out, "Wallet is now active")

	active, ok := srv.Snapshot().ActiveAccount()
	require.True(t, ok)
	assert.Equal(t, model.ID("wallet_2"), active.ID)
}

func TestAccountsActivate_AlreadyActive(t *testing.T) {
	srv := setupServer(t)

	out, err := runCommand(t, accountsCmd(), "", "activate", "hdfc_savings_1")
	require.NoError(t, err)
	assert.Contains(t, out, "HDFC Savings is now active")
	assert.Zero(t, srv.Count(apitest.PathToggleAccount))
}

func TestAccountsActivate_Unknown(t *testing.T) {
	srv := setupServer(t)

	_, err := runCommand(t, accountsCmd(), "", "activate", "nope")
	require.Error(t, err)
	assert.True(t, common.IsNotFound(err))
	assert.Zero(t, srv.Count(apitest.PathToggleAccount))
}

func TestAccountsDelete(t *testing.T) {
	t.Run("declined", func(t *testing.T) {
		srv := setupServer(t)

		out, err := runCommand(t, accountsCmd(), "n\n", "delete", "wallet_2")
		require.NoError(t, err)
		assert.Contains(t, out, "Delete Wallet and all of its transactions?")
		assert.Contains(t, out, "Nothing deleted")
		_, ok := srv.Snapshot().Account("wallet_2")
		assert.True(t, ok)
	})

	t.Run("confirmed", func(t *testing.T) {
		srv := setupServer(t)

		out, err := runCommand(t, accountsCmd(), "y\n", "delete", "wallet_2")
		require.NoError(t, err)
		assert.Contains(t, out, "Account deleted")

		snap := srv.Snapshot()
		_, ok := snap.Account("wallet_2")
		assert.False(t, ok)
		for _, txn := range snap.Transactions {
			assert.NotEqual(t, model.ID("wallet_2"), txn.AccountID)
		}
	})

	t.Run("skip prompt", func(t *testing.T) {
		srv := setupServer(t)

		out, err := runCommand(t, accountsCmd(), "", "delete", "credit_card_3", "--yes")
		require.NoError(t, err)
		assert.Contains(t, out, "Account deleted")
		assert.Len(t, srv.Snapshot().Accounts, 2)
	})

	t.Run("unknown account", func(t *testing.T) {
		srv := setupServer(t)

		_, err := runCommand(t, accountsCmd(), "", "delete", "nope", "--yes")
		require.Error(t, err)
		assert.True(t, common.IsNotFound(err))
		assert.Zero(t, srv.Count(apitest.PathDeleteAccount))
	})

	t.Run("server refuses", func(t *testing.T) {
		srv := setupServer(t)
		srv.Fail(apitest.PathDeleteAccount, http.StatusInternalServerError)

		_, err := runCommand(t, accountsCmd(), "", "delete", "wallet_2", "--yes")
		require.Error(t, err)
		assert.True(t, common.NeedsReload(err))
		_, ok := srv.Snapshot().Account("wallet_2")
		assert.True(t, ok)
	})
}

func TestTxAdd(t *testing.T) {
	srv := setupServer(t)

	out, err := runCommand(t, txCmd(), "",
		"add", "--title", "Chai", "--category", "Food", "--amount", "20", "--date", "2024-06-01")
	require.NoError(t, err)
	assert.Contains(t, out, "Transaction added")

	var found *model.Transaction
	for _, txn := range srv.Snapshot().Transactions {
		if txn.Title == "Chai" {
			found = &txn
			break
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, model.ID("hdfc_savings_1"), found.AccountID)
	assert.Equal(t, model.TypeExpense, found.Type)
	assert.True(t, found.Amount.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, "2024-06-01", found.Date.Format("2006-01-02"))
}

func TestTxAdd_Rejected(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "negative amount", args: []string{"--amount=-5"}},
		{name: "not a number", args: []string{"--amount", "ten"}},
		{name: "bad type", args: []string{"--amount", "5", "--type", "transfer"}},
		{name: "bad date", args: []string{"--amount", "5", "--date", "06/01/2024"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := setupServer(t)

			args := append([]string{"add", "--title", "Chai", "--category", "Food"}, tt.args...)
			_, err := runCommand(t, txCmd(), "", args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidInput)
			assert.Zero(t, srv.Count(apitest.PathAddTransaction))
		})
	}
}

func TestTxAdd_NoActiveAccount(t *testing.T) {
	setupServerWith(t, testutil.NewSnapshotBuilder(t).WithAccount("cash_1", "Cash").Build())

	_, err := runCommand(t, txCmd(), "", "add", "--title", "Chai", "--category", "Food", "--amount", "5")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrPrecondition)
	assert.EqualError(t, err, "cannot add transaction: no account is active")
}

func TestTxFlags_DefaultsToToday(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	txn, err := txFlags{title: " Chai ", category: "Food", amount: "12,50", txnType: "Income"}.transaction(now)
	require.NoError(t, err)

	assert.Equal(t, "Chai", txn.Title)
	assert.Equal(t, model.TypeIncome, txn.Type)
	assert.True(t, txn.Amount.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, model.NewDate(now), txn.Date)
}

func TestBudgetSet(t *testing.T) {
	srv := setupServer(t)

	out, err := runCommand(t, budgetCmd(), "", "set", "20000")
	require.NoError(t, err)
	assert.Contains(t, out, "Budget updated")

	acc, ok := srv.Snapshot().Account("hdfc_savings_1")
	require.True(t, ok)
	assert.True(t, acc.Limit().Equal(decimal.NewFromInt(20000)))
}

func TestSummary(t *testing.T) {
	setupServer(t)

	out, err := runCommand(t, summaryCmd(), "")
	require.NoError(t, err)
	assert.Contains(t, out, "Spending Summary")
	assert.Contains(t, out, "HDFC Savings")
	assert.Contains(t, out, "51.4%")
	assert.Contains(t, out, "Spending by category")
}

func TestSummary_ServerDown(t *testing.T) {
	srv := setupServer(t)
	srv.Fail(apitest.PathData, http.StatusServiceUnavailable)

	_, err := runCommand(t, summaryCmd(), "")
	require.Error(t, err)
	assert.Equal(t, "Could not load data from the server", common.UserMessage(err))
}

func TestVersion(t *testing.T) {
	out, err := runCommand(t, versionCmd(), "")
	require.NoError(t, err)
	assert.Equal(t, "spend version dev\n", out)
}
