package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spendsync/internal/common"
	"github.com/Veraticus/spendsync/internal/model"
	"github.com/Veraticus/spendsync/internal/service"
)

// SaveSnapshot replaces the cached snapshot with snap.
func (s *SQLiteCache) SaveSnapshot(ctx context.Context, snap model.Snapshot) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSnapshot(snap); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"accounts", "transactions", "snapshot_meta"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if err = insertAccounts(ctx, tx, snap.Accounts); err != nil {
		return err
	}
	if err = insertTransactions(ctx, tx, snap.Transactions); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshot_meta (id, saved_at, account_count, transaction_count) VALUES (1, ?, ?, ?)`,
		time.Now().UTC(), len(snap.Accounts), len(snap.Transactions))
	if err != nil {
		return fmt.Errorf("failed to save snapshot metadata: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

func insertAccounts(ctx context.Context, tx *sql.Tx, accounts []model.Account) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO accounts (position, id, name, type, balance, budget_limit, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare account insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, acc := range accounts {
		var limit sql.NullString
		if acc.BudgetLimit.Valid {
			limit = sql.NullString{String: acc.BudgetLimit.Decimal.String(), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, i, string(acc.ID), acc.Name, acc.Type,
			acc.Balance.String(), limit, acc.Active); err != nil {
			return fmt.Errorf("failed to insert account %s: %w", acc.ID, err)
		}
	}
	return nil
}

func insertTransactions(ctx context.Context, tx *sql.Tx, transactions []model.Transaction) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (position, id, title, category, amount, type, date, account_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare transaction insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, txn := range transactions {
		var date sql.NullString
		if !txn.Date.IsZero() {
			date = sql.NullString{String: txn.Date.UTC().Format(time.RFC3339Nano), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, i, string(txn.ID), txn.Title, txn.Category,
			txn.Amount.String(), string(txn.Type), date, string(txn.AccountID)); err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
		}
	}
	return nil
}

// LoadSnapshot returns the cached snapshot, or a common.NotFoundError if
// nothing has been saved yet.
func (s *SQLiteCache) LoadSnapshot(ctx context.Context) (service.CachedSnapshot, error) {
	if err := validateContext(ctx); err != nil {
		return service.CachedSnapshot{}, err
	}

	var savedAt time.Time
	err := s.db.QueryRowContext(ctx, `SELECT saved_at FROM snapshot_meta WHERE id = 1`).Scan(&savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return service.CachedSnapshot{}, &common.NotFoundError{Kind: "snapshot", ID: s.dbPath}
	}
	if err != nil {
		return service.CachedSnapshot{}, fmt.Errorf("failed to read snapshot metadata: %w", err)
	}

	accounts, err := s.loadAccounts(ctx)
	if err != nil {
		return service.CachedSnapshot{}, err
	}
	transactions, err := s.loadTransactions(ctx)
	if err != nil {
		return service.CachedSnapshot{}, err
	}

	return service.CachedSnapshot{
		SavedAt: savedAt,
		Snapshot: model.Snapshot{
			Accounts:     accounts,
			Transactions: transactions,
		},
	}, nil
}

func (s *SQLiteCache) loadAccounts(ctx context.Context) ([]model.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, balance, budget_limit, active
		FROM accounts
		ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	accounts := []model.Account{}
	for rows.Next() {
		var (
			acc     model.Account
			id      string
			balance string
			limit   sql.NullString
		)
		if err := rows.Scan(&id, &acc.Name, &acc.Type, &balance, &limit, &acc.Active); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		acc.ID = model.ID(id)
		if acc.Balance, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("account %s has a corrupt balance: %w", id, err)
		}
		if limit.Valid {
			d, err := decimal.NewFromString(limit.String)
			if err != nil {
				return nil, fmt.Errorf("account %s has a corrupt budget limit: %w", id, err)
			}
			acc.BudgetLimit = decimal.NewNullDecimal(d)
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

func (s *SQLiteCache) loadTransactions(ctx context.Context) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, category, amount, type, date, account_id
		FROM transactions
		ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	transactions := []model.Transaction{}
	for rows.Next() {
		var (
			txn       model.Transaction
			id        string
			amount    string
			txnType   string
			date      sql.NullString
			accountID string
		)
		if err := rows.Scan(&id, &txn.Title, &txn.Category, &amount, &txnType, &date, &accountID); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.ID = model.ID(id)
		txn.AccountID = model.ID(accountID)
		txn.Type = model.TransactionType(txnType)
		if txn.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("transaction %s has a corrupt amount: %w", id, err)
		}
		if date.Valid {
			if txn.Date, err = model.ParseDate(date.String); err != nil {
				return nil, fmt.Errorf("transaction %s: %w", id, err)
			}
		}
		transactions = append(transactions, txn)
	}
	return transactions, rows.Err()
}
