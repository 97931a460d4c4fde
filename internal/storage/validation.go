package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/spendsync/internal/model"
)

// Validation errors.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrEmptyString     = errors.New("string parameter cannot be empty")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateSnapshot rejects snapshots the schema cannot hold.
func validateSnapshot(snap model.Snapshot) error {
	seen := make(map[model.ID]struct{}, len(snap.Accounts))
	for i, acc := range snap.Accounts {
		if acc.ID == "" {
			return fmt.Errorf("%w: account at index %d has no id", ErrInvalidSnapshot, i)
		}
		if _, dup := seen[acc.ID]; dup {
			return fmt.Errorf("%w: duplicate account id %q", ErrInvalidSnapshot, acc.ID)
		}
		seen[acc.ID] = struct{}{}
	}
	for i, txn := range snap.Transactions {
		if txn.ID == "" {
			return fmt.Errorf("%w: transaction at index %d has no id", ErrInvalidSnapshot, i)
		}
	}
	return nil
}
