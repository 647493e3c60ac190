// Package storage provides the local snapshot cache for fetched transactions.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/selfservice0/DynamicShop/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidTimestamp   = errors.New("invalid fetch time")
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

// validateFetchedAt ensures a snapshot carries a fetch time.
func validateFetchedAt(t time.Time) error {
	if t.IsZero() {
		return fmt.Errorf("%w: zero time", ErrInvalidTimestamp)
	}
	return nil
}

// validateTransactions validates a slice of transactions. Empty snapshots are allowed.
func validateTransactions(transactions []model.Transaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	for i := range transactions {
		if err := validateTransaction(&transactions[i]); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if strings.TrimSpace(txn.PlayerName) == "" {
		return fmt.Errorf("%w: missing player name", ErrInvalidTransaction)
	}
	if strings.TrimSpace(txn.Item) == "" {
		return fmt.Errorf("%w: missing item", ErrInvalidTransaction)
	}
	if txn.Type != model.TypeBuy && txn.Type != model.TypeSell {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, txn.Type)
	}
	if txn.Amount < 0 || txn.Price < 0 {
		return fmt.Errorf("%w: negative amount or price", ErrInvalidTransaction)
	}
	return nil
}
