// Package testutil provides shared fixtures and helpers for tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/selfservice0/DynamicShop/internal/model"
	"github.com/selfservice0/DynamicShop/internal/storage"
)

// TestDB represents a migrated test snapshot cache.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a new in-memory snapshot cache.
// It automatically handles migrations and cleanup.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage: store,
		t:       t,
	}
}

// SeedSnapshot stores txs as a snapshot fetched at fetchedAt or fails the test.
func (db *TestDB) SeedSnapshot(fetchedAt time.Time, txs []model.Transaction) {
	db.t.Helper()

	if _, err := db.Storage.SaveSnapshot(context.Background(), "test", fetchedAt, txs); err != nil {
		db.t.Fatalf("failed to seed snapshot: %v", err)
	}
}
