// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/selfservice0/DynamicShop/internal/model"
)

// MaxLimit is the largest record limit the shop API honours.
const MaxLimit = 1000

// CatalogFilter narrows a shop catalog query.
type CatalogFilter struct {
	Query    string
	Category string
}

// DataSource defines the contract for reading shop market data.
// All operations are read-only.
type DataSource interface {
	// Transaction logs
	RecentTransactions(ctx context.Context, limit int) ([]model.Transaction, error)
	PlayerTransactions(ctx context.Context, player string, limit int) ([]model.Transaction, error)
	ItemTransactions(ctx context.Context, item string, limit int) ([]model.Transaction, error)

	// Aggregates
	Stats(ctx context.Context) (*model.Stats, error)
	EconomyHealth(ctx context.Context) (*model.EconomyHealth, error)
	Leaderboard(ctx context.Context, kind string, limit int) ([]model.LeaderboardEntry, error)
	Trends(ctx context.Context, limit int) (*model.TrendBuckets, error)
	PriceHistory(ctx context.Context, item string, hours int) ([]model.PricePoint, error)
	TimeDistribution(ctx context.Context, hours int) ([]model.TimeSlot, error)

	// Catalog
	ShopItems(ctx context.Context, filter CatalogFilter) ([]model.ShopItem, error)
	ShopCategories(ctx context.Context) ([]model.ShopCategory, error)
	ItemDetail(ctx context.Context, item string) (*model.ItemDetail, error)
}

// SnapshotMeta describes a cached transaction snapshot.
type SnapshotMeta struct {
	FetchedAt time.Time
	Source    string
	ID        int64
	Count     int
}

// SnapshotStore defines the contract for the local snapshot cache.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, source string, fetchedAt time.Time, txs []model.Transaction) (*SnapshotMeta, error)
	LatestSnapshot(ctx context.Context) (*SnapshotMeta, []model.Transaction, error)
	ListSnapshots(ctx context.Context, limit int) ([]SnapshotMeta, error)
	PruneSnapshots(ctx context.Context, keep int) (int, error)
	Close() error
}
