package demo

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/selfservice0/DynamicShop/internal/common"
	"github.com/selfservice0/DynamicShop/internal/model"
	"github.com/selfservice0/DynamicShop/internal/service"
)

// Record limits used by the item detail view.
const (
	detailRecentLimit = 50
	detailTraderLimit = 10
	initialStock      = 1000.0
)

var _ service.DataSource = (*Source)(nil)

// Source is an in-memory DataSource backed by a transaction log.
// It is safe for concurrent use.
type Source struct {
	clock func() time.Time
	loc   *time.Location
	txs   []model.Transaction
	mu    sync.RWMutex
}

// Option configures a Source.
type Option func(*Source)

// WithClock sets the time source used for relative windows.
func WithClock(clock func() time.Time) Option {
	return func(s *Source) {
		s.clock = clock
	}
}

// WithLocation sets the zone used for hour keys and hour-of-day slots.
func WithLocation(loc *time.Location) Option {
	return func(s *Source) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// NewSource creates a source over txs.
func NewSource(txs []model.Transaction, opts ...Option) *Source {
	s := &Source{
		clock: time.Now,
		loc:   time.Local,
		txs:   slices.Clone(txs),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewGeneratedSource creates a source filled by a generator ending at now.
func NewGeneratedSource(config GeneratorConfig, now time.Time, opts ...Option) (*Source, *Generator) {
	gen := NewGenerator(config)
	return NewSource(gen.Generate(now), opts...), gen
}

// Append adds transactions to the log.
func (s *Source) Append(txs ...model.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = append(s.txs, txs...)
}

// Len returns the number of logged transactions.
func (s *Source) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.txs)
}

func (s *Source) snapshot() []model.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.txs)
}

// RecentTransactions returns the newest limit transactions.
func (s *Source) RecentTransactions(ctx context.Context, limit int) ([]model.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return FilterTransactions(s.snapshot(), limit, nil), nil
}

// PlayerTransactions returns the newest limit transactions of player.
func (s *Source) PlayerTransactions(ctx context.Context, player string, limit int) ([]model.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return FilterTransactions(s.snapshot(), limit, func(tx model.Transaction) bool {
		return strings.EqualFold(tx.PlayerName, player)
	}), nil
}

// ItemTransactions returns the newest limit transactions of item.
func (s *Source) ItemTransactions(ctx context.Context, item string, limit int) ([]model.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return FilterTransactions(s.snapshot(), limit, func(tx model.Transaction) bool {
		return strings.EqualFold(tx.Item, item)
	}), nil
}

// Stats returns the aggregate counters.
func (s *Source) Stats(ctx context.Context) (*model.Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stats := ComputeStats(s.snapshot())
	return &stats, nil
}

// EconomyHealth returns the economy metrics.
func (s *Source) EconomyHealth(ctx context.Context) (*model.EconomyHealth, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	health := ComputeEconomyHealth(s.snapshot(), s.clock())
	return &health, nil
}

// Leaderboard returns the top limit players for kind.
func (s *Source) Leaderboard(ctx context.Context, kind string, limit int) ([]model.LeaderboardEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ComputeLeaderboard(s.snapshot(), kind, limit), nil
}

// Trends returns the hot, rising and falling items.
func (s *Source) Trends(ctx context.Context, limit int) (*model.TrendBuckets, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	trends := ComputeTrends(s.snapshot(), limit, s.clock())
	return &trends, nil
}

// PriceHistory returns hourly price points for item.
func (s *Source) PriceHistory(ctx context.Context, item string, hours int) ([]model.PricePoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ComputePriceHistory(s.snapshot(), item, hours, s.clock(), s.loc), nil
}

// TimeDistribution returns the hour-of-day activity histogram.
func (s *Source) TimeDistribution(ctx context.Context, hours int) ([]model.TimeSlot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ComputeTimeDistribution(s.snapshot(), hours, s.clock(), s.loc), nil
}

// ShopItems returns catalog items matching filter, sorted by display name.
func (s *Source) ShopItems(ctx context.Context, filter service.CatalogFilter) ([]model.ShopItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stock := s.stockLevels()
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	category := strings.ToUpper(strings.TrimSpace(filter.Category))

	items := make([]model.ShopItem, 0, len(defaultCatalog))
	for _, entry := range defaultCatalog {
		if query != "" && !strings.Contains(strings.ToLower(entry.item), query) {
			continue
		}
		if category != "" && entry.category != category {
			continue
		}
		items = append(items, entry.shopItem(stock[entry.item]))
	}

	slices.SortFunc(items, func(a, b model.ShopItem) int {
		return strings.Compare(a.DisplayName, b.DisplayName)
	})
	return items, nil
}

// ShopCategories returns each category holding at least one item.
func (s *Source) ShopCategories(ctx context.Context) ([]model.ShopCategory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var categories []model.ShopCategory
	index := make(map[string]int)
	for _, entry := range defaultCatalog {
		i, ok := index[entry.category]
		if !ok {
			i = len(categories)
			index[entry.category] = i
			categories = append(categories, model.ShopCategory{
				ID:          entry.category,
				DisplayName: common.PrettifyItem(entry.category),
			})
		}
		categories[i].ItemCount++
	}
	return categories, nil
}

// ItemDetail returns prices, totals and recent traders for item.
// Unknown items return an error wrapping common.ErrNotFound.
func (s *Source) ItemDetail(ctx context.Context, item string) (*model.ItemDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entry, ok := findCatalogEntry(item)
	if !ok {
		return nil, fmt.Errorf("item %q: %w", item, common.ErrNotFound)
	}

	txs := FilterTransactions(s.snapshot(), -1, func(tx model.Transaction) bool {
		return strings.EqualFold(tx.Item, entry.item)
	})

	detail := &model.ItemDetail{
		ShopItem:           entry.shopItem(s.stockLevels()[entry.item]),
		RecentTransactions: txs[:min(detailRecentLimit, len(txs))],
		RecentBuyers:       make([]model.RecentTrader, 0),
		RecentSellers:      make([]model.RecentTrader, 0),
	}

	for _, tx := range txs {
		trader := model.RecentTrader{
			PlayerName: tx.PlayerName,
			Timestamp:  tx.RawTimestamp,
			Amount:     tx.Amount,
			Price:      tx.Price,
		}
		switch tx.Type {
		case model.TypeBuy:
			detail.TotalBuys++
			if len(detail.RecentBuyers) < detailTraderLimit {
				detail.RecentBuyers = append(detail.RecentBuyers, trader)
			}
		case model.TypeSell:
			detail.TotalSells++
			if len(detail.RecentSellers) < detailTraderLimit {
				detail.RecentSellers = append(detail.RecentSellers, trader)
			}
		}
		detail.TotalVolume += tx.Price
	}
	return detail, nil
}

// stockLevels tracks stock as sells add to and buys draw from the shop.
func (s *Source) stockLevels() map[string]float64 {
	stock := make(map[string]float64, len(defaultCatalog))
	for _, entry := range defaultCatalog {
		stock[entry.item] = initialStock
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tx := range s.txs {
		if _, ok := stock[tx.Item]; !ok {
			continue
		}
		switch tx.Type {
		case model.TypeBuy:
			stock[tx.Item] = max(0, stock[tx.Item]-float64(tx.Amount))
		case model.TypeSell:
			stock[tx.Item] += float64(tx.Amount)
		}
	}
	return stock
}
