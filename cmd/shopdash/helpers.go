package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/selfservice0/DynamicShop/internal/analytics"
	"github.com/selfservice0/DynamicShop/internal/api"
	"github.com/selfservice0/DynamicShop/internal/common"
	"github.com/selfservice0/DynamicShop/internal/config"
	"github.com/selfservice0/DynamicShop/internal/demo"
	"github.com/selfservice0/DynamicShop/internal/metrics"
	"github.com/selfservice0/DynamicShop/internal/model"
	"github.com/selfservice0/DynamicShop/internal/refresh"
	"github.com/selfservice0/DynamicShop/internal/service"
	"github.com/selfservice0/DynamicShop/internal/storage"
)

// Cache source names.
const (
	sourceAPI  = "api"
	sourceDemo = "demo"
)

// app bundles everything a command needs to read market data.
type app struct {
	settings    *config.Settings
	source      service.DataSource
	refresher   *refresh.Refresher
	engine      *analytics.Engine
	metrics     *metrics.Collectors
	cache       *storage.SQLiteStorage
	sourceName  string
	sourceLabel string
}

// newApp loads the settings and wires the data source, refresher and
// metrics. The snapshot cache is opened only when withCache is set and the
// cache is enabled.
func newApp(ctx context.Context, withCache bool) (*app, error) {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, common.NewUserError("Invalid configuration", err)
	}

	a := &app{
		settings: settings,
		metrics:  metrics.New(),
		engine:   analytics.NewEngine(settings.Insights.TopN),
	}
	a.metrics.RegisterMemo(a.engine.Stats)

	if err := a.initSource(); err != nil {
		return nil, err
	}

	kind, err := analytics.ParseLeaderboardKind(settings.Leaderboard.Kind)
	if err != nil {
		return nil, common.NewUserError("Invalid leaderboard kind", err)
	}

	opts := []refresh.Option{
		refresh.WithLogger(slog.Default()),
		refresh.WithLimits(settings.Refresh.TransactionLimit, settings.Leaderboard.Limit, settings.Trends.Limit),
		refresh.WithManualMinInterval(settings.Refresh.ManualMinInterval),
		refresh.WithLeaderboardKind(kind),
		refresh.WithObserver(a.metrics),
	}

	if withCache && settings.Cache.Enabled {
		cache, err := initCache(ctx, settings.Cache.Path)
		if err != nil {
			return nil, err
		}
		a.cache = cache
		opts = append(opts, refresh.WithCache(cache, a.sourceName, settings.Cache.Keep))
	}

	a.refresher = refresh.New(a.source, analytics.NewStore(), opts...)
	return a, nil
}

func (a *app) initSource() error {
	loc := a.settings.Location()

	if viper.GetBool("demo") {
		cfg := demo.DefaultGeneratorConfig()
		cfg.Location = loc
		source, gen := demo.NewGeneratedSource(cfg, time.Now(), demo.WithLocation(loc))
		slog.Debug("Using demo market", "generator", gen.String(), "transactions", source.Len())

		a.source = source
		a.sourceName = sourceDemo
		a.sourceLabel = "demo market"
		return nil
	}

	client, err := api.NewClient(a.settings.API.BaseURL,
		api.WithTimeout(a.settings.API.Timeout),
		api.WithLocation(loc),
		api.WithLogger(slog.Default()),
		api.WithRequestObserver(a.metrics.ObserveRequest),
		api.WithDropObserver(a.metrics.ObserveDrop),
	)
	if err != nil {
		return common.NewUserError("Invalid API address", err)
	}

	a.source = client
	a.sourceName = sourceAPI
	a.sourceLabel = client.BaseURL()
	return nil
}

// initCache opens the snapshot database with proper path expansion.
func initCache(ctx context.Context, path string) (*storage.SQLiteStorage, error) {
	cache, err := storage.NewSQLiteStorage(config.ExpandPath(path))
	if err != nil {
		return nil, err
	}

	if err := cache.Migrate(ctx); err != nil {
		_ = cache.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return cache, nil
}

// Close releases the snapshot cache.
func (a *app) Close() error {
	if a.cache == nil {
		return nil
	}
	return a.cache.Close()
}

// serveMetrics starts the metrics endpoint in the background when an
// address is configured. It stops when ctx is cancelled.
func (a *app) serveMetrics(ctx context.Context) {
	addr := a.settings.Metrics.Addr
	if addr == "" {
		return
	}

	go func() {
		slog.Info("Serving metrics", "addr", addr)
		if err := common.Serve(ctx, addr, a.metrics.Routes()); err != nil {
			common.LogError(err, "Metrics server stopped", common.Fields{"addr": addr})
		}
	}()
}

// loadTransactions runs one refresh cycle and returns the fetched snapshot.
// Only the transaction section is required; other sections may fail.
func (a *app) loadTransactions(ctx context.Context) (analytics.Snapshot, *refresh.Result, error) {
	result := a.refresher.Refresh(ctx)
	if err := result.Err(refresh.SectionTransactions); err != nil {
		return analytics.Snapshot{}, result, common.NewUserError(
			fmt.Sprintf("Failed to fetch transactions from %s", a.sourceLabel), err)
	}
	return a.refresher.Store().Snapshot(), result, nil
}

// addViewFlags registers the ledger filter flags on cmd.
func addViewFlags(cmd *cobra.Command) {
	cmd.Flags().String("range", "all", "time range (all, 1h, 24h, 7d, 30d)")
	cmd.Flags().String("search", "", "case-insensitive search over player and item")
	cmd.Flags().String("type", "", "transaction type (BUY or SELL)")
	cmd.Flags().String("sort", "timestamp", "sort column (timestamp, player, type, item, amount, price, category)")
	cmd.Flags().Bool("asc", false, "sort ascending instead of descending")
	cmd.Flags().Int("page", 1, "ledger page")
}

// viewStateFromFlags builds a view state from the flags added by addViewFlags.
func viewStateFromFlags(cmd *cobra.Command, pageSize int) (analytics.ViewState, error) {
	state := analytics.DefaultViewState(pageSize)
	flags := cmd.Flags()

	rangeFlag, _ := flags.GetString("range")
	timeRange, err := analytics.ParseTimeRange(rangeFlag)
	if err != nil {
		return state, common.NewUserError("Invalid --range", err)
	}

	typeFlag, _ := flags.GetString("type")
	txType, ok := model.ParseTransactionType(typeFlag)
	if !ok {
		return state, common.NewUserError("Invalid --type",
			fmt.Errorf("unknown transaction type %q (want BUY or SELL)", typeFlag))
	}

	sortFlag, _ := flags.GetString("sort")
	column, err := analytics.ParseSortColumn(sortFlag)
	if err != nil {
		return state, common.NewUserError("Invalid --sort", err)
	}

	dir := analytics.Descending
	if asc, _ := flags.GetBool("asc"); asc {
		dir = analytics.Ascending
	}

	search, _ := flags.GetString("search")
	page, _ := flags.GetInt("page")

	state = state.
		WithTimeRange(timeRange).
		WithSearch(search).
		WithTypeFilter(txType).
		WithSortOrder(column, dir)
	if page > 1 {
		state.Page = page
	}
	return state, nil
}

// normalizeItem upper-cases an item key typed by the user.
func normalizeItem(item string) string {
	return strings.ToUpper(strings.TrimSpace(item))
}
