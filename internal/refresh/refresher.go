// Package refresh runs the dashboard's periodic data fetch.
//
// One cycle fetches every dashboard section concurrently. A failing section
// keeps its error in the Result and never cancels its siblings. Overlapping
// calls share a single in-flight cycle, and manual triggers are rate limited.
package refresh

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/selfservice0/DynamicShop/internal/analytics"
	"github.com/selfservice0/DynamicShop/internal/model"
	"github.com/selfservice0/DynamicShop/internal/service"
)

// ErrThrottled is returned when a manual refresh arrives too soon after the last one.
var ErrThrottled = errors.New("manual refresh throttled")

// Default limits for a cycle.
const (
	DefaultTransactionLimit  = service.MaxLimit
	DefaultLeaderboardLimit  = 10
	DefaultTrendsLimit       = 10
	DefaultManualMinInterval = 2 * time.Second
	DefaultCacheKeep         = 5
)

// Section names one independently fetched part of the dashboard.
type Section string

// Section constants.
const (
	SectionTransactions Section = "transactions"
	SectionStats        Section = "stats"
	SectionEconomy      Section = "economy"
	SectionLeaderboard  Section = "leaderboard"
	SectionTrends       Section = "trends"
)

// Sections lists every section in display order.
var Sections = []Section{
	SectionTransactions,
	SectionStats,
	SectionEconomy,
	SectionLeaderboard,
	SectionTrends,
}

// Result is the outcome of one refresh cycle. Data fields are nil for
// sections that failed.
type Result struct {
	StartedAt       time.Time
	FinishedAt      time.Time
	Errors          map[Section]error
	Stats           *model.Stats
	Economy         *model.EconomyHealth
	Trends          *model.TrendBuckets
	CacheErr        error
	CycleID         string
	LeaderboardKind analytics.LeaderboardKind
	Leaderboard     []model.LeaderboardEntry
	Snapshot        analytics.Snapshot
	Seq             uint64
	Applied         bool // the store took this cycle's transactions
}

// Err returns the error recorded for section, if any.
func (r *Result) Err(section Section) error {
	return r.Errors[section]
}

// OK reports whether every section succeeded.
func (r *Result) OK() bool {
	return len(r.Errors) == 0
}

// Duration returns how long the cycle took.
func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Observer receives per-section and per-cycle timings.
type Observer interface {
	SectionDone(section Section, duration time.Duration, err error)
	CycleDone(result *Result)
}

// Refresher fetches dashboard data from a DataSource into a Store.
// It is safe for concurrent use.
type Refresher struct {
	source  service.DataSource
	store   *analytics.Store
	cache   service.SnapshotStore
	limiter *rate.Limiter
	logger  *slog.Logger
	clock   func() time.Time

	sourceName       string
	observers        []Observer
	group            singleflight.Group
	seq              atomic.Uint64
	transactionLimit int
	leaderboardLimit int
	trendsLimit      int
	cacheKeep        int

	mu   sync.RWMutex
	kind analytics.LeaderboardKind
}

// Option configures a Refresher.
type Option func(*Refresher)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Refresher) {
		r.logger = logger
	}
}

// WithClock sets the time source.
func WithClock(clock func() time.Time) Option {
	return func(r *Refresher) {
		r.clock = clock
	}
}

// WithLimits sets the record limits for transactions, leaderboard and trends.
// Non-positive values keep the defaults.
func WithLimits(transactions, leaderboard, trends int) Option {
	return func(r *Refresher) {
		if transactions > 0 {
			r.transactionLimit = min(transactions, service.MaxLimit)
		}
		if leaderboard > 0 {
			r.leaderboardLimit = leaderboard
		}
		if trends > 0 {
			r.trendsLimit = trends
		}
	}
}

// WithLeaderboardKind sets the initial leaderboard kind.
func WithLeaderboardKind(kind analytics.LeaderboardKind) Option {
	return func(r *Refresher) {
		r.kind = kind
	}
}

// WithManualMinInterval sets the minimum spacing of manual refreshes.
func WithManualMinInterval(interval time.Duration) Option {
	return func(r *Refresher) {
		if interval > 0 {
			r.limiter = rate.NewLimiter(rate.Every(interval), 1)
		}
	}
}

// WithCache saves every applied transaction snapshot to cache, keeping the
// newest keep snapshots.
func WithCache(cache service.SnapshotStore, sourceName string, keep int) Option {
	return func(r *Refresher) {
		r.cache = cache
		r.sourceName = sourceName
		if keep > 0 {
			r.cacheKeep = keep
		}
	}
}

// WithObserver registers an observer.
func WithObserver(o Observer) Option {
	return func(r *Refresher) {
		r.observers = append(r.observers, o)
	}
}

// New creates a refresher that fetches from source into store.
func New(source service.DataSource, store *analytics.Store, opts ...Option) *Refresher {
	r := &Refresher{
		source:           source,
		store:            store,
		limiter:          rate.NewLimiter(rate.Every(DefaultManualMinInterval), 1),
		logger:           slog.Default(),
		clock:            time.Now,
		sourceName:       "api",
		transactionLimit: DefaultTransactionLimit,
		leaderboardLimit: DefaultLeaderboardLimit,
		trendsLimit:      DefaultTrendsLimit,
		cacheKeep:        DefaultCacheKeep,
		kind:             analytics.LeaderboardEarners,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Store returns the store the refresher writes to.
func (r *Refresher) Store() *analytics.Store {
	return r.store
}

// LeaderboardKind returns the kind fetched by each cycle.
func (r *Refresher) LeaderboardKind() analytics.LeaderboardKind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.kind
}

// SetLeaderboardKind changes the kind fetched by later cycles.
func (r *Refresher) SetLeaderboardKind(kind analytics.LeaderboardKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kind = kind
}

// Refresh runs a cycle, or joins the one already in flight.
func (r *Refresher) Refresh(ctx context.Context) *Result {
	v, _, shared := r.group.Do("cycle", func() (any, error) {
		return r.cycle(ctx), nil
	})
	result := v.(*Result)
	if shared {
		r.logger.Debug("Joined in-flight refresh", "cycle_id", result.CycleID)
	}
	return result
}

// TriggerManual runs a user-requested refresh, or returns ErrThrottled if
// one was triggered too recently.
func (r *Refresher) TriggerManual(ctx context.Context) (*Result, error) {
	if !r.limiter.Allow() {
		return nil, ErrThrottled
	}
	return r.Refresh(ctx), nil
}

// FetchLeaderboard fetches a single leaderboard outside a cycle.
func (r *Refresher) FetchLeaderboard(ctx context.Context, kind analytics.LeaderboardKind) ([]model.LeaderboardEntry, error) {
	return r.source.Leaderboard(ctx, string(kind), r.leaderboardLimit)
}

// LoadCached replaces the store's snapshot with the newest cached one.
func (r *Refresher) LoadCached(ctx context.Context) (*service.SnapshotMeta, analytics.Snapshot, error) {
	if r.cache == nil {
		return nil, analytics.Snapshot{}, errors.New("no snapshot cache configured")
	}

	meta, txs, err := r.cache.LatestSnapshot(ctx)
	if err != nil {
		return nil, analytics.Snapshot{}, err
	}
	snap, _ := r.store.ReplaceIfNewer(r.seq.Add(1), txs, meta.FetchedAt)

	r.logger.Info("Loaded cached snapshot",
		"snapshot_id", meta.ID,
		"source", meta.Source,
		"transactions", meta.Count,
		"fetched_at", meta.FetchedAt)
	return meta, snap, nil
}

func (r *Refresher) cycle(ctx context.Context) *Result {
	kind := r.LeaderboardKind()
	result := &Result{
		CycleID:         uuid.NewString(),
		Seq:             r.seq.Add(1),
		StartedAt:       r.clock(),
		LeaderboardKind: kind,
	}

	var (
		txs     []model.Transaction
		errs    = make(map[Section]error)
		errsMu  sync.Mutex
		g       errgroup.Group
		fetched time.Time
	)

	run := func(section Section, fetch func() error) {
		g.Go(func() error {
			start := time.Now()
			err := fetch()
			r.sectionDone(result, section, time.Since(start), err)
			if err != nil {
				errsMu.Lock()
				errs[section] = err
				errsMu.Unlock()
			}
			// Sections degrade independently, so nothing is returned to the group.
			return nil
		})
	}

	run(SectionTransactions, func() (err error) {
		txs, err = r.source.RecentTransactions(ctx, r.transactionLimit)
		fetched = r.clock()
		return err
	})
	run(SectionStats, func() (err error) {
		result.Stats, err = r.source.Stats(ctx)
		return err
	})
	run(SectionEconomy, func() (err error) {
		result.Economy, err = r.source.EconomyHealth(ctx)
		return err
	})
	run(SectionLeaderboard, func() (err error) {
		result.Leaderboard, err = r.source.Leaderboard(ctx, string(kind), r.leaderboardLimit)
		return err
	})
	run(SectionTrends, func() (err error) {
		result.Trends, err = r.source.Trends(ctx, r.trendsLimit)
		return err
	})
	_ = g.Wait()

	result.Errors = errs
	if errs[SectionTransactions] == nil {
		result.Snapshot, result.Applied = r.store.ReplaceIfNewer(result.Seq, txs, fetched)
		if !result.Applied {
			r.logger.Warn("Discarded stale transactions",
				"cycle_id", result.CycleID,
				"seq", result.Seq)
		} else if r.cache != nil {
			result.CacheErr = r.saveSnapshot(ctx, result)
		}
	} else {
		result.Snapshot = r.store.Snapshot()
	}
	result.FinishedAt = r.clock()

	r.logger.Info("Refresh cycle complete",
		"cycle_id", result.CycleID,
		"seq", result.Seq,
		"failed_sections", len(errs),
		"transactions", result.Snapshot.Len(),
		"duration", result.Duration())
	for _, o := range r.observers {
		o.CycleDone(result)
	}
	return result
}

func (r *Refresher) sectionDone(result *Result, section Section, duration time.Duration, err error) {
	if err != nil {
		r.logger.Warn("Refresh section failed",
			"cycle_id", result.CycleID,
			"seq", result.Seq,
			"section", section,
			"duration", duration,
			"error", err)
	} else {
		r.logger.Debug("Refresh section fetched",
			"cycle_id", result.CycleID,
			"seq", result.Seq,
			"section", section,
			"duration", duration)
	}
	for _, o := range r.observers {
		o.SectionDone(section, duration, err)
	}
}

func (r *Refresher) saveSnapshot(ctx context.Context, result *Result) error {
	snap := result.Snapshot
	meta, err := r.cache.SaveSnapshot(ctx, r.sourceName, snap.FetchedAt, snap.Transactions)
	if err != nil {
		r.logger.Warn("Failed to cache snapshot",
			"cycle_id", result.CycleID,
			"error", err)
		return err
	}

	pruned, err := r.cache.PruneSnapshots(ctx, r.cacheKeep)
	if err != nil {
		r.logger.Warn("Failed to prune snapshot cache",
			"cycle_id", result.CycleID,
			"error", err)
		return err
	}

	r.logger.Debug("Cached snapshot",
		"cycle_id", result.CycleID,
		"snapshot_id", meta.ID,
		"pruned", pruned)
	return nil
}
