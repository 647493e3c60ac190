package analytics

import (
	"encoding/binary"
	"hash/fnv"
	"sync"
	"time"

	"github.com/selfservice0/DynamicShop/internal/model"
)

// DerivedView is everything the ledger and insight panels render.
type DerivedView struct {
	Filtered []model.Transaction
	Sorted   []model.Transaction
	Page     Page
	Insights Insights
	Version  uint64
}

// Engine derives views from snapshots. The sorted slice of the most recent
// derivation is memoised; everything else is recomputed on every call.
type Engine struct {
	memo   sortMemo
	topN   int
	hits   int
	misses int
	mu     sync.Mutex
}

type sortKey struct {
	column      SortColumn
	dir         SortDirection
	version     uint64
	fingerprint uint64
	count       int
}

type sortMemo struct {
	sorted []model.Transaction
	key    sortKey
	valid  bool
}

// NewEngine creates an engine whose insight tables hold topN rows.
func NewEngine(topN int) *Engine {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Engine{topN: topN}
}

// Derive runs the full pipeline: time window, predicates, sort, paginate and
// insights. The state's page is clamped into range in the returned Page.
func (e *Engine) Derive(snap Snapshot, state ViewState, now time.Time) DerivedView {
	base := FilterByTime(snap.Transactions, state.TimeRange, now)
	filtered := FilterByPredicate(base, state.Search, state.TypeFilter)

	sorted := e.sorted(snap, filtered, state.SortColumn, state.SortDir)

	return DerivedView{
		Filtered: filtered,
		Sorted:   sorted,
		Page:     Paginate(sorted, state.Page, state.PageSize),
		Insights: BuildInsights(filtered, e.topN),
		Version:  snap.Version,
	}
}

// Stats returns memo hit and miss counts.
func (e *Engine) Stats() (hits, misses int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hits, e.misses
}

func (e *Engine) sorted(snap Snapshot, filtered []model.Transaction, column SortColumn, dir SortDirection) []model.Transaction {
	key := sortKey{
		column:      column,
		dir:         dir,
		version:     snap.Version,
		fingerprint: fingerprint(snap.Transactions, filtered),
		count:       len(filtered),
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.memo.valid && e.memo.key == key {
		e.hits++
		return e.memo.sorted
	}

	e.misses++
	sorted := SortTransactions(filtered, column, dir)
	e.memo = sortMemo{sorted: sorted, key: key, valid: true}
	return sorted
}

// fingerprint hashes the positions of the filtered members within the
// snapshot. Filtering preserves snapshot order, so walking both slices in
// step recovers each member's index.
func fingerprint(all, filtered []model.Transaction) uint64 {
	h := fnv.New64a()
	var buf [8]byte

	j := 0
	for i := 0; i < len(all) && j < len(filtered); i++ {
		if !sameRecord(all[i], filtered[j]) {
			continue
		}
		binary.LittleEndian.PutUint64(buf[:], uint64(i))
		_, _ = h.Write(buf[:])
		j++
	}
	return h.Sum64()
}

func sameRecord(a, b model.Transaction) bool {
	return a.RawTimestamp == b.RawTimestamp &&
		a.PlayerName == b.PlayerName &&
		a.Type == b.Type &&
		a.Item == b.Item &&
		a.Category == b.Category &&
		a.Amount == b.Amount &&
		a.Price == b.Price &&
		a.Timestamp.Equal(b.Timestamp)
}
