package analytics

import (
	"sync"
	"time"

	"github.com/selfservice0/DynamicShop/internal/model"
)

// Snapshot is an immutable view of the transactions held by a Store.
type Snapshot struct {
	FetchedAt    time.Time
	Transactions []model.Transaction
	Version      uint64
}

// Len returns the number of transactions in the snapshot.
func (s Snapshot) Len() int {
	return len(s.Transactions)
}

// Store holds the most recent transaction snapshot.
// It is safe for concurrent use.
type Store struct {
	current Snapshot
	lastSeq uint64
	mu      sync.RWMutex
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Snapshot returns the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Replace swaps in a new transaction list and bumps the version.
func (s *Store) Replace(txs []model.Transaction, fetchedAt time.Time) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaceLocked(txs, fetchedAt)
}

// ReplaceIfNewer swaps in txs only if seq is greater than the last applied
// sequence. It reports whether the snapshot was replaced.
func (s *Store) ReplaceIfNewer(seq uint64, txs []model.Transaction, fetchedAt time.Time) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.lastSeq {
		return s.current, false
	}
	s.lastSeq = seq
	return s.replaceLocked(txs, fetchedAt), true
}

func (s *Store) replaceLocked(txs []model.Transaction, fetchedAt time.Time) Snapshot {
	owned := make([]model.Transaction, len(txs))
	copy(owned, txs)

	s.current = Snapshot{
		Version:      s.current.Version + 1,
		FetchedAt:    fetchedAt,
		Transactions: owned,
	}
	return s.current
}
