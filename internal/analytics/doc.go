// Package analytics derives the ledger page, the insight tables and the
// price-history series from a transaction snapshot and a view state.
//
// Every derivation is a pure function of (snapshot, state, now). The Engine
// memoises only the sorted slice, keyed by a fingerprint of the filtered set.
package analytics
