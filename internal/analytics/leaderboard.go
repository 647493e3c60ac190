package analytics

import (
	"fmt"
	"strings"

	"github.com/selfservice0/DynamicShop/internal/model"
)

// LeaderboardKind selects the metric a leaderboard is ranked by.
type LeaderboardKind string

// Leaderboard kind constants.
const (
	LeaderboardEarners  LeaderboardKind = "earners"
	LeaderboardSpenders LeaderboardKind = "spenders"
	LeaderboardTraders  LeaderboardKind = "traders"
	LeaderboardVolume   LeaderboardKind = "volume"
)

// ServerWide labels data computed by the server over the whole market,
// which the local search and time window never touch.
const ServerWide = "server-wide"

// LeaderboardKinds lists every kind in display order.
var LeaderboardKinds = []LeaderboardKind{LeaderboardEarners, LeaderboardSpenders, LeaderboardTraders, LeaderboardVolume}

// ParseLeaderboardKind parses a kind name case-insensitively.
func ParseLeaderboardKind(s string) (LeaderboardKind, error) {
	kind := LeaderboardKind(strings.ToLower(strings.TrimSpace(s)))
	if kind == "" {
		return LeaderboardEarners, nil
	}
	for _, k := range LeaderboardKinds {
		if k == kind {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown leaderboard kind %q", s)
}

// Next cycles to the following kind, wrapping around.
func (k LeaderboardKind) Next() LeaderboardKind {
	for i, candidate := range LeaderboardKinds {
		if candidate == k {
			return LeaderboardKinds[(i+1)%len(LeaderboardKinds)]
		}
	}
	return LeaderboardEarners
}

// Title is the panel heading for the kind.
func (k LeaderboardKind) Title() string {
	switch k {
	case LeaderboardSpenders:
		return "Top Spenders"
	case LeaderboardTraders:
		return "Most Active Traders"
	case LeaderboardVolume:
		return "Highest Volume"
	default:
		return "Top Earners"
	}
}

// MetricLabel names the headline column for the kind.
func (k LeaderboardKind) MetricLabel() string {
	switch k {
	case LeaderboardSpenders:
		return "Spent"
	case LeaderboardTraders:
		return "Trades"
	case LeaderboardVolume:
		return "Volume"
	default:
		return "Net Profit"
	}
}

// Metric returns the headline value of an entry for the kind.
func (k LeaderboardKind) Metric(e model.LeaderboardEntry) float64 {
	switch k {
	case LeaderboardSpenders:
		return e.Spent
	case LeaderboardTraders:
		return float64(e.Trades)
	case LeaderboardVolume:
		return e.Volume
	default:
		return e.NetProfit
	}
}

// IsMonetary reports whether the kind's metric is a currency amount.
func (k LeaderboardKind) IsMonetary() bool {
	return k != LeaderboardTraders
}

// ChangeDirection classifies a percentage change for display.
type ChangeDirection int

// Change direction constants.
const (
	ChangeFlat ChangeDirection = iota
	ChangeUp
	ChangeDown
)

// ClassifyChange returns the direction of changePercent by its sign.
func ClassifyChange(changePercent float64) ChangeDirection {
	switch {
	case changePercent > 0:
		return ChangeUp
	case changePercent < 0:
		return ChangeDown
	default:
		return ChangeFlat
	}
}

// Arrow returns the glyph shown beside a change.
func (d ChangeDirection) Arrow() string {
	switch d {
	case ChangeUp:
		return "▲"
	case ChangeDown:
		return "▼"
	default:
		return "•"
	}
}
