package analytics

import (
	"fmt"
	"strings"
	"time"

	"github.com/selfservice0/DynamicShop/internal/model"
)

// TimeRange is a relative recency window applied against "now".
type TimeRange string

// Time range constants.
const (
	RangeAll       TimeRange = "ALL"
	RangeLastHour  TimeRange = "1H"
	RangeLastDay   TimeRange = "24H"
	RangeLastWeek  TimeRange = "7D"
	RangeLastMonth TimeRange = "30D"
)

// TimeRanges lists every range in display order.
var TimeRanges = []TimeRange{RangeAll, RangeLastHour, RangeLastDay, RangeLastWeek, RangeLastMonth}

// Window returns the duration covered by the range. RangeAll returns 0.
func (r TimeRange) Window() time.Duration {
	switch r {
	case RangeLastHour:
		return time.Hour
	case RangeLastDay:
		return 24 * time.Hour
	case RangeLastWeek:
		return 7 * 24 * time.Hour
	case RangeLastMonth:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}

// Label returns a short human label for the range.
func (r TimeRange) Label() string {
	switch r {
	case RangeLastHour:
		return "Last hour"
	case RangeLastDay:
		return "Last 24h"
	case RangeLastWeek:
		return "Last 7 days"
	case RangeLastMonth:
		return "Last 30 days"
	default:
		return "All time"
	}
}

// Next cycles to the following range, wrapping around.
func (r TimeRange) Next() TimeRange {
	for i, candidate := range TimeRanges {
		if candidate == r {
			return TimeRanges[(i+1)%len(TimeRanges)]
		}
	}
	return RangeAll
}

// ParseTimeRange parses values like "all", "1h", "24H", "7d" or "30D".
func ParseTimeRange(s string) (TimeRange, error) {
	normalized := TimeRange(strings.ToUpper(strings.TrimSpace(s)))
	if normalized == "" {
		return RangeAll, nil
	}
	for _, r := range TimeRanges {
		if r == normalized {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown time range %q (want one of ALL, 1H, 24H, 7D, 30D)", s)
}

// FilterByTime returns the records whose timestamp is strictly after
// now minus the range window. RangeAll returns a copy of every record,
// including those without a valid timestamp; other ranges exclude them.
func FilterByTime(txs []model.Transaction, r TimeRange, now time.Time) []model.Transaction {
	window := r.Window()
	if window == 0 {
		out := make([]model.Transaction, len(txs))
		copy(out, txs)
		return out
	}

	cutoff := now.Add(-window)
	out := make([]model.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.HasValidTimestamp() && tx.Timestamp.After(cutoff) {
			out = append(out, tx)
		}
	}
	return out
}
