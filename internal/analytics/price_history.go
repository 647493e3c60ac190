package analytics

import (
	"strings"
	"time"

	"github.com/selfservice0/DynamicShop/internal/model"
)

// DefaultHistoryHours is the default price-history lookback.
const DefaultHistoryHours = 168

// BucketWidth is the width of one price-history bucket.
const BucketWidth = time.Hour

// PriceHistoryKeyLayout is the hour key used by the analytics API.
const PriceHistoryKeyLayout = "2006-01-02 15:00"

// BucketPriceHistory builds an hourly series of average unit prices for item
// covering the last hours buckets, oldest first. The last bucket starts at the
// wall-clock hour containing now. Sides with no matching trades are marked invalid.
func BucketPriceHistory(txs []model.Transaction, item string, hours int, now time.Time) []model.PriceBucket {
	buckets := emptyBuckets(hours, now)
	if len(buckets) == 0 {
		return buckets
	}

	first := buckets[0].Start
	end := buckets[len(buckets)-1].Start.Add(BucketWidth)

	type sums struct {
		buyTotal, sellTotal float64
		buyN, sellN         int
	}
	acc := make([]sums, len(buckets))

	for _, tx := range txs {
		if !tx.HasValidTimestamp() || !strings.EqualFold(tx.Item, item) {
			continue
		}
		if tx.Timestamp.Before(first) || !tx.Timestamp.Before(end) {
			continue
		}
		unit, ok := tx.UnitPrice()
		if !ok {
			continue
		}

		i := int(tx.Timestamp.Sub(first) / BucketWidth)
		switch tx.Type {
		case model.TypeBuy:
			acc[i].buyTotal += unit
			acc[i].buyN++
		case model.TypeSell:
			acc[i].sellTotal += unit
			acc[i].sellN++
		}
		buckets[i].Volume += tx.Amount
	}

	for i, s := range acc {
		if s.buyN > 0 {
			buckets[i].AvgBuy = model.NullablePrice{Value: s.buyTotal / float64(s.buyN), Valid: true}
		}
		if s.sellN > 0 {
			buckets[i].AvgSell = model.NullablePrice{Value: s.sellTotal / float64(s.sellN), Valid: true}
		}
	}
	return buckets
}

// NormalizePriceHistory maps server points onto the same full hourly window
// BucketPriceHistory produces. Hours the server omitted become empty buckets,
// and averages that are not positive are treated as missing. Point keys are
// read in loc; a nil loc means time.Local.
func NormalizePriceHistory(points []model.PricePoint, hours int, now time.Time, loc *time.Location) []model.PriceBucket {
	if loc == nil {
		loc = time.Local
	}
	buckets := emptyBuckets(hours, now.In(loc))
	if len(buckets) == 0 {
		return buckets
	}

	first := buckets[0].Start
	for _, p := range points {
		ts, err := time.ParseInLocation(PriceHistoryKeyLayout, strings.TrimSpace(p.Timestamp), loc)
		if err != nil {
			var ok bool
			if ts, ok = model.ParseTimestamp(p.Timestamp, loc); !ok {
				continue
			}
		}
		ts = truncateHour(ts)
		if ts.Before(first) {
			continue
		}
		i := int(ts.Sub(first) / BucketWidth)
		if i >= len(buckets) {
			continue
		}

		if p.AvgBuyPrice > 0 {
			buckets[i].AvgBuy = model.NullablePrice{Value: p.AvgBuyPrice, Valid: true}
		}
		if p.AvgSellPrice > 0 {
			buckets[i].AvgSell = model.NullablePrice{Value: p.AvgSellPrice, Valid: true}
		}
		buckets[i].Volume += p.Volume
	}
	return buckets
}

// PriceSummary describes a price-history series.
type PriceSummary struct {
	LastBuy     model.NullablePrice
	LastSell    model.NullablePrice
	MinBuy      model.NullablePrice
	MaxBuy      model.NullablePrice
	Volume      int
	BucketsWith int
}

// SummarizePriceHistory returns the latest, min and max buy prices and the
// total volume of a series.
func SummarizePriceHistory(buckets []model.PriceBucket) PriceSummary {
	var s PriceSummary
	for _, b := range buckets {
		s.Volume += b.Volume
		if b.HasData() {
			s.BucketsWith++
		}
		if b.AvgSell.Valid {
			s.LastSell = b.AvgSell
		}
		if !b.AvgBuy.Valid {
			continue
		}
		s.LastBuy = b.AvgBuy
		if !s.MinBuy.Valid || b.AvgBuy.Value < s.MinBuy.Value {
			s.MinBuy = b.AvgBuy
		}
		if !s.MaxBuy.Valid || b.AvgBuy.Value > s.MaxBuy.Value {
			s.MaxBuy = b.AvgBuy
		}
	}
	return s
}

func emptyBuckets(hours int, now time.Time) []model.PriceBucket {
	if hours <= 0 {
		return []model.PriceBucket{}
	}

	last := truncateHour(now)
	buckets := make([]model.PriceBucket, hours)
	for i := range buckets {
		buckets[i].Start = last.Add(-time.Duration(hours-1-i) * BucketWidth)
	}
	return buckets
}

// truncateHour drops minutes and below in t's own location, so buckets follow
// the wall clock even in zones with a fractional-hour offset.
func truncateHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}
