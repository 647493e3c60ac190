// Package chart renders price-history series as PNG images.
package chart

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/selfservice0/DynamicShop/internal/common"
	"github.com/selfservice0/DynamicShop/internal/model"
)

// ErrNoData is returned when no bucket of the series holds a trade.
var ErrNoData = errors.New("no price data to chart")

// Default image size in pixels.
const (
	DefaultWidth  = 1024
	DefaultHeight = 400
)

// Series colours, matching the dashboard's buy/sell palette.
var (
	buyColor  = drawing.ColorFromHex("22c55e")
	sellColor = drawing.ColorFromHex("ef4444")
)

// Options controls the rendered image.
type Options struct {
	Title  string
	Width  int
	Height int
}

// Option configures Options.
type Option func(*Options)

// WithTitle overrides the chart title.
func WithTitle(title string) Option {
	return func(o *Options) {
		o.Title = title
	}
}

// WithSize sets the image size. Non-positive values keep the defaults.
func WithSize(width, height int) Option {
	return func(o *Options) {
		if width > 0 {
			o.Width = width
		}
		if height > 0 {
			o.Height = height
		}
	}
}

// RenderPriceHistory writes a PNG line chart of the buy and sell averages
// of buckets to w. Buckets without data are omitted from their line rather
// than drawn as zero.
func RenderPriceHistory(w io.Writer, item string, buckets []model.PriceBucket, opts ...Option) error {
	options := Options{
		Title:  fmt.Sprintf("%s price history", common.PrettifyItem(item)),
		Width:  DefaultWidth,
		Height: DefaultHeight,
	}
	for _, opt := range opts {
		opt(&options)
	}

	buy := gochart.TimeSeries{
		Name:  "Avg buy",
		Style: gochart.Style{StrokeColor: buyColor, StrokeWidth: 2},
	}
	sell := gochart.TimeSeries{
		Name:  "Avg sell",
		Style: gochart.Style{StrokeColor: sellColor, StrokeWidth: 2},
	}

	lo, hi := 0.0, 0.0
	seen := false
	track := func(v float64) {
		if !seen || v < lo {
			lo = v
		}
		if !seen || v > hi {
			hi = v
		}
		seen = true
	}

	for _, b := range buckets {
		if b.AvgBuy.Valid {
			buy.XValues = append(buy.XValues, b.Start)
			buy.YValues = append(buy.YValues, b.AvgBuy.Value)
			track(b.AvgBuy.Value)
		}
		if b.AvgSell.Valid {
			sell.XValues = append(sell.XValues, b.Start)
			sell.YValues = append(sell.YValues, b.AvgSell.Value)
			track(b.AvgSell.Value)
		}
	}
	if !seen {
		return ErrNoData
	}

	var series []gochart.Series
	if len(buy.XValues) > 0 {
		series = append(series, buy)
	}
	if len(sell.XValues) > 0 {
		series = append(series, sell)
	}

	first := buckets[0].Start
	last := buckets[len(buckets)-1].Start.Add(time.Hour)
	formatter := gochart.TimeHourValueFormatter
	if last.Sub(first) > 48*time.Hour {
		formatter = gochart.TimeDateValueFormatter
	}

	graph := gochart.Chart{
		Title:  options.Title,
		Width:  options.Width,
		Height: options.Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: gochart.XAxis{
			ValueFormatter: formatter,
			Range: &gochart.ContinuousRange{
				Min: gochart.TimeToFloat64(first),
				Max: gochart.TimeToFloat64(last),
			},
		},
		YAxis: gochart.YAxis{
			Name:           "Unit price",
			ValueFormatter: currencyFormatter,
			Range:          paddedRange(lo, hi),
		},
		Series: series,
	}
	graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}

	if err := graph.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// WritePriceHistoryFile renders the chart to path, creating parent directories.
func WritePriceHistoryFile(path, item string, buckets []model.PriceBucket, opts ...Option) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create chart directory: %w", err)
		}
	}

	f, err := os.Create(path) //nolint:gosec // path is user-provided output
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close chart file: %w", cerr)
		}
	}()

	return RenderPriceHistory(f, item, buckets, opts...)
}

// paddedRange widens [lo, hi] by 10% so flat series still have a y-range.
func paddedRange(lo, hi float64) *gochart.ContinuousRange {
	pad := (hi - lo) * 0.1
	if pad == 0 {
		pad = max(hi*0.1, 1)
	}
	return &gochart.ContinuousRange{Min: max(lo-pad, 0), Max: hi + pad}
}

func currencyFormatter(v any) string {
	if f, ok := v.(float64); ok {
		return common.FormatCurrency(f)
	}
	return ""
}
