package tui

import (
	"time"

	"github.com/selfservice0/DynamicShop/internal/analytics"
	"github.com/selfservice0/DynamicShop/internal/tui/themes"
)

// Default dashboard timings.
const (
	DefaultRefreshInterval = 30 * time.Second
	DefaultSearchDebounce  = 300 * time.Millisecond
)

// Config holds TUI configuration.
type Config struct {
	Theme           themes.Theme
	Location        *time.Location
	Clock           func() time.Time
	Engine          *analytics.Engine
	SourceLabel     string
	Width           int
	Height          int
	PageSize        int
	TopN            int
	RefreshInterval time.Duration
	SearchDebounce  time.Duration
	Offline         bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:           themes.Default,
		Location:        time.Local,
		Clock:           time.Now,
		SourceLabel:     "api",
		Width:           120,
		Height:          40,
		PageSize:        analytics.DefaultPageSize,
		TopN:            analytics.DefaultTopN,
		RefreshInterval: DefaultRefreshInterval,
		SearchDebounce:  DefaultSearchDebounce,
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithPageSize sets the number of ledger rows per page.
func WithPageSize(size int) Option {
	return func(c *Config) {
		if size > 0 {
			c.PageSize = size
		}
	}
}

// WithTopN sets how many rows each insight table shows.
func WithTopN(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.TopN = n
		}
	}
}

// WithRefreshInterval sets the automatic refresh period.
func WithRefreshInterval(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.RefreshInterval = d
		}
	}
}

// WithSearchDebounce sets the quiet period before typed search text applies.
func WithSearchDebounce(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.SearchDebounce = d
		}
	}
}

// WithLocation sets the zone timestamps are displayed in.
func WithLocation(loc *time.Location) Option {
	return func(c *Config) {
		if loc != nil {
			c.Location = loc
		}
	}
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(c *Config) {
		if clock != nil {
			c.Clock = clock
		}
	}
}

// WithSourceLabel names the data source in the header.
func WithSourceLabel(label string) Option {
	return func(c *Config) {
		c.SourceLabel = label
	}
}

// WithOffline disables fetching; the dashboard shows the store as loaded.
func WithOffline(offline bool) Option {
	return func(c *Config) {
		c.Offline = offline
	}
}

// WithEngine shares a derivation engine with the caller, e.g. to export its
// memo counters.
func WithEngine(engine *analytics.Engine) Option {
	return func(c *Config) {
		if engine != nil {
			c.Engine = engine
		}
	}
}
