package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/selfservice0/DynamicShop/internal/common"
)

// APISettings configures the shop API client.
type APISettings struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// RefreshSettings configures the periodic fetch.
type RefreshSettings struct {
	Interval          time.Duration `mapstructure:"interval" validate:"gt=0"`
	TransactionLimit  int           `mapstructure:"transaction_limit" validate:"min=1,max=1000"`
	ManualMinInterval time.Duration `mapstructure:"manual_min_interval" validate:"gt=0"`
}

// ViewSettings configures the ledger view.
type ViewSettings struct {
	PageSize int    `mapstructure:"page_size" validate:"min=1,max=500"`
	Timezone string `mapstructure:"timezone" validate:"required"`
}

// LeaderboardSettings selects the default leaderboard.
type LeaderboardSettings struct {
	Kind  string `mapstructure:"kind" validate:"oneof=earners spenders traders volume"`
	Limit int    `mapstructure:"limit" validate:"min=1,max=1000"`
}

// CacheSettings configures the SQLite snapshot cache.
type CacheSettings struct {
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
	Enabled bool   `mapstructure:"enabled"`
	Keep    int    `mapstructure:"keep" validate:"min=1"`
}

// LoggingSettings configures slog output.
type LoggingSettings struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
	File   string `mapstructure:"file"`
}

// Settings is the complete dashboard configuration.
type Settings struct {
	location    *time.Location
	Logging     LoggingSettings     `mapstructure:"logging"`
	API         APISettings         `mapstructure:"api"`
	View        ViewSettings        `mapstructure:"view"`
	Leaderboard LeaderboardSettings `mapstructure:"leaderboard"`
	Cache       CacheSettings       `mapstructure:"cache"`
	Refresh     RefreshSettings     `mapstructure:"refresh"`
	Insights    struct {
		TopN int `mapstructure:"top_n" validate:"min=1,max=100"`
	} `mapstructure:"insights"`
	Trends struct {
		Limit int `mapstructure:"limit" validate:"min=1,max=1000"`
	} `mapstructure:"trends"`
	History struct {
		Hours int `mapstructure:"hours" validate:"min=1,max=8760"`
	} `mapstructure:"history"`
	Search struct {
		// Debounce is the quiet period before a typed search is applied.
		Debounce time.Duration `mapstructure:"debounce" validate:"gte=300ms"`
	} `mapstructure:"search"`
	Metrics struct {
		Addr string `mapstructure:"addr" validate:"omitempty,hostname_port"`
	} `mapstructure:"metrics"`
}

// Default values.
const (
	DefaultBaseURL  = "http://localhost:7713"
	DefaultTimezone = "Local"
)

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", DefaultBaseURL)
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("refresh.interval", 30*time.Second)
	v.SetDefault("refresh.transaction_limit", 1000)
	v.SetDefault("refresh.manual_min_interval", 2*time.Second)
	v.SetDefault("view.page_size", 50)
	v.SetDefault("view.timezone", DefaultTimezone)
	v.SetDefault("insights.top_n", 10)
	v.SetDefault("leaderboard.kind", "earners")
	v.SetDefault("leaderboard.limit", 10)
	v.SetDefault("trends.limit", 10)
	v.SetDefault("history.hours", 168)
	v.SetDefault("search.debounce", 300*time.Millisecond)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", "~/.local/share/shopdash/snapshots.db")
	v.SetDefault("cache.keep", 5)
	v.SetDefault("metrics.addr", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", "~/.local/state/shopdash/shopdash.log")
}

// Load reads and validates the settings held by v.
func Load(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}

	s.API.BaseURL = strings.TrimRight(strings.TrimSpace(s.API.BaseURL), "/")
	s.Leaderboard.Kind = strings.ToLower(s.Leaderboard.Kind)
	s.Logging.Level = strings.ToLower(s.Logging.Level)
	s.Cache.Path = ExpandPath(s.Cache.Path)
	s.Logging.File = ExpandPath(s.Logging.File)

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks every field and resolves the display location.
func (s *Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", configKey(fe.Namespace()), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", common.ErrInvalidConfig, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}

	loc, err := LoadLocation(s.View.Timezone)
	if err != nil {
		return err
	}
	s.location = loc
	return nil
}

// Location returns the display time zone.
func (s *Settings) Location() *time.Location {
	if s.location == nil {
		return time.Local
	}
	return s.location
}

// LoadLocation resolves a zone name; "Local" and "" mean the system zone.
func LoadLocation(name string) (*time.Location, error) {
	switch strings.TrimSpace(name) {
	case "", DefaultTimezone:
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: view.timezone: %w", common.ErrInvalidConfig, err)
	}
	return loc, nil
}

// configKey turns a validator namespace like "Settings.API.BaseURL" into a
// readable dotted path.
func configKey(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	return strings.ToLower(strings.Join(parts, "."))
}
