// Package themes defines the dashboard's colour schemes.
package themes

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	Selected      lipgloss.Style
	Highlighted   lipgloss.Style
	Panel         lipgloss.Style
	StatusInfo    lipgloss.Style
	StatusError   lipgloss.Style
	StatusWarning lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusPending lipgloss.Style
	Primary       lipgloss.Color
	Secondary     lipgloss.Color
	Muted         lipgloss.Color
	Border        lipgloss.Color
	Foreground    lipgloss.Color
	Info          lipgloss.Color
	Error         lipgloss.Color
	Warning       lipgloss.Color
	Success       lipgloss.Color
	Buy           lipgloss.Color
	Sell          lipgloss.Color
}

// palette holds the colours a theme is built from.
type palette struct {
	primary, secondary, success, warning, errorColor, info lipgloss.Color
	foreground, subtle, border, muted, selectedFg, surface lipgloss.Color
	buy, sell                                              lipgloss.Color
}

func build(p palette) Theme {
	return Theme{
		Primary:    p.primary,
		Secondary:  p.secondary,
		Success:    p.success,
		Warning:    p.warning,
		Error:      p.errorColor,
		Info:       p.info,
		Foreground: p.foreground,
		Border:     p.border,
		Muted:      p.muted,
		Buy:        p.buy,
		Sell:       p.sell,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.foreground),
		Subtitle: lipgloss.NewStyle().
			Foreground(p.subtle),
		Normal: lipgloss.NewStyle().
			Foreground(p.foreground),
		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.foreground),
		Selected: lipgloss.NewStyle().
			Background(p.primary).
			Foreground(p.selectedFg).
			Bold(true),
		Highlighted: lipgloss.NewStyle().
			Background(p.surface).
			Foreground(p.foreground),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.border).
			Padding(0, 1),

		StatusSuccess: lipgloss.NewStyle().
			Foreground(p.success).
			Bold(true),
		StatusWarning: lipgloss.NewStyle().
			Foreground(p.warning).
			Bold(true),
		StatusError: lipgloss.NewStyle().
			Foreground(p.errorColor).
			Bold(true),
		StatusInfo: lipgloss.NewStyle().
			Foreground(p.info).
			Bold(true),
		StatusPending: lipgloss.NewStyle().
			Foreground(p.muted).
			Italic(true),
	}
}

// Default is the default theme.
var Default = build(palette{
	primary:    lipgloss.Color("#7c3aed"),
	secondary:  lipgloss.Color("#a78bfa"),
	success:    lipgloss.Color("#10b981"),
	warning:    lipgloss.Color("#f59e0b"),
	errorColor: lipgloss.Color("#ef4444"),
	info:       lipgloss.Color("#3b82f6"),
	foreground: lipgloss.Color("#fafafa"),
	subtle:     lipgloss.Color("#a3a3a3"),
	border:     lipgloss.Color("#404040"),
	muted:      lipgloss.Color("#737373"),
	selectedFg: lipgloss.Color("#fafafa"),
	surface:    lipgloss.Color("#262626"),
	buy:        lipgloss.Color("#22c55e"),
	sell:       lipgloss.Color("#ef4444"),
})

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = build(palette{
	primary:    lipgloss.Color("#cba6f7"),
	secondary:  lipgloss.Color("#f5c2e7"),
	success:    lipgloss.Color("#a6e3a1"),
	warning:    lipgloss.Color("#f9e2af"),
	errorColor: lipgloss.Color("#f38ba8"),
	info:       lipgloss.Color("#89dceb"),
	foreground: lipgloss.Color("#cdd6f4"),
	subtle:     lipgloss.Color("#a6adc8"),
	border:     lipgloss.Color("#45475a"),
	muted:      lipgloss.Color("#6c7086"),
	selectedFg: lipgloss.Color("#1e1e2e"),
	surface:    lipgloss.Color("#313244"),
	buy:        lipgloss.Color("#a6e3a1"),
	sell:       lipgloss.Color("#f38ba8"),
})

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	switch name {
	case "catppuccin", "catppuccin-mocha":
		return CatppuccinMocha
	default:
		return Default
	}
}

// CategoryIcons maps shop categories to icons.
var CategoryIcons = map[string]string{
	"BLOCKS":   "🧱",
	"ORES":     "💎",
	"FOOD":     "🍖",
	"FARMING":  "🌾",
	"REDSTONE": "🔴",
	"TOOLS":    "⛏️",
	"MAGIC":    "🔮",
	"MISC":     "📦",
}

// GetCategoryIcon returns an icon for a category, matching case-insensitively.
func GetCategoryIcon(category string) string {
	if icon, ok := CategoryIcons[strings.ToUpper(category)]; ok {
		return icon
	}
	return "📦"
}
