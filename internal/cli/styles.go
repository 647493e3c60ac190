// Package cli provides styled terminal output for the shopdash commands.
package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/selfservice0/DynamicShop/internal/model"
)

// Palette shared by every printer; emerald for the shop currency, green and
// red for the two trade directions.
var (
	PrimaryColor = lipgloss.Color("#10B981")
	SuccessColor = lipgloss.Color("#4ECDC4")
	WarningColor = lipgloss.Color("#FFE66D")
	ErrorColor   = lipgloss.Color("#FF6B6B")
	InfoColor    = lipgloss.Color("#95E1D3")
	SubtleColor  = lipgloss.Color("#666666")
	BuyColor     = lipgloss.Color("#22C55E")
	SellColor    = lipgloss.Color("#EF4444")
)

var (
	// TitleStyle renders command headings.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor).MarginBottom(1)

	SuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor)
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ErrorColor)
	InfoStyle    = lipgloss.NewStyle().Foreground(InfoColor)

	// SubtleStyle renders captions, empty states and server-wide notes.
	SubtleStyle = lipgloss.NewStyle().Foreground(SubtleColor)
	BoldStyle   = lipgloss.NewStyle().Bold(true)

	buyStyle  = lipgloss.NewStyle().Foreground(BuyColor).Bold(true)
	sellStyle = lipgloss.NewStyle().Foreground(SellColor).Bold(true)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	ShopIcon    = "🛒"
	ChartIcon   = "📊"
	TrophyIcon  = "🏆"
	TrendIcon   = "📈"
)

// FormatSuccess prefixes message with a check mark.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle renders a heading behind the shop icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(ShopIcon + " " + title)
}

// StyleTrade colors a trade direction: green for BUY, red for SELL.
// Unknown types are returned as is.
func StyleTrade(kind model.TransactionType) string {
	switch kind {
	case model.TypeBuy:
		return buyStyle.Render(string(kind))
	case model.TypeSell:
		return sellStyle.Render(string(kind))
	default:
		return string(kind)
	}
}
