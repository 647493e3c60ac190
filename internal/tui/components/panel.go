package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/selfservice0/DynamicShop/internal/tui/themes"
)

// PanelStatus is the load state of one dashboard panel.
type PanelStatus int

// Panel status constants.
const (
	PanelLoading PanelStatus = iota
	PanelReady
	PanelError
)

// Placeholder texts.
const (
	LoadingText = "Loading..."
	ErrorText   = "Error loading data"
	NoDataText  = "No data"
)

// renderSection renders a titled block of lines.
func renderSection(theme themes.Theme, title string, lines []string) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		theme.Subtitle.Render(title),
		theme.Normal.Render(strings.Join(lines, "\n")),
	)
}

// placeholder renders the text shown instead of a panel's data.
func placeholder(theme themes.Theme, title string, status PanelStatus) string {
	switch status {
	case PanelError:
		return renderSection(theme, title, []string{theme.StatusError.Render(ErrorText)})
	case PanelLoading:
		return renderSection(theme, title, []string{theme.StatusPending.Render(LoadingText)})
	default:
		return renderSection(theme, title, []string{theme.StatusPending.Render(NoDataText)})
	}
}

// statusFor maps a fetch error and data presence to a panel status.
func statusFor(err error, loaded bool) PanelStatus {
	switch {
	case err != nil:
		return PanelError
	case !loaded:
		return PanelLoading
	default:
		return PanelReady
	}
}
