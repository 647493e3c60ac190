package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/selfservice0/DynamicShop/internal/analytics"
	"github.com/selfservice0/DynamicShop/internal/common"
	"github.com/selfservice0/DynamicShop/internal/model"
	"github.com/selfservice0/DynamicShop/internal/tui/themes"
)

// LedgerColumn describes one sortable ledger column.
type LedgerColumn struct {
	Column analytics.SortColumn
	Title  string
	Weight float64
	Min    int
}

// LedgerColumns lists the ledger columns in display order. The number keys
// 1-7 select them for sorting.
var LedgerColumns = []LedgerColumn{
	{Column: analytics.SortByTimestamp, Title: "Time", Weight: 0.15, Min: 10},
	{Column: analytics.SortByPlayer, Title: "Player", Weight: 0.17, Min: 10},
	{Column: analytics.SortByType, Title: "Type", Weight: 0.08, Min: 6},
	{Column: analytics.SortByItem, Title: "Item", Weight: 0.20, Min: 12},
	{Column: analytics.SortByCategory, Title: "Category", Weight: 0.13, Min: 9},
	{Column: analytics.SortByAmount, Title: "Amount", Weight: 0.10, Min: 7},
	{Column: analytics.SortByPrice, Title: "Price", Weight: 0.13, Min: 10},
}

// LedgerModel renders one page of the filtered, sorted transaction ledger.
type LedgerModel struct {
	now    time.Time
	theme  themes.Theme
	loc    *time.Location
	table  table.Model
	page   analytics.Page
	state  analytics.ViewState
	width  int
	height int
}

// NewLedger creates an empty ledger. Timestamps are shown in loc.
func NewLedger(theme themes.Theme, loc *time.Location) LedgerModel {
	if loc == nil {
		loc = time.Local
	}

	t := table.New(
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		BorderBottom(true).
		Bold(true)
	s.Selected = theme.Selected
	t.SetStyles(s)

	m := LedgerModel{
		theme:  theme,
		loc:    loc,
		table:  t,
		state:  analytics.DefaultViewState(analytics.DefaultPageSize),
		width:  80,
		height: 14,
	}
	m.updateColumns()
	return m
}

// Update forwards cursor movement to the table.
func (m LedgerModel) Update(msg tea.Msg) (LedgerModel, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// SetPage replaces the displayed page. The cursor returns to the top when
// the page number or the view criteria change.
func (m *LedgerModel) SetPage(page analytics.Page, state analytics.ViewState, now time.Time) {
	moved := page.Number != m.page.Number || state != m.state
	m.page = page
	m.state = state
	m.now = now

	m.updateColumns()
	m.table.SetRows(m.buildRows())
	if moved || m.table.Cursor() >= len(page.Items) {
		m.table.SetCursor(0)
	}
}

// Selected returns the transaction under the cursor.
func (m LedgerModel) Selected() (model.Transaction, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.page.Items) {
		return model.Transaction{}, false
	}
	return m.page.Items[i], true
}

// Page returns the page currently displayed.
func (m LedgerModel) Page() analytics.Page {
	return m.page
}

// View renders the ledger.
func (m LedgerModel) View() string {
	title := m.theme.Title.Render("Transactions") + "  " + m.theme.Subtitle.Render(m.filterSummary())

	body := m.table.View()
	if len(m.page.Items) == 0 {
		body = m.theme.StatusPending.Render("No transactions match the current filters")
	}

	footer := fmt.Sprintf("%s  ·  Page %d of %d", m.page.Showing(), max(m.page.Number, 1), max(m.page.TotalPages, 1))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		body,
		lipgloss.NewStyle().Foreground(m.theme.Muted).Render(footer),
	)
}

// Resize updates the component size.
func (m *LedgerModel) Resize(width, height int) {
	m.width = width
	m.height = height

	// Chrome: title line, header row with its border, footer.
	m.table.SetHeight(max(3, height-4))
	m.table.SetWidth(width)
	m.updateColumns()
}

func (m LedgerModel) filterSummary() string {
	parts := []string{m.state.TimeRange.Label()}
	if m.state.TypeFilter != "" {
		parts = append(parts, string(m.state.TypeFilter))
	}
	if m.state.Search != "" {
		parts = append(parts, fmt.Sprintf("%q", m.state.Search))
	}
	return strings.Join(parts, " · ")
}

func (m LedgerModel) buildRows() []table.Row {
	rows := make([]table.Row, 0, len(m.page.Items))
	for _, tx := range m.page.Items {
		when := tx.RawTimestamp
		if tx.HasValidTimestamp() {
			when = common.FormatRelativeTime(tx.Timestamp.In(m.loc), m.now.In(m.loc))
		}

		rows = append(rows, table.Row{
			when,
			tx.PlayerName,
			string(tx.Type),
			common.PrettifyItem(tx.Item),
			tx.CategoryOrUnknown(),
			common.FormatCount(tx.Amount),
			common.FormatCurrency(tx.Price),
		})
	}
	return rows
}

// updateColumns sizes columns proportionally and marks the sort column.
func (m *LedgerModel) updateColumns() {
	available := max(m.width-2*len(LedgerColumns), 60)

	columns := make([]table.Column, 0, len(LedgerColumns))
	for _, c := range LedgerColumns {
		title := c.Title
		if c.Column == m.state.SortColumn {
			title += " " + sortIndicator(m.state.SortDir)
		}
		columns = append(columns, table.Column{
			Title: title,
			Width: max(c.Min, int(float64(available)*c.Weight)),
		})
	}
	m.table.SetColumns(columns)
}

func sortIndicator(dir analytics.SortDirection) string {
	if dir == analytics.Ascending {
		return "↑"
	}
	return "↓"
}
