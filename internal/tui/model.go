package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/selfservice0/DynamicShop/internal/analytics"
	"github.com/selfservice0/DynamicShop/internal/model"
	"github.com/selfservice0/DynamicShop/internal/refresh"
	"github.com/selfservice0/DynamicShop/internal/tui/components"
	"github.com/selfservice0/DynamicShop/internal/tui/themes"
)

// Refresher is the data pipeline behind the dashboard.
type Refresher interface {
	Refresh(ctx context.Context) *refresh.Result
	TriggerManual(ctx context.Context) (*refresh.Result, error)
	FetchLeaderboard(ctx context.Context, kind analytics.LeaderboardKind) ([]model.LeaderboardEntry, error)
	LeaderboardKind() analytics.LeaderboardKind
	SetLeaderboardKind(kind analytics.LeaderboardKind)
	Store() *analytics.Store
}

// Mode represents the current input mode.
type Mode int

// Input modes.
const (
	ModeNormal Mode = iota
	ModeSearch
)

// Model holds the dashboard state.
type Model struct {
	ctx          context.Context
	refresher    Refresher
	store        *analytics.Store
	engine       *analytics.Engine
	stats        *model.Stats
	economy      *model.EconomyHealth
	trends       *model.TrendBuckets
	sectionErrs  map[refresh.Section]error
	theme        themes.Theme
	status       string
	config       Config
	kind         analytics.LeaderboardKind
	leaderboard  []model.LeaderboardEntry
	derived      analytics.DerivedView
	state        analytics.ViewState
	ledger       components.LedgerModel
	insights     components.InsightsPanel
	economyPanel components.EconomyPanel
	boardPanel   components.LeaderboardPanel
	trendsPanel  components.TrendsPanel
	keymap       KeyMap
	help         help.Model
	spinner      spinner.Model
	search       textinput.Model
	searchGen    int
	width        int
	height       int
	mode         Mode
	refreshing   bool
	boardLoaded  bool
	ready        bool
	showHelp     bool
	quitting     bool
}

// New creates a dashboard model. A nil refresher (or WithOffline) shows
// only what store already holds.
func New(ctx context.Context, refresher Refresher, store *analytics.Store, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if store == nil && refresher != nil {
		store = refresher.Store()
	}
	if store == nil {
		store = analytics.NewStore()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	engine := cfg.Engine
	if engine == nil {
		engine = analytics.NewEngine(cfg.TopN)
	}

	kind := analytics.LeaderboardEarners
	if refresher != nil {
		kind = refresher.LeaderboardKind()
	}

	search := textinput.New()
	search.Placeholder = "Search player or item..."
	search.Prompt = "🔍 "
	search.CharLimit = 64

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = spin.Style.Foreground(cfg.Theme.Primary)

	m := Model{
		ctx:          ctx,
		refresher:    refresher,
		store:        store,
		engine:       engine,
		sectionErrs:  make(map[refresh.Section]error),
		theme:        cfg.Theme,
		config:       cfg,
		kind:         kind,
		state:        analytics.DefaultViewState(cfg.PageSize),
		ledger:       components.NewLedger(cfg.Theme, cfg.Location),
		insights:     components.NewInsightsPanel(cfg.Theme, cfg.TopN),
		economyPanel: components.NewEconomyPanel(cfg.Theme),
		boardPanel:   components.NewLeaderboardPanel(cfg.Theme, 10),
		trendsPanel:  components.NewTrendsPanel(cfg.Theme, 5),
		keymap:       DefaultKeyMap(),
		help:         help.New(),
		spinner:      spin,
		search:       search,
		width:        cfg.Width,
		height:       cfg.Height,
	}

	m.handleResize()
	m.derive()
	if m.offline() {
		m.ready = true
		m.status = "Offline: showing cached snapshot"
	}
	return m
}

// Init starts the first refresh and the refresh timer.
func (m Model) Init() tea.Cmd {
	if m.offline() {
		return nil
	}
	return tea.Batch(m.spinner.Tick, m.refreshData(), m.scheduleRefresh())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.handleResize()
		return m, nil

	case refreshTickMsg:
		m.refreshing = true
		return m, tea.Batch(m.refreshData(), m.scheduleRefresh())

	case refreshResultMsg:
		m.applyResult(msg.result)
		return m, nil

	case refreshThrottledMsg:
		m.refreshing = false
		m.status = "Refresh throttled, try again shortly"
		return m, nil

	case leaderboardLoadedMsg:
		if msg.kind == m.kind {
			m.boardLoaded = true
			m.sectionErrs[refresh.SectionLeaderboard] = msg.err
			if msg.err == nil {
				m.leaderboard = msg.entries
			}
		}
		return m, nil

	case searchDebounceMsg:
		if msg.gen == m.searchGen {
			m.applySearch()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return m.renderLoading()
	}

	// Responsive layout based on terminal size
	if m.width < 80 {
		return m.renderCompactView()
	}
	if m.width < 120 {
		return m.renderMediumView()
	}
	return m.renderFullView()
}

// State returns the current view criteria.
func (m Model) State() analytics.ViewState {
	return m.state
}

// Derived returns the current derived view.
func (m Model) Derived() analytics.DerivedView {
	return m.derived
}

// Mode returns the current input mode.
func (m Model) Mode() Mode {
	return m.mode
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.ForceQuit) {
		m.quitting = true
		return m, tea.Quit
	}
	if m.mode == ModeSearch {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp

	case key.Matches(msg, m.keymap.Search):
		m.mode = ModeSearch
		cmd := m.search.Focus()
		return m, cmd

	case key.Matches(msg, m.keymap.ClearSearch):
		if m.state.Search != "" || m.search.Value() != "" {
			m.search.SetValue("")
			m.searchGen++
			m.setState(m.state.WithSearch(""))
		}

	case key.Matches(msg, m.keymap.TimeRange):
		m.setState(m.state.WithTimeRange(m.state.TimeRange.Next()))

	case key.Matches(msg, m.keymap.TypeFilter):
		m.setState(m.state.TypeCycle())

	case key.Matches(msg, m.keymap.Sort):
		if i := int(msg.String()[0] - '1'); i >= 0 && i < len(components.LedgerColumns) {
			m.setState(m.state.WithSort(components.LedgerColumns[i].Column))
		}

	case key.Matches(msg, m.keymap.NextPage):
		m.setState(m.state.NextPage(m.derived.Page.Total))

	case key.Matches(msg, m.keymap.PrevPage):
		m.setState(m.state.PrevPage())

	case key.Matches(msg, m.keymap.FirstPage):
		m.setState(m.state.GoToPage(1, m.derived.Page.Total))

	case key.Matches(msg, m.keymap.LastPage):
		total := m.derived.Page.Total
		m.setState(m.state.GoToPage(analytics.TotalPages(total, m.state.PageSize), total))

	case key.Matches(msg, m.keymap.Leaderboard):
		m.kind = m.kind.Next()
		m.boardLoaded = false
		m.leaderboard = nil
		if m.refresher != nil {
			m.refresher.SetLeaderboardKind(m.kind)
		}
		return m, m.fetchLeaderboard(m.kind)

	case key.Matches(msg, m.keymap.Refresh):
		if m.offline() {
			m.status = "Offline: refresh disabled"
			return m, nil
		}
		m.refreshing = true
		return m, m.manualRefresh()

	case key.Matches(msg, m.keymap.Up, m.keymap.Down):
		var cmd tea.Cmd
		m.ledger, cmd = m.ledger.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.ApplySearch):
		m.mode = ModeNormal
		m.search.Blur()
		m.searchGen++
		m.applySearch()
		return m, nil

	case key.Matches(msg, m.keymap.ClearSearch):
		m.mode = ModeNormal
		m.search.Blur()
		m.search.SetValue("")
		m.searchGen++
		m.applySearch()
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() == before {
		return m, cmd
	}

	m.searchGen++
	return m, tea.Batch(cmd, m.debounceSearch())
}

// applySearch commits the input text to the view state.
func (m *Model) applySearch() {
	if next := m.state.WithSearch(m.search.Value()); next.Search != m.state.Search {
		m.setState(next)
	}
}

// applyResult folds a refresh cycle into the dashboard. Failed sections
// keep their last good data and record the error for their panel.
func (m *Model) applyResult(result *refresh.Result) {
	m.refreshing = false
	m.ready = true
	if result == nil {
		return
	}

	for _, section := range refresh.Sections {
		m.sectionErrs[section] = result.Err(section)
	}
	if result.Stats != nil {
		m.stats = result.Stats
	}
	if result.Economy != nil {
		m.economy = result.Economy
	}
	if result.Trends != nil {
		m.trends = result.Trends
	}
	if result.LeaderboardKind == m.kind {
		if result.Err(refresh.SectionLeaderboard) == nil {
			m.leaderboard = result.Leaderboard
		}
		m.boardLoaded = true
	} else {
		// The kind changed mid-cycle; this leaderboard is not the one shown.
		delete(m.sectionErrs, refresh.SectionLeaderboard)
	}

	switch {
	case result.OK():
		m.status = ""
	case errors.Is(result.Err(refresh.SectionTransactions), context.Canceled):
		m.status = "Refresh cancelled"
	case result.Err(refresh.SectionTransactions) != nil:
		m.status = "Transactions unavailable, showing last good data"
	default:
		m.status = "Some panels failed to load"
	}

	m.derive()
}

func (m *Model) setState(state analytics.ViewState) {
	m.state = state
	m.derive()
}

// derive recomputes every derived view from the current snapshot.
func (m *Model) derive() {
	now := m.config.Clock()
	m.derived = m.engine.Derive(m.store.Snapshot(), m.state, now)
	if m.derived.Page.Number != m.state.Page {
		m.state.Page = m.derived.Page.Number
	}
	m.ledger.SetPage(m.derived.Page, m.state, now)
}

// handleResize adjusts component sizes when the terminal resizes.
func (m *Model) handleResize() {
	inner := max(m.width-4, 20)

	m.help.Width = m.width
	m.search.Width = max(20, min(inner-4, 60))
	m.economyPanel.SetCompact(m.width < 80)
	m.economyPanel.Resize(inner)
	m.insights.Resize(inner)

	var ledgerHeight int
	switch {
	case m.width < 80:
		ledgerHeight = m.height - 8
	case m.width < 120:
		ledgerHeight = m.height - 14
	default:
		ledgerHeight = m.height - 24
	}
	m.ledger.Resize(inner, max(6, ledgerHeight))
}

func (m Model) offline() bool {
	return m.refresher == nil || m.config.Offline
}
