package tui

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/rmarin/tablero/internal/domain"
	"github.com/rmarin/tablero/internal/service"
	"github.com/rmarin/tablero/internal/tui/styles"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StatePickingStore ApplicationState = iota
	StateDashboard
	StateConfirmReviewAll
	StateConfirmLogout
	StateHelp
)

// Pane identifies which dashboard panel has focus
type Pane int

const (
	PaneChecklists Pane = iota
	PaneLedger
)

// Model is the root bubbletea model
type Model struct {
	dashboard *service.Dashboard
	keys      KeyMap
	logger    *slog.Logger

	state       ApplicationState
	returnState ApplicationState

	width  int
	height int

	spinner spinner.Model
	loading bool

	// Store picker
	stores       []domain.StoreDescriptor
	filtered     []domain.StoreDescriptor
	storeCursor  int
	storeFilter  textinput.Model
	filterActive bool

	// Checklist panel
	bundle           *domain.ChecklistBundle
	stale            bool
	entries          []domain.ChecklistEntry
	listCursor       int
	listFilter       textinput.Model
	listFilterActive bool

	// Ledger panel
	rows      []domain.DiscrepancyRow
	rowCursor int

	focus           Pane
	refreshInterval time.Duration
	showAdminBadge  bool

	status  string
	lastErr error
}

// Options configures the TUI model
type Options struct {
	RefreshInterval time.Duration
	ShowAdminBadge  bool
}

// NewModel creates the root model
func NewModel(dashboard *service.Dashboard, opts Options, logger *slog.Logger) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.AccentStyle

	filter := textinput.New()
	filter.Placeholder = "filter stores"
	filter.CharLimit = 64

	listFilter := textinput.New()
	listFilter.Placeholder = "filter checklists"
	listFilter.CharLimit = 64

	interval := opts.RefreshInterval
	if interval <= 0 {
		interval = time.Minute
	}

	return Model{
		dashboard:       dashboard,
		keys:            DefaultKeyMap(),
		logger:          logger,
		state:           StatePickingStore,
		spinner:         sp,
		storeFilter:     filter,
		listFilter:      listFilter,
		refreshInterval: interval,
		showAdminBadge:  opts.ShowAdminBadge,
		loading:         true,
	}
}

// Init starts the initial store load
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		LoadStoresCmd(m.dashboard),
		RefreshTickCmd(m.refreshInterval),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		return m.handleKey(msg)

	case StoresLoadedMsg:
		m.loading = false
		m.stores = msg.Stores
		m.applyStoreFilter()
		return m, nil

	case BundleLoadedMsg:
		if msg.Generation != m.dashboard.Generation() {
			return m, nil
		}
		m.loading = false
		m.bundle = msg.Bundle
		m.stale = msg.Stale
		m.entries = nil
		if msg.Bundle != nil {
			m.entries = msg.Bundle.Entries()
		}
		m.listCursor = clamp(m.listCursor, 0, len(m.entries)-1)
		if msg.Err != nil {
			m.lastErr = msg.Err
			m.status = "refresh failed: " + msg.Err.Error()
			return m, ClearStatusCmd()
		}
		m.lastErr = nil
		return m, nil

	case LedgerLoadedMsg:
		if msg.Generation != m.dashboard.Generation() {
			return m, nil
		}
		m.rows = msg.Rows
		m.rowCursor = clamp(m.rowCursor, 0, len(m.rows)-1)
		if msg.Err != nil {
			m.status = "ledger load failed: " + msg.Err.Error()
			return m, ClearStatusCmd()
		}
		return m, nil

	case RowReviewedMsg:
		if msg.Generation != m.dashboard.Generation() {
			return m, nil
		}
		m.rows = msg.Rows
		m.rowCursor = clamp(m.rowCursor, 0, len(m.rows)-1)
		if msg.Err != nil {
			m.status = "review failed: " + msg.Err.Error()
		} else {
			m.status = "reviewed " + msg.Key
		}
		return m, ClearStatusCmd()

	case AllReviewedMsg:
		if msg.Generation != m.dashboard.Generation() {
			return m, nil
		}
		m.rows = msg.Rows
		m.rowCursor = clamp(m.rowCursor, 0, len(m.rows)-1)
		if msg.Err != nil {
			m.status = "mark all stopped after " + itoa(msg.Removed) + "/" + itoa(msg.Total) + ": " + msg.Err.Error()
		} else {
			m.status = "reviewed " + itoa(msg.Removed) + " rows"
		}
		return m, ClearStatusCmd()

	case RefreshTickMsg:
		cmds := []tea.Cmd{RefreshTickCmd(m.refreshInterval)}
		if m.state == StateDashboard {
			cmds = append(cmds, RefreshBundleCmd(m.dashboard))
		}
		return m, tea.Batch(cmds...)

	case LoggedOutMsg:
		return m, tea.Quit

	case ClearStatusMsg:
		m.status = ""
		return m, nil

	case ErrMsg:
		m.loading = false
		m.lastErr = msg.Err
		m.status = msg.Error()
		return m, ClearStatusCmd()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case StatePickingStore:
		return m.handlePickerKey(msg)
	case StateDashboard:
		return m.handleDashboardKey(msg)
	case StateConfirmReviewAll:
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.state = StateDashboard
			m.status = "reviewing all rows…"
			return m, ReviewAllCmd(m.dashboard)
		case key.Matches(msg, m.keys.Deny):
			m.state = StateDashboard
			return m, nil
		}
	case StateConfirmLogout:
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.state = m.returnState
			return m, LogoutCmd(m.dashboard)
		case key.Matches(msg, m.keys.Deny):
			m.state = m.returnState
			return m, nil
		}
	case StateHelp:
		if key.Matches(msg, m.keys.Escape) || key.Matches(msg, m.keys.Help) {
			m.state = m.returnState
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filterActive {
		switch {
		case key.Matches(msg, m.keys.Escape):
			m.filterActive = false
			m.storeFilter.Blur()
			m.storeFilter.SetValue("")
			m.applyStoreFilter()
			return m, nil
		case key.Matches(msg, m.keys.Enter):
			m.filterActive = false
			m.storeFilter.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.storeFilter, cmd = m.storeFilter.Update(msg)
		m.applyStoreFilter()
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.storeCursor = clamp(m.storeCursor-1, 0, len(m.filtered)-1)
	case key.Matches(msg, m.keys.Down):
		m.storeCursor = clamp(m.storeCursor+1, 0, len(m.filtered)-1)
	case key.Matches(msg, m.keys.Filter):
		m.filterActive = true
		m.storeFilter.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, LoadStoresCmd(m.dashboard))
	case key.Matches(msg, m.keys.Help):
		m.returnState = m.state
		m.state = StateHelp
	case key.Matches(msg, m.keys.Logout):
		m.returnState = m.state
		m.state = StateConfirmLogout
	case key.Matches(msg, m.keys.Enter):
		if m.storeCursor < len(m.filtered) {
			picked := m.filtered[m.storeCursor]
			m.dashboard.SelectStore(picked.Name)
			m.state = StateDashboard
			m.focus = PaneChecklists
			m.bundle = nil
			m.entries = nil
			m.rows = nil
			m.stale = false
			m.listCursor = 0
			m.rowCursor = 0
			m.loading = true
			return m, tea.Batch(
				m.spinner.Tick,
				RefreshBundleCmd(m.dashboard),
				LoadLedgerCmd(m.dashboard),
			)
		}
	}
	return m, nil
}

func (m Model) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.listFilterActive {
		switch {
		case key.Matches(msg, m.keys.Escape):
			m.listFilterActive = false
			m.listFilter.Blur()
			m.listFilter.SetValue("")
			m.listCursor = 0
			return m, nil
		case key.Matches(msg, m.keys.Enter):
			m.listFilterActive = false
			m.listFilter.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.listFilter, cmd = m.listFilter.Update(msg)
		m.listCursor = 0
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Filter):
		if m.focus == PaneChecklists {
			m.listFilterActive = true
			m.listFilter.Focus()
			return m, textinput.Blink
		}

	case key.Matches(msg, m.keys.Tab):
		if m.focus == PaneChecklists {
			m.focus = PaneLedger
		} else {
			m.focus = PaneChecklists
		}

	case key.Matches(msg, m.keys.Up):
		if m.focus == PaneChecklists {
			m.listCursor = clamp(m.listCursor-1, 0, len(m.visibleEntries())-1)
		} else {
			m.rowCursor = clamp(m.rowCursor-1, 0, len(m.rows)-1)
		}

	case key.Matches(msg, m.keys.Down):
		if m.focus == PaneChecklists {
			m.listCursor = clamp(m.listCursor+1, 0, len(m.visibleEntries())-1)
		} else {
			m.rowCursor = clamp(m.rowCursor+1, 0, len(m.rows)-1)
		}

	case key.Matches(msg, m.keys.PrevDay):
		return m.shiftDate(-1)

	case key.Matches(msg, m.keys.NextDay):
		return m.shiftDate(1)

	case key.Matches(msg, m.keys.Today):
		_, date := m.dashboard.Selection()
		if date.Format("2006-01-02") != time.Now().Format("2006-01-02") {
			m.dashboard.SelectDate(time.Now())
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, RefreshBundleCmd(m.dashboard))
		}

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, tea.Batch(
			m.spinner.Tick,
			RefreshBundleCmd(m.dashboard),
			LoadLedgerCmd(m.dashboard),
		)

	case key.Matches(msg, m.keys.Review):
		if m.focus == PaneLedger && m.rowCursor < len(m.rows) {
			return m, ReviewRowCmd(m.dashboard, m.rows[m.rowCursor].Key)
		}

	case key.Matches(msg, m.keys.ReviewAll):
		if m.focus == PaneLedger && len(m.rows) > 0 {
			m.state = StateConfirmReviewAll
		}

	case key.Matches(msg, m.keys.StorePicker), key.Matches(msg, m.keys.Back):
		m.state = StatePickingStore
		m.storeCursor = 0
		m.storeFilter.SetValue("")
		m.applyStoreFilter()

	case key.Matches(msg, m.keys.Help):
		m.returnState = m.state
		m.state = StateHelp

	case key.Matches(msg, m.keys.Logout):
		m.returnState = m.state
		m.state = StateConfirmLogout
	}
	return m, nil
}

func (m Model) shiftDate(days int) (tea.Model, tea.Cmd) {
	_, date := m.dashboard.Selection()
	m.dashboard.SelectDate(date.AddDate(0, 0, days))
	m.loading = true
	return m, tea.Batch(m.spinner.Tick, RefreshBundleCmd(m.dashboard))
}

// applyStoreFilter narrows the picker list using fuzzy matching on store names
func (m *Model) applyStoreFilter() {
	query := strings.TrimSpace(m.storeFilter.Value())
	if query == "" {
		m.filtered = m.stores
		m.storeCursor = clamp(m.storeCursor, 0, len(m.filtered)-1)
		return
	}

	names := make([]string, len(m.stores))
	for i, s := range m.stores {
		names[i] = s.Name
	}
	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.Sort(ranks)

	filtered := make([]domain.StoreDescriptor, 0, len(ranks))
	for _, r := range ranks {
		filtered = append(filtered, m.stores[r.OriginalIndex])
	}
	m.filtered = filtered
	m.storeCursor = clamp(m.storeCursor, 0, len(m.filtered)-1)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
