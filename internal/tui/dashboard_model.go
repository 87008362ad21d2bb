package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/campsight/campsight/internal/config"
	"github.com/campsight/campsight/internal/lazyload"
	"github.com/campsight/campsight/internal/preload"
	"github.com/campsight/campsight/internal/routes"
	"github.com/campsight/campsight/internal/views"
)

// pageLoadedMsg is sent when a requested page settles.
type pageLoadedMsg struct {
	path string
	page views.Page
	err  error
}

// fallbackElapsedMsg is sent when a route's fallback delay has passed while
// its load is still in flight.
type fallbackElapsedMsg struct {
	path string
}

// criticalWarmedMsg is sent when the startup critical batch settles.
type criticalWarmedMsg struct {
	result preload.Result
}

// intentWarmedMsg is sent when a navigation-intent preload settles.
type intentWarmedMsg struct {
	outcome preload.Outcome
}

// usageWarmedMsg is sent when a usage-history warm batch settles.
type usageWarmedMsg struct {
	result preload.Result
}

// DashboardModel is the Bubble Tea model for the CampSight dashboard.
type DashboardModel struct {
	ctx       context.Context
	cfg       *config.Config
	registry  *routes.Registry[views.Page]
	scheduler *preload.Scheduler[views.Page]

	// Navigation pane
	entries []routes.NavEntry
	cursor  int

	// Content pane
	activePath      string
	currentPage     views.Page
	pageErr         error
	loading         bool
	showPlaceholder bool

	// Observed navigation history for usage-based warming. Session-only,
	// never persisted.
	history []string

	status       string
	loadingState *LoadingState
	state        ViewState
	width        int
	height       int
}

// NewDashboardModel creates the dashboard model over the given registry and
// scheduler. The context carries the logger and trace ID for every load the
// dashboard triggers.
func NewDashboardModel(
	ctx context.Context,
	cfg *config.Config,
	registry *routes.Registry[views.Page],
	scheduler *preload.Scheduler[views.Page],
) *DashboardModel {
	return &DashboardModel{
		ctx:          ctx,
		cfg:          cfg,
		registry:     registry,
		scheduler:    scheduler,
		entries:      registry.NavigationEntries(),
		state:        ViewStateBrowsing,
		loadingState: NewLoadingState(),
		width:        defaultWidth,
		height:       defaultHeight,
	}
}

// Init starts the spinner, warms the critical routes when configured, and
// opens the first navigation entry.
func (m *DashboardModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadingState.Init()}

	if m.cfg.Preload.OnStartupEnabled() {
		cmds = append(cmds, m.criticalWarmCmd())
	}

	if cmd := m.openSelected(); cmd != nil {
		cmds = append(cmds, cmd)
	}

	return tea.Batch(cmds...)
}

// Update handles messages and updates the model state.
func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case pageLoadedMsg:
		return m.handlePageLoaded(msg)

	case fallbackElapsedMsg:
		return m.handleFallbackElapsed(msg)

	case criticalWarmedMsg:
		return m.handleCriticalWarmed(msg)

	case intentWarmedMsg:
		// The scheduler already logged the outcome; the arrival alone
		// refreshes the navigation glyphs.
		return m, nil

	case usageWarmedMsg:
		return m.handleUsageWarmed(msg)

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	// Everything else is a spinner tick.
	return m, m.loadingState.Update(msg)
}

func (m *DashboardModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyQuit, keyCtrlC:
		m.state = ViewStateQuitting
		return m, tea.Quit

	case keyUp, keyVimUp:
		if m.cursor > 0 {
			m.cursor--
			return m, m.intentWarmCmd(m.entries[m.cursor].Path)
		}
		return m, nil

	case keyDown, keyVimDown:
		if m.cursor < len(m.entries)-1 {
			m.cursor++
			return m, m.intentWarmCmd(m.entries[m.cursor].Path)
		}
		return m, nil

	case keyEnter:
		return m, m.openSelected()

	case keyWarm:
		return m, m.usageWarmCmd()

	case keyRetry:
		return m, m.retryActive()
	}

	return m, nil
}

// openSelected navigates to the entry under the cursor: the path is recorded
// in the session history and its content requested.
func (m *DashboardModel) openSelected() tea.Cmd {
	if len(m.entries) == 0 {
		return nil
	}
	return m.openRoute(m.entries[m.cursor].Path)
}

// openRoute makes path the active route. Already loaded content renders
// immediately; otherwise the request runs as a command and the fallback
// delay timer decides when the placeholder appears.
func (m *DashboardModel) openRoute(path string) tea.Cmd {
	route, ok := m.registry.Find(path)
	if !ok {
		m.pageErr = fmt.Errorf("unknown route %s", path)
		return nil
	}

	m.activePath = route.Path
	m.history = append(m.history, route.Path)
	m.pageErr = nil

	if route.Unit.State() == lazyload.StateLoaded {
		m.currentPage = route.Unit.Content()
		m.loading = false
		m.showPlaceholder = false
		return nil
	}

	m.loading = true
	m.showPlaceholder = false

	cmds := []tea.Cmd{m.requestCmd(route.Path)}
	if delay := route.Unit.FallbackDelay(); delay > 0 {
		cmds = append(cmds, fallbackTimerCmd(route.Path, delay))
	} else {
		// No grace period configured: show the placeholder right away.
		m.showPlaceholder = true
		m.currentPage = route.Unit.Fallback()
	}
	return tea.Batch(cmds...)
}

// requestCmd loads the page for path.
func (m *DashboardModel) requestCmd(path string) tea.Cmd {
	// Capture references before the command runs to avoid accessing model
	// fields concurrently.
	ctx := m.ctx
	registry := m.registry

	return func() tea.Msg {
		route, ok := registry.Find(path)
		if !ok {
			return pageLoadedMsg{path: path, err: fmt.Errorf("unknown route %s", path)}
		}
		page, err := route.Unit.Request(ctx)
		return pageLoadedMsg{path: path, page: page, err: err}
	}
}

// fallbackTimerCmd fires once the route's fallback delay has elapsed.
func fallbackTimerCmd(path string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return fallbackElapsedMsg{path: path}
	})
}

// criticalWarmCmd preloads every route flagged critical.
func (m *DashboardModel) criticalWarmCmd() tea.Cmd {
	ctx := m.ctx
	scheduler := m.scheduler

	return func() tea.Msg {
		return criticalWarmedMsg{result: scheduler.Critical(ctx)}
	}
}

// intentWarmCmd preloads path speculatively because the selection moved onto
// it. Failures are advisory.
func (m *DashboardModel) intentWarmCmd(path string) tea.Cmd {
	ctx := m.ctx
	scheduler := m.scheduler

	return func() tea.Msg {
		return intentWarmedMsg{outcome: scheduler.Path(ctx, path)}
	}
}

// usageWarmCmd preloads the most visited routes of this session.
func (m *DashboardModel) usageWarmCmd() tea.Cmd {
	ctx := m.ctx
	scheduler := m.scheduler
	observed := make([]string, len(m.history))
	copy(observed, m.history)

	return func() tea.Msg {
		return usageWarmedMsg{result: scheduler.ByUsage(ctx, observed)}
	}
}

// retryActive resets the active route's unit when it has failed, restoring
// its retry budget, and requests it again.
func (m *DashboardModel) retryActive() tea.Cmd {
	route, ok := m.registry.Find(m.activePath)
	if !ok || route.Unit.State() != lazyload.StateFailed {
		return nil
	}

	route.Unit.Reset()
	m.pageErr = nil
	m.status = fmt.Sprintf("retrying %s", route.Path)
	return m.openRoute(route.Path)
}

func (m *DashboardModel) handlePageLoaded(msg pageLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.path != m.activePath {
		// Stale result: the user has navigated elsewhere. The content is
		// memoized in its unit, so nothing is lost.
		return m, nil
	}

	m.loading = false
	m.showPlaceholder = false

	if msg.err != nil {
		m.pageErr = msg.err
		return m, nil
	}

	m.currentPage = msg.page
	m.pageErr = nil
	return m, nil
}

func (m *DashboardModel) handleFallbackElapsed(msg fallbackElapsedMsg) (tea.Model, tea.Cmd) {
	if !m.loading || msg.path != m.activePath {
		return m, nil
	}

	// The load is slower than the grace period: swap in the placeholder.
	if route, ok := m.registry.Find(msg.path); ok {
		m.currentPage = route.Unit.Fallback()
	}
	m.showPlaceholder = true
	return m, nil
}

func (m *DashboardModel) handleCriticalWarmed(msg criticalWarmedMsg) (tea.Model, tea.Cmd) {
	result := msg.result
	if result.Failed() > 0 {
		m.status = fmt.Sprintf("critical warm: %d/%d routes ready", result.Succeeded(), result.Attempted())
	} else {
		m.status = fmt.Sprintf("critical routes ready (%d)", result.Succeeded())
	}
	return m, nil
}

func (m *DashboardModel) handleUsageWarmed(msg usageWarmedMsg) (tea.Model, tea.Cmd) {
	result := msg.result
	if result.Attempted() == 0 {
		m.status = "no visits recorded yet"
		return m, nil
	}
	m.status = fmt.Sprintf("warmed %d/%d most visited routes", result.Succeeded(), result.Attempted())
	return m, nil
}

// History returns the session's observed navigation history.
func (m *DashboardModel) History() []string {
	return m.history
}

// ActivePath returns the path currently shown in the content pane.
func (m *DashboardModel) ActivePath() string {
	return m.activePath
}
