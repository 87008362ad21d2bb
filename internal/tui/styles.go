// Package tui implements the interactive CampSight dashboard: a navigation
// pane over the route registry and a content pane that renders lazily loaded
// pages, with preload warming wired to navigation intent.
package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/campsight/campsight/internal/lazyload"
)

// ViewState represents the current state of the dashboard TUI.
type ViewState int

const (
	// ViewStateBrowsing indicates the normal two-pane navigation view.
	ViewStateBrowsing ViewState = iota
	// ViewStateQuitting indicates the application is exiting.
	ViewStateQuitting
)

// Key bindings handled by the dashboard.
const (
	keyQuit    = "q"
	keyCtrlC   = "ctrl+c"
	keyEnter   = "enter"
	keyUp      = "up"
	keyDown    = "down"
	keyVimUp   = "k"
	keyVimDown = "j"
	keyWarm    = "w"
	keyRetry   = "r"
)

// Default dimensions used before the first WindowSizeMsg arrives.
const (
	defaultWidth  = 80
	defaultHeight = 24
	navPaneWidth  = 26
	borderPadding = 2
)

// Color palette shared by all dashboard styles.
//
//nolint:gochecknoglobals // Shared lipgloss palette.
var (
	ColorAccent   = lipgloss.Color("62")
	ColorOK       = lipgloss.Color("42")
	ColorWarning  = lipgloss.Color("214")
	ColorCritical = lipgloss.Color("196")
	ColorMuted    = lipgloss.Color("241")
)

// Styles shared by the dashboard views.
//
//nolint:gochecknoglobals // Shared lipgloss styles.
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorAccent)

	SubtleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	CriticalStyle = lipgloss.NewStyle().
			Foreground(ColorCritical).
			Bold(true)

	OKStyle = lipgloss.NewStyle().
		Foreground(ColorOK)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1)

	NavSelectedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("255")).
				Background(ColorAccent)
)

// LoadingState wraps the spinner shown while page content is in flight.
type LoadingState struct {
	spinner spinner.Model
}

// NewLoadingState creates a LoadingState with the dashboard spinner style.
func NewLoadingState() *LoadingState {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ColorAccent)
	return &LoadingState{spinner: s}
}

// Init returns the command that starts the spinner ticking.
func (l *LoadingState) Init() tea.Cmd {
	return l.spinner.Tick
}

// Update advances the spinner animation.
func (l *LoadingState) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(msg)
	return cmd
}

// View renders the current spinner frame.
func (l *LoadingState) View() string {
	return l.spinner.View()
}

// stateGlyph maps a unit's load state to the marker shown in the navigation
// pane.
func stateGlyph(state lazyload.State) string {
	switch state {
	case lazyload.StateLoaded:
		return OKStyle.Render("●")
	case lazyload.StateLoading:
		return InfoStyle.Render("◐")
	case lazyload.StateFailed:
		return CriticalStyle.Render("✗")
	case lazyload.StateUnloaded:
		return SubtleStyle.Render("○")
	default:
		return SubtleStyle.Render("○")
	}
}
