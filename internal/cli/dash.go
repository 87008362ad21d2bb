package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/campsight/campsight/internal/tui"
)

// NewDashCmd creates the "dash" command, which opens the interactive
// campaign dashboard.
func NewDashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dash",
		Short: "Open the interactive campaign dashboard",
		Long: `Open the interactive campaign dashboard.

The dashboard lists every navigable route in a side pane and loads content
on demand. Critical routes are warmed on startup, moving the selection
warms the highlighted route, and "w" warms the most visited routes of the
current session.`,
		Example: `  # Open the dashboard
  campsight dash`,
		Args: cobra.NoArgs,
		RunE: runDashCmd,
	}
}

func runDashCmd(cmd *cobra.Command, _ []string) error {
	// The dashboard takes over the whole screen, so refuse to start when
	// stdout is a pipe or a file.
	if !isTerminal(os.Stdout) {
		return fmt.Errorf("dash requires an interactive terminal; use 'campsight routes' for scripted output")
	}

	ws, err := newWorkspace(configFromCommand(cmd))
	if err != nil {
		return fmt.Errorf("building route registry: %w", err)
	}

	model := tui.NewDashboardModel(cmd.Context(), ws.cfg, ws.registry, ws.scheduler)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run interactive dashboard: %w", err)
	}
	return nil
}
