package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the current view (Bubble Tea interface).
func (m *DashboardModel) View() string {
	if m.state == ViewStateQuitting {
		return ""
	}

	panes := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderNavPane(),
		m.renderContentPane(),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		panes,
		m.renderStatusBar(),
	)
}

// renderHeader shows the workspace title and the active route.
func (m *DashboardModel) renderHeader() string {
	title := HeaderStyle.Render(m.cfg.App.DefaultTitle)
	if m.activePath == "" {
		return title
	}
	return title + SubtleStyle.Render("  "+m.activePath)
}

// renderNavPane lists every navigable route with its load state glyph.
func (m *DashboardModel) renderNavPane() string {
	var lines []string
	for i, entry := range m.entries {
		glyph := SubtleStyle.Render("○")
		if route, ok := m.registry.Find(entry.Path); ok {
			glyph = stateGlyph(route.Unit.State())
		}

		label := truncateTitle(entry.Title, navPaneWidth-6)
		line := fmt.Sprintf("%s %s", glyph, label)
		if i == m.cursor {
			line = NavSelectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}

	return BoxStyle.
		Width(navPaneWidth).
		Render(strings.Join(lines, "\n"))
}

// renderContentPane shows the active page, the loading placeholder once the
// fallback delay has elapsed, or the failure panel.
func (m *DashboardModel) renderContentPane() string {
	width := m.width - navPaneWidth - 2*borderPadding
	if width < navPaneWidth {
		width = navPaneWidth
	}

	var content strings.Builder

	switch {
	case m.pageErr != nil:
		content.WriteString(CriticalStyle.Render("LOAD FAILED"))
		content.WriteString("\n\n")
		content.WriteString(LabelStyle.Render("Route: "))
		content.WriteString(ValueStyle.Render(m.activePath))
		content.WriteString("\n")
		content.WriteString(LabelStyle.Render("Error: "))
		content.WriteString(WarningStyle.Render(m.pageErr.Error()))
		content.WriteString("\n\n")
		content.WriteString(SubtleStyle.Render(m.retryHint()))

	case m.loading && m.showPlaceholder:
		content.WriteString(HeaderStyle.Render(m.currentPage.Heading))
		content.WriteString("\n\n")
		content.WriteString(m.loadingState.View())
		content.WriteString(" ")
		content.WriteString(InfoStyle.Render(m.currentPage.Body))

	default:
		content.WriteString(HeaderStyle.Render(m.currentPage.Heading))
		content.WriteString("\n\n")
		content.WriteString(m.currentPage.Body)
	}

	return BoxStyle.Width(width).Render(content.String())
}

// retryHint explains what the retry key will do given the failed unit's
// remaining budget.
func (m *DashboardModel) retryHint() string {
	route, ok := m.registry.Find(m.activePath)
	if !ok {
		return ""
	}
	if route.Unit.RetriesLeft() > 0 {
		return fmt.Sprintf("Press 'enter' to retry (%d left) or 'r' to start over", route.Unit.RetriesLeft())
	}
	return "Retry budget exhausted. Press 'r' to reset and try again"
}

// renderStatusBar displays the last batch status and the key hints.
func (m *DashboardModel) renderStatusBar() string {
	hints := "Press 'enter' to open, 'w' to warm visited, 'q' to quit"
	if m.status == "" {
		return SubtleStyle.Render(hints)
	}
	return InfoStyle.Render(m.status) + SubtleStyle.Render(" | "+hints)
}

// truncateTitle shortens a navigation title to fit the pane.
func truncateTitle(title string, maxLen int) string {
	if maxLen < 4 || len(title) <= maxLen {
		return title
	}
	return title[:maxLen-3] + "..."
}
