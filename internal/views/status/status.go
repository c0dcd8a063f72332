// Package status renders the one-line server status bar shown above
// every screen.
package status

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/drawpile/dpwebadmin/internal/theme"
)

// Model holds the status bar state.
type Model struct {
	ServerURL string
	Healthy   bool
	Total     int
	Active    int
	Locked    bool
	Width     int
}

// New creates a status bar for the given server.
func New(serverURL string) Model {
	return Model{ServerURL: serverURL}
}

// SetCounts updates the session counts.
func (m *Model) SetCounts(total, active int) {
	m.Total = total
	m.Active = active
}

// View renders the status bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	var connStr string
	if m.Healthy {
		connStr = lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("● " + m.ServerURL)
	} else {
		connStr = lipgloss.NewStyle().Foreground(theme.ColorDanger).Render("○ " + m.ServerURL)
	}

	counts := fmt.Sprintf("%d sessions, %d active", m.Total, m.Active)

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := connStr + sep + counts
	if m.Locked {
		content += sep + theme.StyleLocked.Render("LOCKED")
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}
