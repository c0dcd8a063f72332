// Package theme provides the Lip Gloss color palette and reusable styles
// for the admin console. It is a leaf package with no internal imports
// to avoid import cycles.
package theme

import "github.com/charmbracelet/lipgloss"

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
	ColorAccent  = lipgloss.Color("#3b82f6")
	ColorPending = lipgloss.Color("#f59e0b")
)

// Chat colors.
var (
	ColorChatAdmin  = lipgloss.Color("#a855f7")
	ColorChatUser   = lipgloss.Color("#e5e7eb")
	ColorChatShout  = lipgloss.Color("#f59e0b")
	ColorChatAction = lipgloss.Color("#06b6d4")
	ColorChatPin    = lipgloss.Color("#22c55e")
	ColorChatAlert  = lipgloss.Color("#dc2626")
)

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
			Foreground(ColorDimmed)

	StyleSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorDanger)

	StyleLocked = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	StylePending = lipgloss.NewStyle().
			Foreground(ColorPending)
)

// OnlineColor returns the color for a user's online status.
func OnlineColor(online bool) lipgloss.Color {
	if online {
		return ColorHealthy
	}
	return ColorDimmed
}

// UsageColor returns the color for a fill ratio (session size, user
// count) as it approaches its limit.
func UsageColor(ratio float64) lipgloss.Color {
	switch {
	case ratio > 0.8:
		return ColorDanger
	case ratio > 0.5:
		return ColorWarning
	default:
		return ColorHealthy
	}
}
