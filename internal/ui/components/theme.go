// Package components renders the building blocks of the terminal pages:
// panels, the record grid, dialogs and the key hint bar.
package components

import "github.com/charmbracelet/lipgloss"

// Palette shared by every component and page.
var (
	ColorAccent    = lipgloss.Color("#7f57b4")
	ColorInk       = lipgloss.Color("#16161d")
	ColorText      = lipgloss.Color("#d7d9da")
	ColorMuted     = lipgloss.Color("#9ba0bf")
	ColorLabel     = lipgloss.Color("#436b77")
	ColorBorder    = lipgloss.Color("#273540")
	ColorHighlight = lipgloss.Color("#1f2530")
	ColorDanger    = lipgloss.Color("#e06c75")
	ColorDangerDim = lipgloss.Color("#7a2f3a")
	ColorDangerInk = lipgloss.Color("#d6b5b5")
	ColorSuccess   = lipgloss.Color("#98c379")
)

var (
	accentStyle = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	textStyle   = lipgloss.NewStyle().Foreground(ColorText)
	labelStyle  = lipgloss.NewStyle().Foreground(ColorLabel).Bold(true)
)
