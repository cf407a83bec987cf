package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gravitrone/datafiles/internal/ui/components"
)

const bannerArt = `
 ___   _ _____ _   ___ ___ _    ___ ___
|   \ /_\_   _/_\ | __|_ _| |  | __/ __|
| |) / _ \| |/ _ \| _| | || |__| _|\__ \
|___/_/ \_\_/_/ \_\_| |___|____|___|___/`

const bannerSubtitle = "Simple App • Records and Attachments"

var (
	bannerArtStyle      = lipgloss.NewStyle().Foreground(components.ColorAccent)
	bannerSubtitleStyle = lipgloss.NewStyle().Foreground(components.ColorMuted)
	bannerRuleStyle     = lipgloss.NewStyle().Foreground(components.ColorBorder)
)

// RenderBanner returns the art with the subtitle and a rule centered below it.
func RenderBanner() string {
	art := strings.Trim(bannerArt, "\n")
	width := max(lipgloss.Width(art), lipgloss.Width(bannerSubtitle))

	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	rule := strings.Repeat("─", lipgloss.Width(bannerSubtitle))

	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		bannerArtStyle.Render(art),
		"",
		center.Render(bannerSubtitleStyle.Render(bannerSubtitle)),
		center.Render(bannerRuleStyle.Render(rule)),
		"",
	)
}
