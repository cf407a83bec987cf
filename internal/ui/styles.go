package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/gravitrone/datafiles/internal/ui/components"
)

// Page styles. Colors come from the components palette.
var (
	TabActiveStyle = lipgloss.NewStyle().
			Foreground(components.ColorInk).
			Background(components.ColorAccent).
			Bold(true).
			Padding(0, 1)

	TabInactiveStyle = lipgloss.NewStyle().
				Foreground(components.ColorMuted).
				Padding(0, 1)

	FocusStyle = lipgloss.NewStyle().
			Foreground(components.ColorAccent).
			Bold(true)

	ValueStyle = lipgloss.NewStyle().Foreground(components.ColorText)
	HintStyle  = lipgloss.NewStyle().Foreground(components.ColorMuted)

	FieldErrorStyle = lipgloss.NewStyle().
			Foreground(components.ColorDanger).
			Bold(true)
)
