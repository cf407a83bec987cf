package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	keyCapStyle = lipgloss.NewStyle().
			Foreground(ColorInk).
			Background(ColorMuted).
			Bold(true).
			Padding(0, 1)
	keyTileStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1).
			MarginRight(1)
)

// KeyHint formats one binding as its label followed by a key cap.
func KeyHint(key, label string) string {
	return mutedStyle.Render(label+" ") + keyCapStyle.Render(key)
}

// KeyBar lays hints out as bordered tiles, wrapping onto more rows when they
// do not fit in width, with every row centered.
func KeyBar(hints []string, width int) string {
	tiles := make([]string, len(hints))
	for i, h := range hints {
		tiles[i] = keyTileStyle.Render(h)
	}
	if len(tiles) == 0 {
		return ""
	}

	var rows [][]string
	rowWidth := 0
	for _, tile := range tiles {
		w := lipgloss.Width(tile)
		if len(rows) == 0 || (width > 0 && rowWidth+w > width) {
			rows = append(rows, nil)
			rowWidth = 0
		}
		rows[len(rows)-1] = append(rows[len(rows)-1], tile)
		rowWidth += w
	}

	rendered := make([]string, len(rows))
	for i, row := range rows {
		rendered[i] = lipgloss.JoinHorizontal(lipgloss.Top, row...)
	}
	bar := strings.Join(rendered, "\n")
	if width <= 0 {
		return bar
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, bar)
}
