package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	gridSep    = "│"
	gridRule   = "─"
	gridCross  = "┼"
	gridMargin = "  "
)

var (
	gridLineStyle   = lipgloss.NewStyle().Foreground(ColorBorder)
	gridHeaderStyle = labelStyle
	gridActiveStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Background(ColorHighlight).
			Bold(true)
)

// Column is one column of a Grid. Width counts content columns only.
type Column struct {
	Header string
	Width  int
}

// Grid is a header, a rule and rows of cells, one of which may be
// highlighted.
type Grid struct {
	Columns []Column
	Rows    [][]string
	// Active is the highlighted row index, or -1 for none.
	Active int
}

// Render draws the grid exactly width columns wide. The last column grows
// or shrinks to absorb the difference. A width of zero or less renders
// nothing.
func (g Grid) Render(width int) string {
	if width <= 0 || len(g.Columns) == 0 {
		return ""
	}
	widths := g.fit(width)

	lines := make([]string, 0, len(g.Rows)+2)
	lines = append(lines, g.row(headers(g.Columns), widths, width, gridHeaderStyle))

	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat(gridRule, w)
	}
	lines = append(lines, gridLineStyle.Render(pad(gridMargin+strings.Join(rule, gridCross), width)))

	for i, cells := range g.Rows {
		style := lipgloss.NewStyle()
		if i == g.Active {
			style = gridActiveStyle
		}
		lines = append(lines, g.row(cells, widths, width, style))
	}
	return strings.Join(lines, "\n")
}

func headers(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Header
	}
	return out
}

func (g Grid) fit(width int) []int {
	widths := make([]int, len(g.Columns))
	used := len(gridMargin) + len(g.Columns) - 1
	for i, c := range g.Columns {
		widths[i] = max(c.Width, 1)
		used += widths[i]
	}
	last := len(widths) - 1
	widths[last] = max(widths[last]+width-used, 1)
	return widths
}

func (g Grid) row(cells []string, widths []int, width int, style lipgloss.Style) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		text := ""
		if i < len(cells) {
			text = cells[i]
		}
		parts[i] = style.Inline(true).Render(pad(Fit(text, w), w))
	}
	sep := gridLineStyle.Inline(true).Render(gridSep)
	return pad(gridMargin+strings.Join(parts, sep), width)
}
