package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const ellipsis = "..."

// Fit cleans text onto one line and cuts it to width columns, marking the cut
// with an ellipsis. A width of zero or less leaves the line uncut.
func Fit(text string, width int) string {
	line := CleanLine(text)
	if width <= 0 || lipgloss.Width(line) <= width {
		return line
	}
	if width <= len(ellipsis) {
		return cut(line, width)
	}
	return cut(line, width-len(ellipsis)) + ellipsis
}

// cut keeps the leading runes of s that fit in width columns.
func cut(s string, width int) string {
	var b strings.Builder
	used := 0
	for _, r := range s {
		w := lipgloss.Width(string(r))
		if used+w > width {
			break
		}
		b.WriteRune(r)
		used += w
	}
	return b.String()
}

// pad right-fills s with spaces to width columns.
func pad(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// Indent prefixes every line of s with n spaces.
func Indent(s string, n int) string {
	prefix := strings.Repeat(" ", n)
	return prefix + strings.ReplaceAll(s, "\n", "\n"+prefix)
}
