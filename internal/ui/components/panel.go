package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	minPanelWidth = 40
	maxPanelWidth = 96
	panelChrome   = 6 // two border columns and two columns of padding per side
)

type panelTheme struct {
	border lipgloss.Color
	title  lipgloss.Style
	body   lipgloss.Style
}

var (
	plainTheme = panelTheme{border: ColorBorder, title: accentStyle, body: lipgloss.NewStyle()}
	alertTheme = panelTheme{
		border: ColorDangerDim,
		title:  lipgloss.NewStyle().Foreground(ColorDanger).Bold(true),
		body:   lipgloss.NewStyle().Foreground(ColorDangerInk),
	}
	successTheme = panelTheme{
		border: ColorSuccess,
		title:  lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true),
		body:   textStyle,
	}
)

// PanelWidth is the outer width of a panel on a terminal of the given width:
// three quarters of it, kept between 40 and 96 columns and never wider than
// the terminal. Unknown widths give 0 and panels size to their content.
func PanelWidth(termWidth int) int {
	if termWidth <= 0 {
		return 0
	}
	w := min(max(termWidth*3/4, minPanelWidth), maxPanelWidth)
	return min(w, termWidth)
}

// InnerWidth is the content width of a panel on a terminal of the given width.
func InnerWidth(termWidth int) int {
	return max(PanelWidth(termWidth)-panelChrome, 0)
}

// Panel renders body in a rounded border with title set into the top edge.
func Panel(title, body string, termWidth int) string {
	return renderPanel(plainTheme, title, body, termWidth)
}

// AlertPanel is a Panel in the danger colors.
func AlertPanel(title, body string, termWidth int) string {
	return renderPanel(alertTheme, title, body, termWidth)
}

// SuccessPanel is a Panel in the success colors.
func SuccessPanel(title, body string, termWidth int) string {
	return renderPanel(successTheme, title, body, termWidth)
}

// EmptyPanel tells the user a page has nothing to show and what to do next.
func EmptyPanel(title, message, hint string, termWidth int) string {
	body := mutedStyle.Render(CleanLine(message))
	if hint != "" {
		body += "\n\n" + textStyle.Render(hint)
	}
	return Panel(title, body, termWidth)
}

func renderPanel(theme panelTheme, title, body string, termWidth int) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderTop(title == "").
		BorderForeground(theme.border).
		Padding(1, 2)
	if w := PanelWidth(termWidth); w > 0 {
		// lipgloss widths exclude the border.
		style = style.Width(w - 2)
	}
	boxed := style.Render(theme.body.Render(body))
	if title == "" {
		return boxed
	}
	return topEdge(theme, title, lipgloss.Width(boxed)) + "\n" + boxed
}

// topEdge draws ╭─ title ─╮ across width columns, centering the title.
func topEdge(theme panelTheme, title string, width int) string {
	border := lipgloss.RoundedBorder()
	edge := lipgloss.NewStyle().Foreground(theme.border)
	inner := width - 2
	if inner < 1 {
		return edge.Render(border.TopLeft + border.TopRight)
	}

	label := " " + CleanLine(title) + " "
	if lipgloss.Width(label) > inner {
		label = cut(label, inner)
	}
	left := (inner - lipgloss.Width(label)) / 2
	right := inner - lipgloss.Width(label) - left
	return edge.Render(border.TopLeft+strings.Repeat(border.Top, left)) +
		theme.title.Render(label) +
		edge.Render(strings.Repeat(border.Top, right)+border.TopRight)
}

// Field is one labelled value of a Fields panel.
type Field struct {
	Label string
	Value string
}

// Fields renders labelled values in two aligned columns inside a Panel.
// Labels take at most a third of the content width.
func Fields(title string, fields []Field, termWidth int) string {
	if len(fields) == 0 {
		return ""
	}
	labelWidth := 0
	for _, f := range fields {
		labelWidth = max(labelWidth, lipgloss.Width(CleanLine(f.Label)))
	}
	inner := InnerWidth(termWidth)
	valueWidth := 0
	if inner > 0 {
		labelWidth = min(labelWidth, max(inner/3, 4))
		valueWidth = max(inner-labelWidth-2, 4)
	}

	lines := make([]string, len(fields))
	for i, f := range fields {
		label := labelStyle.Render(pad(Fit(f.Label, labelWidth), labelWidth))
		lines[i] = label + "  " + textStyle.Render(Fit(f.Value, valueWidth))
	}
	return Panel(title, strings.Join(lines, "\n"), termWidth)
}
