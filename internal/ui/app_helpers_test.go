package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/gravitrone/datafiles/internal/ui/components"
)

func TestCenterKeepsRelativeIndent(t *testing.T) {
	out := center("ab\nabcd", 10)
	lines := strings.Split(out, "\n")
	assert.Equal(t, "   ab", strings.TrimRight(lines[0], " "))
	assert.Equal(t, "   abcd", strings.TrimRight(lines[1], " "))
	assert.Equal(t, 10, lipgloss.Width(lines[0]))
	assert.Equal(t, "abcd", center("abcd", 0))
}

func TestRenderToastUsesGenericFailureCopy(t *testing.T) {
	app := App{width: 80}
	app.setToast(toastError, "HTTP 500: boom")

	clean := components.Clean(app.renderToast())
	assert.Contains(t, clean, "Uh oh! Something went wrong.")
	assert.Contains(t, clean, "There was a problem with your request.")
	assert.NotContains(t, clean, "boom")

	app.setToast(toastSuccess, "Successfully submit new data")
	assert.Contains(t, components.Clean(app.renderToast()), "Successfully submit new data")
}
