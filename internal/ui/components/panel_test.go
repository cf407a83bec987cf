package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPanelWidthBounds(t *testing.T) {
	assert.Equal(t, 0, PanelWidth(0))
	assert.Equal(t, 30, PanelWidth(30))
	assert.Equal(t, 40, PanelWidth(50))
	assert.Equal(t, 90, PanelWidth(120))
	assert.Equal(t, 96, PanelWidth(200))
	assert.Equal(t, 84, InnerWidth(120))
}

func TestPanelSetsTitleIntoTopEdge(t *testing.T) {
	out := Panel("Records", "body", 120)
	lines := strings.Split(out, "\n")
	require.Greater(t, len(lines), 2)

	top := Clean(lines[0])
	assert.True(t, strings.HasPrefix(top, "╭"))
	assert.True(t, strings.HasSuffix(top, "╮"))
	assert.Contains(t, top, " Records ")
	for _, line := range lines {
		assert.Equal(t, 90, lipgloss.Width(line))
	}
	assert.Contains(t, Clean(out), "body")
}

func TestPanelWithoutTitleIsPlainBox(t *testing.T) {
	out := Clean(Panel("", "body", 80))
	assert.True(t, strings.HasPrefix(out, "╭─"))
	assert.NotContains(t, strings.Split(out, "\n")[0], " ")
}

func TestAlertPanelRendersTitleAndBody(t *testing.T) {
	out := Clean(AlertPanel("Uh oh! Something went wrong.", "There was a problem with your request.", 100))
	assert.Contains(t, out, "Uh oh! Something went wrong.")
	assert.Contains(t, out, "There was a problem with your request.")
}

func TestEmptyPanelShowsMessageAndHint(t *testing.T) {
	out := Clean(EmptyPanel("Records", "No records yet.", "Press c to create one", 80))
	assert.Contains(t, out, "No records yet.")
	assert.Contains(t, out, "Press c to create one")
}

func TestFieldsAlignsLabels(t *testing.T) {
	out := Clean(Fields("Detail #7", []Field{
		{Label: "Title", Value: "Report"},
		{Label: "Description", Value: "Q1 results"},
	}, 100))
	assert.Contains(t, out, "Detail #7")
	assert.Contains(t, out, "Title        Report")
	assert.Contains(t, out, "Description  Q1 results")
	assert.Empty(t, Fields("x", nil, 100))
}
