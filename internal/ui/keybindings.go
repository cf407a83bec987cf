package ui

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

var (
	keyQuit      = key.NewBinding(key.WithKeys("q", "ctrl+c"))
	keyBack      = key.NewBinding(key.WithKeys("esc", "ctrl+["))
	keyUp        = key.NewBinding(key.WithKeys("up"))
	keyDown      = key.NewBinding(key.WithKeys("down"))
	keyEnter     = key.NewBinding(key.WithKeys("enter"))
	keySubmit    = key.NewBinding(key.WithKeys("ctrl+s"))
	keyNextField = key.NewBinding(key.WithKeys("tab", "down"))
	keyPrevField = key.NewBinding(key.WithKeys("shift+tab", "up"))
)

// slotKeys is indexed by slot number minus one.
var slotKeys = []string{"1", "2", "3"}

func isKey(msg tea.KeyMsg, keys ...string) bool {
	return slices.Contains(keys, msg.String())
}

func isQuit(msg tea.KeyMsg) bool      { return key.Matches(msg, keyQuit) }
func isUp(msg tea.KeyMsg) bool        { return key.Matches(msg, keyUp) }
func isDown(msg tea.KeyMsg) bool      { return key.Matches(msg, keyDown) }
func isEnter(msg tea.KeyMsg) bool     { return key.Matches(msg, keyEnter) }
func isSubmit(msg tea.KeyMsg) bool    { return key.Matches(msg, keySubmit) }
func isNextField(msg tea.KeyMsg) bool { return key.Matches(msg, keyNextField) }
func isPrevField(msg tea.KeyMsg) bool { return key.Matches(msg, keyPrevField) }

func isBack(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyEsc || key.Matches(msg, keyBack)
}

// slotForKey maps the digit keys to attachment slots.
func slotForKey(msg tea.KeyMsg) (int, bool) {
	i := slices.Index(slotKeys, msg.String())
	if i < 0 {
		return 0, false
	}
	return i + 1, true
}
