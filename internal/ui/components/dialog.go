package components

import "github.com/charmbracelet/lipgloss"

const dialogWidth = 44

var dialogStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder).
	Padding(1, 2).
	Width(dialogWidth)

func dialog(title, message, footer string) string {
	body := accentStyle.Render(title) + "\n\n" + mutedStyle.Render(message)
	if footer != "" {
		body += "\n\n" + footer
	}
	return dialogStyle.Render(body)
}

// ConfirmDialog asks a yes/no question answered with y or n.
func ConfirmDialog(title, message string) string {
	return dialog(title, message, KeyHint("y", "Confirm")+"  "+KeyHint("n", "Cancel"))
}

// BusyDialog tells the user to wait while a request runs. It takes no input.
func BusyDialog(title, message string) string {
	return dialog(title, message, "")
}
