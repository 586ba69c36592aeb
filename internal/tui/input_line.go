package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// renderInputLine draws a text input as one padded line of exactly bodyW
// columns on the input background.
func renderInputLine(bodyW int, inputView string, focused bool) string {
	if bodyW < 10 {
		bodyW = 10
	}

	// A newline inside the view would wrap and look like inserted text.
	inputView = strings.ReplaceAll(inputView, "\n", " ")
	inputView = strings.ReplaceAll(inputView, "\r", " ")

	marker := " "
	if focused {
		marker = lipgloss.NewStyle().Foreground(colorAccent).Render("▌")
	}

	line := lipgloss.PlaceHorizontal(
		bodyW,
		lipgloss.Left,
		marker+inputView+" ",
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceBackground(colorInputBg),
	)
	if xansi.StringWidth(line) > bodyW {
		// Terminate styling so the background does not bleed.
		line = xansi.Truncate(line, bodyW, "") + "\x1b[0m"
	}
	return line
}
