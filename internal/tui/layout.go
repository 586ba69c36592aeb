package tui

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

// normalizeBlock forces s to be exactly width columns wide (ANSI-aware) and
// height lines tall. Rows stay at fixed offsets, which mouse hit testing
// relies on.
func normalizeBlock(s string, width, height int) string {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	lines := strings.Split(s, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}

	for i, ln := range lines {
		lines[i] = fitWidth(ln, width)
	}
	return strings.Join(lines, "\n")
}

// fitWidth truncates with an ellipsis or pads ln to width columns.
func fitWidth(ln string, width int) string {
	if width <= 0 {
		return ""
	}
	w := xansi.StringWidth(ln)
	if w > width {
		if width == 1 {
			ln = xansi.Truncate(ln, 1, "")
		} else {
			ln = xansi.Truncate(ln, width, "…")
		}
		w = xansi.StringWidth(ln)
	}
	if w < width {
		ln += strings.Repeat(" ", width-w)
	}
	return ln
}

// indentBlock shifts every line of s right by n columns.
func indentBlock(s string, n int) string {
	if n <= 0 {
		return s
	}
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = pad + lines[i]
	}
	return strings.Join(lines, "\n")
}

// centerOffset is the left offset that centers content of width w in total.
func centerOffset(total, w int) int {
	if w >= total {
		return 0
	}
	return (total - w) / 2
}

func blockWidth(s string) int {
	max := 0
	for _, ln := range strings.Split(s, "\n") {
		if w := xansi.StringWidth(ln); w > max {
			max = w
		}
	}
	return max
}
