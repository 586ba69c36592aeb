package tui

import (
	"strings"

	"usermanager/internal/nav"

	"github.com/charmbracelet/lipgloss"
)

// Card geometry, outer size including the border.
const (
	cardW   = 32
	cardH   = 6
	cardGap = 4

	cardInnerW = cardW - 4
	cardInnerH = cardH - 2

	rippleGlyph = '◉'
)

type dashboardCard struct {
	title  string
	desc   [2]string
	cta    string
	action nav.Action
}

var dashboardCards = [2]dashboardCard{
	{
		title:  "Secure Login",
		desc:   [2]string{"Access your account with", "your email and password."},
		cta:    "Sign in →",
		action: nav.ActionOpenLogin,
	},
	{
		title:  "Create Account",
		desc:   [2]string{"Join in a few seconds and", "get started right away."},
		cta:    "Sign up →",
		action: nav.ActionOpenRegister,
	},
}

var dashboardStats = []struct{ value, label string }{
	{"99.9%", "Uptime"},
	{"256-bit", "Security"},
	{"24/7", "Support"},
}

const dashboardBlurb = `Sign in to an existing account or create a new one.
Pick a card with the arrow keys and press **enter**, or click it.`

type rect struct{ x, y, w, h int }

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// dashLayout places the dashboard in screen coordinates. Rendering and
// mouse hit testing both read from it.
type dashLayout struct {
	width   int
	blurb   string
	cardsY  int
	cards   [2]rect
	stacked bool
}

// bodyTop is the first screen row below the header.
const bodyTop = 2

// dashboardTitleRows covers the title, subtitle and the blank line after them.
const dashboardTitleRows = 3

func newDashLayout(width int) dashLayout {
	l := dashLayout{width: width}
	blurbW := width - 4
	if blurbW > 64 {
		blurbW = 64
	}
	l.blurb = renderMarkdown(dashboardBlurb, blurbW)

	y := bodyTop + dashboardTitleRows
	if l.blurb != "" {
		y += strings.Count(l.blurb, "\n") + 1 + 1
	}
	l.cardsY = y

	if width >= 2*cardW+cardGap {
		x := centerOffset(width, 2*cardW+cardGap)
		l.cards[0] = rect{x: x, y: y, w: cardW, h: cardH}
		l.cards[1] = rect{x: x + cardW + cardGap, y: y, w: cardW, h: cardH}
		return l
	}
	l.stacked = true
	x := centerOffset(width, cardW)
	l.cards[0] = rect{x: x, y: y, w: cardW, h: cardH}
	l.cards[1] = rect{x: x, y: y + cardH, w: cardW, h: cardH}
	return l
}

// hit returns the card under (x, y) and the position relative to it.
func (l dashLayout) hit(x, y int) (int, nav.Origin, bool) {
	for i, r := range l.cards {
		if r.contains(x, y) {
			return i, nav.Origin{X: x - r.x, Y: y - r.y}, true
		}
	}
	return 0, nav.Origin{}, false
}

// cardCenter is the ripple origin for keyboard activation.
func cardCenter() nav.Origin { return nav.Origin{X: cardW / 2, Y: cardH / 2} }

// renderDashboard renders the body rows, starting at bodyTop.
func renderDashboard(l dashLayout, selected int, ripples []nav.Ripple) string {
	var rows []string
	center := func(s string) {
		for _, ln := range strings.Split(s, "\n") {
			rows = append(rows, indentBlock(ln, centerOffset(l.width, blockWidth(ln))))
		}
	}

	center(styleTitle().Render("User Manager"))
	center(styleMuted().Render("Secure account access"))
	rows = append(rows, "")
	if l.blurb != "" {
		off := centerOffset(l.width, blockWidth(l.blurb))
		rows = append(rows, strings.Split(indentBlock(l.blurb, off), "\n")...)
		rows = append(rows, "")
	}

	var cards [2][]string
	for i, c := range dashboardCards {
		var rp *nav.Ripple
		for j := range ripples {
			if ripples[j].Action == c.action {
				rp = &ripples[j]
			}
		}
		cards[i] = strings.Split(renderCard(c, i == selected, rp), "\n")
	}
	if l.stacked {
		for _, card := range cards {
			for _, ln := range card {
				rows = append(rows, strings.Repeat(" ", l.cards[0].x)+ln)
			}
		}
	} else {
		for i := 0; i < cardH; i++ {
			rows = append(rows, strings.Repeat(" ", l.cards[0].x)+cards[0][i]+strings.Repeat(" ", cardGap)+cards[1][i])
		}
	}

	rows = append(rows, "")
	center(renderStats())
	return strings.Join(rows, "\n")
}

// renderCard draws one card of exactly cardW x cardH cells. A ripple marks
// its origin with a glyph and highlights the border.
func renderCard(c dashboardCard, selected bool, ripple *nav.Ripple) string {
	plain := []string{c.title, c.desc[0], c.desc[1], c.cta}
	for i := range plain {
		plain[i] = fitWidth(plain[i], cardInnerW)
	}
	if ripple != nil {
		// Border and padding take one row and two columns.
		ix, iy := ripple.Origin.X-2, ripple.Origin.Y-1
		if iy >= 0 && iy < cardInnerH && ix >= 0 && ix < cardInnerW {
			rs := []rune(plain[iy])
			if ix < len(rs) {
				rs[ix] = rippleGlyph
				plain[iy] = string(rs)
			}
		}
	}

	lines := []string{
		styleTitle().Render(plain[0]),
		styleMuted().Render(plain[1]),
		styleMuted().Render(plain[2]),
		lipgloss.NewStyle().Foreground(colorAccent).Render(plain[3]),
	}

	border := colorCardBorder
	if selected {
		border = colorSelectedBorder
	}
	if ripple != nil {
		border = colorRipple
	}
	st := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(cardW - 2).
		Height(cardInnerH)
	return normalizeBlock(st.Render(strings.Join(lines, "\n")), cardW, cardH)
}

func renderStats() string {
	parts := make([]string, 0, len(dashboardStats))
	for _, s := range dashboardStats {
		parts = append(parts, styleTitle().Render(s.value)+" "+styleMuted().Render(s.label))
	}
	return strings.Join(parts, styleMuted().Render("   ·   "))
}
