package tui

import (
	"strings"
	"testing"

	"usermanager/internal/nav"

	xansi "github.com/charmbracelet/x/ansi"
)

func TestDashLayout_SideBySideAndStacked(t *testing.T) {
	wide := newDashLayout(100)
	if wide.stacked {
		t.Fatalf("expected side-by-side cards at width 100")
	}
	if wide.cards[0].y != wide.cards[1].y || wide.cards[1].x != wide.cards[0].x+cardW+cardGap {
		t.Fatalf("unexpected wide layout: %+v", wide.cards)
	}

	narrow := newDashLayout(40)
	if !narrow.stacked {
		t.Fatalf("expected stacked cards at width 40")
	}
	if narrow.cards[1].y != narrow.cards[0].y+cardH {
		t.Fatalf("unexpected narrow layout: %+v", narrow.cards)
	}
}

func TestDashLayout_HitReturnsRelativeOrigin(t *testing.T) {
	l := newDashLayout(100)
	r := l.cards[0]

	idx, origin, ok := l.hit(r.x+7, r.y+4)
	if !ok || idx != 0 || origin != (nav.Origin{X: 7, Y: 4}) {
		t.Fatalf("unexpected hit: idx=%d origin=%+v ok=%v", idx, origin, ok)
	}
	if _, _, ok := l.hit(r.x+cardW+1, r.y); ok {
		t.Fatalf("gap between cards must not hit")
	}
	if _, _, ok := l.hit(r.x, r.y-1); ok {
		t.Fatalf("row above the cards must not hit")
	}
}

// The rendered rows must line up with the layout used for hit testing.
func TestRenderDashboard_CardsAtLayoutRows(t *testing.T) {
	for _, width := range []int{100, 40} {
		l := newDashLayout(width)
		body := renderDashboard(l, 0, nil)
		rows := strings.Split(body, "\n")
		for i, c := range l.cards {
			row := l.cards[i].y - bodyTop + 1
			if row >= len(rows) {
				t.Fatalf("width %d: card %d row %d out of range", width, i, row)
			}
			got := xansi.Strip(rows[row])
			title := dashboardCards[i].title
			col := strings.Index(got, title)
			// Border plus one column of padding.
			if col < 0 || xansi.StringWidth(got[:col]) != c.x+2 {
				t.Fatalf("width %d: card %q not at x=%d in %q", width, title, c.x+2, got)
			}
		}
	}
}

func TestRenderCard_Size(t *testing.T) {
	for _, selected := range []bool{false, true} {
		out := renderCard(dashboardCards[0], selected, &nav.Ripple{Origin: nav.Origin{X: 2, Y: 1}})
		lines := strings.Split(out, "\n")
		if len(lines) != cardH {
			t.Fatalf("expected %d lines, got %d", cardH, len(lines))
		}
		for _, ln := range lines {
			if w := xansi.StringWidth(ln); w != cardW {
				t.Fatalf("expected width %d, got %d: %q", cardW, w, ln)
			}
		}
		if !strings.Contains(xansi.Strip(lines[1]), string(rippleGlyph)+"ecure Login") {
			t.Fatalf("ripple glyph should replace the first title cell: %q", xansi.Strip(lines[1]))
		}
	}
}

func TestRenderStats(t *testing.T) {
	s := xansi.Strip(renderStats())
	for _, want := range []string{"99.9% Uptime", "256-bit Security", "24/7 Support"} {
		if !strings.Contains(s, want) {
			t.Fatalf("missing %q in %q", want, s)
		}
	}
}
