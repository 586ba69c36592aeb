package tui

import (
	"strings"

	"usermanager/internal/nav"

	xansi "github.com/charmbracelet/x/ansi"
)

func (m appModel) View() string {
	if m.width <= 0 || m.height <= 0 {
		return "Loading…"
	}

	header := m.viewHeader()

	var body string
	switch m.ctrl.View() {
	case nav.Dashboard:
		body = renderDashboard(newDashLayout(m.width), m.selectedCard, m.ctrl.Ripples())
	case nav.Login:
		body = m.viewLogin()
	case nav.Register:
		body = m.viewRegister()
	}
	if m.ctrl.Transition() == nav.Entering {
		body = fadeBlock(body)
	}

	bodyH := m.height - bodyTop - 1
	if bodyH < 0 {
		bodyH = 0
	}
	out := header + "\n\n" + normalizeBlock(body, m.width, bodyH) + "\n" + m.viewFooter()
	return normalizeBlock(out, m.width, m.height)
}

func (m appModel) viewHeader() string {
	left := styleHeader().Render("User Manager")
	right := styleMuted().Render("Not signed in")
	if name, ok := m.signedInName(); ok {
		right = styleSuccess().Render("● ") + "Signed in as " + styleTitle().Render(name)
	}
	gap := m.width - xansi.StringWidth(left) - xansi.StringWidth(right) - 1
	if gap < 1 {
		return fitWidth(left, m.width)
	}
	return left + strings.Repeat(" ", gap) + right + " "
}

func (m appModel) viewFooter() string {
	switch {
	case m.resizing:
		return styleMuted().Render("Resizing…")
	case m.minibufferText != "":
		return " " + m.minibufferText
	}
	_, signedIn := m.signedInName()
	return " " + m.help.ShortHelpView(m.keys.helpFor(m.ctrl.View(), signedIn))
}

// formBlock lays out a form column and centers it horizontally.
func (m appModel) formBlock(rows []string) string {
	return indentBlock(strings.Join(rows, "\n"), centerOffset(m.width, formWidth))
}

func formHeading(title, subtitle string) []string {
	return []string{styleTitle().Render(title), styleMuted().Render(subtitle), ""}
}

func fieldRows(f *formFields) []string {
	var rows []string
	for i := range f.inputs {
		rows = append(rows, styleMuted().Render(f.labels[i]), f.view(i), "")
	}
	return rows
}

func (m appModel) viewLogin() string {
	f := m.login
	rows := formHeading("Welcome back", "Sign in to your account")
	rows = append(rows, fieldRows(&f.fields)...)

	switch {
	case f.pending():
		rows = append(rows, f.spinner.View()+" Signing in…")
	case f.errText != "":
		rows = append(rows, styleError().Render(f.errText))
	case f.successText != "":
		rows = append(rows, styleSuccess().Render(f.successText))
	default:
		rows = append(rows, "")
	}
	rows = append(rows, "", styleMuted().Render("Don't have an account? ")+styleLink().Render("Sign up")+styleMuted().Render(" (ctrl+r)"))
	return m.formBlock(rows)
}

func (m appModel) viewRegister() string {
	f := m.register
	rows := formHeading("Create account", "It only takes a minute")
	rows = append(rows, fieldRows(&f.fields)...)

	switch {
	case f.errText != "":
		rows = append(rows, styleError().Render(f.errText))
	case f.notice != "":
		rows = append(rows, styleSuccess().Render(f.notice))
	default:
		rows = append(rows, "")
	}
	rows = append(rows, "", styleMuted().Render("Already have an account? ")+styleLink().Render("Sign in")+styleMuted().Render(" (ctrl+l)"))
	return m.formBlock(rows)
}

// fadeBlock renders s without its styling, dimmed, while a view is entering.
func fadeBlock(s string) string {
	lines := strings.Split(s, "\n")
	st := styleMuted()
	for i, ln := range lines {
		plain := xansi.Strip(ln)
		if strings.TrimSpace(plain) == "" {
			lines[i] = plain
			continue
		}
		lines[i] = st.Render(plain)
	}
	return strings.Join(lines, "\n")
}
