package tui

import (
	"usermanager/internal/nav"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Quit      key.Binding
	QuitAny   key.Binding
	Back      key.Binding
	Next      key.Binding
	Prev      key.Binding
	Activate  key.Binding
	NextField key.Binding
	PrevField key.Binding
	Submit    key.Binding
	ToLogin   key.Binding
	ToSignup  key.Binding
	Logout    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		QuitAny:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Next:      key.NewBinding(key.WithKeys("right", "l", "tab", "down", "j"), key.WithHelp("→/tab", "next card")),
		Prev:      key.NewBinding(key.WithKeys("left", "h", "shift+tab", "up", "k"), key.WithHelp("←", "prev card")),
		Activate:  key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "open")),
		NextField: key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		PrevField: key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
		Submit:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("enter/ctrl+s", "submit")),
		ToLogin:   key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "sign in")),
		ToSignup:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "sign up")),
		Logout:    key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "sign out")),
	}
}

// helpFor lists the bindings shown in the footer for a view.
func (k keyMap) helpFor(v nav.View, signedIn bool) []key.Binding {
	var out []key.Binding
	switch v {
	case nav.Dashboard:
		out = []key.Binding{k.Prev, k.Next, k.Activate}
	case nav.Login:
		out = []key.Binding{k.NextField, k.Submit, k.ToSignup, k.Back}
	case nav.Register:
		out = []key.Binding{k.NextField, k.Submit, k.ToLogin, k.Back}
	}
	if signedIn {
		out = append(out, k.Logout)
	}
	if v == nav.Dashboard {
		out = append(out, k.Quit)
	} else {
		out = append(out, k.QuitAny)
	}
	return out
}
