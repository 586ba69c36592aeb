// Package nav owns which view is on screen and the cosmetic timers that
// follow a view change.
package nav

import (
	"fmt"
	"strings"
)

type View int

const (
	Dashboard View = iota
	Login
	Register
)

var viewNames = [...]string{
	Dashboard: "dashboard",
	Login:     "login",
	Register:  "register",
}

func (v View) String() string {
	if v.valid() {
		return viewNames[v]
	}
	return fmt.Sprintf("view(%d)", int(v))
}

func (v View) valid() bool { return v >= Dashboard && v <= Register }

// ParseView accepts the lowercase view names; "" means Dashboard.
func ParseView(s string) (View, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "dashboard", "home":
		return Dashboard, nil
	case "login", "signin", "sign-in":
		return Login, nil
	case "register", "signup", "sign-up":
		return Register, nil
	default:
		return Dashboard, fmt.Errorf("unknown view %q (want dashboard|login|register)", s)
	}
}

// TransitionState gates presentation only.
type TransitionState int

const (
	Entering TransitionState = iota
	Settled
)

func (t TransitionState) String() string {
	if t == Settled {
		return "settled"
	}
	return "entering"
}

// Action is a user intent raised from the dashboard.
type Action int

const (
	ActionOpenLogin Action = iota + 1
	ActionOpenRegister
)

func (a Action) String() string {
	switch a {
	case ActionOpenLogin:
		return "open-login"
	case ActionOpenRegister:
		return "open-register"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Target is the view an action navigates to.
func (a Action) Target() (View, bool) {
	switch a {
	case ActionOpenLogin:
		return Login, true
	case ActionOpenRegister:
		return Register, true
	default:
		return Dashboard, false
	}
}

// Origin is the pointer position of the input that raised an action,
// relative to the element that was hit. Only used for ripples.
type Origin struct {
	X int
	Y int
}

// Ripple is short-lived click feedback drawn by the renderer.
type Ripple struct {
	ID     string
	View   View
	Action Action
	Origin Origin
}
