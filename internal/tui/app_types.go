package tui

import (
	"time"

	"usermanager/internal/auth"
)

// loginDoneMsg reports a resolved login back to the update loop.
type loginDoneMsg struct {
	outcome auth.Outcome
	started time.Time
	took    time.Duration
}

type attemptRecordedMsg struct{ err error }

type minibufferClearMsg struct{ seq int }

type resizeDoneMsg struct{ seq int }
