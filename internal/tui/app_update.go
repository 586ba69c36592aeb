package tui

import (
	"context"
	"time"

	"usermanager/internal/logging"
	"usermanager/internal/nav"
	"usermanager/internal/store"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// View timers first: they belong to the controller.
	before := m.ctrl.View()
	if cmd, handled := m.ctrl.Update(msg); handled {
		return m, tea.Batch(cmd, m.afterNavigate(before))
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if !m.seenWindowSize {
			m.seenWindowSize = true
			return m, nil
		}
		m.resizing = true
		m.resizeSeq++
		seq := m.resizeSeq
		return m, tea.Tick(120*time.Millisecond, func(time.Time) tea.Msg { return resizeDoneMsg{seq: seq} })

	case resizeDoneMsg:
		if msg.seq == m.resizeSeq {
			m.resizing = false
		}
		return m, nil

	case minibufferClearMsg:
		if msg.seq == m.minibufferSeq {
			m.minibufferText = ""
		}
		return m, nil

	case loginDoneMsg:
		return m.applyLoginDone(msg)

	case attemptRecordedMsg:
		if msg.err != nil {
			logging.Err(m.log.Warn(), msg.err).Msg("record login attempt")
		}
		return m, nil

	case spinner.TickMsg:
		if !m.login.pending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.login.spinner, cmd = m.login.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.updateKey(msg)

	case tea.MouseMsg:
		return m.updateMouse(msg)
	}

	// Anything else (cursor blinks) goes to the focused input.
	return m, m.forwardToForm(msg)
}

func (m *appModel) forwardToForm(msg tea.Msg) tea.Cmd {
	switch m.ctrl.View() {
	case nav.Login:
		return m.login.fields.update(msg)
	case nav.Register:
		return m.register.fields.update(msg)
	}
	return nil
}

// afterNavigate runs view entry when the active view changed since before.
func (m *appModel) afterNavigate(before nav.View) tea.Cmd {
	v := m.ctrl.View()
	if v == before {
		return nil
	}
	m.minibufferText = ""
	if v == nav.Dashboard {
		m.selectedCard = 0
	}
	return m.enterView(v)
}

func (m *appModel) navigate(target nav.View) tea.Cmd {
	before := m.ctrl.View()
	return tea.Batch(m.ctrl.Navigate(target), m.afterNavigate(before))
}

func (m *appModel) goBack() tea.Cmd {
	before := m.ctrl.View()
	return tea.Batch(m.ctrl.GoBack(), m.afterNavigate(before))
}

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	view := m.ctrl.View()

	switch {
	case key.Matches(msg, m.keys.QuitAny):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		return m, m.goBack()
	case key.Matches(msg, m.keys.Logout):
		return m, m.logout()
	}

	switch view {
	case nav.Dashboard:
		return m.updateDashboardKey(msg)
	case nav.Login:
		return m.updateLoginKey(msg)
	case nav.Register:
		return m.updateRegisterKey(msg)
	}
	return m, nil
}

func (m appModel) updateDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Next):
		m.selectedCard = (m.selectedCard + 1) % len(dashboardCards)
	case key.Matches(msg, m.keys.Prev):
		m.selectedCard = (m.selectedCard + len(dashboardCards) - 1) % len(dashboardCards)
	case key.Matches(msg, m.keys.Activate):
		return m, m.ctrl.OnActionTriggered(dashboardCards[m.selectedCard].action, cardCenter())
	case key.Matches(msg, m.keys.ToLogin):
		return m, m.navigate(nav.Login)
	case key.Matches(msg, m.keys.ToSignup):
		return m, m.navigate(nav.Register)
	}
	return m, nil
}

func (m appModel) updateLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := &m.login.fields
	switch {
	case key.Matches(msg, m.keys.ToSignup):
		return m, m.navigate(nav.Register)
	case key.Matches(msg, m.keys.Submit):
		return m, m.submitLogin()
	case msg.Type == tea.KeyEnter:
		if f.last() {
			return m, m.submitLogin()
		}
		return m, f.next()
	case key.Matches(msg, m.keys.NextField):
		return m, f.next()
	case key.Matches(msg, m.keys.PrevField):
		return m, f.prev()
	}
	return m, f.update(msg)
}

func (m appModel) updateRegisterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := &m.register.fields
	switch {
	case key.Matches(msg, m.keys.ToLogin):
		return m, m.navigate(nav.Login)
	case key.Matches(msg, m.keys.Submit):
		m.register.submit()
		return m, nil
	case msg.Type == tea.KeyEnter:
		if f.last() {
			m.register.submit()
			return m, nil
		}
		return m, f.next()
	case key.Matches(msg, m.keys.NextField):
		return m, f.next()
	case key.Matches(msg, m.keys.PrevField):
		return m, f.prev()
	}
	return m, f.update(msg)
}

func (m appModel) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.ctrl.View() != nav.Dashboard || m.width == 0 {
		return m, nil
	}
	idx, origin, ok := newDashLayout(m.width).hit(msg.X, msg.Y)
	if !ok {
		return m, nil
	}
	switch {
	case msg.Action == tea.MouseActionMotion:
		m.selectedCard = idx
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.selectedCard = idx
		return m, m.ctrl.OnActionTriggered(dashboardCards[idx].action, origin)
	}
	return m, nil
}

func (m *appModel) submitLogin() tea.Cmd {
	if m.auth == nil {
		return nil
	}
	return m.login.submit(m.ctx, m.auth, m.timeout)
}

// applyLoginDone releases the form, stores the session on success and
// journals the attempt.
func (m appModel) applyLoginDone(msg loginDoneMsg) (tea.Model, tea.Cmd) {
	m.login.finish(msg.outcome)
	if msg.outcome.OK() {
		m.session.Set(msg.outcome.Session)
		if name, ok := m.signedInName(); ok {
			m.login.successText = msg.outcome.Message() + " Welcome, " + name + "."
		}
	}
	m.log.Info().
		Str("view", m.ctrl.View().String()).
		Str("outcome", msg.outcome.Kind.String()).
		Int("status", msg.outcome.Status).
		Str("request_id", msg.outcome.RequestID).
		Dur("duration", msg.took).
		Msg("login resolved")

	if m.journal == nil {
		return m, nil
	}
	return m, recordAttemptCmd(m.ctx, m.journal, store.NewAttempt(msg.outcome, msg.took, msg.started))
}

func recordAttemptCmd(ctx context.Context, j AttemptRecorder, a store.Attempt) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return attemptRecordedMsg{err: j.Record(ctx, a)}
	}
}

func (m *appModel) logout() tea.Cmd {
	if !m.session.Get().Present() {
		return nil
	}
	m.session.Clear()
	m.login.clearBanners()
	m.login.fields.reset(loginPassword)
	m.log.Info().Msg("signed out")
	return m.showMinibuffer("Signed out")
}
