package tui

import (
	"context"
	"time"

	"usermanager/internal/auth"
	"usermanager/internal/nav"
	"usermanager/internal/session"
	"usermanager/internal/store"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

const minibufferAutoClearAfter = 4 * time.Second

// AttemptRecorder persists resolved login attempts.
type AttemptRecorder interface {
	Record(ctx context.Context, a store.Attempt) error
}

// Deps is everything the TUI needs from the outside.
type Deps struct {
	Nav     nav.Options
	Auth    auth.Authenticator
	Session *session.Store
	// Journal is optional.
	Journal AttemptRecorder
	Logger  zerolog.Logger
	// Timeout bounds one login; zero leaves it to the authenticator.
	Timeout time.Duration
	Theme   string
}

type appModel struct {
	ctx    context.Context
	cancel context.CancelFunc

	ctrl    *nav.Controller
	auth    auth.Authenticator
	session *session.Store
	journal AttemptRecorder
	log     zerolog.Logger
	timeout time.Duration

	width  int
	height int
	// The first WindowSizeMsg is initial sizing, not a user resize.
	seenWindowSize bool
	resizing       bool
	resizeSeq      int

	selectedCard int

	login    *loginForm
	register *registerForm

	minibufferText  string
	minibufferSetAt time.Time
	minibufferSeq   int

	keys keyMap
	help help.Model
}

func newAppModel(ctx context.Context, deps Deps) appModel {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	if deps.Session == nil {
		deps.Session = session.NewStore()
	}
	navOpts := deps.Nav
	navOpts.Logger = deps.Logger
	return appModel{
		ctx:      ctx,
		cancel:   cancel,
		ctrl:     nav.New(navOpts),
		auth:     deps.Auth,
		session:  deps.Session,
		journal:  deps.Journal,
		log:      deps.Logger.With().Str("component", "tui").Logger(),
		timeout:  deps.Timeout,
		login:    newLoginForm(),
		register: newRegisterForm(),
		keys:     defaultKeyMap(),
		help:     help.New(),
	}
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.ctrl.Init(), m.enterView(m.ctrl.View()))
}

// close cancels in-flight logins and every pending view timer.
func (m appModel) close() {
	m.cancel()
	m.ctrl.Close()
}

// enterView prepares the forms for v: banners from an earlier visit are
// cleared and the first field takes focus.
func (m *appModel) enterView(v nav.View) tea.Cmd {
	m.login.clearBanners()
	m.register.clearBanners()
	m.login.fields.blur()
	m.register.fields.blur()
	switch v {
	case nav.Login:
		return m.login.fields.focusAt(0)
	case nav.Register:
		return m.register.fields.focusAt(0)
	}
	return nil
}

func (m *appModel) showMinibuffer(text string) tea.Cmd {
	m.minibufferText = text
	m.minibufferSetAt = time.Now()
	m.minibufferSeq++
	seq := m.minibufferSeq
	return tea.Tick(minibufferAutoClearAfter, func(time.Time) tea.Msg { return minibufferClearMsg{seq: seq} })
}

func (m *appModel) signedInName() (string, bool) {
	u, ok := m.session.Get().User()
	if !ok {
		return "", false
	}
	return u.DisplayName(), true
}
