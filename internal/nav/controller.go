package nav

import (
	"context"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	DefaultSettleDelay = 50 * time.Millisecond
	DefaultActionDelay = 300 * time.Millisecond
	DefaultRippleTTL   = 600 * time.Millisecond
)

type Options struct {
	Start       View
	SettleDelay time.Duration
	ActionDelay time.Duration
	RippleTTL   time.Duration
	Logger      zerolog.Logger
}

func DefaultOptions() Options {
	return Options{
		Start:       Dashboard,
		SettleDelay: DefaultSettleDelay,
		ActionDelay: DefaultActionDelay,
		RippleTTL:   DefaultRippleTTL,
		Logger:      zerolog.Nop(),
	}
}

// Timer messages. Each carries the epoch of the view it was scheduled for;
// Update drops any whose epoch is no longer current.
type (
	settleMsg struct{ epoch int }

	rippleExpiredMsg struct {
		epoch int
		id    string
	}

	actionFiredMsg struct {
		epoch  int
		action Action
	}
)

// Controller is the view state machine. It is not safe for concurrent use:
// every method is meant to be called from the Bubble Tea update loop.
//
// Timers are returned as tea.Cmds. They are bound to a per-view context that
// is cancelled on every view change and on Close, so a timer scheduled for one
// view never reaches another.
type Controller struct {
	opts Options
	log  zerolog.Logger

	view       View
	transition TransitionState
	ripples    []Ripple
	epoch      int

	ctx        context.Context
	cancel     context.CancelFunc
	viewCtx    context.Context
	viewCancel context.CancelFunc
	closed     bool

	newID func() string
}

func New(opts Options) *Controller {
	def := DefaultOptions()
	if !opts.Start.valid() {
		opts.Start = def.Start
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = def.SettleDelay
	}
	if opts.ActionDelay <= 0 {
		opts.ActionDelay = def.ActionDelay
	}
	if opts.RippleTTL <= 0 {
		opts.RippleTTL = def.RippleTTL
	}

	ctx, cancel := context.WithCancel(context.Background())
	viewCtx, viewCancel := context.WithCancel(ctx)
	return &Controller{
		opts:       opts,
		log:        opts.Logger.With().Str("component", "nav").Logger(),
		view:       opts.Start,
		transition: Entering,
		ctx:        ctx,
		cancel:     cancel,
		viewCtx:    viewCtx,
		viewCancel: viewCancel,
		newID:      uuid.NewString,
	}
}

// Init schedules the entry transition of the starting view.
func (c *Controller) Init() tea.Cmd {
	if c.closed || c.transition == Settled {
		return nil
	}
	return c.after(c.viewCtx, c.opts.SettleDelay, settleMsg{epoch: c.epoch})
}

func (c *Controller) View() View { return c.view }

func (c *Controller) Transition() TransitionState { return c.transition }

func (c *Controller) CanGoBack() bool { return !c.closed && c.view != Dashboard }

func (c *Controller) Closed() bool { return c.closed }

// Ripples returns the ripples of the active view.
func (c *Controller) Ripples() []Ripple { return slices.Clone(c.ripples) }

// Navigate switches to target. Navigating to the active view is a no-op and
// schedules nothing.
func (c *Controller) Navigate(target View) tea.Cmd {
	if c.closed || !target.valid() || target == c.view {
		return nil
	}

	from := c.view
	c.viewCancel()
	c.viewCtx, c.viewCancel = context.WithCancel(c.ctx)
	c.epoch++
	c.view = target
	c.transition = Entering
	c.ripples = nil

	c.log.Debug().Str("from", from.String()).Str("view", target.String()).Int("epoch", c.epoch).Msg("navigate")
	return c.after(c.viewCtx, c.opts.SettleDelay, settleMsg{epoch: c.epoch})
}

// GoBack returns to the dashboard.
func (c *Controller) GoBack() tea.Cmd {
	if !c.CanGoBack() {
		return nil
	}
	return c.Navigate(Dashboard)
}

// OnActionTriggered records a ripple at origin and navigates to the action's
// view once ActionDelay has elapsed. The delay is a scheduled message, never
// a wait, so input keeps flowing in the meantime.
func (c *Controller) OnActionTriggered(action Action, origin Origin) tea.Cmd {
	if c.closed {
		return nil
	}
	if _, ok := action.Target(); !ok {
		return nil
	}

	r := Ripple{ID: c.newID(), View: c.view, Action: action, Origin: origin}
	c.ripples = append(c.ripples, r)

	c.log.Debug().Str("action", action.String()).Str("view", c.view.String()).Int("x", origin.X).Int("y", origin.Y).Msg("action triggered")
	return tea.Batch(
		c.after(c.viewCtx, c.opts.RippleTTL, rippleExpiredMsg{epoch: c.epoch, id: r.ID}),
		c.after(c.viewCtx, c.opts.ActionDelay, actionFiredMsg{epoch: c.epoch, action: action}),
	)
}

// Update applies the controller's own timer messages. handled is false for
// any other message.
func (c *Controller) Update(msg tea.Msg) (cmd tea.Cmd, handled bool) {
	switch msg := msg.(type) {
	case settleMsg:
		if c.current(msg.epoch) {
			c.transition = Settled
		}
		return nil, true

	case rippleExpiredMsg:
		if c.current(msg.epoch) {
			c.ripples = slices.DeleteFunc(c.ripples, func(r Ripple) bool { return r.ID == msg.id })
		}
		return nil, true

	case actionFiredMsg:
		if !c.current(msg.epoch) {
			return nil, true
		}
		target, _ := msg.action.Target()
		return c.Navigate(target), true
	}
	return nil, false
}

// Close cancels every outstanding timer. After Close no message changes
// state and Navigate does nothing.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.viewCancel()
	c.cancel()
	c.ripples = nil
}

func (c *Controller) current(epoch int) bool { return !c.closed && epoch == c.epoch }

// after delivers msg once d has elapsed, or nothing if ctx ends first.
func (c *Controller) after(ctx context.Context, d time.Duration, msg tea.Msg) tea.Cmd {
	return func() tea.Msg {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			return msg
		}
	}
}
