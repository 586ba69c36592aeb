package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	"usermanager/internal/auth"
	"usermanager/internal/nav"
	"usermanager/internal/session"
	"usermanager/internal/store"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type fakeAuth struct {
	mu    sync.Mutex
	calls []auth.Credentials
	out   auth.Outcome
}

func (f *fakeAuth) Login(ctx context.Context, creds auth.Credentials) auth.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, creds)
	return f.out
}

func (f *fakeAuth) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeJournal struct {
	mu   sync.Mutex
	rows []store.Attempt
}

func (j *fakeJournal) Record(ctx context.Context, a store.Attempt) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.rows = append(j.rows, a)
	return nil
}

func testNavOptions() nav.Options {
	o := nav.DefaultOptions()
	o.SettleDelay = 5 * time.Millisecond
	o.ActionDelay = 20 * time.Millisecond
	o.RippleTTL = 60 * time.Millisecond
	return o
}

func newTestModel(t *testing.T, a auth.Authenticator, start nav.View) appModel {
	t.Helper()
	opts := testNavOptions()
	opts.Start = start
	m := newAppModel(context.Background(), Deps{
		Nav:     opts,
		Auth:    a,
		Session: session.NewStore(),
	})
	t.Cleanup(m.close)
	m.enterView(start)
	mm, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return mm.(appModel)
}

func successOutcome(t *testing.T, token, name string) auth.Outcome {
	t.Helper()
	s, err := session.New(token, &session.User{Name: name, Email: "account@example.com"})
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	return auth.Success(s)
}

// drain runs cmd (expanding batches) and returns the messages produced
// before every command finished or wait elapsed, whichever comes first.
// Slower commands, such as cursor blinks, are abandoned.
func drain(cmd tea.Cmd, wait time.Duration) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 256)
	var wg sync.WaitGroup
	var run func(tea.Cmd)
	run = func(c tea.Cmd) {
		defer wg.Done()
		msg := c()
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, sub := range batch {
				if sub != nil {
					wg.Add(1)
					go run(sub)
				}
			}
			return
		}
		if msg != nil {
			ch <- msg
		}
	}
	wg.Add(1)
	go run(cmd)

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()

	var out []tea.Msg
	deadline := time.After(wait)
	for {
		select {
		case msg := <-ch:
			out = append(out, msg)
		case <-finished:
			for {
				select {
				case msg := <-ch:
					out = append(out, msg)
				default:
					return out
				}
			}
		case <-deadline:
			return out
		}
	}
}

// settle feeds the messages cmd produces back into m until it goes quiet.
// Spinner ticks are dropped so the loop ends.
func settle(t *testing.T, m appModel, cmd tea.Cmd) appModel {
	t.Helper()
	for round := 0; round < 20 && cmd != nil; round++ {
		var next []tea.Cmd
		for _, msg := range drain(cmd, 150*time.Millisecond) {
			if _, ok := msg.(spinner.TickMsg); ok {
				continue
			}
			mm, c := m.Update(msg)
			m = mm.(appModel)
			next = append(next, c)
		}
		cmd = tea.Batch(next...)
	}
	return m
}

func typeText(m appModel, s string) appModel {
	for _, r := range s {
		mm, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = mm.(appModel)
	}
	return m
}

func press(m appModel, k tea.KeyMsg) (appModel, tea.Cmd) {
	mm, cmd := m.Update(k)
	return mm.(appModel), cmd
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyCtrlS = tea.KeyMsg{Type: tea.KeyCtrlS}
)
