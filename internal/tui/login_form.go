package tui

import (
	"context"
	"fmt"
	"time"

	"usermanager/internal/auth"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	loginEmail = iota
	loginPassword
)

// loginForm owns the login inputs, banners and the pending gate. One
// instance lives for the whole program; the gate is never shared.
type loginForm struct {
	fields  formFields
	gate    auth.Gate
	spinner spinner.Model

	errText     string
	successText string
}

func newLoginForm() *loginForm {
	f := &loginForm{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	f.fields.add("Email", newTextInput("you@example.com", 254))
	f.fields.add("Password", newPasswordInput("Your password"))
	return f
}

func (f *loginForm) pending() bool { return f.gate.Pending() }

func (f *loginForm) clearBanners() {
	f.errText = ""
	f.successText = ""
}

// submit validates the inputs and, if no login is pending, returns the
// command that performs it. A nil command means nothing was sent.
func (f *loginForm) submit(ctx context.Context, a auth.Authenticator, timeout time.Duration) tea.Cmd {
	if f.pending() {
		return nil
	}
	f.clearBanners()

	creds := auth.Credentials{
		Email:    f.fields.value(loginEmail),
		Password: f.fields.value(loginPassword),
	}.Normalized()
	if err := creds.Validate(); err != nil {
		f.errText = validationMessage(err)
		return nil
	}
	if !f.gate.TryAcquire() {
		return nil
	}
	f.fields.reset(loginPassword)
	return tea.Batch(loginCmd(ctx, a, creds, timeout), f.spinner.Tick)
}

// finish applies a resolved login to the form and releases the gate.
func (f *loginForm) finish(out auth.Outcome) {
	defer f.gate.Release()
	if out.OK() {
		f.errText = ""
		f.successText = out.Message()
		return
	}
	f.successText = ""
	f.errText = out.Message()
}

func loginCmd(ctx context.Context, a auth.Authenticator, creds auth.Credentials, timeout time.Duration) tea.Cmd {
	return func() (msg tea.Msg) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				msg = loginDoneMsg{
					outcome: auth.NetworkFailure(fmt.Errorf("authenticator panic: %v", r)),
					started: start,
					took:    time.Since(start),
				}
			}
		}()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		out := a.Login(ctx, creds)
		return loginDoneMsg{outcome: out, started: start, took: time.Since(start)}
	}
}
