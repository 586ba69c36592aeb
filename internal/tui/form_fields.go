package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-playground/validator/v10"
)

const formWidth = 44

// formFields is an ordered set of inputs with a single focused field.
type formFields struct {
	labels []string
	inputs []textinput.Model
	focus  int
}

func newTextInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = formWidth - 4
	return ti
}

func newPasswordInput(placeholder string) textinput.Model {
	ti := newTextInput(placeholder, 128)
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	return ti
}

func (f *formFields) add(label string, ti textinput.Model) {
	f.labels = append(f.labels, label)
	f.inputs = append(f.inputs, ti)
}

func (f *formFields) value(i int) string { return f.inputs[i].Value() }

func (f *formFields) last() bool { return f.focus == len(f.inputs)-1 }

// focusAt moves focus to field i, blurring the others.
func (f *formFields) focusAt(i int) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	i = (i%len(f.inputs) + len(f.inputs)) % len(f.inputs)
	f.focus = i
	var cmd tea.Cmd
	for j := range f.inputs {
		if j == i {
			cmd = f.inputs[j].Focus()
			continue
		}
		f.inputs[j].Blur()
	}
	return cmd
}

func (f *formFields) next() tea.Cmd { return f.focusAt(f.focus + 1) }

func (f *formFields) prev() tea.Cmd { return f.focusAt(f.focus - 1) }

func (f *formFields) blur() {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
}

func (f *formFields) reset(i int) { f.inputs[i].Reset() }

// update forwards msg to the focused input.
func (f *formFields) update(msg tea.Msg) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *formFields) view(i int) string {
	return renderInputLine(formWidth, f.inputs[i].View(), f.inputs[i].Focused())
}

// validationMessage turns the first validator failure into banner text.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Please check the form and try again"
	}
	fe := verrs[0]
	switch fe.Field() + "." + fe.Tag() {
	case "Name.required":
		return "Please enter your full name"
	case "Email.required":
		return "Please enter your email"
	case "Email.email":
		return "Please enter a valid email address"
	case "Password.required":
		return "Please enter your password"
	case "Password.min":
		return "Password must be at least " + fe.Param() + " characters"
	case "Confirm.required", "Confirm.eqfield":
		return "Passwords do not match"
	}
	return "Please check " + fe.Field()
}
