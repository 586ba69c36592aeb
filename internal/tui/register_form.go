package tui

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

const registrationNotice = "Registration functionality would be implemented here"

const (
	registerName = iota
	registerEmail
	registerPassword
	registerConfirm
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// registration mirrors the backend's account constraints.
type registration struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
	Confirm  string `validate:"required,eqfield=Password"`
}

type registerForm struct {
	fields formFields

	errText string
	notice  string
}

func newRegisterForm() *registerForm {
	f := &registerForm{}
	f.fields.add("Full name", newTextInput("Ada Lovelace", 100))
	f.fields.add("Email", newTextInput("you@example.com", 254))
	f.fields.add("Password", newPasswordInput("At least 6 characters"))
	f.fields.add("Confirm password", newPasswordInput("Repeat your password"))
	return f
}

func (f *registerForm) clearBanners() {
	f.errText = ""
	f.notice = ""
}

// submit only validates: there is no registration endpoint to call.
func (f *registerForm) submit() bool {
	f.clearBanners()
	r := registration{
		Name:     strings.TrimSpace(f.fields.value(registerName)),
		Email:    strings.TrimSpace(f.fields.value(registerEmail)),
		Password: f.fields.value(registerPassword),
		Confirm:  f.fields.value(registerConfirm),
	}
	if err := validate.Struct(r); err != nil {
		f.errText = validationMessage(err)
		return false
	}
	f.notice = registrationNotice
	f.fields.reset(registerPassword)
	f.fields.reset(registerConfirm)
	return true
}
