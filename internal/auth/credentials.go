package auth

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Credentials only live for the duration of one submit attempt.
type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Normalized trims the email; the password is taken as typed.
func (c Credentials) Normalized() Credentials {
	c.Email = strings.TrimSpace(c.Email)
	return c
}

// Validate performs the checks a login form runs before anything is sent.
// Only empty fields are rejected; the server judges the email's shape. The
// returned error is a validator.ValidationErrors when a field is invalid.
func (c Credentials) Validate() error {
	return validate.Struct(c.Normalized())
}

// String never includes the password.
func (c Credentials) String() string {
	return "Credentials{Email:" + c.Email + "}"
}
