// Package session holds the authentication result for the lifetime of the
// running program. Nothing here is ever written to disk.
package session

import (
	"encoding/json"
	"errors"
	"maps"
	"strings"
)

// ErrIncomplete is returned by New when either the token or the user is missing.
var ErrIncomplete = errors.New("session: token and user must both be present")

// User is the user record returned by the authentication endpoint.
//
// Only name, email and id are modeled; any other fields the server sends are
// kept verbatim in Extra so a round trip does not lose them.
type User struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (u *User) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == nil {
		return errors.New("session: user is not an object")
	}
	var out User
	for k, v := range raw {
		switch k {
		case "id":
			// Servers disagree on numeric vs string ids.
			out.ID = rawScalar(v)
		case "name":
			if err := json.Unmarshal(v, &out.Name); err != nil {
				return err
			}
		case "email":
			if err := json.Unmarshal(v, &out.Email); err != nil {
				return err
			}
		default:
			if out.Extra == nil {
				out.Extra = map[string]json.RawMessage{}
			}
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	*u = out
	return nil
}

func (u User) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(u.Extra)+3)
	for k, v := range u.Extra {
		m[k] = v
	}
	if u.ID != "" {
		m["id"] = u.ID
	}
	if u.Name != "" {
		m["name"] = u.Name
	}
	if u.Email != "" {
		m["email"] = u.Email
	}
	return json.Marshal(m)
}

// DisplayName is what the UI shows for a signed-in user.
func (u User) DisplayName() string {
	if s := strings.TrimSpace(u.Name); s != "" {
		return s
	}
	if s := strings.TrimSpace(u.Email); s != "" {
		return s
	}
	return "user"
}

func (u User) clone() User {
	out := u
	if u.Extra != nil {
		out.Extra = maps.Clone(u.Extra)
	}
	return out
}

func rawScalar(v json.RawMessage) string {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	t := strings.TrimSpace(string(v))
	if t == "null" {
		return ""
	}
	return t
}

// Session is the token plus user pair. The zero value is the absent session.
//
// Fields are unexported so a session can only be built through New, which
// never produces a token without a user or the reverse.
type Session struct {
	token string
	user  *User
}

// New returns a complete session. An empty token is treated as absent.
func New(token string, user *User) (Session, error) {
	if strings.TrimSpace(token) == "" || user == nil {
		return Session{}, ErrIncomplete
	}
	u := user.clone()
	return Session{token: token, user: &u}, nil
}

// Present reports whether the session carries a token and a user.
func (s Session) Present() bool { return s.token != "" && s.user != nil }

func (s Session) Token() string { return s.token }

// User returns a copy of the user record; ok is false for the absent session.
func (s Session) User() (User, bool) {
	if s.user == nil {
		return User{}, false
	}
	return s.user.clone(), true
}

type sessionJSON struct {
	Token string `json:"token,omitempty"`
	User  *User  `json:"user,omitempty"`
}

func (s Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(sessionJSON{Token: s.token, User: s.user})
}
