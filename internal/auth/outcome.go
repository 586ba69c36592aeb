package auth

import (
	"usermanager/internal/session"
)

// GenericFailureMessage is the single message shown for every failed login.
const GenericFailureMessage = "Invalid email or password"

type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeInvalidCredentials
	OutcomeNetworkFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeInvalidCredentials:
		return "invalid_credentials"
	case OutcomeNetworkFailure:
		return "network_failure"
	default:
		return "unknown"
	}
}

// Outcome is the result of a login attempt: Success carries a Session,
// InvalidCredentials carries the HTTP status, NetworkFailure carries a reason.
type Outcome struct {
	Kind OutcomeKind

	// Session is only set for OutcomeSuccess.
	Session session.Session
	// Status is the HTTP status code when a response was received, 0 otherwise.
	Status int
	// Reason explains an OutcomeNetworkFailure.
	Reason error
	// RequestID is the X-Request-ID sent with the request.
	RequestID string
}

func Success(s session.Session) Outcome {
	return Outcome{Kind: OutcomeSuccess, Session: s}
}

func InvalidCredentials(status int) Outcome {
	return Outcome{Kind: OutcomeInvalidCredentials, Status: status}
}

func NetworkFailure(reason error) Outcome {
	return Outcome{Kind: OutcomeNetworkFailure, Reason: reason}
}

func (o Outcome) OK() bool { return o.Kind == OutcomeSuccess }

// Message is the user-facing text for the outcome. Both failure kinds share
// one message today.
func (o Outcome) Message() string {
	if o.OK() {
		return "Login successful!"
	}
	return GenericFailureMessage
}

// ReasonText returns the failure reason for logs, or "".
func (o Outcome) ReasonText() string {
	if o.Reason == nil {
		return ""
	}
	return o.Reason.Error()
}
