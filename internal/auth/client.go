// Package auth performs the login request and classifies its result.
//
// Expected failures never surface as Go errors: Login always returns an
// Outcome, including when the HTTP stack panics.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"usermanager/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/oops"
)

const (
	// LoginPath is appended to the configured base URL.
	LoginPath = "/api/auth/login"

	DefaultBaseURL = "http://localhost:8080"
	DefaultTimeout = 10 * time.Second

	maxResponseBytes = 1 << 20
)

// Authenticator is what forms and commands depend on.
type Authenticator interface {
	Login(ctx context.Context, creds Credentials) Outcome
}

type Client struct {
	endpoint  string
	http      *http.Client
	timeout   time.Duration
	userAgent string
	log       zerolog.Logger
	requestID func() string
}

type Option func(*Client)

// WithHTTPClient replaces the default client. The client is never modified;
// the login timeout is applied per request.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if s := strings.TrimSpace(ua); s != "" {
			c.userAgent = s
		}
	}
}

// NewClient builds a client for baseURL (scheme and host, optional path prefix).
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	endpoint, err := loginEndpoint(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		endpoint:  endpoint,
		http:      &http.Client{},
		timeout:   DefaultTimeout,
		userAgent: "usermanager",
		log:       zerolog.Nop(),
		requestID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func loginEndpoint(baseURL string) (string, error) {
	raw := strings.TrimSpace(baseURL)
	if raw == "" {
		raw = DefaultBaseURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", oops.In("auth").Code("auth.base_url").With("base_url", raw).Wrapf(err, "parse base url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", oops.In("auth").Code("auth.base_url").With("base_url", raw).Errorf("base url must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return "", oops.In("auth").Code("auth.base_url").With("base_url", raw).Errorf("base url has no host")
	}
	u.Path = strings.TrimRight(u.Path, "/") + LoginPath
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

// Endpoint is the full login URL.
func (c *Client) Endpoint() string { return c.endpoint }

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token *string         `json:"token"`
	User  json.RawMessage `json:"user"`
}

// Login sends the credentials and classifies the response:
// non-2xx is InvalidCredentials, anything that prevents reading a
// well-formed {token, user} body is NetworkFailure.
func (c *Client) Login(ctx context.Context, creds Credentials) (out Outcome) {
	reqID := c.requestID()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			out = NetworkFailure(oops.In("auth").Code("auth.panic").With("request_id", reqID).Errorf("login panicked: %v", r))
		}
		out.RequestID = reqID
		ev := c.log.Debug()
		if !out.OK() {
			ev = c.log.Info()
		}
		ev.Str("component", "auth").
			Str("request_id", reqID).
			Str("outcome", out.Kind.String()).
			Int("status", out.Status).
			Dur("duration", time.Since(start)).
			Str("reason", out.ReasonText()).
			Msg("login resolved")
	}()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(loginRequest{Email: creds.Email, Password: creds.Password})
	if err != nil {
		return NetworkFailure(oops.In("auth").Code("auth.encode").Wrapf(err, "encode login request"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return NetworkFailure(oops.In("auth").Code("auth.request").Wrapf(err, "build login request"))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		return NetworkFailure(oops.In("auth").Code("auth.network").With("endpoint", c.endpoint).Wrapf(err, "send login request"))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused; the body is never shown.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return InvalidCredentials(resp.StatusCode)
	}

	out = parseSuccess(resp.Body)
	out.Status = resp.StatusCode
	return out
}

func parseSuccess(r io.Reader) Outcome {
	b, err := io.ReadAll(io.LimitReader(r, maxResponseBytes+1))
	if err != nil {
		return NetworkFailure(oops.In("auth").Code("auth.read").Wrapf(err, "read login response"))
	}
	if len(b) > maxResponseBytes {
		return NetworkFailure(oops.In("auth").Code("auth.malformed").Errorf("login response larger than %d bytes", maxResponseBytes))
	}

	var lr loginResponse
	if err := json.Unmarshal(b, &lr); err != nil {
		return NetworkFailure(oops.In("auth").Code("auth.malformed").Wrapf(err, "decode login response"))
	}
	if lr.Token == nil || strings.TrimSpace(*lr.Token) == "" {
		return NetworkFailure(malformed("token"))
	}
	if len(lr.User) == 0 || string(bytes.TrimSpace(lr.User)) == "null" {
		return NetworkFailure(malformed("user"))
	}
	var u session.User
	if err := json.Unmarshal(lr.User, &u); err != nil {
		return NetworkFailure(oops.In("auth").Code("auth.malformed").Wrapf(err, "decode user"))
	}
	s, err := session.New(*lr.Token, &u)
	if err != nil {
		return NetworkFailure(oops.In("auth").Code("auth.malformed").Wrap(err))
	}
	return Success(s)
}

// ErrMalformedResponse marks a 2xx response that lacks token or user.
var ErrMalformedResponse = errors.New("malformed login response")

func malformed(field string) error {
	return oops.In("auth").Code("auth.malformed").With("field", field).
		Wrap(fmt.Errorf("%w: missing %s", ErrMalformedResponse, field))
}
