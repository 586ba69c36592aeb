package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"usermanager/internal/auth"
	"usermanager/internal/logging"
	"usermanager/internal/session"
	"usermanager/internal/store"

	"github.com/spf13/cobra"
)

type loginResult struct {
	Outcome   string        `json:"outcome"`
	Message   string        `json:"message"`
	Status    int           `json:"status,omitempty"`
	RequestID string        `json:"requestId,omitempty"`
	User      *session.User `json:"user,omitempty"`
	Token     string        `json:"token,omitempty"`
	Reason    string        `json:"reason,omitempty"`
}

func (r loginResult) Text() string {
	var b strings.Builder
	if r.User != nil {
		fmt.Fprintf(&b, "%s Welcome, %s.\n", r.Message, r.User.DisplayName())
	} else {
		fmt.Fprintf(&b, "%s\n", r.Message)
	}
	if r.Status != 0 {
		fmt.Fprintf(&b, "status: %d\n", r.Status)
	}
	if r.Reason != "" {
		fmt.Fprintf(&b, "reason: %s\n", r.Reason)
	}
	if r.Token != "" {
		fmt.Fprintf(&b, "token: %s\n", r.Token)
	}
	return strings.TrimRight(b.String(), "\n")
}

func newLoginCmd(app *App) *cobra.Command {
	var email string
	var showToken bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in once and print the outcome",
		Long: strings.TrimSpace(`
Sends one login request and prints the outcome. The password is read from
$USERMANAGER_PASSWORD, or from the first line of stdin.

Exits non-zero unless the login succeeded.
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			creds := auth.Credentials{Email: email, Password: password}.Normalized()
			if err := creds.Validate(); err != nil {
				return fmt.Errorf("invalid credentials: %w", err)
			}

			client, err := app.newClient()
			if err != nil {
				return err
			}

			var gate auth.Gate
			started := time.Now()
			out, _ := gate.Do(func() auth.Outcome {
				return client.Login(cmd.Context(), creds)
			})
			took := time.Since(started)

			app.Log.Info().
				Str("outcome", out.Kind.String()).
				Int("status", out.Status).
				Str("request_id", out.RequestID).
				Dur("duration", took).
				Msg("login")

			app.journalAttempt(cmd.Context(), store.NewAttempt(out, took, started))

			res := loginResult{
				Outcome:   out.Kind.String(),
				Message:   out.Message(),
				Status:    out.Status,
				RequestID: out.RequestID,
				Reason:    out.ReasonText(),
			}
			if u, ok := out.Session.User(); ok {
				res.User = &u
			}
			if showToken {
				res.Token = out.Session.Token()
			}

			var hints []string
			switch out.Kind {
			case auth.OutcomeSuccess:
				hints = append(hints, "usermanager history")
			case auth.OutcomeNetworkFailure:
				hints = append(hints, "usermanager devserver --addr "+hostOf(app.Config.BaseURL))
			}
			if err := writeOut(cmd, app, envelope{
				Data:  res,
				Meta:  map[string]any{"endpoint": client.Endpoint(), "tookMs": took.Milliseconds()},
				Hints: hints,
			}); err != nil {
				return err
			}
			if !out.OK() {
				return fmt.Errorf("login %s: %w", out.Kind, errReported)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", envOr("USERMANAGER_EMAIL", ""), "Account email")
	cmd.Flags().BoolVar(&showToken, "show-token", false, "Include the session token in the output")
	return cmd
}

func readPassword(in io.Reader) (string, error) {
	if v, ok := os.LookupEnv("USERMANAGER_PASSWORD"); ok {
		return v, nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// journalAttempt records a row when the journal is enabled. Failures are
// logged and otherwise ignored.
func (app *App) journalAttempt(ctx context.Context, a store.Attempt) {
	j, err := app.openJournal(ctx)
	if err != nil {
		logging.Err(app.Log.Warn(), err).Msg("journal unavailable")
		return
	}
	if j == nil {
		return
	}
	defer j.Close()
	if err := j.Record(ctx, a); err != nil {
		logging.Err(app.Log.Warn(), err).Msg("journal record")
	}
}

func hostOf(baseURL string) string {
	s := strings.TrimPrefix(strings.TrimPrefix(baseURL, "http://"), "https://")
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	return s
}
