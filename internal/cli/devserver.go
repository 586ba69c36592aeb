package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"usermanager/internal/devserver"

	"github.com/spf13/cobra"
)

// demoSeed is served when no --user is given.
const demoSeed = "Demo User:demo@example.com:password"

// annotationConsoleLog asks setup for human-readable logs on stderr.
const annotationConsoleLog = "console-log"

func newDevServerCmd(app *App) *cobra.Command {
	var (
		addr     string
		users    []string
		secret   string
		tokenTTL time.Duration
	)

	cmd := &cobra.Command{
		Use:         "devserver",
		Short:       "Run a local authentication server",
		Annotations: map[string]string{annotationConsoleLog: "true"},
		Long: strings.TrimSpace(`
Run a local server that answers POST /api/auth/login with the same contract
the client expects. Passwords are bcrypt-hashed in memory and tokens are
HS256 JWTs. Nothing is persisted.
`),
		Example: strings.TrimSpace(`
# Serve the demo account on the default address
usermanager devserver

# Serve specific accounts
usermanager devserver --user "Ada Lovelace:ada@example.com:engine42" --user "Alan:alan@example.com:enigma1"
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				return errors.New("devserver: missing --addr")
			}
			if len(users) == 0 {
				users = []string{demoSeed}
			}
			seeds := make([]devserver.Seed, 0, len(users))
			for _, u := range users {
				s, err := devserver.ParseSeed(u)
				if err != nil {
					return err
				}
				seeds = append(seeds, s)
			}

			srv, err := devserver.New(devserver.Config{
				Seeds:    seeds,
				Secret:   []byte(secret),
				TokenTTL: tokenTTL,
				Logger:   app.Log,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return err
			}
			actualAddr := ln.Addr().String()
			baseURL := "http://" + actualAddr

			_ = writeOut(cmd, app, envelope{
				Data: map[string]any{
					"addr":      actualAddr,
					"baseUrl":   baseURL,
					"loginUrl":  baseURL + devserver.LoginPath,
					"users":     srv.Emails(),
					"tokenTtl":  tokenTTL.String(),
					"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
				},
				Hints: []string{"usermanager --base-url " + baseURL},
			})
			fmt.Fprintf(cmd.ErrOrStderr(), "Dev auth server running at %s\n", baseURL)

			hs := &http.Server{
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}
			errc := make(chan error, 1)
			go func() { errc <- hs.Serve(ln) }()

			select {
			case err := <-errc:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := hs.Shutdown(shutdownCtx); err != nil {
				return err
			}
			if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			app.Log.Info().Msg("dev server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "Bind address (host:port or :port)")
	cmd.Flags().StringArrayVar(&users, "user", nil, `Account to serve as "name:email:password" (repeatable)`)
	cmd.Flags().StringVar(&secret, "secret", envOr("USERMANAGER_DEV_SECRET", ""), "Token signing secret (random when empty)")
	cmd.Flags().DurationVar(&tokenTTL, "token-ttl", devserver.DefaultTokenTTL, "Issued token lifetime")
	return cmd
}
