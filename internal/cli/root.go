package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"usermanager/internal/auth"
	"usermanager/internal/config"
	"usermanager/internal/format"
	"usermanager/internal/logging"
	"usermanager/internal/session"
	"usermanager/internal/store"
	"usermanager/internal/tui"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Version is stamped at build time.
var Version = "dev"

type App struct {
	ConfigPath string
	PrettyJSON bool
	Format     string

	Config config.Config
	Log    zerolog.Logger

	logCloser io.Closer
}

// envFlags feeds USERMANAGER_* variables into config flags the user did not
// set explicitly, so env wins over the config file and flags win over env.
var envFlags = map[string]string{
	"base-url":     "USERMANAGER_BASE_URL",
	"timeout":      "USERMANAGER_TIMEOUT",
	"start-view":   "USERMANAGER_START_VIEW",
	"debug-log":    "USERMANAGER_DEBUG_LOG",
	"log-level":    "USERMANAGER_LOG_LEVEL",
	"journal":      "USERMANAGER_JOURNAL",
	"journal-path": "USERMANAGER_JOURNAL_PATH",
	"theme":        "USERMANAGER_THEME",
}

func NewRootCmd() *cobra.Command {
	app := &App{Log: zerolog.Nop()}
	def := config.Defaults()

	cmd := &cobra.Command{
		Use:           "usermanager",
		Short:         "User Manager terminal client",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Start the interactive client
  usermanager

  # Open straight on the login form against a local dev server
  usermanager --start-view login --base-url http://127.0.0.1:8080

  # Scriptable login (password from stdin)
  echo "$PASSWORD" | usermanager login --email ada@example.com

  # Run a local backend with one user
  usermanager devserver --user "Ada Lovelace:ada@example.com:engine42"
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd)
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return app.teardown()
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&app.ConfigPath, "config", envOr("USERMANAGER_CONFIG", ""), "Path to config.yaml (default: ~/.usermanager/config.yaml)")
	pf.BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	pf.StringVar(&app.Format, "format", envOr("USERMANAGER_FORMAT", "json"), "Output format (json|text)")

	pf.String("base-url", def.BaseURL, "Authentication server base URL")
	pf.Duration("timeout", def.Timeout, "Per-request login timeout")
	pf.String("start-view", def.StartView, "View shown on start (dashboard|login|register)")
	pf.String("debug-log", "", "Append JSON debug logs to this file")
	pf.String("log-level", def.LogLevel, "Log level (trace|debug|info|warn|error|disabled)")
	pf.Bool("journal", def.Journal, "Record login attempts in the local journal")
	pf.String("journal-path", "", "Journal database path (default: ~/.usermanager/journal.sqlite)")
	pf.String("theme", def.Theme, "Color theme (auto|light|dark)")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newHistoryCmd(app))
	cmd.AddCommand(newDevServerCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newVersionCmd(app))

	return cmd
}

func (app *App) setup(cmd *cobra.Command) error {
	if !format.Valid(app.Format) {
		return fmt.Errorf("unknown format: %s (want json|text)", app.Format)
	}
	if err := applyEnv(cmd.Flags()); err != nil {
		return err
	}
	cfg, err := config.Load(app.ConfigPath, cmd.Flags())
	if err != nil {
		return err
	}
	app.Config = cfg

	opts := logging.Options{Path: cfg.DebugLog, Level: cfg.LogLevel}
	if cmd.Annotations[annotationConsoleLog] == "true" {
		opts.Console = cmd.ErrOrStderr()
	}
	log, closer, err := logging.New(opts)
	if err != nil {
		return err
	}
	app.Log = log.With().Str("cmd", cmd.Name()).Logger()
	app.logCloser = closer
	return nil
}

func (app *App) teardown() error {
	if app.logCloser == nil {
		return nil
	}
	err := app.logCloser.Close()
	app.logCloser = nil
	return err
}

func applyEnv(fs *pflag.FlagSet) error {
	for name, env := range envFlags {
		f := fs.Lookup(name)
		if f == nil || f.Changed {
			continue
		}
		v, ok := os.LookupEnv(env)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		if err := fs.Set(name, v); err != nil {
			return fmt.Errorf("%s: %w", env, err)
		}
	}
	return nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func (app *App) newClient() (*auth.Client, error) {
	return auth.NewClient(app.Config.BaseURL,
		auth.WithTimeout(app.Config.Timeout),
		auth.WithLogger(app.Log),
		auth.WithUserAgent("usermanager/"+Version),
	)
}

// openJournal returns nil when the journal is disabled.
func (app *App) openJournal(ctx context.Context) (*store.Journal, error) {
	path, err := app.Config.ResolvedJournalPath()
	if err != nil || path == "" {
		return nil, err
	}
	return store.OpenJournal(ctx, path)
}

func runTUI(cmd *cobra.Command, app *App) error {
	client, err := app.newClient()
	if err != nil {
		return err
	}

	deps := tui.Deps{
		Nav:     app.Config.NavOptions(),
		Auth:    client,
		Session: session.NewStore(),
		Logger:  app.Log,
		Timeout: app.Config.Timeout,
		Theme:   app.Config.Theme,
	}
	j, err := app.openJournal(cmd.Context())
	if err != nil {
		// The client works without history; only the journal is lost.
		logging.Err(app.Log.Warn(), err).Msg("journal unavailable")
	}
	if j != nil {
		defer j.Close()
		deps.Journal = j
	}
	return tui.Run(cmd.Context(), deps)
}

// envelope is the JSON shape every command prints.
type envelope struct {
	Data  any      `json:"data"`
	Meta  any      `json:"meta,omitempty"`
	Hints []string `json:"_hints,omitempty"`
}

func (e envelope) Text() string {
	if t, ok := e.Data.(format.Texter); ok {
		return t.Text()
	}
	var b strings.Builder
	_ = format.WriteJSON(&b, e.Data, true)
	return b.String()
}

func writeOut(cmd *cobra.Command, app *App, v envelope) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

// errReported marks a failure whose details were already written as output.
var errReported = errors.New("reported")

// IsReported tells main not to print err again.
func IsReported(err error) bool { return errors.Is(err, errReported) }
