package cli

import (
	"fmt"
	"strings"

	"usermanager/internal/config"

	"github.com/spf13/cobra"
)

type effectiveConfig struct {
	config.Config
	JournalFile string `json:"journalFile,omitempty"`
}

func (c effectiveConfig) Text() string {
	var b strings.Builder
	src := c.Path
	if src == "" {
		src = "(defaults)"
	}
	fmt.Fprintf(&b, "config:       %s\n", src)
	fmt.Fprintf(&b, "base url:     %s\n", c.BaseURL)
	fmt.Fprintf(&b, "timeout:      %s\n", c.Timeout)
	fmt.Fprintf(&b, "start view:   %s\n", c.StartView)
	fmt.Fprintf(&b, "action delay: %s\n", c.ActionDelay)
	fmt.Fprintf(&b, "settle delay: %s\n", c.SettleDelay)
	fmt.Fprintf(&b, "ripple ttl:   %s\n", c.RippleTTL)
	fmt.Fprintf(&b, "theme:        %s\n", c.Theme)
	fmt.Fprintf(&b, "log level:    %s\n", c.LogLevel)
	if c.DebugLog != "" {
		fmt.Fprintf(&b, "debug log:    %s\n", c.DebugLog)
	}
	if c.JournalFile != "" {
		fmt.Fprintf(&b, "journal:      %s\n", c.JournalFile)
	} else {
		fmt.Fprintf(&b, "journal:      off\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func newConfigCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := effectiveConfig{Config: app.Config}
			path, err := app.Config.ResolvedJournalPath()
			if err != nil {
				return err
			}
			out.JournalFile = path

			var hints []string
			if app.Config.Path == "" {
				if p, err := config.DefaultPath(); err == nil {
					hints = append(hints, "create "+p+" to persist settings")
				}
			}
			return writeOut(cmd, app, envelope{Data: out, Hints: hints})
		},
	}
}
