// Package config resolves the effective settings: built-in defaults, then the
// YAML config file, then command-line flags (which already carry env values).
package config

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"usermanager/internal/nav"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

const (
	FileName        = "config.yaml"
	JournalFileName = "journal.sqlite"
)

type Config struct {
	BaseURL   string        `koanf:"base_url" json:"baseUrl"`
	Timeout   time.Duration `koanf:"timeout" json:"timeout"`
	StartView string        `koanf:"start_view" json:"startView"`

	SettleDelay time.Duration `koanf:"settle_delay" json:"settleDelay"`
	ActionDelay time.Duration `koanf:"action_delay" json:"actionDelay"`
	RippleTTL   time.Duration `koanf:"ripple_ttl" json:"rippleTtl"`

	DebugLog string `koanf:"debug_log" json:"debugLog,omitempty"`
	LogLevel string `koanf:"log_level" json:"logLevel"`

	Journal     bool   `koanf:"journal" json:"journal"`
	JournalPath string `koanf:"journal_path" json:"journalPath,omitempty"`

	// Theme is one of auto|light|dark.
	Theme string `koanf:"theme" json:"theme"`

	// Path is the config file that was read, if any.
	Path string `koanf:"-" json:"path,omitempty"`
}

func Defaults() Config {
	return Config{
		BaseURL:     "http://localhost:8080",
		Timeout:     10 * time.Second,
		StartView:   nav.Dashboard.String(),
		SettleDelay: nav.DefaultSettleDelay,
		ActionDelay: nav.DefaultActionDelay,
		RippleTTL:   nav.DefaultRippleTTL,
		LogLevel:    "info",
		Journal:     true,
		Theme:       "auto",
	}
}

// Dir is ~/.usermanager, or $USERMANAGER_CONFIG_DIR when set (tests use it to
// stay out of the real home directory).
func Dir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("USERMANAGER_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".usermanager"), nil
}

func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// flagKeys maps flag names onto config keys. Flags not listed here are not
// configuration (e.g. --config itself, --format).
var flagKeys = map[string]string{
	"base-url":     "base_url",
	"timeout":      "timeout",
	"start-view":   "start_view",
	"debug-log":    "debug_log",
	"log-level":    "log_level",
	"journal":      "journal",
	"journal-path": "journal_path",
	"theme":        "theme",
}

// Load reads path (or the default path when empty) and overlays flags. A
// missing file is not an error unless the path was given explicitly.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Config{}, oops.In("config").Code("config.path").Wrap(err)
		}
		path = p
	}

	k := koanf.New(".")
	cfg := Defaults()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.In("config").Code("config.parse").With("path", path).Wrapf(err, "read config")
		}
		cfg.Path = path
	} else if explicit || !errors.Is(err, os.ErrNotExist) {
		return Config{}, oops.In("config").Code("config.read").With("path", path).Wrap(err)
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, oops.In("config").Code("config.flags").Wrap(err)
		}
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, oops.In("config").Code("config.decode").Wrap(err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.StartView = strings.ToLower(strings.TrimSpace(c.StartView))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.Theme = strings.ToLower(strings.TrimSpace(c.Theme))
	c.DebugLog = strings.TrimSpace(c.DebugLog)
	c.JournalPath = strings.TrimSpace(c.JournalPath)
}

func (c Config) Validate() error {
	invalid := oops.In("config").Code("config.invalid")

	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalid.With("base_url", c.BaseURL).Errorf("base_url must be an http(s) URL, got %q", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return invalid.With("timeout", c.Timeout).Errorf("timeout must be positive")
	}
	for name, d := range map[string]time.Duration{
		"settle_delay": c.SettleDelay,
		"action_delay": c.ActionDelay,
		"ripple_ttl":   c.RippleTTL,
	} {
		if d <= 0 {
			return invalid.With(name, d).Errorf("%s must be positive", name)
		}
	}
	if _, err := nav.ParseView(c.StartView); err != nil {
		return invalid.With("start_view", c.StartView).Wrap(err)
	}
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error", "disabled":
	default:
		return invalid.With("log_level", c.LogLevel).Errorf("unknown log_level %q", c.LogLevel)
	}
	switch c.Theme {
	case "auto", "light", "dark":
	default:
		return invalid.With("theme", c.Theme).Errorf("unknown theme %q (want auto|light|dark)", c.Theme)
	}
	return nil
}

// View is the parsed start view.
func (c Config) View() nav.View {
	v, _ := nav.ParseView(c.StartView)
	return v
}

// NavOptions maps the timing settings onto the view controller.
func (c Config) NavOptions() nav.Options {
	o := nav.DefaultOptions()
	o.Start = c.View()
	o.SettleDelay = c.SettleDelay
	o.ActionDelay = c.ActionDelay
	o.RippleTTL = c.RippleTTL
	return o
}

// ResolvedJournalPath is JournalPath or the default file in Dir. Empty when
// the journal is disabled.
func (c Config) ResolvedJournalPath() (string, error) {
	if !c.Journal {
		return "", nil
	}
	if c.JournalPath != "" {
		return c.JournalPath, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, JournalFileName), nil
}
