// Package logging builds the zerolog logger shared by every component.
//
// The interactive TUI owns the terminal, so by default nothing is logged at
// all; a debug log file has to be asked for explicitly.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/oops"
)

type Options struct {
	// Path appends JSON lines to a file.
	Path string
	// Level is a zerolog level name; empty means info.
	Level string
	// Console writes human-readable lines to w (used by the dev server).
	Console io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns the logger plus a closer for the underlying file.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	var (
		writers []io.Writer
		closer  io.Closer = nopCloser{}
	)
	if p := strings.TrimSpace(opts.Path); p != "" {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return zerolog.Nop(), nopCloser{}, oops.In("logging").Code("logging.open").With("path", p).Wrap(err)
		}
		f, err := os.OpenFile(p, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, oops.In("logging").Code("logging.open").With("path", p).Wrap(err)
		}
		writers = append(writers, f)
		closer = f
	}
	if opts.Console != nil {
		writers = append(writers, zerolog.ConsoleWriter{Out: opts.Console, TimeFormat: time.Kitchen})
	}

	switch len(writers) {
	case 0:
		return zerolog.Nop(), closer, nil
	case 1:
		return zerolog.New(writers[0]).Level(level).With().Timestamp().Logger(), closer, nil
	default:
		return zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp().Logger(), closer, nil
	}
}

func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.InfoLevel, oops.In("logging").Code("logging.level").With("level", s).Wrap(err)
	}
	return lvl, nil
}

// Err adds err to ev, including the oops code and context when present.
func Err(ev *zerolog.Event, err error) *zerolog.Event {
	if err == nil {
		return ev
	}
	ev = ev.Err(err)
	if oe, ok := oops.AsOops(err); ok {
		if code := oe.Code(); code != nil && code != "" {
			ev = ev.Interface("code", code)
		}
		if ctx := oe.Context(); len(ctx) > 0 {
			ev = ev.Interface("context", ctx)
		}
	}
	return ev
}
