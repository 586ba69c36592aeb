// Package format renders command results for scripts and humans.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Texter is implemented by results that have a human-readable form.
type Texter interface {
	Text() string
}

// Write writes output in the requested format.
//
// Supported formats:
// - json (default)
// - text (values implementing Texter; everything else falls back to json)
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "text":
		if t, ok := v.(Texter); ok {
			s := strings.TrimRight(t.Text(), "\n")
			_, err := fmt.Fprintln(w, s)
			return err
		}
		return WriteJSON(w, v, true)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes strict JSON, one document per call.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}

// Valid reports whether Write accepts format.
func Valid(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json", "text":
		return true
	}
	return false
}
