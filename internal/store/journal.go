// Package store keeps the local journal of login attempts.
//
// The journal is a history, not a session cache: it records when a sign-in
// was tried and how it went. Nothing the user typed is stored; a successful
// row names the account the server returned.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"usermanager/internal/auth"

	"github.com/google/uuid"
	"github.com/samber/oops"

	_ "modernc.org/sqlite"
)

// Attempt is one journal row.
type Attempt struct {
	ID        string        `json:"id"`
	// Account is the server-returned user email; empty unless the login
	// succeeded.
	Account   string        `json:"account,omitempty"`
	Outcome   string        `json:"outcome"`
	Status    int           `json:"status,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	RequestID string        `json:"requestId,omitempty"`
	Duration  time.Duration `json:"durationNs"`
	At        time.Time     `json:"at"`
}

// NewAttempt builds a row from a resolved login.
func NewAttempt(out auth.Outcome, took time.Duration, at time.Time) Attempt {
	var account string
	if u, ok := out.Session.User(); ok {
		account = strings.TrimSpace(u.Email)
	}
	return Attempt{
		ID:        uuid.NewString(),
		Account:   account,
		Outcome:   out.Kind.String(),
		Status:    out.Status,
		Reason:    out.ReasonText(),
		RequestID: out.RequestID,
		Duration:  took,
		At:        at.UTC(),
	}
}

type Journal struct {
	db   *sql.DB
	path string
}

// OpenJournal opens (creating if needed) the sqlite journal at path.
func OpenJournal(ctx context.Context, path string) (*Journal, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, oops.In("journal").Code("journal.open").Errorf("journal path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, oops.In("journal").Code("journal.open").With("path", path).Wrap(err)
	}
	// modernc.org/sqlite registers itself as "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, oops.In("journal").Code("journal.open").With("path", path).Wrap(err)
	}
	// One writer per process; WAL + busy_timeout keep CLI and TUI from tripping
	// over each other.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, oops.In("journal").Code("journal.open").With("path", path).Wrap(err)
		}
	}
	j := &Journal{db: db, path: path}
	if err := j.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS login_attempts (
			id TEXT PRIMARY KEY,
			account TEXT NOT NULL,
			outcome TEXT NOT NULL,
			status INTEGER NOT NULL,
			reason TEXT NOT NULL,
			request_id TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_login_attempts_at ON login_attempts(at_unixms);`,
	}
	for _, st := range stmts {
		if _, err := j.db.ExecContext(ctx, st); err != nil {
			return oops.In("journal").Code("journal.migrate").Wrap(err)
		}
	}
	return nil
}

func (j *Journal) Path() string { return j.path }

func (j *Journal) Record(ctx context.Context, a Attempt) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.At.IsZero() {
		a.At = time.Now().UTC()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO login_attempts(id, account, outcome, status, reason, request_id, duration_ms, at_unixms)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Account, a.Outcome, a.Status, a.Reason, a.RequestID, a.Duration.Milliseconds(), a.At.UnixMilli(),
	)
	if err != nil {
		return oops.In("journal").Code("journal.write").With("attempt_id", a.ID).Wrap(err)
	}
	return nil
}

// Recent returns up to limit attempts, newest first. A non-positive limit
// returns everything.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Attempt, error) {
	q := `SELECT id, account, outcome, status, reason, request_id, duration_ms, at_unixms
		FROM login_attempts ORDER BY at_unixms DESC, rowid DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, oops.In("journal").Code("journal.read").Wrap(err)
	}
	defer rows.Close()

	out := []Attempt{}
	for rows.Next() {
		var (
			a      Attempt
			durMS  int64
			atUnix int64
		)
		if err := rows.Scan(&a.ID, &a.Account, &a.Outcome, &a.Status, &a.Reason, &a.RequestID, &durMS, &atUnix); err != nil {
			return nil, oops.In("journal").Code("journal.read").Wrap(err)
		}
		a.Duration = time.Duration(durMS) * time.Millisecond
		a.At = time.UnixMilli(atUnix).UTC()
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.In("journal").Code("journal.read").Wrap(err)
	}
	return out, nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}
