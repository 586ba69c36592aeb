package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"usermanager/internal/auth"
	"usermanager/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := OpenJournal(context.Background(), filepath.Join(t.TempDir(), "j", "journal.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestJournal_RecordAndRecentNewestFirst(t *testing.T) {
	t.Parallel()

	j := openTestJournal(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	s, err := session.New("T", &session.User{Name: "A", Email: " a@b.com "})
	require.NoError(t, err)

	ok := auth.Success(s)
	ok.Status = 200
	ok.RequestID = "req-1"
	require.NoError(t, j.Record(ctx, NewAttempt(ok, 120*time.Millisecond, base)))
	require.NoError(t, j.Record(ctx, NewAttempt(auth.InvalidCredentials(401), 30*time.Millisecond, base.Add(time.Minute))))
	require.NoError(t, j.Record(ctx, NewAttempt(auth.NetworkFailure(errors.New("connection refused")), time.Second, base.Add(2*time.Minute))))

	all, err := j.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)

	assert.Equal(t, "network_failure", all[0].Outcome)
	assert.Equal(t, "connection refused", all[0].Reason)
	assert.Empty(t, all[0].Account)
	assert.Equal(t, "invalid_credentials", all[1].Outcome)
	assert.Equal(t, 401, all[1].Status)
	assert.Empty(t, all[1].Account)
	assert.Equal(t, "success", all[2].Outcome)
	assert.Equal(t, "a@b.com", all[2].Account)
	assert.Equal(t, "req-1", all[2].RequestID)
	assert.Equal(t, 120*time.Millisecond, all[2].Duration)
	assert.True(t, base.Equal(all[2].At))

	two, err := j.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestJournal_EmptyIsNonNil(t *testing.T) {
	t.Parallel()

	got, err := openTestJournal(t).Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestJournal_NeverStoresSecrets(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "journal.sqlite")
	j, err := OpenJournal(context.Background(), path)
	require.NoError(t, err)

	s, err := session.New("token-SECRET-123", &session.User{Name: "A", Email: "a@b.com"})
	require.NoError(t, err)
	require.NoError(t, j.Record(context.Background(), NewAttempt(auth.Success(s), 0, time.Now())))
	require.NoError(t, j.Close())

	ents, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range ents {
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		assert.False(t, strings.Contains(string(b), "hunter2-SECRET"), e.Name())
		assert.False(t, strings.Contains(string(b), "token-SECRET-123"), e.Name())
	}
}

// A failed attempt only has what the user typed, so nothing identifies it.
func TestJournal_FailedAttemptLeavesNoTypedEmail(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "journal.sqlite")
	ctx := context.Background()
	j, err := OpenJournal(ctx, path)
	require.NoError(t, err)

	typed := "typed-SECRET@example.com"
	require.NoError(t, j.Record(ctx, NewAttempt(auth.InvalidCredentials(401), time.Millisecond, time.Now())))
	require.NoError(t, j.Record(ctx, NewAttempt(auth.NetworkFailure(errors.New("dial tcp: refused")), time.Millisecond, time.Now())))

	rows, err := j.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Empty(t, r.Account)
	}
	require.NoError(t, j.Close())

	ents, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range ents {
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		assert.False(t, strings.Contains(string(b), typed), e.Name())
	}
}

func TestJournal_ReopenKeepsRows(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "journal.sqlite")
	ctx := context.Background()

	j, err := OpenJournal(ctx, path)
	require.NoError(t, err)
	require.NoError(t, j.Record(ctx, Attempt{Outcome: "invalid_credentials", Status: 401}))
	require.NoError(t, j.Close())

	j2, err := OpenJournal(ctx, path)
	require.NoError(t, err)
	defer j2.Close()
	got, err := j2.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotEmpty(t, got[0].ID)
	assert.False(t, got[0].At.IsZero())
}

func TestOpenJournal_EmptyPath(t *testing.T) {
	t.Parallel()

	_, err := OpenJournal(context.Background(), " ")
	assert.Error(t, err)
}
