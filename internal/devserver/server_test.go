package devserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(Config{
		Seeds:  []Seed{{Name: "Ada Lovelace", Email: "ada@example.com", Password: "engine42"}},
		Secret: []byte("test-secret"),
		Cost:   bcrypt.MinCost,
	})
	require.NoError(t, err)
	return s
}

func postLogin(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, LoginPath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLogin_ValidCredentialsIssueToken(t *testing.T) {
	s := newTestServer(t)

	rec := postLogin(t, s.Handler(), `{"email":"ADA@example.com ","password":"engine42"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, "Ada Lovelace", resp.User.Name)
	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.User.ID)
	assert.NotContains(t, rec.Body.String(), "engine42")

	claims, err := s.ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.Subject)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(DefaultTokenTTL), claims.ExpiresAt.Time, time.Minute)
}

func TestLogin_Rejections(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name string
		body string
		want int
	}{
		{"wrong password", `{"email":"ada@example.com","password":"nope"}`, http.StatusUnauthorized},
		{"unknown user", `{"email":"bob@example.com","password":"engine42"}`, http.StatusUnauthorized},
		{"missing password", `{"email":"ada@example.com"}`, http.StatusBadRequest},
		{"malformed json", `{"email":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postLogin(t, s.Handler(), tt.body)
			assert.Equal(t, tt.want, rec.Code)
			var body errorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
			if tt.want == http.StatusUnauthorized {
				assert.Equal(t, "Invalid email or password", body.Error)
			}
		})
	}
}

func TestRoutes(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, HealthPath, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, LoginPath, nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestLog_CoversUnmatchedRoutes(t *testing.T) {
	var buf bytes.Buffer
	s, err := New(Config{Secret: []byte("test-secret"), Cost: bcrypt.MinCost, Logger: zerolog.New(&buf)})
	require.NoError(t, err)
	h := s.Handler()

	reqs := []struct {
		method, path string
		status       int
	}{
		{http.MethodGet, HealthPath, http.StatusOK},
		{http.MethodGet, LoginPath, http.StatusMethodNotAllowed},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, r := range reqs {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(r.method, r.path, nil))
		require.Equal(t, r.status, rec.Code, r.path)
	}

	var lines []map[string]any
	dec := json.NewDecoder(&buf)
	for dec.More() {
		var ln map[string]any
		require.NoError(t, dec.Decode(&ln))
		lines = append(lines, ln)
	}
	require.Len(t, lines, len(reqs))
	for i, r := range reqs {
		assert.Equal(t, r.method, lines[i]["method"])
		assert.Equal(t, r.path, lines[i]["path"])
		assert.Equal(t, float64(r.status), lines[i]["status"])
	}
}

func TestParseToken_RejectsForeignAndExpired(t *testing.T) {
	s := newTestServer(t)
	other, err := New(Config{Secret: []byte("other"), Cost: bcrypt.MinCost})
	require.NoError(t, err)

	u := userRecord{ID: "1", Name: "A", Email: "a@b.com"}
	foreign, err := other.issueToken(u)
	require.NoError(t, err)
	_, err = s.ParseToken(foreign)
	require.Error(t, err)
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, "devserver.token", oopsErr.Code())

	s.now = func() time.Time { return time.Now().Add(-2 * DefaultTokenTTL) }
	stale, err := s.issueToken(u)
	require.NoError(t, err)
	s.now = time.Now
	_, err = s.ParseToken(stale)
	assert.Error(t, err)
}

func TestAddUser_ReplacesKeepingID(t *testing.T) {
	s := newTestServer(t)
	before := s.users[emailKey("ada@example.com")].ID

	require.NoError(t, s.AddUser(Seed{Name: "Ada", Email: "Ada@Example.com", Password: "newpass1"}))
	after := s.users[emailKey("ada@example.com")]
	assert.Equal(t, before, after.ID)
	assert.Equal(t, "Ada", after.Name)
	assert.Len(t, s.users, 1)

	rec := postLogin(t, s.Handler(), `{"email":"ada@example.com","password":"engine42"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestParseSeed(t *testing.T) {
	seed, err := ParseSeed(" Ada:ada@example.com:pa:ss:word ")
	require.NoError(t, err)
	assert.Equal(t, Seed{Name: "Ada", Email: "ada@example.com", Password: "pa:ss:word"}, seed)

	for _, bad := range []string{"", "Ada:ada@example.com", "Ada:not-an-email:password", ":ada@example.com:password", "Ada:ada@example.com:short"} {
		_, err := ParseSeed(bad)
		assert.Error(t, err, bad)
	}
}

func TestNew_GeneratesSecret(t *testing.T) {
	s, err := New(Config{Cost: bcrypt.MinCost})
	require.NoError(t, err)
	assert.Len(t, s.secret, 32)
}
