package session

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsPartialSessions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		token string
		user  *User
	}{
		{name: "no token", token: "", user: &User{Name: "A"}},
		{name: "blank token", token: "   ", user: &User{Name: "A"}},
		{name: "no user", token: "T", user: nil},
		{name: "nothing", token: "", user: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, err := New(tt.token, tt.user)
			require.ErrorIs(t, err, ErrIncomplete)
			assert.False(t, s.Present())
			assert.Empty(t, s.Token())
			_, ok := s.User()
			assert.False(t, ok)
		})
	}
}

func TestStore_ZeroValueIsAbsent(t *testing.T) {
	t.Parallel()

	st := NewStore()
	got := st.Get()
	assert.False(t, got.Present())
	assert.Empty(t, got.Token())
	_, ok := got.User()
	assert.False(t, ok)
}

func TestStore_SetOverwritesInsteadOfMerging(t *testing.T) {
	t.Parallel()

	st := NewStore()
	first, err := New("T1", &User{Name: "A", Email: "a@b.com"})
	require.NoError(t, err)
	st.Set(first)

	second, err := New("T2", &User{Name: "B"})
	require.NoError(t, err)
	st.Set(second)

	got := st.Get()
	require.True(t, got.Present())
	assert.Equal(t, "T2", got.Token())
	u, ok := got.User()
	require.True(t, ok)
	assert.Equal(t, "B", u.Name)
	assert.Empty(t, u.Email, "email from the previous session must not survive")
}

func TestStore_TokenAndUserStayPaired(t *testing.T) {
	t.Parallel()

	st := NewStore()
	check := func() {
		t.Helper()
		s := st.Get()
		_, hasUser := s.User()
		assert.Equal(t, s.Token() != "", hasUser, "token and user must be present together")
	}

	check()
	s, err := New("T", &User{Name: "A"})
	require.NoError(t, err)
	st.Set(s)
	check()
	st.Set(Session{})
	check()
	st.Set(s)
	check()
	st.Clear()
	check()
}

func TestStore_GetReturnsSnapshot(t *testing.T) {
	t.Parallel()

	st := NewStore()
	s, err := New("T", &User{Name: "A", Extra: map[string]json.RawMessage{"role": json.RawMessage(`"admin"`)}})
	require.NoError(t, err)
	st.Set(s)

	u, _ := st.Get().User()
	u.Name = "mutated"
	u.Extra["role"] = json.RawMessage(`"root"`)

	again, _ := st.Get().User()
	assert.Equal(t, "A", again.Name)
	assert.JSONEq(t, `"admin"`, string(again.Extra["role"]))
}

func TestStore_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	st := NewStore()
	s, err := New("T", &User{Name: "A"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				st.Set(s)
				st.Clear()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				got := st.Get()
				_, hasUser := got.User()
				if (got.Token() != "") != hasUser {
					t.Errorf("observed partial session")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestUser_JSONKeepsUnknownFields(t *testing.T) {
	t.Parallel()

	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"id":42,"name":"A","email":"a@b.com","role":"admin"}`), &u))
	assert.Equal(t, "42", u.ID)
	assert.Equal(t, "A", u.Name)
	assert.Equal(t, "a@b.com", u.Email)
	require.Contains(t, u.Extra, "role")

	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"42","name":"A","email":"a@b.com","role":"admin"}`, string(b))
}

func TestUser_UnmarshalRejectsNonObjects(t *testing.T) {
	t.Parallel()

	for _, in := range []string{`null`, `"A"`, `[1,2]`, `3`} {
		var u User
		assert.Error(t, json.Unmarshal([]byte(in), &u), in)
	}
}

func TestUser_DisplayName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "A", User{Name: " A "}.DisplayName())
	assert.Equal(t, "a@b.com", User{Email: "a@b.com"}.DisplayName())
	assert.Equal(t, "user", User{}.DisplayName())
}
