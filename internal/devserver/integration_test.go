package devserver_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"usermanager/internal/auth"
	"usermanager/internal/devserver"
	"usermanager/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestClientAgainstDevServer(t *testing.T) {
	srv, err := devserver.New(devserver.Config{
		Seeds: []devserver.Seed{{Name: "Grace Hopper", Email: "grace@example.com", Password: "cobol59"}},
		Cost:  bcrypt.MinCost,
	})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	client, err := auth.NewClient(ts.URL)
	require.NoError(t, err)
	store := session.NewStore()

	out := client.Login(context.Background(), auth.Credentials{Email: "grace@example.com", Password: "cobol59"})
	require.Equal(t, auth.OutcomeSuccess, out.Kind, out.ReasonText())
	store.Set(out.Session)

	got := store.Get()
	require.True(t, got.Present())
	u, ok := got.User()
	require.True(t, ok)
	assert.Equal(t, "Grace Hopper", u.Name)
	assert.Equal(t, "grace@example.com", u.Email)

	claims, err := srv.ParseToken(got.Token())
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.Subject)

	bad := client.Login(context.Background(), auth.Credentials{Email: "grace@example.com", Password: "wrong"})
	assert.Equal(t, auth.OutcomeInvalidCredentials, bad.Kind)
	assert.Equal(t, 401, bad.Status)
	assert.Equal(t, auth.GenericFailureMessage, bad.Message())
}
