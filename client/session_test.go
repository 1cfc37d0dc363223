package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/odontoforense/odonto-legal-api/client"
	"github.com/odontoforense/odonto-legal-api/models"
)

func newAuthServer(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		switch {
		case req.Method == http.MethodPost && req.URL.Path == "/api/v1/auth/login":
			var creds map[string]string
			json.NewDecoder(req.Body).Decode(&creds)
			if creds["cpf"] != "12345678901" || creds["senha"] != "segredo" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"token": "tok-abc",
				"user": models.UserProjection{
					Nome:      "Perito A",
					RoleLabel: models.RoleLabel(models.RolePerito),
				},
			})
		case req.Method == http.MethodDelete && req.URL.Path == "/api/v1/auth/logout":
			w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestSession_SignInStoresTokenAndProjection(t *testing.T) {
	ctx := context.Background()
	srv := newAuthServer(t)
	defer srv.Close()

	store := client.NewMemStore()
	// simulate a leftover key from an older install
	assert.NoError(t, store.Set(ctx, "token", "stale"))

	s := client.NewSession(store, client.NewRemote(srv.URL, store))
	assert.False(t, s.Authenticated())

	redirect, err := s.SignIn(ctx, "123.456.789-01", "segredo")
	assert.NoError(t, err)
	assert.Equal(t, client.RedirectHome, redirect)
	assert.True(t, s.Authenticated())

	tok, ok, _ := store.Get(ctx, client.KeyToken)
	assert.True(t, ok)
	assert.Equal(t, "tok-abc", tok)

	_, ok, _ = store.Get(ctx, "token")
	assert.False(t, ok, "legacy token key must be removed on sign-in")

	user, err := s.CurrentUser(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "Perito A", user.Nome)
	assert.Equal(t, models.RoleLabel(models.RolePerito), user.RoleLabel)
}

func TestSession_SignInBadCredentials(t *testing.T) {
	ctx := context.Background()
	srv := newAuthServer(t)
	defer srv.Close()

	store := client.NewMemStore()
	s := client.NewSession(store, client.NewRemote(srv.URL, store))

	redirect, err := s.SignIn(ctx, "12345678901", "errada")
	assert.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Equal(t, client.RedirectNone, redirect)
	assert.False(t, s.Authenticated())

	_, ok, _ := store.Get(ctx, client.KeyToken)
	assert.False(t, ok)
}

func TestSession_SignInRejectsMalformedCPFBeforeIO(t *testing.T) {
	store := client.NewMemStore()
	// remote pointed at a dead address: a pre-I/O rejection never dials it
	s := client.NewSession(store, client.NewRemote("http://127.0.0.1:0", store))

	_, err := s.SignIn(context.Background(), "123", "segredo")
	assert.Error(t, err)
}

func TestSession_RestoreFromStoredToken(t *testing.T) {
	ctx := context.Background()
	store := client.NewMemStore()
	s := client.NewSession(store, client.NewRemote("http://example.invalid", store))

	redirect, err := s.Restore(ctx)
	assert.NoError(t, err)
	assert.Equal(t, client.RedirectLogin, redirect)
	assert.False(t, s.Authenticated())

	assert.NoError(t, store.Set(ctx, client.KeyToken, "tok-abc"))

	redirect, err = s.Restore(ctx)
	assert.NoError(t, err)
	assert.Equal(t, client.RedirectHome, redirect)
	assert.True(t, s.Authenticated())
}

func TestSession_SignOutClearsKeys(t *testing.T) {
	ctx := context.Background()
	srv := newAuthServer(t)
	defer srv.Close()

	store := client.NewMemStore()
	s := client.NewSession(store, client.NewRemote(srv.URL, store))

	_, err := s.SignIn(ctx, "12345678901", "segredo")
	assert.NoError(t, err)

	redirect, err := s.SignOut(ctx)
	assert.NoError(t, err)
	assert.Equal(t, client.RedirectLogin, redirect)
	assert.False(t, s.Authenticated())

	for _, key := range []string{client.KeyToken, client.KeyUsuario, "token"} {
		_, ok, _ := store.Get(ctx, key)
		assert.False(t, ok, "key %s must be cleared", key)
	}

	_, err = s.CurrentUser(ctx)
	assert.ErrorIs(t, err, client.ErrNoSession)
}

func TestSession_HandleUnauthorized(t *testing.T) {
	store := client.NewMemStore()
	s := client.NewSession(store, client.NewRemote("http://example.invalid", store))

	_, _ = s.Restore(context.Background())
	redirect := s.HandleUnauthorized()
	assert.Equal(t, client.RedirectLogin, redirect)
	assert.False(t, s.Authenticated())
}
