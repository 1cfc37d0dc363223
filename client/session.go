package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/odontoforense/odonto-legal-api/models"
)

// Redirect is an explicit navigation command returned by session transitions.
// The caller performs exactly one navigation per command; there is no watcher
// re-evaluating the route on every state change.
type Redirect string

const (
	RedirectNone  Redirect = ""
	RedirectHome  Redirect = "home"
	RedirectLogin Redirect = "login"
)

// ErrNoSession is returned when no user projection is stored.
var ErrNoSession = errors.New("client: no active session")

// Session owns the stored authentication state: the bearer token and the
// denormalized {nome, roleLabel} user projection. Token expiry is discovered
// reactively, when a remote call returns 401 and evicts the token.
type Session struct {
	store  Store
	remote *Remote

	authenticated bool
}

// NewSession creates a session manager over the given store and remote.
func NewSession(store Store, remote *Remote) *Session {
	return &Session{store: store, remote: remote}
}

// Authenticated reports the in-memory session flag.
func (s *Session) Authenticated() bool { return s.authenticated }

// SignIn authenticates with CPF and password, persists the token and the user
// display projection, and commands a redirect to the home screen.
func (s *Session) SignIn(ctx context.Context, cpf, senha string) (Redirect, error) {
	res, err := s.remote.Login(ctx, cpf, senha)
	if err != nil {
		return RedirectNone, err
	}

	if err := s.store.Set(ctx, KeyToken, res.Token); err != nil {
		return RedirectNone, fmt.Errorf("persist token: %w", err)
	}
	b, err := json.Marshal(res.User)
	if err != nil {
		return RedirectNone, fmt.Errorf("encode user projection: %w", err)
	}
	if err := s.store.Set(ctx, KeyUsuario, string(b)); err != nil {
		return RedirectNone, fmt.Errorf("persist user projection: %w", err)
	}
	// drop the old unnamespaced key if a previous install left one behind
	if err := s.store.Remove(ctx, legacyTokenKey); err != nil {
		zap.S().Errorw("failed to remove legacy token key", "error", err)
	}

	s.authenticated = true
	return RedirectHome, nil
}

// SignOut revokes the token server-side (best effort), removes the fixed key
// list from the store and commands a redirect to the login screen.
func (s *Session) SignOut(ctx context.Context) (Redirect, error) {
	if err := s.remote.Logout(ctx); err != nil && !errors.Is(err, ErrUnauthorized) {
		zap.S().Errorw("failed to revoke token remotely", "error", err)
	}
	if err := s.store.Remove(ctx, KeyToken, legacyTokenKey, KeyUsuario); err != nil {
		return RedirectNone, fmt.Errorf("clear session keys: %w", err)
	}
	s.authenticated = false
	return RedirectLogin, nil
}

// Restore recomputes the session flag from the store on app launch and
// commands the matching redirect. A stored token counts as an authenticated
// session until a remote call evicts it.
func (s *Session) Restore(ctx context.Context) (Redirect, error) {
	token, ok, err := s.store.Get(ctx, KeyToken)
	if err != nil {
		return RedirectNone, err
	}
	if !ok || token == "" {
		s.authenticated = false
		return RedirectLogin, nil
	}
	s.authenticated = true
	return RedirectHome, nil
}

// HandleUnauthorized flips the session flag after a remote call returned 401
// and commands the login redirect. The token is already evicted by the
// remote client.
func (s *Session) HandleUnauthorized() Redirect {
	s.authenticated = false
	return RedirectLogin
}

// CurrentUser returns the stored user display projection.
func (s *Session) CurrentUser(ctx context.Context) (*models.UserProjection, error) {
	raw, ok, err := s.store.Get(ctx, KeyUsuario)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoSession
	}
	var proj models.UserProjection
	if err := json.Unmarshal([]byte(raw), &proj); err != nil {
		return nil, fmt.Errorf("decode user projection: %w", err)
	}
	return &proj, nil
}
