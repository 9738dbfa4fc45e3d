// Package auth owns the signed-in session: it persists tokens, restores them
// on startup and tells subscribers when the session changes.
package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/commonground/cg/pkg/api"
	"github.com/commonground/cg/pkg/cache"
	"github.com/commonground/cg/pkg/client"
	"github.com/commonground/cg/pkg/credentials"
	"github.com/commonground/cg/pkg/logger"
)

// State is a snapshot of the session
type State struct {
	Actor           *api.ActorProfile
	IsLoading       bool
	IsAuthenticated bool
}

// Store is the process-wide session holder
type Store struct {
	mu        sync.Mutex
	state     State
	listeners map[int]func(State)
	nextID    int
}

var (
	defaultStore *Store
	storeOnce    sync.Once
)

// NewStore returns a store that has not yet tried to restore a session
func NewStore() *Store {
	return &Store{
		state:     State{IsLoading: true},
		listeners: make(map[int]func(State)),
	}
}

// Default returns the shared store used by the command tree
func Default() *Store {
	storeOnce.Do(func() {
		defaultStore = NewStore()
	})
	return defaultStore
}

// State returns the current snapshot
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsAuthenticated reports whether an actor is signed in
func (s *Store) IsAuthenticated() bool {
	return s.State().IsAuthenticated
}

// Actor returns the signed-in actor, or nil
func (s *Store) Actor() *api.ActorProfile {
	return s.State().Actor
}

// Subscribe registers fn for every state change. The returned func removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) setState(next State) {
	s.mu.Lock()
	s.state = next
	listeners := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
}

func (s *Store) setUnauthenticated() {
	s.setState(State{})
}

// Login signs a human in with email and password
func (s *Store) Login(ctx context.Context, email, password string) error {
	token, err := api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := persistToken(token); err != nil {
		return err
	}
	return s.LoadUser(ctx)
}

// Register creates an account and signs it in
func (s *Store) Register(ctx context.Context, req api.RegisterRequest) error {
	token, err := api.Register(ctx, req)
	if err != nil {
		return err
	}
	if err := persistToken(token); err != nil {
		return err
	}
	return s.LoadUser(ctx)
}

// UseAgentKey signs an agent in with a long-lived API key
func (s *Store) UseAgentKey(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("agent key cannot be empty")
	}
	if err := credentials.Save(&credentials.Credentials{AgentKey: key}); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	client.ClearAuthToken()
	client.SetAgentKey(key)
	return s.LoadUser(ctx)
}

// Logout ends the session locally. The server call is best effort.
func (s *Store) Logout(ctx context.Context) error {
	if client.HasCredentials() {
		if err := api.Logout(ctx); err != nil {
			logger.Warn("Server logout failed", "error", err)
		}
	}

	client.ClearAuthToken()
	cache.Shared().Flush()
	s.setUnauthenticated()

	if err := credentials.Delete(); err != nil {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}

// LoadUser restores the persisted session and fetches the signed-in actor.
// Any failure leaves the store signed out with the stored token removed.
func (s *Store) LoadUser(ctx context.Context) error {
	s.setState(State{IsLoading: true})

	creds, err := credentials.Load()
	if err != nil {
		logger.Warn("Unreadable credentials", "error", err)
		s.clearSession()
		return nil
	}
	if creds == nil || (creds.AccessToken == "" && creds.AgentKey == "") {
		s.setUnauthenticated()
		return nil
	}

	if creds.AgentKey != "" && creds.AccessToken == "" {
		client.SetAgentKey(creds.AgentKey)
	} else {
		if !creds.IsValid() {
			if !creds.CanRefresh() {
				logger.Debug("Stored token expired with no refresh token")
				s.clearSession()
				return nil
			}
			if creds, err = refresh(ctx, creds); err != nil {
				s.clearSession()
				return fmt.Errorf("session expired: %w", err)
			}
		}
		client.SetAuthToken(creds.AccessToken)
	}

	me, err := api.GetMe(ctx)
	if err != nil {
		s.clearSession()
		return fmt.Errorf("failed to load current actor: %w", err)
	}

	creds.ActorID = me.ID
	creds.Handle = me.Handle
	creds.ActorType = me.ActorType
	creds.Role = me.Role
	if err := credentials.Save(creds); err != nil {
		logger.Warn("Failed to update credentials", "error", err)
	}

	s.setState(State{Actor: me, IsAuthenticated: true})
	logger.Debug("Session restored", "handle", me.Handle)
	return nil
}

// Refresh trades the stored refresh token for a new access token
func (s *Store) Refresh(ctx context.Context) error {
	if err := NewSessionRecovery().RecoverSession(ctx); err != nil {
		return err
	}
	return s.LoadUser(ctx)
}

func (s *Store) clearSession() {
	client.ClearAuthToken()
	if err := credentials.Delete(); err != nil {
		logger.Warn("Failed to remove credentials", "error", err)
	}
	s.setUnauthenticated()
}

func persistToken(token *api.TokenResponse) error {
	creds := &credentials.Credentials{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    credentials.Expiry(token.AccessToken, token.ExpiresIn),
		ActorID:      token.ActorID,
		Handle:       token.Handle,
		ActorType:    token.ActorType,
	}
	if err := credentials.Save(creds); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	// a restored agent key would otherwise take precedence over the token
	client.ClearAuthToken()
	client.SetAuthToken(token.AccessToken)
	return nil
}

func refresh(ctx context.Context, creds *credentials.Credentials) (*credentials.Credentials, error) {
	token, err := api.Refresh(ctx, creds.RefreshToken)
	if err != nil {
		return nil, err
	}

	next := *creds
	next.AccessToken = token.AccessToken
	next.ExpiresAt = credentials.Expiry(token.AccessToken, token.ExpiresIn)
	if err := credentials.Save(&next); err != nil {
		logger.Error("Failed to save refreshed credentials", "error", err)
	}
	return &next, nil
}
