// Package session owns the client-held credential: it is the only place that
// writes or clears the access token, refresh token and cached user.
package session

import (
	"context"
	"errors"
	"sync"

	"cinecity-client/internal/model"

	"github.com/rs/zerolog/log"
)

// State is where the session is in its lifecycle
type State string

const (
	StateAnonymous      State = "anonymous"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
)

// ErrNotAuthenticated is returned when an operation needs a session and none exists
var ErrNotAuthenticated = errors.New("not authenticated")

// UserFetcher loads the current user with the stored token
type UserFetcher func(ctx context.Context) (*model.User, error)

// Manager drives the session state machine over a Store
type Manager struct {
	mu        sync.RWMutex
	store     Store
	state     State
	cred      model.Credential
	lastErr   string
	onExpired func()
}

// NewManager loads the store. A stored access token means a restore is pending.
func NewManager(store Store) *Manager {
	m := &Manager{store: store, state: StateAnonymous}

	cred, err := store.Load()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load stored session")
		return m
	}
	if cred.AccessToken != "" {
		m.cred = cred
		m.state = StateAuthenticating
	}
	return m
}

// OnExpired registers a hook fired after a 401 has cleared the session
func (m *Manager) OnExpired(fn func()) {
	m.mu.Lock()
	m.onExpired = fn
	m.mu.Unlock()
}

// Token returns the current access token, empty when anonymous
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cred.AccessToken
}

// Unauthorized clears every stored key after the backend rejected the token.
// The expiry hook only fires when a token was actually dropped.
func (m *Manager) Unauthorized() {
	m.mu.Lock()
	hadToken := m.cred.AccessToken != ""
	m.clearLocked()
	hook := m.onExpired
	m.mu.Unlock()

	// 登录失败的 401 不算过期
	if !hadToken {
		return
	}
	log.Info().Msg("Session expired, credentials cleared")
	if hook != nil {
		hook()
	}
}

// BeginLogin marks a login or register as in flight
func (m *Manager) BeginLogin() {
	m.mu.Lock()
	m.state = StateAuthenticating
	m.lastErr = ""
	m.mu.Unlock()
}

// CompleteLogin persists the credential returned by the backend
func (m *Manager) CompleteLogin(cred model.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cred = cred
	m.state = StateAuthenticated
	m.lastErr = ""
	return m.store.Save(cred)
}

// FailLogin records the error and returns to anonymous without persisting anything
func (m *Manager) FailLogin(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = StateAnonymous
	m.lastErr = msg
}

// Restore validates a stored token by fetching the current user.
// Any failure clears the stored session.
func (m *Manager) Restore(ctx context.Context, fetch UserFetcher) error {
	m.mu.RLock()
	state := m.state
	m.mu.RUnlock()

	if state == StateAuthenticated {
		return nil
	}
	if state != StateAuthenticating || m.Token() == "" {
		return ErrNotAuthenticated
	}

	// 请求期间不持锁：401 会回调 Unauthorized
	user, err := fetch(ctx)
	if err != nil || user == nil {
		m.mu.Lock()
		m.clearLocked()
		m.mu.Unlock()
		if err == nil {
			err = ErrNotAuthenticated
		}
		log.Debug().Err(err).Msg("Session restore failed")
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cred.AccessToken == "" {
		return ErrNotAuthenticated
	}
	m.cred.User = user
	m.state = StateAuthenticated
	return m.store.Save(m.cred)
}

// Logout tells the backend (best effort) and then clears the session unconditionally
func (m *Manager) Logout(ctx context.Context, invalidate func(ctx context.Context) error) {
	if invalidate != nil && m.Token() != "" {
		if err := invalidate(ctx); err != nil {
			log.Warn().Err(err).Msg("Logout request failed, clearing session anyway")
		}
	}

	m.mu.Lock()
	m.clearLocked()
	m.lastErr = ""
	m.mu.Unlock()
}

// SetUser replaces the cached user, e.g. after a login response without one
func (m *Manager) SetUser(user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cred.AccessToken == "" {
		return ErrNotAuthenticated
	}
	m.cred.User = user
	return m.store.Save(m.cred)
}

// State returns the lifecycle state
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Authenticated reports whether a token is held
func (m *Manager) Authenticated() bool {
	return m.Token() != ""
}

// User returns a copy of the cached user, nil when none
func (m *Manager) User() *model.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cred.User == nil {
		return nil
	}
	u := *m.cred.User
	return &u
}

// LastError returns the message of the last failed login
func (m *Manager) LastError() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

func (m *Manager) clearLocked() {
	m.cred = model.Credential{}
	m.state = StateAnonymous
	if err := m.store.Clear(); err != nil {
		log.Warn().Err(err).Msg("Failed to clear stored session")
	}
}
