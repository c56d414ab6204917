// Package identity resolves the current user from session state. The
// repository reads identity through the Provider interface so it stays
// testable without a live auth backend.
package identity

import "sync"

// Provider reports the authenticated user, if any.
type Provider interface {
	// CurrentUserID returns the owner identity of the active session and
	// false when no session exists.
	CurrentUserID() (string, bool)
}

// SessionStore persists session tokens.
type SessionStore interface {
	NewSession(userID string) (string, error)
	GetUserIDByToken(token string) (string, bool, error)
	DeleteSession(token string) error
}

// SessionProvider resolves the process-wide session token through a
// SessionStore. The token may change at any time (login/logout), so every
// read resolves it fresh; in-flight operations observe a mid-flight logout
// as an absent identity, not a crash.
type SessionProvider struct {
	store SessionStore

	mu    sync.RWMutex
	token string
}

// NewSessionProvider builds a provider with no active session.
func NewSessionProvider(store SessionStore) *SessionProvider {
	return &SessionProvider{store: store}
}

// SetToken installs the active session token.
func (p *SessionProvider) SetToken(token string) {
	p.mu.Lock()
	p.token = token
	p.mu.Unlock()
}

// ClearToken drops the active session.
func (p *SessionProvider) ClearToken() {
	p.SetToken("")
}

// CurrentUserID resolves the active token to a user id.
func (p *SessionProvider) CurrentUserID() (string, bool) {
	p.mu.RLock()
	token := p.token
	p.mu.RUnlock()
	if token == "" {
		return "", false
	}
	userID, ok, err := p.store.GetUserIDByToken(token)
	if err != nil || !ok {
		return "", false
	}
	return userID, true
}

// Static is a fixed identity, for tests and single-user tools. The empty
// string means unauthenticated.
type Static string

// CurrentUserID returns the fixed identity.
func (s Static) CurrentUserID() (string, bool) {
	return string(s), s != ""
}
