package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"mindboost/internal/modules/auth/domain"
	authout "mindboost/internal/modules/auth/port/out"
	apperrors "mindboost/internal/platform/errors"
)

// SessionManager owns the single Session of the process. Reads come from
// tea.Cmd goroutines attaching the credential, so the token is guarded.
type SessionManager struct {
	store authout.CredentialStore
	auth  authout.Authenticator

	mu      sync.RWMutex
	session domain.Session
}

func NewSessionManager(store authout.CredentialStore, auth authout.Authenticator) *SessionManager {
	return &SessionManager{store: store, auth: auth}
}

// Restore seeds the in-memory session from the credential store.
func (m *SessionManager) Restore(ctx context.Context) error {
	token, err := m.store.Get(ctx, domain.TokenKey)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoCredential) {
			m.set("")
			return nil
		}
		return fmt.Errorf("restore session: %w", err)
	}
	m.set(token)
	return nil
}

// Login leaves the session untouched on any failure.
func (m *SessionManager) Login(ctx context.Context, identifier, secret string) (domain.Session, error) {
	token, err := m.auth.Authenticate(ctx, identifier, secret)
	if err != nil {
		return domain.Session{}, err
	}
	if err := m.store.Set(ctx, domain.TokenKey, token); err != nil {
		return domain.Session{}, fmt.Errorf("persist token: %w", err)
	}
	m.set(token)
	return domain.Session{Token: token}, nil
}

// Logout is idempotent. The in-memory token is dropped even when clearing the
// persisted copy fails.
func (m *SessionManager) Logout(ctx context.Context) error {
	m.set("")
	if err := m.store.Clear(ctx, domain.TokenKey); err != nil {
		return fmt.Errorf("clear persisted token: %w", err)
	}
	return nil
}

func (m *SessionManager) IsAuthenticated() bool {
	return m.Session().Authenticated()
}

func (m *SessionManager) Session() domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

func (m *SessionManager) Token() string {
	return m.Session().Token
}

func (m *SessionManager) set(token string) {
	m.mu.Lock()
	m.session = domain.Session{Token: token}
	m.mu.Unlock()
}
