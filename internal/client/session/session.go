// Package session keeps the signed-in user's token on the device and hands
// out a remote client authenticated as that user.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"expense-tracker-go/internal/client/remote"
	"expense-tracker-go/internal/model"
	"expense-tracker-go/pkg/logger"
)

var (
	ErrNotAuthenticated = errors.New("not signed in")
	ErrSessionExpired   = errors.New("session expired, sign in again")
)

type Store interface {
	Session(ctx context.Context) (*model.AuthSession, error)
	SaveSession(ctx context.Context, session model.AuthSession) error
	ClearSession(ctx context.Context) error
}

type Manager struct {
	store Store
	base  *remote.Client
	log   logger.Logger

	mu      sync.RWMutex
	current *model.AuthSession
}

// NewManager wraps base, an anonymous client, with session handling.
func NewManager(store Store, base *remote.Client, log logger.Logger) *Manager {
	return &Manager{store: store, base: base, log: log}
}

func (m *Manager) Register(ctx context.Context, name, email, password string) (model.AuthSession, error) {
	session, err := m.base.Register(ctx, name, email, password)
	if err != nil {
		return model.AuthSession{}, err
	}
	if err := m.save(ctx, session); err != nil {
		return model.AuthSession{}, err
	}
	m.log.Info("session.register: account created", "user_id", session.User.ID)
	return session, nil
}

func (m *Manager) Login(ctx context.Context, email, password string) (model.AuthSession, error) {
	session, err := m.base.Login(ctx, email, password)
	if err != nil {
		return model.AuthSession{}, err
	}
	if err := m.save(ctx, session); err != nil {
		return model.AuthSession{}, err
	}
	m.log.Info("session.login: signed in", "user_id", session.User.ID)
	return session, nil
}

// ResetPassword asks the server for a reset token for email.
func (m *Manager) ResetPassword(ctx context.Context, email string) (string, error) {
	return m.base.ResetPassword(ctx, email)
}

// Restore loads the persisted session without contacting the server.
func (m *Manager) Restore(ctx context.Context) (*model.AuthSession, error) {
	stored, err := m.store.Session(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	m.mu.Lock()
	m.current = stored
	m.mu.Unlock()
	return copySession(stored), nil
}

// Validate checks the token against the server. A rejected token clears the
// stored session and yields ErrSessionExpired. When the server cannot be
// reached the stored user is returned unchanged.
func (m *Manager) Validate(ctx context.Context) (model.User, error) {
	current := m.Current()
	if current == nil {
		return model.User{}, ErrNotAuthenticated
	}

	user, err := m.base.WithToken(current.Token).Me(ctx)
	switch {
	case err == nil:
	case errors.Is(err, remote.ErrUnauthorized):
		m.log.Warn("session.validate: token rejected, clearing session", "user_id", current.User.ID)
		if clearErr := m.Logout(ctx); clearErr != nil {
			return model.User{}, clearErr
		}
		return model.User{}, ErrSessionExpired
	case remote.IsRetryable(err):
		m.log.Debug("session.validate: server unreachable, keeping session", "err", err)
		return current.User, nil
	default:
		return model.User{}, err
	}

	if user != current.User {
		refreshed := model.AuthSession{User: user, Token: current.Token}
		if err := m.save(ctx, refreshed); err != nil {
			return model.User{}, err
		}
	}
	return user, nil
}

func (m *Manager) Logout(ctx context.Context) error {
	if err := m.store.ClearSession(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
	return nil
}

func (m *Manager) Current() *model.AuthSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copySession(m.current)
}

// Client returns a remote client carrying the session token, or nil when
// signed out.
func (m *Manager) Client() *remote.Client {
	current := m.Current()
	if current == nil {
		return nil
	}
	return m.base.WithToken(current.Token)
}

func (m *Manager) save(ctx context.Context, session model.AuthSession) error {
	if err := m.store.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	m.mu.Lock()
	m.current = &session
	m.mu.Unlock()
	return nil
}

func copySession(s *model.AuthSession) *model.AuthSession {
	if s == nil {
		return nil
	}
	copied := *s
	return &copied
}
