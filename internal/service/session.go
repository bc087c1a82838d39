package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/msomdec/bloomy/internal/domain"
	"github.com/msomdec/bloomy/internal/repository/docstore"
	"github.com/msomdec/bloomy/internal/storage"
)

// DefaultSessionTTL is the lifetime of a login.
const DefaultSessionTTL = 7 * 24 * time.Hour

// SessionManager keeps the single active session of one browser. The
// session lives in the ephemeral store unless the shopper asked to be
// remembered, and is present in at most one of the two stores.
type SessionManager struct {
	scopes storage.Scopes
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionManager creates a SessionManager over a browser's stores.
func NewSessionManager(scopes storage.Scopes, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionManager{scopes: scopes, ttl: ttl, now: time.Now}
}

// Create stores a new session for user in scope, replacing any other.
func (m *SessionManager) Create(ctx context.Context, user *domain.User, scope domain.Scope) (*domain.Session, error) {
	now := m.now().UTC()
	session := &domain.Session{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	other := domain.ScopeDurable
	if scope == domain.ScopeDurable {
		other = domain.ScopeEphemeral
	}
	if err := m.scopes.Of(other).Remove(ctx, docstore.SessionKey); err != nil {
		return nil, fmt.Errorf("remove %s session: %w", other, err)
	}
	if err := storage.SetJSON(ctx, m.scopes.Of(scope), docstore.SessionKey, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return session, nil
}

// Get returns the active session and the scope it was found in, preferring
// the ephemeral store. A nil session means nobody is logged in. Expired and
// unreadable sessions are cleared as a side effect.
func (m *SessionManager) Get(ctx context.Context) (*domain.Session, domain.Scope, error) {
	for _, scope := range []domain.Scope{domain.ScopeEphemeral, domain.ScopeDurable} {
		var session domain.Session
		ok, err := storage.GetJSON(ctx, m.scopes.Of(scope), docstore.SessionKey, &session)
		if err != nil {
			if !errors.Is(err, domain.ErrCorruptState) {
				return nil, "", err
			}
			slog.Warn("discarding unreadable session", "scope", scope, "error", err)
			if err := m.Clear(ctx); err != nil {
				return nil, "", err
			}
			return nil, "", nil
		}
		if !ok {
			continue
		}
		if session.Expired(m.now()) {
			if err := m.Clear(ctx); err != nil {
				return nil, "", err
			}
			return nil, "", nil
		}
		return &session, scope, nil
	}
	return nil, "", nil
}

// Clear removes the session from both stores. It is idempotent.
func (m *SessionManager) Clear(ctx context.Context) error {
	for _, scope := range []domain.Scope{domain.ScopeEphemeral, domain.ScopeDurable} {
		if err := m.scopes.Of(scope).Remove(ctx, docstore.SessionKey); err != nil {
			return fmt.Errorf("clear %s session: %w", scope, err)
		}
	}
	return nil
}
