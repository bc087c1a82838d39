package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msomdec/bloomy/internal/domain"
	"github.com/msomdec/bloomy/internal/repository/docstore"
	"github.com/msomdec/bloomy/internal/service"
	"github.com/msomdec/bloomy/internal/storage"
)

func newScopes() storage.Scopes {
	return storage.Scopes{Ephemeral: storage.NewMemory(), Durable: storage.NewMemory()}
}

func TestSessionManager_CreateSetsExpiry(t *testing.T) {
	ctx := context.Background()
	m := service.NewSessionManager(newScopes(), 0)
	user := &domain.User{ID: "u1", Email: "jane@x.com", FirstName: "Jane", LastName: "Doe"}

	s, err := m.Create(ctx, user, domain.ScopeEphemeral)
	require.NoError(t, err)
	assert.Equal(t, s.CreatedAt.Add(service.DefaultSessionTTL), s.ExpiresAt)
	assert.Equal(t, "Jane", s.FirstName)
}

func TestSessionManager_LivesInOneScope(t *testing.T) {
	ctx := context.Background()
	scopes := newScopes()
	m := service.NewSessionManager(scopes, time.Hour)
	user := &domain.User{ID: "u1", Email: "jane@x.com"}

	_, err := m.Create(ctx, user, domain.ScopeDurable)
	require.NoError(t, err)
	_, err = m.Create(ctx, user, domain.ScopeEphemeral)
	require.NoError(t, err)

	_, err = scopes.Durable.Get(ctx, docstore.SessionKey)
	assert.ErrorIs(t, err, domain.ErrNotFound, "creating in one scope must clear the other")

	_, scope, err := m.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ScopeEphemeral, scope)
}

func TestSessionManager_PrefersEphemeral(t *testing.T) {
	ctx := context.Background()
	scopes := newScopes()
	m := service.NewSessionManager(scopes, time.Hour)
	future := time.Now().Add(time.Hour)

	require.NoError(t, storage.SetJSON(ctx, scopes.Durable, docstore.SessionKey, domain.Session{UserID: "durable", ExpiresAt: future}))
	require.NoError(t, storage.SetJSON(ctx, scopes.Ephemeral, docstore.SessionKey, domain.Session{UserID: "ephemeral", ExpiresAt: future}))

	s, scope, err := m.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ephemeral", s.UserID)
	assert.Equal(t, domain.ScopeEphemeral, scope)
}

func TestSessionManager_ExpiredSessionIsPurged(t *testing.T) {
	ctx := context.Background()
	scopes := newScopes()
	m := service.NewSessionManager(scopes, time.Hour)

	past := time.Now().Add(-time.Minute)
	require.NoError(t, storage.SetJSON(ctx, scopes.Durable, docstore.SessionKey, domain.Session{UserID: "u1", ExpiresAt: past}))

	s, _, err := m.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)

	_, err = scopes.Durable.Get(ctx, docstore.SessionKey)
	assert.ErrorIs(t, err, domain.ErrNotFound, "reading an expired session must remove it")
}

func TestSessionManager_CorruptSessionIsPurged(t *testing.T) {
	ctx := context.Background()
	scopes := newScopes()
	m := service.NewSessionManager(scopes, time.Hour)
	require.NoError(t, scopes.Ephemeral.Set(ctx, docstore.SessionKey, []byte("{oops")))

	s, _, err := m.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)

	_, err = scopes.Ephemeral.Get(ctx, docstore.SessionKey)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionManager_ClearBothScopes(t *testing.T) {
	ctx := context.Background()
	scopes := newScopes()
	m := service.NewSessionManager(scopes, time.Hour)
	future := time.Now().Add(time.Hour)
	require.NoError(t, storage.SetJSON(ctx, scopes.Durable, docstore.SessionKey, domain.Session{UserID: "a", ExpiresAt: future}))
	require.NoError(t, storage.SetJSON(ctx, scopes.Ephemeral, docstore.SessionKey, domain.Session{UserID: "b", ExpiresAt: future}))

	require.NoError(t, m.Clear(ctx))
	s, _, err := m.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)
}
