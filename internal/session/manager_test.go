// ABOUTME: Tests for the session manager cache and lifecycle behavior
// ABOUTME: Verifies same-instance cache hits, read-through misses, status refresh

package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinaud/adk-sim-plugin/internal/store"
	"github.com/kevinaud/adk-sim-plugin/proto/simv1"
)

func newTestManager(t *testing.T) (*Manager, *store.SQLiteStore) {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "simulator.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return NewManager(s, nil), s
}

func TestManager_CreateAssignsIDAndStatus(t *testing.T) {
	m, _ := newTestManager(t)

	session, err := m.Create(t.Context(), "test run")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Id)
	assert.Equal(t, "test run", session.Description)
	assert.Equal(t, simv1.SessionStatusActive, session.Status)
	require.NotNil(t, session.CreatedAt)
}

func TestManager_GetReturnsSameInstanceOnRepeatedCalls(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := t.Context()

	created, err := m.Create(ctx, "cached")
	require.NoError(t, err)

	first, err := m.Get(ctx, created.Id)
	require.NoError(t, err)
	second, err := m.Get(ctx, created.Id)
	require.NoError(t, err)

	assert.Same(t, first, second, "cache hits must return the same instance")
	assert.Same(t, created, first, "create should seed the cache")
}

func TestManager_GetPopulatesCacheFromStore(t *testing.T) {
	// Simulates a restart: a second manager over the same store must load
	// the session and then serve it from memory.
	m1, s := newTestManager(t)
	ctx := t.Context()

	created, err := m1.Create(ctx, "survives restart")
	require.NoError(t, err)

	m2 := NewManager(s, nil)
	first, err := m2.Get(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, created.Id, first.Id)

	second, err := m2.Get(ctx, created.Id)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestManager_GetUnknownIDReturnsNotFound(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Get(t.Context(), "ghost")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestManager_UpdateStatusRefreshesCache(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := t.Context()

	created, err := m.Create(ctx, "to be completed")
	require.NoError(t, err)

	ok, err := m.UpdateStatus(ctx, created.Id, simv1.SessionStatusCompleted)
	require.NoError(t, err)
	assert.True(t, ok)

	cached, err := m.Get(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, simv1.SessionStatusCompleted, cached.Status)

	ok, err = m.UpdateStatus(ctx, "ghost", simv1.SessionStatusCancelled)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManager_ListBypassesCache(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := t.Context()

	_, err := m.Create(ctx, "one")
	require.NoError(t, err)

	sessions, next, err := m.List(ctx, 10, "")
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
	assert.Empty(t, next)
}
