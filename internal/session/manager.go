// ABOUTME: Session lifecycle manager with a read-through in-memory cache
// ABOUTME: Creation generates ids and persists; lookups populate the cache on miss

// Package session owns simulator session lifecycle. The manager fronts the
// store with a point-lookup cache; list operations always go to the store.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/kevinaud/adk-sim-plugin/internal/store"
	"github.com/kevinaud/adk-sim-plugin/proto/simv1"
)

// Manager creates and looks up sessions. The cache has no eviction; session
// counts are bounded by simulation runs, not end-user traffic.
type Manager struct {
	store  store.Store
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string]*simv1.SimulatorSession
}

// NewManager creates a session manager. Pass nil logger for the default.
func NewManager(s store.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:  s,
		logger: logger.With("component", "session-manager"),
		cache:  make(map[string]*simv1.SimulatorSession),
	}
}

// Create persists a fresh ACTIVE session with a generated id and caches it.
func (m *Manager) Create(ctx context.Context, description string) (*simv1.SimulatorSession, error) {
	session := &simv1.SimulatorSession{
		Id:          uuid.New().String(),
		CreatedAt:   timestamppb.New(time.Now().UTC()),
		Description: description,
		Status:      simv1.SessionStatusActive,
	}

	if err := m.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("persisting session: %w", err)
	}

	m.mu.Lock()
	m.cache[session.Id] = session
	m.mu.Unlock()

	m.logger.Info("session created", "session_id", session.Id, "description", description)
	return session, nil
}

// Get returns the session with the given id. Cache hits return the cached
// instance; misses load from the store and populate the cache, so repeated
// lookups return the same object. Unknown ids return store.ErrNotFound.
func (m *Manager) Get(ctx context.Context, id string) (*simv1.SimulatorSession, error) {
	m.mu.Lock()
	if session, ok := m.cache[id]; ok {
		m.mu.Unlock()
		return session, nil
	}
	m.mu.Unlock()

	session, err := m.store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	// A concurrent Get may have populated the entry; keep the first one so
	// callers keep seeing a single instance per id.
	if cached, ok := m.cache[id]; ok {
		session = cached
	} else {
		m.cache[id] = session
	}
	m.mu.Unlock()

	return session, nil
}

// List delegates to the store's cursor pagination. The cache is a point
// lookup optimization only and is never consulted here.
func (m *Manager) List(ctx context.Context, pageSize int, pageToken string) ([]*simv1.SimulatorSession, string, error) {
	return m.store.ListSessions(ctx, pageSize, pageToken)
}

// UpdateStatus changes a session's status and refreshes the cached copy.
// Returns false when the id is unknown.
func (m *Manager) UpdateStatus(ctx context.Context, id string, status simv1.SessionStatus) (bool, error) {
	ok, err := m.store.UpdateSessionStatus(ctx, id, status)
	if err != nil || !ok {
		return ok, err
	}

	m.mu.Lock()
	if session, cached := m.cache[id]; cached {
		session.Status = status
	}
	m.mu.Unlock()

	m.logger.Info("session status updated", "session_id", id, "status", status.String())
	return true, nil
}
