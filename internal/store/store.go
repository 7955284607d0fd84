// ABOUTME: Store interface for simulator persistence (sessions + event log)
// ABOUTME: Records are stored as opaque proto blobs with promoted columns for filtering

package store

import (
	"context"
	"errors"

	"github.com/kevinaud/adk-sim-plugin/proto/simv1"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// DefaultPageSize is used by ListSessions when the caller passes no page size.
const DefaultPageSize = 50

// Store persists simulator sessions and their append-only event logs.
//
// Every record is written twice: the full-fidelity proto blob (read path) and
// a handful of promoted scalar columns (filter/order path), so the schema
// stays stable while payloads evolve.
type Store interface {
	// CreateSession persists a new session. The session's Status is promoted
	// into its own column for filtering.
	CreateSession(ctx context.Context, session *simv1.SimulatorSession) error

	// GetSession returns the session with the given id, or ErrNotFound.
	GetSession(ctx context.Context, id string) (*simv1.SimulatorSession, error)

	// ListSessions returns a page of sessions ordered created_at DESC.
	// pageToken is an opaque cursor from a previous call; an invalid token
	// restarts from the beginning rather than erroring.
	ListSessions(ctx context.Context, pageSize int, pageToken string) ([]*simv1.SimulatorSession, string, error)

	// UpdateSessionStatus updates a session's status in both the promoted
	// column and the stored blob. Returns false when the id is unknown.
	UpdateSessionStatus(ctx context.Context, id string, status simv1.SessionStatus) (bool, error)

	// InsertEvent appends an event to the log. Synthetic history_complete
	// markers are rejected; they exist only on subscription streams.
	InsertEvent(ctx context.Context, event *simv1.SessionEvent) error

	// EventsBySession returns all events for a session ordered by timestamp
	// ascending (insertion order breaks same-millisecond ties).
	EventsBySession(ctx context.Context, sessionID string) ([]*simv1.SessionEvent, error)

	// EventsByTurn returns all events for a turn ordered by timestamp ascending.
	EventsByTurn(ctx context.Context, turnID string) ([]*simv1.SessionEvent, error)

	// Close releases the underlying database handle.
	Close() error
}
