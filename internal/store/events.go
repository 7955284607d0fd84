// ABOUTME: Append-only event log persistence with promoted correlation columns
// ABOUTME: Events are never mutated or deleted; reads order by timestamp then rowid

package store

import (
	"context"
	"fmt"

	"github.com/kevinaud/adk-sim-plugin/proto/simv1"
)

// InsertEvent appends an event to the log. The promoted columns (session_id,
// turn_id, timestamp millis, payload_type) come from the event itself; the
// blob keeps full fidelity for reads.
func (s *SQLiteStore) InsertEvent(ctx context.Context, event *simv1.SessionEvent) error {
	payloadType := event.PayloadType()
	if payloadType == "history_complete" {
		return fmt.Errorf("history_complete events are synthetic stream markers and are never persisted")
	}

	blob, err := event.MarshalWire()
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	var tsMillis int64
	if event.Timestamp != nil {
		tsMillis = event.Timestamp.AsTime().UnixMilli()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO events (event_id, session_id, turn_id, timestamp, payload_type, proto_blob)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		event.EventId, event.SessionId, event.TurnId, tsMillis, payloadType, blob,
	)
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}

	s.logger.Debug("inserted event",
		"event_id", event.EventId,
		"session_id", event.SessionId,
		"turn_id", event.TurnId,
		"payload_type", payloadType,
	)
	return nil
}

// EventsBySession returns all events for a session in timestamp order.
// rowid breaks ties for events inserted within the same millisecond.
func (s *SQLiteStore) EventsBySession(ctx context.Context, sessionID string) ([]*simv1.SessionEvent, error) {
	return s.queryEvents(ctx,
		`SELECT proto_blob FROM events WHERE session_id = ? ORDER BY timestamp ASC, rowid ASC`,
		sessionID,
	)
}

// EventsByTurn returns all events for a turn in timestamp order.
func (s *SQLiteStore) EventsByTurn(ctx context.Context, turnID string) ([]*simv1.SessionEvent, error) {
	return s.queryEvents(ctx,
		`SELECT proto_blob FROM events WHERE turn_id = ? ORDER BY timestamp ASC, rowid ASC`,
		turnID,
	)
}

func (s *SQLiteStore) queryEvents(ctx context.Context, query string, args ...any) ([]*simv1.SessionEvent, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var events []*simv1.SessionEvent
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("scanning event row: %w", err)
		}
		event := &simv1.SessionEvent{}
		if err := event.UnmarshalWire(blob); err != nil {
			return nil, fmt.Errorf("unmarshaling event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating event rows: %w", err)
	}
	return events, nil
}
