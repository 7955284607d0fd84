// ABOUTME: Session persistence: promoted-field writes, blob reads, cursor pagination
// ABOUTME: ListSessions pages on created_at DESC with an opaque base64 token

package store

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/kevinaud/adk-sim-plugin/proto/simv1"
)

// CreateSession persists a session as a proto blob plus promoted columns
// (id, created_at unix seconds, status name).
func (s *SQLiteStore) CreateSession(ctx context.Context, session *simv1.SimulatorSession) error {
	blob, err := session.MarshalWire()
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	var createdAt int64
	if session.CreatedAt != nil {
		createdAt = session.CreatedAt.AsTime().Unix()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, created_at, status, proto_blob) VALUES (?, ?, ?, ?)`,
		session.Id, createdAt, session.Status.String(), blob,
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	s.logger.Debug("created session", "session_id", session.Id, "status", session.Status.String())
	return nil
}

// GetSession loads a session by id, deserializing the stored blob.
func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*simv1.SimulatorSession, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT proto_blob FROM sessions WHERE id = ?`, id,
	).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}

	session := &simv1.SimulatorSession{}
	if err := session.UnmarshalWire(blob); err != nil {
		return nil, fmt.Errorf("unmarshaling session %s: %w", id, err)
	}
	return session, nil
}

// ListSessions returns sessions ordered created_at DESC, one page at a time.
// It fetches pageSize+1 rows; when the extra row exists, the last returned
// row's created_at becomes the next page token. An invalid token restarts
// from the beginning.
func (s *SQLiteStore) ListSessions(ctx context.Context, pageSize int, pageToken string) ([]*simv1.SimulatorSession, string, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	query := `SELECT proto_blob FROM sessions`
	args := []any{}
	if pageToken != "" {
		if before, ok := decodePageToken(pageToken); ok {
			query += ` WHERE created_at < ?`
			args = append(args, before)
		} else {
			s.logger.Warn("invalid page token, listing from beginning", "page_token", pageToken)
		}
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, pageSize+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*simv1.SimulatorSession
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, "", fmt.Errorf("scanning session row: %w", err)
		}
		session := &simv1.SimulatorSession{}
		if err := session.UnmarshalWire(blob); err != nil {
			return nil, "", fmt.Errorf("unmarshaling session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("iterating session rows: %w", err)
	}

	var nextToken string
	if len(sessions) > pageSize {
		sessions = sessions[:pageSize]
		last := sessions[len(sessions)-1]
		var createdAt int64
		if last.CreatedAt != nil {
			createdAt = last.CreatedAt.AsTime().Unix()
		}
		nextToken = encodePageToken(createdAt)
	}

	return sessions, nextToken, nil
}

// UpdateSessionStatus rewrites both the promoted status column and the
// session blob. Returns false when the id is unknown.
func (s *SQLiteStore) UpdateSessionStatus(ctx context.Context, id string, status simv1.SessionStatus) (bool, error) {
	session, err := s.GetSession(ctx, id)
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	session.Status = status
	blob, err := session.MarshalWire()
	if err != nil {
		return false, fmt.Errorf("marshaling session: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET status = ?, proto_blob = ? WHERE id = ?`,
		status.String(), blob, id,
	)
	if err != nil {
		return false, fmt.Errorf("updating session status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking update result: %w", err)
	}

	s.logger.Debug("updated session status", "session_id", id, "status", status.String())
	return n > 0, nil
}

// encodePageToken turns a created_at value into an opaque cursor.
func encodePageToken(createdAt int64) string {
	return base64.StdEncoding.EncodeToString([]byte(strconv.FormatInt(createdAt, 10)))
}

// decodePageToken reverses encodePageToken; ok is false for garbage tokens.
func decodePageToken(token string) (int64, bool) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return 0, false
	}
	v, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
