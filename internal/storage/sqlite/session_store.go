package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goodtune/devtime/internal/storage"
)

const sessionColumns = `id, user_id, language, editor, started_at, last_heartbeat_at`

// Timestamps are stored as Unix nanoseconds so range predicates compare numerically.
type sessionStore struct {
	db *sql.DB
}

func (s *sessionStore) Upsert(ctx context.Context, session storage.CodingSession) error {
	query := `INSERT INTO coding_sessions (` + sessionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			language = excluded.language,
			editor = excluded.editor,
			started_at = excluded.started_at,
			last_heartbeat_at = excluded.last_heartbeat_at`
	_, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.Language,
		session.Editor,
		session.StartedAt.UnixNano(),
		session.LastHeartbeatAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("upserting coding session: %w", err)
	}
	return nil
}

func (s *sessionStore) FindSessions(ctx context.Context, userID string, start, end time.Time) ([]storage.CodingSession, error) {
	query := `SELECT ` + sessionColumns + `
		FROM coding_sessions
		WHERE user_id = ? AND last_heartbeat_at > ? AND started_at < ?
		ORDER BY started_at, id`
	rows, err := s.db.QueryContext(ctx, query, userID, start.UnixNano(), end.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("finding coding sessions: %w", err)
	}
	defer rows.Close()

	sessions := []storage.CodingSession{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating coding sessions: %w", err)
	}
	return sessions, nil
}

func (s *sessionStore) FindLatestSession(ctx context.Context, userID string) (*storage.CodingSession, error) {
	query := `SELECT ` + sessionColumns + `
		FROM coding_sessions
		WHERE user_id = ?
		ORDER BY last_heartbeat_at DESC
		LIMIT 1`
	session, err := scanSession(s.db.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	return session, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*storage.CodingSession, error) {
	var session storage.CodingSession
	var startedAt, lastHeartbeatAt int64

	if err := row.Scan(
		&session.ID, &session.UserID, &session.Language, &session.Editor, &startedAt, &lastHeartbeatAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning coding session: %w", err)
	}

	session.StartedAt = time.Unix(0, startedAt).UTC()
	session.LastHeartbeatAt = time.Unix(0, lastHeartbeatAt).UTC()
	return &session, nil
}
