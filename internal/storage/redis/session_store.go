package redis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/goodtune/devtime/internal/storage"
	"github.com/redis/go-redis/v9"
)

type sessionStore struct {
	client *redis.Client
}

// Upsert creates or updates a coding session and its indexes
func (s *sessionStore) Upsert(ctx context.Context, session storage.CodingSession) error {
	script := redis.NewScript(upsertSessionScript)

	keys := []string{
		sessionKey(session.ID),
		userStartedKey(session.UserID),
		userHeartbeatKey(session.UserID),
	}
	args := []interface{}{
		session.ID,
		session.UserID,
		session.Language,
		session.Editor,
		session.StartedAt.UTC().Format(time.RFC3339Nano),
		session.LastHeartbeatAt.UTC().Format(time.RFC3339Nano),
		session.StartedAt.UnixMilli(),
		session.LastHeartbeatAt.UnixMilli(),
		userIndexPrefix,
	}

	return script.Run(ctx, s.client, keys, args...).Err()
}

// FindSessions returns the user's sessions overlapping (start, end), ordered
// by start time
func (s *sessionStore) FindSessions(ctx context.Context, userID string, start, end time.Time) ([]storage.CodingSession, error) {
	// Millisecond scores are truncated, so the index bounds are inclusive and
	// the exact bounds are checked after loading.
	ids, err := redis.NewScript(findSessionsScript).Run(ctx, s.client,
		[]string{userStartedKey(userID), userHeartbeatKey(userID)},
		start.UnixMilli(), end.UnixMilli(),
	).StringSlice()
	if err != nil {
		return nil, err
	}

	loaded, err := s.loadSessions(ctx, ids)
	if err != nil {
		return nil, err
	}

	sessions := make([]storage.CodingSession, 0, len(loaded))
	for _, session := range loaded {
		if session.UserID == userID && session.LastHeartbeatAt.After(start) && session.StartedAt.Before(end) {
			sessions = append(sessions, session)
		}
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.Before(sessions[j].StartedAt)
	})

	return sessions, nil
}

// FindLatestSession returns the session with the most recent heartbeat
func (s *sessionStore) FindLatestSession(ctx context.Context, userID string) (*storage.CodingSession, error) {
	ids, err := s.client.ZRevRange(ctx, userHeartbeatKey(userID), 0, 0).Result()
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return nil, storage.ErrNotFound
	}

	data, err := s.client.HGetAll(ctx, sessionKey(ids[0])).Result()
	if err != nil {
		return nil, err
	}

	session, err := parseCodingSession(data)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, storage.ErrNotFound
	}

	return session, nil
}

// loadSessions fetches session hashes in one pipeline
func (s *sessionStore) loadSessions(ctx context.Context, ids []string) ([]storage.CodingSession, error) {
	if len(ids) == 0 {
		return []storage.CodingSession{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))

	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, sessionKey(id))
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}

	sessions := make([]storage.CodingSession, 0, len(ids))
	for i, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil || len(data) == 0 {
			// Index entry without a session hash
			continue
		}

		session, err := parseCodingSession(data)
		if err != nil {
			return nil, fmt.Errorf("session %s: %w", ids[i], err)
		}
		sessions = append(sessions, *session)
	}

	return sessions, nil
}
