package redis

import (
	"fmt"
	"time"

	"github.com/goodtune/devtime/internal/storage"
)

// parseCodingSession converts a Redis hash to CodingSession
func parseCodingSession(data map[string]string) (*storage.CodingSession, error) {
	if len(data) == 0 {
		return nil, storage.ErrNotFound
	}

	startedAt, err := time.Parse(time.RFC3339Nano, data["started_at"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse started_at: %w", err)
	}

	lastHeartbeatAt, err := time.Parse(time.RFC3339Nano, data["last_heartbeat_at"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse last_heartbeat_at: %w", err)
	}

	return &storage.CodingSession{
		ID:              data["id"],
		UserID:          data["user_id"],
		Language:        data["language"],
		Editor:          data["editor"],
		StartedAt:       startedAt.UTC(),
		LastHeartbeatAt: lastHeartbeatAt.UTC(),
	}, nil
}

// parseUser converts a Redis hash to User
func parseUser(data map[string]string) (*storage.User, error) {
	if len(data) == 0 {
		return nil, storage.ErrNotFound
	}

	createdAt, err := time.Parse(time.RFC3339Nano, data["created_at"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return &storage.User{
		ID:        data["id"],
		Timezone:  data["timezone"],
		CreatedAt: createdAt,
	}, nil
}
