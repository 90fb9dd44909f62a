package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a record is missing from storage.
var ErrNotFound = errors.New("storage: record not found")

// Store represents the root storage interface.
type Store interface {
	Close() error
	Sessions() SessionStore
	DailyStats() DailyStatsStore
	Users() UserStore
}

// SessionStore gives read access to coding sessions produced by heartbeat
// ingestion. Upsert exists for seeding and the CLI; the aggregation path only
// reads.
type SessionStore interface {
	Upsert(ctx context.Context, session CodingSession) error
	// FindSessions returns sessions with LastHeartbeatAt > start and
	// StartedAt < end, ordered by StartedAt ascending.
	FindSessions(ctx context.Context, userID string, start, end time.Time) ([]CodingSession, error)
	// FindLatestSession returns the session with the most recent heartbeat,
	// or ErrNotFound when the user has none.
	FindLatestSession(ctx context.Context, userID string) (*CodingSession, error)
}

// DailyStatsStore memoizes per-day stats, keyed by user and DD-MM-YYYY date.
type DailyStatsStore interface {
	Get(ctx context.Context, userID, dateKey string) (*DailyStats, error)
	Put(ctx context.Context, userID, dateKey string, stats DailyStats) error
	Delete(ctx context.Context, userID, dateKey string) error
}

// UserStore manages tracked users.
type UserStore interface {
	Get(ctx context.Context, id string) (*User, error)
	Upsert(ctx context.Context, user User) error
	List(ctx context.Context) ([]User, error)
}
