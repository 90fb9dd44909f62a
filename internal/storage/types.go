package storage

import (
	"time"
)

// CodingSession is a contiguous span of coding activity in one language and
// editor. Timestamps are UTC.
type CodingSession struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Language        string    `json:"language"`
	Editor          string    `json:"editor"`
	StartedAt       time.Time `json:"started_at"`
	LastHeartbeatAt time.Time `json:"last_heartbeat_at"`
}

// Length returns the time between the session start and its last heartbeat.
func (s CodingSession) Length() time.Duration {
	return s.LastHeartbeatAt.Sub(s.StartedAt)
}

// DailyStats is the persisted snapshot of one user's stats for one calendar day.
// Durations are whole minutes.
type DailyStats struct {
	Languages  map[string]int `json:"languages"`
	Editors    map[string]int `json:"editors"`
	Total      int            `json:"total"`
	IdleFor    int            `json:"idle_for"`
	ComputedAt time.Time      `json:"computed_at"`
}

// User is a tracked user. Timezone is an IANA identifier and may be empty.
type User struct {
	ID        string    `json:"id"`
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"created_at"`
}
