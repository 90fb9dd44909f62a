package stats

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/goodtune/devtime/internal/storage"
	"github.com/rs/zerolog"
)

// memSessionStore is an in-memory storage.SessionStore for tests.
type memSessionStore struct {
	mu        sync.Mutex
	sessions  []storage.CodingSession
	err       error
	lastStart time.Time
	lastEnd   time.Time
	finds     int
}

func (m *memSessionStore) Upsert(ctx context.Context, session storage.CodingSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.sessions {
		if m.sessions[i].ID == session.ID {
			m.sessions[i] = session
			return nil
		}
	}
	m.sessions = append(m.sessions, session)
	return nil
}

func (m *memSessionStore) FindSessions(ctx context.Context, userID string, start, end time.Time) ([]storage.CodingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.finds++
	m.lastStart, m.lastEnd = start, end
	if m.err != nil {
		return nil, m.err
	}

	var out []storage.CodingSession
	for _, s := range m.sessions {
		if s.UserID == userID && s.LastHeartbeatAt.After(start) && s.StartedAt.Before(end) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out, nil
}

func (m *memSessionStore) FindLatestSession(ctx context.Context, userID string) (*storage.CodingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	var latest *storage.CodingSession
	for i := range m.sessions {
		s := m.sessions[i]
		if s.UserID != userID {
			continue
		}
		if latest == nil || s.LastHeartbeatAt.After(latest.LastHeartbeatAt) {
			latest = &s
		}
	}
	if latest == nil {
		return nil, storage.ErrNotFound
	}
	return latest, nil
}

func (m *memSessionStore) findCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.finds
}

// memDailyStore is an in-memory storage.DailyStatsStore for tests.
type memDailyStore struct {
	mu      sync.Mutex
	entries map[string]storage.DailyStats
	puts    int
}

func newMemDailyStore() *memDailyStore {
	return &memDailyStore{entries: make(map[string]storage.DailyStats)}
}

func (m *memDailyStore) Get(ctx context.Context, userID, dateKey string) (*storage.DailyStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ds, ok := m.entries[userID+":"+dateKey]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &ds, nil
}

func (m *memDailyStore) Put(ctx context.Context, userID, dateKey string, stats storage.DailyStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.puts++
	m.entries[userID+":"+dateKey] = stats
	return nil
}

func (m *memDailyStore) Delete(ctx context.Context, userID, dateKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, userID+":"+dateKey)
	return nil
}

func (m *memDailyStore) putCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}

func newTestCompiler(t *testing.T, sessions storage.SessionStore, cache storage.DailyStatsStore, cfg Config) *Compiler {
	t.Helper()

	c, err := NewCompiler(sessions, cache, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewCompiler failed: %v", err)
	}
	return c
}

// at returns 2024-01-15 at the given UTC clock time.
func at(hour, min, sec int) time.Time {
	return time.Date(2024, 1, 15, hour, min, sec, 0, time.UTC)
}

func session(id, lang, editor string, start, end time.Time) storage.CodingSession {
	return storage.CodingSession{
		ID:              id,
		UserID:          "user-1",
		Language:        lang,
		Editor:          editor,
		StartedAt:       start,
		LastHeartbeatAt: end,
	}
}

func assertNonNegative(t *testing.T, s Summary) {
	t.Helper()

	if s.Total < 0 || s.IdleFor < 0 {
		t.Errorf("negative totals: total=%d idle_for=%d", s.Total, s.IdleFor)
	}
	for k, v := range s.Languages {
		if v < 0 {
			t.Errorf("negative language bucket %s=%d", k, v)
		}
	}
	for k, v := range s.Editors {
		if v < 0 {
			t.Errorf("negative editor bucket %s=%d", k, v)
		}
	}
}
