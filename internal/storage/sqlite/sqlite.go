// Package sqlite implements storage.Store on an embedded SQLite database.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goodtune/devtime/internal/storage"
	_ "modernc.org/sqlite"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS coding_sessions (
		id                TEXT PRIMARY KEY,
		user_id           TEXT NOT NULL,
		language          TEXT NOT NULL DEFAULT '',
		editor            TEXT NOT NULL DEFAULT '',
		started_at        INTEGER NOT NULL,
		last_heartbeat_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_coding_sessions_user_started
		ON coding_sessions(user_id, started_at)`,
	`CREATE INDEX IF NOT EXISTS idx_coding_sessions_user_heartbeat
		ON coding_sessions(user_id, last_heartbeat_at)`,
	`CREATE TABLE IF NOT EXISTS daily_stats (
		user_id     TEXT NOT NULL,
		date_key    TEXT NOT NULL,
		payload     TEXT NOT NULL,
		computed_at TEXT NOT NULL,
		PRIMARY KEY (user_id, date_key)
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		timezone   TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
}

// Store implements the storage.Store interface using SQLite
type Store struct {
	db              *sql.DB
	sessionStore    *sessionStore
	dailyStatsStore *dailyStatsStore
	userStore       *userStore
}

// Open opens a SQLite database at path and applies migrations.
// If path is ":memory:", an in-memory database is used.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if path == ":memory:" {
		// Every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{
		db:              db,
		sessionStore:    &sessionStore{db: db},
		dailyStatsStore: &dailyStatsStore{db: db},
		userStore:       &userStore{db: db},
	}, nil
}

func migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Sessions returns the session store
func (s *Store) Sessions() storage.SessionStore {
	return s.sessionStore
}

// DailyStats returns the daily stats store
func (s *Store) DailyStats() storage.DailyStatsStore {
	return s.dailyStatsStore
}

// Users returns the user store
func (s *Store) Users() storage.UserStore {
	return s.userStore
}
