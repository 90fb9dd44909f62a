package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/goodtune/devtime/internal/storage"
)

type dailyStatsStore struct {
	db *sql.DB
}

func (s *dailyStatsStore) Get(ctx context.Context, userID, dateKey string) (*storage.DailyStats, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM daily_stats WHERE user_id = ? AND date_key = ?`,
		userID, dateKey,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading daily stats: %w", err)
	}

	var stats storage.DailyStats
	if err := json.Unmarshal([]byte(payload), &stats); err != nil {
		return nil, fmt.Errorf("decoding daily stats: %w", err)
	}
	return &stats, nil
}

func (s *dailyStatsStore) Put(ctx context.Context, userID, dateKey string, stats storage.DailyStats) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encoding daily stats: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO daily_stats (user_id, date_key, payload, computed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, date_key) DO UPDATE SET
			payload = excluded.payload,
			computed_at = excluded.computed_at`,
		userID, dateKey, string(payload), stats.ComputedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("writing daily stats: %w", err)
	}
	return nil
}

func (s *dailyStatsStore) Delete(ctx context.Context, userID, dateKey string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM daily_stats WHERE user_id = ? AND date_key = ?`, userID, dateKey,
	); err != nil {
		return fmt.Errorf("deleting daily stats: %w", err)
	}
	return nil
}
