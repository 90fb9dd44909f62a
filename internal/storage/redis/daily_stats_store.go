package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goodtune/devtime/internal/storage"
	"github.com/redis/go-redis/v9"
)

type dailyStatsStore struct {
	client *redis.Client
}

// Get retrieves the cached stats for a user's day
func (s *dailyStatsStore) Get(ctx context.Context, userID, dateKey string) (*storage.DailyStats, error) {
	raw, err := s.client.Get(ctx, dailyStatsKey(userID, dateKey)).Bytes()
	if err == redis.Nil {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var stats storage.DailyStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode daily stats: %w", err)
	}

	return &stats, nil
}

// Put stores the stats for a user's day. A single SET keeps the write atomic
// and the entry never expires.
func (s *dailyStatsStore) Put(ctx context.Context, userID, dateKey string, stats storage.DailyStats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to encode daily stats: %w", err)
	}

	return s.client.Set(ctx, dailyStatsKey(userID, dateKey), raw, 0).Err()
}

// Delete removes the stats for a user's day
func (s *dailyStatsStore) Delete(ctx context.Context, userID, dateKey string) error {
	return s.client.Del(ctx, dailyStatsKey(userID, dateKey)).Err()
}
