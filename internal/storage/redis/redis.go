package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/goodtune/devtime/internal/config"
	"github.com/goodtune/devtime/internal/storage"
	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces every key written by this package.
const keyPrefix = "devtime:"

// Store implements the storage.Store interface using Redis
type Store struct {
	client          *redis.Client
	sessionStore    *sessionStore
	dailyStatsStore *dailyStatsStore
	userStore       *userStore
}

// Open creates a new Redis-backed storage instance
func Open(cfg config.RedisConfig) (*Store, error) {
	// Parse timeouts
	dialTimeout, err := time.ParseDuration(cfg.DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid dial_timeout: %w", err)
	}

	readTimeout, err := time.ParseDuration(cfg.ReadTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid read_timeout: %w", err)
	}

	writeTimeout, err := time.ParseDuration(cfg.WriteTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid write_timeout: %w", err)
	}

	// Host may already carry a port
	addr := cfg.Host
	if cfg.Port > 0 {
		addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  dialTimeout,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	})

	// Ping to verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newStore(client), nil
}

func newStore(client *redis.Client) *Store {
	return &Store{
		client:          client,
		sessionStore:    &sessionStore{client: client},
		dailyStatsStore: &dailyStatsStore{client: client},
		userStore:       &userStore{client: client},
	}
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

// Sessions returns the SessionStore implementation
func (s *Store) Sessions() storage.SessionStore {
	return s.sessionStore
}

// DailyStats returns the DailyStatsStore implementation
func (s *Store) DailyStats() storage.DailyStatsStore {
	return s.dailyStatsStore
}

// Users returns the UserStore implementation
func (s *Store) Users() storage.UserStore {
	return s.userStore
}

func sessionKey(id string) string {
	return keyPrefix + "session:" + id
}

const userIndexPrefix = keyPrefix + "sessions:user:"

func userStartedKey(userID string) string {
	return userIndexPrefix + userID + ":started"
}

func userHeartbeatKey(userID string) string {
	return userIndexPrefix + userID + ":heartbeat"
}

func dailyStatsKey(userID, dateKey string) string {
	return keyPrefix + "stats:daily:" + userID + ":" + dateKey
}

func userKey(id string) string {
	return keyPrefix + "user:" + id
}

const usersSet = keyPrefix + "users"
