package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goodtune/devtime/internal/config"
	"github.com/goodtune/devtime/internal/stats"
	"github.com/goodtune/devtime/internal/storage"
	"github.com/goodtune/devtime/internal/storage/redis"
	"github.com/goodtune/devtime/internal/storage/sqlite"
	"github.com/rs/zerolog"
)

func openStorage(cfg config.StorageConfig) (storage.Store, error) {
	storageType := cfg.Type
	if storageType == "" {
		storageType = "redis"
	}

	switch storageType {
	case "redis":
		return redis.Open(cfg.Redis)
	case "sqlite":
		return sqlite.Open(cfg.SQLite.Path)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s (must be redis or sqlite)", storageType)
	}
}

// newCompiler builds a stats compiler from the stats section of cfg
func newCompiler(cfg *config.Config, store storage.Store, logger zerolog.Logger) (*stats.Compiler, error) {
	return stats.NewCompiler(store.Sessions(), store.DailyStats(), stats.Config{
		Window: stats.WindowConfig{
			AcceptableBreak:  cfg.AcceptableBreakDuration(),
			CountLeadingIdle: cfg.Stats.CountLeadingIdle,
		},
		DefaultTimezone: cfg.Stats.DefaultTimezone,
		MemoryCacheSize: cfg.Stats.MemoryCacheSize,
		CacheOpenDays:   cfg.Stats.CacheOpenDays,
	}, logger)
}

// cliEnv is what every reporting command needs
type cliEnv struct {
	cfg      *config.Config
	store    storage.Store
	compiler *stats.Compiler
	logger   zerolog.Logger
}

// openCLI loads configuration and storage for a short-lived command.
// The caller must Close the returned env.
func openCLI() (*cliEnv, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Quiet logger for CLI mode; warnings such as unknown timezones still show
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel).With().Timestamp().Logger()

	store, err := openStorage(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	compiler, err := newCompiler(cfg, store, logger)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize stats compiler: %w", err)
	}

	return &cliEnv{cfg: cfg, store: store, compiler: compiler, logger: logger}, nil
}

func (e *cliEnv) Close() error {
	return e.store.Close()
}

// resolveUser loads a user, falling back to an unregistered user with the
// given timezone override (or the configured default) when none is stored.
func resolveUser(ctx context.Context, users storage.UserStore, id, timezone string) (storage.User, error) {
	user, err := users.Get(ctx, id)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		user = &storage.User{ID: id}
	default:
		return storage.User{}, fmt.Errorf("failed to load user %s: %w", id, err)
	}

	if timezone != "" {
		user.Timezone = timezone
	}
	return *user, nil
}

// setupLogger configures the logger based on configuration
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Set output format
	if cfg.Format == "text" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Default to JSON
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// formatMinutes renders whole minutes as "1h 05m" or "42m"
func formatMinutes(m int) string {
	d := time.Duration(m) * time.Minute
	if d < time.Hour {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %02dm", int(d.Hours()), m%60)
}
