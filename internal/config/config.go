package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the complete application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Logging LoggingConfig `mapstructure:"logging"`
	Stats   StatsConfig   `mapstructure:"stats"`
}

// ServerConfig defines server ports and addresses
type ServerConfig struct {
	BindAddress string `mapstructure:"bind_address"`
	MetricsPort int    `mapstructure:"metrics_port"`
}

// StorageConfig defines storage backend settings
type StorageConfig struct {
	Type   string       `mapstructure:"type"` // "redis" or "sqlite"
	Redis  RedisConfig  `mapstructure:"redis"`
	SQLite SQLiteConfig `mapstructure:"sqlite"`
}

// RedisConfig defines Redis connection settings
type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
	DialTimeout  string `mapstructure:"dial_timeout"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
}

// SQLiteConfig defines SQLite database settings
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig defines logging behavior
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StatsConfig defines aggregation and caching behavior
type StatsConfig struct {
	AcceptableBreak  string `mapstructure:"acceptable_break"`   // Longest gap between sessions that is not idle
	CountLeadingIdle bool   `mapstructure:"count_leading_idle"` // Count the gap before the first session as idle
	DefaultTimezone  string `mapstructure:"default_timezone"`   // Applied to users without a timezone
	MemoryCacheSize  int    `mapstructure:"memory_cache_size"`  // In-process day summaries
	CacheOpenDays    bool   `mapstructure:"cache_open_days"`    // Persist days that have not ended yet
	CompileTime      string `mapstructure:"compile_time"`       // HH:MM (UTC) of the nightly compile run
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	SetDefaults(v)

	// Configure viper
	v.SetConfigFile(configPath)
	v.SetEnvPrefix("DEVTIME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and environment variables
	}

	// Unmarshal config
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate config
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Defaults returns a configuration populated only with default values.
func Defaults() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// SetDefaults sets default configuration values
func SetDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.bind_address", "0.0.0.0")
	v.SetDefault("server.metrics_port", 9090)

	// Storage defaults
	v.SetDefault("storage.type", "redis")
	v.SetDefault("storage.redis.host", "localhost")
	v.SetDefault("storage.redis.port", 6379)
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.pool_size", 10)
	v.SetDefault("storage.redis.min_idle_conns", 5)
	v.SetDefault("storage.redis.dial_timeout", "5s")
	v.SetDefault("storage.redis.read_timeout", "3s")
	v.SetDefault("storage.redis.write_timeout", "3s")
	v.SetDefault("storage.sqlite.path", "/var/lib/devtime/devtime.db")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Stats defaults
	v.SetDefault("stats.acceptable_break", "5m")
	v.SetDefault("stats.count_leading_idle", false)
	v.SetDefault("stats.default_timezone", "UTC")
	v.SetDefault("stats.memory_cache_size", 1024)
	v.SetDefault("stats.cache_open_days", false)
	v.SetDefault("stats.compile_time", "00:15")
}

// ValidKeys returns the set of all recognised configuration keys.
func ValidKeys() map[string]bool {
	v := viper.New()
	SetDefaults(v)

	keys := make(map[string]bool)
	for _, key := range v.AllKeys() {
		keys[key] = true
	}
	return keys
}

// AcceptableBreakDuration parses stats.acceptable_break.
func (c *Config) AcceptableBreakDuration() time.Duration {
	d, err := time.ParseDuration(c.Stats.AcceptableBreak)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// validate validates the configuration
func validate(cfg *Config) error {
	if cfg.Server.MetricsPort < 0 || cfg.Server.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", cfg.Server.MetricsPort)
	}

	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "redis"
	}

	switch cfg.Storage.Type {
	case "redis":
		if cfg.Storage.Redis.Host == "" {
			return fmt.Errorf("storage.redis.host is required")
		}
	case "sqlite":
		if cfg.Storage.SQLite.Path == "" {
			return fmt.Errorf("storage.sqlite.path is required")
		}
		// Ensure storage directory exists
		if cfg.Storage.SQLite.Path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.Storage.SQLite.Path), 0755); err != nil {
				return fmt.Errorf("failed to create storage directory: %w", err)
			}
		}
	default:
		return fmt.Errorf("unsupported storage type: %s (must be redis or sqlite)", cfg.Storage.Type)
	}

	d, err := time.ParseDuration(cfg.Stats.AcceptableBreak)
	if err != nil {
		return fmt.Errorf("invalid stats.acceptable_break: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("stats.acceptable_break must be positive")
	}

	if cfg.Stats.DefaultTimezone != "" {
		if _, err := time.LoadLocation(cfg.Stats.DefaultTimezone); err != nil {
			return fmt.Errorf("invalid stats.default_timezone: %w", err)
		}
	}

	if cfg.Stats.MemoryCacheSize <= 0 {
		return fmt.Errorf("stats.memory_cache_size must be positive")
	}

	if _, err := time.Parse("15:04", cfg.Stats.CompileTime); err != nil {
		return fmt.Errorf("invalid stats.compile_time (want HH:MM): %w", err)
	}

	return nil
}
