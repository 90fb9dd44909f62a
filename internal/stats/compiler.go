package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodtune/devtime/internal/metrics"
	"github.com/goodtune/devtime/internal/storage"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// DefaultMemoryCacheSize is the number of day summaries kept in process.
const DefaultMemoryCacheSize = 1024

// Config holds compiler configuration
type Config struct {
	Window WindowConfig

	// DefaultTimezone applies to users without a timezone. Empty means UTC.
	DefaultTimezone string

	// MemoryCacheSize bounds the in-process summary cache.
	MemoryCacheSize int

	// CacheOpenDays persists summaries for days that have not ended yet in
	// the user's timezone. Such summaries go stale as activity continues.
	CacheOpenDays bool

	Clock Clock
}

// Compiler turns calendar-day queries in a user's timezone into UTC windows,
// aggregates them and memoizes the result per user per day.
//
// Compiler is safe for concurrent use.
type Compiler struct {
	sessions storage.SessionStore
	cache    storage.DailyStatsStore
	memory   *lru.Cache[string, Summary]
	group    singleflight.Group
	cfg      Config
	clock    Clock
	logger   zerolog.Logger
}

// NewCompiler creates a new daily stats compiler
func NewCompiler(sessions storage.SessionStore, cache storage.DailyStatsStore, cfg Config, logger zerolog.Logger) (*Compiler, error) {
	if cfg.Window.AcceptableBreak == 0 {
		cfg.Window.AcceptableBreak = DefaultAcceptableBreak
	}
	if cfg.MemoryCacheSize <= 0 {
		cfg.MemoryCacheSize = DefaultMemoryCacheSize
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock{}
	}

	memory, err := lru.New[string, Summary](cfg.MemoryCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create summary cache: %w", err)
	}

	return &Compiler{
		sessions: sessions,
		cache:    cache,
		memory:   memory,
		cfg:      cfg,
		clock:    cfg.Clock,
		logger:   logger.With().Str("component", "stats-compiler").Logger(),
	}, nil
}

// StatsForDate returns the user's stats for one calendar day in their timezone.
//
// With useCache, a memoized summary is returned unchanged when present.
// Otherwise the day is recomputed from sessions and stored, replacing any
// previous entry.
func (c *Compiler) StatsForDate(ctx context.Context, user storage.User, date Date, useCache bool) (Summary, error) {
	key := date.Key()
	memKey := user.ID + ":" + key

	if useCache {
		if summary, ok := c.memory.Get(memKey); ok {
			metrics.StatsCacheHits.WithLabelValues("memory").Inc()
			return summary.Clone(), nil
		}

		stored, err := c.cache.Get(ctx, user.ID, key)
		switch {
		case err == nil:
			metrics.StatsCacheHits.WithLabelValues("store").Inc()
			summary := summaryFromDailyStats(*stored)
			c.memory.Add(memKey, summary)
			return summary.Clone(), nil
		case !errors.Is(err, storage.ErrNotFound):
			return Summary{}, fmt.Errorf("failed to read cached stats for %s: %w", key, err)
		}
	}

	metrics.StatsCacheMisses.Inc()

	// The computation outlives any single caller; each caller only stops waiting
	// when its own context ends.
	flight := c.group.DoChan(memKey, func() (any, error) {
		return c.compileDay(context.WithoutCancel(ctx), user, date)
	})

	select {
	case <-ctx.Done():
		return Summary{}, ctx.Err()
	case res := <-flight:
		if res.Err != nil {
			return Summary{}, res.Err
		}
		if res.Shared {
			c.logger.Debug().Str("user_id", user.ID).Str("date", key).Msg("Shared concurrent day computation")
		}
		return res.Val.(Summary).Clone(), nil
	}
}

// compileDay computes one day from sessions and stores it when the day has closed.
func (c *Compiler) compileDay(ctx context.Context, user storage.User, date Date) (Summary, error) {
	loc := c.Location(user)
	start, end := date.Window(loc)
	key := date.Key()

	sessions, err := c.sessions.FindSessions(ctx, user.ID, start, end)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to find sessions: %w", err)
	}

	summary, err := ComputeWindow(sessions, start, end, c.cfg.Window)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to compute stats for %s: %w", key, err)
	}

	now := c.clock.Now()
	closed := !now.Before(end)

	c.logger.Debug().
		Str("user_id", user.ID).
		Str("date", key).
		Str("timezone", loc.String()).
		Int("sessions", len(sessions)).
		Int("total_minutes", summary.Total).
		Bool("closed", closed).
		Msg("Compiled daily stats")

	if !closed && !c.cfg.CacheOpenDays {
		return summary, nil
	}

	if err := c.cache.Put(ctx, user.ID, key, summary.toDailyStats(now)); err != nil {
		return Summary{}, fmt.Errorf("failed to store stats for %s: %w", key, err)
	}
	c.memory.Add(user.ID+":"+key, summary.Clone())

	return summary, nil
}

// RangeStats returns stats for every day from start to end inclusive, keyed
// by DD-MM-YYYY. Cached days are reused.
func (c *Compiler) RangeStats(ctx context.Context, user storage.User, start, end Date) (map[string]Summary, error) {
	if start.After(end) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange, start, end)
	}

	result := make(map[string]Summary)
	for d := start; !d.After(end); d = d.AddDays(1) {
		summary, err := c.StatsForDate(ctx, user, d, true)
		if err != nil {
			return nil, err
		}
		result[d.Key()] = summary
	}

	return result, nil
}

// RangeStatsFrom is RangeStats for the single day start.
func (c *Compiler) RangeStatsFrom(ctx context.Context, user storage.User, start Date) (map[string]Summary, error) {
	return c.RangeStats(ctx, user, start, start)
}

// CurrentActivity classifies the user's latest session against the current time.
func (c *Compiler) CurrentActivity(ctx context.Context, userID string) (Activity, error) {
	latest, err := c.sessions.FindLatestSession(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		latest = nil
	} else if err != nil {
		return Activity{}, fmt.Errorf("failed to find latest session: %w", err)
	}

	activity := ClassifyActivity(latest, c.clock.Now())
	metrics.ActivityChecks.WithLabelValues(activity.State.String()).Inc()

	return activity, nil
}

// Invalidate drops the memoized stats for a user's day from both cache tiers.
func (c *Compiler) Invalidate(ctx context.Context, userID string, date Date) error {
	key := date.Key()
	c.memory.Remove(userID + ":" + key)

	if err := c.cache.Delete(ctx, userID, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to delete cached stats for %s: %w", key, err)
	}
	return nil
}

// Today returns the current calendar date in the user's timezone.
func (c *Compiler) Today(user storage.User) Date {
	return DateOf(c.clock.Now().In(c.Location(user)))
}

// Location returns the user's timezone, falling back to the configured
// default and then UTC when the identifier is missing or unknown.
func (c *Compiler) Location(user storage.User) *time.Location {
	name := user.Timezone
	if name == "" {
		name = c.cfg.DefaultTimezone
	}
	if name == "" {
		return time.UTC
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("user_id", user.ID).
			Str("timezone", name).
			Msg("Unknown timezone, falling back to UTC")
		return time.UTC
	}
	return loc
}
