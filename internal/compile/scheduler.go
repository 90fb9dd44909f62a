// Package compile precomputes closed days so that reports read from cache.
package compile

import (
	"context"
	"fmt"
	"time"

	"github.com/goodtune/devtime/internal/metrics"
	"github.com/goodtune/devtime/internal/stats"
	"github.com/goodtune/devtime/internal/storage"
	"github.com/rs/zerolog"
)

// DayCompiler is the part of stats.Compiler the scheduler drives.
type DayCompiler interface {
	StatsForDate(ctx context.Context, user storage.User, date stats.Date, useCache bool) (stats.Summary, error)
	Today(user storage.User) stats.Date
}

// Result summarises one compile run
type Result struct {
	Users    int
	Compiled int
	Failed   int
}

// Scheduler compiles the previous day for every user once a day
type Scheduler struct {
	users       storage.UserStore
	compiler    DayCompiler
	compileTime time.Time // Time of day to compile (only hour and minute are used)
	clock       stats.Clock
	logger      zerolog.Logger
	stopChan    chan struct{}
	doneChan    chan struct{}
}

// NewScheduler creates a new compile scheduler. compileTime is HH:MM in UTC.
func NewScheduler(users storage.UserStore, compiler DayCompiler, compileTime string, clock stats.Clock, logger zerolog.Logger) (*Scheduler, error) {
	parsedTime, err := time.Parse("15:04", compileTime)
	if err != nil {
		return nil, fmt.Errorf("invalid compile time %q: %w", compileTime, err)
	}

	if clock == nil {
		clock = stats.RealClock{}
	}

	return &Scheduler{
		users:       users,
		compiler:    compiler,
		compileTime: parsedTime,
		clock:       clock,
		logger:      logger.With().Str("component", "compile-scheduler").Logger(),
		stopChan:    make(chan struct{}),
		doneChan:    make(chan struct{}),
	}, nil
}

// Start begins the compile scheduler
func (s *Scheduler) Start() {
	go s.run()
	s.logger.Info().
		Str("compile_time", s.compileTime.Format("15:04")).
		Msg("Nightly compile scheduler started")
}

// Stop stops the scheduler and waits for an in-flight run to finish
func (s *Scheduler) Stop() {
	close(s.stopChan)
	<-s.doneChan
	s.logger.Info().Msg("Nightly compile scheduler stopped")
}

func (s *Scheduler) run() {
	defer close(s.doneChan)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-s.stopChan
		cancel()
	}()

	for {
		next := s.nextRun(s.clock.Now())
		wait := next.Sub(s.clock.Now())

		s.logger.Info().
			Time("next_run", next).
			Dur("wait_duration", wait).
			Msg("Scheduled next compile run")

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Error().Err(err).Msg("Compile run failed")
			}
		case <-s.stopChan:
			timer.Stop()
			return
		}
	}
}

// nextRun returns the first compile time strictly after now
func (s *Scheduler) nextRun(now time.Time) time.Time {
	now = now.UTC()

	today := time.Date(
		now.Year(), now.Month(), now.Day(),
		s.compileTime.Hour(), s.compileTime.Minute(), 0, 0,
		time.UTC,
	)

	if !now.Before(today) {
		return today.AddDate(0, 0, 1)
	}
	return today
}

// RunOnce compiles yesterday, in each user's timezone, for every user.
// Per-user failures are logged and counted; only listing users can fail the run.
func (s *Scheduler) RunOnce(ctx context.Context) (Result, error) {
	metrics.CompileRunsTotal.Inc()

	users, err := s.users.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list users: %w", err)
	}

	result := Result{Users: len(users)}
	start := s.clock.Now()

	for _, user := range users {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		day := s.compiler.Today(user).AddDays(-1)
		summary, err := s.compiler.StatsForDate(ctx, user, day, true)
		if err != nil {
			result.Failed++
			metrics.CompileUsersTotal.WithLabelValues("error").Inc()
			s.logger.Error().
				Err(err).
				Str("user_id", user.ID).
				Str("date", day.Key()).
				Msg("Failed to compile daily stats")
			continue
		}

		result.Compiled++
		metrics.CompileUsersTotal.WithLabelValues("ok").Inc()
		s.logger.Debug().
			Str("user_id", user.ID).
			Str("date", day.Key()).
			Int("total_minutes", summary.Total).
			Msg("Compiled daily stats")
	}

	s.logger.Info().
		Int("users", result.Users).
		Int("compiled", result.Compiled).
		Int("failed", result.Failed).
		Dur("duration", s.clock.Now().Sub(start)).
		Msg("Compile run complete")

	return result, nil
}
