package stats

import (
	"fmt"
	"time"

	"github.com/goodtune/devtime/internal/metrics"
	"github.com/goodtune/devtime/internal/storage"
)

const (
	// DefaultAcceptableBreak is the idle threshold used when none is configured.
	DefaultAcceptableBreak = 5 * time.Minute

	// roundingBias is added before truncating to whole minutes so durations
	// round to the nearest minute instead of down.
	roundingBias = 30 * time.Second
)

// WindowConfig tunes the window aggregator.
type WindowConfig struct {
	// AcceptableBreak is the longest gap between sessions that is not idle time.
	AcceptableBreak time.Duration

	// CountLeadingIdle also measures the gap between the window start and the
	// first session.
	CountLeadingIdle bool
}

// ComputeWindow aggregates sessions clipped to [windowStart, windowEnd].
//
// Sessions must be ordered by StartedAt ascending and should already be
// filtered to those overlapping the window. Each session credits its clipped
// duration to its language and editor, while Total only grows by the part of
// the session not covered by earlier ones.
func ComputeWindow(sessions []storage.CodingSession, windowStart, windowEnd time.Time, cfg WindowConfig) (Summary, error) {
	if windowStart.After(windowEnd) {
		return Summary{}, fmt.Errorf("%w: %s > %s", ErrInvalidWindow,
			windowStart.Format(time.RFC3339), windowEnd.Format(time.RFC3339))
	}

	start := time.Now()
	defer func() {
		metrics.WindowComputations.Inc()
		metrics.WindowDuration.Observe(time.Since(start).Seconds())
		metrics.SessionsScanned.Add(float64(len(sessions)))
	}()

	summary := NewSummary()
	lastOnRight := windowStart

	for i, session := range sessions {
		if session.LastHeartbeatAt.Before(session.StartedAt) {
			return Summary{}, fmt.Errorf("%w: session %s", ErrCorruptSession, session.ID)
		}

		left := minTime(maxTime(session.StartedAt, windowStart), windowEnd)
		right := minTime(session.LastHeartbeatAt, windowEnd)
		if right.Before(left) {
			// Entirely outside the window.
			right = left
		}

		if i > 0 || cfg.CountLeadingIdle {
			if gap := left.Sub(lastOnRight); gap > cfg.AcceptableBreak {
				summary.IdleFor += roundMinutes(gap)
			}
		}

		duration := biasedMinutes(right.Sub(left))
		summary.Languages[session.Language] += duration
		summary.Editors[session.Editor] += duration

		uncovered := maxTime(right, lastOnRight).Sub(maxTime(left, lastOnRight))
		summary.Total += biasedMinutes(uncovered)

		lastOnRight = maxTime(right, lastOnRight)
	}

	return summary, nil
}

// biasedMinutes converts d to whole minutes after adding the half-minute bias:
// 89s is 1 minute, 90s is 2.
func biasedMinutes(d time.Duration) int {
	return int((d + roundingBias) / time.Minute)
}

func roundMinutes(d time.Duration) int {
	return int(d.Round(time.Minute) / time.Minute)
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
