package stats

import (
	"fmt"
	"time"

	"github.com/goodtune/devtime/internal/storage"
)

const (
	// CodingThreshold is how recent the last heartbeat must be for the user to
	// count as actively coding.
	CodingThreshold = 60 * time.Second

	// IdleThreshold is how recent the last heartbeat must be for the user to
	// count as idle rather than away.
	IdleThreshold = 5 * time.Minute
)

// ActivityState classifies what a user is doing right now.
type ActivityState int

const (
	ActivityNoData ActivityState = iota
	ActivityCoding
	ActivityIdle
	ActivityAway
)

func (s ActivityState) String() string {
	switch s {
	case ActivityCoding:
		return "coding"
	case ActivityIdle:
		return "idle"
	case ActivityAway:
		return "away"
	default:
		return "no_data"
	}
}

// Activity is a point-in-time status derived from the latest session.
type Activity struct {
	State ActivityState
	// Session is the latest session; nil for ActivityNoData.
	Session *storage.CodingSession
	// Since is the time elapsed since the session's last heartbeat.
	Since time.Duration
}

// ClassifyActivity derives the activity state from the most recent session.
func ClassifyActivity(latest *storage.CodingSession, now time.Time) Activity {
	if latest == nil {
		return Activity{State: ActivityNoData}
	}

	since := now.Sub(latest.LastHeartbeatAt)
	activity := Activity{Session: latest, Since: since}

	switch {
	case since < CodingThreshold:
		activity.State = ActivityCoding
	case since < IdleThreshold:
		activity.State = ActivityIdle
	default:
		activity.State = ActivityAway
	}

	return activity
}

// Message renders the activity as a sentence for the user.
func (a Activity) Message() string {
	switch a.State {
	case ActivityCoding:
		return fmt.Sprintf("You're writing code right now! Time spent coding: %s, language: %s",
			a.Session.Length(), a.Session.Language)
	case ActivityIdle:
		return fmt.Sprintf("You're idle right now. Before that you wrote %s code for %s",
			a.Session.Language, a.Session.Length())
	case ActivityAway:
		return fmt.Sprintf("You're not writing any code. It's been %s since you last coded.",
			a.Since.Truncate(time.Second))
	default:
		return "No coding activity recorded yet. Connect devtime to your editors to get started!"
	}
}
