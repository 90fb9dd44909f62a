package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/goodtune/devtime/internal/storage"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	sessionID       string
	sessionUser     string
	sessionLanguage string
	sessionEditor   string
	sessionStart    string
	sessionEnd      string
	sessionDuration time.Duration
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage coding sessions",
}

var sessionAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record or extend a coding session",
	Long: `Record a coding session for a user. Times are RFC 3339. Passing --id of an
existing session replaces it, which is how a session is extended.`,
	Example: `  devtime session add --user alice --language go --editor vim --start 2024-01-15T10:00:00Z --duration 45m
  devtime session add --user alice --language go --editor vim --start 2024-01-15T10:00:00Z --end 2024-01-15T11:00:00Z`,
	RunE: runSessionAdd,
}

func init() {
	sessionAddCmd.Flags().StringVar(&sessionID, "id", "", "Session ID (default: new UUID)")
	sessionAddCmd.Flags().StringVar(&sessionUser, "user", "", "User ID (required)")
	sessionAddCmd.Flags().StringVar(&sessionLanguage, "language", "", "Language (required)")
	sessionAddCmd.Flags().StringVar(&sessionEditor, "editor", "", "Editor (required)")
	sessionAddCmd.Flags().StringVar(&sessionStart, "start", "", "Start time, RFC 3339 (required)")
	sessionAddCmd.Flags().StringVar(&sessionEnd, "end", "", "Last heartbeat time, RFC 3339")
	sessionAddCmd.Flags().DurationVar(&sessionDuration, "duration", 0, "Session length, instead of --end")
	for _, name := range []string{"user", "language", "editor", "start"} {
		_ = sessionAddCmd.MarkFlagRequired(name)
	}
	sessionAddCmd.MarkFlagsMutuallyExclusive("end", "duration")

	sessionCmd.AddCommand(sessionAddCmd)
	rootCmd.AddCommand(sessionCmd)
}

func runSessionAdd(cmd *cobra.Command, args []string) error {
	session, err := buildSession(sessionID, sessionUser, sessionLanguage, sessionEditor, sessionStart, sessionEnd, sessionDuration)
	if err != nil {
		return err
	}

	env, err := openCLI()
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.store.Sessions().Upsert(context.Background(), session); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Recorded session %s (%s, %s, %s)\n",
		session.ID, session.Language, session.Editor, session.Length())
	return nil
}

// buildSession validates CLI input into a session
func buildSession(id, userID, language, editor, start, end string, duration time.Duration) (storage.CodingSession, error) {
	startedAt, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return storage.CodingSession{}, fmt.Errorf("invalid --start: %w", err)
	}

	var lastHeartbeatAt time.Time
	switch {
	case end != "":
		if lastHeartbeatAt, err = time.Parse(time.RFC3339, end); err != nil {
			return storage.CodingSession{}, fmt.Errorf("invalid --end: %w", err)
		}
	case duration > 0:
		lastHeartbeatAt = startedAt.Add(duration)
	default:
		return storage.CodingSession{}, fmt.Errorf("one of --end or --duration is required")
	}

	if lastHeartbeatAt.Before(startedAt) {
		return storage.CodingSession{}, fmt.Errorf("session ends before it starts")
	}

	if id == "" {
		id = uuid.NewString()
	}

	return storage.CodingSession{
		ID:              id,
		UserID:          userID,
		Language:        language,
		Editor:          editor,
		StartedAt:       startedAt.UTC(),
		LastHeartbeatAt: lastHeartbeatAt.UTC(),
	}, nil
}
