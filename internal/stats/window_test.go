package stats

import (
	"errors"
	"testing"
	"time"

	"github.com/goodtune/devtime/internal/storage"
)

func TestComputeWindow(t *testing.T) {
	dayStart, dayEnd := at(0, 0, 0), at(23, 59, 59)

	tests := []struct {
		name          string
		sessions      []storage.CodingSession
		start, end    time.Time
		cfg           WindowConfig
		wantTotal     int
		wantIdle      int
		wantLanguages map[string]int
		wantEditors   map[string]int
	}{
		{
			name:          "no sessions",
			start:         dayStart,
			end:           dayEnd,
			cfg:           WindowConfig{AcceptableBreak: 5 * time.Minute},
			wantLanguages: map[string]int{},
			wantEditors:   map[string]int{},
		},
		{
			name: "gap at threshold is not idle",
			sessions: []storage.CodingSession{
				session("a", "go", "vim", at(10, 0, 0), at(10, 10, 0)),
				session("b", "go", "vim", at(10, 15, 0), at(10, 20, 0)),
			},
			start:         dayStart,
			end:           dayEnd,
			cfg:           WindowConfig{AcceptableBreak: 5 * time.Minute},
			wantTotal:     15,
			wantIdle:      0,
			wantLanguages: map[string]int{"go": 15},
			wantEditors:   map[string]int{"vim": 15},
		},
		{
			name: "gap above threshold is idle",
			sessions: []storage.CodingSession{
				session("a", "go", "vim", at(10, 0, 0), at(10, 10, 0)),
				session("b", "python", "vscode", at(10, 16, 0), at(10, 20, 0)),
			},
			start:         dayStart,
			end:           dayEnd,
			cfg:           WindowConfig{AcceptableBreak: 5 * time.Minute},
			wantTotal:     14,
			wantIdle:      6,
			wantLanguages: map[string]int{"go": 10, "python": 4},
			wantEditors:   map[string]int{"vim": 10, "vscode": 4},
		},
		{
			name: "leading gap counted when enabled",
			sessions: []storage.CodingSession{
				session("a", "go", "vim", at(10, 0, 0), at(10, 10, 0)),
			},
			start:         dayStart,
			end:           dayEnd,
			cfg:           WindowConfig{AcceptableBreak: 5 * time.Minute, CountLeadingIdle: true},
			wantTotal:     10,
			wantIdle:      600,
			wantLanguages: map[string]int{"go": 10},
			wantEditors:   map[string]int{"vim": 10},
		},
		{
			name: "contained session does not add to total",
			sessions: []storage.CodingSession{
				session("a", "x", "vim", at(10, 0, 0), at(10, 30, 0)),
				session("b", "y", "emacs", at(10, 10, 0), at(10, 20, 0)),
			},
			start:         dayStart,
			end:           dayEnd,
			cfg:           WindowConfig{AcceptableBreak: 5 * time.Minute},
			wantTotal:     30,
			wantLanguages: map[string]int{"x": 30, "y": 10},
			wantEditors:   map[string]int{"vim": 30, "emacs": 10},
		},
		{
			name: "partial overlap counts union",
			sessions: []storage.CodingSession{
				session("a", "go", "vim", at(10, 0, 0), at(10, 30, 0)),
				session("b", "sql", "vim", at(10, 20, 0), at(10, 50, 0)),
			},
			start:         dayStart,
			end:           dayEnd,
			cfg:           WindowConfig{AcceptableBreak: 5 * time.Minute},
			wantTotal:     50,
			wantLanguages: map[string]int{"go": 30, "sql": 30},
			wantEditors:   map[string]int{"vim": 60},
		},
		{
			name: "ninety seconds rounds up",
			sessions: []storage.CodingSession{
				session("a", "go", "vim", at(10, 0, 0), at(10, 1, 30)),
			},
			start:         dayStart,
			end:           dayEnd,
			cfg:           WindowConfig{AcceptableBreak: 5 * time.Minute},
			wantTotal:     2,
			wantLanguages: map[string]int{"go": 2},
			wantEditors:   map[string]int{"vim": 2},
		},
		{
			name: "eighty-nine seconds rounds down",
			sessions: []storage.CodingSession{
				session("a", "go", "vim", at(10, 0, 0), at(10, 1, 29)),
			},
			start:         dayStart,
			end:           dayEnd,
			cfg:           WindowConfig{AcceptableBreak: 5 * time.Minute},
			wantTotal:     1,
			wantLanguages: map[string]int{"go": 1},
			wantEditors:   map[string]int{"vim": 1},
		},
		{
			name: "sessions clipped to window",
			sessions: []storage.CodingSession{
				session("a", "go", "vim", at(9, 50, 0), at(10, 10, 0)),
				session("b", "go", "vim", at(10, 50, 0), at(11, 20, 0)),
			},
			start:         at(10, 0, 0),
			end:           at(11, 0, 0),
			cfg:           WindowConfig{AcceptableBreak: 5 * time.Minute},
			wantTotal:     20,
			wantIdle:      40,
			wantLanguages: map[string]int{"go": 20},
			wantEditors:   map[string]int{"vim": 20},
		},
		{
			name: "idle stops at window end",
			sessions: []storage.CodingSession{
				session("a", "go", "vim", at(10, 0, 0), at(10, 10, 0)),
				session("b", "go", "vim", at(12, 0, 0), at(12, 30, 0)),
			},
			start:         at(10, 0, 0),
			end:           at(11, 0, 0),
			cfg:           WindowConfig{AcceptableBreak: 5 * time.Minute},
			wantTotal:     10,
			wantIdle:      50,
			wantLanguages: map[string]int{"go": 10},
			wantEditors:   map[string]int{"vim": 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeWindow(tt.sessions, tt.start, tt.end, tt.cfg)
			if err != nil {
				t.Fatalf("ComputeWindow failed: %v", err)
			}

			assertNonNegative(t, got)

			if got.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", got.Total, tt.wantTotal)
			}
			if got.IdleFor != tt.wantIdle {
				t.Errorf("IdleFor = %d, want %d", got.IdleFor, tt.wantIdle)
			}
			if len(got.Languages) != len(tt.wantLanguages) {
				t.Errorf("Languages = %v, want %v", got.Languages, tt.wantLanguages)
			}
			for k, v := range tt.wantLanguages {
				if got.Languages[k] != v {
					t.Errorf("Languages[%s] = %d, want %d", k, got.Languages[k], v)
				}
			}
			if len(got.Editors) != len(tt.wantEditors) {
				t.Errorf("Editors = %v, want %v", got.Editors, tt.wantEditors)
			}
			for k, v := range tt.wantEditors {
				if got.Editors[k] != v {
					t.Errorf("Editors[%s] = %d, want %d", k, got.Editors[k], v)
				}
			}
		})
	}
}

func TestComputeWindow_TotalNeverExceedsBuckets(t *testing.T) {
	sessions := []storage.CodingSession{
		session("a", "go", "vim", at(8, 0, 0), at(9, 0, 0)),
		session("b", "go", "vim", at(8, 30, 0), at(8, 45, 0)),
		session("c", "rust", "zed", at(8, 40, 0), at(9, 30, 0)),
		session("d", "sql", "vim", at(12, 0, 0), at(12, 0, 45)),
	}

	got, err := ComputeWindow(sessions, at(0, 0, 0), at(23, 59, 59), WindowConfig{AcceptableBreak: 5 * time.Minute})
	if err != nil {
		t.Fatalf("ComputeWindow failed: %v", err)
	}

	sum := 0
	for _, v := range got.Languages {
		sum += v
	}
	if got.Total > sum {
		t.Errorf("Total %d exceeds language sum %d", got.Total, sum)
	}
	if got.Total != 91 {
		t.Errorf("Total = %d, want 91", got.Total)
	}
	if got.IdleFor != 150 {
		t.Errorf("IdleFor = %d, want 150", got.IdleFor)
	}
}

func TestComputeWindow_CorruptSession(t *testing.T) {
	sessions := []storage.CodingSession{
		session("bad", "go", "vim", at(10, 10, 0), at(10, 0, 0)),
	}

	_, err := ComputeWindow(sessions, at(0, 0, 0), at(23, 59, 59), WindowConfig{})
	if !errors.Is(err, ErrCorruptSession) {
		t.Fatalf("expected ErrCorruptSession, got %v", err)
	}
}

func TestComputeWindow_InvalidWindow(t *testing.T) {
	_, err := ComputeWindow(nil, at(12, 0, 0), at(11, 0, 0), WindowConfig{})
	if !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
}

func TestBiasedMinutes(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want int
	}{
		{0, 0},
		{29 * time.Second, 0},
		{30 * time.Second, 1},
		{89 * time.Second, 1},
		{90 * time.Second, 2},
		{time.Hour, 60},
	}

	for _, tt := range tests {
		if got := biasedMinutes(tt.in); got != tt.want {
			t.Errorf("biasedMinutes(%s) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
