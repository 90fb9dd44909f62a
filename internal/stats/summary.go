package stats

import (
	"time"

	"github.com/goodtune/devtime/internal/storage"
)

// Summary holds coding time for a window, in whole minutes.
//
// Total is the union of all session intervals, so overlapping sessions are
// counted once; Languages and Editors credit every session in full, which
// means Total can be less than the sum of either map.
type Summary struct {
	Languages map[string]int `json:"languages"`
	Editors   map[string]int `json:"editors"`
	Total     int            `json:"total"`
	IdleFor   int            `json:"idle_for"`
}

// NewSummary returns an all-zero summary with empty maps.
func NewSummary() Summary {
	return Summary{
		Languages: make(map[string]int),
		Editors:   make(map[string]int),
	}
}

// Clone returns a deep copy so cached summaries are never shared by reference.
func (s Summary) Clone() Summary {
	out := Summary{
		Languages: make(map[string]int, len(s.Languages)),
		Editors:   make(map[string]int, len(s.Editors)),
		Total:     s.Total,
		IdleFor:   s.IdleFor,
	}
	for k, v := range s.Languages {
		out.Languages[k] = v
	}
	for k, v := range s.Editors {
		out.Editors[k] = v
	}
	return out
}

func (s Summary) toDailyStats(computedAt time.Time) storage.DailyStats {
	c := s.Clone()
	return storage.DailyStats{
		Languages:  c.Languages,
		Editors:    c.Editors,
		Total:      c.Total,
		IdleFor:    c.IdleFor,
		ComputedAt: computedAt,
	}
}

func summaryFromDailyStats(ds storage.DailyStats) Summary {
	return Summary{
		Languages: ds.Languages,
		Editors:   ds.Editors,
		Total:     ds.Total,
		IdleFor:   ds.IdleFor,
	}.Clone()
}
