package stats

import (
	"fmt"
	"time"
)

const (
	// KeyLayout is the DD-MM-YYYY layout used for cache keys and range results.
	KeyLayout = "02-01-2006"

	// InputLayout is the layout accepted from the command line.
	InputLayout = "2006-01-02"
)

// Date is a calendar day with no time of day or location attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(InputLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// ParseKey parses a DD-MM-YYYY date key.
func ParseKey(s string) (Date, error) {
	t, err := time.Parse(KeyLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date key %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Key formats the date as DD-MM-YYYY.
func (d Date) Key() string {
	return d.midnight(time.UTC).Format(KeyLayout)
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.midnight(time.UTC).Format(InputLayout)
}

// AddDays returns the date n days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return DateOf(d.midnight(time.UTC).AddDate(0, 0, n))
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool {
	return d.midnight(time.UTC).Before(other.midnight(time.UTC))
}

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool {
	return other.Before(d)
}

// Window returns the UTC instants of local 00:00:00 and 23:59:59 on d in loc.
// The final second of the day falls outside the window.
func (d Date) Window(loc *time.Location) (start, end time.Time) {
	start = d.midnight(loc).UTC()
	end = time.Date(d.Year, d.Month, d.Day, 23, 59, 59, 0, loc).UTC()
	return start, end
}

func (d Date) midnight(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}
