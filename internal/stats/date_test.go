package stats

import (
	"testing"
	"time"
)

func TestDate_KeyAndParse(t *testing.T) {
	d, err := ParseDate("2024-03-07")
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if d.Key() != "07-03-2024" {
		t.Errorf("Key() = %s, want 07-03-2024", d.Key())
	}
	if d.String() != "2024-03-07" {
		t.Errorf("String() = %s, want 2024-03-07", d.String())
	}

	back, err := ParseKey(d.Key())
	if err != nil {
		t.Fatalf("ParseKey failed: %v", err)
	}
	if back != d {
		t.Errorf("ParseKey(Key()) = %v, want %v", back, d)
	}

	if _, err := ParseDate("07-03-2024"); err == nil {
		t.Error("expected error for DD-MM-YYYY input to ParseDate")
	}
}

func TestDate_AddDaysCrossesMonthAndYear(t *testing.T) {
	tests := []struct {
		from Date
		n    int
		want Date
	}{
		{Date{2024, time.January, 31}, 1, Date{2024, time.February, 1}},
		{Date{2024, time.February, 28}, 1, Date{2024, time.February, 29}},
		{Date{2023, time.December, 31}, 1, Date{2024, time.January, 1}},
		{Date{2024, time.March, 1}, -1, Date{2024, time.February, 29}},
	}

	for _, tt := range tests {
		if got := tt.from.AddDays(tt.n); got != tt.want {
			t.Errorf("%v.AddDays(%d) = %v, want %v", tt.from, tt.n, got, tt.want)
		}
	}
}

func TestDate_Ordering(t *testing.T) {
	a := Date{2024, time.January, 15}
	b := Date{2024, time.January, 16}

	if !a.Before(b) || a.After(b) {
		t.Errorf("expected %v before %v", a, b)
	}
	if a.Before(a) || a.After(a) {
		t.Errorf("date should not be before or after itself")
	}
}

func TestDate_WindowAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}

	// Clocks go forward on 2024-03-31, so the local day is 23 hours long.
	start, end := Date{2024, time.March, 31}.Window(loc)

	if !start.Equal(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %s", start)
	}
	if !end.Equal(time.Date(2024, 3, 31, 22, 59, 59, 0, time.UTC)) {
		t.Errorf("end = %s", end)
	}
}
