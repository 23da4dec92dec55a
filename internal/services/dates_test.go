package services

import (
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2026-08-15")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	want := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}

	if _, err := ParseDate("  2026-08-15 "); err != nil {
		t.Fatalf("trimmed input rejected: %v", err)
	}

	for _, bad := range []string{"", "15-08-2026", "2026/08/15", "2026-13-01", "not a date"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("ParseDate(%q) err = %v, want ErrInvalidDate", bad, err)
		}
	}
}

func TestParseDateRange(t *testing.T) {
	from, to, err := ParseDateRange("2026-08-01", "2026-08-03")
	if err != nil {
		t.Fatalf("ParseDateRange: %v", err)
	}
	if from.After(to) {
		t.Fatalf("from %v after to %v", from, to)
	}

	if _, _, err := ParseDateRange("2026-08-01", "2026-08-01"); err != nil {
		t.Fatalf("single-day range rejected: %v", err)
	}

	if _, _, err := ParseDateRange("2026-08-03", "2026-08-01"); !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("inverted range err = %v, want ErrInvalidDateRange", err)
	}
	if _, _, err := ParseDateRange("bogus", "2026-08-01"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("bad from err = %v, want ErrInvalidDate", err)
	}
	if _, _, err := ParseDateRange("2026-08-01", "bogus"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("bad to err = %v, want ErrInvalidDate", err)
	}
}

func TestFormatChannelDate(t *testing.T) {
	d := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		pattern string
		want    string
	}{
		{"YYYY-MM-DD", "2026-03-07"},
		{"DD/MM/YYYY", "07/03/2026"},
		{"MM-DD-YYYY", "03-07-2026"},
		{"YYYYMMDD", "20260307"},
	}
	for _, tc := range cases {
		if got := formatChannelDate(d, tc.pattern); got != tc.want {
			t.Errorf("formatChannelDate(%q) = %q, want %q", tc.pattern, got, tc.want)
		}
	}
}

func TestTruncateToDay(t *testing.T) {
	loc := time.FixedZone("EET", 2*60*60)
	in := time.Date(2026, 8, 15, 1, 30, 0, 0, loc) // 2026-08-14 23:30 UTC
	got := truncateToDay(in)
	want := time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestWeekNumber(t *testing.T) {
	cases := []struct {
		date string
		want int
	}{
		{"2026-01-01", 1}, // Thursday, partial first week
		{"2026-01-03", 1}, // Saturday, still week 1
		{"2026-01-04", 2}, // Sunday starts week 2
		{"2026-12-31", 53},
	}
	for _, tc := range cases {
		d, err := ParseDate(tc.date)
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", tc.date, err)
		}
		if got := weekNumber(d); got != tc.want {
			t.Errorf("weekNumber(%s) = %d, want %d", tc.date, got, tc.want)
		}
	}
}

func TestQuarter(t *testing.T) {
	want := map[int]int{1: 1, 3: 1, 4: 2, 6: 2, 7: 3, 9: 3, 10: 4, 12: 4}
	for month, q := range want {
		if got := quarter(month); got != q {
			t.Errorf("quarter(%d) = %d, want %d", month, got, q)
		}
	}
}
