// Package services – shared calendar helpers for the pipeline stages.
//
// All three stages are date-range oriented: ingestion polls one calendar day
// at a time, normalization derives per-day attributes, and aggregation rolls
// up per day. The helpers here keep that arithmetic in one place, always in
// UTC.
package services

import (
	"math"
	"strings"
	"time"
)

// dateLayout is the wire format for date-range parameters on the batch
// endpoints ("YYYY-MM-DD").
const dateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
// Returns ErrInvalidDate for anything else.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// ParseDateRange parses and validates an inclusive from/to pair.
func ParseDateRange(fromDate, toDate string) (from, to time.Time, err error) {
	if from, err = ParseDate(fromDate); err != nil {
		return
	}
	if to, err = ParseDate(toDate); err != nil {
		return
	}
	if from.After(to) {
		err = ErrInvalidDateRange
	}
	return
}

// truncateToDay returns the UTC start-of-day for t.
func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// formatChannelDate renders a date using a channel's pattern, where the
// tokens YYYY, MM and DD are substituted ("YYYY-MM-DD", "DD/MM/YYYY", ...).
func formatChannelDate(t time.Time, pattern string) string {
	r := strings.NewReplacer(
		"YYYY", t.Format("2006"),
		"MM", t.Format("01"),
		"DD", t.Format("02"),
	)
	return r.Replace(pattern)
}

// weekNumber computes the week-of-year from the day of year offset by the
// weekday of January 1st: week 1 is the (possibly partial) week containing
// January 1st, with weeks starting on Sunday.
func weekNumber(t time.Time) int {
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	pastDays := float64(t.YearDay() - 1)
	return int(math.Ceil((pastDays + float64(jan1.Weekday()) + 1) / 7))
}

// quarter maps a 1-based month to its calendar quarter.
func quarter(month int) int {
	return (month + 2) / 3
}
