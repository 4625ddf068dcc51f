package utils

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate parses YYYY-MM-DD as a UTC midnight.
func ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}

// BeginningOfDay truncates t to midnight UTC.
func BeginningOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func BeginningOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole days from start to end.
func DaysBetween(start, end time.Time) int {
	return int(BeginningOfDay(end).Sub(BeginningOfDay(start)).Hours() / 24)
}

// EachDay calls fn for every day in [from, to].
func EachDay(from, to time.Time, fn func(day time.Time)) {
	for d := BeginningOfDay(from); !d.After(BeginningOfDay(to)); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}

// DateRange parses optional from/to query values. Missing values default to the
// last 30 days ending today.
func DateRange(from, to string, now time.Time) (time.Time, time.Time, error) {
	end := BeginningOfDay(now)
	start := end.AddDate(0, 0, -29)
	var err error
	if from != "" {
		if start, err = ParseDate(from); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if to != "" {
		if end, err = ParseDate(to); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("from must not be after to")
	}
	return start, end, nil
}
