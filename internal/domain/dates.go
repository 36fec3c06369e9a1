package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidDate is returned for date strings in none of the accepted formats.
var ErrInvalidDate = errors.New("invalid date: use DD/MM/YYYY or ISO-8601")

// Accepted layouts, tried in order.
var calendarLayouts = []string{
	"2/1/2006", // also matches zero-padded input
	"2006-1-2",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05", // ISO without zone, read as UTC
}

// ParseCalendarDate parses a calendar date in DD/MM/YYYY or ISO-8601 form.
// The result is midnight UTC of the date as written, so "15/03/1990",
// "1990-03-15" and "1990-03-15T22:00:00-03:00" all yield the same value.
func ParseCalendarDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	for _, layout := range calendarLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, ErrInvalidDate
}

// ParseTimestamp parses an instant. Plain calendar dates are accepted and mean midnight UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return ParseCalendarDate(s)
}

// FormatCalendarDate renders t as DD/MM/YYYY.
func FormatCalendarDate(t time.Time) string {
	return t.UTC().Format("02/01/2006")
}
