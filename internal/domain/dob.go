package domain

import (
	"fmt"
	"strings"
	"time"
)

// DOBLayout is the calendar-date format used on the wire and in storage.
const DOBLayout = "2006-01-02"

var dobLayouts = []string{
	DOBLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseDOB parses a date of birth and truncates it to a UTC calendar date.
func ParseDOB(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("parse dob: empty value: %w", ErrInvalidDateOfBirth)
	}

	for _, layout := range dobLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}

	return time.Time{}, fmt.Errorf("parse dob %q: %w", raw, ErrInvalidDateOfBirth)
}

// FormatDOB renders a date of birth using DOBLayout.
func FormatDOB(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DOBLayout)
}
