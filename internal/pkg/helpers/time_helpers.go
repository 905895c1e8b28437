package helpers

import (
	"errors"
	"strings"
	"time"
)

// ErrUnrecognizedTime is returned when no accepted layout matches.
var ErrUnrecognizedTime = errors.New("unrecognized time format")

// acceptedTimeLayouts are tried in order. The zone-less layouts are read as UTC.
var acceptedTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDateTime parses what HTML forms and API clients send for a date: a full
// RFC 3339 timestamp, a datetime-local value or a plain calendar date.
func ParseDateTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrUnrecognizedTime
	}
	for _, layout := range acceptedTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrUnrecognizedTime
}
