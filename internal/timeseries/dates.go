// Package timeseries provides the shared date handling and daily aggregation
// helpers used by every analysis routine.
package timeseries

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-day key format used throughout the service.
const DateLayout = "2006-01-02"

// parse layouts tried in order; readings arrive as RFC 3339 timestamps with
// or without a zone, lifestyle entries as bare dates.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DateLayout,
}

// ParseDate normalizes a timestamp or ISO-8601 string to a time.Time.
// A value without a zone marker is interpreted as UTC.
func ParseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", value)
}

// ParseDateOrNow parses value and falls back to the current time when the
// value is structurally unparseable. Callers on production paths should log
// the error from ParseDate instead of relying on this fallback silently.
func ParseDateOrNow(value string) time.Time {
	t, err := ParseDate(value)
	if err != nil {
		return time.Now().UTC()
	}
	return t
}

// DayKey returns the calendar-date key for a timestamp.
func DayKey(t time.Time) string {
	return t.Format(DateLayout)
}
