package model

import (
	"fmt"
	"strings"
	"time"
)

// Query times arrive from URLs, the command line and TOML files, written by
// hand in whatever shape the caller likes. Parsing is therefore lenient and
// always yields UTC.

var queryTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15",
	"2006-01-02 15",
	"2006-01-02",
	"200601021504",
}

// ParseQueryTime is a drop-in replacement for time.Parse, matching against
// the time formats users commonly type. Times without a zone are UTC.
func ParseQueryTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range queryTimeLayouts {
		if output, err := time.Parse(layout, value); err == nil {
			return output.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("Date could not be parsed by any expected time format: `%s`", value)
}

// FormatTime renders t the way results carry times
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}
