package api

import (
	"fmt"
	"time"
)

// timeLayouts are the accepted shapes for timeline range parameters.
// Dashboards send RFC3339 but also the shorter datetime-local formats.
var timeLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseFlexibleTime parses a timestamp string against the accepted
// layouts, returning a UTC time
func parseFlexibleTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse time string: %s", s)
}
