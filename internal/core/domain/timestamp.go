package domain

import (
	"math"
	"strings"
	"time"
)

// isoTimestampLayouts cover ISO-8601 forms with and without zone or
// fractional seconds.
var isoTimestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

// fallbackTimestampLayouts are tried in order after ISO parsing fails.
var fallbackTimestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006 15:04",
	"01/02/2006",
}

// ParseTimestamp converts a heterogeneous metadata timestamp into a naive
// UTC wall-clock time. Numeric values are POSIX seconds; strings are tried
// against ISO-8601 and a fixed list of fallback layouts. Any value that
// cannot be parsed yields nil, never an error.
func ParseTimestamp(value any) *time.Time {
	switch v := value.(type) {
	case nil:
		return nil
	case float64:
		return fromEpochSeconds(v)
	case float32:
		return fromEpochSeconds(float64(v))
	case int:
		return fromEpochSeconds(float64(v))
	case int64:
		return fromEpochSeconds(float64(v))
	case string:
		return parseTimestampString(v)
	default:
		return nil
	}
}

func fromEpochSeconds(seconds float64) *time.Time {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return nil
	}
	sec, frac := math.Modf(seconds)
	t := time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC()
	if t.Year() < 1 || t.Year() > 9999 {
		return nil
	}
	return &t
}

func parseTimestampString(value string) *time.Time {
	candidate := strings.TrimSpace(value)
	if candidate == "" {
		return nil
	}

	for _, layout := range isoTimestampLayouts {
		if parsed, err := time.Parse(layout, candidate); err == nil {
			utc := parsed.UTC()
			return &utc
		}
	}
	for _, layout := range fallbackTimestampLayouts {
		if parsed, err := time.Parse(layout, candidate); err == nil {
			return &parsed
		}
	}
	return nil
}
