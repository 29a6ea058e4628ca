// Package temporal implements the data-visibility half of the engine: the
// coercion of heterogeneous temporal field values into canonical millisecond
// instants, and the three filtering policies (axis, frame, key) that decide
// which rows of a live dataset are visible right now.
package temporal

import (
	"time"
)

// Instant is a canonical millisecond timestamp derived from a row's temporal
// field. Unparseable values coerce to instant zero: such rows sort to the
// oldest position and are typically excluded by sliding-window filters,
// degrading gracefully instead of failing the pipeline.
type Instant = int64

// instantLayouts are the accepted string forms, tried in order. Layouts
// without a zone are interpreted as UTC.
var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// ParseInstant coerces a temporal field value into a millisecond instant.
// Numeric values are taken as epoch milliseconds, strings are parsed against
// a set of ISO-ish layouts, and time.Time values convert directly.
// Anything unparseable returns 0.
func ParseInstant(v any) Instant {
	switch t := v.(type) {
	case nil:
		return 0
	case time.Time:
		return t.UnixMilli()
	case int64:
		return t
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case uint64:
		return int64(t)
	case float64:
		return int64(t)
	case float32:
		return int64(t)
	case string:
		return parseInstantString(t)
	default:
		return 0
	}
}

func parseInstantString(s string) Instant {
	for _, layout := range instantLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ts.UnixMilli()
		}
	}
	return 0
}
