package temporal

import (
	"fmt"
	"sort"
	"time"

	"github.com/chartflow/chartflow/pkg/spec"
)

// Filter computes the subset and ordering of rows visible under a temporal
// binding. It is pure: the input slice is never mutated, and with no binding
// the input slice is returned by reference so callers can use reference
// equality to skip downstream work.
func Filter(t *spec.Temporal, rows []spec.Row) []spec.Row {
	if t == nil || t.Field == "" {
		return rows
	}

	switch t.Mode {
	case spec.ModeAxis:
		return filterAxis(t, rows)
	case spec.ModeFrame:
		return filterFrame(t.Field, rows)
	case spec.ModeKey:
		return filterKey(t, rows)
	default:
		return rows
	}
}

// filterAxis keeps rows inside the sliding window [max-range, max] and sorts
// the result ascending by instant. The window anchor is the maximum instant
// over the full input set, not the already-filtered set. An unbounded range
// skips filtering and only sorts.
func filterAxis(t *spec.Temporal, rows []spec.Row) []spec.Row {
	out := rows
	if !t.Range.All {
		maxInstant := maxInstantOf(t.Field, rows)
		minInstant := maxInstant - t.Range.Millis()
		out = make([]spec.Row, 0, len(rows))
		for _, row := range rows {
			ts := ParseInstant(row[t.Field])
			if ts >= minInstant && ts <= maxInstant {
				out = append(out, row)
			}
		}
	}
	return sortByInstant(t.Field, out)
}

// filterFrame keeps only rows whose instant equals the maximum instant over
// all rows, using exact integer equality with no tolerance window. Original
// row order is preserved.
func filterFrame(field string, rows []spec.Row) []spec.Row {
	if len(rows) == 0 {
		return rows
	}
	maxInstant := maxInstantOf(field, rows)
	out := make([]spec.Row, 0, 1)
	for _, row := range rows {
		if ParseInstant(row[field]) == maxInstant {
			out = append(out, row)
		}
	}
	return out
}

// filterKey keeps, per stringified key value, the row(s) achieving that
// key's maximum instant. Ties are all retained: the policy deduplicates by
// timestamp equality, not by row identity, so duplicate timestamps for one
// key are not further disambiguated. Without a key field no filtering is
// performed.
func filterKey(t *spec.Temporal, rows []spec.Row) []spec.Row {
	if t.KeyField == "" {
		return rows
	}

	latest := make(map[string]Instant, len(rows))
	for _, row := range rows {
		key := keyString(row[t.KeyField])
		ts := ParseInstant(row[t.Field])
		if cur, ok := latest[key]; !ok || ts > cur {
			latest[key] = ts
		}
	}

	out := make([]spec.Row, 0, len(latest))
	for _, row := range rows {
		key := keyString(row[t.KeyField])
		if ParseInstant(row[t.Field]) == latest[key] {
			out = append(out, row)
		}
	}
	return out
}

// Domain returns the visible [min, max] instant pair for an axis-mode
// binding over the given rows. Empty input falls back to "now" as the
// reference instant so an empty-buffer render produces a well-defined
// domain instead of a degenerate one.
func Domain(t *spec.Temporal, rows []spec.Row) (minInstant, maxInstant Instant) {
	maxInstant = maxInstantOf(t.Field, rows)
	if t.Range.All {
		minInstant = minInstantOf(t.Field, rows)
		if len(rows) == 0 {
			minInstant = maxInstant
		}
		return minInstant, maxInstant
	}
	return maxInstant - t.Range.Millis(), maxInstant
}

// maxInstantOf returns the maximum instant over rows, or the current time
// for empty input.
func maxInstantOf(field string, rows []spec.Row) Instant {
	if len(rows) == 0 {
		return time.Now().UnixMilli()
	}
	maxInstant := ParseInstant(rows[0][field])
	for _, row := range rows[1:] {
		if ts := ParseInstant(row[field]); ts > maxInstant {
			maxInstant = ts
		}
	}
	return maxInstant
}

func minInstantOf(field string, rows []spec.Row) Instant {
	if len(rows) == 0 {
		return time.Now().UnixMilli()
	}
	minInstant := ParseInstant(rows[0][field])
	for _, row := range rows[1:] {
		if ts := ParseInstant(row[field]); ts < minInstant {
			minInstant = ts
		}
	}
	return minInstant
}

// sortByInstant returns a copy of rows stably sorted ascending by instant.
func sortByInstant(field string, rows []spec.Row) []spec.Row {
	out := make([]spec.Row, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		return ParseInstant(out[i][field]) < ParseInstant(out[j][field])
	})
	return out
}

// CoerceField returns a copy of rows with the named field's values replaced
// by their canonical millisecond instants. Rows are shallow-copied; the
// input is never mutated.
func CoerceField(rows []spec.Row, field string) []spec.Row {
	out := make([]spec.Row, len(rows))
	for i, row := range rows {
		cp := make(spec.Row, len(row))
		for k, v := range row {
			cp[k] = v
		}
		cp[field] = ParseInstant(row[field])
		out[i] = cp
	}
	return out
}

func keyString(v any) string {
	return fmt.Sprintf("%v", v)
}
