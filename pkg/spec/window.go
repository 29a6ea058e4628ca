package spec

import (
	"encoding/json"
	"fmt"
	"time"
)

// unboundedSentinel is the serialized form of an unbounded window.
const unboundedSentinel = "all"

// Window is the visible range of an axis-mode temporal binding: either a
// finite number of minutes or unbounded ("all"). The zero value is a zero-
// minute window, which keeps only rows at the reference instant.
type Window struct {
	Minutes float64
	All     bool
}

// Unbounded is the window that disables sliding-window filtering.
var Unbounded = Window{All: true}

// Minutes returns a finite window of n minutes.
func MinutesWindow(n float64) Window {
	return Window{Minutes: n}
}

// Duration returns the window length. Unbounded windows return 0; callers
// must check All first.
func (w Window) Duration() time.Duration {
	return time.Duration(w.Minutes * float64(time.Minute))
}

// Millis returns the window length in milliseconds.
func (w Window) Millis() int64 {
	return int64(w.Minutes * 60000)
}

// String implements fmt.Stringer.
func (w Window) String() string {
	if w.All {
		return unboundedSentinel
	}
	return fmt.Sprintf("%gm", w.Minutes)
}

// MarshalJSON serializes a finite window as a number of minutes and an
// unbounded window as the string "all".
func (w Window) MarshalJSON() ([]byte, error) {
	if w.All {
		return json.Marshal(unboundedSentinel)
	}
	return json.Marshal(w.Minutes)
}

// UnmarshalJSON accepts a number of minutes or the string "all".
func (w *Window) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*w = Window{Minutes: n}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil || s != unboundedSentinel {
		return fmt.Errorf("temporal range must be a number of minutes or %q", unboundedSentinel)
	}
	*w = Unbounded
	return nil
}

// UnmarshalTOML accepts an integer, a float, or the string "all".
func (w *Window) UnmarshalTOML(v any) error {
	switch n := v.(type) {
	case int64:
		*w = Window{Minutes: float64(n)}
	case float64:
		*w = Window{Minutes: n}
	case string:
		if n != unboundedSentinel {
			return fmt.Errorf("temporal range must be a number of minutes or %q", unboundedSentinel)
		}
		*w = Unbounded
	default:
		return fmt.Errorf("temporal range must be a number of minutes or %q, got %T", unboundedSentinel, v)
	}
	return nil
}
