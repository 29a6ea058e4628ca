package translate

import (
	"time"

	"github.com/chartflow/chartflow/pkg/spec"
)

// bandScaleType marks channels that require a categorical (band) axis.
// Interval-style marks bound to a band channel must keep their raw field
// values: coercing them to instants, or overwriting the declared band scale
// with a time scale, would break the renderer's band width computation.
const bandScaleType = "band"

// BandProtected reports whether the given field is bound, on any mark, to a
// channel whose merged scale type is band. Such fields are excluded from
// time-instant coercion.
func BandProtected(s *spec.Spec, field string) bool {
	for _, m := range s.Marks {
		for channel, f := range m.Encode {
			name, ok := f.FieldName()
			if !ok || name != field {
				continue
			}
			if mergedScaleType(s.Scales, m.Scales, channel) == bandScaleType {
				return true
			}
		}
	}
	return false
}

// mergedScaleType resolves a channel's scale type under the merge rule:
// mark-level scale wins wholesale per channel key.
func mergedScaleType(specScales, markScales map[string]spec.Scale, channel string) string {
	if sc, ok := markScales[channel]; ok {
		return sc.Type
	}
	if sc, ok := specScales[channel]; ok {
		return sc.Type
	}
	return ""
}

// AttachSlidingDomain writes the computed visible-domain pair and an
// auto-selected display mask into each child's x scale, so the renderer can
// show a scrolling window without the caller computing it. Children whose
// x channel is band-typed are skipped, and caller-declared domains or masks
// are never overwritten.
func AttachSlidingDomain(cfg *Config, minInstant, maxInstant int64) {
	mask := TimeMask(maxInstant - minInstant)
	for _, child := range cfg.Children {
		x := child.Scale["x"]
		if x != nil && x["type"] == bandScaleType {
			continue
		}
		if x == nil {
			x = make(map[string]any, 3)
			if child.Scale == nil {
				child.Scale = make(map[string]map[string]any, 1)
			}
			child.Scale["x"] = x
		}
		if _, ok := x["domain"]; !ok {
			x["domain"] = []int64{minInstant, maxInstant}
		}
		if _, ok := x["mask"]; !ok {
			x["mask"] = mask
		}
	}
}

// TimeMask picks a tick label mask for a visible window of the given span
// in milliseconds. Narrow windows show seconds, day-scale windows show
// clock time, anything wider shows dates.
func TimeMask(spanMillis int64) string {
	span := time.Duration(spanMillis) * time.Millisecond
	switch {
	case span <= 2*time.Minute:
		return "HH:mm:ss"
	case span <= 24*time.Hour:
		return "HH:mm"
	case span <= 28*24*time.Hour:
		return "MM-DD HH:mm"
	default:
		return "YYYY-MM-DD"
	}
}
