// Package spec defines the declarative chart grammar compiled by Chartflow.
//
// A Spec describes an entire chart: its visual layers (marks), shared scales
// and transforms, coordinate system, axes, legend, tooltip, annotations,
// interactions, the streaming retention policy, and the temporal binding
// that decides which rows of a live dataset are visible.
//
// Specs are plain data (JSON- and TOML-compatible) except where accessor
// functions are used for computed channels. The engine never mutates a Spec;
// translation returns derived copies.
package spec

import (
	"time"

	"github.com/chartflow/chartflow/pkg/errors"
)

// Row is an opaque record. The engine assumes no fixed schema beyond the
// fields referenced by Encode and Temporal declarations.
type Row map[string]any

// Temporal binding modes.
const (
	ModeAxis  = "axis"  // sliding time window along an axis
	ModeFrame = "frame" // snapshot of the latest instant only
	ModeKey   = "key"   // latest row per entity key
)

// Streaming update modes.
const (
	UpdateAppend  = "append"
	UpdateReplace = "replace"
)

// ValidModes is the set of supported temporal binding modes.
var ValidModes = map[string]bool{
	ModeAxis:  true,
	ModeFrame: true,
	ModeKey:   true,
}

// =============================================================================
// Spec - Root Grammar Object
// =============================================================================

// Spec is the root grammar object describing an entire chart.
type Spec struct {
	// Type is the root configuration type tag handed to the renderer.
	// Empty defaults to "view".
	Type string `json:"type,omitempty" toml:"type"`

	// Marks are the visual layers, in draw order.
	Marks []Mark `json:"marks,omitempty" toml:"marks"`

	// Scales are shared per-channel rendering hints. Mark-level scales
	// override these per channel key.
	Scales map[string]Scale `json:"scales,omitempty" toml:"scales"`

	// Transforms are shared visual-only operations, applied before any
	// mark-level transforms.
	Transforms []Transform `json:"transforms,omitempty" toml:"transforms"`

	Coordinate   *Coordinate     `json:"coordinate,omitempty" toml:"coordinate"`
	Axes         map[string]Axis `json:"axes,omitempty" toml:"axes"`
	Legend       *Legend         `json:"legend,omitempty" toml:"legend"`
	Tooltip      *Tooltip        `json:"tooltip,omitempty" toml:"tooltip"`
	Annotations  []Annotation    `json:"annotations,omitempty" toml:"annotations"`
	Interactions []Interaction   `json:"interactions,omitempty" toml:"interactions"`

	// Streaming is the retention and redraw policy for live data.
	Streaming *Streaming `json:"streaming,omitempty" toml:"streaming"`

	// Temporal binds a field of the data to one of the visibility modes.
	Temporal *Temporal `json:"temporal,omitempty" toml:"temporal"`

	// Theme selects the style token table. Unknown names default to dark.
	Theme string `json:"theme,omitempty" toml:"theme"`

	// Animate enables renderer animations; marks may override.
	Animate *bool `json:"animate,omitempty" toml:"animate"`
}

// =============================================================================
// Mark - One Visual Layer
// =============================================================================

// Mark is a single visual layer (line, area, interval, point, ...).
// Unknown type strings are passed through to the renderer unchanged; the
// engine does not validate against a closed mark vocabulary.
type Mark struct {
	Type string `json:"type" toml:"type"`

	// Encode maps channel names (x, y, color, size, shape, opacity, or any
	// caller-defined channel) to fields. Unrecognized channels are
	// preserved verbatim.
	Encode map[string]Field `json:"encode,omitempty" toml:"encode"`

	// Scales override spec-level scales per channel key.
	Scales map[string]Scale `json:"scales,omitempty" toml:"scales"`

	// Transforms run after spec-level transforms.
	Transforms []Transform `json:"transforms,omitempty" toml:"transforms"`

	// Style holds renderer style properties, copied verbatim.
	Style map[string]any `json:"style,omitempty" toml:"style"`

	Labels []Label `json:"labels,omitempty" toml:"labels"`

	// Tooltip overrides the spec tooltip for this mark. Off short-circuits
	// to a disabled tooltip.
	Tooltip *Tooltip `json:"tooltip,omitempty" toml:"tooltip"`

	// Animate overrides the spec-level animation flag.
	Animate *bool `json:"animate,omitempty" toml:"animate"`
}

// =============================================================================
// Scales and Transforms
// =============================================================================

// Scale holds per-channel rendering hints. Two scale maps combine by shallow
// merge with the mark level winning per channel key; unspecified channels
// inherit the spec-level scale untouched.
type Scale struct {
	Type    string   `json:"type,omitempty" toml:"type"`
	Domain  []any    `json:"domain,omitempty" toml:"domain"`
	Range   []any    `json:"range,omitempty" toml:"range"`
	Nice    *bool    `json:"nice,omitempty" toml:"nice"`
	Clamp   *bool    `json:"clamp,omitempty" toml:"clamp"`
	Padding *float64 `json:"padding,omitempty" toml:"padding"`

	// Mask is a display format for tick labels (time scales).
	Mask string `json:"mask,omitempty" toml:"mask"`
}

// IsZero reports whether the scale carries no hints at all.
func (s Scale) IsZero() bool {
	return s.Type == "" && s.Domain == nil && s.Range == nil &&
		s.Nice == nil && s.Clamp == nil && s.Padding == nil && s.Mask == ""
}

// Transform is an ordered visual-only operation (stacking, dodging,
// sorting, ...) tagged by type plus arbitrary options.
type Transform struct {
	Type    string         `json:"type" toml:"type"`
	Options map[string]any `json:"options,omitempty" toml:"options"`
}

// Coordinate selects the coordinate system. The declarative Transforms field
// is renamed to the renderer's "transform" field during translation.
type Coordinate struct {
	Type       string      `json:"type,omitempty" toml:"type"`
	Transforms []Transform `json:"transforms,omitempty" toml:"transforms"`
}

// =============================================================================
// Axes, Legend, Tooltip, Labels
// =============================================================================

// Axis configures one channel's axis. Off suppresses the axis entirely.
// Title, grid, and line are opt-in; tick visibility and text colors are
// always asserted by the translator from the active theme.
type Axis struct {
	Off         bool    `json:"off,omitempty" toml:"off"`
	Title       string  `json:"title,omitempty" toml:"title"`
	Grid        bool    `json:"grid,omitempty" toml:"grid"`
	Line        bool    `json:"line,omitempty" toml:"line"`
	LabelFormat string  `json:"labelFormat,omitempty" toml:"labelFormat"`
	LabelRotate float64 `json:"labelRotate,omitempty" toml:"labelRotate"`

	// LabelFormatter is a computed label formatter. Takes precedence over
	// LabelFormat. Not serializable.
	LabelFormatter func(any) string `json:"-" toml:"-"`
}

// Legend configures the color legend. Off suppresses it.
type Legend struct {
	Off      bool   `json:"off,omitempty" toml:"off"`
	Position string `json:"position,omitempty" toml:"position"`
}

// Tooltip configures hover tooltips. Off short-circuits to disabled.
type Tooltip struct {
	Off     bool           `json:"off,omitempty" toml:"off"`
	Options map[string]any `json:"options,omitempty" toml:"options"`
}

// Label is a data label attached to a mark.
type Label struct {
	Field string         `json:"field,omitempty" toml:"field"`
	Text  string         `json:"text,omitempty" toml:"text"`
	Style map[string]any `json:"style,omitempty" toml:"style"`

	// OverlapHide requests de-collision: overlapping labels are hidden by
	// the renderer. Translated to an explicit label transform tag.
	OverlapHide bool `json:"overlapHide,omitempty" toml:"overlapHide"`
}

// Annotation is a reference figure (line, region, text) drawn from a single
// value rather than the data rows.
type Annotation struct {
	Type  string         `json:"type" toml:"type"`
	Value any            `json:"value,omitempty" toml:"value"`
	Label string         `json:"label,omitempty" toml:"label"`
	Style map[string]any `json:"style,omitempty" toml:"style"`
}

// Interaction is one renderer interaction with arbitrary options. The
// ordered list is converted to a map keyed by type during translation;
// duplicate types silently overwrite, last wins.
type Interaction struct {
	Type    string         `json:"type" toml:"type"`
	Options map[string]any `json:"options,omitempty" toml:"options"`
}

// =============================================================================
// Temporal and Streaming
// =============================================================================

// Temporal declares how rows of a live dataset become visible.
type Temporal struct {
	// Mode is one of ModeAxis, ModeFrame, ModeKey.
	Mode string `json:"mode" toml:"mode"`

	// Field names the row field holding the temporal value.
	Field string `json:"field" toml:"field"`

	// Range is the visible window for ModeAxis, in minutes, or unbounded.
	Range Window `json:"range,omitempty" toml:"range"`

	// KeyField disambiguates entities for ModeKey. Without it, key mode
	// performs no filtering.
	KeyField string `json:"keyField,omitempty" toml:"keyField"`
}

// Streaming is the retention policy for the live row buffer.
type Streaming struct {
	// MaxItems is the maximum retained row count. Older rows are dropped
	// first. Zero means DefaultMaxItems.
	MaxItems int `json:"maxItems,omitempty" toml:"maxItems"`

	// Mode selects append or replace semantics for pushed updates.
	Mode string `json:"mode,omitempty" toml:"mode"`

	// ThrottleMs is the minimum interval between redraws in milliseconds.
	// Zero or absent renders synchronously on every mutation.
	ThrottleMs int `json:"throttleMs,omitempty" toml:"throttleMs"`

	// Columns names positional-array columns so array rows can be mapped
	// to records. Record rows ignore it.
	Columns []string `json:"columns,omitempty" toml:"columns"`
}

// DefaultMaxItems is the retained row count when the policy does not set one.
const DefaultMaxItems = 1000

// Throttle returns the redraw throttle as a duration.
func (s *Streaming) Throttle() time.Duration {
	if s == nil || s.ThrottleMs <= 0 {
		return 0
	}
	return time.Duration(s.ThrottleMs) * time.Millisecond
}

// Limit returns the effective maximum retained row count.
func (s *Streaming) Limit() int {
	if s == nil || s.MaxItems <= 0 {
		return DefaultMaxItems
	}
	return s.MaxItems
}

// UpdateMode returns the effective update mode.
func (s *Streaming) UpdateMode() string {
	if s == nil || s.Mode == "" {
		return UpdateAppend
	}
	return s.Mode
}

// =============================================================================
// Validation
// =============================================================================

// Validate checks the spec for structural problems the engine cannot pass
// through. Unknown mark, transform, and coordinate types are deliberately
// not validated here: they are the renderer's vocabulary, not ours.
func (s *Spec) Validate() error {
	if s.Temporal != nil {
		if !ValidModes[s.Temporal.Mode] {
			return errors.New(errors.ErrCodeInvalidTemporalMode,
				"unknown temporal mode %q (must be one of: axis, frame, key)", s.Temporal.Mode)
		}
		if s.Temporal.Field == "" {
			return errors.New(errors.ErrCodeInvalidSpec, "temporal binding requires a field")
		}
	}
	if s.Streaming != nil {
		switch s.Streaming.Mode {
		case "", UpdateAppend, UpdateReplace:
		default:
			return errors.New(errors.ErrCodeInvalidStreaming,
				"unknown streaming mode %q (must be append or replace)", s.Streaming.Mode)
		}
		if s.Streaming.MaxItems < 0 {
			return errors.New(errors.ErrCodeInvalidStreaming, "maxItems cannot be negative")
		}
		if s.Streaming.ThrottleMs < 0 {
			return errors.New(errors.ErrCodeInvalidStreaming, "throttleMs cannot be negative")
		}
	}
	for channel := range s.Scales {
		if err := errors.ValidateChannelName(channel); err != nil {
			return err
		}
	}
	for i, m := range s.Marks {
		if m.Type == "" {
			return errors.New(errors.ErrCodeInvalidSpec, "mark %d has no type", i)
		}
		for channel := range m.Encode {
			if err := errors.ValidateChannelName(channel); err != nil {
				return err
			}
		}
	}
	return nil
}
