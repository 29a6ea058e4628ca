// Package translate compiles a chart Spec into the configuration tree the
// external rendering backend consumes. Translation is pure and
// data-independent: the same spec always yields a structurally identical
// configuration, and the input spec is never mutated.
//
// The renderer's vocabulary is deliberately not validated here. Unknown
// mark, transform, and coordinate type strings pass through untranslated;
// any resulting failure surfaces from the rendering backend, not from this
// package.
package translate

import "github.com/chartflow/chartflow/pkg/spec"

// Config is the renderer-ready configuration tree: a root type tag, one
// child per mark and annotation, the translated chrome sections, and a data
// array attached at the root for inheritance by children.
type Config struct {
	Type        string                    `json:"type"`
	Theme       map[string]any            `json:"theme,omitempty"`
	Coordinate  map[string]any            `json:"coordinate,omitempty"`
	Axis        map[string]any            `json:"axis,omitempty"`
	Legend      any                       `json:"legend,omitempty"`
	Interaction map[string]map[string]any `json:"interaction,omitempty"`
	Children    []*Node                   `json:"children"`
	Data        []spec.Row                `json:"data,omitempty"`
}

// Node is one child of the configuration tree: a translated mark or a
// synthetic annotation layer.
type Node struct {
	Type      string                    `json:"type"`
	Encode    map[string]any            `json:"encode,omitempty"`
	Scale     map[string]map[string]any `json:"scale,omitempty"`
	Transform []map[string]any          `json:"transform,omitempty"`
	Style     map[string]any            `json:"style,omitempty"`
	Labels    []map[string]any          `json:"labels,omitempty"`
	Tooltip   any                       `json:"tooltip,omitempty"`
	Animate   any                       `json:"animate,omitempty"`

	// Data is only set on annotation children, which carry their single
	// value as a one-element array instead of inheriting the root rows.
	Data []any `json:"data,omitempty"`
}

// DefaultRootType is the root type tag when the spec does not set one.
const DefaultRootType = "view"

// scaleMap flattens a Scale's hints into the renderer's option map. Empty
// hints are omitted so merged maps stay minimal.
func scaleMap(s spec.Scale) map[string]any {
	m := make(map[string]any, 4)
	if s.Type != "" {
		m["type"] = s.Type
	}
	if s.Domain != nil {
		m["domain"] = s.Domain
	}
	if s.Range != nil {
		m["range"] = s.Range
	}
	if s.Nice != nil {
		m["nice"] = *s.Nice
	}
	if s.Clamp != nil {
		m["clamp"] = *s.Clamp
	}
	if s.Padding != nil {
		m["padding"] = *s.Padding
	}
	if s.Mask != "" {
		m["mask"] = s.Mask
	}
	return m
}

// transformMap flattens a Transform's tag and options into one object.
// A caller-supplied "type" option never overrides the tag.
func transformMap(t spec.Transform) map[string]any {
	m := make(map[string]any, len(t.Options)+1)
	for k, v := range t.Options {
		m[k] = v
	}
	m["type"] = t.Type
	return m
}
