package translate

import (
	"github.com/chartflow/chartflow/pkg/spec"
	"github.com/chartflow/chartflow/pkg/theme"
)

// Translate compiles a spec into renderer-ready configuration. The output
// has one child per mark (in spec order) followed by one child per
// annotation. Data is not consulted; the caller attaches the filtered rows
// afterwards.
func Translate(s *spec.Spec) *Config {
	tokens := theme.TokensFor(s.Theme)
	injected := temporalTransforms(s.Temporal)

	cfg := &Config{
		Type:     s.Type,
		Theme:    theme.Config(s.Theme),
		Children: make([]*Node, 0, len(s.Marks)+len(s.Annotations)),
	}
	if cfg.Type == "" {
		cfg.Type = DefaultRootType
	}

	for _, m := range s.Marks {
		cfg.Children = append(cfg.Children, markNode(s, m, injected))
	}
	for _, a := range s.Annotations {
		cfg.Children = append(cfg.Children, annotationNode(a))
	}

	if s.Coordinate != nil {
		cfg.Coordinate = coordinateMap(s.Coordinate)
	}
	if len(s.Axes) > 0 {
		cfg.Axis = axisMap(s.Axes, tokens)
	}
	if s.Legend != nil {
		cfg.Legend = legendValue(s.Legend, tokens)
	}
	if len(s.Interactions) > 0 {
		cfg.Interaction = interactionMap(s.Interactions)
	}

	return cfg
}

// markNode translates one mark: channel encodes verbatim, scales merged with
// the mark winning per channel, transforms concatenated behind the
// temporally-injected and spec-level ones, style copied verbatim.
func markNode(s *spec.Spec, m spec.Mark, injected []map[string]any) *Node {
	node := &Node{
		Type:  m.Type,
		Scale: MergeScales(s.Scales, m.Scales),
	}

	if len(m.Encode) > 0 {
		node.Encode = make(map[string]any, len(m.Encode))
		for channel, field := range m.Encode {
			node.Encode[channel] = field.Raw()
		}
	}

	node.Transform = concatTransforms(injected, s.Transforms, m.Transforms)

	if len(m.Style) > 0 {
		node.Style = make(map[string]any, len(m.Style))
		for k, v := range m.Style {
			node.Style[k] = v
		}
	}

	if len(m.Labels) > 0 {
		node.Labels = make([]map[string]any, len(m.Labels))
		for i, l := range m.Labels {
			node.Labels[i] = labelMap(l)
		}
	}

	node.Tooltip = tooltipValue(m.Tooltip, s.Tooltip)
	node.Animate = animateValue(m.Animate, s.Animate)

	return node
}

// annotationNode builds a synthetic mark-like child: the annotation's value
// becomes a one-element data array and its label a single-item label list.
func annotationNode(a spec.Annotation) *Node {
	node := &Node{
		Type: a.Type,
		Data: []any{a.Value},
	}
	if a.Label != "" {
		node.Labels = []map[string]any{{"text": a.Label}}
	}
	if len(a.Style) > 0 {
		node.Style = make(map[string]any, len(a.Style))
		for k, v := range a.Style {
			node.Style[k] = v
		}
	}
	return node
}

// MergeScales combines spec-level and mark-level scale maps by shallow
// merge: the mark level wins per channel key, unspecified channels inherit
// the spec-level scale untouched.
func MergeScales(specScales, markScales map[string]spec.Scale) map[string]map[string]any {
	if len(specScales) == 0 && len(markScales) == 0 {
		return nil
	}
	out := make(map[string]map[string]any, len(specScales)+len(markScales))
	for channel, sc := range specScales {
		out[channel] = scaleMap(sc)
	}
	for channel, sc := range markScales {
		out[channel] = scaleMap(sc)
	}
	return out
}

// concatTransforms orders the final per-mark transform list: temporally
// injected first, then spec level, then mark level.
func concatTransforms(injected []map[string]any, specT, markT []spec.Transform) []map[string]any {
	total := len(injected) + len(specT) + len(markT)
	if total == 0 {
		return nil
	}
	out := make([]map[string]any, 0, total)
	out = append(out, injected...)
	for _, t := range specT {
		out = append(out, transformMap(t))
	}
	for _, t := range markT {
		out = append(out, transformMap(t))
	}
	return out
}

// temporalTransforms returns the transforms injected by a temporal binding.
// Axis mode orders marks by the temporal field so renderers that re-sort
// internally agree with the filtered row order.
func temporalTransforms(t *spec.Temporal) []map[string]any {
	if t == nil || t.Mode != spec.ModeAxis || t.Field == "" {
		return nil
	}
	return []map[string]any{{
		"type":   "sortBy",
		"fields": []string{t.Field},
	}}
}

// labelMap translates one label. The OverlapHide boolean becomes an explicit
// de-collision transform tag for the renderer.
func labelMap(l spec.Label) map[string]any {
	m := make(map[string]any, 4)
	if l.Field != "" {
		m["field"] = l.Field
	}
	if l.Text != "" {
		m["text"] = l.Text
	}
	if len(l.Style) > 0 {
		m["style"] = l.Style
	}
	if l.OverlapHide {
		m["transform"] = []map[string]any{{"type": "overlapHide"}}
	}
	return m
}

// tooltipValue resolves the mark tooltip against the spec tooltip. An
// explicit off short-circuits to disabled; otherwise the tooltip options
// pass through.
func tooltipValue(markT, specT *spec.Tooltip) any {
	t := markT
	if t == nil {
		t = specT
	}
	if t == nil {
		return nil
	}
	if t.Off {
		return false
	}
	if t.Options == nil {
		return map[string]any{}
	}
	return t.Options
}

// animateValue resolves animation as mark override falling back to spec.
func animateValue(markA, specA *bool) any {
	if markA != nil {
		return *markA
	}
	if specA != nil {
		return *specA
	}
	return nil
}

// coordinateMap renames the declarative transforms field to the renderer's
// expected "transform" key. The naming mismatch is a translation
// responsibility, not the caller's.
func coordinateMap(c *spec.Coordinate) map[string]any {
	m := make(map[string]any, 2)
	if c.Type != "" {
		m["type"] = c.Type
	}
	if len(c.Transforms) > 0 {
		ts := make([]map[string]any, len(c.Transforms))
		for i, t := range c.Transforms {
			ts[i] = transformMap(t)
		}
		m["transform"] = ts
	}
	return m
}

// axisMap translates per-channel axis settings. A disabled axis passes
// through as false. Otherwise tick visibility, tick/label/line/grid color
// tokens are always asserted from the active theme so labels stay legible
// across themes; title, grid, and line remain opt-in.
func axisMap(axes map[string]spec.Axis, tokens theme.Tokens) map[string]any {
	out := make(map[string]any, len(axes))
	for channel, a := range axes {
		if a.Off {
			out[channel] = false
			continue
		}
		m := map[string]any{
			"tick":       true,
			"tickStroke": tokens.Line,
			"labelFill":  tokens.Text,
			"lineStroke": tokens.Line,
			"gridStroke": tokens.Gridline,
		}
		if a.Title != "" {
			m["title"] = a.Title
			m["titleFill"] = tokens.TextSecondary
		}
		if a.Grid {
			m["grid"] = true
		}
		if a.Line {
			m["line"] = true
		}
		if a.LabelFormatter != nil {
			m["labelFormatter"] = a.LabelFormatter
		} else if a.LabelFormat != "" {
			m["labelFormatter"] = a.LabelFormat
		}
		if a.LabelRotate != 0 {
			m["labelTransform"] = []map[string]any{{
				"type":  "rotate",
				"angle": a.LabelRotate,
			}}
		}
		out[channel] = m
	}
	return out
}

// legendValue translates the legend. Disabled passes through as false;
// otherwise the color legend carries explicit text-color overrides so legend
// text remains legible regardless of renderer defaults.
func legendValue(l *spec.Legend, tokens theme.Tokens) any {
	if l.Off {
		return false
	}
	color := map[string]any{
		"itemLabelFill": tokens.Text,
		"titleFill":     tokens.TextSecondary,
	}
	if l.Position != "" {
		color["position"] = l.Position
	}
	return map[string]any{"color": color}
}

// interactionMap converts the ordered interaction list to a map keyed by
// type, each value being the remaining options. Duplicate types silently
// overwrite, last wins.
func interactionMap(interactions []spec.Interaction) map[string]map[string]any {
	out := make(map[string]map[string]any, len(interactions))
	for _, it := range interactions {
		opts := make(map[string]any, len(it.Options))
		for k, v := range it.Options {
			opts[k] = v
		}
		out[it.Type] = opts
	}
	return out
}
