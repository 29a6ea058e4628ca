// Package inspect renders a compiled configuration tree as a Graphviz
// diagram. It is a debugging aid for spec authors: the diagram shows the
// root, each mark/annotation child, and the merged scales and transforms
// flowing into it — not the chart itself.
package inspect

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/chartflow/chartflow/pkg/translate"
)

// Options configures configuration-tree rendering.
type Options struct {
	// Detailed includes scale hints and transform tags in child labels.
	// When false, only type tags and channels are shown.
	Detailed bool
}

// ToDOT converts a configuration tree to Graphviz DOT format. The resulting
// DOT string can be rendered with [RenderSVG].
func ToDOT(cfg *translate.Config, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph config {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	rootLabel := fmt.Sprintf("%s\nchildren: %d, rows: %d", cfg.Type, len(cfg.Children), len(cfg.Data))
	fmt.Fprintf(&buf, "  root [label=%q, fillcolor=lightblue];\n", rootLabel)

	for i, child := range cfg.Children {
		id := fmt.Sprintf("child%d", i)
		fmt.Fprintf(&buf, "  %s [label=%q%s];\n", id, childLabel(child, opts.Detailed), childAttrs(child))
		fmt.Fprintf(&buf, "  root -> %s;\n", id)
	}

	for _, section := range rootSections(cfg) {
		id := "sec_" + section
		fmt.Fprintf(&buf, "  %s [label=%q, style=\"rounded,filled,dashed\", fillcolor=lightgrey];\n", id, section)
		fmt.Fprintf(&buf, "  root -> %s [style=dashed];\n", id)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func childLabel(n *translate.Node, detailed bool) string {
	parts := []string{n.Type}

	if len(n.Encode) > 0 {
		channels := slices.Sorted(maps.Keys(n.Encode))
		for _, ch := range channels {
			parts = append(parts, fmt.Sprintf("%s: %s", ch, encodeValue(n.Encode[ch])))
		}
	}
	if n.Data != nil {
		parts = append(parts, fmt.Sprintf("data: %d", len(n.Data)))
	}

	if detailed {
		for _, ch := range slices.Sorted(maps.Keys(n.Scale)) {
			if t, ok := n.Scale[ch]["type"]; ok {
				parts = append(parts, fmt.Sprintf("scale.%s: %v", ch, t))
			}
		}
		for _, t := range n.Transform {
			parts = append(parts, fmt.Sprintf("transform: %v", t["type"]))
		}
	}

	return strings.Join(parts, "\n")
}

func childAttrs(n *translate.Node) string {
	// Annotation children carry their own data array.
	if n.Data != nil {
		return ", fillcolor=lightyellow"
	}
	return ""
}

func encodeValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return "accessor()"
}

func rootSections(cfg *translate.Config) []string {
	var sections []string
	if cfg.Coordinate != nil {
		sections = append(sections, "coordinate")
	}
	if cfg.Axis != nil {
		sections = append(sections, "axis")
	}
	if cfg.Legend != nil {
		sections = append(sections, "legend")
	}
	if cfg.Interaction != nil {
		sections = append(sections, "interaction")
	}
	return sections
}

// RenderSVG renders a DOT diagram to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
