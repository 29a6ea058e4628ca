package inspect

import (
	"strings"
	"testing"

	"github.com/chartflow/chartflow/pkg/spec"
	"github.com/chartflow/chartflow/pkg/translate"
)

func diagramSpec() *spec.Spec {
	return &spec.Spec{
		Temporal: &spec.Temporal{Mode: spec.ModeAxis, Field: "ts", Range: spec.MinutesWindow(5)},
		Scales:   map[string]spec.Scale{"x": {Type: "time"}},
		Marks: []spec.Mark{{
			Type:   "line",
			Encode: map[string]spec.Field{"x": spec.Name("ts"), "y": spec.Name("cpu")},
		}},
		Annotations:  []spec.Annotation{{Type: "lineY", Value: 90.0}},
		Axes:         map[string]spec.Axis{"y": {Grid: true}},
		Interactions: []spec.Interaction{{Type: "tooltip"}},
	}
}

func TestToDOT(t *testing.T) {
	cfg := translate.Translate(diagramSpec())
	dot := ToDOT(cfg, Options{})

	for _, want := range []string{
		"digraph config",
		"root [label=",
		"children: 2",
		"root -> child0",
		"root -> child1",
		"x: ts",
		"y: cpu",
		"lineY",
		"data: 1",
		"sec_axis",
		"sec_interaction",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q:\n%s", want, dot)
		}
	}

	// No chrome sections that the spec does not declare.
	if strings.Contains(dot, "sec_coordinate") || strings.Contains(dot, "sec_legend") {
		t.Errorf("DOT output has undeclared sections:\n%s", dot)
	}
}

func TestToDOT_Detailed(t *testing.T) {
	cfg := translate.Translate(diagramSpec())

	plain := ToDOT(cfg, Options{})
	detailed := ToDOT(cfg, Options{Detailed: true})

	if strings.Contains(plain, "scale.x: time") {
		t.Error("plain output leaked scale detail")
	}
	if !strings.Contains(detailed, "scale.x: time") {
		t.Errorf("detailed output missing scale detail:\n%s", detailed)
	}
	if !strings.Contains(detailed, "transform: sortBy") {
		t.Errorf("detailed output missing transform tags:\n%s", detailed)
	}
}

func TestToDOT_AccessorChannels(t *testing.T) {
	s := &spec.Spec{
		Marks: []spec.Mark{{
			Type: "point",
			Encode: map[string]spec.Field{
				"y": spec.Accessor(func(r spec.Row) any { return r["v"] }),
			},
		}},
	}

	dot := ToDOT(translate.Translate(s), Options{})
	if !strings.Contains(dot, "y: accessor()") {
		t.Errorf("accessor channel not labelled:\n%s", dot)
	}
}
