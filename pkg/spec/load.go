package spec

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/chartflow/chartflow/pkg/errors"
)

// Load reads a spec from a TOML or JSON file, picking the decoder by file
// extension (.toml, .json). The loaded spec is validated.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spec file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return ParseTOML(data)
	case ".json":
		return ParseJSON(data)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat,
			"unsupported spec format %q (must be .toml or .json)", filepath.Ext(path))
	}
}

// ParseTOML decodes and validates a TOML spec document.
func ParseTOML(data []byte) (*Spec, error) {
	var s Spec
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSpec, err, "parse TOML spec")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ParseJSON decodes and validates a JSON spec document.
func ParseJSON(data []byte) (*Spec, error) {
	var s Spec
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSpec, err, "parse JSON spec")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// The grammar allows axes, legend, and tooltip entries to be the literal
// JSON value false, meaning "explicitly disabled". The UnmarshalJSON
// implementations below accept both the boolean shorthand and the object
// form.

type axisAlias Axis

// UnmarshalJSON accepts false (axis disabled) or an axis object.
func (a *Axis) UnmarshalJSON(data []byte) error {
	if isJSONFalse(data) {
		*a = Axis{Off: true}
		return nil
	}
	var alias axisAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*a = Axis(alias)
	return nil
}

type legendAlias Legend

// UnmarshalJSON accepts false (legend disabled) or a legend object.
func (l *Legend) UnmarshalJSON(data []byte) error {
	if isJSONFalse(data) {
		*l = Legend{Off: true}
		return nil
	}
	var alias legendAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*l = Legend(alias)
	return nil
}

type tooltipAlias Tooltip

// UnmarshalJSON accepts false (tooltip disabled) or a tooltip object.
func (t *Tooltip) UnmarshalJSON(data []byte) error {
	if isJSONFalse(data) {
		*t = Tooltip{Off: true}
		return nil
	}
	var alias tooltipAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*t = Tooltip(alias)
	return nil
}

func isJSONFalse(data []byte) bool {
	return strings.TrimSpace(string(data)) == "false"
}
