package spec

import (
	"encoding/json"
	"fmt"
)

// Field binds an encoding channel to data. It is a tagged union: either a
// literal field name looked up on each row, or an accessor function that
// computes a value from a row. Dispatch is explicit via IsAccessor rather
// than runtime type inspection.
type Field struct {
	name string
	fn   func(Row) any
}

// Name creates a Field that reads the named key from each row.
func Name(name string) Field {
	return Field{name: name}
}

// Accessor creates a Field computed by fn for each row.
func Accessor(fn func(Row) any) Field {
	return Field{fn: fn}
}

// IsZero reports whether the field binds nothing.
func (f Field) IsZero() bool {
	return f.name == "" && f.fn == nil
}

// IsAccessor reports whether the field is a computed accessor.
func (f Field) IsAccessor() bool {
	return f.fn != nil
}

// FieldName returns the literal field name and true, or "" and false for
// accessor fields.
func (f Field) FieldName() (string, bool) {
	if f.fn != nil {
		return "", false
	}
	return f.name, f.name != ""
}

// Value resolves the field against a row.
func (f Field) Value(row Row) any {
	if f.fn != nil {
		return f.fn(row)
	}
	return row[f.name]
}

// Raw returns the value handed to the renderer configuration: the literal
// name for named fields, or the accessor function itself for computed
// channels.
func (f Field) Raw() any {
	if f.fn != nil {
		return f.fn
	}
	return f.name
}

// String implements fmt.Stringer for logs and error messages.
func (f Field) String() string {
	if f.fn != nil {
		return "accessor()"
	}
	return f.name
}

// MarshalJSON serializes named fields as strings. Accessor fields are not
// serializable and marshal as null.
func (f Field) MarshalJSON() ([]byte, error) {
	if f.fn != nil {
		return []byte("null"), nil
	}
	return json.Marshal(f.name)
}

// UnmarshalJSON accepts a string field name.
func (f *Field) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("encode channel must be a field name string: %w", err)
	}
	f.name = name
	f.fn = nil
	return nil
}

// UnmarshalTOML accepts a string field name.
func (f *Field) UnmarshalTOML(v any) error {
	name, ok := v.(string)
	if !ok {
		return fmt.Errorf("encode channel must be a field name string, got %T", v)
	}
	f.name = name
	f.fn = nil
	return nil
}
