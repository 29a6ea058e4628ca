package spec

import (
	"encoding/json"
	"testing"
)

func TestField_NamedBinding(t *testing.T) {
	f := Name("cpu")

	if f.IsZero() || f.IsAccessor() {
		t.Error("named field reported as zero or accessor")
	}
	name, ok := f.FieldName()
	if !ok || name != "cpu" {
		t.Errorf("FieldName() = %q, %v; want cpu, true", name, ok)
	}
	if got := f.Value(Row{"cpu": 42}); got != 42 {
		t.Errorf("Value() = %v, want 42", got)
	}
	if got := f.Raw(); got != "cpu" {
		t.Errorf("Raw() = %v, want cpu", got)
	}
}

func TestField_AccessorBinding(t *testing.T) {
	f := Accessor(func(r Row) any { return r["a"].(int) + r["b"].(int) })

	if !f.IsAccessor() {
		t.Fatal("IsAccessor() = false")
	}
	if _, ok := f.FieldName(); ok {
		t.Error("FieldName() reported a literal name for an accessor")
	}
	if got := f.Value(Row{"a": 2, "b": 3}); got != 5 {
		t.Errorf("Value() = %v, want 5", got)
	}
	if f.String() != "accessor()" {
		t.Errorf("String() = %q", f.String())
	}
}

func TestField_ZeroValue(t *testing.T) {
	var f Field
	if !f.IsZero() {
		t.Error("zero field reported as bound")
	}
	if _, ok := f.FieldName(); ok {
		t.Error("zero field reported a name")
	}
}

func TestField_JSON(t *testing.T) {
	t.Run("named marshals as string", func(t *testing.T) {
		data, err := json.Marshal(Name("ts"))
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != `"ts"` {
			t.Errorf("Marshal = %s, want \"ts\"", data)
		}
	})

	t.Run("accessor marshals as null", func(t *testing.T) {
		data, err := json.Marshal(Accessor(func(Row) any { return nil }))
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "null" {
			t.Errorf("Marshal = %s, want null", data)
		}
	})

	t.Run("unmarshal string", func(t *testing.T) {
		var f Field
		if err := json.Unmarshal([]byte(`"host"`), &f); err != nil {
			t.Fatal(err)
		}
		if name, ok := f.FieldName(); !ok || name != "host" {
			t.Errorf("FieldName() = %q, %v", name, ok)
		}
	})

	t.Run("unmarshal non-string fails", func(t *testing.T) {
		var f Field
		if err := json.Unmarshal([]byte(`42`), &f); err == nil {
			t.Error("want error for numeric channel binding")
		}
	})
}
