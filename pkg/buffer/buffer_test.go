package buffer

import (
	"fmt"
	"testing"

	"github.com/chartflow/chartflow/pkg/errors"
	"github.com/chartflow/chartflow/pkg/spec"
)

func rowsWithSeq(n, from int) []any {
	items := make([]any, n)
	for i := range items {
		items[i] = spec.Row{"seq": from + i}
	}
	return items
}

func TestBuffer_AppendAndTruncate(t *testing.T) {
	b := New(3, nil)

	if err := b.Append(rowsWithSeq(2, 0)); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}
	if b.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", b.Len())
	}

	// Appending past the limit drops the oldest entries.
	if err := b.Append(rowsWithSeq(2, 2)); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}
	if b.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", b.Len())
	}
	for i, want := range []int{1, 2, 3} {
		if got := b.Rows()[i]["seq"]; got != want {
			t.Errorf("row %d seq = %v, want %d", i, got, want)
		}
	}
}

func TestBuffer_OverflowIsNotAnError(t *testing.T) {
	b := New(2, nil)
	if err := b.Append(rowsWithSeq(10, 0)); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}
	if b.Len() != 2 || b.Rows()[1]["seq"] != 9 {
		t.Errorf("rows = %v, want the two newest", b.Rows())
	}
}

func TestBuffer_Replace(t *testing.T) {
	b := New(5, nil)
	if err := b.Append(rowsWithSeq(3, 0)); err != nil {
		t.Fatal(err)
	}

	if err := b.Replace(rowsWithSeq(2, 100)); err != nil {
		t.Fatalf("Replace() failed: %v", err)
	}
	if b.Len() != 2 || b.Rows()[0]["seq"] != 100 {
		t.Errorf("rows = %v, want replaced contents", b.Rows())
	}
}

func TestBuffer_Clear(t *testing.T) {
	b := New(5, nil)
	if err := b.Append(rowsWithSeq(3, 0)); err != nil {
		t.Fatal(err)
	}
	b.Clear()
	if b.Len() != 0 {
		t.Errorf("Len() = %d after Clear", b.Len())
	}
}

func TestBuffer_DefaultLimit(t *testing.T) {
	for _, n := range []int{0, -5} {
		if got := New(n, nil).MaxItems(); got != spec.DefaultMaxItems {
			t.Errorf("New(%d).MaxItems() = %d, want %d", n, got, spec.DefaultMaxItems)
		}
	}
}

func TestBuffer_PositionalRows(t *testing.T) {
	b := New(10, []string{"ts", "cpu"})

	err := b.Append([]any{
		[]any{int64(100), 40.5},
		[]any{int64(200), 41.0, "extra ignored"},
		[]any{int64(300)}, // short rows leave trailing columns unset
	})
	if err != nil {
		t.Fatalf("Append() failed: %v", err)
	}

	rows := b.Rows()
	if rows[0]["ts"] != int64(100) || rows[0]["cpu"] != 40.5 {
		t.Errorf("row 0 = %v", rows[0])
	}
	if rows[1]["cpu"] != 41.0 {
		t.Errorf("row 1 = %v", rows[1])
	}
	if _, ok := rows[2]["cpu"]; ok {
		t.Errorf("row 2 = %v, want cpu unset", rows[2])
	}
}

func TestBuffer_PositionalWithoutColumnsFails(t *testing.T) {
	b := New(10, nil)
	err := b.Append([]any{[]any{1, 2}})
	if !errors.Is(err, errors.ErrCodeInvalidRows) {
		t.Errorf("error = %v, want INVALID_ROWS", err)
	}
	if b.Len() != 0 {
		t.Error("failed append left rows in the buffer")
	}
}

func TestBuffer_UnsupportedShapeFails(t *testing.T) {
	b := New(10, nil)
	err := b.Append([]any{"not a row"})
	if !errors.Is(err, errors.ErrCodeInvalidRows) {
		t.Errorf("error = %v, want INVALID_ROWS", err)
	}
}

func TestBuffer_MixedShapes(t *testing.T) {
	b := New(10, []string{"a"})
	err := b.Append([]any{
		spec.Row{"a": 1},
		map[string]any{"a": 2},
		[]any{3},
	})
	if err != nil {
		t.Fatalf("Append() failed: %v", err)
	}
	for i, want := range []int{1, 2, 3} {
		if got := b.Rows()[i]["a"]; fmt.Sprintf("%v", got) != fmt.Sprintf("%v", want) {
			t.Errorf("row %d a = %v, want %d", i, got, want)
		}
	}
}

func TestFromPolicy(t *testing.T) {
	b := FromPolicy(&spec.Streaming{MaxItems: 7, Columns: []string{"x"}})
	if b.MaxItems() != 7 {
		t.Errorf("MaxItems() = %d, want 7", b.MaxItems())
	}
	if err := b.Append([]any{[]any{1}}); err != nil {
		t.Errorf("columns not carried from policy: %v", err)
	}

	if got := FromPolicy(nil).MaxItems(); got != spec.DefaultMaxItems {
		t.Errorf("nil policy MaxItems() = %d, want default", got)
	}
}

func TestNormalizeRows(t *testing.T) {
	rows := []spec.Row{{"a": 1}, {"a": 2}}
	items := NormalizeRows(rows)
	if len(items) != 2 {
		t.Fatalf("len = %d", len(items))
	}
	if r, ok := items[0].(spec.Row); !ok || r["a"] != 1 {
		t.Errorf("items[0] = %v", items[0])
	}
}
