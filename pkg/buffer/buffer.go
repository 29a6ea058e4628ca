// Package buffer owns the bounded, mutable row store backing a live chart
// and the throttled redraw scheduler that decides when the compile pipeline
// re-runs.
//
// The buffer assumes a single writer: the owning chart instance is the sole
// mutator. Hosts with multiple logical producers must serialize calls before
// they reach the buffer.
package buffer

import (
	"github.com/chartflow/chartflow/pkg/errors"
	"github.com/chartflow/chartflow/pkg/observability"
	"github.com/chartflow/chartflow/pkg/spec"
)

// Buffer is a bounded FIFO-like row store. Appending past the maximum
// retained size silently drops the oldest entries; overflow is the intended
// backpressure mechanism for unbounded streams, never an error.
type Buffer struct {
	maxItems int
	columns  []string
	rows     []spec.Row
}

// New creates an empty buffer retaining at most maxItems rows. Columns, when
// non-empty, name the positions of array-shaped incoming rows so they can be
// mapped to records.
func New(maxItems int, columns []string) *Buffer {
	if maxItems <= 0 {
		maxItems = spec.DefaultMaxItems
	}
	return &Buffer{maxItems: maxItems, columns: columns}
}

// FromPolicy creates a buffer configured by a streaming policy.
func FromPolicy(p *spec.Streaming) *Buffer {
	var columns []string
	if p != nil {
		columns = p.Columns
	}
	return New(p.Limit(), columns)
}

// Append normalizes incoming rows, concatenates them to the buffer, and
// truncates to the most recent maxItems entries.
func (b *Buffer) Append(items []any) error {
	rows, err := b.normalize(items)
	if err != nil {
		return err
	}
	b.rows = append(b.rows, rows...)
	b.truncate()
	observability.Buffer().OnAppend(len(rows), len(b.rows))
	return nil
}

// Replace discards the previous buffer entirely, keeping the most recent
// maxItems of the incoming rows.
func (b *Buffer) Replace(items []any) error {
	rows, err := b.normalize(items)
	if err != nil {
		return err
	}
	b.rows = rows
	b.truncate()
	observability.Buffer().OnReplace(len(b.rows))
	return nil
}

// Clear empties the buffer.
func (b *Buffer) Clear() {
	b.rows = nil
	observability.Buffer().OnClear()
}

// Rows returns the buffered rows. The returned slice is shared with the
// buffer; callers must treat it as read-only.
func (b *Buffer) Rows() []spec.Row {
	return b.rows
}

// Len returns the current number of buffered rows.
func (b *Buffer) Len() int {
	return len(b.rows)
}

// MaxItems returns the retention limit.
func (b *Buffer) MaxItems() int {
	return b.maxItems
}

func (b *Buffer) truncate() {
	if over := len(b.rows) - b.maxItems; over > 0 {
		b.rows = b.rows[over:]
		observability.Buffer().OnDrop(over)
	}
}

// normalize converts incoming items to records. Record rows pass through;
// positional arrays are mapped via column metadata when available.
func (b *Buffer) normalize(items []any) ([]spec.Row, error) {
	rows := make([]spec.Row, 0, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case spec.Row:
			rows = append(rows, v)
		case map[string]any:
			rows = append(rows, spec.Row(v))
		case []any:
			row, err := b.fromColumns(v)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidRows, err, "row %d", i)
			}
			rows = append(rows, row)
		default:
			return nil, errors.New(errors.ErrCodeInvalidRows,
				"row %d has unsupported shape %T (want record or positional array)", i, item)
		}
	}
	return rows, nil
}

func (b *Buffer) fromColumns(values []any) (spec.Row, error) {
	if len(b.columns) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidRows,
			"positional row requires column metadata in the streaming policy")
	}
	row := make(spec.Row, len(b.columns))
	for i, col := range b.columns {
		if i < len(values) {
			row[col] = values[i]
		}
	}
	return row, nil
}

// NormalizeRows is a convenience for callers that already hold records.
func NormalizeRows(rows []spec.Row) []any {
	items := make([]any, len(rows))
	for i, r := range rows {
		items[i] = r
	}
	return items
}
