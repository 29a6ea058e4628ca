package source

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/chartflow/chartflow/pkg/spec"
)

// maxLineBytes bounds a single NDJSON line.
const maxLineBytes = 1 << 20

// Reader streams newline-delimited JSON rows from an io.Reader. Each line is
// either a single row object or an array of row objects.
type Reader struct {
	r io.Reader
}

// NewReader creates an NDJSON row source.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Run reads lines until EOF or context cancellation, pushing each decoded
// batch to the sink. Blank lines are skipped; a malformed line aborts with
// an error rather than being silently dropped.
func (r *Reader) Run(ctx context.Context, sink Sink) error {
	scanner := bufio.NewScanner(r.r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return err
		}
		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}

		rows, err := DecodeRows(data)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if err := sink.Push(rows); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// DecodeRows parses a JSON payload holding either one row object or an
// array of row objects.
func DecodeRows(data []byte) ([]spec.Row, error) {
	var row spec.Row
	if err := json.Unmarshal(data, &row); err == nil {
		return []spec.Row{row}, nil
	}
	var rows []spec.Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse rows: %w", err)
	}
	return rows, nil
}

// Ensure Reader implements Source.
var _ Source = (*Reader)(nil)
