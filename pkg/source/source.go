// Package source feeds live rows into a chart's streaming buffer.
//
// A Source reads rows from somewhere — an NDJSON stream, a Redis pub/sub
// channel — and pushes them into a Sink. The engine's Chart satisfies Sink,
// so wiring a live chart is:
//
//	src := source.NewReader(os.Stdin)
//	err := src.Run(ctx, chart)
//
// Sources stop when their input ends or the context is cancelled. Row
// delivery order is preserved; the sink's streaming policy decides between
// append and replace semantics.
package source

import (
	"context"

	"github.com/chartflow/chartflow/pkg/spec"
)

// Sink receives batches of rows. engine.Chart implements Sink.
type Sink interface {
	Push(rows []spec.Row) error
}

// Source streams rows into a sink until its input ends or ctx is cancelled.
type Source interface {
	Run(ctx context.Context, sink Sink) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(rows []spec.Row) error

// Push implements Sink.
func (f SinkFunc) Push(rows []spec.Row) error {
	return f(rows)
}
