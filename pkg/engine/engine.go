// Package engine ties the compile pipeline to the streaming buffer and the
// external rendering backend.
//
// The pipeline itself — temporal filter, time-field coercion, grammar
// translation, theme application — is a pure function of (spec, rows) and is
// exposed as [Compile]. The only stateful piece is [Chart], which owns the
// live row buffer and the throttled redraw scheduler and exists solely to
// decide when Compile re-runs.
//
// # Usage
//
//	chart, err := engine.NewChart(s, myRenderer, logger)
//	if err != nil {
//	    return err
//	}
//	defer chart.Close()
//
//	chart.Append(rows)   // schedules a redraw under the throttle policy
//	cfg, err := chart.Config() // compile on demand without rendering
package engine

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/chartflow/chartflow/pkg/buffer"
	"github.com/chartflow/chartflow/pkg/errors"
	"github.com/chartflow/chartflow/pkg/observability"
	"github.com/chartflow/chartflow/pkg/spec"
	"github.com/chartflow/chartflow/pkg/temporal"
	"github.com/chartflow/chartflow/pkg/translate"
)

// Renderer is the external rendering backend. It consumes a plain
// configuration object and draws it; its internals are opaque to the engine.
type Renderer interface {
	Render(ctx context.Context, cfg *translate.Config) error
	Close() error
}

// Compile runs the full pipeline: temporal filter → time-field coercion →
// grammar translation → theme application, then attaches the filtered rows
// and, in axis mode, the computed visible time domain. It is pure: neither
// the spec nor the rows are mutated.
func Compile(s *spec.Spec, rows []spec.Row) (*translate.Config, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	filtered := temporal.Filter(s.Temporal, rows)
	if t := s.Temporal; t != nil {
		observability.Engine().OnFilter(t.Mode, len(rows), len(filtered))
		if !translate.BandProtected(s, t.Field) {
			filtered = temporal.CoerceField(filtered, t.Field)
		}
	}

	cfg := translate.Translate(s)
	cfg.Data = filtered

	if t := s.Temporal; t != nil && t.Mode == spec.ModeAxis {
		// The window is anchored on the full input set, not the filtered one.
		minInstant, maxInstant := temporal.Domain(t, rows)
		translate.AttachSlidingDomain(cfg, minInstant, maxInstant)
	}

	observability.Engine().OnCompile(len(s.Marks), len(filtered), time.Since(start))
	return cfg, nil
}

// =============================================================================
// Chart - Stateful Instance
// =============================================================================

// Chart is a live chart instance: an immutable spec, a bounded row buffer,
// a redraw scheduler, and a handle to the rendering backend.
//
// Buffer mutations assume a single writer. The scheduler's timer callback
// runs on its own goroutine, so internal state is still locked.
type Chart struct {
	// ID identifies the chart instance, e.g. as an API session key.
	ID string

	spec     *spec.Spec
	renderer Renderer
	logger   *log.Logger

	mu    sync.Mutex
	buf   *buffer.Buffer
	sched *buffer.Scheduler

	// lastErr holds the most recent render failure for the host to display
	// a fallback against.
	lastErr error
}

// NewChart creates a chart instance for the given spec. The renderer may be
// nil for hosts that only pull compiled configuration via Config. A nil
// logger discards output.
func NewChart(s *spec.Spec, r Renderer, logger *log.Logger) (*Chart, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	c := &Chart{
		ID:       uuid.NewString(),
		spec:     s,
		renderer: r,
		logger:   logger,
		buf:      buffer.FromPolicy(s.Streaming),
	}
	c.sched = buffer.NewScheduler(s.Streaming.Throttle(), c.redraw)
	return c, nil
}

// Spec returns the chart's spec. Callers must not mutate it.
func (c *Chart) Spec() *spec.Spec {
	return c.spec
}

// Renderer returns the underlying renderer instance for advanced
// escape-hatch use.
func (c *Chart) Renderer() Renderer {
	return c.renderer
}

// Append adds rows to the buffer and schedules a redraw.
func (c *Chart) Append(items []any) error {
	c.mu.Lock()
	err := c.buf.Append(items)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.trigger()
	return nil
}

// Replace swaps the buffer contents and schedules a redraw.
func (c *Chart) Replace(items []any) error {
	c.mu.Lock()
	err := c.buf.Replace(items)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.trigger()
	return nil
}

// Clear empties the buffer and schedules a redraw.
func (c *Chart) Clear() {
	c.mu.Lock()
	c.buf.Clear()
	c.mu.Unlock()
	c.trigger()
}

// Push applies rows under the streaming policy's update mode.
func (c *Chart) Push(rows []spec.Row) error {
	items := buffer.NormalizeRows(rows)
	if c.spec.Streaming.UpdateMode() == spec.UpdateReplace {
		return c.Replace(items)
	}
	return c.Append(items)
}

// Len returns the number of buffered rows.
func (c *Chart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Len()
}

// Config compiles the spec against the current buffer without rendering.
func (c *Chart) Config() (*translate.Config, error) {
	c.mu.Lock()
	rows := c.buf.Rows()
	c.mu.Unlock()
	return Compile(c.spec, rows)
}

// Render compiles and hands the configuration to the renderer immediately,
// bypassing the throttle. Render failures are wrapped, not panicked: the
// host UI layer is responsible for displaying a fallback.
func (c *Chart) Render(ctx context.Context) error {
	if c.renderer == nil {
		return nil
	}
	cfg, err := c.Config()
	if err != nil {
		return err
	}

	start := time.Now()
	err = c.renderer.Render(ctx, cfg)
	observability.Engine().OnRender(time.Since(start), err)
	if err != nil {
		err = errors.Wrap(errors.ErrCodeRenderFailed, err, "render chart %s", c.ID)
		c.mu.Lock()
		c.lastErr = err
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.lastErr = nil
	c.mu.Unlock()
	return nil
}

// LastRenderErr returns the most recent render failure, or nil.
func (c *Chart) LastRenderErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Close cancels any pending throttle timer and releases the renderer. A
// deferred redraw never fires against a torn-down rendering surface.
func (c *Chart) Close() error {
	c.sched.Stop()
	if c.renderer != nil {
		return c.renderer.Close()
	}
	return nil
}

// trigger schedules a redraw when a renderer is attached. Pull-only hosts
// compile on demand instead.
func (c *Chart) trigger() {
	if c.renderer == nil {
		return
	}
	c.sched.Trigger()
}

// redraw is the scheduler flush callback.
func (c *Chart) redraw() {
	if err := c.Render(context.Background()); err != nil {
		c.logger.Error("render failed", "chart", c.ID, "err", err)
	}
}
