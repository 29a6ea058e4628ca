package buffer

import (
	"sync"
	"time"

	"github.com/chartflow/chartflow/pkg/observability"
)

// Scheduler states.
const (
	stateIdle = iota
	stateScheduled
)

// Scheduler coalesces redraws under a throttle interval. It is a small
// explicit state machine with two states (idle, scheduled) and one pending
// flag:
//
//   - Zero interval: every Trigger flushes immediately and synchronously.
//   - Positive interval: the first Trigger in a window flushes immediately
//     and starts a timer. Further Triggers before the timer fires set the
//     pending flag instead of scheduling a second timer. When the timer
//     fires with the flag set, exactly one more flush runs, the flag
//     clears, and a new window begins; otherwise the window simply expires.
//
// This guarantees at most one flush per throttle interval while never
// dropping a final pending update.
//
// The timer callback runs on its own goroutine, so the state machine is
// internally locked even though buffer mutations are single-writer.
type Scheduler struct {
	interval time.Duration
	flush    func()

	mu      sync.Mutex
	state   int
	pending bool
	timer   *time.Timer
	stopped bool
}

// NewScheduler creates a scheduler invoking flush under the given throttle
// interval. A zero or negative interval disables throttling.
func NewScheduler(interval time.Duration, flush func()) *Scheduler {
	return &Scheduler{interval: interval, flush: flush}
}

// Trigger requests a flush. See the type documentation for coalescing
// semantics.
func (s *Scheduler) Trigger() {
	if s.interval <= 0 {
		s.flush()
		return
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	if s.state == stateScheduled {
		s.pending = true
		s.mu.Unlock()
		observability.Buffer().OnThrottle()
		return
	}
	s.state = stateScheduled
	s.timer = time.AfterFunc(s.interval, s.expire)
	s.mu.Unlock()

	s.flush()
}

// expire is the timer callback closing a throttle window.
func (s *Scheduler) expire() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	if !s.pending {
		s.state = stateIdle
		s.timer = nil
		s.mu.Unlock()
		return
	}
	// A mutation arrived during the window: run the one deferred flush and
	// open a fresh window so the per-interval bound keeps holding.
	s.pending = false
	s.timer = time.AfterFunc(s.interval, s.expire)
	s.mu.Unlock()

	s.flush()
}

// Stop cancels any pending timer. Destroying the owning chart must call
// Stop so a deferred redraw never fires against a torn-down rendering
// surface. Stop is idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.pending = false
	s.state = stateIdle
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Interval returns the configured throttle interval.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}
