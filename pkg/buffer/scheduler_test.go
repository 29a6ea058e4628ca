package buffer

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// counter is a flush target counting invocations.
type counter struct {
	n atomic.Int64
}

func (c *counter) flush()       { c.n.Add(1) }
func (c *counter) count() int64 { return c.n.Load() }

func TestScheduler_ZeroIntervalFlushesSynchronously(t *testing.T) {
	var c counter
	s := NewScheduler(0, c.flush)

	for range 5 {
		s.Trigger()
	}
	if got := c.count(); got != 5 {
		t.Errorf("flushes = %d, want 5", got)
	}
}

func TestScheduler_LeadingEdgeFlush(t *testing.T) {
	var c counter
	s := NewScheduler(time.Hour, c.flush)
	defer s.Stop()

	s.Trigger()
	if got := c.count(); got != 1 {
		t.Errorf("flushes = %d, want immediate leading-edge flush", got)
	}
}

func TestScheduler_CoalescesWithinWindow(t *testing.T) {
	var c counter
	s := NewScheduler(50*time.Millisecond, c.flush)
	defer s.Stop()

	// First trigger flushes immediately; the burst coalesces into exactly
	// one deferred flush when the window expires.
	for range 10 {
		s.Trigger()
	}
	if got := c.count(); got != 1 {
		t.Fatalf("flushes = %d during window, want 1", got)
	}

	waitFor(t, time.Second, func() bool { return c.count() == 2 })

	// The deferred flush opened a fresh window; with no further triggers it
	// expires quietly.
	time.Sleep(120 * time.Millisecond)
	if got := c.count(); got != 2 {
		t.Errorf("flushes = %d after quiet expiry, want 2", got)
	}
}

func TestScheduler_QuietWindowExpiresWithoutFlush(t *testing.T) {
	var c counter
	s := NewScheduler(30*time.Millisecond, c.flush)
	defer s.Stop()

	s.Trigger()
	time.Sleep(80 * time.Millisecond)
	if got := c.count(); got != 1 {
		t.Fatalf("flushes = %d, want 1", got)
	}

	// After expiry the scheduler is idle again: the next trigger is a fresh
	// leading edge.
	s.Trigger()
	if got := c.count(); got != 2 {
		t.Errorf("flushes = %d, want immediate flush in new window", got)
	}
}

func TestScheduler_StopCancelsPendingFlush(t *testing.T) {
	var c counter
	s := NewScheduler(30*time.Millisecond, c.flush)

	s.Trigger()
	s.Trigger() // pending
	s.Stop()

	time.Sleep(80 * time.Millisecond)
	if got := c.count(); got != 1 {
		t.Errorf("flushes = %d after Stop, want 1", got)
	}

	// Stop is idempotent and final: further triggers are ignored.
	s.Stop()
	s.Trigger()
	if got := c.count(); got != 1 {
		t.Errorf("flushes = %d after post-Stop trigger, want 1", got)
	}
}

func TestScheduler_ConcurrentTriggers(t *testing.T) {
	var c counter
	s := NewScheduler(20*time.Millisecond, c.flush)
	defer s.Stop()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 25 {
				s.Trigger()
			}
		}()
	}
	wg.Wait()

	waitFor(t, time.Second, func() bool { return c.count() >= 2 })
	// The exact count depends on timing; the bound is what matters: far
	// fewer flushes than the 200 triggers.
	if got := c.count(); got > 20 {
		t.Errorf("flushes = %d, want coalescing well below trigger count", got)
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached before timeout")
}
