// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers can register
// hooks at startup to receive events about pipeline compilation, buffer
// mutations, and spec store operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetEngineHooks(&myEngineHooks{})
//	    observability.SetBufferHooks(&myBufferHooks{})
//	    // ... run application
//	}
package observability

import (
	"sync"
	"time"
)

// =============================================================================
// Engine Hooks
// =============================================================================

// EngineHooks receives events from the compile pipeline.
type EngineHooks interface {
	// OnFilter records a temporal filter pass: the binding mode, input and
	// output row counts.
	OnFilter(mode string, in, out int)

	// OnCompile records a full pipeline run (filter → coerce → translate).
	OnCompile(marks, rows int, duration time.Duration)

	// OnRender records a renderer invocation.
	OnRender(duration time.Duration, err error)
}

// =============================================================================
// Buffer Hooks
// =============================================================================

// BufferHooks receives events from streaming buffer mutations.
type BufferHooks interface {
	// OnAppend records an append: rows added and the resulting buffer size.
	OnAppend(added, size int)

	// OnReplace records a wholesale buffer replacement.
	OnReplace(size int)

	// OnClear records a buffer clear.
	OnClear()

	// OnDrop records rows dropped by the retention limit.
	OnDrop(dropped int)

	// OnThrottle records a redraw coalesced by the throttle scheduler.
	OnThrottle()
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from spec store operations.
type StoreHooks interface {
	// OnGet records a lookup and whether it was found.
	OnGet(name string, found bool)

	// OnSet records a spec write.
	OnSet(name string)

	// OnDelete records a spec removal.
	OnDelete(name string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEngineHooks is a no-op implementation of EngineHooks.
type NoopEngineHooks struct{}

func (NoopEngineHooks) OnFilter(string, int, int)         {}
func (NoopEngineHooks) OnCompile(int, int, time.Duration) {}
func (NoopEngineHooks) OnRender(time.Duration, error)     {}

// NoopBufferHooks is a no-op implementation of BufferHooks.
type NoopBufferHooks struct{}

func (NoopBufferHooks) OnAppend(int, int) {}
func (NoopBufferHooks) OnReplace(int)     {}
func (NoopBufferHooks) OnClear()          {}
func (NoopBufferHooks) OnDrop(int)        {}
func (NoopBufferHooks) OnThrottle()       {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnGet(string, bool) {}
func (NoopStoreHooks) OnSet(string)       {}
func (NoopStoreHooks) OnDelete(string)    {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	engineHooks EngineHooks = NoopEngineHooks{}
	bufferHooks BufferHooks = NoopBufferHooks{}
	storeHooks  StoreHooks  = NoopStoreHooks{}
	hooksMu     sync.RWMutex
)

// SetEngineHooks registers custom engine hooks.
// This should be called once at application startup before any compilation.
func SetEngineHooks(h EngineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		engineHooks = h
	}
}

// SetBufferHooks registers custom buffer hooks.
// This should be called once at application startup before any buffer use.
func SetBufferHooks(h BufferHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		bufferHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before any store use.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// Engine returns the registered engine hooks.
func Engine() EngineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return engineHooks
}

// Buffer returns the registered buffer hooks.
func Buffer() BufferHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return bufferHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	engineHooks = NoopEngineHooks{}
	bufferHooks = NoopBufferHooks{}
	storeHooks = NoopStoreHooks{}
}
