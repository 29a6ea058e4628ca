// Package store persists named chart specs.
//
// This package defines the Store interface with implementations for
// different backends:
//   - memory: In-memory storage for development/testing
//   - file: File-based storage for CLI applications
//   - mongo (subpackage): Document storage for multi-instance deployments
//
// Stored specs are serialized as JSON. Accessor-valued channels are not
// serializable; a stored spec round-trips every literal binding and drops
// computed ones.
package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/chartflow/chartflow/pkg/errors"
	"github.com/chartflow/chartflow/pkg/observability"
	"github.com/chartflow/chartflow/pkg/spec"
)

// Store persists named chart specs.
type Store interface {
	// Get returns the named spec, or an error with code SPEC_NOT_FOUND.
	Get(ctx context.Context, name string) (*spec.Spec, error)

	// Set writes the named spec, replacing any previous version.
	Set(ctx context.Context, name string, s *spec.Spec) error

	// List returns the stored spec names in lexical order.
	List(ctx context.Context) ([]string, error)

	// Delete removes the named spec. Deleting a missing spec is not an
	// error.
	Delete(ctx context.Context, name string) error

	// Close releases backend resources.
	Close() error
}

// Marshal serializes a spec for storage.
func Marshal(s *spec.Spec) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSpec, err, "serialize spec")
	}
	return data, nil
}

// Unmarshal deserializes a stored spec.
func Unmarshal(data []byte) (*spec.Spec, error) {
	var s spec.Spec
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSpec, err, "parse stored spec")
	}
	return &s, nil
}

// =============================================================================
// MemoryStore
// =============================================================================

// MemoryStore keeps specs in memory. Safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	specs map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{specs: make(map[string][]byte)}
}

// Get returns the named spec.
func (m *MemoryStore) Get(ctx context.Context, name string) (*spec.Spec, error) {
	m.mu.RLock()
	data, ok := m.specs[name]
	m.mu.RUnlock()

	observability.Store().OnGet(name, ok)
	if !ok {
		return nil, errors.New(errors.ErrCodeSpecNotFound, "no spec named %q", name)
	}
	return Unmarshal(data)
}

// Set writes the named spec.
func (m *MemoryStore) Set(ctx context.Context, name string, s *spec.Spec) error {
	if err := errors.ValidateSpecName(name); err != nil {
		return err
	}
	data, err := Marshal(s)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.specs[name] = data
	m.mu.Unlock()

	observability.Store().OnSet(name)
	return nil
}

// List returns stored spec names in lexical order.
func (m *MemoryStore) List(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	names := make([]string, 0, len(m.specs))
	for name := range m.specs {
		names = append(names, name)
	}
	m.mu.RUnlock()

	sort.Strings(names)
	return names, nil
}

// Delete removes the named spec.
func (m *MemoryStore) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	delete(m.specs, name)
	m.mu.Unlock()

	observability.Store().OnDelete(name)
	return nil
}

// Close does nothing for the memory store.
func (m *MemoryStore) Close() error {
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
