package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/chartflow/chartflow/pkg/errors"
	"github.com/chartflow/chartflow/pkg/observability"
	"github.com/chartflow/chartflow/pkg/spec"
)

// FileStore is a file-based spec store for CLI applications.
// Specs are stored as JSON files in a config directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a new file-based spec store.
// If baseDir is empty, defaults to ~/.config/chartflow/specs/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "chartflow", "specs")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create spec dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) specPath(name string) string {
	return filepath.Join(s.baseDir, name+".json")
}

// Get returns the named spec.
func (s *FileStore) Get(ctx context.Context, name string) (*spec.Spec, error) {
	if err := errors.ValidateSpecName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	data, err := os.ReadFile(s.specPath(name))
	s.mu.RUnlock()

	if err != nil {
		if os.IsNotExist(err) {
			observability.Store().OnGet(name, false)
			return nil, errors.New(errors.ErrCodeSpecNotFound, "no spec named %q", name)
		}
		return nil, fmt.Errorf("read spec file: %w", err)
	}

	observability.Store().OnGet(name, true)
	return Unmarshal(data)
}

// Set writes the named spec.
func (s *FileStore) Set(ctx context.Context, name string, sp *spec.Spec) error {
	if err := errors.ValidateSpecName(name); err != nil {
		return err
	}
	data, err := Marshal(sp)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.specPath(name), data, 0600); err != nil {
		return fmt.Errorf("write spec file: %w", err)
	}

	observability.Store().OnSet(name)
	return nil
}

// List returns stored spec names in lexical order.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	entries, err := os.ReadDir(s.baseDir)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("read spec dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the named spec. Deleting a missing spec is not an error.
func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateSpecName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.specPath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove spec file: %w", err)
	}

	observability.Store().OnDelete(name)
	return nil
}

// Close does nothing for the file store.
func (s *FileStore) Close() error {
	return nil
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
