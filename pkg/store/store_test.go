package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chartflow/chartflow/pkg/errors"
	"github.com/chartflow/chartflow/pkg/spec"
)

func sampleSpec() *spec.Spec {
	return &spec.Spec{
		Type:     "view",
		Theme:    "dark",
		Marks:    []spec.Mark{{Type: "line", Encode: map[string]spec.Field{"x": spec.Name("ts")}}},
		Temporal: &spec.Temporal{Mode: spec.ModeAxis, Field: "ts", Range: spec.MinutesWindow(5)},
	}
}

// storeUnderTest exercises the Store contract against any backend.
func storeUnderTest(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		_, err := s.Get(ctx, "missing")
		assert.True(t, errors.Is(err, errors.ErrCodeSpecNotFound), "err = %v", err)
	})

	t.Run("set get round trip", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "cpu", sampleSpec()))

		got, err := s.Get(ctx, "cpu")
		require.NoError(t, err)
		assert.Equal(t, "view", got.Type)
		require.Len(t, got.Marks, 1)
		name, ok := got.Marks[0].Encode["x"].FieldName()
		assert.True(t, ok)
		assert.Equal(t, "ts", name)
		require.NotNil(t, got.Temporal)
		assert.Equal(t, spec.MinutesWindow(5), got.Temporal.Range)
	})

	t.Run("set overwrites", func(t *testing.T) {
		changed := sampleSpec()
		changed.Theme = "light"
		require.NoError(t, s.Set(ctx, "cpu", changed))

		got, err := s.Get(ctx, "cpu")
		require.NoError(t, err)
		assert.Equal(t, "light", got.Theme)
	})

	t.Run("list is sorted", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "zz", sampleSpec()))
		require.NoError(t, s.Set(ctx, "aa", sampleSpec()))

		names, err := s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"aa", "cpu", "zz"}, names)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, "cpu"))
		_, err := s.Get(ctx, "cpu")
		assert.True(t, errors.Is(err, errors.ErrCodeSpecNotFound))

		// Deleting a missing spec is not an error.
		assert.NoError(t, s.Delete(ctx, "cpu"))
	})

	t.Run("invalid names rejected", func(t *testing.T) {
		err := s.Set(ctx, "../escape", sampleSpec())
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidName), "err = %v", err)
	})
}

func TestMemoryStore(t *testing.T) {
	storeUnderTest(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	storeUnderTest(t, s)
}

func TestFileStore_IgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "only", sampleSpec()))

	// A stray non-JSON file in the directory is not a spec.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("notes"), 0o644))

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, names)
}

func TestMarshalRoundTripDropsAccessors(t *testing.T) {
	s := sampleSpec()
	s.Marks[0].Encode["y"] = spec.Accessor(func(r spec.Row) any { return r["v"] })

	data, err := Marshal(s)
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)

	// Literal bindings survive, computed ones degrade to unbound.
	name, ok := got.Marks[0].Encode["x"].FieldName()
	assert.True(t, ok)
	assert.Equal(t, "ts", name)
	assert.True(t, got.Marks[0].Encode["y"].IsZero())
}
