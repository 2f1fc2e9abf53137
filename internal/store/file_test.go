// internal/store/file_test.go
package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileStore(t *testing.T) (*FileStore, string) {
	path := filepath.Join(t.TempDir(), "tickets.csv")
	st, err := NewFileStore(path)
	require.NoError(t, err)
	return st, path
}

func TestFileStore_CreatesMissingFile(t *testing.T) {
	st, path := newTestFileStore(t)

	assert.Equal(t, 0, st.Len())
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestFileStore_PutAndGet(t *testing.T) {
	st, path := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, 42, "page-42"))

	id, ok := st.Get(42)
	assert.True(t, ok)
	assert.Equal(t, "page-42", id)
	assert.Equal(t, 1, st.Len())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "42,page-42\n", string(data))
}

func TestFileStore_FirstWriteWins(t *testing.T) {
	st, path := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, 42, "page-first"))
	require.NoError(t, st.Put(ctx, 42, "page-second"))

	id, ok := st.Get(42)
	assert.True(t, ok)
	assert.Equal(t, "page-first", id)
	assert.Equal(t, 1, st.Len())

	// The duplicate must not be appended either.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "42,page-first\n", string(data))
}

func TestFileStore_ReloadsAcrossRestarts(t *testing.T) {
	st, path := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, 1, "page-1"))
	require.NoError(t, st.Put(ctx, 2, "page-2"))

	reloaded, err := NewFileStore(path)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Len())

	id, ok := reloaded.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "page-1", id)

	id, ok = reloaded.Get(2)
	assert.True(t, ok)
	assert.Equal(t, "page-2", id)
}

func TestFileStore_GetMissing(t *testing.T) {
	st, _ := newTestFileStore(t)

	id, ok := st.Get(7)
	assert.False(t, ok)
	assert.Empty(t, id)
}

func TestFileStore_LoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{"missing separator", "not a csv line\n"},
		{"non-numeric ticket", "abc,page-1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tickets.csv")
			require.NoError(t, os.WriteFile(path, []byte(tt.contents), 0o644))

			_, err := NewFileStore(path)
			assert.Error(t, err)
		})
	}
}

func TestFileStore_LoadSkipsBlankLinesAndDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickets.csv")
	require.NoError(t, os.WriteFile(path, []byte("1,page-a\n\n1,page-b\n2,page-c\n"), 0o644))

	st, err := NewFileStore(path)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Len())

	id, ok := st.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "page-a", id)
}
