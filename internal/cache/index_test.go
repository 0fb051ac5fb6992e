package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenIndex_CreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "swrun")

	index, err := OpenIndex(root)
	require.NoError(t, err)
	defer index.Close()

	assert.FileExists(t, filepath.Join(root, IndexFile))
}

func TestIndex_RecordAndGet(t *testing.T) {
	index, err := OpenIndex(t.TempDir())
	require.NoError(t, err)
	defer index.Close()

	// Miss initially
	entry, err := index.Get("hello")
	require.NoError(t, err)
	assert.Nil(t, entry)

	now := time.Now().UTC().Truncate(time.Second)
	err = index.Record(Entry{
		Name:       "hello",
		SourceFile: "/src/hello.swift",
		BinaryPath: "/cache/bin/hello",
		Compiler:   "swiftc",
		Size:       4096,
		Duration:   1500 * time.Millisecond,
		Timestamp:  now,
	})
	require.NoError(t, err)

	entry, err = index.Get("hello")
	require.NoError(t, err)
	require.NotNil(t, entry)

	assert.Equal(t, "/src/hello.swift", entry.SourceFile)
	assert.Equal(t, "/cache/bin/hello", entry.BinaryPath)
	assert.Equal(t, int64(4096), entry.Size)
	assert.Equal(t, 1500*time.Millisecond, entry.Duration)
	assert.True(t, now.Equal(entry.Timestamp))

	// Re-recording replaces the entry
	err = index.Record(Entry{Name: "hello", SourceFile: "/other/hello.swift"})
	require.NoError(t, err)

	entry, err = index.Get("hello")
	require.NoError(t, err)
	assert.Equal(t, "/other/hello.swift", entry.SourceFile)

	count, err := index.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIndex_RecordRequiresName(t *testing.T) {
	index, err := OpenIndex(t.TempDir())
	require.NoError(t, err)
	defer index.Close()

	err = index.Record(Entry{SourceFile: "/src/x.swift"})
	assert.Error(t, err)
}

func TestIndex_ListRemoveClear(t *testing.T) {
	index, err := OpenIndex(t.TempDir())
	require.NoError(t, err)
	defer index.Close()

	for _, name := range []string{"charlie", "alpha", "bravo"} {
		require.NoError(t, index.Record(Entry{Name: name, SourceFile: "/src/" + name + ".swift"}))
	}

	entries, err := index.List()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "alpha", entries[0].Name, "entries are ordered by name")
	assert.Equal(t, "bravo", entries[1].Name)
	assert.Equal(t, "charlie", entries[2].Name)

	require.NoError(t, index.Remove("bravo"))
	entries, err = index.List()
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	require.NoError(t, index.Clear())
	entries, err = index.List()
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Still usable after clearing
	require.NoError(t, index.Record(Entry{Name: "delta"}))
	count, err := index.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIndex_PersistsAcrossOpens(t *testing.T) {
	root := t.TempDir()

	index, err := OpenIndex(root)
	require.NoError(t, err)
	require.NoError(t, index.Record(Entry{Name: "hello", SourceFile: "/src/hello.swift"}))
	require.NoError(t, index.Close())

	index, err = OpenIndex(root)
	require.NoError(t, err)
	defer index.Close()

	entry, err := index.Get("hello")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "/src/hello.swift", entry.SourceFile)
}
