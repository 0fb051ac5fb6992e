// Package cache manages the process-wide directory of compiled script binaries.
//
// Each script maps to exactly one entry, named after the script's base name
// without its extension:
//
//	<root>/bin/<name>      compiled binary
//	<root>/index.db        BoltDB index describing each entry
//
// Compiler output is first written to a temporary file next to the entry and
// renamed into place, so a concurrent reader never observes a partial binary.
// Two scripts with the same base name in different directories share an entry.
package cache

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/afero"
	"golang.org/x/text/unicode/norm"
)

const (
	// AppName is the directory created under the platform cache root
	AppName = "swrun"

	// binDir holds the compiled binaries, keeping them apart from the index
	binDir = "bin"

	// tempSuffix marks in-flight compiler output
	tempSuffix = ".tmp"
)

// Cache locates and installs compiled binaries
type Cache struct {
	fs   afero.Fs
	root string // Root directory for cache (<user cache>/swrun)
}

// New creates a cache rooted at root. Nothing is created on disk until the
// first compile asks for a temporary path.
func New(fs afero.Fs, root string) *Cache {
	return &Cache{
		fs:   fs,
		root: root,
	}
}

// Root returns the cache root directory
func (c *Cache) Root() string {
	return c.root
}

// BinDir returns the directory holding compiled binaries
func (c *Cache) BinDir() string {
	return filepath.Join(c.root, binDir)
}

// EntryName derives the cache entry name from the script's base name.
// The name is NFC normalised so that decomposed and precomposed spellings of
// the same file name share an entry.
func EntryName(script string) string {
	base := filepath.Base(script)

	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" {
		name = base
	}

	name = norm.NFC.String(name)
	if runtime.GOOS == "windows" {
		name += ".exe"
	}

	return name
}

// BinaryPath returns where the compiled binary for script lives (or would live)
func (c *Cache) BinaryPath(script string) string {
	return filepath.Join(c.BinDir(), EntryName(script))
}

// TempPath returns a unique path in the binary directory for compiler output,
// creating the directory if needed
func (c *Cache) TempPath(script string) (string, error) {
	dir := c.BinDir()
	if err := c.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	entropy := ulid.Monotonic(rand.Reader, 0)
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)

	name := "." + EntryName(script) + "." + strings.ToLower(id.String()) + tempSuffix
	return filepath.Join(dir, name), nil
}

// Install moves compiled output at tmp over the final entry path in one rename
func (c *Cache) Install(tmp, final string) error {
	info, err := c.fs.Stat(tmp)
	if err != nil {
		return fmt.Errorf("compiler produced no output: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("compiler output %s is a directory", tmp)
	}

	if err := c.fs.Rename(tmp, final); err != nil {
		return fmt.Errorf("failed to install %s: %w", filepath.Base(final), err)
	}

	return nil
}

// Discard removes leftover compiler output; a missing file is not an error
func (c *Cache) Discard(tmp string) error {
	if err := c.fs.Remove(tmp); err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}

// Size returns the total size of all cached binaries
func (c *Cache) Size() (int64, error) {
	var total int64

	err := afero.Walk(c.fs, c.BinDir(), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}

		if !info.IsDir() {
			total += info.Size()
		}

		return nil
	})

	return total, err
}

// Clear removes every cached binary and, when index is non-nil, every index record
func (c *Cache) Clear(index *Index) error {
	if err := c.fs.RemoveAll(c.BinDir()); err != nil {
		return fmt.Errorf("failed to remove binaries: %w", err)
	}

	if index != nil {
		if err := index.Clear(); err != nil {
			return fmt.Errorf("failed to clear index: %w", err)
		}
	}

	return nil
}
