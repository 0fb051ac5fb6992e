package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const (
	// IndexFile is the BoltDB file inside the cache root
	IndexFile = "index.db"

	// bucketName is the BoltDB bucket name for cache entries
	bucketName = "entries"
)

// Index records metadata about cache entries in BoltDB.
// It is informational: the run decision never depends on it.
type Index struct {
	db *bbolt.DB
}

// OpenIndex opens (creating if needed) the index in the cache root
func OpenIndex(root string) (*Index, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dbPath := filepath.Join(root, IndexFile)
	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache index: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index bucket: %w", err)
	}

	return &Index{db: db}, nil
}

// Close closes the index database
func (i *Index) Close() error {
	if i.db != nil {
		return i.db.Close()
	}

	return nil
}

// Get returns the entry with the given name, or nil if there is none
func (i *Index) Get(name string) (*Entry, error) {
	var entry *Entry

	err := i.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get([]byte(name))
		if data == nil {
			return nil
		}

		entry = &Entry{}
		return json.Unmarshal(data, entry)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read index entry %s: %w", name, err)
	}

	return entry, nil
}

// Record stores entry, replacing any previous entry with the same name
func (i *Index) Record(entry Entry) error {
	if entry.Name == "" {
		return fmt.Errorf("index entry has no name")
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	err = i.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(entry.Name), data)
	})
	if err != nil {
		return fmt.Errorf("failed to store index entry: %w", err)
	}

	return nil
}

// Remove deletes the entry with the given name
func (i *Index) Remove(name string) error {
	return i.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Delete([]byte(name))
	})
}

// List returns all entries ordered by name
func (i *Index) List() ([]Entry, error) {
	var entries []Entry

	err := i.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).ForEach(func(k, v []byte) error {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("corrupt index entry %s: %w", k, err)
			}

			entries = append(entries, entry)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// Count returns the number of entries in the index
func (i *Index) Count() (int, error) {
	var count int

	err := i.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket([]byte(bucketName)).Stats().KeyN
		return nil
	})

	return count, err
}

// Clear removes all entries
func (i *Index) Clear() error {
	err := i.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketName)); err != nil {
			return err
		}

		_, err := tx.CreateBucket([]byte(bucketName))
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}

	return nil
}
