// Package counter persists a per-script run counter as an extended attribute
// on the script file itself.
//
// The counter is advisory. Hosts without any attribute facility get a store
// that always reads 0 and silently drops writes after a single warning.
package counter

import (
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// AttributeName is the attribute key holding the counter. Backends that need a
// namespace (Linux "user.") add it themselves.
const AttributeName = "swrun.run-count"

// Backend reads and writes string attributes attached to files
type Backend interface {
	// Name identifies the backend in diagnostics
	Name() string

	// Get returns the attribute value; ok is false when the attribute is absent
	Get(path, key string) (value string, ok bool, err error)

	// Set creates or replaces the attribute
	Set(path, key, value string) error
}

// Store reads and writes run counters through a Backend.
// A nil backend means no facility is available.
type Store struct {
	backend Backend
	key     string
	log     logrus.FieldLogger
	warn    sync.Once
}

// NewStore creates a store over backend (which may be nil)
func NewStore(backend Backend, log logrus.FieldLogger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Store{
		backend: backend,
		key:     AttributeName,
		log:     log,
	}
}

// Available reports whether a backend is in use
func (s *Store) Available() bool {
	return s.backend != nil
}

// Backend returns the backend name, or "none"
func (s *Store) Backend() string {
	if s.backend == nil {
		return BackendNone
	}

	return s.backend.Name()
}

// Read returns the counter for path. It never fails: a missing attribute,
// a backend error or an unparsable value all read as 0.
func (s *Store) Read(path string) uint {
	if s.backend == nil {
		s.warnUnavailable()
		return 0
	}

	log := s.log.WithFields(logrus.Fields{"backend": s.backend.Name(), "script": path})

	value, ok, err := s.backend.Get(path, s.key)
	if err != nil {
		log.WithError(err).Warn("Failed to read run counter, assuming 0")
		return 0
	}

	if !ok {
		log.Debug("No run counter recorded, assuming 0")
		return 0
	}

	n, err := strconv.ParseUint(strings.TrimSpace(value), 10, 32)
	if err != nil {
		log.WithField("value", value).Warn("Ignoring unparsable run counter, assuming 0")
		return 0
	}

	return uint(n)
}

// Write stores n as the counter for path. Without a backend it is a no-op.
func (s *Store) Write(path string, n uint) error {
	if s.backend == nil {
		s.warnUnavailable()
		return nil
	}

	return s.backend.Set(path, s.key, strconv.FormatUint(uint64(n), 10))
}

func (s *Store) warnUnavailable() {
	s.warn.Do(func() {
		s.log.Warn("No extended attribute support found; run counter disabled, interactive runs will keep interpreting")
	})
}
