package counter

import "sync"

// BackendMemory names the in-process backend
const BackendMemory = "memory"

// Memory is an in-process Backend. Values live only as long as the value
// itself; it stands in for real attributes in tests.
type Memory struct {
	mu    sync.Mutex
	attrs map[string]map[string]string

	// Injected failures
	GetErr error
	SetErr error
}

// NewMemory creates an empty in-memory backend
func NewMemory() *Memory {
	return &Memory{attrs: make(map[string]map[string]string)}
}

func (m *Memory) Name() string {
	return BackendMemory
}

func (m *Memory) Get(path, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetErr != nil {
		return "", false, m.GetErr
	}

	v, ok := m.attrs[path][key]
	return v, ok, nil
}

func (m *Memory) Set(path, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SetErr != nil {
		return m.SetErr
	}

	if m.attrs[path] == nil {
		m.attrs[path] = make(map[string]string)
	}

	m.attrs[path][key] = value
	return nil
}
