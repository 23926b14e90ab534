package store

import "sync"

// StateKey is the fixed key the state document is stored under
const StateKey = "emp_state_v1"

// Storage persists the raw state document.
// Load returns nil, nil when no document has been saved yet.
type Storage interface {
	Load() ([]byte, error)
	Save(data []byte) error
	Close() error
}

// MemoryStorage keeps the document in memory. Useful for tests and dry runs.
type MemoryStorage struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryStorage creates an empty in-memory storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Load() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, nil
	}
	return append([]byte(nil), m.data...), nil
}

func (m *MemoryStorage) Save(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	return nil
}

func (m *MemoryStorage) Close() error {
	return nil
}
