package store

import (
	"context"
	"sync"
)

// MemoryMedium keeps the document in memory. It backs tests and dry runs.
type MemoryMedium struct {
	mu     sync.Mutex
	body   []byte
	writes int
}

func NewMemoryMedium(initial []byte) *MemoryMedium {
	m := &MemoryMedium{}
	if initial != nil {
		m.body = append([]byte{}, initial...)
	}
	return m
}

func (m *MemoryMedium) Read(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.body == nil {
		return nil, ErrAbsent
	}
	return append([]byte{}, m.body...), nil
}

func (m *MemoryMedium) Write(_ context.Context, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.body = append([]byte{}, body...)
	m.writes++
	return nil
}

// Writes reports how many times the document was written.
func (m *MemoryMedium) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
