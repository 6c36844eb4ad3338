package cache

import (
	"container/list"
	"context"
	"sync"

	"sentiboard/internal/domain"
)

// Compile-time interface check.
var _ Store = (*Memory)(nil)

const defaultCapacity = 128

// Memory is a bounded in-process LRU store. It is the default backend and
// is safe for concurrent handlers.
type Memory struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front = most recently used
	entries  map[string]*list.Element
}

type memoryEntry struct {
	key    string
	bundle domain.Bundle
}

// NewMemory creates a Memory store holding at most capacity bundles.
// A non-positive capacity falls back to the default.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Memory{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

// Get returns the bundle under key and marks it most recently used.
func (m *Memory) Get(_ context.Context, key string) (domain.Bundle, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.entries[key]
	if !ok {
		return domain.Bundle{}, false, nil
	}
	m.order.MoveToFront(el)
	return el.Value.(*memoryEntry).bundle, true, nil
}

// Put stores the bundle under key, evicting the least recently used
// entries beyond capacity.
func (m *Memory) Put(_ context.Context, key string, bundle domain.Bundle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.entries[key]; ok {
		el.Value.(*memoryEntry).bundle = bundle
		m.order.MoveToFront(el)
		return nil
	}

	m.entries[key] = m.order.PushFront(&memoryEntry{key: key, bundle: bundle})
	for m.order.Len() > m.capacity {
		oldest := m.order.Back()
		m.order.Remove(oldest)
		delete(m.entries, oldest.Value.(*memoryEntry).key)
	}
	return nil
}

// Close is a no-op for the in-process store.
func (m *Memory) Close() error { return nil }
