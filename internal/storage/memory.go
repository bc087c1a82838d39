package storage

import (
	"context"
	"sync"
	"time"

	"github.com/msomdec/bloomy/internal/domain"
)

// Memory is an in-process Store. It is safe for concurrent use.
// With a non-zero TTL, entries expire that long after their last write.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type memoryEntry struct {
	value   []byte
	written time.Time
}

// NewMemory creates an in-memory store without expiry.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry), now: time.Now}
}

// NewExpiringMemory creates an in-memory store whose entries expire ttl after
// their last write. A background goroutine sweeps expired entries every
// sweep interval until Close is called.
func NewExpiringMemory(ttl, sweep time.Duration) *Memory {
	m := NewMemory()
	m.ttl = ttl
	m.stop = make(chan struct{})
	go m.janitor(sweep)
	return m
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.lookup(key)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return clone(e.value), nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{value: clone(value), written: m.now()}
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

func (m *Memory) Update(_ context.Context, key string, fn func([]byte) ([]byte, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var current []byte
	if e, ok := m.lookup(key); ok {
		current = clone(e.value)
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	m.entries[key] = memoryEntry{value: clone(next), written: m.now()}
	return nil
}

// Len returns the number of live entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for key := range m.entries {
		if _, ok := m.lookup(key); ok {
			n++
		}
	}
	return n
}

// Close stops the janitor of an expiring store. It is a no-op otherwise.
func (m *Memory) Close() error {
	if m.stop != nil {
		m.once.Do(func() { close(m.stop) })
	}
	return nil
}

// lookup must be called with mu held.
func (m *Memory) lookup(key string) (memoryEntry, bool) {
	e, ok := m.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if m.ttl > 0 && m.now().Sub(e.written) >= m.ttl {
		delete(m.entries, key)
		return memoryEntry{}, false
	}
	return e, true
}

func (m *Memory) janitor(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.mu.Lock()
			for key := range m.entries {
				m.lookup(key)
			}
			m.mu.Unlock()
		}
	}
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
