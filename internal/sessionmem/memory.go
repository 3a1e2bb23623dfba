// ABOUTME: Thread-safe TTL key-value memory for per-session visitor facts.
// ABOUTME: Entries expire after a period of inactivity; oldest entries are evicted at capacity.

package sessionmem

import (
	"container/list"
	"sync"
	"time"
)

// VisitorNameKey is where the identity-capture flow stores the visitor's display name.
const VisitorNameKey = "userName"

// entry stores a value, its last-touched time and list element.
type entry struct {
	value     string
	touchedAt time.Time
	element   *list.Element
}

// Memory is a size-limited store whose entries expire after ttl without
// access. Uses a doubly-linked list ordered by last touch for O(1) eviction.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*entry
	order   *list.List // keys, least recently touched at front
	ttl     time.Duration
	maxSize int
	now     func() time.Time
	done    chan struct{}
	closed  bool
}

// New creates a Memory with the given inactivity TTL and maximum size.
// A non-positive ttl means entries never expire. A background goroutine
// periodically drops expired entries.
func New(ttl time.Duration, maxSize int) *Memory {
	if maxSize <= 0 {
		maxSize = 1
	}
	m := &Memory{
		entries: make(map[string]*entry),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go m.cleanup()
	return m
}

// Get returns the live value for key and refreshes its expiry.
func (m *Memory) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", false
	}
	now := m.now()
	if m.expired(e, now) {
		m.removeLocked(key, e)
		return "", false
	}

	e.touchedAt = now
	m.order.MoveToBack(e.element)
	return e.value, true
}

// Set stores value under key. If the memory is at capacity, the least
// recently touched entry is evicted to make room.
func (m *Memory) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()

	// If key already exists, update in place and move to back
	if e, exists := m.entries[key]; exists {
		e.value = value
		e.touchedAt = now
		m.order.MoveToBack(e.element)
		return
	}

	if len(m.entries) >= m.maxSize {
		m.evictOldest()
	}

	elem := m.order.PushBack(key)
	m.entries[key] = &entry{
		value:     value,
		touchedAt: now,
		element:   elem,
	}
}

// Delete forgets key.
func (m *Memory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[key]; ok {
		m.removeLocked(key, e)
	}
}

// Len returns the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) expired(e *entry, now time.Time) bool {
	return m.ttl > 0 && now.Sub(e.touchedAt) >= m.ttl
}

// removeLocked must be called with mu held.
func (m *Memory) removeLocked(key string, e *entry) {
	m.order.Remove(e.element)
	delete(m.entries, key)
}

// evictOldest removes the least recently touched entry. Must be called with mu held.
func (m *Memory) evictOldest() {
	front := m.order.Front()
	if front == nil {
		return
	}

	key, _ := front.Value.(string)
	m.order.Remove(front)
	delete(m.entries, key)
}

// cleanup runs in a background goroutine, periodically removing expired entries.
func (m *Memory) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.runCleanup()
		case <-m.done:
			return
		}
	}
}

// runCleanup removes all expired entries.
func (m *Memory) runCleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for key, e := range m.entries {
		if m.expired(e, now) {
			m.removeLocked(key, e)
		}
	}
}

// Close stops the background cleanup goroutine. It is safe to call multiple times.
func (m *Memory) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		close(m.done)
		m.closed = true
	}
}
