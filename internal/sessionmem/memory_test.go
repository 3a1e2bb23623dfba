// ABOUTME: Tests for the session memory used to remember visitor names.
// ABOUTME: Validates TTL expiry, sliding refresh, eviction, cleanup, and concurrency safety.

package sessionmem

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeClock lets tests move time without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestMemory(ttl time.Duration, maxSize int) (*Memory, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)}
	m := New(ttl, maxSize)
	m.now = clock.Now
	return m, clock
}

func TestMemory_GetMissing(t *testing.T) {
	m, _ := newTestMemory(time.Hour, 10)
	defer m.Close()

	_, ok := m.Get(VisitorNameKey)
	assert.False(t, ok)
}

func TestMemory_SetGet(t *testing.T) {
	m, _ := newTestMemory(time.Hour, 10)
	defer m.Close()

	m.Set(VisitorNameKey, "Grace")

	v, ok := m.Get(VisitorNameKey)
	assert.True(t, ok)
	assert.Equal(t, "Grace", v)
}

func TestMemory_SetOverwrites(t *testing.T) {
	m, _ := newTestMemory(time.Hour, 10)
	defer m.Close()

	m.Set(VisitorNameKey, "Grace")
	m.Set(VisitorNameKey, "Linus")

	v, _ := m.Get(VisitorNameKey)
	assert.Equal(t, "Linus", v)
	assert.Equal(t, 1, m.Len())
}

func TestMemory_Expires(t *testing.T) {
	m, clock := newTestMemory(time.Hour, 10)
	defer m.Close()

	m.Set(VisitorNameKey, "Grace")
	clock.Advance(time.Hour)

	_, ok := m.Get(VisitorNameKey)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len(), "expired entry should be dropped on read")
}

func TestMemory_GetRefreshesExpiry(t *testing.T) {
	m, clock := newTestMemory(time.Hour, 10)
	defer m.Close()

	m.Set(VisitorNameKey, "Grace")
	clock.Advance(45 * time.Minute)
	_, ok := m.Get(VisitorNameKey)
	assert.True(t, ok)

	clock.Advance(45 * time.Minute)
	v, ok := m.Get(VisitorNameKey)
	assert.True(t, ok, "read should have extended the session")
	assert.Equal(t, "Grace", v)
}

func TestMemory_Delete(t *testing.T) {
	m, _ := newTestMemory(time.Hour, 10)
	defer m.Close()

	m.Set(VisitorNameKey, "Grace")
	m.Delete(VisitorNameKey)
	m.Delete("never-set")

	_, ok := m.Get(VisitorNameKey)
	assert.False(t, ok)
}

func TestMemory_EvictsLeastRecentlyTouched(t *testing.T) {
	m, _ := newTestMemory(time.Hour, 2)
	defer m.Close()

	m.Set("a", "1")
	m.Set("b", "2")
	m.Get("a") // a is now most recent
	m.Set("c", "3")

	_, okA := m.Get("a")
	_, okB := m.Get("b")
	_, okC := m.Get("c")
	assert.True(t, okA)
	assert.False(t, okB, "b should have been evicted")
	assert.True(t, okC)
}

func TestMemory_RunCleanup(t *testing.T) {
	m, clock := newTestMemory(time.Hour, 10)
	defer m.Close()

	m.Set("old", "1")
	clock.Advance(30 * time.Minute)
	m.Set("new", "2")
	clock.Advance(40 * time.Minute)

	m.runCleanup()

	assert.Equal(t, 1, m.Len())
	_, ok := m.Get("new")
	assert.True(t, ok)
}

func TestMemory_ZeroTTLNeverExpires(t *testing.T) {
	m, clock := newTestMemory(0, 4)
	defer m.Close()

	m.Set(VisitorNameKey, "Grace")
	clock.Advance(1000 * time.Hour)
	m.runCleanup()

	v, ok := m.Get(VisitorNameKey)
	assert.True(t, ok)
	assert.Equal(t, "Grace", v)
}

func TestMemory_Concurrent(t *testing.T) {
	m := New(time.Hour, 100)
	defer m.Close()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Go(func() {
			key := fmt.Sprintf("key-%d", i%5)
			for range 50 {
				m.Set(key, "v")
				m.Get(key)
			}
		})
	}
	wg.Wait()

	assert.LessOrEqual(t, m.Len(), 5)
}

func TestMemory_CloseIsIdempotent(t *testing.T) {
	m := New(time.Hour, 10)
	m.Close()
	m.Close()
}
