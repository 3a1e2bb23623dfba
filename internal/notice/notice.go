// ABOUTME: Transient self-clearing notices with per-raise expiry tokens
// ABOUTME: Re-raising a notice restarts its timer so stale clears never hide newer notices

// Package notice tracks short-lived user-facing flags such as "knowledge base
// updated" or "history deleted".
package notice

import (
	"slices"
	"sync"
	"time"
)

// Kind names a notice.
type Kind string

const (
	ProfileUpdated Kind = "profile_updated"
	HistoryDeleted Kind = "history_deleted"
)

// DefaultDuration is how long a notice stays visible.
const DefaultDuration = 3 * time.Second

// Timer is the handle returned by a Scheduler.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. time.AfterFunc satisfies it through AfterFunc.
type Scheduler func(d time.Duration, f func()) Timer

// AfterFunc schedules with the real clock.
func AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type raised struct {
	token uint64
	timer Timer
}

// Board holds the set of visible notices.
type Board struct {
	mu       sync.Mutex
	active   map[Kind]*raised
	seq      uint64
	duration time.Duration
	schedule Scheduler
	onChange func()
	closed   bool
}

// NewBoard creates a Board. A zero duration selects DefaultDuration and a nil
// scheduler selects AfterFunc. onChange, if set, is called after a notice
// expires, outside the board's lock.
func NewBoard(duration time.Duration, schedule Scheduler, onChange func()) *Board {
	if duration <= 0 {
		duration = DefaultDuration
	}
	if schedule == nil {
		schedule = AfterFunc
	}
	return &Board{
		active:   make(map[Kind]*raised),
		duration: duration,
		schedule: schedule,
		onChange: onChange,
	}
}

// Raise shows k and schedules its clear. If k is already visible its pending
// clear is cancelled and the full duration starts again.
func (b *Board) Raise(k Kind) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	if prev, ok := b.active[k]; ok {
		prev.timer.Stop()
	}

	b.seq++
	token := b.seq
	r := &raised{token: token}
	b.active[k] = r
	r.timer = b.schedule(b.duration, func() { b.expire(k, token) })
}

// expire clears k only if token still identifies the latest raise.
func (b *Board) expire(k Kind, token uint64) {
	b.mu.Lock()
	r, ok := b.active[k]
	if !ok || r.token != token {
		b.mu.Unlock()
		return
	}
	delete(b.active, k)
	b.mu.Unlock()

	if b.onChange != nil {
		b.onChange()
	}
}

// Active reports whether k is visible.
func (b *Board) Active(k Kind) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.active[k]
	return ok
}

// Snapshot lists visible notices in a stable order.
func (b *Board) Snapshot() []Kind {
	b.mu.Lock()
	defer b.mu.Unlock()

	kinds := make([]Kind, 0, len(b.active))
	for k := range b.active {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Close cancels every pending clear. Later raises are ignored.
func (b *Board) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for k, r := range b.active {
		r.timer.Stop()
		delete(b.active, k)
	}
	b.closed = true
}
