// ABOUTME: Manually driven Scheduler for tests
// ABOUTME: Records scheduled callbacks and fires them on demand instead of on a clock

package notice

import (
	"sync"
	"time"
)

// ManualScheduler is a Scheduler whose timers fire only when FireAll is called.
type ManualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	mu       sync.Mutex
	f        func()
	duration time.Duration
	stopped  bool
	fired    bool
}

func (t *manualTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Schedule satisfies Scheduler.
func (s *ManualScheduler) Schedule(d time.Duration, f func()) Timer {
	t := &manualTimer{f: f, duration: d}
	s.mu.Lock()
	s.timers = append(s.timers, t)
	s.mu.Unlock()
	return t
}

// Pending counts timers that were neither stopped nor fired.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, t := range s.timers {
		t.mu.Lock()
		if !t.stopped && !t.fired {
			n++
		}
		t.mu.Unlock()
	}
	return n
}

// LastDuration returns the delay of the most recently scheduled timer.
func (s *ManualScheduler) LastDuration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.timers) == 0 {
		return 0
	}
	return s.timers[len(s.timers)-1].duration
}

// FireAll runs every pending timer callback in scheduling order.
// Stopped timers still fire when includeStopped is true, which simulates a
// clear that was already in flight when Stop was called.
func (s *ManualScheduler) FireAll(includeStopped bool) {
	s.mu.Lock()
	timers := append([]*manualTimer(nil), s.timers...)
	s.mu.Unlock()

	for _, t := range timers {
		t.mu.Lock()
		run := !t.fired && (!t.stopped || includeStopped)
		if run {
			t.fired = true
		}
		t.mu.Unlock()
		if run {
			t.f()
		}
	}
}
