package room

import (
	"sync"
	"time"
)

// RoundTimer fires a callback after a configurable duration unless stopped.
// It is safe for concurrent use. Stop and an in-flight expiry can race by a
// hair, so callbacks must tolerate running once after a Stop; expiry effects
// are made no-ops elsewhere by re-checking room state.
type RoundTimer struct {
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewRoundTimer creates and starts a timer that calls onFire after duration.
// onFire is called in a separate goroutine.
//
// Precondition: duration > 0; onFire must not be nil.
// Postcondition: Returns a running RoundTimer; onFire will be called unless Stop is called first.
func NewRoundTimer(duration time.Duration, onFire func()) *RoundTimer {
	rt := &RoundTimer{}
	rt.timer = time.AfterFunc(duration, func() {
		rt.mu.Lock()
		stopped := rt.stopped
		rt.mu.Unlock()
		if !stopped {
			onFire()
		}
	})
	return rt
}

// Stop prevents the callback from firing. Safe to call multiple times.
// A callback that has already passed its stop-flag check may still run
// once after Stop returns.
func (rt *RoundTimer) Stop() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.stopped = true
	rt.timer.Stop()
}

// TimerTable owns the active round timers, at most one per room code.
// All methods are safe for concurrent use.
type TimerTable struct {
	mu     sync.Mutex
	timers map[string]*RoundTimer
}

// NewTimerTable creates an empty TimerTable.
func NewTimerTable() *TimerTable {
	return &TimerTable{timers: make(map[string]*RoundTimer)}
}

// Start begins a countdown for the given room code, replacing (and
// stopping) any timer already registered under that code. The table entry
// is removed before onExpire runs, so a room can be re-armed from within
// the callback.
//
// Precondition: duration > 0; onExpire must not be nil.
func (t *TimerTable) Start(code string, duration time.Duration, onExpire func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if prev, ok := t.timers[code]; ok {
		prev.Stop()
	}

	var rt *RoundTimer
	rt = NewRoundTimer(duration, func() {
		t.remove(code, rt)
		onExpire()
	})
	t.timers[code] = rt
}

// Stop cancels and removes the timer for the given room code, if any.
//
// Postcondition: The timer's callback will not run after Stop returns.
func (t *TimerTable) Stop(code string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if rt, ok := t.timers[code]; ok {
		rt.Stop()
		delete(t.timers, code)
	}
}

// Active reports whether a timer is registered for the given room code.
func (t *TimerTable) Active(code string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.timers[code]
	return ok
}

// remove deletes the table entry for code if it still maps to rt. A timer
// replaced by a newer Start must not evict its successor.
func (t *TimerTable) remove(code string, rt *RoundTimer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if cur, ok := t.timers[code]; ok && cur == rt {
		delete(t.timers, code)
	}
}
