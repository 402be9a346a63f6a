// Package session drives a live conversation: the countdown budget, the
// message exchange loop, and the one-shot finalize pipeline at the end.
package session

import (
	"sync"
	"time"
)

// TimerState is the countdown's lifecycle state.
type TimerState int

const (
	TimerStopped TimerState = iota
	TimerRunning
	TimerPaused
)

func (s TimerState) String() string {
	switch s {
	case TimerRunning:
		return "running"
	case TimerPaused:
		return "paused"
	default:
		return "stopped"
	}
}

// DefaultTickInterval is the countdown granularity.
const DefaultTickInterval = time.Second

// Timer is a pausable countdown. It decrements once per tick while running
// and fires onExpire exactly once when the budget reaches zero.
type Timer struct {
	mu        sync.Mutex
	state     TimerState
	remaining time.Duration
	interval  time.Duration
	onTick    func(remaining time.Duration)
	onExpire  func()
	stop      chan struct{}
}

// NewTimer creates a stopped countdown with the given budget. Either callback
// may be nil. Callbacks run on the timer goroutine and must not call back
// into the timer.
func NewTimer(budget, interval time.Duration, onTick func(time.Duration), onExpire func()) *Timer {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Timer{
		remaining: budget,
		interval:  interval,
		onTick:    onTick,
		onExpire:  onExpire,
	}
}

// Start begins the countdown. Starting a running or paused timer is a no-op;
// starting an expired timer restarts nothing (the budget stays at zero).
func (t *Timer) Start() {
	t.mu.Lock()
	if t.state != TimerStopped || t.remaining <= 0 {
		t.mu.Unlock()
		return
	}
	t.state = TimerRunning
	t.stop = make(chan struct{})
	stop := t.stop
	t.mu.Unlock()

	go t.run(stop)
}

func (t *Timer) run(stop chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if t.tick() {
				return
			}
		}
	}
}

// tick advances the countdown by one interval and reports whether it expired.
func (t *Timer) tick() (expired bool) {
	t.mu.Lock()
	if t.state != TimerRunning {
		t.mu.Unlock()
		return false
	}
	t.remaining -= t.interval
	if t.remaining <= 0 {
		t.remaining = 0
		t.state = TimerStopped
		expired = true
	}
	remaining := t.remaining
	onTick, onExpire := t.onTick, t.onExpire
	t.mu.Unlock()

	if onTick != nil {
		onTick(remaining)
	}
	if expired && onExpire != nil {
		onExpire()
	}
	return expired
}

// Pause freezes the countdown. Only a running timer can pause.
func (t *Timer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == TimerRunning {
		t.state = TimerPaused
	}
}

// Resume continues a paused countdown.
func (t *Timer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == TimerPaused {
		t.state = TimerRunning
	}
}

// Stop ends the countdown without firing onExpire.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == TimerStopped {
		return
	}
	t.state = TimerStopped
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

// State returns the current lifecycle state.
func (t *Timer) State() TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Remaining returns the time left on the budget.
func (t *Timer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Expired reports whether the budget has run out.
func (t *Timer) Expired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining <= 0
}
