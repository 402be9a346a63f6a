package session

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTimerCountdown(t *testing.T) {
	t.Run("ExpiresAfterBudget", func(t *testing.T) {
		var expired atomic.Int32
		var ticks atomic.Int32
		tm := NewTimer(10*time.Second, time.Second,
			func(time.Duration) { ticks.Add(1) },
			func() { expired.Add(1) })
		tm.state = TimerRunning

		for i := 0; i < 10; i++ {
			tm.tick()
		}

		if got := ticks.Load(); got != 10 {
			t.Errorf("ticks = %d, want 10", got)
		}
		if got := expired.Load(); got != 1 {
			t.Errorf("expire fired %d times, want 1", got)
		}
		if tm.State() != TimerStopped {
			t.Errorf("state = %v, want stopped", tm.State())
		}
		if tm.Remaining() != 0 {
			t.Errorf("remaining = %v, want 0", tm.Remaining())
		}
	})

	t.Run("FullSessionBudget", func(t *testing.T) {
		// The production budget: 10 minutes at one-second ticks.
		var expired atomic.Int32
		tm := NewTimer(10*time.Minute, time.Second, nil, func() { expired.Add(1) })
		tm.state = TimerRunning

		for i := 0; i < 599; i++ {
			tm.tick()
		}
		if expired.Load() != 0 {
			t.Fatal("expired before the budget ran out")
		}
		if got := tm.Remaining(); got != time.Second {
			t.Fatalf("remaining = %v, want 1s", got)
		}
		tm.tick()
		if expired.Load() != 1 {
			t.Error("expected expiry on the 600th tick")
		}
	})

	t.Run("ExpireFiresOnce", func(t *testing.T) {
		var expired atomic.Int32
		tm := NewTimer(time.Second, time.Second, nil, func() { expired.Add(1) })
		tm.state = TimerRunning

		tm.tick()
		tm.tick()
		tm.tick()

		if got := expired.Load(); got != 1 {
			t.Errorf("expire fired %d times, want 1", got)
		}
	})

	t.Run("PauseFreezesCountdown", func(t *testing.T) {
		tm := NewTimer(10*time.Second, time.Second, nil, nil)
		tm.state = TimerRunning

		tm.tick()
		tm.Pause()
		tm.tick()
		tm.tick()

		if got := tm.Remaining(); got != 9*time.Second {
			t.Errorf("remaining = %v, want 9s", got)
		}

		tm.Resume()
		tm.tick()
		if got := tm.Remaining(); got != 8*time.Second {
			t.Errorf("remaining after resume = %v, want 8s", got)
		}
	})

	t.Run("StopSuppressesExpiry", func(t *testing.T) {
		var expired atomic.Int32
		tm := NewTimer(2*time.Second, time.Second, nil, func() { expired.Add(1) })
		tm.Start()
		tm.Stop()

		tm.tick()
		tm.tick()
		tm.tick()

		if got := expired.Load(); got != 0 {
			t.Errorf("expire fired %d times after stop", got)
		}
	})

	t.Run("StartRunsRealTicks", func(t *testing.T) {
		done := make(chan struct{})
		tm := NewTimer(2*time.Millisecond, time.Millisecond, nil, func() { close(done) })
		tm.Start()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("timer never expired")
		}
	})
}

func TestTimerStartGuards(t *testing.T) {
	t.Run("DoubleStart", func(t *testing.T) {
		tm := NewTimer(time.Minute, time.Second, nil, nil)
		tm.Start()
		defer tm.Stop()
		tm.Start() // no second goroutine, no panic
		if tm.State() != TimerRunning {
			t.Errorf("state = %v, want running", tm.State())
		}
	})

	t.Run("StartAfterExpiry", func(t *testing.T) {
		tm := NewTimer(time.Second, time.Second, nil, nil)
		tm.state = TimerRunning
		tm.tick()

		tm.Start()
		if tm.State() != TimerStopped {
			t.Error("expired timer must not restart")
		}
	})
}
