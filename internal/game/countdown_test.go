package game

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

type chanDisplay struct {
	ch chan int
}

func newChanDisplay() *chanDisplay {
	return &chanDisplay{ch: make(chan int, 32)}
}

func (d *chanDisplay) ShowRemaining(seconds int) {
	d.ch <- seconds
}

func (d *chanDisplay) next(t *testing.T) int {
	t.Helper()
	select {
	case v := <-d.ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("no countdown value published")
		return 0
	}
}

func (d *chanDisplay) empty(t *testing.T) {
	t.Helper()
	select {
	case v := <-d.ch:
		t.Fatalf("unexpected countdown value %d", v)
	case <-time.After(50 * time.Millisecond):
	}
}

func expectExpired(t *testing.T, c *Countdown) {
	t.Helper()
	select {
	case <-c.Expired():
	case <-time.After(2 * time.Second):
		t.Fatalf("expected expiry")
	}
}

func expectNotExpired(t *testing.T, c *Countdown) {
	t.Helper()
	select {
	case <-c.Expired():
		t.Fatalf("unexpected expiry")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCountdownTicksToExpiry(t *testing.T) {
	fc := clockwork.NewFakeClock()
	display := newChanDisplay()
	c := NewCountdown(fc, 3, display)

	c.Start()
	if got := display.next(t); got != 3 {
		t.Fatalf("expected initial value 3, got %d", got)
	}

	for want := 2; want >= 0; want-- {
		fc.BlockUntil(1)
		fc.Advance(time.Second)
		if got := display.next(t); got != want {
			t.Fatalf("expected tick value %d, got %d", want, got)
		}
	}

	expectExpired(t, c)
	if c.Running() {
		t.Fatalf("expected countdown inert after expiry")
	}

	// A finished countdown must not fire twice.
	fc.Advance(time.Second)
	expectNotExpired(t, c)
	display.empty(t)
}

func TestCountdownStopCancelsSchedule(t *testing.T) {
	fc := clockwork.NewFakeClock()
	display := newChanDisplay()
	c := NewCountdown(fc, 2, display)

	c.Start()
	_ = display.next(t)
	c.Stop()

	if c.Running() {
		t.Fatalf("expected countdown stopped")
	}

	fc.Advance(5 * time.Second)
	expectNotExpired(t, c)
	display.empty(t)

	// Stop is safe to repeat.
	c.Stop()
}

func TestCountdownResetSupersedesOldSchedule(t *testing.T) {
	fc := clockwork.NewFakeClock()
	display := newChanDisplay()
	c := NewCountdown(fc, 3, display)

	c.Start()
	if got := display.next(t); got != 3 {
		t.Fatalf("expected initial value 3, got %d", got)
	}
	fc.BlockUntil(1)
	fc.Advance(time.Second)
	if got := display.next(t); got != 2 {
		t.Fatalf("expected tick value 2, got %d", got)
	}

	c.Reset()
	if got := display.next(t); got != 3 {
		t.Fatalf("expected reset to restart from 3, got %d", got)
	}

	// One advance must produce one tick: a double-firing schedule would
	// publish twice here.
	fc.BlockUntil(1)
	fc.Advance(time.Second)
	if got := display.next(t); got != 2 {
		t.Fatalf("expected tick value 2 after reset, got %d", got)
	}
	display.empty(t)
}

func TestCountdownInvalidDurationFallsBack(t *testing.T) {
	fc := clockwork.NewFakeClock()
	c := NewCountdown(fc, 0, nil)

	c.Start()
	defer c.Stop()
	if got := c.Remaining(); got != DefaultLimitSeconds {
		t.Fatalf("expected default duration %d, got %d", DefaultLimitSeconds, got)
	}
}
