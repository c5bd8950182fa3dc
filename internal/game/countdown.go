package game

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultLimitSeconds is used when a question carries no limit, or an invalid one.
const DefaultLimitSeconds = 20

// Display receives the countdown value once per tick.
type Display interface {
	ShowRemaining(seconds int)
}

// Countdown is a restartable per-question deadline signal. It ticks once per
// second, republishes the remaining time through the Display, and emits a
// single terminal expiry when the count reaches zero, then stays inert until
// started again. Built on clockwork so tests can drive it with a fake clock.
type Countdown struct {
	clock   clockwork.Clock
	display Display

	mu        sync.Mutex
	duration  int
	remaining int
	running   bool
	stopCh    chan struct{}
	doneCh    chan struct{}

	expiredCh chan struct{}
}

// NewCountdown builds a countdown for durationSeconds. An invalid duration
// falls back to DefaultLimitSeconds rather than failing.
func NewCountdown(clock clockwork.Clock, durationSeconds int, display Display) *Countdown {
	if durationSeconds <= 0 {
		durationSeconds = DefaultLimitSeconds
	}
	return &Countdown{
		clock:     clock,
		display:   display,
		duration:  durationSeconds,
		expiredCh: make(chan struct{}, 1),
	}
}

// Expired returns the channel carrying the single terminal expiry signal.
func (c *Countdown) Expired() <-chan struct{} {
	return c.expiredCh
}

// Start begins the countdown from the configured duration. Calling Start on a
// running countdown is a no-op; use Reset to supersede an in-flight schedule.
func (c *Countdown) Start() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.remaining = c.duration
	stop := make(chan struct{})
	done := make(chan struct{})
	c.stopCh, c.doneCh = stop, done
	c.mu.Unlock()

	// An unconsumed expiry from a previous run must not leak into this one.
	select {
	case <-c.expiredCh:
	default:
	}

	c.publish(c.duration)
	go c.loop(stop, done)
}

func (c *Countdown) loop(stop, done chan struct{}) {
	defer close(done)

	ticker := c.clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			c.mu.Lock()
			c.remaining--
			remaining := c.remaining
			c.mu.Unlock()

			c.publish(remaining)

			if remaining <= 0 {
				c.mu.Lock()
				c.running = false
				c.mu.Unlock()
				// Buffered: the expiry is never lost even if the listener
				// is mid-detach.
				select {
				case c.expiredCh <- struct{}{}:
				default:
				}
				return
			}
		case <-stop:
			return
		}
	}
}

// Stop cancels any pending tick schedule and waits for the tick loop to exit.
// Safe to call repeatedly and after expiry.
func (c *Countdown) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	stop, done := c.stopCh, c.doneCh
	c.mu.Unlock()

	close(stop)
	<-done
}

// Reset re-reads the configured duration and restarts the countdown. The old
// tick schedule is fully cancelled before the new one begins.
func (c *Countdown) Reset() {
	c.Stop()
	c.Start()
}

// Remaining reports the current countdown value.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Running reports whether a tick schedule is active.
func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Countdown) publish(remaining int) {
	if c.display != nil {
		c.display.ShowRemaining(remaining)
	}
}
