// Package timer implements the session clocks: an elapsed-time counter for
// untimed practice and a countdown for timed exams.
//
// Both are driven by a periodic tick (a tea.Tick in the terminal UI, or a
// Loop goroutine) and resynchronize against a wall-clock anchor when the
// learner returns from a backgrounded screen, so a stalled tick source never
// grants extra time.
package timer

import (
	"sync"
	"time"
)

// TickInterval is the step a countdown loses on every visible tick.
const TickInterval = time.Second

// Timer is the contract shared by the elapsed and countdown variants.
type Timer interface {
	// Start records the wall-clock anchor and begins counting.
	// Calling Start on a running or finished timer is a no-op.
	Start(now time.Time)

	// Stop halts the timer at now. Idempotent; safe before Start and after
	// expiry.
	Stop(now time.Time)

	// Tick advances the timer by one tick. Returns true only for the tick
	// that expired the timer.
	Tick(now time.Time) bool

	// Sync applies the wall-clock deadline without spending a tick. Returns
	// true only if this call expired the timer.
	Sync(now time.Time) bool

	// Hide makes ticks no-ops while the screen is backgrounded. Remaining and
	// Sync still follow the wall clock.
	Hide(now time.Time)

	// Show resumes after Hide and resynchronizes against the anchor.
	// Returns true if the resync expired the timer.
	Show(now time.Time) bool

	// Remaining returns the time left; zero for untimed timers.
	Remaining(now time.Time) time.Duration

	// Elapsed returns the time counted since Start.
	Elapsed(now time.Time) time.Duration

	// Expired reports whether the timer ran out.
	Expired() bool

	// Limit returns the configured time limit; zero for untimed timers.
	Limit() time.Duration
}

// ElapsedTimer counts up from Start and never expires.
type ElapsedTimer struct {
	mu      sync.Mutex
	anchor  time.Time
	frozen  time.Duration
	running bool
	stopped bool
}

var _ Timer = (*ElapsedTimer)(nil)

// NewElapsed creates an ElapsedTimer.
func NewElapsed() *ElapsedTimer {
	return &ElapsedTimer{}
}

func (t *ElapsedTimer) Start(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running || t.stopped {
		return
	}
	t.anchor = now
	t.running = true
}

// Stop freezes the elapsed value at now.
func (t *ElapsedTimer) Stop(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observe(now)
	t.running = false
	t.stopped = true
}

func (t *ElapsedTimer) Tick(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observe(now)
	return false
}

func (t *ElapsedTimer) Sync(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observe(now)
	return false
}

func (t *ElapsedTimer) Hide(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observe(now)
}

func (t *ElapsedTimer) Show(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observe(now)
	return false
}

func (t *ElapsedTimer) Remaining(time.Time) time.Duration { return 0 }

func (t *ElapsedTimer) Elapsed(now time.Time) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observe(now)
	return t.frozen
}

func (t *ElapsedTimer) Expired() bool { return false }

func (t *ElapsedTimer) Limit() time.Duration { return 0 }

// observe refreshes the frozen value; it never moves backwards.
func (t *ElapsedTimer) observe(now time.Time) {
	if !t.running {
		return
	}
	if d := now.Sub(t.anchor); d > t.frozen {
		t.frozen = d
	}
}

// Countdown counts down from a fixed limit and fires its expiry callback at
// most once.
type Countdown struct {
	mu        sync.Mutex
	limit     time.Duration
	remaining time.Duration
	anchor    time.Time
	running   bool
	hidden    bool
	expired   bool
	onExpire  func()
}

var _ Timer = (*Countdown)(nil)

// NewCountdown creates a countdown with the given limit. onExpire may be nil.
func NewCountdown(limit time.Duration, onExpire func()) *Countdown {
	if limit < 0 {
		limit = 0
	}
	return &Countdown{limit: limit, remaining: limit, onExpire: onExpire}
}

func (c *Countdown) Start(now time.Time) {
	c.mu.Lock()
	if c.running || c.expired {
		c.mu.Unlock()
		return
	}
	c.anchor = now
	c.running = true
	fire := c.checkExpiry()
	c.mu.Unlock()
	c.fire(fire)
}

// Stop freezes the remaining time at now. A deadline already passed leaves
// zero remaining but does not fire the expiry callback.
func (c *Countdown) Stop(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		c.clamp(now)
		c.remaining = max(c.remaining, 0)
	}
	c.running = false
}

// Tick spends one tick while visible. The result never exceeds what the
// wall clock allows.
func (c *Countdown) Tick(now time.Time) bool {
	c.mu.Lock()
	if !c.running || c.hidden || c.expired {
		c.mu.Unlock()
		return false
	}
	c.remaining -= TickInterval
	c.clamp(now)
	fire := c.checkExpiry()
	c.mu.Unlock()
	c.fire(fire)
	return fire
}

func (c *Countdown) Sync(now time.Time) bool {
	c.mu.Lock()
	if !c.running || c.expired {
		c.mu.Unlock()
		return false
	}
	c.clamp(now)
	fire := c.checkExpiry()
	c.mu.Unlock()
	c.fire(fire)
	return fire
}

func (c *Countdown) Hide(time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		c.hidden = true
	}
}

func (c *Countdown) Show(now time.Time) bool {
	c.mu.Lock()
	if !c.running || c.expired {
		c.hidden = false
		c.mu.Unlock()
		return false
	}
	c.hidden = false
	c.remaining = c.wall(now)
	fire := c.checkExpiry()
	c.mu.Unlock()
	c.fire(fire)
	return fire
}

func (c *Countdown) Remaining(now time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := c.remaining
	if c.running {
		r = min(r, c.wall(now))
	}
	return max(r, 0)
}

func (c *Countdown) Elapsed(now time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.anchor.IsZero() {
		return 0
	}
	if c.expired {
		return c.limit
	}
	return now.Sub(c.anchor)
}

func (c *Countdown) Expired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expired
}

func (c *Countdown) Limit() time.Duration { return c.limit }

// wall is the time left by the wall clock alone. Caller holds mu.
func (c *Countdown) wall(now time.Time) time.Duration {
	return c.limit - now.Sub(c.anchor)
}

// clamp lowers remaining to the wall-clock bound. Caller holds mu.
func (c *Countdown) clamp(now time.Time) {
	c.remaining = min(c.remaining, c.wall(now))
}

// checkExpiry transitions to expired at most once. Caller holds mu.
func (c *Countdown) checkExpiry() bool {
	if c.expired || c.remaining > 0 {
		return false
	}
	c.remaining = 0
	c.expired = true
	c.running = false
	return true
}

// fire runs the callback outside the lock so it may call back into c.
func (c *Countdown) fire(should bool) {
	if should && c.onExpire != nil {
		c.onExpire()
	}
}
