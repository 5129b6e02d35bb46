package event

import (
	"sync"
	"time"
)

// State is the circuit state of the event backend.
type State int

const (
	// Closed passes every publish through to the backend.
	Closed State = iota
	// Open skips publishes until the cooldown has elapsed.
	Open
	// HalfOpen lets a single trial publish through.
	HalfOpen
)

// String returns the state name used in logs, metrics and /ready.
func (s State) String() string {
	switch s {
	case Closed:
		return "CLOSED"
	case Open:
		return "OPEN"
	case HalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

const (
	defaultThreshold = 5
	defaultCooldown  = 30 * time.Second
)

// Snapshot is a point-in-time copy of the breaker status.
type Snapshot struct {
	State    State
	Failures int
	OpenedAt time.Time
}

// Breaker tracks consecutive backend failures and short-circuits publishing
// while the backend is unhealthy. All methods are safe for concurrent use.
type Breaker struct {
	mu            sync.Mutex
	state         State
	failures      int
	threshold     int
	cooldown      time.Duration
	openedAt      time.Time
	onStateChange func(from, to State, snap Snapshot)
	now           func() time.Time
}

// Option configures a Breaker.
type Option func(*Breaker)

// WithThreshold sets the number of consecutive failures that opens the circuit.
func WithThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.threshold = n
		}
	}
}

// WithCooldown sets how long the circuit stays open before a trial is allowed.
func WithCooldown(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.cooldown = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) {
		if now != nil {
			b.now = now
		}
	}
}

// WithOnStateChange registers a callback fired on every transition.
// It runs with the breaker lock held and must not call back into the breaker.
func WithOnStateChange(fn func(from, to State, snap Snapshot)) Option {
	return func(b *Breaker) {
		b.onStateChange = fn
	}
}

// NewBreaker creates a closed Breaker.
func NewBreaker(opts ...Option) *Breaker {
	b := &Breaker{
		state:     Closed,
		threshold: defaultThreshold,
		cooldown:  defaultCooldown,
		now:       time.Now,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Allow reports whether a publish may reach the backend.
//
// Closed always allows. Open allows nothing until cooldown has passed since
// the circuit opened; the first caller after that moves the circuit to
// HalfOpen and is the only one allowed through until its result is recorded.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		return true
	case Open:
		if b.now().Sub(b.openedAt) >= b.cooldown {
			b.transition(HalfOpen)
			return true
		}
		return false
	default:
		return false
	}
}

// RecordResult reports the outcome of a publish that Allow let through.
// Results arriving while the circuit is open are ignored.
func (b *Breaker) RecordResult(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		if success {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.threshold {
			b.trip()
		}
	case HalfOpen:
		if success {
			b.failures = 0
			b.transition(Closed)
			return
		}
		b.trip()
	}
}

// State returns the current state without side effects.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Snapshot returns the current state, failure count and last open time.
func (b *Breaker) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot()
}

func (b *Breaker) snapshot() Snapshot {
	return Snapshot{State: b.state, Failures: b.failures, OpenedAt: b.openedAt}
}

func (b *Breaker) trip() {
	b.openedAt = b.now()
	b.transition(Open)
}

func (b *Breaker) transition(to State) {
	from := b.state
	b.state = to
	if b.onStateChange != nil && from != to {
		b.onStateChange(from, to, b.snapshot())
	}
}
