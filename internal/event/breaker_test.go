package event

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// At sets the clock to start + seconds.
func (c *fakeClock) At(start time.Time, seconds int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = start.Add(time.Duration(seconds) * time.Second)
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "CLOSED", Closed.String())
	assert.Equal(t, "OPEN", Open.String())
	assert.Equal(t, "HALF_OPEN", HalfOpen.String())
	assert.Equal(t, "UNKNOWN", State(9).String())
}

func TestBreaker_Defaults(t *testing.T) {
	b := NewBreaker(WithThreshold(0), WithCooldown(-time.Second), WithClock(nil))

	assert.Equal(t, defaultThreshold, b.threshold)
	assert.Equal(t, defaultCooldown, b.cooldown)
	assert.Equal(t, Closed, b.State())
	assert.True(t, b.Allow())
}

func TestBreaker_SuccessResetsCounter(t *testing.T) {
	b := NewBreaker(WithThreshold(3))

	b.RecordResult(false)
	b.RecordResult(false)
	assert.Equal(t, 2, b.Snapshot().Failures)

	b.RecordResult(true)
	assert.Equal(t, 0, b.Snapshot().Failures)

	b.RecordResult(false)
	b.RecordResult(false)
	assert.Equal(t, Closed, b.State(), "failures must be consecutive")
}

func TestBreaker_OpensAtThresholdOnce(t *testing.T) {
	clock := newFakeClock()
	var transitions []State
	b := NewBreaker(
		WithThreshold(3),
		WithCooldown(10*time.Second),
		WithClock(clock.Now),
		WithOnStateChange(func(_, to State, _ Snapshot) { transitions = append(transitions, to) }),
	)

	for i := 0; i < 5; i++ {
		b.RecordResult(false)
	}

	assert.Equal(t, Open, b.State())
	assert.Equal(t, []State{Open}, transitions)
	assert.Equal(t, clock.Now(), b.Snapshot().OpenedAt)
}

func TestBreaker_ResultsWhileOpenAreIgnored(t *testing.T) {
	clock := newFakeClock()
	b := NewBreaker(WithThreshold(1), WithCooldown(10*time.Second), WithClock(clock.Now))

	b.RecordResult(false)
	before := b.Snapshot()

	clock.Advance(3 * time.Second)
	b.RecordResult(true)
	b.RecordResult(false)

	assert.Equal(t, before, b.Snapshot())
}

// Failures at t=0,1,2 open the circuit at t=2 with a 10s cooldown. The trial
// becomes eligible at t=12, measured from OpenedAt.
func TestBreaker_Scenario(t *testing.T) {
	clock := newFakeClock()
	start := clock.Now()
	b := NewBreaker(WithThreshold(3), WithCooldown(10*time.Second), WithClock(clock.Now))

	for _, sec := range []int{0, 1, 2} {
		clock.At(start, sec)
		require.True(t, b.Allow())
		b.RecordResult(false)
	}
	require.Equal(t, Open, b.State())
	openedAt := start.Add(2 * time.Second)
	assert.Equal(t, openedAt, b.Snapshot().OpenedAt)

	clock.At(start, 5)
	assert.False(t, b.Allow())

	clock.At(start, 11)
	assert.False(t, b.Allow(), "cooldown is measured from OpenedAt")
	assert.Equal(t, Open, b.State())

	clock.At(start, 12)
	assert.True(t, b.Allow())
	assert.Equal(t, HalfOpen, b.State())
	assert.False(t, b.Allow(), "only one trial while half-open")

	b.RecordResult(false)
	snap := b.Snapshot()
	assert.Equal(t, Open, snap.State)
	assert.Equal(t, start.Add(12*time.Second), snap.OpenedAt)
	assert.False(t, b.Allow())
}

func TestBreaker_HalfOpenSuccessCloses(t *testing.T) {
	clock := newFakeClock()
	b := NewBreaker(WithThreshold(2), WithCooldown(time.Second), WithClock(clock.Now))

	b.RecordResult(false)
	b.RecordResult(false)
	clock.Advance(time.Second)

	require.True(t, b.Allow())
	b.RecordResult(true)

	snap := b.Snapshot()
	assert.Equal(t, Closed, snap.State)
	assert.Equal(t, 0, snap.Failures)
	assert.True(t, b.Allow())
	assert.True(t, b.Allow())
}

func TestBreaker_TransitionCallback(t *testing.T) {
	clock := newFakeClock()
	type change struct{ from, to State }
	var changes []change
	b := NewBreaker(
		WithThreshold(1),
		WithCooldown(time.Second),
		WithClock(clock.Now),
		WithOnStateChange(func(from, to State, _ Snapshot) { changes = append(changes, change{from, to}) }),
	)

	b.RecordResult(false)
	clock.Advance(time.Second)
	b.Allow()
	b.RecordResult(false)
	clock.Advance(time.Second)
	b.Allow()
	b.RecordResult(true)

	assert.Equal(t, []change{
		{Closed, Open},
		{Open, HalfOpen},
		{HalfOpen, Open},
		{Open, HalfOpen},
		{HalfOpen, Closed},
	}, changes)
}

func TestBreaker_ConcurrentTrialHasSingleWinner(t *testing.T) {
	clock := newFakeClock()
	b := NewBreaker(WithThreshold(1), WithCooldown(time.Second), WithClock(clock.Now))
	b.RecordResult(false)
	clock.Advance(time.Second)

	var allowed atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if b.Allow() {
				allowed.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), allowed.Load())
	assert.Equal(t, HalfOpen, b.State())
}

func TestBreaker_ConcurrentFailuresOpenOnce(t *testing.T) {
	var opens atomic.Int32
	b := NewBreaker(
		WithThreshold(5),
		WithCooldown(time.Hour),
		WithOnStateChange(func(_, to State, _ Snapshot) {
			if to == Open {
				opens.Add(1)
			}
		}),
	)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.RecordResult(false)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), opens.Load())
	assert.Equal(t, Open, b.State())
}
