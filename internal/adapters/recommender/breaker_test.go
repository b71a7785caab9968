package recommender

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestBreaker(clock *fakeClock) *Breaker {
	return NewBreaker(BreakerConfig{
		FailureThreshold:     5,
		FailureRateThreshold: 0.5,
		WindowSize:           10,
		Cooldown:             30 * time.Second,
		Clock:                clock.Now,
	})
}

func TestBreaker_StartsClosed(t *testing.T) {
	b := newTestBreaker(&fakeClock{now: time.Now()})
	assert.Equal(t, BreakerClosed, b.State())
	assert.True(t, b.Allow())
}

func TestBreaker_OpensOnConsecutiveFailures(t *testing.T) {
	b := newTestBreaker(&fakeClock{now: time.Now()})

	for i := 0; i < 4; i++ {
		b.RecordFailure()
		assert.Equal(t, BreakerClosed, b.State(), "failure %d should not trip", i+1)
	}

	b.RecordFailure()
	assert.Equal(t, BreakerOpen, b.State())
	assert.False(t, b.Allow())
}

func TestBreaker_SuccessResetsConsecutiveCount(t *testing.T) {
	b := newTestBreaker(&fakeClock{now: time.Now()})

	for i := 0; i < 4; i++ {
		b.RecordFailure()
	}
	b.RecordSuccess()
	b.RecordFailure()

	assert.Equal(t, BreakerClosed, b.State())
}

func TestBreaker_OpensOnFailureRate(t *testing.T) {
	b := newTestBreaker(&fakeClock{now: time.Now()})

	// Alternate outcomes so the consecutive counter never reaches the
	// threshold; once the 10-call window is full at a 50% rate the circuit
	// trips on the next failure.
	for i := 0; i < 5; i++ {
		b.RecordSuccess()
		b.RecordFailure()
	}

	assert.Equal(t, BreakerOpen, b.State())
}

func TestBreaker_RateNeedsFullWindow(t *testing.T) {
	b := newTestBreaker(&fakeClock{now: time.Now()})

	// One failure out of two calls is a 50% rate, but the window is not
	// full yet so the circuit stays closed.
	b.RecordSuccess()
	b.RecordFailure()

	assert.Equal(t, BreakerClosed, b.State())
}

func TestBreaker_HalfOpenAfterCooldown(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	b := newTestBreaker(clock)

	for i := 0; i < 5; i++ {
		b.RecordFailure()
	}
	require.Equal(t, BreakerOpen, b.State())
	require.False(t, b.Allow())

	clock.Advance(29 * time.Second)
	assert.False(t, b.Allow())

	clock.Advance(time.Second)
	assert.Equal(t, BreakerHalfOpen, b.State())
}

func TestBreaker_HalfOpenAdmitsSingleTrial(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	b := newTestBreaker(clock)

	for i := 0; i < 5; i++ {
		b.RecordFailure()
	}
	clock.Advance(30 * time.Second)

	assert.True(t, b.Allow())
	assert.False(t, b.Allow(), "second caller must wait for the trial outcome")
}

func TestBreaker_TrialSuccessCloses(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	b := newTestBreaker(clock)

	for i := 0; i < 5; i++ {
		b.RecordFailure()
	}
	clock.Advance(30 * time.Second)

	require.True(t, b.Allow())
	b.RecordSuccess()

	assert.Equal(t, BreakerClosed, b.State())
	assert.True(t, b.Allow())
}

func TestBreaker_TrialFailureReopens(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	b := newTestBreaker(clock)

	for i := 0; i < 5; i++ {
		b.RecordFailure()
	}
	clock.Advance(30 * time.Second)

	require.True(t, b.Allow())
	b.RecordFailure()

	assert.Equal(t, BreakerOpen, b.State())
	assert.False(t, b.Allow())

	// A fresh cooldown applies after the failed trial.
	clock.Advance(30 * time.Second)
	assert.True(t, b.Allow())
}
