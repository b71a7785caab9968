// Package recommender provides the resilient adapter for the external
// recommendation gateway.
package recommender

import (
	"sync"
	"time"
)

// BreakerState represents the current state of the circuit breaker.
type BreakerState string

const (
	// BreakerClosed means calls flow through normally.
	BreakerClosed BreakerState = "closed"
	// BreakerOpen means calls are short-circuited until the cooldown elapses.
	BreakerOpen BreakerState = "open"
	// BreakerHalfOpen means a single trial call is probing the gateway.
	BreakerHalfOpen BreakerState = "half_open"
)

// BreakerConfig tunes the circuit breaker thresholds.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens the circuit.
	FailureThreshold int
	// FailureRateThreshold opens the circuit when the failure rate over a full
	// rolling window meets or exceeds this fraction. Zero disables rate tripping.
	FailureRateThreshold float64
	// WindowSize is the call count of the rolling window for rate tripping.
	WindowSize int
	// Cooldown is how long the circuit stays open before permitting a trial call.
	Cooldown time.Duration
	// Clock is an injectable time source. Defaults to time.Now.
	Clock func() time.Time
}

// Breaker is a three-state circuit breaker. It is safe for concurrent use.
//
// The circuit opens on either trigger: too many consecutive failures, or the
// failure rate over the most recent full window of calls crossing the rate
// threshold. After the cooldown a single trial call is admitted; its outcome
// closes or re-opens the circuit.
type Breaker struct {
	cfg   BreakerConfig
	clock func() time.Time

	mu            sync.Mutex
	state         BreakerState
	consecutive   int
	window        []bool // true marks a failure
	windowNext    int
	windowFilled  bool
	openedAt      time.Time
	trialInFlight bool
}

// NewBreaker constructs a Breaker, applying defaults for zero-valued config.
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = 5
	}
	if cfg.WindowSize < 1 {
		cfg.WindowSize = 10
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Breaker{
		cfg:    cfg,
		clock:  clock,
		state:  BreakerClosed,
		window: make([]bool, cfg.WindowSize),
	}
}

// State reports the breaker state, promoting open to half-open when the
// cooldown has elapsed.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maybePromote()
	return b.state
}

// Allow reports whether a call may proceed. In the half-open state only one
// trial call is admitted at a time; callers that receive true must report the
// outcome via RecordSuccess or RecordFailure.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.maybePromote()

	switch b.state {
	case BreakerClosed:
		return true
	case BreakerHalfOpen:
		if b.trialInFlight {
			return false
		}
		b.trialInFlight = true
		return true
	default:
		return false
	}
}

// RecordSuccess records a successful call outcome.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerHalfOpen {
		b.reset()
		return
	}

	b.consecutive = 0
	b.push(false)
}

// RecordFailure records a failed call outcome, tripping the circuit when a
// threshold is crossed.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerHalfOpen {
		b.trip()
		return
	}

	b.consecutive++
	b.push(true)

	if b.consecutive >= b.cfg.FailureThreshold {
		b.trip()
		return
	}
	if b.cfg.FailureRateThreshold > 0 && b.windowFilled {
		if b.failureRate() >= b.cfg.FailureRateThreshold {
			b.trip()
		}
	}
}

// maybePromote moves an open circuit to half-open once the cooldown elapses.
// Callers must hold the mutex.
func (b *Breaker) maybePromote() {
	if b.state == BreakerOpen && b.clock().Sub(b.openedAt) >= b.cfg.Cooldown {
		b.state = BreakerHalfOpen
		b.trialInFlight = false
	}
}

func (b *Breaker) trip() {
	b.state = BreakerOpen
	b.openedAt = b.clock()
	b.trialInFlight = false
}

func (b *Breaker) reset() {
	b.state = BreakerClosed
	b.consecutive = 0
	b.window = make([]bool, b.cfg.WindowSize)
	b.windowNext = 0
	b.windowFilled = false
	b.trialInFlight = false
}

func (b *Breaker) push(failed bool) {
	b.window[b.windowNext] = failed
	b.windowNext++
	if b.windowNext == len(b.window) {
		b.windowNext = 0
		b.windowFilled = true
	}
}

func (b *Breaker) failureRate() float64 {
	failures := 0
	for _, failed := range b.window {
		if failed {
			failures++
		}
	}
	return float64(failures) / float64(len(b.window))
}
