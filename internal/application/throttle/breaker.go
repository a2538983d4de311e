package throttle

import (
	"fmt"
	"sync"
	"time"

	"github.com/andrescamacho/mediator-go/internal/application/mediator"
	"github.com/andrescamacho/mediator-go/internal/domain/shared"
)

// CircuitState represents the state of the circuit breaker
type CircuitState int

const (
	// CircuitClosed allows all requests
	CircuitClosed CircuitState = iota
	// CircuitOpen blocks all requests
	CircuitOpen
	// CircuitHalfOpen lets requests through to probe recovery
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return fmt.Sprintf("CircuitState(%d)", int(s))
	}
}

// CircuitOpenError is returned while the breaker for a request type is open
type CircuitOpenError struct {
	Request    string
	RetryAfter time.Duration
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit breaker open for %s, retry after %s", e.Request, e.RetryAfter)
}

// Taxonomy classifies the error for the dispatch pipeline
func (e *CircuitOpenError) Taxonomy() string {
	return mediator.TaxonomyCircuitOpen
}

// Breaker counts consecutive tripping failures of one request type
type Breaker struct {
	name            string
	maxFailures     int
	timeout         time.Duration
	trips           func(error) bool
	state           CircuitState
	failureCount    int
	lastFailureTime time.Time
	mu              sync.RWMutex
	clock           shared.Clock
}

// NewBreaker creates a breaker that opens after maxFailures consecutive
// failures for which trips returns true. If clock is nil, uses RealClock.
func NewBreaker(name string, maxFailures int, timeout time.Duration, trips func(error) bool, clock shared.Clock) *Breaker {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if maxFailures < 1 {
		maxFailures = 1
	}
	return &Breaker{
		name:        name,
		maxFailures: maxFailures,
		timeout:     timeout,
		trips:       trips,
		state:       CircuitClosed,
		clock:       clock,
	}
}

// Call executes fn with breaker protection. The error from fn is returned
// unchanged; only the state bookkeeping depends on it.
func (b *Breaker) Call(fn func() error) error {
	b.mu.Lock()
	if b.state == CircuitOpen {
		elapsed := b.clock.Now().Sub(b.lastFailureTime)
		if elapsed < b.timeout {
			b.mu.Unlock()
			return &CircuitOpenError{Request: b.name, RetryAfter: b.timeout - elapsed}
		}
		b.state = CircuitHalfOpen
	}
	b.mu.Unlock()

	// fn runs without the lock so slow handlers don't serialize the type
	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil && b.trips(err) {
		b.onFailure()
		return err
	}

	b.onSuccess()
	return err
}

func (b *Breaker) onFailure() {
	b.failureCount++
	b.lastFailureTime = b.clock.Now()

	if b.state == CircuitHalfOpen || b.failureCount >= b.maxFailures {
		b.state = CircuitOpen
	}
}

func (b *Breaker) onSuccess() {
	b.failureCount = 0
	b.state = CircuitClosed
}

// State returns the current breaker state
func (b *Breaker) State() CircuitState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// FailureCount returns the current consecutive failure count
func (b *Breaker) FailureCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.failureCount
}

// Reset closes the breaker
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = CircuitClosed
	b.failureCount = 0
}
