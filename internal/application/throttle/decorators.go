// Package throttle holds dispatch decorators that protect handlers from
// overload: a per-type token bucket and a per-type circuit breaker.
package throttle

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/andrescamacho/mediator-go/internal/application/mediator"
	"github.com/andrescamacho/mediator-go/internal/domain/shared"
)

// Limit describes a token bucket
type Limit struct {
	PerSecond float64
	Burst     int
}

// RateLimit creates a factory that gives every request type its own token
// bucket. Types named in perType (exact or lower-cased name) use their own
// limit; the rest use def.
// A non-positive rate leaves the type unthrottled.
//
// Waiting for a token observes ctx: a dispatch cancelled while queued fails
// with *mediator.CancelledError and never reaches the handler.
func RateLimit(def Limit, perType map[string]Limit) mediator.DecoratorFactory {
	return func(d mediator.Descriptor) mediator.Decorator {
		limit, ok := perType[d.Name]
		if !ok {
			limit, ok = perType[strings.ToLower(d.Name)]
		}
		if !ok {
			limit = def
		}
		if limit.PerSecond <= 0 {
			return nil
		}
		burst := limit.Burst
		if burst < 1 {
			burst = 1
		}
		limiter := rate.NewLimiter(rate.Limit(limit.PerSecond), burst)

		return func(ctx context.Context, request any, next mediator.HandlerFunc) (mediator.Response, error) {
			if err := limiter.Wait(ctx); err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, &mediator.CancelledError{Cause: ctxErr}
				}
				// the limiter refuses waits that would outlive the deadline
				return nil, &mediator.CancelledError{Cause: fmt.Errorf("%w: %v", context.DeadlineExceeded, err)}
			}
			return next(ctx, request)
		}
	}
}

// BreakerSettings configures CircuitBreaker
type BreakerSettings struct {
	MaxFailures int
	Timeout     time.Duration
	// Trips decides which failures count against the breaker. Defaults to
	// IsInfrastructureFailure.
	Trips func(error) bool
	Clock shared.Clock
}

// IsInfrastructureFailure reports failures of collaborators the handler
// depends on, as opposed to rejections of the request itself.
func IsInfrastructureFailure(err error) bool {
	return mediator.TaxonomyOf(err) == mediator.TaxonomyRepositoryUnavailable
}

// BreakerSet keeps the breaker created for each request type so callers can
// inspect them (health endpoints, tests).
type BreakerSet struct {
	mu       sync.RWMutex
	breakers map[string]*Breaker
}

// NewBreakerSet creates an empty set
func NewBreakerSet() *BreakerSet {
	return &BreakerSet{breakers: make(map[string]*Breaker)}
}

// Get returns the breaker of the named request type, if one was built
func (s *BreakerSet) Get(name string) (*Breaker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.breakers[name]
	return b, ok
}

// States reports every breaker's state by request name
func (s *BreakerSet) States() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	states := make(map[string]string, len(s.breakers))
	for name, b := range s.breakers {
		states[name] = b.State().String()
	}
	return states
}

func (s *BreakerSet) add(b *Breaker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.breakers[b.name] = b
}

// CircuitBreaker creates a factory that wraps every request type in its own
// Breaker. While a type's breaker is open, dispatches fail fast with
// *CircuitOpenError. set may be nil.
func CircuitBreaker(settings BreakerSettings, set *BreakerSet) mediator.DecoratorFactory {
	trips := settings.Trips
	if trips == nil {
		trips = IsInfrastructureFailure
	}

	return func(d mediator.Descriptor) mediator.Decorator {
		breaker := NewBreaker(d.Name, settings.MaxFailures, settings.Timeout, trips, settings.Clock)
		if set != nil {
			set.add(breaker)
		}

		return func(ctx context.Context, request any, next mediator.HandlerFunc) (mediator.Response, error) {
			var resp mediator.Response
			err := breaker.Call(func() error {
				var err error
				resp, err = next(ctx, request)
				return err
			})
			return resp, err
		}
	}
}
