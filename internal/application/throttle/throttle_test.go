package throttle_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/mediator-go/internal/application/mediator"
	"github.com/andrescamacho/mediator-go/internal/application/throttle"
	"github.com/andrescamacho/mediator-go/internal/domain/shared"
)

type fetchQuery struct {
	mediator.Returns[string]
}

type fakeHandler struct {
	calls int
	err   error
}

func (h *fakeHandler) Handle(ctx context.Context, q *fetchQuery) (string, error) {
	h.calls++
	if h.err != nil {
		return "", h.err
	}
	return "data", nil
}

func build(t *testing.T, h *fakeHandler, factory mediator.DecoratorFactory) *mediator.Mediator {
	t.Helper()
	b := mediator.NewBuilder().UseDefaults(factory)
	mediator.RegisterHandler[*fetchQuery, string](b, h)
	med, err := b.Build()
	require.NoError(t, err)
	return med
}

func TestCircuitBreaker_OpensOnInfrastructureFailures(t *testing.T) {
	// Arrange
	clock := shared.NewMockClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	handler := &fakeHandler{err: shared.NewRepositoryUnavailableError("user", errors.New("dial tcp: refused"))}
	set := throttle.NewBreakerSet()
	med := build(t, handler, throttle.CircuitBreaker(throttle.BreakerSettings{
		MaxFailures: 2,
		Timeout:     30 * time.Second,
		Clock:       clock,
	}, set))
	ctx := context.Background()

	// Act
	_, err1 := mediator.Dispatch(ctx, med, &fetchQuery{})
	_, err2 := mediator.Dispatch(ctx, med, &fetchQuery{})
	_, err3 := mediator.Dispatch(ctx, med, &fetchQuery{})

	// Assert
	assert.Equal(t, mediator.TaxonomyRepositoryUnavailable, mediator.TaxonomyOf(err1))
	assert.Equal(t, mediator.TaxonomyRepositoryUnavailable, mediator.TaxonomyOf(err2))
	var open *throttle.CircuitOpenError
	require.ErrorAs(t, err3, &open)
	assert.Equal(t, "fetchQuery", open.Request)
	assert.Equal(t, 30*time.Second, open.RetryAfter)
	assert.Equal(t, mediator.TaxonomyCircuitOpen, mediator.TaxonomyOf(err3))
	assert.Equal(t, 2, handler.calls, "open breaker must not reach the handler")

	breaker, ok := set.Get("fetchQuery")
	require.True(t, ok)
	assert.Equal(t, throttle.CircuitOpen, breaker.State())
	assert.Equal(t, map[string]string{"fetchQuery": "open"}, set.States())
}

func TestCircuitBreaker_HalfOpenRecovers(t *testing.T) {
	clock := shared.NewMockClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	handler := &fakeHandler{err: shared.NewRepositoryUnavailableError("user", errors.New("timeout"))}
	set := throttle.NewBreakerSet()
	med := build(t, handler, throttle.CircuitBreaker(throttle.BreakerSettings{
		MaxFailures: 1,
		Timeout:     time.Minute,
		Clock:       clock,
	}, set))

	_, _ = mediator.Dispatch(context.Background(), med, &fetchQuery{})
	breaker, _ := set.Get("fetchQuery")
	require.Equal(t, throttle.CircuitOpen, breaker.State())

	clock.Advance(time.Minute)
	handler.err = nil
	result, err := mediator.Dispatch(context.Background(), med, &fetchQuery{})

	require.NoError(t, err)
	assert.Equal(t, "data", result)
	assert.Equal(t, throttle.CircuitClosed, breaker.State())
	assert.Equal(t, 0, breaker.FailureCount())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	clock := shared.NewMockClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	handler := &fakeHandler{err: shared.NewRepositoryUnavailableError("user", errors.New("timeout"))}
	set := throttle.NewBreakerSet()
	med := build(t, handler, throttle.CircuitBreaker(throttle.BreakerSettings{
		MaxFailures: 3,
		Timeout:     time.Minute,
		Clock:       clock,
	}, set))
	breakerFor := func() *throttle.Breaker {
		b, _ := set.Get("fetchQuery")
		return b
	}

	for i := 0; i < 3; i++ {
		_, _ = mediator.Dispatch(context.Background(), med, &fetchQuery{})
	}
	require.Equal(t, throttle.CircuitOpen, breakerFor().State())

	clock.Advance(2 * time.Minute)
	_, err := mediator.Dispatch(context.Background(), med, &fetchQuery{})

	assert.Equal(t, mediator.TaxonomyRepositoryUnavailable, mediator.TaxonomyOf(err))
	assert.Equal(t, throttle.CircuitOpen, breakerFor().State())
}

func TestCircuitBreaker_IgnoresRequestRejections(t *testing.T) {
	handler := &fakeHandler{err: shared.NewDomainError("email taken")}
	set := throttle.NewBreakerSet()
	med := build(t, handler, throttle.CircuitBreaker(throttle.BreakerSettings{MaxFailures: 1, Timeout: time.Minute}, set))

	for i := 0; i < 3; i++ {
		_, err := mediator.Dispatch(context.Background(), med, &fetchQuery{})
		assert.Equal(t, mediator.TaxonomyDomainRuleViolation, mediator.TaxonomyOf(err))
	}

	assert.Equal(t, 3, handler.calls)
	breaker, _ := set.Get("fetchQuery")
	assert.Equal(t, throttle.CircuitClosed, breaker.State())
}

func TestBreaker_ResetCloses(t *testing.T) {
	b := throttle.NewBreaker("x", 1, time.Hour, func(error) bool { return true }, nil)
	_ = b.Call(func() error { return errors.New("fail") })
	require.Equal(t, throttle.CircuitOpen, b.State())

	b.Reset()

	assert.Equal(t, throttle.CircuitClosed, b.State())
	assert.NoError(t, b.Call(func() error { return nil }))
}

func TestRateLimit_CancelledWhileWaiting(t *testing.T) {
	// Arrange
	handler := &fakeHandler{}
	med := build(t, handler, throttle.RateLimit(throttle.Limit{PerSecond: 0.001, Burst: 1}, nil))
	_, err := mediator.Dispatch(context.Background(), med, &fetchQuery{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// Act
	_, err = mediator.Dispatch(ctx, med, &fetchQuery{})

	// Assert
	var cancelled *mediator.CancelledError
	require.ErrorAs(t, err, &cancelled)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, handler.calls)
}

func TestRateLimit_PerTypeOverrideAndDisabled(t *testing.T) {
	factory := throttle.RateLimit(throttle.Limit{PerSecond: 10, Burst: 1}, map[string]throttle.Limit{
		"fetchQuery": {PerSecond: 0},
	})

	assert.Nil(t, factory(mediator.Descriptor{Name: "fetchQuery"}), "zero rate disables limiting")
	assert.NotNil(t, factory(mediator.Descriptor{Name: "otherQuery"}))
}

func TestRateLimit_BurstPassesThrough(t *testing.T) {
	handler := &fakeHandler{}
	med := build(t, handler, throttle.RateLimit(throttle.Limit{PerSecond: 1, Burst: 3}, nil))

	for i := 0; i < 3; i++ {
		_, err := mediator.Dispatch(context.Background(), med, &fetchQuery{})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, handler.calls)
}
