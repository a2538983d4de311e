package setup

import (
	"fmt"
	"sort"

	"github.com/andrescamacho/mediator-go/internal/application/logging"
	"github.com/andrescamacho/mediator-go/internal/application/mediator"
	"github.com/andrescamacho/mediator-go/internal/application/recovery"
	"github.com/andrescamacho/mediator-go/internal/application/throttle"
	"github.com/andrescamacho/mediator-go/internal/application/validation"
	"github.com/andrescamacho/mediator-go/internal/domain/shared"
	"github.com/andrescamacho/mediator-go/internal/infrastructure/config"
)

// Decorator names accepted in dispatch.decorators and dispatch.overrides
const (
	DecoratorLogging        = "logging"
	DecoratorRecovery       = "recovery"
	DecoratorValidation     = "validation"
	DecoratorMetrics        = "metrics"
	DecoratorRateLimit      = "ratelimit"
	DecoratorCircuitBreaker = "circuitbreaker"
)

// PipelineDeps are the collaborators decorators need
type PipelineDeps struct {
	// Logger receives dispatch observations; nil falls back to the context logger
	Logger logging.Logger

	// Metrics is the metrics decorator factory; nil disables metrics
	Metrics mediator.DecoratorFactory

	// Breakers collects the circuit breakers built for each request type; may be nil
	Breakers *throttle.BreakerSet

	Clock shared.Clock
}

// NewCatalog names every decorator the dispatch configuration can refer to
func NewCatalog(cfg config.DispatchConfig, deps PipelineDeps) *mediator.Catalog {
	metricsFactory := deps.Metrics
	if metricsFactory == nil {
		metricsFactory = func(mediator.Descriptor) mediator.Decorator { return nil }
	}

	perType := make(map[string]throttle.Limit, len(cfg.RateLimit.PerType))
	for name, l := range cfg.RateLimit.PerType {
		perType[name] = throttle.Limit{PerSecond: l.PerSecond, Burst: l.Burst}
	}

	return mediator.NewCatalog().
		Add(DecoratorLogging, logging.Decorator(deps.Logger)).
		Add(DecoratorRecovery, recovery.Decorator()).
		Add(DecoratorValidation, validation.Decorator()).
		Add(DecoratorMetrics, metricsFactory).
		Add(DecoratorRateLimit, throttle.RateLimit(throttle.Limit{
			PerSecond: cfg.RateLimit.PerSecond,
			Burst:     cfg.RateLimit.Burst,
		}, perType)).
		Add(DecoratorCircuitBreaker, throttle.CircuitBreaker(throttle.BreakerSettings{
			MaxFailures: cfg.CircuitBreaker.MaxFailures,
			Timeout:     cfg.CircuitBreaker.Timeout,
			Clock:       deps.Clock,
		}, deps.Breakers))
}

// BuildMediator registers every handler and builds the dispatch pipeline
// described by cfg. It fails on unknown decorator names and on any binding
// problem, so a bad configuration never replaces a working pipeline.
func BuildMediator(cfg config.DispatchConfig, registry *HandlerRegistry, deps PipelineDeps) (*mediator.Mediator, error) {
	catalog := NewCatalog(cfg, deps)

	defaults, err := catalog.Resolve(cfg.Decorators...)
	if err != nil {
		return nil, fmt.Errorf("default decorators: %w", err)
	}
	b := mediator.NewBuilder().UseDefaults(defaults...)

	names := make([]string, 0, len(cfg.Overrides))
	for name := range cfg.Overrides {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		factories, err := catalog.Resolve(cfg.Overrides[name]...)
		if err != nil {
			return nil, fmt.Errorf("decorators for %s: %w", name, err)
		}
		b.Override(name, factories...)
	}

	registry.RegisterUserHandlers(b)

	med, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build mediator: %w", err)
	}
	return med, nil
}
