package config

import "time"

// DispatchConfig selects the decorators wrapping every request handler.
// Names refer to the decorator catalog: logging, recovery, validation,
// metrics, ratelimit, circuitbreaker.
type DispatchConfig struct {
	// Default decorator chain, outermost first
	Decorators []string `mapstructure:"decorators" validate:"dive,required"`

	// Per request type chains replacing the default, keyed by type name
	// (e.g. CreateUserCommand)
	Overrides map[string][]string `mapstructure:"overrides" validate:"dive,dive,required"`

	RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// RateLimitConfig configures the per request type token bucket
type RateLimitConfig struct {
	// Requests per second; 0 disables limiting
	PerSecond float64 `mapstructure:"per_second" validate:"min=0"`
	Burst     int     `mapstructure:"burst" validate:"min=0"`

	// Limits for specific request types
	PerType map[string]TypeRateLimit `mapstructure:"per_type"`
}

// TypeRateLimit is a rate limit for one request type
type TypeRateLimit struct {
	PerSecond float64 `mapstructure:"per_second" validate:"min=0"`
	Burst     int     `mapstructure:"burst" validate:"min=0"`
}

// CircuitBreakerConfig configures the per request type circuit breaker
type CircuitBreakerConfig struct {
	MaxFailures int           `mapstructure:"max_failures" validate:"min=1"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"required"`
}
