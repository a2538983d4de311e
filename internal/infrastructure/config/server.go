package config

import "time"

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	// Listen address (host:port)
	Address string `mapstructure:"address" validate:"required,hostname_port"`

	ReadTimeout  time.Duration `mapstructure:"read_timeout" validate:"required"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"required"`

	// Upper bound for one request's dispatch; the dispatch context is
	// cancelled when it expires
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"required"`
}
