package config

import "time"

// DaemonConfig holds user-daemon process configuration
type DaemonConfig struct {
	// PID file guarding against a second instance
	PIDFile string `mapstructure:"pid_file" validate:"required"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`

	// Rebuild the dispatch pipeline when the config file changes
	WatchConfig bool `mapstructure:"watch_config"`
}
