package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the main configuration struct combining all sub-configs
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Daemon   DaemonConfig   `mapstructure:"daemon"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Dispatch DispatchConfig `mapstructure:"dispatch"`
}

// Loader reads configuration from a viper instance it owns so the same
// sources can be re-read when the config file changes.
type Loader struct {
	v *viper.Viper
}

// NewLoader prepares a loader. configPath may be empty to search the default
// locations (., ./configs, /etc/mediator-go) for config.yaml.
func NewLoader(configPath string) *Loader {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/mediator-go")
	}

	v.SetEnvPrefix("MD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	return &Loader{v: v}
}

// bindEnv registers every leaf key so AutomaticEnv also applies to keys that
// appear in no config file.
func bindEnv(v *viper.Viper) {
	for _, key := range []string{
		"database.type", "database.url", "database.host", "database.port", "database.user",
		"database.password", "database.name", "database.sslmode", "database.path",
		"database.pool.max_open", "database.pool.max_idle", "database.pool.max_lifetime",
		"server.address", "server.read_timeout", "server.write_timeout", "server.request_timeout",
		"daemon.pid_file", "daemon.shutdown_timeout", "daemon.watch_config",
		"logging.level", "logging.format", "logging.output", "logging.file_path", "logging.include_caller",
		"metrics.enabled", "metrics.path",
		"dispatch.decorators", "dispatch.rate_limit.per_second", "dispatch.rate_limit.burst",
		"dispatch.circuit_breaker.max_failures", "dispatch.circuit_breaker.timeout",
	} {
		_ = v.BindEnv(key)
	}
}

// Load reads every source with priority:
// 1. Environment variables (highest priority)
// 2. Config file (config.yaml)
// 3. Defaults (lowest priority)
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK - we'll use env vars and defaults
	}

	return l.decode()
}

func (l *Loader) decode() (*Config, error) {
	// DATABASE_URL is honored without the MD_ prefix
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		l.v.Set("database.url", dbURL)
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	SetDefaults(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// ConfigFileUsed returns the file the loader read, or "" when none was found
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// LoadConfig loads configuration from all sources
func LoadConfig(configPath string) (*Config, error) {
	return NewLoader(configPath).Load()
}

// LoadConfigOrDefault loads configuration or returns a default config on error
func LoadConfigOrDefault(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		defaultCfg := &Config{}
		SetDefaults(defaultCfg)
		return defaultCfg
	}
	return cfg
}

// MustLoadConfig loads configuration and panics on error (for use in main.go)
func MustLoadConfig(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}
