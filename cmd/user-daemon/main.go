package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/andrescamacho/mediator-go/internal/adapters/metrics"
	"github.com/andrescamacho/mediator-go/internal/adapters/persistence"
	"github.com/andrescamacho/mediator-go/internal/adapters/rest"
	"github.com/andrescamacho/mediator-go/internal/application/logging"
	"github.com/andrescamacho/mediator-go/internal/application/setup"
	"github.com/andrescamacho/mediator-go/internal/infrastructure/config"
	"github.com/andrescamacho/mediator-go/internal/infrastructure/database"
	"github.com/andrescamacho/mediator-go/internal/infrastructure/pidfile"
)

func main() {
	os.Exit(daemonMain())
}

// daemonMain runs the daemon and returns its exit code. Deferred cleanup
// (PID file, log file) runs before main exits.
func daemonMain() int {
	// Parse command-line flags
	configPath := flag.String("config", "", "Path to config file (default: search ./, ./configs, /etc/mediator-go)")
	forceFlag := flag.Bool("force", false, "Take over the PID file even if another daemon holds it")
	flag.Parse()

	fmt.Println("User Daemon v0.1.0")
	fmt.Println("==================")

	// Load configuration
	loader := config.NewLoader(*configPath)
	cfg, err := loader.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}

	logger, closeLog, err := newLogger(cfg.Logging)
	if err != nil {
		log.Printf("Failed to configure logging: %v", err)
		return 1
	}
	defer closeLog()

	// Acquire PID file lock to prevent multiple instances
	pf := pidfile.New(cfg.Daemon.PIDFile)
	if err := pf.Acquire(*forceFlag); err != nil {
		var running *pidfile.AlreadyRunningError
		if errors.As(err, &running) {
			log.Printf("%v\nUse --force to take over the PID file", err)
			return 1
		}
		log.Printf("Failed to acquire PID file lock: %v", err)
		return 1
	}
	defer func() {
		if err := pf.Release(); err != nil {
			logger.Warn().Err(err).Msg("failed to release PID file")
		}
	}()
	logger.Info().Str("pid_file", pf.Path()).Msg("PID file lock acquired")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, loader, cfg, logger); err != nil {
		logger.Error().Err(err).Msg("daemon stopped with error")
		return 1
	}
	return 0
}

func run(ctx context.Context, loader *config.Loader, cfg *config.Config, logger zerolog.Logger) error {
	// 1. Setup database connection
	logger.Info().Str("type", cfg.Database.Type).Msg("connecting to database")
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// 2. Handlers and their repositories
	registry := setup.NewHandlerRegistry(persistence.NewGormUserRepository(db), nil)

	// 3. Metrics
	var gatherer prometheus.Gatherer
	deps := setup.PipelineDeps{Logger: logging.NewZerologLogger(logger)}
	if cfg.Metrics.Enabled {
		reg := metrics.NewRegistry()
		collector := metrics.NewDispatchMetricsCollector()
		if err := collector.Register(reg); err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
		deps.Metrics = metrics.Decorator(collector)
		gatherer = reg
	}

	// 4. Dispatch pipeline
	pipeline, err := setup.NewLivePipeline(cfg.Dispatch, registry, deps)
	if err != nil {
		return err
	}
	logger.Info().Strs("routes", pipeline.Routes()).Strs("decorators", cfg.Dispatch.Decorators).Msg("mediator ready")

	if cfg.Daemon.WatchConfig {
		watchDispatchConfig(loader, pipeline, logger)
	}

	// 5. HTTP server
	server := rest.NewServer(cfg.Server, pipeline.Sender(), rest.Options{
		Logger:      logger,
		Gatherer:    gatherer,
		MetricsPath: cfg.Metrics.Path,
		Health:      func(ctx context.Context) error { return database.Ping(ctx, db) },
		Breakers:    pipeline,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Dur("timeout", cfg.Daemon.ShutdownTimeout).Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Daemon.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info().Msg("daemon stopped")
	return nil
}

// watchDispatchConfig rebuilds the pipeline when the config file changes. A
// configuration that fails to load or bind is logged and the running
// pipeline is kept.
func watchDispatchConfig(loader *config.Loader, pipeline *setup.LivePipeline, logger zerolog.Logger) {
	watching := loader.Watch(func(next *config.Config, err error) {
		if err != nil {
			logger.Error().Err(err).Msg("config reload rejected")
			return
		}
		if err := pipeline.Reload(next.Dispatch); err != nil {
			logger.Error().Err(err).Msg("dispatch pipeline reload rejected")
			return
		}
		logger.Info().Strs("decorators", next.Dispatch.Decorators).Msg("dispatch pipeline reloaded")
	})
	if watching {
		logger.Info().Str("file", loader.ConfigFileUsed()).Msg("watching config file")
	} else {
		logger.Warn().Msg("watch_config is set but no config file was loaded")
	}
}

// newLogger opens the configured log destination
func newLogger(cfg config.LoggingConfig) (zerolog.Logger, func(), error) {
	var out io.Writer
	closeFn := func() {}

	switch cfg.Output {
	case "stderr":
		out = os.Stderr
	case "file":
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return zerolog.Nop(), closeFn, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		closeFn = func() { _ = f.Close() }
	default:
		out = os.Stdout
	}

	logger, err := logging.NewZerolog(logging.Options{
		Level:         cfg.Level,
		Format:        cfg.Format,
		Output:        out,
		IncludeCaller: cfg.IncludeCaller,
	})
	if err != nil {
		closeFn()
		return zerolog.Nop(), func() {}, err
	}
	return logger, closeFn, nil
}
