package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/andrescamacho/mediator-go/internal/adapters/persistence"
	"github.com/andrescamacho/mediator-go/internal/application/logging"
	"github.com/andrescamacho/mediator-go/internal/application/mediator"
	"github.com/andrescamacho/mediator-go/internal/application/setup"
	"github.com/andrescamacho/mediator-go/internal/infrastructure/config"
	"github.com/andrescamacho/mediator-go/internal/infrastructure/database"
)

// Session is an opened pipeline a command dispatches through
type Session struct {
	Config *config.Config
	Sender mediator.Sender
	Close  func() error
}

// Opener builds a Session for the given config file
type Opener func(ctx context.Context, configPath string, verbose bool) (*Session, error)

// App holds what commands share: flag values, the session opener and the
// preferences location.
type App struct {
	Open           Opener
	PreferencesDir string

	configPath string
	output     string
	verbose    bool
}

// NewApp creates an App that opens the configured database
func NewApp() *App {
	return &App{Open: OpenDatabaseSession}
}

// OpenDatabaseSession loads config, connects and migrates the database and
// builds the mediator from the dispatch section.
func OpenDatabaseSession(ctx context.Context, configPath string, verbose bool) (*Session, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	var out io.Writer = io.Discard
	if verbose {
		out = os.Stderr
	}
	zl, err := logging.NewZerolog(logging.Options{Level: cfg.Logging.Level, Format: "text", Output: out})
	if err != nil {
		_ = database.Close(db)
		return nil, err
	}

	registry := setup.NewHandlerRegistry(persistence.NewGormUserRepository(db), nil)
	med, err := setup.BuildMediator(cfg.Dispatch, registry, setup.PipelineDeps{
		Logger: logging.NewZerologLogger(zl),
	})
	if err != nil {
		_ = database.Close(db)
		return nil, err
	}

	return &Session{
		Config: cfg,
		Sender: med,
		Close:  func() error { return database.Close(db) },
	}, nil
}

// withSession opens a session, runs fn and closes the session again
func (a *App) withSession(ctx context.Context, fn func(*Session) error) error {
	session, err := a.Open(ctx, a.configPath, a.verbose)
	if err != nil {
		return err
	}
	defer func() {
		if session.Close != nil {
			_ = session.Close()
		}
	}()

	return fn(session)
}

func (a *App) preferences() (*config.PreferencesStore, error) {
	return config.NewPreferencesStore(a.PreferencesDir)
}

// outputFormat resolves --output, then the saved preference, then "table"
func (a *App) outputFormat() string {
	if a.output != "" {
		return a.output
	}
	if store, err := a.preferences(); err == nil {
		if prefs, err := store.Load(); err == nil && prefs.Output != "" {
			return prefs.Output
		}
	}
	return "table"
}

// pageSize resolves --limit, then the saved preference, then 0 (query default)
func (a *App) pageSize(limit int) int {
	if limit > 0 {
		return limit
	}
	if store, err := a.preferences(); err == nil {
		if prefs, err := store.Load(); err == nil {
			return prefs.PageSize
		}
	}
	return 0
}
