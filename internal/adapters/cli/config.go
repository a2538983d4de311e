package cli

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/mediator-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show configuration and manage preferences",
		Long: `Show the effective configuration and manage userctl preferences.

Configuration is loaded from multiple sources with priority:
1. Environment variables (MD_* prefix)
2. Config file (config.yaml)
3. Default values

Preferences are stored in ~/.mediator-go/userctl.json

Examples:
  userctl config show
  userctl config set-output json
  userctl config set-page-size 20`,
	}

	cmd.AddCommand(newConfigShowCommand(app))
	cmd.AddCommand(newConfigSetOutputCommand(app))
	cmd.AddCommand(newConfigSetPageSizeCommand(app))

	return cmd
}

func newConfigShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cfg, err := config.LoadConfig(app.configPath)
			if err != nil {
				fmt.Fprintf(out, "Warning: Failed to load config: %v\n", err)
				fmt.Fprintln(out, "Using default configuration.")
				cfg = config.LoadConfigOrDefault(app.configPath)
			}

			store, err := app.preferences()
			if err != nil {
				return err
			}
			prefs, err := store.Load()
			if err != nil {
				fmt.Fprintf(out, "Warning: Failed to load preferences: %v\n\n", err)
				prefs = &config.Preferences{}
			}

			fmt.Fprintln(out, "Preferences:")
			fmt.Fprintf(out, "  File:             %s\n", store.Path())
			fmt.Fprintf(out, "  Output:           %s\n", orNotSet(prefs.Output))
			fmt.Fprintf(out, "  Page Size:        %s\n", orNotSet(intOrEmpty(prefs.PageSize)))

			fmt.Fprintln(out, "\nDatabase:")
			fmt.Fprintf(out, "  Type:             %s\n", cfg.Database.Type)
			switch {
			case cfg.Database.URL != "":
				fmt.Fprintf(out, "  URL:              %s\n", maskPassword(cfg.Database.URL))
			case cfg.Database.Type == "sqlite":
				fmt.Fprintf(out, "  Path:             %s\n", cfg.Database.Path)
			default:
				fmt.Fprintf(out, "  Host:             %s\n", cfg.Database.Host)
				fmt.Fprintf(out, "  Port:             %d\n", cfg.Database.Port)
				fmt.Fprintf(out, "  Database:         %s\n", cfg.Database.Name)
				fmt.Fprintf(out, "  User:             %s\n", cfg.Database.User)
			}

			fmt.Fprintln(out, "\nDispatch:")
			fmt.Fprintf(out, "  Decorators:       %s\n", strings.Join(cfg.Dispatch.Decorators, " > "))
			for name, chain := range cfg.Dispatch.Overrides {
				fmt.Fprintf(out, "  Override %-8s %s\n", name+":", strings.Join(chain, " > "))
			}
			fmt.Fprintf(out, "  Rate Limit:       %g req/s (burst: %d)\n", cfg.Dispatch.RateLimit.PerSecond, cfg.Dispatch.RateLimit.Burst)
			fmt.Fprintf(out, "  Circuit Breaker:  %d failures, %s open\n", cfg.Dispatch.CircuitBreaker.MaxFailures, cfg.Dispatch.CircuitBreaker.Timeout)

			fmt.Fprintln(out, "\nServer:")
			fmt.Fprintf(out, "  Address:          %s\n", cfg.Server.Address)
			fmt.Fprintf(out, "  Request Timeout:  %s\n", cfg.Server.RequestTimeout)

			fmt.Fprintln(out, "\nLogging:")
			fmt.Fprintf(out, "  Level:            %s\n", cfg.Logging.Level)
			fmt.Fprintf(out, "  Format:           %s\n", cfg.Logging.Format)
			fmt.Fprintf(out, "  Output:           %s\n", cfg.Logging.Output)

			return nil
		},
	}
}

func newConfigSetOutputCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "set-output <table|json>",
		Short:     "Set the default output format",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"table", "json"},
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.preferences()
			if err != nil {
				return err
			}
			if err := store.Update(func(p *config.Preferences) { p.Output = args[0] }); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Default output set to %s\n", args[0])
			return nil
		},
	}
}

func newConfigSetPageSizeCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set-page-size <n>",
		Short: "Set the default page size of user list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := strconv.Atoi(args[0])
			if err != nil || size < 1 {
				return fmt.Errorf("page size must be a positive integer, got %q", args[0])
			}

			store, err := app.preferences()
			if err != nil {
				return err
			}
			if err := store.Update(func(p *config.Preferences) { p.PageSize = size }); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Default page size set to %d\n", size)
			return nil
		},
	}
}

// maskPassword hides the password of a connection URL
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Redacted()
}

func orNotSet(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}

func intOrEmpty(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
