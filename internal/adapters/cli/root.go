package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "userctl",
		Short: "userctl - manage users through the dispatch pipeline",
		Long: `userctl creates and inspects users. Every command is dispatched through
the same decorator pipeline the HTTP server uses, configured by config.yaml.

Examples:
  userctl user create --first-name Ana --last-name Doe --email ana@x.com
  userctl user get 6f1c1d1e-8a55-4a43-9a5e-6c2f7e0d4b11
  userctl user list --limit 20
  userctl config show`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "",
		"Path to config file (default: search ./, ./configs, /etc/mediator-go)")
	rootCmd.PersistentFlags().StringVarP(&app.output, "output", "o", "",
		"Output format: table or json (default from preferences, else table)")
	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false,
		"Log every dispatch to stderr")

	rootCmd.AddCommand(NewUserCommand(app))
	rootCmd.AddCommand(NewConfigCommand(app))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand(NewApp())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describeError(err))
		os.Exit(1)
	}
}
