package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/mediator-go/internal/application/mediator"
	"github.com/andrescamacho/mediator-go/internal/application/user/commands"
	"github.com/andrescamacho/mediator-go/internal/application/user/queries"
)

// NewUserCommand creates the user command with subcommands
func NewUserCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Create and inspect users",
		Long: `Create and inspect users in the configured database.

Examples:
  userctl user create --first-name Ana --last-name Doe --email ana@x.com
  userctl user get <id>
  userctl user list --limit 20 --offset 40`,
	}

	cmd.AddCommand(newUserCreateCommand(app))
	cmd.AddCommand(newUserGetCommand(app))
	cmd.AddCommand(newUserListCommand(app))

	return cmd
}

func newUserCreateCommand(app *App) *cobra.Command {
	var firstName, lastName, email string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd.Context(), func(s *Session) error {
				id, err := mediator.Dispatch(cmd.Context(), s.Sender, commands.NewCreateUserCommand(firstName, lastName, email))
				if err != nil {
					return fmt.Errorf("failed to create user: %w", err)
				}

				if app.outputFormat() == "json" {
					return printJSON(cmd.OutOrStdout(), map[string]string{"id": id.String()})
				}
				fmt.Fprintln(cmd.OutOrStdout(), "✓ User created successfully")
				fmt.Fprintf(cmd.OutOrStdout(), "  ID:    %s\n", id)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&firstName, "first-name", "", "First name (required)")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name (required)")
	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")

	return cmd
}

func newUserGetCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd.Context(), func(s *Session) error {
				dto, err := mediator.Dispatch(cmd.Context(), s.Sender, queries.NewGetUserQuery(args[0]))
				if err != nil {
					return fmt.Errorf("failed to get user: %w", err)
				}

				if app.outputFormat() == "json" {
					return printJSON(cmd.OutOrStdout(), dto)
				}
				return printUsers(cmd.OutOrStdout(), []*queries.UserDTO{dto})
			})
		},
	}
}

func newUserListCommand(app *App) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd.Context(), func(s *Session) error {
				users, err := mediator.Dispatch(cmd.Context(), s.Sender, queries.NewListUsersQuery(app.pageSize(limit), offset))
				if err != nil {
					return fmt.Errorf("failed to list users: %w", err)
				}

				if app.outputFormat() == "json" {
					return printJSON(cmd.OutOrStdout(), users)
				}
				if len(users) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No users found")
					return nil
				}
				return printUsers(cmd.OutOrStdout(), users)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Page size (default from preferences, else 50)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of users to skip")

	return cmd
}
