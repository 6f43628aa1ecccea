package main

import (
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kolejker/OsaltServer/internal/app"
)

func newUsersCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage registered users",
	}

	cmd.AddCommand(
		newUsersAddCmd(opts),
		newUsersListCmd(opts),
	)

	return cmd
}

func newUsersAddCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <username> <password>",
		Short: "Register a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := openApp(opts)
			if err != nil {
				return err
			}
			defer application.Close()

			user, err := application.Auth().Register(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("register %s: %w", args[0], err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "registered %s (id %d)\n", user.Username, user.ID)
			return nil
		},
	}
}

func newUsersListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered users",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := openApp(opts)
			if err != nil {
				return err
			}
			defer application.Close()

			users, err := application.Auth().Users(cmd.Context())
			if err != nil {
				return err
			}

			tw := tablewriter.NewWriter(cmd.OutOrStdout())
			tw.SetHeader([]string{"ID", "Username", "Created"})
			tw.SetBorder(true)
			tw.SetAutoWrapText(false)
			for _, u := range users {
				tw.Append([]string{
					fmt.Sprintf("%d", u.ID),
					u.Username,
					u.CreatedAt.Format(time.DateTime),
				})
			}
			tw.Render()
			return nil
		},
	}
}

func openApp(opts *rootOptions) (*app.App, error) {
	cfg, logger, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	return app.New(&cfg, logger)
}
