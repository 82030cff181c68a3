package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/attendance/internal/app"
	"github.com/Skotchmaster/attendance/internal/config"
	"github.com/Skotchmaster/attendance/internal/logging"
)

type opener func(ctx context.Context) (*app.App, error)

func main() {
	open := func(ctx context.Context) (*app.App, error) {
		cfg, err := config.LoadConfig()
		if err != nil {
			return nil, err
		}
		return app.Open(ctx, cfg, logging.New(cfg.LogLevel), nil)
	}

	if err := newRootCommand(open, os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(open opener, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "attendancectl",
		Short:         "Administrative tasks for the attendance service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)

	cmd.AddCommand(newSeedAdminCommand(open))
	cmd.AddCommand(newSetPasswordCommand(open))
	cmd.AddCommand(newAPIKeyCommand(open))
	return cmd
}

// withApp opens the application for one command and closes it afterwards.
func withApp(cmd *cobra.Command, open opener, fn func(ctx context.Context, a *app.App) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(ctx, a)
}

func newSeedAdminCommand(open opener) *cobra.Command {
	var email, username, password string

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the administrator account if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("ADMIN_PASSWORD")
			}
			return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
				u, created, err := a.Auth.EnsureAdmin(ctx, email, username, password)
				if err != nil {
					return err
				}
				if !created {
					fmt.Fprintf(cmd.OutOrStdout(), "user %s already exists (id %s)\n", u.Email, u.ID)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "admin %s created (id %s)\n", u.Email, u.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Admin email address")
	cmd.Flags().StringVar(&username, "username", "admin", "Display name")
	cmd.Flags().StringVar(&password, "password", "", "Admin password (defaults to $ADMIN_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newSetPasswordCommand(open opener) *cobra.Command {
	var login, password string

	cmd := &cobra.Command{
		Use:   "set-password",
		Short: "Replace a user's password and end their sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
				u, err := a.Lookup.ByEmailOrPhone(ctx, login)
				if err != nil {
					return err
				}
				if u == nil {
					return fmt.Errorf("no user matches %q", login)
				}
				if err := a.Auth.SetPassword(ctx, u.ID, password); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "password updated for %s\n", u.Email)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&login, "login", "", "Email or phone of the user")
	cmd.Flags().StringVar(&password, "password", "", "New password")
	_ = cmd.MarkFlagRequired("login")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newAPIKeyCommand(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "api-key",
		Short: "Manage integration API keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newAPIKeyCreateCommand(open))
	cmd.AddCommand(newAPIKeyListCommand(open))
	return cmd
}

func newAPIKeyCreateCommand(open opener) *cobra.Command {
	var name, owner string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a key and print it once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
				u, err := a.Lookup.ByEmail(ctx, owner)
				if err != nil {
					return err
				}
				if u == nil || !u.IsAdmin() {
					return fmt.Errorf("%q is not an admin account", owner)
				}
				rec, key, err := a.APIKeys.Create(ctx, name, u.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "id:  %s\nkey: %s\n", rec.ID, key)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Key name")
	cmd.Flags().StringVar(&owner, "owner", "", "Email of the admin who owns the key")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newAPIKeyListCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
				keys, err := a.APIKeys.List(ctx)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tPREFIX\tACTIVE\tLAST USED")
				for _, k := range keys {
					last := "-"
					if k.LastUsedAt != nil {
						last = k.LastUsedAt.Format(time.RFC3339)
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", k.ID, k.Name, k.KeyPrefix, k.IsActive, last)
				}
				return tw.Flush()
			})
		},
	}
}
