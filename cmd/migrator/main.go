package main

import (
	"fmt"
	"os"

	"github.com/quickkart/marketplace/internal/config"
	"github.com/quickkart/marketplace/internal/db"
	"github.com/spf13/cobra"
)

// migrationRunner is swapped out in tests.
type migrationRunner struct {
	up      func(dbURL string) error
	down    func(dbURL string, steps int) error
	version func(dbURL string) (uint, bool, error)
}

var defaultRunner = migrationRunner{
	up:      db.Migrate,
	down:    db.MigrateDown,
	version: db.MigrationVersion,
}

type rootOptions struct {
	DatabaseURL string
}

func newRootCommand(run migrationRunner) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "migrator",
		Short:         "Apply or roll back the marketplace schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.DatabaseURL == "" {
				opts.DatabaseURL = config.Load().DBURL
			}
			if opts.DatabaseURL == "" {
				return fmt.Errorf("no database url: set --database-url or DATABASE_URL")
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DatabaseURL, "database-url", "", "postgres connection url (defaults to the app config)")
	// accepted so the shared config loader can see it
	cmd.PersistentFlags().String("config", "", "config file")

	cmd.AddCommand(newUpCommand(opts, run))
	cmd.AddCommand(newDownCommand(opts, run))
	cmd.AddCommand(newVersionCommand(opts, run))

	return cmd
}

func newUpCommand(opts *rootOptions, run migrationRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := run.up(opts.DatabaseURL); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newDownCommand(opts *rootOptions, run migrationRunner) *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Long:  "Roll back the given number of migrations, or every migration when --steps is 0.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 0 {
				return fmt.Errorf("--steps must be >= 0, got %d", steps)
			}
			if err := run.down(opts.DatabaseURL, steps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back (steps=%d)\n", steps)
			return nil
		},
	}

	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back; 0 rolls back all")

	return cmd
}

func newVersionCommand(opts *rootOptions, run migrationRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, dirty, err := run.version(opts.DatabaseURL)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", v, dirty)
			return nil
		},
	}
}

func main() {
	if err := newRootCommand(defaultRunner).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "migrator:", err)
		os.Exit(1)
	}
}
