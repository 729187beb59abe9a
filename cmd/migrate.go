package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/ga4mcp/internal/config"
	"github.com/teemow/ga4mcp/internal/credentials"
	"github.com/teemow/ga4mcp/internal/logging"
)

func newMigrateCmd() *cobra.Command {
	var (
		databaseURL string
		envFile     string
		debugMode   bool
	)

	cmd := &cobra.Command{
		Use:   "migrate [" + strings.Join(credentials.MigrationCommands, "|") + "]",
		Short: "Manage the credential store schema",
		Long: `Apply, roll back or inspect the user_ga_connections schema in Postgres.

The database URL is read from --database-url or the DATABASE_URL environment
variable (a .env file is loaded first when present).`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: credentials.MigrationCommands,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnvFile(envFile); err != nil {
				return err
			}
			if !cmd.Flags().Changed("database-url") {
				databaseURL = config.String(config.EnvDatabaseURL, "")
			}
			if databaseURL == "" {
				return fmt.Errorf("%s environment variable or --database-url is required", config.EnvDatabaseURL)
			}

			logger := logging.New(os.Stderr, logging.FormatText, debugMode)
			credentials.SetMigrationLogger(logging.NewGooseAdapter(logger))

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return credentials.Migrate(ctx, args[0], databaseURL)
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", "", "Postgres connection string. Can also use DATABASE_URL env var.")
	cmd.Flags().StringVar(&envFile, "env-file", config.DefaultEnvFile, "Environment file to load before reading configuration")
	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	return cmd
}
