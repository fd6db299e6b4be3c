package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/clientdesk/clientdesk/internal/config"
	"github.com/clientdesk/clientdesk/internal/logging"
	"github.com/clientdesk/clientdesk/internal/schema"
	"github.com/clientdesk/clientdesk/internal/workbook"
)

// cfg is populated by the persistent pre-run and shared by all commands.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "clientctl",
	Short: "Manage client records: import workbooks and inspect the store",
	Long: `clientctl works directly against the client records database.

It shares configuration with the server (environment variables, optionally
a .env file), so an import run from the command line behaves exactly like
one triggered through the API.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Overload(); err == nil {
			slog.Info("loaded .env file")
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

		workbook.OpenAttempts = cfg.Import.OpenAttempts
		workbook.RetryDelay = cfg.Import.RetryDelay
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(versionCmd)
}

// openPool connects to the configured database and verifies the connection.
func openPool(ctx context.Context) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := schema.Ensure(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
