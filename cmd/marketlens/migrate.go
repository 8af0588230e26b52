package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marketlens-ai/marketlens/pkg/adapters/mart"
	"github.com/marketlens-ai/marketlens/pkg/config"
	"github.com/marketlens-ai/marketlens/pkg/database"
	"github.com/marketlens-ai/marketlens/pkg/logging"
)

var migratePath string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply mart schema migrations",
	Long: `Creates or updates the mart schema: dimension and fact tables, reporting
views, and the upsert stored procedure. Safe to run repeatedly; already
applied migrations are skipped.`,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migratePath, "migrations", "migrations", "Path to the migrations directory")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(Version)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := mart.Connect(ctx, &cfg.Mart, logger)
	if err != nil {
		return fmt.Errorf("connect mart: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db, migratePath, logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
