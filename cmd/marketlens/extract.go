package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marketlens-ai/marketlens/pkg/adapters/warehouse"
	"github.com/marketlens-ai/marketlens/pkg/config"
	"github.com/marketlens-ai/marketlens/pkg/logging"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract job postings from the warehouse and print them as JSON",
	Long: `Runs only the extraction stage and writes the rows to stdout as a JSON
array. Useful for verifying warehouse connectivity and the source table
mapping before a full pipeline run.`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(Version)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateExtract(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := warehouse.Connect(ctx, &cfg.Warehouse, logger)
	if err != nil {
		return fmt.Errorf("connect warehouse: %w", err)
	}
	defer db.Close()

	jobs, err := warehouse.NewSQLExtractor(db, &cfg.Warehouse, logger).ExtractJobs(ctx)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	logger.Info("extraction complete",
		zap.String("source", cfg.Warehouse.SourceTable()),
		zap.Int("rows", len(jobs)))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(jobs)
}
