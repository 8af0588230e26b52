package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marketlens-ai/marketlens/pkg/adapters/mart"
	"github.com/marketlens-ai/marketlens/pkg/adapters/warehouse"
	"github.com/marketlens-ai/marketlens/pkg/config"
	"github.com/marketlens-ai/marketlens/pkg/enrich"
	"github.com/marketlens-ai/marketlens/pkg/language"
	"github.com/marketlens-ai/marketlens/pkg/loader"
	"github.com/marketlens-ai/marketlens/pkg/logging"
	"github.com/marketlens-ai/marketlens/pkg/pipeline"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run the extract, sample, enrich, and load pipeline once",
	Long: `Extracts job postings from the warehouse, samples a deterministic subset,
enriches it through the hosted language service, and upserts the results
into the mart via the stored procedure. The run stops after the load pass.`,
	RunE: runPipeline,
}

var (
	pipelineSampleSize     int
	pipelineSampleSeed     int64
	pipelineOnChunkFailure string
)

func init() {
	pipelineCmd.Flags().IntVar(&pipelineSampleSize, "sample-size", 0, "Override the configured sample size")
	pipelineCmd.Flags().Int64Var(&pipelineSampleSeed, "sample-seed", 0, "Override the configured sample seed")
	pipelineCmd.Flags().StringVar(&pipelineOnChunkFailure, "on-chunk-failure", "", "Override the chunk failure policy (continue|abort)")
	rootCmd.AddCommand(pipelineCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(Version)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("sample-size") {
		cfg.Pipeline.SampleSize = pipelineSampleSize
	}
	if cmd.Flags().Changed("sample-seed") {
		cfg.Pipeline.SampleSeed = pipelineSampleSeed
	}
	if cmd.Flags().Changed("on-chunk-failure") {
		cfg.Pipeline.OnChunkFailure = config.FailurePolicy(pipelineOnChunkFailure)
	}
	if err := cfg.ValidatePipeline(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	warehouseDB, err := warehouse.Connect(ctx, &cfg.Warehouse, logger)
	if err != nil {
		return fmt.Errorf("connect warehouse: %w", err)
	}
	defer warehouseDB.Close()

	martDB, err := mart.Connect(ctx, &cfg.Mart, logger)
	if err != nil {
		return fmt.Errorf("connect mart: %w", err)
	}
	defer martDB.Close()

	analyzer, err := language.NewClient(&language.Config{
		Endpoint:          cfg.Language.Endpoint,
		APIKey:            cfg.Language.APIKey,
		RequestsPerSecond: cfg.Language.RequestsPerSecond,
		Timeout:           time.Duration(cfg.Language.TimeoutSeconds) * time.Second,
	}, logger)
	if err != nil {
		return fmt.Errorf("create language client: %w", err)
	}

	extractor := warehouse.NewSQLExtractor(warehouseDB, &cfg.Warehouse, logger)
	enricher := enrich.NewService(analyzer, &cfg.Pipeline, logger)
	writer := loader.NewWriter(mart.NewProcExecutor(martDB, logger), logger)

	p := pipeline.New(extractor, enricher, writer, &cfg.Pipeline, logger)

	stats, runErr := p.Run(ctx)
	if stats != nil {
		logger.Info("run summary",
			zap.String("run_id", stats.RunID),
			zap.Int("extracted", stats.Extracted),
			zap.Int("sampled", stats.Sampled),
			zap.Int("sentiment_ok", stats.SentimentOK),
			zap.Int("sentiment_failed", stats.SentimentFailed),
			zap.Int("key_phrases", stats.KeyPhrases),
			zap.Int("entities", stats.Entities),
			zap.Int("rows_upserted", stats.RowsUpserted),
			zap.Int("rows_failed", stats.RowsFailed))
	}
	if runErr != nil {
		return fmt.Errorf("pipeline run: %w", runErr)
	}
	return nil
}
