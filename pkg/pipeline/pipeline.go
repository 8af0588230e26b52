// Package pipeline orchestrates one enrichment run: extract postings
// from the warehouse, sample them, enrich the sample with the language
// service, and upsert the results into the mart.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marketlens-ai/marketlens/pkg/adapters/warehouse"
	"github.com/marketlens-ai/marketlens/pkg/config"
	"github.com/marketlens-ai/marketlens/pkg/models"
	"github.com/marketlens-ai/marketlens/pkg/sampler"
)

// Enricher produces sentiment, key phrase, and entity results for a set
// of sampled postings.
type Enricher interface {
	EnrichSentiment(ctx context.Context, jobs []models.JobRecord) ([]models.EnrichedJob, error)
	ExtractKeyPhrases(ctx context.Context, jobs []models.JobRecord) ([]models.KeyPhraseRecord, error)
	RecognizeEntities(ctx context.Context, jobs []models.JobRecord) ([]models.EntityRecord, error)
}

// Loader writes enriched rows to the mart.
type Loader interface {
	UpsertAll(ctx context.Context, jobs []models.EnrichedJob, keyPhrases []models.KeyPhraseRecord, entities []models.EntityRecord) (upserted, failed int, err error)
}

// Pipeline wires the run stages together.
type Pipeline struct {
	extractor warehouse.Extractor
	enricher  Enricher
	loader    Loader
	cfg       *config.PipelineConfig
	logger    *zap.Logger
}

// New creates a pipeline from its stage implementations.
func New(extractor warehouse.Extractor, enricher Enricher, loader Loader, cfg *config.PipelineConfig, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		enricher:  enricher,
		loader:    loader,
		cfg:       cfg,
		logger:    logger.Named("pipeline"),
	}
}

// Run executes one full pipeline run and returns its stats. The stages
// run sequentially; a stage error aborts the run with whatever stats
// were gathered so far.
func (p *Pipeline) Run(ctx context.Context) (*models.RunStats, error) {
	stats := &models.RunStats{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	logger := p.logger.With(zap.String("run_id", stats.RunID))
	logger.Info("run started",
		zap.Int("sample_size", p.cfg.SampleSize),
		zap.Int64("sample_seed", p.cfg.SampleSeed),
		zap.String("on_chunk_failure", string(p.cfg.OnChunkFailure)))

	jobs, err := p.extractor.ExtractJobs(ctx)
	if err != nil {
		return stats, fmt.Errorf("extract: %w", err)
	}
	stats.Extracted = len(jobs)

	sample, err := sampler.Sample(jobs, p.cfg.SampleSize, p.cfg.SampleSeed)
	if err != nil {
		return stats, fmt.Errorf("sample: %w", err)
	}
	stats.Sampled = len(sample)
	logger.Info("sample drawn",
		zap.Int("extracted", stats.Extracted),
		zap.Int("sampled", stats.Sampled))

	enriched, err := p.enricher.EnrichSentiment(ctx, sample)
	if err != nil {
		return stats, fmt.Errorf("sentiment: %w", err)
	}
	for _, job := range enriched {
		if job.SentimentScore != nil {
			stats.SentimentOK++
		} else {
			stats.SentimentFailed++
		}
	}

	keyPhrases, err := p.enricher.ExtractKeyPhrases(ctx, sample)
	if err != nil {
		return stats, fmt.Errorf("key phrases: %w", err)
	}
	stats.KeyPhrases = len(keyPhrases)

	entities, err := p.enricher.RecognizeEntities(ctx, sample)
	if err != nil {
		return stats, fmt.Errorf("entities: %w", err)
	}
	stats.Entities = len(entities)
	logger.Info("enrichment complete",
		zap.Int("sentiment_ok", stats.SentimentOK),
		zap.Int("sentiment_failed", stats.SentimentFailed),
		zap.Int("key_phrases", stats.KeyPhrases),
		zap.Int("entities", stats.Entities))

	upserted, failed, err := p.loader.UpsertAll(ctx, enriched, keyPhrases, entities)
	stats.RowsUpserted = upserted
	stats.RowsFailed = failed
	if err != nil {
		return stats, fmt.Errorf("load: %w", err)
	}

	stats.FinishedAt = time.Now().UTC()
	logger.Info("run finished",
		zap.Int("rows_upserted", stats.RowsUpserted),
		zap.Int("rows_failed", stats.RowsFailed),
		zap.Duration("elapsed", stats.FinishedAt.Sub(stats.StartedAt)))
	return stats, nil
}
