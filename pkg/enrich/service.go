package enrich

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/marketlens-ai/marketlens/pkg/config"
	"github.com/marketlens-ai/marketlens/pkg/language"
	"github.com/marketlens-ai/marketlens/pkg/models"
)

// SourceFieldDescription marks records derived from the description column.
const SourceFieldDescription = "description"

// Service runs the three analyses over a sampled batch. All three share
// the chunked remote-call contract; they differ only in chunk size and in
// how per-document results flatten into domain records.
type Service struct {
	analyzer language.Analyzer
	cfg      *config.PipelineConfig
	logger   *zap.Logger
}

// NewService creates an enrichment service.
func NewService(analyzer language.Analyzer, cfg *config.PipelineConfig, logger *zap.Logger) *Service {
	return &Service{
		analyzer: analyzer,
		cfg:      cfg,
		logger:   logger.Named("enrich"),
	}
}

// EnrichSentiment returns exactly one EnrichedJob per input job, in input
// order. Jobs whose chunk failed, whose document was individually
// rejected, or whose description is blank get nil sentiment fields; the
// row itself is never dropped.
func (s *Service) EnrichSentiment(ctx context.Context, jobs []models.JobRecord) ([]models.EnrichedJob, error) {
	docs, positions := buildDocuments(jobs)

	results, err := RunChunked(ctx, docs, s.cfg.SentimentChunkSize, s.cfg.OnChunkFailure, s.logger,
		s.analyzer.AnalyzeSentiment,
		func(doc language.Document) language.SentimentResult {
			return language.SentimentResult{ID: doc.ID, Failed: true}
		})
	if err != nil {
		return nil, err
	}

	enriched := make([]models.EnrichedJob, len(jobs))
	for i, job := range jobs {
		enriched[i] = models.EnrichedJob{JobRecord: job}
	}
	for i, r := range results {
		if r.Failed {
			continue
		}
		label := mapSentimentLabel(r.Sentiment)
		if label == nil {
			continue
		}
		score := r.Score
		enriched[positions[i]].SentimentScore = &score
		enriched[positions[i]].SentimentLabel = label
	}

	return enriched, nil
}

// ExtractKeyPhrases returns zero or more phrase records per job. Jobs in a
// failed chunk, individually rejected documents, and blank descriptions
// contribute no records. Every returned record's JobID comes from the
// input batch.
func (s *Service) ExtractKeyPhrases(ctx context.Context, jobs []models.JobRecord) ([]models.KeyPhraseRecord, error) {
	docs, positions := buildDocuments(jobs)

	results, err := RunChunked(ctx, docs, s.cfg.KeyPhraseChunkSize, s.cfg.OnChunkFailure, s.logger,
		s.analyzer.ExtractKeyPhrases,
		func(doc language.Document) language.KeyPhraseResult {
			return language.KeyPhraseResult{ID: doc.ID, Failed: true}
		})
	if err != nil {
		return nil, err
	}

	var records []models.KeyPhraseRecord
	for i, r := range results {
		if r.Failed {
			continue
		}
		jobID := jobs[positions[i]].JobID
		for _, phrase := range r.KeyPhrases {
			records = append(records, models.KeyPhraseRecord{
				JobID:       jobID,
				Phrase:      phrase,
				SourceField: SourceFieldDescription,
			})
		}
	}

	return records, nil
}

// RecognizeEntities returns zero or more entity records per job, with the
// same omission semantics as ExtractKeyPhrases. A missing confidence score
// stays nil on the record.
func (s *Service) RecognizeEntities(ctx context.Context, jobs []models.JobRecord) ([]models.EntityRecord, error) {
	docs, positions := buildDocuments(jobs)

	results, err := RunChunked(ctx, docs, s.cfg.EntityChunkSize, s.cfg.OnChunkFailure, s.logger,
		s.analyzer.RecognizeEntities,
		func(doc language.Document) language.EntityResult {
			return language.EntityResult{ID: doc.ID, Failed: true}
		})
	if err != nil {
		return nil, err
	}

	var records []models.EntityRecord
	for i, r := range results {
		if r.Failed {
			continue
		}
		jobID := jobs[positions[i]].JobID
		for _, e := range r.Entities {
			records = append(records, models.EntityRecord{
				JobID:      jobID,
				Name:       e.Text,
				Category:   e.Category,
				Confidence: e.ConfidenceScore,
			})
		}
	}

	return records, nil
}

// buildDocuments creates one document per job with a non-blank description
// and records which input position each document maps back to. Blank
// descriptions never reach the remote service; the language API rejects
// empty documents anyway, and skipping them locally saves quota.
//
// Document IDs are request-scoped ordinals, not job IDs: the service
// requires IDs unique within a request, and job IDs from upstream are only
// guaranteed unique within the source table.
func buildDocuments(jobs []models.JobRecord) ([]language.Document, []int) {
	docs := make([]language.Document, 0, len(jobs))
	positions := make([]int, 0, len(jobs))
	for i, job := range jobs {
		if strings.TrimSpace(job.Description) == "" {
			continue
		}
		docs = append(docs, language.Document{
			ID:   strconv.Itoa(len(docs) + 1),
			Text: job.Description,
		})
		positions = append(positions, i)
	}
	return docs, positions
}

// mapSentimentLabel converts a service sentiment string to the domain
// label, nil for anything unrecognized.
func mapSentimentLabel(s string) *models.SentimentLabel {
	var label models.SentimentLabel
	switch s {
	case "positive":
		label = models.SentimentPositive
	case "neutral":
		label = models.SentimentNeutral
	case "negative":
		label = models.SentimentNegative
	case "mixed":
		label = models.SentimentMixed
	default:
		return nil
	}
	return &label
}
