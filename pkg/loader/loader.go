// Package loader writes enriched job records into the mart through the
// upsert stored procedure, one call per row.
package loader

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/marketlens-ai/marketlens/pkg/logging"
	"github.com/marketlens-ai/marketlens/pkg/models"
)

// UpsertProc is the stored procedure that inserts-or-updates one job row
// keyed by job identifier.
const UpsertProc = "dbo.usp_UpsertJobPosting"

// ProcCaller abstracts the mart stored-procedure executor for testing.
type ProcCaller interface {
	Call(ctx context.Context, procName string, params []any) error
}

// Writer upserts enriched jobs row by row.
type Writer struct {
	proc   ProcCaller
	logger *zap.Logger
}

// NewWriter creates an upsert writer.
func NewWriter(proc ProcCaller, logger *zap.Logger) *Writer {
	return &Writer{
		proc:   proc,
		logger: logger.Named("loader"),
	}
}

// UpsertJob writes one enriched job. The full run collections are passed
// in; the writer filters them down to this job's identifier before
// serializing the two JSON blobs.
func (w *Writer) UpsertJob(
	ctx context.Context,
	job models.EnrichedJob,
	keyPhrases []models.KeyPhraseRecord,
	entities []models.EntityRecord,
) error {
	var jobPhrases []models.KeyPhraseRecord
	for _, p := range keyPhrases {
		if p.JobID == job.JobID {
			jobPhrases = append(jobPhrases, p)
		}
	}
	var jobEntities []models.EntityRecord
	for _, e := range entities {
		if e.JobID == job.JobID {
			jobEntities = append(jobEntities, e)
		}
	}

	phrasesJSON, err := marshalKeyPhrases(jobPhrases)
	if err != nil {
		return err
	}
	entitiesJSON, err := marshalEntities(jobEntities)
	if err != nil {
		return err
	}

	params := buildParams(job, phrasesJSON, entitiesJSON)
	if err := w.proc.Call(ctx, UpsertProc, params); err != nil {
		return fmt.Errorf("upsert job %s: %w", job.JobID, err)
	}
	return nil
}

// UpsertAll writes every enriched job in order. A failed row is logged and
// counted but does not stop the remaining rows; the caller decides what a
// non-zero failure count means for the run.
func (w *Writer) UpsertAll(
	ctx context.Context,
	jobs []models.EnrichedJob,
	keyPhrases []models.KeyPhraseRecord,
	entities []models.EntityRecord,
) (upserted, failed int, err error) {
	for _, job := range jobs {
		if ctx.Err() != nil {
			return upserted, failed, ctx.Err()
		}
		if uerr := w.UpsertJob(ctx, job, keyPhrases, entities); uerr != nil {
			failed++
			w.logger.Warn("row upsert failed",
				zap.String("job_id", job.JobID),
				zap.String("error", logging.SanitizeError(uerr)))
			continue
		}
		upserted++
	}

	w.logger.Info("upsert pass complete",
		zap.Int("upserted", upserted),
		zap.Int("failed", failed))
	return upserted, failed, nil
}
