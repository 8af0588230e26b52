// Package enrich runs batched text analysis over sampled job records,
// with explicit partial-failure semantics.
package enrich

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/marketlens-ai/marketlens/pkg/apperrors"
	"github.com/marketlens-ai/marketlens/pkg/config"
	"github.com/marketlens-ai/marketlens/pkg/language"
)

// RunChunked partitions docs into contiguous, order-preserving chunks of at
// most chunkSize and invokes call once per chunk. It returns exactly one
// result per input document, in input order.
//
// Failure semantics:
//   - A whole-chunk failure under PolicyContinue records fallback(doc) for
//     every document in that chunk and moves to the next chunk. There is no
//     retry; a failed chunk never shifts the alignment of later chunks.
//   - A whole-chunk failure under PolicyAbort stops the run and returns an
//     error wrapping apperrors.ErrRunAborted.
//   - Per-document failures inside a successful chunk are the call's
//     responsibility to mark on the individual result; RunChunked passes
//     them through untouched.
func RunChunked[R any](
	ctx context.Context,
	docs []language.Document,
	chunkSize int,
	policy config.FailurePolicy,
	logger *zap.Logger,
	call func(ctx context.Context, chunk []language.Document) ([]R, error),
	fallback func(doc language.Document) R,
) ([]R, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}

	results := make([]R, 0, len(docs))

	for start := 0; start < len(docs); start += chunkSize {
		end := start + chunkSize
		if end > len(docs) {
			end = len(docs)
		}
		chunk := docs[start:end]

		chunkResults, err := call(ctx, chunk)
		if err != nil {
			if policy == config.PolicyAbort {
				return nil, fmt.Errorf("chunk [%d:%d] failed: %v: %w", start, end, err, apperrors.ErrRunAborted)
			}
			logger.Warn("chunk failed, recording fallback values",
				zap.Int("chunk_start", start),
				zap.Int("chunk_size", len(chunk)),
				zap.Error(err))
			for _, doc := range chunk {
				results = append(results, fallback(doc))
			}
			continue
		}

		if len(chunkResults) != len(chunk) {
			// A well-behaved call aligns results to its chunk. Treat a
			// mismatch like a whole-chunk failure so alignment holds.
			if policy == config.PolicyAbort {
				return nil, fmt.Errorf("chunk [%d:%d] returned %d results for %d documents: %w",
					start, end, len(chunkResults), len(chunk), apperrors.ErrRunAborted)
			}
			logger.Warn("chunk result count mismatch, recording fallback values",
				zap.Int("chunk_start", start),
				zap.Int("expected", len(chunk)),
				zap.Int("got", len(chunkResults)))
			for _, doc := range chunk {
				results = append(results, fallback(doc))
			}
			continue
		}

		results = append(results, chunkResults...)
	}

	return results, nil
}
