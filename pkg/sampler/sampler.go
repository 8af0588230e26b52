// Package sampler selects a fixed-size uniform subset of extracted rows.
package sampler

import (
	"fmt"
	"math/rand"

	"github.com/marketlens-ai/marketlens/pkg/apperrors"
	"github.com/marketlens-ai/marketlens/pkg/models"
)

// Sample returns exactly k rows drawn uniformly from rows, deterministic
// for a fixed seed. Returns an error when k exceeds the number of
// available rows rather than silently clamping.
func Sample(rows []models.JobRecord, k int, seed int64) ([]models.JobRecord, error) {
	if k < 0 {
		return nil, fmt.Errorf("sample size must be non-negative, got %d", k)
	}
	if k > len(rows) {
		return nil, fmt.Errorf("cannot sample %d rows from %d available: %w",
			k, len(rows), apperrors.ErrSampleTooLarge)
	}

	// Partial Fisher-Yates over an index permutation: only the first k
	// positions need to be settled, and the input slice is never mutated.
	rng := rand.New(rand.NewSource(seed))
	indices := make([]int, len(rows))
	for i := range indices {
		indices[i] = i
	}

	sampled := make([]models.JobRecord, k)
	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(indices)-i)
		indices[i], indices[j] = indices[j], indices[i]
		sampled[i] = rows[indices[i]]
	}

	return sampled, nil
}
