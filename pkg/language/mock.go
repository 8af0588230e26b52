package language

import "context"

// MockAnalyzer is a configurable mock for testing enrichment logic.
// Set the function fields to control behavior in tests.
type MockAnalyzer struct {
	// AnalyzeSentimentFunc is called when AnalyzeSentiment is invoked.
	// If nil, returns neutral results for every document.
	AnalyzeSentimentFunc func(ctx context.Context, docs []Document) ([]SentimentResult, error)

	// ExtractKeyPhrasesFunc is called when ExtractKeyPhrases is invoked.
	// If nil, returns empty phrase lists.
	ExtractKeyPhrasesFunc func(ctx context.Context, docs []Document) ([]KeyPhraseResult, error)

	// RecognizeEntitiesFunc is called when RecognizeEntities is invoked.
	// If nil, returns empty entity lists.
	RecognizeEntitiesFunc func(ctx context.Context, docs []Document) ([]EntityResult, error)

	// Call tracking for verification
	AnalyzeSentimentCalls  int
	ExtractKeyPhrasesCalls int
	RecognizeEntitiesCalls int
}

// AnalyzeSentiment implements Analyzer.
func (m *MockAnalyzer) AnalyzeSentiment(ctx context.Context, docs []Document) ([]SentimentResult, error) {
	m.AnalyzeSentimentCalls++
	if m.AnalyzeSentimentFunc != nil {
		return m.AnalyzeSentimentFunc(ctx, docs)
	}
	results := make([]SentimentResult, len(docs))
	for i, d := range docs {
		results[i] = SentimentResult{ID: d.ID, Sentiment: "neutral", Score: 0.5}
	}
	return results, nil
}

// ExtractKeyPhrases implements Analyzer.
func (m *MockAnalyzer) ExtractKeyPhrases(ctx context.Context, docs []Document) ([]KeyPhraseResult, error) {
	m.ExtractKeyPhrasesCalls++
	if m.ExtractKeyPhrasesFunc != nil {
		return m.ExtractKeyPhrasesFunc(ctx, docs)
	}
	results := make([]KeyPhraseResult, len(docs))
	for i, d := range docs {
		results[i] = KeyPhraseResult{ID: d.ID}
	}
	return results, nil
}

// RecognizeEntities implements Analyzer.
func (m *MockAnalyzer) RecognizeEntities(ctx context.Context, docs []Document) ([]EntityResult, error) {
	m.RecognizeEntitiesCalls++
	if m.RecognizeEntitiesFunc != nil {
		return m.RecognizeEntitiesFunc(ctx, docs)
	}
	results := make([]EntityResult, len(docs))
	for i, d := range docs {
		results[i] = EntityResult{ID: d.ID}
	}
	return results, nil
}

// Ensure MockAnalyzer implements Analyzer at compile time.
var _ Analyzer = (*MockAnalyzer)(nil)
