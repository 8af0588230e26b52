// Package language provides a client for a hosted text-analytics service
// exposing sentiment, key-phrase, and entity endpoints over REST.
package language

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	sentimentPath  = "/text/analytics/v3.1/sentiment"
	keyPhrasesPath = "/text/analytics/v3.1/keyPhrases"
	entitiesPath   = "/text/analytics/v3.1/entities/recognition/general"

	// apiKeyHeader carries the subscription key on every request.
	apiKeyHeader = "Ocp-Apim-Subscription-Key"

	defaultLanguage = "en"
)

// Analyzer defines the text-analytics operations the enrichment layer
// depends on. Use this interface for dependency injection in tests.
type Analyzer interface {
	// AnalyzeSentiment returns one result per input document, aligned to
	// input order. Per-document service errors are reported via the
	// result's Failed flag, not as a call-level error.
	AnalyzeSentiment(ctx context.Context, docs []Document) ([]SentimentResult, error)

	// ExtractKeyPhrases returns one result per input document, aligned to
	// input order.
	ExtractKeyPhrases(ctx context.Context, docs []Document) ([]KeyPhraseResult, error)

	// RecognizeEntities returns one result per input document, aligned to
	// input order.
	RecognizeEntities(ctx context.Context, docs []Document) ([]EntityResult, error)
}

// Config holds configuration for creating a language client.
type Config struct {
	Endpoint          string  // Base URL of the language resource
	APIKey            string  // Subscription key
	RequestsPerSecond float64 // Outbound pacing; <=0 disables the limiter
	Timeout           time.Duration
}

// Client calls the hosted text-analytics REST API.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient creates a language client. The endpoint and API key are
// required; pacing defaults to unlimited when RequestsPerSecond is zero.
func NewClient(cfg *Config, logger *zap.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   strings.TrimSuffix(cfg.Endpoint, "/"),
		apiKey:     cfg.APIKey,
		limiter:    limiter,
		logger:     logger.Named("language"),
	}, nil
}

// AnalyzeSentiment implements Analyzer.
func (c *Client) AnalyzeSentiment(ctx context.Context, docs []Document) ([]SentimentResult, error) {
	var resp sentimentResponse
	if err := c.post(ctx, sentimentPath, docs, &resp); err != nil {
		return nil, err
	}

	byID := make(map[string]SentimentResult, len(resp.Documents))
	for _, d := range resp.Documents {
		byID[d.ID] = SentimentResult{
			ID:        d.ID,
			Sentiment: d.Sentiment,
			Score:     predictedScore(d.Sentiment, d.ConfidenceScores.Positive, d.ConfidenceScores.Neutral, d.ConfidenceScores.Negative),
		}
	}
	failures := indexErrors(resp.Errors)

	results := make([]SentimentResult, len(docs))
	for i, doc := range docs {
		if r, ok := byID[doc.ID]; ok {
			results[i] = r
		} else {
			results[i] = SentimentResult{ID: doc.ID, Failed: true, ErrorMsg: failures[doc.ID]}
		}
	}
	return results, nil
}

// ExtractKeyPhrases implements Analyzer.
func (c *Client) ExtractKeyPhrases(ctx context.Context, docs []Document) ([]KeyPhraseResult, error) {
	var resp keyPhraseResponse
	if err := c.post(ctx, keyPhrasesPath, docs, &resp); err != nil {
		return nil, err
	}

	byID := make(map[string]KeyPhraseResult, len(resp.Documents))
	for _, d := range resp.Documents {
		byID[d.ID] = KeyPhraseResult{ID: d.ID, KeyPhrases: d.KeyPhrases}
	}
	failures := indexErrors(resp.Errors)

	results := make([]KeyPhraseResult, len(docs))
	for i, doc := range docs {
		if r, ok := byID[doc.ID]; ok {
			results[i] = r
		} else {
			results[i] = KeyPhraseResult{ID: doc.ID, Failed: true, ErrorMsg: failures[doc.ID]}
		}
	}
	return results, nil
}

// RecognizeEntities implements Analyzer.
func (c *Client) RecognizeEntities(ctx context.Context, docs []Document) ([]EntityResult, error) {
	var resp entityResponse
	if err := c.post(ctx, entitiesPath, docs, &resp); err != nil {
		return nil, err
	}

	byID := make(map[string]EntityResult, len(resp.Documents))
	for _, d := range resp.Documents {
		entities := make([]Entity, len(d.Entities))
		for j, e := range d.Entities {
			entities[j] = Entity{Text: e.Text, Category: e.Category, ConfidenceScore: e.ConfidenceScore}
		}
		byID[d.ID] = EntityResult{ID: d.ID, Entities: entities}
	}
	failures := indexErrors(resp.Errors)

	results := make([]EntityResult, len(docs))
	for i, doc := range docs {
		if r, ok := byID[doc.ID]; ok {
			results[i] = r
		} else {
			results[i] = EntityResult{ID: doc.ID, Failed: true, ErrorMsg: failures[doc.ID]}
		}
	}
	return results, nil
}

// post sends one analysis request and decodes the response envelope.
func (c *Client) post(ctx context.Context, path string, docs []Document, out any) error {
	if len(docs) == 0 {
		return fmt.Errorf("no documents to analyze")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait: %w", err)
		}
	}

	reqBody := analyzeRequest{Documents: make([]requestDocument, len(docs))}
	for i, d := range docs {
		reqBody.Documents[i] = requestDocument{ID: d.ID, Text: d.Text, Language: defaultLanguage}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("language request failed",
			zap.String("path", path),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return fmt.Errorf("language service request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("language service returned non-OK status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.Int("documents", len(docs)))
		return fmt.Errorf("language service returned %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	c.logger.Debug("language request completed",
		zap.String("path", path),
		zap.Int("documents", len(docs)),
		zap.Duration("elapsed", time.Since(start)))

	return nil
}

// indexErrors maps per-document errors by document ID.
func indexErrors(errs []documentError) map[string]string {
	m := make(map[string]string, len(errs))
	for _, e := range errs {
		m[e.ID] = e.Error.Message
	}
	return m
}

// predictedScore picks the confidence of the predicted sentiment class.
// Mixed sentiment has no single class score; the strongest class wins.
func predictedScore(sentiment string, positive, neutral, negative float64) float64 {
	switch sentiment {
	case "positive":
		return positive
	case "neutral":
		return neutral
	case "negative":
		return negative
	default:
		return max(positive, neutral, negative)
	}
}

// Ensure Client implements Analyzer at compile time.
var _ Analyzer = (*Client)(nil)
