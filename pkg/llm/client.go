// Package llm provides OpenAI-compatible LLM client functionality.
package llm

import (
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Client provides access to OpenAI-compatible LLM endpoints, including
// the Gemini OpenAI-compatibility surface used in production.
type Client struct {
	client   *openai.Client
	endpoint string
	model    string
	breaker  *CircuitBreaker
	logger   *zap.Logger
}

// Config holds configuration for creating an LLM client.
type Config struct {
	Endpoint string // Base URL, e.g., "https://generativelanguage.googleapis.com/v1beta/openai"
	Model    string // Model name, e.g., "gemini-2.5-flash"
	APIKey   string // Optional for local endpoints
}

// NewClient creates a new OpenAI-compatible LLM client.
func NewClient(cfg *Config, logger *zap.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")

	return &Client{
		client:   openai.NewClientWithConfig(clientConfig),
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		breaker:  NewCircuitBreaker(DefaultCircuitBreakerConfig()),
		logger:   logger.Named("llm"),
	}, nil
}

// GetModel returns the configured model name.
func (c *Client) GetModel() string {
	return c.model
}

// GetEndpoint returns the configured endpoint.
func (c *Client) GetEndpoint() string {
	return c.endpoint
}

// parseError categorizes API errors using the structured Error type and
// attaches the model and endpoint the client was talking to.
func (c *Client) parseError(err error) error {
	classified := ClassifyError(err)
	if classified.Model == "" {
		classified.Model = c.model
	}
	if classified.Endpoint == "" {
		classified.Endpoint = c.endpoint
	}
	return classified
}
