// Package config loads marketlens configuration from config.yaml with
// environment variable overrides. Secrets must only come from environment
// variables and are never read from YAML.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for marketlens.
// Environment variables always override YAML values for fields that support
// both. Secrets (passwords, keys) are yaml:"-" and env-only.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL" env-default:""` // Auto-derived from Port if empty
	Version  string `yaml:"-"`                                      // Set at load time, not from config

	// QuestionsPath points at the canned sample-questions YAML served to
	// the chat sidebar.
	QuestionsPath string `yaml:"questions_path" env:"QUESTIONS_PATH" env-default:"questions.yaml"`

	Warehouse WarehouseConfig `yaml:"warehouse"`
	Language  LanguageConfig  `yaml:"language"`
	Mart      MartConfig      `yaml:"mart"`
	LLM       LLMConfig       `yaml:"llm"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
}

// WarehouseConfig holds the lakehouse SQL endpoint settings the extractor
// reads job postings from.
type WarehouseConfig struct {
	Host     string `yaml:"host" env:"WAREHOUSE_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"WAREHOUSE_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"WAREHOUSE_USER" env-default:""`
	Password string `yaml:"-" env:"WAREHOUSE_PASSWORD"` // Secret - not in YAML
	Database string `yaml:"database" env:"WAREHOUSE_DATABASE" env-default:""`
	SSLMode  string `yaml:"ssl_mode" env:"WAREHOUSE_SSLMODE" env-default:"require"`

	// Fully qualified source table, catalog.schema.table.
	Catalog string `yaml:"catalog" env:"WAREHOUSE_CATALOG" env-default:""`
	Schema  string `yaml:"schema" env:"WAREHOUSE_SCHEMA" env-default:"default"`
	Table   string `yaml:"table" env:"WAREHOUSE_TABLE" env-default:"job_postings"`
}

// ConnectionString returns a keyword/value connection string for the
// warehouse endpoint.
func (c *WarehouseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// SourceTable returns the fully qualified source table name. The catalog
// segment is omitted when not configured.
func (c *WarehouseConfig) SourceTable() string {
	if c.Catalog == "" {
		return fmt.Sprintf("%s.%s", c.Schema, c.Table)
	}
	return fmt.Sprintf("%s.%s.%s", c.Catalog, c.Schema, c.Table)
}

// LanguageConfig holds the hosted text-analytics service settings.
type LanguageConfig struct {
	Endpoint string `yaml:"endpoint" env:"LANGUAGE_SERVICE_ENDPOINT" env-default:""`
	APIKey   string `yaml:"-" env:"LANGUAGE_SERVICE_API_KEY"` // Secret - not in YAML

	// RequestsPerSecond paces outbound calls; free language-service tiers
	// throttle aggressively.
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"LANGUAGE_REQUESTS_PER_SECOND" env-default:"5"`
	TimeoutSeconds    int     `yaml:"timeout_seconds" env:"LANGUAGE_TIMEOUT_SECONDS" env-default:"30"`
}

// MartConfig holds the SQL Server mart settings for the upsert writer and
// the chat agent's query surface.
type MartConfig struct {
	Host     string `yaml:"host" env:"MART_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"MART_PORT" env-default:"1433"`
	Database string `yaml:"database" env:"MART_DATABASE" env-default:"JobMarket"`
	Username string `yaml:"username" env:"MART_USERNAME" env-default:""`
	Password string `yaml:"-" env:"MART_PASSWORD"` // Secret - not in YAML

	Encrypt                bool `yaml:"encrypt" env:"MART_ENCRYPT" env-default:"true"`
	TrustServerCertificate bool `yaml:"trust_server_certificate" env:"MART_TRUST_SERVER_CERTIFICATE" env-default:"false"`
	ConnectionTimeout      int  `yaml:"connection_timeout" env:"MART_CONNECTION_TIMEOUT" env-default:"60"`
}

// LLMConfig holds the hosted chat-model settings for the SQL agent.
// Any OpenAI-compatible endpoint works, including Gemini's compatibility
// surface.
type LLMConfig struct {
	Endpoint    string  `yaml:"endpoint" env:"LLM_ENDPOINT" env-default:"https://generativelanguage.googleapis.com/v1beta/openai"`
	Model       string  `yaml:"model" env:"LLM_MODEL" env-default:"gemini-2.5-flash"`
	APIKey      string  `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML
	Temperature float64 `yaml:"temperature" env:"LLM_TEMPERATURE" env-default:"0"`
}

// FailurePolicy controls what an enrichment run does when a whole chunk
// fails: record fallback values and continue, or abort the run.
type FailurePolicy string

const (
	PolicyContinue FailurePolicy = "continue"
	PolicyAbort    FailurePolicy = "abort"
)

// PipelineConfig holds sampling and enrichment tunables.
type PipelineConfig struct {
	SampleSize int   `yaml:"sample_size" env:"PIPELINE_SAMPLE_SIZE" env-default:"100"`
	SampleSeed int64 `yaml:"sample_seed" env:"PIPELINE_SAMPLE_SEED" env-default:"42"`

	// Chunk sizes bound request payloads per analysis type. They are
	// tunables, not correctness parameters.
	SentimentChunkSize int `yaml:"sentiment_chunk_size" env:"PIPELINE_SENTIMENT_CHUNK_SIZE" env-default:"10"`
	KeyPhraseChunkSize int `yaml:"key_phrase_chunk_size" env:"PIPELINE_KEY_PHRASE_CHUNK_SIZE" env-default:"10"`
	EntityChunkSize    int `yaml:"entity_chunk_size" env:"PIPELINE_ENTITY_CHUNK_SIZE" env-default:"5"`

	// OnChunkFailure selects the run-level failure policy: "continue"
	// records fallback values for the failed chunk and moves on,
	// "abort" stops the run at the first failed chunk.
	OnChunkFailure FailurePolicy `yaml:"on_chunk_failure" env:"PIPELINE_ON_CHUNK_FAILURE" env-default:"continue"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = (&url.URL{
			Scheme: "http",
			Host:   "localhost:" + cfg.Port,
		}).String()
	}

	return cfg, nil
}

// ValidatePipeline checks everything the pipeline needs before any network
// call is made, reporting every missing field by name rather than failing
// on the first one.
func (c *Config) ValidatePipeline() error {
	missing := c.missingWarehouseFields()
	missing = append(missing, c.missingLanguageFields()...)
	missing = append(missing, c.missingMartFields()...)

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if err := c.Pipeline.validate(); err != nil {
		return err
	}

	return nil
}

// ValidateExtract checks the warehouse-only subset used by the extract
// command.
func (c *Config) ValidateExtract() error {
	if missing := c.missingWarehouseFields(); len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ValidateEnrich checks the language-service subset used by the enrich
// command.
func (c *Config) ValidateEnrich() error {
	missing := c.missingLanguageFields()
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return c.Pipeline.validate()
}

// ValidateServe checks everything the chat surface needs.
func (c *Config) ValidateServe() error {
	missing := c.missingMartFields()
	if c.LLM.APIKey == "" {
		missing = append(missing, "LLM_API_KEY")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) missingWarehouseFields() []string {
	var missing []string
	if c.Warehouse.User == "" {
		missing = append(missing, "WAREHOUSE_USER")
	}
	if c.Warehouse.Password == "" {
		missing = append(missing, "WAREHOUSE_PASSWORD")
	}
	if c.Warehouse.Database == "" {
		missing = append(missing, "WAREHOUSE_DATABASE")
	}
	return missing
}

func (c *Config) missingLanguageFields() []string {
	var missing []string
	if c.Language.Endpoint == "" {
		missing = append(missing, "LANGUAGE_SERVICE_ENDPOINT")
	}
	if c.Language.APIKey == "" {
		missing = append(missing, "LANGUAGE_SERVICE_API_KEY")
	}
	return missing
}

func (c *Config) missingMartFields() []string {
	var missing []string
	if c.Mart.Username == "" {
		missing = append(missing, "MART_USERNAME")
	}
	if c.Mart.Password == "" {
		missing = append(missing, "MART_PASSWORD")
	}
	return missing
}

func (p *PipelineConfig) validate() error {
	if p.SampleSize <= 0 {
		return fmt.Errorf("pipeline sample_size must be positive, got %d", p.SampleSize)
	}
	if p.SentimentChunkSize <= 0 || p.KeyPhraseChunkSize <= 0 || p.EntityChunkSize <= 0 {
		return fmt.Errorf("pipeline chunk sizes must be positive")
	}
	switch p.OnChunkFailure {
	case PolicyContinue, PolicyAbort:
	default:
		return fmt.Errorf("pipeline on_chunk_failure must be %q or %q, got %q",
			PolicyContinue, PolicyAbort, p.OnChunkFailure)
	}
	return nil
}

// Fingerprint returns a stable key over the connection-relevant mart and
// LLM settings. The serve surface logs it at startup so restarts can be
// correlated against configuration changes.
func (c *Config) Fingerprint() string {
	return fmt.Sprintf("%s:%d/%s@%s|%s|%s",
		c.Mart.Host, c.Mart.Port, c.Mart.Database, c.Mart.Username,
		c.LLM.Endpoint, c.LLM.Model)
}
