package config

import (
	"strings"
	"testing"
)

func baseConfig() *Config {
	cfg := &Config{}
	cfg.Warehouse = WarehouseConfig{
		Host:     "warehouse.example.com",
		Port:     5432,
		User:     "etl",
		Password: "secret",
		Database: "lake",
		SSLMode:  "require",
		Catalog:  "hive_metastore",
		Schema:   "jobs",
		Table:    "job_postings",
	}
	cfg.Language = LanguageConfig{
		Endpoint: "https://lang.example.com",
		APIKey:   "key",
	}
	cfg.Mart = MartConfig{
		Host:     "mart.example.com",
		Port:     1433,
		Database: "JobMarket",
		Username: "loader",
		Password: "secret",
	}
	cfg.LLM = LLMConfig{
		Endpoint: "https://llm.example.com/v1",
		Model:    "gemini-2.5-flash",
		APIKey:   "key",
	}
	cfg.Pipeline = PipelineConfig{
		SampleSize:         100,
		SampleSeed:         42,
		SentimentChunkSize: 10,
		KeyPhraseChunkSize: 10,
		EntityChunkSize:    5,
		OnChunkFailure:     PolicyContinue,
	}
	return cfg
}

func TestValidatePipeline_AllPresent(t *testing.T) {
	if err := baseConfig().ValidatePipeline(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidatePipeline_ReportsEveryMissingSecret(t *testing.T) {
	cfg := baseConfig()
	cfg.Warehouse.Password = ""
	cfg.Language.APIKey = ""
	cfg.Mart.Password = ""

	err := cfg.ValidatePipeline()
	if err == nil {
		t.Fatal("expected error for missing secrets")
	}
	for _, want := range []string{"WAREHOUSE_PASSWORD", "LANGUAGE_SERVICE_API_KEY", "MART_PASSWORD"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should name %s", err.Error(), want)
		}
	}
}

func TestValidatePipeline_RejectsBadPolicy(t *testing.T) {
	cfg := baseConfig()
	cfg.Pipeline.OnChunkFailure = "retry"

	err := cfg.ValidatePipeline()
	if err == nil || !strings.Contains(err.Error(), "on_chunk_failure") {
		t.Fatalf("expected policy error, got %v", err)
	}
}

func TestValidatePipeline_RejectsZeroChunkSize(t *testing.T) {
	cfg := baseConfig()
	cfg.Pipeline.EntityChunkSize = 0

	if err := cfg.ValidatePipeline(); err == nil {
		t.Fatal("expected error for zero chunk size")
	}
}

func TestValidateExtract_WarehouseOnly(t *testing.T) {
	cfg := baseConfig()
	cfg.Language.APIKey = ""
	cfg.Mart.Password = ""

	// Extraction touches nothing but the warehouse.
	if err := cfg.ValidateExtract(); err != nil {
		t.Fatalf("expected valid extract config, got %v", err)
	}

	cfg.Warehouse.User = ""
	err := cfg.ValidateExtract()
	if err == nil || !strings.Contains(err.Error(), "WAREHOUSE_USER") {
		t.Fatalf("expected WAREHOUSE_USER error, got %v", err)
	}
}

func TestValidateEnrich_LanguageOnly(t *testing.T) {
	cfg := baseConfig()
	cfg.Warehouse.Password = ""
	cfg.Mart.Password = ""

	if err := cfg.ValidateEnrich(); err != nil {
		t.Fatalf("expected valid enrich config, got %v", err)
	}

	cfg.Language.Endpoint = ""
	err := cfg.ValidateEnrich()
	if err == nil || !strings.Contains(err.Error(), "LANGUAGE_SERVICE_ENDPOINT") {
		t.Fatalf("expected LANGUAGE_SERVICE_ENDPOINT error, got %v", err)
	}
}

func TestValidateServe_MissingLLMKey(t *testing.T) {
	cfg := baseConfig()
	cfg.LLM.APIKey = ""

	err := cfg.ValidateServe()
	if err == nil || !strings.Contains(err.Error(), "LLM_API_KEY") {
		t.Fatalf("expected LLM_API_KEY error, got %v", err)
	}
}

func TestSourceTable(t *testing.T) {
	cfg := baseConfig()
	if got := cfg.Warehouse.SourceTable(); got != "hive_metastore.jobs.job_postings" {
		t.Errorf("SourceTable() = %q", got)
	}

	cfg.Warehouse.Catalog = ""
	if got := cfg.Warehouse.SourceTable(); got != "jobs.job_postings" {
		t.Errorf("SourceTable() without catalog = %q", got)
	}
}

func TestFingerprint_ChangesWithConnectionSettings(t *testing.T) {
	a := baseConfig()
	b := baseConfig()
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("identical configs should share a fingerprint")
	}

	b.Mart.Host = "other.example.com"
	if a.Fingerprint() == b.Fingerprint() {
		t.Error("fingerprint should change when mart host changes")
	}

	c := baseConfig()
	c.LLM.Model = "gemini-2.5-pro"
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("fingerprint should change when model changes")
	}
}
