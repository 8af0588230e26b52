package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/marketlens-ai/marketlens/pkg/config"
	"github.com/marketlens-ai/marketlens/pkg/enrich"
	"github.com/marketlens-ai/marketlens/pkg/language"
	"github.com/marketlens-ai/marketlens/pkg/logging"
	"github.com/marketlens-ai/marketlens/pkg/models"
)

var enrichFile string

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich text read from stdin or a file and print the results",
	Long: `Runs only the enrichment stage against the language service: one text
per line, each analyzed for sentiment, key phrases, and entities. Writes
a JSON report to stdout. Useful as a smoke test for the language service
credentials and the chunking behavior without touching either database.`,
	RunE: runEnrich,
}

func init() {
	enrichCmd.Flags().StringVarP(&enrichFile, "file", "f", "", "Read texts from this file instead of stdin")
	rootCmd.AddCommand(enrichCmd)
}

// enrichReport is the stdout shape for one input line.
type enrichReport struct {
	ID             string   `json:"id"`
	Text           string   `json:"text"`
	SentimentScore *float64 `json:"sentiment_score"`
	SentimentLabel *string  `json:"sentiment_label"`
	KeyPhrases     []string `json:"key_phrases"`
	Entities       []string `json:"entities"`
}

func runEnrich(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(Version)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateEnrich(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jobs, err := readTexts(enrichFile)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return fmt.Errorf("no input texts")
	}

	analyzer, err := language.NewClient(&language.Config{
		Endpoint:          cfg.Language.Endpoint,
		APIKey:            cfg.Language.APIKey,
		RequestsPerSecond: cfg.Language.RequestsPerSecond,
		Timeout:           time.Duration(cfg.Language.TimeoutSeconds) * time.Second,
	}, logger)
	if err != nil {
		return fmt.Errorf("create language client: %w", err)
	}

	service := enrich.NewService(analyzer, &cfg.Pipeline, logger)

	enriched, err := service.EnrichSentiment(ctx, jobs)
	if err != nil {
		return fmt.Errorf("sentiment: %w", err)
	}
	phrases, err := service.ExtractKeyPhrases(ctx, jobs)
	if err != nil {
		return fmt.Errorf("key phrases: %w", err)
	}
	entities, err := service.RecognizeEntities(ctx, jobs)
	if err != nil {
		return fmt.Errorf("entities: %w", err)
	}

	reports := buildReports(enriched, phrases, entities)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}

// readTexts reads one text per line, skipping blank lines. Line N becomes
// synthetic job "doc-N" so the enrichment records key back to their input.
func readTexts(path string) ([]models.JobRecord, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	var jobs []models.JobRecord
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		jobs = append(jobs, models.JobRecord{
			JobID:       fmt.Sprintf("doc-%d", line),
			Description: text,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return jobs, nil
}

func buildReports(enriched []models.EnrichedJob, phrases []models.KeyPhraseRecord, entities []models.EntityRecord) []enrichReport {
	reports := make([]enrichReport, 0, len(enriched))
	for _, job := range enriched {
		report := enrichReport{
			ID:             job.JobID,
			Text:           job.Description,
			SentimentScore: job.SentimentScore,
			KeyPhrases:     []string{},
			Entities:       []string{},
		}
		if job.SentimentLabel != nil {
			label := string(*job.SentimentLabel)
			report.SentimentLabel = &label
		}
		for _, p := range phrases {
			if p.JobID == job.JobID {
				report.KeyPhrases = append(report.KeyPhrases, p.Phrase)
			}
		}
		for _, e := range entities {
			if e.JobID == job.JobID {
				report.Entities = append(report.Entities, fmt.Sprintf("%s (%s)", e.Name, e.Category))
			}
		}
		reports = append(reports, report)
	}
	return reports
}
