// Package mart provides the SQL Server adapter for the job-market mart:
// the stored-procedure upsert writer, a bounded read-only query executor
// for the chat agent, and schema discovery for prompt hints.
package mart

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/microsoft/go-mssqldb" // registers the "sqlserver" database/sql driver
	"go.uber.org/zap"

	"github.com/marketlens-ai/marketlens/pkg/config"
	"github.com/marketlens-ai/marketlens/pkg/logging"
	"github.com/marketlens-ai/marketlens/pkg/retry"
)

// Connect opens and verifies a mart connection using SQL authentication.
// Establishment is retried with backoff.
func Connect(ctx context.Context, cfg *config.MartConfig, logger *zap.Logger) (*sql.DB, error) {
	connStr := buildConnectionString(cfg)

	db, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() (*sql.DB, error) {
		db, err := sql.Open("sqlserver", connStr)
		if err != nil {
			return nil, fmt.Errorf("open mart connection: %w", err)
		}

		pingCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.ConnectionTimeout)*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping mart: %w", err)
		}
		return db, nil
	})
	if err != nil {
		logger.Error("mart connection failed",
			zap.String("conn", logging.SanitizeConnectionString(connStr)),
			zap.String("error", logging.SanitizeError(err)))
		return nil, err
	}

	logger.Info("connected to mart",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))
	return db, nil
}

// buildConnectionString builds a sqlserver:// URL for SQL authentication.
func buildConnectionString(cfg *config.MartConfig) string {
	query := url.Values{}
	query.Set("database", cfg.Database)
	query.Set("encrypt", fmt.Sprintf("%t", cfg.Encrypt))
	query.Set("TrustServerCertificate", fmt.Sprintf("%t", cfg.TrustServerCertificate))
	query.Set("connection timeout", fmt.Sprintf("%d", cfg.ConnectionTimeout))

	return fmt.Sprintf("sqlserver://%s:%s@%s:%d?%s",
		url.QueryEscape(cfg.Username),
		url.QueryEscape(cfg.Password),
		cfg.Host,
		cfg.Port,
		query.Encode(),
	)
}
