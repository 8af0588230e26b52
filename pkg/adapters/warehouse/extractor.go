// Package warehouse reads job-posting rows from the lakehouse SQL endpoint.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"go.uber.org/zap"

	"github.com/marketlens-ai/marketlens/pkg/apperrors"
	"github.com/marketlens-ai/marketlens/pkg/config"
	"github.com/marketlens-ai/marketlens/pkg/logging"
	"github.com/marketlens-ai/marketlens/pkg/models"
	"github.com/marketlens-ai/marketlens/pkg/retry"
)

// Extractor pulls the full set of job postings for a run.
type Extractor interface {
	ExtractJobs(ctx context.Context) ([]models.JobRecord, error)
}

// SQLExtractor reads postings over a warehouse SQL connection.
type SQLExtractor struct {
	db     *sql.DB
	cfg    *config.WarehouseConfig
	logger *zap.Logger
}

// Connect opens and verifies a warehouse connection. Connection
// establishment is retried with backoff.
func Connect(ctx context.Context, cfg *config.WarehouseConfig, logger *zap.Logger) (*sql.DB, error) {
	return connect(ctx, "pgx", cfg, logger)
}

// connect takes the driver name so tests can verify the open-and-ping
// path against a stub driver.
func connect(ctx context.Context, driverName string, cfg *config.WarehouseConfig, logger *zap.Logger) (*sql.DB, error) {
	connStr := cfg.ConnectionString()

	db, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() (*sql.DB, error) {
		db, err := sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("open warehouse connection: %w", err)
		}

		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping warehouse: %w", err)
		}
		return db, nil
	})
	if err != nil {
		logger.Error("warehouse connection failed",
			zap.String("conn", logging.SanitizeConnectionString(connStr)),
			zap.String("error", logging.SanitizeError(err)))
		return nil, err
	}

	logger.Info("connected to warehouse",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))
	return db, nil
}

// NewSQLExtractor creates an extractor over an established connection.
func NewSQLExtractor(db *sql.DB, cfg *config.WarehouseConfig, logger *zap.Logger) *SQLExtractor {
	return &SQLExtractor{
		db:     db,
		cfg:    cfg,
		logger: logger.Named("warehouse"),
	}
}

// sourceColumns is the explicit column list the extractor selects. Keeping
// it explicit pins the scan order; SELECT * would silently reorder on a
// table change.
var sourceColumns = []string{
	"job_id",
	"title",
	"company_name",
	"company_industry",
	"company_size",
	"city",
	"country",
	"work_type",
	"employment_type",
	"seniority_level",
	"role_category",
	"min_salary",
	"max_salary",
	"salary_currency",
	"description",
	"requirements",
	"benefits",
	"skills_raw",
	"experience_years",
	"education_level",
	"posted_date",
	"source_platform",
	"job_url",
}

// ExtractJobs runs the templated source query and scans every row.
// Returns an error wrapping apperrors.ErrNoRows when the source table is
// empty, so the pipeline stops before sampling instead of failing later.
func (e *SQLExtractor) ExtractJobs(ctx context.Context) ([]models.JobRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM %s",
		strings.Join(sourceColumns, ", "),
		quoteQualifiedTable(e.cfg.Catalog, e.cfg.Schema, e.cfg.Table))

	e.logger.Debug("extracting job postings", zap.String("query", logging.SanitizeQuery(query)))
	start := time.Now()

	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("source query failed: %w", err)
	}
	defer rows.Close()

	var jobs []models.JobRecord
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan source row: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate source rows: %w", err)
	}

	if len(jobs) == 0 {
		return nil, fmt.Errorf("table %s: %w", e.cfg.SourceTable(), apperrors.ErrNoRows)
	}

	e.logger.Info("extracted job postings",
		zap.Int("rows", len(jobs)),
		zap.Duration("elapsed", time.Since(start)))
	return jobs, nil
}

func scanJob(rows *sql.Rows) (models.JobRecord, error) {
	var (
		job             models.JobRecord
		companyIndustry sql.NullString
		companySize     sql.NullString
		city            sql.NullString
		country         sql.NullString
		workType        sql.NullString
		employmentType  sql.NullString
		seniorityLevel  sql.NullString
		roleCategory    sql.NullString
		minSalary       sql.NullFloat64
		maxSalary       sql.NullFloat64
		salaryCurrency  sql.NullString
		requirements    sql.NullString
		benefits        sql.NullString
		skillsRaw       sql.NullString
		experienceYears sql.NullInt64
		educationLevel  sql.NullString
		postedDate      sql.NullTime
		sourcePlatform  sql.NullString
		jobURL          sql.NullString
	)

	err := rows.Scan(
		&job.JobID,
		&job.Title,
		&job.CompanyName,
		&companyIndustry,
		&companySize,
		&city,
		&country,
		&workType,
		&employmentType,
		&seniorityLevel,
		&roleCategory,
		&minSalary,
		&maxSalary,
		&salaryCurrency,
		&job.Description,
		&requirements,
		&benefits,
		&skillsRaw,
		&experienceYears,
		&educationLevel,
		&postedDate,
		&sourcePlatform,
		&jobURL,
	)
	if err != nil {
		return job, err
	}

	job.CompanyIndustry = nullableString(companyIndustry)
	job.CompanySize = nullableString(companySize)
	job.City = nullableString(city)
	job.Country = nullableString(country)
	job.WorkType = nullableString(workType)
	job.EmploymentType = nullableString(employmentType)
	job.SeniorityLevel = nullableString(seniorityLevel)
	job.RoleCategory = nullableString(roleCategory)
	job.MinSalary = nullableFloat(minSalary)
	job.MaxSalary = nullableFloat(maxSalary)
	job.SalaryCurrency = nullableString(salaryCurrency)
	job.Requirements = nullableString(requirements)
	job.Benefits = nullableString(benefits)
	job.SkillsRaw = nullableString(skillsRaw)
	job.ExperienceYears = nullableInt(experienceYears)
	job.EducationLevel = nullableString(educationLevel)
	job.PostedDate = nullableTime(postedDate)
	job.SourcePlatform = nullableString(sourcePlatform)
	job.JobURL = nullableString(jobURL)

	return job, nil
}

// quoteQualifiedTable quotes each identifier segment with double quotes,
// doubling embedded quotes. The catalog segment is omitted when empty.
func quoteQualifiedTable(catalog, schema, table string) string {
	parts := make([]string, 0, 3)
	if catalog != "" {
		parts = append(parts, quoteIdent(catalog))
	}
	parts = append(parts, quoteIdent(schema), quoteIdent(table))
	return strings.Join(parts, ".")
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func nullableTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

// Ensure SQLExtractor implements Extractor at compile time.
var _ Extractor = (*SQLExtractor)(nil)
