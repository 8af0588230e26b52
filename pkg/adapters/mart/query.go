package mart

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/marketlens-ai/marketlens/pkg/logging"
)

// MaxQueryLimit is the hard cap on rows any agent query can return.
const MaxQueryLimit = 1000

// ColumnInfo describes one result column.
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// QueryResult holds a bounded query's columns and rows.
type QueryResult struct {
	Columns  []ColumnInfo     `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"row_count"`
}

// QueryExecutor runs read-only SQL against the mart with a hard row bound.
type QueryExecutor struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewQueryExecutor creates a query executor over an established mart
// connection.
func NewQueryExecutor(db *sql.DB, logger *zap.Logger) *QueryExecutor {
	return &QueryExecutor{
		db:     db,
		logger: logger.Named("mart.query"),
	}
}

// Query runs a SELECT statement and returns bounded results. The query is
// always wrapped in SELECT TOP (n); limits of zero, negative, or above
// MaxQueryLimit clamp to MaxQueryLimit.
func (e *QueryExecutor) Query(ctx context.Context, sqlQuery string, limit int) (*QueryResult, error) {
	effectiveLimit := limit
	if effectiveLimit <= 0 || effectiveLimit > MaxQueryLimit {
		effectiveLimit = MaxQueryLimit
	}
	queryToRun := fmt.Sprintf("SELECT TOP (%d) * FROM (%s) AS _limited", effectiveLimit, sqlQuery)

	start := time.Now()
	rows, err := e.db.QueryContext(ctx, queryToRun)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	columnNames, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}
	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to get column types: %w", err)
	}

	columns := make([]ColumnInfo, len(columnNames))
	for i, colName := range columnNames {
		columns[i] = ColumnInfo{
			Name: colName,
			Type: mapSQLServerType(columnTypes[i].DatabaseTypeName()),
		}
	}

	resultRows := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(columnNames))
		valuePtrs := make([]any, len(columnNames))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		rowMap := make(map[string]any)
		for i, col := range columnNames {
			val := values[i]
			if val != nil {
				// Text columns scan as []byte under this driver.
				if b, ok := val.([]byte); ok {
					if isStringType(columnTypes[i].DatabaseTypeName()) {
						val = string(b)
					}
				}
			}
			rowMap[col] = val
		}
		resultRows = append(resultRows, rowMap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	e.logger.Debug("query executed",
		zap.String("query", logging.SanitizeQuery(sqlQuery)),
		zap.Int("rows", len(resultRows)),
		zap.Duration("elapsed", time.Since(start)))

	return &QueryResult{
		Columns:  columns,
		Rows:     resultRows,
		RowCount: len(resultRows),
	}, nil
}

// CountRows returns COUNT(*) for one table or view.
func (e *QueryExecutor) CountRows(ctx context.Context, tableName string) (int64, error) {
	schema, table := parseSchemaTable(tableName)
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s.%s", quoteName(schema), quoteName(table))

	var count int64
	if err := e.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s: %w", tableName, err)
	}
	return count, nil
}
