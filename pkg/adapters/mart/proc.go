package mart

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// procNamePattern restricts procedure names to optionally schema-qualified
// identifiers, since the name is interpolated into the EXEC statement.
var procNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ProcExecutor invokes stored procedures with ordered parameters.
type ProcExecutor struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProcExecutor creates a stored-procedure executor over an established
// mart connection.
func NewProcExecutor(db *sql.DB, logger *zap.Logger) *ProcExecutor {
	return &ProcExecutor{
		db:     db,
		logger: logger.Named("mart.proc"),
	}
}

// Call executes one stored procedure with the given ordered parameters,
// bound as @p1..@pN. Each call is its own implicit transaction; commits
// are per-call, never batched across rows.
func (e *ProcExecutor) Call(ctx context.Context, procName string, params []any) error {
	if !procNamePattern.MatchString(procName) {
		return fmt.Errorf("invalid procedure name %q", procName)
	}

	placeholders := make([]string, len(params))
	namedParams := make([]any, len(params))
	for i, p := range params {
		placeholders[i] = fmt.Sprintf("@p%d", i+1)
		namedParams[i] = sql.Named(fmt.Sprintf("p%d", i+1), p)
	}

	schema, name := parseSchemaTable(procName)
	stmt := fmt.Sprintf("EXEC %s.%s %s", quoteName(schema), quoteName(name), strings.Join(placeholders, ", "))

	if _, err := e.db.ExecContext(ctx, stmt, namedParams...); err != nil {
		return fmt.Errorf("exec %s: %w", procName, err)
	}

	e.logger.Debug("stored procedure executed",
		zap.String("proc", procName),
		zap.Int("params", len(params)))
	return nil
}
