package mart

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// SchemaObject is one table or view visible to the chat agent.
type SchemaObject struct {
	Schema string `json:"schema"`
	Name   string `json:"name"`
	Type   string `json:"type"` // "table" or "view"
}

// SchemaColumn describes one column of a table or view.
type SchemaColumn struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	IsNullable bool   `json:"is_nullable"`
}

// SchemaExtractor discovers mart tables, views, and columns from the
// system catalogs. The agent uses it for schema hints and the get_schema
// tool; the sidebar uses it for the table list.
type SchemaExtractor struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSchemaExtractor creates a schema extractor over an established mart
// connection.
func NewSchemaExtractor(db *sql.DB, logger *zap.Logger) *SchemaExtractor {
	return &SchemaExtractor{
		db:     db,
		logger: logger.Named("mart.schema"),
	}
}

// ListObjects returns all user tables and views, tables first, each group
// sorted by name.
func (s *SchemaExtractor) ListObjects(ctx context.Context) ([]SchemaObject, error) {
	const query = `
		SELECT s.name, t.name, 'table' AS object_type
		FROM sys.tables t
		JOIN sys.schemas s ON t.schema_id = s.schema_id
		WHERE t.is_ms_shipped = 0
		UNION ALL
		SELECT s.name, v.name, 'view' AS object_type
		FROM sys.views v
		JOIN sys.schemas s ON v.schema_id = s.schema_id
		WHERE v.is_ms_shipped = 0
		ORDER BY object_type, 2`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list schema objects: %w", err)
	}
	defer rows.Close()

	var objects []SchemaObject
	for rows.Next() {
		var obj SchemaObject
		if err := rows.Scan(&obj.Schema, &obj.Name, &obj.Type); err != nil {
			return nil, fmt.Errorf("scan schema object: %w", err)
		}
		objects = append(objects, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schema objects: %w", err)
	}

	return objects, nil
}

// DescribeObject returns the columns of one table or view.
func (s *SchemaExtractor) DescribeObject(ctx context.Context, name string) ([]SchemaColumn, error) {
	schema, table := parseSchemaTable(name)

	const query = `
		SELECT c.name, ty.name, c.is_nullable
		FROM sys.columns c
		JOIN sys.objects o ON c.object_id = o.object_id
		JOIN sys.schemas s ON o.schema_id = s.schema_id
		JOIN sys.types ty ON c.user_type_id = ty.user_type_id
		WHERE s.name = @p1 AND o.name = @p2
		ORDER BY c.column_id`

	rows, err := s.db.QueryContext(ctx, query,
		sql.Named("p1", schema), sql.Named("p2", table))
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", name, err)
	}
	defer rows.Close()

	var columns []SchemaColumn
	for rows.Next() {
		var col SchemaColumn
		var typeName string
		if err := rows.Scan(&col.Name, &typeName, &col.IsNullable); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		col.Type = mapSQLServerType(typeName)
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("object %s.%s not found", schema, table)
	}
	return columns, nil
}

// FormatForPrompt renders the object list as the compact line-per-object
// listing embedded in the agent's system prompt.
func FormatForPrompt(objects []SchemaObject) string {
	var b strings.Builder
	for _, obj := range objects {
		if obj.Type == "view" {
			fmt.Fprintf(&b, "- %s (view)\n", obj.Name)
		} else {
			fmt.Fprintf(&b, "- %s\n", obj.Name)
		}
	}
	return b.String()
}
