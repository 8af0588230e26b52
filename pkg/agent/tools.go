package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/marketlens-ai/marketlens/pkg/adapters/mart"
	"github.com/marketlens-ai/marketlens/pkg/llm"
	appsql "github.com/marketlens-ai/marketlens/pkg/sql"
)

// SchemaProvider supplies mart schema metadata for prompts and tools.
type SchemaProvider interface {
	ListObjects(ctx context.Context) ([]mart.SchemaObject, error)
	DescribeObject(ctx context.Context, name string) ([]mart.SchemaColumn, error)
}

// QueryRunner executes read-only SQL against the mart.
type QueryRunner interface {
	Query(ctx context.Context, sqlQuery string, limit int) (*mart.QueryResult, error)
}

// MartToolExecutor implements llm.ToolExecutor for the chat agent.
// It exposes the mart schema and a validated, read-only query path.
type MartToolExecutor struct {
	schema SchemaProvider
	query  QueryRunner
	logger *zap.Logger
}

// NewMartToolExecutor creates a tool executor bound to a mart connection.
func NewMartToolExecutor(schema SchemaProvider, query QueryRunner, logger *zap.Logger) *MartToolExecutor {
	return &MartToolExecutor{
		schema: schema,
		query:  query,
		logger: logger.Named("tool-executor"),
	}
}

// Ensure MartToolExecutor implements llm.ToolExecutor.
var _ llm.ToolExecutor = (*MartToolExecutor)(nil)

// Tools returns the tool definitions the chat agent offers to the model.
func Tools() []llm.ToolDefinition {
	return []llm.ToolDefinition{
		llm.NewToolDefinition(
			"get_schema",
			"Get the schema of the job market mart. Without arguments, lists all tables and views. With object_name, returns the columns of that table or view.",
			map[string]llm.ParameterProperty{
				"object_name": {
					Type:        "string",
					Description: "Optional: a specific table or view to describe, e.g. 'vw_JobDetails'",
				},
			},
			[]string{},
		),
		llm.NewToolDefinition(
			"execute_sql",
			"Execute a single read-only SELECT statement against the job market mart and return the result rows as JSON. Use SQL Server syntax (TOP, not LIMIT).",
			map[string]llm.ParameterProperty{
				"query": {
					Type:        "string",
					Description: "The SELECT statement to run",
				},
			},
			[]string{"query"},
		),
	}
}

// ExecuteTool dispatches to the appropriate tool handler based on name.
func (e *MartToolExecutor) ExecuteTool(ctx context.Context, name string, arguments string) (string, error) {
	e.logger.Debug("executing tool",
		zap.String("tool", name),
		zap.Int("arguments_len", len(arguments)))

	switch name {
	case "get_schema":
		return e.getSchema(ctx, arguments)
	case "execute_sql":
		return e.executeSQL(ctx, arguments)
	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

func (e *MartToolExecutor) getSchema(ctx context.Context, arguments string) (string, error) {
	var args struct {
		ObjectName string `json:"object_name"`
	}
	if arguments != "" {
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return "", fmt.Errorf("parse arguments: %w", err)
		}
	}

	if args.ObjectName == "" {
		objects, err := e.schema.ListObjects(ctx)
		if err != nil {
			return "", fmt.Errorf("list schema objects: %w", err)
		}
		return mart.FormatForPrompt(objects), nil
	}

	columns, err := e.schema.DescribeObject(ctx, args.ObjectName)
	if err != nil {
		return "", fmt.Errorf("describe %s: %w", args.ObjectName, err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s:\n", args.ObjectName)
	for _, col := range columns {
		nullable := "NOT NULL"
		if col.IsNullable {
			nullable = "NULL"
		}
		fmt.Fprintf(&sb, "  %s %s %s\n", col.Name, col.Type, nullable)
	}
	return sb.String(), nil
}

func (e *MartToolExecutor) executeSQL(ctx context.Context, arguments string) (string, error) {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("parse arguments: %w", err)
	}
	if strings.TrimSpace(args.Query) == "" {
		return "", fmt.Errorf("query is required")
	}

	validation := appsql.ValidateAndNormalize(args.Query)
	if validation.Error != nil {
		return "", fmt.Errorf("invalid query: %w", validation.Error)
	}
	query := validation.NormalizedSQL

	if err := appsql.EnsureReadOnly(query); err != nil {
		return "", err
	}
	if check := appsql.CheckLiteralsForInjection(query); check != nil && check.IsSQLi {
		return "", fmt.Errorf("query rejected: suspicious literal %q", check.Value)
	}

	result, err := e.query.Query(ctx, query, mart.MaxQueryLimit)
	if err != nil {
		return "", fmt.Errorf("execute query: %w", err)
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	return string(payload), nil
}
