package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/marketlens-ai/marketlens/pkg/adapters/mart"
	"github.com/marketlens-ai/marketlens/pkg/apperrors"
)

type mockSchemaProvider struct {
	ListObjectsFunc    func(ctx context.Context) ([]mart.SchemaObject, error)
	DescribeObjectFunc func(ctx context.Context, name string) ([]mart.SchemaColumn, error)
}

func (m *mockSchemaProvider) ListObjects(ctx context.Context) ([]mart.SchemaObject, error) {
	if m.ListObjectsFunc != nil {
		return m.ListObjectsFunc(ctx)
	}
	return []mart.SchemaObject{
		{Schema: "dbo", Name: "Job_Fact_Table", Type: "table"},
		{Schema: "dbo", Name: "vw_JobDetails", Type: "view"},
	}, nil
}

func (m *mockSchemaProvider) DescribeObject(ctx context.Context, name string) ([]mart.SchemaColumn, error) {
	if m.DescribeObjectFunc != nil {
		return m.DescribeObjectFunc(ctx, name)
	}
	return []mart.SchemaColumn{
		{Name: "Job_ID", Type: "NVARCHAR", IsNullable: false},
		{Name: "Min_Salary", Type: "FLOAT", IsNullable: true},
	}, nil
}

type mockQueryRunner struct {
	QueryFunc  func(ctx context.Context, sqlQuery string, limit int) (*mart.QueryResult, error)
	QueryCalls int
	LastQuery  string
}

func (m *mockQueryRunner) Query(ctx context.Context, sqlQuery string, limit int) (*mart.QueryResult, error) {
	m.QueryCalls++
	m.LastQuery = sqlQuery
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, sqlQuery, limit)
	}
	return &mart.QueryResult{
		Columns:  []mart.ColumnInfo{{Name: "n", Type: "INTEGER"}},
		Rows:     []map[string]any{{"n": int64(42)}},
		RowCount: 1,
	}, nil
}

func newTestExecutor(schema *mockSchemaProvider, query *mockQueryRunner) *MartToolExecutor {
	return NewMartToolExecutor(schema, query, zap.NewNop())
}

func TestExecuteTool_UnknownTool(t *testing.T) {
	e := newTestExecutor(&mockSchemaProvider{}, &mockQueryRunner{})

	_, err := e.ExecuteTool(context.Background(), "drop_tables", "{}")
	if err == nil || !strings.Contains(err.Error(), "unknown tool") {
		t.Errorf("expected unknown tool error, got %v", err)
	}
}

func TestGetSchema_ListsObjects(t *testing.T) {
	e := newTestExecutor(&mockSchemaProvider{}, &mockQueryRunner{})

	result, err := e.ExecuteTool(context.Background(), "get_schema", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(result, "Job_Fact_Table") {
		t.Errorf("expected table in listing, got %q", result)
	}
	if !strings.Contains(result, "vw_JobDetails (view)") {
		t.Errorf("expected view marked in listing, got %q", result)
	}
}

func TestGetSchema_DescribesObject(t *testing.T) {
	e := newTestExecutor(&mockSchemaProvider{}, &mockQueryRunner{})

	result, err := e.ExecuteTool(context.Background(), "get_schema", `{"object_name": "vw_JobDetails"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(result, "Job_ID NVARCHAR NOT NULL") {
		t.Errorf("expected column line, got %q", result)
	}
	if !strings.Contains(result, "Min_Salary FLOAT NULL") {
		t.Errorf("expected nullable column line, got %q", result)
	}
}

func TestExecuteSQL_ReturnsRowsAsJSON(t *testing.T) {
	runner := &mockQueryRunner{}
	e := newTestExecutor(&mockSchemaProvider{}, runner)

	result, err := e.ExecuteTool(context.Background(), "execute_sql",
		`{"query": "SELECT COUNT(*) AS n FROM vw_JobDetails"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed mart.QueryResult
	if err := json.Unmarshal([]byte(result), &parsed); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	if parsed.RowCount != 1 {
		t.Errorf("expected row_count 1, got %d", parsed.RowCount)
	}
	if runner.QueryCalls != 1 {
		t.Errorf("expected 1 query call, got %d", runner.QueryCalls)
	}
}

func TestExecuteSQL_StripsTrailingSemicolon(t *testing.T) {
	runner := &mockQueryRunner{}
	e := newTestExecutor(&mockSchemaProvider{}, runner)

	_, err := e.ExecuteTool(context.Background(), "execute_sql",
		`{"query": "SELECT 1;"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.HasSuffix(runner.LastQuery, ";") {
		t.Errorf("expected trailing semicolon stripped, got %q", runner.LastQuery)
	}
}

func TestExecuteSQL_RejectsMultipleStatements(t *testing.T) {
	runner := &mockQueryRunner{}
	e := newTestExecutor(&mockSchemaProvider{}, runner)

	_, err := e.ExecuteTool(context.Background(), "execute_sql",
		`{"query": "SELECT 1; DROP TABLE Job_Fact_Table"}`)
	if err == nil {
		t.Fatal("expected error for multiple statements")
	}
	if runner.QueryCalls != 0 {
		t.Errorf("expected no query call, got %d", runner.QueryCalls)
	}
}

func TestExecuteSQL_RejectsWrites(t *testing.T) {
	runner := &mockQueryRunner{}
	e := newTestExecutor(&mockSchemaProvider{}, runner)

	_, err := e.ExecuteTool(context.Background(), "execute_sql",
		`{"query": "DELETE FROM Job_Fact_Table"}`)
	if !errors.Is(err, apperrors.ErrQueryNotReadOnly) {
		t.Errorf("expected read-only violation, got %v", err)
	}
	if runner.QueryCalls != 0 {
		t.Errorf("expected no query call, got %d", runner.QueryCalls)
	}
}

func TestExecuteSQL_RejectsInjectionInLiteral(t *testing.T) {
	runner := &mockQueryRunner{}
	e := newTestExecutor(&mockSchemaProvider{}, runner)

	_, err := e.ExecuteTool(context.Background(), "execute_sql",
		`{"query": "SELECT * FROM vw_JobDetails WHERE Company_Name = ''' OR 1=1 --'"}`)
	if err == nil || !strings.Contains(err.Error(), "rejected") {
		t.Errorf("expected injection rejection, got %v", err)
	}
	if runner.QueryCalls != 0 {
		t.Errorf("expected no query call, got %d", runner.QueryCalls)
	}
}

func TestExecuteSQL_RequiresQuery(t *testing.T) {
	e := newTestExecutor(&mockSchemaProvider{}, &mockQueryRunner{})

	_, err := e.ExecuteTool(context.Background(), "execute_sql", `{"query": "  "}`)
	if err == nil || !strings.Contains(err.Error(), "query is required") {
		t.Errorf("expected missing query error, got %v", err)
	}
}
