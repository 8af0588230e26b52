package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RowCounter counts rows in a mart table.
type RowCounter interface {
	CountRows(ctx context.Context, tableName string) (int64, error)
}

// statsResult mirrors the front-end sidebar: string values so a failed
// count reads "N/A" without changing the shape.
type statsResult struct {
	TotalPostings string `json:"total_postings"`
	Companies     string `json:"companies"`
	Skills        string `json:"skills"`
}

// RegisterGetStatsTool adds the get_stats tool, which returns mart
// summary counts.
func RegisterGetStatsTool(s *server.MCPServer, counter RowCounter) {
	tool := mcp.NewTool(
		"get_stats",
		mcp.WithDescription("Returns summary counts for the job market mart: total postings, companies, and skills. A count reads \"N/A\" when the mart query fails."),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		count := func(table string) string {
			n, err := counter.CountRows(ctx, table)
			if err != nil {
				return "N/A"
			}
			return strconv.FormatInt(n, 10)
		}

		result, err := json.Marshal(statsResult{
			TotalPostings: count("dbo.Job_Fact_Table"),
			Companies:     count("dbo.Company_Dimension_Table"),
			Skills:        count("dbo.Skill_Dimension_Table"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal stats result: %w", err)
		}
		return mcp.NewToolResultText(string(result)), nil
	})
}
