// Package tools registers the marketlens MCP tools. Each Register*
// function adds one tool to the server; tool failures that the model can
// act on are returned as structured error results rather than Go errors.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// QuestionAsker answers a natural-language question within a session.
type QuestionAsker interface {
	Ask(ctx context.Context, sessionID, question string) (answer string, id string, err error)
}

type askResult struct {
	Answer    string `json:"answer"`
	SessionID string `json:"session_id"`
}

// RegisterAskQuestionTool adds the ask_question tool, which runs the
// chat agent against the job market mart.
func RegisterAskQuestionTool(s *server.MCPServer, agent QuestionAsker) {
	tool := mcp.NewTool(
		"ask_question",
		mcp.WithDescription("Ask a natural-language question about job postings, salaries, skills, and hiring trends. Returns a plain-language answer backed by mart queries."),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question to answer"),
		),
		mcp.WithString("session_id",
			mcp.Description("Optional session ID to continue a previous conversation"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question := strings.TrimSpace(req.GetString("question", ""))
		if question == "" {
			return NewErrorResult("invalid_params", "question is required"), nil
		}
		sessionID := req.GetString("session_id", "")

		answer, sessionID, err := agent.Ask(ctx, sessionID, question)
		if err != nil {
			return NewErrorResult("agent_failed", err.Error()), nil
		}

		result, err := json.Marshal(askResult{Answer: answer, SessionID: sessionID})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal ask result: %w", err)
		}
		return mcp.NewToolResultText(string(result)), nil
	})
}
