// Package llm provides OpenAI-compatible LLM client functionality.
package llm

import (
	"context"
)

// ToolCaller defines the interface for tool-assisted generation. The
// chat agent depends on this rather than on the concrete client.
type ToolCaller interface {
	// GenerateWithTools runs the tool-calling loop to completion and
	// returns the final assistant message.
	GenerateWithTools(ctx context.Context, req *ToolRequest, executor ToolExecutor) (string, error)
}

// Ensure implementations satisfy their interfaces at compile time.
var _ ToolCaller = (*ToolClient)(nil)
