package llm

import (
	"context"
)

// Ensure mocks implement the interfaces at compile time.
var _ ToolCaller = (*MockToolCaller)(nil)

// MockToolCaller is a configurable mock for testing tool-assisted generation.
type MockToolCaller struct {
	// GenerateWithToolsFunc is called when GenerateWithTools is invoked.
	// If nil, returns empty string and nil error.
	GenerateWithToolsFunc func(ctx context.Context, req *ToolRequest, executor ToolExecutor) (string, error)

	// Call tracking for verification
	GenerateWithToolsCalls int
	LastRequest            *ToolRequest
}

// GenerateWithTools implements ToolCaller.
func (m *MockToolCaller) GenerateWithTools(ctx context.Context, req *ToolRequest, executor ToolExecutor) (string, error) {
	m.GenerateWithToolsCalls++
	m.LastRequest = req
	if m.GenerateWithToolsFunc != nil {
		return m.GenerateWithToolsFunc(ctx, req, executor)
	}
	return "", nil
}
