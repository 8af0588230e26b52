package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

func TestNewServer(t *testing.T) {
	logger := zap.NewNop()
	s := NewServer("marketlens", "1.0.0", logger)

	if s == nil {
		t.Fatal("expected non-nil server")
	}
	if s.mcp == nil {
		t.Fatal("expected non-nil mcp server")
	}
	if s.logger != logger {
		t.Error("expected logger to be set")
	}
}

func TestServer_MCP(t *testing.T) {
	s := NewServer("marketlens", "1.0.0", zap.NewNop())

	if s.MCP() != s.mcp {
		t.Error("expected MCP() to return the internal mcp server")
	}
}

func TestServer_RegisterTool(t *testing.T) {
	s := NewServer("marketlens", "1.0.0", zap.NewNop())

	handlerCalled := false
	tool := mcp.NewTool("noop", mcp.WithDescription("does nothing"))
	s.RegisterTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		handlerCalled = true
		return mcp.NewToolResultText("ok"), nil
	})

	if handlerCalled {
		t.Error("handler should not be called during registration")
	}

	// The registered tool shows up in a tools/list round trip.
	raw := s.mcp.HandleMessage(context.Background(),
		json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("marshal tools/list response: %v", err)
	}

	var resp struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("unmarshal tools/list response: %v", err)
	}

	found := false
	for _, tl := range resp.Result.Tools {
		if tl.Name == "noop" {
			found = true
		}
	}
	if !found {
		t.Error("registered tool missing from tools/list")
	}
}

func TestServer_NewStreamableHTTPServer(t *testing.T) {
	s := NewServer("marketlens", "1.0.0", zap.NewNop())

	if s.NewStreamableHTTPServer() == nil {
		t.Fatal("expected non-nil HTTP server")
	}
}
