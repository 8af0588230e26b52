package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ToolCall represents a tool call from the LLM.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function ToolCallFunc `json:"function"`
}

// ToolCallFunc represents a function call within a tool call.
type ToolCallFunc struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolClient extends the basic LLM client with tool-calling capability.
type ToolClient struct {
	*Client
	maxToolIterations int
}

// NewToolClient creates a new tool-capable LLM client.
func NewToolClient(cfg *Config, logger *zap.Logger) (*ToolClient, error) {
	client, err := NewClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &ToolClient{
		Client:            client,
		maxToolIterations: 10,
	}, nil
}

// ToolRequest represents a request for tool-assisted chat completion.
type ToolRequest struct {
	Messages     []Message
	Tools        []ToolDefinition
	Temperature  float64
	SystemPrompt string
}

// Message represents a chat message.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// Message role constants.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolExecutor defines the interface for executing tools.
type ToolExecutor interface {
	ExecuteTool(ctx context.Context, name string, arguments string) (string, error)
}

// GenerateWithTools performs a chat completion with tool support, looping
// until the model produces a final answer. Tool execution errors are fed
// back to the model as tool results rather than aborting the loop.
func (c *ToolClient) GenerateWithTools(
	ctx context.Context,
	req *ToolRequest,
	executor ToolExecutor,
) (string, error) {
	messages := c.buildOpenAIMessages(req.Messages, req.SystemPrompt)
	tools := c.buildOpenAITools(req.Tools)

	for iteration := 0; iteration < c.maxToolIterations; iteration++ {
		if allowed, err := c.breaker.Allow(); !allowed {
			return "", err
		}

		c.logger.Debug("tool loop iteration",
			zap.Int("iteration", iteration),
			zap.Int("message_count", len(messages)))

		start := time.Now()
		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       c.model,
			Messages:    messages,
			Tools:       tools,
			Temperature: float32(req.Temperature),
		})
		if err != nil {
			c.breaker.RecordFailure()
			c.logger.Error("tool loop request failed",
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err))
			return "", c.parseError(err)
		}
		c.breaker.RecordSuccess()

		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("no choices in response")
		}

		choice := resp.Choices[0]
		content := choice.Message.Content

		// Fall back to text-based tool calls when the model emits
		// <tool_call> markup instead of native calls.
		var toolCalls []ToolCall
		if len(choice.Message.ToolCalls) == 0 && content != "" {
			toolCalls = c.parseTextToolCalls(content)
			if len(toolCalls) > 0 {
				content = c.cleanModelOutput(content)
			}
		} else {
			for _, tc := range choice.Message.ToolCalls {
				toolCalls = append(toolCalls, ToolCall{
					ID:   tc.ID,
					Type: string(tc.Type),
					Function: ToolCallFunc{
						Name:      tc.Function.Name,
						Arguments: tc.Function.Arguments,
					},
				})
			}
		}

		// No tool calls means we're done
		if len(toolCalls) == 0 {
			return content, nil
		}

		// Add assistant message with tool calls
		assistantMsg := openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleAssistant,
			Content: content,
		}
		for _, tc := range toolCalls {
			assistantMsg.ToolCalls = append(assistantMsg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}
		messages = append(messages, assistantMsg)

		// Execute tools and add results
		for _, tc := range toolCalls {
			result, execErr := executor.ExecuteTool(ctx, tc.Function.Name, tc.Function.Arguments)
			if execErr != nil {
				result = fmt.Sprintf("Error executing tool: %s", execErr.Error())
			}

			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    result,
				ToolCallID: tc.ID,
			})
		}
	}

	return "", fmt.Errorf("exceeded maximum tool iterations (%d)", c.maxToolIterations)
}

// parseTextToolCalls parses tool calls from text output (for non-native tool calling models).
func (c *ToolClient) parseTextToolCalls(content string) []ToolCall {
	var toolCalls []ToolCall

	// XML format: <tool_call>{"name": "...", "arguments": {...}}</tool_call>
	toolCallRegex := regexp.MustCompile(`<tool_call>\s*(\{[\s\S]*?\})\s*</tool_call>`)
	matches := toolCallRegex.FindAllStringSubmatch(content, -1)

	for i, match := range matches {
		if len(match) < 2 {
			continue
		}

		var toolCallJSON struct {
			Name      string         `json:"name"`
			Arguments map[string]any `json:"arguments"`
		}

		if err := json.Unmarshal([]byte(match[1]), &toolCallJSON); err != nil {
			c.logger.Debug("Failed to parse text tool call", zap.Error(err))
			continue
		}

		argsJSON, err := json.Marshal(toolCallJSON.Arguments)
		if err != nil {
			continue
		}

		toolCalls = append(toolCalls, ToolCall{
			ID:   fmt.Sprintf("text_tool_%d", i),
			Type: "function",
			Function: ToolCallFunc{
				Name:      toolCallJSON.Name,
				Arguments: string(argsJSON),
			},
		})
	}

	return toolCalls
}

// cleanModelOutput removes tool call markup and thinking blocks from model output.
func (c *ToolClient) cleanModelOutput(content string) string {
	// Remove <think>...</think> blocks
	thinkRegex := regexp.MustCompile(`<think>[\s\S]*?</think>`)
	content = thinkRegex.ReplaceAllString(content, "")

	// Remove tool call blocks
	toolCallRegex := regexp.MustCompile(`<tool_call>[\s\S]*?</tool_call>`)
	content = toolCallRegex.ReplaceAllString(content, "")

	// Collapse multiple newlines
	multiNewline := regexp.MustCompile(`\n{3,}`)
	content = multiNewline.ReplaceAllString(content, "\n\n")

	return strings.TrimSpace(content)
}

// buildOpenAIMessages converts our message format to OpenAI format.
func (c *ToolClient) buildOpenAIMessages(messages []Message, systemPrompt string) []openai.ChatCompletionMessage {
	var result []openai.ChatCompletionMessage

	// Add system message if provided
	if systemPrompt != "" {
		result = append(result, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}

	for _, msg := range messages {
		oaiMsg := openai.ChatCompletionMessage{
			Role:       msg.Role,
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
		}

		for _, tc := range msg.ToolCalls {
			oaiMsg.ToolCalls = append(oaiMsg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}

		result = append(result, oaiMsg)
	}

	return result
}

// buildOpenAITools converts our tool definitions to OpenAI format.
func (c *ToolClient) buildOpenAITools(tools []ToolDefinition) []openai.Tool {
	if len(tools) == 0 {
		return nil
	}

	result := make([]openai.Tool, len(tools))
	for i, def := range tools {
		paramsJSON, _ := json.Marshal(def.Parameters)
		result[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  json.RawMessage(paramsJSON),
			},
		}
	}

	return result
}
