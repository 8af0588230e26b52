// Package agent implements the natural-language chat agent over the job
// market mart. The agent translates analyst questions into SQL Server
// queries via the LLM tool-calling loop and keeps per-session
// conversation history.
package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marketlens-ai/marketlens/pkg/adapters/mart"
	"github.com/marketlens-ai/marketlens/pkg/llm"
)

// maxSessionMessages bounds per-session history so long conversations
// don't grow the prompt without limit. Oldest turns are dropped first.
const maxSessionMessages = 20

const systemPromptTemplate = `You are a job market analyst assistant. You answer questions about job postings, salaries, skills, companies, and hiring trends by querying a SQL Server data mart.

Available tables and views:
%s
Prefer the views: they are pre-joined and named for their purpose (for example vw_JobDetails for posting details, vw_SkillDemand for skill counts, vw_SalaryByRole and vw_SalaryByLocation for salary aggregates, vw_SentimentByCompany for description sentiment).

Rules:
- Use the get_schema tool to inspect columns before writing a query you are unsure about.
- Use the execute_sql tool to run queries. Only single SELECT statements are allowed.
- This is SQL Server: use TOP (n), not LIMIT. String literals use single quotes.
- Salary columns are annual figures; NULL means the posting did not disclose them. Exclude NULLs from averages.
- Answer in plain language with the numbers from the query results. Do not show SQL to the user unless asked.
- If a query returns no rows, say so rather than guessing.`

// SQLAgent answers natural-language questions by driving the LLM
// tool-calling loop against the mart.
type SQLAgent struct {
	caller      llm.ToolCaller
	executor    llm.ToolExecutor
	schema      SchemaProvider
	temperature float64
	logger      *zap.Logger

	mu       sync.Mutex
	sessions map[string][]llm.Message
}

// Config holds dependencies for creating a SQLAgent.
type Config struct {
	Caller      llm.ToolCaller
	Executor    llm.ToolExecutor
	Schema      SchemaProvider
	Temperature float64
	Logger      *zap.Logger
}

// New creates a chat agent.
func New(cfg *Config) *SQLAgent {
	return &SQLAgent{
		caller:      cfg.Caller,
		executor:    cfg.Executor,
		schema:      cfg.Schema,
		temperature: cfg.Temperature,
		logger:      cfg.Logger.Named("agent"),
		sessions:    make(map[string][]llm.Message),
	}
}

// Ask answers a question within the given session. An empty sessionID
// starts a new session; the returned sessionID ties follow-up questions
// to the same conversation.
func (a *SQLAgent) Ask(ctx context.Context, sessionID, question string) (answer string, id string, err error) {
	if question == "" {
		return "", sessionID, fmt.Errorf("question is required")
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	systemPrompt, err := a.buildSystemPrompt(ctx)
	if err != nil {
		return "", sessionID, err
	}

	history := a.snapshotHistory(sessionID)
	messages := append(history, llm.Message{Role: llm.RoleUser, Content: question})

	a.logger.Info("answering question",
		zap.String("session_id", sessionID),
		zap.Int("history_len", len(history)))

	answer, err = a.caller.GenerateWithTools(ctx, &llm.ToolRequest{
		Messages:     messages,
		Tools:        Tools(),
		Temperature:  a.temperature,
		SystemPrompt: systemPrompt,
	}, a.executor)
	if err != nil {
		return "", sessionID, fmt.Errorf("generate answer: %w", err)
	}

	a.appendTurn(sessionID, question, answer)
	return answer, sessionID, nil
}

// Reset discards the conversation history for a session.
func (a *SQLAgent) Reset(sessionID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.sessions, sessionID)
}

// buildSystemPrompt embeds the live schema listing into the prompt so
// the model sees the mart as it currently is, including any views added
// after deployment.
func (a *SQLAgent) buildSystemPrompt(ctx context.Context) (string, error) {
	objects, err := a.schema.ListObjects(ctx)
	if err != nil {
		return "", fmt.Errorf("load schema for prompt: %w", err)
	}
	return fmt.Sprintf(systemPromptTemplate, mart.FormatForPrompt(objects)), nil
}

// snapshotHistory returns a copy of the session history so the caller
// can append without holding the lock.
func (a *SQLAgent) snapshotHistory(sessionID string) []llm.Message {
	a.mu.Lock()
	defer a.mu.Unlock()

	history := a.sessions[sessionID]
	out := make([]llm.Message, len(history))
	copy(out, history)
	return out
}

func (a *SQLAgent) appendTurn(sessionID, question, answer string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	history := append(a.sessions[sessionID],
		llm.Message{Role: llm.RoleUser, Content: question},
		llm.Message{Role: llm.RoleAssistant, Content: answer},
	)
	if len(history) > maxSessionMessages {
		history = history[len(history)-maxSessionMessages:]
	}
	a.sessions[sessionID] = history
}
