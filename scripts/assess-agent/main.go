// assess-agent evaluates chat agent answer quality against the canned
// sample questions using an LLM-as-judge.
//
// The tool asks each question through a running marketlens server's
// /api/chat endpoint, keeps the whole run in one session so follow-up
// context is exercised, and then has a judge model grade every answer:
//   - Relevance: does the answer address the question asked?
//   - Groundedness: does the answer read like it came from query results
//     rather than invented numbers?
//   - Clarity: is the answer plain language a non-SQL user can act on?
//
// Usage: go run ./scripts/assess-agent [server-url]
//
// Defaults to http://localhost:8080. Requires ANTHROPIC_API_KEY.
//
// NOTE: This standalone assessment script talks to the HTTP surface
// rather than importing the agent package. This is intentional: it grades
// the system a user actually reaches, including handler-level error
// shaping.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"gopkg.in/yaml.v3"

	"github.com/marketlens-ai/marketlens/pkg/llm"
)

const judgeModel = "claude-sonnet-4-5-20250929"

// AssessmentResult contains the full assessment output.
type AssessmentResult struct {
	CommitInfo      string           `json:"commit_info"`
	ServerURL       string           `json:"server_url"`
	ModelUsed       string           `json:"model_used"`
	SessionID       string           `json:"session_id"`
	Questions       []QuestionResult `json:"questions"`
	Answered        int              `json:"answered"`
	Errored         int              `json:"errored"`
	FinalScore      int              `json:"final_score"`
	FinalAssessment string           `json:"final_assessment"`
}

// QuestionResult holds one question, its answer, and the judge's grades.
type QuestionResult struct {
	Question     string `json:"question"`
	Answer       string `json:"answer,omitempty"`
	AgentError   string `json:"agent_error,omitempty"`
	DurationMs   int64  `json:"duration_ms"`
	Relevance    int    `json:"relevance"`
	Groundedness int    `json:"groundedness"`
	Clarity      int    `json:"clarity"`
	Verdict      string `json:"verdict"`
}

type chatRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
}

type chatResponse struct {
	Answer    string `json:"answer"`
	SessionID string `json:"session_id"`
	Error     string `json:"error,omitempty"`
}

type questionsFile struct {
	Questions []string `yaml:"questions"`
}

func main() {
	serverURL := "http://localhost:8080"
	if len(os.Args) > 1 {
		serverURL = strings.TrimSuffix(os.Args[1], "/")
	}

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		fmt.Fprintf(os.Stderr, "ANTHROPIC_API_KEY environment variable is required\n")
		os.Exit(1)
	}

	questions, err := loadQuestions("questions.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load questions: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	httpClient := &http.Client{Timeout: 120 * time.Second}
	judge := anthropic.NewClient(apiKey)

	result := AssessmentResult{
		CommitInfo: getCommitInfo(),
		ServerURL:  serverURL,
		ModelUsed:  judgeModel,
	}

	sessionID := ""
	for _, q := range questions {
		fmt.Fprintf(os.Stderr, "Asking: %s\n", q)

		qr := QuestionResult{Question: q}
		start := time.Now()
		resp, err := askChat(ctx, httpClient, serverURL, q, sessionID)
		qr.DurationMs = time.Since(start).Milliseconds()

		switch {
		case err != nil:
			qr.AgentError = err.Error()
			qr.Verdict = "transport failure, not graded"
			result.Errored++
		case resp.Error != "":
			qr.AgentError = resp.Error
			qr.Verdict = "agent returned an error instead of an answer"
			result.Errored++
		default:
			sessionID = resp.SessionID
			qr.Answer = resp.Answer
			gradeAnswer(ctx, judge, &qr)
			result.Answered++
		}
		result.Questions = append(result.Questions, qr)
	}
	result.SessionID = sessionID

	result.FinalScore = finalScore(result.Questions)
	result.FinalAssessment = finalAssessment(result.FinalScore, result.Errored, len(questions))

	output, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(output))
}

func loadQuestions(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var qf questionsFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, err
	}
	if len(qf.Questions) == 0 {
		return nil, fmt.Errorf("no questions in %s", path)
	}
	return qf.Questions, nil
}

func askChat(ctx context.Context, client *http.Client, serverURL, question, sessionID string) (*chatResponse, error) {
	body, err := json.Marshal(chatRequest{Question: question, SessionID: sessionID})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serverURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chat endpoint returned HTTP %d", httpResp.StatusCode)
	}

	var resp chatResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	return &resp, nil
}

// judgeGrades is the JSON shape the judge model is instructed to return.
type judgeGrades struct {
	Relevance    int    `json:"relevance"`
	Groundedness int    `json:"groundedness"`
	Clarity      int    `json:"clarity"`
	Verdict      string `json:"verdict"`
}

func gradeAnswer(ctx context.Context, judge *anthropic.Client, qr *QuestionResult) {
	prompt := fmt.Sprintf(`You are grading an answer from a job-market data analyst chatbot.
The bot answers questions by querying a SQL Server mart of job postings,
salaries, skills, companies, and sentiment scores.

## QUESTION
%s

## ANSWER
%s

Grade the answer on three axes, each 0-100:
- relevance: does it address the question that was asked?
- groundedness: does it read like it is reporting actual query results
  (specific values, rankings, counts) rather than generic or invented
  statements? An answer that says the data is unavailable is grounded.
- clarity: is it plain language a non-SQL user can understand?

Return ONLY JSON:
{"relevance": <int>, "groundedness": <int>, "clarity": <int>, "verdict": "<one sentence>"}`,
		qr.Question, qr.Answer)

	resp, err := judge.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     judgeModel,
		MaxTokens: 1000,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				{Type: "text", Text: &prompt},
			}},
		},
	})
	if err != nil {
		qr.Verdict = fmt.Sprintf("judge call failed: %v", err)
		return
	}

	grades, err := llm.ParseJSONResponse[judgeGrades](extractTextFromResponse(resp))
	if err != nil {
		qr.Verdict = fmt.Sprintf("judge response parse error: %v", err)
		return
	}

	qr.Relevance = grades.Relevance
	qr.Groundedness = grades.Groundedness
	qr.Clarity = grades.Clarity
	qr.Verdict = grades.Verdict
}

// finalScore averages graded questions. Errored questions count as zero:
// an agent that errors on a canned question has failed that question.
func finalScore(questions []QuestionResult) int {
	if len(questions) == 0 {
		return 0
	}
	total := 0
	for _, qr := range questions {
		// Relevance 40%, groundedness 40%, clarity 20%.
		total += int(float64(qr.Relevance)*0.40 +
			float64(qr.Groundedness)*0.40 +
			float64(qr.Clarity)*0.20)
	}
	return total / len(questions)
}

func finalAssessment(score, errored, total int) string {
	var assessment string
	switch {
	case score >= 90:
		assessment = "Excellent: answers are relevant, grounded, and readable."
	case score >= 75:
		assessment = "Good: answers are usable with minor gaps."
	case score >= 50:
		assessment = "Fair: answers frequently miss grounding or relevance."
	default:
		assessment = "Poor: the agent is not reliably answering the canned questions."
	}
	if errored > 0 {
		assessment += fmt.Sprintf(" %d of %d questions returned errors.", errored, total)
	}
	return assessment
}

func getCommitInfo() string {
	cmd := exec.Command("git", "describe", "--always", "--dirty")
	output, err := cmd.Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(output))
}

func extractTextFromResponse(resp anthropic.MessagesResponse) string {
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			return *block.Text
		}
	}
	return ""
}

