package llm

import (
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain object",
			input:    `{"columns": ["Skill_Name"], "row_count": 10}`,
			expected: `{"columns": ["Skill_Name"], "row_count": 10}`,
		},
		{
			name:     "plain array",
			input:    `[{"skill": "Go"}, {"skill": "SQL"}]`,
			expected: `[{"skill": "Go"}, {"skill": "SQL"}]`,
		},
		{
			name:     "nested object",
			input:    `{"result": {"rows": [{"Company_Name": "Acme"}]}}`,
			expected: `{"result": {"rows": [{"Company_Name": "Acme"}]}}`,
		},
		{
			name: "reasoning tags before payload",
			input: `<think>
The user wants skill counts, so I return the tool arguments.
</think>
{"query": "SELECT TOP 10 Skill_Name FROM vw_SkillDemand"}`,
			expected: `{"query": "SELECT TOP 10 Skill_Name FROM vw_SkillDemand"}`,
		},
		{
			name: "prose before payload",
			input: `Here is the JSON you asked for:
{"query": "SELECT 1"}`,
			expected: `{"query": "SELECT 1"}`,
		},
		{
			name: "prose after payload",
			input: `{"query": "SELECT 1"}
Let me know if you need anything else.`,
			expected: `{"query": "SELECT 1"}`,
		},
		{
			name:     "braces and brackets inside strings",
			input:    `{"note": "values like {this} and [that] stay put", "n": 1}`,
			expected: `{"note": "values like {this} and [that] stay put", "n": 1}`,
		},
		{
			name:     "escaped quotes inside strings",
			input:    `{"answer": "the label is \"positive\"", "ok": true}`,
			expected: `{"answer": "the label is \"positive\"", "ok": true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ExtractJSON(tt.input)
			if err != nil {
				t.Fatalf("ExtractJSON() error = %v", err)
			}
			if result != tt.expected {
				t.Errorf("ExtractJSON() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestExtractJSON_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no json at all", "The mart has no postings for that role."},
		{"unbalanced object", `{"unclosed": "object"`},
		{"empty input", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ExtractJSON(tt.input); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestParseJSONResponse_Object(t *testing.T) {
	type toolArgs struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}

	input := `<think>building the query</think>{"query": "SELECT 1", "limit": 100}`
	result, err := ParseJSONResponse[toolArgs](input)
	if err != nil {
		t.Fatalf("ParseJSONResponse() error = %v", err)
	}
	if result.Query != "SELECT 1" {
		t.Errorf("Query = %q", result.Query)
	}
	if result.Limit != 100 {
		t.Errorf("Limit = %d, want 100", result.Limit)
	}
}

func TestParseJSONResponse_Array(t *testing.T) {
	type row struct {
		Skill string `json:"skill"`
	}

	input := `[{"skill": "Go"}, {"skill": "Kubernetes"}]`
	result, err := ParseJSONResponse[[]row](input)
	if err != nil {
		t.Fatalf("ParseJSONResponse() error = %v", err)
	}
	if len(result) != 2 || result[0].Skill != "Go" {
		t.Errorf("result = %+v, want two rows starting with Go", result)
	}
}
