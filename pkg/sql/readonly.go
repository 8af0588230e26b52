package sql

import (
	"fmt"
	"strings"

	"github.com/marketlens-ai/marketlens/pkg/apperrors"
)

// forbiddenVerbs are statement keywords that must never appear in
// agent-generated SQL. The agent's query surface is strictly read-only.
var forbiddenVerbs = []string{
	"INSERT", "UPDATE", "DELETE", "MERGE", "TRUNCATE",
	"DROP", "CREATE", "ALTER", "GRANT", "REVOKE", "DENY",
	"EXEC", "EXECUTE", "BACKUP", "RESTORE",
}

// EnsureReadOnly verifies a normalized single statement is a read-only
// query: it must start with SELECT or WITH and contain no data- or
// schema-modifying verbs as standalone words.
func EnsureReadOnly(sqlQuery string) error {
	trimmed := strings.TrimSpace(sqlQuery)
	if trimmed == "" {
		return fmt.Errorf("empty query: %w", apperrors.ErrQueryNotReadOnly)
	}

	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return fmt.Errorf("query must start with SELECT or WITH: %w", apperrors.ErrQueryNotReadOnly)
	}

	words := splitWords(upper)
	for _, verb := range forbiddenVerbs {
		if words[verb] {
			return fmt.Errorf("forbidden keyword %s: %w", verb, apperrors.ErrQueryNotReadOnly)
		}
	}

	return nil
}

// splitWords tokenizes on non-identifier characters, skipping string
// literals so a quoted value like 'drop off' cannot trip the verb check.
func splitWords(s string) map[string]bool {
	words := make(map[string]bool)
	var current strings.Builder
	inString := false

	flush := func() {
		if current.Len() > 0 {
			words[current.String()] = true
			current.Reset()
		}
	}

	for _, r := range s {
		switch {
		case r == '\'':
			inString = !inString
			flush()
		case inString:
			// ignore literal contents
		case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_':
			current.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return words
}
