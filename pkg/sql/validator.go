// Package sql validates agent-generated queries before they reach the
// mart: single statement, read-only, no injection patterns in literals.
package sql

import (
	"errors"
	"strings"
)

// ErrMultipleStatements indicates the query text contains more than one
// SQL statement.
var ErrMultipleStatements = errors.New("multiple SQL statements not allowed; only single statements are permitted")

// ValidationResult contains the normalized SQL and any validation error.
type ValidationResult struct {
	NormalizedSQL string
	Error         error
}

// ValidateAndNormalize strips a trailing semicolon and rejects text that
// still contains a statement separator afterwards. Semicolons inside
// string literals or bracket-quoted identifiers do not count.
func ValidateAndNormalize(sqlQuery string) ValidationResult {
	sqlQuery = strings.TrimSpace(sqlQuery)
	if sqlQuery == "" {
		return ValidationResult{NormalizedSQL: sqlQuery}
	}

	normalized := stripTrailingSemicolon(sqlQuery)

	if separatorOutsideQuotes(normalized) {
		return ValidationResult{Error: ErrMultipleStatements}
	}

	return ValidationResult{NormalizedSQL: normalized}
}

// separatorOutsideQuotes scans for a semicolon outside single-quoted
// strings, double-quoted identifiers, and SQL Server bracket identifiers.
// The trailing semicolon is already stripped, so any hit means a second
// statement.
func separatorOutsideQuotes(sqlQuery string) bool {
	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
		stateBracket
	)

	state := stateNormal
	prev := rune(0)

	for _, r := range sqlQuery {
		switch state {
		case stateNormal:
			switch r {
			case ';':
				return true
			case '\'':
				state = stateSingleQuote
			case '"':
				state = stateDoubleQuote
			case '[':
				state = stateBracket
			}
		case stateSingleQuote:
			// A doubled quote ('') drops to normal and re-enters on the
			// next character, which keeps the literal intact.
			if r == '\'' && prev != '\\' {
				state = stateNormal
			}
		case stateDoubleQuote:
			if r == '"' && prev != '\\' {
				state = stateNormal
			}
		case stateBracket:
			if r == ']' {
				state = stateNormal
			}
		}
		prev = r
	}

	return false
}

func stripTrailingSemicolon(sqlQuery string) string {
	sqlQuery = strings.TrimRight(sqlQuery, " \t\n\r")
	if strings.HasSuffix(sqlQuery, ";") {
		sqlQuery = strings.TrimRight(strings.TrimSuffix(sqlQuery, ";"), " \t\n\r")
	}
	return sqlQuery
}
