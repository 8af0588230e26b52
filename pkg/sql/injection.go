package sql

import (
	"strings"

	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionCheckResult describes a detected SQL injection pattern.
type InjectionCheckResult struct {
	IsSQLi      bool   // true if an injection pattern was detected
	Fingerprint string // libinjection fingerprint of the detected pattern
	Value       string // the literal that failed the check
}

// CheckValueForInjection runs libinjection over a single string value,
// such as a user-supplied filter. Returns nil when the value is clean.
func CheckValueForInjection(value string) *InjectionCheckResult {
	isSQLi, fingerprint := libinjection.IsSQLi(value)
	if !isSQLi {
		return nil
	}
	return &InjectionCheckResult{
		IsSQLi:      true,
		Fingerprint: string(fingerprint),
		Value:       value,
	}
}

// CheckLiteralsForInjection extracts every single-quoted string literal
// from a SQL statement and runs libinjection over each. Model-generated
// SQL embeds user phrasing inside literals; this catches a question that
// smuggles an injection payload through the model into the query text.
func CheckLiteralsForInjection(sqlQuery string) *InjectionCheckResult {
	for _, lit := range extractStringLiterals(sqlQuery) {
		if result := CheckValueForInjection(lit); result != nil {
			return result
		}
	}
	return nil
}

// extractStringLiterals returns the contents of single-quoted literals,
// treating doubled quotes ('') as an escaped quote within the literal.
func extractStringLiterals(sqlQuery string) []string {
	var literals []string
	var current strings.Builder
	inString := false

	runes := []rune(sqlQuery)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if !inString {
			if r == '\'' {
				inString = true
			}
			continue
		}
		if r == '\'' {
			// doubled quote stays inside the literal
			if i+1 < len(runes) && runes[i+1] == '\'' {
				current.WriteRune('\'')
				i++
				continue
			}
			literals = append(literals, current.String())
			current.Reset()
			inString = false
			continue
		}
		current.WriteRune(r)
	}

	return literals
}
