package apperrors

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrNoRows            = errors.New("source query returned no rows")
	ErrSampleTooLarge    = errors.New("sample size exceeds available rows")
	ErrRunAborted        = errors.New("enrichment run aborted by failure policy")
	ErrQueryNotReadOnly  = errors.New("only SELECT queries are permitted")
	ErrInjectionDetected = errors.New("SQL injection pattern detected")
)
