package api

import "strings"

// MaxQueryLength bounds user query text. Longer queries are rejected
// before any model call is made.
const MaxQueryLength = 4096

// ValidateQuery rejects empty, whitespace-only, or oversized query text.
// The transport layer validates before invoking the pipeline; the
// pipeline validates again so direct library callers get the same checks.
func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return NewInvalidRequestError("query", "query must not be empty")
	}
	if len(query) > MaxQueryLength {
		return NewInvalidRequestError("query", "query exceeds maximum length")
	}
	return nil
}
