package app

import (
	"regexp"
	"strings"
)

// Span attributes have a soft size limit downstream; long INSERT batches get
// truncated rather than dropped.
const maxTracedQueryLength = 512

var queryWhitespace = regexp.MustCompile(`\s+`)

// formatDBQueryForTrace collapses whitespace so multi-line SQL reads as a
// single trace attribute line.
func formatDBQueryForTrace(query string) string {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return trimmed
	}

	flattened := queryWhitespace.ReplaceAllString(trimmed, " ")
	if len(flattened) > maxTracedQueryLength {
		return flattened[:maxTracedQueryLength] + "..."
	}

	return flattened
}
