// Package strings provides small string utilities shared by config parsing and
// form ingestion.
package strings

import (
	"strings"
)

// DedupeAndTrim removes duplicates and empty strings from a slice,
// trimming whitespace from each element. Order is preserved.
//
//	DedupeAndTrim([]string{" kafka-1:9092", "kafka-1:9092", ""})
//	// []string{"kafka-1:9092"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}
	return result
}

// FirstNonEmpty returns the first value that is not blank after trimming.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// MaskSecret keeps the first n characters of s and replaces the rest, so
// tokens can appear in logs without being replayable.
func MaskSecret(s string, n int) string {
	if n < 0 {
		n = 0
	}
	if len(s) <= n {
		return strings.Repeat("*", len(s))
	}
	return s[:n] + "…"
}
