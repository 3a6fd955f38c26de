// Package strings holds list helpers for comma-separated settings.
package strings

import (
	"strings"
)

// SplitList splits a comma-separated value and cleans it with DedupeAndTrim.
// It returns nil when nothing is left.
func SplitList(v string) []string {
	out := DedupeAndTrim(strings.Split(v, ","))
	if len(out) == 0 {
		return nil
	}
	return out
}

// DedupeAndTrim trims each element and drops empties and repeats, keeping
// first-seen order.
func DedupeAndTrim(values []string) []string {
	return dedupe(values, strings.TrimSpace)
}

// DedupeAndTrimLower is DedupeAndTrim over lowercased elements. Origins are
// compared this way.
func DedupeAndTrimLower(values []string) []string {
	return dedupe(values, func(v string) string { return strings.ToLower(strings.TrimSpace(v)) })
}

func dedupe(values []string, norm func(string) string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = norm(v); v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
