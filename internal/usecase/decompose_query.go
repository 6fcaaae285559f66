package usecase

import (
	"regexp"
	"strings"
	"unicode"
)

var conjunctionSplitter = regexp.MustCompile(`(?i)\s+and\s+`)

// DecomposeQuery splits a user question into one or more atomic sub-queries.
//
// Queries with more than one "?" are split on "?" and each fragment is
// re-terminated. Otherwise a whole-word, case-insensitive " and " split is
// attempted; fragments are capitalized and "?"-terminated. A query that
// survives neither split comes back as a single trimmed element. Empty or
// whitespace-only input yields an empty slice.
//
// This is a lexical heuristic, not NLP. A "how"/"why" clause after a
// mid-string "?" is intentionally left to the multi-"?" rule alone.
func DecomposeQuery(query string) []string {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil
	}

	if strings.Count(trimmed, "?") > 1 {
		var subQueries []string
		for _, fragment := range strings.Split(trimmed, "?") {
			fragment = strings.TrimSpace(fragment)
			if fragment == "" {
				continue
			}
			subQueries = append(subQueries, fragment+"?")
		}
		return subQueries
	}

	parts := conjunctionSplitter.Split(trimmed, -1)
	if len(parts) > 1 {
		var subQueries []string
		for _, part := range parts {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			subQueries = append(subQueries, normalizeFragment(part))
		}
		if len(subQueries) > 1 {
			return subQueries
		}
	}

	return []string{trimmed}
}

func normalizeFragment(fragment string) string {
	runes := []rune(fragment)
	if !unicode.IsUpper(runes[0]) {
		runes[0] = unicode.ToUpper(runes[0])
	}
	normalized := string(runes)
	if !strings.HasSuffix(normalized, "?") {
		normalized += "?"
	}
	return normalized
}
