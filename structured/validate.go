package structured

import (
	"fmt"
	"strings"
)

// dangerousKeywords are statement verbs that mutate data or schema. Any
// occurrence anywhere in a candidate statement rejects it; the executor is
// strictly read-only.
var dangerousKeywords = []string{
	"drop", "delete", "truncate", "alter", "create", "insert", "update",
}

// ValidateStatement checks that a generated SQL statement is a read-only
// SELECT and contains no mutating keywords. It returns a descriptive error
// for the first violation found, or nil when the statement is safe to run.
func ValidateStatement(sql string) error {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return fmt.Errorf("empty sql statement")
	}

	lower := strings.ToLower(trimmed)

	if !strings.HasPrefix(lower, "select") {
		return fmt.Errorf("only SELECT queries are allowed")
	}

	for _, keyword := range dangerousKeywords {
		if containsWord(lower, keyword) {
			return fmt.Errorf("query contains potentially dangerous keyword: %s", keyword)
		}
	}

	return nil
}

// containsWord reports whether s contains word with non-identifier characters
// (or string boundaries) on both sides, so column names like "created_at" do
// not trip the "create" check.
func containsWord(s, word string) bool {
	for start := 0; ; {
		idx := strings.Index(s[start:], word)
		if idx < 0 {
			return false
		}

		idx += start

		before := idx == 0 || !isIdentChar(s[idx-1])
		afterIdx := idx + len(word)
		after := afterIdx >= len(s) || !isIdentChar(s[afterIdx])

		if before && after {
			return true
		}

		start = idx + len(word)
	}
}

func isIdentChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

// StripCodeFences removes a surrounding markdown code fence (```sql ... ```)
// from model output, returning the inner statement trimmed of whitespace.
func StripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		// Drop the language tag line (e.g. "sql").
		trimmed = trimmed[idx+1:]
	}

	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}

	return strings.TrimSpace(trimmed)
}
