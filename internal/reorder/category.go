package reorder

import (
	"strings"
	"unicode/utf8"
)

const UncategorizedLabel = "Uncategorized"

// Category labels arrive as free text from product forms; the synonym table
// collapses the spellings that drifted between entry screens.
var categorySynonyms = map[string]string{
	"Electronic": "Electronics",
}

// NormalizeCategory canonicalizes a free-text category label for grouping
// and reporting. It never rewrites stored data, only derived views. Empty
// input normalizes to "Uncategorized".
func NormalizeCategory(category string) string {
	trimmed := strings.TrimSpace(category)
	if trimmed == "" {
		return UncategorizedLabel
	}

	first, size := utf8.DecodeRuneInString(trimmed)
	canonical := strings.ToUpper(string(first)) + strings.ToLower(trimmed[size:])
	if synonym, ok := categorySynonyms[canonical]; ok {
		return synonym
	}
	return canonical
}

// CountByCategory groups a snapshot by normalized category label.
func CountByCategory(items []Item) map[string]int {
	counts := make(map[string]int, len(items))
	for _, item := range items {
		counts[NormalizeCategory(item.Category)]++
	}
	return counts
}
