package retrieval

import (
	"sort"
	"strings"
)

// Normalize canonicalizes raw symptom labels: trim, lowercase, drop blanks,
// dedupe, sort. Semantically identical inputs always produce the same
// slice, which is what makes cache keys stable. Total: never errors, empty
// input yields an empty slice.
func Normalize(symptoms []string) []string {
	seen := make(map[string]struct{}, len(symptoms))
	out := make([]string, 0, len(symptoms))

	for _, s := range symptoms {
		sym := strings.ToLower(strings.TrimSpace(s))
		if sym == "" {
			continue
		}
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}

	sort.Strings(out)
	return out
}
