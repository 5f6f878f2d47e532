package fuzzy

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Ratio is a normalized edit-distance similarity between a and b in [0,100],
// computed case-insensitively. Identical strings score 100.
func Ratio(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	la := len([]rune(a))
	lb := len([]rune(b))
	if la == 0 && lb == 0 {
		return 100
	}
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	dist := levenshtein.ComputeDistance(a, b)
	return float64((maxLen-dist)*100) / float64(maxLen)
}

// Match returns the candidate name most similar to the query and its ratio.
// Ties resolve to the first occurrence in names. An empty candidate list
// scores 0.
func Match(query string, names []string) (string, float64) {
	bestName := ""
	bestRatio := -1.0
	for _, name := range names {
		if r := Ratio(query, name); r > bestRatio {
			bestRatio = r
			bestName = name
		}
	}
	if bestRatio < 0 {
		return "", 0
	}
	return bestName, bestRatio
}
