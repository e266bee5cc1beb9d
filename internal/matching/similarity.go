package matching

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// foldText puts a string into the form used by every comparison:
// NFC-normalized, case-folded, trimmed.
func foldText(s string) string {
	// cases.Caser is stateful, so one per call
	return strings.TrimSpace(cases.Fold().String(norm.NFC.String(s)))
}

// Similarity scores how alike two strings are, in [0, 1].
//
// Identical strings (after folding) score 1.0, a string contained in the
// other scores 0.8, and anything else scores by normalized Levenshtein
// distance over runes.
func Similarity(a, b string) float64 {
	a, b = foldText(a), foldText(b)

	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 0.8
	}

	ra, rb := []rune(a), []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}

	dist := levenshtein(ra, rb)
	return float64(maxLen-dist) / float64(maxLen)
}

// levenshtein computes edit distance with two rolling rows
func levenshtein(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
