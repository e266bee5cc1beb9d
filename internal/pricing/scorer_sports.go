package pricing

import (
	"math"
	"strings"

	"github.com/codyseavey/card-resolver/internal/matching"
	"github.com/codyseavey/card-resolver/internal/models"
)

const (
	sportsSearchLimit = 10
	sportsHighScore   = 30
	sportsMediumScore = 15
)

var sportsConsoleKeywords = []string{
	"hockey", "baseball", "basketball", "football", "soccer",
	"golf", "racing", "wrestling", "boxing", "tennis", "sports",
}

// SportsScorer ranks SportsCardsPro products
type SportsScorer struct{}

func (SportsScorer) BuildQuery(q models.QueryAttributes) string {
	return BuildSportsQuery(q)
}

func (SportsScorer) SearchLimit() int {
	return sportsSearchLimit
}

// Filter keeps everything; sport checks are part of scoring
func (SportsScorer) Filter(products []Product) []Product {
	return products
}

func (SportsScorer) Confidence(score int, fallback bool) models.ConfidenceTier {
	return bandConfidence(score, sportsHighScore, sportsMediumScore, fallback)
}

func (SportsScorer) Related(p Product, q models.QueryAttributes) bool {
	if _, ok := playerScore(p, q.Name); !ok {
		return false
	}
	if q.CollectorNumber != "" && !containsCardNumber(p.ProductName, q.CollectorNumber) {
		return false
	}
	return true
}

func (SportsScorer) Score(p Product, q models.QueryAttributes) int {
	productLower := strings.ToLower(p.ProductName)
	consoleLower := strings.ToLower(p.ConsoleName)
	score := 0

	pts, ok := playerScore(p, q.Name)
	if !ok {
		return Rejected
	}
	score += pts

	if q.Sport != "" {
		pts, ok := sportScore(p, q.Sport)
		if !ok {
			return Rejected
		}
		score += pts
	}

	if q.CollectorNumber != "" {
		if !containsCardNumber(p.ProductName, q.CollectorNumber) {
			return Rejected
		}
		score += 10
	}

	// set and year are soft: catalogs label sets inconsistently
	if q.SetName != "" {
		for _, w := range strings.Fields(strings.ToLower(q.SetName)) {
			if len(w) > 3 && strings.Contains(consoleLower, w) {
				score += 3
			}
		}
	}
	if q.Year != "" {
		year := strings.TrimSpace(strings.Split(q.Year, "-")[0])
		if year != "" && strings.Contains(consoleLower, year) {
			score += 5
		}
	}

	score += sportsVariantScore(productLower, q.Variant)

	if den := serialDenominator(q.SerialNumbering); den != "" && strings.Contains(productLower, "/"+den) {
		score += 15
	}

	return score
}

// playerScore requires every name part for short names and
// min(3, ceil(n/2)) parts for longer ones.
func playerScore(p Product, name string) (int, bool) {
	if strings.TrimSpace(name) == "" {
		return 0, true
	}
	product := normalizePlayer(p.ProductName)

	var parts []string
	for _, part := range strings.Fields(normalizePlayer(name)) {
		if len([]rune(part)) > 1 {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return 0, true
	}

	matched := 0
	for _, part := range parts {
		if strings.Contains(product, part) {
			matched++
		}
	}

	required := len(parts)
	if len(parts) > 2 {
		required = min(3, int(math.Ceil(float64(len(parts))/2)))
	}
	if matched < required {
		return 0, false
	}
	return matched * 5, true
}

func sportScore(p Product, sport string) (int, bool) {
	sport = strings.ToLower(strings.TrimSpace(sport))
	console := strings.ToLower(p.ConsoleName)
	genre := strings.ToLower(p.Genre)

	if sport != "sports" {
		if strings.Contains(console, sport) || strings.Contains(genre, sport) {
			return 25, true
		}
		return 0, false
	}

	if !strings.Contains(genre, "card") {
		return 0, false
	}
	for _, kw := range sportsConsoleKeywords {
		if strings.Contains(console, kw) {
			return 10, true
		}
	}
	return 0, false
}

// containsCardNumber looks for the number as a whole token ("#27", "27"),
// ignoring leading zeros, and again after OCR digit normalization.
func containsCardNumber(productName, number string) bool {
	n := cleanCardNumber(number)
	if n == "" {
		return true
	}
	if productHasNumber(strings.ToLower(productName), n) {
		return true
	}
	return productHasNumber(matching.NormalizeOCR(productName), matching.NormalizeOCR(n))
}

func productHasNumber(product, number string) bool {
	stripped := matching.StripLeadingZeros(number)
	tokens := strings.FieldsFunc(product, func(r rune) bool {
		return r == ' ' || r == '[' || r == ']' || r == '(' || r == ')' || r == ','
	})
	for _, tok := range tokens {
		tok = strings.TrimPrefix(tok, "#")
		// "#27/99" carries the serial run after the slash
		if i := strings.Index(tok, "/"); i >= 0 {
			tok = tok[:i]
		}
		if tok == "" {
			continue
		}
		if tok == number || matching.StripLeadingZeros(tok) == stripped {
			return true
		}
	}
	return false
}

func sportsVariantScore(productLower, variant string) int {
	_, hasMarker := bracketVariant(productLower)
	variant = strings.ToLower(strings.TrimSpace(variant))

	switch {
	case variant == "":
		if !hasMarker {
			return 5
		}
		return 0
	case isBaseVariant(variant):
		if !hasMarker {
			return 25
		}
		return -10
	case strings.Contains(productLower, variant):
		return 20
	}

	partial := 0
	for _, w := range strings.Fields(strings.ReplaceAll(variant, "_", " ")) {
		if len(w) > 2 && strings.Contains(productLower, w) {
			partial += 5
		}
	}
	if partial > 0 {
		return partial
	}
	if hasMarker {
		return -10
	}
	return 0
}
