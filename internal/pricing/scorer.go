package pricing

import (
	"github.com/codyseavey/card-resolver/internal/models"
)

// Rejected is the score of a product that failed a hard rule
const Rejected = -1

// Scorer turns query attributes into a catalog search and ranks the products
// it returns. One Scorer per pricing catalog.
type Scorer interface {
	// BuildQuery returns the search string; empty means nothing to search for
	BuildQuery(q models.QueryAttributes) string
	// SearchLimit bounds the catalog search
	SearchLimit() int
	// Filter drops products from the wrong catalog section before scoring
	Filter(products []Product) []Product
	// Score returns Rejected or a non-negative score
	Score(p Product, q models.QueryAttributes) int
	// Related reports whether p is the same card as q, ignoring the variant
	Related(p Product, q models.QueryAttributes) bool
	Confidence(score int, fallback bool) models.ConfidenceTier
}

// bandConfidence maps a score to a tier. Fallback products are never the
// attribute-exact card, so they are always low.
func bandConfidence(score, high, medium int, fallback bool) models.ConfidenceTier {
	switch {
	case fallback:
		return models.ConfidenceLow
	case score >= high:
		return models.ConfidenceHigh
	case score >= medium:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}
