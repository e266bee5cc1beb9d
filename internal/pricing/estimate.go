package pricing

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/codyseavey/card-resolver/internal/models"
)

// Business-tunable valuation constants. The fallbacks are heuristics from
// the pricing team with no upper bound; change them only with product input.
const (
	// RawOnlyMultiplier applies when no graded reference price exists
	RawOnlyMultiplier = 3.0
	// GradedOnlyDiscount applies when a graded price exists but no raw price
	GradedOnlyDiscount = 0.70
)

// gradeMultipliers is how far between raw and the reference grade price the
// estimate lands. Must stay non-decreasing in grade.
var gradeMultipliers = []struct {
	minGrade   float64
	multiplier float64
}{
	{9.5, 0.70},
	{9, 0.65},
	{8, 0.55},
	{7, 0.45},
}

const defaultGradeMultiplier = 0.35

func gradeMultiplier(grade float64) float64 {
	for _, gm := range gradeMultipliers {
		if grade >= gm.minGrade {
			return gm.multiplier
		}
	}
	return defaultGradeMultiplier
}

// referencePrice is the primary-scheme price at round(grade), falling back
// to 9.5 for grades of 9 and above.
func referencePrice(prices *models.NormalizedPriceSet, grade float64) (float64, bool) {
	rounded := math.Round(grade)
	if tier, ok := models.ParseGradeTier(decimal.NewFromFloat(rounded).String()); ok {
		if v, ok := prices.TierPrice(tier); ok {
			return v, true
		}
	}
	if grade >= 9 {
		return prices.TierPrice(models.Tier9_5)
	}
	return 0, false
}

// EstimateValueAtGrade estimates a card's value at a grade from its raw and
// graded prices. Returns nil when neither is known.
func EstimateValueAtGrade(prices *models.NormalizedPriceSet, grade float64) *float64 {
	if prices == nil {
		return nil
	}
	var raw *float64
	if prices.Raw != nil && *prices.Raw > 0 {
		raw = prices.Raw
	}
	ref, hasRef := referencePrice(prices, grade)

	var est decimal.Decimal
	switch {
	case !hasRef && raw == nil:
		return nil
	case !hasRef:
		est = decimal.NewFromFloat(*raw).Mul(decimal.NewFromFloat(RawOnlyMultiplier))
	case raw == nil:
		est = decimal.NewFromFloat(ref).Mul(decimal.NewFromFloat(GradedOnlyDiscount))
	default:
		r := decimal.NewFromFloat(*raw)
		premium := decimal.NewFromFloat(ref).Sub(r)
		est = r.Add(premium.Mul(decimal.NewFromFloat(gradeMultiplier(grade))))
	}

	v, _ := est.Round(2).Float64()
	return &v
}
