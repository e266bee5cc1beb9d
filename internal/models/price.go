package models

import (
	"strconv"
	"strings"
	"time"
)

// GradeTier is a graded-condition bucket shared by every grading scheme
type GradeTier string

const (
	Tier7   GradeTier = "7"
	Tier8   GradeTier = "8"
	Tier9   GradeTier = "9"
	Tier9_5 GradeTier = "9.5"
	Tier10  GradeTier = "10"
)

// AllGradeTiers returns the tier vocabulary in ascending order
func AllGradeTiers() []GradeTier {
	return []GradeTier{Tier7, Tier8, Tier9, Tier9_5, Tier10}
}

// Value returns the tier as a number (9.5 for "9.5")
func (t GradeTier) Value() float64 {
	v, err := strconv.ParseFloat(string(t), 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseGradeTier accepts "9", "9.0", "PSA 9", "9.5"
func ParseGradeTier(s string) (GradeTier, bool) {
	s = strings.TrimSpace(strings.ToUpper(s))
	for _, prefix := range []string{"PSA", "BGS", "SGC", "CGC"} {
		s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "", false
	}
	for _, t := range AllGradeTiers() {
		if t.Value() == v {
			return t, true
		}
	}
	return "", false
}

// GradingScheme is a grading company whose tier prices are tracked separately
type GradingScheme string

const (
	SchemePSA GradingScheme = "psa"
	SchemeBGS GradingScheme = "bgs"
	SchemeSGC GradingScheme = "sgc"
	SchemeCGC GradingScheme = "cgc"
)

// AllGradingSchemes returns all supported grading schemes
func AllGradingSchemes() []GradingScheme {
	return []GradingScheme{SchemePSA, SchemeBGS, SchemeSGC, SchemeCGC}
}

// NormalizedPriceSet is one pricing-catalog product's prices in currency units.
// A missing price is nil/absent, never 0.
type NormalizedPriceSet struct {
	Raw *float64 `json:"raw"`
	// ByTier holds the primary scheme (PSA) prices
	ByTier  map[GradeTier]float64                   `json:"by_tier"`
	Schemes map[GradingScheme]map[GradeTier]float64 `json:"schemes"`

	ProductID      string    `json:"product_id"`
	ProductName    string    `json:"product_name"`
	SetName        string    `json:"set_name"`
	SalesVolume    string    `json:"sales_volume,omitempty"`
	LastUpdated    time.Time `json:"last_updated"`
	IsFallback     bool      `json:"is_fallback"`
	ExactMatchName string    `json:"exact_match_name,omitempty"`
}

// HasAnyPrice reports whether at least one non-zero price is present
func (p *NormalizedPriceSet) HasAnyPrice() bool {
	if p == nil {
		return false
	}
	if p.Raw != nil && *p.Raw > 0 {
		return true
	}
	for _, v := range p.ByTier {
		if v > 0 {
			return true
		}
	}
	for _, tiers := range p.Schemes {
		for _, v := range tiers {
			if v > 0 {
				return true
			}
		}
	}
	return false
}

// TierPrice returns the primary-scheme price for a tier
func (p *NormalizedPriceSet) TierPrice(t GradeTier) (float64, bool) {
	if p == nil || p.ByTier == nil {
		return 0, false
	}
	v, ok := p.ByTier[t]
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}

// PriceMatch is the result of matching a query to a priced product
type PriceMatch struct {
	Prices     *NormalizedPriceSet `json:"prices"`
	Confidence ConfidenceTier      `json:"match_confidence"`
	QueryUsed  string              `json:"query_used"`
}

// Parallel is one selectable variant of a card in the pricing catalog
type Parallel struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SetName  string `json:"set_name"`
	HasPrice bool   `json:"has_price"`
}

// Valuation is the full identify -> price -> estimate outcome for one card
type Valuation struct {
	Identity       MatchResult     `json:"identity"`
	Query          QueryAttributes `json:"query"`
	Pricing        *PriceMatch     `json:"pricing"`
	Grade          *float64        `json:"grade,omitempty"`
	EstimatedValue *float64        `json:"estimated_value"`
}
