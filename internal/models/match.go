package models

// ConfidenceTier is the coarse trust label attached to a match
type ConfidenceTier string

const (
	ConfidenceHigh   ConfidenceTier = "high"
	ConfidenceMedium ConfidenceTier = "medium"
	ConfidenceLow    ConfidenceTier = "low"
	// ConfidenceNone is only used by pricing when no product was found at all
	ConfidenceNone ConfidenceTier = "none"
)

// Rank orders tiers so callers can compare them (none < low < medium < high).
func (c ConfidenceTier) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// MatchField names a query attribute that can be compared against a record
type MatchField string

const (
	FieldIdentifier MatchField = "identifier"
	FieldSetCode    MatchField = "set_code"
	FieldSetName    MatchField = "set_name"
	FieldNumber     MatchField = "number"
	FieldName       MatchField = "name"
	FieldRarity     MatchField = "rarity"
)

// AllMatchFields returns every comparable field in display order
func AllMatchFields() []MatchField {
	return []MatchField{
		FieldIdentifier,
		FieldSetCode,
		FieldSetName,
		FieldNumber,
		FieldName,
		FieldRarity,
	}
}

// FieldMatch is the per-field outcome of comparing a query with a candidate
type FieldMatch struct {
	Field   MatchField `json:"field"`
	Score   float64    `json:"score"`
	Matched bool       `json:"matched"`
}

// MatchConfidence explains how trustworthy a MatchResult is
type MatchConfidence struct {
	Fields            []FieldMatch   `json:"fields"`
	OverallConfidence ConfidenceTier `json:"overall_confidence"`
	MatchedFeatures   int            `json:"matched_features"`
	TotalFeatures     int            `json:"total_features"`
	Warnings          []string       `json:"warnings"`
}

// Field returns the outcome for f, if it was compared
func (c MatchConfidence) Field(f MatchField) (FieldMatch, bool) {
	for _, fm := range c.Fields {
		if fm.Field == f {
			return fm, true
		}
	}
	return FieldMatch{}, false
}

// Matched reports whether f was compared and passed its threshold
func (c MatchConfidence) Matched(f MatchField) bool {
	fm, ok := c.Field(f)
	return ok && fm.Matched
}

// MatchResult is the output of identity resolution
type MatchResult struct {
	Record     *CatalogRecord  `json:"record"`
	Score      float64         `json:"score"`
	Confidence MatchConfidence `json:"confidence"`
}

// NoMatch builds the result returned when nothing could be found.
// A nil record always carries low confidence and at least one warning.
func NoMatch(warnings ...string) MatchResult {
	if len(warnings) == 0 {
		warnings = []string{"no matching records found"}
	}
	return MatchResult{
		Record: nil,
		Score:  0,
		Confidence: MatchConfidence{
			Fields:            []FieldMatch{},
			OverallConfidence: ConfidenceLow,
			Warnings:          warnings,
		},
	}
}
