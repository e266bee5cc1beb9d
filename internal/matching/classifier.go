package matching

import (
	"fmt"
	"sort"

	"github.com/codyseavey/card-resolver/internal/models"
)

// CompareMode selects how a query value is compared to a record value
type CompareMode int

const (
	// CompareSimilarity uses Similarity
	CompareSimilarity CompareMode = iota
	// CompareExact scores 1 on equality and 0 otherwise
	CompareExact
)

// FieldSpec describes how one query attribute is weighed against a record.
type FieldSpec struct {
	Field     models.MatchField
	Label     string
	Weight    float64
	Threshold float64
	Mode      CompareMode

	// Query extracts the normalized query value; "" means the attribute is absent
	Query func(q models.QueryAttributes, n Normalizer) string
	// Candidate extracts one or more record values; the best one wins
	Candidate func(r models.CatalogRecord, n Normalizer) []string
	// SkipIfCandidateEmpty leaves the field out when the record has no value
	SkipIfCandidateEmpty bool
}

func (f FieldSpec) compare(queryValue string, candidates []string) float64 {
	best := 0.0
	for _, c := range candidates {
		var s float64
		switch f.Mode {
		case CompareExact:
			if c != "" && c == queryValue {
				s = 1
			}
		default:
			s = Similarity(queryValue, c)
		}
		if s > best {
			best = s
		}
	}
	return best
}

// Classify scores every candidate against the query and returns them best
// first. Candidates that tie keep their retrieval order.
func Classify(candidates []models.CatalogRecord, q models.QueryAttributes, cfg GameConfig) []models.MatchResult {
	results := make([]models.MatchResult, 0, len(candidates))

	for i := range candidates {
		rec := candidates[i]
		score, conf := scoreCandidate(rec, q, cfg)
		results = append(results, models.MatchResult{
			Record:     &rec,
			Score:      score,
			Confidence: conf,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Confidence.MatchedFeatures > results[j].Confidence.MatchedFeatures
	})

	return results
}

func scoreCandidate(rec models.CatalogRecord, q models.QueryAttributes, cfg GameConfig) (float64, models.MatchConfidence) {
	conf := models.MatchConfidence{
		Fields:   []models.FieldMatch{},
		Warnings: []string{},
	}

	var score, factors float64
	for _, spec := range cfg.Fields {
		qv := spec.Query(q, cfg.Normalizer)
		if qv == "" {
			continue
		}
		cvs := spec.Candidate(rec, cfg.Normalizer)
		if spec.SkipIfCandidateEmpty && allEmpty(cvs) {
			continue
		}

		s := spec.compare(qv, cvs)
		matched := s >= spec.Threshold

		score += s * spec.Weight
		factors += spec.Weight
		conf.TotalFeatures++
		if matched {
			conf.MatchedFeatures++
		}
		conf.Fields = append(conf.Fields, models.FieldMatch{Field: spec.Field, Score: s, Matched: matched})

		if s < cfg.WarnBelow {
			conf.Warnings = append(conf.Warnings, fmt.Sprintf("%s mismatch: %q vs %q", spec.Label, qv, firstNonEmpty(cvs)))
		}
	}

	final := 0.0
	if factors > 0 {
		final = score / factors
	}

	conf.OverallConfidence = cfg.tier(conf)
	return final, conf
}

// tier requires two independently weighted fields for high confidence;
// an identifier match on its own is medium.
func (cfg GameConfig) tier(c models.MatchConfidence) models.ConfidenceTier {
	id := c.Matched(models.FieldIdentifier)
	set := c.Matched(models.FieldSetCode)
	num := c.Matched(models.FieldNumber)
	name := c.Matched(models.FieldName)

	switch {
	case id && c.MatchedFeatures >= 2:
		return models.ConfidenceHigh
	case set && num:
		return models.ConfidenceHigh
	case num && name:
		return models.ConfidenceHigh
	case c.MatchedFeatures >= 2:
		return models.ConfidenceMedium
	case id:
		return models.ConfidenceMedium
	case cfg.MediumRatio > 0 && c.TotalFeatures > 0 &&
		float64(c.MatchedFeatures)/float64(c.TotalFeatures) >= cfg.MediumRatio:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

func allEmpty(values []string) bool {
	for _, v := range values {
		if v != "" {
			return false
		}
	}
	return true
}

func firstNonEmpty(values []string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
