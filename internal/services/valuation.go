package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/codyseavey/card-resolver/internal/models"
	"github.com/codyseavey/card-resolver/internal/pricing"
)

// Identifier resolves query attributes to a reference catalog record
type Identifier interface {
	Resolve(ctx context.Context, game models.Game, q models.QueryAttributes) (models.MatchResult, error)
}

// PriceMatcher prices query attributes against a pricing catalog
type PriceMatcher interface {
	MatchAndPrice(ctx context.Context, game models.Game, q models.QueryAttributes) (*models.PriceMatch, error)
}

// ValuationService runs identify -> merge -> price -> estimate for one card
type ValuationService struct {
	identifier Identifier
	pricer     PriceMatcher
}

func NewValuationService(identifier Identifier, pricer PriceMatcher) *ValuationService {
	return &ValuationService{
		identifier: identifier,
		pricer:     pricer,
	}
}

// Valuate identifies the card, prices it with the canonical attributes when
// the identification is trustworthy, and estimates the value at grade.
func (s *ValuationService) Valuate(ctx context.Context, game models.Game, q models.QueryAttributes, grade *float64) (*models.Valuation, error) {
	q = q.Trimmed()
	v := &models.Valuation{Query: q, Grade: grade}

	if game == models.GameSports {
		// sports cards have no reference catalog; price the raw attributes
		v.Identity = models.NoMatch("sports cards are priced without catalog identification")
	} else {
		identity, err := s.identifier.Resolve(ctx, game, q)
		if err != nil {
			return nil, fmt.Errorf("identify: %w", err)
		}
		v.Identity = identity
		v.Query = MergeIdentity(game, q, identity)
	}

	match, err := s.pricer.MatchAndPrice(ctx, game, v.Query)
	if err != nil {
		return nil, fmt.Errorf("price: %w", err)
	}
	v.Pricing = match

	if grade != nil && match.Prices != nil {
		v.EstimatedValue = pricing.EstimateValueAtGrade(match.Prices, *grade)
	}

	logrus.WithFields(logrus.Fields{
		"component":  "valuation",
		"game":       game,
		"identity":   v.Identity.Confidence.OverallConfidence,
		"pricing":    match.Confidence,
		"query_used": match.QueryUsed,
	}).Debug("valuation complete")

	return v, nil
}

// MergeIdentity overlays the catalog record's canonical attributes on q.
// Only high and medium matches are trusted; the scan's variant, year,
// serial and sport always survive.
func MergeIdentity(game models.Game, q models.QueryAttributes, identity models.MatchResult) models.QueryAttributes {
	rec := identity.Record
	if rec == nil || identity.Confidence.OverallConfidence.Rank() < models.ConfidenceMedium.Rank() {
		return q
	}

	q.CardID = rec.ID
	q.Name = rec.Name
	if rec.SetName != "" {
		q.SetName = rec.SetName
	}
	if rec.SetCode != "" {
		q.SetCode = rec.SetCode
	}

	switch {
	case game == models.GameOnePiece:
		// One Piece products are listed by card id ("OP01-024")
		q.CollectorNumber = rec.ID
		if rec.BasePrintID != "" {
			q.CollectorNumber = rec.BasePrintID
		}
	case rec.CollectorNumber != "":
		q.CollectorNumber = rec.CollectorNumber
	}

	if rec.Rarity != "" {
		q.Rarity = rec.Rarity
	}
	if q.Variant == "" && rec.VariantType != "" {
		q.Variant = rec.VariantType
	}
	if q.Year == "" && len(rec.ReleasedAt) >= 4 {
		q.Year = rec.ReleasedAt[:4]
	}
	return q
}
