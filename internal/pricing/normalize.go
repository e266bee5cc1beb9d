package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/codyseavey/card-resolver/internal/models"
)

// SchemeMapping ties one grading scheme's tiers to catalog price fields
type SchemeMapping struct {
	Scheme models.GradingScheme
	Tiers  map[models.GradeTier]func(Product) int64
}

// PrimaryScheme fills NormalizedPriceSet.ByTier
const PrimaryScheme = models.SchemePSA

// SchemeMappings is how PriceCharting's field names map onto grade tiers.
// A new grading company is a new row here.
var SchemeMappings = []SchemeMapping{
	{
		Scheme: models.SchemePSA,
		Tiers: map[models.GradeTier]func(Product) int64{
			models.Tier7:   func(p Product) int64 { return p.CIBPrice },
			models.Tier8:   func(p Product) int64 { return p.NewPrice },
			models.Tier9:   func(p Product) int64 { return p.GradedPrice },
			models.Tier9_5: func(p Product) int64 { return p.BoxOnlyPrice },
			models.Tier10:  func(p Product) int64 { return p.ManualOnlyPrice },
		},
	},
	{
		Scheme: models.SchemeBGS,
		Tiers: map[models.GradeTier]func(Product) int64{
			models.Tier9:   func(p Product) int64 { return p.GradedPrice },
			models.Tier9_5: func(p Product) int64 { return p.BoxOnlyPrice },
			models.Tier10:  func(p Product) int64 { return p.BGS10Price },
		},
	},
	{
		Scheme: models.SchemeSGC,
		Tiers: map[models.GradeTier]func(Product) int64{
			models.Tier9:  func(p Product) int64 { return p.GradedPrice },
			models.Tier10: func(p Product) int64 { return p.Condition18Price },
		},
	},
	{
		Scheme: models.SchemeCGC,
		Tiers: map[models.GradeTier]func(Product) int64{
			models.Tier9:  func(p Product) int64 { return p.GradedPrice },
			models.Tier10: func(p Product) int64 { return p.Condition17Price },
		},
	},
}

// penniesToDollars returns nil for a zero or negative amount
func penniesToDollars(pennies int64) *float64 {
	if pennies <= 0 {
		return nil
	}
	v, _ := decimal.New(pennies, -2).Float64()
	return &v
}

// NormalizePrices converts a catalog product into currency units. Missing
// prices are left out, never reported as 0.
func NormalizePrices(p Product) models.NormalizedPriceSet {
	set := models.NormalizedPriceSet{
		Raw:         penniesToDollars(p.LoosePrice),
		ByTier:      map[models.GradeTier]float64{},
		Schemes:     map[models.GradingScheme]map[models.GradeTier]float64{},
		ProductID:   string(p.ID),
		ProductName: p.ProductName,
		SetName:     p.ConsoleName,
		SalesVolume: p.SalesVolume,
		LastUpdated: time.Now().UTC(),
	}

	for _, m := range SchemeMappings {
		tiers := map[models.GradeTier]float64{}
		for tier, field := range m.Tiers {
			if v := penniesToDollars(field(p)); v != nil {
				tiers[tier] = *v
			}
		}
		if len(tiers) == 0 {
			continue
		}
		set.Schemes[m.Scheme] = tiers
		if m.Scheme == PrimaryScheme {
			set.ByTier = tiers
		}
	}
	return set
}

// unpricedSet identifies a product without any prices
func unpricedSet(p Product) models.NormalizedPriceSet {
	return models.NormalizedPriceSet{
		ByTier:      map[models.GradeTier]float64{},
		Schemes:     map[models.GradingScheme]map[models.GradeTier]float64{},
		ProductID:   string(p.ID),
		ProductName: p.ProductName,
		SetName:     p.ConsoleName,
		SalesVolume: p.SalesVolume,
		LastUpdated: time.Now().UTC(),
	}
}
