package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codyseavey/card-resolver/internal/catalog"
	"github.com/codyseavey/card-resolver/internal/matching"
	"github.com/codyseavey/card-resolver/internal/models"
	"github.com/codyseavey/card-resolver/internal/pricing"
)

type stubSource struct {
	products []pricing.Product
	queries  []string
}

func (s *stubSource) Enabled() bool { return true }

func (s *stubSource) SearchProducts(_ context.Context, query string, _ int) ([]pricing.Product, error) {
	s.queries = append(s.queries, query)
	return s.products, nil
}

func (s *stubSource) Product(_ context.Context, id string) (*pricing.Product, error) {
	for _, p := range s.products {
		if string(p.ID) == id {
			return &p, nil
		}
	}
	return nil, models.ErrProductNotFound
}

type failingIdentifier struct{ err error }

func (f failingIdentifier) Resolve(context.Context, models.Game, models.QueryAttributes) (models.MatchResult, error) {
	return models.MatchResult{}, f.err
}

func lorcanaRegistry(t *testing.T) *matching.Registry {
	t.Helper()
	store := catalog.NewMemoryStore()
	_, err := store.Upsert(models.CatalogRecord{
		ID:              "lorcana-1-42",
		Game:            models.GameLorcana,
		Name:            "Elsa",
		FullName:        "Elsa - Spirit of Winter",
		SetCode:         "1",
		SetName:         "The First Chapter",
		CollectorNumber: "42",
		Rarity:          "Legendary",
		ReleasedAt:      "2023-08-18",
	})
	require.NoError(t, err)

	reg, err := matching.NewRegistry(store, matching.Tuning{}, &matching.Coalescer{})
	require.NoError(t, err)
	return reg
}

func TestValuateFullPipeline(t *testing.T) {
	src := &stubSource{products: []pricing.Product{{
		ID:          "9",
		ProductName: "Elsa - Spirit of Winter #42",
		ConsoleName: "Lorcana The First Chapter",
		LoosePrice:  10000,
		GradedPrice: 40000,
	}}}
	svc := NewValuationService(lorcanaRegistry(t), pricing.NewService(nil, src))

	grade := 9.0
	v, err := svc.Valuate(context.Background(), models.GameLorcana, models.QueryAttributes{
		Name:            "Elsa Spirit of Wintr",
		SetCode:         "1",
		CollectorNumber: "042",
	}, &grade)

	require.NoError(t, err)
	require.NotNil(t, v.Identity.Record)
	assert.Equal(t, "lorcana-1-42", v.Identity.Record.ID)
	assert.Equal(t, models.ConfidenceHigh, v.Identity.Confidence.OverallConfidence)

	assert.Equal(t, "Elsa", v.Query.Name)
	assert.Equal(t, "The First Chapter", v.Query.SetName)
	assert.Equal(t, "2023", v.Query.Year)
	assert.Equal(t, []string{"Elsa #42 The First Chapter"}, src.queries)

	require.NotNil(t, v.Pricing)
	assert.Equal(t, models.ConfidenceHigh, v.Pricing.Confidence)
	require.NotNil(t, v.EstimatedValue)
	// 100 + (400 - 100) * 0.65
	assert.Equal(t, 295.0, *v.EstimatedValue)
}

func TestValuateSportsSkipsIdentification(t *testing.T) {
	src := &stubSource{}
	svc := NewValuationService(failingIdentifier{err: errors.New("must not be called")}, pricing.NewService(src, nil))

	v, err := svc.Valuate(context.Background(), models.GameSports, models.QueryAttributes{Name: "Connor Bedard"}, nil)

	require.NoError(t, err)
	assert.Nil(t, v.Identity.Record)
	assert.NotEmpty(t, v.Identity.Confidence.Warnings)
	assert.Equal(t, models.ConfidenceNone, v.Pricing.Confidence)
	assert.Nil(t, v.EstimatedValue)
}

func TestValuatePropagatesErrors(t *testing.T) {
	storeErr := errors.New("database is locked")
	svc := NewValuationService(failingIdentifier{err: storeErr}, pricing.NewService(nil, &stubSource{}))

	_, err := svc.Valuate(context.Background(), models.GameMTG, models.QueryAttributes{Name: "Sol Ring"}, nil)
	assert.ErrorIs(t, err, storeErr)

	svc = NewValuationService(lorcanaRegistry(t), pricing.NewService(nil, nil))
	_, err = svc.Valuate(context.Background(), models.GameLorcana, models.QueryAttributes{Name: "Elsa"}, nil)
	assert.ErrorIs(t, err, models.ErrPricingDisabled)
}

func TestMergeIdentity(t *testing.T) {
	rec := &models.CatalogRecord{
		ID:              "OP01-024_p1",
		Game:            models.GameOnePiece,
		Name:            "Monkey.D.Luffy",
		SetName:         "Romance Dawn",
		CollectorNumber: "24",
		VariantType:     "Parallel",
		BasePrintID:     "OP01-024",
	}
	q := models.QueryAttributes{Name: "Monkey D Lufy", Year: "2022"}

	tests := []struct {
		name     string
		tier     models.ConfidenceTier
		record   *models.CatalogRecord
		expected models.QueryAttributes
	}{
		{
			name:     "low confidence keeps the scan",
			tier:     models.ConfidenceLow,
			record:   rec,
			expected: q,
		},
		{
			name:     "no record keeps the scan",
			tier:     models.ConfidenceLow,
			expected: q,
		},
		{
			name:   "medium confidence overlays canonical fields",
			tier:   models.ConfidenceMedium,
			record: rec,
			expected: models.QueryAttributes{
				CardID:          "OP01-024_p1",
				Name:            "Monkey.D.Luffy",
				SetName:         "Romance Dawn",
				CollectorNumber: "OP01-024",
				Variant:         "Parallel",
				Year:            "2022",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity := models.MatchResult{Record: tt.record, Confidence: models.MatchConfidence{OverallConfidence: tt.tier}}
			assert.Equal(t, tt.expected, MergeIdentity(models.GameOnePiece, q, identity))
		})
	}
}
