package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codyseavey/card-resolver/internal/models"
)

func TestClassifySetAndNumberIsHigh(t *testing.T) {
	cands := []models.CatalogRecord{
		{ID: "a", Game: models.GameMTG, Name: "Lightning Bolt", SetCode: "mkm", CollectorNumber: "7"},
	}
	q := models.QueryAttributes{Name: "Lightning Bolt", SetCode: "MKM", CollectorNumber: "007"}

	results := Classify(cands, q, MTGConfig())

	require.Len(t, results, 1)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.Equal(t, models.ConfidenceHigh, results[0].Confidence.OverallConfidence)
	assert.Equal(t, 3, results[0].Confidence.MatchedFeatures)
	assert.Equal(t, 3, results[0].Confidence.TotalFeatures)
	assert.Empty(t, results[0].Confidence.Warnings)
}

func TestClassifyIdentifierAloneIsMedium(t *testing.T) {
	cands := []models.CatalogRecord{
		{ID: "OP01-001", Game: models.GameOnePiece, Name: "Roronoa Zoro"},
	}

	results := Classify(cands, models.QueryAttributes{CardID: "op01-001"}, OnePieceConfig())

	require.Len(t, results, 1)
	assert.True(t, results[0].Confidence.Matched(models.FieldIdentifier))
	assert.Equal(t, models.ConfidenceMedium, results[0].Confidence.OverallConfidence)
}

func TestClassifyIdentifierWithNameIsHigh(t *testing.T) {
	cands := []models.CatalogRecord{
		{ID: "OP01-001", Game: models.GameOnePiece, Name: "Roronoa Zoro"},
	}

	results := Classify(cands, models.QueryAttributes{CardID: "OP01-001", Name: "Roronoa Zoro"}, OnePieceConfig())

	require.Len(t, results, 1)
	assert.Equal(t, models.ConfidenceHigh, results[0].Confidence.OverallConfidence)
}

func TestClassifyWarnsOnMismatch(t *testing.T) {
	cands := []models.CatalogRecord{
		{ID: "a", Game: models.GameMTG, Name: "Counterspell", SetCode: "mkm", CollectorNumber: "7"},
	}
	q := models.QueryAttributes{Name: "Lightning Bolt", SetCode: "one", CollectorNumber: "7"}

	results := Classify(cands, q, MTGConfig())

	require.Len(t, results, 1)
	assert.Contains(t, results[0].Confidence.Warnings, `Set code mismatch: "one" vs "mkm"`)
	assert.Contains(t, results[0].Confidence.Warnings, `Name mismatch: "Lightning Bolt" vs "Counterspell"`)
	assert.Equal(t, models.ConfidenceLow, results[0].Confidence.OverallConfidence)
}

func TestClassifyNoComparableFields(t *testing.T) {
	cands := []models.CatalogRecord{{ID: "a", Game: models.GameMTG, Name: "Island"}}

	results := Classify(cands, models.QueryAttributes{Rarity: "common"}, MTGConfig())

	require.Len(t, results, 1)
	assert.Equal(t, 0.0, results[0].Score)
	assert.Equal(t, 0, results[0].Confidence.TotalFeatures)
	assert.Equal(t, models.ConfidenceLow, results[0].Confidence.OverallConfidence)
}

func TestClassifyOrdersByScoreThenStoreOrder(t *testing.T) {
	cands := []models.CatalogRecord{
		{ID: "first", Game: models.GameMTG, Name: "Shock", SetName: "Alpha"},
		{ID: "best", Game: models.GameMTG, Name: "Lightning Bolt", SetName: "Alpha"},
		{ID: "second", Game: models.GameMTG, Name: "Shock", SetName: "Alpha"},
	}

	results := Classify(cands, models.QueryAttributes{Name: "Lightning Bolt"}, MTGConfig())

	require.Len(t, results, 3)
	assert.Equal(t, "best", results[0].Record.ID)
	assert.Equal(t, "first", results[1].Record.ID)
	assert.Equal(t, "second", results[2].Record.ID)
}

func TestClassifyBreaksScoreTiesByMatchedFields(t *testing.T) {
	// both score 1.0: the first has no set to compare, the second matches it
	cands := []models.CatalogRecord{
		{ID: "OP01-001", Game: models.GameOnePiece, Name: "Roronoa Zoro"},
		{ID: "ST01-001", Game: models.GameOnePiece, Name: "Roronoa Zoro", SetName: "Romance Dawn"},
	}

	results := Classify(cands, models.QueryAttributes{Name: "Roronoa Zoro", SetName: "Romance Dawn"}, OnePieceConfig())

	require.Len(t, results, 2)
	assert.Equal(t, results[0].Score, results[1].Score)
	assert.Equal(t, "ST01-001", results[0].Record.ID)
	assert.Equal(t, 2, results[0].Confidence.MatchedFeatures)
	assert.Equal(t, "OP01-001", results[1].Record.ID)
	assert.Equal(t, 1, results[1].Confidence.MatchedFeatures)
}

func TestClassifySkipsSetNameWhenCandidateHasNone(t *testing.T) {
	cands := []models.CatalogRecord{{ID: "OP01-001", Game: models.GameOnePiece, Name: "Roronoa Zoro"}}

	results := Classify(cands, models.QueryAttributes{Name: "Roronoa Zoro", SetName: "Romance Dawn"}, OnePieceConfig())

	require.Len(t, results, 1)
	_, compared := results[0].Confidence.Field(models.FieldSetName)
	assert.False(t, compared)
	assert.Equal(t, 1, results[0].Confidence.TotalFeatures)
	// 1/1 fields matched clears the 0.7 ratio
	assert.Equal(t, models.ConfidenceMedium, results[0].Confidence.OverallConfidence)
}

func TestClassifyLorcanaUsesFullName(t *testing.T) {
	cands := []models.CatalogRecord{
		{ID: "tfc-42", Game: models.GameLorcana, Name: "Elsa", FullName: "Elsa - Spirit of Winter"},
	}

	results := Classify(cands, models.QueryAttributes{Name: "Elsa - Spirit of Winter"}, LorcanaConfig())

	require.Len(t, results, 1)
	fm, ok := results[0].Confidence.Field(models.FieldName)
	require.True(t, ok)
	assert.Equal(t, 1.0, fm.Score)
}

func TestClassifyHighAlwaysHasTwoMatchedFields(t *testing.T) {
	cands := []models.CatalogRecord{
		{ID: "OP01-001", Game: models.GameOnePiece, Name: "Roronoa Zoro", SetName: "Romance Dawn"},
		{ID: "a", Game: models.GameMTG, Name: "Lightning Bolt", SetCode: "mkm", CollectorNumber: "7", SetName: "Murders"},
		{ID: "base1-4", Game: models.GamePokemon, Name: "Charizard", SetName: "Base", CollectorNumber: "4", SetTotal: 102, Rarity: "Rare Holo"},
	}
	queries := []models.QueryAttributes{
		{CardID: "OP01-001"},
		{Name: "Roronoa Zoro"},
		{CollectorNumber: "7"},
		{SetCode: "mkm"},
		{Name: "Charizard", CollectorNumber: "4/102"},
		{Name: "Lightning Bolt", SetName: "Murders"},
	}

	for _, cfg := range []GameConfig{MTGConfig(), LorcanaConfig(), OnePieceConfig(), PokemonConfig()} {
		for _, q := range queries {
			for _, r := range Classify(cands, q, cfg) {
				if r.Confidence.OverallConfidence == models.ConfidenceHigh {
					assert.GreaterOrEqual(t, r.Confidence.MatchedFeatures, 2, "game %s query %+v", cfg.Game, q)
				}
			}
		}
	}
}
