package matching

import (
	"fmt"

	"github.com/codyseavey/card-resolver/internal/models"
)

// GameConfig is the data that makes the generic resolver behave like one
// game's matcher.
type GameConfig struct {
	Game       models.Game
	Normalizer Normalizer
	Fields     []FieldSpec

	// WarnBelow adds a mismatch warning for any field scoring below it
	WarnBelow float64
	// MediumRatio grants medium confidence when this share of compared
	// fields matched; 0 disables it
	MediumRatio float64
	// MinScore demotes a best candidate below it to low confidence; 0 disables it
	MinScore float64

	DirectByID              bool
	DirectBySetNumber       bool
	NumberFallbackOnSetMiss bool
	IncludeVariants         bool
	SearchLimit             int
}

// Field returns the spec for f, if the game compares it
func (cfg GameConfig) Field(f models.MatchField) (FieldSpec, bool) {
	for _, spec := range cfg.Fields {
		if spec.Field == f {
			return spec, true
		}
	}
	return FieldSpec{}, false
}

// ConfigFor returns the built-in configuration for a catalog game
func ConfigFor(game models.Game) (GameConfig, error) {
	switch game {
	case models.GameMTG:
		return MTGConfig(), nil
	case models.GameLorcana:
		return LorcanaConfig(), nil
	case models.GameOnePiece:
		return OnePieceConfig(), nil
	case models.GamePokemon:
		return PokemonConfig(), nil
	default:
		return GameConfig{}, fmt.Errorf("%w: %q", models.ErrUnknownGame, game)
	}
}

// Field extractors shared by the game configs

func queryName(q models.QueryAttributes, _ Normalizer) string    { return q.Name }
func querySetName(q models.QueryAttributes, _ Normalizer) string { return q.SetName }
func queryRarity(q models.QueryAttributes, _ Normalizer) string  { return q.Rarity }

func querySetCode(q models.QueryAttributes, n Normalizer) string {
	if q.SetCode == "" {
		return ""
	}
	return n.SetCode(q.SetCode)
}

func queryNumber(q models.QueryAttributes, n Normalizer) string {
	if q.CollectorNumber == "" {
		return ""
	}
	return n.Number(q.CollectorNumber)
}

func queryCardID(q models.QueryAttributes, n Normalizer) string {
	if q.CardID == "" {
		return ""
	}
	return n.CardID(q.CardID)
}

func recordName(r models.CatalogRecord, _ Normalizer) []string    { return []string{r.Name} }
func recordSetName(r models.CatalogRecord, _ Normalizer) []string { return []string{r.SetName} }
func recordRarity(r models.CatalogRecord, _ Normalizer) []string  { return []string{r.Rarity} }

func recordNames(r models.CatalogRecord, _ Normalizer) []string {
	return []string{r.Name, r.FullName}
}

func recordSetCode(r models.CatalogRecord, n Normalizer) []string {
	return []string{n.SetCode(r.SetCode)}
}

func recordNumber(r models.CatalogRecord, n Normalizer) []string {
	return []string{n.Number(r.CollectorNumber)}
}

func recordCardID(r models.CatalogRecord, n Normalizer) []string {
	ids := []string{n.CardID(r.ID)}
	if r.BasePrintID != "" {
		ids = append(ids, n.CardID(r.BasePrintID))
	}
	return ids
}

func setNumberFields(nameCandidates func(models.CatalogRecord, Normalizer) []string) []FieldSpec {
	return []FieldSpec{
		{Field: models.FieldSetCode, Label: "Set code", Weight: 4, Threshold: 0.9, Mode: CompareExact, Query: querySetCode, Candidate: recordSetCode},
		{Field: models.FieldNumber, Label: "Number", Weight: 5, Threshold: 0.9, Mode: CompareExact, Query: queryNumber, Candidate: recordNumber},
		{Field: models.FieldName, Label: "Name", Weight: 3, Threshold: 0.7, Query: queryName, Candidate: nameCandidates},
		{Field: models.FieldSetName, Label: "Set name", Weight: 2, Threshold: 0.7, Query: querySetName, Candidate: recordSetName, SkipIfCandidateEmpty: true},
	}
}

// MTGConfig identifies Magic cards by set code and collector number
func MTGConfig() GameConfig {
	return GameConfig{
		Game:                    models.GameMTG,
		Normalizer:              DefaultNormalizer(),
		Fields:                  setNumberFields(recordName),
		WarnBelow:               0.5,
		DirectBySetNumber:       true,
		NumberFallbackOnSetMiss: true,
		SearchLimit:             DefaultSearchLimit,
	}
}

// LorcanaConfig matches names against both the short and the full card name
// ("Elsa" vs "Elsa - Spirit of Winter").
func LorcanaConfig() GameConfig {
	return GameConfig{
		Game:                    models.GameLorcana,
		Normalizer:              LorcanaNormalizer(),
		Fields:                  setNumberFields(recordNames),
		WarnBelow:               0.5,
		DirectBySetNumber:       true,
		NumberFallbackOnSetMiss: true,
		SearchLimit:             DefaultSearchLimit,
	}
}

// OnePieceConfig identifies cards by their printed id (OP01-001). Searches
// return base prints only; variants are listed separately.
func OnePieceConfig() GameConfig {
	return GameConfig{
		Game:       models.GameOnePiece,
		Normalizer: OnePieceNormalizer(),
		Fields: []FieldSpec{
			{Field: models.FieldIdentifier, Label: "Card ID", Weight: 5, Threshold: 0.9, Query: queryCardID, Candidate: recordCardID},
			{Field: models.FieldName, Label: "Name", Weight: 3, Threshold: 0.8, Query: queryName, Candidate: recordName},
			{Field: models.FieldSetName, Label: "Set", Weight: 2, Threshold: 0.7, Query: querySetName, Candidate: recordSetName, SkipIfCandidateEmpty: true},
		},
		WarnBelow:   0.5,
		MediumRatio: 0.7,
		DirectByID:  true,
		SearchLimit: DefaultSearchLimit,
	}
}

// PokemonConfig compares numbers in their printed "4/102" form
func PokemonConfig() GameConfig {
	return GameConfig{
		Game:       models.GamePokemon,
		Normalizer: PokemonNormalizer(),
		Fields: []FieldSpec{
			{Field: models.FieldName, Label: "Name", Weight: 3, Threshold: 0.7, Query: queryName, Candidate: recordName},
			{Field: models.FieldSetName, Label: "Set", Weight: 2, Threshold: 0.7, Query: querySetName, Candidate: recordSetName},
			{
				Field: models.FieldNumber, Label: "Number", Weight: 2, Threshold: 0.9,
				Query: func(q models.QueryAttributes, _ Normalizer) string {
					return NormalizePrintedNumber(q.CollectorNumber)
				},
				Candidate: func(r models.CatalogRecord, _ Normalizer) []string {
					return []string{NormalizePrintedNumber(r.NumberWithTotal()), NormalizeCollectorNumber(r.CollectorNumber)}
				},
			},
			{Field: models.FieldRarity, Label: "Rarity", Weight: 1, Threshold: 0.7, Query: queryRarity, Candidate: recordRarity},
		},
		WarnBelow:         0.5,
		MinScore:          0.6,
		DirectByID:        true,
		DirectBySetNumber: true,
		SearchLimit:       DefaultSearchLimit,
	}
}
