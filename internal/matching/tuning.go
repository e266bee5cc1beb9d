package matching

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/codyseavey/card-resolver/internal/models"
)

// Tuning overrides per-game weights and thresholds without a code change.
//
//	[games.mtg]
//	search_limit = 20
//
//	[games.mtg.fields.name]
//	weight = 4.0
//	threshold = 0.75
type Tuning struct {
	Games map[string]GameTuning `toml:"games"`
}

type GameTuning struct {
	WarnBelow   *float64               `toml:"warn_below"`
	MediumRatio *float64               `toml:"medium_ratio"`
	MinScore    *float64               `toml:"min_score"`
	SearchLimit *int                   `toml:"search_limit"`
	Fields      map[string]FieldTuning `toml:"fields"`
}

type FieldTuning struct {
	Weight    *float64 `toml:"weight"`
	Threshold *float64 `toml:"threshold"`
}

// LoadTuning reads a TOML tuning file. An empty path yields no overrides.
func LoadTuning(path string) (Tuning, error) {
	if path == "" {
		return Tuning{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, fmt.Errorf("read tuning file: %w", err)
	}
	return ParseTuning(data)
}

func ParseTuning(data []byte) (Tuning, error) {
	var t Tuning
	if err := toml.Unmarshal(data, &t); err != nil {
		return Tuning{}, fmt.Errorf("parse tuning file: %w", err)
	}
	for name := range t.Games {
		if _, ok := models.ParseGame(name); !ok {
			return Tuning{}, fmt.Errorf("parse tuning file: %w: %q", models.ErrUnknownGame, name)
		}
	}
	return t, nil
}

// Apply returns cfg with any overrides for its game
func (t Tuning) Apply(cfg GameConfig) (GameConfig, error) {
	var gt *GameTuning
	for name, g := range t.Games {
		if game, _ := models.ParseGame(name); game == cfg.Game {
			g := g
			gt = &g
			break
		}
	}
	if gt == nil {
		return cfg, nil
	}

	if gt.WarnBelow != nil {
		cfg.WarnBelow = *gt.WarnBelow
	}
	if gt.MediumRatio != nil {
		cfg.MediumRatio = *gt.MediumRatio
	}
	if gt.MinScore != nil {
		cfg.MinScore = *gt.MinScore
	}
	if gt.SearchLimit != nil {
		cfg.SearchLimit = ClampLimit(*gt.SearchLimit)
	}

	// copy so the built-in slice is never shared
	fields := append([]FieldSpec(nil), cfg.Fields...)
	for name, ft := range gt.Fields {
		idx := -1
		for i, spec := range fields {
			if string(spec.Field) == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return cfg, fmt.Errorf("tuning for %s: field %q is not compared", cfg.Game, name)
		}
		if ft.Weight != nil {
			if *ft.Weight <= 0 {
				return cfg, fmt.Errorf("tuning for %s: field %q weight must be positive", cfg.Game, name)
			}
			fields[idx].Weight = *ft.Weight
		}
		if ft.Threshold != nil {
			if *ft.Threshold < 0 || *ft.Threshold > 1 {
				return cfg, fmt.Errorf("tuning for %s: field %q threshold must be in [0,1]", cfg.Game, name)
			}
			fields[idx].Threshold = *ft.Threshold
		}
	}
	cfg.Fields = fields

	return cfg, nil
}
