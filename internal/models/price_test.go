package models

import (
	"errors"
	"testing"
)

func TestAllGradeTiers(t *testing.T) {
	tiers := AllGradeTiers()

	if len(tiers) != 5 {
		t.Errorf("AllGradeTiers() returned %d tiers, want 5", len(tiers))
	}

	// Must be ascending so estimators can walk them in order
	for i := 1; i < len(tiers); i++ {
		if tiers[i].Value() <= tiers[i-1].Value() {
			t.Errorf("tiers not ascending: %s before %s", tiers[i-1], tiers[i])
		}
	}
}

func TestParseGradeTier(t *testing.T) {
	tests := []struct {
		input    string
		expected GradeTier
		ok       bool
	}{
		{"9", Tier9, true},
		{"9.0", Tier9, true},
		{"9.5", Tier9_5, true},
		{"PSA 10", Tier10, true},
		{"bgs 9.5", Tier9_5, true},
		{" 7 ", Tier7, true},
		{"6", "", false},
		{"gem mint", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseGradeTier(tt.input)
			if ok != tt.ok || got != tt.expected {
				t.Errorf("ParseGradeTier(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestNormalizedPriceSetHasAnyPrice(t *testing.T) {
	raw := 5.0
	zero := 0.0

	tests := []struct {
		name     string
		prices   *NormalizedPriceSet
		expected bool
	}{
		{"nil set", nil, false},
		{"empty set", &NormalizedPriceSet{}, false},
		{"raw only", &NormalizedPriceSet{Raw: &raw}, true},
		{"zero raw", &NormalizedPriceSet{Raw: &zero}, false},
		{"tier only", &NormalizedPriceSet{ByTier: map[GradeTier]float64{Tier9: 40}}, true},
		{"secondary scheme only", &NormalizedPriceSet{Schemes: map[GradingScheme]map[GradeTier]float64{
			SchemeSGC: {Tier10: 120},
		}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.prices.HasAnyPrice(); got != tt.expected {
				t.Errorf("HasAnyPrice() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestTierPriceIgnoresZero(t *testing.T) {
	p := &NormalizedPriceSet{ByTier: map[GradeTier]float64{Tier9: 0, Tier10: 250}}

	if _, ok := p.TierPrice(Tier9); ok {
		t.Error("expected zero tier price to be treated as missing")
	}
	if v, ok := p.TierPrice(Tier10); !ok || v != 250 {
		t.Errorf("TierPrice(10) = (%v, %v), want (250, true)", v, ok)
	}
}

func TestParseGame(t *testing.T) {
	tests := []struct {
		input    string
		expected Game
		ok       bool
	}{
		{"mtg", GameMTG, true},
		{"Magic: The Gathering", GameMTG, true},
		{"Pokémon", GamePokemon, true},
		{"Disney Lorcana", GameLorcana, true},
		{"One Piece", GameOnePiece, true},
		{"sports", GameSports, true},
		{"yugioh", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseGame(tt.input)
			if got != tt.expected || ok != tt.ok {
				t.Errorf("ParseGame(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestParseQueryAttributes(t *testing.T) {
	raw := map[string]any{
		"card_name":      " Elsa ",
		"set_name":       "The First Chapter",
		"card_number":    float64(42),
		"year":           float64(2023),
		"parallel_type":  "Gold",
		"is_foil":        "true",
		"unexpected_key": []any{"ignored"},
		"rarity":         123.5,
	}

	q, err := ParseQueryAttributes(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if q.Name != "Elsa" {
		t.Errorf("Name = %q, want %q", q.Name, "Elsa")
	}
	if q.SetName != "The First Chapter" {
		t.Errorf("SetName = %q, want %q", q.SetName, "The First Chapter")
	}
	if q.CollectorNumber != "42" {
		t.Errorf("CollectorNumber = %q, want %q", q.CollectorNumber, "42")
	}
	if q.Year != "2023" {
		t.Errorf("Year = %q, want %q", q.Year, "2023")
	}
	if q.Variant != "Gold" {
		t.Errorf("Variant = %q, want %q", q.Variant, "Gold")
	}
	if !q.Foil {
		t.Error("expected Foil to be parsed from string")
	}
	if q.Rarity != "123.5" {
		t.Errorf("Rarity = %q, want %q", q.Rarity, "123.5")
	}
}

func TestParseQueryAttributesAliasPriority(t *testing.T) {
	// expansion_code wins over set_code when both are present
	q, err := ParseQueryAttributes(map[string]any{
		"expansion_code": "MKM",
		"set_code":       "one",
		"name":           "Lightning Bolt",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.SetCode != "MKM" {
		t.Errorf("SetCode = %q, want %q", q.SetCode, "MKM")
	}
}

func TestParseQueryAttributesRejectsEmpty(t *testing.T) {
	inputs := []map[string]any{
		nil,
		{},
		{"year": "2023", "sport": "hockey"},
		{"card_name": "   ", "card_number": true},
	}

	for _, raw := range inputs {
		if _, err := ParseQueryAttributes(raw); !errors.Is(err, ErrInvalidQuery) {
			t.Errorf("ParseQueryAttributes(%v) error = %v, want ErrInvalidQuery", raw, err)
		}
	}
}

func TestNoMatchInvariant(t *testing.T) {
	r := NoMatch()

	if r.Record != nil {
		t.Error("expected nil record")
	}
	if r.Confidence.OverallConfidence != ConfidenceLow {
		t.Errorf("OverallConfidence = %s, want low", r.Confidence.OverallConfidence)
	}
	if len(r.Confidence.Warnings) == 0 {
		t.Error("expected at least one warning explaining the absence")
	}
}

func TestConfidenceRank(t *testing.T) {
	if !(ConfidenceHigh.Rank() > ConfidenceMedium.Rank() &&
		ConfidenceMedium.Rank() > ConfidenceLow.Rank() &&
		ConfidenceLow.Rank() > ConfidenceNone.Rank()) {
		t.Error("confidence ranks are not strictly ordered")
	}
}
