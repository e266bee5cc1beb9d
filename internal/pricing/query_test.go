package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codyseavey/card-resolver/internal/models"
)

func TestBuildSportsQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    models.QueryAttributes
		expected string
	}{
		{
			name: "full attributes in fixed order",
			query: models.QueryAttributes{
				Name:            "CJ Stroud",
				Year:            "2023-24",
				SetName:         "Panini Panini Prizm Football",
				CollectorNumber: "No. 027",
				SerialNumbering: "23/75",
				Variant:         "Silver Prizm",
			},
			expected: "C.J. Stroud 2023 Panini Prizm #27 /75 Silver Prizm",
		},
		{
			name:     "generic variant dropped",
			query:    models.QueryAttributes{Name: "Connor Bedard", Variant: "base_common"},
			expected: "Connor Bedard",
		},
		{
			name:     "set capped at four tokens",
			query:    models.QueryAttributes{SetName: "Upper Deck – Series One Young Guns Hockey Edition"},
			expected: "Upper Deck Series One",
		},
		{
			name:     "raw year kept when not numeric",
			query:    models.QueryAttributes{Name: "Jordan", Year: "late 90s"},
			expected: "Jordan late 90s",
		},
		{
			name:     "middle initials",
			query:    models.QueryAttributes{Name: "Ken Griffey JR Jr"},
			expected: "Ken Griffey J.R. Jr",
		},
		{
			name:     "empty",
			query:    models.QueryAttributes{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildSportsQuery(tt.query))
		})
	}
}

func TestBuildTCGQuery(t *testing.T) {
	tests := []struct {
		name     string
		profile  TCGProfile
		query    models.QueryAttributes
		expected string
	}{
		{
			name:    "mtg set prefix stripped",
			profile: MTGProfile(),
			query: models.QueryAttributes{
				Name:            "Lightning Bolt",
				CollectorNumber: "0141/280",
				SetName:         "Magic: Foundations",
				Variant:         "borderless",
			},
			expected: "Lightning Bolt #141 Foundations Borderless",
		},
		{
			name:    "mtg foil is not a query token",
			profile: MTGProfile(),
			query:   models.QueryAttributes{Name: "Sol Ring", Variant: "foil"},
			expected: "Sol Ring",
		},
		{
			name:    "one piece variant wording",
			profile: OnePieceProfile(),
			query: models.QueryAttributes{
				Name:    "Monkey.D.Luffy",
				SetName: "One Piece Card Game - Romance Dawn",
				Variant: "alternate_art",
			},
			expected: "Monkey.D.Luffy Romance Dawn Alt Art",
		},
		{
			name:    "special art is not sp",
			profile: OnePieceProfile(),
			query:   models.QueryAttributes{Name: "Zoro", Variant: "Special Art"},
			expected: "Zoro Special Art",
		},
		{
			name:    "long set dropped",
			profile: MTGProfile(),
			query: models.QueryAttributes{
				Name:    "Sol Ring",
				SetName: "Commander Legends Battle for Baldurs Gate",
			},
			expected: "Sol Ring",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildTCGQuery(tt.profile, tt.query))
		})
	}
}

func TestNormalizePlayer(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"C.J. Stroud", "cj stroud"},
		{"c j stroud", "cj stroud"},
		{"A/J Brown", "aj brown"},
		{"Mike Trout", "mike trout"},
		{"T.J. J. Watt", "tjj watt"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizePlayer(tt.input))
		})
	}
}

func TestCleanCardNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"#027", "027"},
		{"No. 12", "12"},
		{"NUMBER 5A", "5a"},
		{"num.88", "88"},
		{" RC-7 ", "rc-7"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanCardNumber(tt.input))
		})
	}
}

func TestSerialDenominator(t *testing.T) {
	assert.Equal(t, "75", serialDenominator("23/75"))
	assert.Equal(t, "99", serialDenominator(" 1 / 99 "))
	assert.Equal(t, "", serialDenominator("75"))
	assert.Equal(t, "", serialDenominator(""))
}
