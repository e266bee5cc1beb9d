package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codyseavey/card-resolver/internal/models"
)

func ptr(v float64) *float64 { return &v }

func TestEstimateValueAtGrade(t *testing.T) {
	tests := []struct {
		name     string
		prices   *models.NormalizedPriceSet
		grade    float64
		expected *float64
	}{
		{
			name:     "blend at grade 9",
			prices:   &models.NormalizedPriceSet{Raw: ptr(10), ByTier: map[models.GradeTier]float64{models.Tier9: 100}},
			grade:    9,
			expected: ptr(68.5),
		},
		{
			name:     "raw only uses multiplier",
			prices:   &models.NormalizedPriceSet{Raw: ptr(12.5)},
			grade:    8,
			expected: ptr(37.5),
		},
		{
			name:     "graded only is discounted",
			prices:   &models.NormalizedPriceSet{ByTier: map[models.GradeTier]float64{models.Tier10: 333.33}},
			grade:    10,
			expected: ptr(233.33),
		},
		{
			name:     "falls back to 9.5 for high grades",
			prices:   &models.NormalizedPriceSet{Raw: ptr(20), ByTier: map[models.GradeTier]float64{models.Tier9_5: 220}},
			grade:    9.6,
			expected: ptr(160),
		},
		{
			name:     "low grade blend",
			prices:   &models.NormalizedPriceSet{Raw: ptr(10), ByTier: map[models.GradeTier]float64{models.Tier7: 30}},
			grade:    6.5,
			expected: ptr(17),
		},
		{
			name:     "rounds half up",
			prices:   &models.NormalizedPriceSet{Raw: ptr(1), ByTier: map[models.GradeTier]float64{models.Tier7: 1.1}},
			grade:    7,
			expected: ptr(1.05),
		},
		{
			name:     "nothing known",
			prices:   &models.NormalizedPriceSet{},
			grade:    9,
			expected: nil,
		},
		{
			name:     "zero raw is missing",
			prices:   &models.NormalizedPriceSet{Raw: ptr(0)},
			grade:    9,
			expected: nil,
		},
		{
			name:     "nil prices",
			grade:    9,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateValueAtGrade(tt.prices, tt.grade)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.expected, *got, 1e-9)
		})
	}
}

func TestEstimateIsMonotonicInGrade(t *testing.T) {
	ref := map[models.GradeTier]float64{}
	for _, tier := range models.AllGradeTiers() {
		ref[tier] = 100
	}
	prices := &models.NormalizedPriceSet{Raw: ptr(10), ByTier: ref}

	prev := 0.0
	for grade := 1.0; grade <= 10; grade += 0.5 {
		got := EstimateValueAtGrade(prices, grade)
		require.NotNil(t, got)
		assert.GreaterOrEqual(t, *got, prev, "grade %.1f", grade)
		prev = *got
	}
}

func TestGradeMultiplierSteps(t *testing.T) {
	tests := []struct {
		grade    float64
		expected float64
	}{
		{10, 0.70},
		{9.5, 0.70},
		{9, 0.65},
		{8.5, 0.55},
		{7, 0.45},
		{6.9, 0.35},
		{1, 0.35},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, gradeMultiplier(tt.grade), "grade %v", tt.grade)
	}
}
