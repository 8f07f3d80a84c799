package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubScoreWeights_SumToOne(t *testing.T) {
	sum := 0.0
	for _, w := range SubScoreWeights.values() {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestOpportunity_SetScores(t *testing.T) {
	tests := []struct {
		name      string
		scores    SubScores
		overall   float64
		viability bool
	}{
		{
			name:      "all zero",
			scores:    SubScores{},
			overall:   0,
			viability: false,
		},
		{
			name: "uniform five",
			scores: SubScores{
				MarketDemand: 5, PainIntensity: 5, CompetitionGap: 5, Monetization: 5, TechnicalFeasibility: 5,
				TimeToMarket: 5, Scalability: 5, AudienceSize: 5, Urgency: 5, Uniqueness: 5,
			},
			overall:   5,
			viability: true,
		},
		{
			name:      "just below cutoff",
			scores:    SubScores{MarketDemand: 10, PainIntensity: 10, Monetization: 6},
			overall:   3.9,
			viability: false,
		},
		{
			name:      "exactly cutoff",
			scores:    SubScores{MarketDemand: 10, PainIntensity: 10, Monetization: 6, Urgency: 2},
			overall:   4.0,
			viability: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Opportunity{}
			o.SetScores(tt.scores)
			assert.InDelta(t, tt.overall, o.OverallScore, 1e-9)
			assert.Equal(t, tt.viability, o.ViabilityThreshold)
		})
	}
}

func TestOpportunity_BeforeSaveRecomputes(t *testing.T) {
	o := &Opportunity{OverallScore: 9.9, ViabilityThreshold: true}
	o.Scores.MarketDemand = 2

	assert.NoError(t, o.BeforeSave(nil))
	assert.InDelta(t, 0.3, o.OverallScore, 1e-9)
	assert.False(t, o.ViabilityThreshold)
}

func TestStringSlice_ValueScan(t *testing.T) {
	var nilSlice StringSlice
	v, err := nilSlice.Value()
	assert.NoError(t, err)
	assert.Equal(t, "[]", v)

	var s StringSlice
	assert.NoError(t, s.Scan([]byte(`["SaaS","freelance"]`)))
	assert.Equal(t, StringSlice{"SaaS", "freelance"}, s)

	assert.Error(t, s.Scan(42))
}
