package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coolcity/heatscan/internal/model"
)

func cand(title string) model.RecommendationCandidate {
	return model.RecommendationCandidate{Title: title}
}

func TestRank_TierPrecedenceAndStability(t *testing.T) {
	tiers := model.RecommendationTiers{
		Immediate: []model.RecommendationCandidate{cand("A")},
		LongTerm:  []model.RecommendationCandidate{cand("B"), cand("C")},
	}
	ranked := Rank(tiers)
	require.Len(t, ranked, 3)

	assert.Equal(t, "A", ranked[0].Title)
	assert.Equal(t, 0, ranked[0].Rank)
	assert.Equal(t, model.TierImmediate, ranked[0].Tier)

	assert.Equal(t, "B", ranked[1].Title)
	assert.Equal(t, 1, ranked[1].Rank)
	assert.Equal(t, model.TierLongTerm, ranked[1].Tier)

	assert.Equal(t, "C", ranked[2].Title)
	assert.Equal(t, 2, ranked[2].Rank)
}

func TestRank_AllTiersEmpty(t *testing.T) {
	assert.Empty(t, Rank(model.RecommendationTiers{}))
}

func TestRank_WithinTierOrderPreserved(t *testing.T) {
	tiers := model.RecommendationTiers{
		ShortTerm: []model.RecommendationCandidate{cand("x"), cand("y"), cand("z")},
	}
	ranked := Rank(tiers)
	require.Len(t, ranked, 3)
	for i, want := range []string{"x", "y", "z"} {
		assert.Equal(t, want, ranked[i].Title)
		assert.Equal(t, i, ranked[i].Rank)
	}
}

func TestRank_OverridesMislabeledTier(t *testing.T) {
	tiers := model.RecommendationTiers{
		Immediate: []model.RecommendationCandidate{
			{Title: "mislabeled", Tier: model.TierLongTerm},
		},
	}
	ranked := Rank(tiers)
	require.Len(t, ranked, 1)
	// The list a candidate arrives in wins over its own Tier field.
	assert.Equal(t, model.TierImmediate, ranked[0].Tier)
}

func TestSummarize(t *testing.T) {
	ranked := Rank(model.RecommendationTiers{
		Immediate: []model.RecommendationCandidate{
			{
				Title:    "Massive Tree Planting",
				Impact:   "Could reduce local temperatures by 2-5°C",
				Cost:     "$75,000 - $150,000",
				Timeline: "3-6 months",
			},
		},
		ShortTerm: []model.RecommendationCandidate{
			{
				Title:    "Cool Roof Initiative",
				Impact:   "Reduce surface temperatures by 10°C",
				Cost:     "$30,000",
				Timeline: "6-12 months",
			},
		},
		LongTerm: []model.RecommendationCandidate{
			{
				Title:    "Heat Resilience Strategy",
				Impact:   "Prepare city for climate change impacts",
				Cost:     "unknown",
				Timeline: "1-2 years",
			},
		},
	})

	s := Summarize(ranked)

	// Impacts: midpoint(2,5)=3.5 and 10 → mean 6.75; the unparsable third
	// entry is excluded, not counted as zero.
	assert.Equal(t, 2, s.ImpactSamples)
	assert.InDelta(t, 6.75, s.MeanImpact, 1e-9)

	// Costs: midpoint(75000,150000)=112500 plus 30000; "unknown" excluded.
	assert.Equal(t, 2, s.CostSamples)
	assert.InDelta(t, 142500, s.TotalCost, 1e-9)

	// Horizon: 1-2 years → 24 months beats 12 and 6.
	assert.InDelta(t, 24, s.HorizonMonths, 1e-9)
}

func TestSummarize_UnparsableCandidateStaysRanked(t *testing.T) {
	ranked := Rank(model.RecommendationTiers{
		Immediate: []model.RecommendationCandidate{
			{Title: "opaque", Impact: "substantial", Cost: "unknown", Timeline: "Ongoing"},
		},
	})
	require.Len(t, ranked, 1, "unparsable fields never drop the candidate")

	s := Summarize(ranked)
	assert.Zero(t, s.ImpactSamples)
	assert.Zero(t, s.CostSamples)
	assert.Zero(t, s.MeanImpact)
	assert.Zero(t, s.TotalCost)
	assert.Zero(t, s.HorizonMonths)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.MeanImpact)
	assert.Zero(t, s.TotalCost)
	assert.Zero(t, s.HorizonMonths)
}
