// Package recommend merges tiered mitigation candidates into one ranked list
// and derives best-effort aggregate statistics from their free-text fields.
package recommend

import (
	"github.com/coolcity/heatscan/internal/model"
)

// Rank flattens the tiered candidate lists into a single ordering: immediate
// first, then short_term, then long_term, preserving each tier's input order.
// Ranks are assigned sequentially from 0. Absent tiers are simply empty —
// never an error. List membership is authoritative: each candidate's Tier
// field is overwritten to match the tier it arrived in.
func Rank(tiers model.RecommendationTiers) []model.RankedRecommendation {
	total := len(tiers.Immediate) + len(tiers.ShortTerm) + len(tiers.LongTerm)
	ranked := make([]model.RankedRecommendation, 0, total)

	appendTier := func(tier model.RecommendationTier, candidates []model.RecommendationCandidate) {
		for _, c := range candidates {
			c.Tier = tier
			ranked = append(ranked, model.RankedRecommendation{
				RecommendationCandidate: c,
				Rank:                    len(ranked),
			})
		}
	}

	appendTier(model.TierImmediate, tiers.Immediate)
	appendTier(model.TierShortTerm, tiers.ShortTerm)
	appendTier(model.TierLongTerm, tiers.LongTerm)

	return ranked
}

// Summarize computes aggregate statistics for a ranked recommendation list.
func Summarize(ranked []model.RankedRecommendation) model.RecommendationSummary {
	var s model.RecommendationSummary
	var impactSum float64

	for _, r := range ranked {
		if v, ok := parseImpact(r.Impact); ok {
			impactSum += v
			s.ImpactSamples++
		}
		if v, ok := parseCost(r.Cost); ok {
			s.TotalCost += v
			s.CostSamples++
		}
		if v, ok := parseTimelineMonths(r.Timeline); ok && v > s.HorizonMonths {
			s.HorizonMonths = v
		}
	}

	if s.ImpactSamples > 0 {
		s.MeanImpact = impactSum / float64(s.ImpactSamples)
	}
	return s
}
