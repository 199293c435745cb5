package model

// RecommendationTier is the urgency bucket of a mitigation recommendation.
type RecommendationTier string

const (
	TierImmediate RecommendationTier = "immediate"
	TierShortTerm RecommendationTier = "short_term"
	TierLongTerm  RecommendationTier = "long_term"
)

// RecommendationCandidate is one mitigation measure as supplied by the
// advisory collaborator. Impact, Cost and Timeline are free text; numeric
// content is extracted on a best-effort basis by the ranker's aggregation.
type RecommendationCandidate struct {
	Tier     RecommendationTier `json:"tier"`
	Title    string             `json:"title"`
	Impact   string             `json:"impact"`
	Cost     string             `json:"cost"`
	Timeline string             `json:"timeline"`
}

// RecommendationTiers groups candidates by tier as delivered by the advisory
// collaborator. Any field may be nil; absent tiers rank as empty lists.
type RecommendationTiers struct {
	Immediate []RecommendationCandidate `json:"immediate"`
	ShortTerm []RecommendationCandidate `json:"short_term"`
	LongTerm  []RecommendationCandidate `json:"long_term"`
}

// RankedRecommendation is a candidate with its final position in the merged
// list. Rank is a strict 0-based ordering: immediate before short_term before
// long_term, original order preserved within a tier.
type RankedRecommendation struct {
	RecommendationCandidate
	Rank int `json:"rank"`
}

// RecommendationSummary aggregates the numeric content of a ranked list.
// Candidates whose text could not be parsed are excluded from the
// corresponding aggregate (not treated as zero) but remain in the ranked
// list itself.
type RecommendationSummary struct {
	// MeanImpact is the mean temperature impact in °C across candidates with
	// a parseable impact figure. Ranges contribute their midpoint.
	MeanImpact float64 `json:"mean_impact_celsius"`
	// TotalCost is the summed cost estimate in USD. Cost ranges contribute
	// their midpoint; recurring costs count as a single-year figure.
	TotalCost float64 `json:"total_cost_usd"`
	// HorizonMonths is the longest parsed timeline, the overall horizon of
	// the plan in months.
	HorizonMonths float64 `json:"horizon_months"`
	// ImpactSamples and CostSamples report how many candidates contributed
	// to the respective aggregate.
	ImpactSamples int `json:"impact_samples"`
	CostSamples   int `json:"cost_samples"`
}
