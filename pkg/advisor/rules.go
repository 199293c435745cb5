package advisor

import (
	"fmt"

	"github.com/coolcity/heatscan/internal/model"
)

// RuleTiers derives recommendations from fixed thresholds over the snapshot.
// Deterministic: the same snapshot always yields the same tiers.
func RuleTiers(snap Snapshot) model.RecommendationTiers {
	var tiers model.RecommendationTiers

	if snap.Weather.FeelsLike > 32 {
		tiers.Immediate = append(tiers.Immediate, model.RecommendationCandidate{
			Tier:     model.TierImmediate,
			Title:    "Activate Cooling Centers",
			Impact:   "Immediate heat relief for residents",
			Cost:     "$5,000 - $15,000",
			Timeline: "24-48 hours",
		})
	}

	if vegetationRatio(snap.Features) < 0.3 || snap.Vegetation.NDVI < 0.4 {
		tiers.ShortTerm = append(tiers.ShortTerm, model.RecommendationCandidate{
			Tier:     model.TierShortTerm,
			Title:    "Increase Urban Vegetation",
			Impact:   "Could reduce local temperatures by 2-5°C",
			Cost:     "$50,000 - $200,000",
			Timeline: "6-12 months",
		})
	}

	if highAbsorptionShare(snap.Features.Surfaces) > 0.4 {
		tiers.ShortTerm = append(tiers.ShortTerm, model.RecommendationCandidate{
			Tier:     model.TierShortTerm,
			Title:    "Cool Roof and Pavement Implementation",
			Impact:   "Reduce surface temperatures by 10-15°C",
			Cost:     "$30,000 - $100,000",
			Timeline: "3-6 months",
		})
	}

	if snap.AirQuality.AQI > 100 {
		tiers.LongTerm = append(tiers.LongTerm, model.RecommendationCandidate{
			Tier:     model.TierLongTerm,
			Title:    "Improve Air Circulation",
			Impact:   fmt.Sprintf("Improve AQI from %.0f to healthier levels", snap.AirQuality.AQI),
			Cost:     "$20,000 - $80,000",
			Timeline: "2-4 months",
		})
	}

	if snap.LandTemp.Day > 35 {
		tiers.LongTerm = append(tiers.LongTerm, model.RecommendationCandidate{
			Tier:     model.TierLongTerm,
			Title:    "Urban Heat Resilience Strategy",
			Impact:   "Prepare the city for rising temperatures",
			Cost:     "$100,000 - $500,000",
			Timeline: "1-2 years",
		})
	}

	return tiers
}

// vegetationRatio is vegetation clusters per building. A sparse canopy
// relative to built mass signals a vegetation deficit.
func vegetationRatio(f model.UrbanFeatures) float64 {
	buildings := len(f.Buildings)
	if buildings == 0 {
		buildings = 1
	}
	return float64(len(f.Vegetation)) / float64(buildings)
}

// highAbsorptionShare is the fraction of surfaces with heat absorption above
// 0.7.
func highAbsorptionShare(surfaces []model.SurfaceRegion) float64 {
	if len(surfaces) == 0 {
		return 0
	}
	high := 0
	for _, s := range surfaces {
		if s.HeatAbsorption > 0.7 {
			high++
		}
	}
	return float64(high) / float64(len(surfaces))
}
