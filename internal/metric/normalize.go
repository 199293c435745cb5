// Package metric folds heterogeneous raw analysis values onto a shared 0–100
// display scale with a status classification per metric.
package metric

import (
	"github.com/coolcity/heatscan/internal/model"
)

// rule describes how one named metric maps onto the display scale. Multiplier
// is presentation scaling only: a 3°C heat delta and a 60% building density
// are not physically comparable, the multipliers just make their bars share
// one 0–100 axis. The constants are kept verbatim from the product's display
// conventions and are not a calibrated model.
type rule struct {
	multiplier float64
	classify   func(raw float64) model.MetricStatus
}

// rules is the fixed per-metric scaling table. Adding a metric is a data
// change here, not new branching logic. Names absent from the table fall back
// to genericRule.
var rules = map[string]rule{
	model.MetricHeatIslandIntensity: {
		multiplier: 25, // °C delta → bar height
		classify: func(raw float64) model.MetricStatus {
			if raw > 3 {
				return model.StatusCritical
			}
			return model.StatusModerate
		},
	},
	model.MetricVegetationCoverage: {
		multiplier: 1, // already a percentage
		classify: func(raw float64) model.MetricStatus {
			if raw < 30 {
				return model.StatusCritical
			}
			return model.StatusLow
		},
	},
	model.MetricBuildingDensity: {
		multiplier: 1, // already a percentage
		classify: func(raw float64) model.MetricStatus {
			if raw > 60 {
				return model.StatusHigh
			}
			return model.StatusModerate
		},
	},
	model.MetricSurfaceTemperature: {
		multiplier: 2, // °C → bar height
		// Informational only: no risk thresholds are defined for surface
		// temperature, so it always classifies neutral.
		classify: func(float64) model.MetricStatus {
			return model.StatusModerate
		},
	},
}

// genericRule handles unrecognized metric names: plain clamp, neutral status.
var genericRule = rule{
	multiplier: 1,
	classify: func(float64) model.MetricStatus {
		return model.StatusModerate
	},
}

// Normalize converts one raw metric into its display form. Unknown metric
// names are normalized by the generic rule — never an error — so a new
// upstream metric degrades to a neutral bar instead of breaking the panel.
func Normalize(m model.RawMetric) model.DisplayMetric {
	r, ok := rules[m.Name]
	if !ok {
		r = genericRule
	}
	return model.DisplayMetric{
		Name:         m.Name,
		RawValue:     m.Value,
		DisplayValue: clamp(m.Value*r.multiplier, 0, 100),
		Status:       r.classify(m.Value),
	}
}

// NormalizeAll converts every raw metric, preserving input order.
func NormalizeAll(metrics []model.RawMetric) []model.DisplayMetric {
	out := make([]model.DisplayMetric, len(metrics))
	for i, m := range metrics {
		out[i] = Normalize(m)
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
