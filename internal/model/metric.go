package model

// MetricUnit is the unit of a raw analysis value.
type MetricUnit string

const (
	UnitCelsius MetricUnit = "celsius"
	UnitPercent MetricUnit = "percent"
	UnitRatio   MetricUnit = "ratio"
)

// Well-known metric names emitted by the analysis orchestrator. The
// normalizer also accepts names outside this set and falls back to a generic
// clamp rule for them.
const (
	MetricHeatIslandIntensity = "heat_island_intensity"
	MetricVegetationCoverage  = "vegetation_coverage"
	MetricBuildingDensity     = "building_density"
	MetricSurfaceTemperature  = "surface_temperature"
)

// RawMetric is one analysis dimension as produced by the upstream scoring
// collaborators, in its native unit.
type RawMetric struct {
	Name  string     `json:"name"`
	Value float64    `json:"value"`
	Unit  MetricUnit `json:"unit"`
}

// MetricStatus classifies a display metric for the summary panel.
type MetricStatus string

const (
	StatusLow      MetricStatus = "low"
	StatusModerate MetricStatus = "moderate"
	StatusHigh     MetricStatus = "high"
	StatusCritical MetricStatus = "critical"
)

// DisplayMetric is a RawMetric rescaled onto the shared 0–100 display range.
// DisplayValue is presentation scaling only — the per-metric multipliers
// exist to make bars visually comparable, not to convert units. Derived from
// exactly one RawMetric and recomputed whenever that metric changes.
type DisplayMetric struct {
	Name         string       `json:"name"`
	RawValue     float64      `json:"raw_value"`
	DisplayValue float64      `json:"display_value"`
	Status       MetricStatus `json:"status"`
}
