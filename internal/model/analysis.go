package model

import "time"

// Building is one structure detected in satellite imagery.
type Building struct {
	Location GeoPoint `json:"location"`
	Height   float64  `json:"height_m"`
	Area     float64  `json:"area_sqm"`
}

// SurfaceRegion is a detected ground-surface patch with its estimated heat
// absorption in [0, 1] (1 = dark asphalt, 0 = fully reflective).
type SurfaceRegion struct {
	Location       GeoPoint `json:"location"`
	Material       string   `json:"material"`
	HeatAbsorption float64  `json:"heat_absorption"`
}

// VegetationRegion is a detected vegetation cluster.
type VegetationRegion struct {
	Location GeoPoint `json:"location"`
	Kind     string   `json:"kind"` // trees, grass, shrubs
	Health   float64  `json:"health"`
}

// UrbanFeatures holds the visual feature extraction produced by the vision
// collaborator for one satellite image.
type UrbanFeatures struct {
	Buildings  []Building         `json:"buildings"`
	Surfaces   []SurfaceRegion    `json:"surfaces"`
	Vegetation []VegetationRegion `json:"vegetation"`
}

// WeatherConditions is the current-weather snapshot from the weather
// collaborator.
type WeatherConditions struct {
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feels_like"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Cloudiness  float64 `json:"cloudiness"`
	Description string  `json:"description"`
}

// HeatForecastPoint is one forecast step with its computed heat index.
type HeatForecastPoint struct {
	Time      time.Time `json:"time"`
	HeatIndex float64   `json:"heat_index"`
}

// VegetationIndex is the satellite vegetation measurement (NDVI in [-1, 1],
// urban areas typically [0, 0.8]).
type VegetationIndex struct {
	NDVI     float64 `json:"ndvi"`
	Coverage float64 `json:"coverage_percent"`
	Health   string  `json:"health"`
}

// LandSurfaceTemp is the satellite-derived land surface temperature in °C.
type LandSurfaceTemp struct {
	Day   float64 `json:"day"`
	Night float64 `json:"night"`
}

// AirQuality is the air-quality snapshot from the environmental collaborator.
type AirQuality struct {
	AQI  float64 `json:"aqi"`
	PM25 float64 `json:"pm25"`
}

// AnalysisPayload bundles every collaborator output the engine consumes. The
// engine never derives these values itself; it only folds them into display
// metrics, markers and ranked recommendations.
type AnalysisPayload struct {
	Viewport      Viewport            `json:"viewport"`
	BaseImageRef  string              `json:"base_image_ref,omitempty"`
	HeatImageRef  string              `json:"heat_image_ref,omitempty"`
	Interventions []Intervention      `json:"interventions"`
	RawMetrics    []RawMetric         `json:"raw_metrics"`
	Tiers         RecommendationTiers `json:"recommendation_tiers"`
}

// RiskLevel is the overall heat-risk classification.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskExtreme  RiskLevel = "extreme"
)

// AnalysisResult is the display-ready output of one analysis session. All
// fields are read-only once computed.
type AnalysisResult struct {
	Viewport        Viewport               `json:"viewport"`
	Intensity       float64                `json:"heat_island_intensity"` // 0–10 scale
	Risk            RiskLevel              `json:"risk_level"`
	Metrics         []DisplayMetric        `json:"metrics"`
	Interventions   []Intervention         `json:"interventions"`
	Recommendations []RankedRecommendation `json:"recommendations"`
	Summary         RecommendationSummary  `json:"recommendation_summary"`
	Sources         []string               `json:"data_sources"`
	AnalyzedAt      time.Time              `json:"analyzed_at"`
}

// TaskStatus is the lifecycle state of a background analysis task.
type TaskStatus string

const (
	TaskQueued     TaskStatus = "queued"
	TaskProcessing TaskStatus = "processing"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// Task tracks one background analysis request. Held in memory only; history
// does not survive a restart.
type Task struct {
	ID        string          `json:"id"`
	Status    TaskStatus      `json:"status"`
	Progress  int             `json:"progress"` // 0–100
	Error     string          `json:"error,omitempty"`
	Result    *AnalysisResult `json:"result,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
