package analysis

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/coolcity/heatscan/internal/geo"
	"github.com/coolcity/heatscan/internal/metric"
	"github.com/coolcity/heatscan/internal/model"
	"github.com/coolcity/heatscan/internal/recommend"
	"github.com/coolcity/heatscan/pkg/advisor"
	"github.com/coolcity/heatscan/pkg/nasa"
	"github.com/coolcity/heatscan/pkg/vision"
	"github.com/coolcity/heatscan/pkg/weather"
)

// Request is one analysis job.
type Request struct {
	Viewport     model.Viewport
	BaseImageRef string
	HeatImageRef string
	// LocalOnly skips every collaborator and derives the analysis from
	// geography alone.
	LocalOnly bool
}

// ProgressFunc receives coarse progress in [0, 100] as the analysis advances.
type ProgressFunc func(percent int)

// Service runs the integrated analysis across the collaborator clients.
type Service struct {
	vision  vision.Client
	weather weather.Client
	nasa    nasa.Client
	advisor *advisor.Advisor
	local   LocalAnalyzer
	now     func() time.Time
}

// ServiceOption configures the Service.
type ServiceOption func(*Service)

// WithVision sets the visual feature extraction client. Without one, features
// are synthesized locally.
func WithVision(c vision.Client) ServiceOption {
	return func(s *Service) { s.vision = c }
}

// WithWeather sets the weather client.
func WithWeather(c weather.Client) ServiceOption {
	return func(s *Service) { s.weather = c }
}

// WithNASA sets the satellite data client.
func WithNASA(c nasa.Client) ServiceOption {
	return func(s *Service) { s.nasa = c }
}

// WithAdvisor sets the recommendation advisor.
func WithAdvisor(a *advisor.Advisor) ServiceOption {
	return func(s *Service) { s.advisor = a }
}

func withClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service. Unset collaborators degrade to their local or
// mock equivalents rather than failing the analysis.
func NewService(opts ...ServiceOption) *Service {
	s := &Service{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.weather == nil {
		s.weather = weather.NewClient()
	}
	if s.nasa == nil {
		s.nasa = nasa.NewClient()
	}
	if s.advisor == nil {
		s.advisor = advisor.New("")
	}
	return s
}

// Analyze runs the full pipeline: feature extraction, environmental data
// fan-out, intensity scoring, metric assembly and recommendation ranking.
// progress may be nil.
func (s *Service) Analyze(ctx context.Context, req Request, progress ProgressFunc) (*model.AnalysisResult, *model.AnalysisPayload, error) {
	report := func(pct int) {
		if progress != nil {
			progress(pct)
		}
	}
	center := req.Viewport.Center
	bounds := geo.ViewportBounds(req.Viewport)
	zap.L().Info("analysis: starting",
		zap.Float64("lat", center.Lat),
		zap.Float64("lng", center.Lng),
		zap.Int("zoom", req.Viewport.Zoom),
		zap.Float64s("bounds", []float64{bounds.Min(0), bounds.Min(1), bounds.Max(0), bounds.Max(1)}),
	)
	report(5)

	features, sources := s.extractFeatures(ctx, req)
	report(30)

	env, envSources, err := s.gatherEnvironment(ctx, req, center)
	if err != nil {
		return nil, nil, err
	}
	sources = append(sources, envSources...)
	report(60)

	intensity := HeatIslandIntensity(features, env.current, env.landTemp, env.vegetation)
	risk := AssessRisk(intensity, env.current, env.forecast)
	if len(env.advisories) > 0 {
		risk = escalateRisk(risk)
		zap.L().Info("analysis: active heat advisories, risk escalated",
			zap.Int("advisories", len(env.advisories)),
			zap.String("risk", string(risk)),
		)
	}
	rawMetrics := assembleMetrics(intensity, features, env)
	interventions := DeriveInterventions(features)
	report(75)

	tiers, err := s.advisor.Recommend(ctx, advisor.Snapshot{
		Features:   *features,
		Weather:    *env.current,
		LandTemp:   *env.landTemp,
		Vegetation: *env.vegetation,
		AirQuality: *env.airQuality,
		Intensity:  intensity,
	})
	if err != nil {
		return nil, nil, err
	}
	report(90)

	ranked := recommend.Rank(tiers)
	result := &model.AnalysisResult{
		Viewport:        req.Viewport,
		Intensity:       intensity,
		Risk:            risk,
		Metrics:         metric.NormalizeAll(rawMetrics),
		Interventions:   interventions,
		Recommendations: ranked,
		Summary:         recommend.Summarize(ranked),
		Sources:         sources,
		AnalyzedAt:      s.now().UTC(),
	}
	payload := &model.AnalysisPayload{
		Viewport:      req.Viewport,
		BaseImageRef:  req.BaseImageRef,
		HeatImageRef:  req.HeatImageRef,
		Interventions: interventions,
		RawMetrics:    rawMetrics,
		Tiers:         tiers,
	}
	report(100)
	return result, payload, nil
}

// extractFeatures runs the vision collaborator, degrading to synthetic
// geography-derived features when it is absent, skipped or failing.
func (s *Service) extractFeatures(ctx context.Context, req Request) (*model.UrbanFeatures, []string) {
	center := req.Viewport.Center
	if req.LocalOnly || s.vision == nil || req.BaseImageRef == "" {
		return s.local.SyntheticFeatures(center), []string{"local"}
	}

	features, err := s.vision.ExtractFeatures(ctx, req.BaseImageRef, center)
	if err != nil {
		zap.L().Warn("analysis: feature extraction failed, using local estimate", zap.Error(err))
		return s.local.SyntheticFeatures(center), []string{"local"}
	}
	return features, []string{"vision"}
}

// environment bundles the concurrent collaborator fetches.
type environment struct {
	current    *model.WeatherConditions
	forecast   []model.HeatForecastPoint
	landTemp   *model.LandSurfaceTemp
	vegetation *model.VegetationIndex
	airQuality *model.AirQuality
	advisories []weather.Advisory
}

// gatherEnvironment fans out the weather and satellite fetches. Collaborator
// clients degrade internally; an error here means the context died.
func (s *Service) gatherEnvironment(ctx context.Context, req Request, center model.GeoPoint) (*environment, []string, error) {
	if req.LocalOnly {
		return s.localEnvironment(center), []string{}, nil
	}

	env := &environment{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		env.current, err = s.weather.CurrentWeather(gctx, center)
		return err
	})
	g.Go(func() (err error) {
		env.forecast, err = s.weather.HeatForecast(gctx, center)
		return err
	})
	g.Go(func() (err error) {
		env.landTemp, err = s.nasa.SurfaceTemperature(gctx, center)
		return err
	})
	g.Go(func() (err error) {
		env.vegetation, err = s.nasa.VegetationIndex(gctx, center)
		return err
	})
	g.Go(func() (err error) {
		env.airQuality, err = s.nasa.AirQuality(gctx, center)
		return err
	})
	g.Go(func() error {
		// Best effort: a dead feed never blocks the analysis.
		advs, err := s.weather.Advisories(gctx, center)
		if err != nil {
			zap.L().Warn("analysis: advisory fetch failed", zap.Error(err))
			return nil
		}
		env.advisories = advs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return env, []string{"openweather", "nasa"}, nil
}

// localEnvironment synthesizes the environment from geography.
func (s *Service) localEnvironment(center model.GeoPoint) *environment {
	snap := s.local.Estimate(center)
	return &environment{
		current: &model.WeatherConditions{
			Temperature: snap.Temperature,
			FeelsLike:   snap.HeatIndex,
			Humidity:    snap.Humidity,
			Description: snap.ClimateZone,
		},
		landTemp: &model.LandSurfaceTemp{
			Day:   snap.Temperature + 8,
			Night: snap.Temperature - 3,
		},
		vegetation: &snap.Vegetation,
		airQuality: &model.AirQuality{AQI: 50 + snap.DensityScore*40, PM25: 8 + snap.DensityScore*15},
	}
}

// HeatIslandIntensity scores the heat island effect on a 0–10 scale as a
// weighted blend of weather, surface, vegetation and satellite factors.
func HeatIslandIntensity(
	features *model.UrbanFeatures,
	current *model.WeatherConditions,
	landTemp *model.LandSurfaceTemp,
	vegetation *model.VegetationIndex,
) float64 {
	temperatureFactor := math.Min((current.FeelsLike-current.Temperature)*2, 3.0)

	highAbsorption := 0
	for _, surf := range features.Surfaces {
		if surf.HeatAbsorption > 0.7 {
			highAbsorption++
		}
	}
	surfaceFactor := math.Min(float64(highAbsorption)*0.5, 2.5)

	vegetationRatio := 1.0
	if n := len(features.Buildings); n > 0 {
		vegetationRatio = float64(len(features.Vegetation)) / float64(n)
	}
	vegetationFactor := math.Max(0, 2.0-vegetationRatio*2.0)

	ndviFactor := math.Max(0, 2.0-vegetation.NDVI*4.0)

	tempFactor := math.Min((landTemp.Day-25)*0.2, 1.5)

	intensity := temperatureFactor*0.25 +
		surfaceFactor*0.30 +
		vegetationFactor*0.20 +
		ndviFactor*0.15 +
		tempFactor*0.10
	return clampIntensity(intensity)
}

// AssessRisk classifies the overall heat risk from the intensity score, the
// current heat index and the next two days of forecast.
func AssessRisk(intensity float64, current *model.WeatherConditions, forecast []model.HeatForecastPoint) model.RiskLevel {
	maxForecast := 25.0
	steps := forecast
	if len(steps) > 8 { // next two days
		steps = steps[:8]
	}
	for _, f := range steps {
		if f.HeatIndex > maxForecast {
			maxForecast = f.HeatIndex
		}
	}

	switch {
	case intensity >= 8.0 || current.FeelsLike >= 40 || maxForecast >= 38:
		return model.RiskExtreme
	case intensity >= 6.0 || current.FeelsLike >= 35 || maxForecast >= 33:
		return model.RiskHigh
	case intensity >= 4.0 || current.FeelsLike >= 30 || maxForecast >= 28:
		return model.RiskModerate
	default:
		return model.RiskLow
	}
}

// escalateRisk raises the risk classification one level. Applied when an
// official heat advisory is active for the area, whatever the computed score
// says.
func escalateRisk(risk model.RiskLevel) model.RiskLevel {
	switch risk {
	case model.RiskLow:
		return model.RiskModerate
	case model.RiskModerate:
		return model.RiskHigh
	default:
		return model.RiskExtreme
	}
}

// assembleMetrics builds the raw metric set fed to the display normalizer.
func assembleMetrics(intensity float64, features *model.UrbanFeatures, env *environment) []model.RawMetric {
	return []model.RawMetric{
		{Name: model.MetricHeatIslandIntensity, Value: intensity, Unit: model.UnitCelsius},
		{Name: model.MetricVegetationCoverage, Value: env.vegetation.Coverage, Unit: model.UnitPercent},
		{Name: model.MetricBuildingDensity, Value: buildingDensity(features), Unit: model.UnitPercent},
		{Name: model.MetricSurfaceTemperature, Value: env.landTemp.Day, Unit: model.UnitCelsius},
	}
}

// buildingDensity estimates built coverage in percent from the detected
// building count, saturating at 20 buildings per scene.
func buildingDensity(features *model.UrbanFeatures) float64 {
	return math.Min(100, float64(len(features.Buildings))*5)
}

// DeriveInterventions converts detected features into map markers: cooling
// features (vegetation, water) with negative magnitudes, heat sources with
// positive ones.
func DeriveInterventions(features *model.UrbanFeatures) []model.Intervention {
	var out []model.Intervention
	for _, veg := range features.Vegetation {
		magnitude := -1.5 - veg.Health // healthier canopy cools more
		out = append(out, model.Intervention{
			ID:        uuid.NewString(),
			Location:  veg.Location,
			Category:  model.CategoryTree,
			Magnitude: magnitude,
		})
	}
	for _, surf := range features.Surfaces {
		switch {
		case surf.Material == "water":
			out = append(out, model.Intervention{
				ID:        uuid.NewString(),
				Location:  surf.Location,
				Category:  model.CategoryWaterFeature,
				Magnitude: -1.5,
			})
		case surf.HeatAbsorption > 0.7:
			out = append(out, model.Intervention{
				ID:        uuid.NewString(),
				Location:  surf.Location,
				Category:  model.CategoryHotZone,
				Magnitude: surf.HeatAbsorption * 4,
			})
		}
	}
	return out
}
