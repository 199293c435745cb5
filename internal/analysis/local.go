// Package analysis orchestrates the collaborator clients into a single
// heat-island analysis: visual features, weather, satellite data and
// recommendations, folded into display metrics and intervention markers.
package analysis

import (
	"math"

	"github.com/coolcity/heatscan/internal/geo"
	"github.com/coolcity/heatscan/internal/model"
)

// LocalAnalyzer estimates urban conditions from geography alone. It backs the
// engine when the vision collaborator is unavailable, and the `analyze
// --local` mode that runs fully offline.
type LocalAnalyzer struct{}

// knownCity anchors the vegetation heuristic to a metro center.
type knownCity struct {
	point   model.GeoPoint
	name    string
	baseVeg float64
}

var urbanCenters = []knownCity{
	{model.GeoPoint{Lat: 40.7589, Lng: -73.9851}, "NYC", 0.20},
	{model.GeoPoint{Lat: 34.0522, Lng: -118.2437}, "Los Angeles", 0.25},
	{model.GeoPoint{Lat: 41.8781, Lng: -87.6298}, "Chicago", 0.30},
	{model.GeoPoint{Lat: 37.7749, Lng: -122.4194}, "San Francisco", 0.35},
	{model.GeoPoint{Lat: 25.7617, Lng: -80.1918}, "Miami", 0.40},
	{model.GeoPoint{Lat: 29.7604, Lng: -95.3698}, "Houston", 0.25},
	{model.GeoPoint{Lat: 33.4484, Lng: -112.0740}, "Phoenix", 0.15},
}

// metroArea anchors the density heuristic.
type metroArea struct {
	point   model.GeoPoint
	name    string
	density float64
}

var metroAreas = []metroArea{
	{model.GeoPoint{Lat: 40.7589, Lng: -73.9851}, "NYC Metro", 0.95},
	{model.GeoPoint{Lat: 34.0522, Lng: -118.2437}, "LA Metro", 0.85},
	{model.GeoPoint{Lat: 41.8781, Lng: -87.6298}, "Chicago Metro", 0.80},
	{model.GeoPoint{Lat: 37.7749, Lng: -122.4194}, "SF Bay Area", 0.90},
	{model.GeoPoint{Lat: 25.7617, Lng: -80.1918}, "Miami Metro", 0.75},
}

// LocalSnapshot is the geography-derived estimate of local conditions.
type LocalSnapshot struct {
	Vegetation   model.VegetationIndex
	DensityScore float64 // 0–1
	MetroArea    string
	ClimateZone  string
	Temperature  float64
	Humidity     float64
	HeatIndex    float64
	Intensity    float64 // 0–10
}

// Estimate derives a full local snapshot for a coordinate. Pure and
// deterministic.
func (LocalAnalyzer) Estimate(pt model.GeoPoint) LocalSnapshot {
	veg := estimateVegetation(pt)
	density, metro := estimateDensity(pt)
	temp, humidity := estimateClimate(pt)
	heatIndex := simpleHeatIndex(temp, humidity)

	baseHeat := math.Max(0, (heatIndex-20)/5)
	intensity := clampIntensity(baseHeat + density*4 - veg.NDVI*3)

	return LocalSnapshot{
		Vegetation:   veg,
		DensityScore: density,
		MetroArea:    metro,
		ClimateZone:  climateZone(math.Abs(pt.Lat)),
		Temperature:  temp,
		Humidity:     humidity,
		HeatIndex:    heatIndex,
		Intensity:    intensity,
	}
}

// SyntheticFeatures fabricates urban features consistent with the local
// snapshot, for use when no visual analysis is available. Feature counts and
// positions are deterministic functions of the coordinate.
func (a LocalAnalyzer) SyntheticFeatures(pt model.GeoPoint) *model.UrbanFeatures {
	snap := a.Estimate(pt)

	buildings := int(math.Round(snap.DensityScore * 20))
	vegetation := int(math.Round(snap.Vegetation.NDVI * 10))

	features := &model.UrbanFeatures{}
	for i := 0; i < buildings; i++ {
		features.Buildings = append(features.Buildings, model.Building{
			Location: offsetPoint(pt, i, 0.002),
			Height:   5 + snap.DensityScore*20,
			Area:     400 + float64(i%4)*200,
		})
	}

	// Paved share grows with density.
	paved := []model.SurfaceRegion{
		{Location: offsetPoint(pt, 0, 0.004), Material: "asphalt", HeatAbsorption: 0.9},
		{Location: offsetPoint(pt, 1, 0.004), Material: "concrete", HeatAbsorption: 0.8},
	}
	if snap.DensityScore < 0.5 {
		paved = append(paved, model.SurfaceRegion{
			Location: offsetPoint(pt, 2, 0.004), Material: "grass", HeatAbsorption: 0.3,
		})
	}
	features.Surfaces = paved

	for i := 0; i < vegetation; i++ {
		features.Vegetation = append(features.Vegetation, model.VegetationRegion{
			Location: offsetPoint(pt, i, 0.003),
			Kind:     "trees",
			Health:   snap.Vegetation.NDVI,
		})
	}
	return features
}

// offsetPoint spreads synthetic features on a small ring around the center.
func offsetPoint(pt model.GeoPoint, i int, radius float64) model.GeoPoint {
	angle := float64(i) * math.Pi / 5
	return model.GeoPoint{
		Lat: pt.Lat + radius*math.Sin(angle),
		Lng: pt.Lng + radius*math.Cos(angle),
	}
}

func estimateVegetation(pt model.GeoPoint) model.VegetationIndex {
	base := 0.5
	minDistance := math.Inf(1)
	for _, city := range urbanCenters {
		d := geo.Haversine(pt, city.point)
		if d < minDistance {
			minDistance = d
			if d < 50 {
				base = city.baseVeg + (d/50)*0.3
			}
		}
	}

	ndvi := math.Min(1.0, base*climateMultiplier(pt))
	return model.VegetationIndex{
		NDVI:     ndvi,
		Coverage: ndvi * 100,
		Health:   vegetationHealth(ndvi),
	}
}

func climateMultiplier(pt model.GeoPoint) float64 {
	absLat := math.Abs(pt.Lat)
	switch {
	case absLat < 10:
		return 1.8
	case absLat < 23.5:
		if pt.Lng > -30 && pt.Lng < 50 && pt.Lat > 15 && pt.Lat < 35 {
			return 0.3 // desert belt
		}
		return 1.4
	case absLat < 45:
		return 1.2
	case absLat < 60:
		return 1.6
	default:
		return 0.2
	}
}

func vegetationHealth(ndvi float64) string {
	switch {
	case ndvi > 0.7:
		return "excellent"
	case ndvi > 0.5:
		return "good"
	case ndvi > 0.3:
		return "moderate"
	case ndvi > 0.15:
		return "poor"
	default:
		return "very_poor"
	}
}

func estimateDensity(pt model.GeoPoint) (float64, string) {
	density := 0.2
	name := "Rural/Suburban"
	minDistance := math.Inf(1)
	for _, metro := range metroAreas {
		d := geo.Haversine(pt, metro.point)
		if d < minDistance {
			minDistance = d
			if d < 100 {
				density = math.Max(0.1, metro.density-(d/100)*0.7)
				name = metro.name
			}
		}
	}
	return density, name
}

func estimateClimate(pt model.GeoPoint) (temp, humidity float64) {
	absLat := math.Abs(pt.Lat)
	switch {
	case absLat < 10:
		temp, humidity = 28, 80
	case absLat < 23.5:
		temp, humidity = 25, 65
	case absLat < 45:
		temp, humidity = 18, 60
	case absLat < 60:
		temp, humidity = 8, 70
	default:
		temp, humidity = -5, 85
	}

	if coastalDistance(pt) < 100 {
		temp -= 2
		humidity += 10
	}
	return temp, humidity
}

// coastalDistance is a crude coastline proximity estimate in km.
func coastalDistance(pt model.GeoPoint) float64 {
	switch {
	case math.Abs(pt.Lng) < 10:
		return math.Min(200, math.Abs(pt.Lng)*50)
	case pt.Lng < -100:
		return math.Min(300, math.Abs(pt.Lng+120)*40)
	default:
		return 500
	}
}

func climateZone(absLat float64) string {
	switch {
	case absLat < 10:
		return "Tropical"
	case absLat < 23.5:
		return "Subtropical"
	case absLat < 45:
		return "Temperate"
	case absLat < 60:
		return "Boreal"
	default:
		return "Polar"
	}
}

// simpleHeatIndex is the Rothfusz regression applied directly in Celsius
// terms, floored at the air temperature.
func simpleHeatIndex(temp, humidity float64) float64 {
	if temp < 26 {
		return temp
	}
	hi := -42.379 + 2.04901523*temp + 10.14333127*humidity -
		0.22475541*temp*humidity - 0.00683783*temp*temp -
		0.05481717*humidity*humidity + 0.00122874*temp*temp*humidity +
		0.00085282*temp*humidity*humidity - 0.00000199*temp*temp*humidity*humidity
	return math.Max(temp, hi)
}

func clampIntensity(v float64) float64 {
	return math.Max(0, math.Min(10, v))
}
