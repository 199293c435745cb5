// Package geo resolves map viewports and marker sets to geographic extents.
package geo

import (
	"math"

	"github.com/twpayne/go-geom"

	"github.com/coolcity/heatscan/internal/model"
)

// Full longitudinal span of the world at zoom 0, halving per zoom level —
// the usual web-map convention, applied here on plain equirectangular axes.
const baseSpanDegrees = 360.0

// SpanDegrees returns the longitudinal extent of a viewport at the given
// zoom level.
func SpanDegrees(zoom int) float64 {
	if zoom < 0 {
		zoom = 0
	}
	return baseSpanDegrees / math.Pow(2, float64(zoom))
}

// ViewportBounds returns the geographic bounding box of a viewport. The
// latitudinal span is half the longitudinal one, matching the engine's 3:2
// canonical surface. Latitude edges are clamped to the valid range; longitude
// is clamped rather than wrapped, consistent with the engine's edge-clamping
// projection.
func ViewportBounds(v model.Viewport) *geom.Bounds {
	spanLng := SpanDegrees(v.Zoom)
	spanLat := spanLng / 2

	minLng := clamp(v.Center.Lng-spanLng/2, -180, 180)
	maxLng := clamp(v.Center.Lng+spanLng/2, -180, 180)
	minLat := clamp(v.Center.Lat-spanLat/2, -90, 90)
	maxLat := clamp(v.Center.Lat+spanLat/2, -90, 90)

	return geom.NewBounds(geom.XY).Set(minLng, minLat, maxLng, maxLat)
}

// MarkerBounds returns the bounding box covering every intervention, or nil
// for an empty set.
func MarkerBounds(interventions []model.Intervention) *geom.Bounds {
	if len(interventions) == 0 {
		return nil
	}
	b := geom.NewBounds(geom.XY)
	for _, iv := range interventions {
		b.Extend(geom.NewPointFlat(geom.XY, []float64{iv.Location.Lng, iv.Location.Lat}))
	}
	return b
}

// Haversine returns the great-circle distance between two points in
// kilometers. Used by the local fallback analyzer for metro proximity.
func Haversine(a, b model.GeoPoint) float64 {
	const earthRadiusKm = 6371.0

	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
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
