// Package render implements the geospatial compositing engine: projecting
// geographic coordinates onto a fixed-size canonical surface, layering raster
// imagery with per-layer opacity, and placing intervention markers.
package render

import (
	"math"

	"github.com/coolcity/heatscan/internal/model"
)

// Project maps a geographic point onto a width×height surface using an
// equirectangular linear mapping:
//
//	x = ((lng + 180) / 360) * width
//	y = ((90 - lat) / 180) * height
//
// Each axis is then clamped to [0, width) and [0, height) so out-of-range
// coordinates land on the surface edge instead of being dropped. This is a
// deliberate simplification — there is no Mercator or geodesic correction —
// and positions drift from metric accuracy away from the equator. Callers
// needing metric accuracy must supply their own projection.
func Project(p model.GeoPoint, width, height int) model.SurfaceCoordinate {
	x := ((p.Lng + 180) / 360) * float64(width)
	y := ((90 - p.Lat) / 180) * float64(height)
	return model.SurfaceCoordinate{
		X: clampAxis(x, float64(width)),
		Y: clampAxis(y, float64(height)),
	}
}

// ProjectAll projects every point, preserving input order.
func ProjectAll(points []model.GeoPoint, width, height int) []model.SurfaceCoordinate {
	coords := make([]model.SurfaceCoordinate, len(points))
	for i, p := range points {
		coords[i] = Project(p, width, height)
	}
	return coords
}

// clampAxis clamps v into the half-open interval [0, limit).
func clampAxis(v, limit float64) float64 {
	if v < 0 {
		return 0
	}
	if v >= limit {
		return math.Nextafter(limit, 0)
	}
	return v
}
