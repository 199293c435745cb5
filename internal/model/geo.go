package model

// GeoPoint is a WGS84 coordinate pair. Latitude runs south→north in
// [-90, 90], longitude west→east in [-180, 180]. Value type, never mutated.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SurfaceCoordinate is a pixel position on the canonical rendering surface.
// X is in [0, width) and Y in [0, height). It is always derived from a
// GeoPoint via the projection and never persisted on its own.
type SurfaceCoordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Viewport is a resolved map selection: a center point plus a web-map zoom
// level. Produced by the map-provider widget upstream of this engine.
type Viewport struct {
	Center GeoPoint `json:"center"`
	Zoom   int      `json:"zoom"`
}
