package render

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coolcity/heatscan/internal/model"
)

func TestProject_Corners(t *testing.T) {
	nw := Project(model.GeoPoint{Lat: 90, Lng: -180}, 600, 400)
	assert.Equal(t, 0.0, nw.X)
	assert.Equal(t, 0.0, nw.Y)

	// The south-east corner clamps just inside the half-open range.
	se := Project(model.GeoPoint{Lat: -90, Lng: 180}, 600, 400)
	assert.Equal(t, math.Nextafter(600, 0), se.X)
	assert.Equal(t, math.Nextafter(400, 0), se.Y)
	assert.Less(t, se.X, 600.0)
	assert.Less(t, se.Y, 400.0)
}

func TestProject_Center(t *testing.T) {
	c := Project(model.GeoPoint{Lat: 0, Lng: 0}, 600, 400)
	assert.InDelta(t, 300, c.X, 1e-9)
	assert.InDelta(t, 200, c.Y, 1e-9)
}

func TestProject_AlwaysWithinSurface(t *testing.T) {
	points := []model.GeoPoint{
		{Lat: 37.7749, Lng: -122.4194},
		{Lat: -33.8688, Lng: 151.2093},
		{Lat: 89.9999, Lng: 179.9999},
		{Lat: -89.9999, Lng: -179.9999},
		{Lat: 0.0001, Lng: -0.0001},
	}
	for _, p := range points {
		for _, dim := range [][2]int{{600, 400}, {512, 512}, {1, 1}} {
			c := Project(p, dim[0], dim[1])
			assert.GreaterOrEqual(t, c.X, 0.0, "point %+v dims %v", p, dim)
			assert.Less(t, c.X, float64(dim[0]), "point %+v dims %v", p, dim)
			assert.GreaterOrEqual(t, c.Y, 0.0, "point %+v dims %v", p, dim)
			assert.Less(t, c.Y, float64(dim[1]), "point %+v dims %v", p, dim)
		}
	}
}

func TestProject_OutOfRangeClampsToEdge(t *testing.T) {
	// Invalid coordinates are clamped, not rejected: every marker stays
	// visible on the surface edge.
	over := Project(model.GeoPoint{Lat: 120, Lng: 250}, 600, 400)
	assert.Equal(t, math.Nextafter(600, 0), over.X)
	assert.Equal(t, 0.0, over.Y)

	under := Project(model.GeoPoint{Lat: -120, Lng: -250}, 600, 400)
	assert.Equal(t, 0.0, under.X)
	assert.Equal(t, math.Nextafter(400, 0), under.Y)
}

func TestProjectAll_PreservesOrder(t *testing.T) {
	points := []model.GeoPoint{{Lat: 10, Lng: 20}, {Lat: -10, Lng: -20}, {Lat: 0, Lng: 0}}
	coords := ProjectAll(points, 600, 400)
	assert.Len(t, coords, len(points))
	for i, p := range points {
		assert.Equal(t, Project(p, 600, 400), coords[i])
	}
}
