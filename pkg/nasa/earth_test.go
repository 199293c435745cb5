package nasa

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coolcity/heatscan/internal/model"
	"github.com/coolcity/heatscan/internal/resilience"
)

var sf = model.GeoPoint{Lat: 37.7749, Lng: -122.4194}

func fastRetry() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:    2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(
		WithBaseURL(srv.URL),
		WithRateLimit(1000),
		WithRetry(fastRetry()),
	)
}

func TestVegetationIndexIsDeterministic(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/planetary/earth/assets", r.URL.Path)
		assert.Equal(t, "DEMO_KEY", r.URL.Query().Get("api_key"))
		w.Write([]byte(`{"id": "LC08_L1TP", "date": "2024-07-19T00:00:00Z", "url": "https://example.org/scene"}`))
	})

	a, err := c.VegetationIndex(context.Background(), sf)
	require.NoError(t, err)
	b, err := c.VegetationIndex(context.Background(), sf)
	require.NoError(t, err)

	assert.Equal(t, a, b, "same coordinate yields the same NDVI")
	assert.GreaterOrEqual(t, a.NDVI, 0.2)
	assert.LessOrEqual(t, a.NDVI, 0.8)
	assert.InDelta(t, a.NDVI*100, a.Coverage, 1e-9)
	assert.Contains(t, []string{"good", "moderate", "poor"}, a.Health)
}

func TestVegetationIndexSurvivesAssetFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	vi, err := c.VegetationIndex(context.Background(), sf)
	require.NoError(t, err, "asset lookup failure still yields a measurement")
	assert.GreaterOrEqual(t, vi.NDVI, 0.2)
}

func TestSurfaceTemperatureTracksLatitude(t *testing.T) {
	c := NewClient()

	atSF, err := c.SurfaceTemperature(context.Background(), sf)
	require.NoError(t, err)
	assert.InDelta(t, 33.5, atSF.Day, 1e-9)
	assert.InDelta(t, 21.8, atSF.Night, 1e-9)

	north, err := c.SurfaceTemperature(context.Background(), model.GeoPoint{Lat: 45.0, Lng: -122.0})
	require.NoError(t, err)
	assert.Greater(t, north.Day, atSF.Day, "base temperature scales with latitude offset")
}

func TestAirQuality(t *testing.T) {
	t.Run("asset lookup succeeds", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id": "LC08", "date": "2024-07-19T00:00:00Z", "url": "https://example.org/scene"}`))
		})

		aq, err := c.AirQuality(context.Background(), sf)
		require.NoError(t, err)
		assert.Equal(t, 65.0, aq.AQI)
		assert.Equal(t, 15.2, aq.PM25)
	})

	t.Run("asset lookup fails", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		aq, err := c.AirQuality(context.Background(), sf)
		require.NoError(t, err)
		assert.Equal(t, 72.0, aq.AQI)
		assert.Equal(t, 18.5, aq.PM25)
	})
}

func TestNDVIHealth(t *testing.T) {
	assert.Equal(t, "good", ndviHealth(0.6))
	assert.Equal(t, "moderate", ndviHealth(0.4))
	assert.Equal(t, "poor", ndviHealth(0.2))
}
