package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coolcity/heatscan/internal/model"
	"github.com/coolcity/heatscan/internal/resilience"
)

var testPoint = model.GeoPoint{Lat: 40.7128, Lng: -74.0060}

func fastRetry() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}
}

func TestCurrentWeatherMockWithoutAPIKey(t *testing.T) {
	c := NewClient()

	cond, err := c.CurrentWeather(context.Background(), testPoint)
	require.NoError(t, err)
	assert.Equal(t, 28.5, cond.Temperature)
	assert.Equal(t, 31.2, cond.FeelsLike)
	assert.Equal(t, "partly cloudy", cond.Description)
}

func TestCurrentWeatherFromAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		w.Write([]byte(`{
			"main": {"temp": 33.1, "feels_like": 36.4, "humidity": 70},
			"weather": [{"description": "clear sky"}],
			"wind": {"speed": 2.1},
			"clouds": {"all": 5}
		}`))
	}))
	defer srv.Close()

	c := NewClient(WithAPIKey("test-key"), WithBaseURL(srv.URL))

	cond, err := c.CurrentWeather(context.Background(), testPoint)
	require.NoError(t, err)
	assert.Equal(t, 33.1, cond.Temperature)
	assert.Equal(t, 36.4, cond.FeelsLike)
	assert.Equal(t, 70.0, cond.Humidity)
	assert.Equal(t, 2.1, cond.WindSpeed)
	assert.Equal(t, 5.0, cond.Cloudiness)
	assert.Equal(t, "clear sky", cond.Description)
}

func TestCurrentWeatherFallsBackToMockOnUpstreamFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(WithAPIKey("test-key"), WithBaseURL(srv.URL), WithRetry(fastRetry()))

	cond, err := c.CurrentWeather(context.Background(), testPoint)
	require.NoError(t, err, "upstream failure degrades to mock data, not an error")
	assert.Equal(t, 28.5, cond.Temperature)
	assert.Equal(t, int32(3), calls.Load(), "503 is retried before giving up")
}

func TestCurrentWeatherFallsBackToMockOnUnparsableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not json"))
	}))
	defer srv.Close()

	c := NewClient(WithAPIKey("test-key"), WithBaseURL(srv.URL), WithRetry(fastRetry()))

	cond, err := c.CurrentWeather(context.Background(), testPoint)
	require.NoError(t, err, "a 200 with a garbage body degrades to mock data, not an error")
	assert.Equal(t, 28.5, cond.Temperature)
	assert.Equal(t, 31.2, cond.FeelsLike)
}

func TestHeatForecastFallsBackToMockOnUnparsableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance page</html>"))
	}))
	defer srv.Close()

	c := NewClient(WithAPIKey("test-key"), WithBaseURL(srv.URL), WithRetry(fastRetry()))

	steps, err := c.HeatForecast(context.Background(), testPoint)
	require.NoError(t, err)
	assert.Len(t, steps, forecastSteps)
}

func TestHeatForecastFromAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		w.Write([]byte(`{
			"list": [
				{"dt_txt": "2024-07-19 12:00:00", "main": {"temp": 35.0, "humidity": 60}},
				{"dt_txt": "2024-07-19 18:00:00", "main": {"temp": 22.0, "humidity": 80}}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient(WithAPIKey("test-key"), WithBaseURL(srv.URL))

	forecast, err := c.HeatForecast(context.Background(), testPoint)
	require.NoError(t, err)
	require.Len(t, forecast, 2)

	assert.Equal(t, time.Date(2024, time.July, 19, 12, 0, 0, 0, time.UTC), forecast[0].Time)
	assert.Greater(t, forecast[0].HeatIndex, 35.0, "hot humid air feels hotter than measured")
	assert.Equal(t, 22.0, forecast[1].HeatIndex, "below the regression floor the index equals the temperature")
}

func TestHeatForecastMockIsDeterministic(t *testing.T) {
	c := NewClient()

	a, err := c.HeatForecast(context.Background(), testPoint)
	require.NoError(t, err)
	b, err := c.HeatForecast(context.Background(), testPoint)
	require.NoError(t, err)

	assert.Len(t, a, 20)
	assert.Equal(t, a, b)
}

func TestHeatIndex(t *testing.T) {
	tests := []struct {
		name     string
		tempC    float64
		humidity float64
		wantMin  float64
		wantMax  float64
	}{
		{"below regression floor", 20.0, 90, 20.0, 20.0},
		{"hot and humid", 32.0, 70, 38.0, 42.0},
		{"hot and dry", 38.0, 15, 35.0, 38.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HeatIndex(tt.tempC, tt.humidity)
			assert.GreaterOrEqual(t, got, tt.wantMin)
			assert.LessOrEqual(t, got, tt.wantMax)
		})
	}
}
