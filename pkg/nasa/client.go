// Package nasa provides satellite environmental data: NDVI vegetation index,
// MODIS-style land surface temperature, and air quality. The public NASA API
// serves a DEMO_KEY tier; when requests fail or no key is configured the
// client degrades to deterministic location-seeded mock data.
package nasa

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/coolcity/heatscan/internal/model"
	"github.com/coolcity/heatscan/internal/resilience"
)

// demoKey is NASA's public rate-limited key, used when none is configured.
const demoKey = "DEMO_KEY"

// Client fetches satellite environmental data for a coordinate.
type Client interface {
	// VegetationIndex returns the NDVI measurement at a point.
	VegetationIndex(ctx context.Context, pt model.GeoPoint) (*model.VegetationIndex, error)

	// SurfaceTemperature returns day/night land surface temperature at a point.
	SurfaceTemperature(ctx context.Context, pt model.GeoPoint) (*model.LandSurfaceTemp, error)

	// AirQuality returns the air quality snapshot at a point.
	AirQuality(ctx context.Context, pt model.GeoPoint) (*model.AirQuality, error)
}

// Option configures the NASA client.
type Option func(*client)

// WithAPIKey sets the NASA API key. Defaults to the public DEMO_KEY.
func WithAPIKey(key string) Option {
	return func(c *client) {
		if key != "" {
			c.apiKey = key
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithBaseURL overrides the NASA API base URL. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *client) {
		c.baseURL = u
	}
}

// WithRateLimit sets the requests-per-second limit for API calls.
func WithRateLimit(rps float64) Option {
	return func(c *client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps)+1)
	}
}

// WithRetry overrides the retry policy for API calls.
func WithRetry(rc resilience.RetryConfig) Option {
	return func(c *client) {
		c.retry = rc
	}
}

type client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      resilience.RetryConfig
}

// NewClient creates a NASA Client with the given options.
func NewClient(opts ...Option) Client {
	c := &client{
		apiKey:     demoKey,
		baseURL:    "https://api.nasa.gov",
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(0.5), 2), // DEMO_KEY tier: 30 req/h
		retry:      resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
