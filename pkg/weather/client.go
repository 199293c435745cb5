// Package weather provides current conditions, heat-index forecasts and heat
// advisories from OpenWeather and CAP alert feeds. Without an API key every
// call returns deterministic mock data so the rest of the engine keeps
// working offline.
package weather

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/coolcity/heatscan/internal/model"
	"github.com/coolcity/heatscan/internal/resilience"
)

// Client fetches climate data for a coordinate.
type Client interface {
	// CurrentWeather returns the current conditions at a point.
	CurrentWeather(ctx context.Context, pt model.GeoPoint) (*model.WeatherConditions, error)

	// HeatForecast returns the 5-day forecast with heat index per step.
	HeatForecast(ctx context.Context, pt model.GeoPoint) ([]model.HeatForecastPoint, error)

	// Advisories returns active heat advisories near a point, parsed from a
	// CAP/Atom alert feed.
	Advisories(ctx context.Context, pt model.GeoPoint) ([]Advisory, error)
}

// Advisory is one active heat alert from the CAP feed.
type Advisory struct {
	ID       string
	Title    string
	Severity string
	Expires  time.Time
}

// Option configures the weather client.
type Option func(*client)

// WithAPIKey sets the OpenWeather API key. Without one the client serves
// mock data.
func WithAPIKey(key string) Option {
	return func(c *client) {
		c.apiKey = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithBaseURL overrides the OpenWeather API base URL. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *client) {
		c.baseURL = u
	}
}

// WithAlertFeedURL sets the CAP/Atom alert feed URL. Without one Advisories
// returns an empty slice.
func WithAlertFeedURL(u string) Option {
	return func(c *client) {
		c.alertFeedURL = u
	}
}

// WithRateLimit sets the requests-per-second limit for API calls.
func WithRateLimit(rps float64) Option {
	return func(c *client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps))
	}
}

// WithRetry overrides the retry policy for API calls.
func WithRetry(rc resilience.RetryConfig) Option {
	return func(c *client) {
		c.retry = rc
	}
}

type client struct {
	apiKey       string
	baseURL      string
	alertFeedURL string
	httpClient   *http.Client
	limiter      *rate.Limiter
	retry        resilience.RetryConfig
}

// NewClient creates a weather Client with the given options.
func NewClient(opts ...Option) Client {
	c := &client{
		baseURL:    "https://api.openweathermap.org/data/2.5",
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(1, 5), // OpenWeather free tier: 60 req/min
		retry:      resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
