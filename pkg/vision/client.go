// Package vision extracts urban features (buildings, ground surfaces,
// vegetation) from satellite imagery via an asynchronous analysis service:
// submit an image, poll the task until ready, then map the detections into
// model types. A circuit breaker shields the engine from a flapping upstream.
package vision

import (
	"context"
	"net/http"
	"time"

	"github.com/coolcity/heatscan/internal/model"
	"github.com/coolcity/heatscan/internal/resilience"
)

// Client analyzes satellite imagery for urban features.
type Client interface {
	// ExtractFeatures submits an image for analysis and blocks until the
	// detections are ready or the context expires.
	ExtractFeatures(ctx context.Context, imageRef string, center model.GeoPoint) (*model.UrbanFeatures, error)
}

// Option configures the vision client.
type Option func(*client)

// WithAPIKey sets the analysis service API key.
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

// WithBaseURL overrides the analysis service base URL. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *client) {
		c.baseURL = u
	}
}

// WithPollInterval sets the delay between task status checks.
func WithPollInterval(d time.Duration) Option {
	return func(c *client) {
		c.pollInterval = d
	}
}

// WithMaxWait caps how long ExtractFeatures waits for a task to finish.
func WithMaxWait(d time.Duration) Option {
	return func(c *client) {
		c.maxWait = d
	}
}

// WithCircuitBreaker overrides the breaker guarding upstream calls.
func WithCircuitBreaker(cb *resilience.CircuitBreaker) Option {
	return func(c *client) {
		c.breaker = cb
	}
}

type client struct {
	apiKey       string
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
	maxWait      time.Duration
	breaker      *resilience.CircuitBreaker
}

// NewClient creates a vision Client with the given options.
func NewClient(opts ...Option) Client {
	c := &client{
		baseURL:      "https://api.coolcity-vision.example.com",
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		pollInterval: 10 * time.Second,
		maxWait:      10 * time.Minute,
		breaker: resilience.NewCircuitBreaker("vision", resilience.CircuitBreakerConfig{
			FailureThreshold: 5,
			ResetTimeout:     30 * time.Second,
		}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
