package main

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/coolcity/heatscan/internal/analysis"
	"github.com/coolcity/heatscan/internal/config"
	"github.com/coolcity/heatscan/internal/imagery"
	"github.com/coolcity/heatscan/internal/render"
	"github.com/coolcity/heatscan/pkg/advisor"
	"github.com/coolcity/heatscan/pkg/nasa"
	"github.com/coolcity/heatscan/pkg/vision"
	"github.com/coolcity/heatscan/pkg/weather"
)

// newAnalysisService wires the collaborator clients from config. Clients with
// no credentials degrade to local or mock data internally.
func newAnalysisService(cfg *config.Config) *analysis.Service {
	opts := []analysis.ServiceOption{
		analysis.WithWeather(weather.NewClient(
			weather.WithAPIKey(cfg.Weather.Key),
			weather.WithAlertFeedURL(cfg.Weather.AlertFeedURL),
		)),
		analysis.WithNASA(nasa.NewClient(nasa.WithAPIKey(cfg.NASA.Key))),
		analysis.WithAdvisor(advisor.New(cfg.Advisor.Key, advisor.WithModel(cfg.Advisor.Model))),
	}
	if cfg.Vision.Key != "" {
		opts = append(opts, analysis.WithVision(vision.NewClient(
			vision.WithAPIKey(cfg.Vision.Key),
			vision.WithBaseURL(cfg.Vision.BaseURL),
			vision.WithPollInterval(time.Duration(cfg.Vision.PollIntervalSecs)*time.Second),
			vision.WithMaxWait(time.Duration(cfg.Vision.MaxWaitSecs)*time.Second),
		)))
	}
	return analysis.NewService(opts...)
}

// newImagerySource wires the shared image fetcher from config. The source is
// safe for concurrent use and carries the tile cache, so one instance serves
// every compositor built on top of it.
func newImagerySource(cfg *config.Config) *imagery.Source {
	return imagery.NewSource(imagery.Options{
		UserAgent: cfg.Imagery.UserAgent,
		Timeout:   cfg.Imagery.Timeout(),
		RateLimit: rate.Limit(cfg.Imagery.RateLimit),
		RateBurst: int(cfg.Imagery.RateLimit) + 1,
		CacheSize: cfg.Imagery.CacheSize,
		CacheTTL:  cfg.Imagery.CacheTTL(),
	})
}

// newCompositor builds a layer compositor over a fresh imagery source.
func newCompositor(cfg *config.Config) *render.Compositor {
	return render.NewCompositor(cfg.Surface.Width, cfg.Surface.Height, cfg.Render.HeatOpacity, newImagerySource(cfg))
}
