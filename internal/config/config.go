package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Surface SurfaceConfig `yaml:"surface" mapstructure:"surface"`
	Render  RenderConfig  `yaml:"render" mapstructure:"render"`
	Imagery ImageryConfig `yaml:"imagery" mapstructure:"imagery"`
	Weather WeatherConfig `yaml:"weather" mapstructure:"weather"`
	NASA    NASAConfig    `yaml:"nasa" mapstructure:"nasa"`
	Vision  VisionConfig  `yaml:"vision" mapstructure:"vision"`
	Advisor AdvisorConfig `yaml:"advisor" mapstructure:"advisor"`
	Export  ExportConfig  `yaml:"export" mapstructure:"export"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// SurfaceConfig sets the pixel dimensions of the composited map surface.
type SurfaceConfig struct {
	Width  int `yaml:"width" mapstructure:"width"`
	Height int `yaml:"height" mapstructure:"height"`
}

// RenderConfig configures layer compositing.
type RenderConfig struct {
	HeatOpacity float64 `yaml:"heat_opacity" mapstructure:"heat_opacity"`
}

// ImageryConfig configures the tile/imagery fetcher.
type ImageryConfig struct {
	UserAgent     string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs   int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit     float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	CacheSize     int     `yaml:"cache_size" mapstructure:"cache_size"`
	CacheTTLHours int     `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
}

// WeatherConfig holds OpenWeather API settings.
type WeatherConfig struct {
	Key          string `yaml:"key" mapstructure:"key"`
	AlertFeedURL string `yaml:"alert_feed_url" mapstructure:"alert_feed_url"`
}

// NASAConfig holds NASA API settings.
type NASAConfig struct {
	Key string `yaml:"key" mapstructure:"key"`
}

// VisionConfig holds the satellite vision analysis service settings.
type VisionConfig struct {
	Key              string `yaml:"key" mapstructure:"key"`
	BaseURL          string `yaml:"base_url" mapstructure:"base_url"`
	PollIntervalSecs int    `yaml:"poll_interval_secs" mapstructure:"poll_interval_secs"`
	MaxWaitSecs      int    `yaml:"max_wait_secs" mapstructure:"max_wait_secs"`
}

// AdvisorConfig holds Anthropic API settings for recommendation drafting.
type AdvisorConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// ExportConfig configures result export.
type ExportConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port                int `yaml:"port" mapstructure:"port"`
	TaskRetentionHours  int `yaml:"task_retention_hours" mapstructure:"task_retention_hours"`
	ShutdownTimeoutSecs int `yaml:"shutdown_timeout_secs" mapstructure:"shutdown_timeout_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Timeout returns the imagery fetch timeout as a duration.
func (c ImageryConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// CacheTTL returns the imagery cache TTL as a duration.
func (c ImageryConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLHours) * time.Hour
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("HEATSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("surface.width", 600)
	v.SetDefault("surface.height", 400)
	v.SetDefault("render.heat_opacity", 0.35)
	v.SetDefault("imagery.user_agent", "heatscan/1.0")
	v.SetDefault("imagery.timeout_secs", 30)
	v.SetDefault("imagery.rate_limit", 2)
	v.SetDefault("imagery.cache_size", 256)
	v.SetDefault("imagery.cache_ttl_hours", 24)
	v.SetDefault("vision.base_url", "https://api.coolcity-vision.example.com")
	v.SetDefault("vision.poll_interval_secs", 10)
	v.SetDefault("vision.max_wait_secs", 600)
	v.SetDefault("advisor.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("export.dir", ".")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.task_retention_hours", 24)
	v.SetDefault("server.shutdown_timeout_secs", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the configuration is usable for the given mode
// ("analyze", "render", "serve", "export"). Collected problems are reported
// together.
func (c *Config) Validate(mode string) error {
	var problems []string

	// Shared surface checks apply to every mode.
	if c.Surface.Width <= 0 || c.Surface.Height <= 0 {
		problems = append(problems, "surface dimensions must be > 0")
	}
	if c.Render.HeatOpacity < 0 || c.Render.HeatOpacity > 1 {
		problems = append(problems, "render.heat_opacity must be within [0, 1]")
	}

	switch mode {
	case "analyze", "render", "export":
		// Collaborator keys are optional: every client degrades to local or
		// mock data without one.
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		if c.Server.TaskRetentionHours <= 0 {
			problems = append(problems, "server.task_retention_hours must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: invalid for %s: %s", mode, strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
