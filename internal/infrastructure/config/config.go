package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Desktop   DesktopConfig
	Progress  ProgressConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string   `envconfig:"PORT" default:"8000"`
	Host         string   `envconfig:"HOST" default:"0.0.0.0"`
	AllowOrigins []string `envconfig:"ALLOW_ORIGINS" default:"*"`
}

// DesktopConfig holds desktop surface and storage configuration.
type DesktopConfig struct {
	Namespace      string   `envconfig:"DESKTOP_NAMESPACE" default:"phalanx"`
	DataDir        string   `envconfig:"DESKTOP_DATA_DIR" default:"./data"`
	CatalogDir     string   `envconfig:"DESKTOP_CATALOG_DIR" default:"./data/catalog"`
	ViewportWidth  float64  `envconfig:"DESKTOP_VIEWPORT_WIDTH" default:"1920"`
	ViewportHeight float64  `envconfig:"DESKTOP_VIEWPORT_HEIGHT" default:"1080"`
	TaskbarHeight  float64  `envconfig:"DESKTOP_TASKBAR_HEIGHT" default:"48"`
	MinWindowSize  float64  `envconfig:"DESKTOP_MIN_WINDOW_SIZE" default:"200"`
	TutorialDelay  int      `envconfig:"DESKTOP_TUTORIAL_DELAY_MS" default:"1500"`
	DeferredIDs    []string `envconfig:"DESKTOP_DEFERRED_IDS" default:"hud"`
}

// ProgressConfig holds the external progression service configuration.
type ProgressConfig struct {
	Address string `envconfig:"PROGRESS_ADDR" default:"http://localhost:5000"`
	Enabled bool   `envconfig:"PROGRESS_ENABLED" default:"true"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8000",
			Host:         "0.0.0.0",
			AllowOrigins: []string{"*"},
		},
		Desktop: DesktopConfig{
			Namespace:      "phalanx",
			DataDir:        "./data",
			CatalogDir:     "./data/catalog",
			ViewportWidth:  1920,
			ViewportHeight: 1080,
			TaskbarHeight:  48,
			MinWindowSize:  200,
			TutorialDelay:  1500,
			DeferredIDs:    []string{"hud"},
		},
		Progress: ProgressConfig{
			Address: "http://localhost:5000",
			Enabled: true,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
