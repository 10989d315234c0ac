package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// General
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	ListenAddr  string `envconfig:"LISTEN_ADDR" default:":8080"`

	// Vercel (hosting platform). Operations fail with a not-configured error
	// when the token is absent; the server still starts.
	VercelToken  string `envconfig:"VERCEL_TOKEN"`
	VercelTeamID string `envconfig:"VERCEL_TEAM_ID"` // optional team scope, appended to every call

	// GitHub (source-control host)
	GitHubToken string `envconfig:"GITHUB_TOKEN"`

	// Dashboard API surface
	CORSOrigins string `envconfig:"CORS_ORIGINS"`
	APIKey      string `envconfig:"API_KEY"` // optional static credential, checked via X-API-Key

	// Upstream call behavior
	UpstreamTimeout   time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"15s"`
	EnrichConcurrency int           `envconfig:"ENRICH_CONCURRENCY" default:"10"`
}

// VercelEnabled returns true if a Vercel token is configured.
func (c *Config) VercelEnabled() bool {
	return c.VercelToken != ""
}

// GitHubEnabled returns true if a GitHub token is configured.
func (c *Config) GitHubEnabled() bool {
	return c.GitHubToken != ""
}

// CORSOriginList returns the parsed list of allowed origins.
// Returns nil if not configured.
func (c *Config) CORSOriginList() []string {
	if c.CORSOrigins == "" {
		return nil
	}
	parts := strings.Split(c.CORSOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, o := range parts {
		o = strings.TrimSpace(o)
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present; real environment variables
// win over file entries.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.EnrichConcurrency < 1 {
		return nil, fmt.Errorf("ENRICH_CONCURRENCY must be at least 1, got %d", cfg.EnrichConcurrency)
	}
	return &cfg, nil
}
