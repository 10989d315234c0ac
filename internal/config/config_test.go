// Package config tests.
package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 15*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 10, cfg.EnrichConcurrency)
	assert.False(t, cfg.VercelEnabled())
	assert.False(t, cfg.GitHubEnabled())
}

func TestLoad_Tokens(t *testing.T) {
	t.Setenv("VERCEL_TOKEN", "vc-token")
	t.Setenv("VERCEL_TEAM_ID", "team_123")
	t.Setenv("GITHUB_TOKEN", "ghp_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.VercelEnabled())
	assert.True(t, cfg.GitHubEnabled())
	assert.Equal(t, "team_123", cfg.VercelTeamID)
}

func TestLoad_InvalidEnrichConcurrency(t *testing.T) {
	t.Setenv("ENRICH_CONCURRENCY", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ENRICH_CONCURRENCY")
}

func TestCORSOriginList(t *testing.T) {
	cfg := &Config{}
	assert.Nil(t, cfg.CORSOriginList())

	cfg.CORSOrigins = "https://a.example, https://b.example ,"
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOriginList())
}
