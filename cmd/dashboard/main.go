package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/p-blackswan/deploy-dashboard/internal/config"
	ghclient "github.com/p-blackswan/deploy-dashboard/internal/github"
	"github.com/p-blackswan/deploy-dashboard/internal/health"
	"github.com/p-blackswan/deploy-dashboard/internal/metrics"
	"github.com/p-blackswan/deploy-dashboard/internal/server"
	"github.com/p-blackswan/deploy-dashboard/internal/vercel"
)

func main() {
	// Setup structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()

	if os.Getenv("ENVIRONMENT") == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	log.Logger = logger

	// Load config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err == nil {
		zerolog.SetGlobalLevel(level)
	}

	logger.Info().
		Str("environment", cfg.Environment).
		Str("listen_addr", cfg.ListenAddr).
		Bool("vercel_configured", cfg.VercelEnabled()).
		Bool("github_configured", cfg.GitHubEnabled()).
		Msg("starting deploy dashboard")

	m := metrics.New()
	checker := health.NewChecker(logger)

	// Hosting platform client. A missing token is non-fatal: dependent
	// operations fail fast with a not-configured error.
	vercelClient := vercel.NewClient(vercel.ClientConfig{
		Token:             cfg.VercelToken,
		TeamID:            cfg.VercelTeamID,
		Timeout:           cfg.UpstreamTimeout,
		EnrichConcurrency: cfg.EnrichConcurrency,
	}, m, logger)
	if !cfg.VercelEnabled() {
		logger.Warn().Msg("VERCEL_TOKEN not set, project and deployment operations will fail")
	}
	checker.Register("vercel", func(ctx context.Context) health.Status {
		if err := vercelClient.Ping(ctx); err != nil {
			return health.StatusDown
		}
		return health.StatusOK
	})

	// Source-control client, same contract.
	githubClient := ghclient.NewClient(cfg.GitHubToken, m, logger)
	if !cfg.GitHubEnabled() {
		logger.Warn().Msg("GITHUB_TOKEN not set, repository operations will fail")
	}
	checker.Register("github", func(ctx context.Context) health.Status {
		if err := githubClient.Ping(ctx); err != nil {
			return health.StatusDown
		}
		return health.StatusOK
	})

	srv := server.NewServer(server.Config{
		ListenAddr:  cfg.ListenAddr,
		CORSOrigins: cfg.CORSOrigins,
		APIKey:      cfg.APIKey,
	}, vercelClient, githubClient, checker, m, logger)

	// Graceful shutdown on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
		if err := srv.Shutdown(); err != nil {
			logger.Error().Err(err).Msg("server shutdown failed")
		}
	case err := <-errCh:
		if err != nil {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}

	logger.Info().Msg("deploy dashboard stopped")
}
