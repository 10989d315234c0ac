// Package server exposes the dashboard-facing JSON API over the two upstream
// proxies.
package server

import (
	"crypto/subtle"
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/p-blackswan/deploy-dashboard/internal/github"
	"github.com/p-blackswan/deploy-dashboard/internal/health"
	"github.com/p-blackswan/deploy-dashboard/internal/metrics"
	"github.com/p-blackswan/deploy-dashboard/internal/requestid"
	"github.com/p-blackswan/deploy-dashboard/internal/vercel"
)

// Config holds configuration for the dashboard API server.
type Config struct {
	ListenAddr  string
	CORSOrigins string
	APIKey      string // optional static credential; empty disables the check
}

// Server is the dashboard API Fiber application.
type Server struct {
	app      *fiber.App
	handlers *Handlers
	logger   zerolog.Logger
	config   Config
}

// NewServer creates and configures the dashboard API server. Metrics may be
// nil (no /metrics endpoint, no recording).
func NewServer(
	cfg Config,
	vercelClient *vercel.Client,
	githubClient *github.Client,
	checker *health.Checker,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          newErrorHandler(logger),
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
	})

	handlers := NewHandlers(vercelClient, githubClient, checker, logger)

	s := &Server{
		app:      app,
		handlers: handlers,
		logger:   logger.With().Str("component", "server").Logger(),
		config:   cfg,
	}

	s.setupMiddleware(cfg, m, logger)
	s.setupRoutes(handlers, m)

	return s
}

func isProbePath(path string) bool {
	return path == "/healthz" || path == "/readyz" || path == "/metrics"
}

func (s *Server) setupMiddleware(cfg Config, m *metrics.Metrics, logger zerolog.Logger) {
	s.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	// Request ID
	s.app.Use(func(c *fiber.Ctx) error {
		_, reqID := requestid.New(c.Context())
		c.Set(requestid.Header, reqID)
		c.Locals("request_id", reqID)
		return c.Next()
	})

	if cfg.CORSOrigins != "" {
		s.app.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CORSOrigins,
			AllowHeaders: "Origin, Content-Type, Accept, X-API-Key, X-Request-ID",
			AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		}))
	}

	// Static API key auth. Probes stay open for the orchestrator.
	if cfg.APIKey != "" {
		s.app.Use(func(c *fiber.Ctx) error {
			if isProbePath(c.Path()) {
				return c.Next()
			}
			key := c.Get("X-API-Key")
			if subtle.ConstantTimeCompare([]byte(key), []byte(cfg.APIKey)) != 1 {
				logger.Warn().
					Str("path", c.Path()).
					Str("method", c.Method()).
					Msg("unauthorized request: invalid API key")
				return errorJSON(c, fiber.StatusUnauthorized, "invalid or missing API key")
			}
			return c.Next()
		})
	}

	// Request logging, skipping noisy probes
	s.app.Use(func(c *fiber.Ctx) error {
		path := c.Path()
		if isProbePath(path) {
			return c.Next()
		}
		logger.Info().
			Str("method", c.Method()).
			Str("path", path).
			Str("ip", c.IP()).
			Str("request_id", c.Locals("request_id").(string)).
			Msg("dashboard api request")
		return c.Next()
	})

	// Per-route request metrics
	if m != nil {
		s.app.Use(func(c *fiber.Ctx) error {
			err := c.Next()
			route := c.Route().Path
			if !isProbePath(route) {
				m.RecordRequest(route, c.Method(), strconv.Itoa(c.Response().StatusCode()))
			}
			return err
		})
	}
}

func (s *Server) setupRoutes(h *Handlers, m *metrics.Metrics) {
	s.app.Get("/healthz", h.Liveness)
	s.app.Get("/readyz", h.Readiness)

	if m != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	v1 := s.app.Group("/api/v1")

	// Hosting platform
	v1.Get("/frameworks", h.ListFrameworks)
	v1.Get("/projects", h.ListProjects)
	v1.Post("/projects", h.CreateProject)
	v1.Get("/projects/:id", h.GetProject)
	v1.Patch("/projects/:id", h.UpdateProject)
	v1.Delete("/projects/:id", h.DeleteProject)
	v1.Get("/projects/:id/deployments", h.ListDeployments)
	v1.Post("/deployments", h.CreateDeployment)
	v1.Delete("/deployments/:id", h.CancelDeployment)

	// Source-control host
	v1.Get("/repos", h.ListRepositories)
	v1.Get("/repos/:owner/:repo/contents", h.ListDirectory)
	v1.Get("/repos/:owner/:repo/file", h.ReadFile)
	v1.Post("/repos/:owner/:repo/contents", h.CreateEntry)
	v1.Put("/repos/:owner/:repo/contents", h.UpdateFile)
	v1.Delete("/repos/:owner/:repo/contents", h.DeleteFile)
}

// Start starts the server. Blocks until stopped.
func (s *Server) Start() error {
	addr := s.config.ListenAddr
	if addr == "" {
		addr = ":8080"
	}
	s.logger.Info().Str("addr", addr).Msg("dashboard API server starting")
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	s.logger.Info().Msg("dashboard API server shutting down")
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing).
func (s *Server) App() *fiber.App {
	return s.app
}

func newErrorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		logger.Error().
			Err(err).
			Int("status", code).
			Str("path", c.Path()).
			Str("method", c.Method()).
			Msg("unhandled error")

		return errorJSON(c, code, err.Error())
	}
}
