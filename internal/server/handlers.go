package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/p-blackswan/deploy-dashboard/internal/github"
	"github.com/p-blackswan/deploy-dashboard/internal/health"
	"github.com/p-blackswan/deploy-dashboard/internal/vercel"
)

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	vercel    *vercel.Client
	github    *github.Client
	checker   *health.Checker
	logger    zerolog.Logger
	startTime time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(vc *vercel.Client, gc *github.Client, checker *health.Checker, logger zerolog.Logger) *Handlers {
	return &Handlers{
		vercel:    vc,
		github:    gc,
		checker:   checker,
		logger:    logger.With().Str("component", "handlers").Logger(),
		startTime: time.Now(),
	}
}

// Liveness handles GET /healthz.
func (h *Handlers) Liveness(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"uptime": time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Readiness handles GET /readyz: runs the upstream checks and reports 503
// when any dependency is down.
func (h *Handlers) Readiness(c *fiber.Ctx) error {
	results := h.checker.RunAll(c.Context())

	ready := true
	for _, s := range results {
		if s == health.StatusDown {
			ready = false
			break
		}
	}

	status := fiber.StatusOK
	state := "ready"
	if !ready {
		status = fiber.StatusServiceUnavailable
		state = "not_ready"
	}
	return c.Status(status).JSON(fiber.Map{
		"status": state,
		"checks": results,
	})
}
