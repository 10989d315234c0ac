package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/p-blackswan/deploy-dashboard/internal/vercel"
)

// DeploymentListResponse wraps a project's deployment history, newest first.
type DeploymentListResponse struct {
	Deployments []vercel.Deployment `json:"deployments"`
}

// ListDeployments handles GET /api/v1/projects/:id/deployments.
func (h *Handlers) ListDeployments(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	deployments, err := h.vercel.ListDeployments(c.Context(), c.Params("id"), limit)
	if err != nil {
		return domainError(c, err)
	}
	if deployments == nil {
		deployments = []vercel.Deployment{}
	}
	return c.JSON(DeploymentListResponse{Deployments: deployments})
}

// CreateDeployment handles POST /api/v1/deployments. Fire-and-forget: the
// response carries the queued deployment, not the build result.
func (h *Handlers) CreateDeployment(c *fiber.Ctx) error {
	var req vercel.CreateDeploymentRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}

	deployment, err := h.vercel.CreateDeployment(c.Context(), req)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(deployment)
}

// CancelDeployment handles DELETE /api/v1/deployments/:id.
func (h *Handlers) CancelDeployment(c *fiber.Ctx) error {
	deployment, err := h.vercel.CancelDeployment(c.Context(), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(deployment)
}
