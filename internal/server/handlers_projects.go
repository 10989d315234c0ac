package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/p-blackswan/deploy-dashboard/internal/vercel"
)

// ProjectListResponse wraps the enriched project list.
type ProjectListResponse struct {
	Projects []vercel.Project `json:"projects"`
}

// ListProjects handles GET /api/v1/projects.
func (h *Handlers) ListProjects(c *fiber.Ctx) error {
	projects, err := h.vercel.ListProjects(c.Context())
	if err != nil {
		return domainError(c, err)
	}
	if projects == nil {
		projects = []vercel.Project{}
	}
	return c.JSON(ProjectListResponse{Projects: projects})
}

// GetProject handles GET /api/v1/projects/:id.
func (h *Handlers) GetProject(c *fiber.Ctx) error {
	detail, err := h.vercel.GetProject(c.Context(), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(detail)
}

// ListFrameworks handles GET /api/v1/frameworks: the preset catalog backing
// the dashboard's framework picker.
func (h *Handlers) ListFrameworks(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"frameworks": vercel.Frameworks()})
}

// CreateProject handles POST /api/v1/projects. Empty build settings are
// filled from the framework preset before forwarding, matching the picker's
// behavior for clients that skip it.
func (h *Handlers) CreateProject(c *fiber.Ctx) error {
	var req vercel.CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	vercel.ApplyFrameworkDefaults(&req)

	project, err := h.vercel.CreateProject(c.Context(), req)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

// UpdateProject handles PATCH /api/v1/projects/:id. The linked repository is
// not updatable here; relinking goes through the upstream dashboard.
func (h *Handlers) UpdateProject(c *fiber.Ctx) error {
	var req vercel.UpdateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}

	project, err := h.vercel.UpdateProject(c.Context(), c.Params("id"), req)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(project)
}

// DeleteProject handles DELETE /api/v1/projects/:id.
func (h *Handlers) DeleteProject(c *fiber.Ctx) error {
	if err := h.vercel.DeleteProject(c.Context(), c.Params("id")); err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
