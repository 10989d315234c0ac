package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/p-blackswan/deploy-dashboard/internal/github"
)

// RepositoryListResponse wraps the account's repository list.
type RepositoryListResponse struct {
	Repositories []github.Repository `json:"repositories"`
}

// EntryListResponse wraps a directory listing.
type EntryListResponse struct {
	Entries []github.Entry `json:"entries"`
}

// CreateEntryRequest creates a file or an (emulated) directory.
type CreateEntryRequest struct {
	Path    string `json:"path"`
	Type    string `json:"type"`    // "file" (default) or "dir"
	Content string `json:"content"` // base64, files only
	Message string `json:"message"`
}

// UpdateFileRequest replaces a file's content under its previously-observed
// content hash.
type UpdateFileRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"` // base64
	SHA     string `json:"sha"`
	Message string `json:"message"`
}

// DeleteFileRequest removes a file under the same hash contract.
type DeleteFileRequest struct {
	Path    string `json:"path"`
	SHA     string `json:"sha"`
	Message string `json:"message"`
}

// ListRepositories handles GET /api/v1/repos.
func (h *Handlers) ListRepositories(c *fiber.Ctx) error {
	repos, err := h.github.ListRepositories(c.Context())
	if err != nil {
		return domainError(c, err)
	}
	if repos == nil {
		repos = []github.Repository{}
	}
	return c.JSON(RepositoryListResponse{Repositories: repos})
}

// ListDirectory handles GET /api/v1/repos/:owner/:repo/contents?path=.
func (h *Handlers) ListDirectory(c *fiber.Ctx) error {
	entries, err := h.github.ListDirectory(c.Context(), c.Params("owner"), c.Params("repo"), c.Query("path"))
	if err != nil {
		return domainError(c, err)
	}
	if entries == nil {
		entries = []github.Entry{}
	}
	return c.JSON(EntryListResponse{Entries: entries})
}

// ReadFile handles GET /api/v1/repos/:owner/:repo/file?path=.
func (h *Handlers) ReadFile(c *fiber.Ctx) error {
	file, err := h.github.ReadFile(c.Context(), c.Params("owner"), c.Params("repo"), c.Query("path"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(file)
}

// CreateEntry handles POST /api/v1/repos/:owner/:repo/contents for both
// files and directory markers.
func (h *Handlers) CreateEntry(c *fiber.Ctx) error {
	var req CreateEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}

	owner, repo := c.Params("owner"), c.Params("repo")

	var (
		entry *github.Entry
		err   error
	)
	if req.Type == "dir" {
		entry, err = h.github.CreateDirectory(c.Context(), owner, repo, req.Path, req.Message)
	} else {
		entry, err = h.github.CreateFile(c.Context(), owner, repo, req.Path, req.Content, req.Message)
	}
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// UpdateFile handles PUT /api/v1/repos/:owner/:repo/contents.
func (h *Handlers) UpdateFile(c *fiber.Ctx) error {
	var req UpdateFileRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}

	entry, err := h.github.UpdateFile(c.Context(), c.Params("owner"), c.Params("repo"), req.Path, req.Content, req.SHA, req.Message)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(entry)
}

// DeleteFile handles DELETE /api/v1/repos/:owner/:repo/contents.
func (h *Handlers) DeleteFile(c *fiber.Ctx) error {
	var req DeleteFileRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}

	if err := h.github.DeleteFile(c.Context(), c.Params("owner"), c.Params("repo"), req.Path, req.SHA, req.Message); err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
