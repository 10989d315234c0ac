package server

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/p-blackswan/deploy-dashboard/internal/errors"
)

// ErrorResponse is the API's uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ErrorResponse{Error: msg})
}

// domainError maps a proxy error onto the HTTP surface. The message reaches
// the caller as-is: upstream rejections are often actionable (naming rules,
// stale hashes) and must never be paraphrased away.
func domainError(c *fiber.Ctx, err error) error {
	return errorJSON(c, apperrors.HTTPStatus(err), err.Error())
}
