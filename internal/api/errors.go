package api

import (
	"errors"

	"github.com/dorhakim100/Sell-It-Backend/internal/apperr"
	"github.com/gofiber/fiber/v2"
)

// respondError maps the error taxonomy onto HTTP statuses with a generic
// body. Details stay in the logs, not in responses.
func respondError(c *fiber.Ctx, err error, generic string) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, apperr.ErrBadRequest):
		status = fiber.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthorized):
		status = fiber.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		status = fiber.StatusForbidden
	}
	return c.Status(status).JSON(fiber.Map{"err": generic})
}
