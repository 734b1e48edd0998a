package api

import (
	"strings"

	"github.com/dorhakim100/Sell-It-Backend/internal/auth"
	"github.com/dorhakim100/Sell-It-Backend/internal/models"
	"github.com/gofiber/fiber/v2"
)

const identityKey = "identity"

// RequireAuth verifies the bearer token and stows the caller identity for
// the handlers, which pass it into the core explicitly.
func RequireAuth(svc *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"err": "missing authorization"})
		}
		token := strings.TrimPrefix(header, "Bearer ")
		identity, err := svc.Validate(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"err": "not authenticated"})
		}
		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// RequireAdmin sits behind RequireAuth.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := CallerIdentity(c)
		if id == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"err": "not authenticated"})
		}
		if !id.IsAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"err": "not authorized"})
		}
		return c.Next()
	}
}

func CallerIdentity(c *fiber.Ctx) *models.Identity {
	id, _ := c.Locals(identityKey).(*models.Identity)
	return id
}
