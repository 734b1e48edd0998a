package api

import (
	"github.com/dorhakim100/Sell-It-Backend/internal/auth"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthHandler struct {
	svc *auth.Service
	log *zap.SugaredLogger
}

func NewAuthHandler(svc *auth.Service, log *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{svc: svc, log: log}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"err": "Failed to login"})
	}
	res, err := h.svc.Login(c.Context(), body.Username, body.Password)
	if err != nil {
		h.log.Warnw("login failed", "username", body.Username, "err", err)
		return respondError(c, err, "Invalid username or password")
	}
	return c.JSON(res)
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var body auth.SignupInput
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"err": "Failed to signup"})
	}
	res, err := h.svc.Signup(c.Context(), body)
	if err != nil {
		h.log.Warnw("signup failed", "username", body.Username, "err", err)
		return respondError(c, err, "Failed to signup")
	}
	return c.JSON(res)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	// stateless tokens: nothing to revoke server-side
	return c.JSON(fiber.Map{"msg": "Logged out successfully"})
}
