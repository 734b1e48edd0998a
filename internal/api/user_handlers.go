package api

import (
	"strings"

	"github.com/dorhakim100/Sell-It-Backend/internal/auth"
	"github.com/dorhakim100/Sell-It-Backend/internal/models"
	"github.com/dorhakim100/Sell-It-Backend/internal/user"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type UserHandler struct {
	repo *user.Repository
	auth *auth.Service
	log  *zap.SugaredLogger
}

func NewUserHandler(repo *user.Repository, authSvc *auth.Service, log *zap.SugaredLogger) *UserHandler {
	return &UserHandler{repo: repo, auth: authSvc, log: log}
}

func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	users, err := h.repo.Query(c.Context(), user.Filter{Text: c.Query("txt")})
	if err != nil {
		h.log.Errorw("failed to get users", "err", err)
		return respondError(c, err, "Failed to get users")
	}
	return c.JSON(users)
}

func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	userID := c.Params("id")
	u, err := h.repo.GetByID(c.Context(), userID)
	if err != nil {
		h.log.Errorw("failed to get user", "userId", userID, "err", err)
		return respondError(c, err, "Failed to get user")
	}
	return c.JSON(u)
}

// UpdateUser saves the profile and hands back a fresh token carrying the
// updated claims.
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	identity := CallerIdentity(c)
	userID := c.Params("id")
	if !identity.IsAdmin && identity.ID != userID {
		return c.Status(fiber.StatusForbidden).SendString("Not your profile...")
	}

	var body models.User
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"err": "Failed to update user"})
	}
	id, err := models.ParseID(userID)
	if err != nil {
		return respondError(c, err, "Failed to update user")
	}
	body.ID = id.ObjectID()

	if err := h.repo.Update(c.Context(), body); err != nil {
		h.log.Errorw("failed to update user", "userId", userID, "err", err)
		return respondError(c, err, "Failed to update user")
	}
	token, err := h.auth.IssueToken(&body)
	if err != nil {
		h.log.Errorw("failed to reissue token", "userId", userID, "err", err)
		return respondError(c, err, "Failed to update user")
	}
	return c.JSON(fiber.Map{"user": body, "token": token})
}

func (h *UserHandler) RemoveUser(c *fiber.Ctx) error {
	userID := c.Params("id")
	if err := h.repo.Remove(c.Context(), userID); err != nil {
		h.log.Errorw("failed to remove user", "userId", userID, "err", err)
		return respondError(c, err, "Failed to remove user")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddExpoToken registers the caller's device for pushes.
func (h *UserHandler) AddExpoToken(c *fiber.Ctx) error {
	userID := c.Params("id")
	var body struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"err": "Failed to register token"})
	}
	if err := h.repo.AddExpoToken(c.Context(), userID, body.Token); err != nil {
		h.log.Errorw("failed to register expo token", "userId", userID, "err", err)
		return respondError(c, err, "Failed to register token")
	}
	return c.JSON(body.Token)
}
