package api

import (
	"strconv"

	"github.com/dorhakim100/Sell-It-Backend/internal/item"
	"github.com/dorhakim100/Sell-It-Backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ItemHandler struct {
	repo *item.Repository
	log  *zap.SugaredLogger
}

func NewItemHandler(repo *item.Repository, log *zap.SugaredLogger) *ItemHandler {
	return &ItemHandler{repo: repo, log: log}
}

func itemFilterFromQuery(c *fiber.Ctx) item.Filter {
	pageIdx, _ := strconv.Atoi(c.Query("pageIdx", "0"))
	if pageIdx < 0 {
		pageIdx = 0
	}
	return item.Filter{
		Text:    c.Query("txt"),
		SoldBy:  c.Query("soldBy"),
		PageIdx: pageIdx,
	}
}

func (h *ItemHandler) GetItems(c *fiber.Ctx) error {
	items, err := h.repo.Query(c.Context(), itemFilterFromQuery(c))
	if err != nil {
		h.log.Errorw("failed to get items", "err", err)
		return respondError(c, err, "Failed to get items")
	}
	return c.JSON(items)
}

func (h *ItemHandler) GetMaxPage(c *fiber.Ctx) error {
	max, err := h.repo.MaxPage(c.Context(), itemFilterFromQuery(c))
	if err != nil {
		h.log.Errorw("failed to get item max page", "err", err)
		return respondError(c, err, "Failed to get items")
	}
	return c.JSON(max)
}

func (h *ItemHandler) GetItem(c *fiber.Ctx) error {
	itemID := c.Params("id")
	it, err := h.repo.GetByID(c.Context(), itemID)
	if err != nil {
		h.log.Errorw("failed to get item", "itemId", itemID, "err", err)
		return respondError(c, err, "Failed to get item")
	}
	return c.JSON(it)
}

func (h *ItemHandler) AddItem(c *fiber.Ctx) error {
	var body models.Item
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"err": "Failed to add item"})
	}
	identity := CallerIdentity(c)
	if body.SellingUser.ID == "" {
		body.SellingUser = models.SellingUser{ID: identity.ID, Fullname: identity.Fullname}
	}
	added, err := h.repo.Add(c.Context(), body)
	if err != nil {
		h.log.Errorw("failed to add item", "err", err)
		return respondError(c, err, "Failed to add item")
	}
	return c.JSON(added)
}

func (h *ItemHandler) UpdateItem(c *fiber.Ctx) error {
	identity := CallerIdentity(c)
	var body models.Item
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"err": "Failed to update item"})
	}
	id, err := models.ParseID(c.Params("id"))
	if err != nil {
		return respondError(c, err, "Failed to update item")
	}
	body.ID = id.ObjectID()

	if err := item.CanEdit(identity, body.SellingUser.ID); err != nil {
		return c.Status(fiber.StatusForbidden).SendString("Not your item...")
	}
	if err := h.repo.Update(c.Context(), body); err != nil {
		h.log.Errorw("failed to update item", "itemId", body.ID.Hex(), "err", err)
		return respondError(c, err, "Failed to update item")
	}
	return c.JSON(body)
}

func (h *ItemHandler) RemoveItem(c *fiber.Ctx) error {
	itemID := c.Params("id")
	removed, err := h.repo.Remove(c.Context(), itemID)
	if err != nil {
		h.log.Errorw("failed to remove item", "itemId", itemID, "err", err)
		return respondError(c, err, "Failed to remove item")
	}
	return c.SendString(removed)
}
