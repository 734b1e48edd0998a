package api

import (
	"errors"
	"strconv"
	"time"

	"github.com/dorhakim100/Sell-It-Backend/internal/apperr"
	"github.com/dorhakim100/Sell-It-Backend/internal/chat"
	"github.com/dorhakim100/Sell-It-Backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ChatHandler struct {
	svc *chat.Service
	log *zap.SugaredLogger
}

func NewChatHandler(svc *chat.Service, log *zap.SugaredLogger) *ChatHandler {
	return &ChatHandler{svc: svc, log: log}
}

func chatFilterFromQuery(c *fiber.Ctx) chat.Filter {
	pageIdx, _ := strconv.Atoi(c.Query("pageIdx", "0"))
	if pageIdx < 0 {
		pageIdx = 0
	}
	var chatIDs []string
	if raw := c.Query("chatsIds"); raw != "" {
		chatIDs = append(chatIDs, splitCSV(raw)...)
	}
	return chat.Filter{
		Text:          c.Query("txt"),
		ParticipantID: c.Query("loggedInUser"),
		ChatIDs:       chatIDs,
		PageIdx:       pageIdx,
	}
}

func (h *ChatHandler) GetChats(c *fiber.Ctx) error {
	filter := chatFilterFromQuery(c)
	chats, err := h.svc.ListChats(c.Context(), filter)
	if err != nil {
		h.log.Errorw("failed to get chats", "err", err)
		return respondError(c, err, "Failed to get chats")
	}
	if chats == nil {
		chats = []models.ChatSummary{}
	}
	return c.JSON(chats)
}

func (h *ChatHandler) GetMaxPage(c *fiber.Ctx) error {
	filter := chatFilterFromQuery(c)
	max, err := h.svc.MaxPage(c.Context(), filter)
	if err != nil {
		h.log.Errorw("failed to get chat max page", "err", err)
		return respondError(c, err, "Failed to get chats")
	}
	return c.JSON(max)
}

func (h *ChatHandler) CheckIsChat(c *fiber.Ctx) error {
	from := c.Query("from")
	to := c.Query("to")
	existing, err := h.svc.ChatExists(c.Context(), from, to)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			// no chat yet is a normal answer, not an error
			return c.JSON(false)
		}
		h.log.Errorw("failed to check chat existence", "from", from, "to", to, "err", err)
		return respondError(c, err, "Failed to get chats")
	}
	return c.JSON(existing)
}

func (h *ChatHandler) GetChatByID(c *fiber.Ctx) error {
	chatID := c.Params("id")
	identity := CallerIdentity(c)
	full, err := h.svc.GetChatByID(c.Context(), chatID, identity.ID)
	if err != nil {
		h.log.Errorw("failed to get chat", "chatId", chatID, "err", err)
		return respondError(c, err, "Failed to get chat")
	}
	return c.JSON(full)
}

func (h *ChatHandler) AddChat(c *fiber.Ctx) error {
	var body struct {
		Users []string `json:"users"`
	}
	if err := c.BodyParser(&body); err != nil || len(body.Users) != 2 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"err": "Failed to add chat"})
	}
	id, err := h.svc.CreateChat(c.Context(), body.Users[0], body.Users[1])
	if err != nil {
		h.log.Errorw("failed to add chat", "err", err)
		return respondError(c, err, "Failed to add chat")
	}
	return c.JSON(fiber.Map{"_id": id, "users": body.Users})
}

func (h *ChatHandler) AddChatMsg(c *fiber.Ctx) error {
	chatID := c.Params("id")
	var body struct {
		Content string    `json:"content"`
		From    string    `json:"from"`
		To      string    `json:"to"`
		SentAt  time.Time `json:"sentAt"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"err": "Failed to add message"})
	}
	msg := models.Message{
		Content: body.Content,
		From:    body.From,
		To:      body.To,
		SentAt:  body.SentAt,
	}
	saved, err := h.svc.SendMessage(c.Context(), chatID, msg)
	if err != nil {
		h.log.Errorw("failed to add chat message", "chatId", chatID, "err", err)
		return respondError(c, err, "Failed to add message")
	}
	return c.JSON(saved)
}

func (h *ChatHandler) DeleteMessage(c *fiber.Ctx) error {
	messageID := c.Params("id")
	chatID := c.Query("chatId")
	removed, err := h.svc.RemoveMessage(c.Context(), messageID, chatID)
	if err != nil {
		h.log.Errorw("failed to remove message", "messageId", messageID, "err", err)
		return respondError(c, err, "Failed to remove message")
	}
	return c.SendString(removed)
}

func (h *ChatHandler) RemoveChat(c *fiber.Ctx) error {
	chatID := c.Params("id")
	removed, err := h.svc.RemoveChat(c.Context(), chatID)
	if err != nil {
		h.log.Errorw("failed to remove chat", "chatId", chatID, "err", err)
		return respondError(c, err, "Failed to remove chat")
	}
	return c.SendString(removed)
}
