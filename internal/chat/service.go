package chat

import (
	"context"

	"github.com/dorhakim100/Sell-It-Backend/internal/metrics"
	"github.com/dorhakim100/Sell-It-Backend/internal/models"
	"github.com/dorhakim100/Sell-It-Backend/internal/notify"
	"go.uber.org/zap"
)

// Store is what the service needs from the chat repository.
type Store interface {
	ListChats(ctx context.Context, f Filter) ([]models.ChatSummary, error)
	MaxPage(ctx context.Context, f Filter) (int, error)
	ChatExists(ctx context.Context, userA, userB string) (*models.Chat, error)
	GetChatByID(ctx context.Context, chatID, requesterID string) (*models.FullChat, error)
	CreateChat(ctx context.Context, userA, userB string) (string, error)
	AppendMessage(ctx context.Context, chatID string, msg models.Message) (*models.Message, error)
	RemoveMessage(ctx context.Context, messageID, chatID string) (string, error)
	RemoveChat(ctx context.Context, chatID string) (string, error)
}

// TokenSource resolves a user's registered push tokens, read-only.
type TokenSource interface {
	PushTokens(ctx context.Context, userID string) ([]string, error)
}

// Notifier submits a best-effort push.
type Notifier interface {
	Send(ctx context.Context, p notify.Push) error
}

// Hook runs after a message has been durably appended. Hooks are fault
// isolated: one failing or panicking never affects the send or its peers.
type Hook func(ctx context.Context, chatID string, msg *models.Message)

// Service composes the repository with post-commit side effects. The one
// side effect that matters: after a message is persisted, the recipient's
// devices get a push.
type Service struct {
	store Store
	log   *zap.SugaredLogger
	hooks []Hook
}

func NewService(store Store, tokens TokenSource, notifier Notifier, log *zap.SugaredLogger) *Service {
	s := &Service{store: store, log: log}
	s.hooks = append(s.hooks, s.pushHook(tokens, notifier))
	return s
}

// AddHook registers an additional post-commit hook.
func (s *Service) AddHook(h Hook) {
	s.hooks = append(s.hooks, h)
}

// SendMessage appends the message and then runs the post-commit hooks.
// Hook failures are logged and never surfaced: the write already happened
// and the caller gets the persisted message.
func (s *Service) SendMessage(ctx context.Context, chatID string, msg models.Message) (*models.Message, error) {
	saved, err := s.store.AppendMessage(ctx, chatID, msg)
	if err != nil {
		return nil, err
	}
	metrics.MessagesSent.Inc()
	s.runHooks(ctx, chatID, saved)
	return saved, nil
}

func (s *Service) runHooks(ctx context.Context, chatID string, msg *models.Message) {
	for _, h := range s.hooks {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					s.log.Errorw("post-commit hook panicked", "chatId", chatID, "panic", rec)
				}
			}()
			h(ctx, chatID, msg)
		}()
	}
}

func (s *Service) pushHook(tokens TokenSource, notifier Notifier) Hook {
	return func(ctx context.Context, chatID string, msg *models.Message) {
		devices, err := tokens.PushTokens(ctx, msg.To)
		if err != nil {
			s.log.Errorw("push token lookup failed", "chatId", chatID, "to", msg.To, "err", err)
			return
		}
		err = notifier.Send(ctx, notify.Push{
			Tokens: devices,
			Body:   msg.Content,
			Data:   map[string]string{"chatId": chatID, "from": msg.From},
		})
		if err != nil {
			s.log.Errorw("push dispatch failed", "chatId", chatID, "to", msg.To, "err", err)
		}
	}
}

// The remaining operations delegate straight to the repository; the caller
// identity arrives as an explicit argument where read-state attribution
// needs it.

func (s *Service) ListChats(ctx context.Context, f Filter) ([]models.ChatSummary, error) {
	return s.store.ListChats(ctx, f)
}

func (s *Service) MaxPage(ctx context.Context, f Filter) (int, error) {
	return s.store.MaxPage(ctx, f)
}

func (s *Service) ChatExists(ctx context.Context, userA, userB string) (*models.Chat, error) {
	return s.store.ChatExists(ctx, userA, userB)
}

func (s *Service) GetChatByID(ctx context.Context, chatID, requesterID string) (*models.FullChat, error) {
	return s.store.GetChatByID(ctx, chatID, requesterID)
}

func (s *Service) CreateChat(ctx context.Context, userA, userB string) (string, error) {
	return s.store.CreateChat(ctx, userA, userB)
}

func (s *Service) RemoveMessage(ctx context.Context, messageID, chatID string) (string, error) {
	return s.store.RemoveMessage(ctx, messageID, chatID)
}

func (s *Service) RemoveChat(ctx context.Context, chatID string) (string, error) {
	return s.store.RemoveChat(ctx, chatID)
}
