package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/dorhakim100/Sell-It-Backend/internal/models"
	"github.com/dorhakim100/Sell-It-Backend/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeStore struct {
	Store
	appendErr error
	appended  *models.Message
	calls     *[]string
}

func (f *fakeStore) AppendMessage(ctx context.Context, chatID string, msg models.Message) (*models.Message, error) {
	*f.calls = append(*f.calls, "append")
	if f.appendErr != nil {
		return nil, f.appendErr
	}
	msg.ID = primitive.NewObjectID()
	f.appended = &msg
	return &msg, nil
}

type fakeTokens struct {
	tokens map[string][]string
	err    error
}

func (f *fakeTokens) PushTokens(ctx context.Context, userID string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tokens[userID], nil
}

type fakeNotifier struct {
	sent  []notify.Push
	err   error
	calls *[]string
}

func (f *fakeNotifier) Send(ctx context.Context, p notify.Push) error {
	*f.calls = append(*f.calls, "notify")
	f.sent = append(f.sent, p)
	return f.err
}

func newTestService(store *fakeStore, tokens *fakeTokens, notifier *fakeNotifier) *Service {
	return NewService(store, tokens, notifier, zap.NewNop().Sugar())
}

func TestSendMessagePersistsBeforeNotify(t *testing.T) {
	var calls []string
	store := &fakeStore{calls: &calls}
	tokens := &fakeTokens{tokens: map[string][]string{
		"u2": {"ExponentPushToken[aaa]", "ExponentPushToken[bbb]"},
	}}
	notifier := &fakeNotifier{calls: &calls}
	svc := newTestService(store, tokens, notifier)

	saved, err := svc.SendMessage(context.Background(), "chat1", models.Message{
		Content: "hi", From: "u1", To: "u2",
	})
	require.NoError(t, err)
	require.NotNil(t, saved)

	require.Equal(t, []string{"append", "notify"}, calls)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, tokens.tokens["u2"], notifier.sent[0].Tokens)
	assert.Equal(t, "hi", notifier.sent[0].Body)
	assert.Equal(t, "chat1", notifier.sent[0].Data["chatId"])
	assert.Equal(t, "u1", notifier.sent[0].Data["from"])
}

func TestSendMessageNotifyFailureDoesNotFailSend(t *testing.T) {
	var calls []string
	store := &fakeStore{calls: &calls}
	tokens := &fakeTokens{tokens: map[string][]string{"u2": {"ExponentPushToken[aaa]"}}}
	notifier := &fakeNotifier{calls: &calls, err: errors.New("provider down")}
	svc := newTestService(store, tokens, notifier)

	saved, err := svc.SendMessage(context.Background(), "chat1", models.Message{
		Content: "hi", From: "u1", To: "u2",
	})
	require.NoError(t, err)
	assert.Equal(t, "hi", saved.Content)
}

func TestSendMessageTokenLookupFailureDoesNotFailSend(t *testing.T) {
	var calls []string
	store := &fakeStore{calls: &calls}
	tokens := &fakeTokens{err: errors.New("mongo down")}
	notifier := &fakeNotifier{calls: &calls}
	svc := newTestService(store, tokens, notifier)

	_, err := svc.SendMessage(context.Background(), "chat1", models.Message{
		Content: "hi", From: "u1", To: "u2",
	})
	require.NoError(t, err)
	assert.Empty(t, notifier.sent, "notify should be skipped when token lookup fails")
}

func TestSendMessageFailedAppendSkipsNotify(t *testing.T) {
	var calls []string
	store := &fakeStore{calls: &calls, appendErr: errors.New("no such chat")}
	tokens := &fakeTokens{}
	notifier := &fakeNotifier{calls: &calls}
	svc := newTestService(store, tokens, notifier)

	_, err := svc.SendMessage(context.Background(), "chat1", models.Message{
		Content: "hi", From: "u1", To: "u2",
	})
	require.Error(t, err)
	assert.Equal(t, []string{"append"}, calls)
}

func TestPostCommitHooksAreFaultIsolated(t *testing.T) {
	var calls []string
	store := &fakeStore{calls: &calls}
	tokens := &fakeTokens{}
	notifier := &fakeNotifier{calls: &calls}
	svc := newTestService(store, tokens, notifier)

	svc.AddHook(func(ctx context.Context, chatID string, msg *models.Message) {
		panic("boom")
	})
	ran := false
	svc.AddHook(func(ctx context.Context, chatID string, msg *models.Message) {
		ran = true
	})

	_, err := svc.SendMessage(context.Background(), "chat1", models.Message{
		Content: "hi", From: "u1", To: "u2",
	})
	require.NoError(t, err)
	assert.True(t, ran, "hooks after a panicking hook must still run")
}
