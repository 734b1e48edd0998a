package notify

import (
	"context"
	"errors"
	"fmt"
	"testing"

	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePublisher struct {
	published []*expo.PushMessage
	err       error
}

func (f *fakePublisher) Publish(msg *expo.PushMessage) (expo.PushResponse, error) {
	f.published = append(f.published, msg)
	if f.err != nil {
		return expo.PushResponse{}, f.err
	}
	return expo.PushResponse{Status: expo.SuccessStatus}, nil
}

func newTestDispatcher(pub *fakePublisher) *Dispatcher {
	return &Dispatcher{client: pub, log: zap.NewNop().Sugar()}
}

func validTokens(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("ExponentPushToken[tok%d]", i)
	}
	return out
}

func TestSendEmptyTokensIsNoOp(t *testing.T) {
	pub := &fakePublisher{}
	d := newTestDispatcher(pub)

	require.NoError(t, d.Send(context.Background(), Push{Body: "hello"}))
	assert.Empty(t, pub.published)
}

func TestSendDefaultsTitle(t *testing.T) {
	pub := &fakePublisher{}
	d := newTestDispatcher(pub)

	require.NoError(t, d.Send(context.Background(), Push{
		Tokens: validTokens(1),
		Body:   "hello",
	}))
	require.Len(t, pub.published, 1)
	assert.Equal(t, DefaultTitle, pub.published[0].Title)
	assert.Equal(t, "hello", pub.published[0].Body)
}

func TestSendChunksAtProviderLimit(t *testing.T) {
	pub := &fakePublisher{}
	d := newTestDispatcher(pub)

	require.NoError(t, d.Send(context.Background(), Push{
		Tokens: validTokens(250),
		Body:   "hello",
	}))
	require.Len(t, pub.published, 3)
	assert.Len(t, pub.published[0].To, 100)
	assert.Len(t, pub.published[1].To, 100)
	assert.Len(t, pub.published[2].To, 50)
}

func TestSendSkipsInvalidTokens(t *testing.T) {
	pub := &fakePublisher{}
	d := newTestDispatcher(pub)

	require.NoError(t, d.Send(context.Background(), Push{
		Tokens: []string{"garbage", "ExponentPushToken[ok]"},
		Body:   "hello",
	}))
	require.Len(t, pub.published, 1)
	assert.Len(t, pub.published[0].To, 1)
}

func TestSendOnlyInvalidTokensIsNoOp(t *testing.T) {
	pub := &fakePublisher{}
	d := newTestDispatcher(pub)

	require.NoError(t, d.Send(context.Background(), Push{
		Tokens: []string{"garbage"},
		Body:   "hello",
	}))
	assert.Empty(t, pub.published)
}

func TestSendContinuesPastFailedChunk(t *testing.T) {
	pub := &fakePublisher{err: errors.New("gateway timeout")}
	d := newTestDispatcher(pub)

	require.NoError(t, d.Send(context.Background(), Push{
		Tokens: validTokens(150),
		Body:   "hello",
	}))
	// both chunks attempted even though every submission failed
	assert.Len(t, pub.published, 2)
}
