// Package notify delivers best-effort push notifications through Expo.
// No retry, no receipt tracking: a lost push is acceptable, a blocked
// message send is not.
package notify

import (
	"context"

	"github.com/dorhakim100/Sell-It-Backend/internal/metrics"
	"github.com/google/uuid"
	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
	"go.uber.org/zap"
)

const (
	// DefaultTitle is used when the caller does not set one.
	DefaultTitle = "New Message"
	// chunkSize is Expo's per-request recipient limit.
	chunkSize = 100
)

// Push is one notification request fanned out to a set of device tokens.
type Push struct {
	Tokens []string
	Title  string
	Body   string
	Data   map[string]string
}

type publisher interface {
	Publish(*expo.PushMessage) (expo.PushResponse, error)
}

type Dispatcher struct {
	client publisher
	log    *zap.SugaredLogger
}

func NewDispatcher(accessToken string, log *zap.SugaredLogger) *Dispatcher {
	cfg := &expo.ClientConfig{}
	if accessToken != "" {
		cfg.AccessToken = accessToken
	}
	return &Dispatcher{client: expo.NewPushClient(cfg), log: log}
}

// Send submits the push to every valid token, chunked at the provider
// limit. A failed chunk is logged and the remaining chunks still go out.
// An empty token set is a no-op.
func (d *Dispatcher) Send(ctx context.Context, p Push) error {
	if len(p.Tokens) == 0 {
		return nil
	}
	if p.Title == "" {
		p.Title = DefaultTitle
	}

	batchID := uuid.NewString()
	tokens := make([]expo.ExponentPushToken, 0, len(p.Tokens))
	for _, raw := range p.Tokens {
		t, err := expo.NewExponentPushToken(raw)
		if err != nil {
			d.log.Warnw("skipping invalid push token", "batch", batchID, "token", raw)
			continue
		}
		tokens = append(tokens, t)
	}
	if len(tokens) == 0 {
		return nil
	}

	for start := 0; start < len(tokens); start += chunkSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := start + chunkSize
		if end > len(tokens) {
			end = len(tokens)
		}
		msg := &expo.PushMessage{
			To:       tokens[start:end],
			Title:    p.Title,
			Body:     p.Body,
			Data:     p.Data,
			Sound:    "default",
			Priority: expo.DefaultPriority,
		}
		resp, err := d.client.Publish(msg)
		if err != nil {
			metrics.PushFailures.Inc()
			d.log.Errorw("push chunk submission failed", "batch", batchID, "tokens", end-start, "err", err)
			continue
		}
		if err := resp.ValidateResponse(); err != nil {
			metrics.PushFailures.Inc()
			d.log.Errorw("push chunk rejected", "batch", batchID, "tokens", end-start, "err", err)
			continue
		}
		metrics.PushesDispatched.Add(float64(end - start))
	}
	return nil
}
