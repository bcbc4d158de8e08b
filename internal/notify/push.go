package notify

import (
	"context"
	"io"
	"net/http"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/d60-Lab/groupfeed/config"
	"github.com/d60-Lab/groupfeed/internal/model"
)

// PushSender delivers one payload to one browser subscription.
// A *DeliveryError with Gone() marks the subscription as stale.
type PushSender interface {
	Send(ctx context.Context, sub model.PushSubscription, payload []byte) error
}

// WebPush sends encrypted Web Push messages signed with VAPID.
type WebPush struct {
	opts webpush.Options
}

func NewWebPush(cfg config.PushConfig) *WebPush {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 86400
	}
	return &WebPush{opts: webpush.Options{
		Subscriber:      cfg.Subject,
		VAPIDPublicKey:  cfg.VAPIDPublicKey,
		VAPIDPrivateKey: cfg.VAPIDPrivateKey,
		TTL:             ttl,
		Urgency:         webpush.UrgencyNormal,
		HTTPClient:      &http.Client{Timeout: 15 * time.Second},
	}}
}

func (w *WebPush) Send(ctx context.Context, sub model.PushSubscription, payload []byte) error {
	opts := w.opts
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys:     webpush.Keys{P256dh: sub.Keys.P256dh, Auth: sub.Keys.Auth},
	}, &opts)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &DeliveryError{Channel: "push", StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}
