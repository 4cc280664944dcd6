package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/revisit/internal/domain/entities"
)

const webhookEvent = "reminder.due"

type webhookPayload struct {
	Event     string                    `json:"event"`
	UserID    int64                     `json:"user_id"`
	Message   string                    `json:"message"`
	Timestamp time.Time                 `json:"timestamp"`
	Metadata  entities.NotificationMeta `json:"metadata"`
}

// WebhookDriver POSTs a JSON payload to the subscription URL.
type WebhookDriver struct {
	client *http.Client
	logger *zap.Logger
}

func NewWebhookDriver(timeout time.Duration, logger *zap.Logger) *WebhookDriver {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookDriver{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (w *WebhookDriver) Deliver(ctx context.Context, sub *entities.Subscription, msg Message) error {
	body, err := json.Marshal(webhookPayload{
		Event:     webhookEvent,
		UserID:    msg.UserID,
		Message:   msg.Text,
		Timestamp: msg.Timestamp,
		Metadata:  msg.Meta,
	})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.Target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return fmt.Errorf("webhook returned status %d: %w", resp.StatusCode, ErrSubscriptionGone)
	case resp.StatusCode >= 400:
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	w.logger.Debug("webhook delivered",
		zap.Int64("user_id", msg.UserID),
		zap.String("subscription_id", sub.ID),
		zap.Int("status", resp.StatusCode),
	)
	return nil
}
