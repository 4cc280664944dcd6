package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aliskhannn/revisit/internal/domain/entities"
)

func TestWebhookDriver_PostsPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewWebhookDriver(time.Second, zap.NewNop())
	sub := entities.NewSubscription(7, entities.ChannelWebhook, srv.URL, testNow)
	msg := Message{
		UserID:    7,
		Text:      `Time to revisit "Two Sum"`,
		Meta:      entities.NotificationMeta{DueAt: testNow, ProblemID: "p1"},
		Timestamp: testNow,
	}

	require.NoError(t, d.Deliver(context.Background(), sub, msg))
	assert.Equal(t, "reminder.due", got["event"])
	assert.Equal(t, float64(7), got["user_id"])
	assert.Equal(t, `Time to revisit "Two Sum"`, got["message"])
	assert.Equal(t, map[string]any{
		"due_datetime": "2025-09-20T09:00:00Z",
		"problem_id":   "p1",
	}, got["metadata"])
}

func TestWebhookDriver_StatusHandling(t *testing.T) {
	tests := []struct {
		name   string
		status int
		gone   bool
		failed bool
	}{
		{name: "ok", status: http.StatusOK},
		{name: "gone", status: http.StatusGone, gone: true, failed: true},
		{name: "not found", status: http.StatusNotFound, gone: true, failed: true},
		{name: "server error", status: http.StatusBadGateway, failed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			d := NewWebhookDriver(time.Second, zap.NewNop())
			sub := entities.NewSubscription(1, entities.ChannelWebhook, srv.URL, testNow)
			err := d.Deliver(context.Background(), sub, Message{UserID: 1})

			if !tt.failed {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.gone, errors.Is(err, ErrSubscriptionGone))
		})
	}
}

func TestWebhookGoneRemovesSubscription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer srv.Close()

	sub := entities.NewSubscription(1, entities.ChannelWebhook, srv.URL, testNow)
	subs := &fakeSubs{subs: []*entities.Subscription{sub}}

	s := newTestSender(subs)
	s.Register(entities.ChannelWebhook, NewWebhookDriver(time.Second, zap.NewNop()))

	require.Error(t, s.Send(context.Background(), 1, "hi", entities.NotificationMeta{}))
	assert.Equal(t, []string{sub.ID}, subs.deleted)
}
