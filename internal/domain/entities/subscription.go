package entities

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Channel names a notification transport.
type Channel string

const (
	ChannelWebhook  Channel = "webhook"
	ChannelTelegram Channel = "telegram"
)

// Subscription is one delivery target of a user.
type Subscription struct {
	ID        string
	UserID    int64
	Channel   Channel
	Target    string
	CreatedAt time.Time
}

func NewSubscription(userID int64, channel Channel, target string, now time.Time) *Subscription {
	return &Subscription{
		ID:        uuid.NewString(),
		UserID:    userID,
		Channel:   channel,
		Target:    strings.TrimSpace(target),
		CreatedAt: now,
	}
}

func (s *Subscription) Validate() error {
	if s.Target == "" {
		return NewValidationError("target", "is required")
	}

	switch s.Channel {
	case ChannelWebhook:
		u, err := url.Parse(s.Target)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return NewValidationError("target", "must be an absolute http(s) URL")
		}
	case ChannelTelegram:
		if _, err := s.ChatID(); err != nil {
			return NewValidationError("target", "must be a numeric chat id")
		}
	default:
		return NewValidationError("channel", "must be webhook or telegram")
	}
	return nil
}

// ChatID parses the target of a telegram subscription.
func (s *Subscription) ChatID() (int64, error) {
	return strconv.ParseInt(s.Target, 10, 64)
}
