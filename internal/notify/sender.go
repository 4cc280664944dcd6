// Package notify delivers reminder messages to every subscription of a user.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/aliskhannn/revisit/internal/domain/entities"
)

var (
	// ErrSubscriptionGone is returned by a driver when the target will never accept
	// messages again. The subscription is removed.
	ErrSubscriptionGone = errors.New("subscription gone")
	ErrNoSubscriptions  = errors.New("user has no subscriptions")
)

// Message is what a driver delivers.
type Message struct {
	UserID    int64
	Text      string
	Meta      entities.NotificationMeta
	Timestamp time.Time
}

// Driver delivers a message to one subscription target.
type Driver interface {
	Deliver(ctx context.Context, sub *entities.Subscription, msg Message) error
}

type SubscriptionStore interface {
	ListByUser(ctx context.Context, userID int64) ([]*entities.Subscription, error)
	Delete(ctx context.Context, userID int64, id string) error
}

// Sender fans a message out to the user's subscriptions.
type Sender struct {
	subs   SubscriptionStore
	logger *zap.Logger
	now    func() time.Time

	mu      sync.RWMutex
	drivers map[entities.Channel]Driver
}

func NewSender(subs SubscriptionStore, logger *zap.Logger) *Sender {
	return &Sender{
		subs:    subs,
		logger:  logger,
		now:     time.Now,
		drivers: make(map[entities.Channel]Driver),
	}
}

// Register installs the driver for channel, replacing any previous one.
func (s *Sender) Register(channel entities.Channel, d Driver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drivers[channel] = d
	s.logger.Info("registered notification channel", zap.String("channel", string(channel)))
}

func (s *Sender) driver(channel entities.Channel) (Driver, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drivers[channel]
	return d, ok
}

// Send succeeds when at least one subscription accepted the message.
func (s *Sender) Send(ctx context.Context, userID int64, message string, meta entities.NotificationMeta) error {
	subs, err := s.subs.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("list subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return ErrNoSubscriptions
	}

	msg := Message{UserID: userID, Text: message, Meta: meta, Timestamp: s.now().UTC()}

	var (
		errs      error
		delivered int
	)
	for _, sub := range subs {
		if err := s.deliver(ctx, sub, msg); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s %s: %w", sub.Channel, sub.ID, err))
			continue
		}
		delivered++
	}

	if delivered == 0 {
		return errs
	}
	if errs != nil {
		s.logger.Warn("partial delivery",
			zap.Int64("user_id", userID),
			zap.Int("delivered", delivered),
			zap.Errors("errors", multierr.Errors(errs)),
		)
	}
	return nil
}

func (s *Sender) deliver(ctx context.Context, sub *entities.Subscription, msg Message) error {
	d, ok := s.driver(sub.Channel)
	if !ok {
		return fmt.Errorf("channel not registered: %s", sub.Channel)
	}

	err := d.Deliver(ctx, sub, msg)
	if errors.Is(err, ErrSubscriptionGone) {
		s.logger.Info("removing dead subscription",
			zap.String("subscription_id", sub.ID),
			zap.String("channel", string(sub.Channel)),
			zap.Int64("user_id", sub.UserID),
		)
		if delErr := s.subs.Delete(ctx, sub.UserID, sub.ID); delErr != nil && !errors.Is(delErr, entities.ErrNotFound) {
			err = multierr.Append(err, fmt.Errorf("remove subscription: %w", delErr))
		}
	}
	return err
}
