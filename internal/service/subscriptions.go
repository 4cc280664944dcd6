package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/revisit/internal/domain/entities"
)

// SubscriptionService manages where a user's notifications go.
type SubscriptionService struct {
	repo   SubscriptionRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewSubscriptionService(repo SubscriptionRepository, logger *zap.Logger) *SubscriptionService {
	return &SubscriptionService{repo: repo, logger: logger, now: time.Now}
}

func (s *SubscriptionService) Subscribe(ctx context.Context, userID int64, channel entities.Channel, target string) (*entities.Subscription, error) {
	if userID <= 0 {
		return nil, entities.ErrUnauthorized
	}

	sub := entities.NewSubscription(userID, channel, target, s.now())
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	s.logger.Info("subscription added",
		zap.Int64("user_id", userID),
		zap.String("channel", string(channel)),
	)
	return sub, nil
}

func (s *SubscriptionService) List(ctx context.Context, userID int64) ([]*entities.Subscription, error) {
	if userID <= 0 {
		return nil, entities.ErrUnauthorized
	}

	subs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return subs, nil
}

func (s *SubscriptionService) Unsubscribe(ctx context.Context, userID int64, id string) error {
	if userID <= 0 {
		return entities.ErrUnauthorized
	}

	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("unsubscribe: %w", err)
	}
	return nil
}

// ResolveUser finds the user bound to a delivery target, such as a telegram chat.
func (s *SubscriptionService) ResolveUser(ctx context.Context, channel entities.Channel, target string) (int64, error) {
	sub, err := s.repo.FindByTarget(ctx, channel, target)
	if err != nil {
		return 0, fmt.Errorf("resolve subscriber: %w", err)
	}
	return sub.UserID, nil
}
