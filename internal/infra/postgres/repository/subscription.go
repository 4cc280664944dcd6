package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/revisit/internal/domain/entities"
	"github.com/aliskhannn/revisit/internal/infra/postgres"
)

// SubscriptionRepository provides access to notification targets in the database.
type SubscriptionRepository struct {
	db postgres.DBTX
}

func NewSubscriptionRepository(db postgres.DBTX) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Create stores a subscription. Registering a target the user already owns
// is a no-op; a target owned by someone else fails with ErrTargetTaken.
func (r *SubscriptionRepository) Create(ctx context.Context, s *entities.Subscription) error {
	query := `
		INSERT INTO subscriptions (id, user_id, channel, target, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (channel, target) DO UPDATE SET user_id = subscriptions.user_id
		RETURNING id, user_id, created_at
	`

	var (
		id        string
		owner     int64
		createdAt time.Time
	)
	err := r.db.QueryRow(ctx, query, s.ID, s.UserID, s.Channel, s.Target, s.CreatedAt).Scan(&id, &owner, &createdAt)
	if err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}
	if owner != s.UserID {
		return entities.ErrTargetTaken
	}

	s.ID, s.CreatedAt = id, createdAt
	return nil
}

// ListByUser returns every subscription of a user.
func (r *SubscriptionRepository) ListByUser(ctx context.Context, userID int64) ([]*entities.Subscription, error) {
	query := `
		SELECT id, user_id, channel, target, created_at
		FROM subscriptions
		WHERE user_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*entities.Subscription
	for rows.Next() {
		var s entities.Subscription
		if err := rows.Scan(&s.ID, &s.UserID, &s.Channel, &s.Target, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, &s)
	}

	return subs, rows.Err()
}

// FindByTarget looks a subscription up by its delivery address.
func (r *SubscriptionRepository) FindByTarget(ctx context.Context, channel entities.Channel, target string) (*entities.Subscription, error) {
	query := `
		SELECT id, user_id, channel, target, created_at
		FROM subscriptions
		WHERE channel = $1 AND target = $2
	`

	var s entities.Subscription
	err := r.db.QueryRow(ctx, query, channel, target).Scan(&s.ID, &s.UserID, &s.Channel, &s.Target, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("find subscription: %w", err)
	}

	return &s, nil
}

// Delete removes a subscription owned by userID.
func (r *SubscriptionRepository) Delete(ctx context.Context, userID int64, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM subscriptions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrSubscriptionNotFound
	}
	return nil
}
