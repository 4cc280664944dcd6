package sqlite

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/aliskhannn/revisit/internal/domain/entities"
)

const subscriptionColumns = `id, user_id, channel, target, created_ts`

type subscriptionRow struct {
	ID        string `db:"id"`
	UserID    int64  `db:"user_id"`
	Channel   string `db:"channel"`
	Target    string `db:"target"`
	CreatedTs int64  `db:"created_ts"`
}

func (r *subscriptionRow) toEntity() *entities.Subscription {
	return &entities.Subscription{
		ID:        r.ID,
		UserID:    r.UserID,
		Channel:   entities.Channel(r.Channel),
		Target:    r.Target,
		CreatedAt: fromTs(r.CreatedTs),
	}
}

type SubscriptionStore struct {
	db sqlx.ExtContext
}

func NewSubscriptionStore(db sqlx.ExtContext) *SubscriptionStore {
	return &SubscriptionStore{db: db}
}

// Create stores a subscription. Registering a target the user already owns
// is a no-op; a target owned by someone else fails with ErrTargetTaken.
func (s *SubscriptionStore) Create(ctx context.Context, sub *entities.Subscription) error {
	stmt := `INSERT INTO subscriptions (` + subscriptionColumns + `)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (channel, target) DO UPDATE SET user_id = subscriptions.user_id
		RETURNING id, user_id, created_ts`

	var (
		id    string
		owner int64
		ts    int64
	)
	err := s.db.QueryRowxContext(ctx, stmt, sub.ID, sub.UserID, string(sub.Channel), sub.Target, toTs(sub.CreatedAt)).
		Scan(&id, &owner, &ts)
	if err != nil {
		return errors.Wrap(err, "failed to create subscription")
	}
	if owner != sub.UserID {
		return entities.ErrTargetTaken
	}

	sub.ID, sub.CreatedAt = id, fromTs(ts)
	return nil
}

func (s *SubscriptionStore) ListByUser(ctx context.Context, userID int64) ([]*entities.Subscription, error) {
	var rows []subscriptionRow
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE user_id = ? ORDER BY created_ts, id`
	if err := sqlx.SelectContext(ctx, s.db, &rows, query, userID); err != nil {
		return nil, errors.Wrap(err, "failed to list subscriptions")
	}

	subs := make([]*entities.Subscription, 0, len(rows))
	for i := range rows {
		subs = append(subs, rows[i].toEntity())
	}
	return subs, nil
}

func (s *SubscriptionStore) FindByTarget(ctx context.Context, channel entities.Channel, target string) (*entities.Subscription, error) {
	var row subscriptionRow
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE channel = ? AND target = ?`
	if err := sqlx.GetContext(ctx, s.db, &row, query, string(channel), target); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrSubscriptionNotFound
		}
		return nil, errors.Wrap(err, "failed to find subscription")
	}
	return row.toEntity(), nil
}

func (s *SubscriptionStore) Delete(ctx context.Context, userID int64, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return errors.Wrap(err, "failed to delete subscription")
	}
	return affectedOrNotFound(res, entities.ErrSubscriptionNotFound)
}
