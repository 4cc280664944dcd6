package sqlite

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/aliskhannn/revisit/internal/domain/entities"
)

type PreferencesStore struct {
	db sqlx.ExtContext
}

func NewPreferencesStore(db sqlx.ExtContext) *PreferencesStore {
	return &PreferencesStore{db: db}
}

func (s *PreferencesStore) Get(ctx context.Context, userID int64) (*entities.UserPreferences, error) {
	var row struct {
		UserID        int64  `db:"user_id"`
		AutoReminders bool   `db:"auto_reminders"`
		Timezone      string `db:"timezone"`
		UpdatedTs     int64  `db:"updated_ts"`
	}

	query := `SELECT user_id, auto_reminders, timezone, updated_ts FROM user_preferences WHERE user_id = ?`
	if err := sqlx.GetContext(ctx, s.db, &row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrPreferencesNotFound
		}
		return nil, errors.Wrap(err, "failed to get preferences")
	}

	return &entities.UserPreferences{
		UserID:        row.UserID,
		AutoReminders: row.AutoReminders,
		Timezone:      row.Timezone,
		UpdatedAt:     fromTs(row.UpdatedTs),
	}, nil
}

func (s *PreferencesStore) Upsert(ctx context.Context, p *entities.UserPreferences) error {
	stmt := `INSERT INTO user_preferences (user_id, auto_reminders, timezone, updated_ts)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			auto_reminders = excluded.auto_reminders,
			timezone = excluded.timezone,
			updated_ts = excluded.updated_ts`

	if _, err := s.db.ExecContext(ctx, stmt, p.UserID, p.AutoReminders, p.Timezone, toTs(p.UpdatedAt)); err != nil {
		return errors.Wrap(err, "failed to upsert preferences")
	}
	return nil
}
