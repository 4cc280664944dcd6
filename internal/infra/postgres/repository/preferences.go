package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/revisit/internal/domain/entities"
	"github.com/aliskhannn/revisit/internal/infra/postgres"
)

// PreferencesRepository provides access to user preferences in the database.
type PreferencesRepository struct {
	db postgres.DBTX
}

func NewPreferencesRepository(db postgres.DBTX) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

// Get retrieves preferences for a user.
func (r *PreferencesRepository) Get(ctx context.Context, userID int64) (*entities.UserPreferences, error) {
	query := `
		SELECT user_id, auto_reminders, timezone, updated_at
		FROM user_preferences
		WHERE user_id = $1
	`

	var p entities.UserPreferences
	err := r.db.QueryRow(ctx, query, userID).Scan(&p.UserID, &p.AutoReminders, &p.Timezone, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrPreferencesNotFound
		}
		return nil, fmt.Errorf("get preferences: %w", err)
	}

	return &p, nil
}

// Upsert creates or replaces preferences for a user.
func (r *PreferencesRepository) Upsert(ctx context.Context, p *entities.UserPreferences) error {
	query := `
		INSERT INTO user_preferences (user_id, auto_reminders, timezone, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			auto_reminders = EXCLUDED.auto_reminders,
			timezone = EXCLUDED.timezone,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.Exec(ctx, query, p.UserID, p.AutoReminders, p.Timezone, p.UpdatedAt); err != nil {
		return fmt.Errorf("upsert preferences: %w", err)
	}
	return nil
}
