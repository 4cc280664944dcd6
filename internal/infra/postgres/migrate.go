package postgres

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS problems (
		id            TEXT PRIMARY KEY,
		user_id       BIGINT NOT NULL,
		name          TEXT NOT NULL,
		difficulty    TEXT NOT NULL CHECK (difficulty IN ('Easy', 'Medium', 'Hard')),
		tags          TEXT[] NOT NULL DEFAULT '{}',
		url           TEXT NOT NULL DEFAULT '',
		date_solved   DATE NOT NULL,
		notes         TEXT NOT NULL DEFAULT '',
		practice_meta JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS problems_user_id_idx ON problems (user_id, date_solved DESC)`,
	`CREATE TABLE IF NOT EXISTS reminders (
		id           TEXT PRIMARY KEY,
		problem_id   TEXT NOT NULL REFERENCES problems (id) ON DELETE CASCADE,
		user_id      BIGINT NOT NULL,
		due_at       TIMESTAMPTZ NOT NULL,
		is_sent      BOOLEAN NOT NULL DEFAULT FALSE,
		sent_at      TIMESTAMPTZ,
		is_completed BOOLEAN NOT NULL DEFAULT FALSE,
		completed_at TIMESTAMPTZ,
		source       TEXT NOT NULL DEFAULT 'manual',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS reminders_pending_due_idx ON reminders (due_at) WHERE is_sent = FALSE`,
	`CREATE INDEX IF NOT EXISTS reminders_user_id_idx ON reminders (user_id, due_at)`,
	`CREATE TABLE IF NOT EXISTS user_preferences (
		user_id        BIGINT PRIMARY KEY,
		auto_reminders BOOLEAN NOT NULL DEFAULT TRUE,
		timezone       TEXT NOT NULL DEFAULT 'UTC',
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS subscriptions (
		id         TEXT PRIMARY KEY,
		user_id    BIGINT NOT NULL,
		channel    TEXT NOT NULL,
		target     TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (channel, target)
	)`,
}

// Migrate creates missing tables and indexes. It is safe to run repeatedly.
func Migrate(ctx context.Context, db DBTX) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
