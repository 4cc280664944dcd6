package sqlite

import (
	"context"

	"github.com/pkg/errors"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS problems (
		id            TEXT PRIMARY KEY,
		user_id       INTEGER NOT NULL,
		name          TEXT NOT NULL,
		difficulty    TEXT NOT NULL CHECK (difficulty IN ('Easy', 'Medium', 'Hard')),
		tags          TEXT NOT NULL DEFAULT '[]',
		url           TEXT NOT NULL DEFAULT '',
		date_solved   TEXT NOT NULL,
		notes         TEXT NOT NULL DEFAULT '',
		practice_meta TEXT NOT NULL DEFAULT '{}',
		created_ts    INTEGER NOT NULL,
		updated_ts    INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_problems_user ON problems (user_id, date_solved)`,
	`CREATE TABLE IF NOT EXISTS reminders (
		id           TEXT PRIMARY KEY,
		problem_id   TEXT NOT NULL REFERENCES problems (id) ON DELETE CASCADE,
		user_id      INTEGER NOT NULL,
		due_ts       INTEGER NOT NULL,
		is_sent      INTEGER NOT NULL DEFAULT 0,
		sent_ts      INTEGER,
		is_completed INTEGER NOT NULL DEFAULT 0,
		completed_ts INTEGER,
		source       TEXT NOT NULL DEFAULT 'manual',
		created_ts   INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reminders_pending ON reminders (is_sent, due_ts)`,
	`CREATE INDEX IF NOT EXISTS idx_reminders_user ON reminders (user_id, due_ts)`,
	`CREATE TABLE IF NOT EXISTS user_preferences (
		user_id        INTEGER PRIMARY KEY,
		auto_reminders INTEGER NOT NULL DEFAULT 1,
		timezone       TEXT NOT NULL DEFAULT 'UTC',
		updated_ts     INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS subscriptions (
		id         TEXT PRIMARY KEY,
		user_id    INTEGER NOT NULL,
		channel    TEXT NOT NULL,
		target     TEXT NOT NULL,
		created_ts INTEGER NOT NULL,
		UNIQUE (channel, target)
	)`,
}

// Migrate creates missing tables and indexes.
func (d *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to migrate sqlite schema")
		}
	}
	return nil
}
