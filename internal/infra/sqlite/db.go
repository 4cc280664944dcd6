// Package sqlite is the single-file storage backend, for local use and tests.
package sqlite

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/aliskhannn/revisit/internal/service"
)

type DB struct {
	db *sqlx.DB
}

// Open connects to the database file at path. Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open sqlite database %q", path)
	}

	// SQLite allows one writer; a single pooled connection also keeps an
	// in-memory database and its pragmas alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, errors.Wrapf(err, "failed to apply %q", pragma)
		}
	}

	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Problems() *ProblemStore {
	return NewProblemStore(d.db)
}

func (d *DB) Reminders() *ReminderStore {
	return NewReminderStore(d.db)
}

func (d *DB) Preferences() *PreferencesStore {
	return NewPreferencesStore(d.db)
}

func (d *DB) Subscriptions() *SubscriptionStore {
	return NewSubscriptionStore(d.db)
}

// WithinTx runs fn against transaction-bound stores, committing only if fn succeeds.
func (d *DB) WithinTx(ctx context.Context, fn func(ctx context.Context, repos service.TxRepositories) error) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(ctx, service.TxRepositories{
		Problems:  NewProblemStore(tx),
		Reminders: NewReminderStore(tx),
	}); err != nil {
		return err
	}

	return errors.Wrap(tx.Commit(), "failed to commit transaction")
}
