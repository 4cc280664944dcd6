package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/aliskhannn/revisit/internal/domain/entities"
	"github.com/aliskhannn/revisit/internal/infra/postgres"
)

const reminderColumns = `id, problem_id, user_id, due_at, is_sent, sent_at,
	is_completed, completed_at, source, created_at`

const insertReminder = `
	INSERT INTO reminders (` + reminderColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

// ReminderRepository provides access to reminders in the database.
type ReminderRepository struct {
	db postgres.DBTX
}

// NewReminderRepository creates a new ReminderRepository over a pool or transaction.
func NewReminderRepository(db postgres.DBTX) *ReminderRepository {
	return &ReminderRepository{db: db}
}

func reminderArgs(rem *entities.Reminder) []any {
	return []any{
		rem.ID,
		rem.ProblemID,
		rem.UserID,
		rem.DueAt,
		rem.IsSent,
		rem.SentAt,
		rem.IsCompleted,
		rem.CompletedAt,
		rem.Source,
		rem.CreatedAt,
	}
}

// Create inserts a single reminder.
func (r *ReminderRepository) Create(ctx context.Context, rem *entities.Reminder) error {
	if _, err := r.db.Exec(ctx, insertReminder, reminderArgs(rem)...); err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}
	return nil
}

// CreateBatch inserts reminders in one round trip.
func (r *ReminderRepository) CreateBatch(ctx context.Context, rems []*entities.Reminder) error {
	if len(rems) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, rem := range rems {
		batch.Queue(insertReminder, reminderArgs(rem)...)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rems {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("create reminder batch: %w", err)
		}
	}

	return results.Close()
}

// GetByID retrieves a reminder owned by userID.
func (r *ReminderRepository) GetByID(ctx context.Context, userID int64, id string) (*entities.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE id = $1 AND user_id = $2`

	rem, err := scanReminder(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrReminderNotFound
		}
		return nil, fmt.Errorf("get reminder: %w", err)
	}
	return rem, nil
}

// List returns the user's reminders ordered by due time.
func (r *ReminderRepository) List(ctx context.Context, userID int64, filter entities.ReminderFilter) ([]*entities.Reminder, error) {
	where, args := []string{"user_id = $1"}, []any{userID}
	if filter.ProblemID != "" {
		args = append(args, filter.ProblemID)
		where = append(where, fmt.Sprintf("problem_id = $%d", len(args)))
	}
	if filter.Sent != nil {
		args = append(args, *filter.Sent)
		where = append(where, fmt.Sprintf("is_sent = $%d", len(args)))
	}
	if filter.Completed != nil {
		args = append(args, *filter.Completed)
		where = append(where, fmt.Sprintf("is_completed = $%d", len(args)))
	}

	query := `SELECT ` + reminderColumns + ` FROM reminders
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY due_at, id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()

	var reminders []*entities.Reminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		reminders = append(reminders, rem)
	}

	return reminders, rows.Err()
}

// Delete removes a single reminder.
func (r *ReminderRepository) Delete(ctx context.Context, userID int64, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM reminders WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrReminderNotFound
	}
	return nil
}

// SetCompleted stores the completion flag of a reminder. Send state is left alone.
func (r *ReminderRepository) SetCompleted(ctx context.Context, rem *entities.Reminder) error {
	query := `
		UPDATE reminders
		SET is_completed = $1, completed_at = $2
		WHERE id = $3 AND user_id = $4
	`

	tag, err := r.db.Exec(ctx, query, rem.IsCompleted, rem.CompletedAt, rem.ID, rem.UserID)
	if err != nil {
		return fmt.Errorf("set reminder completed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrReminderNotFound
	}
	return nil
}

// SelectDue returns unsent reminders due at or before now, oldest first.
func (r *ReminderRepository) SelectDue(ctx context.Context, now time.Time, limit int) ([]*entities.DueReminder, error) {
	query := `
		SELECT r.id, r.problem_id, p.name, r.user_id, r.due_at
		FROM reminders r
		INNER JOIN problems p ON p.id = r.problem_id
		WHERE r.is_sent = FALSE
		  AND r.due_at <= $1
		ORDER BY r.due_at, r.id
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("select due reminders: %w", err)
	}
	defer rows.Close()

	var due []*entities.DueReminder
	for rows.Next() {
		var d entities.DueReminder
		if err := rows.Scan(&d.ReminderID, &d.ProblemID, &d.ProblemName, &d.UserID, &d.DueAt); err != nil {
			return nil, fmt.Errorf("scan due reminder: %w", err)
		}
		due = append(due, &d)
	}

	return due, rows.Err()
}

// MarkSent flips the listed reminders to sent. Rows already sent are untouched,
// so overlapping sweeps cannot move sent_at.
func (r *ReminderRepository) MarkSent(ctx context.Context, ids []string, sentAt time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `
		UPDATE reminders
		SET is_sent = TRUE, sent_at = $1
		WHERE id = ANY($2) AND is_sent = FALSE
	`

	tag, err := r.db.Exec(ctx, query, sentAt, ids)
	if err != nil {
		return 0, fmt.Errorf("mark reminders sent: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanReminder(row pgx.Row) (*entities.Reminder, error) {
	var (
		rem         entities.Reminder
		sentAt      pgtype.Timestamptz
		completedAt pgtype.Timestamptz
	)

	if err := row.Scan(
		&rem.ID,
		&rem.ProblemID,
		&rem.UserID,
		&rem.DueAt,
		&rem.IsSent,
		&sentAt,
		&rem.IsCompleted,
		&completedAt,
		&rem.Source,
		&rem.CreatedAt,
	); err != nil {
		return nil, err
	}

	if sentAt.Valid {
		t := sentAt.Time
		rem.SentAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		rem.CompletedAt = &t
	}

	return &rem, nil
}
