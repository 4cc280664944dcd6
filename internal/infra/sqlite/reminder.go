package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/aliskhannn/revisit/internal/domain/entities"
)

const reminderColumns = `id, problem_id, user_id, due_ts, is_sent, sent_ts,
	is_completed, completed_ts, source, created_ts`

type reminderRow struct {
	ID          string        `db:"id"`
	ProblemID   string        `db:"problem_id"`
	UserID      int64         `db:"user_id"`
	DueTs       int64         `db:"due_ts"`
	IsSent      bool          `db:"is_sent"`
	SentTs      sql.NullInt64 `db:"sent_ts"`
	IsCompleted bool          `db:"is_completed"`
	CompletedTs sql.NullInt64 `db:"completed_ts"`
	Source      string        `db:"source"`
	CreatedTs   int64         `db:"created_ts"`
}

func newReminderRow(r *entities.Reminder) *reminderRow {
	return &reminderRow{
		ID:          r.ID,
		ProblemID:   r.ProblemID,
		UserID:      r.UserID,
		DueTs:       toTs(r.DueAt),
		IsSent:      r.IsSent,
		SentTs:      toNullTs(r.SentAt),
		IsCompleted: r.IsCompleted,
		CompletedTs: toNullTs(r.CompletedAt),
		Source:      string(r.Source),
		CreatedTs:   toTs(r.CreatedAt),
	}
}

func (r *reminderRow) toEntity() *entities.Reminder {
	return &entities.Reminder{
		ID:          r.ID,
		ProblemID:   r.ProblemID,
		UserID:      r.UserID,
		DueAt:       fromTs(r.DueTs),
		IsSent:      r.IsSent,
		SentAt:      fromNullTs(r.SentTs),
		IsCompleted: r.IsCompleted,
		CompletedAt: fromNullTs(r.CompletedTs),
		Source:      entities.ReminderSource(r.Source),
		CreatedAt:   fromTs(r.CreatedTs),
	}
}

type ReminderStore struct {
	db sqlx.ExtContext
}

func NewReminderStore(db sqlx.ExtContext) *ReminderStore {
	return &ReminderStore{db: db}
}

const insertReminder = `INSERT INTO reminders (` + reminderColumns + `)
	VALUES (:id, :problem_id, :user_id, :due_ts, :is_sent, :sent_ts,
		:is_completed, :completed_ts, :source, :created_ts)`

func (s *ReminderStore) Create(ctx context.Context, r *entities.Reminder) error {
	if _, err := sqlx.NamedExecContext(ctx, s.db, insertReminder, newReminderRow(r)); err != nil {
		return errors.Wrap(err, "failed to create reminder")
	}
	return nil
}

// CreateBatch inserts reminders one by one; callers wrap it in a transaction.
func (s *ReminderStore) CreateBatch(ctx context.Context, rs []*entities.Reminder) error {
	for _, r := range rs {
		if err := s.Create(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (s *ReminderStore) GetByID(ctx context.Context, userID int64, id string) (*entities.Reminder, error) {
	var row reminderRow
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE id = ? AND user_id = ?`
	if err := sqlx.GetContext(ctx, s.db, &row, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrReminderNotFound
		}
		return nil, errors.Wrap(err, "failed to get reminder")
	}
	return row.toEntity(), nil
}

func (s *ReminderStore) List(ctx context.Context, userID int64, filter entities.ReminderFilter) ([]*entities.Reminder, error) {
	where, args := []string{"user_id = ?"}, []any{userID}
	if filter.ProblemID != "" {
		where, args = append(where, "problem_id = ?"), append(args, filter.ProblemID)
	}
	if v := filter.Sent; v != nil {
		where, args = append(where, "is_sent = ?"), append(args, *v)
	}
	if v := filter.Completed; v != nil {
		where, args = append(where, "is_completed = ?"), append(args, *v)
	}

	query := `SELECT ` + reminderColumns + ` FROM reminders
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY due_ts, id`
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	var rows []reminderRow
	if err := sqlx.SelectContext(ctx, s.db, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to list reminders")
	}

	reminders := make([]*entities.Reminder, 0, len(rows))
	for i := range rows {
		reminders = append(reminders, rows[i].toEntity())
	}
	return reminders, nil
}

func (s *ReminderStore) Delete(ctx context.Context, userID int64, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return errors.Wrap(err, "failed to delete reminder")
	}
	return affectedOrNotFound(res, entities.ErrReminderNotFound)
}

func (s *ReminderStore) SetCompleted(ctx context.Context, r *entities.Reminder) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE reminders SET is_completed = ?, completed_ts = ? WHERE id = ? AND user_id = ?`,
		r.IsCompleted, toNullTs(r.CompletedAt), r.ID, r.UserID,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update reminder completion")
	}
	return affectedOrNotFound(res, entities.ErrReminderNotFound)
}

type dueRow struct {
	ReminderID  string `db:"id"`
	ProblemID   string `db:"problem_id"`
	ProblemName string `db:"name"`
	UserID      int64  `db:"user_id"`
	DueTs       int64  `db:"due_ts"`
}

func (s *ReminderStore) SelectDue(ctx context.Context, now time.Time, limit int) ([]*entities.DueReminder, error) {
	query := `
		SELECT r.id, r.problem_id, p.name, r.user_id, r.due_ts
		FROM reminders r
		JOIN problems p ON p.id = r.problem_id
		WHERE r.is_sent = 0 AND r.due_ts <= ?
		ORDER BY r.due_ts, r.id
		LIMIT ?`

	var rows []dueRow
	if err := sqlx.SelectContext(ctx, s.db, &rows, query, toTs(now), limit); err != nil {
		return nil, errors.Wrap(err, "failed to select due reminders")
	}

	due := make([]*entities.DueReminder, 0, len(rows))
	for _, row := range rows {
		due = append(due, &entities.DueReminder{
			ReminderID:  row.ReminderID,
			ProblemID:   row.ProblemID,
			ProblemName: row.ProblemName,
			UserID:      row.UserID,
			DueAt:       fromTs(row.DueTs),
		})
	}
	return due, nil
}

// MarkSent only touches rows that are still pending, so repeating it is harmless.
func (s *ReminderStore) MarkSent(ctx context.Context, ids []string, sentAt time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In(
		`UPDATE reminders SET is_sent = 1, sent_ts = ? WHERE is_sent = 0 AND id IN (?)`,
		toTs(sentAt), ids,
	)
	if err != nil {
		return 0, errors.Wrap(err, "failed to build mark-sent query")
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "failed to mark reminders sent")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to read affected rows")
	}
	return n, nil
}
