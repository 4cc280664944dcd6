package service

import (
	"context"
	"time"

	"github.com/aliskhannn/revisit/internal/domain/entities"
)

// ProblemRepository manages problem persistence. Reads are scoped by owner.
type ProblemRepository interface {
	Create(ctx context.Context, p *entities.Problem) error
	GetByID(ctx context.Context, userID int64, id string) (*entities.Problem, error)
	// GetForUpdate loads the problem and locks it until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, userID int64, id string) (*entities.Problem, error)
	List(ctx context.Context, userID int64, filter entities.ProblemFilter) ([]*entities.Problem, error)
	Update(ctx context.Context, p *entities.Problem) error
	UpdatePracticeMeta(ctx context.Context, p *entities.Problem) error
	Delete(ctx context.Context, userID int64, id string) error
}

// ReminderRepository manages reminder persistence.
type ReminderRepository interface {
	Create(ctx context.Context, r *entities.Reminder) error
	CreateBatch(ctx context.Context, rs []*entities.Reminder) error
	GetByID(ctx context.Context, userID int64, id string) (*entities.Reminder, error)
	List(ctx context.Context, userID int64, filter entities.ReminderFilter) ([]*entities.Reminder, error)
	Delete(ctx context.Context, userID int64, id string) error
	SetCompleted(ctx context.Context, r *entities.Reminder) error
	SelectDue(ctx context.Context, now time.Time, limit int) ([]*entities.DueReminder, error)
	// MarkSent flips unsent reminders among ids and reports how many changed.
	MarkSent(ctx context.Context, ids []string, sentAt time.Time) (int64, error)
}

type PreferencesRepository interface {
	Get(ctx context.Context, userID int64) (*entities.UserPreferences, error)
	Upsert(ctx context.Context, p *entities.UserPreferences) error
}

type SubscriptionRepository interface {
	Create(ctx context.Context, s *entities.Subscription) error
	ListByUser(ctx context.Context, userID int64) ([]*entities.Subscription, error)
	FindByTarget(ctx context.Context, channel entities.Channel, target string) (*entities.Subscription, error)
	Delete(ctx context.Context, userID int64, id string) error
}

// TxRepositories are repositories bound to one transaction.
type TxRepositories struct {
	Problems  ProblemRepository
	Reminders ReminderRepository
}

// UnitOfWork groups writes into a single transaction.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error
}

// NotificationSender delivers a reminder message to every target of a user.
type NotificationSender interface {
	Send(ctx context.Context, userID int64, message string, meta entities.NotificationMeta) error
}

// PreferencesResolver returns stored preferences or defaults.
type PreferencesResolver interface {
	Resolve(ctx context.Context, userID int64) (*entities.UserPreferences, error)
}

// DueReminderStore is the storage slice the dispatcher needs.
type DueReminderStore interface {
	SelectDue(ctx context.Context, now time.Time, limit int) ([]*entities.DueReminder, error)
	MarkSent(ctx context.Context, ids []string, sentAt time.Time) (int64, error)
}
