package httpapi

import (
	"context"
	"time"

	"github.com/aliskhannn/revisit/internal/domain/entities"
	"github.com/aliskhannn/revisit/internal/service"
)

type ProblemService interface {
	Create(ctx context.Context, userID int64, in service.CreateProblemInput) (*entities.Problem, []*entities.Reminder, error)
	Get(ctx context.Context, userID int64, id string) (*entities.Problem, error)
	List(ctx context.Context, userID int64, filter entities.ProblemFilter) ([]*entities.Problem, error)
	Update(ctx context.Context, userID int64, id string, in service.UpdateProblemInput) (*entities.Problem, error)
	Delete(ctx context.Context, userID int64, id string) error
}

type FeedbackService interface {
	SubmitFeedback(ctx context.Context, userID int64, problemID string, quality int) (*service.FeedbackResult, error)
}

type ReminderService interface {
	Create(ctx context.Context, userID int64, problemID string, dueAt time.Time) (*entities.Reminder, error)
	Get(ctx context.Context, userID int64, id string) (*entities.Reminder, error)
	List(ctx context.Context, userID int64, filter entities.ReminderFilter) ([]*entities.Reminder, error)
	Delete(ctx context.Context, userID int64, id string) error
	SetCompleted(ctx context.Context, userID int64, id string, completed bool) (*entities.Reminder, error)
}

type PreferencesService interface {
	Get(ctx context.Context, userID int64) (*entities.UserPreferences, error)
	Update(ctx context.Context, userID int64, in service.UpdatePreferencesInput) (*entities.UserPreferences, error)
}

type SubscriptionService interface {
	Subscribe(ctx context.Context, userID int64, channel entities.Channel, target string) (*entities.Subscription, error)
	List(ctx context.Context, userID int64) ([]*entities.Subscription, error)
	Unsubscribe(ctx context.Context, userID int64, id string) error
}

// Services groups everything the API calls into.
type Services struct {
	Problems      ProblemService
	Feedback      FeedbackService
	Reminders     ReminderService
	Preferences   PreferencesService
	Subscriptions SubscriptionService
}
