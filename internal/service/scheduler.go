package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/revisit/internal/domain/entities"
	"github.com/aliskhannn/revisit/internal/domain/srs"
)

// SchedulerService decides when reminders fire.
type SchedulerService struct {
	uow    UnitOfWork
	prefs  PreferencesResolver
	policy srs.Policy
	logger *zap.Logger
	now    func() time.Time
}

// NewSchedulerService creates a new scheduler service.
func NewSchedulerService(uow UnitOfWork, prefs PreferencesResolver, policy srs.Policy, logger *zap.Logger) *SchedulerService {
	return &SchedulerService{
		uow:    uow,
		prefs:  prefs,
		policy: policy,
		logger: logger,
		now:    time.Now,
	}
}

// FeedbackResult is the outcome of a practice feedback submission.
type FeedbackResult struct {
	Problem   *entities.Problem
	Reminder  *entities.Reminder
	NextDueAt time.Time
}

// InitialReminders plans the reminders a freshly created problem starts with.
// Explicit due times are kept verbatim; otherwise the default offsets apply
// when the user has auto reminders on.
func (s *SchedulerService) InitialReminders(
	p *entities.Problem,
	prefs *entities.UserPreferences,
	explicit []time.Time,
	now time.Time,
) []*entities.Reminder {
	source := entities.ReminderSourceInitial
	if len(explicit) > 0 {
		source = entities.ReminderSourceManual
	}

	due := s.policy.PlanInitial(p.DateSolved, prefs.AutoReminders, explicit, prefs.Location())

	reminders := make([]*entities.Reminder, 0, len(due))
	for _, at := range due {
		reminders = append(reminders, entities.NewReminder(p.UserID, p.ID, at, source, now))
	}
	return reminders
}

// SubmitFeedback records a review of problemID graded with quality, then
// schedules exactly one reminder at the next due time. Meta update and
// reminder insert commit together or not at all.
func (s *SchedulerService) SubmitFeedback(ctx context.Context, userID int64, problemID string, quality int) (*FeedbackResult, error) {
	if userID <= 0 {
		return nil, entities.ErrUnauthorized
	}
	if err := srs.ValidateQuality(quality); err != nil {
		return nil, entities.NewValidationError("quality_score", err.Error())
	}

	prefs, err := s.prefs.Resolve(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve preferences: %w", err)
	}

	now := s.now()
	loc := prefs.Location()

	var result FeedbackResult
	err = s.uow.WithinTx(ctx, func(ctx context.Context, repos TxRepositories) error {
		p, err := repos.Problems.GetForUpdate(ctx, userID, problemID)
		if err != nil {
			return err
		}

		next := p.Practice.Apply(quality, now, s.policy, loc)
		p.UpdatedAt = now

		if err := repos.Problems.UpdatePracticeMeta(ctx, p); err != nil {
			return err
		}

		rem := entities.NewReminder(userID, p.ID, next, entities.ReminderSourceFeedback, now)
		if err := repos.Reminders.Create(ctx, rem); err != nil {
			return err
		}

		result = FeedbackResult{Problem: p, Reminder: rem, NextDueAt: next}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("submit feedback: %w", err)
	}

	s.logger.Info("practice feedback recorded",
		zap.Int64("user_id", userID),
		zap.String("problem_id", problemID),
		zap.Int("quality", quality),
		zap.Int("attempt", result.Problem.Practice.AttemptCount),
		zap.Int("interval_days", result.Problem.Practice.Interval),
		zap.Time("next_due_at", result.NextDueAt),
	)

	return &result, nil
}
