package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/revisit/internal/domain/entities"
)

// ReminderService handles reminders created or edited directly by the user.
type ReminderService struct {
	reminders ReminderRepository
	problems  ProblemRepository
	logger    *zap.Logger
	now       func() time.Time
}

// NewReminderService creates a new reminder service.
func NewReminderService(reminders ReminderRepository, problems ProblemRepository, logger *zap.Logger) *ReminderService {
	return &ReminderService{
		reminders: reminders,
		problems:  problems,
		logger:    logger,
		now:       time.Now,
	}
}

// Create adds a manual reminder for one of the user's problems.
func (s *ReminderService) Create(ctx context.Context, userID int64, problemID string, dueAt time.Time) (*entities.Reminder, error) {
	if userID <= 0 {
		return nil, entities.ErrUnauthorized
	}
	if dueAt.IsZero() {
		return nil, entities.NewValidationError("due_datetime", "is required")
	}

	if _, err := s.problems.GetByID(ctx, userID, problemID); err != nil {
		return nil, fmt.Errorf("create reminder: %w", err)
	}

	rem := entities.NewReminder(userID, problemID, dueAt, entities.ReminderSourceManual, s.now())
	if err := s.reminders.Create(ctx, rem); err != nil {
		return nil, fmt.Errorf("create reminder: %w", err)
	}

	s.logger.Debug("manual reminder created",
		zap.String("reminder_id", rem.ID),
		zap.String("problem_id", problemID),
		zap.Time("due_at", dueAt),
	)

	return rem, nil
}

func (s *ReminderService) Get(ctx context.Context, userID int64, id string) (*entities.Reminder, error) {
	if userID <= 0 {
		return nil, entities.ErrUnauthorized
	}

	rem, err := s.reminders.GetByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("get reminder: %w", err)
	}
	return rem, nil
}

func (s *ReminderService) List(ctx context.Context, userID int64, filter entities.ReminderFilter) ([]*entities.Reminder, error) {
	if userID <= 0 {
		return nil, entities.ErrUnauthorized
	}
	if filter.Limit < 0 {
		return nil, entities.NewValidationError("limit", "must not be negative")
	}

	reminders, err := s.reminders.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	return reminders, nil
}

func (s *ReminderService) Delete(ctx context.Context, userID int64, id string) error {
	if userID <= 0 {
		return entities.ErrUnauthorized
	}

	if err := s.reminders.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	return nil
}

// SetCompleted toggles the completion flag. It never touches send state.
func (s *ReminderService) SetCompleted(ctx context.Context, userID int64, id string, completed bool) (*entities.Reminder, error) {
	if userID <= 0 {
		return nil, entities.ErrUnauthorized
	}

	rem, err := s.reminders.GetByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("set reminder completed: %w", err)
	}

	if rem.IsCompleted == completed {
		return rem, nil
	}

	rem.SetCompleted(completed, s.now())
	if err := s.reminders.SetCompleted(ctx, rem); err != nil {
		return nil, fmt.Errorf("set reminder completed: %w", err)
	}

	return rem, nil
}
