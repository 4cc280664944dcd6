package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/revisit/internal/domain/entities"
)

// ProblemService handles solved-problem bookkeeping.
type ProblemService struct {
	problems  ProblemRepository
	uow       UnitOfWork
	prefs     PreferencesResolver
	scheduler *SchedulerService
	logger    *zap.Logger
	now       func() time.Time
}

// NewProblemService creates a new problem service.
func NewProblemService(
	problems ProblemRepository,
	uow UnitOfWork,
	prefs PreferencesResolver,
	scheduler *SchedulerService,
	logger *zap.Logger,
) *ProblemService {
	return &ProblemService{
		problems:  problems,
		uow:       uow,
		prefs:     prefs,
		scheduler: scheduler,
		logger:    logger,
		now:       time.Now,
	}
}

type CreateProblemInput struct {
	Name       string
	Difficulty string
	Tags       []string
	URL        string
	DateSolved time.Time
	Notes      string
	// Reminders replaces the default schedule when non-empty.
	Reminders []time.Time
}

// UpdateProblemInput carries a partial update. Nil fields are left unchanged.
type UpdateProblemInput struct {
	Name       *string
	Difficulty *string
	Tags       *[]string
	URL        *string
	DateSolved *time.Time
	Notes      *string
}

// Create stores a problem together with its initial reminders.
func (s *ProblemService) Create(ctx context.Context, userID int64, in CreateProblemInput) (*entities.Problem, []*entities.Reminder, error) {
	if userID <= 0 {
		return nil, nil, entities.ErrUnauthorized
	}

	difficulty, err := entities.ParseDifficulty(in.Difficulty)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	p := entities.NewProblem(userID, in.Name, difficulty, in.DateSolved, now)
	p.Tags = entities.NormalizeTags(in.Tags)
	p.URL = strings.TrimSpace(in.URL)
	p.Notes = in.Notes

	if err := p.Validate(); err != nil {
		return nil, nil, err
	}
	for i, due := range in.Reminders {
		if due.IsZero() {
			return nil, nil, entities.NewValidationError("reminders", fmt.Sprintf("entry %d has no due time", i))
		}
	}

	prefs, err := s.prefs.Resolve(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve preferences: %w", err)
	}

	reminders := s.scheduler.InitialReminders(p, prefs, in.Reminders, now)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, repos TxRepositories) error {
		if err := repos.Problems.Create(ctx, p); err != nil {
			return err
		}
		return repos.Reminders.CreateBatch(ctx, reminders)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create problem: %w", err)
	}

	s.logger.Info("problem created",
		zap.Int64("user_id", userID),
		zap.String("problem_id", p.ID),
		zap.Int("reminders", len(reminders)),
	)

	return p, reminders, nil
}

func (s *ProblemService) Get(ctx context.Context, userID int64, id string) (*entities.Problem, error) {
	if userID <= 0 {
		return nil, entities.ErrUnauthorized
	}

	p, err := s.problems.GetByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("get problem: %w", err)
	}
	return p, nil
}

func (s *ProblemService) List(ctx context.Context, userID int64, filter entities.ProblemFilter) ([]*entities.Problem, error) {
	if userID <= 0 {
		return nil, entities.ErrUnauthorized
	}
	if filter.Difficulty != "" {
		d, err := entities.ParseDifficulty(string(filter.Difficulty))
		if err != nil {
			return nil, err
		}
		filter.Difficulty = d
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, entities.NewValidationError("limit", "must not be negative")
	}

	problems, err := s.problems.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list problems: %w", err)
	}
	return problems, nil
}

// Update applies a partial update. Practice history is not editable here.
func (s *ProblemService) Update(ctx context.Context, userID int64, id string, in UpdateProblemInput) (*entities.Problem, error) {
	if userID <= 0 {
		return nil, entities.ErrUnauthorized
	}

	p, err := s.problems.GetByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("update problem: %w", err)
	}

	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Difficulty != nil {
		d, err := entities.ParseDifficulty(*in.Difficulty)
		if err != nil {
			return nil, err
		}
		p.Difficulty = d
	}
	if in.Tags != nil {
		p.Tags = entities.NormalizeTags(*in.Tags)
	}
	if in.URL != nil {
		p.URL = strings.TrimSpace(*in.URL)
	}
	if in.DateSolved != nil {
		p.DateSolved = entities.TruncateToDate(*in.DateSolved)
	}
	if in.Notes != nil {
		p.Notes = *in.Notes
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	p.UpdatedAt = s.now()
	if err := s.problems.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update problem: %w", err)
	}

	return p, nil
}

// Delete removes a problem and, through storage cascade, its reminders.
func (s *ProblemService) Delete(ctx context.Context, userID int64, id string) error {
	if userID <= 0 {
		return entities.ErrUnauthorized
	}

	if err := s.problems.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete problem: %w", err)
	}

	s.logger.Info("problem deleted", zap.Int64("user_id", userID), zap.String("problem_id", id))
	return nil
}
