package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aliskhannn/revisit/internal/domain/entities"
)

// PreferencesService reads and updates per-user scheduling preferences.
type PreferencesService struct {
	repo            PreferencesRepository
	defaultTimezone string
	now             func() time.Time
}

func NewPreferencesService(repo PreferencesRepository, defaultTimezone string) *PreferencesService {
	return &PreferencesService{
		repo:            repo,
		defaultTimezone: defaultTimezone,
		now:             time.Now,
	}
}

type UpdatePreferencesInput struct {
	AutoReminders *bool
	Timezone      *string
}

// Resolve returns stored preferences, or defaults for users who never saved any.
func (s *PreferencesService) Resolve(ctx context.Context, userID int64) (*entities.UserPreferences, error) {
	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return entities.DefaultPreferences(userID, s.defaultTimezone), nil
		}
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	return p, nil
}

func (s *PreferencesService) Get(ctx context.Context, userID int64) (*entities.UserPreferences, error) {
	if userID <= 0 {
		return nil, entities.ErrUnauthorized
	}
	return s.Resolve(ctx, userID)
}

func (s *PreferencesService) Update(ctx context.Context, userID int64, in UpdatePreferencesInput) (*entities.UserPreferences, error) {
	if userID <= 0 {
		return nil, entities.ErrUnauthorized
	}
	if in.Timezone != nil {
		if _, err := entities.ParseTimezoneLocation(*in.Timezone); err != nil {
			return nil, entities.NewValidationError("timezone", err.Error())
		}
	}

	p, err := s.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.AutoReminders != nil {
		p.AutoReminders = *in.AutoReminders
	}
	if in.Timezone != nil {
		p.Timezone = *in.Timezone
	}
	p.UpdatedAt = s.now()

	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("update preferences: %w", err)
	}
	return p, nil
}
