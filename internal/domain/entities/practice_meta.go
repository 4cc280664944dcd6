package entities

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aliskhannn/revisit/internal/domain/srs"
)

// PracticeMeta is the repetition history of a problem.
// It is stored as a JSON document next to the problem row.
type PracticeMeta struct {
	AttemptCount    int        `json:"attempt_count"`
	EaseFactor      float64    `json:"ease_factor"`
	Interval        int        `json:"interval"`
	LastAttemptedAt *time.Time `json:"last_attempted_at,omitempty"`
	NextDueAt       *time.Time `json:"next_due_at,omitempty"`
	QualityScore    *int       `json:"quality_score,omitempty"`
}

func NewPracticeMeta() PracticeMeta {
	return PracticeMeta{EaseFactor: srs.DefaultEaseFactor}
}

// Validate rejects documents that could not have been produced by Apply.
func (m PracticeMeta) Validate() error {
	if m.AttemptCount < 0 {
		return fmt.Errorf("attempt_count is negative: %d", m.AttemptCount)
	}
	if m.EaseFactor < srs.MinEaseFactor {
		return fmt.Errorf("ease_factor %.2f below floor %.2f", m.EaseFactor, srs.MinEaseFactor)
	}
	if m.Interval < 0 {
		return fmt.Errorf("interval is negative: %d", m.Interval)
	}
	if m.QualityScore != nil {
		if err := srs.ValidateQuality(*m.QualityScore); err != nil {
			return err
		}
	}
	return nil
}

// Apply records a review graded with quality at now and returns the next due time.
func (m *PracticeMeta) Apply(quality int, now time.Time, policy srs.Policy, loc *time.Location) time.Time {
	attempt := m.AttemptCount + 1
	ease, interval := srs.ComputeNextSchedule(m.EaseFactor, m.Interval, attempt, quality)
	next := policy.NextDueAt(now, interval, loc)

	m.AttemptCount = attempt
	m.EaseFactor = ease
	m.Interval = interval
	m.LastAttemptedAt = &now
	m.NextDueAt = &next
	m.QualityScore = &quality

	return next
}

// Encode serializes the meta for storage.
func (m PracticeMeta) Encode() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("encode practice meta: %w", err)
	}
	return json.Marshal(m)
}

// DecodePracticeMeta parses a stored document. Empty input and missing keys
// fall back to the initial state.
func DecodePracticeMeta(raw []byte) (PracticeMeta, error) {
	meta := NewPracticeMeta()
	if len(raw) == 0 || string(raw) == "null" {
		return meta, nil
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return PracticeMeta{}, fmt.Errorf("decode practice meta: %w", err)
	}
	if meta.EaseFactor == 0 {
		meta.EaseFactor = srs.DefaultEaseFactor
	}
	if err := meta.Validate(); err != nil {
		return PracticeMeta{}, fmt.Errorf("decode practice meta: %w", err)
	}
	return meta, nil
}
