package httpapi

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/aliskhannn/revisit/internal/domain/entities"
)

type problemRequest struct {
	Name       string   `json:"name"`
	Difficulty string   `json:"difficulty"`
	Tags       []string `json:"tags"`
	URL        string   `json:"url"`
	DateSolved string   `json:"date_solved"`
	Notes      string   `json:"notes"`
	Reminders  []string `json:"reminders"`
}

type problemPatchRequest struct {
	Name       *string   `json:"name"`
	Difficulty *string   `json:"difficulty"`
	Tags       *[]string `json:"tags"`
	URL        *string   `json:"url"`
	DateSolved *string   `json:"date_solved"`
	Notes      *string   `json:"notes"`
}

type problemResponse struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	Difficulty   entities.Difficulty   `json:"difficulty"`
	Tags         []string              `json:"tags"`
	URL          string                `json:"url,omitempty"`
	DateSolved   string                `json:"date_solved"`
	Notes        string                `json:"notes,omitempty"`
	PracticeMeta entities.PracticeMeta `json:"practice_meta"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

func toProblemResponse(p *entities.Problem) problemResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return problemResponse{
		ID:           p.ID,
		Name:         p.Name,
		Difficulty:   p.Difficulty,
		Tags:         tags,
		URL:          p.URL,
		DateSolved:   p.DateSolved.Format(entities.DateLayout),
		Notes:        p.Notes,
		PracticeMeta: p.Practice,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

type createProblemResponse struct {
	Problem   problemResponse    `json:"problem"`
	Reminders []reminderResponse `json:"reminders"`
}

type practiceRequest struct {
	QualityScore *int `json:"quality_score"`
}

type practiceResponse struct {
	Problem    problemResponse `json:"problem"`
	NextDueAt  time.Time       `json:"next_due_at"`
	ReminderID string          `json:"reminder_id"`
}

type reminderRequest struct {
	ProblemID string `json:"problem_id"`
	DueAt     string `json:"due_datetime"`
}

type completionRequest struct {
	Completed *bool `json:"completed"`
}

type reminderResponse struct {
	ID          string                  `json:"id"`
	ProblemID   string                  `json:"problem_id"`
	DueAt       time.Time               `json:"due_datetime"`
	IsSent      bool                    `json:"is_sent"`
	SentAt      *time.Time              `json:"sent_at,omitempty"`
	IsCompleted bool                    `json:"is_completed"`
	CompletedAt *time.Time              `json:"completed_at,omitempty"`
	Source      entities.ReminderSource `json:"source"`
	CreatedAt   time.Time               `json:"created_at"`
}

func toReminderResponse(r *entities.Reminder) reminderResponse {
	return reminderResponse{
		ID:          r.ID,
		ProblemID:   r.ProblemID,
		DueAt:       r.DueAt,
		IsSent:      r.IsSent,
		SentAt:      r.SentAt,
		IsCompleted: r.IsCompleted,
		CompletedAt: r.CompletedAt,
		Source:      r.Source,
		CreatedAt:   r.CreatedAt,
	}
}

func toReminderResponses(rs []*entities.Reminder) []reminderResponse {
	return lo.Map(rs, func(r *entities.Reminder, _ int) reminderResponse {
		return toReminderResponse(r)
	})
}

type preferencesRequest struct {
	AutoReminders *bool   `json:"auto_reminders"`
	Timezone      *string `json:"timezone"`
}

type preferencesResponse struct {
	AutoReminders bool   `json:"auto_reminders"`
	Timezone      string `json:"timezone"`
}

type subscriptionRequest struct {
	Channel string `json:"channel"`
	Target  string `json:"target"`
}

type subscriptionResponse struct {
	ID        string           `json:"id"`
	Channel   entities.Channel `json:"channel"`
	Target    string           `json:"target"`
	CreatedAt time.Time        `json:"created_at"`
}

func toSubscriptionResponse(s *entities.Subscription) subscriptionResponse {
	return subscriptionResponse{ID: s.ID, Channel: s.Channel, Target: s.Target, CreatedAt: s.CreatedAt}
}

func bindBody(c echo.Context, v any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, v); err != nil {
		return entities.NewValidationError("body", "malformed JSON")
	}
	return nil
}

func parseDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(entities.DateLayout, s)
	if err != nil {
		return time.Time{}, entities.NewValidationError(field, "must be a YYYY-MM-DD date")
	}
	return t, nil
}

func parseDateTime(field, s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, entities.NewValidationError(field, "must be an RFC 3339 timestamp")
	}
	return t, nil
}

func parseOptionalBool(field, s string) (*bool, error) {
	if s == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, entities.NewValidationError(field, "must be true or false")
	}
	return &b, nil
}
