package entities

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

const (
	maxProblemNameLen = 200
	maxNotesLen       = 10000
	DateLayout        = "2006-01-02"
)

// ParseDifficulty accepts any letter case.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return DifficultyEasy, nil
	case "medium":
		return DifficultyMedium, nil
	case "hard":
		return DifficultyHard, nil
	default:
		return "", NewValidationError("difficulty", "must be one of Easy, Medium, Hard")
	}
}

// Problem is a solved coding problem kept for review.
type Problem struct {
	ID         string
	UserID     int64
	Name       string
	Difficulty Difficulty
	Tags       []string
	URL        string
	DateSolved time.Time
	Notes      string
	Practice   PracticeMeta
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func NewProblem(userID int64, name string, difficulty Difficulty, dateSolved time.Time, now time.Time) *Problem {
	return &Problem{
		ID:         uuid.NewString(),
		UserID:     userID,
		Name:       strings.TrimSpace(name),
		Difficulty: difficulty,
		DateSolved: TruncateToDate(dateSolved),
		Practice:   NewPracticeMeta(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate checks user-editable fields.
func (p *Problem) Validate() error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return NewValidationError("name", "is required")
	}
	if len(name) > maxProblemNameLen {
		return NewValidationError("name", "is too long")
	}
	if _, err := ParseDifficulty(string(p.Difficulty)); err != nil {
		return err
	}
	if p.DateSolved.IsZero() {
		return NewValidationError("date_solved", "is required")
	}
	if len(p.Notes) > maxNotesLen {
		return NewValidationError("notes", "is too long")
	}
	if p.URL != "" {
		u, err := url.Parse(p.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return NewValidationError("url", "must be an absolute http(s) URL")
		}
	}
	return nil
}

// NormalizeTags lower-cases, trims and deduplicates tags, keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := lo.Uniq(lo.FilterMap(tags, func(t string, _ int) (string, bool) {
		t = strings.ToLower(strings.TrimSpace(t))
		return t, t != ""
	}))
	if out == nil {
		return []string{}
	}
	return out
}

// TruncateToDate drops the clock part, keeping the calendar date as UTC midnight.
func TruncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ProblemFilter narrows a problem listing.
type ProblemFilter struct {
	Difficulty Difficulty
	Tag        string
	Limit      int
	Offset     int
}
