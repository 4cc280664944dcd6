package entities

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReminderSource tells which path created a reminder.
type ReminderSource string

const (
	ReminderSourceInitial  ReminderSource = "initial"
	ReminderSourceFeedback ReminderSource = "feedback"
	ReminderSourceManual   ReminderSource = "manual"
)

// Reminder is a scheduled nudge to revisit a problem.
// Send state only moves from pending to sent; completion toggles freely.
type Reminder struct {
	ID          string
	ProblemID   string
	UserID      int64
	DueAt       time.Time
	IsSent      bool
	SentAt      *time.Time
	IsCompleted bool
	CompletedAt *time.Time
	Source      ReminderSource
	CreatedAt   time.Time
}

func NewReminder(userID int64, problemID string, dueAt time.Time, source ReminderSource, now time.Time) *Reminder {
	return &Reminder{
		ID:        uuid.NewString(),
		ProblemID: problemID,
		UserID:    userID,
		DueAt:     dueAt,
		Source:    source,
		CreatedAt: now,
	}
}

func (r *Reminder) SetCompleted(completed bool, now time.Time) {
	r.IsCompleted = completed
	if completed {
		r.CompletedAt = &now
		return
	}
	r.CompletedAt = nil
}

// ReminderFilter narrows a reminder listing. Nil flags match both states.
type ReminderFilter struct {
	ProblemID string
	Sent      *bool
	Completed *bool
	Limit     int
}

// DueReminder is a pending reminder joined with the problem it points to.
type DueReminder struct {
	ReminderID  string
	ProblemID   string
	ProblemName string
	UserID      int64
	DueAt       time.Time
}

func (d *DueReminder) Validate() error {
	switch {
	case d.ReminderID == "":
		return errors.New("missing reminder id")
	case d.ProblemID == "":
		return errors.New("missing problem id")
	case d.UserID <= 0:
		return fmt.Errorf("invalid user id %d", d.UserID)
	case d.DueAt.IsZero():
		return errors.New("missing due time")
	}
	return nil
}

func (d *DueReminder) Message() string {
	return fmt.Sprintf("Time to revisit %q", d.ProblemName)
}

func (d *DueReminder) Meta() NotificationMeta {
	return NotificationMeta{DueAt: d.DueAt, ProblemID: d.ProblemID}
}

// NotificationMeta travels with every reminder notification.
type NotificationMeta struct {
	DueAt     time.Time `json:"due_datetime"`
	ProblemID string    `json:"problem_id"`
}
