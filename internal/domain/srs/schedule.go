package srs

import (
	"slices"
	"time"
)

const DefaultReviewHour = 9

// DefaultInitialOffsets are the day offsets from the solve date used for the
// first reminders of a freshly logged problem.
var DefaultInitialOffsets = []int{3, 7, 15}

// Policy fixes the wall-clock shape of generated due times.
type Policy struct {
	ReviewHour     int
	InitialOffsets []int
}

func DefaultPolicy() Policy {
	return Policy{
		ReviewHour:     DefaultReviewHour,
		InitialOffsets: slices.Clone(DefaultInitialOffsets),
	}
}

// ReviewTimeOn returns ReviewHour:00 in loc on the calendar date of day shifted by days.
// The calendar date is read from day as given, so a solve date parsed as UTC
// midnight keeps its day when mapped into a user's location.
func (p Policy) ReviewTimeOn(day time.Time, days int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := day.Date()
	return time.Date(y, m, d+days, p.ReviewHour, 0, 0, 0, loc)
}

// InitialDueTimes returns one due time per initial offset.
func (p Policy) InitialDueTimes(dateSolved time.Time, loc *time.Location) []time.Time {
	out := make([]time.Time, 0, len(p.InitialOffsets))
	for _, off := range p.InitialOffsets {
		out = append(out, p.ReviewTimeOn(dateSolved, off, loc))
	}
	return out
}

// PlanInitial decides which reminders a new problem starts with.
// Explicit times always win; otherwise defaults apply only when auto reminders are on.
func (p Policy) PlanInitial(dateSolved time.Time, autoReminders bool, explicit []time.Time, loc *time.Location) []time.Time {
	if len(explicit) > 0 {
		return slices.Clone(explicit)
	}
	if !autoReminders {
		return nil
	}
	return p.InitialDueTimes(dateSolved, loc)
}

// NextDueAt maps an interval onto the review hour of the local day
// interval days after now.
func (p Policy) NextDueAt(now time.Time, interval int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return p.ReviewTimeOn(now.In(loc), interval, loc)
}
