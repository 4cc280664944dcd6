package entities

import "time"

// UserPreferences holds per-user scheduling settings.
type UserPreferences struct {
	UserID        int64
	AutoReminders bool
	Timezone      string
	UpdatedAt     time.Time
}

func DefaultPreferences(userID int64, timezone string) *UserPreferences {
	return &UserPreferences{
		UserID:        userID,
		AutoReminders: true,
		Timezone:      timezone,
	}
}

// Location resolves the stored timezone, falling back to UTC on bad input.
func (p *UserPreferences) Location() *time.Location {
	loc, err := ParseTimezoneLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
