package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimeOfDay is a clock time without a date, serialized as "HH:MM".
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" (24h) into a TimeOfDay.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// String returns the "HH:MM" form.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// MinutesFromMidnight returns the offset in minutes since 00:00.
func (t TimeOfDay) MinutesFromMidnight() int {
	return t.Hour*60 + t.Minute
}

// On anchors the time of day to a calendar date in the date's location.
func (t TimeOfDay) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, 0, 0, date.Location())
}

// MarshalJSON implements json.Marshaler.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// WeekdayNames lists the recognized lowercase weekday names.
var WeekdayNames = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// WeekdayName returns the lowercase name for a time.Weekday.
func WeekdayName(d time.Weekday) string {
	return strings.ToLower(d.String())
}

// IsWeekdayName reports whether s is a recognized lowercase weekday name.
func IsWeekdayName(s string) bool {
	for _, name := range WeekdayNames {
		if s == name {
			return true
		}
	}
	return false
}

// AvailabilityWindow is a recurring daily time range plus the weekdays it
// applies to. Windows are kept as an ordered list; the first window whose
// day set contains a given weekday is the active window for that day.
type AvailabilityWindow struct {
	Start TimeOfDay `json:"start_time"`
	End   TimeOfDay `json:"end_time"`
	Days  []string  `json:"days"`
}

// AppliesTo reports whether the window covers the given weekday name.
func (w *AvailabilityWindow) AppliesTo(day string) bool {
	for _, d := range w.Days {
		if d == day {
			return true
		}
	}
	return false
}

// CapacityMinutes returns the window length in minutes.
func (w *AvailabilityWindow) CapacityMinutes() int {
	return w.End.MinutesFromMidnight() - w.Start.MinutesFromMidnight()
}

// DefaultAvailability is a Mon-Fri 18:00-22:00 evening window.
func DefaultAvailability() []AvailabilityWindow {
	return []AvailabilityWindow{
		{
			Start: TimeOfDay{Hour: 18},
			End:   TimeOfDay{Hour: 22},
			Days:  []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
		},
	}
}

// PlanRequest is the input to one planning run.
type PlanRequest struct {
	UserID           uuid.UUID            `json:"user_id"`
	Tasks            []*Task              `json:"tasks"`
	Availability     []AvailabilityWindow `json:"availability" validate:"required,min=1"`
	StudyHoursPerDay int                  `json:"study_hours_per_day" validate:"required,min=1,max=12"`
}

// PlanPreference stores a user's saved planning inputs so the worker can
// regenerate the weekly plan without a request body.
type PlanPreference struct {
	UserID           uuid.UUID            `json:"user_id"`
	Availability     []AvailabilityWindow `json:"availability"`
	StudyHoursPerDay int                  `json:"study_hours_per_day"`
	AutoPlan         bool                 `json:"auto_plan"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}
