package domain

import "time"

// HoursRange is one recurring operating block. Multiple ranges per weekday
// are allowed (split shifts).
type HoursRange struct {
	Weekday         int `json:"weekday"` // 0=Sun .. 6=Sat
	StartMinutes    int `json:"start_minutes"`
	DurationMinutes int `json:"duration_minutes"`
}

// OperatingSchedule is the studio's recurring hours plus full-day closures.
// All of it is interpreted in the studio's own timezone.
type OperatingSchedule struct {
	RecurringHours []HoursRange `json:"recurring_hours"`
	BlackoutDates  []string     `json:"blackout_dates,omitempty"` // "2006-01-02" date keys
	TimeZoneID     string       `json:"time_zone_id"`
}

// Blackout reports whether the date key falls on a full-day closure.
func (s OperatingSchedule) Blackout(dateKey string) bool {
	for _, d := range s.BlackoutDates {
		if d == dateKey {
			return true
		}
	}
	return false
}

type Studio struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	Address     string `json:"address,omitempty"`
	City        string `json:"city,omitempty"`

	Schedule OperatingSchedule `json:"schedule"`

	// Booking requests skip the studio-side approval when set.
	AutoApproveRequests bool `json:"auto_approve_requests"`

	// Engineers cleared to work sessions at this studio.
	ApprovedEngineerIDs []string `json:"approved_engineer_ids,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"`

	// Relations (loaded separately)
	Rooms []Room `json:"rooms,omitempty"`
}

// EngineerApproved reports whether the engineer is on the studio's
// approved list.
func (s Studio) EngineerApproved(engineerID string) bool {
	for _, id := range s.ApprovedEngineerIDs {
		if id == engineerID {
			return true
		}
	}
	return false
}

type Room struct {
	ID         string   `json:"id"`
	StudioID   string   `json:"studio_id"`
	Name       string   `json:"name" validate:"required"`
	HourlyRate *float64 `json:"hourly_rate,omitempty"`
	Capacity   *int     `json:"capacity,omitempty"`
	Amenities  []string `json:"amenities,omitempty"`
	// Exactly one room per studio is the default; the catalog module
	// maintains the invariant.
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
