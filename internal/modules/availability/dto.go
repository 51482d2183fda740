package availability

import (
	"time"

	"studiobook/internal/domain"
)

// UpsertEntryRequest is the flat wire shape; exactly one of the absolute
// (start/end) or recurring (weekday/start_minutes/duration_minutes) groups
// must be present.
type UpsertEntryRequest struct {
	ID         string `json:"id"`
	Kind       string `json:"kind" binding:"required"`
	Scope      string `json:"scope" binding:"required"`
	OwnerID    string `json:"owner_id" binding:"required"`
	StudioID   string `json:"studio_id"`
	RoomID     string `json:"room_id"`
	EngineerID string `json:"engineer_id"`

	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`

	Weekday         *int `json:"weekday"`
	StartMinutes    *int `json:"start_minutes"`
	DurationMinutes *int `json:"duration_minutes"`

	Notes string `json:"notes"`
}

func (r UpsertEntryRequest) toDomain() (domain.AvailabilityEntry, error) {
	e := domain.AvailabilityEntry{
		ID:         r.ID,
		Kind:       domain.EntryKind(r.Kind),
		Scope:      domain.Scope(r.Scope),
		OwnerID:    r.OwnerID,
		StudioID:   r.StudioID,
		RoomID:     r.RoomID,
		EngineerID: r.EngineerID,
		Notes:      r.Notes,
	}
	hasAbsolute := r.Start != nil && r.End != nil
	hasRecurring := r.Weekday != nil && r.StartMinutes != nil && r.DurationMinutes != nil
	switch {
	case hasAbsolute && !hasRecurring:
		e.When = domain.Absolute{Start: *r.Start, End: *r.End}
	case hasRecurring && !hasAbsolute:
		e.When = domain.Recurring{Weekday: *r.Weekday, StartMinutes: *r.StartMinutes, DurationMinutes: *r.DurationMinutes}
	default:
		return domain.AvailabilityEntry{}, domain.ErrValidation
	}
	return e, nil
}
