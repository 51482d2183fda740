package domain

import "time"

type EntryKind string

const (
	EntryBlock       EntryKind = "block"
	EntryBookingHold EntryKind = "booking_hold"
	EntrySelfBooking EntryKind = "self_booking"
	EntryRecurring   EntryKind = "recurring"
)

// Scope says which owner namespace an entry lives in. Studio-scoped and
// engineer-scoped entries are stored and queried separately.
type Scope string

const (
	ScopeStudio   Scope = "studio"
	ScopeEngineer Scope = "engineer"
)

// Temporal is the tagged variant carrying an entry's time shape. Exactly one
// concrete type is populated; the compiler enforces it instead of a
// null-field convention.
type Temporal interface {
	isTemporal()
}

// Absolute is a fixed-date block [Start, End).
type Absolute struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Recurring repeats every matching weekday, interpreted in the studio's
// timezone.
type Recurring struct {
	Weekday         int `json:"weekday"`
	StartMinutes    int `json:"start_minutes"`
	DurationMinutes int `json:"duration_minutes"`
}

func (Absolute) isTemporal()  {}
func (Recurring) isTemporal() {}

// AvailabilityEntry is a manually created obstruction or self-reservation
// that removes time from open windows.
type AvailabilityEntry struct {
	ID      string    `json:"id"`
	Kind    EntryKind `json:"kind"`
	Scope   Scope     `json:"scope"`
	OwnerID string    `json:"owner_id"` // studio id or engineer id, per Scope

	StudioID   string `json:"studio_id,omitempty"`
	RoomID     string `json:"room_id,omitempty"` // empty = applies to all rooms
	EngineerID string `json:"engineer_id,omitempty"`

	When Temporal `json:"when"`

	CreatedBy string `json:"created_by,omitempty"`
	Notes     string `json:"notes,omitempty"`
	// Links booking_hold entries back to the booking that created them.
	SourceBookingID string `json:"source_booking_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the kind/temporal pairing: recurring entries carry a
// Recurring shape, everything else an Absolute one.
func (e AvailabilityEntry) Validate() error {
	if e.OwnerID == "" || e.Kind == "" {
		return ErrValidation
	}
	switch w := e.When.(type) {
	case Recurring:
		if e.Kind != EntryRecurring {
			return ErrValidation
		}
		if w.Weekday < 0 || w.Weekday > 6 || w.StartMinutes < 0 || w.StartMinutes > 1439 || w.DurationMinutes <= 0 {
			return ErrValidation
		}
	case Absolute:
		if e.Kind == EntryRecurring {
			return ErrValidation
		}
		if !w.End.After(w.Start) {
			return ErrValidation
		}
	default:
		return ErrValidation
	}
	if e.Kind == EntryBookingHold && e.SourceBookingID == "" {
		return ErrValidation
	}
	return nil
}
