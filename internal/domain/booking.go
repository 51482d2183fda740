package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
	// BookingReschedulePending marks a booking that was confirmed and then
	// rescheduled, so it is back in the approval phase. Everywhere except
	// display it behaves exactly like BookingPending.
	BookingReschedulePending BookingStatus = "rescheduled-pending"
)

// Approval tracks the outstanding sign-offs on a booking. A flag set to true
// means that side still owes an approval.
type Approval struct {
	RequiresStudioApproval   bool       `json:"requires_studio_approval"`
	RequiresEngineerApproval bool       `json:"requires_engineer_approval"`
	ResolvedBy               string     `json:"resolved_by,omitempty"`
	ResolvedAt               *time.Time `json:"resolved_at,omitempty"`
}

type Booking struct {
	ID         string `json:"id"`
	ArtistID   string `json:"artist_id" validate:"required"`
	EngineerID string `json:"engineer_id" validate:"required"`
	StudioID   string `json:"studio_id" validate:"required"`
	RoomID     string `json:"room_id" validate:"required"`

	RequestedStart  time.Time `json:"requested_start" validate:"required"`
	RequestedEnd    time.Time `json:"requested_end" validate:"required"`
	DurationMinutes int       `json:"duration_minutes"`

	// Set only once both approvals resolve, or backfilled on completion.
	ConfirmedStart *time.Time `json:"confirmed_start,omitempty"`
	ConfirmedEnd   *time.Time `json:"confirmed_end,omitempty"`

	Status      BookingStatus `json:"status"`
	Approval    Approval      `json:"approval"`
	InstantBook bool          `json:"instant_book"`

	Notes              string     `json:"notes,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// InApproval reports whether the booking is still waiting on sign-offs.
func (b Booking) InApproval() bool {
	return b.Status == BookingPending || b.Status == BookingReschedulePending
}

// Terminal bookings accept no further transitions.
func (b Booking) Terminal() bool {
	return b.Status == BookingCancelled || b.Status == BookingCompleted
}

// OccupiesRoom reports whether the booking removes time from open windows.
// Completed and cancelled bookings do not hold their slot.
func (b Booking) OccupiesRoom() bool {
	switch b.Status {
	case BookingPending, BookingConfirmed, BookingReschedulePending:
		return true
	default:
		return false
	}
}

// Participant reports whether the user is the artist or engineer on the
// booking. Studio-side permission is an ownership check, not participation.
func (b Booking) Participant(userID string) bool {
	return userID != "" && (userID == b.ArtistID || userID == b.EngineerID)
}
