package inbox

import "studiobook/internal/domain"

// Item is one booking dressed with display names for the inbox view.
type Item struct {
	Booking      domain.Booking `json:"booking"`
	ArtistName   string         `json:"artist_name,omitempty"`
	EngineerName string         `json:"engineer_name,omitempty"`
	StudioName   string         `json:"studio_name,omitempty"`
}

// Inbox is the role-aware bucketed view of a user's bookings.
type Inbox struct {
	PendingApprovals []Item `json:"pending_approvals"`
	Upcoming         []Item `json:"upcoming"`
	Past             []Item `json:"past"`
	Cancelled        []Item `json:"cancelled"`
	NeedsReview      []Item `json:"needs_review"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}
