package booking

import "time"

type CreateBookingRequest struct {
	EngineerID string    `json:"engineer_id" binding:"required"`
	StudioID   string    `json:"studio_id" binding:"required"`
	RoomID     string    `json:"room_id" binding:"required"`
	Start      time.Time `json:"start" binding:"required"`
	End        time.Time `json:"end" binding:"required"`
	Notes      string    `json:"notes"`
}

type RescheduleRequest struct {
	Start time.Time `json:"start" binding:"required"`
	End   time.Time `json:"end" binding:"required"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}
