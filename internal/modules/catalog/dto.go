package catalog

import "studiobook/internal/domain"

type CreateStudioRequest struct {
	Name                string                   `json:"name" binding:"required"`
	Description         string                   `json:"description"`
	Address             string                   `json:"address"`
	City                string                   `json:"city"`
	Schedule            domain.OperatingSchedule `json:"schedule"`
	AutoApproveRequests bool                     `json:"auto_approve_requests"`
}

type UpdateStudioRequest struct {
	Name                *string                   `json:"name"`
	Description         *string                   `json:"description"`
	Address             *string                   `json:"address"`
	City                *string                   `json:"city"`
	Schedule            *domain.OperatingSchedule `json:"schedule"`
	AutoApproveRequests *bool                     `json:"auto_approve_requests"`
}

type CreateRoomRequest struct {
	Name       string   `json:"name" binding:"required"`
	HourlyRate *float64 `json:"hourly_rate"`
	Capacity   *int     `json:"capacity"`
	Amenities  []string `json:"amenities"`
}

type UpdateRoomRequest struct {
	Name       *string   `json:"name"`
	HourlyRate *float64  `json:"hourly_rate"`
	Capacity   *int      `json:"capacity"`
	Amenities  *[]string `json:"amenities"`
}

type BlackoutRequest struct {
	Date string `json:"date" binding:"required"` // "2006-01-02"
}

type EngineerRequest struct {
	EngineerID string `json:"engineer_id" binding:"required"`
}
