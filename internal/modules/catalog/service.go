// Package catalog manages studios, their rooms, and their operating
// schedules. It owns the one-default-room invariant and all schedule
// validation; booking and open-times only ever read what catalog wrote.
package catalog

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"studiobook/internal/domain"
	"studiobook/internal/timezone"
)

type StudioRepository interface {
	Create(ctx context.Context, s *domain.Studio) error
	Update(ctx context.Context, s *domain.Studio) error
	GetByID(ctx context.Context, id string) (*domain.Studio, error)
	List(ctx context.Context) ([]domain.Studio, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Studio, error)
}

type RoomRepository interface {
	Create(ctx context.Context, r *domain.Room) error
	Update(ctx context.Context, r *domain.Room) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Room, error)
	ListByStudio(ctx context.Context, studioID string) ([]domain.Room, error)
	SetDefault(ctx context.Context, studioID, roomID string) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	ListEngineers(ctx context.Context) ([]domain.User, error)
}

type Service struct {
	studios StudioRepository
	rooms   RoomRepository
	users   UserRepository
}

func NewService(studios StudioRepository, rooms RoomRepository, users UserRepository) *Service {
	return &Service{studios: studios, rooms: rooms, users: users}
}

/* ---------- STUDIO ---------- */

func (s *Service) CreateStudio(ctx context.Context, ownerID string, role domain.Role, req CreateStudioRequest) (*domain.Studio, error) {
	if role != domain.RoleStudioOwner {
		return nil, domain.ErrPermissionDenied
	}
	if err := validateSchedule(req.Schedule); err != nil {
		return nil, err
	}

	now := time.Now()
	studio := &domain.Studio{
		ID:                  uuid.NewString(),
		OwnerID:             ownerID,
		Name:                req.Name,
		Description:         req.Description,
		Address:             req.Address,
		City:                req.City,
		Schedule:            normalizeSchedule(req.Schedule),
		AutoApproveRequests: req.AutoApproveRequests,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.studios.Create(ctx, studio); err != nil {
		return nil, err
	}
	return studio, nil
}

func (s *Service) UpdateStudio(ctx context.Context, actorID, studioID string, req UpdateStudioRequest) (*domain.Studio, error) {
	studio, err := s.owned(ctx, actorID, studioID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		studio.Name = *req.Name
	}
	if req.Description != nil {
		studio.Description = *req.Description
	}
	if req.Address != nil {
		studio.Address = *req.Address
	}
	if req.City != nil {
		studio.City = *req.City
	}
	if req.Schedule != nil {
		if err := validateSchedule(*req.Schedule); err != nil {
			return nil, err
		}
		studio.Schedule = normalizeSchedule(*req.Schedule)
	}
	if req.AutoApproveRequests != nil {
		studio.AutoApproveRequests = *req.AutoApproveRequests
	}
	studio.UpdatedAt = time.Now()

	if err := s.studios.Update(ctx, studio); err != nil {
		return nil, err
	}
	return studio, nil
}

func (s *Service) GetStudio(ctx context.Context, id string) (*domain.Studio, error) {
	studio, err := s.studios.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rooms, err := s.rooms.ListByStudio(ctx, id)
	if err != nil {
		return nil, err
	}
	studio.Rooms = rooms
	return studio, nil
}

func (s *Service) ListStudios(ctx context.Context) ([]domain.Studio, error) {
	return s.studios.List(ctx)
}

func (s *Service) ListOwnedStudios(ctx context.Context, ownerID string) ([]domain.Studio, error) {
	return s.studios.ListByOwner(ctx, ownerID)
}

/* ---------- SCHEDULE ---------- */

func (s *Service) AddBlackout(ctx context.Context, actorID, studioID, dateKey string) (*domain.Studio, error) {
	if _, err := time.Parse(timezone.DateKeyLayout, dateKey); err != nil {
		return nil, domain.ErrValidation
	}
	studio, err := s.owned(ctx, actorID, studioID)
	if err != nil {
		return nil, err
	}
	if studio.Schedule.Blackout(dateKey) {
		return studio, nil
	}
	studio.Schedule.BlackoutDates = append(studio.Schedule.BlackoutDates, dateKey)
	sort.Strings(studio.Schedule.BlackoutDates)
	studio.UpdatedAt = time.Now()

	if err := s.studios.Update(ctx, studio); err != nil {
		return nil, err
	}
	return studio, nil
}

func (s *Service) RemoveBlackout(ctx context.Context, actorID, studioID, dateKey string) (*domain.Studio, error) {
	studio, err := s.owned(ctx, actorID, studioID)
	if err != nil {
		return nil, err
	}
	kept := studio.Schedule.BlackoutDates[:0]
	for _, d := range studio.Schedule.BlackoutDates {
		if d != dateKey {
			kept = append(kept, d)
		}
	}
	studio.Schedule.BlackoutDates = kept
	studio.UpdatedAt = time.Now()

	if err := s.studios.Update(ctx, studio); err != nil {
		return nil, err
	}
	return studio, nil
}

/* ---------- ENGINEERS ---------- */

// ApproveEngineer adds the engineer to the studio's approved list. The
// studio update publishes on the studios stream, which is what open-times
// engines watch for membership changes.
func (s *Service) ApproveEngineer(ctx context.Context, actorID, studioID, engineerID string) (*domain.Studio, error) {
	studio, err := s.owned(ctx, actorID, studioID)
	if err != nil {
		return nil, err
	}
	engineer, err := s.users.GetByID(ctx, engineerID)
	if err != nil {
		return nil, err
	}
	if engineer.Role != domain.RoleEngineer {
		return nil, domain.ErrValidation
	}
	if studio.EngineerApproved(engineerID) {
		return studio, nil
	}
	studio.ApprovedEngineerIDs = append(studio.ApprovedEngineerIDs, engineerID)
	studio.UpdatedAt = time.Now()

	if err := s.studios.Update(ctx, studio); err != nil {
		return nil, err
	}
	return studio, nil
}

// ListEngineers returns every engineer profile, for artists picking who
// runs their session.
func (s *Service) ListEngineers(ctx context.Context) ([]domain.User, error) {
	return s.users.ListEngineers(ctx)
}

func (s *Service) RemoveEngineer(ctx context.Context, actorID, studioID, engineerID string) (*domain.Studio, error) {
	studio, err := s.owned(ctx, actorID, studioID)
	if err != nil {
		return nil, err
	}
	kept := studio.ApprovedEngineerIDs[:0]
	for _, id := range studio.ApprovedEngineerIDs {
		if id != engineerID {
			kept = append(kept, id)
		}
	}
	studio.ApprovedEngineerIDs = kept
	studio.UpdatedAt = time.Now()

	if err := s.studios.Update(ctx, studio); err != nil {
		return nil, err
	}
	return studio, nil
}

/* ---------- ROOMS ---------- */

// CreateRoom adds a room. The studio's first room becomes the default.
func (s *Service) CreateRoom(ctx context.Context, actorID, studioID string, req CreateRoomRequest) (*domain.Room, error) {
	studio, err := s.owned(ctx, actorID, studioID)
	if err != nil {
		return nil, err
	}
	existing, err := s.rooms.ListByStudio(ctx, studio.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	room := &domain.Room{
		ID:         uuid.NewString(),
		StudioID:   studio.ID,
		Name:       req.Name,
		HourlyRate: req.HourlyRate,
		Capacity:   req.Capacity,
		Amenities:  req.Amenities,
		IsDefault:  len(existing) == 0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *Service) UpdateRoom(ctx context.Context, actorID, roomID string, req UpdateRoomRequest) (*domain.Room, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, actorID, room.StudioID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		room.Name = *req.Name
	}
	if req.HourlyRate != nil {
		room.HourlyRate = req.HourlyRate
	}
	if req.Capacity != nil {
		room.Capacity = req.Capacity
	}
	if req.Amenities != nil {
		room.Amenities = *req.Amenities
	}
	room.UpdatedAt = time.Now()

	if err := s.rooms.Update(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// DeleteRoom removes a room; when the default goes away the oldest
// remaining room inherits the flag.
func (s *Service) DeleteRoom(ctx context.Context, actorID, roomID string) error {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return err
	}
	if _, err := s.owned(ctx, actorID, room.StudioID); err != nil {
		return err
	}
	if err := s.rooms.Delete(ctx, roomID); err != nil {
		return err
	}

	if room.IsDefault {
		remaining, err := s.rooms.ListByStudio(ctx, room.StudioID)
		if err != nil {
			return err
		}
		if len(remaining) > 0 {
			return s.rooms.SetDefault(ctx, room.StudioID, remaining[0].ID)
		}
	}
	return nil
}

func (s *Service) SetDefaultRoom(ctx context.Context, actorID, studioID, roomID string) error {
	studio, err := s.owned(ctx, actorID, studioID)
	if err != nil {
		return err
	}
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return err
	}
	if room.StudioID != studio.ID {
		return domain.ErrValidation
	}
	return s.rooms.SetDefault(ctx, studio.ID, roomID)
}

/* ---------- helpers ---------- */

func (s *Service) owned(ctx context.Context, actorID, studioID string) (*domain.Studio, error) {
	studio, err := s.studios.GetByID(ctx, studioID)
	if err != nil {
		return nil, err
	}
	if studio.OwnerID != actorID {
		return nil, domain.ErrPermissionDenied
	}
	return studio, nil
}

const minutesPerDay = 24 * 60

// validateSchedule checks the recurring hours and blackout dates. Ranges on
// the same weekday may not overlap; a range may not cross midnight.
func validateSchedule(sched domain.OperatingSchedule) error {
	if sched.TimeZoneID != "" && !timezone.IsValid(sched.TimeZoneID) {
		return domain.ErrValidation
	}
	for _, h := range sched.RecurringHours {
		if h.Weekday < 0 || h.Weekday > 6 {
			return domain.ErrValidation
		}
		if h.StartMinutes < 0 || h.StartMinutes > minutesPerDay-1 {
			return domain.ErrValidation
		}
		if h.DurationMinutes <= 0 || h.StartMinutes+h.DurationMinutes > minutesPerDay {
			return domain.ErrValidation
		}
	}
	byDay := make(map[int][]domain.HoursRange)
	for _, h := range sched.RecurringHours {
		byDay[h.Weekday] = append(byDay[h.Weekday], h)
	}
	for _, ranges := range byDay {
		sort.Slice(ranges, func(i, j int) bool { return ranges[i].StartMinutes < ranges[j].StartMinutes })
		for i := 1; i < len(ranges); i++ {
			if ranges[i].StartMinutes < ranges[i-1].StartMinutes+ranges[i-1].DurationMinutes {
				return domain.ErrValidation
			}
		}
	}
	for _, d := range sched.BlackoutDates {
		if _, err := time.Parse(timezone.DateKeyLayout, d); err != nil {
			return domain.ErrValidation
		}
	}
	return nil
}

func normalizeSchedule(sched domain.OperatingSchedule) domain.OperatingSchedule {
	if sched.TimeZoneID == "" {
		sched.TimeZoneID = timezone.DefaultZone
	}
	sort.Strings(sched.BlackoutDates)
	return sched
}
