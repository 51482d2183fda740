package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"studiobook/internal/domain"
	"studiobook/internal/interval"
	"studiobook/internal/schedule"
	"studiobook/internal/timezone"
)

type Service struct {
	bookings     BookingRepository
	studios      StudioRepository
	rooms        RoomRepository
	availability AvailabilityRepository
	users        UserRepository
}

func NewService(
	bookings BookingRepository,
	studios StudioRepository,
	rooms RoomRepository,
	availability AvailabilityRepository,
	users UserRepository,
) *Service {
	return &Service{
		bookings:     bookings,
		studios:      studios,
		rooms:        rooms,
		availability: availability,
		users:        users,
	}
}

// Create books a session request. Approval flags come from the studio's
// auto-approve setting and the engineer's instant-book setting; when neither
// side requires a sign-off the booking confirms immediately.
func (s *Service) Create(ctx context.Context, artistID string, req CreateBookingRequest) (*domain.Booking, error) {
	if !req.End.After(req.Start) {
		return nil, domain.ErrValidation
	}
	now := time.Now()
	if req.Start.Before(now) {
		return nil, domain.ErrValidation
	}

	studio, err := s.studios.GetByID(ctx, req.StudioID)
	if err != nil {
		return nil, err
	}
	room, err := s.rooms.GetByID(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	if room.StudioID != studio.ID {
		return nil, domain.ErrValidation
	}
	engineer, err := s.users.GetByID(ctx, req.EngineerID)
	if err != nil {
		return nil, err
	}
	if !studio.EngineerApproved(engineer.ID) {
		return nil, domain.ErrValidation
	}

	if err := s.checkOpenWindow(ctx, studio, room.ID, req.EngineerID, req.Start, req.End, ""); err != nil {
		return nil, err
	}

	requiresStudio := !studio.AutoApproveRequests
	requiresEngineer := engineer.EngineerSettings == nil || !engineer.EngineerSettings.InstantBookEnabled

	b := &domain.Booking{
		ID:              uuid.NewString(),
		ArtistID:        artistID,
		EngineerID:      req.EngineerID,
		StudioID:        req.StudioID,
		RoomID:          req.RoomID,
		RequestedStart:  req.Start,
		RequestedEnd:    req.End,
		DurationMinutes: int(req.End.Sub(req.Start) / time.Minute),
		Status:          domain.BookingPending,
		Approval: domain.Approval{
			RequiresStudioApproval:   requiresStudio,
			RequiresEngineerApproval: requiresEngineer,
		},
		InstantBook: !requiresStudio && !requiresEngineer,
		Notes:       req.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if b.InstantBook {
		b.Status = domain.BookingConfirmed
		start, end := b.RequestedStart, b.RequestedEnd
		b.ConfirmedStart = &start
		b.ConfirmedEnd = &end
	}

	if err := s.bookings.Create(ctx, b); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && (pgErr.Code == "23505" || pgErr.Code == "23P01") && pgErr.ConstraintName == "idx_no_overbooking" {
			return nil, domain.ErrConflict
		}
		return nil, err
	}
	s.placeHold(ctx, b)
	return b, nil
}

// placeHold blocks the engineer's own calendar across other studios for the
// booked slot. The hold is keyed to the booking and released on decline or
// cancel; a failed write is non-fatal for the booking itself.
func (s *Service) placeHold(ctx context.Context, b *domain.Booking) {
	hold := &domain.AvailabilityEntry{
		ID:              uuid.NewString(),
		Kind:            domain.EntryBookingHold,
		Scope:           domain.ScopeEngineer,
		OwnerID:         b.EngineerID,
		StudioID:        b.StudioID,
		RoomID:          b.RoomID,
		EngineerID:      b.EngineerID,
		When:            domain.Absolute{Start: b.RequestedStart, End: b.RequestedEnd},
		SourceBookingID: b.ID,
		CreatedBy:       b.ArtistID,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.CreatedAt,
	}
	_ = s.availability.Upsert(ctx, hold)
}

// Approve resolves the actor's side of the approval. The booking and the
// actor's studio ownership are re-read immediately before the write; the
// aggregator's cached view is never trusted for permissions.
func (s *Service) Approve(ctx context.Context, bookingID, actorID string, role domain.Role) (*domain.Booking, error) {
	return s.transition(ctx, bookingID, actorID, role, func(b domain.Booking, actor Actor, now time.Time) (domain.Booking, error) {
		return Approve(b, actor, now)
	})
}

func (s *Service) Decline(ctx context.Context, bookingID, actorID string, role domain.Role) (*domain.Booking, error) {
	b, err := s.transition(ctx, bookingID, actorID, role, func(b domain.Booking, actor Actor, now time.Time) (domain.Booking, error) {
		return Decline(b, actor, now)
	})
	if err != nil {
		return nil, err
	}
	s.releaseHolds(ctx, b.ID)
	return b, nil
}

func (s *Service) Cancel(ctx context.Context, bookingID, actorID string, role domain.Role, reason string) (*domain.Booking, error) {
	b, err := s.transition(ctx, bookingID, actorID, role, func(b domain.Booking, actor Actor, now time.Time) (domain.Booking, error) {
		return Cancel(b, actor, now, reason)
	})
	if err != nil {
		return nil, err
	}
	s.releaseHolds(ctx, b.ID)
	return b, nil
}

// Reschedule validates the new interval against the room's current open
// windows before moving the booking back into approval. The booking's own
// occupancy and its engineer hold are excluded from the check so a shift
// inside its own slot works.
func (s *Service) Reschedule(ctx context.Context, bookingID, actorID string, role domain.Role, newStart, newEnd time.Time) (*domain.Booking, error) {
	if !newEnd.After(newStart) {
		return nil, domain.ErrValidation
	}
	b, err := s.transitionWithStudio(ctx, bookingID, actorID, role, func(b domain.Booking, studio *domain.Studio, actor Actor, now time.Time) (domain.Booking, error) {
		if err := s.checkOpenWindow(ctx, studio, b.RoomID, b.EngineerID, newStart, newEnd, b.ID); err != nil {
			return b, err
		}
		return Reschedule(b, actor, now, newStart, newEnd)
	})
	if err != nil {
		return nil, err
	}
	// The engineer's hold still covers the old interval; move it.
	s.releaseHolds(ctx, b.ID)
	s.placeHold(ctx, b)
	return b, nil
}

func (s *Service) Complete(ctx context.Context, bookingID, actorID string, role domain.Role) (*domain.Booking, error) {
	return s.transition(ctx, bookingID, actorID, role, func(b domain.Booking, actor Actor, now time.Time) (domain.Booking, error) {
		return Complete(b, actor, now)
	})
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

// StudioDay computes every room's open windows plus the section message for
// one studio and date key, interpreted in the studio's timezone. An empty
// date key means today in that timezone.
func (s *Service) StudioDay(ctx context.Context, studioID, dateKey string) (schedule.StudioDay, error) {
	studio, err := s.studios.GetByID(ctx, studioID)
	if err != nil {
		return schedule.StudioDay{}, err
	}
	var day schedule.Day
	if dateKey == "" {
		day = schedule.DayFor(timezone.NowIn(studio.Schedule.TimeZoneID), studio.Schedule)
	} else {
		day, err = schedule.DayForKey(dateKey, studio.Schedule)
		if err != nil {
			return schedule.StudioDay{}, err
		}
	}
	rooms, err := s.rooms.ListByStudio(ctx, studioID)
	if err != nil {
		return schedule.StudioDay{}, err
	}
	entries, err := s.availability.ListForStudio(ctx, studioID)
	if err != nil {
		return schedule.StudioDay{}, err
	}
	bookings, err := s.bookings.ListByStudio(ctx, studioID)
	if err != nil {
		return schedule.StudioDay{}, err
	}

	return schedule.ComputeStudioDay(studio.Schedule, rooms, day, entries, bookings), nil
}

type transitionFunc func(b domain.Booking, actor Actor, now time.Time) (domain.Booking, error)

func (s *Service) transition(ctx context.Context, bookingID, actorID string, role domain.Role, fn transitionFunc) (*domain.Booking, error) {
	return s.transitionWithStudio(ctx, bookingID, actorID, role, func(b domain.Booking, _ *domain.Studio, actor Actor, now time.Time) (domain.Booking, error) {
		return fn(b, actor, now)
	})
}

func (s *Service) transitionWithStudio(
	ctx context.Context,
	bookingID, actorID string,
	role domain.Role,
	fn func(b domain.Booking, studio *domain.Studio, actor Actor, now time.Time) (domain.Booking, error),
) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	studio, err := s.studios.GetByID(ctx, b.StudioID)
	if err != nil {
		return nil, err
	}

	actor := Actor{
		ID:         actorID,
		Role:       role,
		OwnsStudio: role == domain.RoleStudioOwner && studio.OwnerID == actorID,
	}

	next, err := fn(*b, studio, actor, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.bookings.Update(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

// checkOpenWindow verifies [start, end) fits entirely inside one of the
// room's open windows on the target day. The engineer's own calendar is
// consulted too, so a slot free in this studio still conflicts when the
// engineer is held elsewhere. excludeBookingID drops that booking's own
// occupancy and hold from the busy set.
func (s *Service) checkOpenWindow(ctx context.Context, studio *domain.Studio, roomID, engineerID string, start, end time.Time, excludeBookingID string) error {
	day := schedule.DayFor(start, studio.Schedule)

	entries, err := s.availability.ListForStudio(ctx, studio.ID)
	if err != nil {
		return err
	}
	entries = dropBookingEntries(entries, excludeBookingID)

	bookings, err := s.bookings.ListByRoom(ctx, roomID, day.Start, day.End)
	if err != nil {
		return err
	}
	if excludeBookingID != "" {
		kept := bookings[:0]
		for _, b := range bookings {
			if b.ID != excludeBookingID {
				kept = append(kept, b)
			}
		}
		bookings = kept
	}

	windows := schedule.OpenWindows(studio.Schedule, roomID, day, entries, bookings)

	// Holds and personal blocks at other studios live under the engineer's
	// own scope. They block this room too: the engineer cannot be in two
	// places at once.
	engineerEntries, err := s.availability.ListByScope(ctx, domain.ScopeEngineer, engineerID)
	if err != nil {
		return err
	}
	engineerEntries = dropBookingEntries(engineerEntries, excludeBookingID)
	windows = interval.Subtract(windows, schedule.BusySpans(engineerEntries, day))

	want := interval.Span{Start: start, End: end}
	for _, w := range windows {
		if want.Within(w) {
			return nil
		}
	}
	return domain.ErrConflict
}

// dropBookingEntries filters out hold entries keyed to the given booking.
func dropBookingEntries(entries []domain.AvailabilityEntry, bookingID string) []domain.AvailabilityEntry {
	if bookingID == "" {
		return entries
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.SourceBookingID != bookingID {
			kept = append(kept, e)
		}
	}
	return kept
}

// releaseHolds drops booking_hold entries once the booking no longer
// occupies its slot. Failures are non-fatal; orphaned holds clear on the
// next manual sweep.
func (s *Service) releaseHolds(ctx context.Context, bookingID string) {
	_ = s.availability.DeleteBySourceBooking(ctx, bookingID)
}
