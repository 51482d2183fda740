package booking

import (
	"context"
	"time"

	"studiobook/internal/domain"
)

// BookingRepository is the booking document store. Writes are atomic per
// document; the store is the serialization point for racing transitions.
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	Update(ctx context.Context, b *domain.Booking) error
	ListByRoom(ctx context.Context, roomID string, from, to time.Time) ([]domain.Booking, error)
	ListByStudio(ctx context.Context, studioID string) ([]domain.Booking, error)
}

type StudioRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Studio, error)
}

type RoomRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Room, error)
	ListByStudio(ctx context.Context, studioID string) ([]domain.Room, error)
}

type AvailabilityRepository interface {
	Upsert(ctx context.Context, e *domain.AvailabilityEntry) error
	ListForStudio(ctx context.Context, studioID string) ([]domain.AvailabilityEntry, error)
	ListByScope(ctx context.Context, scope domain.Scope, ownerID string) ([]domain.AvailabilityEntry, error)
	DeleteBySourceBooking(ctx context.Context, bookingID string) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}
