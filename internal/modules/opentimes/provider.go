package opentimes

import (
	"context"

	"studiobook/internal/domain"
	"studiobook/internal/stream"
)

// Provider is the fetch + observe surface the engine runs against. Observe
// streams carry full snapshots, so any emission fully replaces the cached
// collection for that studio.
type Provider interface {
	FetchStudios(ctx context.Context) ([]domain.Studio, error)
	ObserveStudios() *stream.Subscription

	FetchRooms(ctx context.Context, studioID string) ([]domain.Room, error)
	ObserveRooms(studioID string) *stream.Subscription

	FetchAvailability(ctx context.Context, scope domain.Scope, ownerID string) ([]domain.AvailabilityEntry, error)
	ObserveAvailability(scope domain.Scope, ownerID string) *stream.Subscription

	FetchBookings(ctx context.Context, studioID string) ([]domain.Booking, error)
	ObserveBookings(studioID string) *stream.Subscription
}
