package repository

import (
	"context"

	"studiobook/internal/domain"
	"studiobook/internal/stream"
)

// Provider bundles the repositories and the change-stream broker behind the
// fetch + observe surface the open-times engine consumes.
type Provider struct {
	studios      *StudioRepository
	rooms        *RoomRepository
	availability *AvailabilityRepository
	bookings     *BookingRepository
	events       *stream.Broker
}

func NewProvider(
	studios *StudioRepository,
	rooms *RoomRepository,
	availability *AvailabilityRepository,
	bookings *BookingRepository,
	events *stream.Broker,
) *Provider {
	return &Provider{
		studios:      studios,
		rooms:        rooms,
		availability: availability,
		bookings:     bookings,
		events:       events,
	}
}

// Subscription buffers are small on purpose: events carry full snapshots,
// so a lagging consumer only ever needs the newest one.
const observeBuffer = 8

func (p *Provider) FetchStudios(ctx context.Context) ([]domain.Studio, error) {
	return p.studios.List(ctx)
}

func (p *Provider) ObserveStudios() *stream.Subscription {
	return p.events.Subscribe(stream.TopicStudios(), observeBuffer)
}

func (p *Provider) FetchRooms(ctx context.Context, studioID string) ([]domain.Room, error) {
	return p.rooms.ListByStudio(ctx, studioID)
}

func (p *Provider) ObserveRooms(studioID string) *stream.Subscription {
	return p.events.Subscribe(stream.TopicRooms(studioID), observeBuffer)
}

func (p *Provider) FetchAvailability(ctx context.Context, scope domain.Scope, ownerID string) ([]domain.AvailabilityEntry, error) {
	return p.availability.ListByScope(ctx, scope, ownerID)
}

func (p *Provider) ObserveAvailability(scope domain.Scope, ownerID string) *stream.Subscription {
	return p.events.Subscribe(stream.TopicAvailability(string(scope), ownerID), observeBuffer)
}

func (p *Provider) FetchBookings(ctx context.Context, studioID string) ([]domain.Booking, error) {
	return p.bookings.ListByStudio(ctx, studioID)
}

func (p *Provider) ObserveBookings(studioID string) *stream.Subscription {
	return p.events.Subscribe(stream.TopicBookings(studioID), observeBuffer)
}
