// Package availability manages the manual obstruction entries that remove
// time from open windows: blocks, self-bookings, and recurring blocks.
// Booking holds are created and released by the booking flow, never through
// this API.
package availability

import (
	"context"
	"time"

	"github.com/google/uuid"

	"studiobook/internal/domain"
)

type Repository interface {
	Upsert(ctx context.Context, e *domain.AvailabilityEntry) error
	Delete(ctx context.Context, scope domain.Scope, ownerID, entryID string) error
	GetByID(ctx context.Context, id string) (*domain.AvailabilityEntry, error)
	ListByScope(ctx context.Context, scope domain.Scope, ownerID string) ([]domain.AvailabilityEntry, error)
}

type StudioRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Studio, error)
}

type Service struct {
	entries Repository
	studios StudioRepository
}

func NewService(entries Repository, studios StudioRepository) *Service {
	return &Service{entries: entries, studios: studios}
}

// Upsert creates or replaces an entry after checking the actor controls the
// owner scope. Studio-scoped entries belong to studios the actor owns;
// engineer-scoped entries belong to the engineer themselves.
func (s *Service) Upsert(ctx context.Context, actorID string, role domain.Role, e domain.AvailabilityEntry) (*domain.AvailabilityEntry, error) {
	if e.Kind == domain.EntryBookingHold {
		return nil, domain.ErrValidation
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actorID, role, e.Scope, e.OwnerID); err != nil {
		return nil, err
	}

	now := time.Now()
	if e.ID == "" {
		e.ID = uuid.NewString()
		e.CreatedAt = now
		e.CreatedBy = actorID
	} else {
		existing, err := s.entries.GetByID(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		if existing.Scope != e.Scope || existing.OwnerID != e.OwnerID {
			return nil, domain.ErrPermissionDenied
		}
		e.CreatedAt = existing.CreatedAt
		e.CreatedBy = existing.CreatedBy
	}
	if e.Scope == domain.ScopeStudio && e.StudioID == "" {
		e.StudioID = e.OwnerID
	}
	e.UpdatedAt = now

	if err := s.entries.Upsert(ctx, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Service) Delete(ctx context.Context, actorID string, role domain.Role, scope domain.Scope, ownerID, entryID string) error {
	if err := s.authorize(ctx, actorID, role, scope, ownerID); err != nil {
		return err
	}
	return s.entries.Delete(ctx, scope, ownerID, entryID)
}

func (s *Service) List(ctx context.Context, actorID string, role domain.Role, scope domain.Scope, ownerID string) ([]domain.AvailabilityEntry, error) {
	if err := s.authorize(ctx, actorID, role, scope, ownerID); err != nil {
		return nil, err
	}
	return s.entries.ListByScope(ctx, scope, ownerID)
}

func (s *Service) authorize(ctx context.Context, actorID string, role domain.Role, scope domain.Scope, ownerID string) error {
	switch scope {
	case domain.ScopeStudio:
		if role != domain.RoleStudioOwner {
			return domain.ErrPermissionDenied
		}
		studio, err := s.studios.GetByID(ctx, ownerID)
		if err != nil {
			return err
		}
		if studio.OwnerID != actorID {
			return domain.ErrPermissionDenied
		}
		return nil
	case domain.ScopeEngineer:
		if role != domain.RoleEngineer || ownerID != actorID {
			return domain.ErrPermissionDenied
		}
		return nil
	default:
		return domain.ErrValidation
	}
}
