package inbox

import (
	"context"
	"sort"
	"time"

	"studiobook/internal/domain"
)

// BookingSource feeds the inbox reads; one list method per viewer role.
type BookingSource interface {
	ListByArtist(ctx context.Context, artistID string) ([]domain.Booking, error)
	ListByEngineer(ctx context.Context, engineerID string) ([]domain.Booking, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Booking, error)
}

type UserSource interface {
	ListByIDs(ctx context.Context, ids []string) ([]domain.User, error)
}

type StudioSource interface {
	GetByID(ctx context.Context, id string) (*domain.Studio, error)
}

// ReviewSource answers whether the viewer already reviewed a completed
// session. Review storage lives outside this system; only the lookup hook
// crosses the boundary.
type ReviewSource interface {
	Reviewed(ctx context.Context, bookingID, reviewerID string) (bool, error)
}

// BookingActions is the mutation surface. Every inbox mutation delegates to
// the booking state machine; the inbox never writes a booking itself.
type BookingActions interface {
	Approve(ctx context.Context, bookingID, actorID string, role domain.Role) (*domain.Booking, error)
	Decline(ctx context.Context, bookingID, actorID string, role domain.Role) (*domain.Booking, error)
	Cancel(ctx context.Context, bookingID, actorID string, role domain.Role, reason string) (*domain.Booking, error)
}

type Service struct {
	bookings BookingSource
	users    UserSource
	studios  StudioSource
	reviews  ReviewSource
	actions  BookingActions
	cache    *NameCache
}

func NewService(
	bookings BookingSource,
	users UserSource,
	studios StudioSource,
	reviews ReviewSource,
	actions BookingActions,
	cache *NameCache,
) *Service {
	return &Service{
		bookings: bookings,
		users:    users,
		studios:  studios,
		reviews:  reviews,
		actions:  actions,
		cache:    cache,
	}
}

// Load builds the bucketed inbox for one viewer. The role switch is
// exhaustive over the closed role set; unknown and unsupported roles get an
// empty inbox with a validation error rather than a silently wrong view.
func (s *Service) Load(ctx context.Context, userID string, role domain.Role) (*Inbox, error) {
	var (
		list []domain.Booking
		err  error
	)
	switch role {
	case domain.RoleArtist:
		list, err = s.bookings.ListByArtist(ctx, userID)
	case domain.RoleEngineer:
		list, err = s.bookings.ListByEngineer(ctx, userID)
	case domain.RoleStudioOwner:
		list, err = s.bookings.ListByOwner(ctx, userID)
	case domain.RoleUnsupported, domain.RoleUnknown:
		return &Inbox{}, domain.ErrValidation
	default:
		return &Inbox{}, domain.ErrValidation
	}
	if err != nil {
		return nil, err
	}

	s.cache.Scope(role)

	now := time.Now()
	inbox := &Inbox{}
	for _, b := range list {
		item, rerr := s.decorate(ctx, b)
		if rerr != nil {
			return nil, rerr
		}
		switch {
		case b.InApproval():
			inbox.PendingApprovals = append(inbox.PendingApprovals, item)
		case b.Status == domain.BookingConfirmed && b.RequestedEnd.After(now):
			inbox.Upcoming = append(inbox.Upcoming, item)
		case b.Status == domain.BookingConfirmed:
			// Session over but never marked complete; surfaces with the
			// finished ones so someone closes it out.
			inbox.Past = append(inbox.Past, item)
		case b.Status == domain.BookingCompleted:
			inbox.Past = append(inbox.Past, item)
			reviewed, rvErr := s.reviewed(ctx, b.ID, userID)
			if rvErr == nil && !reviewed {
				inbox.NeedsReview = append(inbox.NeedsReview, item)
			}
		case b.Status == domain.BookingCancelled:
			inbox.Cancelled = append(inbox.Cancelled, item)
		}
	}

	sortPending(inbox.PendingApprovals, role)
	sortByStart(inbox.Upcoming, true)
	sortByStart(inbox.Past, false)
	sortByStart(inbox.Cancelled, false)
	sortByStart(inbox.NeedsReview, false)
	return inbox, nil
}

func (s *Service) Approve(ctx context.Context, bookingID, actorID string, role domain.Role) (*domain.Booking, error) {
	return s.actions.Approve(ctx, bookingID, actorID, role)
}

func (s *Service) Decline(ctx context.Context, bookingID, actorID string, role domain.Role) (*domain.Booking, error) {
	return s.actions.Decline(ctx, bookingID, actorID, role)
}

func (s *Service) Cancel(ctx context.Context, bookingID, actorID string, role domain.Role, reason string) (*domain.Booking, error) {
	return s.actions.Cancel(ctx, bookingID, actorID, role, reason)
}

// Refresh drops the cached names so the next Load re-resolves them.
func (s *Service) Refresh() {
	s.cache.Refresh()
}

func (s *Service) reviewed(ctx context.Context, bookingID, reviewerID string) (bool, error) {
	if s.reviews == nil {
		return true, nil
	}
	return s.reviews.Reviewed(ctx, bookingID, reviewerID)
}

// decorate attaches display names, hitting the scoped cache first and
// backfilling it from the user/studio stores on a miss.
func (s *Service) decorate(ctx context.Context, b domain.Booking) (Item, error) {
	item := Item{Booking: b}

	missing := make([]string, 0, 2)
	if name, ok := s.cache.Get(ctx, "user:"+b.ArtistID); ok {
		item.ArtistName = name
	} else {
		missing = append(missing, b.ArtistID)
	}
	if name, ok := s.cache.Get(ctx, "user:"+b.EngineerID); ok {
		item.EngineerName = name
	} else {
		missing = append(missing, b.EngineerID)
	}

	if len(missing) > 0 {
		users, err := s.users.ListByIDs(ctx, missing)
		if err != nil {
			return Item{}, err
		}
		for _, u := range users {
			s.cache.Put(ctx, "user:"+u.ID, u.Name)
			if u.ID == b.ArtistID {
				item.ArtistName = u.Name
			}
			if u.ID == b.EngineerID {
				item.EngineerName = u.Name
			}
		}
	}

	if name, ok := s.cache.Get(ctx, "studio:"+b.StudioID); ok {
		item.StudioName = name
	} else if studio, err := s.studios.GetByID(ctx, b.StudioID); err == nil {
		s.cache.Put(ctx, "studio:"+studio.ID, studio.Name)
		item.StudioName = studio.Name
	}
	return item, nil
}

// sortPending orders the approval queue so the items the viewer can act on
// come first: engineers see their own outstanding sign-offs at the top,
// studio owners the studio-side ones.
func sortPending(items []Item, role domain.Role) {
	actionable := func(it Item) bool {
		switch role {
		case domain.RoleEngineer:
			return it.Booking.Approval.RequiresEngineerApproval
		case domain.RoleStudioOwner:
			return it.Booking.Approval.RequiresStudioApproval
		default:
			return false
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		ai, aj := actionable(items[i]), actionable(items[j])
		if ai != aj {
			return ai
		}
		return items[i].Booking.RequestedStart.Before(items[j].Booking.RequestedStart)
	})
}

func sortByStart(items []Item, ascending bool) {
	sort.SliceStable(items, func(i, j int) bool {
		if ascending {
			return items[i].Booking.RequestedStart.Before(items[j].Booking.RequestedStart)
		}
		return items[i].Booking.RequestedStart.After(items[j].Booking.RequestedStart)
	})
}
