package booking

import (
	"time"

	"studiobook/internal/domain"
)

// Actor is the identity a transition runs as. OwnsStudio must be resolved by
// the caller against the booking's current studio document, immediately
// before applying the transition.
type Actor struct {
	ID         string
	Role       domain.Role
	OwnsStudio bool
}

// The transition functions below are pure: they take a booking snapshot and
// return the next state or an error from the shared taxonomy. Persistence is
// the Service's job.

func canResolveApproval(b domain.Booking, actor Actor) error {
	switch actor.Role {
	case domain.RoleEngineer:
		if actor.ID == b.EngineerID {
			return nil
		}
	case domain.RoleStudioOwner:
		if actor.OwnsStudio {
			return nil
		}
	case domain.RoleArtist, domain.RoleUnsupported, domain.RoleUnknown:
	}
	return domain.ErrPermissionDenied
}

func canActOnBooking(b domain.Booking, actor Actor) error {
	switch actor.Role {
	case domain.RoleArtist:
		if actor.ID == b.ArtistID {
			return nil
		}
	case domain.RoleEngineer:
		if actor.ID == b.EngineerID {
			return nil
		}
	case domain.RoleStudioOwner:
		if actor.OwnsStudio {
			return nil
		}
	case domain.RoleUnsupported, domain.RoleUnknown:
	}
	return domain.ErrPermissionDenied
}

// Approve clears the actor's side of the approval. When the other side is
// already resolved the booking confirms and the requested interval freezes.
// Approving an already-resolved side is a no-op: the snapshot is returned
// unchanged and the caller decides whether that is worth reporting.
func Approve(b domain.Booking, actor Actor, now time.Time) (domain.Booking, error) {
	if err := canResolveApproval(b, actor); err != nil {
		return b, err
	}
	if b.Terminal() {
		return b, domain.ErrConflict
	}

	var own *bool
	switch actor.Role {
	case domain.RoleEngineer:
		own = &b.Approval.RequiresEngineerApproval
	default:
		own = &b.Approval.RequiresStudioApproval
	}
	if !*own {
		return b, nil
	}
	*own = false
	b.Approval.ResolvedBy = actor.ID
	b.Approval.ResolvedAt = &now

	if !b.Approval.RequiresStudioApproval && !b.Approval.RequiresEngineerApproval {
		b.Status = domain.BookingConfirmed
		start, end := b.RequestedStart, b.RequestedEnd
		b.ConfirmedStart = &start
		b.ConfirmedEnd = &end
	}
	b.UpdatedAt = now
	return b, nil
}

// Decline rejects a booking still in approval: both flags clear, the booking
// cancels, and any frozen interval is dropped. A confirmed booking is past
// declining; only Cancel takes it down.
func Decline(b domain.Booking, actor Actor, now time.Time) (domain.Booking, error) {
	if err := canResolveApproval(b, actor); err != nil {
		return b, err
	}
	if !b.InApproval() {
		return b, domain.ErrConflict
	}
	return cancelInto(b, actor, now, ""), nil
}

// Cancel has the same effect as Decline but is open to any participant or
// the owning studio, and works on confirmed bookings too.
func Cancel(b domain.Booking, actor Actor, now time.Time, reason string) (domain.Booking, error) {
	if err := canActOnBooking(b, actor); err != nil {
		return b, err
	}
	if b.Terminal() {
		return b, domain.ErrConflict
	}
	return cancelInto(b, actor, now, reason), nil
}

func cancelInto(b domain.Booking, actor Actor, now time.Time, reason string) domain.Booking {
	b.Approval.RequiresStudioApproval = false
	b.Approval.RequiresEngineerApproval = false
	b.Approval.ResolvedBy = actor.ID
	b.Approval.ResolvedAt = &now
	b.Status = domain.BookingCancelled
	b.ConfirmedStart = nil
	b.ConfirmedEnd = nil
	b.CancellationReason = reason
	b.CancelledAt = &now
	b.UpdatedAt = now
	return b
}

// Reschedule moves the requested interval and re-enters approval. The
// actor's own side counts as auto-approved; the other side must sign off
// again. A studio-owner reschedule forces the engineer flag regardless of
// its prior value, so the engineer re-confirms any studio-driven time
// change. Validation of the new interval against availability is the
// caller's responsibility.
func Reschedule(b domain.Booking, actor Actor, now time.Time, newStart, newEnd time.Time) (domain.Booking, error) {
	if err := canActOnBooking(b, actor); err != nil {
		return b, err
	}
	if b.Terminal() {
		return b, domain.ErrConflict
	}
	if !newEnd.After(newStart) {
		return b, domain.ErrValidation
	}

	wasConfirmed := b.Status == domain.BookingConfirmed

	b.RequestedStart = newStart
	b.RequestedEnd = newEnd
	b.DurationMinutes = int(newEnd.Sub(newStart) / time.Minute)
	b.ConfirmedStart = nil
	b.ConfirmedEnd = nil

	switch actor.Role {
	case domain.RoleArtist:
		b.Approval.RequiresStudioApproval = true
		b.Approval.RequiresEngineerApproval = true
	case domain.RoleEngineer:
		b.Approval.RequiresEngineerApproval = false
		b.Approval.RequiresStudioApproval = true
	case domain.RoleStudioOwner:
		b.Approval.RequiresStudioApproval = false
		b.Approval.RequiresEngineerApproval = true
	}
	b.Approval.ResolvedBy = ""
	b.Approval.ResolvedAt = nil

	if wasConfirmed {
		b.Status = domain.BookingReschedulePending
	} else {
		b.Status = domain.BookingPending
	}
	b.UpdatedAt = now
	return b, nil
}

// Complete closes out a finished session. Only the assigned engineer or the
// owning studio may complete, and only after the requested end has passed.
// Confirmed times are backfilled for instant-book bookings that never got an
// explicit approval stamp.
func Complete(b domain.Booking, actor Actor, now time.Time) (domain.Booking, error) {
	if err := canResolveApproval(b, actor); err != nil {
		return b, err
	}
	if b.Terminal() {
		return b, domain.ErrConflict
	}
	if !now.After(b.RequestedEnd) {
		return b, domain.ErrValidation
	}

	b.Approval.RequiresStudioApproval = false
	b.Approval.RequiresEngineerApproval = false
	b.Approval.ResolvedBy = actor.ID
	b.Approval.ResolvedAt = &now
	b.Status = domain.BookingCompleted
	if b.ConfirmedStart == nil || b.ConfirmedEnd == nil {
		start, end := b.RequestedStart, b.RequestedEnd
		b.ConfirmedStart = &start
		b.ConfirmedEnd = &end
	}
	b.UpdatedAt = now
	return b, nil
}
