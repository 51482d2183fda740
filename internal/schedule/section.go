package schedule

import (
	"studiobook/internal/domain"
	"studiobook/internal/interval"
)

// Messages surfaced for a studio section when nothing is bookable. Only one
// message shows per section, in this priority order.
const (
	MsgNoRooms     = "No rooms added"
	MsgBlackout    = "Studio is blocked on this date"
	MsgClosed      = "Studio is closed on this date"
	MsgFullyBooked = "Fully booked"
)

type RoomWindows struct {
	Room    domain.Room     `json:"room"`
	Windows []interval.Span `json:"windows"`
}

// StudioDay is one studio's computed view for one day across all rooms.
type StudioDay struct {
	Rooms   []RoomWindows `json:"rooms"`
	Message string        `json:"message,omitempty"`
	Closure Closure       `json:"-"`
}

// ComputeStudioDay computes windows for every room and the section message.
// The message is derived from the inputs directly, not from whichever branch
// short-circuited first, so the priority order is explicit.
func ComputeStudioDay(
	sched domain.OperatingSchedule,
	rooms []domain.Room,
	day Day,
	entries []domain.AvailabilityEntry,
	bookings []domain.Booking,
) StudioDay {
	out := StudioDay{}
	_, out.Closure = BaseWindows(sched, day)

	anyOpen := false
	for _, r := range rooms {
		w := OpenWindows(sched, r.ID, day, entries, bookings)
		if len(w) > 0 {
			anyOpen = true
		}
		out.Rooms = append(out.Rooms, RoomWindows{Room: r, Windows: w})
	}

	switch {
	case len(rooms) == 0:
		out.Message = MsgNoRooms
	case out.Closure == ClosureBlackout:
		out.Message = MsgBlackout
	case out.Closure == ClosureNoHours:
		out.Message = MsgClosed
	case !anyOpen:
		out.Message = MsgFullyBooked
	}
	return out
}

// DefaultRoom picks the room to preselect: the flagged default, else the
// first room with any open window, else the first room.
func DefaultRoom(rooms []RoomWindows) (domain.Room, bool) {
	if len(rooms) == 0 {
		return domain.Room{}, false
	}
	for _, r := range rooms {
		if r.Room.IsDefault {
			return r.Room, true
		}
	}
	for _, r := range rooms {
		if len(r.Windows) > 0 {
			return r.Room, true
		}
	}
	return rooms[0].Room, true
}
