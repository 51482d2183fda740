// Package schedule derives a day's open booking windows for a studio's rooms
// from its operating hours, availability entries, and bookings. Everything
// here is synchronous, pure computation over fully-materialized inputs.
package schedule

import (
	"time"

	"studiobook/internal/domain"
	"studiobook/internal/interval"
	"studiobook/internal/timezone"
)

// Day pins one calendar day in the studio's timezone.
type Day struct {
	Start   time.Time
	End     time.Time
	Key     string // "2006-01-02"
	Weekday int    // 0=Sun .. 6=Sat
}

func (d Day) Bounds() interval.Span {
	return interval.Span{Start: d.Start, End: d.End}
}

// DayFor resolves the calendar day containing t in the schedule's timezone.
func DayFor(t time.Time, sched domain.OperatingSchedule) Day {
	loc := timezone.Location(sched.TimeZoneID)
	start, end := timezone.DayBounds(t, loc)
	return Day{
		Start:   start,
		End:     end,
		Key:     timezone.DateKey(t, loc),
		Weekday: int(start.Weekday()),
	}
}

// DayForKey resolves a "2006-01-02" date key as a calendar day in the
// schedule's timezone.
func DayForKey(key string, sched domain.OperatingSchedule) (Day, error) {
	loc := timezone.Location(sched.TimeZoneID)
	t, err := time.ParseInLocation(timezone.DateKeyLayout, key, loc)
	if err != nil {
		return Day{}, domain.ErrValidation
	}
	return DayFor(t, sched), nil
}

// Closure distinguishes why a day has no base windows; "blocked" and
// "closed" surface different messages.
type Closure int

const (
	ClosureOpen Closure = iota
	ClosureBlackout
	ClosureNoHours
)

// BaseWindows computes the day's operating windows before any entry or
// booking is subtracted. A blackout date wins over recurring hours.
func BaseWindows(sched domain.OperatingSchedule, day Day) ([]interval.Span, Closure) {
	if sched.Blackout(day.Key) {
		return nil, ClosureBlackout
	}

	var spans []interval.Span
	for _, h := range sched.RecurringHours {
		if h.Weekday != day.Weekday {
			continue
		}
		s := interval.Span{
			Start: timezone.AtMinutes(day.Start, h.StartMinutes),
			End:   timezone.AtMinutes(day.Start, h.StartMinutes+h.DurationMinutes),
		}
		if clipped, ok := interval.Clip(s, day.Bounds()); ok {
			spans = append(spans, clipped)
		}
	}
	if len(spans) == 0 {
		return nil, ClosureNoHours
	}
	return interval.Merge(spans), ClosureOpen
}

// EntrySpan concretizes one availability entry for the day. Recurring
// entries apply only on their weekday; absolute ones are clipped to the day.
func EntrySpan(e domain.AvailabilityEntry, day Day) (interval.Span, bool) {
	switch w := e.When.(type) {
	case domain.Recurring:
		if w.Weekday != day.Weekday {
			return interval.Span{}, false
		}
		s := interval.Span{
			Start: timezone.AtMinutes(day.Start, w.StartMinutes),
			End:   timezone.AtMinutes(day.Start, w.StartMinutes+w.DurationMinutes),
		}
		return interval.Clip(s, day.Bounds())
	case domain.Absolute:
		return interval.Clip(interval.Span{Start: w.Start, End: w.End}, day.Bounds())
	default:
		return interval.Span{}, false
	}
}

// BusySpans materializes and merges every applicable entry for the day.
func BusySpans(entries []domain.AvailabilityEntry, day Day) []interval.Span {
	var spans []interval.Span
	for _, e := range entries {
		if s, ok := EntrySpan(e, day); ok {
			spans = append(spans, s)
		}
	}
	return interval.Merge(spans)
}

// bookingSpans collects occupied time for one room. Completed and cancelled
// bookings hold no time. Bookings referencing other rooms are ignored.
func bookingSpans(bookings []domain.Booking, roomID string, day Day) []interval.Span {
	var spans []interval.Span
	for _, b := range bookings {
		if b.RoomID != roomID || !b.OccupiesRoom() {
			continue
		}
		if s, ok := interval.Clip(interval.Span{Start: b.RequestedStart, End: b.RequestedEnd}, day.Bounds()); ok {
			spans = append(spans, s)
		}
	}
	return interval.Merge(spans)
}

// OpenWindows computes the bookable windows for one room on one day.
// Entries with an empty RoomID apply studio-wide; if they already consume
// the whole day, room-specific inputs cannot add time back.
func OpenWindows(
	sched domain.OperatingSchedule,
	roomID string,
	day Day,
	entries []domain.AvailabilityEntry,
	bookings []domain.Booking,
) []interval.Span {
	open, _ := BaseWindows(sched, day)
	if len(open) == 0 {
		return nil
	}

	var studioWide, roomOnly []domain.AvailabilityEntry
	for _, e := range entries {
		if e.RoomID == "" {
			studioWide = append(studioWide, e)
		} else if e.RoomID == roomID {
			roomOnly = append(roomOnly, e)
		}
	}

	open = interval.Subtract(open, BusySpans(studioWide, day))
	if len(open) == 0 {
		return nil
	}

	open = interval.Subtract(open, BusySpans(roomOnly, day))
	open = interval.Subtract(open, bookingSpans(bookings, roomID, day))

	return trimDayEnd(open, day)
}

// trimDayEnd pulls back any window that runs into midnight by one minute so
// rendering the inclusive end never shows the next day.
func trimDayEnd(open []interval.Span, day Day) []interval.Span {
	out := open[:0]
	for _, s := range open {
		if s.End.Equal(day.End) {
			s.End = s.End.Add(-time.Minute)
		}
		if s.Valid() {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
