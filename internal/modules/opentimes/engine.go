// Package opentimes keeps a live, per-engineer view of open booking windows
// across every studio where the engineer is approved. One engine instance
// serves one engineer session.
package opentimes

import (
	"context"
	"sort"
	"sync"
	"time"

	"studiobook/internal/domain"
	"studiobook/internal/schedule"
	"studiobook/internal/stream"
	"studiobook/internal/timezone"
)

// Section is one studio's slice of the aggregated view.
type Section struct {
	Studio      domain.Studio      `json:"studio"`
	Day         schedule.StudioDay `json:"day"`
	DefaultRoom *domain.Room       `json:"default_room,omitempty"`
}

// Update is what the engine pushes on every relevant change. Sections are
// always the last successfully computed set; a non-nil Err rides alongside
// them instead of replacing them.
type Update struct {
	Sections  []Section
	Message   string
	Err       error
	IsLoading bool
}

type UpdateFunc func(Update)

const MsgNoStudios = "No approved studios"

// studioState is the cached snapshot for one tracked studio. Owned
// exclusively by the engine loop.
type studioState struct {
	studio   domain.Studio
	rooms    []domain.Room
	entries  []domain.AvailabilityEntry
	bookings []domain.Booking

	haveRooms    bool
	haveEntries  bool
	haveBookings bool

	day    schedule.StudioDay
	dayErr error

	subs []*stream.Subscription
}

func (st *studioState) ready() bool {
	return st.haveRooms && st.haveEntries && st.haveBookings
}

// Engine aggregates open windows for one engineer. All state lives behind a
// single goroutine fed by a mailbox channel; stream emissions and commands
// are posted as closures and applied in observed order, so a removal and a
// room update for the same studio can never interleave.
type Engine struct {
	engineerID string
	provider   Provider
	onUpdate   UpdateFunc

	ctx    context.Context
	cancel context.CancelFunc

	mailbox  chan func()
	done     chan struct{}
	stopOnce sync.Once

	// Everything below is touched only by the run loop.
	dateKey     string
	studios     map[string]*studioState
	studiosSub  *stream.Subscription
	initialized bool
	stopped     bool
}

// New starts the engine for the given engineer and initial date key
// ("2006-01-02"). Updates arrive on onUpdate until Stop is called.
func New(engineerID string, provider Provider, initialDate string, onUpdate UpdateFunc) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		engineerID: engineerID,
		provider:   provider,
		onUpdate:   onUpdate,
		ctx:        ctx,
		cancel:     cancel,
		mailbox:    make(chan func(), 64),
		done:       make(chan struct{}),
		dateKey:    initialDate,
		studios:    make(map[string]*studioState),
	}
	go e.run()
	return e
}

// UpdateSelectedDate switches the viewed day. Recomputation uses cached
// snapshots only; no fetch or re-subscription happens.
func (e *Engine) UpdateSelectedDate(dateKey string) {
	e.post(func() {
		if _, err := time.Parse(timezone.DateKeyLayout, dateKey); err != nil {
			e.emit(domain.ErrValidation)
			return
		}
		e.dateKey = dateKey
		for _, st := range e.studios {
			e.recompute(st)
		}
		e.emit(nil)
	})
}

// Stop tears down every subscription and waits for the loop to exit. It is
// terminal: no callback fires after Stop returns.
func (e *Engine) Stop() {
	e.stopOnce.Do(e.cancel)
	<-e.done
}

func (e *Engine) run() {
	defer close(e.done)
	e.bootstrap()
	for {
		select {
		case fn := <-e.mailbox:
			fn()
		case <-e.ctx.Done():
			e.stopped = true
			e.teardownAll()
			return
		}
	}
}

func (e *Engine) post(fn func()) {
	select {
	case e.mailbox <- fn:
	case <-e.ctx.Done():
	}
}

// forward pumps one subscription into the mailbox. The payload is applied on
// the loop goroutine; a teardown between emission and application is caught
// by the apply closure's own staleness check.
func (e *Engine) forward(sub *stream.Subscription, apply func(payload any)) {
	go func() {
		for {
			select {
			case ev, ok := <-sub.C:
				if !ok {
					return
				}
				e.post(func() { apply(ev.Payload) })
			case <-e.ctx.Done():
				return
			}
		}
	}()
}

func (e *Engine) bootstrap() {
	e.emit(nil) // initial loading state

	e.studiosSub = e.provider.ObserveStudios()
	e.forward(e.studiosSub, func(p any) {
		if snap, ok := p.([]domain.Studio); ok {
			e.applyStudios(snap)
		}
	})

	studios, err := e.provider.FetchStudios(e.ctx)
	if err != nil {
		e.initialized = true
		e.emit(err)
		return
	}
	e.applyStudios(studios)
}

// applyStudios reconciles the tracked set against a full studios snapshot:
// newly approved studios are stood up, studios the engineer was removed from
// are torn down, and metadata updates on tracked studios trigger a
// recompute.
func (e *Engine) applyStudios(snap []domain.Studio) {
	var firstErr error
	seen := make(map[string]bool, len(snap))
	for _, s := range snap {
		if !s.EngineerApproved(e.engineerID) {
			continue
		}
		seen[s.ID] = true
		if st, ok := e.studios[s.ID]; ok {
			st.studio = s
			e.recompute(st)
		} else if err := e.standUp(s); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for id, st := range e.studios {
		if !seen[id] {
			e.tearDown(st)
			delete(e.studios, id)
		}
	}
	e.initialized = true
	e.emit(firstErr)
}

// standUp starts tracking one studio: initial fetches plus the three
// per-studio subscriptions. A failed fetch leaves that collection's ready
// bit clear; the corresponding stream's next emission backfills it.
func (e *Engine) standUp(s domain.Studio) error {
	st := &studioState{studio: s}
	e.studios[s.ID] = st

	var firstErr error
	if rooms, err := e.provider.FetchRooms(e.ctx, s.ID); err != nil {
		firstErr = err
	} else {
		st.rooms = rooms
		st.haveRooms = true
	}
	if entries, err := e.provider.FetchAvailability(e.ctx, domain.ScopeStudio, s.ID); err != nil {
		if firstErr == nil {
			firstErr = err
		}
	} else {
		st.entries = entries
		st.haveEntries = true
	}
	if bookings, err := e.provider.FetchBookings(e.ctx, s.ID); err != nil {
		if firstErr == nil {
			firstErr = err
		}
	} else {
		st.bookings = bookings
		st.haveBookings = true
	}

	roomsSub := e.provider.ObserveRooms(s.ID)
	e.forward(roomsSub, func(p any) {
		if e.studios[s.ID] != st {
			return
		}
		if rooms, ok := p.([]domain.Room); ok {
			st.rooms = rooms
			st.haveRooms = true
			e.recompute(st)
			e.emit(nil)
		}
	})

	availSub := e.provider.ObserveAvailability(domain.ScopeStudio, s.ID)
	e.forward(availSub, func(p any) {
		if e.studios[s.ID] != st {
			return
		}
		if entries, ok := p.([]domain.AvailabilityEntry); ok {
			st.entries = entries
			st.haveEntries = true
			e.recompute(st)
			e.emit(nil)
		}
	})

	bookingsSub := e.provider.ObserveBookings(s.ID)
	e.forward(bookingsSub, func(p any) {
		if e.studios[s.ID] != st {
			return
		}
		if bookings, ok := p.([]domain.Booking); ok {
			st.bookings = bookings
			st.haveBookings = true
			e.recompute(st)
			e.emit(nil)
		}
	})

	st.subs = []*stream.Subscription{roomsSub, availSub, bookingsSub}
	e.recompute(st)
	return firstErr
}

func (e *Engine) tearDown(st *studioState) {
	for _, sub := range st.subs {
		sub.Cancel()
	}
	st.subs = nil
}

func (e *Engine) teardownAll() {
	if e.studiosSub != nil {
		e.studiosSub.Cancel()
	}
	for id, st := range e.studios {
		e.tearDown(st)
		delete(e.studios, id)
	}
}

// recompute rebuilds one studio's section from its cached snapshot. Bookings
// referencing rooms not in the snapshot simply match no room and drop out of
// the window math.
func (e *Engine) recompute(st *studioState) {
	if !st.ready() {
		return
	}
	day, err := schedule.DayForKey(e.dateKey, st.studio.Schedule)
	if err != nil {
		st.dayErr = err
		return
	}
	st.dayErr = nil
	st.day = schedule.ComputeStudioDay(st.studio.Schedule, st.rooms, day, st.entries, st.bookings)
}

// emit publishes the full re-sorted section list. Only ready studios appear;
// a studio still loading keeps IsLoading set without blanking the rest.
func (e *Engine) emit(err error) {
	if e.stopped || e.onUpdate == nil {
		return
	}

	sections := make([]Section, 0, len(e.studios))
	loading := !e.initialized
	for _, st := range e.studios {
		if !st.ready() {
			loading = true
			continue
		}
		if st.dayErr != nil && err == nil {
			err = st.dayErr
		}
		sec := Section{Studio: st.studio, Day: st.day}
		if r, ok := schedule.DefaultRoom(st.day.Rooms); ok {
			room := r
			sec.DefaultRoom = &room
		}
		sections = append(sections, sec)
	}
	sort.Slice(sections, func(i, j int) bool {
		return sections[i].Studio.Name < sections[j].Studio.Name
	})

	var msg string
	if e.initialized && !loading && len(sections) == 0 {
		msg = MsgNoStudios
	}
	e.onUpdate(Update{Sections: sections, Message: msg, Err: err, IsLoading: loading})
}
