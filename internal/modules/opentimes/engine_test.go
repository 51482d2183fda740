package opentimes

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studiobook/internal/domain"
	"studiobook/internal/stream"
)

// fakeProvider serves canned snapshots and observes through a real broker,
// so tests drive the engine the same way repositories do.
type fakeProvider struct {
	mu     sync.Mutex
	broker *stream.Broker

	studios  []domain.Studio
	rooms    map[string][]domain.Room
	entries  map[string][]domain.AvailabilityEntry
	bookings map[string][]domain.Booking

	fetchCalls map[string]int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		broker:     stream.NewBroker(),
		rooms:      make(map[string][]domain.Room),
		entries:    make(map[string][]domain.AvailabilityEntry),
		bookings:   make(map[string][]domain.Booking),
		fetchCalls: make(map[string]int),
	}
}

func (p *fakeProvider) count(key string) {
	p.fetchCalls[key]++
}

func (p *fakeProvider) calls(key string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fetchCalls[key]
}

func (p *fakeProvider) FetchStudios(ctx context.Context) ([]domain.Studio, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count("studios")
	return p.studios, nil
}

func (p *fakeProvider) ObserveStudios() *stream.Subscription {
	return p.broker.Subscribe(stream.TopicStudios(), 8)
}

func (p *fakeProvider) FetchRooms(ctx context.Context, studioID string) ([]domain.Room, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count("rooms:" + studioID)
	return p.rooms[studioID], nil
}

func (p *fakeProvider) ObserveRooms(studioID string) *stream.Subscription {
	return p.broker.Subscribe(stream.TopicRooms(studioID), 8)
}

func (p *fakeProvider) FetchAvailability(ctx context.Context, scope domain.Scope, ownerID string) ([]domain.AvailabilityEntry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count("availability:" + ownerID)
	return p.entries[ownerID], nil
}

func (p *fakeProvider) ObserveAvailability(scope domain.Scope, ownerID string) *stream.Subscription {
	return p.broker.Subscribe(stream.TopicAvailability(string(scope), ownerID), 8)
}

func (p *fakeProvider) FetchBookings(ctx context.Context, studioID string) ([]domain.Booking, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count("bookings:" + studioID)
	return p.bookings[studioID], nil
}

func (p *fakeProvider) ObserveBookings(studioID string) *stream.Subscription {
	return p.broker.Subscribe(stream.TopicBookings(studioID), 8)
}

// collector records every Update the engine pushes.
type collector struct {
	mu   sync.Mutex
	list []Update
}

func (c *collector) record(u Update) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list = append(c.list, u)
}

func (c *collector) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.list)
}

func (c *collector) last() (Update, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.list) == 0 {
		return Update{}, false
	}
	return c.list[len(c.list)-1], true
}

func allWeekHours() []domain.HoursRange {
	hours := make([]domain.HoursRange, 0, 7)
	for wd := 0; wd < 7; wd++ {
		hours = append(hours, domain.HoursRange{Weekday: wd, StartMinutes: 9 * 60, DurationMinutes: 9 * 60})
	}
	return hours
}

func testStudio(id, name string, engineers ...string) domain.Studio {
	return domain.Studio{
		ID:      id,
		OwnerID: "owner-1",
		Name:    name,
		Schedule: domain.OperatingSchedule{
			RecurringHours: allWeekHours(),
			TimeZoneID:     "UTC",
		},
		ApprovedEngineerIDs: engineers,
	}
}

func waitForSections(t *testing.T, c *collector, n int) Update {
	t.Helper()
	var got Update
	require.Eventually(t, func() bool {
		u, ok := c.last()
		if !ok || u.IsLoading || len(u.Sections) != n {
			return false
		}
		got = u
		return true
	}, 2*time.Second, 5*time.Millisecond)
	return got
}

func TestEngineInitialSectionsSortedByName(t *testing.T) {
	p := newFakeProvider()
	p.studios = []domain.Studio{
		testStudio("s2", "Velvet Room", "eng-1"),
		testStudio("s1", "Abbey Lane", "eng-1"),
		testStudio("s3", "Other Place", "someone-else"),
	}
	p.rooms["s1"] = []domain.Room{{ID: "r1", StudioID: "s1", Name: "A", IsDefault: true}}
	p.rooms["s2"] = []domain.Room{{ID: "r2", StudioID: "s2", Name: "B", IsDefault: true}}

	c := &collector{}
	e := New("eng-1", p, "2026-09-10", c.record)
	defer e.Stop()

	u := waitForSections(t, c, 2)
	assert.Equal(t, "Abbey Lane", u.Sections[0].Studio.Name)
	assert.Equal(t, "Velvet Room", u.Sections[1].Studio.Name)
	assert.Empty(t, u.Message)
	assert.NoError(t, u.Err)

	require.NotNil(t, u.Sections[0].DefaultRoom)
	assert.Equal(t, "r1", u.Sections[0].DefaultRoom.ID)
	require.Len(t, u.Sections[0].Day.Rooms, 1)
	require.Len(t, u.Sections[0].Day.Rooms[0].Windows, 1)
	w := u.Sections[0].Day.Rooms[0].Windows[0]
	assert.Equal(t, 9, w.Start.Hour())
	assert.Equal(t, 18, w.End.Hour())
}

func TestEngineReactsToRoomSnapshot(t *testing.T) {
	p := newFakeProvider()
	p.studios = []domain.Studio{testStudio("s1", "Abbey Lane", "eng-1")}
	p.rooms["s1"] = []domain.Room{{ID: "r1", StudioID: "s1", Name: "A", IsDefault: true}}

	c := &collector{}
	e := New("eng-1", p, "2026-09-10", c.record)
	defer e.Stop()

	waitForSections(t, c, 1)

	p.broker.Publish(stream.TopicRooms("s1"), []domain.Room{
		{ID: "r1", StudioID: "s1", Name: "A", IsDefault: true},
		{ID: "r2", StudioID: "s1", Name: "B"},
	})

	require.Eventually(t, func() bool {
		u, ok := c.last()
		return ok && len(u.Sections) == 1 && len(u.Sections[0].Day.Rooms) == 2
	}, 2*time.Second, 5*time.Millisecond)
}

func TestEngineDateChangeUsesCache(t *testing.T) {
	p := newFakeProvider()
	p.studios = []domain.Studio{testStudio("s1", "Abbey Lane", "eng-1")}
	p.rooms["s1"] = []domain.Room{{ID: "r1", StudioID: "s1", Name: "A", IsDefault: true}}
	p.entries["s1"] = []domain.AvailabilityEntry{{
		ID: "e1", Kind: domain.EntryBlock, Scope: domain.ScopeStudio, OwnerID: "s1",
		When: domain.Absolute{
			Start: time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC),
			End:   time.Date(2026, 9, 10, 18, 0, 0, 0, time.UTC),
		},
	}}

	c := &collector{}
	e := New("eng-1", p, "2026-09-10", c.record)
	defer e.Stop()

	u := waitForSections(t, c, 1)
	assert.Empty(t, u.Sections[0].Day.Rooms[0].Windows)

	roomFetches := p.calls("rooms:s1")
	bookingFetches := p.calls("bookings:s1")

	e.UpdateSelectedDate("2026-09-11")

	require.Eventually(t, func() bool {
		u, ok := c.last()
		return ok && len(u.Sections) == 1 && len(u.Sections[0].Day.Rooms[0].Windows) == 1
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, roomFetches, p.calls("rooms:s1"))
	assert.Equal(t, bookingFetches, p.calls("bookings:s1"))
}

func TestEngineBadDateKeepsSections(t *testing.T) {
	p := newFakeProvider()
	p.studios = []domain.Studio{testStudio("s1", "Abbey Lane", "eng-1")}
	p.rooms["s1"] = []domain.Room{{ID: "r1", StudioID: "s1", Name: "A", IsDefault: true}}

	c := &collector{}
	e := New("eng-1", p, "2026-09-10", c.record)
	defer e.Stop()

	waitForSections(t, c, 1)

	e.UpdateSelectedDate("not-a-date")

	require.Eventually(t, func() bool {
		u, ok := c.last()
		return ok && u.Err != nil
	}, 2*time.Second, 5*time.Millisecond)

	u, _ := c.last()
	assert.ErrorIs(t, u.Err, domain.ErrValidation)
	assert.Len(t, u.Sections, 1, "error must ride alongside last-known-good sections")
}

func TestEngineMembershipRemovalDropsSection(t *testing.T) {
	p := newFakeProvider()
	p.studios = []domain.Studio{testStudio("s1", "Abbey Lane", "eng-1")}
	p.rooms["s1"] = []domain.Room{{ID: "r1", StudioID: "s1", Name: "A", IsDefault: true}}

	c := &collector{}
	e := New("eng-1", p, "2026-09-10", c.record)
	defer e.Stop()

	waitForSections(t, c, 1)

	// Engineer removed from the approved list.
	p.broker.Publish(stream.TopicStudios(), []domain.Studio{testStudio("s1", "Abbey Lane")})

	require.Eventually(t, func() bool {
		u, ok := c.last()
		return ok && len(u.Sections) == 0 && u.Message == MsgNoStudios
	}, 2*time.Second, 5*time.Millisecond)

	// The torn-down studio's streams must not resurrect its section.
	p.broker.Publish(stream.TopicRooms("s1"), []domain.Room{{ID: "r2", StudioID: "s1", Name: "B"}})
	time.Sleep(50 * time.Millisecond)
	u, _ := c.last()
	assert.Empty(t, u.Sections)
}

func TestEngineMembershipAdditionStandsUp(t *testing.T) {
	p := newFakeProvider()
	p.studios = []domain.Studio{testStudio("s1", "Abbey Lane", "eng-1")}
	p.rooms["s1"] = []domain.Room{{ID: "r1", StudioID: "s1", Name: "A", IsDefault: true}}
	p.rooms["s2"] = []domain.Room{{ID: "r2", StudioID: "s2", Name: "B", IsDefault: true}}

	c := &collector{}
	e := New("eng-1", p, "2026-09-10", c.record)
	defer e.Stop()

	waitForSections(t, c, 1)

	p.broker.Publish(stream.TopicStudios(), []domain.Studio{
		testStudio("s1", "Abbey Lane", "eng-1"),
		testStudio("s2", "Velvet Room", "eng-1"),
	})

	u := waitForSections(t, c, 2)
	assert.Equal(t, "Velvet Room", u.Sections[1].Studio.Name)
}

func TestEngineStopIsTerminal(t *testing.T) {
	p := newFakeProvider()
	p.studios = []domain.Studio{testStudio("s1", "Abbey Lane", "eng-1")}
	p.rooms["s1"] = []domain.Room{{ID: "r1", StudioID: "s1", Name: "A", IsDefault: true}}

	c := &collector{}
	e := New("eng-1", p, "2026-09-10", c.record)
	waitForSections(t, c, 1)

	e.Stop()
	n := c.len()

	p.broker.Publish(stream.TopicRooms("s1"), []domain.Room{{ID: "r2", StudioID: "s1", Name: "B"}})
	e.UpdateSelectedDate("2026-09-12")
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, n, c.len(), "no callback may fire after Stop")

	// Stop is idempotent.
	e.Stop()
}
