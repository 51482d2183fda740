package stream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.C:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event within 1s")
		return Event{}
	}
}

func TestBroker_PublishReachesSubscriber(t *testing.T) {
	b := NewBroker()
	sub := b.Subscribe(TopicStudios(), 4)

	b.Publish(TopicStudios(), "snapshot-1")

	ev := recv(t, sub)
	assert.Equal(t, TopicStudios(), ev.Topic)
	assert.Equal(t, "snapshot-1", ev.Payload)
}

func TestBroker_TopicsAreIsolated(t *testing.T) {
	b := NewBroker()
	rooms := b.Subscribe(TopicRooms("s1"), 4)
	bookings := b.Subscribe(TopicBookings("s1"), 4)

	b.Publish(TopicRooms("s1"), "rooms")

	assert.Equal(t, "rooms", recv(t, rooms).Payload)
	select {
	case ev := <-bookings.C:
		t.Fatalf("unexpected event on bookings topic: %v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

// A cancelled subscription must never see an emission that raced with the
// teardown.
func TestBroker_CancelThenPublishDeliversNothing(t *testing.T) {
	b := NewBroker()
	sub := b.Subscribe(TopicStudios(), 4)

	sub.Cancel()
	b.Publish(TopicStudios(), "late")

	_, ok := <-sub.C
	assert.False(t, ok, "channel should be closed with nothing buffered")
}

func TestBroker_CancelIsIdempotent(t *testing.T) {
	b := NewBroker()
	sub := b.Subscribe(TopicStudios(), 1)
	sub.Cancel()
	sub.Cancel()
}

// Snapshots supersede each other: a lagging subscriber keeps the newest.
func TestBroker_SlowConsumerKeepsNewestSnapshot(t *testing.T) {
	b := NewBroker()
	sub := b.Subscribe(TopicStudios(), 1)

	b.Publish(TopicStudios(), "old")
	b.Publish(TopicStudios(), "new")

	assert.Equal(t, "new", recv(t, sub).Payload)
}

func TestBroker_CloseCancelsEverything(t *testing.T) {
	b := NewBroker()
	sub := b.Subscribe(TopicStudios(), 1)

	b.Close()
	_, ok := <-sub.C
	assert.False(t, ok)

	// Publish after close is a no-op, not a panic.
	b.Publish(TopicStudios(), "late")
	// Subscribe after close yields an already-closed subscription.
	dead := b.Subscribe(TopicStudios(), 1)
	_, ok = <-dead.C
	assert.False(t, ok)
}
