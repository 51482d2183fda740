// Package stream is the in-process change-stream provider. Repositories
// publish full snapshots after committed writes; subscribers receive them on
// buffered channels with cooperative cancellation.
package stream

import (
	"fmt"
	"sync"
)

// Topic keys. Every stream is scoped to one document collection.
func TopicStudios() string { return "studios" }

func TopicRooms(studioID string) string { return "rooms:" + studioID }

func TopicBookings(studioID string) string { return "bookings:" + studioID }

func TopicAvailability(scope, ownerID string) string {
	return fmt.Sprintf("availability:%s:%s", scope, ownerID)
}

// Event carries a full snapshot of the topic's collection. Snapshot
// semantics make coalescing safe: when a subscriber lags, older queued
// snapshots are superseded by the newest one.
type Event struct {
	Topic   string
	Payload any
}

// Subscription is one consumer of a topic. Cancel is idempotent; after it
// returns, no further events are delivered and C is closed.
type Subscription struct {
	C <-chan Event

	ch     chan Event
	once   sync.Once
	cancel func(*Subscription)
}

func (s *Subscription) Cancel() {
	s.once.Do(func() { s.cancel(s) })
}

type Broker struct {
	mu     sync.Mutex
	subs   map[string]map[*Subscription]struct{}
	closed bool
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[*Subscription]struct{})}
}

// Subscribe registers a consumer with the given buffer size (minimum 1).
func (b *Broker) Subscribe(topic string, buffer int) *Subscription {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	sub := &Subscription{C: ch, ch: ch}
	sub.cancel = func(s *Subscription) { b.drop(topic, s) }

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return sub
	}
	set, ok := b.subs[topic]
	if !ok {
		set = make(map[*Subscription]struct{})
		b.subs[topic] = set
	}
	set[sub] = struct{}{}
	return sub
}

// Publish fans a snapshot out to every subscriber without blocking the
// writer. A full buffer means the subscriber is behind on snapshots that are
// already stale, so the oldest queued event is discarded to make room.
func (b *Broker) Publish(topic string, payload any) {
	ev := Event{Topic: topic, Payload: payload}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for sub := range b.subs[topic] {
		select {
		case sub.ch <- ev:
		default:
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- ev:
			default:
			}
		}
	}
}

func (b *Broker) drop(topic string, sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if set, ok := b.subs[topic]; ok {
		if _, ok := set[sub]; ok {
			delete(set, sub)
			close(sub.ch)
			if len(set) == 0 {
				delete(b.subs, topic)
			}
		}
	}
}

// Close cancels every subscription. Further Publish calls are no-ops.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for topic, set := range b.subs {
		for sub := range set {
			close(sub.ch)
		}
		delete(b.subs, topic)
	}
}
