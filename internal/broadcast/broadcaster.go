// Package broadcast fans tournament events out to live subscribers, one room
// per tournament.
package broadcast

import (
	"sync"

	"github.com/AdamBeresnev/torvi/internal/event"
	"github.com/google/uuid"
)

const DefaultCapacity = 100

// Delivery is one event handed to a subscriber. Missed counts the events dropped
// for this subscriber since its previous delivery because its buffer was full.
type Delivery struct {
	Event  event.Event
	Missed uint64
}

// Lagged reports whether events were dropped before this one.
func (d Delivery) Lagged() bool {
	return d.Missed > 0
}

type room struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

// Broadcaster is safe for concurrent use. Construct one per process with New and
// pass it to every producer and connection.
type Broadcaster struct {
	mu       sync.RWMutex
	rooms    map[uuid.UUID]*room
	capacity int
	closed   bool
}

func New(capacity int) *Broadcaster {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Broadcaster{
		rooms:    make(map[uuid.UUID]*room),
		capacity: capacity,
	}
}

// Subscribe joins the tournament's room, creating it on first use. The caller
// must Close the subscription when done. After Close on the broadcaster the
// returned subscription is already closed.
func (b *Broadcaster) Subscribe(tournamentID uuid.UUID) *Subscription {
	sub := &Subscription{ch: make(chan Delivery, b.capacity)}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		sub.closed = true
		close(sub.ch)
		return sub
	}

	r, ok := b.rooms[tournamentID]
	if !ok {
		r = &room{subs: make(map[*Subscription]struct{})}
		b.rooms[tournamentID] = r
	}
	sub.room = r

	r.mu.Lock()
	r.subs[sub] = struct{}{}
	r.mu.Unlock()

	return sub
}

// Publish delivers e to every current subscriber of the room. A room without
// subscribers is a no-op. Publish never blocks on a slow subscriber: when its
// buffer is full the event is dropped for that subscriber and counted.
func (b *Broadcaster) Publish(tournamentID uuid.UUID, e event.Event) {
	b.mu.RLock()
	r, ok := b.rooms[tournamentID]
	b.mu.RUnlock()
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for sub := range r.subs {
		select {
		case sub.ch <- Delivery{Event: e, Missed: sub.missed}:
			sub.missed = 0
		default:
			sub.missed++
		}
	}
}

// Cleanup removes rooms with no subscribers and returns how many it removed.
func (b *Broadcaster) Cleanup() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	removed := 0
	for id, r := range b.rooms {
		r.mu.Lock()
		empty := len(r.subs) == 0
		r.mu.Unlock()

		if empty {
			delete(b.rooms, id)
			removed++
		}
	}
	return removed
}

func (b *Broadcaster) SubscriberCount(tournamentID uuid.UUID) int {
	b.mu.RLock()
	r, ok := b.rooms[tournamentID]
	b.mu.RUnlock()
	if !ok {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

func (b *Broadcaster) RoomCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.rooms)
}

// Close ends every subscription and drops all rooms. Subscribers see their
// channel closed.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for id, r := range b.rooms {
		r.mu.Lock()
		for sub := range r.subs {
			sub.closeLocked()
		}
		r.mu.Unlock()
		delete(b.rooms, id)
	}
}

// Subscription receives the events of one room.
type Subscription struct {
	room   *room
	ch     chan Delivery
	missed uint64
	closed bool
}

// C is closed when the subscription ends.
func (s *Subscription) C() <-chan Delivery {
	return s.ch
}

// Close leaves the room. It is safe to call more than once.
func (s *Subscription) Close() {
	if s.room == nil {
		return
	}
	s.room.mu.Lock()
	defer s.room.mu.Unlock()
	s.closeLocked()
}

func (s *Subscription) closeLocked() {
	if s.closed {
		return
	}
	s.closed = true
	delete(s.room.subs, s)
	close(s.ch)
}
