// Package store provides the append-only event stream that feeds the overlay.
package store

import (
	"errors"
	"log/slog"

	"github.com/jmylchreest/eventlog/internal/model"
)

// SnapshotFunc receives the full ordered event sequence.
// The slice is shared with the stream and must not be modified.
type SnapshotFunc func(events []model.Event)

// LatestFunc receives a single newly appended event.
type LatestFunc func(event model.Event)

type subscriber struct {
	id       uint64
	snapshot SnapshotFunc
	latest   LatestFunc
}

// EventStream is the process-wide append-only log of ingested events.
//
// It is confined to the UI loop: Append, Subscribe and the read accessors
// must all be called from the goroutine that owns overlay state. Delivery to
// subscribers is synchronous and in append order.
type EventStream struct {
	logger *slog.Logger

	events []model.Event
	index  map[string]int // event id -> slice index

	subscribers []*subscriber
	nextSubID   uint64

	// Appends made by a subscriber while a broadcast is in flight are
	// delivered after the current broadcast completes.
	delivering bool
	backlog    []int

	closed bool
}

// NewEventStream creates an empty stream.
func NewEventStream(logger *slog.Logger) *EventStream {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventStream{
		logger: logger,
		events: make([]model.Event, 0, 64),
		index:  make(map[string]int),
	}
}

// Append validates ev, adds it to the end of the stream and broadcasts it.
// Invalid events are rejected without being broadcast.
func (s *EventStream) Append(ev model.Event) error {
	if s.closed {
		return ErrStreamClosed
	}
	if err := ev.Validate(); err != nil {
		s.logger.Debug("rejected event", "title", ev.Title, "error", err)
		return err
	}
	if _, exists := s.index[ev.ID]; exists {
		return ErrDuplicateID
	}

	// Keep timestamps non-decreasing even if producers raced or the clock stepped back.
	if n := len(s.events); n > 0 {
		if last := s.events[n-1].CreatedAt; ev.CreatedAt.Before(last) {
			ev.CreatedAt = last
		}
	}

	idx := len(s.events)
	s.events = append(s.events, ev)
	s.index[ev.ID] = idx

	if s.delivering {
		s.backlog = append(s.backlog, idx)
		return nil
	}

	s.delivering = true
	s.broadcast(idx)
	for len(s.backlog) > 0 {
		next := s.backlog[0]
		s.backlog = s.backlog[1:]
		s.broadcast(next)
	}
	s.delivering = false

	return nil
}

// broadcast delivers the event at idx to every current subscriber.
func (s *EventStream) broadcast(idx int) {
	ev := s.events[idx]
	view := s.events[: idx+1 : idx+1]

	// Subscribers may unsubscribe while we iterate; work from a copy.
	subs := make([]*subscriber, len(s.subscribers))
	copy(subs, s.subscribers)

	for _, sub := range subs {
		if !s.isSubscribed(sub.id) {
			continue
		}
		if sub.snapshot != nil {
			sub.snapshot(view)
		}
		if sub.latest != nil {
			sub.latest(ev)
		}
	}
}

// SubscribeSnapshot registers fn to receive the full sequence. fn is called
// immediately with the current contents, then after every append.
// The returned function unsubscribes and is safe to call more than once.
func (s *EventStream) SubscribeSnapshot(fn SnapshotFunc) (unsubscribe func()) {
	id := s.addSubscriber(&subscriber{snapshot: fn})
	fn(s.events[:len(s.events):len(s.events)])
	return func() { s.removeSubscriber(id) }
}

// SubscribeLatest registers fn to receive each event appended from now on.
func (s *EventStream) SubscribeLatest(fn LatestFunc) (unsubscribe func()) {
	id := s.addSubscriber(&subscriber{latest: fn})
	return func() { s.removeSubscriber(id) }
}

func (s *EventStream) addSubscriber(sub *subscriber) uint64 {
	s.nextSubID++
	sub.id = s.nextSubID
	s.subscribers = append(s.subscribers, sub)
	return sub.id
}

func (s *EventStream) removeSubscriber(id uint64) {
	for i, sub := range s.subscribers {
		if sub.id == id {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			return
		}
	}
}

func (s *EventStream) isSubscribed(id uint64) bool {
	for _, sub := range s.subscribers {
		if sub.id == id {
			return true
		}
	}
	return false
}

// Snapshot returns the current ordered sequence, oldest first.
// The slice is shared with the stream and must not be modified.
func (s *EventStream) Snapshot() []model.Event {
	return s.events[:len(s.events):len(s.events)]
}

// Len returns the number of events appended so far.
func (s *EventStream) Len() int {
	return len(s.events)
}

// Get returns the event with the given id.
func (s *EventStream) Get(id string) (model.Event, bool) {
	idx, ok := s.index[id]
	if !ok {
		return model.Event{}, false
	}
	return s.events[idx], true
}

// SubscriberCount returns the number of registered subscribers.
func (s *EventStream) SubscriberCount() int {
	return len(s.subscribers)
}

// Close stops accepting events and drops all subscribers.
// Events already appended remain readable.
func (s *EventStream) Close() {
	s.closed = true
	s.subscribers = nil
}

// Errors
var (
	ErrStreamClosed = errors.New("event stream is closed")
	ErrDuplicateID  = errors.New("event id already appended")
)
