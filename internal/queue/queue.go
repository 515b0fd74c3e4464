// Package queue implements the bounded FIFO of recently shown events
// rendered in the collapsed overlay's peek strip.
package queue

import (
	"container/list"

	"github.com/jmylchreest/eventlog/internal/model"
)

// DefaultCapacity is the number of cards shown in the peek strip.
const DefaultCapacity = 5

// RecentQueue holds at most Capacity events, oldest first.
// Not safe for concurrent use; owned by the overlay state machine.
type RecentQueue struct {
	capacity int
	items    *list.List               // List of model.Event, oldest at Front
	index    map[string]*list.Element // Fast lookup by event ID
}

// New creates a RecentQueue. Capacities below 1 are raised to 1.
func New(capacity int) *RecentQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &RecentQueue{
		capacity: capacity,
		items:    list.New(),
		index:    make(map[string]*list.Element),
	}
}

// Push appends ev, evicting the oldest entry first when the queue is full.
// It returns the evicted events, oldest first. Pushing an event that is
// already queued is a no-op.
func (q *RecentQueue) Push(ev model.Event) []model.Event {
	if _, exists := q.index[ev.ID]; exists {
		return nil
	}

	var evicted []model.Event
	for q.items.Len() >= q.capacity {
		evicted = append(evicted, q.popFront())
	}

	q.index[ev.ID] = q.items.PushBack(ev)
	return evicted
}

// Remove drops the event with the given id. It reports whether anything
// was removed; unknown ids are ignored.
func (q *RecentQueue) Remove(id string) bool {
	elem, exists := q.index[id]
	if !exists {
		return false
	}
	q.items.Remove(elem)
	delete(q.index, id)
	return true
}

// Clear empties the queue and returns what it held, oldest first.
func (q *RecentQueue) Clear() []model.Event {
	removed := q.Items()
	q.items.Init()
	q.index = make(map[string]*list.Element)
	return removed
}

// SetCapacity changes the bound, evicting the oldest entries if the queue
// is now over capacity. The evicted events are returned.
func (q *RecentQueue) SetCapacity(capacity int) []model.Event {
	if capacity < 1 {
		capacity = 1
	}
	q.capacity = capacity

	var evicted []model.Event
	for q.items.Len() > q.capacity {
		evicted = append(evicted, q.popFront())
	}
	return evicted
}

// Capacity returns the maximum number of entries.
func (q *RecentQueue) Capacity() int {
	return q.capacity
}

// Len returns the number of queued events.
func (q *RecentQueue) Len() int {
	return q.items.Len()
}

// Contains reports whether an event with the given id is queued.
func (q *RecentQueue) Contains(id string) bool {
	_, exists := q.index[id]
	return exists
}

// Items returns a copy of the queued events, oldest first.
func (q *RecentQueue) Items() []model.Event {
	out := make([]model.Event, 0, q.items.Len())
	for e := q.items.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(model.Event))
	}
	return out
}

func (q *RecentQueue) popFront() model.Event {
	front := q.items.Front()
	ev := q.items.Remove(front).(model.Event)
	delete(q.index, ev.ID)
	return ev
}
