package uiloop

import (
	"container/heap"
	"sync"
	"time"
)

// Manual is a deterministic Loop driven by a virtual clock.
// Nothing runs until Drain or Advance is called, and timers fire in
// deadline order (ties in scheduling order). Used by tests and by the
// simulate command.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	tasks  []func()
	timers timerHeap
	seq    uint64
}

// NewManual creates a Manual loop whose clock starts at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Post queues fn for the next Drain.
func (m *Manual) Post(fn func()) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	m.tasks = append(m.tasks, fn)
	m.mu.Unlock()
}

// AfterFunc registers fn to run once the virtual clock reaches now+d.
func (m *Manual) AfterFunc(d time.Duration, fn func()) func() bool {
	if d < 0 {
		d = 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	t := &manualTimer{at: m.now.Add(d), seq: m.seq, fn: fn}
	heap.Push(&m.timers, t)

	return func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		if t.fired || t.stopped {
			return false
		}
		t.stopped = true
		return true
	}
}

// Now returns the virtual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Drain runs posted tasks, including any they post, until none remain.
func (m *Manual) Drain() {
	for {
		m.mu.Lock()
		if len(m.tasks) == 0 {
			m.mu.Unlock()
			return
		}
		fn := m.tasks[0]
		m.tasks = m.tasks[1:]
		m.mu.Unlock()

		fn()
	}
}

// Advance moves the virtual clock forward by d, firing due timers in order
// and draining posted tasks after each one.
func (m *Manual) Advance(d time.Duration) {
	m.Drain()

	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		t := m.popDueLocked(target)
		if t == nil {
			m.now = target
			m.mu.Unlock()
			break
		}
		if t.at.After(m.now) {
			m.now = t.at
		}
		t.fired = true
		m.mu.Unlock()

		t.fn()
		m.Drain()
	}

	m.Drain()
}

// PendingTimers returns the number of timers that have neither fired nor been stopped.
func (m *Manual) PendingTimers() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, t := range m.timers {
		if !t.stopped {
			count++
		}
	}
	return count
}

// popDueLocked removes and returns the earliest live timer due at or before target.
func (m *Manual) popDueLocked(target time.Time) *manualTimer {
	for m.timers.Len() > 0 {
		next := m.timers[0]
		if next.stopped {
			heap.Pop(&m.timers)
			continue
		}
		if next.at.After(target) {
			return nil
		}
		return heap.Pop(&m.timers).(*manualTimer)
	}
	return nil
}

type manualTimer struct {
	at      time.Time
	seq     uint64
	fn      func()
	fired   bool
	stopped bool
}

// timerHeap orders timers by deadline, then by scheduling order.
type timerHeap []*manualTimer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].at.Equal(h[j].at) {
		return h[i].seq < h[j].seq
	}
	return h[i].at.Before(h[j].at)
}

func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *timerHeap) Push(x any) { *h = append(*h, x.(*manualTimer)) }

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}
