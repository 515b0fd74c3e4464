package overlay

import (
	"log/slog"
	"time"

	"github.com/jmylchreest/eventlog/internal/model"
	"github.com/jmylchreest/eventlog/internal/queue"
	"github.com/jmylchreest/eventlog/internal/scheduler"
	"github.com/jmylchreest/eventlog/internal/store"
	"github.com/jmylchreest/eventlog/internal/uiloop"
)

// AutoHideKey is the scheduler key of the collapsed -> hidden timer.
const AutoHideKey = "collapse"

// cardKey returns the scheduler key of a card's removal timer.
func cardKey(id string) string {
	return "card:" + id
}

// ChangeFunc is called with a fresh snapshot after every observable change.
type ChangeFunc func(Snapshot)

// Machine owns the overlay visibility state and the recent queue.
//
// Machine is confined to the UI loop: the stream delivers events on it, the
// scheduler fires on it, and gesture methods must be called from it.
type Machine struct {
	stream   *store.EventStream
	recent   *queue.RecentQueue
	sched    *scheduler.Scheduler
	settings Settings
	logger   *slog.Logger

	state      State
	generation uint64

	detailShown bool
	selected    model.Event

	observers []*observer
	nextObsID uint64

	unsubscribe func()
}

type observer struct {
	id uint64
	fn ChangeFunc
}

// NewMachine creates a machine in the hidden state and subscribes it to stream.
func NewMachine(loop uiloop.Loop, stream *store.EventStream, settings Settings, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.Default()
	}

	m := &Machine{
		stream:   stream,
		recent:   queue.New(settings.RecentCapacity),
		sched:    scheduler.New(loop, logger),
		settings: settings,
		logger:   logger,
		state:    StateHidden,
	}
	m.unsubscribe = stream.SubscribeLatest(m.handleEvent)
	return m
}

// Close detaches the machine from its stream and cancels pending timers.
func (m *Machine) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	m.sched.CancelAll()
	m.observers = nil
}

// State returns the current visibility state.
func (m *Machine) State() State {
	return m.state
}

// Recent returns the peek strip contents, oldest first.
func (m *Machine) Recent() []model.Event {
	return m.recent.Items()
}

// History returns every event appended so far, oldest first.
func (m *Machine) History() []model.Event {
	return m.stream.Snapshot()
}

// Detail returns the event shown in the detail sheet, if any.
func (m *Machine) Detail() (model.Event, bool) {
	if !m.detailShown {
		return model.Event{}, false
	}
	return m.selected, true
}

// AutoHidePending reports whether the collapsed -> hidden timer is armed.
func (m *Machine) AutoHidePending() bool {
	return m.sched.Pending(AutoHideKey)
}

// Settings returns the active settings.
func (m *Machine) Settings() Settings {
	return m.settings
}

// Snapshot returns the current state for rendering.
func (m *Machine) Snapshot() Snapshot {
	return Snapshot{
		State:       m.state,
		Recent:      m.recent.Items(),
		History:     m.stream.Snapshot(),
		DetailShown: m.detailShown,
		Selected:    m.selected,
		Generation:  m.generation,
	}
}

// OnChange registers fn to be called after every change. The returned
// function unregisters it.
func (m *Machine) OnChange(fn ChangeFunc) (unsubscribe func()) {
	m.nextObsID++
	id := m.nextObsID
	m.observers = append(m.observers, &observer{id: id, fn: fn})
	return func() {
		for i, o := range m.observers {
			if o.id == id {
				m.observers = append(m.observers[:i], m.observers[i+1:]...)
				return
			}
		}
	}
}

func (m *Machine) notify() {
	if len(m.observers) == 0 {
		return
	}
	snap := m.Snapshot()
	obs := make([]*observer, len(m.observers))
	copy(obs, m.observers)
	for _, o := range obs {
		o.fn(snap)
	}
}

// setState moves to next and bumps the generation if it differs.
func (m *Machine) setState(next State, trigger string) {
	if next == m.state {
		return
	}
	prev := m.state
	m.state = next
	m.generation++

	// Nothing is drawn while hidden, so the detail sheet cannot stay open.
	if next == StateHidden {
		m.detailShown = false
		m.selected = model.Event{}
	}

	m.logger.Debug("overlay state changed",
		"from", prev.String(),
		"to", next.String(),
		"trigger", trigger,
		"generation", m.generation,
	)
}

// handleEvent is the stream subscription: the "new event arrives" trigger.
func (m *Machine) handleEvent(ev model.Event) {
	switch m.state {
	case StateHidden:
		m.pushRecent(ev)
		m.setState(StateCollapsed, "event")
		m.scheduleAutoHide(m.settings.AutoHide)
	case StateCollapsed:
		m.pushRecent(ev)
		m.scheduleAutoHide(m.settings.AutoHide)
	case StateExpanded:
		// Queued for the strip shown after collapse; state and the
		// collapse timer are left alone.
		m.pushRecent(ev)
	}
	m.notify()
}

// pushRecent adds ev to the peek strip and arms its removal timer.
func (m *Machine) pushRecent(ev model.Event) {
	for _, old := range m.recent.Push(ev) {
		m.sched.Cancel(cardKey(old.ID))
		m.logger.Debug("evicted card from peek strip", "id", old.ID, "title", old.Title)
	}

	if m.settings.CardLifetime <= 0 {
		return
	}
	id := ev.ID
	m.sched.Schedule(cardKey(id), m.settings.CardLifetime, func() {
		if m.recent.Remove(id) {
			m.logger.Debug("card expired", "id", id)
			m.notify()
		}
	})
}

// scheduleAutoHide (re)arms the collapsed -> hidden timer. The firing is
// only honored if the state is still collapsed and has not changed since.
func (m *Machine) scheduleAutoHide(delay time.Duration) {
	gen := m.generation
	m.sched.Schedule(AutoHideKey, delay, func() {
		if m.state != StateCollapsed || m.generation != gen {
			m.logger.Debug("ignoring stale auto-hide",
				"state", m.state.String(),
				"scheduled_generation", gen,
				"generation", m.generation,
			)
			return
		}
		m.clearRecent()
		m.setState(StateHidden, "auto-hide")
		m.notify()
	})
}

// clearRecent empties the peek strip and cancels the card timers.
func (m *Machine) clearRecent() {
	for _, ev := range m.recent.Clear() {
		m.sched.Cancel(cardKey(ev.ID))
	}
}

// TapPeek expands the collapsed overlay. It reports whether the state changed.
func (m *Machine) TapPeek() bool {
	if m.state != StateCollapsed {
		return false
	}
	m.sched.Cancel(AutoHideKey)
	m.setState(StateExpanded, "tap-peek")
	m.notify()
	return true
}

// TapCollapse returns the expanded overlay to the peek strip and arms an
// immediate auto-hide re-check. It reports whether the state changed.
func (m *Machine) TapCollapse() bool {
	if m.state != StateExpanded {
		return false
	}
	m.setState(StateCollapsed, "tap-collapse")
	m.scheduleAutoHide(m.settings.CollapseDelay)
	m.notify()
	return true
}

// TapCard handles a tap on the card for event id. A tap on a collapsed card
// only expands the overlay; a tap while expanded opens the detail sheet.
// It reports whether anything changed.
func (m *Machine) TapCard(id string) bool {
	switch m.state {
	case StateCollapsed:
		return m.TapPeek()
	case StateExpanded:
		ev, ok := m.stream.Get(id)
		if !ok {
			m.logger.Debug("tap on unknown card", "id", id)
			return false
		}
		m.selected = ev
		m.detailShown = true
		m.logger.Debug("detail shown", "id", id, "title", ev.Title)
		m.notify()
		return true
	default:
		return false
	}
}

// DismissDetail closes the detail sheet. The visibility state is unchanged.
func (m *Machine) DismissDetail() bool {
	if !m.detailShown {
		return false
	}
	m.detailShown = false
	m.selected = model.Event{}
	m.notify()
	return true
}

// SwipeUp on the collapsed strip clears its cards. The overlay stays
// collapsed until the pending auto-hide fires.
func (m *Machine) SwipeUp() bool {
	if m.state != StateCollapsed || m.recent.Len() == 0 {
		return false
	}
	m.clearRecent()
	m.logger.Debug("peek strip cleared", "trigger", "swipe-up")
	m.notify()
	return true
}

// SwipeDown on the collapsed strip expands it, like TapPeek.
func (m *Machine) SwipeDown() bool {
	return m.TapPeek()
}

// UpdateSettings applies new timings and capacity. Pending timers keep
// their original deadlines; shrinking the capacity evicts the oldest cards.
func (m *Machine) UpdateSettings(settings Settings) {
	old := m.settings
	m.settings = settings

	evicted := m.recent.SetCapacity(settings.RecentCapacity)
	for _, ev := range evicted {
		m.sched.Cancel(cardKey(ev.ID))
	}

	m.logger.Debug("overlay settings updated",
		"old_capacity", old.RecentCapacity,
		"new_capacity", settings.RecentCapacity,
		"auto_hide", settings.AutoHide,
		"card_lifetime", settings.CardLifetime,
	)

	if len(evicted) > 0 {
		m.notify()
	}
}
