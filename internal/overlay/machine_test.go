package overlay

import (
	"fmt"
	"testing"
	"time"

	"github.com/jmylchreest/eventlog/internal/model"
	"github.com/jmylchreest/eventlog/internal/store"
	"github.com/jmylchreest/eventlog/internal/uiloop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	loop    *uiloop.Manual
	stream  *store.EventStream
	machine *Machine
	seq     int
}

func newHarness(t *testing.T, settings Settings) *harness {
	t.Helper()
	loop := uiloop.NewManual(time.Date(2024, 3, 30, 9, 0, 0, 0, time.UTC))
	stream := store.NewEventStream(nil)
	m := NewMachine(loop, stream, settings, nil)
	t.Cleanup(m.Close)
	return &harness{loop: loop, stream: stream, machine: m}
}

// send appends an event titled "event N" and returns it.
func (h *harness) send(t *testing.T) model.Event {
	t.Helper()
	h.seq++
	ev := model.Event{
		ID:        fmt.Sprintf("ev-%d", h.seq),
		CreatedAt: h.loop.Now(),
		Title:     fmt.Sprintf("event %d", h.seq),
		Category:  model.CategoryMessage,
	}
	require.NoError(t, h.stream.Append(ev))
	h.loop.Drain()
	return ev
}

func ids(events []model.Event) []string {
	out := make([]string, len(events))
	for i, ev := range events {
		out[i] = ev.ID
	}
	return out
}

func noCardExpiry() Settings {
	s := DefaultSettings()
	s.CardLifetime = 0
	return s
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "hidden", StateHidden.String())
	assert.Equal(t, "collapsed", StateCollapsed.String())
	assert.Equal(t, "expanded", StateExpanded.String())
	assert.Equal(t, "unknown", State(7).String())
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, 5, s.RecentCapacity)
	assert.Equal(t, 5*time.Second, s.AutoHide)
	assert.Equal(t, 4*time.Second, s.CardLifetime)
	assert.Equal(t, time.Duration(0), s.CollapseDelay)
}

func TestMachine_InitialState(t *testing.T) {
	h := newHarness(t, DefaultSettings())

	assert.Equal(t, StateHidden, h.machine.State())
	assert.Empty(t, h.machine.Recent())
	assert.False(t, h.machine.AutoHidePending())
	_, shown := h.machine.Detail()
	assert.False(t, shown)
}

func TestMachine_HiddenHasNoTimer(t *testing.T) {
	h := newHarness(t, DefaultSettings())

	h.loop.Advance(time.Hour)
	assert.Equal(t, StateHidden, h.machine.State())
	assert.Equal(t, 0, h.loop.PendingTimers())
}

func TestMachine_SixEventsWithCapacityFive(t *testing.T) {
	h := newHarness(t, DefaultSettings())

	h.send(t)
	assert.Equal(t, StateCollapsed, h.machine.State())
	assert.True(t, h.machine.AutoHidePending())

	for i := 0; i < 5; i++ {
		h.send(t)
	}

	assert.Equal(t, StateCollapsed, h.machine.State())
	assert.Equal(t, []string{"ev-2", "ev-3", "ev-4", "ev-5", "ev-6"}, ids(h.machine.Recent()))
}

func TestMachine_AutoHideAfterInactivity(t *testing.T) {
	h := newHarness(t, DefaultSettings())

	for i := 0; i < 6; i++ {
		h.send(t)
	}

	h.loop.Advance(4999 * time.Millisecond)
	assert.Equal(t, StateCollapsed, h.machine.State())

	h.loop.Advance(time.Millisecond)
	assert.Equal(t, StateHidden, h.machine.State())
	assert.Empty(t, h.machine.Recent())
	assert.Equal(t, 0, h.loop.PendingTimers())
}

func TestMachine_NewEventReschedulesAutoHide(t *testing.T) {
	h := newHarness(t, DefaultSettings())

	h.send(t)
	h.loop.Advance(4 * time.Second)
	h.send(t)

	h.loop.Advance(4 * time.Second)
	assert.Equal(t, StateCollapsed, h.machine.State(), "second event must push the deadline out")

	h.loop.Advance(time.Second)
	assert.Equal(t, StateHidden, h.machine.State())
}

func TestMachine_TapPeekExpandsAndCancelsAutoHide(t *testing.T) {
	h := newHarness(t, DefaultSettings())

	for i := 0; i < 6; i++ {
		h.send(t)
	}
	h.loop.Advance(2 * time.Second)

	require.True(t, h.machine.TapPeek())
	assert.Equal(t, StateExpanded, h.machine.State())
	assert.False(t, h.machine.AutoHidePending())

	history := h.machine.History()
	assert.Equal(t, []string{"ev-1", "ev-2", "ev-3", "ev-4", "ev-5", "ev-6"}, ids(history))

	h.loop.Advance(time.Minute)
	assert.Equal(t, StateExpanded, h.machine.State())
}

func TestMachine_ExpandedQueuesEventsWithoutStateChange(t *testing.T) {
	h := newHarness(t, noCardExpiry())

	h.send(t)
	require.True(t, h.machine.TapPeek())

	h.send(t)
	h.send(t)
	assert.Equal(t, []string{"ev-1", "ev-2", "ev-3"}, ids(h.machine.Recent()))

	h.loop.Advance(time.Minute)
	assert.Equal(t, StateExpanded, h.machine.State())
	assert.Len(t, h.machine.History(), 3)
	assert.False(t, h.machine.AutoHidePending())
	assert.Equal(t, []string{"ev-1", "ev-2", "ev-3"}, ids(h.machine.Recent()))
}

func TestMachine_ExpandedEventsKeepLastK(t *testing.T) {
	h := newHarness(t, noCardExpiry())

	h.send(t)
	require.True(t, h.machine.TapPeek())
	for i := 0; i < 6; i++ {
		h.send(t)
	}

	assert.Equal(t, StateExpanded, h.machine.State())
	assert.Equal(t, []string{"ev-3", "ev-4", "ev-5", "ev-6", "ev-7"}, ids(h.machine.Recent()))
}

func TestMachine_ExpandedEventsArmCardTimers(t *testing.T) {
	h := newHarness(t, DefaultSettings())

	h.send(t)
	require.True(t, h.machine.TapPeek())
	h.loop.Advance(2 * time.Second)
	h.send(t)

	h.loop.Advance(2 * time.Second)
	assert.Equal(t, []string{"ev-2"}, ids(h.machine.Recent()), "ev-1 card expired")

	h.loop.Advance(2 * time.Second)
	assert.Empty(t, h.machine.Recent())
	assert.Equal(t, StateExpanded, h.machine.State())
}

func TestMachine_CollapseShowsEventsReceivedWhileExpanded(t *testing.T) {
	settings := noCardExpiry()
	settings.CollapseDelay = 2 * time.Second
	h := newHarness(t, settings)

	h.send(t)
	require.True(t, h.machine.TapPeek())
	h.send(t)
	h.send(t)

	require.True(t, h.machine.TapCollapse())
	h.loop.Drain()
	assert.Equal(t, StateCollapsed, h.machine.State())
	assert.Equal(t, []string{"ev-1", "ev-2", "ev-3"}, ids(h.machine.Recent()))

	h.loop.Advance(2 * time.Second)
	assert.Equal(t, StateHidden, h.machine.State())
	assert.Empty(t, h.machine.Recent())
}

func TestMachine_TapCollapseHidesOnNextTurn(t *testing.T) {
	h := newHarness(t, noCardExpiry())

	h.send(t)
	require.True(t, h.machine.TapPeek())

	require.True(t, h.machine.TapCollapse())
	assert.Equal(t, StateCollapsed, h.machine.State(), "collapse re-check must be deferred")
	assert.True(t, h.machine.AutoHidePending())

	h.loop.Drain()
	assert.Equal(t, StateHidden, h.machine.State())
	assert.Empty(t, h.machine.Recent())
}

func TestMachine_TapCollapseWithDelay(t *testing.T) {
	settings := DefaultSettings()
	settings.CollapseDelay = time.Second
	h := newHarness(t, settings)

	h.send(t)
	h.machine.TapPeek()
	h.machine.TapCollapse()

	h.loop.Advance(999 * time.Millisecond)
	assert.Equal(t, StateCollapsed, h.machine.State())

	h.loop.Advance(time.Millisecond)
	assert.Equal(t, StateHidden, h.machine.State())
}

func TestMachine_StaleAutoHideHidesExactlyOnce(t *testing.T) {
	h := newHarness(t, DefaultSettings())

	hides := 0
	h.machine.OnChange(func(s Snapshot) {
		if s.State == StateHidden {
			hides++
		}
	})

	h.send(t)
	h.loop.Advance(time.Second)

	// Collapsed -> Expanded -> Collapsed before the original timer is due.
	h.machine.TapPeek()
	h.machine.TapCollapse()

	h.loop.Advance(10 * time.Second)
	assert.Equal(t, StateHidden, h.machine.State())
	assert.Equal(t, 1, hides)
}

func TestMachine_AutoHideGatedOnGeneration(t *testing.T) {
	settings := noCardExpiry()
	settings.CollapseDelay = 3 * time.Second
	h := newHarness(t, settings)

	h.send(t)
	h.machine.TapPeek()
	h.machine.TapCollapse() // re-check due in 3s at generation 3

	h.loop.Advance(time.Second)
	h.machine.TapPeek() // generation 4, timer canceled
	assert.False(t, h.machine.AutoHidePending())

	h.loop.Advance(10 * time.Second)
	assert.Equal(t, StateExpanded, h.machine.State())
}

func TestMachine_TapsIgnoredInWrongState(t *testing.T) {
	h := newHarness(t, DefaultSettings())

	assert.False(t, h.machine.TapPeek())
	assert.False(t, h.machine.TapCollapse())
	assert.False(t, h.machine.TapCard("anything"))
	assert.False(t, h.machine.SwipeUp())
	assert.False(t, h.machine.SwipeDown())
	assert.Equal(t, StateHidden, h.machine.State())

	h.send(t)
	assert.False(t, h.machine.TapCollapse())
	assert.Equal(t, StateCollapsed, h.machine.State())
}

func TestMachine_CardTapWhileCollapsedOnlyExpands(t *testing.T) {
	h := newHarness(t, DefaultSettings())

	ev := h.send(t)
	require.True(t, h.machine.TapCard(ev.ID))

	assert.Equal(t, StateExpanded, h.machine.State())
	_, shown := h.machine.Detail()
	assert.False(t, shown, "first tap on a collapsed card only expands")
}

func TestMachine_CardTapWhileExpandedShowsDetail(t *testing.T) {
	h := newHarness(t, DefaultSettings())

	first := h.send(t)
	h.send(t)
	h.machine.TapPeek()

	require.True(t, h.machine.TapCard(first.ID))
	selected, shown := h.machine.Detail()
	require.True(t, shown)
	assert.Equal(t, first.ID, selected.ID)
	assert.Equal(t, StateExpanded, h.machine.State())

	assert.False(t, h.machine.TapCard("missing"))
	selected, _ = h.machine.Detail()
	assert.Equal(t, first.ID, selected.ID)
}

func TestMachine_DismissDetailKeepsState(t *testing.T) {
	h := newHarness(t, DefaultSettings())

	ev := h.send(t)
	h.machine.TapPeek()
	h.machine.TapCard(ev.ID)

	require.True(t, h.machine.DismissDetail())
	_, shown := h.machine.Detail()
	assert.False(t, shown)
	assert.Equal(t, StateExpanded, h.machine.State())
	assert.Empty(t, h.machine.Snapshot().Selected.ID)

	assert.False(t, h.machine.DismissDetail())
}

func TestMachine_HidingClosesDetail(t *testing.T) {
	h := newHarness(t, noCardExpiry())

	ev := h.send(t)
	h.machine.TapPeek()
	h.machine.TapCard(ev.ID)
	h.machine.TapCollapse()
	h.loop.Drain()

	assert.Equal(t, StateHidden, h.machine.State())
	_, shown := h.machine.Detail()
	assert.False(t, shown)
}

func TestMachine_CardExpiresIndividually(t *testing.T) {
	h := newHarness(t, DefaultSettings())

	h.send(t)
	h.loop.Advance(2 * time.Second)
	h.send(t)

	h.loop.Advance(2 * time.Second)
	assert.Equal(t, []string{"ev-2"}, ids(h.machine.Recent()))
	assert.Equal(t, StateCollapsed, h.machine.State())

	h.loop.Advance(2 * time.Second)
	assert.Empty(t, h.machine.Recent())
	assert.Equal(t, StateCollapsed, h.machine.State(), "strip stays until auto-hide")

	h.loop.Advance(time.Second)
	assert.Equal(t, StateHidden, h.machine.State())
}

func TestMachine_EvictionCancelsCardTimer(t *testing.T) {
	settings := DefaultSettings()
	settings.RecentCapacity = 1
	h := newHarness(t, settings)

	h.send(t)
	h.send(t)

	// Auto-hide plus one card timer; the evicted card's timer is gone.
	assert.Equal(t, 2, h.loop.PendingTimers())
	assert.Equal(t, []string{"ev-2"}, ids(h.machine.Recent()))
}

func TestMachine_SwipeUpClearsStrip(t *testing.T) {
	h := newHarness(t, DefaultSettings())

	h.send(t)
	h.send(t)

	require.True(t, h.machine.SwipeUp())
	assert.Empty(t, h.machine.Recent())
	assert.Equal(t, StateCollapsed, h.machine.State())
	assert.True(t, h.machine.AutoHidePending())

	h.loop.Advance(5 * time.Second)
	assert.Equal(t, StateHidden, h.machine.State())
}

func TestMachine_SwipeDownExpands(t *testing.T) {
	h := newHarness(t, DefaultSettings())

	h.send(t)
	require.True(t, h.machine.SwipeDown())
	assert.Equal(t, StateExpanded, h.machine.State())
}

func TestMachine_OnChangeObservers(t *testing.T) {
	h := newHarness(t, DefaultSettings())

	var states []State
	unsubscribe := h.machine.OnChange(func(s Snapshot) { states = append(states, s.State) })

	h.send(t)
	h.machine.TapPeek()
	unsubscribe()
	h.machine.TapCollapse()

	assert.Equal(t, []State{StateCollapsed, StateExpanded}, states)
}

func TestMachine_SnapshotGeneration(t *testing.T) {
	h := newHarness(t, DefaultSettings())

	assert.Equal(t, uint64(0), h.machine.Snapshot().Generation)
	h.send(t)
	assert.Equal(t, uint64(1), h.machine.Snapshot().Generation)
	h.send(t)
	assert.Equal(t, uint64(1), h.machine.Snapshot().Generation, "collapsed -> collapsed is not a change")
	h.machine.TapPeek()
	assert.Equal(t, uint64(2), h.machine.Snapshot().Generation)
}

func TestMachine_UpdateSettingsShrinksStrip(t *testing.T) {
	h := newHarness(t, DefaultSettings())

	for i := 0; i < 4; i++ {
		h.send(t)
	}

	settings := DefaultSettings()
	settings.RecentCapacity = 2
	h.machine.UpdateSettings(settings)

	assert.Equal(t, []string{"ev-3", "ev-4"}, ids(h.machine.Recent()))
	assert.Equal(t, 2, h.machine.Settings().RecentCapacity)
}

func TestMachine_Determinism(t *testing.T) {
	type step struct {
		action string
		wait   time.Duration
	}
	script := []step{
		{action: "event"}, {wait: time.Second}, {action: "event"},
		{action: "peek"}, {action: "event"}, {wait: 10 * time.Second},
		{action: "collapse"}, {wait: 0}, {action: "event"},
		{wait: 3 * time.Second}, {action: "event"}, {wait: 5 * time.Second},
	}

	run := func() []State {
		h := newHarness(t, DefaultSettings())
		var states []State
		for _, s := range script {
			switch s.action {
			case "event":
				h.send(t)
			case "peek":
				h.machine.TapPeek()
			case "collapse":
				h.machine.TapCollapse()
			default:
				h.loop.Advance(s.wait)
			}
			states = append(states, h.machine.State())
		}
		return states
	}

	first := run()
	assert.Equal(t, first, run())
	assert.Equal(t, []State{
		StateCollapsed, StateCollapsed, StateCollapsed,
		StateExpanded, StateExpanded, StateExpanded,
		StateCollapsed, StateHidden, StateCollapsed,
		StateCollapsed, StateCollapsed, StateHidden,
	}, first)
}

func TestMachine_CloseStopsDelivery(t *testing.T) {
	h := newHarness(t, DefaultSettings())

	h.machine.Close()
	h.send(t)

	assert.Equal(t, StateHidden, h.machine.State())
	assert.Equal(t, 0, h.loop.PendingTimers())
}
