package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/jmylchreest/eventlog/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEpoch = time.Date(2024, 3, 30, 9, 0, 0, 0, time.UTC)

func testEvent(title string) model.Event {
	return testEventAt(title, testEpoch)
}

func testEventAt(title string, at time.Time) model.Event {
	return model.Event{
		ID:        "id-" + title,
		CreatedAt: at,
		Title:     title,
		Category:  model.CategoryAnalytics,
	}
}

func titles(events []model.Event) []string {
	out := make([]string, len(events))
	for i, ev := range events {
		out[i] = ev.Title
	}
	return out
}

func TestNewEventStream(t *testing.T) {
	s := NewEventStream(nil)
	assert.NotNil(t, s)
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Snapshot())
}

func TestEventStream_Append(t *testing.T) {
	s := NewEventStream(nil)

	require.NoError(t, s.Append(testEvent("one")))
	require.NoError(t, s.Append(testEvent("two")))

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"one", "two"}, titles(s.Snapshot()))

	ev, ok := s.Get("id-two")
	require.True(t, ok)
	assert.Equal(t, "two", ev.Title)

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestEventStream_AppendRejectsInvalid(t *testing.T) {
	s := NewEventStream(nil)

	delivered := 0
	s.SubscribeLatest(func(model.Event) { delivered++ })

	err := s.Append(model.Event{ID: "x", Title: "", Category: model.CategoryError})
	assert.ErrorIs(t, err, model.ErrEmptyTitle)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, delivered)
}

func TestEventStream_AppendRejectsDuplicateID(t *testing.T) {
	s := NewEventStream(nil)

	require.NoError(t, s.Append(testEvent("one")))
	assert.ErrorIs(t, s.Append(testEvent("one")), ErrDuplicateID)
	assert.Equal(t, 1, s.Len())
}

func TestEventStream_TimestampsNonDecreasing(t *testing.T) {
	s := NewEventStream(nil)

	require.NoError(t, s.Append(testEventAt("late", testEpoch.Add(time.Minute))))
	require.NoError(t, s.Append(testEventAt("early", testEpoch)))

	events := s.Snapshot()
	assert.False(t, events[1].CreatedAt.Before(events[0].CreatedAt))
	assert.Equal(t, []string{"late", "early"}, titles(events))
}

func TestEventStream_SubscribeSnapshotReplaysCurrent(t *testing.T) {
	s := NewEventStream(nil)
	require.NoError(t, s.Append(testEvent("before")))

	var got [][]string
	s.SubscribeSnapshot(func(events []model.Event) {
		got = append(got, titles(events))
	})

	require.NoError(t, s.Append(testEvent("after")))

	assert.Equal(t, [][]string{
		{"before"},
		{"before", "after"},
	}, got)
}

func TestEventStream_SubscribeLatest(t *testing.T) {
	s := NewEventStream(nil)
	require.NoError(t, s.Append(testEvent("before")))

	var got []string
	s.SubscribeLatest(func(ev model.Event) { got = append(got, ev.Title) })

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Append(testEvent(fmt.Sprintf("e%d", i))))
	}

	assert.Equal(t, []string{"e0", "e1", "e2", "e3", "e4"}, got)
}

func TestEventStream_Unsubscribe(t *testing.T) {
	s := NewEventStream(nil)

	count := 0
	unsubscribe := s.SubscribeLatest(func(model.Event) { count++ })
	require.NoError(t, s.Append(testEvent("one")))

	unsubscribe()
	unsubscribe()
	require.NoError(t, s.Append(testEvent("two")))

	assert.Equal(t, 1, count)
	assert.Equal(t, 0, s.SubscriberCount())
}

func TestEventStream_ReentrantAppendKeepsOrder(t *testing.T) {
	s := NewEventStream(nil)

	var first, second []string
	s.SubscribeLatest(func(ev model.Event) {
		first = append(first, ev.Title)
		if ev.Title == "trigger" {
			require.NoError(t, s.Append(testEvent("echo")))
		}
	})
	s.SubscribeLatest(func(ev model.Event) {
		second = append(second, ev.Title)
	})

	require.NoError(t, s.Append(testEvent("trigger")))

	// Every subscriber sees "trigger" before "echo".
	assert.Equal(t, []string{"trigger", "echo"}, first)
	assert.Equal(t, []string{"trigger", "echo"}, second)
}

func TestEventStream_SnapshotViewIsBoundedAtDelivery(t *testing.T) {
	s := NewEventStream(nil)

	var lengths []int
	s.SubscribeLatest(func(ev model.Event) {
		if ev.Title == "trigger" {
			require.NoError(t, s.Append(testEvent("echo")))
		}
	})
	s.SubscribeSnapshot(func(events []model.Event) {
		lengths = append(lengths, len(events))
	})

	require.NoError(t, s.Append(testEvent("trigger")))

	assert.Equal(t, []int{0, 1, 2}, lengths)
}

func TestEventStream_UnsubscribeDuringBroadcast(t *testing.T) {
	s := NewEventStream(nil)

	var unsubscribeSecond func()
	secondCalls := 0
	s.SubscribeLatest(func(model.Event) { unsubscribeSecond() })
	unsubscribeSecond = s.SubscribeLatest(func(model.Event) { secondCalls++ })

	require.NoError(t, s.Append(testEvent("one")))
	assert.Equal(t, 0, secondCalls)
}

func TestEventStream_Close(t *testing.T) {
	s := NewEventStream(nil)
	require.NoError(t, s.Append(testEvent("one")))

	s.Close()

	assert.ErrorIs(t, s.Append(testEvent("two")), ErrStreamClosed)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 0, s.SubscriberCount())
}
