package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	now := time.Date(2024, 3, 30, 12, 0, 0, 0, time.UTC)
	ev, err := NewEvent(now, "Login", "user: bob", CategoryMessage)
	require.NoError(t, err)

	assert.Len(t, ev.ID, 26)
	assert.Equal(t, now, ev.CreatedAt)
	assert.Equal(t, "Login", ev.Title)
	assert.Equal(t, "user: bob", ev.Message)
	assert.Equal(t, CategoryMessage, ev.Category)
	assert.True(t, ev.HasMessage())
}

func TestNewEvent_UniqueIDs(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ev, err := NewEvent(now, "same", "", CategoryAnalytics)
		require.NoError(t, err)
		assert.False(t, seen[ev.ID], "duplicate id %s", ev.ID)
		seen[ev.ID] = true
	}
}

func TestNewEvent_RejectsEmptyTitle(t *testing.T) {
	_, err := NewEvent(time.Now(), "", "body", CategoryMessage)
	assert.ErrorIs(t, err, ErrEmptyTitle)

	_, err = NewEvent(time.Now(), "   ", "body", CategoryMessage)
	assert.ErrorIs(t, err, ErrEmptyTitle)
}

func TestEvent_Validate(t *testing.T) {
	valid := Event{ID: "01H", Title: "t", Category: CategoryError}

	tests := []struct {
		name    string
		modify  func(*Event)
		wantErr error
	}{
		{"valid event", func(e *Event) {}, nil},
		{"empty id", func(e *Event) { e.ID = "" }, ErrEmptyID},
		{"empty title", func(e *Event) { e.Title = "" }, ErrEmptyTitle},
		{"unknown category", func(e *Event) { e.Category = Category(42) }, ErrInvalidCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := valid
			tt.modify(&ev)
			err := ev.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input   string
		want    Category
		wantErr bool
	}{
		{"message", CategoryMessage, false},
		{"ERROR", CategoryError, false},
		{" warning ", CategoryWarning, false},
		{"analytics", CategoryAnalytics, false},
		{"info", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCategory(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCategory)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCategory_Text(t *testing.T) {
	for _, c := range Categories() {
		text, err := c.MarshalText()
		require.NoError(t, err)

		var parsed Category
		require.NoError(t, parsed.UnmarshalText(text))
		assert.Equal(t, c, parsed)
	}

	_, err := Category(9).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "unknown", Category(9).String())
}

func TestEvent_MessageTruncated(t *testing.T) {
	ev := Event{Message: "line one\nline   two"}

	assert.Equal(t, "line one line two", ev.MessageTruncated(50))
	assert.Equal(t, "line o...", ev.MessageTruncated(9))
	assert.Equal(t, "lin", ev.MessageTruncated(3))
	assert.Equal(t, "", ev.MessageTruncated(0))
}
