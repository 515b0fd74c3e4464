package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/eventlog/internal/model"
)

func testEvents() []model.Event {
	return []model.Event{
		{ID: "01A", Title: "Login", Message: "user signed in"},
		{ID: "01B", Title: "Purchase", Message: "sku: A-1"},
		{ID: "01C", Title: "Login", Message: "second session"},
	}
}

func TestLookupByID(t *testing.T) {
	events := testEvents()

	t.Run("found", func(t *testing.T) {
		result := LookupByID(events, "01B")
		assert.NotNil(t, result)
		assert.Equal(t, "Purchase", result.Title)
	})

	t.Run("not found", func(t *testing.T) {
		result := LookupByID(events, "notexist")
		assert.Nil(t, result)
	})

	t.Run("empty slice", func(t *testing.T) {
		result := LookupByID(nil, "01A")
		assert.Nil(t, result)
	})
}

func TestLookupByIndex(t *testing.T) {
	events := testEvents()

	t.Run("valid index 1", func(t *testing.T) {
		result := LookupByIndex(events, 1)
		assert.NotNil(t, result)
		assert.Equal(t, "01A", result.ID)
	})

	t.Run("valid index 3", func(t *testing.T) {
		result := LookupByIndex(events, 3)
		assert.NotNil(t, result)
		assert.Equal(t, "01C", result.ID)
	})

	t.Run("index 0 out of bounds", func(t *testing.T) {
		assert.Nil(t, LookupByIndex(events, 0))
	})

	t.Run("index too high", func(t *testing.T) {
		assert.Nil(t, LookupByIndex(events, 10))
	})
}

func TestLookupByTitle_PrefersNewest(t *testing.T) {
	result := LookupByTitle(testEvents(), "Login")
	assert.NotNil(t, result)
	assert.Equal(t, "01C", result.ID)

	assert.Nil(t, LookupByTitle(testEvents(), "login"))
}

func TestSearch(t *testing.T) {
	events := testEvents()

	t.Run("match in title", func(t *testing.T) {
		result := Search(events, "purch")
		assert.Len(t, result, 1)
		assert.Equal(t, "01B", result[0].ID)
	})

	t.Run("match in message", func(t *testing.T) {
		result := Search(events, "SESSION")
		assert.Len(t, result, 1)
		assert.Equal(t, "01C", result[0].ID)
	})

	t.Run("no matches", func(t *testing.T) {
		assert.Len(t, Search(events, "xyz123"), 0)
	})

	t.Run("empty search term returns all", func(t *testing.T) {
		assert.Len(t, Search(events, ""), 3)
	})
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"index", "#2", "01B"},
		{"index out of range", "#9", ""},
		{"id", "01A", "01A"},
		{"exact title newest", "Login", "01C"},
		{"search term", "signed", "01A"},
		{"search newest", "s", "01C"},
		{"no match", "ghost", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Resolve(testEvents(), tt.ref)
			if tt.want == "" {
				assert.Nil(t, result)
				return
			}
			if assert.NotNil(t, result) {
				assert.Equal(t, tt.want, result.ID)
			}
		})
	}
}
