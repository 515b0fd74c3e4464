// Package core provides lookup logic over event history.
package core

import (
	"strconv"
	"strings"

	"github.com/jmylchreest/eventlog/internal/model"
)

// LookupByID finds an event by its ID.
// Returns nil if not found.
func LookupByID(events []model.Event, id string) *model.Event {
	for i := range events {
		if events[i].ID == id {
			return &events[i]
		}
	}
	return nil
}

// LookupByIndex finds an event by its index (1-based for user-friendliness).
// Returns nil if index is out of bounds.
func LookupByIndex(events []model.Event, index int) *model.Event {
	idx := index - 1
	if idx < 0 || idx >= len(events) {
		return nil
	}
	return &events[idx]
}

// LookupByTitle finds the newest event with exactly this title.
// Returns nil if not found.
func LookupByTitle(events []model.Event, title string) *model.Event {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Title == title {
			return &events[i]
		}
	}
	return nil
}

// Search finds events matching a search term in title or message.
// Case-insensitive substring match.
func Search(events []model.Event, term string) []model.Event {
	if term == "" {
		return events
	}

	term = strings.ToLower(term)
	var result []model.Event

	for _, ev := range events {
		if strings.Contains(strings.ToLower(ev.Title), term) ||
			strings.Contains(strings.ToLower(ev.Message), term) {
			result = append(result, ev)
		}
	}

	return result
}

// Resolve finds the event a user reference points at. A reference is tried
// as "#N" (1-based index), then as an ID, then as an exact title, then as a
// search term. Title and search matches prefer the newest event.
func Resolve(events []model.Event, ref string) *model.Event {
	if ref == "" {
		return nil
	}

	if n, ok := strings.CutPrefix(ref, "#"); ok {
		if index, err := strconv.Atoi(n); err == nil {
			return LookupByIndex(events, index)
		}
	}
	if ev := LookupByID(events, ref); ev != nil {
		return ev
	}
	if ev := LookupByTitle(events, ref); ev != nil {
		return ev
	}

	matches := Search(events, ref)
	if len(matches) == 0 {
		return nil
	}
	ev := matches[len(matches)-1]
	return &ev
}
