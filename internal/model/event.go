// Package model defines the core data structures for eventlog.
package model

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Category classifies an event. The set is closed; renderers map each
// value to an icon, tint and card height.
type Category int

const (
	CategoryMessage Category = iota
	CategoryError
	CategoryWarning
	CategoryAnalytics
)

// DefaultCategory is used when a producer does not specify one.
const DefaultCategory = CategoryAnalytics

// CategoryNames maps categories to their canonical names.
var CategoryNames = map[Category]string{
	CategoryMessage:   "message",
	CategoryError:     "error",
	CategoryWarning:   "warning",
	CategoryAnalytics: "analytics",
}

// Categories returns all categories in declaration order.
func Categories() []Category {
	return []Category{CategoryMessage, CategoryError, CategoryWarning, CategoryAnalytics}
}

// String returns the canonical name of the category.
func (c Category) String() string {
	if name, ok := CategoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := CategoryNames[c]
	return ok
}

// ParseCategory parses a category name (case-insensitive).
func ParseCategory(s string) (Category, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for c, n := range CategoryNames {
		if n == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCategory, int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Event is a single ingested log entry.
// Events are values and must not be modified once appended to a stream.
type Event struct {
	ID        string    `json:"id" yaml:"id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Title     string    `json:"title" yaml:"title"`
	Message   string    `json:"message,omitempty" yaml:"message,omitempty"`
	Category  Category  `json:"category" yaml:"category"`
}

// Validation errors.
var (
	ErrEmptyID         = errors.New("event id cannot be empty")
	ErrEmptyTitle      = errors.New("event title cannot be empty")
	ErrInvalidCategory = errors.New("invalid event category")
)

// NewEvent creates an Event stamped with the given time and a fresh ULID.
func NewEvent(now time.Time, title, message string, category Category) (Event, error) {
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return Event{}, fmt.Errorf("failed to generate ULID: %w", err)
	}

	ev := Event{
		ID:        id.String(),
		CreatedAt: now,
		Title:     title,
		Message:   message,
		Category:  category,
	}
	if err := ev.Validate(); err != nil {
		return Event{}, err
	}
	return ev, nil
}

// Validate checks that the event has all required fields.
func (e Event) Validate() error {
	if e.ID == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	return nil
}

// HasMessage reports whether the event carries a message body.
func (e Event) HasMessage() bool {
	return e.Message != ""
}

// MessageTruncated returns the message collapsed to a single line and cut
// to maxLen characters, with "..." appended when truncated.
func (e Event) MessageTruncated(maxLen int) string {
	if maxLen <= 0 {
		return ""
	}

	msg := strings.Join(strings.Fields(e.Message), " ")
	runes := []rune(msg)
	if len(runes) <= maxLen {
		return msg
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
