// Package scheduler manages keyed, cancelable delayed actions on the UI loop.
package scheduler

import (
	"log/slog"
	"time"

	"github.com/jmylchreest/eventlog/internal/uiloop"
)

// token identifies one scheduled action. A firing only runs if its token is
// still the one registered under its key.
type token struct {
	stop func() bool
}

// Scheduler holds at most one pending action per key. Scheduling under a
// key that already has a pending action replaces it.
//
// All methods must be called on the UI loop the scheduler was created with.
type Scheduler struct {
	loop    uiloop.Loop
	logger  *slog.Logger
	pending map[string]*token
}

// New creates a Scheduler that runs actions on loop.
func New(loop uiloop.Loop, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		loop:    loop,
		logger:  logger,
		pending: make(map[string]*token),
	}
}

// Schedule runs action on the loop once delay has elapsed, canceling any
// action pending under the same key. A zero or negative delay still defers
// the action to a later loop turn.
func (s *Scheduler) Schedule(key string, delay time.Duration, action func()) {
	s.Cancel(key)

	tok := &token{}
	s.pending[key] = tok

	fire := func() {
		if s.pending[key] != tok {
			// Superseded or canceled after the timer was handed to the loop.
			return
		}
		delete(s.pending, key)
		action()
	}

	if delay <= 0 {
		s.loop.Post(fire)
	} else {
		tok.stop = s.loop.AfterFunc(delay, fire)
	}

	s.logger.Debug("scheduled action", "key", key, "delay", delay)
}

// Cancel drops the action pending under key. It reports whether one was pending.
func (s *Scheduler) Cancel(key string) bool {
	tok, exists := s.pending[key]
	if !exists {
		return false
	}
	delete(s.pending, key)
	if tok.stop != nil {
		tok.stop()
	}
	return true
}

// CancelAll drops every pending action.
func (s *Scheduler) CancelAll() {
	for key := range s.pending {
		s.Cancel(key)
	}
}

// Pending reports whether an action is pending under key.
func (s *Scheduler) Pending(key string) bool {
	_, exists := s.pending[key]
	return exists
}

// Len returns the number of pending actions.
func (s *Scheduler) Len() int {
	return len(s.pending)
}
