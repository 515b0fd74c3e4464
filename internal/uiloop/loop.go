// Package uiloop provides the single goroutine that owns all overlay state.
//
// Producers on any goroutine hand work to a Loop with Post; everything the
// loop runs executes sequentially, so overlay state needs no locking once a
// call has been marshaled onto it.
package uiloop

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Loop executes functions one at a time on the UI-owning goroutine.
type Loop interface {
	// Post queues fn to run on the loop. It never runs fn synchronously.
	Post(fn func())

	// AfterFunc runs fn on the loop once d has elapsed. The returned stop
	// function prevents the call if it has not been handed to the loop yet
	// and reports whether it did so.
	AfterFunc(d time.Duration, fn func()) (stop func() bool)

	// Now returns the loop's current time.
	Now() time.Time
}

// ErrStopped is returned when work is submitted to a loop that is no longer running.
var ErrStopped = errors.New("ui loop stopped")

// Runner is a Loop backed by a dedicated goroutine.
type Runner struct {
	logger *slog.Logger

	mu      sync.Mutex
	tasks   []func()
	stopped bool

	wake chan struct{}
	done chan struct{}
}

// NewRunner creates a Runner. Call Run to start processing.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		logger: logger,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Post queues fn. Posting after the runner stopped drops fn.
func (r *Runner) Post(fn func()) {
	if fn == nil {
		return
	}

	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		r.logger.Debug("dropping task posted to stopped ui loop")
		return
	}
	r.tasks = append(r.tasks, fn)
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// AfterFunc schedules fn to be posted after d.
func (r *Runner) AfterFunc(d time.Duration, fn func()) func() bool {
	t := time.AfterFunc(d, func() {
		r.Post(fn)
	})
	return t.Stop
}

// Now returns the wall clock time.
func (r *Runner) Now() time.Time {
	return time.Now()
}

// Run processes posted tasks until ctx is canceled. It must be called once.
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.done)

	for {
		select {
		case <-ctx.Done():
			r.mu.Lock()
			r.stopped = true
			r.tasks = nil
			r.mu.Unlock()
			return ctx.Err()
		case <-r.wake:
			r.runPending()
		}
	}
}

// Done is closed once Run has returned.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Do runs fn on the loop and waits for it to finish.
func (r *Runner) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	r.Post(func() {
		defer close(finished)
		fn()
	})

	select {
	case <-finished:
		return nil
	case <-r.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runPending drains the task queue. Tasks posted while draining are picked
// up in the same pass, preserving FIFO order.
func (r *Runner) runPending() {
	for {
		r.mu.Lock()
		if len(r.tasks) == 0 {
			r.mu.Unlock()
			return
		}
		batch := r.tasks
		r.tasks = nil
		r.mu.Unlock()

		for _, fn := range batch {
			r.run(fn)
		}
	}
}

// run executes a single task, keeping the loop alive if it panics.
func (r *Runner) run(fn func()) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("ui loop task panicked", "panic", p)
		}
	}()
	fn()
}
