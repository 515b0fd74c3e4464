// Package display mounts the overlay onto a host surface. It keeps the
// region tree in step with the visibility state machine, answers hit tests
// and turns taps, swipes and scrolls into machine gestures.
package display
