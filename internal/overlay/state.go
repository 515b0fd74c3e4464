// Package overlay implements the visibility state machine that decides what
// the event overlay shows: nothing, a peek strip of recent cards, or the
// full scrollable history.
package overlay

import (
	"time"

	"github.com/jmylchreest/eventlog/internal/config"
	"github.com/jmylchreest/eventlog/internal/model"
)

// State is the overlay's visibility state.
type State int

const (
	// StateHidden means nothing is drawn and no input is claimed.
	StateHidden State = iota
	// StateCollapsed shows the peek strip of recent events.
	StateCollapsed
	// StateExpanded shows the full event history.
	StateExpanded
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StateHidden:
		return "hidden"
	case StateCollapsed:
		return "collapsed"
	case StateExpanded:
		return "expanded"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of the machine handed to renderers.
type Snapshot struct {
	State State

	// Recent holds the peek strip cards, oldest first.
	Recent []model.Event

	// History holds every event appended so far, oldest first.
	History []model.Event

	// DetailShown is raised while the detail sheet for Selected is open.
	DetailShown bool
	Selected    model.Event

	// Generation increases on every visibility state change.
	Generation uint64
}

// Settings are the timing and capacity knobs of the machine.
type Settings struct {
	RecentCapacity int
	AutoHide       time.Duration
	CardLifetime   time.Duration // 0 keeps cards until the strip is hidden
	CollapseDelay  time.Duration
}

// DefaultSettings returns the stock timings: five cards, hide after five
// seconds of inactivity, drop each card after four.
func DefaultSettings() Settings {
	return SettingsFromConfig(config.DefaultConfig())
}

// SettingsFromConfig extracts machine settings from the overlay config section.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		RecentCapacity: cfg.Overlay.RecentCapacity,
		AutoHide:       cfg.Overlay.AutoHide.Duration(),
		CardLifetime:   cfg.Overlay.CardLifetime.Duration(),
		CollapseDelay:  cfg.Overlay.CollapseDelay.Duration(),
	}
}
