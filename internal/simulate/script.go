// Package simulate replays scripted input against the overlay on a virtual
// clock and records the state after every step. Scripts are YAML.
package simulate

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/eventlog/internal/config"
	"github.com/jmylchreest/eventlog/internal/model"
)

// Action is the kind of a script step.
type Action string

const (
	ActionEvent         Action = "event"
	ActionWait          Action = "wait"
	ActionTapPeek       Action = "tap-peek"
	ActionTapCollapse   Action = "tap-collapse"
	ActionTapCard       Action = "tap-card"
	ActionDismissDetail Action = "dismiss-detail"
	ActionSwipeUp       Action = "swipe-up"
	ActionSwipeDown     Action = "swipe-down"
	ActionTap           Action = "tap"
	ActionScroll        Action = "scroll"
)

// ValidActions lists every recognized action.
var ValidActions = []Action{
	ActionEvent, ActionWait, ActionTapPeek, ActionTapCollapse, ActionTapCard,
	ActionDismissDetail, ActionSwipeUp, ActionSwipeDown, ActionTap, ActionScroll,
}

// Script is a parsed simulation script.
//
//	name: idle strip hides
//	viewport: {width: 400, height: 800}
//	overlay:
//	  auto_hide: 5s
//	steps:
//	  - action: event
//	    title: Login
//	    repeat: 6
//	  - action: wait
//	    duration: 5s
type Script struct {
	Name     string    `yaml:"name"`
	Viewport Viewport  `yaml:"viewport"`
	Overlay  Overrides `yaml:"overlay"`
	Steps    []Step    `yaml:"steps"`
}

// Viewport is the simulated host surface size.
type Viewport struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Overrides replace individual [overlay] config values for the run.
type Overrides struct {
	RecentCapacity *int             `yaml:"recent_capacity"`
	AutoHide       *config.Duration `yaml:"auto_hide"`
	CardLifetime   *config.Duration `yaml:"card_lifetime"`
	CollapseDelay  *config.Duration `yaml:"collapse_delay"`
}

// Apply writes the set overrides into cfg.
func (o Overrides) Apply(cfg *config.Config) {
	if o.RecentCapacity != nil {
		cfg.Overlay.RecentCapacity = *o.RecentCapacity
	}
	if o.AutoHide != nil {
		cfg.Overlay.AutoHide = *o.AutoHide
	}
	if o.CardLifetime != nil {
		cfg.Overlay.CardLifetime = *o.CardLifetime
	}
	if o.CollapseDelay != nil {
		cfg.Overlay.CollapseDelay = *o.CollapseDelay
	}
}

// Step is one scripted input.
type Step struct {
	Action Action `yaml:"action"`

	// event
	Title    string         `yaml:"title,omitempty"`
	Message  string         `yaml:"message,omitempty"`
	Params   map[string]any `yaml:"params,omitempty"`
	Category string         `yaml:"category,omitempty"`
	Repeat   int            `yaml:"repeat,omitempty"` // titles get a " N" suffix when > 1

	// wait
	Duration config.Duration `yaml:"duration,omitempty"`

	// tap-card: "#N", an event id, a title or a search term
	Ref string `yaml:"ref,omitempty"`

	// tap
	X float64 `yaml:"x,omitempty"`
	Y float64 `yaml:"y,omitempty"`

	// scroll
	DY float64 `yaml:"dy,omitempty"`
}

// category resolves the step's category, defaulting to analytics.
func (s Step) category() (model.Category, error) {
	if s.Category == "" {
		return model.DefaultCategory, nil
	}
	return model.ParseCategory(s.Category)
}

// ErrNoSteps is returned for scripts without steps.
var ErrNoSteps = errors.New("script has no steps")

// Parse decodes and validates a script.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and parses the script at path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return Parse(data)
}

// Validate checks every step and fills in the default viewport.
func (s *Script) Validate() error {
	if len(s.Steps) == 0 {
		return ErrNoSteps
	}
	if s.Viewport.Width <= 0 || s.Viewport.Height <= 0 {
		s.Viewport = Viewport{Width: 400, Height: 800}
	}

	for i, step := range s.Steps {
		if err := step.validate(); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Action, err)
		}
	}
	return nil
}

func (s Step) validate() error {
	switch s.Action {
	case ActionEvent:
		if strings.TrimSpace(s.Title) == "" {
			return model.ErrEmptyTitle
		}
		if s.Message != "" && len(s.Params) > 0 {
			return errors.New("message and params are mutually exclusive")
		}
		if s.Repeat < 0 {
			return fmt.Errorf("repeat cannot be negative, got %d", s.Repeat)
		}
		if _, err := s.category(); err != nil {
			return err
		}
	case ActionWait:
		if s.Duration < 0 {
			return fmt.Errorf("duration cannot be negative, got %s", s.Duration.Duration())
		}
	case ActionTapCard:
		if s.Ref == "" {
			return errors.New("ref is required")
		}
	case ActionTapPeek, ActionTapCollapse, ActionDismissDetail,
		ActionSwipeUp, ActionSwipeDown, ActionTap, ActionScroll:
	default:
		return fmt.Errorf("unknown action, must be one of: %v", ValidActions)
	}
	return nil
}
