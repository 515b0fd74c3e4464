package simulate

import (
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/image/math/f64"

	"github.com/jmylchreest/eventlog/internal/config"
	"github.com/jmylchreest/eventlog/internal/core"
	"github.com/jmylchreest/eventlog/internal/hittest"
	"github.com/jmylchreest/eventlog/internal/overlay"
	"github.com/jmylchreest/eventlog/internal/uiloop"
	"github.com/jmylchreest/eventlog/pkg/eventlog"
)

// Epoch is the virtual time every run starts at.
var Epoch = time.Date(2024, 3, 30, 9, 0, 0, 0, time.UTC)

// StepResult is the overlay state observed after a step.
type StepResult struct {
	Step    int           `json:"step" yaml:"step"`
	Action  Action        `json:"action" yaml:"action"`
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
	State   string        `json:"state" yaml:"state"`
	Recent  []string      `json:"recent" yaml:"recent"`
	History int           `json:"history" yaml:"history"`
	Detail  string        `json:"detail,omitempty" yaml:"detail,omitempty"`
	Claimed *bool         `json:"claimed,omitempty" yaml:"claimed,omitempty"`
	Scroll  float64       `json:"scroll,omitempty" yaml:"scroll,omitempty"`
}

// Result is the outcome of a run.
type Result struct {
	Name  string       `json:"name,omitempty" yaml:"name,omitempty"`
	Steps []StepResult `json:"steps" yaml:"steps"`
	// Hides counts transitions into the hidden state.
	Hides int `json:"hides" yaml:"hides"`
}

// States returns the state after each step.
func (r *Result) States() []string {
	states := make([]string, len(r.Steps))
	for i, s := range r.Steps {
		states[i] = s.State
	}
	return states
}

type staticHost hittest.Size

func (h staticHost) Size() hittest.Size      { return hittest.Size(h) }
func (h staticHost) RootTransform() f64.Aff3 { return f64.Aff3{} }

// Run executes s against a fresh overlay built from cfg with the script's
// overrides applied. Runs are deterministic: time only moves on wait steps.
func Run(s *Script, cfg *config.Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	runCfg := *cfg
	s.Overlay.Apply(&runCfg)

	loop := uiloop.NewManual(Epoch)
	el, err := eventlog.New(loop, eventlog.WithConfig(&runCfg), eventlog.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	defer el.Close()

	if err := el.Attach(staticHost{W: s.Viewport.Width, H: s.Viewport.Height}); err != nil {
		return nil, err
	}

	result := &Result{Name: s.Name}
	el.Machine().OnChange(func(snap overlay.Snapshot) {
		if snap.State == overlay.StateHidden {
			result.Hides++
		}
	})

	for i, step := range s.Steps {
		claimed, err := apply(el, loop, step)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Action, err)
		}
		result.Steps = append(result.Steps, observe(el, loop, i+1, step.Action, claimed))
	}

	logger.Debug("simulation finished", "name", s.Name, "steps", len(s.Steps), "hides", result.Hides)
	return result, nil
}

// apply performs one step. Gestures are not followed by a drain, so work
// they defer (such as the collapse re-check) runs at the next step.
func apply(el *eventlog.EventLog, loop *uiloop.Manual, step Step) (*bool, error) {
	m := el.Machine()

	switch step.Action {
	case ActionEvent:
		cat, err := step.category()
		if err != nil {
			return nil, err
		}
		message := step.Message
		if len(step.Params) > 0 {
			message = eventlog.FormatParams(step.Params)
		}
		n := max(step.Repeat, 1)
		for i := 1; i <= n; i++ {
			title := step.Title
			if n > 1 {
				title = fmt.Sprintf("%s %d", step.Title, i)
			}
			if err := el.TrySend(title, message, cat); err != nil {
				return nil, err
			}
		}
		loop.Drain()
	case ActionWait:
		loop.Advance(step.Duration.Duration())
	case ActionTapPeek:
		m.TapPeek()
	case ActionTapCollapse:
		m.TapCollapse()
	case ActionTapCard:
		ev := core.Resolve(el.Stream().Snapshot(), step.Ref)
		if ev == nil {
			return nil, fmt.Errorf("no event matches %q", step.Ref)
		}
		m.TapCard(ev.ID)
	case ActionDismissDetail:
		m.DismissDetail()
	case ActionSwipeUp:
		m.SwipeUp()
	case ActionSwipeDown:
		m.SwipeDown()
	case ActionTap:
		claimed := el.Tap(hittest.Pt(step.X, step.Y))
		return &claimed, nil
	case ActionScroll:
		moved := el.Overlay().Scroll(step.DY)
		return &moved, nil
	}
	return nil, nil
}

func observe(el *eventlog.EventLog, loop *uiloop.Manual, n int, action Action, claimed *bool) StepResult {
	snap := el.Machine().Snapshot()

	recent := make([]string, len(snap.Recent))
	for i, ev := range snap.Recent {
		recent[i] = ev.Title
	}

	res := StepResult{
		Step:    n,
		Action:  action,
		Elapsed: loop.Now().Sub(Epoch),
		State:   snap.State.String(),
		Recent:  recent,
		History: len(snap.History),
		Claimed: claimed,
		Scroll:  el.Overlay().ScrollOffset(),
	}
	if snap.DetailShown {
		res.Detail = snap.Selected.Title
	}
	return res
}
