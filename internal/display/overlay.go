package display

import (
	"log/slog"

	"golang.org/x/image/math/f64"

	"github.com/jmylchreest/eventlog/internal/config"
	"github.com/jmylchreest/eventlog/internal/hittest"
	"github.com/jmylchreest/eventlog/internal/layout"
	"github.com/jmylchreest/eventlog/internal/overlay"
	"github.com/jmylchreest/eventlog/internal/theme"
)

// Host is the always-on-top surface the overlay is mounted on.
type Host interface {
	// Size returns the surface size in surface units.
	Size() hittest.Size
	// RootTransform maps overlay coordinates into the coordinates input
	// points are reported in. The zero value is the identity.
	RootTransform() f64.Aff3
}

// Frame is handed to the render callback after every rebuild.
type Frame struct {
	Snapshot overlay.Snapshot
	// Root is the mounted region tree, nil when nothing is drawn.
	Root     *hittest.Node
	Viewport hittest.Size
	Scroll   float64
}

// RenderCallback is called with each rebuilt frame.
type RenderCallback func(Frame)

// SwipeDirection is the vertical direction of a swipe.
type SwipeDirection int

const (
	// SwipeUp on a collapsed card clears the peek strip.
	SwipeUp SwipeDirection = iota
	// SwipeDown on a collapsed card expands the overlay, like a peek tap.
	SwipeDown
)

// Overlay mounts the machine's state on a host and routes input back to it.
//
// Overlay is confined to the UI loop, like the machine it drives.
type Overlay struct {
	machine *overlay.Machine
	display config.DisplayConfig
	theme   *theme.Theme
	logger  *slog.Logger
	router  *hittest.Router

	host        Host
	unsubscribe func()
	root        *hittest.Node
	scroll      float64
	lastState   overlay.State

	onRender RenderCallback
}

// New creates a detached overlay for machine.
func New(machine *overlay.Machine, cfg config.DisplayConfig, th *theme.Theme, logger *slog.Logger) *Overlay {
	if logger == nil {
		logger = slog.Default()
	}
	if th == nil {
		th = theme.NewDefaultTheme()
	}

	o := &Overlay{
		machine: machine,
		display: cfg,
		theme:   th,
		logger:  logger,
	}
	o.router = hittest.NewRouter(o.Root)
	return o
}

// SetRenderCallback sets the callback invoked after every rebuild.
func (o *Overlay) SetRenderCallback(cb RenderCallback) {
	o.onRender = cb
}

// Attach mounts the overlay on host and starts following the machine.
func (o *Overlay) Attach(host Host) error {
	if host == nil {
		return &DisplayError{Message: "no host surface"}
	}
	if o.host != nil {
		return &DisplayError{Message: "overlay already attached"}
	}
	if size := host.Size(); size.W <= 0 || size.H <= 0 {
		return &DisplayError{Message: "host surface has no area"}
	}

	o.host = host
	o.scroll = 0
	o.lastState = o.machine.State()
	o.unsubscribe = o.machine.OnChange(o.rebuild)
	o.rebuild(o.machine.Snapshot())

	o.logger.Info("overlay attached", "width", host.Size().W, "height", host.Size().H)
	return nil
}

// Detach unmounts the overlay. Detaching a detached overlay is a no-op.
func (o *Overlay) Detach() {
	if o.host == nil {
		return
	}
	if o.unsubscribe != nil {
		o.unsubscribe()
		o.unsubscribe = nil
	}
	o.host = nil
	o.root = nil
	o.scroll = 0
	o.logger.Info("overlay detached")
}

// Attached reports whether the overlay is mounted.
func (o *Overlay) Attached() bool {
	return o.host != nil
}

// Root returns the mounted region tree, nil when detached or hidden.
func (o *Overlay) Root() *hittest.Node {
	return o.root
}

// ScrollOffset returns the expanded list offset.
func (o *Overlay) ScrollOffset() float64 {
	return o.scroll
}

// Theme returns the active theme.
func (o *Overlay) Theme() *theme.Theme {
	return o.theme
}

func (o *Overlay) params() layout.Params {
	return layout.Params{
		Viewport: o.host.Size(),
		Display:  o.display,
		Theme:    o.theme,
		Scroll:   o.scroll,
	}
}

// rebuild regenerates the region tree from snap and notifies the renderer.
func (o *Overlay) rebuild(snap overlay.Snapshot) {
	if o.host == nil {
		return
	}

	if snap.State != o.lastState {
		if snap.State != overlay.StateExpanded {
			o.scroll = 0
		}
		o.lastState = snap.State
	}

	p := o.params()
	if snap.State == overlay.StateExpanded {
		o.scroll = layout.ClampScroll(o.scroll, snap.History, p)
		p.Scroll = o.scroll
	}

	root := layout.Build(snap, p)
	if root != nil {
		root.Transform = o.host.RootTransform()
	}
	o.root = root

	if o.onRender != nil {
		o.onRender(Frame{
			Snapshot: snap,
			Root:     root,
			Viewport: p.Viewport,
			Scroll:   o.scroll,
		})
	}
}

// Refresh rebuilds the tree, e.g. after the host was resized.
func (o *Overlay) Refresh() {
	o.rebuild(o.machine.Snapshot())
}

// SetDisplayConfig applies new geometry and rebuilds.
func (o *Overlay) SetDisplayConfig(cfg config.DisplayConfig) {
	o.display = cfg
	o.Refresh()
}

// SetTheme applies a new theme and rebuilds.
func (o *Overlay) SetTheme(th *theme.Theme) {
	if th == nil {
		return
	}
	o.theme = th
	o.Refresh()
}

// ShouldClaim reports whether input at p belongs to the overlay.
// A detached or hidden overlay never claims.
func (o *Overlay) ShouldClaim(p hittest.Point) bool {
	return o.router.ShouldClaim(p)
}

// Tap routes a tap at p to the region under it. It reports whether the
// overlay claimed the tap; unclaimed taps belong to the host application.
func (o *Overlay) Tap(p hittest.Point) bool {
	region, ok := o.router.RegionAt(p)
	if !ok {
		return false
	}

	o.logger.Debug("tap", "point", p.String(), "region", region.Name)

	switch region.Kind {
	case layout.KindCard:
		o.machine.TapCard(region.ID)
	case layout.KindPeek:
		o.machine.TapPeek()
	case layout.KindCollapse:
		o.machine.TapCollapse()
	case layout.KindClose:
		o.machine.DismissDetail()
	}
	// The scrim and the detail sheet swallow taps without a gesture.
	return true
}

// Swipe routes a vertical swipe starting at p. Swipes only act on the peek
// strip: up clears it, down expands it.
func (o *Overlay) Swipe(p hittest.Point, dir SwipeDirection) bool {
	region, ok := o.router.RegionAt(p)
	if !ok {
		return false
	}
	if region.Kind != layout.KindCard && region.Kind != layout.KindPeek {
		return true
	}
	if o.machine.State() != overlay.StateCollapsed {
		return true
	}

	switch dir {
	case SwipeUp:
		o.machine.SwipeUp()
	case SwipeDown:
		o.machine.SwipeDown()
	}
	return true
}

// Scroll moves the expanded history by dy. It reports whether the offset
// changed.
func (o *Overlay) Scroll(dy float64) bool {
	if o.host == nil || o.machine.State() != overlay.StateExpanded {
		return false
	}

	next := layout.ClampScroll(o.scroll+dy, o.machine.History(), o.params())
	if next == o.scroll {
		return false
	}
	o.scroll = next
	o.Refresh()
	return true
}
