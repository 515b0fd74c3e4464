// Package layout builds the mounted region tree of the overlay from a
// machine snapshot. The tree is what hosts draw and what the hit-test
// router walks, so only nodes that are actually drawn are interactive.
package layout

import (
	"github.com/jmylchreest/eventlog/internal/config"
	"github.com/jmylchreest/eventlog/internal/hittest"
	"github.com/jmylchreest/eventlog/internal/model"
	"github.com/jmylchreest/eventlog/internal/overlay"
	"github.com/jmylchreest/eventlog/internal/theme"
)

// Node kinds produced by Build.
const (
	KindBackdrop hittest.Kind = "backdrop"
	KindStrip    hittest.Kind = "strip"
	KindCard     hittest.Kind = "card"
	KindPeek     hittest.Kind = "peek"
	KindScrim    hittest.Kind = "scrim"
	KindList     hittest.Kind = "list"
	KindContent  hittest.Kind = "content"
	KindCollapse hittest.Kind = "collapse"
	KindDetail   hittest.Kind = "detail"
	KindClose    hittest.Kind = "close"
)

// Params are the inputs to Build besides the snapshot.
type Params struct {
	Viewport hittest.Size
	Display  config.DisplayConfig
	Theme    *theme.Theme
	// Scroll is the expanded list offset from the top, in surface units.
	Scroll float64
}

func (p Params) cardWidth() float64 {
	if p.Display.Width > 0 {
		return float64(p.Display.Width)
	}
	return max(p.Viewport.W-2*float64(p.Display.OffsetX), 0)
}

func (p Params) cardHeight(cat model.Category) float64 {
	if p.Theme == nil {
		return theme.NewDefaultTheme().Height(cat)
	}
	return p.Theme.Height(cat)
}

// Build returns the region tree for snap, or nil when nothing is drawn.
//
// The root is the transparent backdrop spanning the viewport. It is never
// interactive, so points outside the drawn chrome fall through.
func Build(snap overlay.Snapshot, p Params) *hittest.Node {
	if snap.State == overlay.StateHidden {
		return nil
	}

	root := &hittest.Node{
		Name:   "backdrop",
		Kind:   KindBackdrop,
		Bounds: hittest.XYWH(0, 0, p.Viewport.W, p.Viewport.H),
	}

	switch snap.State {
	case overlay.StateCollapsed:
		root.Add(buildStrip(snap.Recent, p))
	case overlay.StateExpanded:
		root.Add(buildExpanded(snap.History, p)...)
	}

	if snap.DetailShown {
		root.Add(buildDetail(snap.Selected, p))
	}
	return root
}

// buildStrip lays the peek cards out top-down, oldest first, followed by
// the peek affordance.
func buildStrip(events []model.Event, p Params) *hittest.Node {
	w := p.cardWidth()
	gap := float64(p.Display.Gap)

	strip := &hittest.Node{
		Name:      "strip",
		Kind:      KindStrip,
		Transform: hittest.Translate(float64(p.Display.OffsetX), float64(p.Display.OffsetY)),
	}

	y := 0.0
	for _, ev := range events {
		strip.Add(cardNode(ev, w, p.cardHeight(ev.Category), y))
		y += p.cardHeight(ev.Category) + gap
	}

	peekH := float64(p.Display.PeekHeight)
	strip.Add(&hittest.Node{
		Name:        "peek",
		Kind:        KindPeek,
		Bounds:      hittest.XYWH(0, 0, w, peekH),
		Transform:   hittest.Translate(0, y),
		Interactive: true,
	})
	strip.Bounds = hittest.XYWH(0, 0, w, y+peekH)
	return strip
}

// buildExpanded returns the scrim, the clipped scrolling history and the
// collapse button.
func buildExpanded(events []model.Event, p Params) []*hittest.Node {
	vw, vh := p.Viewport.W, p.Viewport.H

	scrim := &hittest.Node{
		Name:        "scrim",
		Kind:        KindScrim,
		Bounds:      hittest.XYWH(0, 0, vw, vh),
		Interactive: true,
	}

	content := &hittest.Node{
		Name:      "content",
		Kind:      KindContent,
		Transform: hittest.Translate(float64(p.Display.OffsetX), float64(p.Display.OffsetY)-p.Scroll),
	}
	w := p.cardWidth()
	y := 0.0
	for _, ev := range events {
		h := p.cardHeight(ev.Category)
		content.Add(cardNode(ev, w, h, y))
		y += h + float64(p.Display.Gap)
	}
	content.Bounds = hittest.XYWH(0, 0, w, y)

	list := &hittest.Node{
		Name:   "list",
		Kind:   KindList,
		Bounds: hittest.XYWH(0, 0, vw, vh),
		Clip:   true,
	}
	list.Add(content)

	b := float64(p.Display.ButtonSize)
	collapse := &hittest.Node{
		Name:        "collapse",
		Kind:        KindCollapse,
		Bounds:      hittest.XYWH(0, 0, b, b),
		Transform:   hittest.Translate(vw-float64(p.Display.OffsetX)-b, vh-float64(p.Display.OffsetY)-b),
		Interactive: true,
	}

	return []*hittest.Node{scrim, list, collapse}
}

// buildDetail returns the full-screen detail sheet with its close button.
func buildDetail(ev model.Event, p Params) *hittest.Node {
	vw, vh := p.Viewport.W, p.Viewport.H
	b := float64(p.Display.ButtonSize)

	sheet := &hittest.Node{
		Name:        "detail",
		Kind:        KindDetail,
		ID:          ev.ID,
		Bounds:      hittest.XYWH(0, 0, vw, vh),
		Interactive: true,
	}
	sheet.Add(&hittest.Node{
		Name:        "close",
		Kind:        KindClose,
		ID:          ev.ID,
		Bounds:      hittest.XYWH(0, 0, b, b),
		Transform:   hittest.Translate(vw-float64(p.Display.OffsetX)-b, float64(p.Display.OffsetY)),
		Interactive: true,
	})
	return sheet
}

func cardNode(ev model.Event, w, h, y float64) *hittest.Node {
	return &hittest.Node{
		Name:        "card:" + ev.ID,
		Kind:        KindCard,
		ID:          ev.ID,
		Bounds:      hittest.XYWH(0, 0, w, h),
		Transform:   hittest.Translate(0, y),
		Interactive: true,
	}
}

// ContentHeight returns the height of the expanded history including the
// top and bottom offsets.
func ContentHeight(events []model.Event, p Params) float64 {
	total := 2 * float64(p.Display.OffsetY)
	for i, ev := range events {
		if i > 0 {
			total += float64(p.Display.Gap)
		}
		total += p.cardHeight(ev.Category)
	}
	return total
}

// ClampScroll limits scroll to the range that keeps the history on screen.
func ClampScroll(scroll float64, events []model.Event, p Params) float64 {
	limit := max(ContentHeight(events, p)-p.Viewport.H, 0)
	return min(max(scroll, 0), limit)
}
