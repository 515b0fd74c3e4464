// Package hittest decides whether a point on the overlay surface lands on
// something the overlay draws. Everything else falls through to the
// application underneath.
package hittest

import (
	"golang.org/x/image/math/f64"
)

// Kind names what a node represents so hosts can dispatch taps.
type Kind string

// Node is one element of the mounted region tree.
type Node struct {
	Name string
	Kind Kind
	// ID carries a domain identifier, e.g. the event id of a card.
	ID string

	// Bounds is the node's extent in its own local space.
	Bounds Rect
	// Transform maps local coordinates into the parent's space.
	// The zero value is the identity.
	Transform f64.Aff3

	// Interactive marks the node as claiming input landing on it.
	Interactive bool
	// Hidden excludes the node and its subtree from hit testing.
	Hidden bool
	// Clip restricts descendants to this node's bounds.
	Clip bool

	Children []*Node
}

// Add appends children and returns n.
func (n *Node) Add(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// WalkFunc is called for each visited node with the transform from the
// node's local space to the root's space. Returning false skips the subtree.
type WalkFunc func(n *Node, toRoot f64.Aff3) bool

// Walk visits the tree rooted at root depth-first, parents before children.
// Hidden subtrees are not visited.
func Walk(root *Node, fn WalkFunc) {
	if root == nil {
		return
	}
	walk(root, Identity(), fn)
}

func walk(n *Node, parent f64.Aff3, fn WalkFunc) {
	if n == nil || n.Hidden {
		return
	}
	toRoot := Mul(parent, n.Transform)
	if !fn(n, toRoot) {
		return
	}
	for _, child := range n.Children {
		walk(child, toRoot, fn)
	}
}

// clip is an ancestor's clipping rectangle in that ancestor's local space.
type clip struct {
	bounds Rect
	toRoot f64.Aff3
}

// Region is an interactive node resolved against the root.
type Region struct {
	Name   string
	Kind   Kind
	ID     string
	Bounds Rect
	// ToRoot maps the region's local space into the root's space.
	ToRoot f64.Aff3

	clips []clip
}

// Contains reports whether the root-space point p falls within the region's
// visible bounds. Regions with a singular transform contain nothing.
func (r Region) Contains(p Point) bool {
	if !containsLocal(r.Bounds, r.ToRoot, p) {
		return false
	}
	for _, c := range r.clips {
		if !containsLocal(c.bounds, c.toRoot, p) {
			return false
		}
	}
	return true
}

func containsLocal(bounds Rect, toRoot f64.Aff3, p Point) bool {
	inv, ok := Invert(toRoot)
	if !ok {
		return false
	}
	return bounds.Contains(Apply(inv, p))
}

// Regions collects the interactive nodes of the tree in paint order, so a
// later region is drawn above an earlier one. A nil root has no regions.
func Regions(root *Node) []Region {
	if root == nil {
		return nil
	}
	var regions []Region
	collect(root, Identity(), nil, &regions)
	return regions
}

func collect(n *Node, parent f64.Aff3, clips []clip, out *[]Region) {
	if n == nil || n.Hidden {
		return
	}
	toRoot := Mul(parent, n.Transform)

	if n.Interactive && !n.Bounds.Empty() {
		*out = append(*out, Region{
			Name:   n.Name,
			Kind:   n.Kind,
			ID:     n.ID,
			Bounds: n.Bounds,
			ToRoot: toRoot,
			clips:  clips,
		})
	}

	if n.Clip {
		// Full slice expression so siblings never share an appended backing array.
		clips = append(clips[:len(clips):len(clips)], clip{bounds: n.Bounds, toRoot: toRoot})
	}
	for _, child := range n.Children {
		collect(child, toRoot, clips, out)
	}
}
