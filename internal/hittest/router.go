package hittest

// TreeSource returns the currently mounted region tree, or nil when
// nothing is drawn.
type TreeSource func() *Node

// Router answers hit tests against whatever tree its source reports at the
// time of the call. Regions are never cached, so a test always reflects the
// tree as currently rendered.
type Router struct {
	source TreeSource
}

// NewRouter creates a router reading its tree from source.
func NewRouter(source TreeSource) *Router {
	return &Router{source: source}
}

// ShouldClaim reports whether the overlay consumes input at p.
func (r *Router) ShouldClaim(p Point) bool {
	_, ok := r.RegionAt(p)
	return ok
}

// RegionAt returns the topmost interactive region containing p.
func (r *Router) RegionAt(p Point) (Region, bool) {
	if r == nil || r.source == nil {
		return Region{}, false
	}
	regions := Regions(r.source())
	for i := len(regions) - 1; i >= 0; i-- {
		if regions[i].Contains(p) {
			return regions[i], true
		}
	}
	return Region{}, false
}

// Regions returns the current interactive regions in paint order.
func (r *Router) Regions() []Region {
	if r == nil || r.source == nil {
		return nil
	}
	return Regions(r.source())
}
