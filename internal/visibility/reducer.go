// Package visibility tracks which page sections intersect the viewport.
//
// Intersection changes are modelled as a stream of Events folded into a Map
// by Reduce; Tracker produces the events from section bounds and a viewport
// rectangle, one batch per Update.
package visibility

// Rect is an axis aligned rectangle in page coordinates.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Area() float64 {
	if r.W <= 0 || r.H <= 0 {
		return 0
	}
	return r.W * r.H
}

// Intersect returns the overlap of r and o; empty when they do not touch.
func (r Rect) Intersect(o Rect) Rect {
	x0 := max(r.X, o.X)
	y0 := max(r.Y, o.Y)
	x1 := min(r.X+r.W, o.X+o.W)
	y1 := min(r.Y+r.H, o.Y+o.H)
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Grow expands r by m on every side.
func (r Rect) Grow(m float64) Rect {
	return Rect{X: r.X - m, Y: r.Y - m, W: r.W + 2*m, H: r.H + 2*m}
}

// Event is one intersection change for a section.
type Event struct {
	ID      string
	Visible bool
	Ratio   float64
}

// Map is section id -> currently visible.
type Map map[string]bool

// Clone copies m. A nil map clones to an empty one.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Reduce applies events in order to a copy of m. The last event for an id
// wins; m itself is left untouched.
func Reduce(m Map, events ...Event) Map {
	out := m.Clone()
	for _, e := range events {
		out[e.ID] = e.Visible
	}
	return out
}
